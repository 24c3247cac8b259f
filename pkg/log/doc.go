/*
Package log wraps zerolog with a process-global logger and a couple of
registry-specific child-logger helpers (WithComponent, WithCluster,
WithProduct). Call Init once at process start to pick JSON vs console
output and the minimum level; the zero value logs at info to stdout.
*/
package log
