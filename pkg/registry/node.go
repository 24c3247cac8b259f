package registry

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bigdatacesga/registry/pkg/kv"
	"github.com/bigdatacesga/registry/pkg/path"
)

// Node is a member host of a cluster (spec §3, §4.4).
type Node struct{ entity }

// NewNode constructs a Node proxy for dn without touching the KV store.
func NewNode(g kv.Gateway, dn string) *Node {
	return &Node{newEntity(g, dn)}
}

func (n *Node) Name(ctx context.Context) (string, error)         { return n.get(ctx, "name") }
func (n *Node) Status(ctx context.Context) (string, error)       { return n.get(ctx, "status") }
func (n *Node) CPU(ctx context.Context) (string, error)          { return n.get(ctx, "cpu") }
func (n *Node) Mem(ctx context.Context) (string, error)          { return n.get(ctx, "mem") }
func (n *Node) Host(ctx context.Context) (string, error)         { return n.get(ctx, "host") }
func (n *Node) ID(ctx context.Context) (string, error)           { return n.get(ctx, "id") }
func (n *Node) Address(ctx context.Context) (string, error)      { return n.get(ctx, "address") }
func (n *Node) DockerImage(ctx context.Context) (string, error)  { return n.get(ctx, "docker_image") }
func (n *Node) DockerOpts(ctx context.Context) (string, error)   { return n.get(ctx, "docker_opts") }
func (n *Node) Port(ctx context.Context) (string, error)         { return n.get(ctx, "port") }
func (n *Node) ClusterName(ctx context.Context) (string, error)  { return n.get(ctx, "clustername") }
func (n *Node) Type(ctx context.Context) (string, error)         { return n.get(ctx, "type") }

func (n *Node) SetName(ctx context.Context, v string) error        { return n.set(ctx, "name", v) }
func (n *Node) SetStatus(ctx context.Context, v string) error      { return n.set(ctx, "status", v) }
func (n *Node) SetCPU(ctx context.Context, v string) error         { return n.set(ctx, "cpu", v) }
func (n *Node) SetMem(ctx context.Context, v string) error         { return n.set(ctx, "mem", v) }
func (n *Node) SetHost(ctx context.Context, v string) error        { return n.set(ctx, "host", v) }
func (n *Node) SetAddress(ctx context.Context, v string) error     { return n.set(ctx, "address", v) }
func (n *Node) SetDockerImage(ctx context.Context, v string) error { return n.set(ctx, "docker_image", v) }
func (n *Node) SetDockerOpts(ctx context.Context, v string) error  { return n.set(ctx, "docker_opts", v) }
func (n *Node) SetPort(ctx context.Context, v string) error        { return n.set(ctx, "port", v) }
func (n *Node) SetType(ctx context.Context, v string) error        { return n.set(ctx, "type", v) }

// Tags reads the comma-joined "tags" scalar, trimming whitespace around each
// item (spec §3, §4.4).
func (n *Node) Tags(ctx context.Context) ([]string, error) {
	raw, err := n.getDefault(ctx, "tags", "")
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out, nil
}

// SetTags writes tags as a single comma-joined scalar.
func (n *Node) SetTags(ctx context.Context, tags []string) error {
	return n.set(ctx, "tags", strings.Join(tags, ","))
}

// CheckPorts reads the comma-joined "check_ports" scalar, parsing each
// segment as a decimal integer.
func (n *Node) CheckPorts(ctx context.Context) ([]int, error) {
	raw, err := n.getDefault(ctx, "check_ports", "")
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("registry: invalid check_ports entry %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// SetCheckPorts writes check_ports as a single comma-joined scalar.
func (n *Node) SetCheckPorts(ctx context.Context, ports []int) error {
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = strconv.Itoa(p)
	}
	return n.set(ctx, "check_ports", strings.Join(parts, ","))
}

// Cluster resolves the enclosing Cluster proxy.
func (n *Node) Cluster() (*Cluster, error) {
	dn, ok := path.ClusterDN(n.dn)
	if !ok {
		return nil, fmt.Errorf("registry: %s does not sit under a cluster DN", n.dn)
	}
	return NewCluster(n.kv, dn), nil
}

// Services dereferences the node's service membership leaves into full
// Service proxies under the enclosing cluster (spec §4.4).
func (n *Node) Services(ctx context.Context) ([]*Service, error) {
	keys, err := recurseKeys(ctx, n.kv, n.dn+"/services")
	if err != nil {
		return nil, err
	}
	clusterDN, ok := path.ClusterDN(n.dn)
	if !ok {
		return nil, fmt.Errorf("registry: %s does not sit under a cluster DN", n.dn)
	}

	seen := map[string]struct{}{}
	var out []*Service
	for _, k := range keys {
		seg := path.LastSegment(k)
		if seg == "" {
			continue
		}
		svcDN := path.Join(clusterDN, "services", seg)
		if _, ok := seen[svcDN]; ok {
			continue
		}
		seen[svcDN] = struct{}{}
		out = append(out, NewService(n.kv, svcDN))
	}
	return out, nil
}

// SetServices replaces the node's service membership subtree: deletes it,
// then writes one empty-valued leaf per service.
func (n *Node) SetServices(ctx context.Context, services []*Service) error {
	if err := n.kv.Delete(ctx, n.dn+"/services", true); err != nil {
		return err
	}
	for _, s := range services {
		leaf := n.dn + "/services/" + path.LastSegment(s.DN())
		if err := n.kv.Set(ctx, leaf, ""); err != nil {
			return err
		}
	}
	return nil
}

// Disks returns the node's disks, deduplicated by DN.
func (n *Node) Disks(ctx context.Context) ([]*Disk, error) {
	keys, err := recurseKeys(ctx, n.kv, n.dn+"/disks")
	if err != nil {
		return nil, err
	}
	return dedupeDisks(n.kv, n.dn, keys), nil
}

func dedupeDisks(g kv.Gateway, nodeDN string, keys []string) []*Disk {
	seen := map[string]struct{}{}
	var out []*Disk
	for _, k := range keys {
		if k == nodeDN+"/disks/" {
			continue
		}
		dn, ok := path.DiskDN(k)
		if !ok {
			continue
		}
		if _, dup := seen[dn]; dup {
			continue
		}
		seen[dn] = struct{}{}
		out = append(out, NewDisk(g, dn))
	}
	return out
}

// SetDisks replaces the node's disks subtree: deletes it, then writes the
// fixed attribute leaves for each supplied disk.
func (n *Node) SetDisks(ctx context.Context, disks []DiskAttrs) error {
	if err := n.kv.Delete(ctx, n.dn+"/disks", true); err != nil {
		return err
	}
	return n.AddDisks(ctx, disks)
}

// AddDisks writes disk attribute leaves without first deleting the subtree,
// for incremental additions alongside existing siblings (spec §4.4).
func (n *Node) AddDisks(ctx context.Context, disks []DiskAttrs) error {
	for _, d := range disks {
		disk := NewDisk(n.kv, n.dn+"/disks/"+d.Name)
		if err := disk.writeAttrs(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// Networks returns the node's networks, deduplicated by DN.
func (n *Node) Networks(ctx context.Context) ([]*Network, error) {
	keys, err := recurseKeys(ctx, n.kv, n.dn+"/networks")
	if err != nil {
		return nil, err
	}
	return dedupeNetworks(n.kv, n.dn, keys), nil
}

func dedupeNetworks(g kv.Gateway, nodeDN string, keys []string) []*Network {
	seen := map[string]struct{}{}
	var out []*Network
	for _, k := range keys {
		if k == nodeDN+"/networks/" {
			continue
		}
		dn, ok := path.NetworkDN(k)
		if !ok {
			continue
		}
		if _, dup := seen[dn]; dup {
			continue
		}
		seen[dn] = struct{}{}
		out = append(out, NewNetwork(g, dn))
	}
	return out
}

// SetNetworks replaces the node's networks subtree: deletes it, then writes
// the fixed attribute leaves for each supplied network.
func (n *Node) SetNetworks(ctx context.Context, networks []NetworkAttrs) error {
	if err := n.kv.Delete(ctx, n.dn+"/networks", true); err != nil {
		return err
	}
	return n.AddNetworks(ctx, networks)
}

// AddNetworks writes network attribute leaves without first deleting the
// subtree.
func (n *Node) AddNetworks(ctx context.Context, networks []NetworkAttrs) error {
	for _, nw := range networks {
		network := NewNetwork(n.kv, n.dn+"/networks/"+nw.Name)
		if err := network.writeAttrs(ctx, nw); err != nil {
			return err
		}
	}
	return nil
}

// ToMap renders the node's fixed serializable field set.
func (n *Node) ToMap(ctx context.Context) (map[string]string, error) {
	return toMap(ctx, n.entity, []string{
		"name", "status", "cpu", "mem", "host", "id", "address",
		"docker_image", "docker_opts", "port", "clustername", "type",
	})
}

// recurseKeys is Recurse narrowed to its key set, used by every
// navigational property that only cares which children exist (spec §4.2
// "recurse results are consumed only for their key set in many call
// sites"). A missing prefix is not an error here — it means no children.
func recurseKeys(ctx context.Context, g kv.Gateway, prefix string) ([]string, error) {
	m, err := g.Recurse(ctx, prefix)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys, nil
}
