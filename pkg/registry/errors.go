package registry

import "errors"

// Failure kinds distinct from kv.ErrNotFound, surfaced by the registry API
// and the proxy entities (spec §7).
var (
	// ErrInvalidOptions is returned by Instantiate when a required option
	// is missing from the caller-supplied options.
	ErrInvalidOptions = errors.New("registry: invalid options")

	// ErrUnsupportedTemplateFormat is returned when a Product's
	// templatetype is not one of the enumerated values.
	ErrUnsupportedTemplateFormat = errors.New("registry: unsupported template format")

	// ErrReadOnlyAttribute is returned when a write is attempted against a
	// protected attribute name.
	ErrReadOnlyAttribute = errors.New("registry: read-only attribute")
)
