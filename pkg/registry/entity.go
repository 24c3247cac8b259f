package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/bigdatacesga/registry/pkg/kv"
	"github.com/bigdatacesga/registry/pkg/path"
)

// entity is the shared shape of every proxy: a DN string and a KV gateway.
// Proxies own nothing beyond their DN — every attribute read/write is a
// direct KV round-trip (spec §4.4, §3 "Ownership and lifecycle").
type entity struct {
	dn string
	kv kv.Gateway
}

func newEntity(g kv.Gateway, dn string) entity {
	return entity{dn: path.Clean(dn), kv: g}
}

// DN returns the entity's distinguished name.
func (e entity) DN() string { return e.dn }

// String renders the entity as its DN.
func (e entity) String() string { return e.dn }

// DNer is anything identifiable by a distinguished name, the shared
// contract Equal and Less compare on.
type DNer interface{ DN() string }

// Equal reports whether two entities name the same DN.
func (e entity) Equal(other DNer) bool { return e.dn == other.DN() }

// Less orders entities lexicographically by DN.
func (e entity) Less(other DNer) bool { return e.dn < other.DN() }

// get reads a scalar attribute, surfacing kv.ErrNotFound unchanged.
func (e entity) get(ctx context.Context, name string) (string, error) {
	return e.kv.Get(ctx, e.dn+"/"+name)
}

// getDefault reads a scalar attribute, returning def when the key does not
// exist. Any other error propagates unchanged (spec §7: failures propagate;
// the default is documented only for the not-found case).
func (e entity) getDefault(ctx context.Context, name, def string) (string, error) {
	v, err := e.get(ctx, name)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return def, nil
		}
		return "", err
	}
	return v, nil
}

// set writes a scalar attribute.
func (e entity) set(ctx context.Context, name, value string) error {
	return e.kv.Set(ctx, e.dn+"/"+name, value)
}

// setGuarded writes a scalar attribute unless name is in the read-only set.
func (e entity) setGuarded(ctx context.Context, readOnly map[string]struct{}, name, value string) error {
	if _, ok := readOnly[name]; ok {
		return fmt.Errorf("%w: %s", ErrReadOnlyAttribute, name)
	}
	return e.set(ctx, name, value)
}

func isNotFound(err error) bool {
	return errors.Is(err, kv.ErrNotFound)
}
