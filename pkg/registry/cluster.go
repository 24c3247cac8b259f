package registry

import (
	"context"
	"fmt"

	"github.com/bigdatacesga/registry/pkg/kv"
	"github.com/bigdatacesga/registry/pkg/path"
)

// clusterReadOnly are attributes fixed at instantiation time; writing to
// them is a protocol error, not a normal update (spec §4.4, §7).
var clusterReadOnly = map[string]struct{}{"id": {}}

// Cluster is a materialised instance of a Product for a specific user
// (spec §3).
type Cluster struct{ entity }

// NewCluster constructs a Cluster proxy for dn without touching the KV store.
func NewCluster(g kv.Gateway, dn string) *Cluster {
	return &Cluster{newEntity(g, dn)}
}

func (c *Cluster) ID() string { return path.LastSegment(c.dn) }

func (c *Cluster) InstanceName(ctx context.Context) (string, error) {
	return c.get(ctx, "instance_name")
}
func (c *Cluster) Status(ctx context.Context) (string, error) { return c.get(ctx, "status") }

func (c *Cluster) SetInstanceName(ctx context.Context, v string) error {
	return c.set(ctx, "instance_name", v)
}
func (c *Cluster) SetStatus(ctx context.Context, v string) error { return c.set(ctx, "status", v) }

// SetID always fails: the instance id is assigned once by Instantiate and
// is not a writable attribute (spec §4.4 "read-only attribute set").
func (c *Cluster) SetID(ctx context.Context, v string) error {
	return c.setGuarded(ctx, clusterReadOnly, "id", v)
}

// Nodes reconstructs the cluster's member nodes from a prefix scan,
// deduplicated by node DN (spec §4.4).
func (c *Cluster) Nodes(ctx context.Context) ([]*Node, error) {
	keys, err := recurseKeys(ctx, c.kv, c.dn+"/nodes")
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var out []*Node
	for _, k := range keys {
		if k == c.dn+"/nodes/" {
			continue
		}
		dn, ok := path.NodeDN(k)
		if !ok {
			continue
		}
		if _, dup := seen[dn]; dup {
			continue
		}
		seen[dn] = struct{}{}
		out = append(out, NewNode(c.kv, dn))
	}
	return out, nil
}

// Services reconstructs the cluster's services from a prefix scan,
// deduplicated by service DN.
func (c *Cluster) Services(ctx context.Context) ([]*Service, error) {
	keys, err := recurseKeys(ctx, c.kv, c.dn+"/services")
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var out []*Service
	for _, k := range keys {
		if k == c.dn+"/services/" {
			continue
		}
		dn, ok := path.ServiceDN(k)
		if !ok {
			continue
		}
		if _, dup := seen[dn]; dup {
			continue
		}
		seen[dn] = struct{}{}
		out = append(out, NewService(c.kv, dn))
	}
	return out, nil
}

// SetAttributes bulk-writes scalar attributes at the top level of the
// cluster DN.
func (c *Cluster) SetAttributes(ctx context.Context, attrs map[string]string) error {
	for name, value := range attrs {
		if _, ro := clusterReadOnly[name]; ro {
			return fmt.Errorf("%w: %s", ErrReadOnlyAttribute, name)
		}
		if err := c.set(ctx, name, value); err != nil {
			return err
		}
	}
	return nil
}

// ToMap renders the cluster's fixed serializable field set.
func (c *Cluster) ToMap(ctx context.Context) (map[string]string, error) {
	out, err := toMap(ctx, c.entity, []string{"instance_name", "status"})
	if err != nil {
		return nil, err
	}
	out["id"] = c.ID()
	out["dn"] = c.dn
	return out, nil
}
