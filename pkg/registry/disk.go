package registry

import (
	"context"

	"github.com/bigdatacesga/registry/pkg/kv"
)

// Disk is a scalar-only proxy over a node's disk subtree.
type Disk struct{ entity }

// NewDisk constructs a Disk proxy for dn without touching the KV store.
func NewDisk(g kv.Gateway, dn string) *Disk {
	return &Disk{newEntity(g, dn)}
}

func (d *Disk) Name(ctx context.Context) (string, error)        { return d.get(ctx, "name") }
func (d *Disk) Type(ctx context.Context) (string, error)        { return d.get(ctx, "type") }
func (d *Disk) Mode(ctx context.Context) (string, error)        { return d.get(ctx, "mode") }
func (d *Disk) Origin(ctx context.Context) (string, error)      { return d.get(ctx, "origin") }
func (d *Disk) Destination(ctx context.Context) (string, error) { return d.get(ctx, "destination") }

// DiskAttrs is the shape written for each disk in Node.SetDisks/AddDisks
// and the shape ToMap serializes.
type DiskAttrs struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Mode        string `json:"mode"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// ToMap renders the disk's fixed serializable field set.
func (d *Disk) ToMap(ctx context.Context) (map[string]string, error) {
	return toMap(ctx, d.entity, []string{"name", "type", "mode", "origin", "destination"})
}

func (d *Disk) writeAttrs(ctx context.Context, a DiskAttrs) error {
	for k, v := range map[string]string{
		"name": a.Name, "type": a.Type, "mode": a.Mode,
		"origin": a.Origin, "destination": a.Destination,
	} {
		if err := d.set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

func toMap(ctx context.Context, e entity, fields []string) (map[string]string, error) {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		v, err := e.getDefault(ctx, f, "")
		if err != nil {
			return nil, err
		}
		out[f] = v
	}
	return out, nil
}
