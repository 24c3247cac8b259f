package registry

import (
	"context"

	"github.com/bigdatacesga/registry/pkg/kv"
)

// Network is a scalar-only proxy over a node's network subtree.
type Network struct{ entity }

// NewNetwork constructs a Network proxy for dn without touching the KV store.
func NewNetwork(g kv.Gateway, dn string) *Network {
	return &Network{newEntity(g, dn)}
}

func (n *Network) Name(ctx context.Context) (string, error)    { return n.get(ctx, "name") }
func (n *Network) Device(ctx context.Context) (string, error)  { return n.get(ctx, "device") }
func (n *Network) Bridge(ctx context.Context) (string, error)  { return n.get(ctx, "bridge") }
func (n *Network) Address(ctx context.Context) (string, error) { return n.get(ctx, "address") }
func (n *Network) Netmask(ctx context.Context) (string, error) { return n.get(ctx, "netmask") }
func (n *Network) Gateway(ctx context.Context) (string, error) { return n.get(ctx, "gateway") }

// NetworkAttrs is the shape written for each network in
// Node.SetNetworks/AddNetworks and the shape ToMap serializes.
type NetworkAttrs struct {
	Name    string `json:"name"`
	Device  string `json:"device"`
	Bridge  string `json:"bridge"`
	Address string `json:"address"`
	Netmask string `json:"netmask"`
	Gateway string `json:"gateway"`
}

// ToMap renders the network's fixed serializable field set.
func (n *Network) ToMap(ctx context.Context) (map[string]string, error) {
	return toMap(ctx, n.entity, []string{"name", "device", "bridge", "address", "netmask", "gateway"})
}

func (n *Network) writeAttrs(ctx context.Context, a NetworkAttrs) error {
	for k, v := range map[string]string{
		"name": a.Name, "device": a.Device, "bridge": a.Bridge,
		"address": a.Address, "netmask": a.Netmask, "gateway": a.Gateway,
	} {
		if err := n.set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}
