package registry

import (
	"context"
	"fmt"

	"github.com/bigdatacesga/registry/pkg/kv"
	"github.com/bigdatacesga/registry/pkg/path"
)

// Service is a logical service deployed across nodes (spec §3).
type Service struct{ entity }

// NewService constructs a Service proxy for dn without touching the KV store.
func NewService(g kv.Gateway, dn string) *Service {
	return &Service{newEntity(g, dn)}
}

func (s *Service) Name(ctx context.Context) (string, error)   { return s.get(ctx, "name") }
func (s *Service) Status(ctx context.Context) (string, error) { return s.get(ctx, "status") }

func (s *Service) SetName(ctx context.Context, v string) error   { return s.set(ctx, "name", v) }
func (s *Service) SetStatus(ctx context.Context, v string) error { return s.set(ctx, "status", v) }

// Attr reads an arbitrary product-specific scalar (e.g. "heap", "workers",
// "dfs.blocksize").
func (s *Service) Attr(ctx context.Context, name string) (string, error) { return s.get(ctx, name) }

// SetAttr writes an arbitrary product-specific scalar.
func (s *Service) SetAttr(ctx context.Context, name, value string) error {
	return s.set(ctx, name, value)
}

// Cluster resolves the enclosing Cluster proxy.
func (s *Service) Cluster() (*Cluster, error) {
	dn, ok := path.ClusterDN(s.dn)
	if !ok {
		return nil, fmt.Errorf("registry: %s does not sit under a cluster DN", s.dn)
	}
	return NewCluster(s.kv, dn), nil
}

// Nodes dereferences the service's node membership leaves into full Node
// proxies under the enclosing cluster.
func (s *Service) Nodes(ctx context.Context) ([]*Node, error) {
	keys, err := recurseKeys(ctx, s.kv, s.dn+"/nodes")
	if err != nil {
		return nil, err
	}
	clusterDN, ok := path.ClusterDN(s.dn)
	if !ok {
		return nil, fmt.Errorf("registry: %s does not sit under a cluster DN", s.dn)
	}

	seen := map[string]struct{}{}
	var out []*Node
	for _, k := range keys {
		seg := path.LastSegment(k)
		if seg == "" {
			continue
		}
		nodeDN := path.Join(clusterDN, "nodes", seg)
		if _, ok := seen[nodeDN]; ok {
			continue
		}
		seen[nodeDN] = struct{}{}
		out = append(out, NewNode(s.kv, nodeDN))
	}
	return out, nil
}

// SetNodes replaces the service's node membership subtree: deletes it, then
// writes one empty-valued leaf per node.
func (s *Service) SetNodes(ctx context.Context, nodes []*Node) error {
	if err := s.kv.Delete(ctx, s.dn+"/nodes", true); err != nil {
		return err
	}
	for _, n := range nodes {
		leaf := s.dn + "/nodes/" + path.LastSegment(n.DN())
		if err := s.kv.Set(ctx, leaf, ""); err != nil {
			return err
		}
	}
	return nil
}

// ToMap renders the service's fixed serializable field set.
func (s *Service) ToMap(ctx context.Context) (map[string]string, error) {
	return toMap(ctx, s.entity, []string{"name", "status"})
}
