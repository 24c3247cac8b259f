package registry

import (
	"context"
	"fmt"

	"github.com/bigdatacesga/registry/pkg/kv"
	"github.com/bigdatacesga/registry/pkg/log"
	"github.com/bigdatacesga/registry/pkg/metrics"
	"github.com/bigdatacesga/registry/pkg/path"
)

// Config names the two top-level prefixes the registry projects its tree
// under (spec §3 "Configurable top-level prefixes").
type Config struct {
	ProductsPrefix string
	ClustersPrefix string
}

// DefaultConfig returns the conventional products/clusters prefix names.
func DefaultConfig() Config {
	return Config{ProductsPrefix: "products", ClustersPrefix: "clusters"}
}

// Registry is the explicit context object every top-level operation hangs
// off: a KV gateway plus the prefix configuration (spec §4.6, §9).
type Registry struct {
	kv  kv.Gateway
	cfg Config
}

// New constructs a Registry bound to g, using cfg's prefixes.
func New(g kv.Gateway, cfg Config) *Registry {
	return &Registry{kv: g, cfg: cfg}
}

// Register stores a Product definition at products/<name>/<version>.
func (r *Registry) Register(ctx context.Context, name, version, description, template, options, orquestrator string, tt TemplateType) (p *Product, err error) {
	defer func() { metrics.ObserveOperation("register", err) }()

	dn := path.Join(r.cfg.ProductsPrefix, name, version)
	logger := log.WithProduct(name, version)

	p = NewProduct(r.kv, dn)
	writes := map[string]string{
		"name":         name,
		"version":      version,
		"description":  description,
		"template":     template,
		"templatetype": string(tt),
		"options":      options,
		"orquestrator": orquestrator,
	}
	for field, value := range writes {
		if err = p.set(ctx, field, value); err != nil {
			logger.Error().Err(err).Str("field", field).Msg("register: write field")
			return nil, fmt.Errorf("registry: register %s: %w", dn, err)
		}
	}
	logger.Info().Str("dn", dn).Msg("registered")
	return p, nil
}

// Deregister removes a Product and its entire subtree.
func (r *Registry) Deregister(ctx context.Context, name, version string) (err error) {
	defer func() { metrics.ObserveOperation("deregister", err) }()

	dn := path.Join(r.cfg.ProductsPrefix, name, version)
	if err = r.kv.Delete(ctx, dn, true); err != nil {
		return fmt.Errorf("registry: deregister %s: %w", dn, err)
	}
	return nil
}

// Instantiate materialises a Cluster from a registered Product (spec §4.5).
func (r *Registry) Instantiate(ctx context.Context, user, product, version string, options map[string]any) (*Cluster, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.InstantiateDuration)

	c, err := Instantiate(ctx, r.kv, r.cfg, user, product, version, options)
	metrics.ObserveOperation("instantiate", err)
	return c, err
}

// Deinstantiate performs a recursive delete of the cluster subtree.
func (r *Registry) Deinstantiate(ctx context.Context, user, product, version string, id int) (err error) {
	defer func() { metrics.ObserveOperation("deinstantiate", err) }()

	dn := r.clusterDN(user, product, version, id)
	if err = r.kv.Delete(ctx, dn, true); err != nil {
		return fmt.Errorf("registry: deinstantiate %s: %w", dn, err)
	}
	return nil
}

func (r *Registry) clusterDN(user, product, version string, id int) string {
	return path.Join(r.cfg.ClustersPrefix, user, product, version, fmt.Sprintf("%d", id))
}

// GetProduct constructs a Product proxy without touching the KV store.
func (r *Registry) GetProduct(name, version string) *Product {
	return NewProduct(r.kv, path.Join(r.cfg.ProductsPrefix, name, version))
}

// GetProductByDN constructs a Product proxy for an already-known DN.
func (r *Registry) GetProductByDN(dn string) *Product {
	return NewProduct(r.kv, dn)
}

// GetCluster constructs a Cluster proxy without touching the KV store.
func (r *Registry) GetCluster(user, product, version string, id int) *Cluster {
	return NewCluster(r.kv, r.clusterDN(user, product, version, id))
}

// GetClusterByDN constructs a Cluster proxy for an already-known DN.
func (r *Registry) GetClusterByDN(dn string) *Cluster {
	return NewCluster(r.kv, dn)
}

// QueryProducts walks products/, optionally narrowed by name and, under a
// name, by version (a version without a name is an error), deduplicating on the first two segments below the prefix
// (spec §4.6). A missing prefix yields an empty result, not an error.
func (r *Registry) QueryProducts(ctx context.Context, name, version string) ([]*Product, error) {
	prefix := r.cfg.ProductsPrefix
	if name != "" {
		prefix = path.Join(prefix, name)
	}
	if version != "" {
		if name == "" {
			return nil, fmt.Errorf("registry: query_products: version filter requires a name")
		}
		prefix = path.Join(prefix, version)
	}

	keys, err := recurseKeys(ctx, r.kv, prefix)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var out []*Product
	for _, k := range keys {
		dn, ok := firstNSegmentsBelow(k, r.cfg.ProductsPrefix, 2)
		if !ok {
			continue
		}
		if _, dup := seen[dn]; dup {
			continue
		}
		seen[dn] = struct{}{}
		out = append(out, NewProduct(r.kv, dn))
	}
	return out, nil
}

// QueryClusters walks clusters/, optionally narrowed hierarchically by
// user, product and version (no holes), deduplicating on the first four
// segments below the prefix. A missing prefix yields an empty result.
func (r *Registry) QueryClusters(ctx context.Context, user, product, version string) ([]*Cluster, error) {
	prefix := r.cfg.ClustersPrefix
	if user != "" {
		prefix = path.Join(prefix, user)
	}
	if product != "" {
		if user == "" {
			return nil, fmt.Errorf("registry: query_clusters: product filter requires a user")
		}
		prefix = path.Join(prefix, product)
	}
	if version != "" {
		if product == "" {
			return nil, fmt.Errorf("registry: query_clusters: version filter requires a product")
		}
		prefix = path.Join(prefix, version)
	}

	keys, err := recurseKeys(ctx, r.kv, prefix)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var out []*Cluster
	for _, k := range keys {
		dn, ok := firstNSegmentsBelow(k, r.cfg.ClustersPrefix, 4)
		if !ok {
			continue
		}
		if _, dup := seen[dn]; dup {
			continue
		}
		seen[dn] = struct{}{}
		out = append(out, NewCluster(r.kv, dn))
	}
	return out, nil
}

// firstNSegmentsBelow returns the prefix joined with the first n path
// segments of k below base, or false if k has fewer than n segments there.
func firstNSegmentsBelow(k, base string, n int) (string, bool) {
	rest := k
	if len(k) > len(base) && k[:len(base)] == base {
		rest = k[len(base):]
	} else {
		return "", false
	}
	for len(rest) > 0 && rest[0] == '/' {
		rest = rest[1:]
	}
	if rest == "" {
		return "", false
	}
	segs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		idx := -1
		for j, c := range rest {
			if c == '/' {
				idx = j
				break
			}
		}
		if idx < 0 {
			segs = append(segs, rest)
			rest = ""
			break
		}
		segs = append(segs, rest[:idx])
		rest = rest[idx+1:]
	}
	if len(segs) < n {
		return "", false
	}
	return path.Join(append([]string{base}, segs...)...), true
}

// Connect replaces the registry's KV gateway with one bound to a new
// endpoint, without disturbing the prefix configuration.
func (r *Registry) Connect(g kv.Gateway) {
	r.kv = g
}

// Default is a process-wide Registry, a convenience default over explicit
// Registry values (spec §9 "global retained only as a convenience
// default"). It must be assigned (via SetDefault) before the package-level
// wrapper functions are used.
var Default *Registry

// SetDefault installs r as the process-wide convenience Registry.
func SetDefault(r *Registry) { Default = r }

func Register(ctx context.Context, name, version, description, template, options, orquestrator string, tt TemplateType) (*Product, error) {
	return Default.Register(ctx, name, version, description, template, options, orquestrator, tt)
}

func Deregister(ctx context.Context, name, version string) error {
	return Default.Deregister(ctx, name, version)
}

// InstantiateCluster is the package-level convenience wrapper for the
// "instantiate" operation; named distinctly from the package-level
// Instantiate helper in template.go, which implements the algorithm itself.
func InstantiateCluster(ctx context.Context, user, product, version string, options map[string]any) (*Cluster, error) {
	return Default.Instantiate(ctx, user, product, version, options)
}

func Deinstantiate(ctx context.Context, user, product, version string, id int) error {
	return Default.Deinstantiate(ctx, user, product, version, id)
}

func GetProduct(name, version string) *Product { return Default.GetProduct(name, version) }

func GetCluster(user, product, version string, id int) *Cluster {
	return Default.GetCluster(user, product, version, id)
}

func QueryProducts(ctx context.Context, name, version string) ([]*Product, error) {
	return Default.QueryProducts(ctx, name, version)
}

func QueryClusters(ctx context.Context, user, product, version string) ([]*Cluster, error) {
	return Default.QueryClusters(ctx, user, product, version)
}

func Connect(g kv.Gateway) { Default.Connect(g) }
