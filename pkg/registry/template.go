package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v4"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/bigdatacesga/registry/pkg/flatten"
	"github.com/bigdatacesga/registry/pkg/kv"
	"github.com/bigdatacesga/registry/pkg/log"
	"github.com/bigdatacesga/registry/pkg/path"
)

// writeConcurrency bounds the bulk-write fan-out of the instantiate
// pipeline's final step (spec §5, default 8, tunable).
const writeConcurrency = 8

// mergeOptions computes the union of required, optional and advanced
// defaults (each overwriting the previous for duplicate keys, in that
// order) and overlays the caller-supplied options on top.
func mergeOptions(schema OptionSchema, caller map[string]any) map[string]any {
	merged := make(map[string]any)
	for k, v := range schema.Required {
		merged[k] = v
	}
	for k, v := range schema.Optional {
		merged[k] = v
	}
	for k, v := range schema.Advanced {
		merged[k] = v
	}
	for k, v := range caller {
		merged[k] = v
	}
	return merged
}

// validateRequired fails with ErrInvalidOptions if any key of schema.Required
// is absent from caller.
func validateRequired(schema OptionSchema, caller map[string]any) error {
	for name := range schema.Required {
		if _, ok := caller[name]; !ok {
			return fmt.Errorf("%w: missing required option %q", ErrInvalidOptions, name)
		}
	}
	return nil
}

// allocateID implements the id-allocation step: scan the instance prefix,
// take the max of the first path segment below it parsed as an integer
// (non-integer segments count as 0), and return max+1 (or 1 if the prefix
// does not exist yet). Not linearisable: concurrent callers on the same
// prefix may race (spec §5).
func allocateID(ctx context.Context, g kv.Gateway, prefix string) (int, error) {
	keys, err := recurseKeys(ctx, g, prefix)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, k := range keys {
		rest := strings.TrimPrefix(k, prefix+"/")
		if rest == k {
			continue
		}
		seg := rest
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			seg = rest[:i]
		}
		n, err := strconv.Atoi(seg)
		if err != nil {
			n = 0
		}
		if n > max {
			max = n
		}
	}
	return max + 1, nil
}

// render invokes pongo2 on the product's template text with both historical
// binding-set vintages populated (spec §9 "Template variable-name drift").
func render(templateText string, opts map[string]any, user, product, version, dn string) (string, error) {
	tpl, err := pongo2.FromString(templateText)
	if err != nil {
		return "", fmt.Errorf("registry: parse template: %w", err)
	}
	id := path.IDFromDN(dn)
	bindings := pongo2.Context{
		"opts":    opts,
		"user":    user,
		"product": product,
		"version": version,

		"clusterdn": dn,
		"clusterid": id,

		"servicename":  product,
		"instancedn":   dn,
		"instancename": id,
	}
	out, err := tpl.Execute(bindings)
	if err != nil {
		return "", fmt.Errorf("registry: render template: %w", err)
	}
	return out, nil
}

// parseDocument decodes rendered text into the scalar/sequence/mapping
// document shape pkg/flatten expects, per templatetype.
func parseDocument(text string, tt TemplateType) (any, error) {
	switch tt {
	case TemplateJSONJinja2:
		var doc any
		if err := json.Unmarshal([]byte(text), &doc); err != nil {
			return nil, fmt.Errorf("registry: parse rendered json: %w", err)
		}
		return doc, nil
	case TemplateYAMLJinja2:
		var doc any
		if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
			return nil, fmt.Errorf("registry: parse rendered yaml: %w", err)
		}
		return normalizeYAML(doc), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTemplateFormat, tt)
	}
}

// normalizeYAML rewrites the map[string]interface{} / map[interface{}]interface{}
// shapes yaml.v3 can produce into the map[string]any shape pkg/flatten expects.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeYAML(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = normalizeYAML(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = normalizeYAML(vv)
		}
		return out
	default:
		return v
	}
}

// bulkWrite fans writes out across a bounded worker pool and waits for all
// of them, per spec §5. The first error is returned once every in-flight
// write has completed; successful writes are not rolled back.
func bulkWrite(ctx context.Context, g kv.Gateway, kvs map[string]string) error {
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(writeConcurrency)
	for k, v := range kvs {
		k, v := k, v
		grp.Go(func() error {
			return g.Set(ctx, k, v)
		})
	}
	return grp.Wait()
}

// Instantiate materialises a Cluster from a Product and caller-supplied
// options, implementing the ten-step algorithm of spec §4.5.
func Instantiate(ctx context.Context, g kv.Gateway, cfg Config, user, product, version string, options map[string]any) (*Cluster, error) {
	logger := log.WithComponent("registry").With().
		Str("op", "instantiate").Str("user", user).Str("product", product).Str("version", version).Logger()

	productDN := path.Join(cfg.ProductsPrefix, product, version)
	p := NewProduct(g, productDN)
	schema, err := p.Options(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("load product options")
		return nil, err
	}

	if err := validateRequired(schema, options); err != nil {
		logger.Error().Err(err).Msg("validate options")
		return nil, err
	}
	merged := mergeOptions(schema, options)

	prefix := path.Join(cfg.ClustersPrefix, user, product, version)
	id, err := allocateID(ctx, g, prefix)
	if err != nil {
		logger.Error().Err(err).Msg("allocate id")
		return nil, err
	}
	dn := path.Join(prefix, strconv.Itoa(id))

	templateText, err := p.Template(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("load template")
		return nil, err
	}
	tt, err := p.TemplateType(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("load templatetype")
		return nil, err
	}

	rendered, err := render(templateText, merged, user, product, version, dn)
	if err != nil {
		logger.Error().Err(err).Msg("render")
		return nil, err
	}

	doc, err := parseDocument(rendered, tt)
	if err != nil {
		logger.Error().Err(err).Msg("parse rendered document")
		return nil, err
	}

	flat, err := flatten.Flatten(doc, dn)
	if err != nil {
		logger.Error().Err(err).Msg("flatten")
		return nil, err
	}

	if err := bulkWrite(ctx, g, flat); err != nil {
		logger.Error().Err(err).Msg("bulk write")
		return nil, err
	}

	logger.Info().Str("dn", dn).Msg("instantiated")
	return NewCluster(g, dn), nil
}
