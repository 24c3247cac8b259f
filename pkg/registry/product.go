package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bigdatacesga/registry/pkg/kv"
)

// TemplateType enumerates the document formats a Product's rendered
// template may be parsed as.
type TemplateType string

const (
	TemplateJSONJinja2 TemplateType = "json+jinja2"
	TemplateYAMLJinja2 TemplateType = "yaml+jinja2"
)

// OptionSchema is the decoded shape of a Product's stored "options" JSON
// document (spec §4.5).
type OptionSchema struct {
	Required     map[string]any `json:"required"`
	Optional     map[string]any `json:"optional"`
	Advanced     map[string]any `json:"advanced"`
	Descriptions map[string]any `json:"descriptions,omitempty"`
}

// Product is a blueprint: a template, its option schema, and lifecycle
// scripts (spec §3).
type Product struct{ entity }

// NewProduct constructs a Product proxy for dn without touching the KV store.
func NewProduct(g kv.Gateway, dn string) *Product {
	return &Product{newEntity(g, dn)}
}

func (p *Product) Name(ctx context.Context) (string, error)        { return p.get(ctx, "name") }
func (p *Product) Version(ctx context.Context) (string, error)     { return p.get(ctx, "version") }
func (p *Product) Description(ctx context.Context) (string, error) { return p.get(ctx, "description") }
func (p *Product) Template(ctx context.Context) (string, error)    { return p.get(ctx, "template") }
func (p *Product) Orquestrator(ctx context.Context) (string, error) {
	return p.get(ctx, "orquestrator")
}

// TemplateType returns the stored templatetype, or kv.ErrNotFound when it is
// unset. The value is not checked against the enum here.
func (p *Product) TemplateType(ctx context.Context) (TemplateType, error) {
	v, err := p.get(ctx, "templatetype")
	if err != nil {
		return "", err
	}
	return TemplateType(v), nil
}

// OptionsRaw returns the stored options JSON document verbatim.
func (p *Product) OptionsRaw(ctx context.Context) (string, error) { return p.get(ctx, "options") }

// Options decodes the stored options JSON document into an OptionSchema.
func (p *Product) Options(ctx context.Context) (OptionSchema, error) {
	raw, err := p.OptionsRaw(ctx)
	if err != nil {
		return OptionSchema{}, err
	}
	var schema OptionSchema
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		return OptionSchema{}, fmt.Errorf("registry: decode option schema for %s: %w", p.dn, err)
	}
	return schema, nil
}

// ToMap renders the product's fixed serializable field set.
func (p *Product) ToMap(ctx context.Context) (map[string]string, error) {
	return toMap(ctx, p.entity, []string{
		"name", "version", "description", "template", "templatetype", "options", "orquestrator",
	})
}
