package transform

import (
	"encoding/json"
	"fmt"
	"sort"

	tokens "github.com/goliatone/go-tokens"
	"github.com/goliatone/go-tokens/schema"
)

// SchemaDoc emits the generated JSON-Schema document for a token store,
// either unified or split into per-category $defs joined by $ref.
type SchemaDoc struct {
	perCategory bool
	options     []schema.Option
}

// SchemaDocOption configures the schema transformer.
type SchemaDocOption func(*SchemaDoc)

// WithPerCategory splits the document into per-category $defs referenced
// from the root properties.
func WithPerCategory() SchemaDocOption {
	return func(s *SchemaDoc) {
		s.perCategory = true
	}
}

// WithSchemaOptions forwards generation options (draft, title, strictness,
// examples) to the schema generator.
func WithSchemaOptions(opts ...schema.Option) SchemaDocOption {
	return func(s *SchemaDoc) {
		s.options = append(s.options, opts...)
	}
}

// NewSchemaDoc builds the schema transformer.
func NewSchemaDoc(opts ...SchemaDocOption) *SchemaDoc {
	s := &SchemaDoc{}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Name implements Transformer.
func (s *SchemaDoc) Name() string { return "schema" }

// Transform implements Transformer.
func (s *SchemaDoc) Transform(store *tokens.Store) (*Artifact, error) {
	if store == nil {
		return nil, &Error{Transformer: s.Name(), Err: fmt.Errorf("store is required")}
	}

	var doc schema.Document
	if s.perCategory {
		doc = s.buildPerCategory(store)
	} else {
		doc = schema.Generate(store, s.options...)
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, &Error{Transformer: s.Name(), Err: err}
	}
	return &Artifact{
		Name:        "tokens.schema.json",
		ContentType: "application/schema+json",
		Body:        body,
	}, nil
}

// buildPerCategory publishes each category document under $defs and points
// the root properties at them by reference.
func (s *SchemaDoc) buildPerCategory(store *tokens.Store) schema.Document {
	unified := schema.Generate(store, s.options...)
	categories := schema.GenerateCategories(store, s.options...)

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make(map[string]any, len(categories))
	properties := make(map[string]any, len(categories))
	for _, name := range names {
		defs[name] = categories[name]
		properties[name] = map[string]any{
			"$ref": "#/$defs/" + name,
		}
	}

	doc := schema.Document{
		"$schema":    unified["$schema"],
		"title":      unified["title"],
		"type":       "object",
		"properties": properties,
		"$defs":      defs,
	}
	if len(names) > 0 {
		doc["required"] = names
	}
	return doc
}
