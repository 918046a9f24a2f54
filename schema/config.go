package schema

// Draft selects the JSON Schema dialect declared by generated documents.
type Draft string

const (
	// Draft07 is the classic draft-07 dialect.
	Draft07 Draft = "http://json-schema.org/draft-07/schema#"
	// Draft202012 is the 2020-12 dialect.
	Draft202012 Draft = "https://json-schema.org/draft/2020-12/schema"
)

type generatorConfig struct {
	draft    Draft
	title    string
	strict   bool
	examples bool
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{
		draft:    Draft07,
		title:    "Design Tokens",
		examples: true,
	}
}

// Option configures schema generation.
type Option func(*generatorConfig)

// WithDraft selects the schema dialect. Empty drafts retain the default.
func WithDraft(draft Draft) Option {
	return func(cfg *generatorConfig) {
		if draft != "" {
			cfg.draft = draft
		}
	}
}

// WithTitle overrides the document title. Empty titles retain the default.
func WithTitle(title string) Option {
	return func(cfg *generatorConfig) {
		if title != "" {
			cfg.title = title
		}
	}
}

// WithStrict closes every object schema with additionalProperties: false.
func WithStrict() Option {
	return func(cfg *generatorConfig) {
		cfg.strict = true
	}
}

// WithoutExamples omits illustrative examples from leaf schemas.
func WithoutExamples() Option {
	return func(cfg *generatorConfig) {
		cfg.examples = false
	}
}
