package tokens

import "encoding/json"

// NamedTree labels an override tree for provenance reporting.
type NamedTree struct {
	Name string
	Tree Tree
}

// Provenance details how one layer contributed to a traced path.
type Provenance struct {
	Layer string `json:"layer"`
	Value any    `json:"value,omitempty"`
	Found bool   `json:"found"`
}

// MergeTrace captures provenance for one path lookup across the layers that
// produce the effective merged value.
type MergeTrace struct {
	Path   string       `json:"path"`
	Layers []Provenance `json:"layers"`
}

// TracePath inspects the base tree and each override layer at path and
// records which of them define a value there. Layers are reported weakest
// first, matching merge order.
func TracePath(path string, base Tree, overrides ...NamedTree) MergeTrace {
	trace := MergeTrace{
		Path:   path,
		Layers: make([]Provenance, 0, len(overrides)+1),
	}

	value, found := Value(base, path)
	trace.Layers = append(trace.Layers, Provenance{Layer: "base", Value: value, Found: found})

	for _, layer := range overrides {
		value, found := Value(layer.Tree, path)
		trace.Layers = append(trace.Layers, Provenance{Layer: layer.Name, Value: value, Found: found})
	}
	return trace
}

// Effective returns the value the merge would keep at the traced path: the
// strongest layer that defines one. The boolean is false when no layer does.
func (t MergeTrace) Effective() (any, bool) {
	for i := len(t.Layers) - 1; i >= 0; i-- {
		if t.Layers[i].Found {
			return t.Layers[i].Value, true
		}
	}
	return nil, false
}

// ToJSON serialises the trace for logging or transport helpers.
func (t MergeTrace) ToJSON() ([]byte, error) {
	type alias MergeTrace
	return json.Marshal(alias(t))
}

// MergeTraceFromJSON deserialises a payload previously produced by ToJSON.
func MergeTraceFromJSON(payload []byte) (MergeTrace, error) {
	type alias MergeTrace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return MergeTrace{}, err
	}
	return MergeTrace(trace), nil
}
