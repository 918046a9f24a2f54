package tokens

import "github.com/goliatone/go-tokens/layering"

// Interaction states recognised by state overlays.
const (
	StateDefault  = "default"
	StateHover    = "hover"
	StateActive   = "active"
	StateDisabled = "disabled"
	StateFocus    = "focus"
)

// VariantMap maps component name, then variant name, to a flat mapping of CSS
// properties onto token references.
type VariantMap map[string]map[string]map[string]any

// StateMap maps component name, then interaction state, to a flat mapping of
// CSS properties onto token references.
type StateMap map[string]map[string]map[string]any

// ResolvedProps is the flat property-to-value mapping overlay resolution
// produces.
type ResolvedProps map[string]string

// ResolveVariant resolves every reference in the (component, variant) entry
// against tree. Unknown components or variants yield an empty mapping.
func ResolveVariant(tree Tree, variants VariantMap, component, variant string) ResolvedProps {
	return resolveOverlay(tree, variants[component][variant])
}

// ResolveState resolves every reference in the (component, state) entry
// against tree. Unknown components or states yield an empty mapping.
func ResolveState(tree Tree, states StateMap, component, state string) ResolvedProps {
	return resolveOverlay(tree, states[component][state])
}

func resolveOverlay(tree Tree, props map[string]any) ResolvedProps {
	resolved := make(ResolvedProps, len(props))
	for key, value := range props {
		resolved[key] = ResolveValue(value, tree)
	}
	return resolved
}

// MergeStateProps overlays state properties onto base properties. Properties
// the state does not mention survive from the base. Neither input is mutated.
func MergeStateProps(base, state ResolvedProps) ResolvedProps {
	merged := make(ResolvedProps, len(base)+len(state))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range state {
		merged[key] = value
	}
	return merged
}

// ResolveComponent resolves the full overlay cascade for one component:
// variant properties first, interaction-state properties above them, with any
// responsive values collapsed at the target breakpoint before reference
// resolution.
func ResolveComponent(tree Tree, variants VariantMap, states StateMap, component, variant, state string, target Breakpoint) (ResolvedProps, error) {
	stack, err := layering.CascadeStack(
		rawOverlayProps(variants[component][variant]),
		rawOverlayProps(states[component][state]),
		nil,
	)
	if err != nil {
		return nil, err
	}

	merged := stack.Apply(nil)
	resolved := make(ResolvedProps, len(merged))
	for key, value := range merged {
		value = ResolveResponsiveValue(value, target)
		resolved[key] = ResolveValue(value, tree)
	}
	return resolved, nil
}

func rawOverlayProps(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for key, value := range props {
		out[key] = value
	}
	return out
}

// Breakpoint names a responsive width bucket.
type Breakpoint string

// Mobile-first breakpoints, narrowest first.
const (
	BreakpointBase Breakpoint = "base"
	BreakpointSM   Breakpoint = "sm"
	BreakpointMD   Breakpoint = "md"
	BreakpointLG   Breakpoint = "lg"
	BreakpointXL   Breakpoint = "xl"
	Breakpoint2XL  Breakpoint = "2xl"
)

// BreakpointOrder returns the mobile-first cascade order.
func BreakpointOrder() []Breakpoint {
	return []Breakpoint{
		BreakpointBase,
		BreakpointSM,
		BreakpointMD,
		BreakpointLG,
		BreakpointXL,
		Breakpoint2XL,
	}
}

// IsResponsive reports whether the mapping is shaped like a responsive value:
// a required "base" entry and nothing but breakpoint names for keys.
func IsResponsive(node map[string]any) bool {
	if len(node) == 0 {
		return false
	}
	if _, ok := node[string(BreakpointBase)]; !ok {
		return false
	}
	for key := range node {
		if !isBreakpointName(key) {
			return false
		}
	}
	return true
}

func isBreakpointName(name string) bool {
	for _, bp := range BreakpointOrder() {
		if name == string(bp) {
			return true
		}
	}
	return false
}

// ResolveResponsive resolves a responsive mapping at the target breakpoint
// using the mobile-first cascade: the value of the widest defined breakpoint
// at or below target applies and holds upward. The boolean is false when the
// target is not a known breakpoint or nothing at or below it is defined.
func ResolveResponsive(node map[string]any, target Breakpoint) (any, bool) {
	var (
		value any
		found bool
	)
	for _, bp := range BreakpointOrder() {
		if v, ok := node[string(bp)]; ok {
			value = v
			found = true
		}
		if bp == target {
			return value, found
		}
	}
	return nil, false
}

// ResolveResponsiveValue resolves value at target when it is a responsive
// mapping and returns it unchanged otherwise.
func ResolveResponsiveValue(value any, target Breakpoint) any {
	node, ok := value.(map[string]any)
	if !ok || !IsResponsive(node) {
		return value
	}
	resolved, ok := ResolveResponsive(node, target)
	if !ok {
		return value
	}
	return resolved
}
