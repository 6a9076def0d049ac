package tui

import (
	"fmt"
	"strings"
)

// State tracks collected values keyed by dotted paths ("photo.base64") and
// the server-provided errors for them.
type State struct {
	values map[string]any
	errors map[string][]string
}

// NewState seeds the state with prefilled values and errors. Prefilled values
// may be flat dotted keys or nested maps.
func NewState(prefill map[string]any, errs map[string][]string) *State {
	s := &State{
		values: make(map[string]any),
		errors: make(map[string][]string, len(errs)),
	}
	for key, value := range prefill {
		_ = s.SetValue(key, deepCopy(value))
	}
	for key, messages := range errs {
		s.errors[key] = append([]string(nil), messages...)
	}
	return s
}

// Values returns the current nested value map (mutable).
func (s *State) Values() map[string]any {
	if s == nil {
		return nil
	}
	return s.values
}

// ErrorsFor returns the errors attached to a dotted path.
func (s *State) ErrorsFor(path string) []string {
	if s == nil || len(s.errors) == 0 {
		return nil
	}
	return s.errors[path]
}

// GetValue resolves a dotted path into the values map.
func (s *State) GetValue(path string) (any, bool) {
	if s == nil || path == "" {
		return nil, false
	}
	var current any = s.values
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = node[segment]; !ok {
			return nil, false
		}
	}
	return current, true
}

// SetValue writes a value using a dotted path, creating intermediate maps as
// needed.
func (s *State) SetValue(path string, value any) error {
	if s == nil {
		return fmt.Errorf("tui: state is nil")
	}
	if path == "" {
		return fmt.Errorf("tui: empty value path")
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	segments := strings.Split(path, ".")
	node := s.values
	for _, segment := range segments[:len(segments)-1] {
		child, ok := node[segment].(map[string]any)
		if !ok {
			if _, exists := node[segment]; exists {
				return fmt.Errorf("tui: %q is not an object in path %q", segment, path)
			}
			child = make(map[string]any)
			node[segment] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = value
	return nil
}

func deepCopy(value any) any {
	typed, ok := value.(map[string]any)
	if !ok {
		return value
	}
	clone := make(map[string]any, len(typed))
	for k, v := range typed {
		clone[k] = deepCopy(v)
	}
	return clone
}
