package permissions

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Set is a total function Capability -> bool. Missing entries are false.
type Set map[Capability]bool

func (s Set) Has(c Capability) bool {
	if !c.Valid() {
		return false
	}
	return s[c]
}

// Full returns a set with every capability enabled.
func Full() Set {
	s := make(Set, len(All))
	for _, c := range All {
		s[c] = true
	}
	return s
}

// Normalize drops unknown names and fills every capability, so the JSON
// form always lists the complete row.
func (s Set) Normalize() Set {
	out := make(Set, len(All))
	for _, c := range All {
		out[c] = s[c]
	}
	return out
}

// UnmarshalJSON accepts booleans and the "true"/"false" strings the stored
// rows and older clients carry. Anything else is false.
func (s *Set) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("permission set: %w", err)
	}
	out := make(Set, len(raw))
	for name, v := range raw {
		c := Capability(strings.ToLower(name))
		if !c.Valid() {
			continue
		}
		out[c] = truthy(v)
	}
	*s = out
	return nil
}

func truthy(v json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return b
	}
	var str string
	if err := json.Unmarshal(v, &str); err == nil {
		return strings.EqualFold(strings.TrimSpace(str), "true")
	}
	return false
}
