package waf

import (
	"errors"
	"fmt"
)

// ErrUnresolved marks an identifier that has no usable value yet.
var ErrUnresolved = errors.New("waf: identifier not resolved")

// Identifier references an external resource by ARN-like value.
//
// Cross-stack references cannot always be resolved at synthesis time. An
// unresolved identifier keeps the rule-set definition valid for synthesis
// but requires a later binding pass before the resource can be associated;
// it is never silently embedded as a placeholder string.
type Identifier struct {
	value    string
	resolved bool
}

// NewIdentifier builds a resolved identifier.
func NewIdentifier(value string) Identifier {
	return Identifier{value: value, resolved: true}
}

// UnresolvedIdentifier builds an identifier that a later binding pass must
// fill in. The hint names what the identifier will eventually point at.
func UnresolvedIdentifier(hint string) Identifier {
	return Identifier{value: hint}
}

// IsResolved reports whether the identifier carries a usable value.
func (id Identifier) IsResolved() bool {
	return id.resolved
}

// Value returns the resolved value, or ErrUnresolved.
func (id Identifier) Value() (string, error) {
	if !id.resolved {
		return "", fmt.Errorf("%w: %s", ErrUnresolved, id.value)
	}
	return id.value, nil
}

// ResolvedValue returns the value when the identifier is resolved, and the
// empty string otherwise. Callers that have not checked IsResolved should
// use Value instead.
func (id Identifier) ResolvedValue() string {
	if !id.resolved {
		return ""
	}
	return id.value
}

// Hint names what an unresolved identifier will point at. Empty for
// resolved identifiers.
func (id Identifier) Hint() string {
	if id.resolved {
		return ""
	}
	return id.value
}
