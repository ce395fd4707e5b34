package monitoring

// CompositeServiceHealth is the kind segment of the service health
// composite alarm name.
const CompositeServiceHealth = "ServiceHealth"

// CompositePlan combines already-defined alarms into one higher-level
// signal with OR semantics: the composite is breached when any constituent
// is breached. There is no AND, weighted, or N-of-M variant.
type CompositePlan struct {
	Name        string
	Description string
	AlarmKinds  []AlarmKind
}

// Combine builds a composite over the given constituents.
//
// Every constituent must already be present in the registry. If any is
// missing the composite is not created at all: no partial composites. The
// caller decides whether to log the skip; it is not a synthesis failure.
func Combine(name, description string, kinds []AlarmKind, registry *AlarmRegistry) (*CompositePlan, bool) {
	if len(kinds) == 0 {
		return nil, false
	}
	for _, kind := range kinds {
		if _, ok := registry.Lookup(kind); !ok {
			return nil, false
		}
	}
	members := make([]AlarmKind, len(kinds))
	copy(members, kinds)
	return &CompositePlan{
		Name:        name,
		Description: description,
		AlarmKinds:  members,
	}, true
}

// Breached evaluates the composite's OR semantics over a set of constituent
// states. This never runs during synthesis — the metrics backend evaluates
// the deployed composite — but the verify tooling uses it to interpret
// observed alarm states, and it documents the combination rule.
func (c *CompositePlan) Breached(states map[AlarmKind]bool) bool {
	for _, kind := range c.AlarmKinds {
		if states[kind] {
			return true
		}
	}
	return false
}
