package monitoring

// AlarmRegistry retains alarms by stable identifier within one synthesis
// pass, so composites can reference constituents that were defined earlier.
//
// The registry is scoped to one Monitoring instance. Synthesizing multiple
// environments in parallel requires one registry per environment; they must
// never share state.
type AlarmRegistry struct {
	byKind map[AlarmKind]AlarmPlan
}

func NewAlarmRegistry() *AlarmRegistry {
	return &AlarmRegistry{byKind: make(map[AlarmKind]AlarmPlan)}
}

// Register records an alarm under its kind. Later registrations of the same
// kind overwrite: within one pass that never happens, because kinds are
// unique in the catalog.
func (r *AlarmRegistry) Register(plan AlarmPlan) {
	r.byKind[plan.Kind] = plan
}

// Lookup returns the alarm registered under the given kind.
func (r *AlarmRegistry) Lookup(kind AlarmKind) (AlarmPlan, bool) {
	plan, ok := r.byKind[kind]
	return plan, ok
}

// Len reports how many alarms are registered.
func (r *AlarmRegistry) Len() int {
	return len(r.byKind)
}
