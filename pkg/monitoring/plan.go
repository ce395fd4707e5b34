package monitoring

import (
	"errors"
	"fmt"

	"github.com/theory-cloud/webtheory/pkg/naming"
)

// ServiceRefs carries the identifiers of externally provisioned
// infrastructure the alarms observe. The monitoring core never provisions
// these; it only needs their dimension values.
type ServiceRefs struct {
	ClusterName          string
	ServiceName          string
	LoadBalancerFullName string
	TargetGroupFullName  string
}

// PlanInput selects what to build a monitoring plan for.
type PlanInput struct {
	Prefix      string
	Environment Environment
	Refs        ServiceRefs
}

// AlarmPlan is one fully resolved alarm definition: a named signal paired
// with the threshold resolved for the active environment. Immutable once
// built; evaluation happens later, inside the metrics backend.
type AlarmPlan struct {
	Kind        AlarmKind
	Name        string
	Description string
	Signal      Signal
	Threshold   Threshold
}

// Plan is the complete, deterministic monitoring definition for one
// environment: metric filters, alarms, the optional service health
// composite, and the dashboard layout.
type Plan struct {
	Prefix      string
	Environment Environment
	Namespace   string

	Filters []FilterPlan
	Alarms  []AlarmPlan

	Composite *CompositePlan
	// CompositeSkipped is set when the environment wanted a composite but a
	// constituent alarm was missing from the registry.
	CompositeSkipped bool

	Dashboard DashboardPlan
}

// Build computes the monitoring plan for one environment.
//
// Threshold resolution failures and malformed filter patterns are collected
// across the whole catalog and returned joined, so one broken alarm never
// silently suppresses the definition (and notification binding) of another.
// A non-nil error means the synthesis must abort before provisioning.
func Build(in PlanInput) (*Plan, error) {
	if in.Prefix == "" {
		return nil, errors.New("monitoring: prefix is required")
	}
	if _, err := ParseEnvironment(string(in.Environment)); err != nil {
		return nil, err
	}

	plan := &Plan{
		Prefix:      in.Prefix,
		Environment: in.Environment,
		Namespace:   naming.MetricNamespace(in.Prefix, string(in.Environment)),
	}

	registry := NewAlarmRegistry()
	signals := make(map[AlarmKind]Signal)
	var errs []error

	for _, spec := range catalog() {
		threshold, err := spec.Policy.Resolve(in.Environment)
		if err != nil {
			errs = append(errs, fmt.Errorf("alarm %s: %w", spec.Kind, err))
			continue
		}

		var signal Signal
		if spec.Filter != nil {
			filter, err := CompileFilter(plan.Namespace, spec.Filter.MetricName, spec.Filter.Match)
			if err != nil {
				errs = append(errs, fmt.Errorf("alarm %s: %w", spec.Kind, err))
				continue
			}
			plan.Filters = append(plan.Filters, filter)
			signal = filter.Signal()
		} else {
			signal = spec.Signal(in.Refs)
		}

		alarm := AlarmPlan{
			Kind:        spec.Kind,
			Name:        naming.AlarmName(in.Prefix, string(in.Environment), string(spec.Kind)),
			Description: spec.Description,
			Signal:      signal,
			Threshold:   threshold,
		}
		plan.Alarms = append(plan.Alarms, alarm)
		registry.Register(alarm)
		signals[spec.Kind] = signal
	}

	// The service health composite only exists in production, and only when
	// both constituents made it into the registry.
	if in.Environment == Production {
		composite, ok := Combine(
			naming.AlarmName(in.Prefix, string(in.Environment), CompositeServiceHealth),
			"Service is unhealthy: tasks are missing or targets are failing",
			[]AlarmKind{AlarmTaskCount, AlarmUnhealthyTargets},
			registry,
		)
		if ok {
			plan.Composite = composite
		} else {
			plan.CompositeSkipped = true
		}
	}

	plan.Dashboard = assembleDashboard(
		naming.AlarmName(in.Prefix, string(in.Environment), "Overview"),
		in.Refs,
		signals,
	)

	return plan, errors.Join(errs...)
}
