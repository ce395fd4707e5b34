package monitoring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testRefs() ServiceRefs {
	return ServiceRefs{
		ClusterName:          "webtheory-cluster-production",
		ServiceName:          "webtheory-service-production",
		LoadBalancerFullName: "app/webtheory/50dc6c495c0c9188",
		TargetGroupFullName:  "targetgroup/webtheory/73e2d6bc24d8a067",
	}
}

func TestBuildProduction(t *testing.T) {
	t.Parallel()

	plan, err := Build(PlanInput{Prefix: "WebTheory", Environment: Production, Refs: testRefs()})
	require.NoError(t, err)

	require.Len(t, plan.Alarms, 12)
	require.Len(t, plan.Filters, 6)
	require.Equal(t, "WebTheory/production", plan.Namespace)

	byKind := make(map[AlarmKind]AlarmPlan, len(plan.Alarms))
	for _, alarm := range plan.Alarms {
		byKind[alarm.Kind] = alarm
	}

	cpu := byKind[AlarmCPU]
	require.Equal(t, "WebTheory-production-HighCpuUtilization", cpu.Name)
	require.Equal(t, float64(80), cpu.Threshold.Value)
	require.Equal(t, GreaterThan, cpu.Threshold.Comparison)
	require.Equal(t, "AWS/ECS", cpu.Signal.Namespace)
	require.Equal(t, "webtheory-cluster-production", cpu.Signal.Dimensions["ClusterName"])

	tasks := byKind[AlarmTaskCount]
	require.Equal(t, float64(1), tasks.Threshold.Value)
	require.Equal(t, LessThan, tasks.Threshold.Comparison)
	require.Equal(t, "ECS/ContainerInsights", tasks.Signal.Namespace)

	appErrors := byKind[AlarmAppErrors]
	require.Equal(t, float64(5), appErrors.Threshold.Value)
	require.Equal(t, plan.Namespace, appErrors.Signal.Namespace)
	require.Equal(t, MetricAppErrors, appErrors.Signal.MetricName)

	require.NotNil(t, plan.Composite)
	require.False(t, plan.CompositeSkipped)
	require.Equal(t, "WebTheory-production-ServiceHealth", plan.Composite.Name)
	require.Equal(t, []AlarmKind{AlarmTaskCount, AlarmUnhealthyTargets}, plan.Composite.AlarmKinds)
}

func TestBuildStaging(t *testing.T) {
	t.Parallel()

	plan, err := Build(PlanInput{Prefix: "WebTheory", Environment: Staging, Refs: testRefs()})
	require.NoError(t, err)

	require.Len(t, plan.Alarms, 12)
	require.Nil(t, plan.Composite)
	require.False(t, plan.CompositeSkipped)

	byKind := make(map[AlarmKind]AlarmPlan, len(plan.Alarms))
	for _, alarm := range plan.Alarms {
		byKind[alarm.Kind] = alarm
	}

	// Staging is looser than production on the split policies.
	require.Equal(t, float64(85), byKind[AlarmCPU].Threshold.Value)
	require.Equal(t, float64(0.5), byKind[AlarmTaskCount].Threshold.Value)
	require.Equal(t, float64(10), byKind[AlarmAppErrors].Threshold.Value)

	// Uniform policies do not vary.
	require.Equal(t, float64(0), byKind[AlarmUnhealthyTargets].Threshold.Value)
	require.Equal(t, float64(1), byKind[AlarmSecurityEvents].Threshold.Value)

	require.Equal(t, "WebTheory-staging-HighCpuUtilization", byKind[AlarmCPU].Name)
}

func TestBuildIsDeterministic(t *testing.T) {
	t.Parallel()

	in := PlanInput{Prefix: "WebTheory", Environment: Production, Refs: testRefs()}

	first, err := Build(in)
	require.NoError(t, err)
	second, err := Build(in)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestBuildRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := Build(PlanInput{Prefix: "", Environment: Production, Refs: testRefs()})
	require.Error(t, err)

	_, err = Build(PlanInput{Prefix: "WebTheory", Environment: "qa", Refs: testRefs()})
	require.Error(t, err)
}

func TestBuildDashboardLayout(t *testing.T) {
	t.Parallel()

	plan, err := Build(PlanInput{Prefix: "WebTheory", Environment: Production, Refs: testRefs()})
	require.NoError(t, err)

	require.Equal(t, "WebTheory-production-Overview", plan.Dashboard.Name)
	require.Len(t, plan.Dashboard.Widgets, 5)

	titles := make([]string, 0, len(plan.Dashboard.Widgets))
	for _, widget := range plan.Dashboard.Widgets {
		titles = append(titles, widget.Title)
		require.NotEmpty(t, widget.Left, "widget %s has no signals", widget.Title)
	}
	require.Equal(t, []string{"Compute", "Edge", "Application Errors", "Security & Auth", "Database Health"}, titles)

	compute := plan.Dashboard.Widgets[0]
	require.Equal(t, "CPUUtilization", compute.Left[0].MetricName)
	require.Equal(t, "MemoryUtilization", compute.Right[0].MetricName)
}

func TestAlarmRegistry(t *testing.T) {
	t.Parallel()

	registry := NewAlarmRegistry()
	require.Equal(t, 0, registry.Len())

	registry.Register(AlarmPlan{Kind: AlarmCPU, Name: "a"})
	registry.Register(AlarmPlan{Kind: AlarmCPU, Name: "b"})
	require.Equal(t, 1, registry.Len())

	plan, ok := registry.Lookup(AlarmCPU)
	require.True(t, ok)
	require.Equal(t, "b", plan.Name)

	_, ok = registry.Lookup(AlarmMemory)
	require.False(t, ok)
}
