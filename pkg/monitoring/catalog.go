package monitoring

// AlarmKind is the stable identifier for one alarm within a deployment.
// It is also the final segment of the rendered alarm name, so renaming a
// kind breaks external dashboards and runbooks.
type AlarmKind string

const (
	AlarmTaskCount           AlarmKind = "TaskCountBelowDesired"
	AlarmCPU                 AlarmKind = "HighCpuUtilization"
	AlarmMemory              AlarmKind = "HighMemoryUtilization"
	AlarmUnhealthyTargets    AlarmKind = "UnhealthyTargets"
	AlarmHTTP5xx             AlarmKind = "Http5xxErrors"
	AlarmResponseTime        AlarmKind = "SlowResponseTime"
	AlarmAppErrors           AlarmKind = "ApplicationErrors"
	AlarmHealthCheckFailures AlarmKind = "HealthCheckFailures"
	AlarmSecurityEvents      AlarmKind = "SecurityEvents"
	AlarmAuthFailures        AlarmKind = "AuthFailures"
	AlarmDatabaseErrors      AlarmKind = "DatabaseErrors"
	AlarmPermissionDenials   AlarmKind = "PermissionDenials"
)

// Derived-signal metric names, one per log-pattern filter.
const (
	MetricAppErrors           = "ApplicationErrorCount"
	MetricHealthCheckFailures = "HealthCheckFailureCount"
	MetricSecurityEvents      = "SecurityEventCount"
	MetricAuthFailures        = "AuthFailureCount"
	MetricDatabaseErrors      = "DatabaseErrorCount"
	MetricPermissionDenials   = "PermissionDenialCount"
)

type filterSpec struct {
	MetricName string
	Match      MatchSpec
}

type alarmSpec struct {
	Kind        AlarmKind
	Description string
	Policy      ThresholdPolicy
	Signal      func(refs ServiceRefs) Signal
	Filter      *filterSpec
}

// catalog is the ordered set of alarms every deployment carries. Order is
// load-bearing for determinism only: alarms are identified by kind, never
// by position.
func catalog() []alarmSpec {
	return []alarmSpec{
		{
			Kind:        AlarmTaskCount,
			Description: "Running task count dropped below the desired count",
			Policy: split(
				Threshold{Value: 1, Comparison: LessThan, EvaluationPeriods: 2},
				Threshold{Value: 0.5, Comparison: LessThan, EvaluationPeriods: 2},
			),
			Signal: func(refs ServiceRefs) Signal {
				return Signal{
					Namespace:     "ECS/ContainerInsights",
					MetricName:    "RunningTaskCount",
					Statistic:     StatisticAverage,
					PeriodMinutes: 1,
					Dimensions: map[string]string{
						"ClusterName": refs.ClusterName,
						"ServiceName": refs.ServiceName,
					},
				}
			},
		},
		{
			Kind:        AlarmCPU,
			Description: "Service CPU utilization is sustained above the threshold",
			Policy: split(
				Threshold{Value: 80, Comparison: GreaterThan, EvaluationPeriods: 3},
				Threshold{Value: 85, Comparison: GreaterThan, EvaluationPeriods: 3},
			),
			Signal: func(refs ServiceRefs) Signal {
				return ecsSignal("CPUUtilization", refs)
			},
		},
		{
			Kind:        AlarmMemory,
			Description: "Service memory utilization is sustained above the threshold",
			Policy: split(
				Threshold{Value: 85, Comparison: GreaterThan, EvaluationPeriods: 3},
				Threshold{Value: 90, Comparison: GreaterThan, EvaluationPeriods: 3},
			),
			Signal: func(refs ServiceRefs) Signal {
				return ecsSignal("MemoryUtilization", refs)
			},
		},
		{
			Kind:        AlarmUnhealthyTargets,
			Description: "Load balancer reports unhealthy targets",
			Policy: uniform(
				Threshold{Value: 0, Comparison: GreaterThan, EvaluationPeriods: 2},
			),
			Signal: func(refs ServiceRefs) Signal {
				return Signal{
					Namespace:     "AWS/ApplicationELB",
					MetricName:    "UnHealthyHostCount",
					Statistic:     StatisticMaximum,
					PeriodMinutes: 1,
					Dimensions: map[string]string{
						"TargetGroup":  refs.TargetGroupFullName,
						"LoadBalancer": refs.LoadBalancerFullName,
					},
				}
			},
		},
		{
			Kind:        AlarmHTTP5xx,
			Description: "5XX responses from targets over five minutes",
			Policy: split(
				Threshold{Value: 10, Comparison: GreaterThan, EvaluationPeriods: 2},
				Threshold{Value: 20, Comparison: GreaterThan, EvaluationPeriods: 2},
			),
			Signal: func(refs ServiceRefs) Signal {
				return albSignal("HTTPCode_Target_5XX_Count", StatisticSum, refs)
			},
		},
		{
			Kind:        AlarmResponseTime,
			Description: "Target response time is above the threshold",
			Policy: split(
				Threshold{Value: 2, Comparison: GreaterThan, EvaluationPeriods: 3},
				Threshold{Value: 5, Comparison: GreaterThan, EvaluationPeriods: 3},
			),
			Signal: func(refs ServiceRefs) Signal {
				return albSignal("TargetResponseTime", StatisticAverage, refs)
			},
		},
		{
			Kind:        AlarmAppErrors,
			Description: "Application error log entries",
			Policy: split(
				Threshold{Value: 5, Comparison: GreaterThan, EvaluationPeriods: 2},
				Threshold{Value: 10, Comparison: GreaterThan, EvaluationPeriods: 2},
			),
			Filter: &filterSpec{
				MetricName: MetricAppErrors,
				Match:      Terms("ERROR", "Exception", "FATAL"),
			},
		},
		{
			Kind:        AlarmHealthCheckFailures,
			Description: "Health check failures reported in application logs",
			Policy: uniform(
				Threshold{Value: 3, Comparison: GreaterThan, EvaluationPeriods: 2},
			),
			Filter: &filterSpec{
				MetricName: MetricHealthCheckFailures,
				Match:      Literal(`[timestamp, level="ERROR", message="*health*"]`),
			},
		},
		{
			Kind:        AlarmSecurityEvents,
			Description: "Security events fire the alarm on first occurrence",
			Policy: uniform(
				Threshold{Value: 1, Comparison: GreaterThan, EvaluationPeriods: 1},
			),
			Filter: &filterSpec{
				MetricName: MetricSecurityEvents,
				Match:      Terms("SECURITY_EVENT", "SECURITY_ALERT"),
			},
		},
		{
			Kind:        AlarmAuthFailures,
			Description: "Authentication failures in application logs",
			Policy: split(
				Threshold{Value: 10, Comparison: GreaterThan, EvaluationPeriods: 2},
				Threshold{Value: 20, Comparison: GreaterThan, EvaluationPeriods: 2},
			),
			Filter: &filterSpec{
				MetricName: MetricAuthFailures,
				Match:      Terms("AUTH_FAILED", "InvalidCredentials", "TokenExpired"),
			},
		},
		{
			Kind:        AlarmDatabaseErrors,
			Description: "Database errors in application logs",
			Policy: split(
				Threshold{Value: 5, Comparison: GreaterThan, EvaluationPeriods: 2},
				Threshold{Value: 10, Comparison: GreaterThan, EvaluationPeriods: 2},
			),
			Filter: &filterSpec{
				MetricName: MetricDatabaseErrors,
				Match:      Terms("DatabaseError", "ECONNREFUSED", "deadlock detected"),
			},
		},
		{
			Kind:        AlarmPermissionDenials,
			Description: "Permission denials in application logs",
			Policy: split(
				Threshold{Value: 20, Comparison: GreaterThan, EvaluationPeriods: 2},
				Threshold{Value: 40, Comparison: GreaterThan, EvaluationPeriods: 2},
			),
			Filter: &filterSpec{
				MetricName: MetricPermissionDenials,
				Match:      Terms("PermissionDenied", "AccessDenied"),
			},
		},
	}
}

func ecsSignal(metricName string, refs ServiceRefs) Signal {
	return Signal{
		Namespace:     "AWS/ECS",
		MetricName:    metricName,
		Statistic:     StatisticAverage,
		PeriodMinutes: 5,
		Dimensions: map[string]string{
			"ClusterName": refs.ClusterName,
			"ServiceName": refs.ServiceName,
		},
	}
}

func albSignal(metricName, statistic string, refs ServiceRefs) Signal {
	return Signal{
		Namespace:     "AWS/ApplicationELB",
		MetricName:    metricName,
		Statistic:     statistic,
		PeriodMinutes: 5,
		Dimensions: map[string]string{
			"LoadBalancer": refs.LoadBalancerFullName,
		},
	}
}
