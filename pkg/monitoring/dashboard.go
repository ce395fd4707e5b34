package monitoring

// WidgetPlan is one named visual group of signals. Left and Right pick the
// axis each signal renders on. Purely presentational.
type WidgetPlan struct {
	Title string
	Left  []Signal
	Right []Signal
	Width int
}

// DashboardPlan is the ordered widget layout. Widget order determines the
// visual stacking order; there is no other invariant.
type DashboardPlan struct {
	Name    string
	Widgets []WidgetPlan
}

const widgetWidth = 12

// assembleDashboard arranges the deployment's signals into the standard
// groups: compute, edge, application errors, security and auth, database.
func assembleDashboard(name string, refs ServiceRefs, signals map[AlarmKind]Signal) DashboardPlan {
	requestCount := Signal{
		Namespace:     "AWS/ApplicationELB",
		MetricName:    "RequestCount",
		Statistic:     StatisticSum,
		PeriodMinutes: 5,
		Dimensions: map[string]string{
			"LoadBalancer": refs.LoadBalancerFullName,
		},
	}

	return DashboardPlan{
		Name: name,
		Widgets: []WidgetPlan{
			{
				Title: "Compute",
				Left:  []Signal{signals[AlarmCPU]},
				Right: []Signal{signals[AlarmMemory]},
				Width: widgetWidth,
			},
			{
				Title: "Edge",
				Left:  []Signal{requestCount},
				Right: []Signal{signals[AlarmResponseTime]},
				Width: widgetWidth,
			},
			{
				Title: "Application Errors",
				Left:  []Signal{signals[AlarmAppErrors], signals[AlarmHealthCheckFailures]},
				Width: widgetWidth,
			},
			{
				Title: "Security & Auth",
				Left:  []Signal{signals[AlarmSecurityEvents], signals[AlarmAuthFailures], signals[AlarmPermissionDenials]},
				Width: widgetWidth,
			},
			{
				Title: "Database Health",
				Left:  []Signal{signals[AlarmDatabaseErrors]},
				Width: widgetWidth,
			},
		},
	}
}
