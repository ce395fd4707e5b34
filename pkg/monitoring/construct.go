package monitoring

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatch"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatchactions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awselasticloadbalancingv2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssns"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/theory-cloud/webtheory/pkg/naming"
	"github.com/theory-cloud/webtheory/pkg/observability"
)

// MonitoringProps wires the monitoring construct to the infrastructure it
// observes.
type MonitoringProps struct {
	Prefix      string
	Environment Environment

	Cluster      awsecs.ICluster
	Service      awsecs.FargateService
	LoadBalancer awselasticloadbalancingv2.ApplicationLoadBalancer
	TargetGroup  awselasticloadbalancingv2.ApplicationTargetGroup

	// LogGroup is the application log group the metric filters read.
	LogGroup awslogs.ILogGroup

	AlertEmails []string
	Logger      observability.StructuredLogger
}

// Monitoring renders the monitoring plan for one environment: metric
// filters, alarms bound to the alert topic, the production service health
// composite, and the overview dashboard.
type Monitoring struct {
	constructs.Construct

	Plan      *Plan
	Topic     awssns.Topic
	Alarms    map[AlarmKind]awscloudwatch.Alarm
	Composite awscloudwatch.CompositeAlarm
	Dashboard awscloudwatch.Dashboard
}

// NewMonitoring builds the plan and renders it. A plan error aborts before
// any resource is defined.
func NewMonitoring(scope constructs.Construct, id string, props *MonitoringProps) (*Monitoring, error) {
	logger := props.Logger
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}

	plan, err := Build(PlanInput{
		Prefix:      props.Prefix,
		Environment: props.Environment,
		Refs: ServiceRefs{
			ClusterName:          *props.Cluster.ClusterName(),
			ServiceName:          *props.Service.ServiceName(),
			LoadBalancerFullName: *props.LoadBalancer.LoadBalancerFullName(),
			TargetGroupFullName:  *props.TargetGroup.TargetGroupFullName(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("monitoring plan for %s: %w", props.Environment, err)
	}

	construct := constructs.NewConstruct(scope, jsii.String(id))
	m := &Monitoring{
		Construct: construct,
		Plan:      plan,
		Alarms:    make(map[AlarmKind]awscloudwatch.Alarm, len(plan.Alarms)),
	}

	m.Topic = NewAlertTopic(construct,
		naming.ResourceName(props.Prefix, "alerts", string(props.Environment)),
		fmt.Sprintf("%s %s alerts", props.Prefix, props.Environment),
	)
	SubscribeEmails(m.Topic, props.AlertEmails, logger)
	action := awscloudwatchactions.NewSnsAction(m.Topic)

	for _, filter := range plan.Filters {
		awslogs.NewMetricFilter(construct, jsii.String("Filter"+filter.MetricName), &awslogs.MetricFilterProps{
			LogGroup:        props.LogGroup,
			FilterPattern:   filterPattern(filter.Match),
			MetricNamespace: jsii.String(filter.Namespace),
			MetricName:      jsii.String(filter.MetricName),
			MetricValue:     jsii.String(fmt.Sprintf("%g", filter.MetricValue)),
			DefaultValue:    jsii.Number(filter.DefaultValue),
		})
	}

	// Each alarm gets its notification action attached immediately after
	// creation, inside the same loop iteration, so no alarm can exist
	// unbound when synthesis completes.
	for _, ap := range plan.Alarms {
		alarm := awscloudwatch.NewAlarm(construct, jsii.String("Alarm"+string(ap.Kind)), &awscloudwatch.AlarmProps{
			AlarmName:          jsii.String(ap.Name),
			AlarmDescription:   jsii.String(ap.Description),
			Metric:             metricFor(ap.Signal),
			Threshold:          jsii.Number(ap.Threshold.Value),
			EvaluationPeriods:  jsii.Number(float64(ap.Threshold.EvaluationPeriods)),
			ComparisonOperator: comparisonOperator(ap.Threshold.Comparison),
			TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
			ActionsEnabled:     jsii.Bool(true),
		})
		alarm.AddAlarmAction(action)
		m.Alarms[ap.Kind] = alarm
	}

	if plan.Composite != nil {
		rules := make([]awscloudwatch.IAlarmRule, 0, len(plan.Composite.AlarmKinds))
		for _, kind := range plan.Composite.AlarmKinds {
			rules = append(rules, awscloudwatch.AlarmRule_FromAlarm(m.Alarms[kind], awscloudwatch.AlarmState_ALARM))
		}
		composite := awscloudwatch.NewCompositeAlarm(construct, jsii.String("ServiceHealthComposite"), &awscloudwatch.CompositeAlarmProps{
			CompositeAlarmName: jsii.String(plan.Composite.Name),
			AlarmDescription:   jsii.String(plan.Composite.Description),
			AlarmRule:          awscloudwatch.AlarmRule_AnyOf(rules...),
		})
		composite.AddAlarmAction(action)
		m.Composite = composite
	}
	if plan.CompositeSkipped {
		logger.Warn("service health composite skipped: constituent alarm missing", map[string]any{
			"environment": string(props.Environment),
		})
	}

	m.Dashboard = awscloudwatch.NewDashboard(construct, jsii.String("Dashboard"), &awscloudwatch.DashboardProps{
		DashboardName: jsii.String(plan.Dashboard.Name),
	})
	for _, widget := range plan.Dashboard.Widgets {
		m.Dashboard.AddWidgets(graphWidget(widget))
	}

	logger.Info("monitoring rendered", map[string]any{
		"environment": string(props.Environment),
		"alarms":      len(plan.Alarms),
		"filters":     len(plan.Filters),
		"composite":   plan.Composite != nil,
	})
	return m, nil
}

func filterPattern(match MatchSpec) awslogs.IFilterPattern {
	if len(match.Terms) > 0 {
		terms := make([]*string, 0, len(match.Terms))
		for _, term := range match.Terms {
			terms = append(terms, jsii.String(term))
		}
		return awslogs.FilterPattern_AnyTerm(terms...)
	}
	return awslogs.FilterPattern_Literal(jsii.String(match.Literal))
}

func metricFor(signal Signal) awscloudwatch.IMetric {
	props := &awscloudwatch.MetricProps{
		Namespace:  jsii.String(signal.Namespace),
		MetricName: jsii.String(signal.MetricName),
		Statistic:  jsii.String(signal.Statistic),
		Period:     awscdk.Duration_Minutes(jsii.Number(float64(signal.PeriodMinutes))),
	}
	if len(signal.Dimensions) > 0 {
		dims := make(map[string]*string, len(signal.Dimensions))
		for name, value := range signal.Dimensions {
			dims[name] = jsii.String(value)
		}
		props.DimensionsMap = &dims
	}
	return awscloudwatch.NewMetric(props)
}

func comparisonOperator(c Comparison) awscloudwatch.ComparisonOperator {
	if c == LessThan {
		return awscloudwatch.ComparisonOperator_LESS_THAN_THRESHOLD
	}
	return awscloudwatch.ComparisonOperator_GREATER_THAN_THRESHOLD
}

func graphWidget(widget WidgetPlan) awscloudwatch.GraphWidget {
	props := &awscloudwatch.GraphWidgetProps{
		Title: jsii.String(widget.Title),
		Width: jsii.Number(float64(widget.Width)),
	}
	if len(widget.Left) > 0 {
		left := make([]awscloudwatch.IMetric, 0, len(widget.Left))
		for _, signal := range widget.Left {
			left = append(left, metricFor(signal))
		}
		props.Left = &left
	}
	if len(widget.Right) > 0 {
		right := make([]awscloudwatch.IMetric, 0, len(widget.Right))
		for _, signal := range widget.Right {
			right = append(right, metricFor(signal))
		}
		props.Right = &right
	}
	return awscloudwatch.NewGraphWidget(props)
}
