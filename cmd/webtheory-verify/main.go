// Command webtheory-verify checks a deployed environment against the
// monitoring definitions the infrastructure code would synthesize: every
// expected alarm exists, every alarm has a notification action, the
// production composite exists, and the alert topic has confirmed
// subscriptions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/theory-cloud/webtheory/pkg/monitoring"
	"github.com/theory-cloud/webtheory/pkg/naming"
)

func main() {
	os.Exit(run())
}

func run() int {
	var app string
	var environment string
	var region string
	var timeout time.Duration

	flag.StringVar(&app, "app", "WebTheory", "application prefix used in alarm names")
	flag.StringVar(&environment, "environment", "", "environment to verify (staging, production)")
	flag.StringVar(&region, "region", "", "AWS region (defaults to the SDK config chain)")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	env, err := monitoring.ParseEnvironment(environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "webtheory-verify: FAIL: %v\n", err)
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "webtheory-verify: FAIL: %v\n", err)
		return 2
	}

	findings, err := verify(ctx, cloudwatch.NewFromConfig(cfg), sns.NewFromConfig(cfg), app, env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "webtheory-verify: FAIL: %v\n", err)
		return 2
	}
	if len(findings) > 0 {
		for _, finding := range findings {
			fmt.Fprintf(os.Stderr, "webtheory-verify: %s\n", finding)
		}
		fmt.Fprintf(os.Stderr, "webtheory-verify: %d finding(s)\n", len(findings))
		return 1
	}
	fmt.Printf("webtheory-verify: %s/%s ok\n", app, env)
	return 0
}

type alarmAPI interface {
	DescribeAlarms(ctx context.Context, params *cloudwatch.DescribeAlarmsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.DescribeAlarmsOutput, error)
}

type topicAPI interface {
	ListSubscriptionsByTopic(ctx context.Context, params *sns.ListSubscriptionsByTopicInput, optFns ...func(*sns.Options)) (*sns.ListSubscriptionsByTopicOutput, error)
}

// verify compares deployed alarms to the definitions Build would produce.
// The plan's alarm names depend only on the prefix and environment, not on
// the deployed resource identifiers.
func verify(ctx context.Context, cw alarmAPI, topics topicAPI, app string, env monitoring.Environment) ([]string, error) {
	plan, err := monitoring.Build(monitoring.PlanInput{Prefix: app, Environment: env})
	if err != nil {
		return nil, err
	}

	deployed, err := describeByPrefix(ctx, cw, naming.AlarmName(app, string(env), ""))
	if err != nil {
		return nil, err
	}

	var findings []string
	var topicArn string

	for _, expected := range plan.Alarms {
		alarm, ok := deployed.metric[expected.Name]
		if !ok {
			findings = append(findings, fmt.Sprintf("alarm %s: not deployed", expected.Name))
			continue
		}
		if len(alarm.AlarmActions) == 0 {
			findings = append(findings, fmt.Sprintf("alarm %s: no notification action bound", expected.Name))
		} else if topicArn == "" {
			topicArn = alarm.AlarmActions[0]
		}
		if alarm.Threshold != nil && *alarm.Threshold != expected.Threshold.Value {
			findings = append(findings, fmt.Sprintf("alarm %s: threshold %v, expected %v", expected.Name, *alarm.Threshold, expected.Threshold.Value))
		}
	}

	if plan.Composite != nil {
		composite, ok := deployed.composite[plan.Composite.Name]
		switch {
		case !ok:
			findings = append(findings, fmt.Sprintf("composite %s: not deployed", plan.Composite.Name))
		case len(composite.AlarmActions) == 0:
			findings = append(findings, fmt.Sprintf("composite %s: no notification action bound", plan.Composite.Name))
		}
	} else {
		for name := range deployed.composite {
			findings = append(findings, fmt.Sprintf("composite %s: deployed but not expected in %s", name, env))
		}
	}

	if topicArn != "" {
		confirmed, pending, err := countSubscriptions(ctx, topics, topicArn)
		if err != nil {
			return nil, err
		}
		if confirmed == 0 {
			findings = append(findings, fmt.Sprintf("topic %s: no confirmed subscriptions (%d pending)", topicArn, pending))
		}
	}

	return findings, nil
}

type deployedAlarms struct {
	metric    map[string]cwtypes.MetricAlarm
	composite map[string]cwtypes.CompositeAlarm
}

func describeByPrefix(ctx context.Context, cw alarmAPI, prefix string) (deployedAlarms, error) {
	deployed := deployedAlarms{
		metric:    make(map[string]cwtypes.MetricAlarm),
		composite: make(map[string]cwtypes.CompositeAlarm),
	}

	input := &cloudwatch.DescribeAlarmsInput{
		AlarmNamePrefix: &prefix,
		AlarmTypes:      []cwtypes.AlarmType{cwtypes.AlarmTypeMetricAlarm, cwtypes.AlarmTypeCompositeAlarm},
	}
	for {
		out, err := cw.DescribeAlarms(ctx, input)
		if err != nil {
			return deployedAlarms{}, fmt.Errorf("describe alarms: %w", err)
		}
		for _, alarm := range out.MetricAlarms {
			if alarm.AlarmName != nil {
				deployed.metric[*alarm.AlarmName] = alarm
			}
		}
		for _, alarm := range out.CompositeAlarms {
			if alarm.AlarmName != nil {
				deployed.composite[*alarm.AlarmName] = alarm
			}
		}
		if out.NextToken == nil {
			return deployed, nil
		}
		input.NextToken = out.NextToken
	}
}

func countSubscriptions(ctx context.Context, topics topicAPI, topicArn string) (confirmed, pending int, err error) {
	input := &sns.ListSubscriptionsByTopicInput{TopicArn: &topicArn}
	for {
		out, err := topics.ListSubscriptionsByTopic(ctx, input)
		if err != nil {
			return 0, 0, fmt.Errorf("list subscriptions: %w", err)
		}
		for _, sub := range out.Subscriptions {
			if sub.SubscriptionArn == nil || *sub.SubscriptionArn == "PendingConfirmation" {
				pending++
				continue
			}
			confirmed++
		}
		if out.NextToken == nil {
			return confirmed, pending, nil
		}
		input.NextToken = out.NextToken
	}
}
