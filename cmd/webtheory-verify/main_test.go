package main

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/stretchr/testify/require"

	"github.com/theory-cloud/webtheory/pkg/monitoring"
)

const testTopicArn = "arn:aws:sns:eu-west-1:123456789012:webtheory-alerts-production"

type fakeAlarms struct {
	metric    []cwtypes.MetricAlarm
	composite []cwtypes.CompositeAlarm
}

func (f *fakeAlarms) DescribeAlarms(_ context.Context, _ *cloudwatch.DescribeAlarmsInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.DescribeAlarmsOutput, error) {
	return &cloudwatch.DescribeAlarmsOutput{
		MetricAlarms:    f.metric,
		CompositeAlarms: f.composite,
	}, nil
}

type fakeTopics struct {
	subscriptions []snstypes.Subscription
}

func (f *fakeTopics) ListSubscriptionsByTopic(_ context.Context, _ *sns.ListSubscriptionsByTopicInput, _ ...func(*sns.Options)) (*sns.ListSubscriptionsByTopicOutput, error) {
	return &sns.ListSubscriptionsByTopicOutput{Subscriptions: f.subscriptions}, nil
}

// fullyDeployed mirrors what a healthy production deployment looks like.
func fullyDeployed(t *testing.T) *fakeAlarms {
	t.Helper()

	plan, err := monitoring.Build(monitoring.PlanInput{Prefix: "WebTheory", Environment: monitoring.Production})
	require.NoError(t, err)

	f := &fakeAlarms{}
	for _, alarm := range plan.Alarms {
		f.metric = append(f.metric, cwtypes.MetricAlarm{
			AlarmName:    aws.String(alarm.Name),
			AlarmActions: []string{testTopicArn},
			Threshold:    aws.Float64(alarm.Threshold.Value),
		})
	}
	f.composite = append(f.composite, cwtypes.CompositeAlarm{
		AlarmName:    aws.String(plan.Composite.Name),
		AlarmActions: []string{testTopicArn},
	})
	return f
}

func confirmedTopics() *fakeTopics {
	return &fakeTopics{subscriptions: []snstypes.Subscription{
		{SubscriptionArn: aws.String(testTopicArn + ":deadbeef")},
	}}
}

func TestVerifyHealthyProduction(t *testing.T) {
	t.Parallel()

	findings, err := verify(context.Background(), fullyDeployed(t), confirmedTopics(), "WebTheory", monitoring.Production)
	require.NoError(t, err)
	require.Empty(t, findings)
}

func TestVerifyReportsMissingAlarm(t *testing.T) {
	t.Parallel()

	deployed := fullyDeployed(t)
	deployed.metric = deployed.metric[1:]

	findings, err := verify(context.Background(), deployed, confirmedTopics(), "WebTheory", monitoring.Production)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.Contains(t, findings[0], "not deployed")
}

func TestVerifyReportsUnboundAlarm(t *testing.T) {
	t.Parallel()

	deployed := fullyDeployed(t)
	deployed.metric[0].AlarmActions = nil

	findings, err := verify(context.Background(), deployed, confirmedTopics(), "WebTheory", monitoring.Production)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.Contains(t, findings[0], "no notification action bound")
}

func TestVerifyReportsThresholdDrift(t *testing.T) {
	t.Parallel()

	deployed := fullyDeployed(t)
	deployed.metric[0].Threshold = aws.Float64(999)

	findings, err := verify(context.Background(), deployed, confirmedTopics(), "WebTheory", monitoring.Production)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.Contains(t, findings[0], "threshold")
}

func TestVerifyReportsMissingComposite(t *testing.T) {
	t.Parallel()

	deployed := fullyDeployed(t)
	deployed.composite = nil

	findings, err := verify(context.Background(), deployed, confirmedTopics(), "WebTheory", monitoring.Production)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.Contains(t, findings[0], "composite")
}

func TestVerifyReportsUnexpectedCompositeInStaging(t *testing.T) {
	t.Parallel()

	plan, err := monitoring.Build(monitoring.PlanInput{Prefix: "WebTheory", Environment: monitoring.Staging})
	require.NoError(t, err)

	deployed := &fakeAlarms{}
	for _, alarm := range plan.Alarms {
		deployed.metric = append(deployed.metric, cwtypes.MetricAlarm{
			AlarmName:    aws.String(alarm.Name),
			AlarmActions: []string{testTopicArn},
			Threshold:    aws.Float64(alarm.Threshold.Value),
		})
	}
	deployed.composite = []cwtypes.CompositeAlarm{
		{AlarmName: aws.String("WebTheory-staging-ServiceHealth"), AlarmActions: []string{testTopicArn}},
	}

	findings, err := verify(context.Background(), deployed, confirmedTopics(), "WebTheory", monitoring.Staging)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.True(t, strings.Contains(findings[0], "not expected"))
}

func TestVerifyReportsUnconfirmedSubscriptions(t *testing.T) {
	t.Parallel()

	pending := &fakeTopics{subscriptions: []snstypes.Subscription{
		{SubscriptionArn: aws.String("PendingConfirmation")},
	}}

	findings, err := verify(context.Background(), fullyDeployed(t), pending, "WebTheory", monitoring.Production)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.Contains(t, findings[0], "no confirmed subscriptions")
}
