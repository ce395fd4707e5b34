package monitoring

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awskms"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssns"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssnssubscriptions"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/theory-cloud/webtheory/pkg/observability"
)

// NewAlertTopic creates the single fan-out topic for one deployment.
//
// Every alarm and composite binds its breach transition to this topic;
// there is no per-alarm routing, severity fan-out, or dedup. The topic is
// encrypted with a dedicated key that the metrics backend is allowed to use.
func NewAlertTopic(scope constructs.Construct, name, displayName string) awssns.Topic {
	key := awskms.NewKey(scope, jsii.String("AlertTopicKey"), &awskms.KeyProps{
		EnableKeyRotation: jsii.Bool(true),
	})
	key.AddToResourcePolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Actions: &[]*string{
			jsii.String("kms:Decrypt"),
			jsii.String("kms:GenerateDataKey"),
		},
		Effect: awsiam.Effect_ALLOW,
		Principals: &[]awsiam.IPrincipal{
			awsiam.NewServicePrincipal(jsii.String("cloudwatch.amazonaws.com"), &awsiam.ServicePrincipalOpts{}),
		},
		Resources: &[]*string{jsii.String("*")},
	}), jsii.Bool(true))

	topic := awssns.NewTopic(scope, jsii.String("AlertTopic"), &awssns.TopicProps{
		TopicName:   jsii.String(name),
		DisplayName: jsii.String(displayName),
		MasterKey:   key,
	})
	topic.AddToResourcePolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Actions: &[]*string{jsii.String("sns:Publish")},
		Effect:  awsiam.Effect_ALLOW,
		Principals: &[]awsiam.IPrincipal{
			awsiam.NewServicePrincipal(jsii.String("cloudwatch.amazonaws.com"), &awsiam.ServicePrincipalOpts{}),
		},
		Resources: &[]*string{topic.TopicArn()},
	}))
	return topic
}

// SubscribeEmails subscribes each address to the topic. Addresses come from
// deployment configuration; deliverability is not validated here. An empty
// list is fine: alarms are still defined, nobody is emailed.
func SubscribeEmails(topic awssns.ITopic, emails []string, logger observability.StructuredLogger) {
	if len(emails) == 0 {
		logger.Info("no alert emails configured; topic has no subscriptions")
		return
	}
	for _, addr := range emails {
		topic.AddSubscription(awssnssubscriptions.NewEmailSubscription(jsii.String(addr), &awssnssubscriptions.EmailSubscriptionProps{}))
	}
}
