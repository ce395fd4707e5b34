package stacks

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapplicationautoscaling"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecr"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awselasticloadbalancingv2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53targets"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssecretsmanager"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/theory-cloud/webtheory/pkg/config"
	"github.com/theory-cloud/webtheory/pkg/monitoring"
	"github.com/theory-cloud/webtheory/pkg/naming"
	"github.com/theory-cloud/webtheory/pkg/observability"
	"github.com/theory-cloud/webtheory/pkg/waf"
)

// WebServiceStackProps carries everything one environment's service needs.
type WebServiceStackProps struct {
	awscdk.StackProps

	AppName     string
	Environment monitoring.Environment
	Config      config.EnvironmentConfig
	Vpc         awsec2.IVpc
	Logger      observability.StructuredLogger
}

// WebServiceStack is the full per-environment deployment: the Fargate
// service behind a load balancer, its autoscaling, the monitoring plan and
// the web ACL.
type WebServiceStack struct {
	awscdk.Stack

	Cluster      awsecs.Cluster
	Service      awsecs.FargateService
	LoadBalancer awselasticloadbalancingv2.ApplicationLoadBalancer
	TargetGroup  awselasticloadbalancingv2.ApplicationTargetGroup
	LogGroup     awslogs.LogGroup
	Repository   awsecr.Repository

	Monitoring *monitoring.Monitoring
	Waf        *waf.WafProtection
}

func NewWebServiceStack(scope constructs.Construct, id string, props *WebServiceStackProps) (*WebServiceStack, error) {
	logger := props.Logger
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}
	env := string(props.Environment)
	svc := props.Config.Service

	stack := awscdk.NewStack(scope, jsii.String(id), &props.StackProps)
	s := &WebServiceStack{Stack: stack}

	s.Cluster = awsecs.NewCluster(stack, jsii.String("Cluster"), &awsecs.ClusterProps{
		Vpc:         props.Vpc,
		ClusterName: jsii.String(naming.ResourceName(props.AppName, "cluster", env)),
		// Container Insights feeds the task count alarm; detailed
		// monitoring toggles it per environment.
		ContainerInsights: jsii.Bool(props.Config.EnableDetailedMonitoring),
	})

	s.LogGroup = awslogs.NewLogGroup(stack, jsii.String("AppLogs"), &awslogs.LogGroupProps{
		LogGroupName:  jsii.String("/ecs/" + naming.ResourceName(props.AppName, "app", env)),
		Retention:     awslogs.RetentionDays_ONE_MONTH,
		RemovalPolicy: awscdk.RemovalPolicy_DESTROY,
	})

	s.Repository = awsecr.NewRepository(stack, jsii.String("Repository"), &awsecr.RepositoryProps{
		RepositoryName: jsii.String(naming.ResourceName(props.AppName, "app", env)),
	})

	appSecret := awssecretsmanager.NewSecret(stack, jsii.String("AppSecret"), &awssecretsmanager.SecretProps{
		SecretName:  jsii.String(naming.ResourceName(props.AppName, "app-secret", env)),
		Description: jsii.String("Application runtime secret, injected into the container"),
	})

	taskDef := awsecs.NewFargateTaskDefinition(stack, jsii.String("TaskDef"), &awsecs.FargateTaskDefinitionProps{
		Cpu:            jsii.Number(float64(svc.CPU)),
		MemoryLimitMiB: jsii.Number(float64(svc.MemoryMiB)),
	})
	taskDef.AddContainer(jsii.String("app"), &awsecs.ContainerDefinitionOptions{
		Image: awsecs.ContainerImage_FromEcrRepository(s.Repository, jsii.String("latest")),
		Logging: awsecs.LogDrivers_AwsLogs(&awsecs.AwsLogDriverProps{
			LogGroup:     s.LogGroup,
			StreamPrefix: jsii.String("app"),
		}),
		PortMappings: &[]*awsecs.PortMapping{
			{ContainerPort: jsii.Number(float64(svc.ContainerPort))},
		},
		Environment: &map[string]*string{
			"ENVIRONMENT": jsii.String(env),
		},
		Secrets: &map[string]awsecs.Secret{
			"APP_SECRET": awsecs.Secret_FromSecretsManager(appSecret, nil),
		},
	})

	s.LoadBalancer = awselasticloadbalancingv2.NewApplicationLoadBalancer(stack, jsii.String("Alb"), &awselasticloadbalancingv2.ApplicationLoadBalancerProps{
		Vpc:              props.Vpc,
		InternetFacing:   jsii.Bool(true),
		LoadBalancerName: jsii.String(naming.ResourceName(props.AppName, "alb", env)),
		VpcSubnets: &awsec2.SubnetSelection{
			SubnetType: awsec2.SubnetType_PUBLIC,
		},
	})

	s.TargetGroup = awselasticloadbalancingv2.NewApplicationTargetGroup(stack, jsii.String("TargetGroup"), &awselasticloadbalancingv2.ApplicationTargetGroupProps{
		Vpc:        props.Vpc,
		Port:       jsii.Number(float64(svc.ContainerPort)),
		Protocol:   awselasticloadbalancingv2.ApplicationProtocol_HTTP,
		TargetType: awselasticloadbalancingv2.TargetType_IP,
		HealthCheck: &awselasticloadbalancingv2.HealthCheck{
			Path:                    jsii.String("/health"),
			HealthyHttpCodes:        jsii.String("200"),
			HealthyThresholdCount:   jsii.Number(2),
			UnhealthyThresholdCount: jsii.Number(3),
			Timeout:                 awscdk.Duration_Seconds(jsii.Number(5)),
			Interval:                awscdk.Duration_Seconds(jsii.Number(30)),
		},
	})

	s.Service = awsecs.NewFargateService(stack, jsii.String("Service"), &awsecs.FargateServiceProps{
		Cluster:        s.Cluster,
		TaskDefinition: taskDef,
		ServiceName:    jsii.String(naming.ResourceName(props.AppName, "service", env)),
		DesiredCount:   jsii.Number(float64(svc.DesiredCount)),
		VpcSubnets: &awsec2.SubnetSelection{
			SubnetType: awsec2.SubnetType_PRIVATE_WITH_EGRESS,
		},
		HealthCheckGracePeriod: awscdk.Duration_Seconds(jsii.Number(60)),
	})
	s.Service.AttachToApplicationTargetGroup(s.TargetGroup)

	s.LoadBalancer.AddListener(jsii.String("Http"), &awselasticloadbalancingv2.BaseApplicationListenerProps{
		Port:     jsii.Number(80),
		Protocol: awselasticloadbalancingv2.ApplicationProtocol_HTTP,
		DefaultTargetGroups: &[]awselasticloadbalancingv2.IApplicationTargetGroup{
			s.TargetGroup,
		},
	})

	scaling := s.Service.AutoScaleTaskCount(&awsapplicationautoscaling.EnableScalingProps{
		MinCapacity: jsii.Number(float64(svc.MinCount)),
		MaxCapacity: jsii.Number(float64(svc.MaxCount)),
	})
	scaling.ScaleOnCpuUtilization(jsii.String("CpuScaling"), &awsecs.CpuUtilizationScalingProps{
		TargetUtilizationPercent: jsii.Number(70),
	})
	scaling.ScaleOnMemoryUtilization(jsii.String("MemoryScaling"), &awsecs.MemoryUtilizationScalingProps{
		TargetUtilizationPercent: jsii.Number(75),
	})
	scaling.ScaleOnRequestCount(jsii.String("RequestScaling"), &awsecs.RequestCountScalingProps{
		RequestsPerTarget: jsii.Number(float64(svc.RequestsPerTarget)),
		TargetGroup:       s.TargetGroup,
	})

	if props.Config.Domain != nil {
		zone := awsroute53.HostedZone_FromLookup(stack, jsii.String("Zone"), &awsroute53.HostedZoneProviderProps{
			DomainName: jsii.String(props.Config.Domain.ZoneName),
		})
		awsroute53.NewARecord(stack, jsii.String("AliasRecord"), &awsroute53.ARecordProps{
			Zone:       zone,
			RecordName: jsii.String(props.Config.Domain.RecordName),
			Target:     awsroute53.RecordTarget_FromAlias(awsroute53targets.NewLoadBalancerTarget(s.LoadBalancer)),
		})
	}

	mon, err := monitoring.NewMonitoring(stack, "Monitoring", &monitoring.MonitoringProps{
		Prefix:       props.AppName,
		Environment:  props.Environment,
		Cluster:      s.Cluster,
		Service:      s.Service,
		LoadBalancer: s.LoadBalancer,
		TargetGroup:  s.TargetGroup,
		LogGroup:     s.LogGroup,
		AlertEmails:  props.Config.AlertEmails,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("stack %s: %w", id, err)
	}
	s.Monitoring = mon

	s.Waf = waf.NewWafProtection(stack, "Waf", &waf.WafProtectionProps{
		Prefix:              props.AppName,
		Environment:         props.Environment,
		RateLimitPerIP:      props.Config.RateLimitPerIP,
		GeoBlockEnabled:     props.Config.EnableGeoBlocking,
		BlockedCountries:    props.Config.BlockedCountries,
		ManagedRulesEnabled: props.Config.EnableManagedRules,
		AssociationTarget:   waf.NewIdentifier(*s.LoadBalancer.LoadBalancerArn()),
		Logger:              logger,
	})

	awscdk.NewCfnOutput(stack, jsii.String("AlbDnsName"), &awscdk.CfnOutputProps{
		Value:       s.LoadBalancer.LoadBalancerDnsName(),
		Description: jsii.String("Public DNS name of the load balancer"),
	})
	awscdk.NewCfnOutput(stack, jsii.String("ServiceName"), &awscdk.CfnOutputProps{
		Value:       s.Service.ServiceName(),
		Description: jsii.String("ECS service name"),
	})
	awscdk.NewCfnOutput(stack, jsii.String("AlertTopicArn"), &awscdk.CfnOutputProps{
		Value:       mon.Topic.TopicArn(),
		Description: jsii.String("SNS topic every alarm publishes to"),
	})
	awscdk.NewCfnOutput(stack, jsii.String("WebAclArn"), &awscdk.CfnOutputProps{
		Value:       s.Waf.WebACL.AttrArn(),
		Description: jsii.String("Web ACL protecting the load balancer"),
	})
	awscdk.NewCfnOutput(stack, jsii.String("DashboardName"), &awscdk.CfnOutputProps{
		Value:       jsii.String(mon.Plan.Dashboard.Name),
		Description: jsii.String("CloudWatch dashboard for this environment"),
	})

	return s, nil
}
