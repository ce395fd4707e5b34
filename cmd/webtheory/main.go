package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/oklog/ulid/v2"

	"github.com/theory-cloud/webtheory/pkg/config"
	"github.com/theory-cloud/webtheory/pkg/monitoring"
	"github.com/theory-cloud/webtheory/pkg/observability"
	zaplog "github.com/theory-cloud/webtheory/pkg/observability/zap"
	"github.com/theory-cloud/webtheory/pkg/stacks"
)

func main() {
	os.Exit(run())
}

func run() int {
	var configPath string
	var logLevel string

	flag.StringVar(&configPath, "config", "deploy/webtheory.yaml", "deployment configuration file")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	logger, err := zaplog.NewLogger(zaplog.Config{Format: "console", Level: logLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "webtheory: FAIL: %v\n", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	return synth(configPath, logger)
}

// synth loads the configuration and builds one Network + Service stack pair
// per environment, in sorted order so stack IDs are stable between runs.
func synth(configPath string, logger observability.StructuredLogger) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "webtheory: FAIL: %v\n", err)
		return 2
	}

	defer jsii.Close()
	app := awscdk.NewApp(nil)

	// One stamp per synthesis, visible on every resource, so a deployed
	// tree can be traced back to the run that produced it.
	stamp := ulid.Make().String()
	awscdk.Tags_Of(app).Add(jsii.String("SynthStamp"), jsii.String(stamp), nil)
	awscdk.Tags_Of(app).Add(jsii.String("App"), jsii.String(cfg.App), nil)
	logger.Info("synthesizing", map[string]any{
		"app":    cfg.App,
		"config": configPath,
		"stamp":  stamp,
	})

	deployEnv := &awscdk.Environment{
		Account: jsii.String(os.Getenv("CDK_DEFAULT_ACCOUNT")),
		Region:  jsii.String(os.Getenv("CDK_DEFAULT_REGION")),
	}

	names := make([]string, 0, len(cfg.Environments))
	for name := range cfg.Environments {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		env, err := monitoring.ParseEnvironment(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "webtheory: FAIL: %v\n", err)
			return 2
		}
		envCfg := cfg.Environments[name]
		envLogger := logger.WithField("environment", name)

		network := stacks.NewNetworkStack(app, stackID(cfg.App, name, "Network"), &stacks.NetworkStackProps{
			StackProps:  awscdk.StackProps{Env: deployEnv},
			AppName:     cfg.App,
			Environment: name,
		})

		if _, err := stacks.NewWebServiceStack(app, stackID(cfg.App, name, "Service"), &stacks.WebServiceStackProps{
			StackProps:  awscdk.StackProps{Env: deployEnv},
			AppName:     cfg.App,
			Environment: env,
			Config:      envCfg,
			Vpc:         network.Vpc,
			Logger:      envLogger,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "webtheory: FAIL: %v\n", err)
			return 2
		}
	}

	app.Synth(nil)
	return 0
}

func stackID(app, environment, suffix string) string {
	return fmt.Sprintf("%s-%s-%s", app, capitalize(environment), suffix)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
