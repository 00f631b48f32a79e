package main

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type EfiStackProps struct {
	awscdk.StackProps
}

func NewEfiStack(scope constructs.Construct, id string, props *EfiStackProps) awscdk.Stack {
	var stackProps awscdk.StackProps
	if props != nil {
		stackProps = props.StackProps
	}

	stack := awscdk.NewStack(scope, &id, &stackProps)

	env := map[string]*string{
		"APP":              jsii.String("prod"),
		"MONGODB_URI":      jsii.String(os.Getenv("MONGODB_URI")),
		"MONGODB_DATABASE": jsii.String(envOr("MONGODB_DATABASE", "efi")),
		"CACHE_TTL":        jsii.String(envOr("CACHE_TTL", "1h")),
		"CORS_ORIGINS":     jsii.String(envOr("CORS_ORIGINS", "*")),
		"LOG_FORMAT":       jsii.String("json"),
	}
	if tz := os.Getenv("SCOREBOARD_TZ"); tz != "" {
		env["SCOREBOARD_TZ"] = jsii.String(tz)
	}

	lambdaFn := awslambda.NewFunction(stack, jsii.String("EfiApi"), &awslambda.FunctionProps{
		Runtime:     awslambda.Runtime_PROVIDED_AL2023(),
		Handler:     jsii.String("bootstrap"),
		Code:        awslambda.Code_FromAsset(jsii.String("../"), nil),
		MemorySize:  jsii.Number(256),
		Timeout:     awscdk.Duration_Seconds(jsii.Number(15)),
		Environment: &env,
	})

	api := awsapigateway.NewLambdaRestApi(stack, jsii.String("EfiApiGateway"), &awsapigateway.LambdaRestApiProps{
		Handler: lambdaFn,
	})

	awscdk.NewCfnOutput(stack, jsii.String("ApiUrl"), &awscdk.CfnOutputProps{Value: api.Url()})

	return stack
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	app := awscdk.NewApp(nil)
	NewEfiStack(app, "EfiStack", &EfiStackProps{})
	app.Synth(nil)
}
