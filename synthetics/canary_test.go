package synthetics_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatch"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canarytk/synthetics"
)

func newTestStack(t *testing.T) awscdk.Stack {
	t.Helper()
	app := awscdk.NewApp(nil)
	return awscdk.NewStack(app, jsii.String("TestStack"), nil)
}

func heartbeat(t *testing.T) *synthetics.Test {
	t.Helper()
	test, err := synthetics.HeartbeatTest("https://example.com")
	require.NoError(t, err)
	return test
}

func TestNewCanaryDefaults(t *testing.T) {
	stack := newTestStack(t)

	c, err := synthetics.NewCanary(stack, "Canary", &synthetics.CanaryProps{
		CanaryName: jsii.String("my-canary"),
		Test:       heartbeat(t),
	})
	require.NoError(t, err)
	require.NotNil(t, c.ArtifactsBucket())
	require.NotNil(t, c.Role())

	template := assertions.Template_FromStack(stack, nil)

	// 既定値: 1分間隔・60秒タイムアウト・31日保持・デプロイ後に開始
	template.HasResourceProperties(jsii.String("AWS::Synthetics::Canary"), map[string]interface{}{
		"Name":           "my-canary",
		"RuntimeVersion": "syn-nodejs-puppeteer-3.9",
		"Schedule": map[string]interface{}{
			"Expression":        "rate(1 minute)",
			"DurationInSeconds": "0",
		},
		"RunConfig": map[string]interface{}{
			"TimeoutInSeconds": 60,
		},
		"StartCanaryAfterCreation": true,
		"SuccessRetentionPeriod":   31,
		"FailureRetentionPeriod":   31,
	})

	// バケットとロールが自動作成される
	template.ResourceCountIs(jsii.String("AWS::S3::Bucket"), jsii.Number(1))
	template.ResourceCountIs(jsii.String("AWS::IAM::Role"), jsii.Number(1))
}

func TestNewCanaryRolePolicy(t *testing.T) {
	stack := newTestStack(t)

	_, err := synthetics.NewCanary(stack, "Canary", &synthetics.CanaryProps{
		CanaryName: jsii.String("my-canary"),
		Test:       heartbeat(t),
	})
	require.NoError(t, err)

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::IAM::Role"), map[string]interface{}{
		"AssumeRolePolicyDocument": assertions.Match_ObjectLike(&map[string]interface{}{
			"Statement": []interface{}{
				assertions.Match_ObjectLike(&map[string]interface{}{
					"Principal": map[string]interface{}{"Service": "lambda.amazonaws.com"},
				}),
			},
		}),
		"Policies": []interface{}{
			assertions.Match_ObjectLike(&map[string]interface{}{
				"PolicyName": "canaryPolicy",
				"PolicyDocument": assertions.Match_ObjectLike(&map[string]interface{}{
					"Statement": assertions.Match_ArrayWith(&[]interface{}{
						assertions.Match_ObjectLike(&map[string]interface{}{
							"Action": "cloudwatch:PutMetricData",
							"Condition": map[string]interface{}{
								"StringEquals": map[string]interface{}{
									"cloudwatch:namespace": "CloudWatchSynthetics",
								},
							},
						}),
					}),
				}),
			}),
		},
	})
}

func TestNewCanaryCustomSchedule(t *testing.T) {
	stack := newTestStack(t)

	schedule, err := synthetics.ParseSchedule("rate(10 minutes)")
	require.NoError(t, err)

	_, err = synthetics.NewCanary(stack, "Canary", &synthetics.CanaryProps{
		CanaryName: jsii.String("my-canary"),
		Test:       heartbeat(t),
		Schedule:   schedule,
		Timeout:    awscdk.Duration_Seconds(jsii.Number(30)),
		TimeToLive: awscdk.Duration_Minutes(jsii.Number(90)),
	})
	require.NoError(t, err)

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::Synthetics::Canary"), map[string]interface{}{
		"Schedule": map[string]interface{}{
			"Expression":        "rate(10 minutes)",
			"DurationInSeconds": "5400",
		},
		"RunConfig": map[string]interface{}{
			"TimeoutInSeconds": 30,
		},
	})
}

func TestNewCanaryNameValidation(t *testing.T) {
	tests := []struct {
		name       string
		canaryName string
		wantErr    bool
	}{
		{name: "valid", canaryName: "my-canary_1"},
		{name: "uppercase rejected", canaryName: "MyCanary", wantErr: true},
		{name: "dot rejected", canaryName: "my.canary", wantErr: true},
		{name: "too long", canaryName: "a-very-long-canary-name", wantErr: true},
		{name: "empty", canaryName: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stack := newTestStack(t)
			_, err := synthetics.NewCanary(stack, "Canary", &synthetics.CanaryProps{
				CanaryName: jsii.String(tt.canaryName),
				Test:       heartbeat(t),
			})
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, synthetics.ErrNameFormat)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewCanaryValidationLeavesNoResources(t *testing.T) {
	stack := newTestStack(t)

	_, err := synthetics.NewCanary(stack, "Canary", &synthetics.CanaryProps{
		CanaryName: jsii.String("MyCanary"),
		Test:       heartbeat(t),
	})
	require.Error(t, err)

	// 検証失敗時は子コンストラクトを一切登録しない
	template := assertions.Template_FromStack(stack, nil)
	template.ResourceCountIs(jsii.String("AWS::Synthetics::Canary"), jsii.Number(0))
	template.ResourceCountIs(jsii.String("AWS::S3::Bucket"), jsii.Number(0))
	template.ResourceCountIs(jsii.String("AWS::IAM::Role"), jsii.Number(0))
}

func TestNewCanaryAssetLayoutLeavesNoResources(t *testing.T) {
	// nodejs/node_modules を欠いたアセットディレクトリ
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.js"),
		[]byte("exports.handler = async () => {};"), 0o644))

	test, err := synthetics.CustomTest(&synthetics.CustomTestProps{
		Code:    synthetics.NewAssetCode(dir, nil),
		Handler: "index.handler",
	})
	require.NoError(t, err)

	stack := newTestStack(t)
	_, err = synthetics.NewCanary(stack, "Canary", &synthetics.CanaryProps{
		CanaryName: jsii.String("my-canary"),
		Test:       test,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, synthetics.ErrAssetStructure)

	// コードの検証失敗でもバケット・ロールを含め一切登録しない
	template := assertions.Template_FromStack(stack, nil)
	template.ResourceCountIs(jsii.String("AWS::Synthetics::Canary"), jsii.Number(0))
	template.ResourceCountIs(jsii.String("AWS::S3::Bucket"), jsii.Number(0))
	template.ResourceCountIs(jsii.String("AWS::IAM::Role"), jsii.Number(0))
}

func TestNewCanaryTimeoutValidation(t *testing.T) {
	schedule, err := synthetics.ParseSchedule("rate(1 minute)")
	require.NoError(t, err)

	t.Run("timeout exceeding interval is rejected", func(t *testing.T) {
		stack := newTestStack(t)
		_, err := synthetics.NewCanary(stack, "Canary", &synthetics.CanaryProps{
			CanaryName: jsii.String("my-canary"),
			Test:       heartbeat(t),
			Schedule:   schedule,
			Timeout:    awscdk.Duration_Seconds(jsii.Number(120)),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, synthetics.ErrTimeoutRange)

		template := assertions.Template_FromStack(stack, nil)
		template.ResourceCountIs(jsii.String("AWS::S3::Bucket"), jsii.Number(0))
		template.ResourceCountIs(jsii.String("AWS::IAM::Role"), jsii.Number(0))
	})

	t.Run("timeout equal to interval is accepted", func(t *testing.T) {
		stack := newTestStack(t)
		_, err := synthetics.NewCanary(stack, "Canary", &synthetics.CanaryProps{
			CanaryName: jsii.String("my-canary"),
			Test:       heartbeat(t),
			Schedule:   schedule,
			Timeout:    awscdk.Duration_Seconds(jsii.Number(60)),
		})
		assert.NoError(t, err)
	})

	t.Run("run-once schedule has no cap", func(t *testing.T) {
		stack := newTestStack(t)
		_, err := synthetics.NewCanary(stack, "Canary", &synthetics.CanaryProps{
			CanaryName: jsii.String("my-canary"),
			Test:       heartbeat(t),
			Schedule:   synthetics.ScheduleOnce(),
			Timeout:    awscdk.Duration_Seconds(jsii.Number(300)),
		})
		assert.NoError(t, err)
	})
}

func TestAssetCodeBindIdempotent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nodejs", "node_modules"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "nodejs", "node_modules", "index.js"),
		[]byte("exports.handler = async () => {};"), 0o644))

	stack := newTestStack(t)
	code := synthetics.NewAssetCode(dir, nil)

	first, err := code.Bind(stack)
	require.NoError(t, err)
	second, err := code.Bind(stack)
	require.NoError(t, err)

	// 2回bindしてもアセットは1つで、同じ設定が返る
	assert.Same(t, first, second)

	template := assertions.Template_FromStack(stack, nil)
	assert.NotNil(t, template)
}

func TestCanaryMetrics(t *testing.T) {
	stack := newTestStack(t)

	c, err := synthetics.NewCanary(stack, "Canary", &synthetics.CanaryProps{
		CanaryName: jsii.String("my-canary"),
		Test:       heartbeat(t),
	})
	require.NoError(t, err)

	duration := c.MetricDuration(nil)
	assert.Equal(t, "CloudWatchSynthetics", *duration.Namespace())
	assert.Equal(t, "Duration", *duration.MetricName())
	assert.Equal(t, "Average", *duration.Statistic())

	// 呼び出し側のオーバーライドがマージされる
	p95 := c.MetricDuration(&awscloudwatch.MetricOptions{Statistic: jsii.String("p95")})
	assert.Equal(t, "p95", *p95.Statistic())

	fleet := synthetics.MetricAllSuccessPercent(nil)
	assert.Equal(t, "SuccessPercent", *fleet.MetricName())
}

func TestCanaryCreateAlarm(t *testing.T) {
	stack := newTestStack(t)

	c, err := synthetics.NewCanary(stack, "Canary", &synthetics.CanaryProps{
		CanaryName: jsii.String("my-canary"),
		Test:       heartbeat(t),
	})
	require.NoError(t, err)

	c.CreateAlarm("SuccessAlarm", nil)

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::CloudWatch::Alarm"), map[string]interface{}{
		"Namespace":          "CloudWatchSynthetics",
		"MetricName":         "SuccessPercent",
		"Threshold":          100,
		"EvaluationPeriods":  1,
		"ComparisonOperator": "LessThanThreshold",
	})
}
