package synthetics

import (
	"fmt"
	"regexp"
	"time"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatch"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssynthetics"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

const (
	// MetricNamespace はSynthetics Canaryの発行するCloudWatchメトリクスの名前空間
	MetricNamespace = "CloudWatchSynthetics"

	// maxCanaryNameLength はCanary名の最大長
	maxCanaryNameLength = 21
	// defaultTimeoutSeconds はRunConfigのタイムアウト既定値
	defaultTimeoutSeconds = 60
	// defaultRetentionDays は実行結果の保持日数の既定値
	defaultRetentionDays = 31
)

// Canary名は小文字英数とハイフン・アンダースコアのみ
var canaryNamePattern = regexp.MustCompile(`^[0-9a-z_\-]+$`)

// ArtifactsBucketLocation はCanary実行結果の保存先
type ArtifactsBucketLocation struct {
	// Bucket は保存先バケット
	Bucket awss3.IBucket
	// Prefix はバケット内のキープレフィックス（省略可）
	Prefix *string
}

// CanaryProps はCanaryコンストラクトの入力
type CanaryProps struct {
	// CanaryName はCanary名（必須。小文字英数・ハイフン・アンダースコア、21文字以内）
	CanaryName *string
	// Test は実行するスクリプトとハンドラ（必須）
	Test *Test

	// Schedule は実行間隔。省略時は1分間隔。
	Schedule *Schedule
	// Runtime はランタイムバージョン。省略時は syn-nodejs-puppeteer-3.9。
	Runtime *Runtime
	// Role は実行ロール。省略時は最小権限のロールを新規作成する。
	Role awsiam.IRole
	// ArtifactsBucketLocation は実行結果の保存先。省略時はバケットを新規作成する。
	ArtifactsBucketLocation *ArtifactsBucketLocation
	// StartAfterCreation はデプロイ直後に実行を開始するか。省略時はtrue。
	StartAfterCreation *bool
	// Timeout は1回の実行のタイムアウト。省略時は60秒。
	Timeout awscdk.Duration
	// TimeToLive はCanaryが実行を継続する期間。省略時は無期限。
	TimeToLive awscdk.Duration
	// SuccessRetentionPeriod は成功した実行結果の保持期間。省略時は31日。
	SuccessRetentionPeriod awscdk.Duration
	// FailureRetentionPeriod は失敗した実行結果の保持期間。省略時は31日。
	FailureRetentionPeriod awscdk.Duration
	// EnvironmentVariables はスクリプトに渡す環境変数
	EnvironmentVariables *map[string]*string

	// Vpc を指定するとCanaryはVPC内で実行される
	Vpc awsec2.IVpc
	// VpcSubnets は配置先サブネットの選択（Vpc指定時のみ有効）
	VpcSubnets *awsec2.SubnetSelection
	// SecurityGroups は適用するセキュリティグループ。Vpc指定時に省略すると新規作成する。
	SecurityGroups *[]awsec2.ISecurityGroup
}

// Canary はCloudWatch Synthetics Canary一式（Canary本体・実行ロール・
// アーティファクトバケット）を定義するコンストラクト
type Canary interface {
	constructs.Construct
	// ArtifactsBucket は実行結果の保存先バケットを返す
	ArtifactsBucket() awss3.IBucket
	// Role はCanaryの実行ロールを返す
	Role() awsiam.IRole
	// CanaryId は合成後に解決されるCanaryのIDを返す
	CanaryId() *string
	// CanaryState は合成後に解決されるCanaryの状態を返す
	CanaryState() *string
	// CanaryName は合成後に解決されるCanary名を返す
	CanaryName() *string
	// MetricDuration は実行時間メトリクスを返す
	MetricDuration(opts *awscloudwatch.MetricOptions) awscloudwatch.Metric
	// MetricSuccessPercent は成功率メトリクスを返す
	MetricSuccessPercent(opts *awscloudwatch.MetricOptions) awscloudwatch.Metric
	// MetricFailed は失敗回数メトリクスを返す
	MetricFailed(opts *awscloudwatch.MetricOptions) awscloudwatch.Metric
	// CreateAlarm はこのCanaryのメトリクスに対するアラームを作成する
	CreateAlarm(id string, props *awscloudwatch.AlarmProps) awscloudwatch.Alarm
}

type canary struct {
	constructs.Construct
	artifactsBucket awss3.IBucket
	role            awsiam.IRole
	resource        awssynthetics.CfnCanary
}

// NewCanary はCanaryコンストラクトを生成する。
// 検証は 名前 → ハンドラ → コード → タイムアウト の順で行い、最初の違反で失敗する。
// 検証が全て通るまで子コンストラクトは一切登録しない。
func NewCanary(scope constructs.Construct, id string, props *CanaryProps) (Canary, error) {
	if props == nil || props.CanaryName == nil {
		return nil, fmt.Errorf("synthetics: CanaryName is required")
	}
	if props.Test == nil {
		return nil, fmt.Errorf("synthetics: Test is required")
	}

	if err := validateCanaryName(*props.CanaryName); err != nil {
		return nil, err
	}
	if err := validateHandler(props.Test.Handler()); err != nil {
		return nil, err
	}
	// Bind前に検出できるコードの不備はここで弾く
	if err := preflightCode(props.Test.Code()); err != nil {
		return nil, err
	}
	schedule := props.Schedule
	if schedule == nil {
		schedule = ScheduleOneMinute()
	}
	if err := validateTimeout(props.Timeout, schedule); err != nil {
		return nil, err
	}
	if props.Vpc == nil && (props.VpcSubnets != nil || props.SecurityGroups != nil) {
		return nil, fmt.Errorf("synthetics: VpcSubnets and SecurityGroups require Vpc to be set")
	}

	this := constructs.NewConstruct(scope, &id)
	c := &canary{Construct: this}

	// アーティファクト保存先（省略時は新規バケット）
	var prefix *string
	if props.ArtifactsBucketLocation != nil && props.ArtifactsBucketLocation.Bucket != nil {
		c.artifactsBucket = props.ArtifactsBucketLocation.Bucket
		prefix = props.ArtifactsBucketLocation.Prefix
	} else {
		c.artifactsBucket = awss3.NewBucket(this, jsii.String("ArtifactsBucket"), &awss3.BucketProps{
			Encryption: awss3.BucketEncryption_KMS_MANAGED,
			EnforceSSL: jsii.Bool(true),
		})
	}

	// 実行ロール（省略時は最小権限のロールを新規作成）
	if props.Role != nil {
		c.role = props.Role
	} else {
		c.role = createDefaultRole(this, c.artifactsBucket, props.Vpc != nil)
	}

	codeConfig, err := props.Test.Code().Bind(this)
	if err != nil {
		return nil, err
	}

	runtime := props.Runtime
	if runtime == nil {
		runtime = RuntimeSynNodejsPuppeteer39
	}

	resource := awssynthetics.NewCfnCanary(this, jsii.String("Resource"), &awssynthetics.CfnCanaryProps{
		Name:                     props.CanaryName,
		ArtifactS3Location:       c.artifactsBucket.S3UrlForObject(prefix),
		ExecutionRoleArn:         c.role.RoleArn(),
		RuntimeVersion:           jsii.String(runtime.Name()),
		StartCanaryAfterCreation: jsii.Bool(startAfterCreation(props)),
		Schedule:                 scheduleProperty(schedule, props.TimeToLive),
		RunConfig:                runConfigProperty(props, schedule),
		SuccessRetentionPeriod:   retentionDays(props.SuccessRetentionPeriod),
		FailureRetentionPeriod:   retentionDays(props.FailureRetentionPeriod),
		Code:                     codeProperty(props.Test, codeConfig),
		VpcConfig:                vpcConfigProperty(this, props),
	})

	// ロール削除がCanary削除より先行しないよう依存辺を張る
	resource.Node().AddDependency(c.role)
	c.resource = resource

	return c, nil
}

// validateCanaryName はCanary名の規約（文字種・長さ）を検証する
func validateCanaryName(name string) error {
	if !canaryNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q may only contain lowercase letters, numbers, hyphens and underscores",
			ErrNameFormat, name)
	}
	if len(name) > maxCanaryNameLength {
		return fmt.Errorf("%w: %q is longer than %d characters", ErrNameFormat, name, maxCanaryNameLength)
	}
	return nil
}

func startAfterCreation(props *CanaryProps) bool {
	if props.StartAfterCreation == nil {
		return true
	}
	return *props.StartAfterCreation
}

func scheduleProperty(schedule *Schedule, timeToLive awscdk.Duration) *awssynthetics.CfnCanary_ScheduleProperty {
	duration := "0" // 0 = 無期限
	if timeToLive != nil {
		duration = fmt.Sprintf("%.0f", *timeToLive.ToSeconds(nil))
	}
	return &awssynthetics.CfnCanary_ScheduleProperty{
		Expression:        jsii.String(schedule.ExpressionString()),
		DurationInSeconds: jsii.String(duration),
	}
}

// validateTimeout は実行タイムアウトがスケジュール間隔を超えないことを検証する。
// 間隔0（run-once）の場合は上限なし。
func validateTimeout(timeout awscdk.Duration, schedule *Schedule) error {
	if timeout == nil || schedule.Interval() <= 0 {
		return nil
	}
	d := time.Duration(*timeout.ToSeconds(nil)) * time.Second
	if d > schedule.Interval() {
		return fmt.Errorf("%w: timeout %s must not be greater than the schedule interval %s",
			ErrTimeoutRange, d, schedule.Interval())
	}
	return nil
}

func runConfigProperty(props *CanaryProps, schedule *Schedule) *awssynthetics.CfnCanary_RunConfigProperty {
	timeoutSeconds := float64(defaultTimeoutSeconds)
	if iv := schedule.Interval(); iv > 0 && iv.Seconds() < timeoutSeconds {
		// 既定タイムアウトはスケジュール間隔を上限とする
		timeoutSeconds = iv.Seconds()
	}
	if props.Timeout != nil {
		timeoutSeconds = *props.Timeout.ToSeconds(nil)
	}
	return &awssynthetics.CfnCanary_RunConfigProperty{
		TimeoutInSeconds:     jsii.Number(timeoutSeconds),
		EnvironmentVariables: props.EnvironmentVariables,
	}
}

func retentionDays(period awscdk.Duration) *float64 {
	if period == nil {
		return jsii.Number(defaultRetentionDays)
	}
	return period.ToDays(nil)
}

func codeProperty(test *Test, config *CodeConfig) *awssynthetics.CfnCanary_CodeProperty {
	code := &awssynthetics.CfnCanary_CodeProperty{
		Handler: jsii.String(test.Handler()),
	}
	if config.InlineCode != nil {
		code.Script = config.InlineCode
		return code
	}
	code.S3Bucket = config.S3Location.BucketName
	code.S3Key = config.S3Location.ObjectKey
	code.S3ObjectVersion = config.S3Location.ObjectVersion
	return code
}

func vpcConfigProperty(scope constructs.Construct, props *CanaryProps) *awssynthetics.CfnCanary_VPCConfigProperty {
	if props.Vpc == nil {
		return nil
	}

	var securityGroups []awsec2.ISecurityGroup
	if props.SecurityGroups != nil && len(*props.SecurityGroups) > 0 {
		securityGroups = *props.SecurityGroups
	} else {
		sg := awsec2.NewSecurityGroup(scope, jsii.String("SecurityGroup"), &awsec2.SecurityGroupProps{
			Vpc:         props.Vpc,
			Description: jsii.String("Security group for Synthetics canary"),
		})
		securityGroups = []awsec2.ISecurityGroup{sg}
	}

	securityGroupIds := make([]*string, 0, len(securityGroups))
	for _, sg := range securityGroups {
		securityGroupIds = append(securityGroupIds, sg.SecurityGroupId())
	}

	return &awssynthetics.CfnCanary_VPCConfigProperty{
		VpcId:            props.Vpc.VpcId(),
		SubnetIds:        props.Vpc.SelectSubnets(props.VpcSubnets).SubnetIds,
		SecurityGroupIds: &securityGroupIds,
	}
}

// createDefaultRole はCanaryの最小権限ロールを作成する。
// アーティファクト書き込み・Syntheticsメトリクス発行・ログ出力のみを許可する。
func createDefaultRole(scope constructs.Construct, bucket awss3.IBucket, inVpc bool) awsiam.IRole {
	statements := []awsiam.PolicyStatement{
		awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
			Actions:   jsii.Strings("s3:ListAllMyBuckets"),
			Resources: jsii.Strings("*"),
		}),
		awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
			Actions:   jsii.Strings("s3:GetBucketLocation"),
			Resources: &[]*string{bucket.BucketArn()},
		}),
		awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
			Actions:   jsii.Strings("s3:PutObject"),
			Resources: &[]*string{bucket.ArnForObjects(jsii.String("*"))},
		}),
		awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
			Actions:   jsii.Strings("cloudwatch:PutMetricData"),
			Resources: jsii.Strings("*"),
			Conditions: &map[string]interface{}{
				"StringEquals": map[string]interface{}{"cloudwatch:namespace": MetricNamespace},
			},
		}),
		awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
			Actions:   jsii.Strings("logs:CreateLogGroup", "logs:CreateLogStream", "logs:PutLogEvents"),
			Resources: jsii.Strings("arn:aws:logs:*:*:log-group:/aws/lambda/cwsyn-*"),
		}),
	}

	if inVpc {
		statements = append(statements, awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
			Actions: jsii.Strings(
				"ec2:CreateNetworkInterface",
				"ec2:DescribeNetworkInterfaces",
				"ec2:DeleteNetworkInterface",
			),
			Resources: jsii.Strings("*"),
		}))
	}

	return awsiam.NewRole(scope, jsii.String("ServiceRole"), &awsiam.RoleProps{
		AssumedBy: awsiam.NewServicePrincipal(jsii.String("lambda.amazonaws.com"), nil),
		InlinePolicies: &map[string]awsiam.PolicyDocument{
			"canaryPolicy": awsiam.NewPolicyDocument(&awsiam.PolicyDocumentProps{
				Statements: &statements,
			}),
		},
	})
}

func (c *canary) ArtifactsBucket() awss3.IBucket {
	return c.artifactsBucket
}

func (c *canary) Role() awsiam.IRole {
	return c.role
}

func (c *canary) CanaryId() *string {
	return c.resource.AttrId()
}

func (c *canary) CanaryState() *string {
	return c.resource.AttrState()
}

func (c *canary) CanaryName() *string {
	return c.resource.Ref()
}

func (c *canary) MetricDuration(opts *awscloudwatch.MetricOptions) awscloudwatch.Metric {
	return c.metric("Duration", opts)
}

func (c *canary) MetricSuccessPercent(opts *awscloudwatch.MetricOptions) awscloudwatch.Metric {
	return c.metric("SuccessPercent", opts)
}

func (c *canary) MetricFailed(opts *awscloudwatch.MetricOptions) awscloudwatch.Metric {
	return c.metric("Failed", opts)
}

// metric はこのCanaryを次元に持つ標準メトリクス
// （CloudWatchSynthetics名前空間・平均・5分間隔）を生成する
func (c *canary) metric(name string, opts *awscloudwatch.MetricOptions) awscloudwatch.Metric {
	m := awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
		Namespace:     jsii.String(MetricNamespace),
		MetricName:    jsii.String(name),
		DimensionsMap: &map[string]*string{"CanaryName": c.resource.Ref()},
		Statistic:     jsii.String("Average"),
		Period:        awscdk.Duration_Minutes(jsii.Number(5)),
	})
	if opts == nil {
		return m
	}
	return m.With(opts)
}

// CreateAlarm はCanaryメトリクスに対するCloudWatchアラームを作成する。
// メトリクス未指定の場合は成功率100%未満で発報するアラームになる。
func (c *canary) CreateAlarm(id string, props *awscloudwatch.AlarmProps) awscloudwatch.Alarm {
	alarmProps := &awscloudwatch.AlarmProps{}
	if props != nil {
		copied := *props
		alarmProps = &copied
	}
	if alarmProps.Metric == nil {
		alarmProps.Metric = c.MetricSuccessPercent(nil)
	}
	if alarmProps.Threshold == nil {
		alarmProps.Threshold = jsii.Number(100)
		alarmProps.ComparisonOperator = awscloudwatch.ComparisonOperator_LESS_THAN_THRESHOLD
	}
	if alarmProps.EvaluationPeriods == nil {
		alarmProps.EvaluationPeriods = jsii.Number(1)
	}
	return awscloudwatch.NewAlarm(c.Construct, jsii.String(id), alarmProps)
}

// MetricAllDuration は全Canary横断の実行時間メトリクスを返す
func MetricAllDuration(opts *awscloudwatch.MetricOptions) awscloudwatch.Metric {
	return metricAll("Duration", opts)
}

// MetricAllSuccessPercent は全Canary横断の成功率メトリクスを返す
func MetricAllSuccessPercent(opts *awscloudwatch.MetricOptions) awscloudwatch.Metric {
	return metricAll("SuccessPercent", opts)
}

// MetricAllFailed は全Canary横断の失敗回数メトリクスを返す
func MetricAllFailed(opts *awscloudwatch.MetricOptions) awscloudwatch.Metric {
	return metricAll("Failed", opts)
}

// metricAll はCanary次元を持たないフリート集計メトリクスを生成する
func metricAll(name string, opts *awscloudwatch.MetricOptions) awscloudwatch.Metric {
	m := awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
		Namespace:  jsii.String(MetricNamespace),
		MetricName: jsii.String(name),
		Statistic:  jsii.String("Average"),
		Period:     awscdk.Duration_Minutes(jsii.Number(5)),
	})
	if opts == nil {
		return m
	}
	return m.With(opts)
}
