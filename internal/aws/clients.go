package aws

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/synthetics"
)

// Clients はAWS設定と各サービスクライアントを管理
type Clients struct {
	cfg aws.Config

	// 遅延初期化されるクライアント群
	synthetics *synthetics.Client
	cloudwatch *cloudwatch.Client
	s3         *s3.Client
	iam        *iam.Client
	cfn        *cloudformation.Client
}

// NewClients は認証情報からAWS設定を読み込んでクライアント管理構造体を作成
func NewClients(ctx Context) (*Clients, error) {
	cfg, err := LoadAwsConfig(ctx)
	if err != nil {
		return nil, err
	}

	return &Clients{cfg: cfg}, nil
}

// Synthetics は遅延初期化でSyntheticsクライアントを取得
func (c *Clients) Synthetics() *synthetics.Client {
	if c.synthetics == nil {
		c.synthetics = synthetics.NewFromConfig(c.cfg)
	}
	return c.synthetics
}

// CloudWatch は遅延初期化でCloudWatchクライアントを取得
func (c *Clients) CloudWatch() *cloudwatch.Client {
	if c.cloudwatch == nil {
		c.cloudwatch = cloudwatch.NewFromConfig(c.cfg)
	}
	return c.cloudwatch
}

// S3 は遅延初期化でS3クライアントを取得
func (c *Clients) S3() *s3.Client {
	if c.s3 == nil {
		c.s3 = s3.NewFromConfig(c.cfg)
	}
	return c.s3
}

// Iam は遅延初期化でIAMクライアントを取得
func (c *Clients) Iam() *iam.Client {
	if c.iam == nil {
		c.iam = iam.NewFromConfig(c.cfg)
	}
	return c.iam
}

// Cfn は遅延初期化でCloudFormationクライアントを取得
func (c *Clients) Cfn() *cloudformation.Client {
	if c.cfn == nil {
		c.cfn = cloudformation.NewFromConfig(c.cfg)
	}
	return c.cfn
}
