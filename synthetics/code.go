package synthetics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3assets"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// DefaultMaxInlineCodeBytes はインラインコードの既定サイズ上限。
// 上限はランタイムバージョンにより異なるため InlineCodeOptions で変更できる。
const DefaultMaxInlineCodeBytes = 460800

// CodeConfig はCodeをスコープにbindした結果。
// S3Location か InlineCode のどちらか一方のみが設定される。
type CodeConfig struct {
	S3Location *awss3.Location
	InlineCode *string
}

// Code はCanaryスクリプトの供給元（インライン / ローカルアセット / S3オブジェクト）
type Code interface {
	// Bind はデプロイスコープに束縛してコード設定を生成する
	Bind(scope constructs.Construct) (*CodeConfig, error)
}

// InlineCodeOptions はインラインコードのオプション
type InlineCodeOptions struct {
	// MaxSizeBytes はサイズ上限（バイト）。0以下なら既定値を使う。
	MaxSizeBytes int
}

// InlineCode はテンプレートに直接埋め込むCanaryスクリプト
type InlineCode struct {
	code string
}

// NewInlineCode はインラインコードを検証して生成する。
// 空文字列・上限超過は ErrCodeSize を返す。
func NewInlineCode(code string, opts *InlineCodeOptions) (*InlineCode, error) {
	maxSize := DefaultMaxInlineCodeBytes
	if opts != nil && opts.MaxSizeBytes > 0 {
		maxSize = opts.MaxSizeBytes
	}

	if len(code) == 0 {
		return nil, fmt.Errorf("%w: canary inline code cannot be empty", ErrCodeSize)
	}
	if len(code) > maxSize {
		return nil, fmt.Errorf("%w: canary inline code is %d bytes, exceeding the maximum of %d bytes",
			ErrCodeSize, len(code), maxSize)
	}

	return &InlineCode{code: code}, nil
}

func (c *InlineCode) Bind(_ constructs.Construct) (*CodeConfig, error) {
	return &CodeConfig{InlineCode: jsii.String(c.code)}, nil
}

// AssetCode はローカルのディレクトリまたはzipをアップロードするCanaryスクリプト
type AssetCode struct {
	path    string
	options *awss3assets.AssetOptions

	asset  awss3assets.Asset
	config *CodeConfig
}

// NewAssetCode はローカルパスからAssetCodeを生成する。
// パスの検証はBind時に行う（ファイルシステムアクセスを伴うため）。
func NewAssetCode(path string, options *awss3assets.AssetOptions) *AssetCode {
	return &AssetCode{path: path, options: options}
}

// Bind はアセットをパッケージングしてS3位置を返す。
// 同一インスタンスの2回目以降のBindは初回の結果を返し、アセットを二重生成しない。
func (c *AssetCode) Bind(scope constructs.Construct) (*CodeConfig, error) {
	if c.config != nil {
		return c.config, nil
	}

	if err := c.validateLayout(); err != nil {
		return nil, err
	}

	props := &awss3assets.AssetProps{Path: jsii.String(c.path)}
	if c.options != nil {
		props.AssetHash = c.options.AssetHash
		props.AssetHashType = c.options.AssetHashType
		props.Bundling = c.options.Bundling
		props.Exclude = c.options.Exclude
		props.FollowSymlinks = c.options.FollowSymlinks
		props.IgnoreMode = c.options.IgnoreMode
	}
	c.asset = awss3assets.NewAsset(scope, jsii.String("Code"), props)

	// バンドル結果がzipにならないケース（単一ファイル等）の最終チェック
	if c.asset.IsZipArchive() != nil && !*c.asset.IsZipArchive() {
		return nil, fmt.Errorf("%w: asset %s must resolve to a zip archive", ErrCodeFormat, c.path)
	}

	c.config = &CodeConfig{
		S3Location: &awss3.Location{
			BucketName: c.asset.S3BucketName(),
			ObjectKey:  c.asset.S3ObjectKey(),
		},
	}
	return c.config, nil
}

// validateLayout はアセット登録前にローカルパスの形式を検証する
func (c *AssetCode) validateLayout() error {
	info, err := os.Stat(c.path)
	if err != nil {
		return fmt.Errorf("canary asset path %s: %w", c.path, err)
	}

	if info.IsDir() {
		// Syntheticsの規約: ディレクトリアセットは nodejs/node_modules 配下にコードを置く
		nodeModules := filepath.Join(c.path, "nodejs", "node_modules")
		st, err := os.Stat(nodeModules)
		if err != nil || !st.IsDir() {
			return fmt.Errorf("%w: asset directory %s must contain nodejs/node_modules", ErrAssetStructure, c.path)
		}
		return nil
	}

	if strings.EqualFold(filepath.Ext(c.path), ".zip") {
		return nil
	}
	return fmt.Errorf("%w: asset %s must be a .zip file or a directory", ErrCodeFormat, c.path)
}

// preflightCode はスコープへの登録を伴わずに検証できる失敗を事前に検出する。
// AssetCodeのレイアウト検証をBindより前に実行し、Bind失敗による
// 子コンストラクトの登録済み残骸を防ぐ。
func preflightCode(code Code) error {
	if c, ok := code.(*AssetCode); ok {
		return c.validateLayout()
	}
	return nil
}

// S3Code はS3上の既存オブジェクトを参照するCanaryスクリプト
type S3Code struct {
	bucket        awss3.IBucket
	key           string
	objectVersion *string
}

// NewS3Code はバケットとキーからS3Codeを生成する。objectVersionは省略可。
func NewS3Code(bucket awss3.IBucket, key string, objectVersion *string) *S3Code {
	return &S3Code{bucket: bucket, key: key, objectVersion: objectVersion}
}

func (c *S3Code) Bind(_ constructs.Construct) (*CodeConfig, error) {
	return &CodeConfig{
		S3Location: &awss3.Location{
			BucketName:    c.bucket.BucketName(),
			ObjectKey:     jsii.String(c.key),
			ObjectVersion: c.objectVersion,
		},
	}, nil
}
