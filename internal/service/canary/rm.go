package canary

import (
	"context"
	"fmt"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	sdkiam "github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/synthetics"
)

const (
	stopPollInterval = 5 * time.Second
	stopWaitTimeout  = 2 * time.Minute
	deleteBatchSize  = 1000
)

// Deleter はCanary削除に必要なクライアント群
type Deleter struct {
	Synthetics *synthetics.Client
	S3         *s3.Client
	Iam        *sdkiam.Client
}

// DeleteCanary はCanaryと関連リソースを削除します
func (d Deleter) DeleteCanary(name string, opts DeleteOptions) error {
	target, err := getCanary(d.Synthetics, name)
	if err != nil {
		return err
	}

	// 削除内容の確認
	if !opts.SkipConfirm {
		fmt.Printf("⚠️  以下のCanaryを削除します:\n")
		fmt.Printf("  - 名前: %s (現在: %s)\n", target.Name, formatState(target.State))
		if !opts.KeepArtifacts && target.ArtifactLocation != "" {
			fmt.Printf("  - アーティファクト: %s\n", target.ArtifactLocation)
		}
		if opts.DeleteRole && target.RoleArn != "" {
			fmt.Printf("  - 実行ロール: %s\n", target.RoleArn)
		}
		if !confirmAction("本当に削除しますか？") {
			return fmt.Errorf("キャンセルされました")
		}
	}

	ctx := context.Background()

	// 実行中の場合は先に停止
	if target.State == CanaryStateRunning || target.State == CanaryStateStarting {
		fmt.Printf("🔄 %s を停止中...\n", name)
		if err := stopCanary(d.Synthetics, name); err != nil {
			return err
		}
		if err := d.waitForStopped(ctx, name); err != nil {
			return err
		}
	}

	// Canary本体の削除
	fmt.Printf("🔄 %s を削除中...\n", name)
	_, err = d.Synthetics.DeleteCanary(ctx, &synthetics.DeleteCanaryInput{
		Name: awssdk.String(name),
	})
	if err != nil {
		return fmt.Errorf("❌ %s の削除に失敗: %w", name, err)
	}
	fmt.Printf("✅ %s を削除しました\n", name)

	// アーティファクトの削除
	if !opts.KeepArtifacts && target.ArtifactLocation != "" {
		if err := d.purgeArtifacts(ctx, target.ArtifactLocation); err != nil {
			fmt.Printf("⚠️  アーティファクトの削除に失敗: %v\n", err)
		}
	}

	// 実行ロールの削除
	if opts.DeleteRole && target.RoleArn != "" {
		roleName, err := roleNameFromArn(target.RoleArn)
		if err != nil {
			fmt.Printf("⚠️  %v\n", err)
			return nil
		}
		if err := d.deleteRole(ctx, roleName); err != nil {
			fmt.Printf("⚠️  実行ロール %s の削除に失敗: %v\n", roleName, err)
			return nil
		}
		fmt.Printf("✅ 実行ロール %s を削除しました\n", roleName)
	}

	return nil
}

// waitForStopped Canaryが停止するまでポーリングで待機
func (d Deleter) waitForStopped(ctx context.Context, name string) error {
	deadline := time.Now().Add(stopWaitTimeout)
	for time.Now().Before(deadline) {
		time.Sleep(stopPollInterval)

		resp, err := d.Synthetics.GetCanary(ctx, &synthetics.GetCanaryInput{
			Name: awssdk.String(name),
		})
		if err != nil {
			return fmt.Errorf("canaryの状態確認に失敗: %w", err)
		}
		if resp.Canary.Status != nil && string(resp.Canary.Status.State) == CanaryStateStopped {
			return nil
		}
	}
	return fmt.Errorf("⚠️ %s の停止待機がタイムアウトしました", name)
}

// purgeArtifacts アーティファクトのS3プレフィックス配下を全削除
func (d Deleter) purgeArtifacts(ctx context.Context, location string) error {
	bucket, prefix, err := parseArtifactLocation(location)
	if err != nil {
		return err
	}

	fmt.Printf("🔄 アーティファクト %s を削除中...\n", location)

	input := &s3.ListObjectsV2Input{
		Bucket: awssdk.String(bucket),
		Prefix: awssdk.String(prefix),
	}
	deletedCount := 0
	for {
		listResp, err := d.S3.ListObjectsV2(ctx, input)
		if err != nil {
			if isNotFound(err) {
				fmt.Println("ℹ️  アーティファクトバケットは既に存在しません")
				return nil
			}
			return fmt.Errorf("オブジェクト一覧の取得に失敗: %w", err)
		}

		if len(listResp.Contents) > 0 {
			objects := make([]s3types.ObjectIdentifier, 0, len(listResp.Contents))
			for _, obj := range listResp.Contents {
				objects = append(objects, s3types.ObjectIdentifier{Key: obj.Key})
			}

			for i := 0; i < len(objects); i += deleteBatchSize {
				end := i + deleteBatchSize
				if end > len(objects) {
					end = len(objects)
				}
				_, err := d.S3.DeleteObjects(ctx, &s3.DeleteObjectsInput{
					Bucket: awssdk.String(bucket),
					Delete: &s3types.Delete{
						Objects: objects[i:end],
						Quiet:   awssdk.Bool(true),
					},
				})
				if err != nil {
					return fmt.Errorf("オブジェクトの一括削除に失敗: %w", err)
				}
				deletedCount += end - i
			}
		}

		if !awssdk.ToBool(listResp.IsTruncated) {
			break
		}
		input.ContinuationToken = listResp.NextContinuationToken
	}

	fmt.Printf("✅ アーティファクトを削除しました (%d件)\n", deletedCount)
	return nil
}

// deleteRole 実行ロールをポリシーごと削除
func (d Deleter) deleteRole(ctx context.Context, roleName string) error {
	// アタッチされた管理ポリシーをデタッチ
	attached, err := d.Iam.ListAttachedRolePolicies(ctx, &sdkiam.ListAttachedRolePoliciesInput{
		RoleName: awssdk.String(roleName),
	})
	if err != nil {
		return fmt.Errorf("ポリシー一覧の取得に失敗: %w", err)
	}
	for _, policy := range attached.AttachedPolicies {
		_, err := d.Iam.DetachRolePolicy(ctx, &sdkiam.DetachRolePolicyInput{
			RoleName:  awssdk.String(roleName),
			PolicyArn: policy.PolicyArn,
		})
		if err != nil {
			return fmt.Errorf("ポリシーのデタッチに失敗: %w", err)
		}
	}

	// インラインポリシーを削除
	inline, err := d.Iam.ListRolePolicies(ctx, &sdkiam.ListRolePoliciesInput{
		RoleName: awssdk.String(roleName),
	})
	if err != nil {
		return fmt.Errorf("インラインポリシー一覧の取得に失敗: %w", err)
	}
	for _, policyName := range inline.PolicyNames {
		_, err := d.Iam.DeleteRolePolicy(ctx, &sdkiam.DeleteRolePolicyInput{
			RoleName:   awssdk.String(roleName),
			PolicyName: awssdk.String(policyName),
		})
		if err != nil {
			return fmt.Errorf("インラインポリシーの削除に失敗: %w", err)
		}
	}

	// ロール本体を削除
	_, err = d.Iam.DeleteRole(ctx, &sdkiam.DeleteRoleInput{
		RoleName: awssdk.String(roleName),
	})
	if err != nil {
		return fmt.Errorf("ロールの削除に失敗: %w", err)
	}
	return nil
}

// roleNameFromArn ロールARNからロール名を取り出す
func roleNameFromArn(arn string) (string, error) {
	// arn:aws:iam::123456789012:role/path/to/name
	idx := strings.Index(arn, ":role/")
	if idx == -1 {
		return "", fmt.Errorf("ロールARNの形式が不正です: %s", arn)
	}
	rest := arn[idx+len(":role/"):]
	if rest == "" {
		return "", fmt.Errorf("ロールARNの形式が不正です: %s", arn)
	}
	parts := strings.Split(rest, "/")
	return parts[len(parts)-1], nil
}
