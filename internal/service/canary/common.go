package canary

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/synthetics"
	"github.com/aws/smithy-go"

	"canarytk/internal/service/common"
)

// getAllCanaries 全てのCanaryを取得（ページネーション対応）
func getAllCanaries(client *synthetics.Client) ([]Canary, error) {
	ctx := context.Background()

	lastRuns, err := getLastRunMap(ctx, client)
	if err != nil {
		return nil, err
	}

	var canaries []Canary
	input := &synthetics.DescribeCanariesInput{}
	for {
		resp, err := client.DescribeCanaries(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("canary一覧の取得に失敗: %w", err)
		}

		for _, c := range resp.Canaries {
			canary := Canary{
				Name:           awssdk.ToString(c.Name),
				RuntimeVersion: awssdk.ToString(c.RuntimeVersion),
				RoleArn:        awssdk.ToString(c.ExecutionRoleArn),
			}
			if c.Status != nil {
				canary.State = string(c.Status.State)
				canary.StateReason = awssdk.ToString(c.Status.StateReason)
			}
			if c.Schedule != nil {
				canary.Schedule = awssdk.ToString(c.Schedule.Expression)
			}
			if c.ArtifactS3Location != nil {
				canary.ArtifactLocation = "s3://" + awssdk.ToString(c.ArtifactS3Location)
			}

			if run, ok := lastRuns[canary.Name]; ok {
				canary.LastRunStatus = run.status
				canary.LastRunTime = run.completed
			}

			canaries = append(canaries, canary)
		}

		if resp.NextToken == nil {
			break
		}
		input.NextToken = resp.NextToken
	}

	return canaries, nil
}

type lastRunInfo struct {
	status    string
	completed *time.Time
}

// getLastRunMap 全Canaryの最終実行結果をまとめて取得
func getLastRunMap(ctx context.Context, client *synthetics.Client) (map[string]lastRunInfo, error) {
	result := make(map[string]lastRunInfo)

	input := &synthetics.DescribeCanariesLastRunInput{}
	for {
		resp, err := client.DescribeCanariesLastRun(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("canary実行履歴の取得に失敗: %w", err)
		}

		for _, lr := range resp.CanariesLastRun {
			name := awssdk.ToString(lr.CanaryName)
			if lr.LastRun == nil {
				continue
			}
			info := lastRunInfo{}
			if lr.LastRun.Status != nil {
				info.status = string(lr.LastRun.Status.State)
			}
			if lr.LastRun.Timeline != nil && lr.LastRun.Timeline.Completed != nil {
				info.completed = lr.LastRun.Timeline.Completed
			}
			result[name] = info
		}

		if resp.NextToken == nil {
			break
		}
		input.NextToken = resp.NextToken
	}

	return result, nil
}

// getCanariesByFilter フィルタパターンに一致するCanaryを取得
func getCanariesByFilter(client *synthetics.Client, filter string) ([]Canary, error) {
	allCanaries, err := getAllCanaries(client)
	if err != nil {
		return nil, err
	}

	return common.FilterByPattern(allCanaries, filter, func(c Canary) string { return c.Name }), nil
}

// getCanary 指定した名前のCanaryを取得
func getCanary(client *synthetics.Client, name string) (*Canary, error) {
	resp, err := client.GetCanary(context.Background(), &synthetics.GetCanaryInput{
		Name: awssdk.String(name),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("Canary '%s' が見つかりませんでした", name)
		}
		return nil, fmt.Errorf(common.GetErrorFormat, common.ErrorIcon, name, err)
	}

	c := resp.Canary
	canary := &Canary{
		Name:           awssdk.ToString(c.Name),
		RuntimeVersion: awssdk.ToString(c.RuntimeVersion),
		RoleArn:        awssdk.ToString(c.ExecutionRoleArn),
	}
	if c.Status != nil {
		canary.State = string(c.Status.State)
		canary.StateReason = awssdk.ToString(c.Status.StateReason)
	}
	if c.Schedule != nil {
		canary.Schedule = awssdk.ToString(c.Schedule.Expression)
	}
	if c.ArtifactS3Location != nil {
		canary.ArtifactLocation = "s3://" + awssdk.ToString(c.ArtifactS3Location)
	}
	return canary, nil
}

// startCanary Canaryを開始
func startCanary(client *synthetics.Client, name string) error {
	_, err := client.StartCanary(context.Background(), &synthetics.StartCanaryInput{
		Name: awssdk.String(name),
	})
	if err != nil {
		return fmt.Errorf(common.StartErrorFormat, common.ErrorIcon, name, err)
	}
	return nil
}

// stopCanary Canaryを停止
func stopCanary(client *synthetics.Client, name string) error {
	_, err := client.StopCanary(context.Background(), &synthetics.StopCanaryInput{
		Name: awssdk.String(name),
	})
	if err != nil {
		return fmt.Errorf(common.StopErrorFormat, common.ErrorIcon, name, err)
	}
	return nil
}

// canBeEnabled Canaryが有効化可能な状態か確認
func canBeEnabled(state string) bool {
	return state == CanaryStateStopped || state == CanaryStateReady
}

// canBeDisabled Canaryが無効化可能な状態か確認
func canBeDisabled(state string) bool {
	return state == CanaryStateRunning
}

// confirmAction ユーザーに確認を求める
func confirmAction(message string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("%s [y/N]: ", message)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// parseArtifactLocation s3://bucket/prefix 形式を分解
func parseArtifactLocation(location string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(location, "s3://") {
		return "", "", fmt.Errorf("⚠️ アーティファクトの場所は s3:// で始めてください: %s", location)
	}
	noScheme := strings.TrimPrefix(location, "s3://")
	parts := strings.SplitN(noScheme, "/", 2)
	bucket = parts[0]
	if bucket == "" {
		return "", "", fmt.Errorf("⚠️ バケット名が空です: %s", location)
	}
	if len(parts) > 1 {
		prefix = parts[1]
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return bucket, prefix, nil
}

// isNotFound AWS APIのNotFound系エラーか判定
func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ResourceNotFoundException", "NotFoundException", "NoSuchEntity", "NoSuchBucket":
			return true
		}
	}
	return false
}
