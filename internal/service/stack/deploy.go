package stack

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
)

const deployWaitTimeout = 30 * time.Minute

// DeployStack は合成済みテンプレートをCloudFormationスタックとしてデプロイする。
// スタックが存在しなければ作成、存在すれば更新する。
func DeployStack(client *cloudformation.Client, stackName, templatePath string) error {
	body, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("テンプレートファイルの読み込みに失敗: %w", err)
	}

	ctx := context.Background()

	fmt.Printf("🚀 CloudFormationスタックをデプロイ中...\n")
	fmt.Printf("   スタック名: %s\n", stackName)
	fmt.Printf("   テンプレート: %s\n", templatePath)

	exists, err := stackExists(ctx, client, stackName)
	if err != nil {
		return err
	}

	if exists {
		err = updateStack(ctx, client, stackName, string(body))
	} else {
		err = createStack(ctx, client, stackName, string(body))
	}
	if err != nil {
		// エラー時にスタックイベントを整形表示
		fmt.Fprintf(os.Stderr, "\n📋 エラーの詳細:\n\n")
		if displayErr := displayFailedEvents(ctx, client, stackName); displayErr != nil {
			fmt.Fprintf(os.Stderr, "⚠️  イベント情報の取得に失敗しました: %v\n", displayErr)
		}
		return err
	}

	fmt.Printf("\n✅ デプロイが完了しました\n")
	return nil
}

// stackExists スタックの存在確認
func stackExists(ctx context.Context, client *cloudformation.Client, stackName string) (bool, error) {
	_, err := client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: awssdk.String(stackName),
	})
	if err != nil {
		if isValidationError(err, "does not exist") {
			return false, nil
		}
		return false, fmt.Errorf("スタックの確認に失敗: %w", err)
	}
	return true, nil
}

// isValidationError はCloudFormationのValidationErrorで、かつメッセージが
// 指定の文言を含むか判定する。存在しないスタックや変更なし更新は
// 専用のエラー型を持たず、このエラーコードでしか区別できない。
func isValidationError(err error, message string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == "ValidationError" && strings.Contains(apiErr.ErrorMessage(), message)
}

// createStack スタックを新規作成して完了まで待機
func createStack(ctx context.Context, client *cloudformation.Client, stackName, body string) error {
	_, err := client.CreateStack(ctx, &cloudformation.CreateStackInput{
		StackName:    awssdk.String(stackName),
		TemplateBody: awssdk.String(body),
		Capabilities: []cfntypes.Capability{cfntypes.CapabilityCapabilityIam},
	})
	if err != nil {
		return fmt.Errorf("スタックの作成に失敗: %w", err)
	}

	fmt.Printf("🔄 スタック作成の完了を待機中...\n")
	waiter := cloudformation.NewStackCreateCompleteWaiter(client)
	err = waiter.Wait(ctx, &cloudformation.DescribeStacksInput{
		StackName: awssdk.String(stackName),
	}, deployWaitTimeout)
	if err != nil {
		return fmt.Errorf("スタックの作成が完了しませんでした: %w", err)
	}
	return nil
}

// updateStack スタックを更新して完了まで待機。変更がない場合は成功扱い。
func updateStack(ctx context.Context, client *cloudformation.Client, stackName, body string) error {
	_, err := client.UpdateStack(ctx, &cloudformation.UpdateStackInput{
		StackName:    awssdk.String(stackName),
		TemplateBody: awssdk.String(body),
		Capabilities: []cfntypes.Capability{cfntypes.CapabilityCapabilityIam},
	})
	if err != nil {
		if isValidationError(err, "No updates are to be performed") {
			fmt.Printf("ℹ️  変更はありません\n")
			return nil
		}
		return fmt.Errorf("スタックの更新に失敗: %w", err)
	}

	fmt.Printf("🔄 スタック更新の完了を待機中...\n")
	waiter := cloudformation.NewStackUpdateCompleteWaiter(client)
	err = waiter.Wait(ctx, &cloudformation.DescribeStacksInput{
		StackName: awssdk.String(stackName),
	}, deployWaitTimeout)
	if err != nil {
		return fmt.Errorf("スタックの更新が完了しませんでした: %w", err)
	}
	return nil
}

// displayFailedEvents はスタックの失敗イベントを読みやすく表示する
func displayFailedEvents(ctx context.Context, client *cloudformation.Client, stackName string) error {
	result, err := client.DescribeStackEvents(ctx, &cloudformation.DescribeStackEventsInput{
		StackName: awssdk.String(stackName),
	})
	if err != nil {
		return fmt.Errorf("スタックイベントの取得に失敗: %w", err)
	}

	// 失敗イベントのみをフィルタ（リソースIDごとに最新のものだけ）
	seenResources := make(map[string]bool)
	var failedEvents []cfntypes.StackEvent
	for _, event := range result.StackEvents {
		status := string(event.ResourceStatus)
		resourceId := awssdk.ToString(event.LogicalResourceId)

		if seenResources[resourceId] {
			continue
		}

		if strings.HasSuffix(status, "_FAILED") {
			failedEvents = append(failedEvents, event)
			seenResources[resourceId] = true

			if len(failedEvents) >= 5 { // 最大5件まで
				break
			}
		}
	}

	if len(failedEvents) == 0 {
		fmt.Fprintf(os.Stderr, "⚠️  失敗イベントが見つかりませんでした\n")
		return nil
	}

	for i, event := range failedEvents {
		if i > 0 {
			fmt.Fprintf(os.Stderr, "\n")
		}
		fmt.Fprintf(os.Stderr, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
		fmt.Fprintf(os.Stderr, "📍 リソース: %s\n", awssdk.ToString(event.LogicalResourceId))
		fmt.Fprintf(os.Stderr, "⏰ 時刻: %s\n", event.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(os.Stderr, "❌ ステータス: %s\n", event.ResourceStatus)

		if event.ResourceStatusReason != nil {
			fmt.Fprintf(os.Stderr, "💬 理由:\n")
			printWrapped(awssdk.ToString(event.ResourceStatusReason))
		}
	}
	fmt.Fprintf(os.Stderr, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")

	return nil
}

// printWrapped 長いメッセージを折り返して表示
func printWrapped(reason string) {
	const maxWidth = 70
	for len(reason) > 0 {
		if len(reason) <= maxWidth {
			fmt.Fprintf(os.Stderr, "   %s\n", reason)
			break
		}
		breakPoint := maxWidth
		for breakPoint > 0 && reason[breakPoint] != ' ' {
			breakPoint--
		}
		if breakPoint == 0 {
			breakPoint = maxWidth
		}
		fmt.Fprintf(os.Stderr, "   %s\n", reason[:breakPoint])
		reason = strings.TrimSpace(reason[breakPoint:])
	}
}
