package canary

import (
	"context"
	"fmt"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/synthetics"
	syntheticstypes "github.com/aws/aws-sdk-go-v2/service/synthetics/types"

	"canarytk/internal/service/common"
)

const successRateSampleSize = 100

// ListCanaries cmdから呼ばれるメイン関数（Get + Display）
func ListCanaries(client *synthetics.Client, filter string) error {
	// Get: データ取得
	canaries, err := getAllCanaries(client)
	if err != nil {
		return common.FormatListError("Canary", err)
	}

	if filter != "" {
		canaries = common.FilterByPattern(canaries, filter, func(c Canary) string { return c.Name })
	}

	// 成功率は各Canaryの実行履歴APIが必要なので並列で取得
	attachSuccessRates(client, canaries)

	// Display: 共通表示処理
	opts := &common.DisplayOptions{
		ShowCount:    true,
		EmptyMessage: common.FormatEmptyMessage("Canary"),
	}
	if filter != "" {
		opts.FilterMessages = []string{fmt.Sprintf("'%s' に一致する", filter)}
	}
	return common.DisplayList(canaries, "Canary", canariesToTableData, opts)
}

// attachSuccessRates 直近の実行履歴から各Canaryの成功率を並列で取得
func attachSuccessRates(client *synthetics.Client, canaries []Canary) {
	executor := common.NewParallelExecutor(5)
	for i := range canaries {
		i := i
		executor.Execute(func() {
			canaries[i].SuccessRate = fetchSuccessRate(client, canaries[i].Name)
		})
	}
	executor.Wait()
}

// fetchSuccessRate 直近の実行結果から成功率を計算（履歴がない場合はnil）
func fetchSuccessRate(client *synthetics.Client, name string) *float64 {
	resp, err := client.GetCanaryRuns(context.Background(), &synthetics.GetCanaryRunsInput{
		Name:       awssdk.String(name),
		MaxResults: awssdk.Int32(successRateSampleSize),
	})
	if err != nil {
		return nil
	}
	return summarizeRuns(runStates(resp.CanaryRuns))
}

// runStates 実行履歴から状態文字列だけを抜き出す
func runStates(runs []syntheticstypes.CanaryRun) []string {
	states := make([]string, 0, len(runs))
	for _, run := range runs {
		if run.Status != nil {
			states = append(states, string(run.Status.State))
		}
	}
	return states
}

// summarizeRuns 完了済み実行の成功率をパーセントで返す
func summarizeRuns(states []string) *float64 {
	completed := 0
	passed := 0
	for _, state := range states {
		switch state {
		case CanaryRunStatePassed:
			completed++
			passed++
		case CanaryRunStateFailed:
			completed++
		}
	}
	if completed == 0 {
		return nil
	}
	rate := float64(passed) / float64(completed) * 100
	return &rate
}

// canariesToTableData Canary情報をテーブルデータに変換
func canariesToTableData(canaries []Canary) ([]common.TableColumn, [][]string) {
	columns := []common.TableColumn{
		{Header: "名前"},
		{Header: "状態"},
		{Header: "スケジュール"},
		{Header: "成功率"},
		{Header: "最終実行"},
		{Header: "最終結果"},
	}

	data := make([][]string, len(canaries))
	for i, c := range canaries {
		data[i] = []string{
			c.Name,
			formatState(c.State),
			formatSchedule(c.Schedule),
			formatSuccessRate(c.SuccessRate),
			formatLastRunTime(c.LastRunTime),
			formatRunStatus(c.LastRunStatus),
		}
	}
	return columns, data
}

// formatState 状態を見やすくフォーマット
func formatState(state string) string {
	switch state {
	case CanaryStateRunning:
		return "[実行中]"
	case CanaryStateStopped:
		return "[停止中]"
	case CanaryStateError:
		return "[エラー]"
	case CanaryStateStarting:
		return "[開始中]"
	case CanaryStateStopping:
		return "[停止処理中]"
	case CanaryStateReady:
		return "[準備完了]"
	default:
		return state
	}
}

// formatSchedule スケジュールを見やすくフォーマット
func formatSchedule(schedule string) string {
	if schedule == "" {
		return "なし"
	}
	// rate(5 minutes) -> 定期: 5 minutes
	if strings.HasPrefix(schedule, "rate(") && strings.HasSuffix(schedule, ")") {
		interval := schedule[5 : len(schedule)-1]
		if interval == "0 minutes" || interval == "0 minute" {
			return "1回のみ"
		}
		return "定期: " + interval
	}
	// cron式はそのまま表示
	return schedule
}

// formatSuccessRate 成功率をフォーマット（履歴なしは "-"）
func formatSuccessRate(rate *float64) string {
	if rate == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *rate)
}

// formatLastRunTime 最終実行時刻をフォーマット
func formatLastRunTime(t *time.Time) string {
	if t == nil {
		return "未実行"
	}
	return t.Local().Format("01/02 15:04")
}

// formatRunStatus 実行結果ステータスをフォーマット
func formatRunStatus(status string) string {
	switch status {
	case CanaryRunStatePassed:
		return "[成功]"
	case CanaryRunStateFailed:
		return "[失敗]"
	case CanaryRunStateRunning:
		return "[実行中]"
	case "":
		return "-"
	default:
		return status
	}
}
