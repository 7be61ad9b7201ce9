package canary

import (
	"context"
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/synthetics"
	"github.com/schollz/progressbar/v3"
)

const (
	runPollInterval   = 5 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

// RunOptions は手動実行のオプション
type RunOptions struct {
	Wait    bool          // 実行完了まで待機する
	Timeout time.Duration // 待機のタイムアウト（ゼロ値なら既定値）
}

// RunCanary 指定したCanaryを手動実行
func RunCanary(client *synthetics.Client, name string, opts RunOptions) error {
	target, err := getCanary(client, name)
	if err != nil {
		return err
	}

	if target.State == CanaryStateRunning || target.State == CanaryStateStarting {
		return fmt.Errorf("Canary '%s' は既に実行中です", name)
	}

	startedAt := time.Now()
	if err := startCanary(client, name); err != nil {
		return err
	}
	fmt.Printf("✅ %s の実行を開始しました\n", name)

	if !opts.Wait {
		return nil
	}
	return waitForRun(client, name, startedAt, opts.Timeout)
}

// RunCanariesByFilter フィルタに一致するCanaryを一括実行
func RunCanariesByFilter(client *synthetics.Client, filter string, skipConfirm bool) error {
	canaries, err := getCanariesByFilter(client, filter)
	if err != nil {
		return err
	}
	if len(canaries) == 0 {
		return fmt.Errorf("フィルタ '%s' に一致するCanaryが見つかりませんでした", filter)
	}

	// 実行対象を表示
	fmt.Printf("以下の%d個のCanaryを実行します:\n", len(canaries))
	for _, c := range canaries {
		fmt.Printf("  - %s (%s)\n", c.Name, formatState(c.State))
	}

	if !skipConfirm {
		if !confirmAction("続行しますか？") {
			return fmt.Errorf("キャンセルされました")
		}
	}

	var errs []error
	successCount := 0
	for _, c := range canaries {
		if err := startCanary(client, c.Name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))
		} else {
			fmt.Printf("✅ %s の実行を開始しました\n", c.Name)
			successCount++
		}
	}

	fmt.Printf("\n--- 実行結果 ---\n")
	fmt.Printf("✅ 開始成功: %d個\n", successCount)
	if len(errs) > 0 {
		fmt.Printf("❌ 開始失敗: %d個\n", len(errs))
		for _, err := range errs {
			fmt.Printf("  - %v\n", err)
		}
		return fmt.Errorf("一部のCanaryの実行に失敗しました")
	}
	return nil
}

// waitForRun 開始した実行が完了するまでポーリングで待機
func waitForRun(client *synthetics.Client, name string, startedAt time.Time, timeout time.Duration) error {
	if timeout == 0 {
		timeout = defaultRunTimeout
	}
	deadline := time.Now().Add(timeout)

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(fmt.Sprintf("%s の実行完了を待機中", name)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	for time.Now().Before(deadline) {
		_ = bar.Add(1)
		time.Sleep(runPollInterval)

		status, finished, err := latestRunResult(client, name, startedAt)
		if err != nil {
			_ = bar.Finish()
			return err
		}
		if !finished {
			continue
		}

		_ = bar.Finish()
		if status == CanaryRunStatePassed {
			fmt.Printf("🎉 %s の実行が成功しました\n", name)
			return nil
		}
		return fmt.Errorf("❌ %s の実行が失敗しました (結果: %s)", name, status)
	}

	_ = bar.Finish()
	return fmt.Errorf("⚠️ %s の実行完了待機がタイムアウトしました（%s）", name, timeout)
}

// latestRunResult startedAt以降に開始された最新実行の結果を返す
func latestRunResult(client *synthetics.Client, name string, startedAt time.Time) (status string, finished bool, err error) {
	resp, err := client.GetCanaryRuns(context.Background(), &synthetics.GetCanaryRunsInput{
		Name:       awssdk.String(name),
		MaxResults: awssdk.Int32(1),
	})
	if err != nil {
		return "", false, fmt.Errorf("canary実行結果の取得に失敗: %w", err)
	}
	if len(resp.CanaryRuns) == 0 {
		return "", false, nil
	}

	run := resp.CanaryRuns[0]
	if run.Timeline == nil || run.Timeline.Started == nil || run.Timeline.Started.Before(startedAt) {
		// 今回の開始より前の実行履歴しかない
		return "", false, nil
	}
	if run.Status == nil {
		return "", false, nil
	}

	state := string(run.Status.State)
	if state == CanaryRunStateRunning {
		return state, false, nil
	}
	return state, true, nil
}
