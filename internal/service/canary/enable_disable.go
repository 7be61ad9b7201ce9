package canary

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/synthetics"
)

// transition は有効化・無効化に共通する状態遷移の定義
type transition struct {
	verb       string // "有効化" または "無効化"
	settled    string // 遷移不要な状態
	settledMsg string
	canApply   func(string) bool
	apply      func(*synthetics.Client, string) error
}

var enableTransition = transition{
	verb:       "有効化",
	settled:    CanaryStateRunning,
	settledMsg: "は既に実行中です",
	canApply:   canBeEnabled,
	apply:      startCanary,
}

var disableTransition = transition{
	verb:       "無効化",
	settled:    CanaryStateStopped,
	settledMsg: "は既に停止しています",
	canApply:   canBeDisabled,
	apply:      stopCanary,
}

// EnableCanary 指定したCanaryを有効化
func EnableCanary(client *synthetics.Client, name string) error {
	return applyTransitionToOne(client, name, enableTransition)
}

// DisableCanary 指定したCanaryを無効化
func DisableCanary(client *synthetics.Client, name string) error {
	return applyTransitionToOne(client, name, disableTransition)
}

// EnableCanariesByFilter フィルタに一致するCanaryを有効化
func EnableCanariesByFilter(client *synthetics.Client, filter string, skipConfirm bool) error {
	canaries, err := getCanariesByFilter(client, filter)
	if err != nil {
		return err
	}
	if len(canaries) == 0 {
		return fmt.Errorf("フィルタ '%s' に一致するCanaryが見つかりませんでした", filter)
	}
	return applyTransitionToMany(client, canaries, enableTransition, skipConfirm, "")
}

// DisableCanariesByFilter フィルタに一致するCanaryを無効化
func DisableCanariesByFilter(client *synthetics.Client, filter string, skipConfirm bool) error {
	canaries, err := getCanariesByFilter(client, filter)
	if err != nil {
		return err
	}
	if len(canaries) == 0 {
		return fmt.Errorf("フィルタ '%s' に一致するCanaryが見つかりませんでした", filter)
	}
	return applyTransitionToMany(client, canaries, disableTransition, skipConfirm, "")
}

// EnableAllCanaries 全てのCanaryを有効化
func EnableAllCanaries(client *synthetics.Client, skipConfirm bool) error {
	canaries, err := getAllCanaries(client)
	if err != nil {
		return err
	}
	if len(canaries) == 0 {
		return fmt.Errorf("Canaryが見つかりませんでした")
	}
	return applyTransitionToMany(client, canaries, enableTransition, skipConfirm, "")
}

// DisableAllCanaries 全てのCanaryを無効化
func DisableAllCanaries(client *synthetics.Client, skipConfirm bool) error {
	canaries, err := getAllCanaries(client)
	if err != nil {
		return err
	}
	if len(canaries) == 0 {
		return fmt.Errorf("Canaryが見つかりませんでした")
	}
	warning := "🔴 警告: 全てのCanaryが停止すると、監視が行われなくなります。"
	return applyTransitionToMany(client, canaries, disableTransition, skipConfirm, warning)
}

// applyTransitionToOne 単一Canaryに状態遷移を適用
func applyTransitionToOne(client *synthetics.Client, name string, tr transition) error {
	target, err := getCanary(client, name)
	if err != nil {
		return err
	}

	if target.State == tr.settled {
		fmt.Printf("ℹ️  %s %s\n", name, tr.settledMsg)
		return nil
	}

	if !tr.canApply(target.State) {
		return fmt.Errorf("Canary '%s' は現在の状態(%s)では%sできません", name, target.State, tr.verb)
	}

	if err := tr.apply(client, name); err != nil {
		return err
	}

	fmt.Printf("✅ %s を%sしました\n", name, tr.verb)
	return nil
}

// applyTransitionToMany 複数Canaryに状態遷移を適用
func applyTransitionToMany(client *synthetics.Client, canaries []Canary, tr transition, skipConfirm bool, warning string) error {
	// 遷移対象を選別
	var targets []Canary
	var settled []string
	var blocked []string

	for _, c := range canaries {
		switch {
		case c.State == tr.settled:
			settled = append(settled, c.Name)
		case tr.canApply(c.State):
			targets = append(targets, c)
		default:
			blocked = append(blocked, fmt.Sprintf("%s (%s)", c.Name, c.State))
		}
	}

	// 遷移対象がない場合
	if len(targets) == 0 {
		if len(settled) > 0 {
			fmt.Printf("ℹ️  全てのCanary%s (%d個)\n", tr.settledMsg, len(settled))
		}
		if len(blocked) > 0 {
			fmt.Printf("⚠️  以下のCanaryは現在の状態では%sできません:\n", tr.verb)
			for _, name := range blocked {
				fmt.Printf("  - %s\n", name)
			}
		}
		return nil
	}

	// 確認プロンプト
	if !skipConfirm {
		fmt.Printf("以下の%d個のCanaryを%sします:\n", len(targets), tr.verb)
		for _, c := range targets {
			fmt.Printf("  - %s (現在: %s)\n", c.Name, formatState(c.State))
		}
		if warning != "" {
			fmt.Printf("\n%s\n", warning)
		}
		if !confirmAction("続行しますか？") {
			return fmt.Errorf("キャンセルされました")
		}
	}

	// 遷移実行
	var errs []error
	successCount := 0
	for _, c := range targets {
		if err := tr.apply(client, c.Name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))
		} else {
			fmt.Printf("✅ %s を%sしました\n", c.Name, tr.verb)
			successCount++
		}
	}

	// 結果サマリー
	fmt.Printf("\n--- 実行結果 ---\n")
	if len(settled) > 0 {
		fmt.Printf("ℹ️  対象外（遷移不要）: %d個\n", len(settled))
	}
	if successCount > 0 {
		fmt.Printf("✅ %s成功: %d個\n", tr.verb, successCount)
	}
	if len(blocked) > 0 {
		fmt.Printf("⚠️  状態により対象外: %d個\n", len(blocked))
	}
	if len(errs) > 0 {
		fmt.Printf("❌ %s失敗: %d個\n", tr.verb, len(errs))
		for _, err := range errs {
			fmt.Printf("  - %v\n", err)
		}
		return fmt.Errorf("一部のCanaryの%sに失敗しました", tr.verb)
	}

	return nil
}
