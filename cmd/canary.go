package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"canarytk/internal/aws"
	"canarytk/internal/service/canary"
)

var (
	canaryName          string
	canaryFilter        string
	canaryAll           bool
	canaryYes           bool
	canaryWait          bool
	canaryWaitTimeout   time.Duration
	canaryKeepArtifacts bool
	canaryDeleteRole    bool
	canaryMetricsDays   int
	clients             *aws.Clients
)

var CanaryCmd = &cobra.Command{
	Use:   "canary",
	Short: "Synthetics Canary操作コマンド",
	Long: `稼働中のSynthetics Canaryの一覧表示、有効化/無効化、手動実行、
削除、メトリクス確認を行います。

使用例:
  ` + AppName + ` canary ls                           # Canary一覧を表示
  ` + AppName + ` canary enable --name my-canary      # 特定のCanaryを有効化
  ` + AppName + ` canary disable --filter "test-*"    # パターンに一致するCanaryを無効化
  ` + AppName + ` canary run --name my-canary --wait  # 手動実行して完了を待つ
  ` + AppName + ` canary rm --name my-canary          # Canaryを削除
  ` + AppName + ` canary metrics --name my-canary     # メトリクスを表示`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 親のPersistentPreRunEを実行（プロファイルチェックとawsCtx設定）
		if err := RootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}

		// AWSクライアント群を初期化
		var err error
		clients, err = newClients()
		return err
	},
}

var canaryLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "Canary一覧を表示するコマンド",
	Long: `Synthetics Canaryの一覧を状態・スケジュール・成功率付きで表示します。
--filter で名前パターン（ワイルドカード対応）による絞り込みができます。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return canary.ListCanaries(clients.Synthetics(), canaryFilter)
	},
	SilenceUsage: true,
}

var canaryEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Canaryを有効化するコマンド",
	Long: `指定したCanaryを有効化（開始）します。
--name, --filter, --all のいずれかを指定してください。`,
	PreRunE: validateCanaryTargetFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		if canaryAll {
			return canary.EnableAllCanaries(clients.Synthetics(), canaryYes)
		}
		if canaryFilter != "" {
			return canary.EnableCanariesByFilter(clients.Synthetics(), canaryFilter, canaryYes)
		}
		return canary.EnableCanary(clients.Synthetics(), canaryName)
	},
	SilenceUsage: true,
}

var canaryDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Canaryを無効化するコマンド",
	Long: `指定したCanaryを無効化（停止）します。
--name, --filter, --all のいずれかを指定してください。`,
	PreRunE: validateCanaryTargetFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		if canaryAll {
			return canary.DisableAllCanaries(clients.Synthetics(), canaryYes)
		}
		if canaryFilter != "" {
			return canary.DisableCanariesByFilter(clients.Synthetics(), canaryFilter, canaryYes)
		}
		return canary.DisableCanary(clients.Synthetics(), canaryName)
	},
	SilenceUsage: true,
}

var canaryRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Canaryを手動実行するコマンド",
	Long: `指定したCanaryをスケジュールを待たずに実行します。
--wait を付けると実行完了までポーリングし、結果を表示します。`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := ValidateExclusiveOptions(true, true, canaryName != "", canaryFilter != ""); err != nil {
			return err
		}
		if canaryWait && canaryFilter != "" {
			return fmt.Errorf("⚠️ --wait は --name 指定時のみ使えます")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if canaryFilter != "" {
			return canary.RunCanariesByFilter(clients.Synthetics(), canaryFilter, canaryYes)
		}
		return canary.RunCanary(clients.Synthetics(), canaryName, canary.RunOptions{
			Wait:    canaryWait,
			Timeout: canaryWaitTimeout,
		})
	},
	SilenceUsage: true,
}

var canaryRmCmd = &cobra.Command{
	Use:   "rm",
	Short: "Canaryを削除するコマンド",
	Long: `指定したCanaryを削除します。実行中の場合は停止してから削除します。
既定ではアーティファクトのS3プレフィックスも削除します。
--delete-role を付けると実行ロールも削除します。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if canaryName == "" {
			return fmt.Errorf("⚠️ --name を指定してください")
		}
		deleter := canary.Deleter{
			Synthetics: clients.Synthetics(),
			S3:         clients.S3(),
			Iam:        clients.Iam(),
		}
		return deleter.DeleteCanary(canaryName, canary.DeleteOptions{
			KeepArtifacts: canaryKeepArtifacts,
			DeleteRole:    canaryDeleteRole,
			SkipConfirm:   canaryYes,
		})
	},
	SilenceUsage: true,
}

var canaryMetricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Canaryのメトリクスを表示するコマンド",
	Long: `指定したCanaryの成功率・実行時間・失敗回数を表示します。
--days で集計期間を指定できます（既定: 1日）。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if canaryName == "" {
			return fmt.Errorf("⚠️ --name を指定してください")
		}
		lookback := time.Duration(canaryMetricsDays) * 24 * time.Hour
		return canary.ShowCanaryMetrics(clients.Synthetics(), clients.CloudWatch(), canaryName, lookback)
	},
	SilenceUsage: true,
}

// validateCanaryTargetFlags は対象指定フラグの排他検証を行う
func validateCanaryTargetFlags(cmd *cobra.Command, args []string) error {
	return ValidateExclusiveOptions(true, true,
		canaryName != "",
		canaryFilter != "",
		canaryAll)
}

func init() {
	RootCmd.AddCommand(CanaryCmd)
	CanaryCmd.AddCommand(canaryLsCmd)
	CanaryCmd.AddCommand(canaryEnableCmd)
	CanaryCmd.AddCommand(canaryDisableCmd)
	CanaryCmd.AddCommand(canaryRunCmd)
	CanaryCmd.AddCommand(canaryRmCmd)
	CanaryCmd.AddCommand(canaryMetricsCmd)

	canaryLsCmd.Flags().StringVarP(&canaryFilter, "filter", "f", "", "名前パターン（ワイルドカード対応）")

	// Enable/Disableコマンドのフラグ設定
	for _, cmd := range []*cobra.Command{canaryEnableCmd, canaryDisableCmd} {
		cmd.Flags().StringVarP(&canaryName, "name", "n", "", "Canary名")
		cmd.Flags().StringVarP(&canaryFilter, "filter", "f", "", "名前パターン（ワイルドカード対応）")
		cmd.Flags().BoolVarP(&canaryAll, "all", "a", false, "全てのCanaryを対象")
		cmd.Flags().BoolVarP(&canaryYes, "yes", "y", false, "確認なしで実行")
	}

	canaryRunCmd.Flags().StringVarP(&canaryName, "name", "n", "", "Canary名")
	canaryRunCmd.Flags().StringVarP(&canaryFilter, "filter", "f", "", "名前パターン（ワイルドカード対応）")
	canaryRunCmd.Flags().BoolVarP(&canaryYes, "yes", "y", false, "確認なしで実行")
	canaryRunCmd.Flags().BoolVarP(&canaryWait, "wait", "w", false, "実行完了まで待機")
	canaryRunCmd.Flags().DurationVar(&canaryWaitTimeout, "timeout", 0, "待機のタイムアウト（例: 5m）")

	canaryRmCmd.Flags().StringVarP(&canaryName, "name", "n", "", "Canary名")
	canaryRmCmd.Flags().BoolVarP(&canaryYes, "yes", "y", false, "確認なしで実行")
	canaryRmCmd.Flags().BoolVar(&canaryKeepArtifacts, "keep-artifacts", false, "アーティファクトを削除しない")
	canaryRmCmd.Flags().BoolVar(&canaryDeleteRole, "delete-role", false, "実行ロールも削除する")

	canaryMetricsCmd.Flags().StringVarP(&canaryName, "name", "n", "", "Canary名")
	canaryMetricsCmd.Flags().IntVar(&canaryMetricsDays, "days", 1, "集計期間（日数）")
}
