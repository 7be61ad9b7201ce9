package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"canarytk/internal/aws"
)

// AppName はCLIのコマンド名
const AppName = "canarytk"

var (
	region  string
	profile string
	awsCtx  aws.Context
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   AppName,
	Short: "CloudWatch Synthetics Canaryの定義・デプロイ・運用ツール",
	Long: `CloudWatch Synthetics Canaryを扱うためのツールです。
YAML定義からのテンプレート合成とデプロイ、稼働中Canaryの一覧表示・
有効化/無効化・手動実行・削除・メトリクス確認を行います。

使用例:
  ` + AppName + ` synth -c canaries.yaml              # テンプレートを合成
  ` + AppName + ` deploy -c canaries.yaml             # スタックをデプロイ
  ` + AppName + ` canary ls                           # Canary一覧を表示`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := RootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&region, "region", "R", "ap-northeast-1", "AWSリージョン")
	RootCmd.PersistentFlags().StringVarP(&profile, "profile", "P", "", "AWSプロファイル")

	// コマンド実行前に共通でプロファイルチェックを行う
	RootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// AWSにアクセスしないコマンドの場合はスキップ
		switch cmd.Name() {
		case "help", "version", "synth", "completion":
			return nil
		}
		if err := checkAndSetProfile(cmd); err != nil {
			return err
		}
		awsCtx = aws.Context{Profile: profile, Region: region}
		return nil
	}
}

// newClients はawsCtxからAWSクライアント群を作成する
func newClients() (*aws.Clients, error) {
	c, err := aws.NewClients(awsCtx)
	if err != nil {
		return nil, fmt.Errorf("AWS設定の読み込みに失敗: %w", err)
	}
	return c, nil
}

// checkAndSetProfile はプロファイルの確認と設定を行うプライベート関数
func checkAndSetProfile(cmd *cobra.Command) error {
	// プロファイルがすでに指定されている場合は何もしない
	if profile != "" {
		return nil
	}
	// 環境変数からプロファイル取得を試みる
	envProfile := os.Getenv("AWS_PROFILE")
	if envProfile == "" {
		// プロファイルが見つからない場合はエラー
		cmd.SilenceUsage = true // エラー時のUsage表示を抑制
		return errors.New("❌ エラー: プロファイルが指定されていません。-Pオプションまたは AWS_PROFILE 環境変数を指定してください")
	}
	// 環境変数からプロファイルを設定
	profile = envProfile
	cmd.Println("🔍 環境変数 AWS_PROFILE の値 '" + profile + "' を使用します")
	return nil
}
