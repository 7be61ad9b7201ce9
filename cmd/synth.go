package cmd

import (
	"fmt"

	"github.com/aws/jsii-runtime-go"
	"github.com/spf13/cobra"

	"canarytk/internal/service/stack"
)

var (
	synthConfigPath string
	synthOutDir     string
)

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "定義ファイルからテンプレートを合成するコマンド",
	Long: `YAML定義ファイルからCloudFormationテンプレートを合成します。
AWSへのアクセスは行いません。

使用例:
  ` + AppName + ` synth -c canaries.yaml
  ` + AppName + ` synth -c canaries.yaml -o ./out`,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer jsii.Close()

		cfg, err := stack.LoadConfig(synthConfigPath)
		if err != nil {
			return err
		}

		templatePath, err := stack.SynthStack(cfg, synthOutDir)
		if err != nil {
			return err
		}

		fmt.Printf("✅ テンプレートを出力しました: %s\n", templatePath)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(synthCmd)
	synthCmd.Flags().StringVarP(&synthConfigPath, "config", "c", "canaries.yaml", "定義ファイルのパス")
	synthCmd.Flags().StringVarP(&synthOutDir, "out", "o", "cdk.out", "テンプレートの出力先ディレクトリ")
}
