package cmd

import (
	"github.com/aws/jsii-runtime-go"
	"github.com/spf13/cobra"

	"canarytk/internal/service/stack"
)

var (
	deployConfigPath string
	deployOutDir     string
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "定義ファイルからスタックをデプロイするコマンド",
	Long: `YAML定義ファイルからテンプレートを合成し、CloudFormationスタックとして
デプロイします。スタックが存在しなければ作成、存在すれば更新します。

使用例:
  ` + AppName + ` deploy -c canaries.yaml
  ` + AppName + ` deploy -c canaries.yaml -P my-profile`,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer jsii.Close()

		cfg, err := stack.LoadConfig(deployConfigPath)
		if err != nil {
			return err
		}

		templatePath, err := stack.SynthStack(cfg, deployOutDir)
		if err != nil {
			return err
		}

		clients, err := newClients()
		if err != nil {
			return err
		}
		return stack.DeployStack(clients.Cfn(), cfg.Stack, templatePath)
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(deployCmd)
	deployCmd.Flags().StringVarP(&deployConfigPath, "config", "c", "canaries.yaml", "定義ファイルのパス")
	deployCmd.Flags().StringVarP(&deployOutDir, "out", "o", "cdk.out", "テンプレートの出力先ディレクトリ")
}
