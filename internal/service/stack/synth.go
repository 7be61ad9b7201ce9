package stack

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"

	"canarytk/synthetics"
)

// SynthStack は定義からCloudFormationテンプレートを合成し、
// 生成されたテンプレートファイルのパスを返す
func SynthStack(cfg *Config, outDir string) (string, error) {
	app := awscdk.NewApp(&awscdk.AppProps{
		Outdir: jsii.String(outDir),
	})
	stack := awscdk.NewStack(app, jsii.String(cfg.Stack), nil)

	for _, def := range cfg.Canaries {
		if err := addCanary(stack, def); err != nil {
			return "", fmt.Errorf("❌ %s の定義が不正です: %w", def.Name, err)
		}
	}

	app.Synth(nil)
	return filepath.Join(outDir, cfg.Stack+".template.json"), nil
}

// addCanary 定義1件をCanaryコンストラクトに変換してスタックに追加
func addCanary(stack awscdk.Stack, def CanaryDef) error {
	test, err := buildTest(def)
	if err != nil {
		return err
	}

	props := &synthetics.CanaryProps{
		CanaryName: jsii.String(def.Name),
		Test:       test,
	}

	if def.Schedule != "" {
		schedule, err := synthetics.ParseSchedule(def.Schedule)
		if err != nil {
			return err
		}
		props.Schedule = schedule
	}
	if def.Runtime != "" {
		props.Runtime = resolveRuntime(def.Runtime)
	}
	if def.TimeoutSeconds > 0 {
		props.Timeout = awscdk.Duration_Seconds(jsii.Number(float64(def.TimeoutSeconds)))
	}
	if def.SuccessRetentionDays > 0 {
		props.SuccessRetentionPeriod = awscdk.Duration_Days(jsii.Number(float64(def.SuccessRetentionDays)))
	}
	if def.FailureRetentionDays > 0 {
		props.FailureRetentionPeriod = awscdk.Duration_Days(jsii.Number(float64(def.FailureRetentionDays)))
	}
	if def.StartAfterCreation != nil {
		props.StartAfterCreation = def.StartAfterCreation
	}
	if len(def.Environment) > 0 {
		env := make(map[string]*string, len(def.Environment))
		for k, v := range def.Environment {
			env[k] = jsii.String(v)
		}
		props.EnvironmentVariables = &env
	}

	_, err = synthetics.NewCanary(stack, constructID(def.Name), props)
	return err
}

// buildTest 定義からTest（スクリプト＋ハンドラ）を組み立てる
func buildTest(def CanaryDef) (*synthetics.Test, error) {
	if def.URL != "" {
		return synthetics.HeartbeatTest(def.URL)
	}
	return synthetics.CustomTest(&synthetics.CustomTestProps{
		Code:    synthetics.NewAssetCode(def.Source, nil),
		Handler: def.Handler,
	})
}

// resolveRuntime ランタイム名を解決する。名前の系統から言語を推定する。
func resolveRuntime(name string) *synthetics.Runtime {
	switch name {
	case synthetics.RuntimeSynNodejsPuppeteer38.Name():
		return synthetics.RuntimeSynNodejsPuppeteer38
	case synthetics.RuntimeSynNodejsPuppeteer39.Name():
		return synthetics.RuntimeSynNodejsPuppeteer39
	case synthetics.RuntimeSynPythonSelenium13.Name():
		return synthetics.RuntimeSynPythonSelenium13
	}
	family := synthetics.RuntimeFamilyNodejs
	if strings.HasPrefix(name, "syn-python") {
		family = synthetics.RuntimeFamilyPython
	}
	return synthetics.NewRuntime(name, family)
}

// constructID Canary名からコンストラクトIDを生成（my-canary -> MyCanary）
func constructID(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_'
	})
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
