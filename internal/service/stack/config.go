package stack

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig はスタック定義ファイルを読み込んで検証する
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("定義ファイルの読み込みに失敗: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("定義ファイルのYAML解析に失敗: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validateConfig は定義内容の整合性を検証する
func validateConfig(cfg *Config) error {
	if cfg.Stack == "" {
		return fmt.Errorf("⚠️ stack（スタック名）は必須です")
	}
	if len(cfg.Canaries) == 0 {
		return fmt.Errorf("⚠️ canaries に1つ以上のCanaryを定義してください")
	}

	seen := make(map[string]bool)
	for i, def := range cfg.Canaries {
		if def.Name == "" {
			return fmt.Errorf("⚠️ canaries[%d]: name は必須です", i)
		}
		if seen[def.Name] {
			return fmt.Errorf("⚠️ canaries[%d]: name '%s' が重複しています", i, def.Name)
		}
		seen[def.Name] = true

		hasURL := def.URL != ""
		hasSource := def.Source != ""
		switch {
		case hasURL && hasSource:
			return fmt.Errorf("⚠️ %s: url と source は同時に指定できません", def.Name)
		case !hasURL && !hasSource:
			return fmt.Errorf("⚠️ %s: url または source のいずれかを指定してください", def.Name)
		case hasSource && def.Handler == "":
			return fmt.Errorf("⚠️ %s: source を使う場合は handler が必須です", def.Name)
		case hasURL && def.Handler != "":
			return fmt.Errorf("⚠️ %s: url 指定時に handler は指定できません", def.Name)
		}

		if def.TimeoutSeconds < 0 {
			return fmt.Errorf("⚠️ %s: timeoutSeconds は0以上で指定してください", def.Name)
		}
		if def.SuccessRetentionDays < 0 || def.FailureRetentionDays < 0 {
			return fmt.Errorf("⚠️ %s: 保持日数は0以上で指定してください", def.Name)
		}
	}

	return nil
}
