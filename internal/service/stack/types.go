package stack

// Config はCanaryスタック定義ファイル（YAML）の内容
type Config struct {
	Stack    string      `yaml:"stack"`
	Canaries []CanaryDef `yaml:"canaries"`
}

// CanaryDef は定義ファイル内の1つのCanary
type CanaryDef struct {
	Name string `yaml:"name"`

	// URL を指定するとハートビート監視になる（Source と排他）
	URL string `yaml:"url"`
	// Source はスクリプト一式のディレクトリまたはzip（Handler必須）
	Source  string `yaml:"source"`
	Handler string `yaml:"handler"`

	Schedule             string            `yaml:"schedule"`
	Runtime              string            `yaml:"runtime"`
	TimeoutSeconds       int               `yaml:"timeoutSeconds"`
	SuccessRetentionDays int               `yaml:"successRetentionDays"`
	FailureRetentionDays int               `yaml:"failureRetentionDays"`
	StartAfterCreation   *bool             `yaml:"startAfterCreation"`
	Environment          map[string]string `yaml:"environment"`
}
