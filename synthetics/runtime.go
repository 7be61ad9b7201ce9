package synthetics

// RuntimeFamily はCanaryランタイムの言語系統
type RuntimeFamily string

const (
	RuntimeFamilyNodejs RuntimeFamily = "nodejs"
	RuntimeFamilyPython RuntimeFamily = "python"
)

// Runtime はSynthetics Canaryのランタイムバージョン
// （syn-nodejs-puppeteer-x.x / syn-python-selenium-x.x 等）
type Runtime struct {
	name   string
	family RuntimeFamily
}

// 定義済みランタイム。新しいバージョンが必要な場合は NewRuntime で指定する。
var (
	RuntimeSynNodejsPuppeteer38 = NewRuntime("syn-nodejs-puppeteer-3.8", RuntimeFamilyNodejs)
	RuntimeSynNodejsPuppeteer39 = NewRuntime("syn-nodejs-puppeteer-3.9", RuntimeFamilyNodejs)
	RuntimeSynPythonSelenium13  = NewRuntime("syn-python-selenium-1.3", RuntimeFamilyPython)
)

// NewRuntime は任意のランタイムバージョン名からRuntimeを生成する
func NewRuntime(name string, family RuntimeFamily) *Runtime {
	return &Runtime{name: name, family: family}
}

// Name はランタイムバージョン名を返す
func (r *Runtime) Name() string {
	return r.name
}

// Family はランタイムの言語系統を返す
func (r *Runtime) Family() RuntimeFamily {
	return r.family
}
