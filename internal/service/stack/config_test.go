package stack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "canaries.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
stack: monitoring-canaries
canaries:
  - name: api-health
    url: https://example.com/health
    schedule: rate(5 minutes)
    timeoutSeconds: 30
    successRetentionDays: 14
  - name: checkout-flow
    source: ./canary-src
    handler: index.handler
    environment:
      TARGET_ENV: prod
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "monitoring-canaries", cfg.Stack)
	require.Len(t, cfg.Canaries, 2)

	first := cfg.Canaries[0]
	assert.Equal(t, "api-health", first.Name)
	assert.Equal(t, "https://example.com/health", first.URL)
	assert.Equal(t, "rate(5 minutes)", first.Schedule)
	assert.Equal(t, 30, first.TimeoutSeconds)
	assert.Equal(t, 14, first.SuccessRetentionDays)

	second := cfg.Canaries[1]
	assert.Equal(t, "./canary-src", second.Source)
	assert.Equal(t, "index.handler", second.Handler)
	assert.Equal(t, "prod", second.Environment["TARGET_ENV"])
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name:    "スタック名なし",
			content: "canaries:\n  - name: a\n    url: https://example.com\n",
			wantMsg: "stack",
		},
		{
			name:    "canariesが空",
			content: "stack: s\ncanaries: []\n",
			wantMsg: "1つ以上",
		},
		{
			name:    "nameなし",
			content: "stack: s\ncanaries:\n  - url: https://example.com\n",
			wantMsg: "name は必須",
		},
		{
			name: "name重複",
			content: `stack: s
canaries:
  - name: a
    url: https://example.com
  - name: a
    url: https://example.org
`,
			wantMsg: "重複",
		},
		{
			name:    "urlとsourceの併用",
			content: "stack: s\ncanaries:\n  - name: a\n    url: https://example.com\n    source: ./src\n    handler: index.handler\n",
			wantMsg: "同時に指定できません",
		},
		{
			name:    "urlもsourceもなし",
			content: "stack: s\ncanaries:\n  - name: a\n",
			wantMsg: "いずれかを指定",
		},
		{
			name:    "sourceにhandlerなし",
			content: "stack: s\ncanaries:\n  - name: a\n    source: ./src\n",
			wantMsg: "handler が必須",
		},
		{
			name:    "不正なYAML",
			content: "stack: [unclosed\n",
			wantMsg: "YAML解析に失敗",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConstructID(t *testing.T) {
	assert.Equal(t, "ApiHealth", constructID("api-health"))
	assert.Equal(t, "CheckoutFlow", constructID("checkout_flow"))
	assert.Equal(t, "Simple", constructID("simple"))
}

func TestResolveRuntime(t *testing.T) {
	assert.Equal(t, "syn-nodejs-puppeteer-3.9", resolveRuntime("syn-nodejs-puppeteer-3.9").Name())

	py := resolveRuntime("syn-python-selenium-2.0")
	assert.Equal(t, "syn-python-selenium-2.0", py.Name())
	assert.Equal(t, "python", string(py.Family()))

	node := resolveRuntime("syn-nodejs-puppeteer-4.0")
	assert.Equal(t, "nodejs", string(node.Family()))
}
