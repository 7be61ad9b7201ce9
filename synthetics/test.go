package synthetics

import (
	"fmt"
	"strings"
)

const (
	// handlerSuffix はCanaryハンドラ名の必須サフィックス
	handlerSuffix = ".handler"
	// maxHandlerLength はハンドラ名の最大長
	maxHandlerLength = 21
)

// heartbeatHandler はハートビートスクリプトのエントリポイント
const heartbeatHandler = "index.handler"

// AWSのハートビートblueprintを簡略化したもの。__URL__ を監視対象URLで置換して使う。
const heartbeatScriptTemplate = `const synthetics = require('Synthetics');
const log = require('SyntheticsLogger');

const pageLoadBlueprint = async function () {
    const url = '__URL__';

    const page = await synthetics.getPage();
    const response = await page.goto(url, { waitUntil: 'domcontentloaded', timeout: 30000 });
    if (!response) {
        throw new Error('no response from ' + url);
    }
    log.info('response status: ' + response.status());
    if (response.status() < 200 || response.status() > 299) {
        throw new Error('failed to load ' + url);
    }
};

exports.handler = async () => {
    return await pageLoadBlueprint();
};
`

// Test はCanaryが実行するスクリプトとそのエントリポイントの組
type Test struct {
	code    Code
	handler string
}

// CustomTestProps はCustomTestの入力
type CustomTestProps struct {
	// Code は実行するスクリプトの供給元
	Code Code
	// Handler はスクリプトのエントリポイント（例: index.handler）
	Handler string
}

// CustomTest は任意のコードとハンドラからTestを生成する。
// ハンドラ名の規約違反は ErrHandlerFormat を返す。
func CustomTest(props *CustomTestProps) (*Test, error) {
	if props == nil || props.Code == nil {
		return nil, fmt.Errorf("synthetics: test code is required")
	}
	if err := validateHandler(props.Handler); err != nil {
		return nil, err
	}
	return &Test{code: props.Code, handler: props.Handler}, nil
}

// HeartbeatTest は指定URLの死活監視を行う定型スクリプトのTestを生成する。
// URLの妥当性検証は実行時にSyntheticsランタイム側で行われる。
func HeartbeatTest(url string) (*Test, error) {
	if url == "" {
		return nil, fmt.Errorf("synthetics: heartbeat url cannot be empty")
	}

	script := strings.ReplaceAll(heartbeatScriptTemplate, "__URL__", url)
	code, err := NewInlineCode(script, nil)
	if err != nil {
		return nil, err
	}
	return &Test{code: code, handler: heartbeatHandler}, nil
}

// Code はスクリプトの供給元を返す
func (t *Test) Code() Code {
	return t.code
}

// Handler はエントリポイント名を返す
func (t *Test) Handler() string {
	return t.handler
}

// validateHandler はハンドラ名の規約（サフィックス・長さ）を検証する
func validateHandler(handler string) error {
	if !strings.HasSuffix(handler, handlerSuffix) {
		return fmt.Errorf("%w: %q must end with %q", ErrHandlerFormat, handler, handlerSuffix)
	}
	if len(handler) > maxHandlerLength {
		return fmt.Errorf("%w: %q is longer than %d characters", ErrHandlerFormat, handler, maxHandlerLength)
	}
	return nil
}
