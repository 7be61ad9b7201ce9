package synthetics

import "errors"

// 構成時の検証エラー。いずれも fmt.Errorf("%w: ...") でラップされて返るため、
// 呼び出し側は errors.Is で種別を判定できる。
var (
	// ErrScheduleFormat はrate式が rate(<number> <unit>) 形式でない場合のエラー
	ErrScheduleFormat = errors.New("synthetics: invalid rate expression")
	// ErrScheduleRange はrate式の値が上限（1時間）を超えた場合のエラー
	ErrScheduleRange = errors.New("synthetics: rate out of range")
	// ErrCodeSize はインラインコードが空、またはサイズ上限超過の場合のエラー
	ErrCodeSize = errors.New("synthetics: invalid inline code size")
	// ErrCodeFormat はコードアセットがディレクトリでもzipでもない場合のエラー
	ErrCodeFormat = errors.New("synthetics: invalid code artifact")
	// ErrAssetStructure はアセットのディレクトリ構成が規約に合わない場合のエラー
	ErrAssetStructure = errors.New("synthetics: invalid asset directory structure")
	// ErrHandlerFormat はハンドラ名がサフィックス・長さの規約に合わない場合のエラー
	ErrHandlerFormat = errors.New("synthetics: invalid handler name")
	// ErrTimeoutRange は実行タイムアウトがスケジュール間隔を超えた場合のエラー
	ErrTimeoutRange = errors.New("synthetics: timeout out of range")
	// ErrNameFormat はCanary名が文字種・長さの規約に合わない場合のエラー
	ErrNameFormat = errors.New("synthetics: invalid canary name")
)
