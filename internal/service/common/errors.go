package common

// メッセージの絵文字定数
const (
	ErrorIcon   = "❌"
	SuccessIcon = "✅"
	WarningIcon = "⚠️"
	SearchIcon  = "🔍"
	InfoIcon    = "📋"
	ProcessIcon = "🔄"
	PartyIcon   = "🎉"
)

// エラーメッセージフォーマット定数
const (
	// リソース操作エラー
	EnableErrorFormat  = "%s %s の有効化に失敗: %w"
	DisableErrorFormat = "%s %s の無効化に失敗: %w"
	StartErrorFormat   = "%s %s の起動に失敗: %w"
	StopErrorFormat    = "%s %s の停止に失敗: %w"
	DeleteErrorFormat  = "%s %s の削除に失敗: %w"
	GetErrorFormat     = "%s %s の取得に失敗: %w"

	// 成功メッセージ
	EnableSuccessFormat  = "%s %s を有効化しました"
	DisableSuccessFormat = "%s %s を無効化しました"
	StartSuccessFormat   = "%s %s を起動しました"
	StopSuccessFormat    = "%s %s を停止しました"
	DeleteSuccessFormat  = "%s %s を削除しました"

	// 処理中メッセージ
	ProcessingFormat = "%s %s を処理中..."
	SearchingFormat  = "%s %s を検索中..."
)
