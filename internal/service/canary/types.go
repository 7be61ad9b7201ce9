package canary

import (
	"time"
)

// Canary はSynthetics Canaryの概要情報を表す構造体
type Canary struct {
	Name             string
	State            string // RUNNING, STOPPED, ERROR等
	StateReason      string
	Schedule         string // rate式またはcron式
	RuntimeVersion   string // syn-nodejs-puppeteer-x.x等
	ArtifactLocation string // s3://bucket/prefix 形式
	RoleArn          string
	LastRunStatus    string     // PASSED, FAILED等
	LastRunTime      *time.Time // 未実行の場合はnil
	SuccessRate      *float64   // 実行履歴がない場合はnil
}

// CanaryState はCanaryの実行状態を表す定数
const (
	CanaryStateCreating = "CREATING"
	CanaryStateReady    = "READY"
	CanaryStateStarting = "STARTING"
	CanaryStateRunning  = "RUNNING"
	CanaryStateStopping = "STOPPING"
	CanaryStateStopped  = "STOPPED"
	CanaryStateError    = "ERROR"
	CanaryStateDeleting = "DELETING"
	CanaryStateUpdating = "UPDATING"
)

// CanaryRunState はCanary実行結果の状態を表す定数
const (
	CanaryRunStatePassed  = "PASSED"
	CanaryRunStateFailed  = "FAILED"
	CanaryRunStateRunning = "RUNNING"
)

// DeleteOptions はCanary削除のオプション
type DeleteOptions struct {
	KeepArtifacts bool // アーティファクトS3プレフィックスを残す
	DeleteRole    bool // 実行ロールも削除する
	SkipConfirm   bool
}
