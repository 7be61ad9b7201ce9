package synthetics

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// rate(<整数> <単位>) のみ受け付ける。cron式はSyntheticsのrate式仕様外。
var rateExpressionPattern = regexp.MustCompile(`^rate\((\d+) (minute|minutes|hour)\)$`)

// Schedule はCanaryの実行間隔を表すrate式
type Schedule struct {
	expression string
	interval   time.Duration
}

// ParseSchedule はrate式文字列を検証してScheduleを生成する。
// 形式不正は ErrScheduleFormat、1時間を超える間隔は ErrScheduleRange を返す。
// 値0は「1回だけ実行」を意味する有効な式。
func ParseSchedule(expression string) (*Schedule, error) {
	m := rateExpressionPattern.FindStringSubmatch(expression)
	if m == nil {
		return nil, fmt.Errorf("%w: %q does not match rate(<number> <unit>)", ErrScheduleFormat, expression)
	}

	value, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrScheduleFormat, expression)
	}

	var interval time.Duration
	switch m[2] {
	case "minute", "minutes":
		interval = time.Duration(value) * time.Minute
	case "hour":
		interval = time.Duration(value) * time.Hour
	}

	if interval > time.Hour {
		return nil, fmt.Errorf("%w: expression %q must not be greater than 1 hour", ErrScheduleRange, expression)
	}

	return &Schedule{expression: expression, interval: interval}, nil
}

// NewScheduleRate は間隔からrate式を組み立てる。分単位で0〜60分のみ有効。
func NewScheduleRate(interval time.Duration) (*Schedule, error) {
	if interval%time.Minute != 0 {
		return nil, fmt.Errorf("%w: interval %s must be a whole number of minutes", ErrScheduleFormat, interval)
	}
	minutes := int(interval / time.Minute)
	if minutes > 60 {
		return nil, fmt.Errorf("%w: interval %s must not be greater than 1 hour", ErrScheduleRange, interval)
	}

	switch minutes {
	case 1:
		return &Schedule{expression: "rate(1 minute)", interval: interval}, nil
	case 60:
		return &Schedule{expression: "rate(1 hour)", interval: interval}, nil
	default:
		return &Schedule{expression: fmt.Sprintf("rate(%d minutes)", minutes), interval: interval}, nil
	}
}

// ScheduleOnce はデプロイ後に1回だけ実行するスケジュール
func ScheduleOnce() *Schedule {
	return &Schedule{expression: "rate(0 minutes)"}
}

// ScheduleOneMinute は1分間隔のスケジュール
func ScheduleOneMinute() *Schedule {
	return &Schedule{expression: "rate(1 minute)", interval: time.Minute}
}

// ScheduleFiveMinutes は5分間隔のスケジュール
func ScheduleFiveMinutes() *Schedule {
	return &Schedule{expression: "rate(5 minutes)", interval: 5 * time.Minute}
}

// ScheduleOneHour は1時間間隔のスケジュール
func ScheduleOneHour() *Schedule {
	return &Schedule{expression: "rate(1 hour)", interval: time.Hour}
}

// ExpressionString は元のrate式をそのまま返す
func (s *Schedule) ExpressionString() string {
	return s.expression
}

// Interval は実行間隔を返す。run-onceの場合は0。
func (s *Schedule) Interval() time.Duration {
	return s.interval
}

func (s *Schedule) String() string {
	return s.expression
}
