package synthetics_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"canarytk/synthetics"
)

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		wantErr    error
		interval   time.Duration
	}{
		{name: "twenty minutes", expression: "rate(20 minutes)", interval: 20 * time.Minute},
		{name: "one minute singular", expression: "rate(1 minute)", interval: time.Minute},
		{name: "one hour", expression: "rate(1 hour)", interval: time.Hour},
		{name: "sixty minutes", expression: "rate(60 minutes)", interval: time.Hour},
		{name: "run once", expression: "rate(0 minutes)", interval: 0},
		{name: "over an hour in minutes", expression: "rate(100 minutes)", wantErr: synthetics.ErrScheduleRange},
		{name: "two hours", expression: "rate(2 hour)", wantErr: synthetics.ErrScheduleRange},
		{name: "unsupported unit", expression: "rate(1 day)", wantErr: synthetics.ErrScheduleFormat},
		{name: "missing parens", expression: "rate 5 minutes", wantErr: synthetics.ErrScheduleFormat},
		{name: "negative value", expression: "rate(-5 minutes)", wantErr: synthetics.ErrScheduleFormat},
		{name: "non-integer value", expression: "rate(1.5 minutes)", wantErr: synthetics.ErrScheduleFormat},
		{name: "empty", expression: "", wantErr: synthetics.ErrScheduleFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := synthetics.ParseSchedule(tt.expression)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expression, s.ExpressionString())
			assert.Equal(t, tt.interval, s.Interval())
		})
	}
}

func TestParseScheduleRoundTrip(t *testing.T) {
	s, err := synthetics.ParseSchedule("rate(20 minutes)")
	require.NoError(t, err)
	assert.Equal(t, "rate(20 minutes)", s.String())
}

func TestParseScheduleRangeMessage(t *testing.T) {
	_, err := synthetics.ParseSchedule("rate(100 minutes)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be greater than 1 hour")
}

func TestSchedulePresets(t *testing.T) {
	assert.Equal(t, "rate(0 minutes)", synthetics.ScheduleOnce().ExpressionString())
	assert.Equal(t, "rate(1 minute)", synthetics.ScheduleOneMinute().ExpressionString())
	assert.Equal(t, "rate(5 minutes)", synthetics.ScheduleFiveMinutes().ExpressionString())
	assert.Equal(t, "rate(1 hour)", synthetics.ScheduleOneHour().ExpressionString())
}

func TestNewScheduleRate(t *testing.T) {
	s, err := synthetics.NewScheduleRate(5 * time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "rate(5 minutes)", s.ExpressionString())

	s, err = synthetics.NewScheduleRate(time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "rate(1 minute)", s.ExpressionString())

	s, err = synthetics.NewScheduleRate(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "rate(1 hour)", s.ExpressionString())

	_, err = synthetics.NewScheduleRate(61 * time.Minute)
	assert.ErrorIs(t, err, synthetics.ErrScheduleRange)

	_, err = synthetics.NewScheduleRate(90 * time.Second)
	assert.ErrorIs(t, err, synthetics.ErrScheduleFormat)
}

// 任意の整数・単位の組み合わせで、受理条件が仕様どおりであることを確認する
func TestParseScheduleProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		value := rapid.IntRange(0, 200).Draw(t, "value")
		unit := rapid.SampledFrom([]string{"minute", "minutes", "hour", "hours", "second", "day"}).Draw(t, "unit")
		expression := fmt.Sprintf("rate(%d %s)", value, unit)

		s, err := synthetics.ParseSchedule(expression)

		switch unit {
		case "minute", "minutes":
			if value <= 60 {
				if err != nil {
					t.Fatalf("expected %q to parse, got %v", expression, err)
				}
				if s.ExpressionString() != expression {
					t.Fatalf("expression mismatch: got %q, want %q", s.ExpressionString(), expression)
				}
			} else if !errors.Is(err, synthetics.ErrScheduleRange) {
				t.Fatalf("expected range error for %q, got %v", expression, err)
			}
		case "hour":
			if value <= 1 {
				if err != nil {
					t.Fatalf("expected %q to parse, got %v", expression, err)
				}
			} else if !errors.Is(err, synthetics.ErrScheduleRange) {
				t.Fatalf("expected range error for %q, got %v", expression, err)
			}
		default:
			if !errors.Is(err, synthetics.ErrScheduleFormat) {
				t.Fatalf("expected format error for %q, got %v", expression, err)
			}
		}
	})
}
