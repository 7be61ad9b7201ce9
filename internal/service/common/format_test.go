package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.bytes))
	}
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "不明", FormatTime(nil))

	ts := time.Date(2025, 8, 1, 12, 30, 0, 0, time.Local)
	assert.Equal(t, "2025-08-01 12:30:00", FormatTime(&ts))
}

func TestGenerateFilteredTitle(t *testing.T) {
	assert.Equal(t, "Canary一覧", GenerateFilteredTitle("Canary"))
	assert.Equal(t, "Canary一覧", GenerateFilteredTitle("Canary", ""))
	assert.Equal(t, "実行中のCanary一覧", GenerateFilteredTitle("Canary", "実行中の"))
}
