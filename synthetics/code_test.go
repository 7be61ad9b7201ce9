package synthetics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canarytk/synthetics"
)

func TestNewInlineCode(t *testing.T) {
	t.Run("valid code", func(t *testing.T) {
		code, err := synthetics.NewInlineCode("exports.handler = async () => {};", nil)
		require.NoError(t, err)

		config, err := code.Bind(nil)
		require.NoError(t, err)
		require.NotNil(t, config.InlineCode)
		assert.Equal(t, "exports.handler = async () => {};", *config.InlineCode)
		assert.Nil(t, config.S3Location)
	})

	t.Run("empty code", func(t *testing.T) {
		_, err := synthetics.NewInlineCode("", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, synthetics.ErrCodeSize)
		assert.Contains(t, err.Error(), "cannot be empty")
	})

	t.Run("oversized code", func(t *testing.T) {
		big := strings.Repeat("a", synthetics.DefaultMaxInlineCodeBytes+1)
		_, err := synthetics.NewInlineCode(big, nil)
		assert.ErrorIs(t, err, synthetics.ErrCodeSize)
	})

	t.Run("boundary is inclusive", func(t *testing.T) {
		exact := strings.Repeat("a", synthetics.DefaultMaxInlineCodeBytes)
		_, err := synthetics.NewInlineCode(exact, nil)
		assert.NoError(t, err)
	})

	t.Run("custom size limit", func(t *testing.T) {
		opts := &synthetics.InlineCodeOptions{MaxSizeBytes: 4096}
		_, err := synthetics.NewInlineCode(strings.Repeat("a", 4097), opts)
		assert.ErrorIs(t, err, synthetics.ErrCodeSize)

		_, err = synthetics.NewInlineCode(strings.Repeat("a", 4096), opts)
		assert.NoError(t, err)
	})
}

func TestInlineCodeBindIdempotent(t *testing.T) {
	code, err := synthetics.NewInlineCode("exports.handler = async () => {};", nil)
	require.NoError(t, err)

	first, err := code.Bind(nil)
	require.NoError(t, err)
	second, err := code.Bind(nil)
	require.NoError(t, err)
	assert.Equal(t, *first.InlineCode, *second.InlineCode)
}

func TestAssetCodeLayoutValidation(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		code := synthetics.NewAssetCode(filepath.Join(t.TempDir(), "nope"), nil)
		_, err := code.Bind(nil)
		assert.Error(t, err)
	})

	t.Run("directory without nodejs/node_modules", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "index.js"), []byte("// canary"), 0o644))

		code := synthetics.NewAssetCode(dir, nil)
		_, err := code.Bind(nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, synthetics.ErrAssetStructure)
	})

	t.Run("plain file is rejected", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "canary.js")
		require.NoError(t, os.WriteFile(file, []byte("// canary"), 0o644))

		code := synthetics.NewAssetCode(file, nil)
		_, err := code.Bind(nil)
		assert.ErrorIs(t, err, synthetics.ErrCodeFormat)
	})
}
