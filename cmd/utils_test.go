package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateExclusiveOptions(t *testing.T) {
	// 必須かつ排他
	assert.Error(t, ValidateExclusiveOptions(true, true))
	assert.Error(t, ValidateExclusiveOptions(true, true, false, false))
	assert.NoError(t, ValidateExclusiveOptions(true, true, true, false))
	assert.Error(t, ValidateExclusiveOptions(true, true, true, true))

	// 任意
	assert.NoError(t, ValidateExclusiveOptions(false, true, false, false))
	assert.Error(t, ValidateExclusiveOptions(false, true, true, true))

	// 排他なし
	assert.NoError(t, ValidateExclusiveOptions(true, false, true, true))
}
