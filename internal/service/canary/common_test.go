package canary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanBeEnabled(t *testing.T) {
	assert.True(t, canBeEnabled(CanaryStateStopped))
	assert.True(t, canBeEnabled(CanaryStateReady))
	assert.False(t, canBeEnabled(CanaryStateRunning))
	assert.False(t, canBeEnabled(CanaryStateError))
	assert.False(t, canBeEnabled(CanaryStateDeleting))
}

func TestCanBeDisabled(t *testing.T) {
	assert.True(t, canBeDisabled(CanaryStateRunning))
	assert.False(t, canBeDisabled(CanaryStateStopped))
	assert.False(t, canBeDisabled(CanaryStateReady))
}

func TestParseArtifactLocation(t *testing.T) {
	tests := []struct {
		name       string
		location   string
		wantBucket string
		wantPrefix string
		wantErr    bool
	}{
		{
			name:       "バケットとプレフィックス",
			location:   "s3://my-bucket/canary/artifacts",
			wantBucket: "my-bucket",
			wantPrefix: "canary/artifacts/",
		},
		{
			name:       "プレフィックス末尾スラッシュ付き",
			location:   "s3://my-bucket/canary/",
			wantBucket: "my-bucket",
			wantPrefix: "canary/",
		},
		{
			name:       "バケットのみ",
			location:   "s3://my-bucket",
			wantBucket: "my-bucket",
			wantPrefix: "",
		},
		{
			name:     "スキームなし",
			location: "my-bucket/canary",
			wantErr:  true,
		},
		{
			name:     "バケット名が空",
			location: "s3:///canary",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, prefix, err := parseArtifactLocation(tt.location)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantPrefix, prefix)
		})
	}
}

func TestRoleNameFromArn(t *testing.T) {
	name, err := roleNameFromArn("arn:aws:iam::123456789012:role/cwsyn-my-canary-role")
	require.NoError(t, err)
	assert.Equal(t, "cwsyn-my-canary-role", name)

	name, err = roleNameFromArn("arn:aws:iam::123456789012:role/service-role/cwsyn-role")
	require.NoError(t, err)
	assert.Equal(t, "cwsyn-role", name)

	_, err = roleNameFromArn("arn:aws:iam::123456789012:policy/something")
	assert.Error(t, err)
}
