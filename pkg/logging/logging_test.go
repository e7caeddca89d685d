package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	tests := []struct {
		env       string
		debug     bool
		wantDebug bool
	}{
		{"development", false, true},
		{"production", false, false},
		{"production", true, true},
		{"", false, false},
	}
	for _, tt := range tests {
		logger, err := New(tt.env, tt.debug)
		require.NoError(t, err)
		assert.Equal(t, tt.wantDebug, logger.Core().Enabled(zap.DebugLevel), "env=%q debug=%v", tt.env, tt.debug)
	}
}
