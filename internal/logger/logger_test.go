package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		wantDebug bool
	}{
		{name: "dev logs debug", env: "dev", wantDebug: true},
		{name: "prod starts at info", env: "prod", wantDebug: false},
		{name: "unknown env uses production", env: "staging", wantDebug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.env)
			require.NoError(t, err)
			require.NotNil(t, l)

			assert.Equal(t, tt.wantDebug, l.Core().Enabled(zapcore.DebugLevel))
			assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
		})
	}
}
