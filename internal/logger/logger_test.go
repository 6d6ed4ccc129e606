package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zap.AtomicLevel
		wantErr bool
	}{
		{in: "debug", want: zap.NewAtomicLevelAt(zap.DebugLevel)},
		{in: "", want: zap.NewAtomicLevelAt(zap.InfoLevel)},
		{in: "INFO", want: zap.NewAtomicLevelAt(zap.InfoLevel)},
		{in: "warning", want: zap.NewAtomicLevelAt(zap.WarnLevel)},
		{in: "error", want: zap.NewAtomicLevelAt(zap.ErrorLevel)},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Level(), got)
		})
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("dev", "loud")
	assert.Error(t, err)
}

func TestNewBuildsBothModes(t *testing.T) {
	for _, mode := range []string{"dev", "prod"} {
		l, err := New(mode, "warn")
		require.NoError(t, err, mode)
		assert.NotNil(t, l.Desugar())
	}
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("item_id", "abc").Info("stored", "type", "STONE")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "stored", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "abc", fields["item_id"])
	assert.Equal(t, "STONE", fields["type"])
}
