package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInit_Levels(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tc := range tests {
		Init(tc.in, false)
		assert.Equal(t, tc.want, zerolog.GlobalLevel(), "level %q", tc.in)
	}
}
