package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_Level(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, New("svc", "debug", false).GetLevel())
	assert.Equal(t, zerolog.WarnLevel, New("svc", "WARN", true).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("svc", "nonsense", false).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("svc", "", false).GetLevel())
}
