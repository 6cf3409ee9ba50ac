package logger

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewWithConfig(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithConfig(&buf, "srv", log.InfoLevel, false, false, log.LogfmtFormatter)

	l.Debug("hidden")
	l.Info("shown", "groups", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "groups=3")
	assert.Contains(t, out, "srv")
}

func TestSetup(t *testing.T) {
	defer log.SetLevel(log.GetLevel())

	Setup(true)
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	Setup(false)
	assert.Equal(t, log.WarnLevel, log.GetLevel())
}
