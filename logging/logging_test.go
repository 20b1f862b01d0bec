package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{Level: "not-a-level", Output: buf})
	log.Debug().Msg("should be filtered")
	assert.Empty(t, buf.String())
	log.Info().Msg("should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestComponent_TagsLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{Level: "info", Output: buf})
	Component(log, "identity").Info().Msg("hello")
	assert.Contains(t, buf.String(), `"component":"identity"`)
}
