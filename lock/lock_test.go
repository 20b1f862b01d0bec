package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLocker_DefaultsPrefix(t *testing.T) {
	l := NewLocker(nil, "")
	assert.Equal(t, "pli:job_lock:", l.prefix)
}

func TestNewLocker_CustomPrefixRetained(t *testing.T) {
	l := NewLocker(nil, "custom:")
	assert.Equal(t, "custom:", l.prefix)
}
