package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 32)
	assert.NotContains(t, a, "-")
	assert.NotEqual(t, a, b)
}
