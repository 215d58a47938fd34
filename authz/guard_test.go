package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed("app:alice1", "app:alice1"))
	assert.False(t, Allowed("app:alice1", "app:bobby1"))
	assert.False(t, Allowed("", ""))
	assert.False(t, Allowed("", "app:bobby1"))
}
