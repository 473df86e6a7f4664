package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTypeFollowsWrappedChain(t *testing.T) {
	base := Config("store list is empty")
	wrapped := fmt.Errorf("build engine: %w", base)

	assert.True(t, IsType(wrapped, TypeConfig))
	assert.False(t, IsType(wrapped, TypeStorage))
	assert.False(t, IsType(fmt.Errorf("plain"), TypeConfig))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Storage("query history", fmt.Errorf("disk full"))
	assert.Equal(t, "[STORAGE_ERROR] query history: disk full", err.Error())

	err = Input("raw text is required")
	assert.Equal(t, "[INPUT_ERROR] raw text is required", err.Error())
}

func TestWithContext(t *testing.T) {
	err := Newf(TypeHistory, "record %d has no store name", 2).WithContext("user", "u1")
	assert.Equal(t, "u1", err.Context["user"])
	assert.True(t, err.Is(TypeHistory))
}
