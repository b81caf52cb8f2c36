package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	notFound := NotFound("Provider not found")

	t.Run("classified error", func(t *testing.T) {
		kind, ok := KindOf(notFound)
		assert.True(t, ok)
		assert.Equal(t, KindNotFound, kind)
	})

	t.Run("wrapped classified error", func(t *testing.T) {
		kind, ok := KindOf(fmt.Errorf("lookup: %w", Conflict("busy")))
		assert.True(t, ok)
		assert.Equal(t, KindConflict, kind)
	})

	t.Run("opaque error", func(t *testing.T) {
		_, ok := KindOf(errors.New("connection reset"))
		assert.False(t, ok)
	})
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "Customer name is required", MessageOf(BadRequest("Customer name is required")))
	assert.Equal(t, "dial tcp: refused", MessageOf(errors.New("dial tcp: refused")))
}
