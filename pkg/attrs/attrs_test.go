package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	kv := []any{"user_id", int64(7), "email", "ann@x.com", 42, "ignored", "dangling"}

	id, ok := Extract[int64](kv, "user_id")
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	_, ok = Extract[string](kv, "user_id")
	assert.False(t, ok, "wrong type is not a match")

	assert.Equal(t, "ann@x.com", ExtractString(kv, "email"))
	assert.Empty(t, ExtractString(kv, "dangling"))
	assert.Empty(t, ExtractString(kv, "missing"))
}
