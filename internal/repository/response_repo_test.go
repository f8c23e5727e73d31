package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPlainValue(t *testing.T) {
	t.Run("Should convert nested BSON arrays", func(t *testing.T) {
		in := primitive.A{"a", primitive.A{"b"}}

		out := plainValue(in)

		assert.Equal(t, []any{"a", []any{"b"}}, out)
	})

	t.Run("Should leave scalars untouched", func(t *testing.T) {
		assert.Equal(t, "x", plainValue("x"))
		assert.Equal(t, int32(4), plainValue(int32(4)))
		assert.Nil(t, plainValue(nil))
	})
}
