package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formalyze/internal/config"
	"formalyze/internal/model"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("Should use in-memory repositories for the memory scheme", func(t *testing.T) {
		a, err := Open(ctx, config.MongoConfig{URI: "memory://", Database: "test", ConnectTimeout: time.Second})
		require.NoError(t, err)
		defer a.Close(ctx)

		assert.True(t, a.IsMemory())

		id, err := a.SurveyRepo.Create(ctx, &model.Survey{Title: "Demo", CreatedBy: "u1"})
		require.NoError(t, err)

		got, err := a.SurveyRepo.GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Demo", got.Title)
	})

	t.Run("Should fail on an unparseable MongoDB URI", func(t *testing.T) {
		_, err := Open(ctx, config.MongoConfig{URI: "not-a-uri", Database: "test", ConnectTimeout: time.Second})
		assert.Error(t, err)
	})
}
