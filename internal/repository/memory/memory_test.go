package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formalyze/internal/model"
	"formalyze/internal/repository"
)

func TestSurveyRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("Should isolate stored surveys from caller mutations", func(t *testing.T) {
		repo := NewSurveyRepo()
		s := &model.Survey{Title: "T", CreatedBy: "u1", Questions: []model.PersistedQuestion{
			{ID: "q1", Choices: []model.Choice{{ID: "c1", Text: "Yes"}}},
		}}
		id, err := repo.Create(ctx, s)
		require.NoError(t, err)

		s.Questions[0].Choices[0].Text = "changed"

		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Yes", got.Questions[0].Choices[0].Text)
	})

	t.Run("Should report missing surveys like the mongo repository", func(t *testing.T) {
		repo := NewSurveyRepo()

		got, err := repo.GetByID(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.ErrorIs(t, repo.Update(ctx, &model.Survey{ID: "nope"}), repository.ErrNotFound)
		assert.ErrorIs(t, repo.SetActive(ctx, "nope", true), repository.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, "nope"), repository.ErrNotFound)
	})

	t.Run("Should list an owner's surveys newest first", func(t *testing.T) {
		repo := NewSurveyRepo()
		first := &model.Survey{Title: "first", CreatedBy: "u1"}
		_, err := repo.Create(ctx, first)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
		_, err = repo.Create(ctx, &model.Survey{Title: "second", CreatedBy: "u1"})
		require.NoError(t, err)
		_, err = repo.Create(ctx, &model.Survey{Title: "other", CreatedBy: "u2"})
		require.NoError(t, err)

		list, err := repo.ListByOwner(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "second", list[0].Title)
		assert.Equal(t, "first", list[1].Title)
	})
}

func TestResponseRepo(t *testing.T) {
	t.Run("Should list, count and delete per survey", func(t *testing.T) {
		ctx := context.Background()
		repo := NewResponseRepo()
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		_, err := repo.Create(ctx, &model.Response{SurveyID: "s1", SubmittedAt: base.Add(time.Minute)})
		require.NoError(t, err)
		_, err = repo.Create(ctx, &model.Response{SurveyID: "s1", SubmittedAt: base})
		require.NoError(t, err)
		_, err = repo.Create(ctx, &model.Response{SurveyID: "s2"})
		require.NoError(t, err)

		list, err := repo.ListBySurvey(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, base, list[0].SubmittedAt)

		deleted, err := repo.DeleteBySurvey(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		n, err := repo.CountBySurvey(ctx, "s2")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestUserRepo(t *testing.T) {
	t.Run("Should enforce unique emails", func(t *testing.T) {
		ctx := context.Background()
		repo := NewUserRepo()

		require.NoError(t, repo.Create(ctx, &model.User{Email: "a@example.com"}))
		assert.ErrorIs(t, repo.Create(ctx, &model.User{Email: "a@example.com"}), repository.ErrDuplicate)

		u, err := repo.GetByEmail(ctx, "a@example.com")
		require.NoError(t, err)
		require.NotNil(t, u)

		byID, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, byID.Email)
	})
}
