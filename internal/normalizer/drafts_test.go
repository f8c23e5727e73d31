package normalizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formalyze/internal/model"
)

func TestParseDrafts(t *testing.T) {
	t.Run("Should decode canonical draft objects", func(t *testing.T) {
		raw := []byte(`[
			{"question_text":"Your name?","question_type":"text","required":true},
			{"question_text":"Pick","question_type":"multiple_choice","options":["A","B"]}
		]`)

		drafts, err := ParseDrafts(raw)

		require.NoError(t, err)
		require.Len(t, drafts, 2)
		assert.Equal(t, model.QuestionDraft{QuestionText: "Your name?", QuestionType: "text", Required: true}, drafts[0])
		assert.Equal(t, []string{"A", "B"}, drafts[1].Options)
		assert.False(t, drafts[1].Required)
	})

	t.Run("Should accept text and type aliases", func(t *testing.T) {
		drafts, err := ParseDrafts([]byte(`[{"text":"Would you return?","type":"boolean"}]`))

		require.NoError(t, err)
		require.Len(t, drafts, 1)
		assert.Equal(t, "Would you return?", drafts[0].QuestionText)
		assert.Equal(t, model.DraftBoolean, drafts[0].Type())
	})

	t.Run("Should split options given as a string", func(t *testing.T) {
		drafts, err := ParseDrafts([]byte(`[{"question_text":"x","question_type":"multiple_choice","options":"Red, Green,\nBlue"}]`))

		require.NoError(t, err)
		assert.Equal(t, []string{"Red", "Green", "Blue"}, drafts[0].Options)
	})

	t.Run("Should keep malformed elements as drafts", func(t *testing.T) {
		drafts, err := ParseDrafts([]byte(`["Just a question?", 42, {"question_type": 7}]`))

		require.NoError(t, err)
		require.Len(t, drafts, 3)
		assert.Equal(t, "Just a question?", drafts[0].QuestionText)
		assert.Equal(t, "42", drafts[1].QuestionText)
		assert.Equal(t, model.DraftUnknown, drafts[2].Type())

		out := Normalize(drafts)
		require.Len(t, out, 3)
		for _, q := range out {
			assert.Equal(t, model.QuestionTypeShortAnswer, q.QuestionType)
		}
	})

	t.Run("Should treat null and empty payloads as no drafts", func(t *testing.T) {
		for _, raw := range []string{"", "null", "  ", "[]"} {
			drafts, err := ParseDrafts([]byte(raw))
			require.NoError(t, err, "payload %q", raw)
			assert.Empty(t, drafts)
		}
	})

	t.Run("Should reject non-sequence payloads", func(t *testing.T) {
		for _, raw := range []string{`{"question_text":"x"}`, `"text"`, `12`, `true`, `[{`} {
			_, err := ParseDrafts([]byte(raw))

			var invalid *InvalidInputError
			require.Error(t, err, "payload %q", raw)
			assert.True(t, errors.As(err, &invalid), "payload %q", raw)
		}
	})
}
