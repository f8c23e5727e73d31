package normalizer

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formalyze/internal/logger"
	"formalyze/internal/model"
)

func quiet() *Normalizer {
	return New(logger.NewLogger(logger.TestConfig()))
}

func TestNormalize_WorkedExamples(t *testing.T) {
	n := quiet()

	t.Run("Should map text to short answer without choices", func(t *testing.T) {
		out := n.Normalize([]model.QuestionDraft{{QuestionType: "text", QuestionText: "Your name?"}})

		require.Len(t, out, 1)
		assert.Equal(t, model.QuestionTypeShortAnswer, out[0].QuestionType)
		assert.Nil(t, out[0].Choices)
		assert.Equal(t, "Your name?", out[0].QuestionText)
	})

	t.Run("Should map boolean to Yes and No choices", func(t *testing.T) {
		out := n.Normalize([]model.QuestionDraft{{QuestionType: "boolean", QuestionText: "Do you like it?"}})

		require.Len(t, out, 1)
		assert.Equal(t, model.QuestionTypeMultipleChoiceSingle, out[0].QuestionType)
		assert.Equal(t, []model.Choice{
			{ID: "c1", Text: "Yes", OrderIndex: 1},
			{ID: "c2", Text: "No", OrderIndex: 2},
		}, out[0].Choices)
	})

	t.Run("Should expand a 1 to 10 rating scale", func(t *testing.T) {
		out := n.Normalize([]model.QuestionDraft{{QuestionType: "rating", QuestionText: "Rate us on a scale from 1 to 10"}})

		require.Len(t, out, 1)
		q := out[0]
		assert.Equal(t, model.QuestionTypeMultipleChoiceSingle, q.QuestionType)
		require.Len(t, q.Choices, 10)
		assert.Equal(t, "1", q.Choices[0].Text)
		assert.Equal(t, "10", q.Choices[9].Text)
		assert.Equal(t, 10, q.Choices[9].OrderIndex)
		assert.Equal(t, "c10", q.Choices[9].ID)
	})

	t.Run("Should detect multi-select from the question text", func(t *testing.T) {
		out := n.Normalize([]model.QuestionDraft{{
			QuestionType: "multiple_choice",
			QuestionText: "Select all features you use",
			Options:      []string{"A", "B"},
		}})

		require.Len(t, out, 1)
		assert.Equal(t, model.QuestionTypeMultipleChoiceMultiple, out[0].QuestionType)
		assert.Equal(t, []model.Choice{
			{ID: "c1", Text: "A", OrderIndex: 1},
			{ID: "c2", Text: "B", OrderIndex: 2},
		}, out[0].Choices)
	})

	t.Run("Should synthesize placeholder choices when options are empty", func(t *testing.T) {
		out := n.Normalize([]model.QuestionDraft{{QuestionType: "multiple_choice", QuestionText: "Pick one", Options: []string{}}})

		require.Len(t, out, 1)
		assert.Equal(t, model.QuestionTypeMultipleChoiceSingle, out[0].QuestionType)
		assert.Equal(t, []model.Choice{
			{ID: "c1", Text: "Option 1", OrderIndex: 1},
			{ID: "c2", Text: "Option 2", OrderIndex: 2},
			{ID: "c3", Text: "Option 3", OrderIndex: 3},
		}, out[0].Choices)
	})

	t.Run("Should return an empty slice for empty input", func(t *testing.T) {
		out := n.Normalize(nil)

		require.NotNil(t, out)
		assert.Empty(t, out)
	})
}

func TestNormalize_Defaults(t *testing.T) {
	n := quiet()

	t.Run("Should degrade unknown types to short answer", func(t *testing.T) {
		for _, typ := range []string{"nps", "open", "", "checkbox", "number"} {
			out := n.Normalize([]model.QuestionDraft{{QuestionType: typ, QuestionText: "Anything?"}})
			require.Len(t, out, 1)
			assert.Equal(t, model.QuestionTypeShortAnswer, out[0].QuestionType, "type %q", typ)
			assert.Nil(t, out[0].Choices)
		}
	})

	t.Run("Should accept type labels regardless of case and padding", func(t *testing.T) {
		out := n.Normalize([]model.QuestionDraft{{QuestionType: " Boolean ", QuestionText: "Ok?"}})
		assert.Equal(t, model.QuestionTypeMultipleChoiceSingle, out[0].QuestionType)
		assert.Len(t, out[0].Choices, 2)
	})

	t.Run("Should copy required through", func(t *testing.T) {
		out := n.Normalize([]model.QuestionDraft{
			{QuestionType: "text", QuestionText: "a", Required: true},
			{QuestionType: "text", QuestionText: "b"},
		})
		assert.True(t, out[0].Required)
		assert.False(t, out[1].Required)
	})

	t.Run("Should log a warning for empty input", func(t *testing.T) {
		var buf bytes.Buffer
		l := logger.NewLogger(&logger.Config{Level: logger.WarnLevel, Output: &buf, TimeFormat: "15:04:05"})

		New(l).Normalize([]model.QuestionDraft{})

		assert.Contains(t, buf.String(), "no drafts to normalize")
	})
}

func TestRatingRange(t *testing.T) {
	cases := []struct {
		text   string
		lo, hi int
	}{
		{"Rate us on a scale from 1 to 10", 1, 10},
		{"On a SCALE OF 0 to 10, how likely are you to recommend us?", 0, 10},
		{"Rate on a scale from 3 to 7", 3, 7},
		{"How would you rate us?", 1, 5},
		{"On a scale from 10 to 1", 1, 5},
		{"On a scale from 1 to 500", 1, 5},
	}
	for _, tc := range cases {
		t.Run("Should parse "+tc.text, func(t *testing.T) {
			lo, hi := RatingRange(tc.text)
			assert.Equal(t, tc.lo, lo)
			assert.Equal(t, tc.hi, hi)
		})
	}

	t.Run("Should number choices by range position", func(t *testing.T) {
		q := NormalizeQuestion(0, model.QuestionDraft{QuestionType: "rating", QuestionText: "On a scale from 3 to 7"})

		require.Len(t, q.Choices, 5)
		assert.Equal(t, model.Choice{ID: "c1", Text: "3", OrderIndex: 1}, q.Choices[0])
		assert.Equal(t, model.Choice{ID: "c5", Text: "7", OrderIndex: 5}, q.Choices[4])
	})
}

func TestIsMultiSelect(t *testing.T) {
	t.Run("Should match any marker case-insensitively", func(t *testing.T) {
		assert.True(t, IsMultiSelect("Please SELECT ALL that apply"))
		assert.True(t, IsMultiSelect("You may pick multiple answers"))
		assert.True(t, IsMultiSelect("Choose all relevant items"))
		assert.False(t, IsMultiSelect("Pick one"))
	})
}

func mixedDrafts() []model.QuestionDraft {
	return []model.QuestionDraft{
		{QuestionType: "text", QuestionText: "Your name?"},
		{QuestionType: "multiple_choice", QuestionText: "Select all features you use", Options: []string{"A", "B", "C"}},
		{QuestionType: "rating", QuestionText: "Rate us on a scale from 0 to 10", Required: true},
		{QuestionType: "boolean", QuestionText: "Would you come back?"},
		{QuestionType: "multiple_choice", QuestionText: "Pick one"},
		{QuestionType: "mystery", QuestionText: "Huh?"},
	}
}

func TestNormalize_Properties(t *testing.T) {
	n := quiet()

	t.Run("Should preserve length and assign contiguous order and ids", func(t *testing.T) {
		drafts := mixedDrafts()
		out := n.Normalize(drafts)

		require.Len(t, out, len(drafts))
		seen := map[string]bool{}
		for i, q := range out {
			assert.Equal(t, i+1, q.OrderIndex)
			assert.Equal(t, fmt.Sprintf("q%d", i+1), q.ID)
			assert.False(t, seen[q.ID])
			seen[q.ID] = true

			if q.QuestionType.HasChoices() {
				require.NotEmpty(t, q.Choices)
			}
			for j, c := range q.Choices {
				assert.Equal(t, fmt.Sprintf("c%d", j+1), c.ID)
				assert.Equal(t, j+1, c.OrderIndex)
			}
		}
	})

	t.Run("Should be stable when normalizing redrafted output", func(t *testing.T) {
		first := n.Normalize(mixedDrafts())

		redrafted := make([]model.QuestionDraft, len(first))
		for i, q := range first {
			redrafted[i] = Redraft(q)
		}
		second := n.Normalize(redrafted)

		require.Len(t, second, len(first))
		for i := range first {
			assert.Equal(t, first[i].QuestionType, second[i].QuestionType, "question %d", i)
			assert.Equal(t, len(first[i].Choices), len(second[i].Choices), "question %d", i)
			assert.Equal(t, first[i], second[i])
		}
	})

	t.Run("Should be safe for concurrent use", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				out := n.Normalize(mixedDrafts())
				assert.Len(t, out, 6)
			}()
		}
		wg.Wait()
	})
}

func TestDefaultQuestions(t *testing.T) {
	t.Run("Should provide the three-question fallback set", func(t *testing.T) {
		qs := DefaultQuestions()

		require.Len(t, qs, 3)
		assert.Equal(t, model.QuestionTypeShortAnswer, qs[0].QuestionType)
		assert.Nil(t, qs[0].Choices)
		assert.Equal(t, model.QuestionTypeMultipleChoiceSingle, qs[1].QuestionType)
		assert.Len(t, qs[1].Choices, 4)
		assert.Equal(t, model.QuestionTypeMultipleChoiceMultiple, qs[2].QuestionType)
		assert.Len(t, qs[2].Choices, 3)
		for i, q := range qs {
			assert.Equal(t, i+1, q.OrderIndex)
		}
	})

	t.Run("Should return a fresh copy each time", func(t *testing.T) {
		a := DefaultQuestions()
		a[1].Choices[0].Text = "changed"

		b := DefaultQuestions()
		assert.Equal(t, "Search engine", b[1].Choices[0].Text)
	})
}
