// Package normalizer turns AI-suggested question drafts into the canonical
// question records stored on a survey.
//
// Normalization never fails for an individual draft: unknown types degrade to
// short_answer, missing options get placeholder choices and unparseable rating
// scales fall back to 1..5. The functions here perform no I/O and hold no
// shared state.
package normalizer

import (
	"regexp"
	"strconv"
	"strings"

	"formalyze/internal/logger"
	"formalyze/internal/model"
)

const (
	DefaultRatingMin = 1
	DefaultRatingMax = 5

	// MaxRatingChoices bounds the number of synthesized rating choices
	MaxRatingChoices = 101

	placeholderChoices = 3
)

var (
	multiSelectMarkers = []string{"select all", "multiple", "choose all"}
	ratingScalePattern = regexp.MustCompile(`(?i)scale\s+(?:from|of)\s+(\d+)\s+to\s+(\d+)`)
)

// Normalizer maps drafts to persisted questions
type Normalizer struct {
	log logger.Logger
}

// New creates a normalizer that reports degraded input to log
func New(log logger.Logger) *Normalizer {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Normalizer{log: log.With("component", "normalizer")}
}

// Normalize maps drafts to persisted questions using the default logger
func Normalize(drafts []model.QuestionDraft) []model.PersistedQuestion {
	return New(nil).Normalize(drafts)
}

// Normalize returns one persisted question per draft, in input order.
// An empty input yields an empty, non-nil slice.
func (n *Normalizer) Normalize(drafts []model.QuestionDraft) []model.PersistedQuestion {
	out := make([]model.PersistedQuestion, 0, len(drafts))
	if len(drafts) == 0 {
		n.log.Warn("no drafts to normalize")
		return out
	}

	for i, d := range drafts {
		q := NormalizeQuestion(i, d)
		if d.Type() == model.DraftUnknown {
			n.log.Debug("unrecognized question type, using short answer",
				"index", i, "question_type", d.QuestionType)
		}
		out = append(out, q)
	}
	return out
}

// NormalizeQuestion maps the draft at 0-based position i
func NormalizeQuestion(i int, d model.QuestionDraft) model.PersistedQuestion {
	q := model.PersistedQuestion{
		ID:           questionID(i),
		QuestionText: d.QuestionText,
		Required:     d.Required,
		OrderIndex:   i + 1,
	}

	switch d.Type() {
	case model.DraftMultipleChoice:
		q.QuestionType = model.QuestionTypeMultipleChoiceSingle
		if IsMultiSelect(d.QuestionText) {
			q.QuestionType = model.QuestionTypeMultipleChoiceMultiple
		}
		if len(d.Options) > 0 {
			q.Choices = choicesFromTexts(d.Options)
		} else {
			q.Choices = placeholderChoiceList()
		}
	case model.DraftRating:
		q.QuestionType = model.QuestionTypeMultipleChoiceSingle
		lo, hi := RatingRange(d.QuestionText)
		q.Choices = ratingChoices(lo, hi)
	case model.DraftBoolean:
		q.QuestionType = model.QuestionTypeMultipleChoiceSingle
		q.Choices = choicesFromTexts([]string{"Yes", "No"})
	default:
		q.QuestionType = model.QuestionTypeShortAnswer
	}
	return q
}

// IsMultiSelect reports whether a question text asks for several answers
func IsMultiSelect(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range multiSelectMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// RatingRange extracts "scale from|of <min> to <max>" from a question text.
// Missing, reversed or oversized ranges yield the default 1..5.
func RatingRange(text string) (int, int) {
	m := ratingScalePattern.FindStringSubmatch(text)
	if m == nil {
		return DefaultRatingMin, DefaultRatingMax
	}
	lo, errLo := strconv.Atoi(m[1])
	hi, errHi := strconv.Atoi(m[2])
	if errLo != nil || errHi != nil || lo > hi || hi-lo+1 > MaxRatingChoices {
		return DefaultRatingMin, DefaultRatingMax
	}
	return lo, hi
}

// Redraft turns a persisted question back into a draft that normalizes to
// the same type and choice count.
func Redraft(q model.PersistedQuestion) model.QuestionDraft {
	d := model.QuestionDraft{
		QuestionText: q.QuestionText,
		Required:     q.Required,
	}
	if !q.QuestionType.HasChoices() {
		d.QuestionType = string(model.DraftText)
		return d
	}

	texts := make([]string, len(q.Choices))
	for i, c := range q.Choices {
		texts[i] = c.Text
	}

	if q.QuestionType == model.QuestionTypeMultipleChoiceSingle {
		if isYesNo(texts) {
			d.QuestionType = string(model.DraftBoolean)
			return d
		}
		if isRatingScale(q.QuestionText, texts) {
			d.QuestionType = string(model.DraftRating)
			return d
		}
	}
	d.QuestionType = string(model.DraftMultipleChoice)
	d.Options = texts
	return d
}

func questionID(i int) string {
	return "q" + strconv.Itoa(i+1)
}

func choiceID(j int) string {
	return "c" + strconv.Itoa(j+1)
}

func choicesFromTexts(texts []string) []model.Choice {
	choices := make([]model.Choice, len(texts))
	for j, t := range texts {
		choices[j] = model.Choice{ID: choiceID(j), Text: t, OrderIndex: j + 1}
	}
	return choices
}

func placeholderChoiceList() []model.Choice {
	texts := make([]string, placeholderChoices)
	for j := range texts {
		texts[j] = "Option " + strconv.Itoa(j+1)
	}
	return choicesFromTexts(texts)
}

// ids follow range position, not the rating value
func ratingChoices(lo, hi int) []model.Choice {
	texts := make([]string, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		texts = append(texts, strconv.Itoa(v))
	}
	return choicesFromTexts(texts)
}

func isYesNo(texts []string) bool {
	return len(texts) == 2 && texts[0] == "Yes" && texts[1] == "No"
}

func isRatingScale(questionText string, texts []string) bool {
	lo, hi := RatingRange(questionText)
	if len(texts) != hi-lo+1 {
		return false
	}
	for j, t := range texts {
		if t != strconv.Itoa(lo+j) {
			return false
		}
	}
	return true
}
