package normalizer

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"formalyze/internal/model"
)

// InvalidInputError is returned when a draft payload is not a sequence
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid draft input: " + e.Reason
}

// ParseDrafts decodes a JSON array of loosely shaped question drafts.
//
// A null or empty payload yields no drafts. Any other non-array payload is an
// InvalidInputError. Individual elements are read leniently: "text" and "type"
// are accepted as aliases, options may be a list or a comma/newline separated
// string, and a bare string element becomes a draft with that text.
func ParseDrafts(raw []byte) ([]model.QuestionDraft, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return []model.QuestionDraft{}, nil
	}
	if !gjson.Valid(trimmed) {
		return nil, &InvalidInputError{Reason: "payload is not valid JSON"}
	}
	return DraftsFromResult(gjson.Parse(trimmed))
}

// DraftsFromResult reads drafts from an already-parsed JSON value
func DraftsFromResult(res gjson.Result) ([]model.QuestionDraft, error) {
	if !res.Exists() || res.Type == gjson.Null {
		return []model.QuestionDraft{}, nil
	}
	if !res.IsArray() {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("expected an array of drafts, got %s", kindOf(res))}
	}

	elems := res.Array()
	drafts := make([]model.QuestionDraft, 0, len(elems))
	for _, el := range elems {
		drafts = append(drafts, draftFromResult(el))
	}
	return drafts, nil
}

func draftFromResult(el gjson.Result) model.QuestionDraft {
	if !el.IsObject() {
		return model.QuestionDraft{QuestionText: el.String()}
	}

	d := model.QuestionDraft{
		QuestionText: firstString(el, "question_text", "text", "question"),
		QuestionType: firstString(el, "question_type", "type"),
		Required:     el.Get("required").Bool(),
	}

	opts := el.Get("options")
	switch {
	case opts.IsArray():
		for _, o := range opts.Array() {
			d.Options = append(d.Options, o.String())
		}
	case opts.Type == gjson.String:
		d.Options = splitOptions(opts.String())
	}
	return d
}

func firstString(el gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := el.Get(k); v.Exists() && v.Type != gjson.Null {
			return v.String()
		}
	}
	return ""
}

func splitOptions(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	opts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			opts = append(opts, f)
		}
	}
	return opts
}

func kindOf(res gjson.Result) string {
	switch {
	case res.IsObject():
		return "object"
	case res.Type == gjson.String:
		return "string"
	case res.Type == gjson.Number:
		return "number"
	case res.Type == gjson.True, res.Type == gjson.False:
		return "boolean"
	default:
		return "unknown"
	}
}
