package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"formalyze/internal/logger"
	"formalyze/internal/model"
	"formalyze/internal/normalizer"
)

const (
	questionPurpose  = "What is the primary purpose of your survey? (e.g., customer satisfaction, market research, employee feedback)"
	questionAudience = "Who is your target audience for this survey?"
	questionCount    = "How many questions would you like the survey to include?"

	followUpElaborate = "Could you please elaborate a bit more?"
	followUpDefault   = "Could you please provide more details about your answer?"
	completionMessage = "Thank you for providing all the information. I'll now generate survey questions based on your requirements."

	defaultQuestionCount = 10
	maxFollowUps         = 2
	maxInfoKeyLen        = 50
)

const questionTypeList = "multiple_choice, rating, text, boolean"

var mainQuestions = []string{questionPurpose, questionAudience, questionCount}

var shortNegativeAnswers = map[string]bool{
	"no": true, "nope": true, "n/a": true, "none": true,
	"i don't know": true, "idk": true, "not sure": true, "nothing": true,
}

var digitsPattern = regexp.MustCompile(`\d+`)

// LocalAgent runs the authoring conversation in process. Follow-ups and
// generated questions come from the chat model when it is available.
type LocalAgent struct {
	llm ChatModel
	log logger.Logger
}

// NewLocalAgent creates an in-process survey agent
func NewLocalAgent(llm ChatModel) *LocalAgent {
	return &LocalAgent{
		llm: llm,
		log: logger.With("component", "local_agent"),
	}
}

func (a *LocalAgent) Start(_ context.Context, conv *model.Conversation) (string, error) {
	conv.MainIndex = 0
	conv.InFollowUp = false
	conv.Say(mainQuestions[0])
	return mainQuestions[0], nil
}

func (a *LocalAgent) Process(ctx context.Context, conv *model.Conversation, userResponse string) (string, bool, error) {
	if conv.Complete {
		return completionMessage, true, nil
	}
	conv.Hear(userResponse)

	if conv.InFollowUp {
		if conv.FollowUpIndex < len(conv.FollowUps) {
			recordFollowUp(conv, conv.FollowUps[conv.FollowUpIndex], userResponse)
		}
		conv.FollowUpIndex++
		if conv.FollowUpIndex < len(conv.FollowUps) {
			return a.ask(conv, conv.FollowUps[conv.FollowUpIndex])
		}
		conv.InFollowUp = false
		return a.advance(conv)
	}

	main := mainQuestions[conv.MainIndex]
	recordMainAnswer(conv, main, userResponse)

	followUps := a.followUps(ctx, main, userResponse)
	if len(followUps) == 0 {
		return a.advance(conv)
	}
	conv.FollowUps = followUps
	conv.FollowUpIndex = 0
	conv.InFollowUp = true
	return a.ask(conv, followUps[0])
}

func (a *LocalAgent) Questions(ctx context.Context, conv *model.Conversation) ([]model.QuestionDraft, error) {
	if len(conv.Generated) > 0 {
		return conv.Generated, nil
	}
	if !conv.Complete {
		a.log.Warn("generating questions before the conversation completed", "sessionId", conv.ID)
	}

	req := &conv.Requirements
	if req.Purpose == "" {
		req.Purpose = "general feedback"
	}
	if req.QuestionCount == 0 {
		req.QuestionCount = 5
	}

	conv.Generated = a.generate(ctx, req)
	return conv.Generated, nil
}

func (a *LocalAgent) Finalize(context.Context, *model.Conversation, []int) error {
	return nil
}

func (a *LocalAgent) ask(conv *model.Conversation, question string) (string, bool, error) {
	conv.Say(question)
	return question, false, nil
}

func (a *LocalAgent) advance(conv *model.Conversation) (string, bool, error) {
	conv.MainIndex++
	if conv.MainIndex >= len(mainQuestions) {
		conv.Complete = true
		conv.Say(completionMessage)
		return completionMessage, true, nil
	}
	return a.ask(conv, mainQuestions[conv.MainIndex])
}

func (a *LocalAgent) followUps(ctx context.Context, question, answer string) []string {
	trimmed := strings.TrimSpace(answer)
	if shortNegativeAnswers[strings.ToLower(trimmed)] || len(trimmed) < 5 {
		return []string{followUpElaborate}
	}
	if a.llm == nil || !a.llm.IsEnabled() {
		return []string{followUpDefault}
	}

	reply, err := a.llm.Complete(ctx, followUpPrompt(question, answer))
	if err != nil {
		a.log.Warn("follow-up generation failed", "error", err)
		return []string{followUpDefault}
	}
	raw, ok := ExtractJSONArray(reply)
	if !ok {
		a.log.Warn("follow-up reply is not a JSON array")
		return []string{followUpDefault}
	}

	var out []string
	for _, item := range gjson.Parse(raw).Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
		if len(out) == maxFollowUps {
			break
		}
	}
	if len(out) == 0 {
		return []string{followUpDefault}
	}
	return out
}

func (a *LocalAgent) generate(ctx context.Context, req *model.Requirements) []model.QuestionDraft {
	if a.llm == nil || !a.llm.IsEnabled() {
		return fallbackDrafts(req.Purpose)
	}

	reply, err := a.llm.Complete(ctx, surveyPrompt(req))
	if err != nil {
		a.log.Warn("survey generation failed", "error", err)
		return fallbackDrafts(req.Purpose)
	}
	raw, ok := ExtractJSONArray(reply)
	if !ok {
		a.log.Warn("survey reply is not a JSON array")
		return fallbackDrafts(req.Purpose)
	}
	drafts, err := normalizer.ParseDrafts([]byte(raw))
	if err != nil || len(drafts) == 0 {
		a.log.Warn("survey reply has no usable drafts", "error", err)
		return fallbackDrafts(req.Purpose)
	}
	return drafts
}

func recordMainAnswer(conv *model.Conversation, question, answer string) {
	req := &conv.Requirements
	lower := strings.ToLower(question)

	switch {
	case strings.Contains(lower, "purpose"):
		req.Purpose = answer
	case strings.Contains(lower, "audience"):
		req.Audience = answer
	case strings.Contains(lower, "how many questions"):
		req.QuestionCount = ParseQuestionCount(answer)
	}
}

func recordFollowUp(conv *model.Conversation, question, answer string) {
	req := &conv.Requirements
	if req.AdditionalInfo == nil {
		req.AdditionalInfo = map[string]string{}
	}

	key := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(question), "?", ""))
	if runes := []rune(key); len(runes) > maxInfoKeyLen {
		key = string(runes[:maxInfoKeyLen]) + "..."
	}
	req.AdditionalInfo[key] = answer

	lower := strings.ToLower(question)
	switch {
	case strings.Contains(lower, "purpose") && req.Purpose != "":
		req.Purpose += " - " + answer
	case strings.Contains(lower, "audience") && req.Audience != "":
		req.Audience += " - " + answer
	}
}

// ParseQuestionCount reads a desired question count from a free-text answer
func ParseQuestionCount(answer string) int {
	if m := digitsPattern.FindString(answer); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 {
			return n
		}
	}

	lower := strings.ToLower(answer)
	switch {
	case strings.Contains(lower, "few"), strings.Contains(lower, "short"):
		return 5
	case strings.Contains(lower, "medium"):
		return 10
	case strings.Contains(lower, "many"), strings.Contains(lower, "comprehensive"):
		return 15
	default:
		return defaultQuestionCount
	}
}

func fallbackDrafts(purpose string) []model.QuestionDraft {
	if purpose == "" {
		purpose = "our service"
	}
	return []model.QuestionDraft{
		{
			QuestionText: fmt.Sprintf("How would you rate your experience with %s?", purpose),
			QuestionType: string(model.DraftRating),
			Required:     true,
		},
		{
			QuestionText: "What could be improved?",
			QuestionType: string(model.DraftText),
		},
	}
}

func followUpPrompt(question, answer string) string {
	return fmt.Sprintf(`The user is designing a survey. They were asked:
"%s"

And they responded:
"%s"

Generate 1-2 specific follow-up questions that would help clarify or expand
on their answer so a targeted survey can be written.
Always generate at least one follow-up question unless the answer is already
detailed and complete.

Respond with a JSON array of strings containing only the questions.
Example: ["Question 1?", "Question 2?"]`, question, answer)
}

func surveyPrompt(req *model.Requirements) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Survey Purpose: %s\n", orNotSpecified(req.Purpose))
	fmt.Fprintf(&b, "Target Audience: %s\n", orNotSpecified(req.Audience))
	fmt.Fprintf(&b, "Number of Questions: %d\n", req.QuestionCount)
	fmt.Fprintf(&b, "Question Types to Include: %s\n", questionTypeList)

	if len(req.AdditionalInfo) > 0 {
		b.WriteString("\nAdditional Information:\n")
		for k, v := range req.AdditionalInfo {
			fmt.Fprintf(&b, "- %s: %s\n", k, v)
		}
	}

	return fmt.Sprintf(`Generate a professional survey based on the following requirements:

%s
Generate exactly %d survey questions that address the purpose, audience and topics.
Use a mix of these question types: %s.

Respond with a JSON array of question objects:
[
  {
    "question_text": "Question here?",
    "question_type": "multiple_choice|text|rating|boolean",
    "options": ["Option 1", "Option 2"],
    "required": true
  }
]
Only multiple_choice questions need options.`, b.String(), req.QuestionCount, questionTypeList)
}

func orNotSpecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}
