// Package survey assigns questionnaires to volunteers and accepts their
// answers. Assignment is threshold-triggered or manual, deduplicated per
// (survey, user) by a conflict-guarded insert, and gated by a single-use
// time-limited token so a volunteer can answer without logging in.
package survey

import (
	"encoding/json"
	"fmt"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

// Question is one typed survey prompt. Each question kind is its own type;
// ParseQuestions rejects kinds it does not know rather than skipping them
// silently. Validate checks one decoded answer value against the kind's
// constraints.
type Question interface {
	// ID identifies the question inside its survey.
	ID() string
	// Prompt is the text shown to the volunteer.
	Prompt() string
	// Required reports whether an answer must be present.
	Required() bool
	// Validate checks a submitted answer value. The value is the decoded
	// JSON form: string, []string, float64, or bool depending on the kind.
	Validate(value json.RawMessage) error
}

type base struct {
	id       string
	prompt   string
	required bool
}

func (b base) ID() string     { return b.id }
func (b base) Prompt() string { return b.prompt }
func (b base) Required() bool { return b.required }

func (b base) fail(reason string) error {
	return &db.ValidationError{Field: fmt.Sprintf("question %q", b.id), Reason: reason}
}

// Text accepts a short free-text answer, optionally length-capped.
type Text struct {
	base
	MaxLength int
}

func (q Text) Validate(value json.RawMessage) error {
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return q.fail("answer must be text")
	}
	if s == "" {
		return q.fail("answer must not be empty")
	}
	if q.MaxLength > 0 && len([]rune(s)) > q.MaxLength {
		return q.fail(fmt.Sprintf("answer exceeds %d characters", q.MaxLength))
	}
	return nil
}

// LongText accepts a multi-line free-text answer, optionally length-capped.
type LongText struct {
	base
	MaxLength int
}

func (q LongText) Validate(value json.RawMessage) error {
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return q.fail("answer must be text")
	}
	if s == "" {
		return q.fail("answer must not be empty")
	}
	if q.MaxLength > 0 && len([]rune(s)) > q.MaxLength {
		return q.fail(fmt.Sprintf("answer exceeds %d characters", q.MaxLength))
	}
	return nil
}

// SingleChoice accepts exactly one of the configured options.
type SingleChoice struct {
	base
	Options []string
}

func (q SingleChoice) Validate(value json.RawMessage) error {
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return q.fail("answer must be a single option")
	}
	for _, opt := range q.Options {
		if s == opt {
			return nil
		}
	}
	return q.fail(fmt.Sprintf("%q is not one of the options", s))
}

// MultiChoice accepts one or more of the configured options, each at most
// once.
type MultiChoice struct {
	base
	Options []string
}

func (q MultiChoice) Validate(value json.RawMessage) error {
	var picks []string
	if err := json.Unmarshal(value, &picks); err != nil {
		return q.fail("answer must be a list of options")
	}
	if len(picks) == 0 {
		return q.fail("answer must select at least one option")
	}
	seen := make(map[string]bool, len(picks))
	for _, pick := range picks {
		if seen[pick] {
			return q.fail(fmt.Sprintf("option %q selected twice", pick))
		}
		seen[pick] = true
		valid := false
		for _, opt := range q.Options {
			if pick == opt {
				valid = true
				break
			}
		}
		if !valid {
			return q.fail(fmt.Sprintf("%q is not one of the options", pick))
		}
	}
	return nil
}

// RatingScale accepts a whole number inside [Min, Max].
type RatingScale struct {
	base
	Min int
	Max int
}

func (q RatingScale) Validate(value json.RawMessage) error {
	var n float64
	if err := json.Unmarshal(value, &n); err != nil {
		return q.fail("answer must be a number")
	}
	if n != float64(int(n)) {
		return q.fail("answer must be a whole number")
	}
	if int(n) < q.Min || int(n) > q.Max {
		return q.fail(fmt.Sprintf("answer must be between %d and %d", q.Min, q.Max))
	}
	return nil
}

// YesNo accepts a boolean.
type YesNo struct {
	base
}

func (q YesNo) Validate(value json.RawMessage) error {
	var b bool
	if err := json.Unmarshal(value, &b); err != nil {
		return q.fail("answer must be yes or no")
	}
	return nil
}

type questionHead struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Prompt    string   `json:"prompt"`
	Required  bool     `json:"required"`
	Options   []string `json:"options,omitempty"`
	Min       *int     `json:"min,omitempty"`
	Max       *int     `json:"max,omitempty"`
	MaxLength int      `json:"maxLength,omitempty"`
}

// ParseQuestions decodes a survey's ordered question list. Unknown kinds,
// missing ids, duplicate ids, and kind constraints that make the question
// unanswerable are all rejected.
func ParseQuestions(raw json.RawMessage) ([]Question, error) {
	var heads []questionHead
	if err := json.Unmarshal(raw, &heads); err != nil {
		return nil, &db.ValidationError{Field: "questions", Reason: "malformed question list"}
	}

	questions := make([]Question, 0, len(heads))
	seen := make(map[string]bool, len(heads))
	for i, head := range heads {
		if head.ID == "" {
			return nil, &db.ValidationError{Field: "questions", Reason: fmt.Sprintf("question %d has no id", i)}
		}
		if seen[head.ID] {
			return nil, &db.ValidationError{Field: "questions", Reason: fmt.Sprintf("duplicate question id %q", head.ID)}
		}
		seen[head.ID] = true

		b := base{id: head.ID, prompt: head.Prompt, required: head.Required}
		switch head.Type {
		case "text":
			questions = append(questions, Text{base: b, MaxLength: head.MaxLength})
		case "long_text":
			questions = append(questions, LongText{base: b, MaxLength: head.MaxLength})
		case "single_choice":
			if len(head.Options) == 0 {
				return nil, &db.ValidationError{Field: "questions", Reason: fmt.Sprintf("question %q has no options", head.ID)}
			}
			questions = append(questions, SingleChoice{base: b, Options: head.Options})
		case "multi_choice":
			if len(head.Options) == 0 {
				return nil, &db.ValidationError{Field: "questions", Reason: fmt.Sprintf("question %q has no options", head.ID)}
			}
			questions = append(questions, MultiChoice{base: b, Options: head.Options})
		case "rating_scale":
			if head.Min == nil || head.Max == nil || *head.Min > *head.Max {
				return nil, &db.ValidationError{Field: "questions", Reason: fmt.Sprintf("question %q has an invalid rating range", head.ID)}
			}
			questions = append(questions, RatingScale{base: b, Min: *head.Min, Max: *head.Max})
		case "yes_no":
			questions = append(questions, YesNo{base: b})
		default:
			return nil, &db.ValidationError{Field: "questions", Reason: fmt.Sprintf("unknown question type %q", head.Type)}
		}
	}
	return questions, nil
}

// Answer is one submitted answer. Value stays raw until the matching
// question's kind decides what shape it must decode into.
type Answer struct {
	QuestionID string          `json:"questionId"`
	Value      json.RawMessage `json:"value"`
}

// ValidateAnswers checks a full submission against the survey's questions.
// Every required question needs a valid answer; answers to unknown questions
// and duplicate answers are rejected. Any violation fails the whole
// submission.
func ValidateAnswers(questions []Question, answers []Answer) error {
	byQuestion := make(map[string]json.RawMessage, len(answers))
	known := make(map[string]bool, len(questions))
	for _, q := range questions {
		known[q.ID()] = true
	}
	for _, a := range answers {
		if !known[a.QuestionID] {
			return &db.ValidationError{Field: fmt.Sprintf("question %q", a.QuestionID), Reason: "no such question in this survey"}
		}
		if _, dup := byQuestion[a.QuestionID]; dup {
			return &db.ValidationError{Field: fmt.Sprintf("question %q", a.QuestionID), Reason: "answered more than once"}
		}
		byQuestion[a.QuestionID] = a.Value
	}

	for _, q := range questions {
		value, ok := byQuestion[q.ID()]
		if !ok || len(value) == 0 || string(value) == "null" {
			if q.Required() {
				return &db.ValidationError{Field: fmt.Sprintf("question %q", q.ID()), Reason: "an answer is required"}
			}
			continue
		}
		if err := q.Validate(value); err != nil {
			return err
		}
	}
	return nil
}
