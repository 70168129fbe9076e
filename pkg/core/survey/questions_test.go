package survey

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

const feedbackQuestions = `[
	{"id":"q-rating","type":"rating_scale","prompt":"How was your shift?","required":true,"min":1,"max":5},
	{"id":"q-return","type":"yes_no","prompt":"Would you volunteer again?","required":true},
	{"id":"q-role","type":"single_choice","prompt":"Where did you work?","required":true,"options":["Kitchen","Front of house","Dishwash"]},
	{"id":"q-liked","type":"multi_choice","prompt":"What did you enjoy?","required":false,"options":["The team","The food","The pace"]},
	{"id":"q-name","type":"text","prompt":"Shift lead's name","required":false,"maxLength":80},
	{"id":"q-story","type":"long_text","prompt":"Anything else?","required":false}
]`

func mustParse(t *testing.T, raw string) []Question {
	t.Helper()
	questions, err := ParseQuestions(json.RawMessage(raw))
	require.NoError(t, err)
	return questions
}

func answer(questionID, value string) Answer {
	return Answer{QuestionID: questionID, Value: json.RawMessage(value)}
}

func TestParseQuestions_DecodesEveryKind(t *testing.T) {
	questions := mustParse(t, feedbackQuestions)
	require.Len(t, questions, 6)

	rating, ok := questions[0].(RatingScale)
	require.True(t, ok)
	assert.Equal(t, "q-rating", rating.ID())
	assert.Equal(t, "How was your shift?", rating.Prompt())
	assert.True(t, rating.Required())
	assert.Equal(t, 1, rating.Min)
	assert.Equal(t, 5, rating.Max)

	assert.IsType(t, YesNo{}, questions[1])
	assert.IsType(t, SingleChoice{}, questions[2])
	assert.IsType(t, MultiChoice{}, questions[3])

	text, ok := questions[4].(Text)
	require.True(t, ok)
	assert.Equal(t, 80, text.MaxLength)
	assert.False(t, text.Required())

	assert.IsType(t, LongText{}, questions[5])
}

func TestParseQuestions_Rejections(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"unknown kind", `[{"id":"q1","type":"matrix","prompt":"?"}]`},
		{"missing id", `[{"type":"text","prompt":"?"}]`},
		{"duplicate id", `[{"id":"q1","type":"text"},{"id":"q1","type":"yes_no"}]`},
		{"single choice without options", `[{"id":"q1","type":"single_choice"}]`},
		{"multi choice without options", `[{"id":"q1","type":"multi_choice"}]`},
		{"rating without range", `[{"id":"q1","type":"rating_scale"}]`},
		{"rating with inverted range", `[{"id":"q1","type":"rating_scale","min":5,"max":1}]`},
		{"not a list", `{"id":"q1","type":"text"}`},
		{"not json", `questions`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseQuestions(json.RawMessage(tc.raw))
			assert.True(t, db.IsValidation(err), "want validation error, got %v", err)
		})
	}
}

func TestValidateAnswers_AcceptsCompleteSubmission(t *testing.T) {
	questions := mustParse(t, feedbackQuestions)
	err := ValidateAnswers(questions, []Answer{
		answer("q-rating", `4`),
		answer("q-return", `true`),
		answer("q-role", `"Kitchen"`),
		answer("q-liked", `["The team","The pace"]`),
		answer("q-name", `"Ana"`),
	})
	assert.NoError(t, err)
}

func TestValidateAnswers_OptionalQuestionsMaySkip(t *testing.T) {
	questions := mustParse(t, feedbackQuestions)
	err := ValidateAnswers(questions, []Answer{
		answer("q-rating", `5`),
		answer("q-return", `false`),
		answer("q-role", `"Dishwash"`),
		answer("q-story", `null`),
	})
	assert.NoError(t, err)
}

func TestValidateAnswers_Rejections(t *testing.T) {
	questions := mustParse(t, feedbackQuestions)
	cases := []struct {
		name    string
		answers []Answer
		wantIn  string
	}{
		{
			"required question unanswered",
			[]Answer{answer("q-return", `true`), answer("q-role", `"Kitchen"`)},
			"q-rating",
		},
		{
			"rating out of range",
			[]Answer{answer("q-rating", `6`), answer("q-return", `true`), answer("q-role", `"Kitchen"`)},
			"q-rating",
		},
		{
			"rating not a whole number",
			[]Answer{answer("q-rating", `3.5`), answer("q-return", `true`), answer("q-role", `"Kitchen"`)},
			"q-rating",
		},
		{
			"rating wrong type",
			[]Answer{answer("q-rating", `"great"`), answer("q-return", `true`), answer("q-role", `"Kitchen"`)},
			"q-rating",
		},
		{
			"yes no wrong type",
			[]Answer{answer("q-rating", `4`), answer("q-return", `"yes"`), answer("q-role", `"Kitchen"`)},
			"q-return",
		},
		{
			"choice outside options",
			[]Answer{answer("q-rating", `4`), answer("q-return", `true`), answer("q-role", `"Office"`)},
			"q-role",
		},
		{
			"multi choice with unknown option",
			[]Answer{answer("q-rating", `4`), answer("q-return", `true`), answer("q-role", `"Kitchen"`), answer("q-liked", `["The team","The view"]`)},
			"q-liked",
		},
		{
			"multi choice with repeat",
			[]Answer{answer("q-rating", `4`), answer("q-return", `true`), answer("q-role", `"Kitchen"`), answer("q-liked", `["The team","The team"]`)},
			"q-liked",
		},
		{
			"multi choice empty",
			[]Answer{answer("q-rating", `4`), answer("q-return", `true`), answer("q-role", `"Kitchen"`), answer("q-liked", `[]`)},
			"q-liked",
		},
		{
			"text over length cap",
			[]Answer{answer("q-rating", `4`), answer("q-return", `true`), answer("q-role", `"Kitchen"`), answer("q-name", `"`+strings.Repeat("a", 81)+`"`)},
			"q-name",
		},
		{
			"answer for unknown question",
			[]Answer{answer("q-rating", `4`), answer("q-return", `true`), answer("q-role", `"Kitchen"`), answer("q-ghost", `"?"`)},
			"q-ghost",
		},
		{
			"question answered twice",
			[]Answer{answer("q-rating", `4`), answer("q-rating", `5`), answer("q-return", `true`), answer("q-role", `"Kitchen"`)},
			"q-rating",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAnswers(questions, tc.answers)
			require.Error(t, err)
			assert.True(t, db.IsValidation(err), "want validation error, got %v", err)
			assert.Contains(t, err.Error(), tc.wantIn, "error should name the offending question")
		})
	}
}
