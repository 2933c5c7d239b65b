package util

import (
	"testing"

	"gorm.io/datatypes"

	"lang_exam_backend/internal/model"
)

func TestClampScore(t *testing.T) {
	tests := []struct {
		score, max, want float64
	}{
		{5, 10, 5},
		{-1, 10, 0},
		{12, 10, 10},
		{0, 0, 0},
		{3, 0, 3},
	}
	for _, tt := range tests {
		if got := ClampScore(tt.score, tt.max); got != tt.want {
			t.Errorf("ClampScore(%v, %v) = %v, want %v", tt.score, tt.max, got, tt.want)
		}
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		score, max float64
		want       int
	}{
		{5, 10, 50},
		{1, 3, 33},
		{2, 3, 67},
		{10, 10, 100},
		{0, 10, 0},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := Percentage(tt.score, tt.max); got != tt.want {
			t.Errorf("Percentage(%v, %v) = %v, want %v", tt.score, tt.max, got, tt.want)
		}
	}
}

func TestDisplayQuestionCount(t *testing.T) {
	questions := []model.Question{
		{
			Strategy: model.PartialScoring,
			SubQuestions: []model.SubQuestionMeta{
				{ID: "a"}, {ID: "b"}, {ID: "c"},
			},
		},
		{Strategy: model.AllOrNothingScoring, SubQuestions: []model.SubQuestionMeta{{ID: "d"}, {ID: "e"}}},
		{Strategy: model.PartialScoring},
	}
	if got := DisplayQuestionCount(questions); got != 5 {
		t.Errorf("DisplayQuestionCount = %d, want 5", got)
	}
}

func answerWith(text string) model.UserAnswer {
	return model.UserAnswer{
		Payload: datatypes.NewJSONType(model.AnswerPayload{Text: text}),
	}
}

func TestDetermineQuestionStatus(t *testing.T) {
	partial := &model.Question{
		Strategy: model.PartialScoring,
		SubQuestions: []model.SubQuestionMeta{
			{ID: "a"}, {ID: "b"}, {ID: "c"},
		},
	}
	whole := &model.Question{Strategy: model.AllOrNothingScoring}

	tests := []struct {
		name    string
		q       *model.Question
		answers []model.UserAnswer
		want    string
	}{
		{"无作答", partial, nil, model.StatusUntouched},
		{"空白作答", partial, []model.UserAnswer{answerWith("  ")}, model.StatusUntouched},
		{"部分作答", partial, []model.UserAnswer{answerWith("x")}, model.StatusPartial},
		{
			"全部作答",
			partial,
			[]model.UserAnswer{answerWith("x"), answerWith("y"), answerWith("z")},
			model.StatusCompleted,
		},
		{"整题作答", whole, []model.UserAnswer{answerWith("essay")}, model.StatusCompleted},
		{"整题未作答", whole, nil, model.StatusUntouched},
		{"空题目", nil, []model.UserAnswer{answerWith("x")}, model.StatusUntouched},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineQuestionStatus(tt.q, tt.answers); got != tt.want {
				t.Errorf("DetermineQuestionStatus = %q, want %q", got, tt.want)
			}
		})
	}
}
