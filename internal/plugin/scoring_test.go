package plugin

import (
	"context"
	"strings"
	"testing"

	"lang_exam_backend/internal/model"
)

func newCompletionQuestion(strategy model.ScoringStrategy, answers ...string) *model.Question {
	q := &model.Question{
		Type:     model.Completion,
		Prompt:   "填空",
		Points:   float64(len(answers)),
		Strategy: strategy,
	}
	q.ID = "q-completion"
	for i, a := range answers {
		q.SubQuestions = append(q.SubQuestions, model.SubQuestionMeta{
			ID:                "sub-" + string(rune('a'+i)),
			Points:            1,
			AcceptableAnswers: []string{a},
		})
	}
	return q
}

func TestCompletionPartialScoring(t *testing.T) {
	p := NewCompletionPlugin()
	q := newCompletionQuestion(model.PartialScoring, "cat", "dog", "bird")

	tests := []struct {
		name      string
		texts     map[string]string
		wantScore float64
		wantMax   float64
		wantAll   bool
	}{
		{
			name:      "全对",
			texts:     map[string]string{"sub-a": "cat", "sub-b": "dog", "sub-c": "bird"},
			wantScore: 3, wantMax: 3, wantAll: true,
		},
		{
			name:      "三空对两空",
			texts:     map[string]string{"sub-a": "cat", "sub-b": "dog", "sub-c": "fish"},
			wantScore: 2, wantMax: 3,
		},
		{
			name:      "漏答的空计入满分",
			texts:     map[string]string{"sub-a": "cat"},
			wantScore: 1, wantMax: 3,
		},
		{
			name:      "完全未作答",
			texts:     nil,
			wantScore: 0, wantMax: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Score(context.Background(), ScoringContext{
				Question: q,
				Answer:   model.AnswerPayload{Texts: tt.texts},
			})
			if res.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", res.Score, tt.wantScore)
			}
			if res.MaxScore != tt.wantMax {
				t.Errorf("MaxScore = %v, want %v", res.MaxScore, tt.wantMax)
			}
			if res.IsCorrect != tt.wantAll {
				t.Errorf("IsCorrect = %v, want %v", res.IsCorrect, tt.wantAll)
			}
		})
	}
}

func TestCompletionAllOrNothing(t *testing.T) {
	p := NewCompletionPlugin()
	q := newCompletionQuestion(model.AllOrNothingScoring, "cat", "dog")
	q.Points = 2

	full := p.Score(context.Background(), ScoringContext{
		Question: q,
		Answer:   model.AnswerPayload{Texts: map[string]string{"sub-a": "cat", "sub-b": "dog"}},
	})
	if !full.IsCorrect || full.Score != 2 {
		t.Errorf("全对应得满分，got IsCorrect=%v Score=%v", full.IsCorrect, full.Score)
	}

	partial := p.Score(context.Background(), ScoringContext{
		Question: q,
		Answer:   model.AnswerPayload{Texts: map[string]string{"sub-a": "cat", "sub-b": "fish"}},
	})
	if partial.IsCorrect || partial.Score != 0 {
		t.Errorf("部分正确在 all_or_nothing 下应得零分，got IsCorrect=%v Score=%v", partial.IsCorrect, partial.Score)
	}
}

func TestFreeTextNormalization(t *testing.T) {
	p := NewCompletionPlugin()
	q := newCompletionQuestion(model.PartialScoring, "Paris")

	tests := []struct {
		submitted string
		want      bool
	}{
		{"Paris", true},
		{"  paris ", true},
		{"PARIS", true},
		{"pa ris", false},
		{"London", false},
		{"", false},
	}
	for _, tt := range tests {
		res := p.Score(context.Background(), ScoringContext{
			Question:      q,
			SubQuestionID: "sub-a",
			Answer:        model.AnswerPayload{Texts: map[string]string{"sub-a": tt.submitted}},
		})
		if res.IsCorrect != tt.want {
			t.Errorf("submitted %q: IsCorrect = %v, want %v", tt.submitted, res.IsCorrect, tt.want)
		}
	}
}

func TestSingleChoiceWrongFeedbackNamesBothOptions(t *testing.T) {
	p := NewSingleChoicePlugin()
	q := &model.Question{
		Type:     model.SingleChoice,
		Prompt:   "选择正确答案",
		Points:   1,
		Strategy: model.AllOrNothingScoring,
		Options: []model.QuestionOption{
			{ID: "opt-a", Text: "北京"},
			{ID: "opt-b", Text: "上海"},
		},
		SubQuestions: []model.SubQuestionMeta{{ID: "sub-1", Points: 1, CorrectAnswer: "opt-a"}},
	}
	q.ID = "q-sc"

	res := p.Score(context.Background(), ScoringContext{
		Question: q,
		Answer:   model.AnswerPayload{Selected: "opt-b"},
	})
	if res.IsCorrect || res.Score != 0 {
		t.Fatalf("答错应得零分，got IsCorrect=%v Score=%v", res.IsCorrect, res.Score)
	}
	if !strings.Contains(res.Feedback, "上海") || !strings.Contains(res.Feedback, "北京") {
		t.Errorf("反馈应同时包含所选与正确选项文本，got %q", res.Feedback)
	}
}

func TestYesNoNotGivenSynonyms(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"t", JudgeYes},
		{"TRUE", JudgeYes},
		{"y", JudgeYes},
		{"f", JudgeNo},
		{"False", JudgeNo},
		{"ng", JudgeNotGiven},
		{"n", JudgeNotGiven},
		{"Not Given", JudgeNotGiven},
		{"not-given", JudgeNotGiven},
		{"yes", JudgeYes},
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		if got := NormalizeJudgement(tt.in); got != tt.want {
			t.Errorf("NormalizeJudgement(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestYesNoNotGivenScoring(t *testing.T) {
	p := NewYesNoNotGivenPlugin()
	q := &model.Question{
		Type:     model.YesNoNotGiven,
		Prompt:   "判断",
		Points:   2,
		Strategy: model.PartialScoring,
		SubQuestions: []model.SubQuestionMeta{
			{ID: "s1", Points: 1, CorrectAnswer: "yes"},
			{ID: "s2", Points: 1, CorrectAnswer: "not_given"},
		},
	}
	q.ID = "q-ynng"

	res := p.Score(context.Background(), ScoringContext{
		Question: q,
		Answer:   model.AnswerPayload{Texts: map[string]string{"s1": "T", "s2": "ng"}},
	})
	if !res.IsCorrect || res.Score != 2 {
		t.Errorf("同义写法应判对，got IsCorrect=%v Score=%v Feedback=%q", res.IsCorrect, res.Score, res.Feedback)
	}
}

func TestPickFromListSetEquality(t *testing.T) {
	p := NewPickFromListPlugin()
	q := &model.Question{
		Type:     model.PickFromList,
		Prompt:   "选出两项",
		Points:   2,
		Strategy: model.AllOrNothingScoring,
		Options: []model.QuestionOption{
			{ID: "a", Text: "A", IsCorrect: true},
			{ID: "b", Text: "B", IsCorrect: true},
			{ID: "c", Text: "C"},
		},
	}
	q.ID = "q-pick"

	tests := []struct {
		name     string
		selected []string
		want     bool
	}{
		{"完全一致", []string{"a", "b"}, true},
		{"与顺序无关", []string{"b", "a"}, true},
		{"少选", []string{"a"}, false},
		{"多选", []string{"a", "b", "c"}, false},
		{"错选", []string{"a", "c"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Score(context.Background(), ScoringContext{
				Question: q,
				Answer:   model.AnswerPayload{SelectedSet: tt.selected},
			})
			if res.IsCorrect != tt.want {
				t.Errorf("IsCorrect = %v, want %v", res.IsCorrect, tt.want)
			}
			if tt.want && res.Score != q.Points {
				t.Errorf("判对应得满分，got %v", res.Score)
			}
			if !tt.want && res.Score != 0 {
				t.Errorf("判错应得零分，got %v", res.Score)
			}
		})
	}
}

func TestPickFromListPartialMembership(t *testing.T) {
	p := NewPickFromListPlugin().(*pickFromListPlugin)
	q := &model.Question{
		Type:     model.PickFromList,
		Prompt:   "选出两项",
		Points:   2,
		Strategy: model.PartialScoring,
		Options: []model.QuestionOption{
			{ID: "a", Text: "A", IsCorrect: true},
			{ID: "b", Text: "B", IsCorrect: true},
			{ID: "c", Text: "C"},
		},
	}
	q.ID = "q-pick-partial"
	p.rebuildSubQuestions(q)

	res := p.Score(context.Background(), ScoringContext{
		Question: q,
		Answer:   model.AnswerPayload{SelectedSet: []string{"a", "c"}},
	})
	if res.IsCorrect {
		t.Error("只命中一个正确项不应判为整题正确")
	}
	if res.Score != 1 {
		t.Errorf("命中一个正确项应得一半分，got %v", res.Score)
	}
}

func TestMatchingScoring(t *testing.T) {
	p := NewMatchingPlugin()
	q := &model.Question{
		Type:     model.Matching,
		Prompt:   "配对",
		Points:   2,
		Strategy: model.PartialScoring,
		Options: []model.QuestionOption{
			{ID: "op-1", Text: "甲"},
			{ID: "op-2", Text: "乙"},
		},
		Items: []model.QuestionItem{
			{ID: "it-1", Text: "条目一"},
			{ID: "it-2", Text: "条目二"},
		},
		SubQuestions: []model.SubQuestionMeta{
			{ID: "s1", ItemID: "it-1", Points: 1, CorrectAnswer: "op-1"},
			{ID: "s2", ItemID: "it-2", Points: 1, CorrectAnswer: "op-2"},
		},
	}
	q.ID = "q-match"

	res := p.Score(context.Background(), ScoringContext{
		Question: q,
		Answer:   model.AnswerPayload{Texts: map[string]string{"s1": "op-1", "s2": "op-1"}},
	})
	if res.Score != 1 || res.MaxScore != 2 {
		t.Errorf("两项对一项应得 1/2，got %v/%v", res.Score, res.MaxScore)
	}
}

func TestScoreMissingSubQuestion(t *testing.T) {
	p := NewCompletionPlugin()
	q := newCompletionQuestion(model.PartialScoring, "cat")

	res := p.Score(context.Background(), ScoringContext{
		Question:      q,
		SubQuestionID: "no-such-sub",
		Answer:        model.AnswerPayload{Texts: map[string]string{"no-such-sub": "cat"}},
	})
	if res.Score != 0 || res.Code != CodeScoringError {
		t.Errorf("不存在的小题应返回零分错误结果，got Score=%v Code=%q", res.Score, res.Code)
	}
}

func TestTransformIdempotent(t *testing.T) {
	reg := NewDefaultRegistry()
	for _, p := range reg.All() {
		q := p.CreateDefault(1)
		first := p.Transform(q)
		second := p.Transform(q)
		if first == nil || second == nil {
			t.Fatalf("%s: Transform 返回 nil", p.Config().Type)
		}
		if len(first.SubQuestions) != len(second.SubQuestions) {
			t.Errorf("%s: 重复 Transform 的小题数不一致", p.Config().Type)
		}
		if first.ID != q.ID || first.Points != q.Points {
			t.Errorf("%s: 标准化应保留公共属性", p.Config().Type)
		}
	}
}

func TestCreateDefaultValidates(t *testing.T) {
	reg := NewDefaultRegistry()
	for _, p := range reg.All() {
		q := p.CreateDefault(1)
		res := p.Validate(q)
		if !res.IsValid {
			t.Errorf("%s: 缺省题目应通过校验，errors=%v", p.Config().Type, res.Errors)
		}
	}
}
