package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"

	"lang_exam_backend/internal/model"
	"lang_exam_backend/internal/plugin"
)

func newScoringService() *ScoringService {
	return NewScoringService(plugin.NewDefaultRegistry(), nil, nil, nil)
}

func subAnswer(questionID, subID, text string) model.UserAnswer {
	return model.UserAnswer{
		QuestionID:    questionID,
		SubQuestionID: subID,
		Payload:       datatypes.NewJSONType(model.AnswerPayload{Texts: map[string]string{subID: text}}),
	}
}

func TestCalculateQuestionScorePartial(t *testing.T) {
	svc := newScoringService()
	q := partialQuestion("q1", 3)
	q.SubQuestions[0].AcceptableAnswers = []string{"cat"}
	q.SubQuestions[1].AcceptableAnswers = []string{"dog"}
	q.SubQuestions[2].AcceptableAnswers = []string{"bird"}

	answers := []model.UserAnswer{
		subAnswer("q1", q.SubQuestions[0].ID, "cat"),
		subAnswer("q1", q.SubQuestions[1].ID, "wolf"),
		subAnswer("q1", q.SubQuestions[2].ID, "bird"),
	}

	qs, scored := svc.CalculateQuestionScore(context.Background(), &q, answers, true)
	if qs.Score != 2 || qs.MaxScore != 3 {
		t.Errorf("得分 = %v/%v, want 2/3", qs.Score, qs.MaxScore)
	}
	if qs.IsCorrect {
		t.Error("有错误小题时整题不应判对")
	}
	if qs.Status != model.StatusCompleted {
		t.Errorf("Status = %q, want %q", qs.Status, model.StatusCompleted)
	}
	for _, a := range scored {
		if a.ScoredAt == nil {
			t.Error("评分后应写入评分时间")
		}
	}
}

func TestCalculateQuestionScoreAuthoredSubPoints(t *testing.T) {
	svc := newScoringService()
	q := partialQuestion("q1", 2)
	// 整题分值与小题之和不一致时，满分口径以小题作者设定分值之和为准
	q.Points = 3
	q.SubQuestions[0].Points = 2
	q.SubQuestions[0].AcceptableAnswers = []string{"cat"}
	q.SubQuestions[1].Points = 2
	q.SubQuestions[1].AcceptableAnswers = []string{"dog"}

	answers := []model.UserAnswer{
		subAnswer("q1", q.SubQuestions[0].ID, "cat"),
		subAnswer("q1", q.SubQuestions[1].ID, "dog"),
	}

	qs, _ := svc.CalculateQuestionScore(context.Background(), &q, answers, true)
	if qs.Score != 4 || qs.MaxScore != 4 {
		t.Errorf("得分 = %v/%v, want 4/4", qs.Score, qs.MaxScore)
	}
	if !qs.IsCorrect {
		t.Error("全部小题答对时整题应判对")
	}

	// 只答一道小题：得分按作答计，满分仍为全部小题之和
	qs2, _ := svc.CalculateQuestionScore(context.Background(), &q, answers[:1], true)
	if qs2.Score != 2 || qs2.MaxScore != 4 {
		t.Errorf("部分作答得分 = %v/%v, want 2/4", qs2.Score, qs2.MaxScore)
	}
	if qs2.IsCorrect {
		t.Error("有漏答小题时整题不应判对")
	}
}

func TestCalculateQuestionScoreUnanswered(t *testing.T) {
	svc := newScoringService()
	q := partialQuestion("q1", 2)

	qs, scored := svc.CalculateQuestionScore(context.Background(), &q, nil, true)
	if qs.Score != 0 || qs.MaxScore != 2 {
		t.Errorf("未作答应计 0/满分，got %v/%v", qs.Score, qs.MaxScore)
	}
	if qs.Status != model.StatusUntouched {
		t.Errorf("Status = %q, want %q", qs.Status, model.StatusUntouched)
	}
	if len(scored) != 0 {
		t.Error("未作答不应产生回写记录")
	}
}

func TestCalculateQuestionScoreUsesCache(t *testing.T) {
	svc := newScoringService()
	q := partialQuestion("q1", 1)
	q.Points = 1

	past := time.Now().Add(-time.Hour)
	cached := subAnswer("q1", q.SubQuestions[0].ID, "whatever")
	cached.Score = 1
	cached.MaxScore = 1
	cached.IsCorrect = true
	cached.ScoredAt = &past

	qs, _ := svc.CalculateQuestionScore(context.Background(), &q, []model.UserAnswer{cached}, false)
	if qs.Score != 1 || !qs.IsCorrect {
		t.Errorf("未要求重评时应复用缓存评分，got Score=%v IsCorrect=%v", qs.Score, qs.IsCorrect)
	}
	if len(qs.Results) != 0 {
		t.Error("缓存命中不应触发插件评分")
	}

	// recompute 强制重评，错误答案掉到零分
	qs2, _ := svc.CalculateQuestionScore(context.Background(), &q, []model.UserAnswer{cached}, true)
	if qs2.Score != 0 {
		t.Errorf("强制重评应按当前作答重算，got %v", qs2.Score)
	}
}

func TestCalculateQuestionScoreKeepsManualScores(t *testing.T) {
	svc := newScoringService()
	q := partialQuestion("q1", 1)
	q.Points = 1

	now := time.Now()
	manual := subAnswer("q1", q.SubQuestions[0].ID, "whatever")
	manual.Score = 0.5
	manual.MaxScore = 1
	manual.ManualScored = true
	manual.ScoredAt = &now

	qs, _ := svc.CalculateQuestionScore(context.Background(), &q, []model.UserAnswer{manual}, true)
	if qs.Score != 0.5 {
		t.Errorf("强制重评不应覆盖人工评分，got %v", qs.Score)
	}
}

func TestCalculateQuestionScoreUnknownType(t *testing.T) {
	svc := NewScoringService(plugin.NewRegistry(), nil, nil, nil)
	q := wholeQuestion("q1")
	answers := []model.UserAnswer{{
		QuestionID: "q1",
		Payload:    datatypes.NewJSONType(model.AnswerPayload{Selected: "a"}),
	}}

	qs, _ := svc.CalculateQuestionScore(context.Background(), &q, answers, true)
	if qs.Score != 0 {
		t.Errorf("未注册题型应得零分，got %v", qs.Score)
	}
	if len(qs.Results) != 1 || qs.Results[0].Code != plugin.CodeNoPlugin {
		t.Errorf("应返回 NO_PLUGIN 错误结果，got %+v", qs.Results)
	}
}

func TestSafeScoreRecoversPanic(t *testing.T) {
	reg := plugin.NewRegistry()
	reg.Register(panicPlugin{})
	svc := NewScoringService(reg, nil, nil, nil)

	q := model.Question{Type: "panic_type", Prompt: "x", Points: 3}
	q.ID = "q-panic"

	res := svc.safeScore(context.Background(), plugin.ScoringContext{Question: &q})
	if res.Score != 0 || res.Code != plugin.CodeScoringError {
		t.Errorf("panic 应折算为零分错误结果，got %+v", res)
	}
	if res.MaxScore != 3 {
		t.Errorf("MaxScore 应保留题目分值，got %v", res.MaxScore)
	}
}

// panicPlugin 触发评分 panic 的测试桩
type panicPlugin struct{}

func (panicPlugin) Config() plugin.PluginConfig {
	return plugin.PluginConfig{Type: "panic_type", Name: "panic"}
}
func (panicPlugin) CreateDefault(index int) *model.Question { return &model.Question{} }
func (panicPlugin) Transform(q *model.Question) *model.StandardQuestion {
	return &model.StandardQuestion{}
}
func (panicPlugin) Validate(q *model.Question) plugin.ValidationResult {
	return plugin.ValidationResult{IsValid: true}
}
func (panicPlugin) Score(ctx context.Context, sc plugin.ScoringContext) plugin.ScoringResult {
	panic("boom")
}
func (panicPlugin) IsQuestionOfType(q *model.Question) bool { return false }
