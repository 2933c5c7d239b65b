package plugin

import (
	"context"
	"testing"

	"lang_exam_backend/internal/model"
)

func TestDefaultRegistryCoversAllTypes(t *testing.T) {
	reg := NewDefaultRegistry()
	types := []model.QuestionType{
		model.SingleChoice, model.Completion, model.Matching, model.Labeling,
		model.PickFromList, model.TrueFalseNotGiven, model.YesNoNotGiven,
		model.MatchingHeadings, model.ShortAnswer, model.SentenceTranslation,
		model.WordForm, model.WritingTask,
	}
	for _, tp := range types {
		p, ok := reg.Get(tp)
		if !ok {
			t.Errorf("题型 %s 未注册", tp)
			continue
		}
		if p.Config().Type != tp {
			t.Errorf("题型 %s 的插件配置标签为 %s", tp, p.Config().Type)
		}
	}
	if got := len(reg.All()); got != len(types) {
		t.Errorf("All() = %d 个插件, want %d", got, len(types))
	}
}

func TestRegisterLastWriteWins(t *testing.T) {
	reg := NewRegistry()
	first := NewSingleChoicePlugin()
	second := NewSingleChoicePlugin()
	reg.Register(first)
	reg.Register(second)

	if got := len(reg.All()); got != 1 {
		t.Fatalf("重复注册同一题型应只保留一个条目, got %d", got)
	}
	p, _ := reg.Get(model.SingleChoice)
	if p != second {
		t.Error("重复注册应后写覆盖")
	}
}

func TestScoreUnregisteredType(t *testing.T) {
	reg := NewRegistry()
	q := &model.Question{Type: "mystery_type", Prompt: "?", Points: 5}
	q.ID = "q-unknown"

	res := reg.ScoreQuestion(context.Background(), ScoringContext{
		Question: q,
		Answer:   model.AnswerPayload{Selected: "whatever"},
	})
	if res.IsCorrect || res.Score != 0 {
		t.Errorf("未注册题型应得零分，got IsCorrect=%v Score=%v", res.IsCorrect, res.Score)
	}
	if res.MaxScore != 5 {
		t.Errorf("MaxScore 应取题目分值，got %v", res.MaxScore)
	}
	if res.Code != CodeNoPlugin {
		t.Errorf("Code = %q, want %q", res.Code, CodeNoPlugin)
	}
	if res.Feedback == "" {
		t.Error("应返回说明性反馈")
	}
}

func TestTransformUnregisteredTypeIsError(t *testing.T) {
	reg := NewRegistry()
	q := &model.Question{Type: "mystery_type", Prompt: "?", Points: 1}
	if _, err := reg.TransformQuestion(q); err == nil {
		t.Error("未注册题型的标准化应返回错误")
	}
	if _, err := reg.TransformQuestion(nil); err == nil {
		t.Error("空题目的标准化应返回错误")
	}
}

func TestValidateUnregisteredTypeIsStructuredFailure(t *testing.T) {
	reg := NewRegistry()
	q := &model.Question{Type: "mystery_type", Prompt: "?", Points: 1}
	res := reg.ValidateQuestion(q)
	if res.IsValid || len(res.Errors) == 0 {
		t.Errorf("未注册题型应返回结构化失败，got %+v", res)
	}
}

func TestByCategory(t *testing.T) {
	reg := NewDefaultRegistry()
	writing := reg.ByCategory(model.ExamWriting)
	if len(writing) == 0 {
		t.Fatal("写作类别应至少有一个可用题型")
	}
	for _, p := range writing {
		found := false
		for _, c := range p.Config().Categories {
			if c == model.ExamWriting {
				found = true
			}
		}
		if !found {
			t.Errorf("插件 %s 不属于写作类别", p.Config().Type)
		}
	}
}

func TestCreateQuestion(t *testing.T) {
	reg := NewDefaultRegistry()
	q, err := reg.CreateQuestion(model.Completion, 7)
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	if q.Type != model.Completion || q.Index != 7 {
		t.Errorf("缺省题目 Type=%s Index=%d", q.Type, q.Index)
	}
	if _, err := reg.CreateQuestion("mystery_type", 1); err == nil {
		t.Error("未注册题型应返回错误")
	}
}
