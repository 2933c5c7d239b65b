package service

import (
	"testing"

	"lang_exam_backend/internal/model"
	"lang_exam_backend/internal/plugin"
)

func partialQuestion(id string, subs int) model.Question {
	q := model.Question{
		Type:     model.Completion,
		Prompt:   "填空",
		Points:   float64(subs),
		Strategy: model.PartialScoring,
	}
	q.ID = id
	for i := 0; i < subs; i++ {
		q.SubQuestions = append(q.SubQuestions, model.SubQuestionMeta{
			ID:                id + "-sub-" + string(rune('a'+i)),
			Points:            1,
			AcceptableAnswers: []string{"x"},
		})
	}
	return q
}

func wholeQuestion(id string) model.Question {
	q := model.Question{
		Type:     model.SingleChoice,
		Prompt:   "单选",
		Points:   1,
		Strategy: model.AllOrNothingScoring,
		Options: []model.QuestionOption{
			{ID: "a", Text: "A"},
			{ID: "b", Text: "B"},
		},
		SubQuestions: []model.SubQuestionMeta{{ID: id + "-sub", Points: 1, CorrectAnswer: "a"}},
	}
	q.ID = id
	return q
}

func TestAssignNumbers(t *testing.T) {
	svc := NewNumberingService(plugin.NewDefaultRegistry())
	questions := []model.Question{
		partialQuestion("q1", 3),  // 0–2
		wholeQuestion("q2"),       // 3
		partialQuestion("q3", 2),  // 4–5
		wholeQuestion("q4"),       // 6
	}

	numbered, err := svc.AssignNumbers(questions)
	if err != nil {
		t.Fatalf("AssignNumbers: %v", err)
	}

	want := []struct{ index, ending int }{
		{0, 2}, {3, 3}, {4, 5}, {6, 6},
	}
	for i, w := range want {
		q := numbered[i].Question
		if q.Index != w.index || q.PartialEndingIndex != w.ending {
			t.Errorf("第 %d 题编号 = [%d, %d], want [%d, %d]",
				i+1, q.Index, q.PartialEndingIndex, w.index, w.ending)
		}
		if numbered[i].Standard.Index != w.index {
			t.Errorf("第 %d 题标准化形态编号未回填", i+1)
		}
	}
}

func TestAssignNumbersDeterministic(t *testing.T) {
	svc := NewNumberingService(plugin.NewDefaultRegistry())
	questions := []model.Question{partialQuestion("q1", 2), wholeQuestion("q2")}

	if _, err := svc.AssignNumbers(questions); err != nil {
		t.Fatalf("AssignNumbers: %v", err)
	}
	first := []int{questions[0].Index, questions[0].PartialEndingIndex, questions[1].Index}

	if _, err := svc.AssignNumbers(questions); err != nil {
		t.Fatalf("AssignNumbers 二次调用: %v", err)
	}
	second := []int{questions[0].Index, questions[0].PartialEndingIndex, questions[1].Index}

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("重复编号结果不一致: %v vs %v", first, second)
		}
	}
}

func TestAssignNumbersUnknownType(t *testing.T) {
	svc := NewNumberingService(plugin.NewRegistry())
	questions := []model.Question{wholeQuestion("q1")}
	if _, err := svc.AssignNumbers(questions); err == nil {
		t.Error("未注册题型应中止编号")
	}
}

func TestStripForLearner(t *testing.T) {
	svc := NewNumberingService(plugin.NewDefaultRegistry())
	questions := []model.Question{partialQuestion("q1", 2)}
	numbered, err := svc.AssignNumbers(questions)
	if err != nil {
		t.Fatalf("AssignNumbers: %v", err)
	}

	stripped := StripForLearner([]*model.StandardQuestion{numbered[0].Standard})
	for _, sq := range stripped {
		for _, sub := range sq.SubQuestions {
			if sub.CorrectAnswer != "" || len(sub.AcceptableAnswers) > 0 || sub.AnswerText != "" {
				t.Error("考生视图不应携带答案")
			}
		}
	}
	// 原始标准化形态不受影响
	if len(numbered[0].Standard.SubQuestions[0].AcceptableAnswers) == 0 {
		t.Error("脱敏不应改写源标准化形态")
	}
}
