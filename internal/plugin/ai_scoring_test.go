package plugin

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lang_exam_backend/internal/model"
)

func fixedAIScorer(score float64, feedback string) AIScorer {
	return func(_ context.Context, _ AIScoreRequest) (AIScoreResponse, error) {
		return AIScoreResponse{Score: score, Feedback: feedback, OK: true}, nil
	}
}

func failingAIScorer() AIScorer {
	return func(_ context.Context, _ AIScoreRequest) (AIScoreResponse, error) {
		return AIScoreResponse{}, errors.New("upstream timeout")
	}
}

func newTranslationQuestion() *model.Question {
	q := &model.Question{
		Type:     model.SentenceTranslation,
		Prompt:   "翻译",
		Points:   2,
		Strategy: model.PartialScoring,
		Items:    []model.QuestionItem{{ID: "it-1", Text: "他每天跑步。"}},
		SubQuestions: []model.SubQuestionMeta{{
			ID:            "s1",
			ItemID:        "it-1",
			Points:        2,
			CorrectAnswer: "He runs every day.",
		}},
	}
	q.ID = "q-trans"
	return q
}

func TestTranslationAIScoring(t *testing.T) {
	p := NewTranslationPlugin()
	q := newTranslationQuestion()

	tests := []struct {
		name        string
		quality     float64
		wantCorrect bool
		wantScore   float64
	}{
		{"高质量译文", 0.9, true, 1.8},
		{"阈值之上", 0.5, true, 1.0},
		{"阈值之下", 0.4, false, 0.8},
		{"零分译文", 0, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Score(context.Background(), ScoringContext{
				Question:      q,
				SubQuestionID: "s1",
				Answer:        model.AnswerPayload{Texts: map[string]string{"s1": "He runs daily."}},
				AIScorer:      fixedAIScorer(tt.quality, "译文流畅"),
			})
			if res.IsCorrect != tt.wantCorrect {
				t.Errorf("IsCorrect = %v, want %v", res.IsCorrect, tt.wantCorrect)
			}
			if res.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", res.Score, tt.wantScore)
			}
			if !res.AIScored {
				t.Error("应标记为 AI 评分")
			}
		})
	}
}

func TestTranslationFallbackWithoutAI(t *testing.T) {
	p := NewTranslationPlugin()
	q := newTranslationQuestion()

	// 与参考译文一致：降级路径给满分
	exact := p.Score(context.Background(), ScoringContext{
		Question:      q,
		SubQuestionID: "s1",
		Answer:        model.AnswerPayload{Texts: map[string]string{"s1": "he runs every day."}},
	})
	if !exact.IsCorrect || exact.Score != 2 {
		t.Errorf("降级精确匹配应得满分，got IsCorrect=%v Score=%v", exact.IsCorrect, exact.Score)
	}
	if exact.AIScored {
		t.Error("降级路径不应标记为 AI 评分")
	}

	// 不一致：零分并说明降级
	miss := p.Score(context.Background(), ScoringContext{
		Question:      q,
		SubQuestionID: "s1",
		Answer:        model.AnswerPayload{Texts: map[string]string{"s1": "He jogs sometimes."}},
	})
	if miss.IsCorrect || miss.Score != 0 {
		t.Errorf("降级不匹配应得零分，got IsCorrect=%v Score=%v", miss.IsCorrect, miss.Score)
	}
	if !strings.Contains(miss.Feedback, "AI 评分不可用") {
		t.Errorf("降级反馈应说明原因，got %q", miss.Feedback)
	}
}

func TestTranslationFallbackOnAIFailure(t *testing.T) {
	p := NewTranslationPlugin()
	q := newTranslationQuestion()

	res := p.Score(context.Background(), ScoringContext{
		Question:      q,
		SubQuestionID: "s1",
		Answer:        model.AnswerPayload{Texts: map[string]string{"s1": "He runs every day."}},
		AIScorer:      failingAIScorer(),
	})
	if !res.IsCorrect || res.Score != 2 {
		t.Errorf("AI 调用失败时降级匹配应得满分，got IsCorrect=%v Score=%v", res.IsCorrect, res.Score)
	}
}

func TestWordFormThreshold(t *testing.T) {
	p := NewWordFormPlugin()
	q := &model.Question{
		Type:     model.WordForm,
		Prompt:   "词形",
		Points:   1,
		Strategy: model.PartialScoring,
		SubQuestions: []model.SubQuestionMeta{{
			ID:            "s1",
			Points:        1,
			CorrectAnswer: "running",
		}},
	}
	q.ID = "q-wf"

	above := p.Score(context.Background(), ScoringContext{
		Question:      q,
		SubQuestionID: "s1",
		Answer:        model.AnswerPayload{Texts: map[string]string{"s1": "running"}},
		AIScorer:      fixedAIScorer(0.85, ""),
	})
	if !above.IsCorrect {
		t.Errorf("0.85 应达到词形阈值，got IsCorrect=%v", above.IsCorrect)
	}

	below := p.Score(context.Background(), ScoringContext{
		Question:      q,
		SubQuestionID: "s1",
		Answer:        model.AnswerPayload{Texts: map[string]string{"s1": "runing"}},
		AIScorer:      fixedAIScorer(0.7, ""),
	})
	if below.IsCorrect {
		t.Error("0.7 不应达到词形阈值")
	}
}

func TestWritingTaskScoring(t *testing.T) {
	p := NewWritingTaskPlugin()
	q := &model.Question{
		Type:     model.WritingTask,
		Prompt:   "议论文",
		Points:   9,
		Strategy: model.AllOrNothingScoring,
	}
	q.ID = "q-writing"
	essay := model.AnswerPayload{Text: "In recent years, many people argue that..."}

	t.Run("档位折算", func(t *testing.T) {
		res := p.Score(context.Background(), ScoringContext{
			Question: q,
			Answer:   essay,
			AIScorer: fixedAIScorer(4.5, "结构清晰，论证有待加强"),
		})
		if !res.IsCorrect {
			t.Error("AI 已评分的作文应视为已完成作答")
		}
		if res.Score != 4.5 {
			t.Errorf("9 分题按档位折算应得 4.5，got %v", res.Score)
		}
		if !res.AIScored || res.Feedback == "" {
			t.Errorf("应携带 AI 评语，AIScored=%v Feedback=%q", res.AIScored, res.Feedback)
		}
	})

	t.Run("未配置评分器转人工", func(t *testing.T) {
		res := p.Score(context.Background(), ScoringContext{Question: q, Answer: essay})
		if !res.NeedsManual || res.Code != CodeNoMethod {
			t.Errorf("无 AI 评分器应转人工，NeedsManual=%v Code=%q", res.NeedsManual, res.Code)
		}
		if res.Score != 0 {
			t.Errorf("转人工前得分应为零，got %v", res.Score)
		}
	})

	t.Run("AI失败转人工", func(t *testing.T) {
		res := p.Score(context.Background(), ScoringContext{
			Question: q,
			Answer:   essay,
			AIScorer: failingAIScorer(),
		})
		if !res.NeedsManual || res.Code != CodeScoringError {
			t.Errorf("AI 失败应转人工，NeedsManual=%v Code=%q", res.NeedsManual, res.Code)
		}
	})

	t.Run("未作答", func(t *testing.T) {
		res := p.Score(context.Background(), ScoringContext{
			Question: q,
			AIScorer: fixedAIScorer(9, ""),
		})
		if res.IsCorrect || res.Score != 0 {
			t.Errorf("空作文应得零分，got IsCorrect=%v Score=%v", res.IsCorrect, res.Score)
		}
	})

	t.Run("档位越界截断", func(t *testing.T) {
		res := p.Score(context.Background(), ScoringContext{
			Question: q,
			Answer:   essay,
			AIScorer: fixedAIScorer(12, ""),
		})
		if res.Score != 9 {
			t.Errorf("超过 9 档应截断为满分，got %v", res.Score)
		}
	})
}
