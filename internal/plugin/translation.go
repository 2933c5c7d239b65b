package plugin

import (
	"context"
	"fmt"

	"lang_exam_backend/internal/model"
)

// 语义类 AI 评分的判对阈值
const (
	translationThreshold = 0.5
	wordFormThreshold    = 0.8
)

// translationPlugin 句子翻译：逐句由 AI 判断译文质量，质量分 ≥ 0.5 判为正确。
// AI 不可用时降级为参考译文精确匹配。
type translationPlugin struct {
	basePlugin
}

func NewTranslationPlugin() QuestionPlugin {
	return &translationPlugin{basePlugin{PluginConfig{
		Type:            model.SentenceTranslation,
		Name:            "句子翻译",
		Categories:      []model.ExamCategory{model.ExamGrammar, model.ExamWriting},
		SupportsPartial: true,
		SupportsAI:      true,
		DefaultPoints:   4,
	}}}
}

func (p *translationPlugin) CreateDefault(index int) *model.Question {
	q := &model.Question{
		Type:     model.SentenceTranslation,
		Prompt:   "将下列句子翻译成英文",
		Points:   p.config.DefaultPoints,
		Strategy: model.PartialScoring,
		Index:    index,
	}
	q.ID = model.GenerateUUID()
	for i := 0; i < 2; i++ {
		itemID := model.GenerateUUID()
		q.Items = append(q.Items, model.QuestionItem{
			ID:   itemID,
			Text: fmt.Sprintf("句子 %d", i+1),
		})
		q.SubQuestions = append(q.SubQuestions, model.SubQuestionMeta{
			ID:     model.GenerateUUID(),
			ItemID: itemID,
			Points: 2,
		})
	}
	q.PartialEndingIndex = index + len(q.SubQuestions) - 1
	return q
}

func (p *translationPlugin) Transform(q *model.Question) *model.StandardQuestion {
	sq := standardCommon(q)
	for _, sub := range q.SubQuestions {
		sq.SubQuestions = append(sq.SubQuestions, standardSub(q, sub, false))
	}
	return sq
}

func (p *translationPlugin) Validate(q *model.Question) ValidationResult {
	res := p.baseValidate(q)
	if q == nil {
		return res
	}
	if len(q.Items) == 0 {
		res.addError("翻译题至少需要 1 个句子")
	}
	for i, sub := range q.SubQuestions {
		if sub.CorrectAnswer == "" && len(sub.AcceptableAnswers) == 0 {
			res.addWarning("第 %d 句未提供参考译文，AI 不可用时无法降级评分", i+1)
		}
	}
	p.checkSubQuestionCount(&res, q, len(q.Items), "句子")
	return res
}

func (p *translationPlugin) Score(ctx context.Context, sc ScoringContext) ScoringResult {
	q := sc.Question
	score := func(sub *model.SubQuestionMeta) ScoringResult {
		return aiJudgedSubScore(ctx, sc, sub, translationThreshold)
	}
	if sc.SubQuestionID != "" {
		return scoreOneSub(q, sc.SubQuestionID, score)
	}
	if q.Strategy == model.AllOrNothingScoring {
		return scoreWholeAllOrNothing(q, score)
	}
	return scoreWholePartial(q, score)
}
