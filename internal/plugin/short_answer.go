package plugin

import (
	"context"
	"fmt"

	"lang_exam_backend/internal/model"
)

// shortAnswerPlugin 简答题：针对原文细节的短问答，自由文本匹配可接受答案列表。
type shortAnswerPlugin struct {
	basePlugin
}

func NewShortAnswerPlugin() QuestionPlugin {
	return &shortAnswerPlugin{basePlugin{PluginConfig{
		Type:            model.ShortAnswer,
		Name:            "简答",
		Categories:      []model.ExamCategory{model.ExamReading, model.ExamListening},
		SupportsPartial: true,
		SupportsAI:      false,
		DefaultPoints:   2,
	}}}
}

func (p *shortAnswerPlugin) CreateDefault(index int) *model.Question {
	q := &model.Question{
		Type:     model.ShortAnswer,
		Prompt:   "根据原文回答下列问题，每题不超过三个单词",
		Points:   p.config.DefaultPoints,
		Strategy: model.PartialScoring,
		Index:    index,
	}
	q.ID = model.GenerateUUID()
	for i := 0; i < 2; i++ {
		itemID := model.GenerateUUID()
		q.Items = append(q.Items, model.QuestionItem{
			ID:   itemID,
			Text: fmt.Sprintf("问题 %d", i+1),
		})
		q.SubQuestions = append(q.SubQuestions, model.SubQuestionMeta{
			ID:                model.GenerateUUID(),
			ItemID:            itemID,
			Points:            1,
			AcceptableAnswers: []string{fmt.Sprintf("answer %d", i+1)},
		})
	}
	q.PartialEndingIndex = index + len(q.SubQuestions) - 1
	return q
}

func (p *shortAnswerPlugin) Transform(q *model.Question) *model.StandardQuestion {
	sq := standardCommon(q)
	for _, sub := range q.SubQuestions {
		sq.SubQuestions = append(sq.SubQuestions, standardSub(q, sub, false))
	}
	return sq
}

func (p *shortAnswerPlugin) Validate(q *model.Question) ValidationResult {
	res := p.baseValidate(q)
	if q == nil {
		return res
	}
	if len(q.SubQuestions) == 0 {
		res.addError("简答题至少需要 1 个问题")
	}
	for i, sub := range q.SubQuestions {
		if sub.CorrectAnswer == "" && len(sub.AcceptableAnswers) == 0 {
			res.addError("第 %d 个问题缺少可接受答案", i+1)
		}
	}
	p.checkSubQuestionCount(&res, q, len(q.Items), "问题")
	return res
}

func (p *shortAnswerPlugin) Score(_ context.Context, sc ScoringContext) ScoringResult {
	q := sc.Question
	score := func(sub *model.SubQuestionMeta) ScoringResult {
		return freeTextSubScore(q, sub, subAnswerOf(sc, sub.ID))
	}
	if sc.SubQuestionID != "" {
		return scoreOneSub(q, sc.SubQuestionID, score)
	}
	if q.Strategy == model.AllOrNothingScoring {
		return scoreWholeAllOrNothing(q, score)
	}
	return scoreWholePartial(q, score)
}
