package plugin

import (
	"context"
	"fmt"

	"lang_exam_backend/internal/model"
)

// completionPlugin 填空题：每个空是一个小题，自由文本精确匹配（忽略大小写与空白）。
type completionPlugin struct {
	basePlugin
}

func NewCompletionPlugin() QuestionPlugin {
	return &completionPlugin{basePlugin{PluginConfig{
		Type:            model.Completion,
		Name:            "填空",
		Categories:      []model.ExamCategory{model.ExamReading, model.ExamListening, model.ExamGrammar},
		SupportsPartial: true,
		SupportsAI:      false,
		DefaultPoints:   3,
	}}}
}

func (p *completionPlugin) CreateDefault(index int) *model.Question {
	q := &model.Question{
		Type:     model.Completion,
		Prompt:   "根据原文内容填空，每空不超过三个单词",
		Points:   p.config.DefaultPoints,
		Strategy: model.PartialScoring,
		Index:    index,
	}
	q.ID = model.GenerateUUID()
	for i := 0; i < 3; i++ {
		itemID := model.GenerateUUID()
		q.Items = append(q.Items, model.QuestionItem{
			ID:   itemID,
			Text: fmt.Sprintf("第 %d 空", i+1),
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

func (p *completionPlugin) Transform(q *model.Question) *model.StandardQuestion {
	sq := standardCommon(q)
	for _, sub := range q.SubQuestions {
		sq.SubQuestions = append(sq.SubQuestions, standardSub(q, sub, false))
	}
	return sq
}

func (p *completionPlugin) Validate(q *model.Question) ValidationResult {
	res := p.baseValidate(q)
	if q == nil {
		return res
	}
	if len(q.SubQuestions) == 0 {
		res.addError("填空题至少需要 1 个空")
	}
	for i, sub := range q.SubQuestions {
		if sub.CorrectAnswer == "" && len(sub.AcceptableAnswers) == 0 {
			res.addError("第 %d 空缺少可接受答案", i+1)
		}
	}
	p.checkSubQuestionCount(&res, q, len(q.Items), "空位")
	return res
}

func (p *completionPlugin) Score(_ context.Context, sc ScoringContext) ScoringResult {
	q := sc.Question
	if sc.SubQuestionID != "" {
		return scoreOneSub(q, sc.SubQuestionID, func(sub *model.SubQuestionMeta) ScoringResult {
			return freeTextSubScore(q, sub, subAnswerOf(sc, sub.ID))
		})
	}
	score := func(sub *model.SubQuestionMeta) ScoringResult {
		return freeTextSubScore(q, sub, subAnswerOf(sc, sub.ID))
	}
	if q.Strategy == model.AllOrNothingScoring {
		return scoreWholeAllOrNothing(q, score)
	}
	return scoreWholePartial(q, score)
}
