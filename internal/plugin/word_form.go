package plugin

import (
	"context"
	"fmt"

	"lang_exam_backend/internal/model"
)

// wordFormPlugin 词形变化：给定词根按语境填写正确词形。
// 词形正误边界清晰，AI 阈值取 0.8；AI 不可用时降级为可接受词形精确匹配。
type wordFormPlugin struct {
	basePlugin
}

func NewWordFormPlugin() QuestionPlugin {
	return &wordFormPlugin{basePlugin{PluginConfig{
		Type:            model.WordForm,
		Name:            "词形变化",
		Categories:      []model.ExamCategory{model.ExamGrammar},
		SupportsPartial: true,
		SupportsAI:      true,
		DefaultPoints:   2,
	}}}
}

func (p *wordFormPlugin) CreateDefault(index int) *model.Question {
	q := &model.Question{
		Type:     model.WordForm,
		Prompt:   "用括号内单词的适当形式填空",
		Points:   p.config.DefaultPoints,
		Strategy: model.PartialScoring,
		Index:    index,
	}
	q.ID = model.GenerateUUID()
	for i := 0; i < 2; i++ {
		itemID := model.GenerateUUID()
		q.Items = append(q.Items, model.QuestionItem{
			ID:   itemID,
			Text: fmt.Sprintf("第 %d 句 (word)", i+1),
		})
		q.SubQuestions = append(q.SubQuestions, model.SubQuestionMeta{
			ID:     model.GenerateUUID(),
			ItemID: itemID,
			Points: 1,
		})
	}
	q.PartialEndingIndex = index + len(q.SubQuestions) - 1
	return q
}

func (p *wordFormPlugin) Transform(q *model.Question) *model.StandardQuestion {
	sq := standardCommon(q)
	for _, sub := range q.SubQuestions {
		sq.SubQuestions = append(sq.SubQuestions, standardSub(q, sub, false))
	}
	return sq
}

func (p *wordFormPlugin) Validate(q *model.Question) ValidationResult {
	res := p.baseValidate(q)
	if q == nil {
		return res
	}
	if len(q.SubQuestions) == 0 {
		res.addError("词形题至少需要 1 个空")
	}
	for i, sub := range q.SubQuestions {
		if sub.CorrectAnswer == "" && len(sub.AcceptableAnswers) == 0 {
			res.addWarning("第 %d 空未提供标准词形，AI 不可用时无法降级评分", i+1)
		}
	}
	p.checkSubQuestionCount(&res, q, len(q.Items), "空位")
	return res
}

func (p *wordFormPlugin) Score(ctx context.Context, sc ScoringContext) ScoringResult {
	q := sc.Question
	score := func(sub *model.SubQuestionMeta) ScoringResult {
		return aiJudgedSubScore(ctx, sc, sub, wordFormThreshold)
	}
	if sc.SubQuestionID != "" {
		return scoreOneSub(q, sc.SubQuestionID, score)
	}
	if q.Strategy == model.AllOrNothingScoring {
		return scoreWholeAllOrNothing(q, score)
	}
	return scoreWholePartial(q, score)
}
