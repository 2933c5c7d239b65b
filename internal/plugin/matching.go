package plugin

import (
	"context"
	"fmt"

	"lang_exam_backend/internal/model"
)

// matchingPlugin 信息配对：每个条目配一个候选项，小题按条目展开，精确匹配选项 id。
type matchingPlugin struct {
	basePlugin
}

func NewMatchingPlugin() QuestionPlugin {
	return &matchingPlugin{basePlugin{PluginConfig{
		Type:            model.Matching,
		Name:            "信息配对",
		Categories:      []model.ExamCategory{model.ExamReading, model.ExamListening},
		SupportsPartial: true,
		SupportsAI:      false,
		DefaultPoints:   2,
	}}}
}

func (p *matchingPlugin) CreateDefault(index int) *model.Question {
	q := &model.Question{
		Type:     model.Matching,
		Prompt:   "将左侧信息与右侧选项配对",
		Points:   p.config.DefaultPoints,
		Strategy: model.PartialScoring,
		Index:    index,
	}
	q.ID = model.GenerateUUID()
	for i := 0; i < 2; i++ {
		q.Options = append(q.Options, model.QuestionOption{
			ID:   model.GenerateUUID(),
			Text: fmt.Sprintf("选项 %c", 'A'+i),
		})
	}
	for i := 0; i < 2; i++ {
		itemID := model.GenerateUUID()
		q.Items = append(q.Items, model.QuestionItem{
			ID:   itemID,
			Text: fmt.Sprintf("条目 %d", i+1),
		})
		q.SubQuestions = append(q.SubQuestions, model.SubQuestionMeta{
			ID:            model.GenerateUUID(),
			ItemID:        itemID,
			Points:        1,
			CorrectAnswer: q.Options[i].ID,
		})
	}
	q.PartialEndingIndex = index + len(q.SubQuestions) - 1
	return q
}

func (p *matchingPlugin) Transform(q *model.Question) *model.StandardQuestion {
	sq := standardCommon(q)
	for _, sub := range q.SubQuestions {
		sq.SubQuestions = append(sq.SubQuestions, standardSub(q, sub, true))
	}
	return sq
}

func (p *matchingPlugin) Validate(q *model.Question) ValidationResult {
	res := p.baseValidate(q)
	if q == nil {
		return res
	}
	if len(q.Items) < 2 {
		res.addError("配对题至少需要 2 个条目")
	}
	if len(q.Options) < 2 {
		res.addError("配对题至少需要 2 个选项")
	}
	for i, sub := range q.SubQuestions {
		if sub.CorrectAnswer == "" {
			res.addError("第 %d 个条目缺少标准答案", i+1)
		} else if q.FindOption(sub.CorrectAnswer) == nil {
			res.addError("第 %d 个条目的标准答案不在选项列表中", i+1)
		}
	}
	p.checkSubQuestionCount(&res, q, len(q.Items), "条目")
	return res
}

func (p *matchingPlugin) Score(_ context.Context, sc ScoringContext) ScoringResult {
	q := sc.Question
	score := func(sub *model.SubQuestionMeta) ScoringResult {
		return exactIDSubScore(q, sub, subAnswerOf(sc, sub.ID), nil)
	}
	if sc.SubQuestionID != "" {
		return scoreOneSub(q, sc.SubQuestionID, score)
	}
	if q.Strategy == model.AllOrNothingScoring {
		return scoreWholeAllOrNothing(q, score)
	}
	return scoreWholePartial(q, score)
}
