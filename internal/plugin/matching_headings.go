package plugin

import (
	"context"
	"fmt"

	"lang_exam_backend/internal/model"
)

// matchingHeadingsPlugin 段落标题配对：条目是文章段落，选项是候选标题。
// 雅思惯例是标题数量多于段落数量，避免最后一题靠排除法得出。
type matchingHeadingsPlugin struct {
	basePlugin
}

func NewMatchingHeadingsPlugin() QuestionPlugin {
	return &matchingHeadingsPlugin{basePlugin{PluginConfig{
		Type:            model.MatchingHeadings,
		Name:            "段落标题配对",
		Categories:      []model.ExamCategory{model.ExamReading},
		SupportsPartial: true,
		SupportsAI:      false,
		DefaultPoints:   3,
	}}}
}

func (p *matchingHeadingsPlugin) CreateDefault(index int) *model.Question {
	q := &model.Question{
		Type:     model.MatchingHeadings,
		Prompt:   "为下列段落选择最合适的标题",
		Points:   p.config.DefaultPoints,
		Strategy: model.PartialScoring,
		Index:    index,
	}
	q.ID = model.GenerateUUID()
	// 候选标题比段落多一个
	for i := 0; i < 4; i++ {
		q.Options = append(q.Options, model.QuestionOption{
			ID:   model.GenerateUUID(),
			Text: fmt.Sprintf("标题 %s", string(rune('i'+i))),
		})
	}
	for i := 0; i < 3; i++ {
		itemID := model.GenerateUUID()
		q.Items = append(q.Items, model.QuestionItem{
			ID:   itemID,
			Text: fmt.Sprintf("段落 %c", 'A'+i),
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

func (p *matchingHeadingsPlugin) Transform(q *model.Question) *model.StandardQuestion {
	sq := standardCommon(q)
	for _, sub := range q.SubQuestions {
		sq.SubQuestions = append(sq.SubQuestions, standardSub(q, sub, true))
	}
	return sq
}

func (p *matchingHeadingsPlugin) Validate(q *model.Question) ValidationResult {
	res := p.baseValidate(q)
	if q == nil {
		return res
	}
	if len(q.Items) == 0 {
		res.addError("标题配对题至少需要 1 个段落")
	}
	if len(q.Options) < 2 {
		res.addError("标题配对题至少需要 2 个候选标题")
	}
	if len(q.Options) > 0 && len(q.Options) <= len(q.Items) {
		res.addWarning("建议候选标题数量多于段落数量")
	}
	for i, sub := range q.SubQuestions {
		if sub.CorrectAnswer == "" {
			res.addError("第 %d 个段落缺少标准答案", i+1)
		} else if q.FindOption(sub.CorrectAnswer) == nil {
			res.addError("第 %d 个段落的标准答案不在候选标题中", i+1)
		}
	}
	p.checkSubQuestionCount(&res, q, len(q.Items), "段落")
	return res
}

func (p *matchingHeadingsPlugin) Score(_ context.Context, sc ScoringContext) ScoringResult {
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
