package plugin

import (
	"context"
	"fmt"

	"lang_exam_backend/internal/model"
)

// 判断题取值
const (
	JudgeTrue     = "true"
	JudgeFalse    = "false"
	JudgeYes      = "yes"
	JudgeNo       = "no"
	JudgeNotGiven = "not_given"
)

// trueFalseNotGivenPlugin TRUE/FALSE/NOT GIVEN 判断：每条陈述一个小题，精确匹配判断值。
type trueFalseNotGivenPlugin struct {
	basePlugin
}

func NewTrueFalseNotGivenPlugin() QuestionPlugin {
	return &trueFalseNotGivenPlugin{basePlugin{PluginConfig{
		Type:            model.TrueFalseNotGiven,
		Name:            "判断 TRUE/FALSE/NOT GIVEN",
		Categories:      []model.ExamCategory{model.ExamReading},
		SupportsPartial: true,
		SupportsAI:      false,
		DefaultPoints:   3,
	}}}
}

func (p *trueFalseNotGivenPlugin) CreateDefault(index int) *model.Question {
	q := &model.Question{
		Type:     model.TrueFalseNotGiven,
		Prompt:   "判断下列陈述与原文的关系",
		Points:   p.config.DefaultPoints,
		Strategy: model.PartialScoring,
		Index:    index,
	}
	q.ID = model.GenerateUUID()
	for i := 0; i < 3; i++ {
		itemID := model.GenerateUUID()
		q.Items = append(q.Items, model.QuestionItem{
			ID:   itemID,
			Text: fmt.Sprintf("陈述 %d", i+1),
		})
		q.SubQuestions = append(q.SubQuestions, model.SubQuestionMeta{
			ID:            model.GenerateUUID(),
			ItemID:        itemID,
			Points:        1,
			CorrectAnswer: JudgeTrue,
		})
	}
	q.PartialEndingIndex = index + len(q.SubQuestions) - 1
	return q
}

func (p *trueFalseNotGivenPlugin) Transform(q *model.Question) *model.StandardQuestion {
	sq := standardCommon(q)
	for _, sub := range q.SubQuestions {
		sq.SubQuestions = append(sq.SubQuestions, standardSub(q, sub, false))
	}
	return sq
}

func (p *trueFalseNotGivenPlugin) Validate(q *model.Question) ValidationResult {
	res := p.baseValidate(q)
	if q == nil {
		return res
	}
	if len(q.Items) == 0 {
		res.addError("判断题至少需要 1 条陈述")
	}
	for i, sub := range q.SubQuestions {
		switch NormalizeText(sub.CorrectAnswer) {
		case JudgeTrue, JudgeFalse, JudgeNotGiven:
		case "":
			res.addError("第 %d 条陈述缺少标准答案", i+1)
		default:
			res.addError("第 %d 条陈述的标准答案必须是 true/false/not_given", i+1)
		}
	}
	p.checkSubQuestionCount(&res, q, len(q.Items), "陈述")
	return res
}

func (p *trueFalseNotGivenPlugin) Score(_ context.Context, sc ScoringContext) ScoringResult {
	q := sc.Question
	score := func(sub *model.SubQuestionMeta) ScoringResult {
		return exactIDSubScore(q, sub, subAnswerOf(sc, sub.ID), NormalizeText)
	}
	if sc.SubQuestionID != "" {
		return scoreOneSub(q, sc.SubQuestionID, score)
	}
	if q.Strategy == model.AllOrNothingScoring {
		return scoreWholeAllOrNothing(q, score)
	}
	return scoreWholePartial(q, score)
}
