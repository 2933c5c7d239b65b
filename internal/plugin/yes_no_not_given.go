package plugin

import (
	"context"
	"fmt"

	"lang_exam_backend/internal/model"
)

// yesNoNotGivenPlugin YES/NO/NOT GIVEN 判断：与 TRUE/FALSE 型的区别在于取值域，
// 并额外吸收常见的同义写法（t → yes、ng → not_given 等）。
type yesNoNotGivenPlugin struct {
	basePlugin
}

// ynngSynonyms 作答端的宽松写法归一到标准取值
var ynngSynonyms = map[string]string{
	"t":         JudgeYes,
	"true":      JudgeYes,
	"y":         JudgeYes,
	"f":         JudgeNo,
	"false":     JudgeNo,
	"n":         JudgeNotGiven,
	"ng":        JudgeNotGiven,
	"not given": JudgeNotGiven,
	"notgiven":  JudgeNotGiven,
	"not-given": JudgeNotGiven,
}

// NormalizeJudgement 判断值归一化：小写、去空白，再做同义映射
func NormalizeJudgement(s string) string {
	s = NormalizeText(s)
	if canonical, ok := ynngSynonyms[s]; ok {
		return canonical
	}
	return s
}

func NewYesNoNotGivenPlugin() QuestionPlugin {
	return &yesNoNotGivenPlugin{basePlugin{PluginConfig{
		Type:            model.YesNoNotGiven,
		Name:            "判断 YES/NO/NOT GIVEN",
		Categories:      []model.ExamCategory{model.ExamReading},
		SupportsPartial: true,
		SupportsAI:      false,
		DefaultPoints:   3,
	}}}
}

func (p *yesNoNotGivenPlugin) CreateDefault(index int) *model.Question {
	q := &model.Question{
		Type:     model.YesNoNotGiven,
		Prompt:   "判断下列陈述是否符合作者的观点",
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
			CorrectAnswer: JudgeYes,
		})
	}
	q.PartialEndingIndex = index + len(q.SubQuestions) - 1
	return q
}

func (p *yesNoNotGivenPlugin) Transform(q *model.Question) *model.StandardQuestion {
	sq := standardCommon(q)
	for _, sub := range q.SubQuestions {
		sq.SubQuestions = append(sq.SubQuestions, standardSub(q, sub, false))
	}
	return sq
}

func (p *yesNoNotGivenPlugin) Validate(q *model.Question) ValidationResult {
	res := p.baseValidate(q)
	if q == nil {
		return res
	}
	if len(q.Items) == 0 {
		res.addError("判断题至少需要 1 条陈述")
	}
	for i, sub := range q.SubQuestions {
		switch NormalizeJudgement(sub.CorrectAnswer) {
		case JudgeYes, JudgeNo, JudgeNotGiven:
		case "":
			res.addError("第 %d 条陈述缺少标准答案", i+1)
		default:
			res.addError("第 %d 条陈述的标准答案必须是 yes/no/not_given", i+1)
		}
	}
	p.checkSubQuestionCount(&res, q, len(q.Items), "陈述")
	return res
}

func (p *yesNoNotGivenPlugin) Score(_ context.Context, sc ScoringContext) ScoringResult {
	q := sc.Question
	score := func(sub *model.SubQuestionMeta) ScoringResult {
		return exactIDSubScore(q, sub, subAnswerOf(sc, sub.ID), NormalizeJudgement)
	}
	if sc.SubQuestionID != "" {
		return scoreOneSub(q, sc.SubQuestionID, score)
	}
	if q.Strategy == model.AllOrNothingScoring {
		return scoreWholeAllOrNothing(q, score)
	}
	return scoreWholePartial(q, score)
}
