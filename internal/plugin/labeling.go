package plugin

import (
	"context"
	"fmt"
	"strings"

	"lang_exam_backend/internal/model"
)

// labelingPlugin 图表标注：图中的每个位置是一个条目，考生从词库中选择标签。
// 图片本身由外部系统托管，这里只记录 URL。
type labelingPlugin struct {
	basePlugin
}

func NewLabelingPlugin() QuestionPlugin {
	return &labelingPlugin{basePlugin{PluginConfig{
		Type:            model.Labeling,
		Name:            "图表标注",
		Categories:      []model.ExamCategory{model.ExamReading, model.ExamListening},
		SupportsPartial: true,
		SupportsAI:      false,
		DefaultPoints:   2,
	}}}
}

func (p *labelingPlugin) CreateDefault(index int) *model.Question {
	q := &model.Question{
		Type:     model.Labeling,
		Prompt:   "根据图示为各位置选择正确的标签",
		Points:   p.config.DefaultPoints,
		Strategy: model.PartialScoring,
		Index:    index,
	}
	q.ID = model.GenerateUUID()
	for i := 0; i < 2; i++ {
		q.Options = append(q.Options, model.QuestionOption{
			ID:   model.GenerateUUID(),
			Text: fmt.Sprintf("标签 %d", i+1),
		})
	}
	for i := 0; i < 2; i++ {
		itemID := model.GenerateUUID()
		q.Items = append(q.Items, model.QuestionItem{
			ID:   itemID,
			Text: fmt.Sprintf("位置 %d", i+1),
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

func (p *labelingPlugin) Transform(q *model.Question) *model.StandardQuestion {
	sq := standardCommon(q)
	for _, sub := range q.SubQuestions {
		sq.SubQuestions = append(sq.SubQuestions, standardSub(q, sub, true))
	}
	return sq
}

func (p *labelingPlugin) Validate(q *model.Question) ValidationResult {
	res := p.baseValidate(q)
	if q == nil {
		return res
	}
	if len(q.Items) == 0 {
		res.addError("标注题至少需要 1 个位置")
	}
	if len(q.Options) == 0 {
		res.addError("标注题的标签词库不能为空")
	}
	for i, op := range q.Options {
		if strings.TrimSpace(op.Text) == "" {
			res.addError("第 %d 个标签文本不能为空", i+1)
		}
	}
	for i, sub := range q.SubQuestions {
		if sub.CorrectAnswer == "" {
			res.addError("第 %d 个位置缺少标准答案", i+1)
		}
	}
	if q.DiagramURL == "" {
		res.addWarning("未设置图示地址")
	}
	p.checkSubQuestionCount(&res, q, len(q.Items), "位置")
	return res
}

func (p *labelingPlugin) Score(_ context.Context, sc ScoringContext) ScoringResult {
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
