package plugin

import (
	"context"
	"fmt"
	"strings"

	"lang_exam_backend/internal/model"
)

// singleChoicePlugin 单项选择：整题计分，所选选项 id 与标准答案完全一致才得分。
// 作答记录按题目 id 寻址（标准化小题 id 仅用于展示，不参与寻址）。
type singleChoicePlugin struct {
	basePlugin
}

func NewSingleChoicePlugin() QuestionPlugin {
	return &singleChoicePlugin{basePlugin{PluginConfig{
		Type:            model.SingleChoice,
		Name:            "单项选择",
		Categories:      []model.ExamCategory{model.ExamReading, model.ExamListening, model.ExamGrammar},
		SupportsPartial: false,
		SupportsAI:      false,
		DefaultPoints:   1,
	}}}
}

func (p *singleChoicePlugin) CreateDefault(index int) *model.Question {
	q := &model.Question{
		Type:               model.SingleChoice,
		Prompt:             "请选择正确的选项",
		Points:             p.config.DefaultPoints,
		Strategy:           model.AllOrNothingScoring,
		Index:              index,
		PartialEndingIndex: index,
	}
	q.ID = model.GenerateUUID()
	labels := []string{"A", "B", "C", "D"}
	for _, l := range labels {
		q.Options = append(q.Options, model.QuestionOption{
			ID:   fmt.Sprintf("opt_%s", strings.ToLower(l)),
			Text: fmt.Sprintf("选项 %s", l),
		})
	}
	q.SubQuestions = []model.SubQuestionMeta{{
		ID:            model.GenerateUUID(),
		Points:        q.Points,
		CorrectAnswer: q.Options[0].ID,
	}}
	return q
}

func (p *singleChoicePlugin) Transform(q *model.Question) *model.StandardQuestion {
	sq := standardCommon(q)
	for _, sub := range q.SubQuestions {
		sq.SubQuestions = append(sq.SubQuestions, standardSub(q, sub, true))
	}
	return sq
}

func (p *singleChoicePlugin) Validate(q *model.Question) ValidationResult {
	res := p.baseValidate(q)
	if q == nil {
		return res
	}
	if len(q.Options) < 2 {
		res.addError("单选题至少需要 2 个选项")
	}
	correct := p.correctOptionID(q)
	if correct == "" {
		res.addError("单选题必须设置正确答案")
	} else if q.FindOption(correct) == nil {
		res.addError("正确答案 %s 不在选项列表中", correct)
	}
	if q.Strategy != model.AllOrNothingScoring {
		res.addWarning("单选题不支持逐小题计分，将按整题计分处理")
	}
	return res
}

func (p *singleChoicePlugin) Score(_ context.Context, sc ScoringContext) ScoringResult {
	q := sc.Question
	correct := p.correctOptionID(q)
	if correct == "" {
		return errorResult(q.Points, CodeScoringError, "题目未设置标准答案")
	}

	selected := strings.TrimSpace(sc.Answer.Selected)
	if selected == "" {
		return wrongResult(q.Points, "未作答")
	}

	res := ScoringResult{
		MaxScore:     q.Points,
		SelectedText: optionText(q, selected),
		CorrectText:  optionText(q, correct),
	}
	if selected == correct {
		res.IsCorrect = true
		res.Score = q.Points
		res.Feedback = fmt.Sprintf("回答正确：%s", res.CorrectText)
		return res
	}
	res.Feedback = fmt.Sprintf("回答错误：所选“%s”，正确答案“%s”", res.SelectedText, res.CorrectText)
	return res
}

// correctOptionID 标准答案存放在首个小题上（该题型整题只有一个计分单元）
func (p *singleChoicePlugin) correctOptionID(q *model.Question) string {
	if len(q.SubQuestions) > 0 {
		return q.SubQuestions[0].CorrectAnswer
	}
	return ""
}
