package plugin

import (
	"context"
	"fmt"

	"lang_exam_backend/internal/model"
)

// 写作题 AI 返回的雅思式档位上限
const writingBandMax = 9.0

// writingTaskPlugin 写作任务：整篇作文交给 AI 按 0–9 档位评分，
// 再线性折算到题目分值。AI 评过的作文一律视为已完成作答（IsCorrect=true），
// 得分高低由档位体现；没有配置 AI 评分器时转人工。
type writingTaskPlugin struct {
	basePlugin
}

func NewWritingTaskPlugin() QuestionPlugin {
	return &writingTaskPlugin{basePlugin{PluginConfig{
		Type:            model.WritingTask,
		Name:            "写作任务",
		Categories:      []model.ExamCategory{model.ExamWriting},
		SupportsPartial: false,
		SupportsAI:      true,
		DefaultPoints:   9,
	}}}
}

func (p *writingTaskPlugin) CreateDefault(index int) *model.Question {
	q := &model.Question{
		Type:     model.WritingTask,
		Prompt:   "就下列话题写一篇不少于 250 词的议论文",
		Points:   p.config.DefaultPoints,
		Strategy: model.AllOrNothingScoring,
		Index:    index,
	}
	q.ID = model.GenerateUUID()
	q.PartialEndingIndex = index
	return q
}

func (p *writingTaskPlugin) Transform(q *model.Question) *model.StandardQuestion {
	return standardCommon(q)
}

func (p *writingTaskPlugin) Validate(q *model.Question) ValidationResult {
	res := p.baseValidate(q)
	if q == nil {
		return res
	}
	if q.ScoringPrompt == "" {
		res.addWarning("未设置评分说明，AI 将按通用标准评分")
	}
	return res
}

func (p *writingTaskPlugin) Score(ctx context.Context, sc ScoringContext) ScoringResult {
	q := sc.Question
	essay := sc.Answer.Text
	if NormalizeText(essay) == "" {
		return wrongResult(q.Points, "未作答")
	}

	if sc.AIScorer == nil {
		res := errorResult(q.Points, CodeNoMethod, "未配置 AI 评分器，需人工评分")
		res.NeedsManual = true
		return res
	}

	resp, err := sc.AIScorer(ctx, AIScoreRequest{
		Essay:         essay,
		Prompt:        q.Prompt,
		ScoringPrompt: q.ScoringPrompt,
	})
	if err != nil || !resp.OK {
		reason := resp.Error
		if err != nil {
			reason = err.Error()
		}
		res := errorResult(q.Points, CodeScoringError, fmt.Sprintf("AI 评分失败，需人工评分：%s", reason))
		res.NeedsManual = true
		return res
	}

	band := resp.Score
	if band < 0 {
		band = 0
	}
	if band > writingBandMax {
		band = writingBandMax
	}
	return ScoringResult{
		IsCorrect: true,
		Score:     band / writingBandMax * q.Points,
		MaxScore:  q.Points,
		AIScored:  true,
		Feedback:  resp.Feedback,
	}
}
