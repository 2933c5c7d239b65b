package plugin

import (
	"context"
	"fmt"

	"lang_exam_backend/internal/model"
)

// aiJudgedSubScore 翻译/词形类小题的 AI 评分：AI 返回 0–1 的质量分，
// 达到 threshold 判为正确并按比例折算小题分值。
// AI 不可用或调用失败时降级为参考答案精确匹配，降级路径只给满分或零分。
func aiJudgedSubScore(ctx context.Context, sc ScoringContext, sub *model.SubQuestionMeta, threshold float64) ScoringResult {
	q := sc.Question
	max := subMaxScore(q, sub)
	submitted := subAnswerOf(sc, sub.ID)
	if NormalizeText(submitted) == "" {
		return wrongResult(max, "未作答")
	}

	if sc.AIScorer != nil {
		req := AIScoreRequest{
			Text:          submitted,
			Prompt:        subPromptText(q, sub),
			ScoringPrompt: q.ScoringPrompt,
		}
		resp, err := sc.AIScorer(ctx, req)
		if err == nil && resp.OK {
			quality := clamp01(resp.Score)
			res := ScoringResult{
				Score:        quality * max,
				MaxScore:     max,
				IsCorrect:    quality >= threshold,
				AIScored:     true,
				SelectedText: submitted,
				CorrectText:  firstAnswerText(sub),
				Feedback:     resp.Feedback,
			}
			if res.Feedback == "" {
				if res.IsCorrect {
					res.Feedback = "回答正确"
				} else {
					res.Feedback = fmt.Sprintf("回答错误：参考答案“%s”", res.CorrectText)
				}
			}
			return res
		}
	}

	// 降级：参考答案精确匹配
	res := freeTextSubScore(q, sub, submitted)
	if !res.IsCorrect && res.Code == "" {
		res.Feedback = fmt.Sprintf("AI 评分不可用，已按参考答案比对：%s", res.Feedback)
	}
	return res
}

// subPromptText 小题的题面文本，供 AI 评分参考
func subPromptText(q *model.Question, sub *model.SubQuestionMeta) string {
	if it := q.FindItem(sub.ItemID); it != nil && it.Text != "" {
		return it.Text
	}
	return q.Prompt
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
