package util

import (
	"math"

	"lang_exam_backend/internal/model"
)

// ClampScore 把得分限制在 [0, max] 区间内
func ClampScore(score, max float64) float64 {
	if score < 0 {
		return 0
	}
	if max > 0 && score > max {
		return max
	}
	return score
}

// Percentage 百分比得分，四舍五入取整；满分为零时返回 0 而不是除零
func Percentage(score, max float64) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(score / max * 100))
}

// DisplayQuestionCount 一组题目占用的显示编号总数。
// partial 题型按小题数展开，其余题型各占一个编号。
func DisplayQuestionCount(questions []model.Question) int {
	total := 0
	for i := range questions {
		total += questions[i].DisplaySpan()
	}
	return total
}

// DetermineQuestionStatus 按作答覆盖程度得出单题完成状态。
// answers 为该题名下的全部作答记录（partial 题型逐小题一条）。
func DetermineQuestionStatus(q *model.Question, answers []model.UserAnswer) string {
	if q == nil {
		return model.StatusUntouched
	}
	answered := AnsweredCount(answers)
	if answered == 0 {
		return model.StatusUntouched
	}
	if q.Strategy == model.PartialScoring && q.SubQuestionCount() > 0 {
		if answered < q.SubQuestionCount() {
			return model.StatusPartial
		}
	}
	return model.StatusCompleted
}

// AnsweredCount 一组作答记录中非空作答的条数
func AnsweredCount(answers []model.UserAnswer) int {
	n := 0
	for i := range answers {
		if !answers[i].Answer().IsEmpty() {
			n++
		}
	}
	return n
}
