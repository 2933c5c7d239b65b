package plugin

import (
	"fmt"

	"lang_exam_backend/internal/model"
)

// subScorer 对单个小题评分
type subScorer func(sub *model.SubQuestionMeta) ScoringResult

// scoreOneSub 按上下文指定的小题评分
func scoreOneSub(q *model.Question, subID string, score subScorer) ScoringResult {
	sub := q.FindSubQuestion(subID)
	if sub == nil {
		return missingSubResult(q, subID)
	}
	return score(sub)
}

// scoreWholePartial 整题的 partial 计分：逐小题独立评分后求和。
// 小题间相互独立且可交换，未作答的小题计入满分、得分为零。
func scoreWholePartial(q *model.Question, score subScorer) ScoringResult {
	total := ScoringResult{IsCorrect: true}
	correct := 0
	for i := range q.SubQuestions {
		r := score(&q.SubQuestions[i])
		total.Score += r.Score
		total.MaxScore += r.MaxScore
		if r.IsCorrect {
			correct++
		} else {
			total.IsCorrect = false
		}
		if r.AIScored {
			total.AIScored = true
		}
		if r.NeedsManual {
			total.NeedsManual = true
		}
	}
	total.Feedback = fmt.Sprintf("共 %d 小题，答对 %d 题", len(q.SubQuestions), correct)
	return total
}

// scoreWholeAllOrNothing 整题的 all_or_nothing 计分：所有计分单元全部正确才得满分
func scoreWholeAllOrNothing(q *model.Question, score subScorer) ScoringResult {
	for i := range q.SubQuestions {
		if r := score(&q.SubQuestions[i]); !r.IsCorrect {
			return wrongResult(q.Points, "作答与标准答案不完全一致")
		}
	}
	return correctResult(q.Points, "回答正确")
}

// exactIDSubScore 精确匹配族的小题评分：提交值与标准值做同一性比较。
// normalize 可选，用于判断题的同义词归一。
func exactIDSubScore(q *model.Question, sub *model.SubQuestionMeta, submitted string, normalize func(string) string) ScoringResult {
	max := subMaxScore(q, sub)
	if sub.CorrectAnswer == "" {
		return errorResult(max, CodeScoringError, "小题未设置标准答案")
	}
	if submitted == "" {
		return wrongResult(max, "未作答")
	}
	got, want := submitted, sub.CorrectAnswer
	if normalize != nil {
		got, want = normalize(got), normalize(want)
	}
	res := ScoringResult{
		MaxScore:     max,
		SelectedText: optionText(q, submitted),
		CorrectText:  optionText(q, sub.CorrectAnswer),
	}
	if got == want {
		res.IsCorrect = true
		res.Score = max
		res.Feedback = "回答正确"
	} else {
		res.Feedback = fmt.Sprintf("回答错误：所选“%s”，正确答案“%s”", res.SelectedText, res.CorrectText)
	}
	return res
}

// freeTextSubScore 自由文本族的小题评分：标准化后在可接受集合内精确匹配，
// 单个空内不给部分分。
func freeTextSubScore(q *model.Question, sub *model.SubQuestionMeta, submitted string) ScoringResult {
	max := subMaxScore(q, sub)
	if sub.CorrectAnswer == "" && len(sub.AcceptableAnswers) == 0 {
		return errorResult(max, CodeScoringError, "小题未设置可接受答案")
	}
	if NormalizeText(submitted) == "" {
		return wrongResult(max, "未作答")
	}
	res := ScoringResult{MaxScore: max, SelectedText: submitted, CorrectText: firstAnswerText(sub)}
	if matchAcceptable(submitted, sub.CorrectAnswer, sub.AcceptableAnswers) {
		res.IsCorrect = true
		res.Score = max
		res.Feedback = "回答正确"
	} else {
		res.Feedback = fmt.Sprintf("回答错误：参考答案“%s”", res.CorrectText)
	}
	return res
}

func firstAnswerText(sub *model.SubQuestionMeta) string {
	if sub.CorrectAnswer != "" {
		return sub.CorrectAnswer
	}
	if len(sub.AcceptableAnswers) > 0 {
		return sub.AcceptableAnswers[0]
	}
	return ""
}

// subAnswerOf 取某小题的提交值：优先小题映射，整题单值作兜底
func subAnswerOf(sc ScoringContext, subID string) string {
	if v := sc.Answer.TextFor(subID); v != "" {
		return v
	}
	if sc.SubQuestionID == subID && sc.Answer.Selected != "" {
		return sc.Answer.Selected
	}
	if sc.SubQuestionID == subID && sc.Answer.Text != "" {
		return sc.Answer.Text
	}
	return ""
}
