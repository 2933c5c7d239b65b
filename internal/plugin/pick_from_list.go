package plugin

import (
	"context"
	"fmt"
	"strings"

	"lang_exam_backend/internal/model"
)

// pickFromListPlugin 多选多：从列表中选出若干项。
// all_or_nothing 策略比较所选集合与正确集合是否完全相等（同大小、同成员、与顺序无关）；
// partial 策略把每个被标记为正确的候选项作为独立小题，按“该项是否被选中”计分。
type pickFromListPlugin struct {
	basePlugin
}

func NewPickFromListPlugin() QuestionPlugin {
	return &pickFromListPlugin{basePlugin{PluginConfig{
		Type:            model.PickFromList,
		Name:            "多项选择",
		Categories:      []model.ExamCategory{model.ExamReading, model.ExamListening, model.ExamGrammar},
		SupportsPartial: true,
		SupportsAI:      false,
		DefaultPoints:   2,
	}}}
}

func (p *pickFromListPlugin) CreateDefault(index int) *model.Question {
	q := &model.Question{
		Type:     model.PickFromList,
		Prompt:   "从下列选项中选出两项",
		Points:   p.config.DefaultPoints,
		Strategy: model.AllOrNothingScoring,
		Index:    index,
	}
	q.ID = model.GenerateUUID()
	for i := 0; i < 5; i++ {
		q.Options = append(q.Options, model.QuestionOption{
			ID:        model.GenerateUUID(),
			Text:      fmt.Sprintf("选项 %c", 'A'+i),
			IsCorrect: i < 2,
		})
	}
	p.rebuildSubQuestions(q)
	q.PartialEndingIndex = index
	return q
}

// rebuildSubQuestions 小题与被标记为正确的候选项一一对应
func (p *pickFromListPlugin) rebuildSubQuestions(q *model.Question) {
	q.SubQuestions = nil
	per := q.Points
	if n := len(p.correctIDs(q)); n > 0 {
		per = q.Points / float64(n)
	}
	for _, op := range q.Options {
		if op.IsCorrect {
			q.SubQuestions = append(q.SubQuestions, model.SubQuestionMeta{
				ID:            model.GenerateUUID(),
				ItemID:        op.ID,
				Points:        per,
				CorrectAnswer: op.ID,
			})
		}
	}
}

func (p *pickFromListPlugin) Transform(q *model.Question) *model.StandardQuestion {
	sq := standardCommon(q)
	for _, sub := range q.SubQuestions {
		std := standardSub(q, sub, true)
		if std.QuestionText == q.Prompt {
			std.QuestionText = optionText(q, sub.CorrectAnswer)
		}
		sq.SubQuestions = append(sq.SubQuestions, std)
	}
	return sq
}

func (p *pickFromListPlugin) Validate(q *model.Question) ValidationResult {
	res := p.baseValidate(q)
	if q == nil {
		return res
	}
	correct := p.correctIDs(q)
	if len(q.Options) < 3 {
		res.addError("多选题至少需要 3 个选项")
	}
	if len(correct) == 0 {
		res.addError("多选题必须标记至少 1 个正确选项")
	}
	if len(correct) == len(q.Options) && len(q.Options) > 0 {
		res.addWarning("所有选项均为正确选项")
	}
	if q.Strategy == model.PartialScoring {
		p.checkSubQuestionCount(&res, q, len(correct), "正确选项")
	}
	return res
}

func (p *pickFromListPlugin) Score(_ context.Context, sc ScoringContext) ScoringResult {
	q := sc.Question
	correct := p.correctIDs(q)
	if len(correct) == 0 {
		return errorResult(q.Points, CodeScoringError, "题目未标记正确选项")
	}

	selected := cleanSet(sc.Answer.SelectedSet)
	if sc.SubQuestionID != "" {
		return scoreOneSub(q, sc.SubQuestionID, func(sub *model.SubQuestionMeta) ScoringResult {
			return p.scoreMembership(q, sub, selected)
		})
	}

	if q.Strategy == model.PartialScoring {
		return scoreWholePartial(q, func(sub *model.SubQuestionMeta) ScoringResult {
			return p.scoreMembership(q, sub, selected)
		})
	}

	if len(selected) == 0 {
		return wrongResult(q.Points, "未作答")
	}
	if setEqual(selected, correct) {
		return correctResult(q.Points, "回答正确")
	}
	return wrongResult(q.Points, fmt.Sprintf("所选集合与正确集合不一致：应选 %d 项，实选 %d 项",
		len(correct), len(selected)))
}

// scoreMembership partial 策略下的单项计分：被标记为正确的项是否出现在所选集合中
func (p *pickFromListPlugin) scoreMembership(q *model.Question, sub *model.SubQuestionMeta, selected map[string]struct{}) ScoringResult {
	max := subMaxScore(q, sub)
	if len(selected) == 0 {
		return wrongResult(max, "未作答")
	}
	res := ScoringResult{MaxScore: max, CorrectText: optionText(q, sub.CorrectAnswer)}
	if _, ok := selected[sub.CorrectAnswer]; ok {
		res.IsCorrect = true
		res.Score = max
		res.SelectedText = res.CorrectText
		res.Feedback = "回答正确"
	} else {
		res.Feedback = fmt.Sprintf("未选中正确选项“%s”", res.CorrectText)
	}
	return res
}

func (p *pickFromListPlugin) correctIDs(q *model.Question) map[string]struct{} {
	out := make(map[string]struct{})
	for _, op := range q.Options {
		if op.IsCorrect {
			out[op.ID] = struct{}{}
		}
	}
	return out
}

func cleanSet(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out[s] = struct{}{}
		}
	}
	return out
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
