package plugin

import (
	"context"
	"fmt"
	"strings"

	"lang_exam_backend/internal/model"
)

// 评分结果错误码
const (
	CodeScoringError = "SCORING_ERROR"
	CodeNoPlugin     = "NO_PLUGIN"
	CodeNoMethod     = "NO_SCORING_METHOD"
)

// PluginConfig 题型插件的静态描述
type PluginConfig struct {
	Type            model.QuestionType   `json:"type"`
	Name            string               `json:"name"`
	Categories      []model.ExamCategory `json:"categories"`      // 可用的试卷类别
	SupportsPartial bool                 `json:"supportsPartial"` // 是否支持逐小题计分
	SupportsAI      bool                 `json:"supportsAI"`      // 是否支持 AI 评分
	DefaultPoints   float64              `json:"defaultPoints"`
}

// ValidationResult 校验结果：Errors 阻止发布，Warnings 仅提示
type ValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *ValidationResult) addError(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
	v.IsValid = false
}

func (v *ValidationResult) addWarning(format string, args ...interface{}) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}

// AIScoreRequest 外部 AI 评分协作方的入参
type AIScoreRequest struct {
	Text          string `json:"text"`          // 考生作答
	Prompt        string `json:"prompt"`        // 题面/原文/预期转换
	Essay         string `json:"essay"`         // 作文全文（写作题用）
	ScoringPrompt string `json:"scoringPrompt"` // 作者自定义评分说明
}

// AIScoreResponse 外部 AI 评分协作方的出参。
// 翻译/词形题 Score 为 0–1，写作题为 0–9，由插件线性折算进小题分值。
type AIScoreResponse struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
	OK       bool    `json:"ok"`
	Error    string  `json:"error,omitempty"`
}

// AIScorer 异步 AI 评分函数。返回 error 与 OK=false 等价处理（触发降级路径）。
type AIScorer func(ctx context.Context, req AIScoreRequest) (AIScoreResponse, error)

// ScoringContext 一次评分调用的输入
type ScoringContext struct {
	Question      *model.Question
	Answer        model.AnswerPayload
	SubQuestionID string   // partial 策略下逐小题评分时指定
	AIScorer      AIScorer // 可选，缺省时 AI 题型走降级路径
}

// ScoringResult 一次评分调用的输出。插件的 Score 不抛异常，
// 所有失败路径都以 IsCorrect=false、Score=0 且带说明 Feedback 的结果返回。
type ScoringResult struct {
	ScoringID    string  `json:"scoringId,omitempty"` // 评分引擎回填的单次评分标识
	IsCorrect    bool    `json:"isCorrect"`
	Score        float64 `json:"score"`
	MaxScore     float64 `json:"maxScore"`
	Feedback     string  `json:"feedback"`
	SelectedText string  `json:"selectedText,omitempty"` // 所选内容的展示文本
	CorrectText  string  `json:"correctText,omitempty"`  // 正确内容的展示文本
	AIScored     bool    `json:"aiScored"`
	NeedsManual  bool    `json:"needsManual"`
	Recoverable  bool    `json:"recoverable"`
	Code         string  `json:"code,omitempty"`
}

// QuestionPlugin 题型插件契约。Transform 必须纯函数且幂等；
// Score 任何失败都降级为零分结果而非向外传播。
type QuestionPlugin interface {
	Config() PluginConfig
	CreateDefault(index int) *model.Question
	Transform(q *model.Question) *model.StandardQuestion
	Validate(q *model.Question) ValidationResult
	Score(ctx context.Context, sc ScoringContext) ScoringResult
	IsQuestionOfType(q *model.Question) bool
}

// basePlugin 各插件共用的缺省实现
type basePlugin struct {
	config PluginConfig
}

func (b *basePlugin) Config() PluginConfig {
	return b.config
}

func (b *basePlugin) IsQuestionOfType(q *model.Question) bool {
	return q != nil && q.Type == b.config.Type
}

// baseValidate 所有题型共享的基础规则：题面非空、分值为正
func (b *basePlugin) baseValidate(q *model.Question) ValidationResult {
	res := ValidationResult{IsValid: true}
	if q == nil {
		res.addError("题目为空")
		return res
	}
	if strings.TrimSpace(q.Prompt) == "" {
		res.addError("题面不能为空")
	}
	if q.Points <= 0 {
		res.addError("分值必须为正数")
	}
	return res
}

// checkSubQuestionCount 小题数与结构字段蕴含的数量不一致时给出警告（不算错误）
func (b *basePlugin) checkSubQuestionCount(res *ValidationResult, q *model.Question, implied int, what string) {
	if implied > 0 && len(q.SubQuestions) > 0 && len(q.SubQuestions) != implied {
		res.addWarning("小题数(%d)与%s数(%d)不一致", len(q.SubQuestions), what, implied)
	}
}

// NormalizeText 自由文本答案的标准化：去首尾空白、转小写、内部连续空白折叠为单个空格
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

// matchAcceptable 标准化后在可接受答案集合内做精确匹配，无模糊给分
func matchAcceptable(submitted, correct string, acceptable []string) bool {
	norm := NormalizeText(submitted)
	if norm == "" {
		return false
	}
	if correct != "" && norm == NormalizeText(correct) {
		return true
	}
	for _, a := range acceptable {
		if norm == NormalizeText(a) {
			return true
		}
	}
	return false
}

// subMaxScore 小题分值，未设置时按整题分值均摊
func subMaxScore(q *model.Question, sub *model.SubQuestionMeta) float64 {
	if sub != nil && sub.Points > 0 {
		return sub.Points
	}
	if n := len(q.SubQuestions); n > 0 {
		return q.Points / float64(n)
	}
	return q.Points
}

// QuestionMaxScore 题目满分口径。partial 策略为各小题作者设定分值之和
// （小题分值与整题分值不一致时以小题之和为准），其余策略为整题分值。
func QuestionMaxScore(q *model.Question) float64 {
	if q == nil {
		return 0
	}
	if q.Strategy == model.PartialScoring && len(q.SubQuestions) > 0 {
		var total float64
		for i := range q.SubQuestions {
			total += subMaxScore(q, &q.SubQuestions[i])
		}
		return total
	}
	return q.Points
}

func wrongResult(max float64, feedback string) ScoringResult {
	return ScoringResult{IsCorrect: false, Score: 0, MaxScore: max, Feedback: feedback}
}

func correctResult(max float64, feedback string) ScoringResult {
	return ScoringResult{IsCorrect: true, Score: max, MaxScore: max, Feedback: feedback}
}

func errorResult(max float64, code, feedback string) ScoringResult {
	return ScoringResult{
		IsCorrect:   false,
		Score:       0,
		MaxScore:    max,
		Feedback:    feedback,
		Recoverable: true,
		Code:        code,
	}
}

// missingSubResult 上下文指定的小题不存在
func missingSubResult(q *model.Question, subID string) ScoringResult {
	return errorResult(0, CodeScoringError, fmt.Sprintf("小题 %s 不存在于题目 %s", subID, q.ID))
}

// standardCommon 公共属性的标准化投影，各插件在此基础上补齐 items/options/subQuestions
func standardCommon(q *model.Question) *model.StandardQuestion {
	sq := &model.StandardQuestion{
		ID:                 q.ID,
		SectionID:          q.SectionID,
		Type:               q.Type,
		Prompt:             q.Prompt,
		Points:             q.Points,
		Strategy:           q.Strategy,
		Index:              q.Index,
		PartialEndingIndex: q.PartialEndingIndex,
		DiagramURL:         q.DiagramURL,
		Items:              make([]model.StandardItem, 0, len(q.Items)),
		Options:            make([]model.StandardOption, 0, len(q.Options)),
		SubQuestions:       make([]model.StandardSubQuestion, 0, len(q.SubQuestions)),
	}
	for _, it := range q.Items {
		sq.Items = append(sq.Items, model.StandardItem{ID: it.ID, Text: it.Text})
	}
	for _, op := range q.Options {
		sq.Options = append(sq.Options, model.StandardOption{ID: op.ID, Text: op.Text})
	}
	return sq
}

// standardSub 通用的小题标准化：QuestionText 来自所属条目，AnswerText 按候选项/字面值解析
func standardSub(q *model.Question, sub model.SubQuestionMeta, resolveOption bool) model.StandardSubQuestion {
	out := model.StandardSubQuestion{
		ID:                sub.ID,
		ItemID:            sub.ItemID,
		Points:            subMaxScore(q, &sub),
		CorrectAnswer:     sub.CorrectAnswer,
		AcceptableAnswers: sub.AcceptableAnswers,
		Explanation:       sub.Explanation,
	}
	if it := q.FindItem(sub.ItemID); it != nil {
		out.QuestionText = it.Text
	}
	if out.QuestionText == "" {
		out.QuestionText = q.Prompt
	}
	if resolveOption {
		if op := q.FindOption(sub.CorrectAnswer); op != nil {
			out.AnswerText = op.Text
		}
	}
	if out.AnswerText == "" {
		if sub.CorrectAnswer != "" {
			out.AnswerText = sub.CorrectAnswer
		} else if len(sub.AcceptableAnswers) > 0 {
			out.AnswerText = sub.AcceptableAnswers[0]
		}
	}
	return out
}

// optionText 选项展示文本，查不到时退回 id 本身
func optionText(q *model.Question, optionID string) string {
	if op := q.FindOption(optionID); op != nil {
		return op.Text
	}
	return optionID
}
