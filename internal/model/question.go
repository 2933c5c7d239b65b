package model

import (
	"strings"

	"gorm.io/datatypes"
)

// QuestionType 题型标签，题型集合封闭，新增题型需要注册对应插件
type QuestionType string

const (
	SingleChoice        QuestionType = "single_choice"         // 单项选择
	Completion          QuestionType = "completion"            // 填空（多空）
	Matching            QuestionType = "matching"              // 信息配对
	Labeling            QuestionType = "labeling"              // 图表标注
	PickFromList        QuestionType = "pick_from_list"        // 多选多（从列表中选出若干项）
	TrueFalseNotGiven   QuestionType = "true_false_not_given"  // 判断 TRUE/FALSE/NOT GIVEN
	YesNoNotGiven       QuestionType = "yes_no_not_given"      // 判断 YES/NO/NOT GIVEN
	MatchingHeadings    QuestionType = "matching_headings"     // 段落配标题
	ShortAnswer         QuestionType = "short_answer"          // 简答
	SentenceTranslation QuestionType = "sentence_translation"  // 句子翻译（AI 评分）
	WordForm            QuestionType = "word_form"             // 词形转换（AI 评分）
	WritingTask         QuestionType = "writing_task"          // 写作（AI 评分）
)

// ScoringStrategy 评分策略
type ScoringStrategy string

const (
	// PartialScoring 逐小题计分，总分为各小题得分之和
	PartialScoring ScoringStrategy = "partial"
	// AllOrNothingScoring 整题计分，答案与标准完全一致才得分
	AllOrNothingScoring ScoringStrategy = "all_or_nothing"
)

// QuestionItem 题目中被判断/被配对的条目（陈述句、段落、待翻译句、图中位置等）
type QuestionItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionOption 候选项（选项、标题、词库条目等）
type QuestionOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect,omitempty"` // pick_from_list 用：该项是否属于正确集合
}

// SubQuestionMeta 题内可独立计分的最小单元（一个空、一条陈述、一个段落槽位）。
// CorrectAnswer / AcceptableAnswers 均为空时表示正确性交由 AI 判定。
type SubQuestionMeta struct {
	ID                string   `json:"id"`
	ItemID            string   `json:"itemId,omitempty"` // 所属条目（陈述/段落/空）的引用
	Points            float64  `json:"points"`
	CorrectAnswer     string   `json:"correctAnswer,omitempty"`     // 单一正确值（选项 id 或判断值）
	AcceptableAnswers []string `json:"acceptableAnswers,omitempty"` // 可接受答案集合（自由文本题）
	Explanation       string   `json:"explanation,omitempty"`
}

// Question 题目，跨题型的公共属性 + 以 Items/Options/SubQuestions 表达的变体载荷
// swagger:model Question
type Question struct {
	UUIDBase
	SectionID string          `gorm:"index;type:varchar(36)" json:"sectionId"`
	Type      QuestionType    `gorm:"size:50;not null" json:"type"`
	Prompt    string          `gorm:"type:text;not null" json:"prompt"`
	Points    float64         `gorm:"default:1" json:"points"`
	Strategy  ScoringStrategy `gorm:"size:20;default:'partial'" json:"strategy"`

	// 显示编号，由编号器统一回填：Index 为首个显示号，PartialEndingIndex 为末个
	Index              int `gorm:"default:0" json:"index"`
	PartialEndingIndex int `gorm:"default:0" json:"partialEndingIndex"`

	Items        datatypes.JSONSlice[QuestionItem]    `json:"items,omitempty"`
	Options      datatypes.JSONSlice[QuestionOption]  `json:"options,omitempty"`
	SubQuestions datatypes.JSONSlice[SubQuestionMeta] `json:"subQuestions,omitempty"`

	DiagramURL    string `gorm:"size:255" json:"diagramUrl,omitempty"`    // labeling 用，图片由外部系统托管
	ScoringPrompt string `gorm:"type:text" json:"scoringPrompt,omitempty"` // 作者自定义的 AI 评分说明
	Order         int    `gorm:"default:0" json:"order"`
}

func (Question) TableName() string {
	return "exam_questions"
}

// SubQuestionCount 小题数，无小题时为 0
func (q *Question) SubQuestionCount() int {
	return len(q.SubQuestions)
}

// DisplaySpan 该题占用的显示编号个数
func (q *Question) DisplaySpan() int {
	if q.Strategy == PartialScoring && len(q.SubQuestions) > 0 {
		return len(q.SubQuestions)
	}
	return 1
}

// FindSubQuestion 按 id 查找小题
func (q *Question) FindSubQuestion(subID string) *SubQuestionMeta {
	for i := range q.SubQuestions {
		if q.SubQuestions[i].ID == subID {
			return &q.SubQuestions[i]
		}
	}
	return nil
}

// FindOption 按 id 查找候选项
func (q *Question) FindOption(optionID string) *QuestionOption {
	for i := range q.Options {
		if q.Options[i].ID == optionID {
			return &q.Options[i]
		}
	}
	return nil
}

// FindItem 按 id 查找条目
func (q *Question) FindItem(itemID string) *QuestionItem {
	for i := range q.Items {
		if q.Items[i].ID == itemID {
			return &q.Items[i]
		}
	}
	return nil
}

// AnswerPayload 类型化的作答载荷。按题型只会用到其中一个字段，
// 由插件在评分边界校验，不直接信任客户端提交的结构。
type AnswerPayload struct {
	Selected    string            `json:"selected,omitempty"`    // 单选值/选项 id/判断值
	SelectedSet []string          `json:"selectedSet,omitempty"` // 多选集合
	Texts       map[string]string `json:"texts,omitempty"`       // 小题 id -> 文本答案
	Text        string            `json:"text,omitempty"`        // 单段自由文本（作文、简答）
}

// IsEmpty 判定载荷是否为空：空串、空集合、全空值映射都视为未作答
func (p AnswerPayload) IsEmpty() bool {
	if strings.TrimSpace(p.Selected) != "" {
		return false
	}
	if strings.TrimSpace(p.Text) != "" {
		return false
	}
	for _, v := range p.SelectedSet {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	for _, v := range p.Texts {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// TextFor 取某小题的文本答案，兼容把单段文本当作唯一答案的情况
func (p AnswerPayload) TextFor(subID string) string {
	if v, ok := p.Texts[subID]; ok {
		return v
	}
	return ""
}
