package model

// StandardItem 标准化后的条目
type StandardItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// StandardOption 标准化后的候选项
type StandardOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// StandardSubQuestion 标准化小题：在 SubQuestionMeta 基础上补齐展示文本，
// QuestionText/AnswerText 由插件从 Items/Options 中解析，源数据存在时不得为空。
type StandardSubQuestion struct {
	ID                string   `json:"id"`
	ItemID            string   `json:"itemId,omitempty"`
	Points            float64  `json:"points"`
	CorrectAnswer     string   `json:"correctAnswer,omitempty"`
	AcceptableAnswers []string `json:"acceptableAnswers,omitempty"`
	Explanation       string   `json:"explanation,omitempty"`
	QuestionText      string   `json:"questionText"`
	AnswerText        string   `json:"answerText"`
}

// StandardQuestion 任意题型的统一投影，供通用列表、报表与编号器使用。
// 派生数据：随源题目变化重新计算，不单独编辑。
// swagger:model StandardQuestion
type StandardQuestion struct {
	ID                 string                `json:"id"`
	SectionID          string                `json:"sectionId,omitempty"`
	Type               QuestionType          `json:"type"`
	Prompt             string                `json:"prompt"`
	Points             float64               `json:"points"`
	Strategy           ScoringStrategy       `json:"strategy"`
	Index              int                   `json:"index"`
	PartialEndingIndex int                   `json:"partialEndingIndex"`
	DiagramURL         string                `json:"diagramUrl,omitempty"`
	Items              []StandardItem        `json:"items"`
	Options            []StandardOption      `json:"options"`
	SubQuestions       []StandardSubQuestion `json:"subQuestions"`
}

// StripAnswers 去除标准答案后返回面向考生的副本
func (sq *StandardQuestion) StripAnswers() *StandardQuestion {
	out := *sq
	out.SubQuestions = make([]StandardSubQuestion, len(sq.SubQuestions))
	for i, sub := range sq.SubQuestions {
		sub.CorrectAnswer = ""
		sub.AcceptableAnswers = nil
		sub.AnswerText = ""
		sub.Explanation = ""
		out.SubQuestions[i] = sub
	}
	return &out
}
