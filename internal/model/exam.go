package model

import "time"

// ExamCategory 试卷类别，决定各题型是否可用（插件按类别过滤）
type ExamCategory string

const (
	ExamReading   ExamCategory = "reading"
	ExamListening ExamCategory = "listening"
	ExamWriting   ExamCategory = "writing"
	ExamGrammar   ExamCategory = "grammar"
)

// swagger:model Exam
type Exam struct {
	UUIDBase
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Category    ExamCategory `gorm:"size:20;default:'reading'" json:"category"`
	TimeLimit   int          `gorm:"default:0" json:"timeLimit"` // 分钟
	IsPublished bool         `gorm:"default:false" json:"isPublished"`
	PublishedAt *time.Time   `json:"publishedAt,omitempty"`
	CreatorID   uint         `gorm:"index;type:bigint unsigned" json:"creatorId"`
}

func (Exam) TableName() string {
	return "exams"
}

// swagger:model ExamSection
type ExamSection struct {
	UUIDBase
	ExamID       string `gorm:"index;type:varchar(36)" json:"examId"`
	Title        string `gorm:"size:255;not null" json:"title"`
	Instructions string `gorm:"type:text" json:"instructions"`
	PassageText  string `gorm:"type:text" json:"passageText,omitempty"` // 阅读篇章原文
	AudioURL     string `gorm:"size:255" json:"audioUrl,omitempty"`     // 听力音频地址，由外部系统托管
	Order        int    `gorm:"default:0" json:"order"`
}

func (ExamSection) TableName() string {
	return "exam_sections"
}
