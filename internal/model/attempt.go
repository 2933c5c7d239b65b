package model

import (
	"time"

	"gorm.io/datatypes"
)

// 答题记录状态
const (
	AttemptInProgress = "in_progress"
	AttemptSubmitted  = "submitted"
	AttemptScored     = "scored"
)

// 单题完成状态
const (
	StatusUntouched = "untouched"
	StatusPartial   = "partial"
	StatusCompleted = "completed"
)

// swagger:model ExamAttempt
type ExamAttempt struct {
	UUIDBase
	ExamID      string     `gorm:"index;type:varchar(36)" json:"examId"`
	UserID      uint       `gorm:"index;type:bigint unsigned" json:"userId"`
	Status      string     `gorm:"size:20;default:'in_progress'" json:"status"`
	TotalScore  float64    `gorm:"default:0" json:"totalScore"`
	MaxScore    float64    `gorm:"default:0" json:"maxScore"`
	Percentage  int        `gorm:"default:0" json:"percentage"`
	StartedAt   time.Time  `json:"startedAt"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
}

func (ExamAttempt) TableName() string {
	return "exam_attempts"
}

// UserAnswer 一条考生作答记录。partial 题型按小题各存一条（SubQuestionID 非空），
// all_or_nothing 题型整题一条（SubQuestionID 为空）。
// 首次提交时创建，此后由评分管线原地更新，UI 不直接改写评分字段。
// swagger:model UserAnswer
type UserAnswer struct {
	UUIDBase
	AttemptID     string                             `gorm:"index;type:varchar(36)" json:"attemptId"`
	QuestionID    string                             `gorm:"index;type:varchar(36)" json:"questionId"`
	SubQuestionID string                             `gorm:"size:64;default:''" json:"subQuestionId,omitempty"`
	Payload       datatypes.JSONType[AnswerPayload]  `json:"payload"`
	IsCorrect     bool                               `gorm:"default:false" json:"isCorrect"`
	Score         float64                            `gorm:"default:0" json:"score"`
	MaxScore      float64                            `gorm:"default:0" json:"maxScore"`
	Feedback      string                             `gorm:"type:text" json:"feedback"`
	AIScored      bool                               `gorm:"default:false" json:"aiScored"`
	ManualScored  bool                               `gorm:"default:false" json:"manualScored"`
	ScoredAt      *time.Time                         `json:"scoredAt,omitempty"`
}

func (UserAnswer) TableName() string {
	return "user_answers"
}

// Answer 取出类型化载荷
func (a *UserAnswer) Answer() AnswerPayload {
	return a.Payload.Data()
}
