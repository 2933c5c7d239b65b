package repository

import (
	"lang_exam_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.ExamAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByID(id string) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	err := r.DB.First(&attempt, "id = ?", id).Error
	return &attempt, err
}

func (r *AttemptRepository) Update(attempt *model.ExamAttempt) error {
	return r.DB.Save(attempt).Error
}

func (r *AttemptRepository) FindInProgress(userID uint, examID string) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	err := r.DB.Where("user_id = ? AND exam_id = ? AND status = ?",
		userID, examID, model.AttemptInProgress).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptRepository) ListByUser(userID uint, page, limit int) ([]model.ExamAttempt, int64, error) {
	query := r.DB.Model(&model.ExamAttempt{}).Where("user_id = ?", userID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var attempts []model.ExamAttempt
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&attempts).Error
	return attempts, total, err
}

// UpsertAnswer 同一计分单元重复提交时原地覆盖载荷，不产生重复记录。
// partial 题型的计分单元是 (attempt, question, sub_question)，
// all_or_nothing 题型 sub_question_id 为空串。
func (r *AttemptRepository) UpsertAnswer(answer *model.UserAnswer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.UserAnswer
		err := tx.Where("attempt_id = ? AND question_id = ? AND sub_question_id = ?",
			answer.AttemptID, answer.QuestionID, answer.SubQuestionID).
			First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			return tx.Create(answer).Error
		}
		if err != nil {
			return err
		}
		existing.Payload = answer.Payload
		*answer = existing
		return tx.Save(&existing).Error
	})
}

func (r *AttemptRepository) FindAnswerByID(id string) (*model.UserAnswer, error) {
	var answer model.UserAnswer
	err := r.DB.First(&answer, "id = ?", id).Error
	return &answer, err
}

func (r *AttemptRepository) UpdateAnswer(answer *model.UserAnswer) error {
	return r.DB.Save(answer).Error
}

func (r *AttemptRepository) ListAnswers(attemptID string) ([]model.UserAnswer, error) {
	var answers []model.UserAnswer
	err := r.DB.Where("attempt_id = ?", attemptID).Order("created_at asc").Find(&answers).Error
	return answers, err
}

// SaveScoredAnswers 评分管线的批量回写
func (r *AttemptRepository) SaveScoredAnswers(answers []model.UserAnswer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i := range answers {
			if err := tx.Save(&answers[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *AttemptRepository) DeleteAttempt(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attempt_id = ?", id).Delete(&model.UserAnswer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.ExamAttempt{}, "id = ?", id).Error
	})
}
