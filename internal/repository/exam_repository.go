package repository

import (
	"lang_exam_backend/internal/model"

	"gorm.io/gorm"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) CreateExam(exam *model.Exam) error {
	return r.DB.Create(exam).Error
}

func (r *ExamRepository) FindExamByID(id string) (*model.Exam, error) {
	var exam model.Exam
	err := r.DB.First(&exam, "id = ?", id).Error
	return &exam, err
}

func (r *ExamRepository) UpdateExam(exam *model.Exam) error {
	return r.DB.Save(exam).Error
}

func (r *ExamRepository) DeleteExam(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var sectionIDs []string
		if err := tx.Model(&model.ExamSection{}).Where("exam_id = ?", id).Pluck("id", &sectionIDs).Error; err != nil {
			return err
		}
		if len(sectionIDs) > 0 {
			if err := tx.Where("section_id IN ?", sectionIDs).Delete(&model.Question{}).Error; err != nil {
				return err
			}
			if err := tx.Where("exam_id = ?", id).Delete(&model.ExamSection{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.Exam{}, "id = ?", id).Error
	})
}

type ExamListRow struct {
	model.Exam
	SectionCount  int `json:"sectionCount"`
	QuestionCount int `json:"questionCount"`
}

func (r *ExamRepository) ListExams(category model.ExamCategory, publishedOnly bool, page, limit int) ([]ExamListRow, int64, error) {
	query := r.DB.Model(&model.Exam{}).Where("deleted_at IS NULL")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	dbQuery := r.DB.Table("exams e").
		Select("e.*, " +
			"(SELECT COUNT(*) FROM exam_sections s WHERE s.exam_id = e.id AND s.deleted_at IS NULL) as section_count, " +
			"(SELECT COUNT(*) FROM exam_questions q JOIN exam_sections s ON q.section_id = s.id WHERE s.exam_id = e.id AND q.deleted_at IS NULL) as question_count").
		Where("e.deleted_at IS NULL")
	if category != "" {
		dbQuery = dbQuery.Where("e.category = ?", category)
	}
	if publishedOnly {
		dbQuery = dbQuery.Where("e.is_published = ?", true)
	}

	var exams []ExamListRow
	offset := (page - 1) * limit
	err := dbQuery.Order("e.created_at desc").Offset(offset).Limit(limit).Scan(&exams).Error
	return exams, total, err
}

func (r *ExamRepository) CreateSection(section *model.ExamSection) error {
	return r.DB.Create(section).Error
}

func (r *ExamRepository) FindSectionByID(id string) (*model.ExamSection, error) {
	var section model.ExamSection
	err := r.DB.First(&section, "id = ?", id).Error
	return &section, err
}

func (r *ExamRepository) UpdateSection(section *model.ExamSection) error {
	return r.DB.Save(section).Error
}

func (r *ExamRepository) DeleteSection(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("section_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.ExamSection{}, "id = ?", id).Error
	})
}

func (r *ExamRepository) ListSections(examID string) ([]model.ExamSection, error) {
	var sections []model.ExamSection
	err := r.DB.Where("exam_id = ?", examID).Order("`order` asc, created_at asc").Find(&sections).Error
	return sections, err
}

func (r *ExamRepository) CreateQuestion(question *model.Question) error {
	return r.DB.Create(question).Error
}

func (r *ExamRepository) FindQuestionByID(id string) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, "id = ?", id).Error
	return &q, err
}

func (r *ExamRepository) UpdateQuestion(question *model.Question) error {
	return r.DB.Save(question).Error
}

func (r *ExamRepository) DeleteQuestion(id string) error {
	return r.DB.Delete(&model.Question{}, "id = ?", id).Error
}

func (r *ExamRepository) ListQuestionsBySection(sectionID string) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("section_id = ?", sectionID).Order("`order` asc, created_at asc").Find(&qs).Error
	return qs, err
}

// ListQuestionsByExam 整卷题目，按分区顺序与题目顺序排列
func (r *ExamRepository) ListQuestionsByExam(examID string) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Table("exam_questions q").
		Select("q.*").
		Joins("JOIN exam_sections s ON q.section_id = s.id").
		Where("s.exam_id = ? AND q.deleted_at IS NULL AND s.deleted_at IS NULL", examID).
		Order("s.`order` asc, q.`order` asc, q.created_at asc").
		Scan(&qs).Error
	return qs, err
}

// SaveQuestionNumbering 编号器回填后的批量落库，只更新编号两列
func (r *ExamRepository) SaveQuestionNumbering(questions []model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i := range questions {
			err := tx.Model(&model.Question{}).
				Where("id = ?", questions[i].ID).
				Updates(map[string]interface{}{
					"index":                questions[i].Index,
					"partial_ending_index": questions[i].PartialEndingIndex,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
