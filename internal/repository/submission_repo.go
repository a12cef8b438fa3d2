package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-learn-api/internal/models"
)

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	CourseID     *uint
	CourseIDs    []uint
	StudentID    *uint
	LessonID     *uint
	Status       *models.SubmissionStatus
	InstructorID *uint
}

// SubmissionRepository owns the submission collection. It is the only writer of submission records.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
	SaveGrade(ctx context.Context, submission *models.Submission, history *models.SubmissionGradeHistory) error
	CountByStatus(ctx context.Context, filter SubmissionFilter) (map[models.SubmissionStatus]int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Student").
		Preload("History", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("graded_at DESC")
		})
}

func applySubmissionFilter(query *gorm.DB, filter SubmissionFilter) *gorm.DB {
	if filter.CourseID != nil {
		query = query.Where("submissions.course_id = ?", *filter.CourseID)
	}
	if len(filter.CourseIDs) > 0 {
		query = query.Where("submissions.course_id IN ?", filter.CourseIDs)
	}
	if filter.StudentID != nil {
		query = query.Where("submissions.student_id = ?", *filter.StudentID)
	}
	if filter.LessonID != nil {
		query = query.Where("submissions.lesson_id = ?", *filter.LessonID)
	}
	if filter.Status != nil {
		query = query.Where("submissions.status = ?", *filter.Status)
	}
	if filter.InstructorID != nil {
		query = query.Where("submissions.course_id IN (?)",
			query.Session(&gorm.Session{NewDB: true}).Model(&models.Course{}).Select("id").Where("instructor_id = ?", *filter.InstructorID))
	}
	return query
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := applySubmissionFilter(r.baseQuery(ctx), filter)

	var submissions []models.Submission
	if err := query.Order("submissions.created_at DESC").Order("submissions.id DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Omit("Student", "History").Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Omit("Student", "History").Save(submission).Error
}

// SaveGrade writes the graded submission and its history entry in one transaction.
func (r *submissionRepository) SaveGrade(ctx context.Context, submission *models.Submission, history *models.SubmissionGradeHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Student", "History").Save(submission).Error; err != nil {
			return err
		}
		history.SubmissionID = submission.ID
		return tx.Create(history).Error
	})
}

func (r *submissionRepository) CountByStatus(ctx context.Context, filter SubmissionFilter) (map[models.SubmissionStatus]int64, error) {
	type row struct {
		Status models.SubmissionStatus
		Total  int64
	}

	query := applySubmissionFilter(r.db.WithContext(ctx).Model(&models.Submission{}), filter)

	var rows []row
	if err := query.Select("submissions.status AS status, COUNT(*) AS total").Group("submissions.status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[models.SubmissionStatus]int64, len(rows))
	for _, item := range rows {
		counts[item.Status] = item.Total
	}
	return counts, nil
}

// purgeSubmissions deletes the matching submissions together with their grade history and
// returns the distinct students that owned them.
func purgeSubmissions(tx *gorm.DB, query string, args ...any) ([]uint, error) {
	var rows []struct {
		ID        uint
		StudentID uint
	}
	if err := tx.Model(&models.Submission{}).Select("id, student_id").Where(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(rows))
	students := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
		students = append(students, row.StudentID)
	}

	if err := tx.Where("submission_id IN ?", ids).Delete(&models.SubmissionGradeHistory{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("id IN ?", ids).Delete(&models.Submission{}).Error; err != nil {
		return nil, err
	}
	return mergeIDs(students), nil
}

// mergeIDs concatenates the slices, dropping duplicates and keeping first-seen order.
func mergeIDs(groups ...[]uint) []uint {
	seen := make(map[uint]struct{})
	var merged []uint
	for _, group := range groups {
		for _, id := range group {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	return merged
}
