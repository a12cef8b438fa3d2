package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-learn-api/internal/models"
)

// CourseFilter narrows course listings.
type CourseFilter struct {
	InstructorID  *uint
	PublishedOnly bool
	Category      string
}

// CourseRepository defines data operations for courses and their lessons.
type CourseRepository interface {
	List(ctx context.Context, filter CourseFilter) ([]models.Course, error)
	GetByID(ctx context.Context, id uint) (models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	// Delete removes the course with its lessons, submissions and grade history and
	// returns the students whose submissions were removed.
	Delete(ctx context.Context, id uint) ([]uint, error)
	GetLesson(ctx context.Context, courseID, lessonID uint) (models.Lesson, error)
	AppendLessons(ctx context.Context, courseID uint, lessons []models.Lesson) ([]models.Lesson, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates the repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Course{}).
		Preload("Instructor").
		Preload("Lessons", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC").Order("id ASC")
		})
}

func (r *courseRepository) List(ctx context.Context, filter CourseFilter) ([]models.Course, error) {
	query := r.baseQuery(ctx)
	if filter.InstructorID != nil {
		query = query.Where("instructor_id = ?", *filter.InstructorID)
	}
	if filter.PublishedOnly {
		query = query.Where("published = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var courses []models.Course
	if err := query.Order("title ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.baseQuery(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Omit("Instructor").Create(course).Error
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Omit("Instructor", "Lessons").Save(course).Error
}

func (r *courseRepository) Delete(ctx context.Context, id uint) ([]uint, error) {
	var students []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		students, err = deleteCourses(tx, []uint{id})
		if err != nil {
			return err
		}
		result := tx.Delete(&models.Course{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return students, nil
}

// deleteCourses clears everything hanging off the courses but leaves the course rows to the caller.
func deleteCourses(tx *gorm.DB, courseIDs []uint) ([]uint, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	students, err := purgeSubmissions(tx, "course_id IN ?", courseIDs)
	if err != nil {
		return nil, err
	}
	if err := tx.Where("course_id IN ?", courseIDs).Delete(&models.Lesson{}).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *courseRepository) GetLesson(ctx context.Context, courseID, lessonID uint) (models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		First(&lesson, lessonID).Error; err != nil {
		return models.Lesson{}, err
	}
	return lesson, nil
}

// AppendLessons places the lessons after the course's current last lesson, keeping their relative order.
func (r *courseRepository) AppendLessons(ctx context.Context, courseID uint, lessons []models.Lesson) ([]models.Lesson, error) {
	if len(lessons) == 0 {
		return nil, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last struct{ Position *int }
		if err := tx.Model(&models.Lesson{}).
			Select("MAX(position) AS position").
			Where("course_id = ?", courseID).
			Scan(&last).Error; err != nil {
			return err
		}

		next := 1
		if last.Position != nil {
			next = *last.Position + 1
		}
		for i := range lessons {
			lessons[i].CourseID = courseID
			lessons[i].Position = next + i
		}
		return tx.Create(&lessons).Error
	})
	if err != nil {
		return nil, err
	}
	return lessons, nil
}
