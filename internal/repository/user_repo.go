package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-learn-api/internal/models"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Role   *models.Role
	Search string
}

// UserRepository defines data operations for platform accounts.
type UserRepository interface {
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
	GetByID(ctx context.Context, id uint) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	// Delete removes the account, its own submissions and any courses it teaches, and
	// returns the students whose submissions were removed.
	Delete(ctx context.Context, id uint) ([]uint, error)
	CountByRole(ctx context.Context) (map[models.Role]int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository instantiates the repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", like, like)
	}

	var users []models.User
	if err := query.Order("name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id uint) ([]uint, error) {
	var students []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		own, err := purgeSubmissions(tx, "student_id = ?", id)
		if err != nil {
			return err
		}

		var courseIDs []uint
		if err := tx.Model(&models.Course{}).Where("instructor_id = ?", id).Pluck("id", &courseIDs).Error; err != nil {
			return err
		}
		taught, err := deleteCourses(tx, courseIDs)
		if err != nil {
			return err
		}
		if len(courseIDs) > 0 {
			if err := tx.Where("id IN ?", courseIDs).Delete(&models.Course{}).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		students = mergeIDs(own, taught)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (r *userRepository) CountByRole(ctx context.Context) (map[models.Role]int64, error) {
	type row struct {
		Role  models.Role
		Total int64
	}

	var rows []row
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("role AS role, COUNT(*) AS total").
		Group("role").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[models.Role]int64, len(rows))
	for _, item := range rows {
		counts[item.Role] = item.Total
	}
	return counts, nil
}
