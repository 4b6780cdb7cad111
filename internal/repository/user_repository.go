package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medassess/stagewise/internal/model"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByEmail(email string, role string) (*model.User, error)
	FindByID(id uuid.UUID) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) FindByEmail(email string, role string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ? AND role = ?", email, role).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, "user_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
