package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/sampleapp/app/models"
	"github.com/shashiranjanraj/sampleapp/pkg/metrics"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return user, notFound(err)
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return user, notFound(err)
}

// Create persists a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	defer metrics.ObserveDBQuery("insert", time.Now())
	return r.db.WithContext(ctx).Create(user).Error
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
