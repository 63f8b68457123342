package repository

import (
	"context"

	"ceats/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RestauranteRepository interface {
	// Create inserts within tx when non-nil (registration runs restaurante +
	// admin as one transaction).
	Create(ctx context.Context, tx *gorm.DB, r *model.Restaurante) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Restaurante, error)
	FindByEmail(ctx context.Context, email string) (*model.Restaurante, error)
	Update(ctx context.Context, r *model.Restaurante) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	DB() *gorm.DB
}

type restauranteRepo struct{ db *gorm.DB }

func NewRestauranteRepository(db *gorm.DB) RestauranteRepository { return &restauranteRepo{db: db} }

func (r *restauranteRepo) Create(ctx context.Context, tx *gorm.DB, rest *model.Restaurante) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.WithContext(ctx).Create(rest).Error
}

func (r *restauranteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Restaurante, error) {
	var rest model.Restaurante
	err := r.db.WithContext(ctx).Where("activo = true").First(&rest, "id = ?", id).Error
	return &rest, err
}

func (r *restauranteRepo) FindByEmail(ctx context.Context, email string) (*model.Restaurante, error) {
	var rest model.Restaurante
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&rest).Error
	return &rest, err
}

func (r *restauranteRepo) Update(ctx context.Context, rest *model.Restaurante) error {
	return r.db.WithContext(ctx).Save(rest).Error
}

// SoftDelete never removes the row: the tenant root anchors historic pedidos.
func (r *restauranteRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Restaurante{}).
		Where("id = ?", id).Update("activo", false).Error
}

func (r *restauranteRepo) DB() *gorm.DB { return r.db }
