package repository

import (
	"context"

	"ceats/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SucursalRepository interface {
	Create(ctx context.Context, s *model.Sucursal) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sucursal, error)
	ListByRestaurante(ctx context.Context, restauranteID uuid.UUID) ([]model.Sucursal, error)
	Update(ctx context.Context, s *model.Sucursal) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// CountUsuariosActivos backs the delete guard: a branch with active users
	// cannot be removed.
	CountUsuariosActivos(ctx context.Context, sucursalID uuid.UUID) (int64, error)
	// LimpiarCodigosExpirados nulls verification codes past their expiry;
	// returns affected rows. Called by the cleanup cron.
	LimpiarCodigosExpirados(ctx context.Context) (int64, error)
}

type sucursalRepo struct{ db *gorm.DB }

func NewSucursalRepository(db *gorm.DB) SucursalRepository { return &sucursalRepo{db: db} }

func (r *sucursalRepo) Create(ctx context.Context, s *model.Sucursal) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sucursalRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sucursal, error) {
	var s model.Sucursal
	err := r.db.WithContext(ctx).Where("activa = true").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *sucursalRepo) ListByRestaurante(ctx context.Context, restauranteID uuid.UUID) ([]model.Sucursal, error) {
	var sucursales []model.Sucursal
	err := r.db.WithContext(ctx).
		Where("restaurante_id = ? AND activa = true", restauranteID).
		Order("created_at ASC").
		Find(&sucursales).Error
	return sucursales, err
}

func (r *sucursalRepo) Update(ctx context.Context, s *model.Sucursal) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *sucursalRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Sucursal{}).
		Where("id = ?", id).Update("activa", false).Error
}

func (r *sucursalRepo) CountUsuariosActivos(ctx context.Context, sucursalID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Usuario{}).
		Where("sucursal_id = ? AND activo = true", sucursalID).
		Count(&count).Error
	return count, err
}

func (r *sucursalRepo) LimpiarCodigosExpirados(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Sucursal{}).
		Where("codigo_verificacion IS NOT NULL AND codigo_expira < NOW()").
		Updates(map[string]interface{}{"codigo_verificacion": nil, "codigo_expira": nil})
	return res.RowsAffected, res.Error
}
