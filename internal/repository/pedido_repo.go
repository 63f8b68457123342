package repository

import (
	"context"

	"ceats/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PedidoConSucursal is the join row for the admin-wide listing.
type PedidoConSucursal struct {
	model.Pedido
	SucursalNombre string
}

type PedidoRepository interface {
	Create(ctx context.Context, p *model.Pedido) error
	FindByCodigo(ctx context.Context, codigo string) (*model.Pedido, error)
	ListBySucursal(ctx context.Context, sucursalID uuid.UUID) ([]model.Pedido, error)
	// ListByRestaurante joins the branch name and is scoped to one tenant.
	ListByRestaurante(ctx context.Context, restauranteID uuid.UUID, fecha string) ([]PedidoConSucursal, error)
	UpdateEstado(ctx context.Context, codigo, estado string) error
	Delete(ctx context.Context, codigo string) error
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) Create(ctx context.Context, p *model.Pedido) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *pedidoRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).Where("codigo = ?", codigo).First(&p).Error
	return &p, err
}

func (r *pedidoRepo) ListBySucursal(ctx context.Context, sucursalID uuid.UUID) ([]model.Pedido, error) {
	var pedidos []model.Pedido
	err := r.db.WithContext(ctx).
		Where("sucursal_id = ?", sucursalID).
		Order("created_at DESC").
		Find(&pedidos).Error
	return pedidos, err
}

func (r *pedidoRepo) ListByRestaurante(ctx context.Context, restauranteID uuid.UUID, fecha string) ([]PedidoConSucursal, error) {
	q := r.db.WithContext(ctx).Model(&model.Pedido{}).
		Select("pedidos.*, sucursales.nombre AS sucursal_nombre").
		Joins("JOIN sucursales ON sucursales.id = pedidos.sucursal_id").
		Where("sucursales.restaurante_id = ?", restauranteID)
	if fecha != "" {
		q = q.Where("pedidos.fecha = ?", fecha)
	}
	var rows []PedidoConSucursal
	err := q.Order("pedidos.created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *pedidoRepo) UpdateEstado(ctx context.Context, codigo, estado string) error {
	return r.db.WithContext(ctx).Model(&model.Pedido{}).
		Where("codigo = ?", codigo).Update("estado", estado).Error
}

func (r *pedidoRepo) Delete(ctx context.Context, codigo string) error {
	return r.db.WithContext(ctx).Where("codigo = ?", codigo).Delete(&model.Pedido{}).Error
}
