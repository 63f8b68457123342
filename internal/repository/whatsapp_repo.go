package repository

import (
	"context"

	"ceats/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WhatsAppRepository interface {
	// Upsert keys on phone_number_id so re-configuring a number replaces the
	// stored credentials instead of duplicating the channel.
	Upsert(ctx context.Context, w *model.WhatsAppIntegration) error
	FindByPhoneNumberID(ctx context.Context, phoneNumberID string) (*model.WhatsAppIntegration, error)
	// FindByVerifyToken serves Meta's GET handshake, which carries no
	// phone_number_id — only the token we handed to the dashboard.
	FindByVerifyToken(ctx context.Context, verifyToken string) (*model.WhatsAppIntegration, error)
	FindByRestaurante(ctx context.Context, restauranteID uuid.UUID) ([]model.WhatsAppIntegration, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.WhatsAppIntegration, error)
	UpdateEstado(ctx context.Context, id uuid.UUID, estado string, ultimoError *string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type whatsappRepo struct{ db *gorm.DB }

func NewWhatsAppRepository(db *gorm.DB) WhatsAppRepository { return &whatsappRepo{db: db} }

func (r *whatsappRepo) Upsert(ctx context.Context, w *model.WhatsAppIntegration) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "phone_number_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"restaurante_id", "sucursal_id", "waba_id", "token_cifrado",
			"verify_token", "api_version", "estado", "updated_at",
		}),
	}).Create(w).Error
}

func (r *whatsappRepo) FindByPhoneNumberID(ctx context.Context, phoneNumberID string) (*model.WhatsAppIntegration, error) {
	var w model.WhatsAppIntegration
	err := r.db.WithContext(ctx).Where("phone_number_id = ?", phoneNumberID).First(&w).Error
	return &w, err
}

func (r *whatsappRepo) FindByVerifyToken(ctx context.Context, verifyToken string) (*model.WhatsAppIntegration, error) {
	var w model.WhatsAppIntegration
	err := r.db.WithContext(ctx).Where("verify_token = ?", verifyToken).First(&w).Error
	return &w, err
}

func (r *whatsappRepo) FindByRestaurante(ctx context.Context, restauranteID uuid.UUID) ([]model.WhatsAppIntegration, error) {
	var list []model.WhatsAppIntegration
	err := r.db.WithContext(ctx).
		Where("restaurante_id = ?", restauranteID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *whatsappRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.WhatsAppIntegration, error) {
	var w model.WhatsAppIntegration
	err := r.db.WithContext(ctx).First(&w, "id = ?", id).Error
	return &w, err
}

func (r *whatsappRepo) UpdateEstado(ctx context.Context, id uuid.UUID, estado string, ultimoError *string) error {
	return r.db.WithContext(ctx).Model(&model.WhatsAppIntegration{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"estado": estado, "ultimo_error": ultimoError}).Error
}

func (r *whatsappRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.WhatsAppIntegration{}, "id = ?", id).Error
}
