package worker

// whatsapp_worker.go
// Processes outbound confirmation sends from QueueWhatsApp.
// The webhook handler enqueues a job per ingested order; the worker decrypts
// the tenant's access token, sends the templated text through the circuit
// breaker with exponential backoff (max 3 attempts) and DLQs on exhaustion.
// Failures never reach the customer-facing webhook response.

import (
	"context"
	"encoding/json"
	"fmt"

	"ceats/internal/infra"
	"ceats/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ConfirmacionJobPayload is the job envelope sent to QueueWhatsApp.
type ConfirmacionJobPayload struct {
	IntegracionID string `json:"integracion_id"`
	To            string `json:"to"`     // customer wa_id
	Codigo        string `json:"codigo"` // pedido business key
	Total         string `json:"total"`
	Moneda        string `json:"moneda"`
	Attempts      int    `json:"attempts"`
}

type WhatsAppWorker struct {
	graph        *infra.GraphClient
	breaker      *infra.CircuitBreaker
	cipher       *infra.TokenCipher
	whatsappRepo repository.WhatsAppRepository
}

func NewWhatsAppWorker(
	graph *infra.GraphClient,
	breaker *infra.CircuitBreaker,
	cipher *infra.TokenCipher,
	whatsappRepo repository.WhatsAppRepository,
) *WhatsAppWorker {
	return &WhatsAppWorker{
		graph:        graph,
		breaker:      breaker,
		cipher:       cipher,
		whatsappRepo: whatsappRepo,
	}
}

// Process sends one order confirmation.
func (w *WhatsAppWorker) Process(ctx context.Context, rdb *redis.Client, raw json.RawMessage) {
	var payload ConfirmacionJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("whatsapp_worker: invalid payload")
		return
	}

	integracionID, err := uuid.Parse(payload.IntegracionID)
	if err != nil {
		log.Error().Str("integracion_id", payload.IntegracionID).Msg("whatsapp_worker: invalid integracion_id")
		return
	}

	integracion, err := w.whatsappRepo.FindByID(ctx, integracionID)
	if err != nil {
		log.Error().Err(err).Str("integracion_id", payload.IntegracionID).Msg("whatsapp_worker: integracion not found")
		return
	}

	accessToken, err := w.cipher.Decrypt(integracion.TokenCifrado)
	if err != nil {
		log.Error().Err(err).Str("integracion_id", payload.IntegracionID).Msg("whatsapp_worker: token decrypt failed")
		return
	}

	body := fmt.Sprintf(
		"¡Gracias por tu pedido! 🛵\n\nCódigo: %s\nTotal: %s %s\n\nTe avisaremos cuando esté listo.",
		payload.Codigo, payload.Total, payload.Moneda,
	)

	attempts := 0
	sendErr := withRetry(ctx, 3, func(attempt int) error {
		attempts = attempt + 1
		return w.breaker.Execute(func() error {
			_, err := w.graph.SendText(ctx, integracion.PhoneNumberID, accessToken, payload.To, body)
			if err != nil {
				log.Warn().
					Err(err).
					Int("attempt", attempts).
					Str("codigo", payload.Codigo).
					Msg("whatsapp_worker: send attempt failed, retrying")
			}
			return err
		})
	})

	if sendErr != nil {
		log.Error().Err(sendErr).Str("codigo", payload.Codigo).Msg("whatsapp_worker: confirmation failed after all retries")
		msg := sendErr.Error()
		_ = w.whatsappRepo.UpdateEstado(ctx, integracionID, integracion.Estado, &msg)
		SendToDLQ(ctx, rdb, QueueWhatsApp, "confirmacion", raw, sendErr.Error(), attempts)
		return
	}

	log.Info().
		Str("codigo", payload.Codigo).
		Str("to", payload.To).
		Msg("whatsapp_worker: confirmacion enviada")
}
