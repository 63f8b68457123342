package worker

// email_worker.go
// Processes verification-code email jobs from QueueEmail. Registration and
// branch-creation flows enqueue here so SMTP latency never blocks a request
// and SMTP failures never fail the primary operation.

import (
	"context"
	"encoding/json"

	"ceats/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Destino string `json:"destino"` // recipient name shown in the template
	Codigo  string `json:"codigo"`
}

type EmailWorker struct {
	mailer *infra.Mailer
}

func NewEmailWorker(mailer *infra.Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends the verification-code mail.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email — skipping")
		return
	}

	if err := w.mailer.SendCodigoVerificacion(payload.ToEmail, payload.Destino, payload.Codigo); err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("email_worker: failed to send email")
		return
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: codigo de verificacion enviado")
}
