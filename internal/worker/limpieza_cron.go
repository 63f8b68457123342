package worker

// limpieza_cron.go
// Background goroutine that periodically nulls expired verification codes so
// a stale 6-digit code can never verify a branch, even before the next
// verification attempt checks the expiry itself.

import (
	"context"
	"time"

	"ceats/internal/repository"

	"github.com/rs/zerolog/log"
)

const limpiezaInterval = 30 * time.Minute

// StartLimpiezaCron launches the sweep goroutine; it stops with ctx.
func StartLimpiezaCron(ctx context.Context, sucursalRepo repository.SucursalRepository) {
	go func() {
		ticker := time.NewTicker(limpiezaInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("limpieza_cron: shutting down")
				return
			case <-ticker.C:
				n, err := sucursalRepo.LimpiarCodigosExpirados(ctx)
				if err != nil {
					log.Error().Err(err).Msg("limpieza_cron: sweep failed")
					continue
				}
				if n > 0 {
					log.Info().Int64("codigos_limpiados", n).Msg("limpieza_cron: expired codes cleared")
				}
			}
		}
	}()
}
