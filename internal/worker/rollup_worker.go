package worker

// rollup_worker.go
// Recomputes the cached totals of a sesión de caja from the venta and
// movimiento manual streams. The stored Total* columns are only a cache;
// this worker (and every read path) overwrites them from source data.

import (
	"context"
	"encoding/json"
	"fmt"

	"almacenpos/internal/dto"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TotalesRecomputer recomputes and persists one session's rolled-up totals.
// Implemented by the caja service; declared here to keep the dependency
// pointing from service to worker, not back.
type TotalesRecomputer interface {
	RecomputarTotales(ctx context.Context, sesionID uuid.UUID) (*dto.TotalesCaja, error)
}

// RollupWorker processes jobs from QueueRollupCaja.
type RollupWorker struct {
	caja TotalesRecomputer
}

func NewRollupWorker(caja TotalesRecomputer) *RollupWorker {
	return &RollupWorker{caja: caja}
}

// Process recomputes the totals of the session named in the payload.
// Returns an error to trigger a retry; a malformed payload is dropped.
func (w *RollupWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload RollupCajaPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("rollup_worker: invalid payload")
		return nil
	}
	sesionID, err := uuid.Parse(payload.SesionID)
	if err != nil {
		log.Error().Str("sesion_id", payload.SesionID).Msg("rollup_worker: invalid sesion_id")
		return nil
	}

	totales, err := w.caja.RecomputarTotales(ctx, sesionID)
	if err != nil {
		return fmt.Errorf("rollup_worker: recompute %s: %w", sesionID, err)
	}
	log.Debug().
		Str("sesion_id", sesionID.String()).
		Str("total_calculado", totales.TotalCalculado.String()).
		Msg("rollup_worker: totals recomputed")
	return nil
}
