package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"almacenpos/internal/dto"
	"almacenpos/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecomputer struct {
	llamadas []uuid.UUID
	err      error
}

func (s *stubRecomputer) RecomputarTotales(_ context.Context, sesionID uuid.UUID) (*dto.TotalesCaja, error) {
	s.llamadas = append(s.llamadas, sesionID)
	if s.err != nil {
		return nil, s.err
	}
	return &dto.TotalesCaja{TotalCalculado: decimal.NewFromFloat(150)}, nil
}

var _ worker.TotalesRecomputer = (*stubRecomputer)(nil)

func TestRollupWorker_Process(t *testing.T) {
	recomputer := &stubRecomputer{}
	w := worker.NewRollupWorker(recomputer)
	sesionID := uuid.New()

	payload, err := json.Marshal(worker.RollupCajaPayload{SesionID: sesionID.String()})
	require.NoError(t, err)

	require.NoError(t, w.Process(context.Background(), payload))
	require.Len(t, recomputer.llamadas, 1)
	assert.Equal(t, sesionID, recomputer.llamadas[0])
}

func TestRollupWorker_PayloadInvalido(t *testing.T) {
	recomputer := &stubRecomputer{}
	w := worker.NewRollupWorker(recomputer)

	// a malformed payload is dropped, never retried
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{`)))
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{"sesion_id":"no-es-uuid"}`)))
	assert.Empty(t, recomputer.llamadas)
}

func TestRollupWorker_ErrorReintenta(t *testing.T) {
	recomputer := &stubRecomputer{err: errors.New("db down")}
	w := worker.NewRollupWorker(recomputer)

	payload, err := json.Marshal(worker.RollupCajaPayload{SesionID: uuid.NewString()})
	require.NoError(t, err)

	// a recompute failure surfaces so the pool re-enqueues the job
	assert.Error(t, w.Process(context.Background(), payload))
}
