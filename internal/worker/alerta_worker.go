package worker

// alerta_worker.go
// Processes low-stock alert jobs from QueueAlertaStock.
// Sends an email to the configured destination when a product has fallen to
// or below its stock mínimo. A Redis SETNX key with 24h TTL deduplicates
// alerts per product so a busy afternoon does not flood the inbox.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"almacenpos/internal/infra"
	"almacenpos/internal/model"
	"almacenpos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const alertaDedupTTL = 24 * time.Hour

// AlertaStockWorker processes low-stock alert jobs from QueueAlertaStock.
type AlertaStockWorker struct {
	productoRepo repository.ProductoRepository
	mailer       *infra.Mailer
	rdb          *redis.Client
	destinatario string
	negocio      string
}

func NewAlertaStockWorker(productoRepo repository.ProductoRepository, mailer *infra.Mailer, rdb *redis.Client, destinatario, negocio string) *AlertaStockWorker {
	return &AlertaStockWorker{
		productoRepo: productoRepo,
		mailer:       mailer,
		rdb:          rdb,
		destinatario: destinatario,
		negocio:      negocio,
	}
}

// Process re-reads the product and emails an alert when it is still at or
// below its minimum. Stock may have been replenished between the sale and
// this job running, so the state is always re-checked here.
func (w *AlertaStockWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload AlertaStockPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alerta_worker: invalid payload")
		return nil
	}
	productoID, err := uuid.Parse(payload.ProductoID)
	if err != nil {
		log.Error().Str("producto_id", payload.ProductoID).Msg("alerta_worker: invalid producto_id")
		return nil
	}
	if w.destinatario == "" {
		log.Debug().Msg("alerta_worker: no destination configured, skipping")
		return nil
	}

	p, err := w.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		return fmt.Errorf("alerta_worker: producto %s: %w", productoID, err)
	}
	estado := p.Estado()
	if estado == model.ProductoActivo {
		return nil // replenished in the meantime
	}

	dedupKey := "alerta_stock:" + productoID.String()
	ok, err := w.rdb.SetNX(ctx, dedupKey, time.Now().UTC().Format(time.RFC3339), alertaDedupTTL).Result()
	if err != nil {
		log.Warn().Err(err).Msg("alerta_worker: dedup check failed, sending anyway")
	} else if !ok {
		return nil // already alerted within the TTL
	}

	subject := fmt.Sprintf("[%s] Stock bajo: %s", w.negocio, p.Nombre)
	body := fmt.Sprintf(
		"El producto %s (código %s) tiene stock %d con mínimo configurado %d (estado: %s).\n\nRevisar y generar orden de compra si corresponde.",
		p.Nombre, p.Codigo, p.Stock, p.StockMinimo, estado,
	)
	if err := w.mailer.Send(w.destinatario, subject, body, ""); err != nil {
		return fmt.Errorf("alerta_worker: send email: %w", err)
	}
	log.Info().Str("producto", p.Codigo).Int("stock", p.Stock).Msg("alerta_worker: low stock alert sent")
	return nil
}
