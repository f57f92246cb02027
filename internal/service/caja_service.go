package service

import (
	"context"
	"errors"
	"time"

	"almacenpos/internal/config"
	"almacenpos/internal/dto"
	"almacenpos/internal/infra"
	"almacenpos/internal/model"
	"almacenpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CajaService interface {
	AbrirCaja(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error)
	SesionActiva(ctx context.Context) (*dto.SesionCajaResponse, error)
	RegistrarMovimientoManual(ctx context.Context, usuarioID uuid.UUID, req dto.MovimientoManualRequest) (*dto.MovimientoManualResponse, error)
	RecomputarTotales(ctx context.Context, sesionID uuid.UUID) (*dto.TotalesCaja, error)
	CerrarCaja(ctx context.Context, usuarioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.SesionCajaResponse, error)
	ObtenerSesion(ctx context.Context, id uuid.UUID) (*dto.SesionCajaResponse, error)
	Historial(ctx context.Context, page, limit int) ([]dto.SesionCajaResponse, int64, error)
	GenerarReporteCierre(ctx context.Context, sesionID uuid.UUID) (string, error)
}

type cajaService struct {
	repo      repository.CajaRepository
	ventaRepo repository.VentaRepository
	mailer    *infra.Mailer
	cfg       *config.Config
}

func NewCajaService(repo repository.CajaRepository, ventaRepo repository.VentaRepository, mailer *infra.Mailer, cfg *config.Config) CajaService {
	return &cajaService{repo: repo, ventaRepo: ventaRepo, mailer: mailer, cfg: cfg}
}

// AbrirCaja opens today's session. The in-transaction pre-check gives the
// friendly error; the partial unique index on (fecha) WHERE estado='abierta'
// is what actually stops two concurrent opens.
func (s *cajaService) AbrirCaja(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error) {
	hoy := time.Now().Format("2006-01-02")

	var sesion model.SesionCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		existing, err := s.repo.FindSesionAbiertaPorFechaTx(tx, hoy)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing != nil {
			return ErrCajaYaAbierta
		}
		sesion = model.SesionCaja{
			Fecha:          hoy,
			Estado:         model.SesionAbierta,
			UsuarioID:      usuarioID,
			MontoInicial:   req.MontoInicial,
			TotalCalculado: req.MontoInicial,
			AbiertaAt:      time.Now(),
		}
		return s.repo.CreateSesionTx(tx, &sesion)
	})
	if txErr != nil {
		return nil, txErr
	}
	return sesionToResponse(&sesion, nil), nil
}

// SesionActiva returns today's open session with freshly recomputed totals.
func (s *cajaService) SesionActiva(ctx context.Context) (*dto.SesionCajaResponse, error) {
	sesion, err := s.activa(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.RecomputarTotales(ctx, sesion.ID); err != nil {
		return nil, err
	}
	return s.ObtenerSesion(ctx, sesion.ID)
}

func (s *cajaService) activa(ctx context.Context) (*model.SesionCaja, error) {
	hoy := time.Now().Format("2006-01-02")
	sesion, err := s.repo.FindSesionAbiertaPorFecha(ctx, hoy)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSinSesionAbierta
		}
		return nil, err
	}
	return sesion, nil
}

// RegistrarMovimientoManual appends an immutable ingreso/gasto to the open
// session. Movements are never edited; a mistaken gasto is compensated with
// an ingreso.
func (s *cajaService) RegistrarMovimientoManual(ctx context.Context, usuarioID uuid.UUID, req dto.MovimientoManualRequest) (*dto.MovimientoManualResponse, error) {
	sesion, err := s.activa(ctx)
	if err != nil {
		return nil, err
	}

	mov := model.MovimientoManual{
		SesionCajaID: sesion.ID,
		Tipo:         model.TipoMovimientoManual(req.Tipo),
		Concepto:     req.Concepto,
		Monto:        req.Monto,
		UsuarioID:    usuarioID,
	}
	if err := s.repo.CreateMovimientoManual(ctx, &mov); err != nil {
		return nil, err
	}

	if _, err := s.RecomputarTotales(ctx, sesion.ID); err != nil {
		log.Warn().Err(err).Str("sesion_id", sesion.ID.String()).Msg("caja: recompute after manual movement failed")
	}

	return movimientoManualToResponse(&mov), nil
}

// totalesDesdeStreams rebuilds the rollup from the venta and movimiento
// manual streams. Both streams are append-only, so the sums stay stable while
// the session row itself is held under lock.
//
// total_calculado = monto_inicial + total_ventas − total_gastos
// Extra ingresos are reported separately; they are drawer cash, not revenue.
func (s *cajaService) totalesDesdeStreams(ctx context.Context, sesion *model.SesionCaja) (*dto.TotalesCaja, error) {
	porMetodo, err := s.ventaRepo.SumPorMetodo(ctx, sesion.ID)
	if err != nil {
		return nil, err
	}
	ingresos, gastos, err := s.repo.SumMovimientosManuales(ctx, sesion.ID)
	if err != nil {
		return nil, err
	}

	t := &dto.TotalesCaja{
		TotalEfectivo:      porMetodo[model.PagoEfectivo],
		TotalTarjeta:       porMetodo[model.PagoTarjeta],
		TotalTransferencia: porMetodo[model.PagoTransferencia],
		TotalGastos:        gastos,
		TotalIngresosExtra: ingresos,
	}
	t.TotalVentas = t.TotalEfectivo.Add(t.TotalTarjeta).Add(t.TotalTransferencia)
	t.TotalCalculado = sesion.MontoInicial.Add(t.TotalVentas).Sub(gastos)
	return t, nil
}

// RecomputarTotales rebuilds the cached Total* columns of a session from the
// venta and movimiento manual streams and persists them. The stored values
// are never trusted: any read path or async job may call this and the fresh
// result always wins. The write is column-scoped to the derived values, so a
// rollup that raced a close can refresh the totals but never flip estado or
// wipe monto_final/cerrada_at.
func (s *cajaService) RecomputarTotales(ctx context.Context, sesionID uuid.UUID) (*dto.TotalesCaja, error) {
	var totales *dto.TotalesCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sesion, err := s.repo.FindSesionByIDTx(tx, sesionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSesionNoEncontrada
			}
			return err
		}

		totales, err = s.totalesDesdeStreams(ctx, sesion)
		if err != nil {
			return err
		}

		var diferencia *decimal.Decimal
		if sesion.Estado == model.SesionCerrada && sesion.MontoFinal != nil {
			d := sesion.MontoFinal.Sub(totales.TotalCalculado)
			diferencia = &d
		}
		return s.repo.UpdateTotalesTx(tx, sesionID, totales, diferencia)
	})
	if txErr != nil {
		return nil, txErr
	}
	return totales, nil
}

// CerrarCaja recomputes the totals one final time, records the counted amount
// and the difference, and closes the session, all in one transaction. The
// closing UPDATE is conditioned on estado='abierta' so a session can only be
// closed once. An unbalanced count does not block the close: diferencia is
// informational.
func (s *cajaService) CerrarCaja(ctx context.Context, usuarioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.SesionCajaResponse, error) {
	hoy := time.Now().Format("2006-01-02")

	var sesionID uuid.UUID
	var diferencia decimal.Decimal
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sesion, err := s.repo.FindSesionAbiertaPorFechaTx(tx, hoy)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSinSesionAbierta
			}
			return err
		}
		sesionID = sesion.ID

		totales, err := s.totalesDesdeStreams(ctx, sesion)
		if err != nil {
			return err
		}

		diferencia = req.MontoFinal.Sub(totales.TotalCalculado)
		applied, err := s.repo.CerrarSesionTx(tx, sesion.ID, req.MontoFinal, diferencia, totales, time.Now())
		if err != nil {
			return err
		}
		if !applied {
			return ErrCajaCerrada
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if !diferencia.IsZero() {
		log.Warn().
			Str("sesion_id", sesionID.String()).
			Str("diferencia", diferencia.String()).
			Msg("caja: sesión cerrada con diferencia")
	}

	return s.ObtenerSesion(ctx, sesionID)
}

func (s *cajaService) ObtenerSesion(ctx context.Context, id uuid.UUID) (*dto.SesionCajaResponse, error) {
	sesion, err := s.repo.FindSesionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSesionNoEncontrada
		}
		return nil, err
	}
	movs, err := s.repo.ListMovimientosManuales(ctx, id)
	if err != nil {
		return nil, err
	}
	return sesionToResponse(sesion, movs), nil
}

func (s *cajaService) Historial(ctx context.Context, page, limit int) ([]dto.SesionCajaResponse, int64, error) {
	sesiones, total, err := s.repo.ListSesiones(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.SesionCajaResponse, 0, len(sesiones))
	for i := range sesiones {
		resp = append(resp, *sesionToResponse(&sesiones[i], nil))
	}
	return resp, total, nil
}

// GenerarReporteCierre renders the session's closing PDF and, when an alert
// address is configured, emails it best-effort. Returns the file path.
func (s *cajaService) GenerarReporteCierre(ctx context.Context, sesionID uuid.UUID) (string, error) {
	if _, err := s.RecomputarTotales(ctx, sesionID); err != nil {
		return "", err
	}
	sesion, err := s.repo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return "", err
	}
	movs, err := s.repo.ListMovimientosManuales(ctx, sesionID)
	if err != nil {
		return "", err
	}

	path, err := infra.GenerateCierreCajaPDF(sesion, movs, s.cfg.NombreNegocio, s.cfg.PDFStoragePath)
	if err != nil {
		return "", err
	}

	if s.mailer != nil && s.cfg.AlertasEmail != "" {
		subject := "Cierre de caja " + sesion.Fecha
		body := "Se adjunta el reporte de cierre de caja del " + sesion.Fecha + "."
		if err := s.mailer.Send(s.cfg.AlertasEmail, subject, body, path); err != nil {
			log.Warn().Err(err).Str("sesion_id", sesionID.String()).Msg("caja: failed to email cierre report")
		}
	}
	return path, nil
}

func sesionToResponse(s *model.SesionCaja, movs []model.MovimientoManual) *dto.SesionCajaResponse {
	resp := &dto.SesionCajaResponse{
		ID:           s.ID.String(),
		Fecha:        s.Fecha,
		Estado:       string(s.Estado),
		UsuarioID:    s.UsuarioID.String(),
		MontoInicial: s.MontoInicial,
		MontoFinal:   s.MontoFinal,
		Totales: dto.TotalesCaja{
			TotalVentas:        s.TotalVentas,
			TotalEfectivo:      s.TotalEfectivo,
			TotalTarjeta:       s.TotalTarjeta,
			TotalTransferencia: s.TotalTransferencia,
			TotalGastos:        s.TotalGastos,
			TotalIngresosExtra: s.TotalIngresosExtra,
			TotalCalculado:     s.TotalCalculado,
		},
		Diferencia: s.Diferencia,
		AbiertaAt:  s.AbiertaAt.Format(time.RFC3339),
	}
	if s.Usuario != nil {
		resp.Usuario = s.Usuario.Nombre
	}
	if s.CerradaAt != nil {
		at := s.CerradaAt.Format(time.RFC3339)
		resp.CerradaAt = &at
	}
	for i := range movs {
		resp.Movimientos = append(resp.Movimientos, *movimientoManualToResponse(&movs[i]))
	}
	return resp
}

func movimientoManualToResponse(m *model.MovimientoManual) *dto.MovimientoManualResponse {
	return &dto.MovimientoManualResponse{
		ID:        m.ID.String(),
		Tipo:      string(m.Tipo),
		Concepto:  m.Concepto,
		Monto:     m.Monto,
		UsuarioID: m.UsuarioID.String(),
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}
