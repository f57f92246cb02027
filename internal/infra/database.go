package infra

import (
	"fmt"

	"almacenpos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (sequences, partial unique indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates / updates the schema. Also used by integration tests
// against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Proveedor{},
		&model.Cliente{},
		&model.Producto{},
		&model.Movimiento{},
		&model.OrdenCompra{},
		&model.OrdenCompraItem{},
		&model.Ajuste{},
		&model.SesionCaja{},
		&model.MovimientoManual{},
		&model.Venta{},
		&model.VentaItem{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement uses IF NOT EXISTS semantics so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Correlative sale numbers. nextval() inside the sale transaction gives
		// gap-tolerant but strictly increasing numbers under concurrency.
		{"sequence ventas_numero_venta_seq",
			`CREATE SEQUENCE IF NOT EXISTS ventas_numero_venta_seq START 1`},
		{"sequence ordenes_numero_orden_seq",
			`CREATE SEQUENCE IF NOT EXISTS ordenes_numero_orden_seq START 1`},

		// At most one sesión abierta per calendar day. The service pre-checks
		// inside the transaction; this index is the authoritative guard against
		// two concurrent opens racing past the pre-check.
		{"partial unique index one open session per day", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uniq_sesion_abierta_por_fecha') THEN
    CREATE UNIQUE INDEX uniq_sesion_abierta_por_fecha
        ON sesiones_caja (fecha)
        WHERE estado = 'abierta';
  END IF;
END $$`},

		// pgcrypto provides gen_random_uuid() on Postgres < 13.
		{"extension pgcrypto",
			`CREATE EXTENSION IF NOT EXISTS pgcrypto`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
