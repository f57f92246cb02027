package service

import (
	"context"

	"gorm.io/gorm"
)

// runTx ejecuta fn dentro de una transacción de base de datos. Cuando el
// repositorio no expone una conexión real (stubs en tests), fn se ejecuta
// directamente con tx nil.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
