package infra

import (
	"fmt"

	"github.com/nycamas/club/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx. SQL logging is only
// enabled (at warn level) in development.
func NewDatabase(dsn, env string) (*gorm.DB, error) {
	level := logger.Silent
	if env == "development" {
		level = logger.Warn
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
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

	return db, nil
}

// Modelos lists every persisted entity in dependency-friendly order.
func Modelos() []any {
	return []any{
		// socios y suscripciones
		&model.Usuario{},
		&model.NumeroSocioContador{},
		&model.Beneficio{},
		&model.TipoSuscripcion{},
		&model.FormaPago{},
		&model.EstadoSuscripcion{},
		&model.Suscripcion{},
		&model.PagoSuscripcion{},
		// catálogo y recursos
		&model.Categoria{},
		&model.TipoRecurso{},
		&model.EstadoRecurso{},
		&model.EtiquetaRecurso{},
		&model.Recurso{},
		&model.MantenimientoRecurso{},
		// alquileres
		&model.EstadoAlquiler{},
		&model.Alquiler{},
		&model.DetalleAlquiler{},
		&model.Penalizacion{},
		&model.ReservaRecurso{},
		// tienda
		&model.CategoriaProducto{},
		&model.Producto{},
		&model.MovimientoStock{},
		&model.EstadoVenta{},
		&model.MetodoPago{},
		&model.Venta{},
		&model.DetalleVenta{},
		&model.Carrito{},
		&model.ItemCarrito{},
		// clases
		&model.CategoriaClase{},
		&model.Instructor{},
		&model.NivelClase{},
		&model.Clase{},
		&model.SesionClase{},
		&model.InscripcionClase{},
		&model.ValoracionClase{},
	}
}

// RunMigrations creates / updates all tables, applies the idempotent SQL
// patches GORM cannot express (sequences, partial indexes) and seeds the
// closed status families. Safe to run on every start.
func RunMigrations(db *gorm.DB) error {
	if err := applyPreMigrationPatches(db); err != nil {
		return fmt.Errorf("pre-migration patches: %w", err)
	}
	if err := db.AutoMigrate(Modelos()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	if err := seedEstados(db); err != nil {
		return fmt.Errorf("seed estados: %w", err)
	}
	return nil
}

// applyPreMigrationPatches prepares the database before AutoMigrate runs.
// gen_random_uuid() is built in from PostgreSQL 13; older servers need pgcrypto.
func applyPreMigrationPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"pgcrypto extension", `CREATE EXTENSION IF NOT EXISTS pgcrypto`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("%s: %w", p.descr, err)
		}
	}
	return nil
}

func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// code sequences: ALQ-<año>-<n>, VEN-<año>-<n>
		`CREATE SEQUENCE IF NOT EXISTS alquileres_codigo_seq`,
		`CREATE SEQUENCE IF NOT EXISTS ventas_codigo_seq`,
		// partial index for the availability reconciliation query
		`CREATE INDEX IF NOT EXISTS idx_detalles_alquiler_pendientes
		    ON detalles_alquiler (recurso_id) WHERE devuelto = false`,
		// partial index for the reservation expiry job
		`CREATE INDEX IF NOT EXISTS idx_reservas_recurso_pendientes
		    ON reservas_recurso (fecha_inicio) WHERE confirmada = false AND alquiler_id IS NULL`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}

// seedEstados inserts the closed status families. Existing codes are left
// untouched so display names edited by staff survive a restart.
func seedEstados(db *gorm.DB) error {
	if err := upsertPorCodigo(db, model.EstadosAlquiler); err != nil {
		return err
	}
	if err := upsertPorCodigo(db, model.EstadosVenta); err != nil {
		return err
	}
	return upsertPorCodigo(db, model.EstadosSuscripcion)
}

func upsertPorCodigo[T any](db *gorm.DB, filas []T) error {
	// copy: Create writes generated IDs back into the slice
	rows := append([]T(nil), filas...)
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "codigo"}},
		DoNothing: true,
	}).Create(&rows).Error
}
