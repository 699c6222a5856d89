package repository_test

import (
	"context"
	"strings"
	"testing"

	"github.com/nycamas/club/internal/model"
	"github.com/nycamas/club/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRun opens a gorm handle that only renders SQL; nothing reaches a server.
// Every rendered statement is appended to the returned slice.
func dryRun(t *testing.T) (*gorm.DB, *[]string) {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=localhost user=club dbname=club sslmode=disable"), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	var sqls []string
	capturar := func(d *gorm.DB) { sqls = append(sqls, d.Statement.SQL.String()) }
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("test:capturar_create", capturar))
	require.NoError(t, db.Callback().Update().After("gorm:update").Register("test:capturar_update", capturar))
	return db, &sqls
}

func TestCrear_CerosExplicitosSeInsertan(t *testing.T) {
	db, sqls := dryRun(t)
	ctx := context.Background()

	rec := model.Recurso{
		Base:               model.Base{Activo: true},
		Codigo:             "KAY-01",
		Nombre:             "Kayak",
		CategoriaID:        uuid.New(),
		TipoID:             uuid.New(),
		EstadoID:           uuid.New(),
		CantidadTotal:      3,
		CantidadDisponible: 0,
	}
	require.NoError(t, repository.NewRecursoRepository(db).Crear(ctx, &rec))
	assert.Equal(t, 0, rec.CantidadDisponible)
	require.NotEmpty(t, *sqls)
	assert.Contains(t, (*sqls)[0], `"cantidad_disponible"`)

	p := model.Producto{Base: model.Base{Activo: true}, Codigo: "GOR-01", Nombre: "Gorra", CategoriaID: uuid.New(), StockMinimo: 0}
	require.NoError(t, db.WithContext(ctx).Create(&p).Error)
	assert.Equal(t, 0, p.StockMinimo)
	assert.Contains(t, (*sqls)[1], `"stock_minimo"`)

	plan := model.TipoSuscripcion{Base: model.Base{Activo: true}, Nombre: "Básico", MaxAlquileresSimultaneos: 0, MaxReservasClases: 0}
	require.NoError(t, db.WithContext(ctx).Create(&plan).Error)
	assert.Zero(t, plan.MaxAlquileresSimultaneos)
	assert.Zero(t, plan.MaxReservasClases)
	assert.Contains(t, (*sqls)[2], `"max_alquileres_simultaneos"`)
}

func TestActualizarTx_NoEscribeDisponible(t *testing.T) {
	db, sqls := dryRun(t)

	rec := model.Recurso{
		Base:               model.Base{ID: uuid.New(), Activo: true},
		Codigo:             "KAY-01",
		Nombre:             "Kayak renovado",
		CantidadTotal:      4,
		CantidadDisponible: 9,
	}
	require.NoError(t, repository.NewRecursoRepository(db).ActualizarTx(context.Background(), db, &rec))
	require.Len(t, *sqls, 1)
	sql := (*sqls)[0]
	assert.True(t, strings.HasPrefix(sql, "UPDATE"), sql)
	assert.Contains(t, sql, `"cantidad_total"`)
	assert.NotContains(t, sql, `"cantidad_disponible"`)
}
