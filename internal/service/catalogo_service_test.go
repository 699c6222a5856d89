package service_test

import (
	"context"
	"testing"

	"github.com/nycamas/club/internal/dto"
	"github.com/nycamas/club/internal/repository"
	"github.com/nycamas/club/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogo_CrearCategoriaSlug(t *testing.T) {
	repo := newStubCatalogoRepo()
	svc := service.NewCatalogoService(repo)
	ctx := context.Background()

	c, err := svc.CrearCategoria(ctx, dto.CrearCategoriaRequest{Nombre: "Vela Ligera Ñ"})
	require.NoError(t, err)
	assert.Equal(t, "vela-ligera-n", c.Slug)
	assert.True(t, c.Activo)

	_, err = svc.CrearCategoria(ctx, dto.CrearCategoriaRequest{Nombre: "vela ligera ñ"})
	assert.ErrorIs(t, err, service.ErrSlugDuplicado)

	// a logically deleted category still owns its slug
	require.NoError(t, svc.Eliminar(ctx, service.CatalogoCategoria, c.ID))
	_, err = svc.CrearCategoria(ctx, dto.CrearCategoriaRequest{Nombre: "Otra", Slug: "vela-ligera-n"})
	assert.ErrorIs(t, err, service.ErrSlugDuplicado)

	padre := uuid.New()
	_, err = svc.CrearCategoria(ctx, dto.CrearCategoriaRequest{Nombre: "Remo", PadreID: &padre})
	assert.Error(t, err)

	hija, err := svc.CrearCategoria(ctx, dto.CrearCategoriaRequest{Nombre: "Piragüismo", Slug: "piraguas"})
	require.NoError(t, err)
	assert.Equal(t, "piraguas", hija.Slug)
}

func TestCatalogo_EliminarDefinitivoEnUso(t *testing.T) {
	repo := newStubCatalogoRepo()
	svc := service.NewCatalogoService(repo)
	ctx := context.Background()
	usado := repo.seedEstado("Disponible", true)
	libre := repo.seedEstado("Retirado", false)
	repo.enUso[usado.ID] = true

	err := svc.EliminarDefinitivo(ctx, service.CatalogoEstado, usado.ID)
	assert.ErrorIs(t, err, repository.ErrReferencia)
	assert.False(t, repo.definitivos[usado.ID])

	require.NoError(t, svc.EliminarDefinitivo(ctx, service.CatalogoEstado, libre.ID))
	assert.True(t, repo.definitivos[libre.ID])

	err = svc.EliminarDefinitivo(ctx, service.Catalogo("marca"), libre.ID)
	assert.ErrorIs(t, err, service.ErrCatalogoInvalido)
}

func TestCatalogo_CrearEstadoYEtiqueta(t *testing.T) {
	repo := newStubCatalogoRepo()
	svc := service.NewCatalogoService(repo)
	ctx := context.Background()

	e, err := svc.CrearEstado(ctx, dto.CrearEstadoRecursoRequest{Nombre: "En reparación"})
	require.NoError(t, err)
	assert.Equal(t, "#000000", e.Color)
	assert.False(t, e.Disponible)

	et, err := svc.CrearEtiqueta(ctx, dto.CrearEtiquetaRequest{Nombre: "Nuevo", Color: "#00ff00"})
	require.NoError(t, err)
	assert.Equal(t, "#00ff00", et.Color)

	_, err = svc.CrearTipo(ctx, dto.CrearTipoRecursoRequest{Nombre: "Material", Alquilable: true})
	require.NoError(t, err)
	_, err = svc.CrearTipo(ctx, dto.CrearTipoRecursoRequest{Nombre: "Material"})
	assert.Error(t, err)
}
