package model_test

import (
	"testing"
	"time"

	"github.com/nycamas/club/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarcarEliminado_FijaFechaUnaSolaVez(t *testing.T) {
	var b model.Base
	b.Activo = true

	primera := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	b.MarcarEliminado(primera)

	require.True(t, b.Eliminado())
	assert.False(t, b.Activo)
	assert.Equal(t, primera, b.DeletedAt.Time)

	segunda := primera.Add(48 * time.Hour)
	b.MarcarEliminado(segunda)

	assert.Equal(t, primera, b.DeletedAt.Time, "deleted_at must not be reset")
	assert.Equal(t, segunda, b.UpdatedAt)
	assert.False(t, b.Vivo())
}

func TestSumarMeses(t *testing.T) {
	cases := []struct {
		desde string
		meses int
		want  string
	}{
		{"2024-12-16", 1, "2025-01-16"},
		{"2024-01-31", 1, "2024-02-29"},
		{"2023-01-31", 1, "2023-02-28"},
		{"2024-11-01", 3, "2025-02-01"},
		{"2024-03-15", 12, "2025-03-15"},
		{"2024-02-29", 12, "2025-02-28"},
		{"2024-10-31", 26, "2026-12-31"},
	}
	for _, c := range cases {
		desde, err := time.Parse("2006-01-02", c.desde)
		require.NoError(t, err)
		got := model.SumarMeses(desde, c.meses)
		assert.Equal(t, c.want, got.Format("2006-01-02"), "%s + %d meses", c.desde, c.meses)
	}
}

func TestDiasEntre_IgnoraHora(t *testing.T) {
	a := time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2024, 5, 3, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 2, model.DiasEntre(a, b))
	assert.Equal(t, -2, model.DiasEntre(b, a))
}
