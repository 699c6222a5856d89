package dto

import "github.com/google/uuid"

// ── Request DTOs ──────────────────────────────────────────────────────────────

type CrearCategoriaRequest struct {
	Nombre      string     `json:"nombre"      validate:"required,min=2,max=100"`
	Descripcion string     `json:"descripcion"`
	Icono       string     `json:"icono"       validate:"max=50"`
	Slug        string     `json:"slug"        validate:"omitempty,max=120"`
	PadreID     *uuid.UUID `json:"padre_id"`
}

type ActualizarCategoriaRequest struct {
	Nombre      *string `json:"nombre"      validate:"omitempty,min=2,max=100"`
	Descripcion *string `json:"descripcion"`
	Icono       *string `json:"icono"       validate:"omitempty,max=50"`
	Activo      *bool   `json:"activo"`
}

type CrearTipoRecursoRequest struct {
	Nombre             string `json:"nombre"              validate:"required,min=2,max=100"`
	Descripcion        string `json:"descripcion"`
	Alquilable         bool   `json:"alquilable"`
	Vendible           bool   `json:"vendible"`
	RequiereDevolucion bool   `json:"requiere_devolucion"`
	TiempoMaxAlquiler  int    `json:"tiempo_max_alquiler" validate:"min=0"`
}

type CrearEstadoRecursoRequest struct {
	Nombre      string `json:"nombre"      validate:"required,min=2,max=50"`
	Descripcion string `json:"descripcion"`
	Disponible  bool   `json:"disponible"`
	Color       string `json:"color"       validate:"omitempty,max=20"`
}

type CrearEtiquetaRequest struct {
	Nombre string `json:"nombre" validate:"required,min=1,max=50"`
	Color  string `json:"color"  validate:"omitempty,max=20"`
}

// ── Response DTOs ─────────────────────────────────────────────────────────────

type CategoriaResponse struct {
	ID          uuid.UUID  `json:"id"`
	Nombre      string     `json:"nombre"`
	Descripcion string     `json:"descripcion,omitempty"`
	Icono       string     `json:"icono,omitempty"`
	Slug        string     `json:"slug"`
	PadreID     *uuid.UUID `json:"padre_id,omitempty"`
	Activo      bool       `json:"activo"`
}
