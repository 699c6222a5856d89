package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Codigo           string           `json:"codigo"            validate:"required,max=50"`
	Nombre           string           `json:"nombre"            validate:"required,min=2,max=200"`
	Descripcion      string           `json:"descripcion"`
	CategoriaID      uuid.UUID        `json:"categoria_id"      validate:"required"`
	RecursoID        *uuid.UUID       `json:"recurso_id"`
	Precio           decimal.Decimal  `json:"precio"            validate:"min=0"`
	PrecioOferta     *decimal.Decimal `json:"precio_oferta"`
	Stock            int              `json:"stock"             validate:"min=0"`
	StockMinimo      *int             `json:"stock_minimo"      validate:"omitempty,min=0"`
	Destacado        bool             `json:"destacado"`
	FechaPublicacion *time.Time       `json:"fecha_publicacion"`
	SoloSocios       bool             `json:"solo_socios"`
	Marca            string           `json:"marca"             validate:"max=100"`
	Modelo           string           `json:"modelo"            validate:"max=100"`
	Peso             *decimal.Decimal `json:"peso"`
	Dimensiones      string           `json:"dimensiones"       validate:"max=100"`
}

type ActualizarProductoRequest struct {
	Nombre       *string          `json:"nombre"        validate:"omitempty,min=2,max=200"`
	Descripcion  *string          `json:"descripcion"`
	CategoriaID  *uuid.UUID       `json:"categoria_id"`
	Precio       *decimal.Decimal `json:"precio"`
	PrecioOferta *decimal.Decimal `json:"precio_oferta"`
	// QuitarOferta clears precio_oferta; PrecioOferta is ignored when set.
	QuitarOferta bool  `json:"quitar_oferta"`
	StockMinimo  *int  `json:"stock_minimo"  validate:"omitempty,min=0"`
	Destacado    *bool `json:"destacado"`
	SoloSocios   *bool `json:"solo_socios"`
}

type AjustarStockRequest struct {
	ProductoID uuid.UUID `json:"producto_id" validate:"required"`
	Delta      int       `json:"delta"       validate:"required"`
	Motivo     string    `json:"motivo"      validate:"required,min=3"`
}

type CrearCategoriaProductoRequest struct {
	Nombre      string     `json:"nombre"      validate:"required,min=2,max=100"`
	Descripcion string     `json:"descripcion"`
	Slug        string     `json:"slug"        validate:"omitempty,max=120"`
	PadreID     *uuid.UUID `json:"padre_id"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Codigo      string
	Nombre      string
	CategoriaID *uuid.UUID
	Destacados  bool
	Page        int
	Limit       int
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID                  uuid.UUID        `json:"id"`
	Codigo              string           `json:"codigo"`
	Nombre              string           `json:"nombre"`
	Descripcion         string           `json:"descripcion,omitempty"`
	CategoriaID         uuid.UUID        `json:"categoria_id"`
	Precio              decimal.Decimal  `json:"precio"`
	PrecioOferta        *decimal.Decimal `json:"precio_oferta,omitempty"`
	PrecioActual        decimal.Decimal  `json:"precio_actual"`
	PorcentajeDescuento int              `json:"porcentaje_descuento"`
	Stock               int              `json:"stock"`
	StockMinimo         int              `json:"stock_minimo"`
	NecesitaReposicion  bool             `json:"necesita_reposicion"`
	Disponible          bool             `json:"disponible"`
	Destacado           bool             `json:"destacado"`
	SoloSocios          bool             `json:"solo_socios"`
	Activo              bool             `json:"activo"`
}

type ProductoListResponse struct {
	Data       []ProductoResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

type MovimientoStockResponse struct {
	ID            uuid.UUID  `json:"id"`
	ProductoID    uuid.UUID  `json:"producto_id"`
	Tipo          string     `json:"tipo"`
	Cantidad      int        `json:"cantidad"`
	StockAnterior int        `json:"stock_anterior"`
	StockNuevo    int        `json:"stock_nuevo"`
	Motivo        string     `json:"motivo"`
	ReferenciaID  *uuid.UUID `json:"referencia_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
