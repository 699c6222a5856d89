package model

import "github.com/google/uuid"

// Categoria classifies club resources. Subcategories are removed together
// with their parent.
type Categoria struct {
	Base
	Nombre      string     `gorm:"size:100;not null"`
	Descripcion string     `gorm:"type:text"`
	Icono       string     `gorm:"size:50"`
	Slug        string     `gorm:"size:120;uniqueIndex;not null"`
	PadreID     *uuid.UUID `gorm:"type:uuid;index"`

	Padre *Categoria `gorm:"foreignKey:PadreID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default singular → plural logic for Spanish names.
func (Categoria) TableName() string { return "categorias" }

// TipoRecurso defines what can be done with a resource (rent it, sell it)
// and the maximum rental length in days (0 = unlimited).
type TipoRecurso struct {
	Base
	Nombre             string `gorm:"size:100;uniqueIndex;not null"`
	Descripcion        string `gorm:"type:text"`
	Alquilable         bool   `gorm:"not null;default:false"`
	Vendible           bool   `gorm:"not null;default:false"`
	RequiereDevolucion bool   `gorm:"not null"`
	TiempoMaxAlquiler  int    `gorm:"not null;default:0"`
}

func (TipoRecurso) TableName() string { return "tipos_recurso" }

// EstadoRecurso is the physical condition of a resource ("Disponible",
// "En mantenimiento", ...). Disponible decides whether resources in this
// state can be handed out at all.
type EstadoRecurso struct {
	Base
	Nombre      string `gorm:"size:50;uniqueIndex;not null"`
	Descripcion string `gorm:"type:text"`
	Disponible  bool   `gorm:"not null"`
	Color       string `gorm:"size:20;not null;default:'#000000'"`
}

func (EstadoRecurso) TableName() string { return "estados_recurso" }

// EtiquetaRecurso is a free-form tag shared by many resources.
type EtiquetaRecurso struct {
	Base
	Nombre string `gorm:"size:50;uniqueIndex;not null"`
	Color  string `gorm:"size:20;not null;default:'#000000'"`
}

func (EtiquetaRecurso) TableName() string { return "etiquetas_recurso" }
