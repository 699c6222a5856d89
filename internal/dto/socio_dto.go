package dto

import (
	"time"

	"github.com/google/uuid"
)

type AltaSocioRequest struct {
	Username        string     `json:"username"         validate:"required,min=3,max=150"`
	Nombre          string     `json:"nombre"           validate:"required,max=150"`
	Apellido        string     `json:"apellido"         validate:"max=150"`
	Email           *string    `json:"email"            validate:"omitempty,email"`
	DNI             string     `json:"dni"              validate:"max=20"`
	FechaNacimiento *time.Time `json:"fecha_nacimiento"`
	Telefono        string     `json:"telefono"         validate:"max=20"`
	Direccion       string     `json:"direccion"`
	CodigoPostal    string     `json:"codigo_postal"    validate:"max=10"`
	Ciudad          string     `json:"ciudad"           validate:"max=100"`
	Provincia       string     `json:"provincia"        validate:"max=100"`
	Pais            string     `json:"pais"             validate:"max=100"`
	// EsSocio=false registers staff or shop customers without a member number.
	EsSocio               bool           `json:"es_socio"`
	RecibirNotificaciones *bool          `json:"recibir_notificaciones"`
	Preferencias          map[string]any `json:"preferencias"`
}

type ActualizarSocioRequest struct {
	Nombre                *string        `json:"nombre"   validate:"omitempty,max=150"`
	Apellido              *string        `json:"apellido" validate:"omitempty,max=150"`
	Email                 *string        `json:"email"    validate:"omitempty,email"`
	Telefono              *string        `json:"telefono" validate:"omitempty,max=20"`
	Direccion             *string        `json:"direccion"`
	RecibirNotificaciones *bool          `json:"recibir_notificaciones"`
	Preferencias          map[string]any `json:"preferencias"`
}

type SocioFilter struct {
	Nombre     string
	SoloSocios bool
	Page       int
	Limit      int
}

type SocioResponse struct {
	ID             uuid.UUID  `json:"id"`
	Username       string     `json:"username"`
	NombreCompleto string     `json:"nombre_completo"`
	Email          *string    `json:"email,omitempty"`
	EsSocio        bool       `json:"es_socio"`
	NumeroSocio    *string    `json:"numero_socio,omitempty"`
	FechaAlta      *time.Time `json:"fecha_alta,omitempty"`
	Activo         bool       `json:"activo"`
}
