package model

import "errors"

// Domain errors returned by entity methods and wrapped by the service layer.
var (
	ErrEstadoNoEncontrado   = errors.New("estado no encontrado")
	ErrSinFechaFin          = errors.New("la suscripción no tiene fecha de fin")
	ErrPeriodicidadInvalida = errors.New("periodicidad inválida")
	ErrPeriodosInvalidos    = errors.New("la cantidad de períodos debe ser mayor a cero")
	ErrFechasInvalidas      = errors.New("la fecha de fin no puede ser anterior a la de inicio")
	ErrCantidadInvalida     = errors.New("la cantidad debe ser mayor a cero")
	ErrStockInsuficiente    = errors.New("stock insuficiente")
	ErrSinDisponibilidad    = errors.New("no hay unidades disponibles del recurso")
	ErrNoAlquilable         = errors.New("el recurso no es alquilable")
	ErrSinPlazas            = errors.New("no quedan plazas en la sesión")
	ErrSesionCancelada      = errors.New("la sesión está cancelada")
	ErrPuntuacionInvalida   = errors.New("la puntuación debe estar entre 1 y 5")
	ErrYaDevuelto           = errors.New("el alquiler ya fue devuelto")
	ErrCarritoVacio         = errors.New("el carrito está vacío")
)
