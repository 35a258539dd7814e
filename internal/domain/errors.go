package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrForbidden             = errors.New("acceso denegado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrItemNotFound          = errors.New("ítem inexistente en la nota")
	ErrUnknownField          = errors.New("campo desconocido")
	ErrValidationFailed      = errors.New("la nota tiene errores de validación")
	ErrSubmissionInFlight    = errors.New("ya hay un envío en curso")
	ErrSessionClosed         = errors.New("la sesión ya fue confirmada")
	ErrSessionLoading        = errors.New("la nota aún no fue cargada")
	ErrEnrichmentUnavailable = errors.New("consulta de CNPJ no disponible")
	ErrNoBackend             = errors.New("sesión sin backend configurado")
)
