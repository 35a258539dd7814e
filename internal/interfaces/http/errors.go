package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/notascan-api/internal/application/dto"
	"github.com/jhoicas/notascan-api/internal/domain"
)

// writeError traduce errores de dominio a respuestas HTTP.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "sesión o nota no encontrada"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	case errors.Is(err, domain.ErrUnknownField):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "UNKNOWN_FIELD", Message: err.Error()})
	case errors.Is(err, domain.ErrItemNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "ITEM_NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrSubmissionInFlight):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SUBMISSION_IN_FLIGHT", Message: "ya hay un envío en curso"})
	case errors.Is(err, domain.ErrSessionClosed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SESSION_CLOSED", Message: "la nota ya fue guardada"})
	case errors.Is(err, domain.ErrSessionLoading):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SESSION_LOADING", Message: "la nota aún no fue cargada"})
	case errors.Is(err, domain.ErrEnrichmentUnavailable):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ENRICHMENT_UNAVAILABLE", Message: "consulta de CNPJ no disponible para el valor actual"})
	case errors.Is(err, domain.ErrNoBackend):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "NO_BACKEND", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
