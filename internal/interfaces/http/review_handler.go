package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/notascan-api/internal/application/dto"
	"github.com/jhoicas/notascan-api/internal/application/review"
	"github.com/jhoicas/notascan-api/internal/domain"
	"github.com/jhoicas/notascan-api/internal/infrastructure/api"
	"github.com/jhoicas/notascan-api/pkg/logger"
)

// ReviewHandler maneja la pantalla de revisión/edición de notas fiscales (protegido).
type ReviewHandler struct {
	manager *review.Manager
	log     *logger.Logger
}

// NewReviewHandler construye el handler.
func NewReviewHandler(manager *review.Manager, log *logger.Logger) *ReviewHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ReviewHandler{manager: manager, log: log.WithComponent("http")}
}

// backendCtx contexto del request con el token del usuario para el backend.
func backendCtx(c *fiber.Ctx) context.Context {
	return api.WithBearerToken(c.UserContext(), GetToken(c))
}

// view responde con el estado de la sesión, incluido el alerta pendiente.
func view(c *fiber.Ctx, status int, s *review.Session) error {
	out := s.Snapshot()
	out.Alert = s.TakeAlert()
	return c.Status(status).JSON(out)
}

func (h *ReviewHandler) session(c *fiber.Ctx) (*review.Session, error) {
	return h.manager.Get(GetUserID(c), c.Params("id"))
}

// StartExtraction godoc
// @Summary      Abrir la revisión de una extracción IA
// @Description  Consulta el estado una vez; si sigue en curso la sesión queda en loading.
// @Tags         reviews
// @Security     Bearer
// @Produce      json
// @Param        processingId  path  string  true  "ID del procesamiento"
// @Success      201   {object}  dto.ReviewSessionDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/reviews/extractions/{processingId} [post]
func (h *ReviewHandler) StartExtraction(c *fiber.Ctx) error {
	s, err := h.manager.StartExtraction(backendCtx(c), GetUserID(c), c.Params("processingId"))
	if err != nil {
		return h.startError(c, err)
	}
	return view(c, fiber.StatusCreated, s)
}

// StartEdit godoc
// @Summary      Abrir la edición de una nota guardada
// @Tags         reviews
// @Security     Bearer
// @Produce      json
// @Param        invoiceId  path  string  true  "ID de la nota"
// @Success      201   {object}  dto.ReviewSessionDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/reviews/invoices/{invoiceId} [post]
func (h *ReviewHandler) StartEdit(c *fiber.Ctx) error {
	s, err := h.manager.StartEdit(backendCtx(c), GetUserID(c), c.Params("invoiceId"))
	if err != nil {
		return h.startError(c, err)
	}
	return view(c, fiber.StatusCreated, s)
}

func (h *ReviewHandler) startError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
		return writeError(c, err)
	}
	h.log.Error().Err(err).Msg("no se pudo abrir la sesión")
	return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "BACKEND", Message: err.Error()})
}

// Get godoc
// @Summary      Obtener la sesión de revisión
// @Description  Si la extracción sigue en curso vuelve a consultar su estado.
// @Tags         reviews
// @Security     Bearer
// @Produce      json
// @Param        id    path  string  true  "ID de la sesión"
// @Success      200   {object}  dto.ReviewSessionDTO
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/reviews/{id} [get]
func (h *ReviewHandler) Get(c *fiber.Ctx) error {
	s, err := h.manager.Refresh(backendCtx(c), GetUserID(c), c.Params("id"))
	if s == nil {
		return writeError(c, err)
	}
	if err != nil {
		h.log.Warn().Err(err).Str("session_id", s.ID()).Msg("refresh del estado de extracción")
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "BACKEND", Message: err.Error()})
	}
	return view(c, fiber.StatusOK, s)
}

// Discard godoc
// @Summary      Descartar la sesión
// @Tags         reviews
// @Security     Bearer
// @Produce      json
// @Param        id    path  string  true  "ID de la sesión"
// @Success      204
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/reviews/{id} [delete]
func (h *ReviewHandler) Discard(c *fiber.Ctx) error {
	if err := h.manager.Discard(GetUserID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// EditHeader godoc
// @Summary      Editar un campo de cabecera
// @Description  Campos: issuer_name, issuer_cnpj, number, series, issue_date, access_key, total_value.
// @Tags         reviews
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la sesión"
// @Param        body  body  dto.FieldEditRequest  true  "field, value"
// @Success      200   {object}  dto.ReviewSessionDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reviews/{id}/header [patch]
func (h *ReviewHandler) EditHeader(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.FieldEditRequest
	if err := c.BodyParser(&in); err != nil || in.Field == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido: {field, value}"})
	}
	if err := s.ApplyHeaderEdit(in.Field, in.Value); err != nil {
		return writeError(c, err)
	}
	return view(c, fiber.StatusOK, s)
}

// AddItem godoc
// @Summary      Agregar una línea vacía
// @Tags         reviews
// @Security     Bearer
// @Produce      json
// @Param        id    path  string  true  "ID de la sesión"
// @Success      200   {object}  dto.ReviewSessionDTO
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reviews/{id}/items [post]
func (h *ReviewHandler) AddItem(c *fiber.Ctx) error {
	return h.mutate(c, (*review.Session).AddItem)
}

// EditItem godoc
// @Summary      Editar un campo de una línea
// @Description  Campos: code, description, quantity, unit, unit_price, total_price, category, subcategory.
// @Tags         reviews
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la sesión"
// @Param        index path  int     true  "Posición de la línea (desde 0)"
// @Param        body  body  dto.FieldEditRequest  true  "field, value"
// @Success      200   {object}  dto.ReviewSessionDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reviews/{id}/items/{index} [patch]
func (h *ReviewHandler) EditItem(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	index, err := c.ParamsInt("index")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "índice inválido"})
	}
	var in dto.FieldEditRequest
	if err := c.BodyParser(&in); err != nil || in.Field == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido: {field, value}"})
	}
	if err := s.EditItem(index, in.Field, in.Value); err != nil {
		return writeError(c, err)
	}
	return view(c, fiber.StatusOK, s)
}

// RemoveItem godoc
// @Summary      Eliminar una línea
// @Tags         reviews
// @Security     Bearer
// @Produce      json
// @Param        id    path  string  true  "ID de la sesión"
// @Param        index path  int     true  "Posición de la línea (desde 0)"
// @Success      200   {object}  dto.ReviewSessionDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reviews/{id}/items/{index} [delete]
func (h *ReviewHandler) RemoveItem(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	index, err := c.ParamsInt("index")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "índice inválido"})
	}
	if err := s.RemoveItem(index); err != nil {
		return writeError(c, err)
	}
	return view(c, fiber.StatusOK, s)
}

// UseItemsSum godoc
// @Summary      Usar la suma de las líneas como total
// @Tags         reviews
// @Security     Bearer
// @Produce      json
// @Param        id    path  string  true  "ID de la sesión"
// @Success      200   {object}  dto.ReviewSessionDTO
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reviews/{id}/use-items-sum [post]
func (h *ReviewHandler) UseItemsSum(c *fiber.Ctx) error {
	return h.mutate(c, (*review.Session).UseItemsSumAsTotal)
}

// DismissDuplicate godoc
// @Summary      Descartar el aviso de nota duplicada
// @Tags         reviews
// @Security     Bearer
// @Produce      json
// @Param        id    path  string  true  "ID de la sesión"
// @Success      200   {object}  dto.ReviewSessionDTO
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/reviews/{id}/duplicate [delete]
func (h *ReviewHandler) DismissDuplicate(c *fiber.Ctx) error {
	return h.mutate(c, func(s *review.Session) error {
		s.DismissDuplicate()
		return nil
	})
}

func (h *ReviewHandler) mutate(c *fiber.Ctx, fn func(*review.Session) error) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := fn(s); err != nil {
		return writeError(c, err)
	}
	return view(c, fiber.StatusOK, s)
}

// EnrichCNPJ godoc
// @Summary      Completar la razón social a partir del CNPJ
// @Description  Un fallo de la consulta queda en el error general de la vista.
// @Tags         reviews
// @Security     Bearer
// @Produce      json
// @Param        id    path  string  true  "ID de la sesión"
// @Success      200   {object}  dto.ReviewSessionDTO
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reviews/{id}/enrich-cnpj [post]
func (h *ReviewHandler) EnrichCNPJ(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := s.EnrichTaxID(backendCtx(c)); err != nil {
		var le *domain.LookupError
		if !errors.As(err, &le) && isSessionError(err) {
			return writeError(c, err)
		}
	}
	return view(c, fiber.StatusOK, s)
}

// Confirm godoc
// @Summary      Confirmar o actualizar la nota
// @Description  Los rechazos del backend se devuelven en la vista (slots o alerta); un control previo fallido responde 422 con la vista.
// @Tags         reviews
// @Security     Bearer
// @Produce      json
// @Param        id    path  string  true  "ID de la sesión"
// @Success      200   {object}  dto.ReviewSessionDTO
// @Failure      422   {object}  dto.ReviewSessionDTO
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/reviews/{id}/confirm [post]
func (h *ReviewHandler) Confirm(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	err = s.Confirm(backendCtx(c))
	var se *domain.SubmitError
	switch {
	case err == nil:
		h.log.Info().Str("session_id", s.ID()).Str("user_id", GetUserID(c)).Msg("nota confirmada")
		return view(c, fiber.StatusOK, s)
	case errors.Is(err, domain.ErrValidationFailed):
		return view(c, fiber.StatusUnprocessableEntity, s)
	case errors.As(err, &se):
		return view(c, fiber.StatusOK, s)
	}
	return writeError(c, err)
}

// isSessionError errores de estado de la sesión (no de la consulta remota).
func isSessionError(err error) bool {
	for _, target := range []error{
		domain.ErrEnrichmentUnavailable, domain.ErrSessionLoading,
		domain.ErrSessionClosed, domain.ErrSubmissionInFlight,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
