package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/notascan-api/internal/application/dto"
	"github.com/jhoicas/notascan-api/pkg/nfe"
)

// CNPJHandler ayuda de formato y validación de CNPJ (público, sin estado).
type CNPJHandler struct{}

func NewCNPJHandler() *CNPJHandler { return &CNPJHandler{} }

// Check godoc
// @Summary      Formatear y validar un CNPJ
// @Tags         cnpj
// @Produce      json
// @Param        value  path  string  true  "CNPJ con o sin máscara"
// @Success      200    {object}  dto.CNPJCheckResponse
// @Router       /api/cnpj/{value} [get]
func (h *CNPJHandler) Check(c *fiber.Ctx) error {
	raw := c.Params("value")
	return c.JSON(dto.CNPJCheckResponse{
		Formatted: nfe.FormatCNPJ(raw),
		Digits:    nfe.CNPJDigits(raw),
		Complete:  nfe.IsCompleteCNPJ(raw),
		Valid:     nfe.IsValidCNPJ(raw),
		Error:     nfe.CNPJSubmitErrorMessage(raw),
	})
}
