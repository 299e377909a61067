package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

// ExchangeRateHandler consulta y actualiza la tasa de cambio vigente.
type ExchangeRateHandler struct {
	uc *inventory.DocumentUseCase
}

// NewExchangeRateHandler construye el handler.
func NewExchangeRateHandler(uc *inventory.DocumentUseCase) *ExchangeRateHandler {
	return &ExchangeRateHandler{uc: uc}
}

// Get godoc
// @Summary      Tasa de cambio vigente
// @Tags         exchange-rate
// @Produce      json
// @Success      200  {object}  dto.ExchangeRateResponse
// @Router       /api/exchange-rate [get]
func (h *ExchangeRateHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetExchangeRate(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar tasa de cambio
// @Tags         exchange-rate
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ExchangeRateRequest  true  "rate > 0 (4 decimales)"
// @Success      200   {object}  dto.ExchangeRateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/exchange-rate [put]
func (h *ExchangeRateHandler) Update(c *fiber.Ctx) error {
	var in dto.ExchangeRateRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateExchangeRate(c.UserContext(), in.Rate)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
