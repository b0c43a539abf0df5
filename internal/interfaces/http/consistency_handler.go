package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/stock"
)

// ConsistencyHandler expone la conciliación del libro de stock (protegido,
// solo admins).
type ConsistencyHandler struct {
	uc *stock.ConsistencyUseCase
}

// NewConsistencyHandler construye el handler.
func NewConsistencyHandler(uc *stock.ConsistencyUseCase) *ConsistencyHandler {
	return &ConsistencyHandler{uc: uc}
}

// CheckAll godoc
// @Summary      Conciliar todos los productos (stock vs suma de lotes)
// @Tags         consistency
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  stock.ConsistencyReport
// @Router       /api/consistency [get]
func (h *ConsistencyHandler) CheckAll(c *fiber.Ctx) error {
	reports, err := h.uc.CheckAll(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(reports)
}

// CheckProduct godoc
// @Summary      Conciliar un producto
// @Tags         consistency
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  stock.ConsistencyReport
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/consistency/{id} [get]
func (h *ConsistencyHandler) CheckProduct(c *fiber.Ctx) error {
	report, err := h.uc.CheckProduct(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(report)
}
