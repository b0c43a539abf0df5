package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
)

// EntryHandler maneja las peticiones HTTP de ingresos de mercadería
// (protegido, solo admins). Las escrituras pasan por el motor de stock; las
// lecturas por el caso de uso de consulta.
type EntryHandler struct {
	entries *stock.EntryUseCase
	queries *usecase.EntryQueryUseCase
	cache   usecase.ProductCache
}

// NewEntryHandler construye el handler. cache puede ser nil.
func NewEntryHandler(entries *stock.EntryUseCase, queries *usecase.EntryQueryUseCase, cache usecase.ProductCache) *EntryHandler {
	return &EntryHandler{entries: entries, queries: queries, cache: cache}
}

// Receive godoc
// @Summary      Registrar ingreso de mercadería (crea lote y suma stock)
// @Tags         entries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveStockRequest  true  "Datos del ingreso"
// @Success      201   {object}  dto.EntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/entries [post]
func (h *EntryHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entryID, err := h.entries.ReceiveStock(c.Context(), stock.ReceiveStockInput{
		ProductID:       in.ProductID,
		Quantity:        in.Quantity,
		LotNumber:       in.LotNumber,
		ExpirationDate:  in.ExpirationDate,
		ReceiptCode:     in.ReceiptCode,
		DeliveryCompany: in.DeliveryCompany,
		EntryDate:       in.EntryDate,
		Status:          in.Status,
		AdminID:         GetUserID(c),
	})
	if err != nil {
		return errorResponse(c, err)
	}
	h.invalidate(c, in.ProductID)
	out, err := h.queries.GetByID(c.Context(), entryID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener ingreso por ID
// @Tags         entries
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ingreso"
// @Success      200  {object}  dto.EntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/entries/{id} [get]
func (h *EntryHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.queries.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar o buscar ingresos
// @Tags         entries
// @Security     Bearer
// @Produce      json
// @Param        delivery_company  query  string  false  "Búsqueda parcial por transportista"
// @Param        status            query  string  false  "Filtro por estado"
// @Param        from              query  string  false  "Fecha desde (RFC 3339)"
// @Param        to                query  string  false  "Fecha hasta (RFC 3339)"
// @Param        limit             query  int     false  "Límite"   default(20)
// @Param        offset            query  int     false  "Offset"   default(0)
// @Success      200               {object}  dto.EntryListResponse
// @Router       /api/entries [get]
func (h *EntryHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	if company := c.Query("delivery_company"); company != "" {
		out, err := h.queries.SearchByDeliveryCompany(c.Context(), company, limit, offset)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(out)
	}
	if status := c.Query("status"); status != "" {
		out, err := h.queries.SearchByStatus(c.Context(), status, limit, offset)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(out)
	}
	if c.Query("from") != "" || c.Query("to") != "" {
		from, to, err := dateRange(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		out, err := h.queries.SearchByDateRange(c.Context(), from, to, limit, offset)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(out)
	}
	out, err := h.queries.List(c.Context(), limit, offset)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// Revise godoc
// @Summary      Corregir un ingreso (producto, cantidad, remito)
// @Tags         entries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del ingreso"
// @Param        body  body  dto.ReviseEntryRequest  true  "Campos a corregir"
// @Success      200   {object}  dto.EntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/entries/{id} [put]
func (h *EntryHandler) Revise(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.ReviseEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	// El producto anterior también pierde stock si el ingreso se mueve
	before, err := h.queries.GetByID(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	err = h.entries.ReviseEntry(c.Context(), id, stock.EntryChanges{
		ProductID:       in.ProductID,
		Quantity:        in.Quantity,
		ReceiptCode:     in.ReceiptCode,
		DeliveryCompany: in.DeliveryCompany,
		EntryDate:       in.EntryDate,
		Status:          in.Status,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	h.invalidate(c, before.ProductID)
	if in.ProductID != nil {
		h.invalidate(c, *in.ProductID)
	}
	out, err := h.queries.GetByID(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// Revoke godoc
// @Summary      Revocar un ingreso (revierte lote y stock)
// @Tags         entries
// @Security     Bearer
// @Param        id  path  string  true  "ID del ingreso"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/entries/{id} [delete]
func (h *EntryHandler) Revoke(c *fiber.Ctx) error {
	id := c.Params("id")
	before, err := h.queries.GetByID(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	if err := h.entries.RevokeEntry(c.Context(), id); err != nil {
		return errorResponse(c, err)
	}
	h.invalidate(c, before.ProductID)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *EntryHandler) invalidate(c *fiber.Ctx, productID string) {
	if h.cache != nil && productID != "" {
		h.cache.Delete(c.Context(), productID)
	}
}

// dateRange parsea from/to de la query (RFC 3339).
func dateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "from debe ser RFC 3339")
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "to debe ser RFC 3339")
	}
	return from, to, nil
}
