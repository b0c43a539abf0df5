package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
)

// WithdrawalHandler maneja las peticiones HTTP de retiros: cabeceras,
// detalles, reversas y comprobante (protegido, solo admins).
type WithdrawalHandler struct {
	withdrawals *usecase.WithdrawalUseCase
	allocator   *stock.AllocatorUseCase
	reversal    *stock.ReversalUseCase
	receipts    *usecase.ReceiptUseCase
	cache       usecase.ProductCache
}

// NewWithdrawalHandler construye el handler. cache puede ser nil.
func NewWithdrawalHandler(
	withdrawals *usecase.WithdrawalUseCase,
	allocator *stock.AllocatorUseCase,
	reversal *stock.ReversalUseCase,
	receipts *usecase.ReceiptUseCase,
	cache usecase.ProductCache,
) *WithdrawalHandler {
	return &WithdrawalHandler{
		withdrawals: withdrawals,
		allocator:   allocator,
		reversal:    reversal,
		receipts:    receipts,
		cache:       cache,
	}
}

// Create godoc
// @Summary      Abrir un retiro para un empleado
// @Tags         withdrawals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWithdrawalRequest  true  "Datos del retiro"
// @Success      201   {object}  dto.WithdrawalResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/withdrawals [post]
func (h *WithdrawalHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateWithdrawalRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.EmployeeID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "employee_id es requerido"})
	}
	out, err := h.withdrawals.Create(c.Context(), GetUserID(c), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener retiro por ID
// @Tags         withdrawals
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del retiro"
// @Success      200  {object}  dto.WithdrawalResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/withdrawals/{id} [get]
func (h *WithdrawalHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.withdrawals.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar o buscar retiros
// @Tags         withdrawals
// @Security     Bearer
// @Produce      json
// @Param        employee_id  query  string  false  "Filtro por empleado"
// @Param        admin_id     query  string  false  "Filtro por admin"
// @Param        from         query  string  false  "Fecha desde (RFC 3339)"
// @Param        to           query  string  false  "Fecha hasta (RFC 3339)"
// @Param        limit        query  int     false  "Límite"   default(20)
// @Param        offset       query  int     false  "Offset"   default(0)
// @Success      200          {object}  dto.WithdrawalListResponse
// @Router       /api/withdrawals [get]
func (h *WithdrawalHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	if employeeID := c.Query("employee_id"); employeeID != "" {
		out, err := h.withdrawals.SearchByEmployee(c.Context(), employeeID, limit, offset)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(out)
	}
	if adminID := c.Query("admin_id"); adminID != "" {
		out, err := h.withdrawals.SearchByAdmin(c.Context(), adminID, limit, offset)
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
		out, err := h.withdrawals.SearchByDateRange(c.Context(), from, to, limit, offset)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(out)
	}
	out, err := h.withdrawals.List(c.Context(), limit, offset)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Corregir la cabecera de un retiro (empleado o fecha)
// @Tags         withdrawals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del retiro"
// @Param        body  body  dto.UpdateWithdrawalRequest  true  "Campos a corregir"
// @Success      200   {object}  dto.WithdrawalResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/withdrawals/{id} [put]
func (h *WithdrawalHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateWithdrawalRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.withdrawals.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar un retiro sin detalles
// @Tags         withdrawals
// @Security     Bearer
// @Param        id  path  string  true  "ID del retiro"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/withdrawals/{id} [delete]
func (h *WithdrawalHandler) Delete(c *fiber.Ctx) error {
	if err := h.withdrawals.Delete(c.Context(), c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateDetail godoc
// @Summary      Asignar stock a un retiro (FIFO por vencimiento, atómico)
// @Tags         withdrawals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del retiro"
// @Param        body  body  dto.CreateDetailRequest  true  "Líneas a asignar"
// @Success      201   {object}  dto.DetailResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/withdrawals/{id}/details [post]
func (h *WithdrawalHandler) CreateDetail(c *fiber.Ctx) error {
	var in dto.CreateDetailRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	detailID, err := h.allocator.Allocate(c.Context(), stock.AllocateInput{
		WithdrawalID: c.Params("id"),
		Notes:        in.Notes,
		Lines:        toAllocationLines(in.Lines),
	})
	if err != nil {
		return errorResponse(c, err)
	}
	for _, line := range in.Lines {
		h.invalidate(c, line.ProductID)
	}
	out, err := h.withdrawals.GetDetail(c.Context(), detailID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListDetails godoc
// @Summary      Listar los detalles de un retiro con sus líneas
// @Tags         withdrawals
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del retiro"
// @Success      200  {array}  dto.DetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/withdrawals/{id}/details [get]
func (h *WithdrawalHandler) ListDetails(c *fiber.Ctx) error {
	out, err := h.withdrawals.ListDetails(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// GetDetail godoc
// @Summary      Obtener un detalle de retiro
// @Tags         withdrawals
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del detalle"
// @Success      200  {object}  dto.DetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/details/{id} [get]
func (h *WithdrawalHandler) GetDetail(c *fiber.Ctx) error {
	out, err := h.withdrawals.GetDetail(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// ReverseDetail godoc
// @Summary      Revertir un detalle (devuelve el stock a sus lotes exactos)
// @Tags         withdrawals
// @Security     Bearer
// @Param        id  path  string  true  "ID del detalle"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/details/{id} [delete]
func (h *WithdrawalHandler) ReverseDetail(c *fiber.Ctx) error {
	id := c.Params("id")
	before, err := h.withdrawals.GetDetail(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	if err := h.reversal.Reverse(c.Context(), id); err != nil {
		return errorResponse(c, err)
	}
	for _, line := range before.Lines {
		h.invalidate(c, line.ProductID)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReallocateDetail godoc
// @Summary      Reemplazar las líneas de un detalle en una sola transacción
// @Tags         withdrawals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del detalle"
// @Param        body  body  dto.ReallocateDetailRequest  true  "Líneas nuevas"
// @Success      200   {object}  dto.DetailResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/details/{id} [put]
func (h *WithdrawalHandler) ReallocateDetail(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.ReallocateDetailRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	before, err := h.withdrawals.GetDetail(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	if err := h.reversal.Reallocate(c.Context(), id, in.Notes, toAllocationLines(in.Lines)); err != nil {
		return errorResponse(c, err)
	}
	for _, line := range before.Lines {
		h.invalidate(c, line.ProductID)
	}
	for _, line := range in.Lines {
		h.invalidate(c, line.ProductID)
	}
	out, err := h.withdrawals.GetDetail(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Descargar el comprobante PDF de un retiro
// @Tags         withdrawals
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID del retiro"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/withdrawals/{id}/receipt [get]
func (h *WithdrawalHandler) Receipt(c *fiber.Ctx) error {
	pdfBytes, err := h.receipts.Generate(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="retiro-`+c.Params("id")+`.pdf"`)
	return c.Send(pdfBytes)
}

func (h *WithdrawalHandler) invalidate(c *fiber.Ctx, productID string) {
	if h.cache != nil && productID != "" {
		h.cache.Delete(c.Context(), productID)
	}
}

func toAllocationLines(lines []dto.AllocationLineRequest) []stock.AllocationLine {
	out := make([]stock.AllocationLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, stock.AllocationLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Status:    l.Status,
		})
	}
	return out
}
