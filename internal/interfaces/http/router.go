package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	ProductUC     *usecase.ProductUseCase
	EntryQueryUC  *usecase.EntryQueryUseCase
	WithdrawalUC  *usecase.WithdrawalUseCase
	ReceiptUC     *usecase.ReceiptUseCase
	EntryUC       *stock.EntryUseCase
	AllocatorUC   *stock.AllocatorUseCase
	ReversalUC    *stock.ReversalUseCase
	ConsistencyUC *stock.ConsistencyUseCase
	ProductCache  usecase.ProductCache
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth: login público, registro restringido
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/admins",
		AuthMiddleware(deps.JWTSecret),
		RequireRole(entity.RoleSuperAdmin),
		authHandler.RegisterAdmin,
	)
	authGroup.Post("/employees",
		AuthMiddleware(deps.JWTSecret),
		RequireRole(entity.RoleAdmin, entity.RoleSuperAdmin),
		authHandler.RegisterEmployee,
	)

	// Rutas protegidas: Bearer Token siempre; el rol depende de la ruta. Los
	// empleados solo consultan retiros y comprobantes; operar el stock es de
	// admins.
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin, entity.RoleSuperAdmin)
	staff := RequireRole(entity.RoleAdmin, entity.RoleSuperAdmin, entity.RoleEmployee)

	// Catálogo
	products := protected.Group("/products", adminOnly)
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Get("/:id/lots", productHandler.ListLots)
	protected.Get("/lots/expiring", adminOnly, productHandler.ListExpiring)

	// Ingresos
	entries := protected.Group("/entries", adminOnly)
	entryHandler := NewEntryHandler(deps.EntryUC, deps.EntryQueryUC, deps.ProductCache)
	entries.Post("/", entryHandler.Receive)
	entries.Get("/", entryHandler.List)
	entries.Get("/:id", entryHandler.GetByID)
	entries.Put("/:id", entryHandler.Revise)
	entries.Delete("/:id", entryHandler.Revoke)

	// Retiros y detalles
	withdrawalHandler := NewWithdrawalHandler(deps.WithdrawalUC, deps.AllocatorUC, deps.ReversalUC, deps.ReceiptUC, deps.ProductCache)
	withdrawals := protected.Group("/withdrawals")
	withdrawals.Post("/", adminOnly, withdrawalHandler.Create)
	withdrawals.Get("/", staff, withdrawalHandler.List)
	withdrawals.Get("/:id", staff, withdrawalHandler.GetByID)
	withdrawals.Put("/:id", adminOnly, withdrawalHandler.Update)
	withdrawals.Delete("/:id", adminOnly, withdrawalHandler.Delete)
	withdrawals.Post("/:id/details", adminOnly, withdrawalHandler.CreateDetail)
	withdrawals.Get("/:id/details", staff, withdrawalHandler.ListDetails)
	withdrawals.Get("/:id/receipt", staff, withdrawalHandler.Receipt)

	details := protected.Group("/details")
	details.Get("/:id", staff, withdrawalHandler.GetDetail)
	details.Put("/:id", adminOnly, withdrawalHandler.ReallocateDetail)
	details.Delete("/:id", adminOnly, withdrawalHandler.ReverseDetail)

	// Conciliación
	consistencyHandler := NewConsistencyHandler(deps.ConsistencyUC)
	protected.Get("/consistency", adminOnly, consistencyHandler.CheckAll)
	protected.Get("/consistency/:id", adminOnly, consistencyHandler.CheckProduct)
}
