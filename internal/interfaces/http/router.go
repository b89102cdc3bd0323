package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturacion-api/internal/application/auth"
	"github.com/jhoicas/Facturacion-api/internal/application/facturacion"
	"github.com/jhoicas/Facturacion-api/internal/application/usecase"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	EmpresaUC *usecase.EmpresaUseCase
	ClienteUC *usecase.ClienteUseCase
	Ventas    *facturacion.ServicioVentas
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Empresas emisoras (protegido; alta solo admin, trae credenciales MH)
	empresas := protected.Group("/empresas")
	empresaHandler := NewEmpresaHandler(deps.EmpresaUC)
	empresas.Post("/", RequireRole(entity.RolAdmin), empresaHandler.Create)
	empresas.Get("/", empresaHandler.List)
	empresas.Get("/:id", empresaHandler.GetByID)

	// Clientes receptores (protegido, acotado a la empresa del token)
	clientes := protected.Group("/clientes")
	clienteHandler := NewClienteHandler(deps.ClienteUC)
	clientes.Post("/", clienteHandler.Create)
	clientes.Get("/", clienteHandler.List)
	clientes.Get("/:id", clienteHandler.GetByID)

	// Ventas / DTE (protegido). El POST solo encola: la firma y el envío a MH
	// corren en el worker.
	ventas := protected.Group("/ventas")
	ventaHandler := NewVentaHandler(deps.Ventas)
	ventas.Post("/", ventaHandler.Create)
	ventas.Get("/", ventaHandler.List)
	ventas.Get("/:id", ventaHandler.GetByID)
	ventas.Post("/:id/invalidar", ventaHandler.Invalidar)
}
