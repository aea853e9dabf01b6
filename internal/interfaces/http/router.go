package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/analytics"
	"github.com/jhoicas/crm-api/internal/application/auth"
	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	CompanyUC   *usecase.CompanyUseCase
	PolicyUC    *usecase.PolicyUseCase
	ModuleSvc   *usecase.ModuleService
	AuditUC     *usecase.AuditUseCase
	PipelineUC  *usecase.PipelineUseCase
	CalendarUC  *usecase.CalendarUseCase
	DashboardUC *analytics.DashboardUseCase
	SearchUC    *analytics.SearchUseCase
	ImportUC    *usecase.ImportUseCase
	ProductUC   *usecase.ProductUseCase

	Leads       *usecase.ScopedUseCase[*entity.Lead]
	Contacts    *usecase.ScopedUseCase[*entity.Contact]
	Accounts    *usecase.ScopedUseCase[*entity.Account]
	Deals       *usecase.ScopedUseCase[*entity.Deal]
	Tasks       *usecase.ScopedUseCase[*entity.Task]
	Calls       *usecase.ScopedUseCase[*entity.Call]
	Campaigns   *usecase.ScopedUseCase[*entity.Campaign]
	Documents   *usecase.ScopedUseCase[*entity.Document]
	Meetings    *usecase.MeetingUseCase
	Quotes      *usecase.SalesDocUseCase
	Invoices    *usecase.SalesDocUseCase
	SalesOrders *usecase.SalesDocUseCase

	Uploads       Uploads
	SecureCookies bool
	// Limit y AuthLimit limitadores de /api y de signin/signup; nil los desactiva.
	Limit     fiber.Handler
	AuthLimit fiber.Handler
	Log       *logger.Logger
}

func pass(c *fiber.Ctx) error { return c.Next() }

func orPass(h fiber.Handler) fiber.Handler {
	if h == nil {
		return pass
	}
	return h
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	module := func(m string) fiber.Handler {
		if deps.ModuleSvc == nil {
			return pass
		}
		return RequireModule(m, deps.ModuleSvc, log)
	}
	moduleRead := func(m string) fiber.Handler {
		if deps.ModuleSvc == nil {
			return pass
		}
		return RequireModuleRead(m, deps.ModuleSvc, log)
	}

	api := app.Group("/api", orPass(deps.Limit))

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth (público)
	authLimit := orPass(deps.AuthLimit)
	authHandler := NewAuthHandler(deps.AuthUC, deps.SecureCookies)
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", authLimit, authHandler.Signup)
	authGroup.Post("/register", authLimit, authHandler.Signup)
	authGroup.Post("/signin", authLimit, authHandler.Signin)
	authGroup.Post("/login", authLimit, authHandler.Signin)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Post("/signout", authHandler.Logout)

	// Calendario público por slug
	calendarHandler := NewCalendarHandler(deps.CalendarUC)
	public := api.Group("/calendar/public")
	public.Get("/:slug", calendarHandler.PublicSettings)
	public.Get("/:slug/slots", calendarHandler.PublicSlots)
	public.Post("/:slug/book", calendarHandler.PublicBook)

	// Rutas protegidas (requieren Bearer Token o cookie)
	protected := api.Group("", AuthMiddleware(deps.AuthUC))
	protected.Get("/auth/me", authHandler.Me)

	// Usuarios e invitaciones
	userHandler := NewUserHandler(deps.UserUC)
	users := protected.Group("/users")
	users.Get("/me", userHandler.Me)
	users.Patch("/me", userHandler.UpdateMe)
	users.Get("/", userHandler.List)
	users.Post("/invite", userHandler.Invite)
	users.Get("/invites", userHandler.Invites)
	users.Delete("/invites/:id", userHandler.RevokeInvite)
	users.Patch("/:id", userHandler.Update)
	protected.Get("/roles", userHandler.Roles)

	// Org
	companyHandler := NewCompanyHandler(deps.CompanyUC, deps.Uploads)
	protected.Get("/company", companyHandler.Get)
	protected.Patch("/company", companyHandler.Update)
	protected.Post("/company/logo", companyHandler.Logo)

	// Políticas e integraciones
	settingsHandler := NewSettingsHandler(deps.PolicyUC)
	protected.Get("/security/policies", settingsHandler.Security)
	protected.Patch("/security/policies", settingsHandler.UpdateSecurity)
	protected.Get("/roles/policy", settingsHandler.Roles)
	protected.Patch("/roles/policy", settingsHandler.UpdateRoles)
	protected.Get("/integrations", settingsHandler.Integrations)
	protected.Put("/integrations", settingsHandler.UpdateIntegrations)
	protected.Post("/integrations", settingsHandler.UpdateIntegrations)
	protected.Post("/integrations/email/connect", settingsHandler.ConnectEmail)

	// Auditoría
	protected.Get("/audit", NewAuditHandler(deps.AuditUC).List)

	// Estadísticas y búsqueda (antes de los CRUD para que /leads/stats no caiga en /:id)
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, deps.SearchUC)
	protected.Get("/stats", dashboardHandler.Stats)
	protected.Get("/stats/home", dashboardHandler.Summary)
	protected.Get("/stats/summary", dashboardHandler.Summary)
	protected.Get("/leads/stats", module(entity.ModuleLeads), dashboardHandler.Leads)
	protected.Get("/deals/stats", module(entity.ModuleDeals), dashboardHandler.Deals)
	protected.Get("/activities/stats", module(entity.ModuleActivities), dashboardHandler.Activities)
	protected.Get("/search", dashboardHandler.Search)

	// Pipeline y pronóstico
	pipelineHandler := NewPipelineHandler(deps.PipelineUC)
	protected.Get("/pipeline", pipelineHandler.Get)
	protected.Post("/pipeline", pipelineHandler.Replace)
	protected.Get("/deals/stages", module(entity.ModuleDeals), pipelineHandler.Stages)
	protected.Get("/forecasts/summary", module(entity.ModuleDeals), pipelineHandler.Forecast)

	// Calendario propio
	protected.Get("/calendar/settings", calendarHandler.Settings)
	protected.Patch("/calendar/settings", calendarHandler.UpdateSettings)
	protected.Put("/calendar/settings", calendarHandler.UpdateSettings)
	protected.Get("/calendar/slots", calendarHandler.Slots)
	protected.Post("/calendar/book", module(entity.ModuleActivities), calendarHandler.Book)

	// Importación
	protected.Post("/import", NewImportHandler(deps.ImportUC, deps.ModuleSvc).Import)

	// Recursos con ACL
	NewScopedHandler(deps.Leads).Mount(protected.Group("/leads"), module(entity.ModuleLeads))
	NewScopedHandler(deps.Contacts).Mount(protected.Group("/contacts"), module(entity.ModuleContacts))
	NewScopedHandler(deps.Accounts).Mount(protected.Group("/accounts"), module(entity.ModuleAccounts))
	NewScopedHandler(deps.Deals).Mount(protected.Group("/deals"), module(entity.ModuleDeals))
	NewScopedHandler(deps.Tasks).Mount(protected.Group("/tasks"), module(entity.ModuleActivities))
	NewScopedHandler(deps.Calls).Mount(protected.Group("/calls"), module(entity.ModuleActivities))
	NewScopedHandler(deps.Campaigns).Mount(protected.Group("/campaigns"), module(entity.ModuleCampaigns))
	NewMeetingHandler(deps.Meetings).Mount(protected.Group("/meetings"),
		module(entity.ModuleActivities), moduleRead(entity.ModuleActivities))
	NewDocumentHandler(deps.Documents, deps.Uploads).Mount(protected.Group("/documents"), module(entity.ModuleDocuments))

	// Documentos comerciales
	NewSalesDocHandler(deps.Quotes).Mount(protected.Group("/quotes"), pass)
	NewSalesDocHandler(deps.Invoices).Mount(protected.Group("/invoices"), pass)
	NewSalesDocHandler(deps.SalesOrders).Mount(protected.Group("/salesorders"), pass)

	// Productos
	productHandler := NewProductHandler(deps.ProductUC)
	products := protected.Group("/products")
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Patch("/:id", productHandler.Update)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
}
