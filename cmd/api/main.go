package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/crm-api/docs"
	"github.com/jhoicas/crm-api/internal/application/analytics"
	"github.com/jhoicas/crm-api/internal/application/auth"
	"github.com/jhoicas/crm-api/internal/application/reminders"
	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/infrastructure/importer"
	"github.com/jhoicas/crm-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/crm-api/internal/infrastructure/pdf"
	"github.com/jhoicas/crm-api/internal/infrastructure/postgres"
	"github.com/jhoicas/crm-api/internal/infrastructure/redisstore"
	"github.com/jhoicas/crm-api/internal/infrastructure/ubl"
	httpRouter "github.com/jhoicas/crm-api/internal/interfaces/http"
	"github.com/jhoicas/crm-api/pkg/config"
	"github.com/jhoicas/crm-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect reintenta la conexión y aplica las migraciones pendientes
	pool, err := postgres.Connect(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	orgRepo := postgres.NewOrgRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	inviteRepo := postgres.NewInviteRepository(pool)
	policyRepo := postgres.NewPolicyRepository(pool)
	meetingRepo := postgres.NewMeetingRepository(pool)
	leadRepo := postgres.NewScopedStore(pool, postgres.LeadTable)
	contactRepo := postgres.NewScopedStore(pool, postgres.ContactTable)
	dealRepo := postgres.NewScopedStore(pool, postgres.DealTable)
	taskRepo := postgres.NewScopedStore(pool, postgres.TaskTable)
	callRepo := postgres.NewScopedStore(pool, postgres.CallTable)

	auditUC := usecase.NewAuditUseCase(postgres.NewAuditRepository(pool), log)
	authUC := auth.NewAuthUseCase(userRepo, inviteRepo, policyRepo, postgres.NewTxRunner(pool), auditUC, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	pipelineUC := usecase.NewPipelineUseCase(postgres.NewPipelineRepository(pool), auditUC)
	leadUC := usecase.NewLeadUseCase(leadRepo, auditUC)
	contactUC := usecase.NewContactUseCase(contactRepo, auditUC)
	accountUC := usecase.NewAccountUseCase(postgres.NewScopedStore(pool, postgres.AccountTable), auditUC)
	dealUC := usecase.NewDealUseCase(dealRepo, pipelineUC, auditUC)
	taskUC := usecase.NewTaskUseCase(taskRepo, auditUC)
	meetingUC := usecase.NewMeetingUseCase(meetingRepo, userRepo, auditUC)

	// PDF y UBL de los documentos comerciales
	renderer := infrapdf.NewMarotoPDFGenerator()
	exporter := ubl.NewExporter("USD")
	salesDocs := func(docType string) *usecase.SalesDocUseCase {
		return usecase.NewSalesDocUseCase(docType, postgres.NewScopedStore(pool, postgres.SalesDocTable(docType)),
			orgRepo, renderer, exporter, auditUC)
	}

	src := analytics.Sources{
		Leads: leadRepo, Contacts: contactRepo, Deals: dealRepo,
		Tasks: taskRepo, Meetings: meetingRepo, Calls: callRepo,
	}

	m := metrics.New(cfg.Metrics.Prefix)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    (cfg.HTTP.UploadMaxMB + 1) << 20,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.HTTP.CORSOrigins, ","),
		AllowCredentials: len(cfg.HTTP.CORSOrigins) > 0,
	}))
	app.Use(httpRouter.RequestLogger(log))
	if cfg.Metrics.Enabled {
		app.Use(m.Middleware())
		app.Get("/metrics", m.Handler())
	}

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "CRM API",
	}))

	if err := os.MkdirAll(cfg.HTTP.UploadDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.HTTP.UploadDir).Msg("directorio de subidas")
	}
	app.Static(httpRouter.UploadsPrefix, cfg.HTTP.UploadDir)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	storage := rateStorage(ctx, cfg.RateLimit, log)

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC: authUC,
		UserUC: usecase.NewUserUseCase(userRepo, inviteRepo, auditUC, log, usecase.InviteConfig{
			AppURL:   cfg.App.URL,
			Validity: time.Duration(cfg.JWT.InviteExpiresIn) * time.Hour,
		}),
		CompanyUC:   usecase.NewCompanyUseCase(orgRepo, auditUC),
		PolicyUC:    usecase.NewPolicyUseCase(policyRepo, auditUC),
		ModuleSvc:   usecase.NewModuleService(policyRepo),
		AuditUC:     auditUC,
		PipelineUC:  pipelineUC,
		CalendarUC:  usecase.NewCalendarUseCase(postgres.NewCalendarRepository(pool), meetingUC, orgRepo, userRepo),
		DashboardUC: analytics.NewDashboardUseCase(src),
		SearchUC:    analytics.NewSearchUseCase(src),
		ImportUC:    usecase.NewImportUseCase(importer.Reader{}, leadUC, contactUC, accountUC, dealUC, taskUC, log),
		ProductUC:   usecase.NewProductUseCase(postgres.NewProductRepository(pool), auditUC),

		Leads:       leadUC,
		Contacts:    contactUC,
		Accounts:    accountUC,
		Deals:       dealUC,
		Tasks:       taskUC,
		Calls:       usecase.NewCallUseCase(callRepo, auditUC),
		Campaigns:   usecase.NewCampaignUseCase(postgres.NewScopedStore(pool, postgres.CampaignTable), auditUC),
		Documents:   usecase.NewDocumentUseCase(postgres.NewScopedStore(pool, postgres.DocumentTable), auditUC),
		Meetings:    meetingUC,
		Quotes:      salesDocs(entity.DocQuote),
		Invoices:    salesDocs(entity.DocInvoice),
		SalesOrders: salesDocs(entity.DocSalesOrder),

		Uploads:       httpRouter.Uploads{Dir: cfg.HTTP.UploadDir, MaxBytes: int64(cfg.HTTP.UploadMaxMB) << 20},
		SecureCookies: cfg.App.Env == "production",
		Limit:         rateLimiter("api", cfg.RateLimit.Max, cfg.RateLimit.Window, storage),
		AuthLimit:     rateLimiter("auth", cfg.RateLimit.AuthMax, cfg.RateLimit.AuthWindow, storage),
		Log:           log,
	})

	if cfg.Reminders.Enabled {
		go reminders.NewWorker(meetingRepo, cfg.Reminders.Interval, log, m).Run(ctx)
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if storage != nil {
		_ = storage.Close()
	}

	log.Info().Msg("aplicación detenida")
}

// rateStorage contadores compartidos en Redis; nil (memoria local) si no hay REDIS_ADDR o no responde.
func rateStorage(ctx context.Context, cfg config.RateLimitConfig, log *logger.Logger) *redisstore.Storage {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redisstore.NewClient(redisstore.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	s, err := redisstore.New(pingCtx, client, "")
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis no disponible, rate limit en memoria")
		_ = client.Close()
		return nil
	}
	return s
}

// rateLimiter cuenta por IP bajo scope; limit <= 0 desactiva el límite.
func rateLimiter(scope string, limit int, window time.Duration, storage *redisstore.Storage) fiber.Handler {
	if limit <= 0 {
		return nil
	}
	lc := limiter.Config{
		Max:        limit,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return scope + ":" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"code":    "RATE_LIMITED",
				"message": "demasiadas peticiones, intente más tarde",
			})
		},
	}
	if storage != nil {
		lc.Storage = storage
	}
	return limiter.New(lc)
}
