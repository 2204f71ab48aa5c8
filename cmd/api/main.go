package main

import (
	"context"
	"fmt"
	"log"

	common_api "vowops/internal/common/api"
	"vowops/internal/config"
	"vowops/internal/database"
	"vowops/internal/email"
	"vowops/internal/features/booking"
	"vowops/internal/features/form"
	"vowops/internal/features/invoice"
	"vowops/internal/features/lead"
	"vowops/internal/features/reminder"
	"vowops/internal/features/rule"
	"vowops/internal/features/submission"
	"vowops/internal/features/system"
	"vowops/internal/features/template"
	"vowops/internal/logger"
	"vowops/internal/middleware"
	"vowops/internal/resolver"
	"vowops/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates the Fiber app instance.
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute tags the constructor so Fx adds it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d routes\n", len(routes))
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer starts Fiber in a goroutine and shuts it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// StartReminders ties the cron scheduler to the app lifecycle.
func StartReminders(lc fx.Lifecycle, s *reminder.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start()
		},
		OnStop: func(ctx context.Context) error {
			s.Stop()
			return nil
		},
	})
}

func NewResolutionCache(cfg *config.Config, clock resolver.Clock) *resolver.ResolutionCache {
	return resolver.NewResolutionCache(cfg.CacheTTL, clock)
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			NewFiberServer,
			database.NewDatabase,

			// Resolution engine
			resolver.SystemClock,
			NewResolutionCache,
			form.NewFieldSource,
			resolver.New,

			// Repositories
			form.NewFormRepository,
			rule.NewRuleRepository,
			template.NewTemplateRepository,
			submission.NewSubmissionRepository,
			lead.NewLeadRepository,
			booking.NewBookingRepository,
			invoice.NewInvoiceRepository,
			email.NewEmailRepository,

			// Delivery
			email.NewSMTPTransport,
			email.NewResendTransport,
			email.NewDispatcher,

			// Services
			form.NewFormService,
			rule.NewRuleService,
			rule.NewEvaluator,
			rule.NewProcessor,
			template.NewTemplateService,
			lead.NewLeadService,
			submission.NewPipeline,
			reminder.NewScheduler,

			// Event stream
			system.NewHub,
			func(h *system.Hub) submission.Events { return h },
			func(d *email.Dispatcher) submission.Sender { return d },

			// Controllers
			form.NewFormController,
			rule.NewRuleController,
			template.NewTemplateController,
			submission.NewSubmissionController,
			lead.NewLeadController,
			booking.NewBookingController,
			invoice.NewInvoiceController,
			system.NewWebSocketController,

			// Routes
			AsRoute(form.NewFormApi),
			AsRoute(rule.NewRuleApi),
			AsRoute(template.NewTemplateApi),
			AsRoute(submission.NewSubmissionApi),
			AsRoute(lead.NewLeadApi),
			AsRoute(booking.NewBookingApi),
			AsRoute(invoice.NewInvoiceApi),
			AsRoute(system.NewSystemApi),
		),
		fx.Invoke(
			func(cfg *config.Config) { utils.SetSecret(cfg.JWTSecret) },
			RegisterAllRoutesWithAnnotation,
			StartServer,
			StartReminders,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	app.Run()
}
