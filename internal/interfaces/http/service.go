package httpinterface

import (
	"fmt"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/idempotency"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/stellrflow/anchord/internal/core/application"
	"github.com/stellrflow/anchord/internal/interfaces"
	chatinterface "github.com/stellrflow/anchord/internal/interfaces/chat"
)

const (
	DefaultIdempotencyTTL = 30 * time.Minute

	defaultPageSize = 10
	shutdownTimeout = 10 * time.Second
)

type service struct {
	opts ServiceOpts
	app  *fiber.App
}

type ServiceOpts struct {
	Port           int
	IdempotencyTTL time.Duration

	RampSvc application.RampService
	Bot     chatinterface.Bot
}

func (o ServiceOpts) validate() error {
	if o.Port <= 0 || o.Port > 65535 {
		return fmt.Errorf("invalid listening port %d", o.Port)
	}
	if o.IdempotencyTTL < 0 {
		return fmt.Errorf("idempotency ttl must not be negative")
	}
	if o.RampSvc == nil {
		return fmt.Errorf("ramp app service must not be null")
	}
	if o.Bot == nil {
		return fmt.Errorf("chat bot must not be null")
	}
	return nil
}

func (o ServiceOpts) address() string {
	return fmt.Sprintf(":%d", o.Port)
}

func NewService(opts ServiceOpts) (interfaces.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %s", err)
	}
	if opts.IdempotencyTTL == 0 {
		opts.IdempotencyTTL = DefaultIdempotencyTTL
	}

	return &service{
		opts: opts,
		app:  newApp(opts),
	}, nil
}

// Start binds the listening address and serves the REST interface in
// background. Binding errors are returned right away.
func (s *service) Start() error {
	listener, err := net.Listen("tcp", s.opts.address())
	if err != nil {
		return err
	}

	go func() {
		if err := s.app.Listener(listener); err != nil {
			log.WithError(err).Warn("http: server stopped")
		}
	}()

	log.Infof("http: serving REST interface on %s", s.opts.address())
	return nil
}

func (s *service) Stop() {
	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.WithError(err).Warn("http: failed to shutdown gracefully")
	}
	log.Debug("disabled REST interface")
}

func newApp(opts ServiceOpts) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestLogger)
	app.Use(cors.New())

	app.Get("/healthz", healthz)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handler := newRampHandler(opts.RampSvc, opts.Bot)

	// POST requests carrying an X-Idempotency-Key header are executed once,
	// their response is replayed for the configured lifetime.
	api := app.Group("/api", idempotency.New(idempotency.Config{
		Lifetime: opts.IdempotencyTTL,
	}))

	anchor := api.Group("/anchor")
	anchor.Get("/rates", handler.rates)
	anchor.Get("/history/:userId", handler.history)
	anchor.Post("/connect", handler.connectAddress)
	anchor.Get("/connect/:userId", handler.connectedAddress)

	deposit := anchor.Group("/deposit")
	deposit.Post("/", handler.quickDeposit)
	deposit.Post("/create", handler.createDeposit)
	deposit.Get("/estimate", handler.estimateDeposit)
	deposit.Get("/:id", handler.getDeposit)
	deposit.Post("/:id/confirm", handler.confirmDeposit)
	deposit.Post("/:id/cancel", handler.cancelDeposit)

	withdraw := anchor.Group("/withdraw")
	withdraw.Post("/", handler.quickWithdrawal)
	withdraw.Post("/create", handler.createWithdrawal)
	withdraw.Get("/estimate", handler.estimateWithdrawal)
	withdraw.Get("/:id", handler.getWithdrawal)
	withdraw.Post("/:id/confirm", handler.confirmWithdrawal)
	withdraw.Post("/:id/cancel", handler.cancelWithdrawal)

	api.Post("/bot/command", handler.botCommand)

	return app
}
