package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/bank-server/internal/auth"
	"github.com/carson-networks/bank-server/internal/config"
	"github.com/carson-networks/bank-server/internal/handlers/v1/account"
	"github.com/carson-networks/bank-server/internal/handlers/v1/atm"
	"github.com/carson-networks/bank-server/internal/handlers/v1/limits"
	"github.com/carson-networks/bank-server/internal/handlers/v1/status"
	"github.com/carson-networks/bank-server/internal/handlers/v1/transaction"
	"github.com/carson-networks/bank-server/internal/handlers/v1/transfer"
	"github.com/carson-networks/bank-server/internal/logging"
	"github.com/carson-networks/bank-server/internal/service"
	"github.com/carson-networks/bank-server/internal/storage"
)

type Rest struct {
	Logger   *logrus.Logger
	Server   config.ServerConfig
	Storage  storage.Storage
	Service  *service.Service
	Auth     *auth.JWTResolver
	Registry *prometheus.Registry
}

// Handler builds the router: /status and /metrics as plain handlers, every
// /v1 route as a huma operation.
func (r *Rest) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	statusHandler := status.NewHandler(r.Storage)
	router.Get("/status", logging.LoggingWrapper("Status", r.Logger, statusHandler.Handler))
	if r.Registry != nil {
		router.Handle("/metrics", promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{}))
	}

	humaConfig := huma.DefaultConfig("Bank Server", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		auth.SecurityScheme: {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	api := humachi.New(router, humaConfig)
	api.UseMiddleware(logging.HumaMiddleware(r.Logger))
	api.UseMiddleware(auth.Middleware(api, r.Auth))

	svc := r.Service
	atm.NewWithdrawHandler(svc.Movement).Register(api)
	atm.NewDepositHandler(svc.Movement).Register(api)

	transfer.NewCreateTransferHandler(svc.Movement).Register(api)
	transfer.NewVerifyRecipientHandler(svc.Account).Register(api)
	transfer.NewListTransfersHandler(svc.Transaction).Register(api)

	transaction.NewListTransactionsHandler(svc.Transaction).Register(api)

	account.NewGetAccountHandler(svc.Account).Register(api)
	account.NewCreateAccountHandler(svc.Account).Register(api)
	account.NewListAccountsHandler(svc.Account).Register(api)
	account.NewSetStatusHandler(svc.Account).Register(api)

	limits.NewGetLimitsHandler(svc.Account).Register(api)
	limits.NewUpdateLimitsHandler(svc.Account).Register(api)

	return router
}

// Serve listens until ctx is cancelled, then drains in-flight requests for
// at most the configured shutdown timeout.
func (r *Rest) Serve(ctx context.Context) error {
	server := http.Server{
		Addr:              ":" + r.Server.Port,
		Handler:           r.Handler(),
		ReadTimeout:       r.Server.ReadTimeout,
		WriteTimeout:      r.Server.WriteTimeout,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		r.Logger.WithField("port", r.Server.Port).Info("HttpServer.Serve.listening")
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	r.Logger.Info("HttpServer.Serve.shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), r.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		r.Logger.WithError(err).Error("HttpServer.Serve.shutdown error")
		return err
	}
	return nil
}
