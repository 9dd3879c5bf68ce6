package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/BenAnderson8181/BusApp/internal/console/handler"
	"github.com/BenAnderson8181/BusApp/internal/infra"
	"github.com/BenAnderson8181/BusApp/internal/infra/auth"
	"github.com/BenAnderson8181/BusApp/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handlers groups the business handlers mounted under /v1.
type Handlers struct {
	Gate     *handler.GateHandler
	Account  *handler.AccountHandler
	Company  *handler.CompanyHandler
	Policy   *handler.PolicyHandler
	Ledger   *handler.LedgerHandler
	Document *handler.DocumentHandler
	Fleet    *handler.FleetHandler
	Audit    *handler.AuditHandler
}

type ConsoleServer struct {
	router *chi.Mux
	logger *zap.Logger

	validator auth.TokenValidator
	accounts  handler.AccountResolver // for the administrator guard
	gatherer  prometheus.Gatherer
	metrics   *metrics.Metrics
	h         Handlers
}

func NewConsoleServer(
	logger *zap.Logger,
	validator auth.TokenValidator,
	accounts handler.AccountResolver,
	gatherer prometheus.Gatherer,
	m *metrics.Metrics,
	h Handlers,
) *ConsoleServer {
	if m == nil {
		m = metrics.New(nil)
	}
	s := &ConsoleServer{
		router:    chi.NewRouter(),
		logger:    logger.Named("console-api"),
		validator: validator,
		accounts:  accounts,
		gatherer:  gatherer,
		metrics:   m,
		h:         h,
	}
	s.routes()
	return s
}

func (s *ConsoleServer) routes() {
	r := s.router

	// 1. Infrastructure middleware for every request
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(infra.TracingMiddleware)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	// 2. Public
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	// 3. Everything under /v1 needs an IdP session token
	r.Route("/v1", func(r chi.Router) {
		r.Use(auth.NewMiddleware(s.validator, s.logger))

		r.Route("/gate", func(r chi.Router) {
			r.Get("/", s.h.Gate.Next)
			r.Get("/companies/{id}", s.h.Gate.CompanyAccess)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.h.Account.List)
			r.Post("/", s.h.Account.Create)
			r.Get("/me", s.h.Account.Me)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.h.Account.Get)
				r.Put("/", s.h.Account.Update)
				r.Post("/inactivate", s.h.Account.Inactivate)
				r.Put("/company", s.h.Account.AttachCompany)
			})
		})
		r.Get("/user-types", s.h.Account.UserTypes)

		r.Route("/companies", func(r chi.Router) {
			r.Get("/", s.h.Company.List)
			r.Post("/", s.h.Company.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.h.Company.Get)
				r.Put("/", s.h.Company.Update)
				r.Post("/inactivate", s.h.Company.Inactivate)

				r.Route("/vehicles", func(r chi.Router) {
					r.Get("/", s.h.Fleet.ListVehicles)
					r.Post("/", s.h.Fleet.CreateVehicle)
					r.Get("/{itemID}", s.h.Fleet.GetVehicle)
					r.Put("/{itemID}", s.h.Fleet.UpdateVehicle)
					r.Post("/{itemID}/inactivate", s.h.Fleet.InactivateVehicle)
				})
				r.Route("/garages", func(r chi.Router) {
					r.Get("/", s.h.Fleet.ListGarages)
					r.Post("/", s.h.Fleet.CreateGarage)
					r.Get("/{itemID}", s.h.Fleet.GetGarage)
					r.Put("/{itemID}", s.h.Fleet.UpdateGarage)
					r.Post("/{itemID}/inactivate", s.h.Fleet.InactivateGarage)
				})
				r.Route("/rates", func(r chi.Router) {
					r.Get("/", s.h.Fleet.ListRates)
					r.Post("/", s.h.Fleet.CreateRate)
					r.Get("/{itemID}", s.h.Fleet.GetRate)
					r.Put("/{itemID}", s.h.Fleet.UpdateRate)
					r.Post("/{itemID}/inactivate", s.h.Fleet.InactivateRate)
				})
			})
		})
		r.Get("/vehicle-types", s.h.Fleet.VehicleTypes)

		r.Get("/policies", s.h.Policy.List)
		r.Get("/required-policies", s.h.Policy.Required)

		r.Get("/user-policies", s.h.Ledger.ListUserPolicies)
		r.Put("/user-policies", s.h.Ledger.UpsertUserPolicy)
		r.Get("/signatures", s.h.Ledger.LoadSignature)
		r.Put("/signatures", s.h.Ledger.UpsertSignature)

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", s.h.Document.List)
			r.Post("/", s.h.Document.Create)
			r.Post("/upload-url", s.h.Document.UploadURL)
			r.Put("/logs/{id}", s.h.Document.UpdateLog)
			r.Get("/{id}", s.h.Document.Get)
			r.Delete("/{id}", s.h.Document.Delete)
		})

		// Administrators only
		r.Group(func(r chi.Router) {
			r.Use(handler.RequireAdministrator(s.accounts, s.logger))
			r.Post("/policies/refresh", s.h.Policy.Refresh)
			r.Get("/audit/consents", s.h.Audit.Consents)
		})
	})
}

// requestLogger logs each request and records its latency by route pattern.
func (s *ConsoleServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		s.metrics.RequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("trace_id", infra.TraceID(r.Context())))
	})
}

func (s *ConsoleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
