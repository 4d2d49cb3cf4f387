package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/metrics"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/security"
)

const DefaultBasePath = "/api-ibe"

// RouterOptions configure NewRouter. OperatorSecret verifies the operator
// tokens required by /session; empty means every /session call is rejected.
type RouterOptions struct {
	Logger         *slog.Logger
	BasePath       string
	OperatorSecret []byte
}

type Handlers struct {
	Session   *SessionHandler
	Payment   *PaymentHandler
	Promotion *PromotionHandler
}

func NewRouter(handlers Handlers, opts RouterOptions) *chi.Mux {
	if opts.BasePath == "" {
		opts.BasePath = DefaultBasePath
	}

	router := chi.NewRouter()
	router.Use(
		Recover(),
		RequestID(),
		Logging(opts.Logger),
	)

	router.Get("/healthz", func(writer http.ResponseWriter, _ *http.Request) {
		writeJSON(writer, http.StatusOK, &MessageResponse{Message: "ok"})
	})
	router.Handle("/metrics", metrics.Handler())

	router.Route(opts.BasePath, func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Use(security.OperatorMiddleware(opts.OperatorSecret, WriteError))
			r.Get("/", handlers.Session.Status)
			r.Post("/", handlers.Session.Seed)
			r.Delete("/", handlers.Session.Logout)
			r.Post("/refresh", handlers.Session.Refresh)
		})
		r.Post("/payment/sign", handlers.Payment.Sign)
		r.Post("/payment/checkout", handlers.Payment.Checkout)
		r.Post("/promotions/apply", handlers.Promotion.Apply)
	})

	return router
}
