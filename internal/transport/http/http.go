package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"

	"github.com/rigbuilders/settlement-svc/internal/coupon"
	"github.com/rigbuilders/settlement-svc/internal/service/models/order"
	"github.com/rigbuilders/settlement-svc/internal/service/models/procurementitem"
	"github.com/rigbuilders/settlement-svc/internal/service/models/settlement"
	listorders "github.com/rigbuilders/settlement-svc/internal/transport/http/list_orders"
	listprocurement "github.com/rigbuilders/settlement-svc/internal/transport/http/list_procurement"
	orderstatus "github.com/rigbuilders/settlement-svc/internal/transport/http/order_status"
	settleorder "github.com/rigbuilders/settlement-svc/internal/transport/http/settle_order"
	validatecoupon "github.com/rigbuilders/settlement-svc/internal/transport/http/validate_coupon"
	"github.com/rigbuilders/settlement-svc/pkg/http/middleware/trace"
	"github.com/rigbuilders/settlement-svc/pkg/logger"
)

type service interface {
	Settle(ctx context.Context, req settlement.Request) (settlement.Result, error)
	GetOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error)
	GetOrderStatus(ctx context.Context, orderID int64) (order.Status, error)
	GetProcurementItems(ctx context.Context, orderID int64) ([]procurementitem.ProcurementItem, error)
}

type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	service service
	coupons coupon.Validator
}

func NewHTTPTransport(service service, coupons coupon.Validator) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:  server,
		router:  router,
		service: service,
		coupons: coupons,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Post("/settle", h.settle)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}/status", h.orderStatus)
		r.Get("/orders/{id}/procurement", h.listProcurement)
		r.Get("/coupons/validate", h.validateCoupon)
	})
}

func (h *HTTPTransport) settle(w http.ResponseWriter, r *http.Request) {
	settleorder.Settle(w, r, h.service)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.service)
}

func (h *HTTPTransport) orderStatus(w http.ResponseWriter, r *http.Request) {
	orderstatus.GetOrderStatus(w, r, h.service)
}

func (h *HTTPTransport) listProcurement(w http.ResponseWriter, r *http.Request) {
	listprocurement.ListProcurement(w, r, h.service)
}

func (h *HTTPTransport) validateCoupon(w http.ResponseWriter, r *http.Request) {
	validatecoupon.ValidateCoupon(w, r, h.coupons)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
