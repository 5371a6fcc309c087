package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/novaacademy/aula-virtual/internal/api/handlers"
	"github.com/novaacademy/aula-virtual/internal/api/middleware"
	"github.com/novaacademy/aula-virtual/internal/config"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/service"
	"github.com/novaacademy/aula-virtual/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config, logger *zap.Logger, registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	metrics := middleware.NewMetrics(registry)

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(metrics.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	authHandler := handlers.NewAuthHandler(services.Auth, services.User)
	userHandler := handlers.NewUserHandler(services.User)
	categoryHandler := handlers.NewCategoryHandler(services.Category)
	courseHandler := handlers.NewCourseHandler(services.Course)
	liveHandler := handlers.NewLiveHandler(services.Live)
	purchaseHandler := handlers.NewPurchaseHandler(services.Purchase)
	paymentHandler := handlers.NewPaymentHandler(services.Payment, cfg.MaxVoucherBytes)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth, cfg.CORSAllowedOrigins)

	authenticated := middleware.Auth(services.Auth)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(authenticated)
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
				r.Get("/validate-token/{id}", authHandler.ValidateToken)
				r.Get("/getById/{id}", userHandler.GetByID)
				r.Get("/getByNovaId/{novaId}", userHandler.GetByNovaID)
				r.Put("/update/{id}", userHandler.Update)
				r.Get("/enrolled-courses/{id}", userHandler.EnrolledCourses)
				r.Patch("/change-password/{id}", userHandler.ChangePassword)
				r.Put("/avatar/{id}", userHandler.UploadAvatar)

				r.Group(func(r chi.Router) {
					r.Use(adminOnly)
					r.Post("/create", userHandler.Create)
					r.Delete("/delete/{id}", userHandler.Delete)
					r.Get("/all", userHandler.List)
					r.Post("/enroll/{id}", userHandler.Enroll)
				})
			})
		})

		r.Route("/category-courses", func(r chi.Router) {
			r.Get("/all", categoryHandler.List)
			r.Get("/getById/{id}", categoryHandler.GetByID)

			r.Group(func(r chi.Router) {
				r.Use(authenticated, adminOnly)
				r.Post("/create", categoryHandler.Create)
				r.Put("/update/{id}", categoryHandler.Update)
				r.Delete("/delete/{id}", categoryHandler.Delete)
			})
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/all", courseHandler.List)
			r.Get("/getById/{id}", courseHandler.GetByID)
			r.Get("/view-details/{id}", courseHandler.Details)

			r.Group(func(r chi.Router) {
				r.Use(authenticated, adminOnly)
				r.Post("/create", courseHandler.Create)
				r.Put("/update/{id}", courseHandler.Update)
				r.Delete("/delete/{id}", courseHandler.Delete)
			})
		})

		r.Route("/lives", func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/all", liveHandler.List)
			r.Get("/getById/{id}", liveHandler.GetByID)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Post("/create", liveHandler.Create)
				r.Put("/update/{id}", liveHandler.Update)
				r.Delete("/delete/{id}", liveHandler.Delete)
			})
		})

		r.Route("/courses-buyded", func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/all", purchaseHandler.List)
			r.Get("/getById/{id}", purchaseHandler.GetByID)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Post("/create", purchaseHandler.Create)
				r.Put("/update/{id}", purchaseHandler.Update)
				r.Delete("/delete/{id}", purchaseHandler.Delete)
				r.Get("/export", purchaseHandler.Export)
			})
		})

		r.Route("/payments", func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/all", paymentHandler.List)
			r.Get("/getById/{id}", paymentHandler.GetByID)
			r.Get("/voucher/{id}", paymentHandler.Voucher)
			r.Post("/process-payment-image", paymentHandler.ProcessImage)
			r.With(adminOnly).Put("/review/{id}", paymentHandler.Review)
		})

		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
