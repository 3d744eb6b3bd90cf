package routers

import (
	"fmt"

	"github.com/fundlane/fundlane/internal/di"
	http2 "github.com/fundlane/fundlane/internal/infrastructure/api/http"
	"github.com/fundlane/fundlane/internal/infrastructure/api/middlewares"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(container *di.Container) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	auth := middlewares.AuthMiddleware(container.Config.Auth.JWTSecret)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/campaigns", func(r chi.Router) {
			ch := container.CampaignHandler
			ph := container.PaymentHandler

			r.Get("/", ch.ListCampaigns)
			r.Get("/trending", ch.ListTrending)
			r.With(auth).Post("/", ch.CreateCampaign)

			r.Route(fmt.Sprintf("/{%s}", http2.CampaignIDParam), func(r chi.Router) {
				r.Get("/", ch.GetCampaign)
				r.With(auth).Put("/", ch.UpdateCampaign)
				r.With(auth).Delete("/", ch.DeleteCampaign)
				r.With(auth).Post("/like", ch.ToggleLike)
				r.Get("/comments", ch.ListComments)
				r.With(auth).Post("/comments", ch.AddComment)
				r.Get("/transactions", ph.GetCampaignTransactions)
			})
		})

		r.Route("/payments", func(r chi.Router) {
			ph := container.PaymentHandler
			r.Use(auth)
			r.Post("/orders", ph.CreateOrder)
			r.Post("/verify", ph.VerifyPayment)
			r.Get(fmt.Sprintf("/history/{%s}", http2.UserIDParam), ph.GetPaymentHistory)
		})
	})

	return router
}
