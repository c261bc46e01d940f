package routes

import (
	"fmt"

	"github.com/shashiranjanraj/sampleapp/app/controllers"
	"github.com/shashiranjanraj/sampleapp/app/repositories"
	"github.com/shashiranjanraj/sampleapp/app/services"
	"github.com/shashiranjanraj/sampleapp/pkg/app"
	"github.com/shashiranjanraj/sampleapp/pkg/auth"
	"github.com/shashiranjanraj/sampleapp/pkg/middleware"
	"github.com/shashiranjanraj/sampleapp/pkg/router"
)

// Login attempts allowed per client IP: one every 2s, bursts of 5.
const (
	loginRate  = 0.5
	loginBurst = 5
)

// API returns the registrar for the /api route table. Without a bound
// data-access layer the routes are still mounted, which is what route:list
// needs. trustedProxies may report client addresses to the login limiter.
func API(signer *auth.Signer, trustedProxies ...string) app.RouteRegistrar {
	return func(sc *app.Context, r *router.Router) error {
		set := &repositories.Set{}
		if dal := sc.Models(); dal != nil {
			var ok bool
			if set, ok = dal.(*repositories.Set); !ok {
				return fmt.Errorf("unexpected data-access layer %T", dal)
			}
		}

		authService := services.NewAuthService(set.Users, signer)
		authController := controllers.NewAuthController(authService, set.Users)
		productController := controllers.NewProductController(set.Products, r)
		loginLimiter := middleware.NewLimiter(loginRate, loginBurst)
		if err := loginLimiter.TrustProxies(trustedProxies...); err != nil {
			return err
		}

		api := r.Group("/api")
		api.Post("/users", "users.store", authController.Register)
		api.Post("/login", "auth.login", authController.Login, loginLimiter.Middleware)
		api.Get("/products", "products.index", productController.Index)
		api.Get("/products/{id}", "products.show", productController.Show)

		protected := api.Group("", middleware.Auth(signer))
		protected.Get("/profile", "auth.profile", authController.Profile)
		protected.Post("/products", "products.store", productController.Store)
		return nil
	}
}
