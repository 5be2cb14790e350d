package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/taskbox-api/internal/application/auth"
	"github.com/taskbox-api/internal/application/todo"
	"github.com/taskbox-api/internal/application/user"
	"github.com/taskbox-api/internal/config"
	"github.com/taskbox-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/taskbox-api/internal/infrastructure/jwt"
	s3infra "github.com/taskbox-api/internal/infrastructure/s3"
	"github.com/taskbox-api/internal/infrastructure/smtp"
	"github.com/taskbox-api/internal/infrastructure/sns"
	"github.com/taskbox-api/internal/transport/http/handler"
	appmiddleware "github.com/taskbox-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	VerificationRepo *dynamo.VerificationRepo
	TodoRepo         *dynamo.TodoRepo
	ImageStore       *s3infra.Store
	Mailer           smtp.Mailer
	SMSSender        sns.SMSSender
	JWTProvider      *jwtinfra.Provider
	ActivationSigner *jwtinfra.ActivationSigner
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:         deps.UserRepo,
		VerificationRepo: deps.VerificationRepo,
		Mailer:           deps.Mailer,
		SMSSender:        deps.SMSSender,
		ActivationSigner: deps.ActivationSigner,
		Mode:             cfg.VerificationMode,
		OTPTTL:           cfg.OTPTTL,
		AppURL:           cfg.AppURL,
	})
	authSvc := auth.NewService(deps.UserRepo, deps.VerificationRepo, deps.JWTProvider, deps.ActivationSigner)
	todoSvc := todo.NewService(deps.TodoRepo, deps.ImageStore)

	healthH := handler.NewHealthHandler()
	userH := handler.NewUserHandler(userSvc)
	authH := handler.NewAuthHandler(authSvc, cfg.SessionTokenTTL)
	todoH := handler.NewTodoHandler(todoSvc)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.Route("/user", func(r chi.Router) {
			// ── Public routes ────────────────────────────────────────────
			r.With(sensitiveRL.Limit).Post("/signup", userH.SignUp)
			r.With(sensitiveRL.Limit).Post("/verify_otp", authH.VerifyOTP)
			r.With(sensitiveRL.Limit).Post("/activation", authH.Activate)
			r.With(sensitiveRL.Limit).Post("/signin", authH.SignIn)
			r.Post("/refresh_token", authH.Refresh)

			// ── Authenticated routes ─────────────────────────────────────
			r.Group(func(r chi.Router) {
				r.Use(authMw)

				r.Get("/user-infor", userH.UserInfor)
				r.Patch("/update/{id}", userH.Update)
				r.Delete("/delete/{id}", userH.Delete)
			})
		})

		r.Route("/todo", func(r chi.Router) {
			r.Use(authMw)

			r.Post("/", todoH.Create)
			r.Get("/", todoH.List)
			r.Patch("/{id}", todoH.Update)
			r.Delete("/{id}", todoH.Delete)
			r.Post("/image", todoH.UploadImage)
		})
	})

	return r
}
