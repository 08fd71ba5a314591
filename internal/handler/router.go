/*
Package handler provides the HTTP handlers and routing setup for the Chatty server.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers (API and WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"chatty/internal/pkg/auth/jwt"
	"chatty/internal/pkg/limiter"
	"chatty/internal/pkg/logx"
	"chatty/internal/pkg/resp"
)

const (
	SignupRate  = 0.05
	SignupBurst = 2
	LoginRate   = 0.2
	LoginBurst  = 5
	WSRate      = 0.2
	WSBurst     = 5
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global and
// per-route middleware before wiring the auth, chat-request, message, and
// WebSocket endpoints.
func Router(deps *AppDeps) http.Handler {
	signupLimiter := limiter.NewIPRateLimiter(rate.Limit(SignupRate), SignupBurst)
	loginLimiter := limiter.NewIPRateLimiter(rate.Limit(LoginRate), LoginBurst)
	wsLimiter := limiter.NewIPRateLimiter(rate.Limit(WSRate), WSBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		logx.Info("Health check endpoint hit")

		data := map[string]string{
			"status":  "ok",
			"service": "Chatty Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Route("/auth", func(auth chi.Router) {
			rateLimitedSignup := signupLimiter.Middleware(HandleSignup(deps))
			auth.Post("/signup", http.HandlerFunc(rateLimitedSignup.ServeHTTP))

			rateLimitedLogin := loginLimiter.Middleware(HandleLogin(deps))
			auth.Post("/login", http.HandlerFunc(rateLimitedLogin.ServeHTTP))

			auth.Post("/logout", HandleLogout(deps))
			auth.Get("/check", HandleCheckAuth(deps))
			auth.Put("/update-profile", HandleUpdateProfile(deps))
			auth.Post("/reset-password", HandleResetPassword(deps))
			auth.Delete("/delete-account", HandleDeleteAccount(deps))
		})

		api.Route("/requests", func(reqs chi.Router) {
			reqs.Post("/", HandleSendChatRequest(deps))
			reqs.Get("/", HandlePendingChatRequests(deps))
			reqs.Get("/accepted-users", HandleAcceptedUsers(deps))
			reqs.Get("/status/{userId}", HandleChatRequestStatus(deps))
			reqs.Put("/{requestId}/accept", HandleAcceptChatRequest(deps))
			reqs.Put("/{requestId}/reject", HandleRejectChatRequest(deps))
		})

		api.Route("/messages", func(msgs chi.Router) {
			msgs.Get("/users", HandleChatPartners(deps))
			msgs.Get("/{userId}", HandleConversation(deps))
			msgs.Post("/send/{userId}", HandleSendMessage(deps))
		})
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, wsLimiter, deps))

	return r
}
