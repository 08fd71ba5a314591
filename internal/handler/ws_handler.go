/*
Package handler provides the HTTP handler function for WebSocket connection upgrading
and initialization.

This file contains the HandleWebSocket function, which is responsible for rate
limiting, resolving the caller's identity from the token query parameter, upgrading
the HTTP connection to WebSocket, and initiating the client lifecycle.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"chatty/internal/app/chat"
	"chatty/internal/pkg/auth/jwt"
	"chatty/internal/pkg/errs"
	"chatty/internal/pkg/limiter"
	"chatty/internal/pkg/logx"
	"chatty/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
// Browsers cannot set headers on the WebSocket handshake, so identity arrives as a
// token query parameter rather than an Authorization header. A missing or invalid
// token still gets a connection; it receives broadcasts but carries no identity, so
// no directed events reach it and it never appears in the online set.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		userID := ""
		if token := r.URL.Query().Get("token"); token != "" {
			payload, err := jwt.ParseToken(token, deps.Config.JWTSecret)
			if err != nil {
				logx.Warn("WebSocket handshake carried an invalid token, treating as anonymous", "error", err)
			} else {
				userID = payload.ID
			}
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Hub, conn, userID)

		go client.WritePump()

		logx.Info("WebSocket connection established", "user_id", userID, "conn_id", client.ConnID())

		deps.Hub.RegisterClient(client)

		client.ReadPump()
	}
}
