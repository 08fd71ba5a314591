/*
Package handler provides HTTP handler functions for the chat-request lifecycle:
sending, listing, accepting, rejecting, and status queries.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"chatty/internal/pkg/auth/jwt"
	"chatty/internal/pkg/errs"
	"chatty/internal/pkg/req"
	"chatty/internal/pkg/resp"
)

type SendChatRequestInput struct {
	ReceiverID string `json:"receiverId"`
}

// HandleSendChatRequest creates a pending chat request from the authenticated
// user to the given receiver.
func HandleSendChatRequest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input SendChatRequestInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.ReceiverID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		record, customErr := deps.Requests.Send(r.Context(), identity.ID, input.ReceiverID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondCreated(w, r, map[string]any{"request": record})
	}
}

// HandlePendingChatRequests lists the pending requests addressed to the
// authenticated user, newest first, each carrying the sender's profile.
func HandlePendingChatRequests(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		records, customErr := deps.Requests.PendingFor(r.Context(), identity.ID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"requests": records})
	}
}

// HandleAcceptChatRequest transitions a pending request to accepted. Only the
// request's receiver may accept it; the original sender, if online, is pushed
// a chatRequestAccepted event.
func HandleAcceptChatRequest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		requestID := chi.URLParam(r, "requestId")
		if requestID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		record, customErr := deps.Requests.Accept(r.Context(), requestID, identity.ID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"request": record})
	}
}

// HandleRejectChatRequest transitions a pending request to rejected. Only the
// request's receiver may reject it; the original sender, if online, is pushed
// a chatRequestRejected event.
func HandleRejectChatRequest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		requestID := chi.URLParam(r, "requestId")
		if requestID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		record, customErr := deps.Requests.Reject(r.Context(), requestID, identity.ID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"request": record})
	}
}

// HandleChatRequestStatus returns the status of the most recent request
// between the authenticated user and the given peer, in either direction.
func HandleChatRequestStatus(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		peerID := chi.URLParam(r, "userId")
		if peerID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		status, customErr := deps.Requests.StatusBetween(r.Context(), identity.ID, peerID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"status": status})
	}
}

// HandleAcceptedUsers returns the profiles of every user with an accepted
// chat request involving the authenticated user.
func HandleAcceptedUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		peerIDs, customErr := deps.Requests.AcceptedPeers(r.Context(), identity.ID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		accounts, err := deps.Users.ListByIDs(r.Context(), peerIDs)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"users": accounts})
	}
}
