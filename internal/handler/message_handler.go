/*
Package handler provides HTTP handler functions for direct messages: the
sidebar user list, conversation history, and message submission.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"chatty/internal/app/message"
	"chatty/internal/pkg/auth/jwt"
	"chatty/internal/pkg/errs"
	"chatty/internal/pkg/req"
	"chatty/internal/pkg/resp"
)

// HandleChatPartners lists every account other than the authenticated user's,
// for the client's contact sidebar.
func HandleChatPartners(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		accounts, err := deps.Users.ListOthers(r.Context(), identity.ID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"users": accounts})
	}
}

// HandleConversation returns the full message history between the
// authenticated user and the given peer, oldest first.
func HandleConversation(deps *AppDeps) http.HandlerFunc {
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

		messages, customErr := deps.Messages.Conversation(r.Context(), identity.ID, peerID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"messages": messages})
	}
}

// HandleSendMessage persists a message from the authenticated user to the
// given peer and pushes it to the peer's live connection if one exists.
// Messaging requires an accepted chat request between the pair.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		receiverID := chi.URLParam(r, "userId")
		if receiverID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		var input message.SendInput
		if customErr := req.BindUploadJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		msg, customErr := deps.Messages.Send(r.Context(), identity.ID, receiverID, input)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondCreated(w, r, map[string]any{"message": msg})
	}
}
