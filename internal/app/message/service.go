/*
Package message contains the direct-message model and service.

This file defines the Service. Authorization is enforced server-side: a message is
persisted only when the most recent chat request between the pair is accepted. The
media upload and the persistence write both complete before the relay push, so a
pushed event always matches durably committed state. Relay delivery itself is
best-effort and never fails the send.
*/
package message

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/rs/zerolog"

	"chatty/internal/pkg/errs"
	"chatty/internal/pkg/logx"
	"chatty/internal/pkg/randx"
)

// Uploader stores raw attachment bytes on the media host and returns a durable URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Authorizer answers the "can message" predicate for a pair of users.
// *request.Service satisfies it.
type Authorizer interface {
	CanMessage(ctx context.Context, userA, userB string) (bool, *errs.CustomError)
}

// Notifier pushes a committed message to its receiver. *chat.Relay satisfies it.
type Notifier interface {
	MessageCreated(receiverID string, message any)
}

// SendInput is the submission payload for a new message. File, when present,
// is base64-encoded content (optionally a data URI).
type SendInput struct {
	Text     string `json:"text"`
	File     string `json:"file"`
	FileType Kind   `json:"fileType"`
	FileName string `json:"fileName"`
}

// Service validates, persists, and relays direct messages.
type Service struct {
	store  Store
	media  Uploader
	authz  Authorizer
	notify Notifier
	logger zerolog.Logger
}

// NewService constructs a message Service.
func NewService(store Store, media Uploader, authz Authorizer, notify Notifier) *Service {
	return &Service{
		store:  store,
		media:  media,
		authz:  authz,
		notify: notify,
		logger: logx.Logger().With().Str("component", "MessageService").Logger(),
	}
}

// Send validates and persists a message from senderID to receiverID, then pushes
// it to the receiver's live connection if one exists.
func (s *Service) Send(ctx context.Context, senderID, receiverID string, in SendInput) (*Message, *errs.CustomError) {
	if in.Text == "" && in.File == "" {
		return nil, errs.NewError(errs.ErrMessageEmpty)
	}

	if customErr := ValidateText(in.Text); customErr != nil {
		return nil, customErr
	}

	allowed, customErr := s.authz.CanMessage(ctx, senderID, receiverID)
	if customErr != nil {
		return nil, customErr
	}
	if !allowed {
		return nil, errs.NewError(errs.ErrChatNotAccepted)
	}

	msg := &Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       in.Text,
	}

	if in.File != "" {
		fileURL, customErr := s.uploadAttachment(ctx, in)
		if customErr != nil {
			return nil, customErr
		}

		msg.FileURL = fileURL
		msg.FileType = in.FileType
		msg.FileName = in.FileName
	}

	if err := s.store.Create(ctx, msg); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist message.")
		return nil, errs.NewError(errs.ErrUnknown, err)
	}

	s.notify.MessageCreated(msg.ReceiverID, msg)

	return msg, nil
}

// uploadAttachment decodes and validates the inline attachment, stores it on the
// media host, and returns the durable URL.
func (s *Service) uploadAttachment(ctx context.Context, in SendInput) (string, *errs.CustomError) {
	if !ValidKind(in.FileType) {
		return "", errs.NewError(errs.ErrAttachmentInvalid)
	}

	data, err := base64.StdEncoding.DecodeString(StripDataURI(in.File))
	if err != nil {
		return "", errs.NewError(errs.ErrAttachmentInvalid)
	}

	if len(data) == 0 {
		return "", errs.NewError(errs.ErrAttachmentInvalid)
	}
	if len(data) > MaxAttachmentSize {
		return "", errs.NewError(errs.ErrFileSizeTooLarge)
	}

	key := randx.AttachmentKey(in.FileName)
	contentType := http.DetectContentType(data)

	fileURL, err := s.media.Upload(ctx, key, contentType, data)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Media host upload failed.")
		return "", errs.NewError(errs.ErrFileStorageFailed)
	}

	return fileURL, nil
}

// Conversation returns the full message history between the two users,
// oldest first.
func (s *Service) Conversation(ctx context.Context, userA, userB string) ([]Message, *errs.CustomError) {
	messages, err := s.store.Conversation(ctx, userA, userB)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load conversation.")
		return nil, errs.NewError(errs.ErrUnknown, err)
	}
	return messages, nil
}
