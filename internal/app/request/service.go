/*
Package request implements the chat-request state machine.

This file defines the Service: transition guards run before any persistence write,
persistence failures abort with nothing relayed, and only a committed transition
reaches the Event Relay. Liveness is never consulted here; whether the counterpart
is reachable is the relay's concern.
*/
package request

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"chatty/internal/app/chat"
	"chatty/internal/pkg/errs"
	"chatty/internal/pkg/logx"
)

// Notifier receives committed transitions for push delivery. *chat.Relay
// satisfies it; tests substitute a recording fake.
type Notifier interface {
	RequestCreated(ev chat.RequestEvent)
	RequestAccepted(ev chat.RequestEvent)
	RequestRejected(ev chat.RequestEvent)
}

// Service validates chat-request transitions, persists them, and relays the outcome.
type Service struct {
	store  Store
	notify Notifier
	logger zerolog.Logger
}

// NewService constructs a Service over the given store and notifier.
func NewService(store Store, notify Notifier) *Service {
	return &Service{
		store:  store,
		notify: notify,
		logger: logx.Logger().With().Str("component", "RequestService").Logger(),
	}
}

// Send creates a new pending request from senderID to receiverID. A pending
// request for the same ordered pair yields ErrDuplicateRequest and leaves state
// untouched. On success the receiver, if online, is pushed a newChatRequest event.
func (s *Service) Send(ctx context.Context, senderID, receiverID string) (*ChatRequest, *errs.CustomError) {
	if senderID == receiverID {
		return nil, errs.NewError(errs.ErrSelfRequest)
	}

	exists, err := s.store.HasPending(ctx, senderID, receiverID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to check for pending request.")
		return nil, errs.NewError(errs.ErrUnknown, err)
	}
	if exists {
		return nil, errs.NewError(errs.ErrDuplicateRequest)
	}

	record, err := s.store.Create(ctx, senderID, receiverID)
	if err != nil {
		// The guard above races concurrent senders; the store's uniqueness
		// constraint is the backstop.
		if errors.Is(err, ErrDuplicatePending) {
			return nil, errs.NewError(errs.ErrDuplicateRequest)
		}

		s.logger.Error().Err(err).Msg("Failed to create chat request.")
		return nil, errs.NewError(errs.ErrUnknown, err)
	}

	s.notify.RequestCreated(chat.RequestEvent{
		RequestID:  record.ID,
		SenderID:   record.SenderID,
		ReceiverID: record.ReceiverID,
		Status:     string(record.Status),
		CreatedAt:  record.CreatedAt,
	})

	return record, nil
}

// Accept transitions a pending request to accepted and notifies the original
// sender. callerID must be the request's receiver; anyone else observes the
// request as not found.
func (s *Service) Accept(ctx context.Context, requestID, callerID string) (*ChatRequest, *errs.CustomError) {
	record, customErr := s.resolve(ctx, requestID, callerID, StatusAccepted)
	if customErr != nil {
		return nil, customErr
	}

	s.notify.RequestAccepted(s.transitionEvent(record))

	return record, nil
}

// Reject transitions a pending request to rejected and notifies the original
// sender. Like Accept, only the request's receiver may resolve it.
func (s *Service) Reject(ctx context.Context, requestID, callerID string) (*ChatRequest, *errs.CustomError) {
	record, customErr := s.resolve(ctx, requestID, callerID, StatusRejected)
	if customErr != nil {
		return nil, customErr
	}

	s.notify.RequestRejected(s.transitionEvent(record))

	return record, nil
}

func (s *Service) resolve(ctx context.Context, requestID, callerID string, to Status) (*ChatRequest, *errs.CustomError) {
	record, err := s.store.TransitionPending(ctx, requestID, callerID, to)
	if err != nil {
		if errors.Is(err, ErrNoPendingRequest) {
			return nil, errs.NewError(errs.ErrRequestNotFound)
		}

		s.logger.Error().Err(err).Str("request_id", requestID).Msg("Failed to transition chat request.")
		return nil, errs.NewError(errs.ErrUnknown, err)
	}

	return record, nil
}

func (s *Service) transitionEvent(record *ChatRequest) chat.RequestEvent {
	return chat.RequestEvent{
		RequestID:  record.ID,
		SenderID:   record.SenderID,
		ReceiverID: record.ReceiverID,
		Status:     string(record.Status),
		UpdatedAt:  record.UpdatedAt,
	}
}

// StatusBetween returns the status of the most recent request between the two
// users, in either direction, or StatusNone when no record exists. This is the
// single source of truth clients derive their request state from.
func (s *Service) StatusBetween(ctx context.Context, userA, userB string) (Status, *errs.CustomError) {
	record, err := s.store.LatestBetween(ctx, userA, userB)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to query latest chat request.")
		return StatusNone, errs.NewError(errs.ErrUnknown, err)
	}

	if record == nil {
		return StatusNone, nil
	}
	return record.Status, nil
}

// PendingFor lists pending requests addressed to receiverID, newest first.
func (s *Service) PendingFor(ctx context.Context, receiverID string) ([]ChatRequest, *errs.CustomError) {
	records, err := s.store.PendingFor(ctx, receiverID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list pending chat requests.")
		return nil, errs.NewError(errs.ErrUnknown, err)
	}
	return records, nil
}

// AcceptedPeers returns the identities with an accepted request involving userID.
func (s *Service) AcceptedPeers(ctx context.Context, userID string) ([]string, *errs.CustomError) {
	peers, err := s.store.AcceptedPeers(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list accepted peers.")
		return nil, errs.NewError(errs.ErrUnknown, err)
	}
	return peers, nil
}

// CanMessage reports whether the two users may currently exchange messages:
// true iff the most recent request between them is accepted.
func (s *Service) CanMessage(ctx context.Context, userA, userB string) (bool, *errs.CustomError) {
	status, customErr := s.StatusBetween(ctx, userA, userB)
	if customErr != nil {
		return false, customErr
	}
	return status == StatusAccepted, nil
}
