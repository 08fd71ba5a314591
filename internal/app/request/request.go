/*
Package request implements the chat-request state machine: the mutual-consent
handshake that decides whether two users may exchange messages.

A chat request is created in the pending state by a send action, transitions
exactly once to accepted or rejected by the receiver, and is immutable afterwards.
At most one pending request may exist for an ordered (sender, receiver) pair;
after a rejection a fresh send creates a new record, keeping the old one as history.

The derived "can message" predicate for an unordered pair is true iff the most
recent request between the two users, in either direction, is accepted.
*/
package request

import (
	"context"
	"errors"
	"time"

	"chatty/internal/app/user"
)

// Status is the lifecycle state of a chat request. StatusNone is the implicit
// state when no request record exists for a pair.
type Status string

const (
	StatusNone     Status = "none"
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Sentinel errors returned by Store implementations.
var (
	// ErrDuplicatePending indicates a pending request already exists for the
	// ordered (sender, receiver) pair.
	ErrDuplicatePending = errors.New("pending chat request already exists")

	// ErrNoPendingRequest indicates accept/reject targeted a request that is
	// missing or no longer pending.
	ErrNoPendingRequest = errors.New("no pending chat request")
)

// ChatRequest is a persisted consent record between an ordered pair of users.
type ChatRequest struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Sender carries the sender's public profile on inbox listings.
	Sender *user.Profile `json:"sender,omitempty"`
}

// Store is the persistence contract for chat requests.
type Store interface {
	// Create inserts a new pending request for the ordered pair.
	// A pending duplicate yields ErrDuplicatePending.
	Create(ctx context.Context, senderID, receiverID string) (*ChatRequest, error)

	// HasPending reports whether a pending request exists for the exact ordered pair.
	HasPending(ctx context.Context, senderID, receiverID string) (bool, error)

	// TransitionPending atomically moves the request from pending to the given
	// terminal status and returns the updated record. Only the request's
	// receiver may transition it: a request that is missing, not pending, or
	// addressed to someone else yields ErrNoPendingRequest.
	TransitionPending(ctx context.Context, requestID, receiverID string, to Status) (*ChatRequest, error)

	// LatestBetween returns the most recent request between the two users in
	// either direction, ordered by creation time descending, or nil when none exists.
	LatestBetween(ctx context.Context, userA, userB string) (*ChatRequest, error)

	// PendingFor returns all pending requests addressed to receiverID, newest
	// first, with the sender profile attached.
	PendingFor(ctx context.Context, receiverID string) ([]ChatRequest, error)

	// AcceptedPeers returns the distinct counterpart IDs of every accepted
	// request involving userID.
	AcceptedPeers(ctx context.Context, userID string) ([]string, error)
}
