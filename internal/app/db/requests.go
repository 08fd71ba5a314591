package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chatty/internal/app/request"
	"chatty/internal/app/user"
	"chatty/internal/pkg/randx"
)

const requestColumns = "id, sender_id, receiver_id, status, created_at, updated_at"

// RequestStore is the pgx-backed implementation of request.Store.
type RequestStore struct {
	pool *pgxpool.Pool
}

// NewRequestStore constructs a RequestStore over the given pool.
func NewRequestStore(pool *pgxpool.Pool) *RequestStore {
	return &RequestStore{pool: pool}
}

func scanRequest(row pgx.Row) (*request.ChatRequest, error) {
	var r request.ChatRequest
	err := row.Scan(&r.ID, &r.SenderID, &r.ReceiverID, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a new pending request. The partial unique index on
// (sender_id, receiver_id) WHERE status = 'pending' turns a concurrent
// duplicate into request.ErrDuplicatePending.
func (s *RequestStore) Create(ctx context.Context, senderID, receiverID string) (*request.ChatRequest, error) {
	query := fmt.Sprintf(`
		INSERT INTO chat_requests (id, sender_id, receiver_id, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING %s`, requestColumns)

	r, err := scanRequest(s.pool.QueryRow(ctx, query, randx.NewID(), senderID, receiverID))
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, request.ErrDuplicatePending
		}
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	return r, nil
}

// HasPending reports whether a pending request exists for the exact ordered pair.
func (s *RequestStore) HasPending(ctx context.Context, senderID, receiverID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM chat_requests
			WHERE sender_id = $1 AND receiver_id = $2 AND status = 'pending'
		)`, senderID, receiverID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pending chat request: %w", err)
	}
	return exists, nil
}

// TransitionPending atomically moves a pending request to the given terminal
// status. The WHERE clause makes the transition single-shot and receiver-only:
// a request that is missing, already terminal, or addressed to a different
// receiver yields request.ErrNoPendingRequest.
func (s *RequestStore) TransitionPending(ctx context.Context, requestID, receiverID string, to request.Status) (*request.ChatRequest, error) {
	query := fmt.Sprintf(`
		UPDATE chat_requests
		SET status = $3, updated_at = now()
		WHERE id = $1 AND receiver_id = $2 AND status = 'pending'
		RETURNING %s`, requestColumns)

	r, err := scanRequest(s.pool.QueryRow(ctx, query, requestID, receiverID, string(to)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, request.ErrNoPendingRequest
		}
		return nil, fmt.Errorf("transition chat request: %w", err)
	}
	return r, nil
}

// LatestBetween returns the most recent request between the two users in either
// direction, or nil when no record exists.
func (s *RequestStore) LatestBetween(ctx context.Context, userA, userB string) (*request.ChatRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM chat_requests
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at DESC
		LIMIT 1`, requestColumns)

	r, err := scanRequest(s.pool.QueryRow(ctx, query, userA, userB))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest chat request between users: %w", err)
	}
	return r, nil
}

// PendingFor returns all pending requests addressed to receiverID, newest first,
// with the sender's public profile attached.
func (s *RequestStore) PendingFor(ctx context.Context, receiverID string) ([]request.ChatRequest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT cr.id, cr.sender_id, cr.receiver_id, cr.status, cr.created_at, cr.updated_at,
		       u.full_name, u.profile_pic
		FROM chat_requests cr
		JOIN users u ON u.id = cr.sender_id
		WHERE cr.receiver_id = $1 AND cr.status = 'pending'
		ORDER BY cr.created_at DESC`, receiverID)
	if err != nil {
		return nil, fmt.Errorf("list pending chat requests: %w", err)
	}
	defer rows.Close()

	requests := []request.ChatRequest{}
	for rows.Next() {
		var r request.ChatRequest
		var sender user.Profile
		err := rows.Scan(&r.ID, &r.SenderID, &r.ReceiverID, &r.Status, &r.CreatedAt, &r.UpdatedAt,
			&sender.FullName, &sender.ProfilePic)
		if err != nil {
			return nil, fmt.Errorf("scan pending chat request: %w", err)
		}
		sender.ID = r.SenderID
		r.Sender = &sender
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending chat requests: %w", err)
	}
	return requests, nil
}

// AcceptedPeers returns the distinct counterpart IDs of every accepted request
// involving userID.
func (s *RequestStore) AcceptedPeers(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END
		FROM chat_requests
		WHERE status = 'accepted' AND (sender_id = $1 OR receiver_id = $1)`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accepted peers: %w", err)
	}
	defer rows.Close()

	peers := []string{}
	for rows.Next() {
		var peerID string
		if err := rows.Scan(&peerID); err != nil {
			return nil, fmt.Errorf("scan accepted peer: %w", err)
		}
		peers = append(peers, peerID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accepted peers: %w", err)
	}
	return peers, nil
}
