package handler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"chatty/internal/app/message"
	"chatty/internal/app/request"
	"chatty/internal/app/user"
	"chatty/internal/pkg/randx"
)

// In-memory implementations of the persistence contracts, used by the
// end-to-end tests to run the full HTTP and WebSocket stack without Postgres.

type memUserStore struct {
	mu    sync.RWMutex
	users map[string]user.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]user.User)}
}

func (s *memUserStore) Create(ctx context.Context, fullName, email, passwordHash string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return nil, user.ErrEmailTaken
		}
	}

	u := user.User{
		ID:           randx.NewID(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.users[u.ID] = u

	return &u, nil
}

func (s *memUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *memUserStore) GetByID(ctx context.Context, id string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	out := u
	return &out, nil
}

func (s *memUserStore) UpdateProfile(ctx context.Context, id string, fullName, profilePic *string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}

	if fullName != nil {
		u.FullName = *fullName
	}
	if profilePic != nil {
		u.ProfilePic = *profilePic
	}
	s.users[id] = u

	out := u
	return &out, nil
}

func (s *memUserStore) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			u.PasswordHash = passwordHash
			s.users[id] = u
			return nil
		}
	}
	return user.ErrNotFound
}

func (s *memUserStore) ListOthers(ctx context.Context, excludeID string) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		if u.ID != excludeID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memUserStore) ListByIDs(ctx context.Context, ids []string) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]user.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *memUserStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type memRequestStore struct {
	mu       sync.RWMutex
	requests []request.ChatRequest
	users    *memUserStore
}

func newMemRequestStore(users *memUserStore) *memRequestStore {
	return &memRequestStore{users: users}
}

func (s *memRequestStore) Create(ctx context.Context, senderID, receiverID string) (*request.ChatRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.requests {
		if rec.SenderID == senderID && rec.ReceiverID == receiverID && rec.Status == request.StatusPending {
			return nil, request.ErrDuplicatePending
		}
	}

	now := time.Now()
	rec := request.ChatRequest{
		ID:         randx.NewID(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     request.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.requests = append(s.requests, rec)

	out := rec
	return &out, nil
}

func (s *memRequestStore) HasPending(ctx context.Context, senderID, receiverID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.requests {
		if rec.SenderID == senderID && rec.ReceiverID == receiverID && rec.Status == request.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (s *memRequestStore) TransitionPending(ctx context.Context, requestID, receiverID string, to request.Status) (*request.ChatRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.requests {
		if s.requests[i].ID == requestID && s.requests[i].ReceiverID == receiverID && s.requests[i].Status == request.StatusPending {
			s.requests[i].Status = to
			s.requests[i].UpdatedAt = time.Now()

			out := s.requests[i]
			return &out, nil
		}
	}
	return nil, request.ErrNoPendingRequest
}

func (s *memRequestStore) LatestBetween(ctx context.Context, userA, userB string) (*request.ChatRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// requests is append-ordered; the last match is the most recent.
	for i := len(s.requests) - 1; i >= 0; i-- {
		rec := s.requests[i]
		if (rec.SenderID == userA && rec.ReceiverID == userB) ||
			(rec.SenderID == userB && rec.ReceiverID == userA) {
			out := rec
			return &out, nil
		}
	}
	return nil, nil
}

func (s *memRequestStore) PendingFor(ctx context.Context, receiverID string) ([]request.ChatRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []request.ChatRequest
	for i := len(s.requests) - 1; i >= 0; i-- {
		rec := s.requests[i]
		if rec.ReceiverID != receiverID || rec.Status != request.StatusPending {
			continue
		}
		if sender, err := s.users.GetByID(ctx, rec.SenderID); err == nil {
			profile := sender.Profile()
			rec.Sender = &profile
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *memRequestStore) AcceptedPeers(ctx context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var peers []string
	for _, rec := range s.requests {
		if rec.Status != request.StatusAccepted {
			continue
		}

		var peer string
		switch userID {
		case rec.SenderID:
			peer = rec.ReceiverID
		case rec.ReceiverID:
			peer = rec.SenderID
		default:
			continue
		}

		if _, ok := seen[peer]; !ok {
			seen[peer] = struct{}{}
			peers = append(peers, peer)
		}
	}
	return peers, nil
}

type memMessageStore struct {
	mu       sync.RWMutex
	messages []message.Message
}

func newMemMessageStore() *memMessageStore {
	return &memMessageStore{}
}

func (s *memMessageStore) Create(ctx context.Context, msg *message.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = randx.NewID()
	msg.CreatedAt = time.Now()
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *memMessageStore) Conversation(ctx context.Context, userA, userB string) ([]message.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []message.Message
	for _, msg := range s.messages {
		if (msg.SenderID == userA && msg.ReceiverID == userB) ||
			(msg.SenderID == userB && msg.ReceiverID == userA) {
			out = append(out, msg)
		}
	}
	return out, nil
}

// memMediaHost fakes the external media host, returning deterministic URLs.
type memMediaHost struct {
	mu      sync.Mutex
	uploads map[string][]byte
}

func newMemMediaHost() *memMediaHost {
	return &memMediaHost{uploads: make(map[string][]byte)}
}

func (m *memMediaHost) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.uploads[key] = data
	return fmt.Sprintf("https://media.test/%s", key), nil
}

func (m *memMediaHost) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.uploads, key)
	return nil
}
