package request_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatty/internal/app/chat"
	"chatty/internal/app/request"
	"chatty/internal/pkg/errs"
)

// MockStore is a testify mock implementation of the request.Store interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, senderID, receiverID string) (*request.ChatRequest, error) {
	args := m.Called(senderID, receiverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*request.ChatRequest), args.Error(1)
}

func (m *MockStore) HasPending(ctx context.Context, senderID, receiverID string) (bool, error) {
	args := m.Called(senderID, receiverID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) TransitionPending(ctx context.Context, requestID, receiverID string, to request.Status) (*request.ChatRequest, error) {
	args := m.Called(requestID, receiverID, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*request.ChatRequest), args.Error(1)
}

func (m *MockStore) LatestBetween(ctx context.Context, userA, userB string) (*request.ChatRequest, error) {
	args := m.Called(userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*request.ChatRequest), args.Error(1)
}

func (m *MockStore) PendingFor(ctx context.Context, receiverID string) ([]request.ChatRequest, error) {
	args := m.Called(receiverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]request.ChatRequest), args.Error(1)
}

func (m *MockStore) AcceptedPeers(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// recordingNotifier captures relayed transitions by event name.
type recordingNotifier struct {
	created  []chat.RequestEvent
	accepted []chat.RequestEvent
	rejected []chat.RequestEvent
}

func (n *recordingNotifier) RequestCreated(ev chat.RequestEvent)  { n.created = append(n.created, ev) }
func (n *recordingNotifier) RequestAccepted(ev chat.RequestEvent) { n.accepted = append(n.accepted, ev) }
func (n *recordingNotifier) RequestRejected(ev chat.RequestEvent) { n.rejected = append(n.rejected, ev) }

func pendingRequest(id, sender, receiver string) *request.ChatRequest {
	now := time.Now().UTC()
	return &request.ChatRequest{
		ID:         id,
		SenderID:   sender,
		ReceiverID: receiver,
		Status:     request.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestService_Send(t *testing.T) {
	store := new(MockStore)
	notify := &recordingNotifier{}
	svc := request.NewService(store, notify)

	store.On("HasPending", "a1", "b1").Return(false, nil)
	store.On("Create", "a1", "b1").Return(pendingRequest("r1", "a1", "b1"), nil)

	record, customErr := svc.Send(context.Background(), "a1", "b1")
	require.Nil(t, customErr)
	assert.Equal(t, request.StatusPending, record.Status)

	require.Len(t, notify.created, 1)
	assert.Equal(t, "r1", notify.created[0].RequestID)
	assert.Equal(t, "b1", notify.created[0].ReceiverID)
	assert.Equal(t, "pending", notify.created[0].Status)
}

func TestService_SendDuplicatePending(t *testing.T) {
	store := new(MockStore)
	notify := &recordingNotifier{}
	svc := request.NewService(store, notify)

	store.On("HasPending", "a1", "b1").Return(true, nil)

	_, customErr := svc.Send(context.Background(), "a1", "b1")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrDuplicateRequest, customErr.Code)

	// No record created, nothing relayed.
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, notify.created)
}

func TestService_SendDuplicateRace(t *testing.T) {
	store := new(MockStore)
	notify := &recordingNotifier{}
	svc := request.NewService(store, notify)

	// The pre-check misses but the store's uniqueness constraint fires.
	store.On("HasPending", "a1", "b1").Return(false, nil)
	store.On("Create", "a1", "b1").Return(nil, request.ErrDuplicatePending)

	_, customErr := svc.Send(context.Background(), "a1", "b1")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrDuplicateRequest, customErr.Code)
	assert.Empty(t, notify.created)
}

func TestService_SendToSelf(t *testing.T) {
	store := new(MockStore)
	svc := request.NewService(store, &recordingNotifier{})

	_, customErr := svc.Send(context.Background(), "a1", "a1")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrSelfRequest, customErr.Code)

	store.AssertNotCalled(t, "HasPending", mock.Anything, mock.Anything)
}

func TestService_SendStoreFailureRelaysNothing(t *testing.T) {
	store := new(MockStore)
	notify := &recordingNotifier{}
	svc := request.NewService(store, notify)

	store.On("HasPending", "a1", "b1").Return(false, nil)
	store.On("Create", "a1", "b1").Return(nil, errors.New("connection reset"))

	_, customErr := svc.Send(context.Background(), "a1", "b1")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrUnknown, customErr.Code)
	assert.Empty(t, notify.created)
}

func TestService_Accept(t *testing.T) {
	store := new(MockStore)
	notify := &recordingNotifier{}
	svc := request.NewService(store, notify)

	accepted := pendingRequest("r1", "a1", "b1")
	accepted.Status = request.StatusAccepted
	store.On("TransitionPending", "r1", "b1", request.StatusAccepted).Return(accepted, nil)

	record, customErr := svc.Accept(context.Background(), "r1", "b1")
	require.Nil(t, customErr)
	assert.Equal(t, request.StatusAccepted, record.Status)

	require.Len(t, notify.accepted, 1)
	assert.Equal(t, "a1", notify.accepted[0].SenderID)
	assert.Equal(t, "accepted", notify.accepted[0].Status)
}

func TestService_AcceptNotFound(t *testing.T) {
	store := new(MockStore)
	notify := &recordingNotifier{}
	svc := request.NewService(store, notify)

	store.On("TransitionPending", "missing", "b1", request.StatusAccepted).Return(nil, request.ErrNoPendingRequest)

	_, customErr := svc.Accept(context.Background(), "missing", "b1")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrRequestNotFound, customErr.Code)
	assert.Empty(t, notify.accepted)
}

func TestService_AcceptByNonReceiver(t *testing.T) {
	store := new(MockStore)
	notify := &recordingNotifier{}
	svc := request.NewService(store, notify)

	// The store's receiver guard treats a foreign caller as a miss.
	store.On("TransitionPending", "r1", "c1", request.StatusAccepted).Return(nil, request.ErrNoPendingRequest)

	_, customErr := svc.Accept(context.Background(), "r1", "c1")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrRequestNotFound, customErr.Code)
	assert.Empty(t, notify.accepted)
}

func TestService_Reject(t *testing.T) {
	store := new(MockStore)
	notify := &recordingNotifier{}
	svc := request.NewService(store, notify)

	rejected := pendingRequest("r1", "a1", "b1")
	rejected.Status = request.StatusRejected
	store.On("TransitionPending", "r1", "b1", request.StatusRejected).Return(rejected, nil)

	_, customErr := svc.Reject(context.Background(), "r1", "b1")
	require.Nil(t, customErr)

	require.Len(t, notify.rejected, 1)
	assert.Equal(t, "a1", notify.rejected[0].SenderID)
}

func TestService_StatusBetweenIsDirectionAgnostic(t *testing.T) {
	store := new(MockStore)
	svc := request.NewService(store, &recordingNotifier{})

	accepted := pendingRequest("r1", "a1", "b1")
	accepted.Status = request.StatusAccepted

	store.On("LatestBetween", "a1", "b1").Return(accepted, nil)
	store.On("LatestBetween", "b1", "a1").Return(accepted, nil)

	status, customErr := svc.StatusBetween(context.Background(), "a1", "b1")
	require.Nil(t, customErr)
	assert.Equal(t, request.StatusAccepted, status)

	status, customErr = svc.StatusBetween(context.Background(), "b1", "a1")
	require.Nil(t, customErr)
	assert.Equal(t, request.StatusAccepted, status)
}

func TestService_StatusBetweenNone(t *testing.T) {
	store := new(MockStore)
	svc := request.NewService(store, &recordingNotifier{})

	store.On("LatestBetween", "a1", "b1").Return(nil, nil)

	status, customErr := svc.StatusBetween(context.Background(), "a1", "b1")
	require.Nil(t, customErr)
	assert.Equal(t, request.StatusNone, status)
}

func TestService_ResendAfterRejection(t *testing.T) {
	store := new(MockStore)
	notify := &recordingNotifier{}
	svc := request.NewService(store, notify)

	// The rejected record is history; no pending request blocks a new send.
	store.On("HasPending", "a1", "b1").Return(false, nil)
	store.On("Create", "a1", "b1").Return(pendingRequest("r2", "a1", "b1"), nil)

	record, customErr := svc.Send(context.Background(), "a1", "b1")
	require.Nil(t, customErr)
	assert.Equal(t, "r2", record.ID)
	assert.Equal(t, request.StatusPending, record.Status)
}

func TestService_CanMessage(t *testing.T) {
	store := new(MockStore)
	svc := request.NewService(store, &recordingNotifier{})

	accepted := pendingRequest("r1", "a1", "b1")
	accepted.Status = request.StatusAccepted
	store.On("LatestBetween", "a1", "b1").Return(accepted, nil)
	store.On("LatestBetween", "a1", "c1").Return(nil, nil)

	ok, customErr := svc.CanMessage(context.Background(), "a1", "b1")
	require.Nil(t, customErr)
	assert.True(t, ok)

	ok, customErr = svc.CanMessage(context.Background(), "a1", "c1")
	require.Nil(t, customErr)
	assert.False(t, ok)
}
