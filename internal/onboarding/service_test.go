package onboarding

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tmarket-bot/internal/registry"
)

type fakeNotifier struct {
	mu         sync.Mutex
	userMsgs   map[int64][]string
	prompted   []int64
	failAdmins map[int64]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		userMsgs:   make(map[int64][]string),
		failAdmins: make(map[int64]bool),
	}
}

func (f *fakeNotifier) NotifyUser(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userMsgs[chatID] = append(f.userMsgs[chatID], text)
	return nil
}

func (f *fakeNotifier) SendDecisionPrompt(_ context.Context, adminID int64, _ registry.PendingRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAdmins[adminID] {
		return errors.New("admin unreachable")
	}
	f.prompted = append(f.prompted, adminID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(admins ...int64) (*Service, *registry.MemoryStore, *fakeNotifier) {
	store := registry.NewMemoryStore()
	notifier := newFakeNotifier()
	svc := NewService(store, notifier, admins, testLogger())
	return svc, store, notifier
}

func applicant(userID int64) registry.PendingRequest {
	return registry.PendingRequest{
		UserID:    userID,
		Username:  "kodjo",
		FirstName: "Kodjo",
		ChatID:    userID,
	}
}

func TestAcknowledgeConditions_RegistersAndFansOut(t *testing.T) {
	ctx := context.Background()
	svc, store, notifier := newTestService(100, 200, 300)

	require.NoError(t, svc.AcknowledgeConditions(ctx, applicant(1)))

	pending, err := store.GetPending(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.False(t, pending.RequestedAt.IsZero())

	assert.Equal(t, []string{MsgRequestReceived}, notifier.userMsgs[1])
	assert.ElementsMatch(t, []int64{100, 200, 300}, notifier.prompted)
}

func TestAcknowledgeConditions_PartialFanOutFailure(t *testing.T) {
	ctx := context.Background()
	svc, store, notifier := newTestService(100, 200, 300)
	notifier.failAdmins[200] = true

	require.NoError(t, svc.AcknowledgeConditions(ctx, applicant(1)))

	// One unreachable administrator stops neither the fan-out nor the request
	assert.ElementsMatch(t, []int64{100, 300}, notifier.prompted)

	pending, err := store.GetPending(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, pending)
}

func TestApprove_GrantsRightsAndNotifies(t *testing.T) {
	ctx := context.Background()
	svc, store, notifier := newTestService(100)
	require.NoError(t, svc.AcknowledgeConditions(ctx, applicant(1)))

	req, acted, err := svc.Approve(ctx, 1)
	require.NoError(t, err)
	assert.True(t, acted)
	assert.Equal(t, int64(1), req.UserID)

	approved, err := store.IsApproved(ctx, 1)
	require.NoError(t, err)
	assert.True(t, approved)

	assert.Contains(t, notifier.userMsgs[1], MsgApproved)
}

func TestApprove_SecondCallIsSilentNoOp(t *testing.T) {
	ctx := context.Background()
	svc, _, notifier := newTestService(100)
	require.NoError(t, svc.AcknowledgeConditions(ctx, applicant(1)))

	_, acted, err := svc.Approve(ctx, 1)
	require.NoError(t, err)
	require.True(t, acted)
	notified := len(notifier.userMsgs[1])

	_, acted, err = svc.Approve(ctx, 1)
	require.NoError(t, err)
	assert.False(t, acted)
	assert.Len(t, notifier.userMsgs[1], notified, "no duplicate notification on repeated decision")
}

func TestReject_RemovesPendingWithoutRights(t *testing.T) {
	ctx := context.Background()
	svc, store, notifier := newTestService(100)
	require.NoError(t, svc.AcknowledgeConditions(ctx, applicant(1)))

	_, acted, err := svc.Reject(ctx, 1)
	require.NoError(t, err)
	assert.True(t, acted)

	approved, err := store.IsApproved(ctx, 1)
	require.NoError(t, err)
	assert.False(t, approved)

	assert.Contains(t, notifier.userMsgs[1], MsgRejected)

	// Rejected applicants may reapply
	require.NoError(t, svc.AcknowledgeConditions(ctx, applicant(1)))
	pending, err := store.GetPending(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, pending)
}

func TestDecide_UnknownUserIsNoOp(t *testing.T) {
	ctx := context.Background()
	svc, _, notifier := newTestService(100)

	_, acted, err := svc.Approve(ctx, 404)
	require.NoError(t, err)
	assert.False(t, acted)
	assert.Empty(t, notifier.userMsgs[404])
}
