package confirmation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepository mirrors the conditional-UPDATE contract of the pgx
// implementation: consuming a token removes it under one lock, so exactly
// one of any number of concurrent consumers succeeds.
type fakeRepository struct {
	mu      sync.Mutex
	invites map[string]*Invite
	status  map[string]string // attendee email -> recorded status
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		invites: map[string]*Invite{},
		status:  map[string]string{},
	}
}

func (r *fakeRepository) add(token string, inv *Invite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invites[token] = inv
}

func (r *fakeRepository) Consume(ctx context.Context, token string, status string) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.invites[token]
	if !ok {
		return nil, ErrInvalidToken
	}
	delete(r.invites, token)
	r.status[inv.AttendeeEmail] = status

	return &Result{
		BookingTitle:  inv.BookingTitle,
		AttendeeEmail: inv.AttendeeEmail,
	}, nil
}

func (r *fakeRepository) GetByToken(ctx context.Context, token string) (*Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.invites[token]
	if !ok {
		return nil, ErrInvalidToken
	}
	return inv, nil
}

func testInvite() *Invite {
	return &Invite{
		BookingTitle:  "Quarterly review",
		RoomName:      "Aurora",
		OrganizerName: "Dana",
		AttendeeEmail: "ada@example.com",
		Start:         time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		End:           time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
	}
}

func TestRespond(t *testing.T) {
	ctx := context.Background()

	t.Run("accept records and consumes", func(t *testing.T) {
		repo := newFakeRepository()
		repo.add("tok-1", testInvite())
		svc := NewService(repo)

		res, err := svc.Respond(ctx, "tok-1", DecisionAccept)
		require.NoError(t, err)
		assert.Equal(t, "Quarterly review", res.BookingTitle)
		assert.Equal(t, "ada@example.com", res.AttendeeEmail)
		assert.Equal(t, DecisionAccept, res.Decision)
		assert.Equal(t, "accepted", repo.status["ada@example.com"])

		// The token is spent.
		_, err = svc.Respond(ctx, "tok-1", DecisionAccept)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("decline records declined", func(t *testing.T) {
		repo := newFakeRepository()
		repo.add("tok-2", testInvite())
		svc := NewService(repo)

		res, err := svc.Respond(ctx, "tok-2", DecisionDecline)
		require.NoError(t, err)
		assert.Equal(t, DecisionDecline, res.Decision)
		assert.Equal(t, "declined", repo.status["ada@example.com"])
	})

	t.Run("a spent token cannot flip the decision", func(t *testing.T) {
		repo := newFakeRepository()
		repo.add("tok-3", testInvite())
		svc := NewService(repo)

		_, err := svc.Respond(ctx, "tok-3", DecisionAccept)
		require.NoError(t, err)

		_, err = svc.Respond(ctx, "tok-3", DecisionDecline)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Equal(t, "accepted", repo.status["ada@example.com"])
	})

	t.Run("unknown and empty tokens look the same", func(t *testing.T) {
		svc := NewService(newFakeRepository())

		_, err := svc.Respond(ctx, "never-issued", DecisionAccept)
		assert.ErrorIs(t, err, ErrInvalidToken)

		_, err = svc.Respond(ctx, "", DecisionAccept)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("invalid decision", func(t *testing.T) {
		repo := newFakeRepository()
		repo.add("tok-4", testInvite())
		svc := NewService(repo)

		_, err := svc.Respond(ctx, "tok-4", Decision("maybe"))
		assert.ErrorIs(t, err, ErrInvalidDecision)

		// The token must survive a rejected decision.
		_, err = svc.Info(ctx, "tok-4")
		assert.NoError(t, err)
	})
}

func TestRespondConcurrentSingleUse(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	repo.add("tok-race", testInvite())
	svc := NewService(repo)

	const workers = 16

	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Respond(ctx, "tok-race", DecisionAccept)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrInvalidToken)
		}
	}
	assert.Equal(t, 1, wins, "a token must be consumable exactly once")
}

func TestInfo(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	repo.add("tok-info", testInvite())
	svc := NewService(repo)

	inv, err := svc.Info(ctx, "tok-info")
	require.NoError(t, err)
	assert.Equal(t, "Quarterly review", inv.BookingTitle)
	assert.Equal(t, "Aurora", inv.RoomName)

	// Info is read-only.
	_, err = svc.Info(ctx, "tok-info")
	assert.NoError(t, err)

	_, err = svc.Info(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Info(ctx, "never-issued")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
