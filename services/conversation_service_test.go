package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Yash-SD99/Echoing-Hearts/models"
	"github.com/Yash-SD99/Echoing-Hearts/pkg"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/ratelimit"
	"github.com/Yash-SD99/Echoing-Hearts/repository"
	"github.com/Yash-SD99/Echoing-Hearts/ws"
	"github.com/stretchr/testify/require"
)

type convFixture struct {
	db    *sql.DB
	svc   ConversationService
	hub   *recordingHub
	alice *models.User
	bob   *models.User
}

func newConvFixture(t *testing.T, limiter *ratelimit.MessageRateLimiter) *convFixture {
	t.Helper()
	return newConvFixtureOn(t, newTestDB(t), limiter)
}

func newConvFixtureOn(t *testing.T, db *sql.DB, limiter *ratelimit.MessageRateLimiter) *convFixture {
	t.Helper()

	hub := newRecordingHub()
	f := &convFixture{
		db:    db,
		hub:   hub,
		alice: createUser(t, db, "alice", "en"),
		bob:   createUser(t, db, "bob", "es"),
	}
	f.svc = NewConversationService(
		db,
		repository.NewSQLiteConversationRepo(db),
		repository.NewSQLiteUserRepo(db),
		repository.NewSQLiteWhisperRepo(db),
		repository.NewSQLiteBlockRepo(db),
		hub,
		limiter,
		testCatalog(t),
	)
	return f
}

func (f *convFixture) send(t *testing.T, from *models.User, convID string, n int) *models.SendResult {
	t.Helper()

	var last *models.SendResult
	for i := 0; i < n; i++ {
		res, err := f.svc.Send(context.Background(), from.ID, convID, &models.SendMessageRequest{
			Content: fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
		last = res
	}
	return last
}

func TestStartIsIdempotentAndSymmetric(t *testing.T) {
	f := newConvFixture(t, nil)
	ctx := context.Background()

	c1, err := f.svc.Start(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	require.Equal(t, 1, c1.UnlockLevel)

	c2, err := f.svc.Start(ctx, f.bob.ID, f.alice.ID)
	require.NoError(t, err)
	require.Equal(t, c1.ID, c2.ID)

	created := f.hub.byOp(ws.OpConversationCreate)
	require.Len(t, created, 2, "one event per participant, only on creation")

	_, err = f.svc.Start(ctx, f.alice.ID, f.alice.ID)
	require.ErrorIs(t, err, pkg.ErrBadRequest)

	_, err = f.svc.Start(ctx, f.alice.ID, "missing")
	require.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestFirstSendCreatesBothCounters(t *testing.T) {
	f := newConvFixture(t, nil)
	conv, err := f.svc.Start(context.Background(), f.alice.ID, f.bob.ID)
	require.NoError(t, err)

	res := f.send(t, f.alice, conv.ID, 1)
	require.Equal(t, map[string]int{f.alice.ID: 1, f.bob.ID: 0}, res.Counters.Counts)
	require.Equal(t, 1, res.UnlockLevel)
	require.False(t, res.LevelChanged)

	msgs := f.hub.byOp(ws.OpMessageCreate)
	require.Len(t, msgs, 2)
	require.ElementsMatch(t, []string{f.alice.ID, f.bob.ID}, []string{msgs[0].UserID, msgs[1].UserID})
}

func TestLevelIsGatedByLessActiveSide(t *testing.T) {
	f := newConvFixture(t, nil)
	conv, err := f.svc.Start(context.Background(), f.alice.ID, f.bob.ID)
	require.NoError(t, err)

	res := f.send(t, f.alice, conv.ID, 30)
	require.Equal(t, 1, res.UnlockLevel, "one side alone unlocks nothing")

	res = f.send(t, f.bob, conv.ID, 4)
	require.Equal(t, 1, res.UnlockLevel)
	require.Empty(t, f.hub.byOp(ws.OpProgressUpdate))

	res = f.send(t, f.bob, conv.ID, 1)
	require.Equal(t, 2, res.UnlockLevel)
	require.True(t, res.LevelChanged)

	updates := f.hub.byOp(ws.OpProgressUpdate)
	require.Len(t, updates, 2)
	for _, u := range updates {
		data := u.Event.Data.(ws.ProgressUpdateData)
		require.Equal(t, 2, data.Level)
		require.Equal(t, 1, data.PreviousLevel)
		if u.UserID == f.bob.ID {
			require.Contains(t, data.Message, "nivel 2")
		} else {
			require.Contains(t, data.Message, "level 2")
		}
	}

	res = f.send(t, f.bob, conv.ID, 15)
	require.Equal(t, 3, res.UnlockLevel)
	require.Equal(t, 30, res.Counters.Count(f.alice.ID))
	require.Equal(t, 20, res.Counters.Count(f.bob.ID))
}

func TestSendValidationAndAccess(t *testing.T) {
	f := newConvFixture(t, nil)
	ctx := context.Background()
	conv, err := f.svc.Start(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	carol := createUser(t, f.db, "carol", "en")

	_, err = f.svc.Send(ctx, f.alice.ID, conv.ID, &models.SendMessageRequest{Content: "   "})
	require.ErrorIs(t, err, pkg.ErrBadRequest)

	_, err = f.svc.Send(ctx, carol.ID, conv.ID, &models.SendMessageRequest{Content: "hi"})
	require.ErrorIs(t, err, pkg.ErrNotFound)

	_, err = f.svc.Messages(ctx, carol.ID, conv.ID, "", 10)
	require.ErrorIs(t, err, pkg.ErrNotFound)

	require.NoError(t, repository.NewSQLiteBlockRepo(f.db).Create(ctx, f.bob.ID, f.alice.ID))
	_, err = f.svc.Send(ctx, f.alice.ID, conv.ID, &models.SendMessageRequest{Content: "hi"})
	require.ErrorIs(t, err, pkg.ErrForbidden)

	_, err = f.svc.Start(ctx, carol.ID, carol.ID)
	require.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestStartBlocked(t *testing.T) {
	f := newConvFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, repository.NewSQLiteBlockRepo(f.db).Create(ctx, f.alice.ID, f.bob.ID))
	_, err := f.svc.Start(ctx, f.bob.ID, f.alice.ID)
	require.ErrorIs(t, err, pkg.ErrForbidden)
}

func TestSendRateLimited(t *testing.T) {
	limiter := ratelimit.NewMessageRateLimiter(3, time.Minute, time.Minute)
	t.Cleanup(limiter.Stop)

	f := newConvFixture(t, limiter)
	ctx := context.Background()
	conv, err := f.svc.Start(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)

	f.send(t, f.alice, conv.ID, 3)
	_, err = f.svc.Send(ctx, f.alice.ID, conv.ID, &models.SendMessageRequest{Content: "one more"})
	require.ErrorIs(t, err, pkg.ErrTooManyRequests)

	f.send(t, f.bob, conv.ID, 1)
}

func TestMessagesPagination(t *testing.T) {
	f := newConvFixture(t, nil)
	ctx := context.Background()
	conv, err := f.svc.Start(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	f.send(t, f.alice, conv.ID, 5)

	page, err := f.svc.Messages(ctx, f.bob.ID, conv.ID, "", 3)
	require.NoError(t, err)
	require.Len(t, page, 3)
	require.Equal(t, "message 4", page[0].Content)

	rest, err := f.svc.Messages(ctx, f.bob.ID, conv.ID, page[2].ID, 3)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	require.Equal(t, "message 1", rest[0].Content)
	require.Equal(t, "message 0", rest[1].Content)

	_, err = f.svc.Messages(ctx, f.bob.ID, conv.ID, "missing-id", 3)
	require.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestConcurrentSendsCountEveryMessage(t *testing.T) {
	for name, open := range map[string]func(*testing.T) *sql.DB{
		"memory":   newTestDB,
		"file-wal": newFileDB,
	} {
		t.Run(name, func(t *testing.T) {
			f := newConvFixtureOn(t, open(t), nil)
			ctx := context.Background()
			conv, err := f.svc.Start(ctx, f.alice.ID, f.bob.ID)
			require.NoError(t, err)

			// Several writers per user so sends by the same sender race
			// each other as well as the peer.
			const writersPerUser, sendsPerWriter = 5, 2
			var wg sync.WaitGroup
			errs := make(chan error, 2*writersPerUser*sendsPerWriter)
			for _, u := range []*models.User{f.alice, f.bob} {
				for w := 0; w < writersPerUser; w++ {
					wg.Add(1)
					go func(u *models.User) {
						defer wg.Done()
						for i := 0; i < sendsPerWriter; i++ {
							_, err := f.svc.Send(ctx, u.ID, conv.ID, &models.SendMessageRequest{Content: "hey"})
							errs <- err
						}
					}(u)
				}
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			counters, err := repository.NewSQLiteConversationRepo(f.db).GetCounters(ctx, conv.ID)
			require.NoError(t, err)
			require.Equal(t, 10, counters.Count(f.alice.ID))
			require.Equal(t, 10, counters.Count(f.bob.ID))

			msgs, err := f.svc.Messages(ctx, f.alice.ID, conv.ID, "", 50)
			require.NoError(t, err)
			require.Len(t, msgs, 20)

			got, err := f.svc.Get(ctx, f.alice.ID, conv.ID)
			require.NoError(t, err)
			require.Equal(t, 2, got.UnlockLevel)
		})
	}
}

func TestTypingReachesPeerOnly(t *testing.T) {
	f := newConvFixture(t, nil)
	ctx := context.Background()
	conv, err := f.svc.Start(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)

	f.svc.NotifyTyping(ctx, f.alice.ID, conv.ID)
	f.svc.NotifyTyping(ctx, "stranger", conv.ID)

	typing := f.hub.byOp(ws.OpTypingStart)
	require.Len(t, typing, 1)
	require.Equal(t, f.bob.ID, typing[0].UserID)

	peers, err := f.svc.PeerIDs(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Equal(t, []string{f.bob.ID}, peers)
}
