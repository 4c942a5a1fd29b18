package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Yash-SD99/Echoing-Hearts/database"
	"github.com/Yash-SD99/Echoing-Hearts/models"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/i18n"
	"github.com/Yash-SD99/Echoing-Hearts/repository"
	"github.com/Yash-SD99/Echoing-Hearts/ws"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New(database.MemoryPath, database.Migrations())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db.Conn
}

// newFileDB opens a WAL database in a temp dir with a real connection pool,
// so concurrent callers contend for the write lock the way production does.
func newFileDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "echoing.db"), database.Migrations())
	require.NoError(t, err)
	db.Conn.SetMaxOpenConns(8)
	t.Cleanup(func() { db.Close() })
	return db.Conn
}

func testCatalog(t *testing.T) *i18n.Catalog {
	t.Helper()

	c, err := i18n.LoadEmbedded()
	require.NoError(t, err)
	return c
}

// createUser inserts a user with a minimal profile.
func createUser(t *testing.T, db *sql.DB, username, lang string) *models.User {
	t.Helper()

	ctx := context.Background()
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Language:     lang,
	}
	require.NoError(t, repository.NewSQLiteUserRepo(db).Create(ctx, u))
	require.NoError(t, repository.NewSQLiteProfileRepo(db).Create(ctx, &models.Profile{
		UserID:      u.ID,
		DisplayName: username + "_anon",
		Avatar:      models.AvatarMale,
		Interests:   []string{},
		Traits:      []string{},
	}))
	return u
}

type sentEvent struct {
	UserID string
	Event  ws.Event
}

// recordingHub is an in-memory ws.EventPublisher.
type recordingHub struct {
	mu     sync.Mutex
	online map[string]bool
	events []sentEvent
}

func newRecordingHub(online ...string) *recordingHub {
	h := &recordingHub{online: make(map[string]bool)}
	for _, id := range online {
		h.online[id] = true
	}
	return h
}

func (h *recordingHub) BroadcastToUser(userID string, event ws.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, sentEvent{UserID: userID, Event: event})
}

func (h *recordingHub) BroadcastToUsers(userIDs []string, event ws.Event) {
	for _, id := range userIDs {
		h.BroadcastToUser(id, event)
	}
}

func (h *recordingHub) IsOnline(userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.online[userID]
}

// byOp returns events with op, in send order.
func (h *recordingHub) byOp(op string) []sentEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []sentEvent
	for _, e := range h.events {
		if e.Event.Op == op {
			out = append(out, e)
		}
	}
	return out
}

type fakeSender struct {
	mu    sync.Mutex
	sent  map[string]string // email → token
	fails bool
}

func (f *fakeSender) SendPasswordReset(_ context.Context, toEmail, _ string, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails {
		return context.DeadlineExceeded
	}
	if f.sent == nil {
		f.sent = make(map[string]string)
	}
	f.sent[toEmail] = token
	return nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }
