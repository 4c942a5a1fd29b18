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
	"github.com/Yash-SD99/Echoing-Hearts/pkg/geo"
	"github.com/Yash-SD99/Echoing-Hearts/repository"
	"github.com/Yash-SD99/Echoing-Hearts/ws"
	"github.com/stretchr/testify/require"
)

// Plaza Mayor, Madrid.
var plaza = geo.Point{Lat: 40.4155, Lng: -3.7074}

type whisperFixture struct {
	db        *sql.DB
	svc       WhisperService
	hub       *recordingHub
	locations LocationService
	alice     *models.User
	bob       *models.User
}

func newWhisperFixture(t *testing.T) *whisperFixture {
	t.Helper()
	return newWhisperFixtureOn(t, newTestDB(t))
}

func newWhisperFixtureOn(t *testing.T, db *sql.DB) *whisperFixture {
	t.Helper()

	f := &whisperFixture{
		db:        db,
		locations: NewLocationService(10 * time.Minute),
		alice:     createUser(t, db, "alice", "en"),
		bob:       createUser(t, db, "bob", "es"),
	}
	t.Cleanup(f.locations.Close)
	f.hub = newRecordingHub(f.alice.ID, f.bob.ID)

	f.svc = NewWhisperService(
		db,
		repository.NewSQLiteWhisperRepo(db),
		repository.NewSQLiteUserRepo(db),
		repository.NewSQLiteBlockRepo(db),
		f.locations,
		f.hub,
		testCatalog(t),
		WhisperLimits{DefaultRadius: 2000, MaxRadius: 20000, PushRadius: 2000},
	)
	return f
}

func (f *whisperFixture) create(t *testing.T, author *models.User, title string, at geo.Point) *models.Whisper {
	t.Helper()

	w, err := f.svc.Create(context.Background(), author.ID, &models.CreateWhisperRequest{
		Title:     title,
		Text:      "hello from " + title,
		Latitude:  at.Lat,
		Longitude: at.Lng,
	})
	require.NoError(t, err)
	return w
}

func TestCreateWhisperValidates(t *testing.T) {
	f := newWhisperFixture(t)

	_, err := f.svc.Create(context.Background(), f.alice.ID, &models.CreateWhisperRequest{
		Title: "t", Text: "x", Latitude: 95, Longitude: 0,
	})
	require.ErrorIs(t, err, pkg.ErrBadRequest)

	w := f.create(t, f.alice, "plaza", plaza)
	require.Len(t, w.ID, 36)
	require.Equal(t, "alice", w.AuthorUsername)
}

func TestNearbyFiltersAndSortsByDistance(t *testing.T) {
	f := newWhisperFixture(t)
	ctx := context.Background()

	// Roughly 5.5km, 110m, 1.3km, and 2.5km from the plaza. The last one
	// sits inside the bounding box but outside the circle.
	far := f.create(t, f.alice, "far", geo.Point{Lat: plaza.Lat + 0.05, Lng: plaza.Lng})
	near := f.create(t, f.alice, "near", geo.Point{Lat: plaza.Lat + 0.001, Lng: plaza.Lng})
	mid := f.create(t, f.bob, "mid", geo.Point{Lat: plaza.Lat, Lng: plaza.Lng + 0.015})
	corner := f.create(t, f.bob, "corner", geo.Point{Lat: plaza.Lat + 0.016, Lng: plaza.Lng + 0.021})

	got, err := f.svc.Nearby(ctx, f.bob.ID, models.NearbyQuery{Center: plaza})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, near.ID, got[0].ID)
	require.Equal(t, mid.ID, got[1].ID)
	require.Less(t, got[0].DistanceMeters, got[1].DistanceMeters)

	wide, err := f.svc.Nearby(ctx, f.bob.ID, models.NearbyQuery{Center: plaza, Radius: 1e9})
	require.NoError(t, err)
	ids := make([]string, len(wide))
	for i, w := range wide {
		ids[i] = w.ID
	}
	require.Equal(t, []string{near.ID, mid.ID, corner.ID, far.ID}, ids)

	limited, err := f.svc.Nearby(ctx, f.bob.ID, models.NearbyQuery{Center: plaza, Radius: 1e9, Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)

	_, err = f.svc.Nearby(ctx, f.bob.ID, models.NearbyQuery{Center: geo.Point{Lat: 100}})
	require.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestNearbyAcrossAntimeridian(t *testing.T) {
	f := newWhisperFixture(t)
	ctx := context.Background()
	fiji := geo.Point{Lat: -16.5, Lng: 179.995}

	across := f.create(t, f.alice, "across", geo.Point{Lat: -16.5, Lng: -179.995})
	f.create(t, f.alice, "greenwich", geo.Point{Lat: -16.5, Lng: 0})

	got, err := f.svc.Nearby(ctx, f.bob.ID, models.NearbyQuery{Center: fiji})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, across.ID, got[0].ID)
	require.Less(t, got[0].DistanceMeters, 2000.0)
}

// worldBoxRepo ignores the requested box, like a store that can only
// prefilter coarsely.
type worldBoxRepo struct {
	repository.WhisperRepository
}

func (r worldBoxRepo) ListInBox(ctx context.Context, _ geo.Box, viewerID string, limit int) ([]models.Whisper, error) {
	return r.WhisperRepository.ListInBox(ctx, geo.Box{MinLat: -90, MaxLat: 90, MinLng: -180, MaxLng: 180}, viewerID, limit)
}

func TestNearbyDropsRowsOutsideBox(t *testing.T) {
	f := newWhisperFixture(t)
	ctx := context.Background()
	near := f.create(t, f.alice, "near", geo.Point{Lat: plaza.Lat + 0.001, Lng: plaza.Lng})
	f.create(t, f.alice, "lisbon", geo.Point{Lat: 38.7223, Lng: -9.1393})

	svc := NewWhisperService(
		f.db,
		worldBoxRepo{repository.NewSQLiteWhisperRepo(f.db)},
		repository.NewSQLiteUserRepo(f.db),
		repository.NewSQLiteBlockRepo(f.db),
		nil,
		f.hub,
		testCatalog(t),
		WhisperLimits{DefaultRadius: 2000, MaxRadius: 20000, PushRadius: 2000},
	)

	got, err := svc.Nearby(ctx, f.bob.ID, models.NearbyQuery{Center: plaza})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, near.ID, got[0].ID)
}

func TestNearbyHidesBlockedAuthors(t *testing.T) {
	f := newWhisperFixture(t)
	ctx := context.Background()
	w := f.create(t, f.alice, "plaza", plaza)

	require.NoError(t, repository.NewSQLiteBlockRepo(f.db).Create(ctx, f.alice.ID, f.bob.ID))

	got, err := f.svc.Nearby(ctx, f.bob.ID, models.NearbyQuery{Center: plaza})
	require.NoError(t, err)
	require.Empty(t, got)

	_, err = f.svc.Get(ctx, f.bob.ID, w.ID)
	require.ErrorIs(t, err, pkg.ErrNotFound)

	_, err = f.svc.React(ctx, f.bob.ID, w.ID, models.ReactionLike)
	require.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestReactionsMoveCounts(t *testing.T) {
	f := newWhisperFixture(t)
	ctx := context.Background()
	w := f.create(t, f.alice, "plaza", plaza)

	counts, err := f.svc.React(ctx, f.bob.ID, w.ID, models.ReactionLike)
	require.NoError(t, err)
	require.Equal(t, 1, counts.Likes)
	require.Equal(t, models.ReactionLike, *counts.MyReaction)

	counts, err = f.svc.React(ctx, f.bob.ID, w.ID, models.ReactionLike)
	require.NoError(t, err)
	require.Equal(t, 1, counts.Likes, "repeating a reaction is a no-op")

	counts, err = f.svc.React(ctx, f.bob.ID, w.ID, models.ReactionDislike)
	require.NoError(t, err)
	require.Equal(t, 0, counts.Likes)
	require.Equal(t, 1, counts.Dislikes)

	detail, err := f.svc.Get(ctx, f.bob.ID, w.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReactionDislike, *detail.MyReaction)

	counts, err = f.svc.ClearReaction(ctx, f.bob.ID, w.ID)
	require.NoError(t, err)
	require.Zero(t, counts.Dislikes)
	require.Nil(t, counts.MyReaction)

	_, err = f.svc.React(ctx, f.bob.ID, w.ID, "love")
	require.ErrorIs(t, err, pkg.ErrBadRequest)
	_, err = f.svc.React(ctx, f.bob.ID, "missing", models.ReactionLike)
	require.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestDeleteOnlyOwnWhisper(t *testing.T) {
	f := newWhisperFixture(t)
	ctx := context.Background()
	w := f.create(t, f.alice, "plaza", plaza)

	require.ErrorIs(t, f.svc.Delete(ctx, f.bob.ID, w.ID), pkg.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, f.alice.ID, w.ID))
	require.ErrorIs(t, f.svc.Delete(ctx, f.alice.ID, w.ID), pkg.ErrNotFound)

	deleted := f.hub.byOp(ws.OpWhisperDelete)
	require.NotEmpty(t, deleted)
	require.Equal(t, f.alice.ID, deleted[0].UserID)

	mine, err := f.svc.ListMine(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Empty(t, mine)
}

func TestCreatePushesToNearbyOnlineUsers(t *testing.T) {
	f := newWhisperFixture(t)
	carol := createUser(t, f.db, "carol", "en")

	require.NoError(t, f.locations.Update(f.bob.ID, geo.Point{Lat: plaza.Lat + 0.005, Lng: plaza.Lng}))
	require.NoError(t, f.locations.Update(carol.ID, geo.Point{Lat: plaza.Lat + 0.002, Lng: plaza.Lng}))
	require.NoError(t, f.locations.Update(f.alice.ID, plaza))

	w := f.create(t, f.alice, "plaza", plaza)

	pushed := f.hub.byOp(ws.OpWhisperNearby)
	require.Len(t, pushed, 1, "carol is offline, alice is the author")
	require.Equal(t, f.bob.ID, pushed[0].UserID)

	data := pushed[0].Event.Data.(ws.WhisperNearbyData)
	require.Equal(t, w.ID, data.Whisper.ID)
	require.InDelta(t, 556, data.DistanceMeters, 5)
	require.Contains(t, data.Message, "plaza")
}

func TestStartChatFromWhisper(t *testing.T) {
	f := newWhisperFixture(t)
	ctx := context.Background()
	w := f.create(t, f.alice, "plaza", plaza)

	convs := NewConversationService(
		f.db,
		repository.NewSQLiteConversationRepo(f.db),
		repository.NewSQLiteUserRepo(f.db),
		repository.NewSQLiteWhisperRepo(f.db),
		repository.NewSQLiteBlockRepo(f.db),
		f.hub,
		nil,
		testCatalog(t),
	)

	conv, err := convs.StartFromWhisper(ctx, f.bob.ID, w.ID)
	require.NoError(t, err)
	require.True(t, conv.HasParticipant(f.alice.ID))
	require.NotNil(t, conv.WhisperID)
	require.Equal(t, w.ID, *conv.WhisperID)

	_, err = convs.StartFromWhisper(ctx, f.alice.ID, w.ID)
	require.ErrorIs(t, err, pkg.ErrBadRequest)

	_, err = convs.StartFromWhisper(ctx, f.bob.ID, "missing")
	require.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestConcurrentReactionsOnFileDB(t *testing.T) {
	f := newWhisperFixtureOn(t, newFileDB(t))
	ctx := context.Background()
	w := f.create(t, f.alice, "plaza", plaza)

	const reactors = 8
	users := make([]string, reactors)
	for i := range users {
		users[i] = createUser(t, f.db, fmt.Sprintf("reactor%d", i), "en").ID
	}

	var wg sync.WaitGroup
	errs := make(chan error, 3*reactors)
	for _, id := range users {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.svc.React(ctx, id, w.ID, models.ReactionLike)
			errs <- err
			_, err = f.svc.React(ctx, id, w.ID, models.ReactionDislike)
			errs <- err
			_, err = f.svc.React(ctx, id, w.ID, models.ReactionDislike)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	likes, dislikes, err := repository.NewSQLiteWhisperRepo(f.db).GetCounts(ctx, w.ID)
	require.NoError(t, err)
	require.Zero(t, likes)
	require.Equal(t, reactors, dislikes)
}
