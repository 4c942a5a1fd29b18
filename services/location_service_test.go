package services

import (
	"testing"
	"time"

	"github.com/Yash-SD99/Echoing-Hearts/pkg"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/geo"
	"github.com/stretchr/testify/require"
)

func TestLocationUsersNear(t *testing.T) {
	svc := NewLocationService(time.Minute)
	t.Cleanup(svc.Close)

	require.NoError(t, svc.Update("a", plaza))
	require.NoError(t, svc.Update("b", geo.Point{Lat: plaza.Lat + 0.01, Lng: plaza.Lng}))
	require.NoError(t, svc.Update("c", geo.Point{Lat: plaza.Lat + 0.005, Lng: plaza.Lng}))
	require.NoError(t, svc.Update("far", geo.Point{Lat: 0, Lng: 0}))

	near := svc.UsersNear(plaza, 2000, "a")
	require.Len(t, near, 2)
	require.Equal(t, "c", near[0].UserID)
	require.Equal(t, "b", near[1].UserID)

	svc.Forget("c")
	_, ok := svc.Get("c")
	require.False(t, ok)

	require.ErrorIs(t, svc.Update("a", geo.Point{Lat: 120}), pkg.ErrBadRequest)
	p, ok := svc.Get("a")
	require.True(t, ok)
	require.Equal(t, plaza, p)
}
