package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unlockegypt/heritage-researcher/internal/cache"
	"github.com/unlockegypt/heritage-researcher/internal/ratelimit"
	"github.com/unlockegypt/heritage-researcher/internal/research"
)

type fakeClient struct {
	calls  int
	result Result
	err    error
}

func (f *fakeClient) Geocode(_ context.Context, _ string) (Result, error) {
	f.calls++
	if f.err != nil {
		return Result{}, f.err
	}
	return f.result, nil
}

func newTestResolver(client Client) (*Resolver, *cache.Store[Resolution]) {
	store := cache.New[Resolution]()
	r := NewResolver(
		client,
		store,
		ratelimit.New(ratelimit.Config{}),
		&research.RetryPolicy{MaxAttempts: 1},
		zap.NewNop(),
	)
	return r, store
}

func TestCanonicalCoversAliases(t *testing.T) {
	t.Parallel()

	all := All()
	require.Len(t, all, 27)

	// Every alias maps into the canonical set.
	for alias := range governorates {
		gov, ok := Canonical(alias)
		require.True(t, ok, "alias %q", alias)
		assert.Contains(t, all, gov)
	}

	gov, ok := Canonical("Luxor Governorate")
	require.True(t, ok)
	assert.Equal(t, "Luxor", gov)

	_, ok = Canonical("Atlantis")
	assert.False(t, ok)
}

func TestResolveKnownPlaceWithoutProvider(t *testing.T) {
	t.Parallel()

	client := &fakeClient{err: &research.NetworkError{Op: "geocode", Err: errors.New("unreachable")}}
	r, _ := newTestResolver(client)

	res := r.Resolve(context.Background(), "Karnak Temple Complex", "")
	assert.Equal(t, "Luxor", res.Governorate)
	assert.Nil(t, res.Lat)
	assert.Nil(t, res.Lon)
}

func TestResolveMapsAddressToCanonicalName(t *testing.T) {
	t.Parallel()

	client := &fakeClient{result: Result{
		Lat:     25.7,
		Lon:     32.6,
		Address: map[string]string{"state": "Luxor Governorate"},
	}}
	r, _ := newTestResolver(client)

	res := r.Resolve(context.Background(), "Deir el-Medina", "")
	assert.Equal(t, "Luxor", res.Governorate)
	require.NotNil(t, res.Lat)
	require.NotNil(t, res.Lon)
	assert.InDelta(t, 25.7, *res.Lat, 0.001)
}

// A name hitting several known-place markers always resolves to the
// most specific (longest) one, regardless of map iteration order.
func TestResolveKnownPlaceLongestMarkerWins(t *testing.T) {
	t.Parallel()

	client := &fakeClient{err: &research.NetworkError{Op: "geocode", Err: errors.New("unreachable")}}

	// "heliopolis" and "sphinx" both match; "heliopolis" is longer.
	for i := 0; i < 10; i++ {
		r, _ := newTestResolver(client)
		res := r.Resolve(context.Background(), "Sphinx of Heliopolis", "")
		assert.Equal(t, "Cairo", res.Governorate)
	}
}

func TestResolveFallsBackToLocationHint(t *testing.T) {
	t.Parallel()

	client := &fakeClient{err: &research.NetworkError{Op: "geocode", Err: errors.New("unreachable")}}
	r, _ := newTestResolver(client)

	res := r.Resolve(context.Background(), "Some Obscure Ruin", "Aswan")
	assert.Equal(t, "Aswan", res.Governorate)
}

func TestResolveUnknownIsCached(t *testing.T) {
	t.Parallel()

	client := &fakeClient{err: &research.NetworkError{Op: "geocode", Err: errors.New("unreachable")}}
	r, store := newTestResolver(client)

	res := r.Resolve(context.Background(), "Nowhere Site", "")
	assert.Equal(t, Unknown, res.Governorate)
	assert.Equal(t, 1, store.Len())

	// Second lookup must come from the cache.
	before := client.calls
	res = r.Resolve(context.Background(), "nowhere  site", "")
	assert.Equal(t, Unknown, res.Governorate)
	assert.Equal(t, before, client.calls)
}

func TestResolveDropsOutOfRangeCoordinates(t *testing.T) {
	t.Parallel()

	client := &fakeClient{result: Result{
		Lat:     48.85,
		Lon:     2.35,
		Address: map[string]string{"state": "Luxor"},
	}}
	r, _ := newTestResolver(client)

	res := r.Resolve(context.Background(), "Misplaced Site", "")
	assert.Equal(t, "Luxor", res.Governorate)
	assert.Nil(t, res.Lat)
	assert.Nil(t, res.Lon)
}

func TestResolveUnmappedAddressFallsThrough(t *testing.T) {
	t.Parallel()

	client := &fakeClient{result: Result{
		Lat:     30.0,
		Lon:     31.2,
		Address: map[string]string{"state": "Some Unmapped Region"},
	}}
	r, _ := newTestResolver(client)

	// Raw provider strings never leak into the governorate field.
	res := r.Resolve(context.Background(), "Mystery Site", "")
	assert.Equal(t, Unknown, res.Governorate)
	require.NotNil(t, res.Lat)
}
