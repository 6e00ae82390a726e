package acquisition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vmunix/reqarr/internal/library"
)

func ptr[T any](v T) *T { return &v }

func TestSelectInstance(t *testing.T) {
	instances := []RadarrInstance{
		{ID: 1, Name: "hd", IsDefault: true},
		{ID: 2, Name: "uhd", IsDefault: true, Is4K: true},
		{ID: 3, Name: "kids"},
	}

	tests := []struct {
		name     string
		is4k     bool
		serverID *int64
		wantID   int64
		wantOK   bool
	}{
		{"standard default", false, nil, 1, true},
		{"4k default", true, nil, 2, true},
		{"override", false, ptr(int64(3)), 3, true},
		{"override equal to default", true, ptr(int64(2)), 2, true},
		{"override missing", false, ptr(int64(9)), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectInstance(instances, tt.is4k, tt.serverID)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestSelectInstance_NoDefault(t *testing.T) {
	instances := []SonarrInstance{{ID: 1, Name: "hd", IsDefault: true}}

	_, ok := SelectInstance(instances, true, nil)
	assert.False(t, ok, "no 4k default configured")

	got, ok := SelectInstance(instances, true, ptr(int64(1)))
	assert.True(t, ok, "explicit override still resolves")
	assert.Equal(t, int64(1), got.ID)

	_, ok = SelectInstance[SonarrInstance](nil, false, nil)
	assert.False(t, ok)
}

func TestResolveMovieRoute(t *testing.T) {
	inst := RadarrInstance{ID: 1, ActiveProfileID: 4, ActiveDirectory: "/movies"}

	r := ResolveMovieRoute(inst, &library.Request{})
	assert.Equal(t, int64(4), r.ProfileID)
	assert.Equal(t, "/movies", r.RootFolder)

	r = ResolveMovieRoute(inst, &library.Request{ProfileID: ptr(int64(6)), RootFolder: ptr("/movies/kids")})
	assert.Equal(t, int64(6), r.ProfileID)
	assert.Equal(t, "/movies/kids", r.RootFolder)

	r = ResolveMovieRoute(inst, &library.Request{RootFolder: ptr("")})
	assert.Equal(t, "/movies", r.RootFolder, "empty override is ignored")
}

func TestResolveSeriesRoute(t *testing.T) {
	inst := SonarrInstance{
		ID:                           1,
		ActiveProfileID:              4,
		ActiveDirectory:              "/tv",
		ActiveLanguageProfileID:      1,
		ActiveAnimeProfileID:         7,
		ActiveAnimeDirectory:         "/anime",
		ActiveAnimeLanguageProfileID: 2,
	}

	t.Run("standard", func(t *testing.T) {
		r := ResolveSeriesRoute(inst, &library.Request{}, false)
		assert.Equal(t, SeriesRoute{Instance: inst, ProfileID: 4, RootFolder: "/tv", LanguageProfileID: 1, SeriesType: SeriesTypeStandard}, r)
	})

	t.Run("anime prefers anime defaults", func(t *testing.T) {
		r := ResolveSeriesRoute(inst, &library.Request{}, true)
		assert.Equal(t, SeriesRoute{Instance: inst, ProfileID: 7, RootFolder: "/anime", LanguageProfileID: 2, SeriesType: SeriesTypeAnime}, r)
	})

	t.Run("anime without anime defaults falls back", func(t *testing.T) {
		plain := SonarrInstance{ID: 2, ActiveProfileID: 4, ActiveDirectory: "/tv", ActiveLanguageProfileID: 1}
		r := ResolveSeriesRoute(plain, &library.Request{}, true)
		assert.Equal(t, "/tv", r.RootFolder)
		assert.Equal(t, int64(4), r.ProfileID)
		assert.Equal(t, SeriesTypeAnime, r.SeriesType)
	})

	t.Run("request overrides win", func(t *testing.T) {
		req := &library.Request{ProfileID: ptr(int64(9)), RootFolder: ptr("/other"), LanguageProfileID: ptr(int64(3))}
		r := ResolveSeriesRoute(inst, req, true)
		assert.Equal(t, int64(9), r.ProfileID)
		assert.Equal(t, "/other", r.RootFolder)
		assert.Equal(t, int64(3), r.LanguageProfileID)
		assert.Equal(t, SeriesTypeAnime, r.SeriesType)
	})
}
