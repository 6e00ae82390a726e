package acquisition

import "github.com/vmunix/reqarr/internal/library"

type instance interface {
	RadarrInstance | SonarrInstance
	key() (id int64, isDefault, is4k bool)
}

// SelectInstance picks the instance for a request: the default instance of
// the request's variant, replaced by the server override when one is given
// and differs. Reports false when nothing matches.
func SelectInstance[T instance](instances []T, is4k bool, serverID *int64) (T, bool) {
	var (
		selected T
		found    bool
	)
	for _, inst := range instances {
		if _, isDefault, instIs4K := inst.key(); isDefault && instIs4K == is4k {
			selected, found = inst, true
			break
		}
	}

	if serverID == nil {
		return selected, found
	}
	if found {
		if id, _, _ := selected.key(); id == *serverID {
			return selected, true
		}
	}

	var zero T
	for _, inst := range instances {
		if id, _, _ := inst.key(); id == *serverID {
			return inst, true
		}
	}
	return zero, false
}

// MovieRoute is where a movie request lands inside its instance.
type MovieRoute struct {
	Instance   RadarrInstance
	ProfileID  int64
	RootFolder string
}

// ResolveMovieRoute applies request overrides on top of the instance defaults.
func ResolveMovieRoute(inst RadarrInstance, req *library.Request) MovieRoute {
	r := MovieRoute{
		Instance:   inst,
		ProfileID:  inst.ActiveProfileID,
		RootFolder: inst.ActiveDirectory,
	}
	if req.RootFolder != nil && *req.RootFolder != "" && *req.RootFolder != r.RootFolder {
		r.RootFolder = *req.RootFolder
	}
	if req.ProfileID != nil && *req.ProfileID != r.ProfileID {
		r.ProfileID = *req.ProfileID
	}
	return r
}

// SeriesRoute is where a series request lands inside its instance.
type SeriesRoute struct {
	Instance          SonarrInstance
	ProfileID         int64
	RootFolder        string
	LanguageProfileID int64
	SeriesType        string
}

// ResolveSeriesRoute picks anime defaults for anime titles when the instance
// has them, then applies request overrides.
func ResolveSeriesRoute(inst SonarrInstance, req *library.Request, anime bool) SeriesRoute {
	r := SeriesRoute{
		Instance:          inst,
		ProfileID:         inst.ActiveProfileID,
		RootFolder:        inst.ActiveDirectory,
		LanguageProfileID: inst.ActiveLanguageProfileID,
		SeriesType:        SeriesTypeStandard,
	}
	if anime {
		r.SeriesType = SeriesTypeAnime
		if inst.ActiveAnimeDirectory != "" {
			r.RootFolder = inst.ActiveAnimeDirectory
		}
		if inst.ActiveAnimeProfileID != 0 {
			r.ProfileID = inst.ActiveAnimeProfileID
		}
		if inst.ActiveAnimeLanguageProfileID != 0 {
			r.LanguageProfileID = inst.ActiveAnimeLanguageProfileID
		}
	}

	if req.RootFolder != nil && *req.RootFolder != "" && *req.RootFolder != r.RootFolder {
		r.RootFolder = *req.RootFolder
	}
	if req.ProfileID != nil && *req.ProfileID != r.ProfileID {
		r.ProfileID = *req.ProfileID
	}
	if req.LanguageProfileID != nil && *req.LanguageProfileID != r.LanguageProfileID {
		r.LanguageProfileID = *req.LanguageProfileID
	}
	return r
}
