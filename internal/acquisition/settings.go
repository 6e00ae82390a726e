package acquisition

import "sync"

const (
	SeriesTypeStandard = "standard"
	SeriesTypeAnime    = "anime"
)

// RadarrInstance is one configured movie service.
type RadarrInstance struct {
	ID                  int64
	Name                string
	URL                 string
	APIKey              string
	IsDefault           bool
	Is4K                bool
	ActiveProfileID     int64
	ActiveDirectory     string
	MinimumAvailability string
	PreventSearch       bool
}

// SonarrInstance is one configured series service.
type SonarrInstance struct {
	ID                           int64
	Name                         string
	URL                          string
	APIKey                       string
	IsDefault                    bool
	Is4K                         bool
	ActiveProfileID              int64
	ActiveDirectory              string
	ActiveLanguageProfileID      int64
	ActiveAnimeProfileID         int64
	ActiveAnimeDirectory         string
	ActiveAnimeLanguageProfileID int64
	EnableSeasonFolders          bool
	PreventSearch                bool
}

func (i RadarrInstance) key() (int64, bool, bool) { return i.ID, i.IsDefault, i.Is4K }
func (i SonarrInstance) key() (int64, bool, bool) { return i.ID, i.IsDefault, i.Is4K }

// Settings is the set of configured instances.
type Settings struct {
	Radarr []RadarrInstance
	Sonarr []SonarrInstance
}

// SettingsProvider returns the instances current at call time.
type SettingsProvider interface {
	AcquisitionSettings() Settings
}

// StaticSettings is a SettingsProvider over a fixed value that can be replaced at runtime.
type StaticSettings struct {
	mu       sync.RWMutex
	settings Settings
}

// NewStaticSettings creates a provider returning s.
func NewStaticSettings(s Settings) *StaticSettings {
	return &StaticSettings{settings: s}
}

func (p *StaticSettings) AcquisitionSettings() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}

// Replace swaps in new settings for subsequent dispatches.
func (p *StaticSettings) Replace(s Settings) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings = s
}
