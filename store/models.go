package store

// Status is the manually set board status.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

const (
	MinRotateSeconds  = 5
	MinRefreshMinutes = 0
)

// Settings is the persisted board configuration. Field names match the stored blob.
type Settings struct {
	Status         Status          `json:"status"`
	CloseTime      string          `json:"closeTime"`
	Title          string          `json:"title"`
	Subtitle       string          `json:"subtitle"`
	Location       string          `json:"location"`
	RefreshMinutes float64         `json:"refreshMinutes"`
	BannerText     string          `json:"bannerText"`
	BannerVisible  bool            `json:"bannerVisible"`
	RotateEnabled  bool            `json:"rotateEnabled"`
	RotateSeconds  float64         `json:"rotateSeconds"`
	Slides         map[string]bool `json:"slides"`
	AutoStatus     bool            `json:"autoStatus"`
	HeroImageURL   string          `json:"heroImageUrl"`
}

// DefaultSettings returns a fresh copy of the compiled-in defaults.
func DefaultSettings() Settings {
	return Settings{
		Status:         StatusOpen,
		CloseTime:      "17:00",
		Title:          "XR Lab",
		Subtitle:       "Room E251 · Information Board",
		Location:       "E251, East Building",
		RefreshMinutes: 10,
		BannerText:     "",
		BannerVisible:  false,
		RotateEnabled:  true,
		RotateSeconds:  30,
		// events, promo and memes are off until an admin enables them
		Slides: map[string]bool{
			"status":      true,
			"events":      false,
			"hours":       true,
			"games":       true,
			"leaderboard": true,
			"promo":       false,
			"memes":       false,
			"faculty":     true,
		},
		AutoStatus:   true,
		HeroImageURL: "assets/hero/hero-image.jpg",
	}
}

// SlideVisible reports whether key is enabled. Keys missing from the map are visible.
func (s Settings) SlideVisible(key string) bool {
	visible, ok := s.Slides[key]
	return !ok || visible
}

// Clone returns a copy that shares no map with s.
func (s Settings) Clone() Settings {
	c := s
	if s.Slides != nil {
		c.Slides = make(map[string]bool, len(s.Slides))
		for k, v := range s.Slides {
			c.Slides[k] = v
		}
	}
	return c
}

// IsOpen reports whether the manual status is OPEN.
func (s Settings) IsOpen() bool {
	return s.Status == StatusOpen
}
