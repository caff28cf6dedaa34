package session

// SessionStatus is the read-only projection consumed by the presentation layer.
// IsActive and Started carry the same flag.
type SessionStatus struct {
	IsActive     bool   `json:"is_active"`
	IsPaused     bool   `json:"is_paused"`
	Started      bool   `json:"started"`
	Over         bool   `json:"over"`
	Score        int    `json:"score"`
	CurrentPiece string `json:"current_piece"`
}

// DisplayTime formats the elapsed seconds of a snapshot
func DisplayTime(s SessionState) string {
	return FormatTime(s.Time.Current)
}

// StatusOf projects a snapshot onto SessionStatus
func StatusOf(s SessionState) SessionStatus {
	return SessionStatus{
		IsActive:     s.Started,
		IsPaused:     s.Paused,
		Started:      s.Started,
		Over:         s.Over,
		Score:        s.Score,
		CurrentPiece: s.CurrentPiece,
	}
}

// SubscribeStatus delivers the status projection of every snapshot
func (s *Store) SubscribeStatus(fn func(SessionStatus)) (unsubscribe func()) {
	return s.Subscribe(func(st SessionState) {
		fn(StatusOf(st))
	})
}

// SubscribeDisplayTime delivers the formatted time, skipping repeats of the previous value
func (s *Store) SubscribeDisplayTime(fn func(string)) (unsubscribe func()) {
	var (
		last string
		seen bool
	)
	return s.Subscribe(func(st SessionState) {
		display := DisplayTime(st)
		if seen && display == last {
			return
		}
		last, seen = display, true
		fn(display)
	})
}
