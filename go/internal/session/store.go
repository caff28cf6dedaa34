package session

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Observer receives every published snapshot.
// Observers may call back into the Store. A mutation or Subscribe made from
// inside an observer is applied at once and its snapshot is delivered after
// the current round, so every observer sees whole snapshots in order.
type Observer func(SessionState)

type subscriber struct {
	id   uint64
	fn   Observer
	gone atomic.Bool
}

// delivery is one snapshot waiting to be handed to the observers that were
// registered when it was published.
type delivery struct {
	state SessionState
	subs  []*subscriber
}

// Option configures a Store
type Option func(*Store)

// WithClock sets the instant source used by Reset, TogglePause and UpdateTime
func WithClock(c Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithGuardedTransitions rejects TogglePause outside a live session and
// SetStarted(true) after game over. Without it the store applies the field
// updates whatever the lifecycle position.
func WithGuardedTransitions() Option {
	return func(s *Store) {
		s.guarded = true
	}
}

// Store owns a single session and publishes a snapshot after every change.
//
// Mutations are applied under mu in call order. Snapshots queue up in pending
// and are handed out by one goroutine at a time: whichever caller finds no
// delivery in progress drains the queue. A caller that arrives while another
// goroutine is delivering returns once its change is applied and the
// delivering goroutine publishes its snapshot.
type Store struct {
	mu         sync.Mutex
	state      SessionState
	subs       []*subscriber
	nextID     uint64
	pending    []delivery
	delivering bool

	clock   Clock
	logger  zerolog.Logger
	guarded bool
}

// NewStore creates an idle session store
func NewStore(opts ...Option) *Store {
	s := &Store{
		clock:  clockwork.NewRealClock(),
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clock returns the instant source of the store
func (s *Store) Clock() Clock {
	return s.clock
}

// Snapshot returns the current state
func (s *Store) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn, calls it with the current snapshot and then with every
// published snapshot until the returned function is called.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	sub := &subscriber{id: s.nextID, fn: fn}
	s.subs = append(s.subs, sub)
	s.pending = append(s.pending, delivery{state: s.state, subs: []*subscriber{sub}})
	s.mu.Unlock()

	s.deliver()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(sub) })
	}
}

func (s *Store) remove(sub *subscriber) {
	sub.gone.Store(true)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.subs {
		if cur == sub {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// update applies fn to the current state. When fn reports a change the new
// snapshot is stored and queued for every current subscriber.
func (s *Store) update(fn func(SessionState) (SessionState, bool)) {
	s.mu.Lock()
	next, changed := fn(s.state)
	if !changed {
		s.mu.Unlock()
		return
	}
	s.state = next
	subs := make([]*subscriber, len(s.subs))
	copy(subs, s.subs)
	s.pending = append(s.pending, delivery{state: next, subs: subs})
	s.mu.Unlock()

	s.deliver()
}

// deliver drains pending unless another call is already doing so
func (s *Store) deliver() {
	s.mu.Lock()
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true

	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.delivering = false
			s.mu.Unlock()
			panic(r)
		}
	}()

	for len(s.pending) > 0 {
		d := s.pending[0]
		s.pending[0] = delivery{}
		s.pending = s.pending[1:]
		s.mu.Unlock()

		for _, sub := range d.subs {
			if !sub.gone.Load() {
				sub.fn(d.state)
			}
		}

		s.mu.Lock()
	}
	s.pending = nil
	s.delivering = false
	s.mu.Unlock()
}

// Reset starts a fresh running session stamped with the current instant.
// Score and piece go back to their zero values.
func (s *Store) Reset() {
	now := s.clock.Now()
	id := uuid.NewString()
	s.update(func(SessionState) (SessionState, bool) {
		return SessionState{
			ID:      id,
			Started: true,
			Time:    SessionTime{Start: now},
		}, true
	})
	s.logger.Info().Str("session_id", id).Time("start", now).Msg("session reset")
}

// TogglePause pauses a running session or resumes a paused one.
// Resuming adds the length of the pause to the paused duration.
func (s *Store) TogglePause() {
	now := s.clock.Now()
	s.update(func(st SessionState) (SessionState, bool) {
		if s.guarded && (!st.Started || st.Over) {
			s.logger.Warn().
				Str("session_id", st.ID).
				Str("phase", string(st.Phase())).
				Msg("ignoring pause toggle outside a live session")
			return st, false
		}

		if !st.Paused {
			st.Paused = true
			st.Time.PauseStart = now
			s.logger.Debug().Str("session_id", st.ID).Msg("session paused")
			return st, true
		}

		span := pauseSpan(st.Time.PauseStart, now)
		st.Time.PausedDuration += span
		st.Paused = false
		s.logger.Debug().
			Str("session_id", st.ID).
			Dur("pause", span).
			Dur("paused_total", st.Time.PausedDuration).
			Msg("session resumed")
		return st, true
	})
}

// UpdateTime refreshes the elapsed seconds of a running session.
// It does nothing while idle, paused or over, or when the value is unchanged;
// in those cases no snapshot is published.
func (s *Store) UpdateTime() {
	now := s.clock.Now()
	s.update(func(st SessionState) (SessionState, bool) {
		if !st.Running() {
			return st, false
		}
		elapsed := ElapsedSeconds(now, st.Time.Start, st.Time.PausedDuration)
		if elapsed == st.Time.Current {
			return st, false
		}
		st.Time.Current = elapsed
		return st, true
	})
}

// UpdateScore overwrites the score. Callers are expected to only increase it.
func (s *Store) UpdateScore(score int) {
	s.update(func(st SessionState) (SessionState, bool) {
		st.Score = score
		return st, true
	})
}

// UpdatePiece overwrites the current piece label
func (s *Store) UpdatePiece(piece string) {
	s.update(func(st SessionState) (SessionState, bool) {
		st.CurrentPiece = piece
		return st, true
	})
}

// SetStarted overwrites the started flag without touching the other lifecycle fields
func (s *Store) SetStarted(started bool) {
	s.update(func(st SessionState) (SessionState, bool) {
		if s.guarded && started && st.Over {
			s.logger.Warn().Str("session_id", st.ID).Msg("ignoring start flag on a finished session")
			return st, false
		}
		st.Started = started
		return st, true
	})
}

// SetGameOver ends the session. Only Reset leaves this state.
func (s *Store) SetGameOver() {
	var final SessionState
	s.update(func(st SessionState) (SessionState, bool) {
		st.Over = true
		st.Started = false
		st.Paused = false
		final = st
		return st, true
	})
	s.logger.Info().
		Str("session_id", final.ID).
		Int("score", final.Score).
		Str("duration", DisplayTime(final)).
		Msg("game over")
}
