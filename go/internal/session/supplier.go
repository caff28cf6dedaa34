package session

// GameLogic is what the session needs from the board engine
type GameLogic interface {
	Score() int
	CurrentPiece() string
}

// Sync copies score and piece from the game logic in a single snapshot.
// Nothing is published when both already match.
func (s *Store) Sync(src GameLogic) {
	score, piece := src.Score(), src.CurrentPiece()
	s.update(func(st SessionState) (SessionState, bool) {
		if st.Score == score && st.CurrentPiece == piece {
			return st, false
		}
		st.Score = score
		st.CurrentPiece = piece
		return st, true
	})
}
