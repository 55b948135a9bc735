package model

import "fmt"

// Status is the terminal check result for the side to move.
type Status uint8

const (
	StatusOngoing Status = iota
	// StatusNoMoves: the side has pieces but none can move. Checkmate and stalemate both land here.
	StatusNoMoves
	// StatusNoKing: the side's king is gone, usually captured.
	StatusNoKing
)

func (s Status) String() string {
	switch s {
	case StatusOngoing:
		return "ongoing"
	case StatusNoMoves:
		return "no_moves"
	case StatusNoKing:
		return "no_king"
	}
	return fmt.Sprintf("status(%d)", s)
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for _, candidate := range []Status{StatusOngoing, StatusNoMoves, StatusNoKing} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}
