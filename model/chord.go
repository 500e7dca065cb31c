package model

// ChordEvent is one row of the chord_symbol.csv output. OffsetQB is the
// event position in quarter beats from the start of the shifted piece.
type ChordEvent struct {
	OffsetQB float64
	Root     string
	Quality  string
	Bass     string
	LocalKey string
}

// IsGap reports whether the event is a synthesized no-chord marker.
func (e ChordEvent) IsGap() bool { return e.Root == "N" }
