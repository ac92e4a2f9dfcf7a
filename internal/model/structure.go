package model

// StructureState is the classified trend regime of an instrument.
type StructureState int

const (
	// StructureUnset means no verdict has been reached yet. It is distinct
	// from Consolidation: an instrument that was never classified must not
	// look like one that was classified as range-bound.
	StructureUnset StructureState = iota
	StructureUptrend
	StructureDowntrend
	StructureConsolidation
)

func (s StructureState) String() string {
	switch s {
	case StructureUptrend:
		return "UPTREND"
	case StructureDowntrend:
		return "DOWNTREND"
	case StructureConsolidation:
		return "CONSOLIDATION"
	default:
		return "UNSET"
	}
}

// IsSet reports whether the state carries an actual verdict.
func (s StructureState) IsSet() bool { return s != StructureUnset }
