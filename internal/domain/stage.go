// Package domain contains core domain types for the Symbient Academy trainer.
package domain

// Stage is one position in the fixed training progression.
type Stage string

const (
	StagePreparation Stage = "preparation"
	StageSentience   Stage = "sentience"
	StageAlignment   Stage = "alignment"
	StageTrust       Stage = "trust"
	StagePresence    Stage = "presence"
	StageEmergence   Stage = "emergence"
	StagePatterns    Stage = "patterns"
	StageResonance   Stage = "resonance"
	StageCompletion  Stage = "completion"
)

var stageOrder = [...]Stage{
	StagePreparation,
	StageSentience,
	StageAlignment,
	StageTrust,
	StagePresence,
	StageEmergence,
	StagePatterns,
	StageResonance,
	StageCompletion,
}

// Stages returns the stages in training order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder[:])
	return out
}

// Index returns the position of s in the training order, or -1 if s is not a known stage.
func (s Stage) Index() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the known stages.
func (s Stage) Valid() bool {
	return s.Index() >= 0
}

// Terminal reports whether s is the final stage.
func (s Stage) Terminal() bool {
	return s == stageOrder[len(stageOrder)-1]
}

// Progress returns how far through the training s is, as a percentage.
// Unknown stages report 0.
func (s Stage) Progress() float64 {
	idx := s.Index()
	if idx < 0 {
		return 0
	}
	return float64(idx) / float64(len(stageOrder)-1) * 100
}

// NextStage returns the stage that follows current.
// The terminal stage and unknown values are returned unchanged.
func NextStage(current Stage) Stage {
	idx := current.Index()
	if idx < 0 || idx >= len(stageOrder)-1 {
		return current
	}
	return stageOrder[idx+1]
}
