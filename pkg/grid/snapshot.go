package grid

// freeSnapshot holds a private copy of a free-form grid's state. The copy
// is never handed out; Restore clones it again so the snapshot can be
// restored any number of times.
type freeSnapshot struct {
	state *freeState
}

func (s *freeSnapshot) variant() LayoutType { return LayoutFree }

// flowSnapshot holds a private copy of a flow grid's ordered widget list.
type flowSnapshot struct {
	state flowState
}

func (s *flowSnapshot) variant() LayoutType { return LayoutFlow }
