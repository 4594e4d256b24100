package schemas

// InteractionMode identifies the mutually exclusive page interaction modes.
// At most one non-Idle mode is active per session at any time.
type InteractionMode string

const (
	ModeIdle             InteractionMode = "idle"
	ModeElementSelection InteractionMode = "element_selection"
	ModePointerDetection InteractionMode = "pointer_detection"
	ModeGhostWriter      InteractionMode = "ghost_writer"
)

// Valid reports whether m is one of the defined modes.
func (m InteractionMode) Valid() bool {
	switch m {
	case ModeIdle, ModeElementSelection, ModePointerDetection, ModeGhostWriter:
		return true
	}
	return false
}

func (m InteractionMode) String() string { return string(m) }
