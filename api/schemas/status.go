package schemas

// FieldStatus tracks a single field through one fill pass. Transitions are
// monotonic forward: todo→in_progress→{done|error}, and skipped from any
// non-terminal state (the page can discover an unfillable input, such as a
// file picker, only after work on it has started).
type FieldStatus string

const (
	StatusTodo       FieldStatus = "todo"
	StatusInProgress FieldStatus = "in_progress"
	StatusDone       FieldStatus = "done"
	StatusError      FieldStatus = "error"
	StatusSkipped    FieldStatus = "skipped"
)

// rank orders statuses so a fill pass can never move a field backwards.
func (s FieldStatus) rank() int {
	switch s {
	case StatusTodo:
		return 0
	case StatusInProgress:
		return 1
	case StatusDone, StatusError, StatusSkipped:
		return 2
	default:
		return -1
	}
}

// Terminal reports whether no further transition is allowed from s.
func (s FieldStatus) Terminal() bool {
	return s == StatusDone || s == StatusError || s == StatusSkipped
}

// CanTransition reports whether moving from s to next respects the monotonic
// forward rule. Skipping is allowed from any non-terminal state.
func (s FieldStatus) CanTransition(next FieldStatus) bool {
	if s.rank() < 0 || next.rank() < 0 {
		return false
	}
	if s.Terminal() {
		return false
	}
	if next == StatusSkipped {
		return true
	}
	return next.rank() == s.rank()+1
}
