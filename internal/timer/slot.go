package timer

// Slot is the single active timer slot. At most one timer id holds it, and
// a holder must be running. Slot is not safe for concurrent use; the
// registry guards it with its own mutex.
type Slot struct {
	holder string
}

// NewSlot creates a slot held by id, or an empty slot when id is "".
func NewSlot(id string) *Slot {
	return &Slot{holder: id}
}

// Holder returns the id holding the slot, or "".
func (s *Slot) Holder() string {
	return s.holder
}

// RequestStart grants the slot to id when it is empty or already held by
// id. A denial leaves the slot untouched.
func (s *Slot) RequestStart(id string) bool {
	if s.holder != "" && s.holder != id {
		return false
	}
	s.holder = id
	return true
}

// Release empties the slot if id holds it. It reports whether it did.
func (s *Slot) Release(id string) bool {
	if id == "" || s.holder != id {
		return false
	}
	s.holder = ""
	return true
}

// Clear empties the slot unconditionally. It reports whether it was held.
func (s *Slot) Clear() bool {
	held := s.holder != ""
	s.holder = ""
	return held
}

// Heal clears a holder that isRunning does not confirm. It reports whether
// the slot was cleared.
func (s *Slot) Heal(isRunning func(id string) bool) bool {
	if s.holder == "" || isRunning(s.holder) {
		return false
	}
	s.holder = ""
	return true
}
