package mode

// Manager tracks the mode of one view and coordinates transitions.
type Manager struct {
	// current is the active mode.
	current Mode

	// previous is the mode before the current one.
	previous Mode

	// callbacks are notified on mode changes.
	callbacks []ChangeCallback
}

// ChangeCallback is called when the mode changes.
type ChangeCallback func(from, to Mode)

// NewManager creates a manager starting in Normal mode.
func NewManager() *Manager {
	return &Manager{current: Normal, previous: Normal}
}

// Current returns the active mode.
func (m *Manager) Current() Mode {
	return m.current
}

// Previous returns the mode that was active before the last switch.
func (m *Manager) Previous() Mode {
	return m.previous
}

// Switch makes to the active mode. Switching to the current mode is a no-op
// and does not notify listeners. Switching to Unknown is ignored.
func (m *Manager) Switch(to Mode) {
	if to == Unknown || to == m.current {
		return
	}
	from := m.current
	m.previous = from
	m.current = to
	for _, cb := range m.callbacks {
		if cb != nil {
			cb(from, to)
		}
	}
}

// OnChange registers a callback for mode changes.
// Returns a function to unregister the callback.
func (m *Manager) OnChange(callback ChangeCallback) func() {
	m.callbacks = append(m.callbacks, callback)
	index := len(m.callbacks) - 1
	return func() {
		// Remove callback by setting to nil (preserves indices)
		if index < len(m.callbacks) {
			m.callbacks[index] = nil
		}
	}
}

// Is returns true if the current mode is any of modes.
func (m *Manager) Is(modes ...Mode) bool {
	for _, md := range modes {
		if m.current == md {
			return true
		}
	}
	return false
}
