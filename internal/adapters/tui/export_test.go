package tui

// SetInterrupt replaces the function called when the user presses ctrl+c.
func (r *Renderer) SetInterrupt(fn func()) {
	r.interrupt = fn
}
