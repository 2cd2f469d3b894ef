//go:build headless

package window

// Run is unavailable in headless builds.
func (w *Window) Run() error { return ErrHeadless }
