package completion

import "sync/atomic"

// CurrentDatabase holds the session's active database. The session writes
// it on every switch and the engine reads it on every keystroke; the last
// write wins.
type CurrentDatabase struct {
	name atomic.Pointer[string]
}

// Set replaces the current database. An empty name clears it.
func (c *CurrentDatabase) Set(name string) {
	if name == "" {
		c.name.Store(nil)
		return
	}
	c.name.Store(&name)
}

// Clear unsets the current database.
func (c *CurrentDatabase) Clear() {
	c.name.Store(nil)
}

// Get returns the current database and whether one is set.
func (c *CurrentDatabase) Get() (string, bool) {
	if p := c.name.Load(); p != nil {
		return *p, true
	}
	return "", false
}
