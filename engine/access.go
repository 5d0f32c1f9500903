package engine

// Access guards file operations that need platform-scoped permissions, such
// as security-scoped bookmarks persisted by an external collaborator. The
// engine brackets every file operation with Ensure and the returned release.
type Access interface {
	// Ensure acquires access to path and returns a release function.
	// Both must be cheap and must never fail the operation itself:
	// the subsequent open reports the actual error.
	Ensure(path string) (release func())
}

// NopAccess is the default Access for platforms without scoped bookmarks.
type NopAccess struct{}

// Ensure implements Access as a no-op.
func (NopAccess) Ensure(string) func() { return func() {} }
