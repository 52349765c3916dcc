package tensormem

import "github.com/google/uuid"

// Handle is implemented by the backend-specific tensor storage the planner
// is told about but never owns. A Pool calls Bind when it assigns the
// handle's tensor a concrete region during Acquire, and Unbind when that
// region is taken away during Release. No pointer type crosses this
// interface boundary: the handle receives a Region view and decides for
// itself how to point its own storage at it.
type Handle interface {
	// ID is a diagnostic label only; the planner never uses it to compare
	// handles — Go interface equality (identity of the underlying
	// concrete value) is what the planner relies on.
	ID() string
	Bind(region Region)
	Unbind()
}

// HostHandle is the reference Handle implementation used by tests and the
// demo CLI: a backend-agnostic "host" tensor whose storage is simply the
// byte slice view of whatever Region it was last bound to.
type HostHandle struct {
	id      string
	storage []byte
}

// NewHostHandle creates a handle with a fresh diagnostic ID.
func NewHostHandle() *HostHandle {
	return &HostHandle{id: uuid.NewString()}
}

func (h *HostHandle) ID() string { return h.id }

func (h *HostHandle) Bind(region Region) {
	h.storage = region.Bytes()
}

func (h *HostHandle) Unbind() {
	h.storage = nil
}

// Storage returns the handle's current backing bytes, or nil outside an
// acquired window.
func (h *HostHandle) Storage() []byte { return h.storage }
