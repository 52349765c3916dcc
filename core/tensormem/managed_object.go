package tensormem

// managedObject is the planner-internal record for one tensor that has
// started its lifetime. It is created on StartLifetime and completed on
// EndLifetime; once the owning group's planning pass completes it is kept
// in the lifetime manager's per-group archive until ReleaseGroup discards
// it.
type managedObject struct {
	identity  Identity
	handle    Handle
	size      int64
	alignment int64
	finalized bool
}
