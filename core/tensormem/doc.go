// Package tensormem plans and hands out the physical storage backing the
// transient tensors of an operator graph.
//
// A caller registers tensors on a Group as operators run, closes each
// tensor's lifetime once its size and alignment are known, and once every
// registered tensor is closed the package computes the smallest set of
// physical buffers ("blobs") or the smallest single arena that can back
// them without two live tensors ever sharing storage. A PoolManager then
// hands out duplicate copies of that layout to concurrent executors under
// mutual exclusion.
//
// The package never copies tensor data and never dereferences a tensor
// identity; it only compares identities and routes addresses through the
// Handle interface supplied by the caller.
package tensormem
