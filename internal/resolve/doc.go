// Package resolve runs the version resolution pipeline over a timeline.
//
// Resolution is split into two calls. ResolveAll scans every clip (in
// parallel, read only) and returns a Plan. ApplyAll walks a Plan on a single
// goroutine and relinks the clips whose outcome is update_available. Nothing
// touches the timeline until ApplyAll runs.
//
// Per-clip failures never abort the batch; they become outcomes on the
// affected clip. Only an inability to list the timeline, or cancellation, is
// returned as an error.
package resolve
