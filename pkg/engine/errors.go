package engine

import "errors"

// errOverlayClosed and errIngressClosed are the two structural faults
// that terminate the event loop, per spec.md §7: "only structural
// faults in the overlay stream (stream end) terminate it. The ingress
// channel closing is also terminal."
var (
	errOverlayClosed = errors.New("engine: overlay event stream closed")
	errIngressClosed = errors.New("engine: ingress channel closed")
)
