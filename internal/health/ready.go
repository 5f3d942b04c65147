package health

import "sync/atomic"

// ready gates the readiness endpoint during startup and shutdown.
var ready atomic.Bool

func init() {
	ready.Store(true)
}

// SetReady flips the readiness gate. Call with false before draining
// connections so load balancers stop routing new requests.
func SetReady(v bool) {
	ready.Store(v)
}

// IsReady reports the current readiness gate state.
func IsReady() bool {
	return ready.Load()
}
