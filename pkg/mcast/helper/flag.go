package helper

import "sync/atomic"

const (
	active   = 0x0
	inactive = 0x1
)

// Flag is a one way switch, it starts active and can be
// inactivated only once. Used to close resources exactly once.
type Flag struct {
	flag int32
}

// IsActive returns `true` if the flag still active.
func (f *Flag) IsActive() bool {
	return atomic.LoadInt32(&f.flag) == active
}

// Inactivate returns `true` only for the call that switched
// the flag off.
func (f *Flag) Inactivate() bool {
	return atomic.CompareAndSwapInt32(&f.flag, active, inactive)
}
