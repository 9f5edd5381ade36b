package state

import (
	"sync"
	"sync/atomic"
)

// State is the lifecycle state of a node.
type State uint32

const (
	// Running nodes pool transactions and commit a block on every heartbeat
	// while the pool is not empty.
	Running State = iota

	// Suspended nodes keep serving queries and pooling transactions, but do
	// not commit blocks.
	Suspended

	// Shutdown nodes ignore external events; their store is closed.
	Shutdown
)

var stateNames = [...]string{"Running", "Suspended", "Shutdown"}

// WGLIMIT caps the number of goroutines running through Manager.GoFunc.
const WGLIMIT = 20

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// Manager holds a node's State and tracks the goroutines it launches so that
// shutdown can wait for them. The zero value is a Running manager.
type Manager struct {
	state   uint32
	wg      sync.WaitGroup
	running int32
}

// GetState returns the current state.
func (m *Manager) GetState() State {
	return State(atomic.LoadUint32(&m.state))
}

// SetState sets the state.
func (m *Manager) SetState(s State) {
	atomic.StoreUint32(&m.state, uint32(s))
}

// GoFunc runs f in a new goroutine unless WGLIMIT of them are already
// running, in which case f is dropped. It reports whether f was launched.
func (m *Manager) GoFunc(f func()) bool {
	for {
		n := atomic.LoadInt32(&m.running)
		if n >= WGLIMIT {
			return false
		}
		if atomic.CompareAndSwapInt32(&m.running, n, n+1) {
			break
		}
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer atomic.AddInt32(&m.running, -1)
		f()
	}()
	return true
}

// WaitRoutines blocks until every goroutine launched by GoFunc has returned.
func (m *Manager) WaitRoutines() {
	m.wg.Wait()
}
