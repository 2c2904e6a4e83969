package ffbridge

import "sync"

// LockOp is an operation requested by the native lock manager callback.
type LockOp int

// The values match FFBRIDGE_LOCK_* in ffbridge.h.
const (
	LockCreate LockOp = iota
	LockObtain
	LockRelease
	LockDestroy
)

func (op LockOp) String() string {
	switch op {
	case LockCreate:
		return "create"
	case LockObtain:
		return "obtain"
	case LockRelease:
		return "release"
	case LockDestroy:
		return "destroy"
	default:
		return "unknown"
	}
}

// lockRegistry backs the legacy av_lockmgr_register callback. Native code
// holds an opaque non-zero id per mutex; the registry maps ids to mutexes.
type lockRegistry struct {
	mu    sync.Mutex
	next  uintptr
	locks map[uintptr]*sync.Mutex
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{locks: make(map[uintptr]*sync.Mutex)}
}

// do runs op against the mutex identified by *slot and returns 0 on success
// or -1 on failure, which is what the native callback expects. Create
// writes a fresh id into the slot; destroy zeroes it. Destroying the same
// id twice is undefined by the native contract; here the second call fails.
func (r *lockRegistry) do(slot *uintptr, op LockOp) int {
	if slot == nil {
		return -1
	}
	switch op {
	case LockCreate:
		r.mu.Lock()
		r.next++
		id := r.next
		r.locks[id] = &sync.Mutex{}
		r.mu.Unlock()
		*slot = id
		return 0
	case LockDestroy:
		r.mu.Lock()
		_, ok := r.locks[*slot]
		delete(r.locks, *slot)
		r.mu.Unlock()
		if !ok {
			return -1
		}
		*slot = 0
		return 0
	case LockObtain, LockRelease:
		m := r.lookup(*slot)
		if m == nil {
			return -1
		}
		if op == LockObtain {
			m.Lock()
		} else if !m.TryLock() {
			m.Unlock()
		} else {
			// Releasing an unlocked mutex. Undo the trial lock and fail.
			m.Unlock()
			return -1
		}
		return 0
	default:
		return -1
	}
}

func (r *lockRegistry) lookup(id uintptr) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locks[id]
}

func (r *lockRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}
