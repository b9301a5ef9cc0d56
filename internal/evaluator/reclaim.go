package evaluator

import (
	"slate/internal/object"
	"sync"

	"github.com/eapache/queue"
)

type pendingFree struct {
	tag     *object.ForeignType
	payload any
}

// reclaimQueue collects payloads of collected handles. Cleanups run on a
// runtime goroutine, so pushes are locked; draining happens on the
// interpreter goroutine where Free is allowed to touch shared pools.
type reclaimQueue struct {
	mu      sync.Mutex
	pending *queue.Queue
}

func newReclaimQueue() *reclaimQueue {
	return &reclaimQueue{pending: queue.New()}
}

func (q *reclaimQueue) push(p pendingFree) {
	q.mu.Lock()
	q.pending.Add(p)
	q.mu.Unlock()
}

func (q *reclaimQueue) drain() []pendingFree {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]pendingFree, 0, q.pending.Length())
	for q.pending.Length() > 0 {
		out = append(out, q.pending.Remove().(pendingFree))
	}
	return out
}

// Pending reports how many collected handles are waiting for Reclaim.
func (in *Interpreter) Pending() int {
	in.reclaim.mu.Lock()
	defer in.reclaim.mu.Unlock()
	return in.reclaim.pending.Length()
}
