package pipeline

import (
	"fmt"
	"sync"

	"trimkit/internal/xerrors"
)

const defaultEdgeCapacity = 4

type edgeState struct {
	id       EdgeID
	stage    Stage
	ordered  bool
	sem      chan struct{}

	mu           sync.Mutex
	pending      map[uint64]Chunk
	nextExpected uint64
	inFlight     bool
	closed       bool
}

type workItem struct {
	edge  *edgeState
	chunk Chunk
}

// Scheduler is the multi-producer/multi-consumer DAG runtime.
// Stage instances are registered once and are immutable afterward; the
// scheduler owns every in-flight chunk and edge queue.
type Scheduler struct {
	edges map[EdgeID]*edgeState

	workCh chan workItem
	wg     sync.WaitGroup

	workersWG sync.WaitGroup
	maxThreads int

	cancelCh   chan struct{}
	cancelOnce sync.Once

	errMu sync.Mutex
	err   error
}

// NewScheduler builds a scheduler with a worker pool of maxThreads.
func NewScheduler(maxThreads int) *Scheduler {
	if maxThreads < 1 {
		maxThreads = 1
	}
	return &Scheduler{
		edges:      map[EdgeID]*edgeState{},
		workCh:     make(chan workItem, maxThreads*4),
		maxThreads: maxThreads,
		cancelCh:   make(chan struct{}),
	}
}

// RegisterEdge attaches stage as the consumer of edge id. capacity bounds
// how many chunks may be admitted to the edge before producers block;
// values <= 0 use a small default.
func (s *Scheduler) RegisterEdge(id EdgeID, stage Stage, capacity int) {
	if capacity <= 0 {
		capacity = defaultEdgeCapacity
	}
	s.edges[id] = &edgeState{
		id:      id,
		stage:   stage,
		ordered: stage.Ordered(),
		sem:     make(chan struct{}, capacity),
		pending: map[uint64]Chunk{},
	}
}

// Start launches the worker pool. Call once, before any Enqueue.
func (s *Scheduler) Start() {
	for i := 0; i < s.maxThreads; i++ {
		s.workersWG.Add(1)
		go s.workerLoop()
	}
}

func (s *Scheduler) workerLoop() {
	defer s.workersWG.Done()
	for item := range s.workCh {
		s.process(item)
	}
}

// Enqueue admits a chunk onto edge id, blocking if the edge's queue is
// full (back-pressure) until space frees up or the scheduler cancels.
// Enqueue is safe to call concurrently, including from outside the
// scheduler (the decode stage is an external producer).
func (s *Scheduler) Enqueue(id EdgeID, c Chunk) {
	e, ok := s.edges[id]
	if !ok {
		return
	}
	select {
	case e.sem <- struct{}{}:
	case <-s.cancelCh:
		return
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		<-e.sem
		return
	}
	if !e.ordered {
		e.mu.Unlock()
		s.wg.Add(1)
		s.dispatch(e, c)
		return
	}
	e.pending[c.SeqNum()] = c
	s.tryDispatchOrdered(e)
	e.mu.Unlock()
}

// tryDispatchOrdered must be called with e.mu held.
func (s *Scheduler) tryDispatchOrdered(e *edgeState) {
	if e.inFlight {
		return
	}
	c, ok := e.pending[e.nextExpected]
	if !ok {
		return
	}
	delete(e.pending, e.nextExpected)
	e.inFlight = true
	s.wg.Add(1)
	s.dispatch(e, c)
}

func (s *Scheduler) dispatch(e *edgeState, c Chunk) {
	select {
	case s.workCh <- workItem{edge: e, chunk: c}:
	case <-s.cancelCh:
		<-e.sem
		s.wg.Done()
	}
}

func (s *Scheduler) process(item workItem) {
	e, c := item.edge, item.chunk
	routes, err := e.stage.Process(c)
	<-e.sem

	if e.ordered {
		e.mu.Lock()
		e.nextExpected++
		e.inFlight = false
		s.tryDispatchOrdered(e)
		e.mu.Unlock()
	}

	if err != nil {
		s.failFirst(fmt.Errorf("stage on edge %d: %w", e.id, err))
		s.wg.Done()
		return
	}

	if c.IsEOF() {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()
	}

	for _, r := range routes {
		s.Enqueue(r.Target, r.Chunk)
	}
	s.wg.Done()
}

func (s *Scheduler) failFirst(err error) {
	s.errMu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.errMu.Unlock()
	s.cancelOnce.Do(func() { close(s.cancelCh) })
	for _, e := range s.edges {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()
	}
}

// Cancelled reports whether the scheduler has already recorded a fatal
// error and is draining.
func (s *Scheduler) Cancelled() bool {
	select {
	case <-s.cancelCh:
		return true
	default:
		return false
	}
}

// Wait blocks until every admitted chunk has been fully processed (and any
// chunks it produced in turn), stops the worker pool, and returns the
// first error raised by any stage, if any.
func (s *Scheduler) Wait() error {
	s.wg.Wait()
	close(s.workCh)
	s.workersWG.Wait()

	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err != nil {
		return s.err
	}
	select {
	case <-s.cancelCh:
		return xerrors.ErrSchedulerCancelled
	default:
		return nil
	}
}
