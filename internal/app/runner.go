package app

import "sync"

// Runner decouples saga execution from the request that triggered it. The
// production runner detaches work onto goroutines; tests swap in SyncRunner to
// make saga outcomes deterministic.
type Runner interface {
	Go(fn func())
}

// AsyncRunner runs each task on its own goroutine and tracks them so shutdown
// can wait for in-flight sagas.
type AsyncRunner struct {
	wg sync.WaitGroup
}

func NewAsyncRunner() *AsyncRunner {
	return &AsyncRunner{}
}

func (r *AsyncRunner) Go(fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn()
	}()
}

// Wait blocks until every launched task has returned.
func (r *AsyncRunner) Wait() {
	r.wg.Wait()
}

// SyncRunner executes tasks inline.
type SyncRunner struct{}

func (SyncRunner) Go(fn func()) {
	fn()
}
