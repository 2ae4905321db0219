// Package workers tracks background goroutines so shutdown can wait for
// in-flight work, such as analytics events, to drain.
package workers

import "sync"

// Global is the process-wide worker set.
var Global = NewWorker()

type Worker struct {
	wg *sync.WaitGroup
}

func NewWorker() *Worker {
	return &Worker{
		wg: &sync.WaitGroup{},
	}
}

// Go runs fn on a tracked goroutine.
func (w *Worker) Go(fn func()) {
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		fn()
	}()
}

// Wait blocks until every tracked goroutine has finished.
func (w *Worker) Wait() {
	w.wg.Wait()
}
