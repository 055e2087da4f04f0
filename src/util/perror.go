package util

import (
	"errors"
	"sort"
	"sync"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// perror provides a structure for listening for errors reported from parallel worker threads and means for retrieving
// errors when a parallel job has been completed.
type perror struct {
	listen     chan error    // Channel for receiving error messages from worker threads.
	stop       chan struct{} // Closing this channel causes the perror struct to stop listening for errors.
	done       chan struct{} // Closed by the listener once it has stopped.
	errors     []error       // Buffer of error messages.
	sync.Mutex               // For synchronising writes and reads.
}

// ----------------------
// ----- Constants ------
// ----------------------

// defaultBufferSize defines the fallback buffer size of the error array.
const defaultBufferSize = 16

// ---------------------
// ----- functions -----
// ---------------------

// NewPerror returns a pointer to a perror struct with n number of pre-allocated slots for errors in the buffer.
func NewPerror(n int) *perror {
	if n < 1 {
		n = defaultBufferSize
	}
	pe := perror{
		listen: make(chan error),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		errors: make([]error, 0, n),
	}
	go pe.run()
	return &pe
}

// run starts listening for errors on the listen channel until the stop channel is closed.
func (pe *perror) run() {
	defer close(pe.done)
	for {
		select {
		case err := <-pe.listen:
			pe.Lock()
			pe.errors = append(pe.errors, err)
			pe.Unlock()
		case <-pe.stop:
			return
		}
	}
}

// Len returns the number of buffered errors.
func (pe *perror) Len() int {
	pe.Lock()
	defer pe.Unlock()
	return len(pe.errors)
}

// Stop stops the error listener and waits for it to return. Append must not be called after Stop.
func (pe *perror) Stop() {
	close(pe.stop)
	<-pe.done
}

// Append sends the error message err to the error listener. <nil> errors are ignored.
func (pe *perror) Append(err error) {
	if err != nil {
		pe.listen <- err
	}
}

// Err joins the buffered errors, ordered by message, or returns <nil> if no error was reported.
func (pe *perror) Err() error {
	pe.Lock()
	defer pe.Unlock()
	if len(pe.errors) < 1 {
		return nil
	}
	errs := append([]error(nil), pe.errors...)
	sort.Slice(errs, func(i, j int) bool {
		return errs[i].Error() < errs[j].Error()
	})
	return errors.Join(errs...)
}

// Parallel runs job for every index in [0, n) on at most threads worker go routines and returns the joined errors
// of all jobs.
func Parallel(n, threads int, job func(i int) error) error {
	if threads < 1 {
		threads = 1
	}
	pe := NewPerror(0)
	sem := make(chan struct{}, threads)
	wg := sync.WaitGroup{}
	for i1 := 0; i1 < n; i1++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			pe.Append(job(i))
		}(i1)
	}
	wg.Wait()
	pe.Stop()
	return pe.Err()
}
