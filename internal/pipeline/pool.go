package pipeline

import (
	"fmt"
	"sync"
)

// Parallel runs fn(0..n-1) under at most width concurrent workers and waits
// for all of them. Tasks within a phase are independent by construction, so
// no ordering is imposed. A panicking task is confined to its own slot and
// reported through onErr; the batch always runs to completion.
func Parallel(width, n int, fn func(i int), onErr func(i int, err error)) {
	if width < 1 {
		width = 1
	}
	sem := make(chan struct{}, width)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil && onErr != nil {
					onErr(i, fmt.Errorf("task panic: %v", r))
				}
			}()
			fn(i)
		}(i)
	}

	wg.Wait()
}
