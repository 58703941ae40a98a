package channel_utils

import "sync"

// MergeChannels fans the given channels into one. Every input is drained on
// its own goroutine, so merging makes no claim on the shared worker pool and
// completes even when the pool is saturated. The merged channel is buffered
// to the input count and closes once every input is exhausted.
func MergeChannels[T any](channels ...<-chan T) <-chan T {
	var wg sync.WaitGroup
	merged := make(chan T, len(channels))

	wg.Add(len(channels))
	for _, c := range channels {
		go func(ch <-chan T) {
			defer wg.Done()
			for val := range ch {
				merged <- val
			}
		}(c)
	}

	go func() {
		wg.Wait()
		close(merged)
	}()

	return merged
}
