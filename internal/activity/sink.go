package activity

import (
	"fmt"
	"io"
	"sync"
)

// WriteTo returns a subscriber that prints each new entry to w, oldest
// first, in the Format layout. Entries already printed are not repeated.
func WriteTo(w io.Writer) func([]Entry) {
	var (
		mu   sync.Mutex
		last uint64
	)

	return func(entries []Entry) {
		mu.Lock()
		defer mu.Unlock()

		for i := len(entries) - 1; i >= 0; i-- {
			entry := entries[i]
			if entry.Seq <= last {
				continue
			}

			_, _ = fmt.Fprintln(w, Format(entry))
			last = entry.Seq
		}
	}
}
