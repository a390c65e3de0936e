package paddingoracle

import "github.com/go-logr/logr"

// An Option configures a Decryptor.
type Option func(*Decryptor)

// WithLogger sets a logger for attack progress. Recovered bytes and blocks
// are reported at verbosity 1. The default logger discards everything.
func WithLogger(log logr.Logger) Option {
	return func(d *Decryptor) { d.log = log }
}

// WithWorkers sets the number of goroutines scanning the 256 candidate values
// for one byte position. Values below 2 keep the scan sequential. The result
// is the same either way: the lowest confirmed candidate wins. The oracle
// must be safe for concurrent use when more than one worker is set.
func WithWorkers(n int) Option {
	return func(d *Decryptor) {
		if n > 1 {
			d.workers = n
		}
	}
}
