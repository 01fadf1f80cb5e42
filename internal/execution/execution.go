// Package execution defines the sequential/parallel execution mode shared by
// ranking, matching, and removal, and the bounded fan-out used by the
// parallel paths.
package execution

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/errors"
)

type Mode int

const (
	Sequential Mode = iota
	Parallel
)

func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts "sequential"/"seq" and "parallel"/"par". An empty string
// is Sequential.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sequential", "seq":
		return Sequential, nil
	case "parallel", "par":
		return Parallel, nil
	default:
		return Sequential, fmt.Errorf("%w: unknown execution mode %q", apperrors.ErrInvalidInput, s)
	}
}

// Workers resolves a configured worker bound; non-positive means GOMAXPROCS.
func Workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// ForEach calls fn for every index in [0, n). Sequential runs them in order on
// the calling goroutine; Parallel runs them on at most workers goroutines and
// returns once all have finished.
func ForEach(mode Mode, workers int, n int, fn func(i int)) {
	if mode != Parallel || n <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(Workers(workers))
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}
