package enrich

import (
	"context"

	"github.com/MimeLyc/checkmp/internal/language"
	"github.com/MimeLyc/checkmp/internal/media"
	"github.com/MimeLyc/checkmp/pkg/log"
	"github.com/sourcegraph/conc/pool"
)

const DefaultConcurrency = 5

// Fetcher resolves one candidate's original language. An empty result means unknown.
type Fetcher interface {
	FetchLanguage(ctx context.Context, item media.Candidate) string
}

// Engine filters candidates by original language, looking each one up concurrently
// and stopping as soon as enough matches have been collected.
type Engine struct {
	fetcher     Fetcher
	concurrency int
}

type Option func(*Engine)

// WithConcurrency caps the number of lookups in flight.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func NewEngine(fetcher Fetcher, opts ...Option) *Engine {
	e := &Engine{
		fetcher:     fetcher,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type completion struct {
	index int
	code  string
}

// FilterByLanguage returns up to targetCount items whose original language
// matches query, in the order their lookups completed. Every item whose lookup
// completes before the target is reached gets its Language stamped in place.
// Lookups still queued once the target is reached are skipped and in-flight
// ones are cancelled.
func (e *Engine) FilterByLanguage(ctx context.Context, items []media.Candidate, query string, targetCount int) []media.Candidate {
	result := make([]media.Candidate, 0)
	if len(items) == 0 || targetCount <= 0 {
		return result
	}

	target := language.Resolve(query)
	if !language.Known(query) {
		log.Debug("language %q not in synonym table, matching literally", query)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Sized to len(items) so workers never block on send after the consumer stops.
	done := make(chan completion, len(items))

	// Workers read from a snapshot; only the consumer below writes to items.
	pending := append([]media.Candidate(nil), items...)

	go func() {
		p := pool.New().WithMaxGoroutines(e.concurrency)
		for i := range pending {
			if runCtx.Err() != nil {
				break
			}
			index, item := i, pending[i]
			p.Go(func() {
				if runCtx.Err() != nil {
					return
				}
				done <- completion{index: index, code: e.fetcher.FetchLanguage(runCtx, item)}
			})
		}
		p.Wait()
		close(done)
	}()

	for c := range done {
		items[c.index].Language = c.code
		if c.code == "" || c.code != target {
			continue
		}
		result = append(result, items[c.index])
		if len(result) >= targetCount {
			cancel()
			break
		}
	}

	log.Debug("language filter %q: %d/%d matched from %d candidates", target, len(result), targetCount, len(items))
	return result
}
