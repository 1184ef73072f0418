package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/MimeLyc/checkmp/internal/media"
	"github.com/MimeLyc/checkmp/pkg/log"
	"golang.org/x/sync/singleflight"
)

const DefaultLookupTimeout = 15 * time.Second

// LanguageSource looks up a title's original language upstream.
type LanguageSource interface {
	OriginalLanguage(ctx context.Context, kind media.Kind, id int) (string, error)
}

// TMDBFetcher resolves a candidate's original language with one detail lookup.
// It never fails: every error collapses to an empty code.
type TMDBFetcher struct {
	source  LanguageSource
	timeout time.Duration
	group   singleflight.Group
}

func NewTMDBFetcher(source LanguageSource, timeout time.Duration) *TMDBFetcher {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &TMDBFetcher{source: source, timeout: timeout}
}

// FetchLanguage returns the candidate's original language code, or "" when
// the id is missing or the lookup fails for any reason.
func (f *TMDBFetcher) FetchLanguage(ctx context.Context, item media.Candidate) string {
	if item.TMDBID <= 0 {
		return ""
	}
	kind := kindOf(item)
	key := fmt.Sprintf("%s:%d", kind, item.TMDBID)

	// The shared lookup outlives any single caller; each caller stops waiting
	// on its own cancellation.
	ch := f.group.DoChan(key, func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
		defer cancel()
		return f.source.OriginalLanguage(lookupCtx, kind, item.TMDBID)
	})

	select {
	case <-ctx.Done():
		return ""
	case res := <-ch:
		if res.Err != nil {
			log.Debug("language lookup failed for %s: %v", key, res.Err)
			return ""
		}
		return res.Val.(string)
	}
}

func kindOf(item media.Candidate) media.Kind {
	if item.Kind.Valid() {
		return item.Kind
	}
	if kind, ok := media.ParseKind(item.Type); ok {
		return kind
	}
	return media.KindSeries
}
