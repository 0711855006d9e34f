package ingest

import (
	"context"
	"errors"
	"fmt"

	"snowfeed/pkg/snowball"
)

// ErrFetchFailed marks a pagination walk that stopped because a page fetch
// failed, as opposed to natural exhaustion. The pages accumulated before the
// failure are still returned so a partial run can be persisted.
var ErrFetchFailed = errors.New("ingest: page fetch failed")

// QuoteSource yields one screener page at a time.
type QuoteSource interface {
	QuotePage(ctx context.Context, page int) ([]snowball.RawQuote, error)
	PageSize() int
}

// Pager walks the paginated quote listing. There is no authoritative total
// count upstream; the only termination signal is a page strictly shorter
// than the page size.
type Pager struct {
	source QuoteSource
}

func NewPager(source QuoteSource) *Pager {
	return &Pager{source: source}
}

// FetchAll pulls pages starting at 1 until a short page or a failure. The
// walk is cancellable between pages; cancellation returns ctx.Err with the
// records accumulated so far.
func (p *Pager) FetchAll(ctx context.Context) ([]snowball.RawQuote, error) {
	size := p.source.PageSize()
	if size <= 0 {
		size = snowball.DefaultPageSize
	}

	var all []snowball.RawQuote
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		batch, err := p.source.QuotePage(ctx, page)
		if err != nil {
			return all, fmt.Errorf("%w: page %d: %v", ErrFetchFailed, page, err)
		}
		all = append(all, batch...)
		if len(batch) < size {
			return all, nil
		}
	}
}
