package aggregator

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/booklegend/internal/catalog"
	"github.com/abelbrown/booklegend/internal/logging"
)

// unknownFavoriteAuthor labels favorites whose detail record names no author.
const unknownFavoriteAuthor = "Unknown"

// LoadDetail fetches one work for the detail screen. A later call supersedes
// an earlier one still in flight.
func (a *Aggregator) LoadDetail(ctx context.Context, id string) {
	a.mu.Lock()
	a.detailGen++
	gen := a.detailGen
	a.detailID = id
	author := a.knownAuthorLocked(id)
	a.detail.Set(loadingView[catalog.BookDetail]())
	a.mu.Unlock()

	d, err := a.catalog.Detail(ctx, id)

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.detailGen {
		return
	}
	if err != nil {
		logging.Warn("Detail failed", "id", id, "error", err)
		a.detail.Set(errorView[catalog.BookDetail]("Could not load book details"))
		return
	}
	// The works endpoint carries author references only; reuse the name the
	// list already showed.
	if d.AuthorName == "" {
		d.AuthorName = author
	}
	a.detail.Set(successView(d, false))
}

// DetailID returns the id most recently passed to LoadDetail.
func (a *Aggregator) DetailID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.detailID
}

// knownAuthorLocked looks id up in the list and favorites views.
// Caller holds a.mu.
func (a *Aggregator) knownAuthorLocked(id string) string {
	for _, b := range a.books {
		if b.ID == id {
			return b.AuthorName
		}
	}
	if fv := a.favorites.Get(); fv.Kind == Success {
		for _, b := range fv.Data {
			if b.ID == id && b.AuthorName != unknownFavoriteAuthor {
				return b.AuthorName
			}
		}
	}
	return ""
}

// Run drives the favorites screen until ctx is done: every change of the
// store's favorite set cancels the computation in progress and starts a new
// one.
func (a *Aggregator) Run(ctx context.Context) {
	sets := a.prefs.FavoritesValue().Subscribe(ctx)

	var (
		wg     sync.WaitGroup
		cancel context.CancelFunc = func() {}
	)
	defer func() {
		cancel()
		wg.Wait()
	}()

	for ids := range sets {
		cancel()
		wg.Wait()

		var runCtx context.Context
		runCtx, cancel = context.WithCancel(ctx)
		wg.Add(1)
		go func(ctx context.Context, ids []string) {
			defer wg.Done()
			a.computeFavorites(ctx, ids)
		}(runCtx, ids)
	}
}

// computeFavorites publishes Loading, then Empty, Success or Error for ids.
// Details are fetched concurrently; ids whose fetch fails are dropped.
func (a *Aggregator) computeFavorites(ctx context.Context, ids []string) {
	a.favorites.Set(loadingView[[]catalog.BookSummary]())
	if len(ids) == 0 {
		a.favorites.Set(emptyView[[]catalog.BookSummary]())
		return
	}

	results := make([]*catalog.BookSummary, len(ids))
	var g errgroup.Group
	g.SetLimit(a.fanout)

	for i, id := range ids {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("favorite %s: %v", id, r)
				}
			}()
			if ctx.Err() != nil {
				return nil
			}
			d, ferr := a.catalog.Detail(ctx, id)
			if ferr != nil {
				logging.Debug("Dropping favorite", "id", id, "error", ferr)
				return nil // per-item failures are omitted, never fail the group
			}
			author := d.AuthorName
			if author == "" {
				author = unknownFavoriteAuthor
			}
			results[i] = &catalog.BookSummary{
				ID:         id,
				Title:      d.Title,
				AuthorName: author,
				CoverURL:   d.CoverURL,
				Year:       d.Year,
			}
			return nil
		})
	}

	err := g.Wait()
	if ctx.Err() != nil {
		// Superseded by a newer set or shutting down.
		return
	}
	if err != nil {
		logging.Error("Favorites fan-out failed", "error", err)
		a.favorites.Set(errorView[[]catalog.BookSummary]("Error: " + err.Error()))
		return
	}

	books := make([]catalog.BookSummary, 0, len(results))
	for _, b := range results {
		if b != nil {
			books = append(books, *b)
		}
	}
	if len(books) == 0 {
		a.favorites.Set(emptyView[[]catalog.BookSummary]())
		return
	}
	a.favorites.Set(successView(books, false))
}
