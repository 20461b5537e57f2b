// Package aggregator owns the screen state of BookLegend.
//
// The Aggregator keeps the paging cursor, the committed search query and the
// accumulated result list, and publishes one View per screen (list, detail,
// favorites) through observe.Values. Operations block on I/O and are meant to
// be run from tea.Cmd goroutines; all state is guarded by one mutex and
// every published View is a fresh copy.
package aggregator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/abelbrown/booklegend/internal/catalog"
	"github.com/abelbrown/booklegend/internal/logging"
	"github.com/abelbrown/booklegend/internal/observe"
)

// PageSize is the number of books requested per page.
const PageSize = 20

const (
	defaultDebounce    = 500 * time.Millisecond
	defaultConcurrency = 8
)

// Catalog is the subset of catalog.Client the aggregator needs.
type Catalog interface {
	ListByCategory(ctx context.Context, limit, offset int) ([]catalog.BookSummary, error)
	Search(ctx context.Context, query string, page, limit int) ([]catalog.BookSummary, error)
	Detail(ctx context.Context, id string) (catalog.BookDetail, error)
}

// Preferences is the subset of prefs.Store the aggregator needs.
type Preferences interface {
	FavoritesValue() *observe.Value[[]string]
	DarkModeValue() *observe.Value[bool]
	IsFavorite(id string) bool
	ToggleFavorite(ctx context.Context, id string) ([]string, error)
	DarkMode() bool
	SetDarkMode(ctx context.Context, dark bool) error
}

// Options tunes timing and fan-out. Zero values use defaults.
type Options struct {
	SearchDebounce       time.Duration
	FavoritesConcurrency int
}

// ListView is the state of the list screen.
type ListView = View[[]catalog.BookSummary]

// DetailView is the state of the detail screen.
type DetailView = View[catalog.BookDetail]

// Aggregator coordinates fetches and publishes screen state.
type Aggregator struct {
	catalog  Catalog
	prefs    Preferences
	debounce time.Duration
	fanout   int

	mu          sync.Mutex
	offset      int
	books       []catalog.BookSummary
	lastPage    bool
	loadingMore bool
	query       string
	gen         uint64 // bumped by every cursor reset; stale results compare against it

	searchTimer *time.Timer
	searchGen   uint64

	detailGen uint64
	detailID  string

	list       *observe.Value[ListView]
	detail     *observe.Value[DetailView]
	favorites  *observe.Value[ListView]
	searchText *observe.Value[string]
}

// New creates an Aggregator. The list screen starts in Loading; call
// LoadFirstPage to populate it and Run to drive the favorites screen.
func New(c Catalog, p Preferences, opts Options) *Aggregator {
	a := &Aggregator{
		catalog:    c,
		prefs:      p,
		debounce:   opts.SearchDebounce,
		fanout:     opts.FavoritesConcurrency,
		list:       observe.New(loadingView[[]catalog.BookSummary]()),
		detail:     observe.New(loadingView[catalog.BookDetail]()),
		favorites:  observe.New(loadingView[[]catalog.BookSummary]()),
		searchText: observe.New(""),
	}
	if a.debounce <= 0 {
		a.debounce = defaultDebounce
	}
	if a.fanout <= 0 {
		a.fanout = defaultConcurrency
	}
	return a
}

// List exposes the list screen state.
func (a *Aggregator) List() *observe.Value[ListView] { return a.list }

// Detail exposes the detail screen state.
func (a *Aggregator) Detail() *observe.Value[DetailView] { return a.detail }

// Favorites exposes the favorites screen state.
func (a *Aggregator) Favorites() *observe.Value[ListView] { return a.favorites }

// SearchText mirrors the raw search input, updated on every keystroke.
func (a *Aggregator) SearchText() *observe.Value[string] { return a.searchText }

// FavoriteIDs is the store's favorite set, passed through for the UI markers.
func (a *Aggregator) FavoriteIDs() *observe.Value[[]string] { return a.prefs.FavoritesValue() }

// DarkMode is the store's theme flag, passed through for the UI.
func (a *Aggregator) DarkMode() *observe.Value[bool] { return a.prefs.DarkModeValue() }

// Query returns the committed search query.
func (a *Aggregator) Query() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.query
}

// Cursor returns the paging offset and last-page flag.
func (a *Aggregator) Cursor() (offset int, lastPage bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.offset, a.lastPage
}

// LoadFirstPage commits query, resets paging and replaces the list with the
// first page. An empty query lists the fiction category; anything else
// searches. Failures surface as an Error view.
func (a *Aggregator) LoadFirstPage(ctx context.Context, query string) {
	a.mu.Lock()
	a.gen++
	gen := a.gen
	a.query = query
	a.offset = 0
	a.books = nil
	a.lastPage = false
	a.loadingMore = false
	a.list.Set(loadingView[[]catalog.BookSummary]())
	a.mu.Unlock()

	books, err := a.fetchPage(ctx, query, 0)

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen {
		logging.Debug("Discarding superseded first page", "query", query)
		return
	}
	if err != nil {
		logging.Warn("First page failed", "query", query, "error", err)
		a.list.Set(errorView[[]catalog.BookSummary]("Could not load books: " + err.Error()))
		return
	}
	a.books = books
	a.list.Set(successView(clone(a.books), false))
}

// Refresh reloads the first page while keeping the current list on screen.
// Only acts when the list is in Success. A failed refresh is absorbed: the
// old list and cursor are kept.
func (a *Aggregator) Refresh(ctx context.Context) {
	a.mu.Lock()
	if a.list.Get().Kind != Success {
		a.mu.Unlock()
		return
	}
	a.gen++
	gen := a.gen
	prevOffset, prevLast := a.offset, a.lastPage
	if a.loadingMore {
		// The in-flight page is about to go stale; undo its advance.
		prevOffset -= PageSize
	}
	a.offset = 0
	a.lastPage = false
	a.loadingMore = false
	query := a.query
	a.list.Set(successView(clone(a.books), true))
	a.mu.Unlock()

	books, err := a.fetchPage(ctx, query, 0)

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen {
		return
	}
	if err != nil {
		logging.Warn("Refresh failed, keeping current list", "query", query, "error", err)
		a.offset, a.lastPage = prevOffset, prevLast
		a.list.Set(successView(clone(a.books), false))
		return
	}
	a.books = books
	a.list.Set(successView(clone(a.books), false))
}

// LoadNextPage appends the next page. It is a no-op while another page is in
// flight, after the last page, during a refresh, or when the list is not in
// Success. Failures roll the cursor back and leave the list untouched.
func (a *Aggregator) LoadNextPage(ctx context.Context) {
	a.mu.Lock()
	cur := a.list.Get()
	if a.loadingMore || a.lastPage || cur.Kind != Success || cur.Refreshing {
		a.mu.Unlock()
		return
	}
	a.loadingMore = true
	a.offset += PageSize
	offset := a.offset
	gen := a.gen
	query := a.query
	a.mu.Unlock()

	books, err := a.fetchPage(ctx, query, offset)

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen {
		// A reset replaced the cursor while this page was in flight.
		return
	}
	a.loadingMore = false

	switch {
	case err != nil:
		logging.Warn("Next page failed", "query", query, "offset", offset, "error", err)
		a.offset -= PageSize
	case len(books) == 0:
		a.offset -= PageSize
		a.lastPage = true
	default:
		a.books = append(a.books, books...)
		a.list.Set(successView(clone(a.books), false))
	}
}

// SetQuery records raw search input and schedules a commit after the
// debounce interval. Each call discards the pending commit, so a burst of
// input yields one LoadFirstPage with the final text.
func (a *Aggregator) SetQuery(ctx context.Context, text string) {
	a.searchText.Set(text)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.searchTimer != nil {
		a.searchTimer.Stop()
	}
	a.searchGen++
	sg := a.searchGen
	a.searchTimer = time.AfterFunc(a.debounce, func() {
		a.mu.Lock()
		if sg != a.searchGen {
			a.mu.Unlock()
			return
		}
		a.searchTimer = nil
		a.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		logging.Debug("Committing search", "query", text)
		a.LoadFirstPage(ctx, text)
	})
}

// Close cancels a pending search commit.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.searchTimer != nil {
		a.searchTimer.Stop()
		a.searchTimer = nil
	}
	a.searchGen++
}

// ToggleFavorite flips id in the preference store. The favorites screen
// recomputes from the store's change notification.
func (a *Aggregator) ToggleFavorite(ctx context.Context, id string) error {
	_, err := a.prefs.ToggleFavorite(ctx, id)
	if err != nil {
		logging.Error("Toggle favorite failed", "id", id, "error", err)
	}
	return err
}

// IsFavorite reports whether id is a favorite.
func (a *Aggregator) IsFavorite(id string) bool {
	return a.prefs.IsFavorite(id)
}

// ToggleDarkMode writes the negation of the stored theme flag.
func (a *Aggregator) ToggleDarkMode(ctx context.Context) error {
	return a.prefs.SetDarkMode(ctx, !a.prefs.DarkMode())
}

// fetchPage routes to the category feed or search depending on query.
func (a *Aggregator) fetchPage(ctx context.Context, query string, offset int) ([]catalog.BookSummary, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return a.catalog.ListByCategory(ctx, PageSize, offset)
	}
	return a.catalog.Search(ctx, q, catalog.PageForOffset(offset, PageSize), PageSize)
}

func clone[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
