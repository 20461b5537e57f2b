package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/booklegend/internal/aggregator"
	"github.com/abelbrown/booklegend/internal/catalog"
)

// mockCmd records which command functions were called.
type mockCmd struct {
	calls     []string
	lastQuery string
	lastID    string
}

func (m *mockCmd) config() AppConfig {
	noop := func() tea.Msg { return nil }
	return AppConfig{
		LoadFirstPage: func(query string) tea.Cmd {
			m.calls = append(m.calls, "first")
			m.lastQuery = query
			return noop
		},
		LoadNextPage: func() tea.Cmd {
			m.calls = append(m.calls, "next")
			return noop
		},
		Refresh: func() tea.Cmd {
			m.calls = append(m.calls, "refresh")
			return noop
		},
		SetQuery: func(text string) tea.Cmd {
			m.calls = append(m.calls, "query")
			m.lastQuery = text
			return noop
		},
		LoadDetail: func(id string) tea.Cmd {
			m.calls = append(m.calls, "detail")
			m.lastID = id
			return noop
		},
		ToggleFavorite: func(id string) tea.Cmd {
			m.calls = append(m.calls, "favorite")
			m.lastID = id
			return noop
		},
		ToggleTheme: func() tea.Cmd {
			m.calls = append(m.calls, "theme")
			return noop
		},
	}
}

func (m *mockCmd) called(name string) bool {
	for _, c := range m.calls {
		if c == name {
			return true
		}
	}
	return false
}

func books(n int) []catalog.BookSummary {
	out := make([]catalog.BookSummary, n)
	for i := range out {
		out[i] = catalog.BookSummary{
			ID:         string(rune('a' + i)),
			Title:      "Book " + string(rune('A'+i)),
			AuthorName: "Author",
			Year:       "1965",
		}
	}
	return out
}

func newTestApp(t *testing.T, mock *mockCmd) App {
	t.Helper()
	app := NewApp(mock.config())
	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return model.(App)
}

func send(t *testing.T, app App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	model, cmd := app.Update(msg)
	return model.(App), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func withList(t *testing.T, app App, n int) App {
	t.Helper()
	app, _ = send(t, app, ListUpdated{View: aggregator.ListView{Kind: aggregator.Success, Data: books(n)}})
	return app
}

func TestAppInit(t *testing.T) {
	mock := &mockCmd{}
	app := NewApp(mock.config())

	cmd := app.Init()

	if cmd == nil {
		t.Fatal("Init should return a command")
	}
	if !mock.called("first") {
		t.Error("Init should call LoadFirstPage")
	}
	if mock.lastQuery != "" {
		t.Errorf("Init should load the category feed, got query %q", mock.lastQuery)
	}
}

func TestAppInitNilConfig(t *testing.T) {
	app := NewApp(AppConfig{})

	if cmd := app.Init(); cmd == nil {
		t.Error("Init should still start the spinner")
	}
}

func TestAppNavigation(t *testing.T) {
	mock := &mockCmd{}
	app := withList(t, newTestApp(t, mock), 5)

	app, _ = send(t, app, runes("j"))
	if app.Cursor() != 1 {
		t.Errorf("j should move cursor to 1, got %d", app.Cursor())
	}

	app, _ = send(t, app, runes("k"))
	if app.Cursor() != 0 {
		t.Errorf("k should move cursor to 0, got %d", app.Cursor())
	}

	app, _ = send(t, app, runes("k"))
	if app.Cursor() != 0 {
		t.Errorf("k at top should stay at 0, got %d", app.Cursor())
	}

	app, _ = send(t, app, runes("G"))
	if app.Cursor() != 4 {
		t.Errorf("G should move cursor to 4, got %d", app.Cursor())
	}

	app, _ = send(t, app, runes("g"))
	if app.Cursor() != 0 {
		t.Errorf("g should move cursor to 0, got %d", app.Cursor())
	}
}

func TestAppLoadsNextPageAtLastRow(t *testing.T) {
	mock := &mockCmd{}
	app := withList(t, newTestApp(t, mock), 3)

	app, _ = send(t, app, runes("j"))
	if mock.called("next") {
		t.Fatal("next page requested before reaching the last row")
	}

	app, cmd := send(t, app, runes("j"))
	if cmd == nil || !mock.called("next") {
		t.Error("reaching the last row should request the next page")
	}

	// Appended page arrives; cursor stays put.
	app = withList(t, app, 6)
	if app.Cursor() != 2 {
		t.Errorf("cursor should stay at 2 after append, got %d", app.Cursor())
	}
}

func TestAppNoNextPageWhileRefreshing(t *testing.T) {
	mock := &mockCmd{}
	app := newTestApp(t, mock)
	app, _ = send(t, app, ListUpdated{View: aggregator.ListView{Kind: aggregator.Success, Data: books(1), Refreshing: true}})

	send(t, app, runes("j"))
	if mock.called("next") {
		t.Error("next page must not be requested during a refresh")
	}
}

func TestAppRetryOnlyOnError(t *testing.T) {
	mock := &mockCmd{}
	app := withList(t, newTestApp(t, mock), 2)

	app, _ = send(t, app, runes("r"))
	if mock.called("first") {
		t.Error("r should do nothing while the list is shown")
	}

	app, _ = send(t, app, ListUpdated{View: aggregator.ListView{Kind: aggregator.Error, Message: "Could not load books: boom"}})
	send(t, app, runes("r"))
	if !mock.called("first") {
		t.Error("r should retry the first page after an error")
	}
}

func TestAppRefresh(t *testing.T) {
	mock := &mockCmd{}
	app := newTestApp(t, mock)

	app, _ = send(t, app, runes("R"))
	if mock.called("refresh") {
		t.Error("R should do nothing while loading")
	}

	app = withList(t, app, 2)
	send(t, app, runes("R"))
	if !mock.called("refresh") {
		t.Error("R should refresh a loaded list")
	}
}

func TestAppOpenDetailAndBack(t *testing.T) {
	mock := &mockCmd{}
	app := withList(t, newTestApp(t, mock), 3)
	app, _ = send(t, app, runes("j"))

	app, cmd := send(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || mock.lastID != "b" {
		t.Fatalf("enter should load detail for b, got %q", mock.lastID)
	}
	if app.Screen() != ScreenDetail {
		t.Fatalf("expected detail screen, got %d", app.Screen())
	}

	app, _ = send(t, app, DetailUpdated{View: aggregator.DetailView{
		Kind: aggregator.Success,
		Data: catalog.BookDetail{Title: "Book B", Description: "A long tale", Year: "1965", Pages: "300"},
	}})
	out := app.View()
	if !strings.Contains(out, "Book B") || !strings.Contains(out, "A long tale") {
		t.Errorf("detail view missing content:\n%s", out)
	}

	app, _ = send(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.Screen() != ScreenList {
		t.Errorf("esc should return to list, got %d", app.Screen())
	}
	if app.Cursor() != 1 {
		t.Errorf("cursor should be preserved, got %d", app.Cursor())
	}
}

func TestAppToggleFavoriteOnDetail(t *testing.T) {
	mock := &mockCmd{}
	app := withList(t, newTestApp(t, mock), 1)
	app, _ = send(t, app, tea.KeyMsg{Type: tea.KeyEnter})

	app, _ = send(t, app, tea.KeyMsg{Type: tea.KeySpace})
	if mock.called("favorite") {
		t.Error("space should do nothing until the detail has loaded")
	}

	app, _ = send(t, app, DetailUpdated{View: aggregator.DetailView{Kind: aggregator.Success, Data: catalog.BookDetail{Title: "Book A"}}})
	app, _ = send(t, app, tea.KeyMsg{Type: tea.KeySpace})
	if !mock.called("favorite") || mock.lastID != "a" {
		t.Errorf("space should toggle favorite a, got %v %q", mock.calls, mock.lastID)
	}

	app, _ = send(t, app, FavoriteIDsUpdated{IDs: []string{"a"}})
	if !strings.Contains(app.View(), "★ favorite") {
		t.Error("detail should show the favorite marker")
	}
}

func TestAppDetailErrorRetry(t *testing.T) {
	mock := &mockCmd{}
	app := withList(t, newTestApp(t, mock), 1)
	app, _ = send(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	app, _ = send(t, app, DetailUpdated{View: aggregator.DetailView{Kind: aggregator.Error, Message: "Could not load book details"}})

	if !strings.Contains(app.View(), "Could not load book details") {
		t.Error("detail error message not rendered")
	}

	mock.calls = nil
	send(t, app, runes("r"))
	if !mock.called("detail") {
		t.Error("r should retry the detail fetch")
	}
}

func TestAppFavoritesScreen(t *testing.T) {
	mock := &mockCmd{}
	app := newTestApp(t, mock)

	app, _ = send(t, app, runes("f"))
	if app.Screen() != ScreenFavorites {
		t.Fatalf("f should open favorites, got %d", app.Screen())
	}

	app, _ = send(t, app, FavoritesUpdated{View: aggregator.ListView{Kind: aggregator.Empty}})
	if !strings.Contains(app.View(), "No favorites yet") {
		t.Error("empty favorites should render the empty message")
	}

	app, _ = send(t, app, FavoritesUpdated{View: aggregator.ListView{Kind: aggregator.Success, Data: books(2)}})
	app, _ = send(t, app, runes("j"))
	app, _ = send(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if app.Screen() != ScreenDetail || mock.lastID != "b" {
		t.Fatalf("enter should open detail b, got screen %d id %q", app.Screen(), mock.lastID)
	}

	app, _ = send(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.Screen() != ScreenFavorites {
		t.Errorf("esc from detail should return to favorites, got %d", app.Screen())
	}

	app, _ = send(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.Screen() != ScreenList {
		t.Errorf("esc from favorites should return to list, got %d", app.Screen())
	}
}

func TestAppSearchInput(t *testing.T) {
	mock := &mockCmd{}
	app := withList(t, newTestApp(t, mock), 3)

	app, _ = send(t, app, runes("/"))
	if !app.Searching() {
		t.Fatal("/ should focus the search box")
	}

	app, cmd := send(t, app, runes("d"))
	if cmd == nil || !mock.called("query") || mock.lastQuery != "d" {
		t.Errorf("typing should forward the raw text, got %q", mock.lastQuery)
	}

	// Keys that would navigate type into the box instead.
	app, _ = send(t, app, runes("j"))
	if mock.lastQuery != "dj" {
		t.Errorf("expected query dj, got %q", mock.lastQuery)
	}
	if app.Screen() != ScreenList {
		t.Error("typing must not switch screens")
	}

	app, _ = send(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.Searching() {
		t.Error("esc should leave the search box")
	}
	if !strings.Contains(app.View(), `Search "dj"`) {
		t.Error("header should show the active query")
	}
}

func TestAppSearchClear(t *testing.T) {
	mock := &mockCmd{}
	app := withList(t, newTestApp(t, mock), 3)

	app, _ = send(t, app, runes("/"))
	if !strings.Contains(app.View(), "ctrl+u") {
		t.Error("status bar should show the clear hint while searching")
	}
	app, _ = send(t, app, runes("dune"))
	// Move the cursor off the end so only a full clear empties the box.
	app, _ = send(t, app, tea.KeyMsg{Type: tea.KeyLeft})

	mock.calls = nil
	app, _ = send(t, app, tea.KeyMsg{Type: tea.KeyCtrlU})
	if !mock.called("query") || mock.lastQuery != "" {
		t.Errorf("ctrl+u should commit an empty query, got %v %q", mock.calls, mock.lastQuery)
	}
	if !app.Searching() {
		t.Error("ctrl+u should keep the search box focused")
	}

	mock.calls = nil
	send(t, app, tea.KeyMsg{Type: tea.KeyCtrlU})
	if mock.called("query") {
		t.Error("clearing an empty box should not query again")
	}
}

func TestAppThemeToggle(t *testing.T) {
	mock := &mockCmd{}
	app := newTestApp(t, mock)
	if app.DarkMode() {
		t.Fatal("default theme should be light")
	}

	app, _ = send(t, app, runes("t"))
	if !mock.called("theme") {
		t.Error("t should toggle the theme")
	}
	if app.DarkMode() {
		t.Error("theme should only change when the store reports it")
	}

	app, _ = send(t, app, ThemeChanged{Dark: true})
	if !app.DarkMode() {
		t.Error("ThemeChanged should switch to dark")
	}
}

func TestAppListViewKinds(t *testing.T) {
	tests := []struct {
		name string
		view aggregator.ListView
		want string
	}{
		{"loading", aggregator.ListView{Kind: aggregator.Loading}, "Loading books"},
		{"error", aggregator.ListView{Kind: aggregator.Error, Message: "Could not load books: boom"}, "Could not load books: boom"},
		{"empty", aggregator.ListView{Kind: aggregator.Empty}, "No books found"},
		{"success", aggregator.ListView{Kind: aggregator.Success, Data: books(2)}, "Book B"},
		{"refreshing", aggregator.ListView{Kind: aggregator.Success, Data: books(1), Refreshing: true}, "refreshing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := send(t, newTestApp(t, &mockCmd{}), ListUpdated{View: tt.view})
			if out := app.View(); !strings.Contains(out, tt.want) {
				t.Errorf("view missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestAppFavoriteMarkerInList(t *testing.T) {
	app := withList(t, newTestApp(t, &mockCmd{}), 2)
	app, _ = send(t, app, FavoriteIDsUpdated{IDs: []string{"b"}})

	if strings.Count(app.View(), "★") != 1 {
		t.Error("exactly one row should carry the favorite marker")
	}
}

func TestAppActionFailedShowsError(t *testing.T) {
	app := newTestApp(t, &mockCmd{})
	app, _ = send(t, app, ActionFailed{Err: errors.New("disk full")})

	if !strings.Contains(app.View(), "disk full") {
		t.Error("error bar should show the failure")
	}

	app, _ = send(t, app, runes("j"))
	if strings.Contains(app.View(), "disk full") {
		t.Error("any key should dismiss the error")
	}
}

func TestAppQuit(t *testing.T) {
	app := newTestApp(t, &mockCmd{})

	_, cmd := send(t, app, runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestAppViewBeforeReady(t *testing.T) {
	app := NewApp(AppConfig{})
	if app.View() != "Loading..." {
		t.Errorf("expected Loading..., got %q", app.View())
	}
}

func TestCalcScrollOffset(t *testing.T) {
	tests := []struct {
		name                 string
		n, cursor, available int
		want                 int
	}{
		{"empty", 0, 0, 10, 0},
		{"cursor within viewport", 50, 10, 30, 0},
		{"cursor at viewport edge", 50, 29, 30, 0},
		{"cursor one past viewport", 50, 30, 30, 1},
		{"cursor past end", 5, 9, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calcScrollOffset(tt.n, tt.cursor, tt.available); got != tt.want {
				t.Errorf("calcScrollOffset(%d, %d, %d) = %d, want %d", tt.n, tt.cursor, tt.available, got, tt.want)
			}
		})
	}
}
