package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/booklegend/internal/aggregator"
	"github.com/abelbrown/booklegend/internal/catalog"
)

// Screen identifies which view is on display.
type Screen int

const (
	ScreenList Screen = iota
	ScreenDetail
	ScreenFavorites
)

// AppConfig wires the App to the aggregator. Results of the returned Cmds
// arrive later as messages.
type AppConfig struct {
	LoadFirstPage  func(query string) tea.Cmd
	LoadNextPage   func() tea.Cmd
	Refresh        func() tea.Cmd
	SetQuery       func(text string) tea.Cmd
	LoadDetail     func(id string) tea.Cmd
	ToggleFavorite func(id string) tea.Cmd
	ToggleTheme    func() tea.Cmd

	DarkMode bool // initial theme, before the first ThemeChanged
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold the aggregator. It receives state via messages.
type App struct {
	cfg  AppConfig
	keys keyMap

	screen     Screen
	prevScreen Screen

	list      aggregator.ListView
	detail    aggregator.DetailView
	favorites aggregator.ListView
	favIDs    map[string]bool
	detailID  string

	cursor    int
	favCursor int

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	theme    Theme

	err    error
	width  int
	height int
	ready  bool
}

// NewApp creates a new App with the given command functions.
func NewApp(cfg AppConfig) App {
	ti := textinput.New()
	ti.Placeholder = "Search books"
	ti.CharLimit = 200
	ti.Prompt = ""

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	a := App{
		cfg:      cfg,
		keys:     defaultKeys(),
		favIDs:   map[string]bool{},
		input:    ti,
		spinner:  sp,
		viewport: viewport.New(0, 0),
	}
	a.setTheme(cfg.DarkMode)
	return a
}

// Init loads the first page and starts the spinner.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick}
	if a.cfg.LoadFirstPage != nil {
		cmds = append(cmds, a.cfg.LoadFirstPage(""))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.input.Width = msg.Width - 4
		a.resizeViewport()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case ListUpdated:
		a.list = msg.View
		a.cursor = clampCursor(a.cursor, len(a.list.Data))
		return a, nil

	case FavoritesUpdated:
		a.favorites = msg.View
		a.favCursor = clampCursor(a.favCursor, len(a.favorites.Data))
		return a, nil

	case DetailUpdated:
		a.detail = msg.View
		a.setDetailContent()
		return a, nil

	case FavoriteIDsUpdated:
		a.favIDs = make(map[string]bool, len(msg.IDs))
		for _, id := range msg.IDs {
			a.favIDs[id] = true
		}
		return a, nil

	case ThemeChanged:
		a.setTheme(msg.Dark)
		a.setDetailContent()
		return a, nil

	case ActionFailed:
		a.err = msg.Err
		return a, nil
	}

	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	if a.input.Focused() {
		return a.handleSearchKey(msg)
	}

	// Clear any existing error on key press
	if a.err != nil {
		a.err = nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Theme):
		return a, call(a.cfg.ToggleTheme)
	}

	switch a.screen {
	case ScreenDetail:
		return a.handleDetailKey(msg)
	case ScreenFavorites:
		return a.handleFavoritesKey(msg)
	default:
		return a.handleListKey(msg)
	}
}

func (a App) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	books := a.list.Data
	if a.list.Kind != aggregator.Success {
		books = nil
	}

	switch {
	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(books)-1 {
			a.cursor++
		}
		return a, a.maybeLoadNext()

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case key.Matches(msg, a.keys.Top):
		a.cursor = 0
		return a, nil

	case key.Matches(msg, a.keys.Bottom):
		if len(books) > 0 {
			a.cursor = len(books) - 1
		}
		return a, a.maybeLoadNext()

	case key.Matches(msg, a.keys.Open):
		if a.cursor < len(books) {
			return a.openDetail(books[a.cursor].ID)
		}
		return a, nil

	case key.Matches(msg, a.keys.Search):
		cmd := a.input.Focus()
		return a, cmd

	case key.Matches(msg, a.keys.Retry):
		if a.list.Kind == aggregator.Error && a.cfg.LoadFirstPage != nil {
			return a, a.cfg.LoadFirstPage(a.input.Value())
		}
		return a, nil

	case key.Matches(msg, a.keys.Refresh):
		if a.list.Kind == aggregator.Success && !a.list.Refreshing {
			return a, call(a.cfg.Refresh)
		}
		return a, nil

	case key.Matches(msg, a.keys.Favorites):
		a.screen = ScreenFavorites
		return a, nil
	}

	return a, nil
}

func (a App) handleFavoritesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	books := a.favorites.Data
	if a.favorites.Kind != aggregator.Success {
		books = nil
	}

	switch {
	case key.Matches(msg, a.keys.Down):
		if a.favCursor < len(books)-1 {
			a.favCursor++
		}
	case key.Matches(msg, a.keys.Up):
		if a.favCursor > 0 {
			a.favCursor--
		}
	case key.Matches(msg, a.keys.Open):
		if a.favCursor < len(books) {
			return a.openDetail(books[a.favCursor].ID)
		}
	case key.Matches(msg, a.keys.Back), key.Matches(msg, a.keys.Favorites):
		a.screen = ScreenList
	}
	return a, nil
}

func (a App) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back):
		a.screen = a.prevScreen
		return a, nil

	case key.Matches(msg, a.keys.Favorite):
		if a.detail.Kind == aggregator.Success && a.cfg.ToggleFavorite != nil {
			return a, a.cfg.ToggleFavorite(a.detailID)
		}
		return a, nil

	case key.Matches(msg, a.keys.Retry):
		if a.detail.Kind == aggregator.Error && a.cfg.LoadDetail != nil {
			return a, a.cfg.LoadDetail(a.detailID)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

// handleSearchKey routes input to the search box while it has focus.
func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		a.input.Blur()
		return a, nil
	}

	before := a.input.Value()
	if key.Matches(msg, a.keys.Clear) {
		// Clearing returns to the category listing.
		a.input.SetValue("")
		if before != "" && a.cfg.SetQuery != nil {
			a.cursor = 0
			return a, a.cfg.SetQuery("")
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if after := a.input.Value(); after != before && a.cfg.SetQuery != nil {
		a.cursor = 0
		return a, tea.Batch(cmd, a.cfg.SetQuery(after))
	}
	return a, cmd
}

func (a App) openDetail(id string) (tea.Model, tea.Cmd) {
	a.prevScreen = a.screen
	a.screen = ScreenDetail
	a.detailID = id
	a.detail = aggregator.DetailView{Kind: aggregator.Loading}
	a.viewport.GotoTop()
	if a.cfg.LoadDetail != nil {
		return a, a.cfg.LoadDetail(id)
	}
	return a, nil
}

// maybeLoadNext requests the next page once the cursor sits on the last row.
func (a App) maybeLoadNext() tea.Cmd {
	if a.list.Kind != aggregator.Success || a.list.Refreshing {
		return nil
	}
	if n := len(a.list.Data); n > 0 && a.cursor == n-1 {
		return call(a.cfg.LoadNextPage)
	}
	return nil
}

func (a *App) setTheme(dark bool) {
	a.theme = NewTheme(dark)
	a.spinner.Style = a.theme.Spinner
	a.input.PromptStyle = a.theme.SearchPrompt
	a.input.TextStyle = a.theme.SearchBar
}

func (a *App) resizeViewport() {
	// Header, title block (3 lines), status bar.
	h := a.height - 5
	if h < 1 {
		h = 1
	}
	a.viewport.Width = a.width
	a.viewport.Height = h
	a.setDetailContent()
}

func (a *App) setDetailContent() {
	if a.detail.Kind != aggregator.Success {
		a.viewport.SetContent("")
		return
	}
	body := a.theme.NormalItem.Width(max(a.width-2, 10)).Render(a.detail.Data.Description)
	a.viewport.SetContent(body)
}

func call(fn func() tea.Cmd) tea.Cmd {
	if fn == nil {
		return nil
	}
	return fn()
}

func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

// Screen returns the screen on display (for testing).
func (a App) Screen() Screen {
	return a.screen
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Books returns the books shown on the list screen (for testing).
func (a App) Books() []catalog.BookSummary {
	return a.list.Data
}

// DarkMode reports the active theme (for testing).
func (a App) DarkMode() bool {
	return a.theme.Dark
}

// Searching reports whether the search box has focus (for testing).
func (a App) Searching() bool {
	return a.input.Focused()
}
