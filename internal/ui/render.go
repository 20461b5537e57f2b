package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/booklegend/internal/aggregator"
	"github.com/abelbrown/booklegend/internal/catalog"
)

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	header := a.renderHeader()
	statusBar := a.renderStatusBar()

	errorBar := ""
	if a.err != nil {
		errorBar = a.theme.ErrorStyle.Width(a.width).Render("Error: " + a.err.Error() + " (press any key to dismiss)")
	}

	// Header, status bar and the optional error bar.
	contentHeight := a.height - 2
	if errorBar != "" {
		contentHeight--
	}

	var body string
	switch a.screen {
	case ScreenDetail:
		body = a.renderDetail()
	case ScreenFavorites:
		body = a.renderBookList(a.favorites, a.favCursor, contentHeight, "No favorites yet. Press Space on a book to add it.")
	default:
		searchBar := a.renderSearchBar()
		contentHeight--
		body = searchBar + "\n" + a.renderBookList(a.list, a.cursor, contentHeight, "No books found.")
	}

	body = lipgloss.NewStyle().Height(max(contentHeight, 1)).Render(body)

	parts := []string{header, body}
	if errorBar != "" {
		parts = append(parts, errorBar)
	}
	parts = append(parts, statusBar)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a App) renderHeader() string {
	title := "BookLegend"
	switch a.screen {
	case ScreenDetail:
		title += " · Details"
	case ScreenFavorites:
		title += " · Favorites"
	default:
		if q := strings.TrimSpace(a.input.Value()); q != "" {
			title += fmt.Sprintf(" · Search %q", q)
		} else {
			title += " · Fiction"
		}
	}
	if a.screen == ScreenList && a.list.Kind == aggregator.Success && a.list.Refreshing {
		title += "  " + a.spinner.View() + " refreshing"
	}
	return a.theme.Header.Render(title)
}

func (a App) renderSearchBar() string {
	prompt := a.theme.SearchPrompt.Render("/")
	return a.theme.SearchBar.Width(a.width).Render(prompt + " " + a.input.View())
}

// renderBookList renders one of the list-shaped screens for any View kind.
func (a App) renderBookList(v aggregator.ListView, cursor, height int, emptyText string) string {
	switch v.Kind {
	case aggregator.Loading:
		return a.theme.HelpStyle.Render(a.spinner.View() + " Loading books...")
	case aggregator.Error:
		return a.theme.ErrorStyle.Render(v.Message) + "\n" + a.theme.HelpStyle.Render("Press 'r' to retry.")
	case aggregator.Empty:
		return a.theme.HelpStyle.Render(emptyText)
	}

	if len(v.Data) == 0 {
		return a.theme.HelpStyle.Render(emptyText)
	}

	availableHeight := max(height, 1)
	offset := calcScrollOffset(len(v.Data), cursor, availableHeight)

	var b strings.Builder
	for i := offset; i < len(v.Data) && i-offset < availableHeight; i++ {
		if i > offset {
			b.WriteString("\n")
		}
		b.WriteString(a.renderBookLine(v.Data[i], i == cursor))
	}
	return b.String()
}

// calcScrollOffset returns the first row to draw so the cursor stays visible.
func calcScrollOffset(n, cursor, availableHeight int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		cursor = n - 1
	}
	if cursor >= availableHeight {
		return cursor - availableHeight + 1
	}
	return 0
}

func (a App) renderBookLine(book catalog.BookSummary, selected bool) string {
	mark := "  "
	if a.favIDs[book.ID] {
		mark = a.theme.FavoriteMark.Render("★ ")
	}

	meta := book.AuthorName
	if book.Year != "" {
		meta += ", " + book.Year
	}
	metaWidth := utf8.RuneCountInString(meta) + 3

	titleWidth := a.width - metaWidth - 6
	if titleWidth < 20 {
		titleWidth = 20
	}
	title := truncate(book.Title, titleWidth)

	style := a.theme.NormalItem
	if selected {
		style = a.theme.SelectedItem
	}
	return mark + style.Render(title) + " " + a.theme.MetaItem.Render(meta)
}

func (a App) renderDetail() string {
	switch a.detail.Kind {
	case aggregator.Loading:
		return a.theme.HelpStyle.Render(a.spinner.View() + " Loading details...")
	case aggregator.Error:
		return a.theme.ErrorStyle.Render(a.detail.Message) + "\n" + a.theme.HelpStyle.Render("Press 'r' to retry, Esc to go back.")
	case aggregator.Empty:
		return a.theme.HelpStyle.Render(catalog.NoData)
	}

	d := a.detail.Data
	fav := "☆ not a favorite"
	if a.favIDs[a.detailID] {
		fav = a.theme.FavoriteMark.Render("★ favorite")
	}

	meta := []string{d.AuthorName, d.Year}
	if d.Pages != "" && d.Pages != catalog.NoData {
		meta = append(meta, d.Pages+" pages")
	}

	lines := []string{
		a.theme.DetailTitle.Render(d.Title),
		a.theme.DetailMeta.Render(strings.Join(nonEmpty(meta), " · ") + "   " + fav),
	}
	if d.CoverURL != "" {
		lines = append(lines, a.theme.DetailMeta.Render("Cover: "+d.CoverURL))
	} else {
		lines = append(lines, "")
	}
	lines = append(lines, a.viewport.View())
	return strings.Join(lines, "\n")
}

func (a App) renderStatusBar() string {
	var left string
	var bindings []key.Binding

	switch a.screen {
	case ScreenDetail:
		left = " Details "
		bindings = []key.Binding{a.keys.Down, a.keys.Favorite, a.keys.Back, a.keys.Theme, a.keys.Quit}
	case ScreenFavorites:
		left = position(a.favorites, a.favCursor)
		bindings = []key.Binding{a.keys.Down, a.keys.Open, a.keys.Back, a.keys.Theme, a.keys.Quit}
	default:
		left = position(a.list, a.cursor)
		bindings = []key.Binding{a.keys.Down, a.keys.Open, a.keys.Search, a.keys.Refresh, a.keys.Favorites, a.keys.Theme, a.keys.Quit}
		if a.input.Focused() {
			bindings = []key.Binding{a.keys.Clear, a.keys.Back}
		}
		if a.list.Kind == aggregator.Error {
			bindings = append([]key.Binding{a.keys.Retry}, bindings...)
		}
	}

	keys := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		keys = append(keys, a.theme.StatusBarKey.Render(h.Key)+a.theme.StatusBarText.Render(":"+h.Desc))
	}
	keyHints := strings.Join(keys, " ")

	padding := a.width - lipgloss.Width(left) - lipgloss.Width(keyHints) - 2
	if padding < 0 {
		padding = 0
	}

	bar := left + strings.Repeat(" ", padding) + keyHints
	return a.theme.StatusBar.Width(a.width).Render(bar)
}

func position(v aggregator.ListView, cursor int) string {
	switch v.Kind {
	case aggregator.Loading:
		return " Loading... "
	case aggregator.Success:
		if len(v.Data) > 0 {
			return fmt.Sprintf(" %d/%d ", cursor+1, len(v.Data))
		}
	}
	return " 0/0 "
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

func nonEmpty(ss []string) []string {
	out := ss[:0:0]
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
