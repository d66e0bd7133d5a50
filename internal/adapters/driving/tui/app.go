// Package tui implements the interactive search view: a query input above a
// ranked list of note passages, following the Elm architecture.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/noteseek/internal/core/domain"
)

// searchCompleted carries results back into the update loop.
type searchCompleted struct {
	results []domain.SearchResult
}

// searchFailed carries a search error back into the update loop.
type searchFailed struct {
	err error
}

// styles holds the lipgloss styles for the search view.
type appStyles struct {
	title    lipgloss.Style
	location lipgloss.Style
	snippet  lipgloss.Style
	distance lipgloss.Style
	selected lipgloss.Style
	errText  lipgloss.Style
	help     lipgloss.Style
}

func defaultStyles() appStyles {
	return appStyles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		location: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		snippet:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		distance: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		errText:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// App is the TUI application. It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles appStyles

	input textinput.Model

	results   []domain.SearchResult
	selected  int
	searching bool
	err       error

	// selection is the result accepted with enter, printed after exit.
	selection *domain.SearchResult

	width  int
	height int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	input := textinput.New()
	input.Placeholder = "Search your notes..."
	input.Focus()
	input.CharLimit = 256

	return &App{
		ports:  ports,
		ctx:    context.Background(),
		styles: defaultStyles(),
		input:  input,
		width:  80,
		height: 24,
	}, nil
}

// WithContext sets the context used for searches.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Selection returns the result accepted with enter, or nil if the user quit
// without selecting.
func (a *App) Selection() *domain.SearchResult {
	return a.selection
}

// Init initialises the app.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case searchCompleted:
		a.searching = false
		a.err = nil
		a.results = msg.results
		a.selected = 0
		return a, nil

	case searchFailed:
		a.searching = false
		a.err = msg.err
		a.results = nil
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// handleKey routes key presses between the input and the result list.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return a, tea.Quit

	case tea.KeyEnter:
		if a.input.Focused() {
			return a, a.search(a.input.Value())
		}
		if len(a.results) > 0 {
			result := a.results[a.selected]
			a.selection = &result
			return a, tea.Quit
		}
		return a, nil

	case tea.KeyTab:
		// Toggle focus between input and results
		if a.input.Focused() {
			a.input.Blur()
		} else {
			a.input.Focus()
		}
		return a, nil

	case tea.KeyUp:
		if !a.input.Focused() && a.selected > 0 {
			a.selected--
		}
		return a, nil

	case tea.KeyDown:
		if !a.input.Focused() && a.selected < len(a.results)-1 {
			a.selected++
		}
		return a, nil
	}

	if !a.input.Focused() {
		switch msg.String() {
		case "k":
			if a.selected > 0 {
				a.selected--
			}
			return a, nil
		case "j":
			if a.selected < len(a.results)-1 {
				a.selected++
			}
			return a, nil
		case "q":
			return a, tea.Quit
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// search returns a command running the query against the search service.
func (a *App) search(query string) tea.Cmd {
	a.searching = true
	a.input.Blur()
	return func() tea.Msg {
		results, err := a.ports.Search.Search(a.ctx, query, domain.SearchOptions{})
		if err != nil {
			return searchFailed{err: err}
		}
		return searchCompleted{results: results}
	}
}

// View renders the app.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.title.Render("noteseek"))
	b.WriteString("\n\n")
	b.WriteString(a.input.View())
	b.WriteString("\n\n")

	switch {
	case a.err != nil:
		b.WriteString(a.styles.errText.Render("Error: " + a.err.Error()))
		b.WriteString("\n")
	case a.searching:
		b.WriteString(a.styles.snippet.Render("Searching..."))
		b.WriteString("\n")
	case len(a.results) == 0:
		b.WriteString(a.styles.snippet.Render("No results yet."))
		b.WriteString("\n")
	default:
		b.WriteString(a.renderResults())
	}

	b.WriteString("\n")
	b.WriteString(a.styles.help.Render("enter search/select · tab switch focus · ↑/↓ navigate · esc quit"))
	return b.String()
}

// renderResults renders the ranked result list.
func (a *App) renderResults() string {
	var b strings.Builder
	for i, r := range a.results {
		location := fmt.Sprintf("%s:%d", r.NoteID, r.StartOffset)
		line := fmt.Sprintf("%s  %s", a.styles.location.Render(location),
			a.styles.distance.Render(fmt.Sprintf("(%.3f)", r.Distance)))

		marker := "  "
		if i == a.selected && !a.input.Focused() {
			marker = a.styles.selected.Render("> ")
			line = a.styles.selected.Render(location) + "  " +
				a.styles.distance.Render(fmt.Sprintf("(%.3f)", r.Distance))
		}

		b.WriteString(marker)
		b.WriteString(line)
		b.WriteString("\n")
		b.WriteString("    ")
		b.WriteString(a.styles.snippet.Render(snippet(r.Content, a.width-6)))
		b.WriteString("\n")
	}
	return b.String()
}

// snippet collapses whitespace and truncates content to fit one line.
func snippet(content string, width int) string {
	flat := strings.Join(strings.Fields(content), " ")
	if width < 10 {
		width = 10
	}
	if len(flat) <= width {
		return flat
	}
	return flat[:width-3] + "..."
}
