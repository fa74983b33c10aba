package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/dirsearch"
	logpkg "github.com/kailas-cloud/dirsearch/internal/logger"
)

func tuiCommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Interactive search with autosuggest",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file; logging is off by default while the UI owns the terminal",
			},
		},
		Action: runTUI,
	}
}

func runTUI(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	var client *dirsearch.Client
	if path := c.String("log-file"); path != "" {
		logger, err := newLogger(c, cfg, logpkg.Options{OutputPath: path})
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		client, err = newClient(cfg, logger, nil)
		if err != nil {
			return err
		}
	} else {
		client, err = newClient(cfg, nil, nil)
		if err != nil {
			return err
		}
	}
	defer client.Close()

	m := newTUIModel(c.Context, client)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Dropdown changes arrive on timer goroutines. Only the newest snapshot
	// matters, so the controller overwrites a one-slot mailbox and never blocks.
	latest := newSnapshotBox()
	done := make(chan struct{})
	defer close(done)
	unsubscribe := client.Autosuggest().Subscribe(latest.put)
	defer unsubscribe()

	go func() {
		for {
			select {
			case <-latest.ready:
				p.Send(dropdownMsg(latest.take()))
			case <-done:
				return
			}
		}
	}()

	_, err = p.Run()
	return err
}

type (
	dropdownMsg dirsearch.Dropdown
	sessionMsg  dirsearch.SessionState
)

// commitMsg is the outcome of Enter. query is the controller's query after the
// commit and typed is what the input held when Enter was pressed.
type commitMsg struct {
	state dirsearch.SessionState
	typed string
	query string
}

// snapshotBox holds the newest dropdown snapshot not yet forwarded.
type snapshotBox struct {
	mu    sync.Mutex
	v     dirsearch.Dropdown
	ready chan struct{}
}

func newSnapshotBox() *snapshotBox {
	return &snapshotBox{ready: make(chan struct{}, 1)}
}

func (b *snapshotBox) put(v dirsearch.Dropdown) {
	b.mu.Lock()
	b.v = v
	b.mu.Unlock()
	select {
	case b.ready <- struct{}{}:
	default:
	}
}

func (b *snapshotBox) take() dirsearch.Dropdown {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.v
}

type tuiStyles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	item      lipgloss.Style
	highlight lipgloss.Style
	dim       lipgloss.Style
	company   lipgloss.Style
	status    lipgloss.Style
	errorLine lipgloss.Style
	filter    lipgloss.Style
}

func newTUIStyles() tuiStyles {
	return tuiStyles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).MarginBottom(1),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true),
		item:      lipgloss.NewStyle().PaddingLeft(2),
		highlight: lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("226")).Background(lipgloss.Color("238")),
		dim:       lipgloss.NewStyle().Faint(true),
		company:   lipgloss.NewStyle().Bold(true),
		status:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1),
		errorLine: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		filter:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

// tuiModel renders a Session and its Autosuggest dropdown.
type tuiModel struct {
	ctx      context.Context
	client   *dirsearch.Client
	input    textinput.Model
	dropdown dirsearch.Dropdown
	state    dirsearch.SessionState
	styles   tuiStyles
}

func newTUIModel(ctx context.Context, client *dirsearch.Client) tuiModel {
	ti := textinput.New()
	ti.Placeholder = "Search companies, industries, locations..."
	ti.Prompt = "› "
	ti.Focus()

	client.Autosuggest().OnFocus()
	return tuiModel{
		ctx:      ctx,
		client:   client,
		input:    ti,
		dropdown: client.Autosuggest().View(),
		state:    client.Session().State(),
		styles:   newTUIStyles(),
	}
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.checkHealth())
}

// navigationKeys are forwarded to the dropdown controller.
var navigationKeys = map[string]dirsearch.Key{
	"up":    dirsearch.KeyArrowUp,
	"down":  dirsearch.KeyArrowDown,
	"enter": dirsearch.KeyEnter,
	"esc":   dirsearch.KeyEscape,
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case dropdownMsg:
		// Snapshots may trail keystrokes; the input stays authoritative.
		m.dropdown = dirsearch.Dropdown(msg)
		return m, nil

	case commitMsg:
		m.state = msg.state
		if msg.query != msg.typed && m.input.Value() == msg.typed {
			m.input.SetValue(msg.query)
			m.input.CursorEnd()
		}
		return m, nil

	case sessionMsg:
		m.state = dirsearch.SessionState(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	suggest := m.client.Autosuggest()
	session := m.client.Session()

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		// Enter may commit and search; keep network I/O off the update loop.
		ctx, typed := m.ctx, m.input.Value()
		return m, func() tea.Msg {
			suggest.OnKeyDown(ctx, dirsearch.KeyEnter)
			return commitMsg{state: session.State(), typed: typed, query: suggest.View().Query}
		}
	case "pgdown":
		if m.state.Page >= m.state.TotalPages {
			return m, nil
		}
		page := m.state.Page + 1
		return m, m.sessionCmd(func(ctx context.Context) dirsearch.SessionState {
			st, _ := session.SetPage(ctx, page)
			return st
		})
	case "pgup":
		if m.state.Page <= 1 {
			return m, nil
		}
		page := m.state.Page - 1
		return m, m.sessionCmd(func(ctx context.Context) dirsearch.SessionState {
			st, _ := session.SetPage(ctx, page)
			return st
		})
	case "ctrl+o":
		order := dirsearch.Desc
		if m.state.SortOrder == dirsearch.Desc {
			order = dirsearch.Asc
		}
		sortBy := m.state.SortBy
		return m, m.sessionCmd(func(ctx context.Context) dirsearch.SessionState {
			return session.SetSort(ctx, sortBy, order)
		})
	case "ctrl+s":
		sortBy := nextSortKey(m.state.SortBy)
		order := m.state.SortOrder
		return m, m.sessionCmd(func(ctx context.Context) dirsearch.SessionState {
			return session.SetSort(ctx, sortBy, order)
		})
	case "ctrl+r":
		return m, m.sessionCmd(session.Retry)
	case "ctrl+x":
		m.input.SetValue("")
		suggest.OnInputChange("")
		m.state = session.ClearFilters()
		return m, nil
	}

	if key, ok := navigationKeys[msg.String()]; ok {
		suggest.OnKeyDown(m.ctx, key)
		m.dropdown = suggest.View()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		suggest.OnInputChange(m.input.Value())
		m.dropdown = suggest.View()
	}
	return m, cmd
}

func (m tuiModel) sessionCmd(fn func(context.Context) dirsearch.SessionState) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return sessionMsg(fn(ctx))
	}
}

func (m tuiModel) checkHealth() tea.Cmd {
	return m.sessionCmd(m.client.Session().CheckHealth)
}

var sortKeys = []string{
	dirsearch.SortFoundingYear,
	dirsearch.SortIndustry,
	dirsearch.SortSize,
	dirsearch.SortLocation,
}

func nextSortKey(current string) string {
	for i, k := range sortKeys {
		if k == current {
			return sortKeys[(i+1)%len(sortKeys)]
		}
	}
	return sortKeys[0]
}

func (m tuiModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Company Directory"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.dropdown.Visible {
		b.WriteString(m.renderDropdown())
	} else if m.dropdown.Loading {
		b.WriteString(m.styles.dim.Render("  searching..."))
		b.WriteString("\n")
	}

	if f := m.renderFilters(); f != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.filter.Render(f))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderResults())
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m tuiModel) renderDropdown() string {
	var b strings.Builder
	for _, g := range m.dropdown.Groups {
		if m.dropdown.ShowGroupHeaders && g.Label != "" {
			b.WriteString(m.styles.header.Render(g.Label))
			b.WriteString("\n")
		}
		for _, e := range g.Entries {
			line := e.Text
			if e.Category != "" {
				line += m.styles.dim.Render("  " + e.Category)
			}
			if e.Index == m.dropdown.Highlighted {
				b.WriteString(m.styles.highlight.Render(line))
			} else {
				b.WriteString(m.styles.item.Render(line))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m tuiModel) renderFilters() string {
	f := m.state.Filters
	var parts []string
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, label+": "+value)
		}
	}
	add("term", f.SearchTerm)
	add("industry", f.Industry)
	add("location", f.Location)
	add("size", f.CompanySize)
	add("founded since", f.FoundingYear)
	if len(f.Tags) > 0 {
		add("tags", strings.Join(f.Tags, ", "))
	}
	return strings.Join(parts, " · ")
}

func (m tuiModel) renderResults() string {
	if !m.state.Searched {
		return m.styles.dim.Render("Type to search, then press Enter.") + "\n"
	}
	if len(m.state.Result.Companies) == 0 {
		return m.styles.dim.Render("No companies found.") + "\n"
	}
	var b strings.Builder
	for _, c := range m.state.Result.Companies {
		b.WriteString(m.styles.company.Render(c.Name))
		b.WriteString(m.styles.dim.Render(fmt.Sprintf("  %s · %s · founded %d · %s employees",
			c.Industry, c.Location, c.FoundingYear, c.Employees)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m tuiModel) renderStatus() string {
	st := m.state
	if st.Err != "" {
		return m.styles.errorLine.Render(st.Err+"  (ctrl+r to retry)") + "\n"
	}
	health := "backend ok"
	if !st.Healthy {
		health = "backend unreachable"
	}
	line := fmt.Sprintf("page %d/%d · %d companies · sort %s %s · %s",
		st.Page, max(st.TotalPages, 1), st.Result.TotalCount, st.SortBy, st.SortOrder, health)
	if st.Loading {
		line += " · loading"
	}
	help := "↑/↓ select · enter search · esc close · pgup/pgdn page · ctrl+s sort · ctrl+o order · ctrl+x clear · ctrl+c quit"
	return m.styles.status.Render(line) + "\n" + m.styles.dim.Render(help) + "\n"
}
