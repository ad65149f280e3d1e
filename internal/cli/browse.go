package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/masonworks/cardgrid/internal/config"
	"github.com/masonworks/cardgrid/pkg/cache"
	"github.com/masonworks/cardgrid/pkg/card"
	"github.com/masonworks/cardgrid/pkg/content"
	"github.com/masonworks/cardgrid/pkg/errors"
	"github.com/masonworks/cardgrid/pkg/filter"
	"github.com/masonworks/cardgrid/pkg/loader"
	"github.com/masonworks/cardgrid/pkg/session"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command: an interactive terminal
// view over a blog's card trail with category tabs and load-more.
func (c *CLI) browseCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "browse [url]",
		Short: "Browse a blog's cards interactively",
		Long: `Browse opens a terminal browser over a blog's cards. Pages load
incrementally the way the in-page infinite scroll does, and category
tabs switch the visible set. Without a URL it offers recently
browsed blogs.

Examples:
  cardgrid browse https://blog.example.com
  cardgrid browse`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageURL := ""
			if len(args) == 1 {
				pageURL = args[0]
			}
			return c.runBrowse(cmd.Context(), pageURL, refresh)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached pages")

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, pageURL string, refresh bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	recents, err := session.NewRecents("")
	if err != nil {
		printWarning("Recents unavailable: %v", err)
		recents = nil
	}

	if pageURL == "" {
		pageURL, err = pickRecent(recents)
		if err != nil {
			return err
		}
		if pageURL == "" {
			return nil // user backed out of the picker
		}
	}

	httpCache, err := content.NewCache(cache.TTLPage)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "open response cache")
	}
	client := content.NewPageClient(httpCache)

	store := card.NewStore()
	ld := loader.New(client, store,
		loader.WithBaseURL(pageURL),
		loader.WithRefresh(refresh),
		loader.WithLogger(c.Logger),
	)

	spin := newSpinner(ctx, fmt.Sprintf("Loading %s...", pageURL))
	spin.Start()
	_, err = ld.Load(ctx, pageURL)
	spin.Stop()
	if err != nil {
		return err
	}
	if store.Len() == 0 {
		return errors.New(errors.ErrCodeParse, "no cards found at %s", pageURL)
	}

	if recents != nil {
		if err := recents.Touch(session.Entry{URL: pageURL}); err != nil {
			c.Logger.Debug("recents update failed", "error", err)
		}
	}

	// The content API serves category batches when configured; otherwise
	// categories filter locally over the loaded set.
	var remote filter.Source
	if cfg.Content.APIURL != "" {
		api, err := content.NewAPIClient(cfg.Content.APIURL, cfg.Content.APIKey, cache.TTLCategory)
		if err != nil {
			printWarning("Content API unavailable, filtering locally: %v", err)
		} else {
			remote = api
		}
	}

	m := newBrowseModel(ctx, pageURL, store, ld, remote, cfg, c.Logger)
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	if fm, ok := finalModel.(browseModel); ok && recents != nil {
		entry := session.Entry{URL: pageURL}
		if key := fm.flt.Active(); key != filter.AllCategory {
			entry.Category = key
		}
		_ = recents.Touch(entry)
	}
	return nil
}

// pickRecent offers the recents list and returns the chosen URL, or ""
// when the user backs out.
func pickRecent(recents *session.Recents) (string, error) {
	if recents == nil {
		return "", fmt.Errorf("no URL given and recents are unavailable (try: cardgrid browse <url>)")
	}
	entries, err := recents.List()
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("no recent blogs to offer (try: cardgrid browse <url>)")
	}

	p := tea.NewProgram(newRecentListModel(entries))
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	fm, ok := finalModel.(recentListModel)
	if !ok || fm.Selected == nil {
		printDetail("No selection made")
		return "", nil
	}
	return fm.Selected.URL, nil
}

// =============================================================================
// recentListModel - recently browsed blog selection
// =============================================================================

// recentListModel is the bubbletea model for picking a recent blog.
type recentListModel struct {
	Entries  []session.Entry
	Cursor   int
	Selected *session.Entry
}

// newRecentListModel creates a new recents list model.
func newRecentListModel(entries []session.Entry) recentListModel {
	return recentListModel{Entries: entries}
}

func (m recentListModel) Init() tea.Cmd {
	return nil
}

func (m recentListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = &m.Entries[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m recentListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Recent Blogs"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("arrows: navigate  enter: open  q: quit"))
	b.WriteString("\n\n")

	for i, e := range m.Entries {
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}

		visits := ""
		if e.Visits > 1 {
			visits = fmt.Sprintf("%d visits", e.Visits)
		}

		line := fmt.Sprintf("%s%-44s %-10s %s",
			cursor, truncate(e.URL, 42), visits, formatRelativeTime(e.LastUsed))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// =============================================================================
// browseModel - interactive card browser
// =============================================================================

// browseMsg types carry async results back into the model. Selections
// and page loads run as commands so the UI stays responsive.
type filteredMsg struct {
	key string
	err error
}

type loadedMsg struct {
	err error
}

// browseModel is the bubbletea model for the card browser.
type browseModel struct {
	ctx    context.Context
	url    string
	store  *card.Store
	loader *loader.Loader
	remote filter.Source // nil means filter locally over the loaded set
	flt    *filter.Filter
	limit  int
	logger *log.Logger

	tabs   []string // "all" plus the categories present in the loaded set
	tab    int
	cards  []card.Card
	cursor int
	offset int
	height int
	detail bool
	busy   bool
	notice string
}

// newBrowseModel creates the browser over an already-loaded store.
func newBrowseModel(ctx context.Context, pageURL string, store *card.Store, ld *loader.Loader, remote filter.Source, cfg config.Config, logger *log.Logger) browseModel {
	m := browseModel{
		ctx:    ctx,
		url:    pageURL,
		store:  store,
		loader: ld,
		remote: remote,
		limit:  cfg.Content.PerPage,
		logger: logger,
		height: 15,
	}
	m.rebuildFilter()
	m.cards = store.Cards()
	return m
}

// rebuildFilter resnapshots the store. Called at start and after each
// append, so "all" always restores the full loaded set.
func (m *browseModel) rebuildFilter() {
	src := m.remote
	if src == nil {
		src = localSource(m.store.Snapshot())
	}
	m.flt = filter.New(src, m.store, noopBoard{},
		filter.WithBatchLimit(m.limit),
		filter.WithLogger(m.logger),
	)
	m.tabs = append([]string{filter.AllCategory}, m.flt.Categories()...)
	if m.tab >= len(m.tabs) {
		m.tab = 0
	}
}

// localSource filters a snapshot by category, standing in for the
// content API when none is configured.
func localSource(snap card.Snapshot) filter.Source {
	return filter.SourceFunc(func(_ context.Context, key string, limit int) ([]card.Card, error) {
		var out []card.Card
		for _, c := range snap.Cards() {
			if content.Slugify(c.Category) != key {
				continue
			}
			out = append(out, c)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return out, nil
	})
}

// noopBoard satisfies the filter's board surface. The browser reads the
// store directly after each selection, so there is nothing to lay out.
type noopBoard struct{}

func (noopBoard) ApplyAspects(map[string]float64) {}
func (noopBoard) RequestLayout(string)            {}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.cards)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "tab", "right":
			return m.selectTab(m.tab + 1)
		case "shift+tab", "left":
			return m.selectTab(m.tab - 1)
		case "m":
			if m.busy {
				break
			}
			if m.tabs[m.tab] != filter.AllCategory {
				m.notice = "switch to all before loading more"
				break
			}
			if !m.loader.More() {
				m.notice = "end of trail"
				break
			}
			m.busy = true
			m.notice = "loading more..."
			return m, m.loadMoreCmd()
		case "enter":
			if len(m.cards) > 0 {
				m.detail = !m.detail
			}
		}

	case filteredMsg:
		m.busy = false
		m.cards = m.store.Cards()
		m.cursor, m.offset = 0, 0
		m.detail = false
		switch {
		case msg.err != nil:
			m.notice = errors.UserMessage(msg.err)
		default:
			m.notice = m.flt.Notice().Message(msg.key)
		}

	case loadedMsg:
		m.busy = false
		if msg.err != nil {
			m.notice = errors.UserMessage(msg.err)
			break
		}
		m.rebuildFilter()
		m.cards = m.store.Cards()
		m.notice = ""

	case tea.WindowSizeMsg:
		m.height = msg.Height - 9
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

// selectTab switches to the tab at index i, wrapping around, and kicks
// off the category selection.
func (m browseModel) selectTab(i int) (tea.Model, tea.Cmd) {
	if m.busy || len(m.tabs) < 2 {
		return m, nil
	}
	m.tab = ((i % len(m.tabs)) + len(m.tabs)) % len(m.tabs)
	key := m.tabs[m.tab]
	m.busy = true
	m.notice = fmt.Sprintf("loading %s...", key)

	flt, ctx := m.flt, m.ctx
	return m, func() tea.Msg {
		return filteredMsg{key: key, err: flt.Select(ctx, key)}
	}
}

func (m browseModel) loadMoreCmd() tea.Cmd {
	ld, ctx := m.loader, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: ld.LoadMore(ctx)}
	}
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.url))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab category  m more  enter details  q quit"))
	b.WriteString("\n\n")

	b.WriteString(m.tabLine())
	b.WriteString("\n\n")

	if len(m.cards) == 0 {
		b.WriteString(listDimStyle.Render("  (no posts here)"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.rows())
	}

	if m.detail && m.cursor < len(m.cards) {
		b.WriteString(m.detailView(m.cards[m.cursor]))
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

// tabLine renders the category tabs with the active one highlighted.
func (m browseModel) tabLine() string {
	parts := make([]string, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.tab {
			parts[i] = listSelectedStyle.Render("[" + tab + "]")
		} else {
			parts[i] = listDimStyle.Render(" " + tab + " ")
		}
	}
	return "  " + strings.Join(parts, " ")
}

// rows renders the visible window of card lines.
func (m browseModel) rows() string {
	var b strings.Builder

	end := m.offset + m.height
	if end > len(m.cards) {
		end = len(m.cards)
	}

	for i := m.offset; i < end; i++ {
		c := m.cards[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		published := ""
		if !c.PublishedAt.IsZero() {
			published = formatRelativeTime(c.PublishedAt)
		}

		line := fmt.Sprintf("%s%-46s %-14s %-18s %s",
			cursor, truncate(c.Title, 44), truncate(c.Category, 12), truncate(c.AuthorName, 16), published)

		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// detailView renders the expanded block for the selected card.
func (m browseModel) detailView(c card.Card) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("  " + strings.Repeat("-", 60)))
	b.WriteString("\n")
	if c.Excerpt != "" {
		b.WriteString("  ")
		b.WriteString(lipgloss.NewStyle().Width(72).Render(c.Excerpt))
		b.WriteString("\n")
	}
	if c.URL != "" {
		b.WriteString("  ")
		b.WriteString(StyleLink.Render(c.URL))
		b.WriteString("\n")
	}
	meta := c.AuthorName
	if !c.PublishedAt.IsZero() {
		if meta != "" {
			meta += ", "
		}
		meta += c.PublishedAt.Format("Jan 2, 2006")
	}
	if meta != "" {
		b.WriteString(listDimStyle.Render("  " + meta))
		b.WriteString("\n")
	}
	return b.String()
}

// statusLine renders position, trail progress, and any notice.
func (m browseModel) statusLine() string {
	cur := m.loader.Cursor()

	pos := "  [0/0]"
	if len(m.cards) > 0 {
		pos = fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.cards))
	}

	parts := []string{pos}
	if cur.Pages > 0 {
		parts = append(parts, fmt.Sprintf("page %d/%d", cur.Page, cur.Pages))
	}
	if m.loader.More() && m.tabs[m.tab] == filter.AllCategory {
		parts = append(parts, "m for more")
	}
	line := listDimStyle.Render(strings.Join(parts, " · "))

	if m.notice != "" {
		line += "\n" + StyleWarning.Render("  "+m.notice)
	}
	return line
}
