package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/skyward/internal/assets"
	"github.com/five82/skyward/internal/logging"
	"github.com/five82/skyward/internal/logtail"
	"github.com/five82/skyward/internal/nasa"
	"github.com/five82/skyward/internal/prefs"
	"github.com/five82/skyward/internal/query"
	"github.com/five82/skyward/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewToday View = iota
	ViewGallery
	ViewSearch
	ViewLogs
)

var viewOrder = []View{ViewToday, ViewGallery, ViewSearch, ViewLogs}

func (v View) String() string {
	switch v {
	case ViewGallery:
		return "Gallery"
	case ViewSearch:
		return "Search"
	case ViewLogs:
		return "Logs"
	default:
		return "Today"
	}
}

type inputMode int

const (
	inputNone inputMode = iota
	inputSearch
	inputFilter
)

const logFetchLimit = 500

// Options configures the UI.
type Options struct {
	Context      context.Context
	Facade       *query.Facade
	Logger       *slog.Logger
	Prefs        prefs.Prefs
	PrefsPath    string
	LogPath      string
	GalleryCount int
	DemoKey      bool
}

// subscriptions holds the store channels the model listens on. It lives
// behind a pointer so copies of Model share one set.
type subscriptions struct {
	today   <-chan state.Snapshot[nasa.Picture]
	gallery <-chan state.Snapshot[nasa.Picture]
	search  <-chan state.Snapshot[nasa.SearchItem]
	cancels []func()
}

func (s *subscriptions) close() {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx          context.Context
	facade       *query.Facade
	logger       *slog.Logger
	prefsPath    string
	prefs        prefs.Prefs
	logPath      string
	galleryCount int
	demoKey      bool
	subs         *subscriptions

	// UI state
	keys        keyMap
	theme       Theme
	currentView View

	// collectionView is the collection shown last. The log view does not
	// replace it, so visiting logs keeps the collection loaded.
	collectionView View

	width    int
	height   int
	ready    bool
	showHelp bool
	notice   string

	// Collections, as last published by their stores
	today   state.Snapshot[nasa.Picture]
	gallery state.Snapshot[nasa.Picture]
	search  state.Snapshot[nasa.SearchItem]

	// Per-view list state
	selected map[View]int
	filters  map[View]string

	// Search hit resolutions keyed by NASA id
	resolved  map[string]assets.Resolved
	resolving map[string]bool

	input     textinput.Model
	inputMode inputMode
	spinner   spinner.Model

	logViewport viewport.Model
	logEntries  []logtail.Entry
	logErr      error
}

// New creates a new Bubble Tea model and subscribes it to the facade's
// collections. Call Close when the program exits.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search NASA images"
	ti.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	subs := &subscriptions{}
	m := Model{
		ctx:          ctx,
		facade:       opts.Facade,
		logger:       logger,
		prefsPath:    prefsPath,
		prefs:        opts.Prefs,
		logPath:      opts.LogPath,
		galleryCount: opts.GalleryCount,
		demoKey:      opts.DemoKey,
		subs:         subs,
		keys:         DefaultKeyMap(),
		theme:        GetTheme(opts.Prefs.Theme),
		currentView:  ViewToday,
		selected:     make(map[View]int),
		filters:      make(map[View]string),
		resolved:     make(map[string]assets.Resolved),
		resolving:    make(map[string]bool),
		input:        ti,
		spinner:      sp,
	}

	if opts.Facade != nil {
		var cancel func()
		subs.today, cancel = opts.Facade.Today().Subscribe()
		subs.cancels = append(subs.cancels, cancel)
		subs.gallery, cancel = opts.Facade.Gallery().Subscribe()
		subs.cancels = append(subs.cancels, cancel)
		subs.search, cancel = opts.Facade.Results().Subscribe()
		subs.cancels = append(subs.cancels, cancel)
	}
	return m
}

// Close releases the store subscriptions.
func (m Model) Close() {
	if m.subs != nil {
		m.subs.close()
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		waitFor(m.subs.today, func(s state.Snapshot[nasa.Picture]) tea.Msg { return todayMsg{s} }),
		waitFor(m.subs.gallery, func(s state.Snapshot[nasa.Picture]) tea.Msg { return galleryMsg{s} }),
		waitFor(m.subs.search, func(s state.Snapshot[nasa.SearchItem]) tea.Msg { return searchMsg{s} }),
	}
	if m.facade != nil {
		cmds = append(cmds, loadTodayCmd(m.ctx, m.facade, ""))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.logViewport = viewport.New(msg.Width, m.contentHeight())
		} else {
			m.logViewport.Width = msg.Width
			m.logViewport.Height = m.contentHeight()
		}
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case todayMsg:
		m.today = msg.snap
		return m, waitFor(m.subs.today, func(s state.Snapshot[nasa.Picture]) tea.Msg { return todayMsg{s} })

	case galleryMsg:
		m.gallery = msg.snap
		return m, waitFor(m.subs.gallery, func(s state.Snapshot[nasa.Picture]) tea.Msg { return galleryMsg{s} })

	case searchMsg:
		m.search = msg.snap
		return m, waitFor(m.subs.search, func(s state.Snapshot[nasa.SearchItem]) tea.Msg { return searchMsg{s} })

	case resolvedMsg:
		// Cleared or released while the manifest was in flight.
		if !m.resolving[msg.id] {
			return m, nil
		}
		delete(m.resolving, msg.id)
		m.resolved[msg.id] = msg.result
		return m, nil

	case prefetchMsg:
		m.notice = fmt.Sprintf("%d of %d images ready", msg.available, msg.total)
		return m, m.resolveSelected(false)

	case logsMsg:
		m.logEntries = msg.entries
		m.logErr = msg.err
		m.updateLogViewport()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key closes help
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.inputMode != inputNone {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ViewToday):
		cmd := m.switchView(ViewToday)
		return m, cmd

	case key.Matches(msg, m.keys.ViewGallery):
		cmd := m.switchView(ViewGallery)
		return m, cmd

	case key.Matches(msg, m.keys.ViewSearch):
		cmd := m.switchView(ViewSearch)
		return m, cmd

	case key.Matches(msg, m.keys.ViewLogs):
		cmd := m.switchView(ViewLogs)
		return m, cmd

	case key.Matches(msg, m.keys.Search):
		m.switchView(ViewSearch)
		m.inputMode = inputSearch
		m.input.Prompt = "/ "
		m.input.Placeholder = "search NASA images"
		m.input.SetValue(m.lastQuery())
		m.input.CursorEnd()
		cmd := m.input.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Filter):
		if m.currentView != ViewGallery && m.currentView != ViewSearch {
			return m, nil
		}
		m.inputMode = inputFilter
		m.input.Prompt = "filter: "
		m.input.Placeholder = "title"
		m.input.SetValue(m.filters[m.currentView])
		m.input.CursorEnd()
		cmd := m.input.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Escape):
		delete(m.filters, m.currentView)
		m.notice = ""
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		return m, m.reload()

	case key.Matches(msg, m.keys.Clear):
		if m.facade != nil {
			m.facade.Clear()
		}
		m.selected = make(map[View]int)
		m.filters = make(map[View]string)
		m.resolved = make(map[string]assets.Resolved)
		m.resolving = make(map[string]bool)
		m.notice = "cleared"
		return m, nil

	case key.Matches(msg, m.keys.Purge):
		if m.facade == nil {
			return m, nil
		}
		if err := m.facade.PurgeAssets(); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.resolved = make(map[string]assets.Resolved)
		m.resolving = make(map[string]bool)
		m.notice = "asset cache purged"
		return m, nil

	case key.Matches(msg, m.keys.ToggleHD):
		m.prefs.PreferHD = !m.prefs.PreferHD
		m.savePrefs()
		m.notice = "HD " + onOff(m.prefs.PreferHD)
		return m, nil

	case key.Matches(msg, m.keys.Resolve):
		return m, m.resolveSelected(false)

	case key.Matches(msg, m.keys.Refresh):
		return m, m.resolveSelected(true)
	}

	if m.currentView == ViewLogs {
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd
	}
	m.handleListKey(msg)
	return m, nil
}

// handleInputKey routes keys while the search or filter prompt is open.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.inputMode == inputFilter {
			delete(m.filters, m.currentView)
		}
		m.inputMode = inputNone
		m.input.Blur()
		return m, nil

	case "enter":
		value := strings.TrimSpace(m.input.Value())
		mode := m.inputMode
		m.inputMode = inputNone
		m.input.Blur()

		if mode == inputFilter {
			m.setFilter(value)
			return m, nil
		}

		m.prefs.LastQuery = value
		m.savePrefs()
		m.selected[ViewSearch] = 0
		delete(m.filters, ViewSearch)
		m.notice = ""
		if m.facade == nil {
			return m, nil
		}
		return m, searchCmd(m.ctx, m.facade, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.inputMode == inputFilter {
		m.setFilter(strings.TrimSpace(m.input.Value()))
	}
	return m, cmd
}

func (m *Model) handleListKey(msg tea.KeyMsg) {
	n := len(m.rows(m.currentView))
	if n == 0 {
		return
	}
	page := maxInt(m.contentHeight()-2, 1)
	sel := clampInt(m.selected[m.currentView], 0, n-1)

	switch {
	case key.Matches(msg, m.keys.Down):
		sel++
	case key.Matches(msg, m.keys.Up):
		sel--
	case key.Matches(msg, m.keys.Top):
		sel = 0
	case key.Matches(msg, m.keys.Bottom):
		sel = n - 1
	case key.Matches(msg, m.keys.PageDown):
		sel += page
	case key.Matches(msg, m.keys.PageUp):
		sel -= page
	}
	m.selected[m.currentView] = clampInt(sel, 0, n-1)
}

// switchView shows v. Moving to a different collection view releases the
// collection left behind; entering an idle collection loads it.
func (m *Model) switchView(v View) tea.Cmd {
	if v != ViewLogs && v != m.collectionView {
		m.release(m.collectionView)
		m.collectionView = v
	}
	m.currentView = v

	if v == ViewLogs {
		return m.refreshLogs()
	}
	if m.facade == nil {
		return nil
	}
	switch v {
	case ViewToday:
		if m.facade.Today().Snapshot().Status == state.StatusIdle {
			return loadTodayCmd(m.ctx, m.facade, "")
		}
	case ViewGallery:
		if m.facade.Gallery().Snapshot().Status == state.StatusIdle {
			return loadGalleryCmd(m.ctx, m.facade, m.galleryCount)
		}
	}
	return nil
}

// release resets the collection behind v and the list state kept for it.
func (m *Model) release(v View) {
	delete(m.selected, v)
	delete(m.filters, v)
	if v == ViewSearch {
		m.resolved = make(map[string]assets.Resolved)
		m.resolving = make(map[string]bool)
	}
	if m.facade == nil {
		return
	}
	switch v {
	case ViewToday:
		m.facade.ClearCollection(query.KindToday)
		m.today = m.facade.Today().Snapshot()
	case ViewGallery:
		m.facade.ClearCollection(query.KindGallery)
		m.gallery = m.facade.Gallery().Snapshot()
	case ViewSearch:
		m.facade.ClearCollection(query.KindSearch)
		m.search = m.facade.Results().Snapshot()
	}
}

func (m *Model) setFilter(value string) {
	if value == "" {
		delete(m.filters, m.currentView)
	} else {
		m.filters[m.currentView] = value
	}
	m.selected[m.currentView] = 0
}

// reload re-runs the intent behind the current view.
func (m Model) reload() tea.Cmd {
	if m.currentView == ViewLogs {
		return m.refreshLogs()
	}
	if m.facade == nil {
		return nil
	}
	switch m.currentView {
	case ViewGallery:
		return loadGalleryCmd(m.ctx, m.facade, m.galleryCount)
	case ViewSearch:
		q := m.lastQuery()
		if q == "" {
			return nil
		}
		return searchCmd(m.ctx, m.facade, q)
	default:
		return loadTodayCmd(m.ctx, m.facade, "")
	}
}

// resolveSelected starts manifest resolution for the selected search hit.
// Pictures need no request and are resolved while rendering.
func (m Model) resolveSelected(refresh bool) tea.Cmd {
	if m.facade == nil || m.currentView != ViewSearch {
		return nil
	}
	r, ok := m.selectedRow()
	if !ok {
		return nil
	}
	item, ok := r.item.(nasa.SearchItem)
	if !ok || m.resolving[item.ID] {
		return nil
	}
	if _, done := m.resolved[item.ID]; done && !refresh {
		return nil
	}
	m.resolving[item.ID] = true
	return resolveCmd(m.ctx, m.facade, item, refresh)
}

func (m Model) refreshLogs() tea.Cmd {
	if m.logPath == "" {
		return nil
	}
	return logsCmd(m.logPath, logFetchLimit)
}

func (m Model) lastQuery() string {
	if m.facade != nil {
		if q := m.facade.LastQuery(); q != "" {
			return q
		}
	}
	return m.prefs.LastQuery
}

func (m Model) savePrefs() {
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save preferences failed", "path", m.prefsPath, "error", err)
	}
}

// collectionStatus reports the status and error message behind a view.
func (m Model) collectionStatus(v View) (state.Status, string) {
	switch v {
	case ViewGallery:
		return m.gallery.Status, m.gallery.ErrorMessage
	case ViewSearch:
		return m.search.Status, m.search.ErrorMessage
	case ViewLogs:
		if m.logErr != nil {
			return state.StatusFailed, "read log: " + m.logErr.Error()
		}
		return state.StatusReady, ""
	default:
		return m.today.Status, m.today.ErrorMessage
	}
}

// contentHeight is the space left under the header and command bar and
// above the footer.
func (m Model) contentHeight() int {
	return maxInt(m.height-3, 3)
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
		opts.Context = ctx
	}

	m := New(opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
