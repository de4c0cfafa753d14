package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/skyward/internal/logtail"
	"github.com/five82/skyward/internal/nasa"
	"github.com/five82/skyward/internal/query"
	"github.com/five82/skyward/internal/state"
)

// row is one list line, independent of the collection it came from.
type row struct {
	title string
	meta  string
	media string
	item  any
}

func pictureRows(pics []nasa.Picture) []row {
	rows := make([]row, len(pics))
	for i, p := range pics {
		rows[i] = row{title: p.Title, meta: p.Date, media: strings.ToLower(p.MediaType), item: p}
	}
	return rows
}

func searchRows(items []nasa.SearchItem) []row {
	rows := make([]row, len(items))
	for i, s := range items {
		meta := shortDate(s.CreatedDate)
		if created := s.ParsedCreated(); !created.IsZero() {
			meta = created.Format("2006-01-02")
		}
		rows[i] = row{title: s.Title, meta: meta, media: nasa.MediaImage, item: s}
	}
	return rows
}

// rows returns the list for v with any active filter applied. Filtering runs
// over the model's own snapshot, the same one the unfiltered list shows.
func (m Model) rows(v View) []row {
	filter := m.filters[v]
	switch v {
	case ViewToday:
		return pictureRows(m.today.Items)
	case ViewGallery:
		return pictureRows(query.FilterPictures(m.gallery.Items, filter))
	case ViewSearch:
		return searchRows(query.FilterResults(m.search.Items, filter))
	default:
		return nil
	}
}

func (m Model) selectedRow() (row, bool) {
	rows := m.rows(m.currentView)
	if len(rows) == 0 {
		return row{}, false
	}
	return rows[clampInt(m.selected[m.currentView], 0, len(rows)-1)], true
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	sep := styles.Surface.Render("  ")

	parts := []string{styles.Logo.Render("skyward")}
	for i, v := range viewOrder {
		label := fmt.Sprintf("%d %s", i+1, v)
		if v == m.currentView {
			parts = append(parts, styles.AccentText.Bold(true).Render("["+label+"]"))
		} else {
			parts = append(parts, styles.MutedText.Render(label))
		}
	}

	status, _ := m.collectionStatus(m.currentView)
	switch status {
	case state.StatusLoading:
		parts = append(parts, styles.InfoText.Render(m.spinner.View()+" loading"))
	case state.StatusFailed:
		parts = append(parts, styles.DangerText.Render("failed"))
	}

	total := len(m.today.Items) + len(m.gallery.Items) + len(m.search.Items)
	parts = append(parts, styles.FaintText.Render(fmt.Sprintf("%d items", total)))
	if m.prefs.PreferHD {
		parts = append(parts, styles.SuccessText.Render("HD"))
	}
	if m.demoKey {
		parts = append(parts, styles.WarningText.Render("DEMO_KEY"))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd
	switch m.currentView {
	case ViewLogs:
		commands = []cmd{{"j/k", "Scroll"}, {"r", "Reload"}, {"1-3", "Views"}, {"?", "More"}}
	case ViewSearch:
		commands = []cmd{{"/", "Search"}, {"f", "Filter"}, {"enter", "Resolve"}, {"R", "Re-resolve"}, {"H", "HD " + onOff(m.prefs.PreferHD)}, {"r", "Reload"}, {"c", "Clear"}, {"?", "More"}}
	case ViewGallery:
		commands = []cmd{{"f", "Filter"}, {"H", "HD " + onOff(m.prefs.PreferHD)}, {"r", "New batch"}, {"c", "Clear"}, {"j/k", "Navigate"}, {"?", "More"}}
	default:
		commands = []cmd{{"H", "HD " + onOff(m.prefs.PreferHD)}, {"r", "Reload"}, {"/", "Search"}, {"c", "Clear"}, {"?", "More"}}
	}

	segments := make([]string, 0, len(commands))
	for _, c := range commands {
		segments = append(segments,
			styles.AccentText.Render(c.key)+styles.FaintText.Render(":")+styles.MutedText.Render(c.desc))
	}
	return styles.Header.Width(m.width).Render(strings.Join(segments, styles.Surface.Render("  ")))
}

func (m Model) renderContent() string {
	height := m.contentHeight()
	if m.currentView == ViewLogs {
		return m.logViewport.View()
	}

	styles := m.theme.Styles()
	// Each pane adds two columns of border around its width.
	listW := clampInt(m.width*2/5, 24, 60)
	detailW := m.width - listW - 4
	if detailW < 20 {
		listW = maxInt(m.width-2, 10)
		return styles.FocusPane.Width(listW).Height(height - 2).Render(m.renderList(listW-2, height-2))
	}

	list := styles.FocusPane.Width(listW).Height(height - 2).Render(m.renderList(listW-2, height-2))
	detail := styles.Pane.Width(detailW).Height(height - 2).Render(m.renderDetail(detailW - 2))
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

func (m Model) renderList(width, height int) string {
	styles := m.theme.Styles()
	rows := m.rows(m.currentView)
	if len(rows) == 0 {
		return styles.MutedText.Render(m.emptyMessage())
	}

	sel := clampInt(m.selected[m.currentView], 0, len(rows)-1)
	start := 0
	if height > 0 && sel >= height {
		start = sel - height + 1
	}
	end := len(rows)
	if height > 0 && end > start+height {
		end = start + height
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		r := rows[i]
		marker := " "
		if r.media == nasa.MediaVideo {
			marker = "▶"
		}
		meta := padRight(r.meta, 10)
		titleW := maxInt(width-len(meta)-3, 4)
		line := fmt.Sprintf("%s %s %s", marker, meta, truncate(r.title, titleW))
		if i == sel {
			lines = append(lines, styles.Selected.Width(width).Render(line))
		} else {
			lines = append(lines, styles.Text.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) emptyMessage() string {
	status, msg := m.collectionStatus(m.currentView)
	switch {
	case status == state.StatusLoading:
		return m.spinner.View() + " loading"
	case status == state.StatusFailed:
		return msg
	case m.filters[m.currentView] != "":
		return "nothing matches " + fmt.Sprintf("%q", m.filters[m.currentView])
	case m.currentView == ViewSearch:
		return "press / to search the NASA image library"
	default:
		return "nothing loaded yet, press r"
	}
}

func (m Model) renderDetail(width int) string {
	styles := m.theme.Styles()
	var b strings.Builder

	if status, msg := m.collectionStatus(m.currentView); status == state.StatusFailed && msg != "" {
		b.WriteString(styles.DangerText.Render(truncate(msg, width)))
		b.WriteString("\n\n")
	}

	r, ok := m.selectedRow()
	if !ok {
		return b.String()
	}

	b.WriteString(styles.AccentText.Bold(true).Render(truncate(r.title, width)))
	b.WriteString("\n")
	b.WriteString(styles.StatusStyle(r.media).Render(r.media))
	b.WriteString(" ")
	b.WriteString(styles.MutedText.Render(r.meta))

	var body string
	switch it := r.item.(type) {
	case nasa.Picture:
		if it.Copyright != "" {
			b.WriteString(styles.FaintText.Render("  © " + strings.TrimSpace(it.Copyright)))
		}
		body = it.Explanation
	case nasa.SearchItem:
		if it.Center != "" {
			b.WriteString(styles.FaintText.Render("  " + it.Center))
		}
		if q := m.lastQuery(); q != "" && it.HasKeyword(q) {
			b.WriteString(styles.SuccessText.Render("  keyword match"))
		}
		body = it.Description
		if len(it.Keywords) > 0 {
			body += "\n\n" + strings.Join(it.Keywords, ", ")
		}
	}
	b.WriteString("\n\n")

	label, url := m.displayLine(r)
	b.WriteString(styles.WarningText.Render(label))
	if url != "" {
		b.WriteString(" ")
		b.WriteString(styles.InfoText.Render(truncateMiddle(url, maxInt(width-len(label)-1, 10))))
	}
	b.WriteString("\n\n")

	if body = strings.TrimSpace(body); body != "" {
		b.WriteString(styles.Text.Width(width).Render(body))
	}
	return b.String()
}

// displayLine describes what the selected row would be displayed with.
func (m Model) displayLine(r row) (label, url string) {
	switch it := r.item.(type) {
	case nasa.Picture:
		if query.IsVideo(it) {
			return "video", strings.TrimSpace(it.URL)
		}
		if m.facade != nil {
			url = m.facade.ResolveDisplayURL(m.ctx, it, m.prefs.PreferHD)
		}
		if url == "" {
			return "no displayable image", ""
		}
		if m.prefs.PreferHD && url == strings.TrimSpace(it.HDURL) {
			return "hd image", url
		}
		return "image", url
	case nasa.SearchItem:
		if m.resolving[it.ID] {
			return m.spinner.View() + " resolving", ""
		}
		res, ok := m.resolved[it.ID]
		if !ok {
			return "press enter to resolve", ""
		}
		if !res.Available() {
			return "no displayable image", ""
		}
		return res.Tier.String(), res.URL
	default:
		return "", ""
	}
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	if m.inputMode != inputNone {
		return m.input.View()
	}
	if _, msg := m.collectionStatus(m.currentView); msg != "" {
		return styles.DangerText.Render(truncate(msg, m.width))
	}
	if m.notice != "" {
		return styles.MutedText.Render(m.notice)
	}
	if f := m.filters[m.currentView]; f != "" {
		return styles.FaintText.Render("filter: " + f + "  (esc clears)")
	}
	return ""
}

func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	styles := m.theme.Styles()
	var b strings.Builder
	if m.logErr != nil {
		b.WriteString(styles.DangerText.Render("read log: " + m.logErr.Error()))
		b.WriteString("\n")
	}
	if len(m.logEntries) == 0 && m.logErr == nil {
		b.WriteString(styles.MutedText.Render("no log entries"))
	}
	for _, e := range m.logEntries {
		b.WriteString(m.formatLogEntry(e, styles))
		b.WriteString("\n")
	}
	m.logViewport.SetContent(b.String())
	m.logViewport.GotoBottom()
}

func (m Model) formatLogEntry(e logtail.Entry, styles Styles) string {
	if e.Message == "" && e.Level == "" {
		return styles.FaintText.Render(e.Raw)
	}
	ts := "--:--:--"
	if !e.Time.IsZero() {
		ts = e.Time.Local().Format("15:04:05")
	}
	levelStyle := styles.MutedText
	switch strings.ToUpper(e.Level) {
	case "ERROR":
		levelStyle = styles.DangerText
	case "WARN":
		levelStyle = styles.WarningText
	case "DEBUG":
		levelStyle = styles.FaintText
	}
	line := styles.FaintText.Render(ts) + " " + levelStyle.Render(padRight(e.Level, 5)) + " " + styles.Text.Render(e.Message)
	if summary := e.Summary(); summary != "" {
		line += " " + styles.FaintText.Render(summary)
	}
	return line
}
