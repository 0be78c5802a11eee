// Package tui is the interactive feedback report: filter by source and
// analysis tag, page through results, select rows and turn the selection
// into a reviewed insight.
//
// The model is driven by the bubbletea event loop and is not safe for use
// from other goroutines.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/report"
)

// DebounceDelay is how long the tag filter waits after the last keystroke
// before querying.
const DebounceDelay = 500 * time.Millisecond

// Loader is the data the report needs. *client.Client satisfies it.
type Loader interface {
	Report(ctx context.Context, q report.Query) (report.Page[domain.Feedback], error)
	DraftFromSelection(ctx context.Context, feedbackIDs []string) (*domain.InsightDraft, error)
	SaveInsight(ctx context.Context, d domain.InsightDraft) (*domain.Insight, error)
}

type mode int

const (
	modeBrowse mode = iota
	modeTag
	modeReview
	modeEditTitle
)

type reportMsg struct {
	query report.Query
	page  report.Page[domain.Feedback]
	err   error
}

type debounceMsg struct{ seq int }

type draftMsg struct {
	draft *domain.InsightDraft
	err   error
}

type savedMsg struct {
	insight *domain.Insight
	err     error
}

// Model is the report screen.
type Model struct {
	ctx    context.Context
	loader Loader
	demo   bool

	query    report.Query
	page     report.Page[domain.Feedback]
	cursor   int
	selected []string

	mode  mode
	tag   textinput.Model
	title textinput.Model
	// seq identifies the latest tag keystroke; only its debounce fires.
	seq int

	draft   *domain.InsightDraft
	loading bool
	status  string
	err     error
}

// New returns a report model reading through l. demo only affects the
// header badge.
func New(ctx context.Context, l Loader, demo bool) Model {
	tag := textinput.New()
	tag.Placeholder = "tag"
	tag.Prompt = "tag: "
	tag.CharLimit = 64

	title := textinput.New()
	title.Prompt = "title: "
	title.CharLimit = 255

	return Model{
		ctx:    ctx,
		loader: l,
		demo:   demo,
		query:  report.Query{}.Normalize(),
		tag:    tag,
		title:  title,
	}
}

func (m Model) Init() tea.Cmd {
	return m.fetch()
}

func (m Model) fetch() tea.Cmd {
	ctx, l, q := m.ctx, m.loader, m.query
	return func() tea.Msg {
		page, err := l.Report(ctx, q)
		return reportMsg{query: q, page: page, err: err}
	}
}

func debounce(seq int) tea.Cmd {
	return tea.Tick(DebounceDelay, func(time.Time) tea.Msg { return debounceMsg{seq: seq} })
}

// refilter applies a filter change: back to page 1 with nothing selected.
func (m Model) refilter() (Model, tea.Cmd) {
	m.query.Page = 1
	m.query = m.query.Normalize()
	m.selected = nil
	m.cursor = 0
	m.loading = true
	return m, m.fetch()
}

func (m Model) turnPage(page int) (Model, tea.Cmd) {
	m.query.Page = page
	m.cursor = 0
	m.loading = true
	return m, m.fetch()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reportMsg:
		if msg.query != m.query {
			return m, nil // superseded
		}
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.page = msg.page
			if m.cursor >= len(m.page.Items) {
				m.cursor = max(len(m.page.Items)-1, 0)
			}
		}
		return m, nil

	case debounceMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.query.Tag = m.tag.Value()
		return m.refilter()

	case draftMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.draft = msg.draft
		m.mode = modeReview
		return m, nil

	case savedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("Insight saved: %s", msg.insight.Title)
		m.draft = nil
		m.selected = nil
		m.mode = modeBrowse
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeTag:
			return m.updateTag(msg)
		case modeReview:
			return m.updateReview(msg)
		case modeEditTitle:
			return m.updateTitle(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "j", "down":
		if m.cursor < len(m.page.Items)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case " ":
		if m.cursor < len(m.page.Items) {
			m.toggle(m.page.Items[m.cursor].ID)
		}
	case "/":
		m.mode = modeTag
		return m, m.tag.Focus()
	case "s":
		m.query.Source = nextSource(m.query.Source)
		return m.refilter()
	case "n", "right":
		if m.page.HasNext {
			return m.turnPage(m.query.Page + 1)
		}
	case "p", "left":
		if m.query.Page > 1 {
			return m.turnPage(m.query.Page - 1)
		}
	case "g":
		if len(m.selected) == 0 {
			m.status = "Select at least one feedback first"
			return m, nil
		}
		m.loading = true
		m.status = ""
		ctx, l, ids := m.ctx, m.loader, append([]string(nil), m.selected...)
		return m, func() tea.Msg {
			d, err := l.DraftFromSelection(ctx, ids)
			return draftMsg{draft: d, err: err}
		}
	}
	return m, nil
}

func (m Model) updateTag(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.seq++ // cancel the pending debounce
		m.mode = modeBrowse
		m.tag.Blur()
		m.query.Tag = m.tag.Value()
		return m.refilter()
	case "esc":
		m.seq++ // drop the half-typed tag
		m.mode = modeBrowse
		m.tag.Blur()
		m.tag.SetValue(m.query.Tag)
		return m, nil
	}
	before := m.tag.Value()
	var cmd tea.Cmd
	m.tag, cmd = m.tag.Update(msg)
	if m.tag.Value() == before {
		return m, cmd
	}
	m.seq++
	return m, tea.Batch(cmd, debounce(m.seq))
}

func (m Model) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.draft = nil
		m.mode = modeBrowse
		m.status = "Draft discarded"
	case "t":
		m.mode = modeEditTitle
		m.title.SetValue(m.draft.Title)
		return m, m.title.Focus()
	case "enter", "y":
		m.loading = true
		ctx, l, d := m.ctx, m.loader, *m.draft
		return m, func() tea.Msg {
			in, err := l.SaveInsight(ctx, d)
			return savedMsg{insight: in, err: err}
		}
	}
	return m, nil
}

func (m Model) updateTitle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.draft.Title = strings.TrimSpace(m.title.Value())
		m.title.Blur()
		m.mode = modeReview
		return m, nil
	case "esc":
		m.title.Blur()
		m.mode = modeReview
		return m, nil
	}
	var cmd tea.Cmd
	m.title, cmd = m.title.Update(msg)
	return m, cmd
}

func (m *Model) toggle(id string) {
	for i, s := range m.selected {
		if s == id {
			m.selected = append(m.selected[:i:i], m.selected[i+1:]...)
			return
		}
	}
	m.selected = append(m.selected, id)
}

func (m Model) isSelected(id string) bool {
	for _, s := range m.selected {
		if s == id {
			return true
		}
	}
	return false
}

// nextSource cycles all -> each known source -> all.
func nextSource(cur string) string {
	if cur == report.AllSources {
		return domain.Sources[0]
	}
	for i, s := range domain.Sources {
		if s == cur && i+1 < len(domain.Sources) {
			return domain.Sources[i+1]
		}
	}
	return report.AllSources
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Feedback report"))
	if m.demo {
		b.WriteString(" " + DemoBadge)
	}
	b.WriteString("\n\n")

	tag := m.query.Tag
	if tag == "" {
		tag = "-"
	}
	fmt.Fprintf(&b, "%s %s   %s %s   %s %d/%d (%d)\n",
		labelStyle.Render("Source:"), report.SourceLabel(m.query.Source),
		labelStyle.Render("Tag:"), tag,
		labelStyle.Render("Page:"), m.page.Page, max(m.page.TotalPages, 1), m.page.Total)
	if m.mode == modeTag {
		b.WriteString(m.tag.View() + "\n")
	}
	b.WriteString("\n")

	switch m.mode {
	case modeReview, modeEditTitle:
		b.WriteString(m.draftView())
	default:
		b.WriteString(m.rowsView())
	}

	if m.loading {
		b.WriteString(dimStyle.Render("loading...") + "\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("error: "+m.err.Error()) + "\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	b.WriteString("\n" + m.helpView())
	return b.String()
}

func (m Model) rowsView() string {
	if len(m.page.Items) == 0 {
		return dimStyle.Render("No feedback matches these filters.") + "\n"
	}
	var b strings.Builder
	for i, fb := range m.page.Items {
		pointer := "  "
		if i == m.cursor {
			pointer = cursorStyle.Render("> ")
		}
		box := "[ ]"
		if m.isSelected(fb.ID) {
			box = selectedStyle.Render("[x]")
		}
		fmt.Fprintf(&b, "%s%s %s %s\n", pointer, box, fb.Title,
			dimStyle.Render(fmt.Sprintf("(%s, %s)", fb.Source, fb.CreatedAt.Format("2006-01-02"))))
	}
	if n := len(m.selected); n > 0 {
		fmt.Fprintf(&b, "\n%d selected\n", n)
	}
	return b.String()
}

func (m Model) draftView() string {
	d := m.draft
	if d == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s / %s\n", labelStyle.Render("Type:"), d.Type, d.Severity)
	if m.mode == modeEditTitle {
		b.WriteString(m.title.View() + "\n")
	} else {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Title:"), d.Title)
	}
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Description:"), d.Description)
	if d.Action != "" {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Action:"), d.Action)
	}
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Tags:"), strings.Join(d.Tags, ", "))
	fmt.Fprintf(&b, "%s %d feedback\n", labelStyle.Render("From:"), len(d.FeedbackIDs))
	return draftStyle.Render(b.String()) + "\n"
}

func (m Model) helpView() string {
	key := footerKeyStyle.Render
	switch m.mode {
	case modeTag:
		return key("enter") + " apply  " + key("esc") + " close"
	case modeReview:
		return key("enter") + " save  " + key("t") + " edit title  " + key("esc") + " discard"
	case modeEditTitle:
		return key("enter") + " done  " + key("esc") + " cancel"
	}
	return key("j/k") + " move  " + key("space") + " select  " + key("/") + " tag  " +
		key("s") + " source  " + key("n/p") + " page  " + key("g") + " draft insight  " + key("q") + " quit"
}
