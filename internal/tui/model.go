// Package tui is the interactive management page: a searchable table of one
// resource with a detail modal, row actions and toast feedback.
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/storefront-hq/storectl/internal/cmd/output/jq"
	"github.com/storefront-hq/storectl/internal/storefront/api"
	"github.com/storefront-hq/storectl/internal/storefront/catalog"
	"github.com/storefront-hq/storectl/internal/storefront/datasource"
	"github.com/storefront-hq/storectl/internal/storefront/entity"
)

const (
	toastTTL        = 4 * time.Second
	maxToasts       = 3
	maxColumnWidth  = 40
	minColumnWidth  = 4
	chromeHeight    = 8
	feedbackBacklog = 32
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeDetail
	modeStatus
	modeConfirmDelete
)

// Options configure a Model.
type Options struct {
	// Search is the initial search query.
	Search string
	// Theme is the chroma style used for the detail JSON. Empty disables
	// highlighting.
	Theme string
	// Copy writes text to the clipboard.
	Copy func(string) error
}

// Model is the bubbletea model of one management page.
type Model struct {
	page     *datasource.Page
	resource catalog.Resource
	opts     Options
	feedback chan datasource.Feedback

	table   table.Model
	search  textinput.Model
	prompt  textinput.Model
	spinner spinner.Model

	mode     mode
	returnTo mode
	target   entity.ID
	items    entity.Collection
	columns  []string
	loading  bool
	opening  entity.ID

	toasts    []toast
	nextToast int

	width  int
	height int
}

// New builds the page model for resource. Requests run under ctx until Close.
func New(ctx context.Context, client datasource.Client, resource catalog.Resource, opts Options) *Model {
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}

	m := &Model{
		resource: resource,
		opts:     opts,
		feedback: make(chan datasource.Feedback, feedbackBacklog),
		columns:  resource.Columns,
		width:    100,
		height:   30,
	}
	m.page = datasource.NewPage(ctx, client, resource, datasource.NotifierFunc(m.notify))

	if len(m.columns) == 0 {
		m.columns = []string{entity.IDField}
	}

	m.search = textinput.New()
	m.search.Prompt = "/ "
	m.search.Placeholder = "search " + resource.Name
	m.search.SetValue(opts.Search)

	m.prompt = textinput.New()
	m.prompt.Prompt = "status: "
	m.prompt.Placeholder = strings.Join(resource.Statuses, ", ")

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	m.table = table.New(
		table.WithColumns(m.tableColumns()),
		table.WithFocused(true),
		table.WithHeight(m.height-chromeHeight),
		table.WithStyles(tableStyles()),
	)
	return m
}

// Close cancels everything the page has in flight.
func (m *Model) Close() {
	m.page.Close()
}

// notify runs on the goroutine of the mutation. Feedback is handed to the
// update loop through the channel and dropped when the backlog is full.
func (m *Model) notify(fb datasource.Feedback) {
	select {
	case m.feedback <- fb:
	default:
	}
}

func (m *Model) Init() tea.Cmd {
	m.loading = true
	return tea.Batch(
		m.spinner.Tick,
		m.load(datasource.Query{Search: m.opts.Search}),
		m.waitFeedback(),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetHeight(max(m.height-chromeHeight, 3))
		m.syncRows()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case listLoadedMsg:
		return m, m.handleListLoaded(msg)

	case detailLoadedMsg:
		return m, m.handleDetailLoaded(msg)

	case mutationDoneMsg:
		m.syncRows()
		if m.mode == modeDetail {
			if _, ok := m.page.Detail.Selected(); !ok {
				m.mode = modeList
			}
		}
		return m, nil

	case feedbackMsg:
		cmd := m.pushToast(toastKindOf(msg.Level), msg.Message)
		return m, tea.Batch(cmd, m.waitFeedback())

	case toastExpiredMsg:
		m.dropToast(msg.id)
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			return m, m.pushToast(toastError, "could not copy to clipboard")
		}
		return m, m.pushToast(toastInfo, fmt.Sprintf("copied id %s", msg.id))

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleListLoaded(msg listLoadedMsg) tea.Cmd {
	if datasource.IsSuperseded(msg.err) {
		return nil
	}
	m.loading = false
	m.syncRows()
	if msg.err == nil {
		return nil
	}
	state := m.page.List.State()
	if state.InitialLoadFailed() {
		return nil
	}
	return m.pushToast(toastError, api.UserMessage(msg.err, "error fetching "+m.resource.Name))
}

func (m *Model) handleDetailLoaded(msg detailLoadedMsg) tea.Cmd {
	if datasource.IsSuperseded(msg.err) {
		return nil
	}
	if msg.id == m.opening {
		m.opening = ""
	}
	if msg.err != nil {
		m.mode = modeList
		fallback := fmt.Sprintf("error fetching %s %s", singular(m.resource.Name), msg.id)
		if api.IsNotFound(msg.err) {
			fallback = fmt.Sprintf("%s %s not found", singular(m.resource.Name), msg.id)
		}
		return m.pushToast(toastError, api.UserMessage(msg.err, fallback))
	}
	m.mode = modeDetail
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.Close()
		return m, tea.Quit
	}

	switch m.mode {
	case modeSearch:
		return m, m.handleSearchKey(msg)
	case modeStatus:
		return m, m.handleStatusKey(msg)
	case modeConfirmDelete:
		m.mode = m.returnMode()
		if msg.String() == "y" || msg.String() == "Y" {
			return m, m.mutate(m.target, datasource.Delete())
		}
		return m, m.pushToast(toastInfo, "delete cancelled")
	case modeDetail:
		return m.handleDetailKey(msg)
	}
	return m.handleListKey(msg)
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.Close()
		return m, tea.Quit
	case "/":
		m.mode = modeSearch
		return m, m.search.Focus()
	case "r":
		m.loading = true
		return m, m.refresh()
	case "enter":
		id := m.selectedID()
		if id == "" {
			return m, nil
		}
		m.opening = id
		return m, m.open(id)
	case "c":
		return m, m.copyID(m.selectedID())
	case "b", "u", "s", "d":
		return m, m.rowAction(msg.String(), m.selectedID())
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rec, ok := m.page.Detail.Selected()
	if !ok {
		m.mode = modeList
		return m.handleListKey(msg)
	}
	switch msg.String() {
	case "esc", "q", "enter":
		m.page.Detail.Close()
		m.mode = modeList
		return m, nil
	case "c":
		return m, m.copyID(rec.ID())
	case "b", "u", "s", "d":
		return m, m.rowAction(msg.String(), rec.ID())
	}
	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.search.Blur()
		m.mode = modeList
		return nil
	case tea.KeyEsc:
		m.search.Blur()
		m.mode = modeList
		if m.search.Value() == "" {
			return nil
		}
		m.search.SetValue("")
		m.loading = true
		return m.searchFor("")
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return cmd
	}
	m.loading = true
	return tea.Batch(cmd, m.searchFor(m.search.Value()))
}

func (m *Model) handleStatusKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		value := strings.TrimSpace(m.prompt.Value())
		m.prompt.Blur()
		m.prompt.SetValue("")
		m.mode = m.returnMode()
		if value == "" {
			return nil
		}
		return m.mutate(m.target, datasource.UpdateStatus(value))
	case tea.KeyEsc:
		m.prompt.Blur()
		m.prompt.SetValue("")
		m.mode = m.returnMode()
		return nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

// rowAction starts the action bound to key on id. Actions the resource does
// not offer are ignored.
func (m *Model) rowAction(key string, id entity.ID) tea.Cmd {
	if id == "" {
		return nil
	}
	switch key {
	case "b":
		if m.resource.Can(catalog.CanBlock) {
			return m.mutate(id, datasource.Block())
		}
	case "u":
		if m.resource.Can(catalog.CanBlock) {
			return m.mutate(id, datasource.Unblock())
		}
	case "s":
		if m.resource.Can(catalog.CanStatus) {
			m.enterPrompt(modeStatus, id)
			return m.prompt.Focus()
		}
	case "d":
		if m.resource.Can(catalog.CanDelete) {
			m.enterPrompt(modeConfirmDelete, id)
			return nil
		}
	}
	return nil
}

func (m *Model) enterPrompt(next mode, id entity.ID) {
	m.target = id
	m.returnTo = m.mode
	m.mode = next
}

func (m *Model) returnMode() mode {
	if m.returnTo == modeDetail {
		if _, ok := m.page.Detail.Selected(); ok {
			return modeDetail
		}
	}
	return modeList
}

func (m *Model) selectedID() entity.ID {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.items) {
		return ""
	}
	return m.items[cursor].ID()
}

// syncRows copies the store into the table, resizing the columns to the
// new items and keeping the cursor in range.
func (m *Model) syncRows() {
	m.items = m.page.Store.List()
	widths := m.columnWidths()
	rows := make([]table.Row, 0, len(m.items))
	for _, rec := range m.items {
		row := make(table.Row, len(m.columns))
		for i, col := range m.columns {
			row[i] = truncate.StringWithTail(rec.String(col), uint(widths[i]), "…")
		}
		rows = append(rows, row)
	}
	m.table.SetColumns(m.tableColumns())
	m.table.SetRows(rows)
	if cursor := m.table.Cursor(); cursor >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m *Model) tableColumns() []table.Column {
	widths := m.columnWidths()
	cols := make([]table.Column, len(m.columns))
	for i, name := range m.columns {
		cols[i] = table.Column{Title: strings.ToUpper(name), Width: widths[i]}
	}
	return cols
}

// columnWidths sizes each column to its widest value, capped, then shrinks
// the widest columns until the table fits the terminal.
func (m *Model) columnWidths() []int {
	widths := make([]int, len(m.columns))
	for i, col := range m.columns {
		widths[i] = max(lipgloss.Width(col), minColumnWidth)
		for _, rec := range m.items {
			widths[i] = max(widths[i], min(lipgloss.Width(rec.String(col)), maxColumnWidth))
		}
	}

	budget := m.width - 2*len(widths)
	for total(widths) > budget {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumnWidth {
			break
		}
		widths[widest]--
	}
	return widths
}

func total(values []int) int {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return sum
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(m.bodyView())
	b.WriteString("\n")
	if line := m.promptView(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	for _, t := range m.toasts {
		b.WriteString(toastStyles[t.kind].Render(t.text))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.helpView()))
	return b.String()
}

func (m *Model) headerView() string {
	title := titleStyle.Render(fmt.Sprintf("%s / %s", m.resource.Role, m.resource.Name))
	parts := []string{title}
	if m.mode == modeSearch || m.search.Value() != "" {
		parts = append(parts, m.search.View())
	}
	if m.loading || m.opening != "" {
		parts = append(parts, m.spinner.View())
	}
	return strings.Join(parts, "  ")
}

func (m *Model) bodyView() string {
	state := m.page.List.State()
	switch {
	case state.InitialLoadFailed():
		msg := api.UserMessage(state.Err, "error fetching "+m.resource.Name)
		return errorPageStyle.Render(fmt.Sprintf("Could not load %s\n\n%s\n\nr retry · q quit",
			m.resource.Name, wordwrap.String(msg, max(m.width-8, 20))))
	case !state.EverLoaded:
		return placeholderStyle.Render(fmt.Sprintf("%s Loading %s…", m.spinner.View(), m.resource.Name))
	}

	prompting := m.mode == modeStatus || m.mode == modeConfirmDelete
	if m.mode == modeDetail || prompting && m.returnTo == modeDetail {
		if rec, ok := m.page.Detail.Selected(); ok {
			return m.detailView(rec)
		}
	}
	if len(m.items) == 0 {
		return placeholderStyle.Render(fmt.Sprintf("No %s found", m.resource.Name))
	}
	return boxStyle.Render(m.table.View())
}

func (m *Model) detailView(rec entity.Record) string {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errorPageStyle.Render(err.Error())
	}
	body := wordwrap.String(string(data), max(m.width-6, 20))
	if m.opts.Theme != "" {
		body = jq.Highlight(body, m.opts.Theme)
	}
	title := titleStyle.Render(fmt.Sprintf("%s %s", singular(m.resource.Name), rec.ID()))
	return modalStyle.Render(title + "\n\n" + body)
}

func (m *Model) promptView() string {
	switch m.mode {
	case modeStatus:
		return promptStyle.Render(fmt.Sprintf("%s %s ", singular(m.resource.Name), m.target)) + m.prompt.View()
	case modeConfirmDelete:
		return promptStyle.Render(fmt.Sprintf("delete %s %s? (y/N)", singular(m.resource.Name), m.target))
	}
	return ""
}

func (m *Model) helpView() string {
	keys := []string{}
	switch m.mode {
	case modeSearch:
		return "enter done · esc clear"
	case modeStatus:
		return "enter apply · esc cancel"
	case modeConfirmDelete:
		return "y confirm · any key cancel"
	case modeDetail:
		keys = append(keys, "esc close")
	default:
		keys = append(keys, "↑/↓ move", "enter open", "/ search", "r refresh")
	}
	if m.resource.Can(catalog.CanBlock) {
		keys = append(keys, "b block", "u unblock")
	}
	if m.resource.Can(catalog.CanStatus) {
		keys = append(keys, "s status")
	}
	if m.resource.Can(catalog.CanDelete) {
		keys = append(keys, "d delete")
	}
	keys = append(keys, "c copy id", "q quit")
	return strings.Join(keys, " · ")
}

func singular(name string) string {
	switch {
	case strings.HasSuffix(name, "ies"):
		return strings.TrimSuffix(name, "ies") + "y"
	case strings.HasSuffix(name, "s"):
		return strings.TrimSuffix(name, "s")
	}
	return name
}
