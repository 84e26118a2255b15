package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/storefront-hq/storectl/internal/storefront/datasource"
	"github.com/storefront-hq/storectl/internal/storefront/entity"
)

type listLoadedMsg struct {
	err error
}

type detailLoadedMsg struct {
	id  entity.ID
	err error
}

type mutationDoneMsg struct {
	id     entity.ID
	action string
	err    error
}

type feedbackMsg datasource.Feedback

type toastExpiredMsg struct {
	id int
}

type copiedMsg struct {
	id  entity.ID
	err error
}

type toastKind int

const (
	toastInfo toastKind = iota
	toastSuccess
	toastError
)

type toast struct {
	id   int
	kind toastKind
	text string
}

func toastKindOf(level datasource.Level) toastKind {
	switch level {
	case datasource.LevelSuccess:
		return toastSuccess
	case datasource.LevelError:
		return toastError
	default:
		return toastInfo
	}
}

// pushToast shows text and schedules its expiry. Only the newest maxToasts
// are kept.
func (m *Model) pushToast(kind toastKind, text string) tea.Cmd {
	m.nextToast++
	id := m.nextToast
	m.toasts = append(m.toasts, toast{id: id, kind: kind, text: text})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
	return tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m *Model) dropToast(id int) {
	for i, t := range m.toasts {
		if t.id == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

func (m *Model) load(q datasource.Query) tea.Cmd {
	ctx, list := m.page.Context(), m.page.List
	return func() tea.Msg {
		return listLoadedMsg{err: list.Load(ctx, q)}
	}
}

func (m *Model) searchFor(text string) tea.Cmd {
	ctx, list := m.page.Context(), m.page.List
	return func() tea.Msg {
		return listLoadedMsg{err: list.Search(ctx, text)}
	}
}

func (m *Model) refresh() tea.Cmd {
	ctx, list := m.page.Context(), m.page.List
	return func() tea.Msg {
		return listLoadedMsg{err: list.Refresh(ctx)}
	}
}

func (m *Model) open(id entity.ID) tea.Cmd {
	ctx, detail := m.page.Context(), m.page.Detail
	return func() tea.Msg {
		_, err := detail.Open(ctx, id)
		return detailLoadedMsg{id: id, err: err}
	}
}

// mutate applies action. Success and failure reach the user through the
// page notifier; the returned message only triggers a redraw.
func (m *Model) mutate(id entity.ID, action datasource.Action) tea.Cmd {
	ctx, mutator := m.page.Context(), m.page.Mutator
	return func() tea.Msg {
		err := mutator.Mutate(ctx, id, action)
		return mutationDoneMsg{id: id, action: action.Name(), err: err}
	}
}

func (m *Model) copyID(id entity.ID) tea.Cmd {
	if id == "" {
		return nil
	}
	copyFn := m.opts.Copy
	return func() tea.Msg {
		return copiedMsg{id: id, err: copyFn(id.String())}
	}
}

func (m *Model) waitFeedback() tea.Cmd {
	ctx, ch := m.page.Context(), m.feedback
	return func() tea.Msg {
		select {
		case fb := <-ch:
			return feedbackMsg(fb)
		case <-ctx.Done():
			return nil
		}
	}
}
