package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const toastTTL = 4 * time.Second

type toastKind int

const (
	toastInfo toastKind = iota
	toastSuccess
	toastError
)

// toast is the transient notification shown in the footer.
type toast struct {
	id   int
	kind toastKind
	text string
}

type toastExpiredMsg struct{ id int }

// notify shows text until it expires or another toast replaces it.
func (m *Model) notify(kind toastKind, text string) tea.Cmd {
	m.toastSeq++
	m.toast = toast{id: m.toastSeq, kind: kind, text: text}
	id := m.toastSeq
	return tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m Model) renderToast() string {
	styles := m.theme.Styles()
	switch m.toast.kind {
	case toastSuccess:
		return styles.SuccessText.Render("✓ " + m.toast.text)
	case toastError:
		return styles.DangerText.Render("✗ " + m.toast.text)
	default:
		return styles.InfoText.Render(m.toast.text)
	}
}
