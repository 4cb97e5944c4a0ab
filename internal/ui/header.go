package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/galley/internal/route"
)

// renderHeader draws the top bar: logo, identity, session expiry and path.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	st := m.session.State()

	parts := []string{styles.Logo.Render("galley")}
	switch {
	case st.Initializing:
		parts = append(parts, styles.FaintText.Render("restoring session"))
	case st.User != nil:
		who := st.User.Name
		if who == "" {
			who = st.User.Email
		} else if st.User.Email != "" {
			who += " <" + st.User.Email + ">"
		}
		if who == "" {
			who = "signed in"
		}
		parts = append(parts, styles.AccentText.Render(who))
		if exp, ok := m.session.Expiry(); ok {
			parts = append(parts, styles.MutedText.Render(expiryLabel(exp, time.Now())))
		}
	default:
		parts = append(parts, styles.MutedText.Render("guest"))
	}
	left := strings.Join(parts, styles.FaintText.Render(" · "))
	right := styles.FaintText.Render(m.route.Path())

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return styles.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func expiryLabel(exp, now time.Time) string {
	if !exp.After(now) {
		return "session expired"
	}
	if exp.Sub(now) < 24*time.Hour && exp.Day() == now.Day() {
		return "until " + exp.Format("15:04")
	}
	return "until " + exp.Format("Jan 2 15:04")
}

// renderFooter shows the current toast, or key hints for the view.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	content := styles.FaintText.Render(m.footerHints())
	if m.toast.text != "" {
		content = m.renderToast()
	}
	return styles.Footer.Width(m.width).Render(content)
}

func (m Model) footerHints() string {
	if m.pending {
		return "ctrl+c quit"
	}
	var hints []string
	switch m.route.Name {
	case route.List:
		switch {
		case m.list.confirm != "":
			hints = []string{"delete this recipe? y/n"}
		case m.list.searching:
			hints = []string{"enter done", "esc clear"}
		default:
			hints = []string{"enter open", "/ search", "n new", "e edit", "d delete", "r reload", "L " + m.accountLabel()}
		}
	case route.Detail:
		if m.detail != nil && m.detail.confirm {
			hints = []string{"delete this recipe? y/n"}
		} else {
			hints = []string{"esc back", "e edit", "d delete", "w export", "j/k scroll"}
		}
	case route.Create, route.Edit:
		hints = []string{"tab next", "ctrl+s save", "ctrl+t photo mode", "ctrl+x remove photo", "ctrl+p preview", "esc cancel"}
	case route.Login:
		hints = []string{"tab next", "enter submit", "ctrl+r log in/register", "esc back"}
	}
	if !m.typing() {
		hints = append(hints, "? help")
	}
	return strings.Join(hints, " · ")
}

func (m Model) accountLabel() string {
	if m.session.State().SignedIn() {
		return "log out"
	}
	return "log in"
}
