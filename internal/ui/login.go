package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/galley/internal/api"
	"github.com/five82/galley/internal/route"
)

type loginView struct {
	register bool
	name     textinput.Model
	email    textinput.Model
	password textinput.Model
	focus    int
	busy     bool
	err      string
}

func newLoginView() *loginView {
	l := &loginView{
		name:     textinput.New(),
		email:    textinput.New(),
		password: textinput.New(),
	}
	l.name.Placeholder = "Ann Example"
	l.name.CharLimit = 80
	l.email.Placeholder = "ann@example.com"
	l.email.CharLimit = 254
	l.password.Placeholder = "password"
	l.password.EchoMode = textinput.EchoPassword
	l.password.EchoCharacter = '•'
	return l
}

// inputs returns the fields shown in the current mode, in tab order.
func (l *loginView) inputs() []*textinput.Model {
	if l.register {
		return []*textinput.Model{&l.name, &l.email, &l.password}
	}
	return []*textinput.Model{&l.email, &l.password}
}

func (l *loginView) focusCmd() tea.Cmd {
	var cmd tea.Cmd
	for i, in := range l.inputs() {
		if i == l.focus {
			cmd = in.Focus()
		} else {
			in.Blur()
		}
	}
	if !l.register {
		l.name.Blur()
	}
	return cmd
}

func (m *Model) handleAuth(msg authMsg) tea.Cmd {
	if msg.err != nil {
		m.logger.Warn("authentication failed", "register", msg.register, "error", msg.err)
		text := api.Message(msg.err, "Authentication failed")
		if m.login != nil && !m.stale(msg.gen) {
			m.login.busy = false
			m.login.err = text
		}
		return m.notify(toastError, text)
	}
	text := "Logged in"
	if msg.register {
		text = "Account created"
	}
	cmd := m.notify(toastSuccess, text)
	if m.stale(msg.gen) {
		return cmd
	}
	return tea.Batch(cmd, m.navigate(route.Home))
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := m.login
	if l == nil || l.busy {
		return m, nil
	}
	inputs := l.inputs()

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, m.navigate(route.Home)
	case key.Matches(msg, m.keys.RegisterMode):
		l.register = !l.register
		l.focus = 0
		l.err = ""
		return m, l.focusCmd()
	case key.Matches(msg, m.keys.NextField), msg.String() == "down":
		l.focus = (l.focus + 1) % len(inputs)
		return m, l.focusCmd()
	case key.Matches(msg, m.keys.PrevField), msg.String() == "up":
		l.focus = (l.focus + len(inputs) - 1) % len(inputs)
		return m, l.focusCmd()
	case msg.String() == "enter":
		if l.focus < len(inputs)-1 {
			l.focus++
			return m, l.focusCmd()
		}
		if strings.TrimSpace(l.email.Value()) == "" || l.password.Value() == "" {
			l.err = "Email and password are required"
			return m, nil
		}
		l.busy = true
		l.err = ""
		return m, authCmd(m.ctx, m.scope.gen, m.service, m.session, l.register,
			l.name.Value(), l.email.Value(), l.password.Value())
	}

	var cmd tea.Cmd
	in := inputs[l.focus]
	*in, cmd = in.Update(msg)
	return m, cmd
}

func (m Model) renderLogin() string {
	styles := m.theme.Styles()
	l := m.login
	if l == nil {
		return ""
	}

	heading, alt := "Log in", "ctrl+r to create an account"
	if l.register {
		heading, alt = "Create account", "ctrl+r to log in instead"
	}

	lines := []string{styles.Title.Render(heading), styles.FaintText.Render(alt), ""}
	field := func(label string, in textinput.Model, focused bool) {
		style := styles.Field
		if focused {
			style = styles.FocusedField
		}
		lines = append(lines, style.Width(min(m.width-2, 60)).Render(styles.MutedText.Render(label)+"\n"+in.View()))
	}
	idx := 0
	if l.register {
		field("Name", l.name, l.focus == idx)
		idx++
	}
	field("Email", l.email, l.focus == idx)
	field("Password", l.password, l.focus == idx+1)

	switch {
	case l.busy:
		lines = append(lines, "", styles.MutedText.Render(m.spinner.View()+" Signing in..."))
	case l.err != "":
		lines = append(lines, "", styles.DangerText.Render(l.err))
	}
	return strings.Join(lines, "\n")
}
