package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/galley/internal/api"
	"github.com/five82/galley/internal/recipe"
	"github.com/five82/galley/internal/route"
)

const maxListTags = 3

// listView is the recipe browser. It survives navigation so the search term
// and cursor are still there when the user comes back.
type listView struct {
	recipes   []recipe.Recipe
	cursor    int
	search    textinput.Model
	searching bool
	loading   bool
	err       string
	confirm   string // id awaiting delete confirmation
}

func newListView() *listView {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search title, tag or author"
	ti.CharLimit = 64
	return &listView{search: ti}
}

// reset prepares the list for a fresh load.
func (l *listView) reset() {
	l.loading = true
	l.err = ""
	l.confirm = ""
}

func (l *listView) visible() []recipe.Recipe {
	return recipe.Filter(l.recipes, l.search.Value())
}

func (l *listView) selected() (recipe.Recipe, bool) {
	items := l.visible()
	if l.cursor < 0 || l.cursor >= len(items) {
		return recipe.Recipe{}, false
	}
	return items[l.cursor], true
}

func (l *listView) clampCursor() {
	n := len(l.visible())
	if l.cursor >= n {
		l.cursor = n - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

func (m *Model) handleRecipes(msg recipesMsg) tea.Cmd {
	if m.stale(msg.gen) || m.route.Name != route.List {
		for _, r := range msg.recipes {
			m.resolver.Release(r.PhotoURL)
		}
		return nil
	}
	m.list.loading = false
	if msg.err != nil {
		m.logger.Warn("list recipes", "error", msg.err)
		m.list.err = api.Message(msg.err, "Failed to load recipes")
		return m.notify(toastError, "Failed to load recipes")
	}
	m.list.recipes = msg.recipes
	for _, r := range msg.recipes {
		if r.PhotoURL != "" {
			m.scope.slots.Set("card-"+r.ID, r.PhotoURL)
		}
	}
	m.list.clampCursor()
	return nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := m.list

	if l.searching {
		switch msg.String() {
		case "enter":
			l.searching = false
			l.search.Blur()
			return m, nil
		case "esc":
			l.searching = false
			l.search.Blur()
			l.search.SetValue("")
			l.clampCursor()
			return m, nil
		}
		var cmd tea.Cmd
		l.search, cmd = l.search.Update(msg)
		l.cursor = 0
		return m, cmd
	}

	if l.confirm != "" {
		switch {
		case key.Matches(msg, m.keys.ConfirmYes):
			id := l.confirm
			l.confirm = ""
			return m, deleteCmd(m.ctx, m.scope.gen, m.service, id)
		case key.Matches(msg, m.keys.ConfirmNo):
			l.confirm = ""
		}
		return m, nil
	}

	items := l.visible()
	switch {
	case key.Matches(msg, m.keys.Up):
		if l.cursor > 0 {
			l.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if l.cursor < len(items)-1 {
			l.cursor++
		}
	case key.Matches(msg, m.keys.Top):
		l.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		l.cursor = max(len(items)-1, 0)
	case key.Matches(msg, m.keys.Search):
		l.searching = true
		return m, l.search.Focus()
	case key.Matches(msg, m.keys.Back):
		if l.search.Value() != "" {
			l.search.SetValue("")
			l.clampCursor()
		}
	case key.Matches(msg, m.keys.Reload):
		return m, m.navigate(route.Home)
	case key.Matches(msg, m.keys.New):
		return m, m.navigate(route.Route{Name: route.Create})
	case key.Matches(msg, m.keys.Open):
		if r, ok := l.selected(); ok {
			return m, m.navigate(route.Route{Name: route.Detail, ID: r.ID})
		}
	case key.Matches(msg, m.keys.Edit):
		if r, ok := l.selected(); ok && r.OwnedBy(m.session.State().User) {
			return m, m.navigate(route.Route{Name: route.Edit, ID: r.ID})
		}
	case key.Matches(msg, m.keys.Delete):
		if r, ok := l.selected(); ok && r.OwnedBy(m.session.State().User) {
			l.confirm = r.ID
		}
	case key.Matches(msg, m.keys.HideHint):
		if !m.prefs.HideLoginHint {
			m.prefs.HideLoginHint = true
			m.savePrefs()
		}
	case key.Matches(msg, m.keys.Account):
		if m.session.State().SignedIn() {
			m.session.Logout()
			cmd := m.notify(toastInfo, "Logged out")
			return m, tea.Batch(cmd, m.navigate(route.Route{Name: route.Login}))
		}
		return m, m.navigate(route.Route{Name: route.Login})
	}
	return m, nil
}

func (m Model) renderList(height int) string {
	styles := m.theme.Styles()
	l := m.list
	st := m.session.State()

	var head []string
	if l.searching || l.search.Value() != "" {
		head = append(head, l.search.View())
	}
	if !st.SignedIn() && !st.Initializing && !m.prefs.HideLoginHint {
		head = append(head, styles.InfoText.Render("Share your own recipes: press L to log in")+
			styles.FaintText.Render("  (x to hide)"))
	}

	items := l.visible()
	var body []string
	switch {
	case l.loading && len(l.recipes) == 0:
		body = append(body, styles.MutedText.Render(m.spinner.View()+" Loading recipes..."))
	case l.err != "" && len(l.recipes) == 0:
		body = append(body, styles.DangerText.Render(l.err), styles.FaintText.Render("press r to retry"))
	case len(items) == 0 && l.search.Value() != "":
		body = append(body, styles.MutedText.Render("No recipes match "+fmt.Sprintf("%q", l.search.Value())))
	case len(items) == 0:
		body = append(body, styles.MutedText.Render("No recipes yet. Press n to add one."))
	default:
		// Rows take two lines when tags are shown.
		rows := (height - len(head)) / 2
		if rows < 1 {
			rows = 1
		}
		start, end := window(l.cursor, len(items), rows)
		for i := start; i < end; i++ {
			body = append(body, m.renderRecipeRow(items[i], i == l.cursor, st.User))
		}
	}

	return strings.Join(append(head, body...), "\n")
}

func (m Model) renderRecipeRow(r recipe.Recipe, selected bool, user *recipe.User) string {
	styles := m.theme.Styles()

	marker := "  "
	if r.PhotoURL != "" {
		marker = "▣ "
	}
	title := r.Title
	if title == "" {
		title = "(untitled)"
	}
	if l := m.list; l.confirm == r.ID {
		title += "  delete? y/n"
	}
	titleWidth := m.width / 2
	if titleWidth < 16 {
		titleWidth = 16
	}
	title = padRight(truncate(title, titleWidth), titleWidth)

	meta := []string{}
	if r.AuthorName != "" {
		author := "by " + r.AuthorName
		if r.OwnedBy(user) {
			author = "by you"
		}
		meta = append(meta, author)
	}
	if r.PrepTimeMinutes > 0 {
		meta = append(meta, fmt.Sprintf("%d min", r.PrepTimeMinutes))
	}

	line := marker + title + "  " + strings.Join(meta, " · ")
	if selected {
		line = styles.Selected.Width(m.width).Render(line)
	} else {
		line = styles.Text.Render(marker+title) + "  " + styles.MutedText.Render(strings.Join(meta, " · "))
	}

	var chips []string
	for i, tag := range r.Tags {
		if i == maxListTags {
			chips = append(chips, styles.FaintText.Render(fmt.Sprintf("+%d", len(r.Tags)-maxListTags)))
			break
		}
		chips = append(chips, styles.TagStyle(tag).Render(recipe.TagLabel(tag)))
	}
	if len(chips) == 0 {
		return line
	}
	return line + "\n    " + strings.Join(chips, " ")
}
