package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/galley/internal/api"
	"github.com/five82/galley/internal/draft"
	"github.com/five82/galley/internal/photo"
	"github.com/five82/galley/internal/recipe"
	"github.com/five82/galley/internal/route"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldPrep
	fieldIngredients
	fieldProcess
	fieldTags
	fieldPhoto
	fieldCount
)

const notAuthorizedMessage = "Not authorized to edit this recipe."

// editGate holds the edit route while the recipe loads and ownership is
// checked. The form only exists once the gate opens.
type editGate struct {
	loading bool
	err     string
}

// formView edits a draft. id is empty when creating.
type formView struct {
	id    string
	draft *draft.Draft

	title       textinput.Model
	prep        textinput.Model
	photo       textinput.Model
	description textarea.Model
	ingredients textarea.Model
	process     textarea.Model

	focus     int
	tagCursor int
	preview   bool
	saving    bool
	err       string
}

func newFormView(id string, orig *recipe.Recipe, objects *photo.Objects, width int) *formView {
	d := draft.New(orig, objects)
	f := &formView{id: id, draft: d}

	f.title = textinput.New()
	f.title.Placeholder = "Tomato soup"
	f.title.CharLimit = 120
	f.title.SetValue(d.Title)

	f.prep = textinput.New()
	f.prep.Placeholder = "minutes"
	f.prep.CharLimit = 5
	f.prep.SetValue(d.PrepTime)

	f.photo = textinput.New()
	f.photo.CharLimit = 2048

	f.description = newTextarea("A short introduction", d.Description)
	f.ingredients = newTextarea("- 2 tomatoes", d.IngredientMd)
	f.process = newTextarea("1. Chop the tomatoes", d.ProcessMd)

	f.syncPhotoInput()
	f.resize(width)
	return f
}

func newTextarea(placeholder, value string) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(4)
	ta.SetValue(value)
	ta.Blur()
	return ta
}

func (f *formView) resize(width int) {
	w := max(width-6, 20)
	f.title.Width = w
	f.prep.Width = 8
	f.photo.Width = w
	f.description.SetWidth(w)
	f.ingredients.SetWidth(w)
	f.process.SetWidth(w)
}

// focusCmd focuses the current field and blurs the others.
func (f *formView) focusCmd() tea.Cmd {
	f.title.Blur()
	f.prep.Blur()
	f.photo.Blur()
	f.description.Blur()
	f.ingredients.Blur()
	f.process.Blur()

	switch f.focus {
	case fieldTitle:
		return f.title.Focus()
	case fieldDescription:
		return f.description.Focus()
	case fieldPrep:
		return f.prep.Focus()
	case fieldIngredients:
		return f.ingredients.Focus()
	case fieldProcess:
		return f.process.Focus()
	case fieldPhoto:
		return f.photo.Focus()
	}
	return nil
}

func (f *formView) textarea() *textarea.Model {
	switch f.focus {
	case fieldDescription:
		return &f.description
	case fieldIngredients:
		return &f.ingredients
	case fieldProcess:
		return &f.process
	}
	return nil
}

// syncDraft copies the widget values into the draft.
func (f *formView) syncDraft() {
	f.draft.Title = f.title.Value()
	f.draft.Description = f.description.Value()
	f.draft.PrepTime = f.prep.Value()
	f.draft.IngredientMd = f.ingredients.Value()
	f.draft.ProcessMd = f.process.Value()
	if f.draft.Mode() == draft.ModeURL {
		f.draft.SetURL(f.photo.Value())
	}
}

func (f *formView) syncPhotoInput() {
	if f.draft.Mode() == draft.ModeURL {
		f.photo.Placeholder = "https://example.com/soup.jpg"
		f.photo.SetValue(f.draft.URL())
		return
	}
	f.photo.Placeholder = "path to an image file, enter to attach"
	f.photo.SetValue("")
}

// applyToLine rewrites the line under the cursor of ta.
func applyToLine(ta *textarea.Model, fn func(string) string) {
	lines := strings.Split(ta.Value(), "\n")
	row := ta.Line()
	if row < 0 || row >= len(lines) {
		return
	}
	lines[row] = fn(lines[row])
	ta.SetValue(strings.Join(lines, "\n"))
	for i := len(lines) - 1; i > row; i-- {
		ta.CursorUp()
	}
	ta.CursorEnd()
}

func (m *Model) handleEditLoaded(msg editLoadedMsg) tea.Cmd {
	if m.stale(msg.gen) || m.route.Name != route.Edit {
		return nil
	}
	m.edit.loading = false
	if msg.err != nil {
		m.logger.Warn("load recipe for edit", "id", m.route.ID, "error", msg.err)
		m.edit.err = api.Message(msg.err, "Failed to load recipe")
		return m.notify(toastError, m.edit.err)
	}
	r := msg.recipe
	if !r.OwnedBy(m.session.State().User) {
		m.edit.err = notAuthorizedMessage
		return m.notify(toastError, notAuthorizedMessage)
	}

	id := r.ID
	if id == "" {
		id = m.route.ID
	}
	m.form = newFormView(id, &r, m.resolver.Objects(), m.width)
	cmds := []tea.Cmd{m.form.focusCmd()}
	if ref, ok := m.form.draft.HydrationRef(); ok {
		cmds = append(cmds, hydrateDraftCmd(m.scope.ctx, m.scope.gen, m.resolver, ref))
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleHydrated(msg hydratedMsg) {
	if m.stale(msg.gen) || m.form == nil {
		m.resolver.Release(msg.url)
		return
	}
	m.form.draft.ApplyHydration(msg.url)
}

func (m *Model) handleSaved(msg savedMsg) tea.Cmd {
	fallback := "Failed to update recipe"
	if msg.create {
		fallback = "Failed to create recipe"
	}
	if msg.err != nil {
		m.logger.Warn("save recipe", "id", msg.id, "error", msg.err)
		text := api.Message(msg.err, fallback)
		if !m.stale(msg.gen) && m.form != nil {
			m.form.saving = false
			m.form.err = text
		}
		return m.notify(toastError, text)
	}

	m.logger.Info("recipe saved", "id", msg.id, "create", msg.create)
	text := "Recipe updated"
	next := route.Route{Name: route.Detail, ID: msg.id}
	if msg.create {
		text = "Recipe created"
		next = route.Home
	}
	cmd := m.notify(toastSuccess, text)
	if m.stale(msg.gen) {
		return cmd
	}
	return tea.Batch(cmd, m.navigate(next))
}

func (m *Model) handleDeleted(msg deletedMsg) tea.Cmd {
	if msg.err != nil {
		m.logger.Warn("delete recipe", "id", msg.id, "error", msg.err)
		return m.notify(toastError, api.Message(msg.err, "Failed to delete recipe"))
	}
	m.logger.Info("recipe deleted", "id", msg.id)
	cmd := m.notify(toastSuccess, "Recipe deleted")

	m.list.recipes = recipe.Without(m.list.recipes, msg.id)
	m.list.clampCursor()
	if m.stale(msg.gen) {
		return cmd
	}
	switch m.route.Name {
	case route.List:
		m.scope.slots.Release("card-" + msg.id)
	case route.Detail:
		return tea.Batch(cmd, m.navigate(route.Home))
	}
	return cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	if f == nil {
		if key.Matches(msg, m.keys.Back) {
			return m, m.navigate(m.formExit())
		}
		return m, nil
	}
	if f.saving {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		if f.preview {
			f.preview = false
			return m, nil
		}
		return m, m.navigate(m.formExit())

	case key.Matches(msg, m.keys.Submit):
		f.syncDraft()
		sub, err := f.draft.Submit()
		if err != nil {
			f.err = err.Error()
			if errors.Is(err, draft.ErrTitleRequired) {
				f.focus = fieldTitle
				return m, tea.Batch(f.focusCmd(), m.notify(toastError, "Title is required"))
			}
			f.focus = fieldPrep
			return m, tea.Batch(f.focusCmd(), m.notify(toastError, f.err))
		}
		f.err = ""
		f.saving = true
		m.logger.Debug("submit recipe", "id", f.id, "photo", recipe.IntentName(sub.Photo))
		return m, saveCmd(m.ctx, m.scope.gen, m.service, f.id, sub)

	case key.Matches(msg, m.keys.NextField):
		f.focus = (f.focus + 1) % fieldCount
		return m, f.focusCmd()

	case key.Matches(msg, m.keys.PrevField):
		f.focus = (f.focus + fieldCount - 1) % fieldCount
		return m, f.focusCmd()

	case key.Matches(msg, m.keys.PhotoMode):
		f.syncDraft()
		f.draft.ToggleMode()
		f.syncPhotoInput()
		return m, nil

	case key.Matches(msg, m.keys.RemovePhoto):
		f.draft.RemoveImage()
		f.photo.SetValue("")
		return m, nil

	case key.Matches(msg, m.keys.Preview):
		f.syncDraft()
		f.preview = !f.preview
		return m, nil
	}

	if f.preview {
		return m, nil
	}

	if ta := f.textarea(); ta != nil {
		switch {
		case key.Matches(msg, m.keys.Bold):
			applyToLine(ta, func(s string) string { return draft.Wrap(s, "**", "**") })
			return m, nil
		case key.Matches(msg, m.keys.OrderedList):
			applyToLine(ta, func(s string) string { return draft.PrefixLines(s, "1. ") })
			return m, nil
		case key.Matches(msg, m.keys.BulletList):
			applyToLine(ta, func(s string) string { return draft.PrefixLines(s, "- ") })
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDescription:
		f.description, cmd = f.description.Update(msg)
	case fieldPrep:
		f.prep, cmd = f.prep.Update(msg)
	case fieldIngredients:
		f.ingredients, cmd = f.ingredients.Update(msg)
	case fieldProcess:
		f.process, cmd = f.process.Update(msg)
	case fieldTags:
		switch msg.String() {
		case "left", "h":
			f.tagCursor = (f.tagCursor + len(draft.AvailableTags) - 1) % len(draft.AvailableTags)
		case "right", "l":
			f.tagCursor = (f.tagCursor + 1) % len(draft.AvailableTags)
		default:
			if key.Matches(msg, m.keys.ToggleTag) {
				f.draft.ToggleTag(draft.AvailableTags[f.tagCursor])
			}
		}
	case fieldPhoto:
		if f.draft.Mode() == draft.ModeUpload && msg.String() == "enter" {
			return m, m.attachPhoto()
		}
		f.photo, cmd = f.photo.Update(msg)
		if f.draft.Mode() == draft.ModeURL {
			f.draft.SetURL(f.photo.Value())
		}
	}
	return m, cmd
}

// attachPhoto loads the file named in the photo input.
func (m *Model) attachPhoto() tea.Cmd {
	f := m.form
	file, err := draft.ReadFile(f.photo.Value())
	if err != nil {
		m.logger.Debug("attach photo", "error", err)
		f.err = err.Error()
		return m.notify(toastError, "Could not attach photo")
	}
	f.err = ""
	f.draft.SelectFile(file)
	f.photo.SetValue("")
	return nil
}

func (m Model) formExit() route.Route {
	if m.route.Name == route.Edit && m.route.ID != "" {
		return route.Route{Name: route.Detail, ID: m.route.ID}
	}
	return route.Home
}

func (m Model) renderForm(height int) string {
	styles := m.theme.Styles()
	if m.form == nil {
		switch {
		case m.edit.err != "":
			return styles.DangerText.Render(m.edit.err) + "\n" + styles.FaintText.Render("esc to go back")
		default:
			return styles.MutedText.Render(m.spinner.View() + " Loading recipe...")
		}
	}
	f := m.form

	heading := "New recipe"
	if f.id != "" {
		heading = "Edit recipe"
	}
	if f.saving {
		heading += "  " + m.spinner.View() + " saving"
	}
	top := []string{styles.Title.Render(heading)}
	if f.err != "" {
		top = append(top, styles.DangerText.Render(f.err))
	}

	if f.preview {
		return strings.Join(top, "\n") + "\n" + m.renderFormPreview()
	}

	blocks := make([]string, fieldCount)
	block := func(field int, label, body string) {
		style := styles.Field
		if f.focus == field {
			style = styles.FocusedField
		}
		blocks[field] = style.Width(m.width - 2).Render(styles.MutedText.Render(label) + "\n" + body)
	}
	block(fieldTitle, "Title", f.title.View())
	block(fieldDescription, "Description", f.description.View())
	block(fieldPrep, "Prep time", f.prep.View())
	block(fieldIngredients, "Ingredients (markdown)", f.ingredients.View())
	block(fieldProcess, "Process (markdown)", f.process.View())
	block(fieldTags, "Tags", m.renderTagPicker())
	block(fieldPhoto, "Photo ("+f.draft.Mode().String()+")", f.photo.View()+"\n"+m.renderPhotoStatus())

	// Scroll so the focused field stays on screen.
	avail := height - len(top)
	start := 0
	for start < f.focus && lipgloss.Height(strings.Join(blocks[start:f.focus+1], "\n")) > avail {
		start++
	}
	return strings.Join(append(top, blocks[start:]...), "\n")
}

func (m Model) renderTagPicker() string {
	styles := m.theme.Styles()
	f := m.form
	chips := make([]string, len(draft.AvailableTags))
	for i, tag := range draft.AvailableTags {
		label := recipe.TagLabel(tag)
		var chip string
		if f.draft.HasTag(tag) {
			chip = styles.TagStyle(tag).Render(label)
		} else {
			chip = styles.FaintText.Render(" " + label + " ")
		}
		if f.focus == fieldTags && i == f.tagCursor {
			chip = styles.Selected.Render("›") + chip
		}
		chips[i] = chip
	}
	return lipgloss.NewStyle().Width(m.width - 6).Render(strings.Join(chips, " "))
}

func (m Model) renderPhotoStatus() string {
	styles := m.theme.Styles()
	d := m.form.draft
	switch {
	case d.Preview() != "":
		status := "attached"
		if file := d.File(); file != nil {
			status = file.Name
		} else if d.OriginalPhoto() != "" {
			status = "current photo"
		}
		if blob, ok := m.resolver.Blob(d.Preview()); ok {
			status += " · " + photo.Describe(blob).String()
		}
		return styles.SuccessText.Render(status) + styles.FaintText.Render("  ctrl+x to remove")
	case d.Cleared():
		return styles.WarningText.Render("photo will be removed on save")
	case d.Mode() == draft.ModeUpload && d.OriginalPhoto() != "":
		return styles.FaintText.Render("loading current photo...")
	case d.Mode() == draft.ModeURL && strings.TrimSpace(d.URL()) == "" && d.OriginalPhoto() != "":
		return styles.WarningText.Render("no URL: photo will be removed on save")
	}
	return styles.FaintText.Render("ctrl+t to switch between upload and URL")
}

func (m Model) renderFormPreview() string {
	styles := m.theme.Styles()
	d := m.form.draft
	width := m.width - 4

	var b strings.Builder
	b.WriteString(styles.Title.Render(d.Title))
	b.WriteString("\n")
	if d.Description != "" {
		b.WriteString(styles.Text.Render(d.Description))
		b.WriteString("\n")
	}
	if strings.TrimSpace(d.IngredientMd) != "" {
		b.WriteString("\n" + styles.AccentText.Bold(true).Render("Ingredients") + "\n")
		b.WriteString(m.renderer.Render(d.IngredientMd, width))
		b.WriteString("\n")
	}
	if strings.TrimSpace(d.ProcessMd) != "" {
		b.WriteString("\n" + styles.AccentText.Bold(true).Render("Process") + "\n")
		b.WriteString(m.renderer.Render(d.ProcessMd, width))
	}
	return b.String()
}
