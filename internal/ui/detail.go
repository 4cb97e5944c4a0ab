package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/galley/internal/api"
	"github.com/five82/galley/internal/photo"
	"github.com/five82/galley/internal/recipe"
	"github.com/five82/galley/internal/route"
)

const heroSlot = "hero"

type detailView struct {
	recipe   *recipe.Recipe
	loading  bool
	err      string
	confirm  bool
	viewport viewport.Model
}

func newDetailView(width, height int) *detailView {
	d := &detailView{loading: true, viewport: viewport.New(width, height)}
	d.resize(width, height-2)
	return d
}

func (d *detailView) resize(width, height int) {
	d.viewport.Width = max(width, 20)
	d.viewport.Height = max(height, 3)
}

func (d *detailView) setContent(s string) {
	d.viewport.SetContent(s)
}

func (m *Model) handleRecipe(msg recipeMsg) tea.Cmd {
	if m.stale(msg.gen) || m.detail == nil {
		m.resolver.Release(msg.recipe.PhotoURL)
		return nil
	}
	m.detail.loading = false
	if msg.err != nil {
		m.logger.Warn("get recipe", "id", m.route.ID, "error", msg.err)
		if api.IsNotFound(msg.err) {
			m.detail.err = "Recipe not found"
		} else {
			m.detail.err = api.Message(msg.err, "Failed to load recipe")
		}
		return m.notify(toastError, "Failed to load recipe")
	}
	r := msg.recipe
	m.scope.slots.Set(heroSlot, r.PhotoURL)
	m.detail.recipe = &r
	m.detail.setContent(m.detailContent())
	return nil
}

// detailContent renders the scrollable body of the detail view.
func (m Model) detailContent() string {
	if m.detail == nil || m.detail.recipe == nil {
		return ""
	}
	styles := m.theme.Styles()
	r := *m.detail.recipe
	width := m.detail.viewport.Width

	var b strings.Builder
	b.WriteString(styles.Title.Render(r.Title))
	b.WriteString("\n")

	var meta []string
	if r.AuthorName != "" {
		meta = append(meta, "by "+r.AuthorName)
	}
	if r.PrepTimeMinutes > 0 {
		meta = append(meta, fmt.Sprintf("%d min prep", r.PrepTimeMinutes))
	}
	if len(meta) > 0 {
		b.WriteString(styles.MutedText.Render(strings.Join(meta, " · ")))
		b.WriteString("\n")
	}
	if len(r.Tags) > 0 {
		chips := make([]string, len(r.Tags))
		for i, tag := range r.Tags {
			chips[i] = styles.TagStyle(tag).Render(recipe.TagLabel(tag))
		}
		b.WriteString(strings.Join(chips, " "))
		b.WriteString("\n")
	}
	if line := m.photoLine(r); line != "" {
		b.WriteString(styles.FaintText.Render(line))
		b.WriteString("\n")
	}
	if r.Description != "" {
		b.WriteString("\n")
		b.WriteString(styles.Text.Render(r.Description))
		b.WriteString("\n")
	}

	section := func(title, md string) {
		if strings.TrimSpace(md) == "" {
			return
		}
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Bold(true).Render(title))
		b.WriteString("\n")
		b.WriteString(m.renderer.Render(md, width))
		b.WriteString("\n")
	}
	section("Ingredients", r.IngredientMd)
	section("Process", r.ProcessMd)

	return strings.TrimRight(b.String(), "\n")
}

func (m Model) photoLine(r recipe.Recipe) string {
	switch {
	case r.PhotoURL == "":
		return ""
	case photo.IsExternalURL(r.PhotoURL):
		return "photo: " + r.PhotoURL
	}
	if blob, ok := m.resolver.Blob(r.PhotoURL); ok {
		return "photo: " + photo.Describe(blob).String()
	}
	return ""
}

func (m Model) renderDetail() string {
	styles := m.theme.Styles()
	d := m.detail
	switch {
	case d == nil:
		return ""
	case d.loading:
		return styles.MutedText.Render(m.spinner.View() + " Loading recipe...")
	case d.err != "":
		return styles.DangerText.Render(d.err) + "\n" + styles.FaintText.Render("esc to go back")
	}
	view := d.viewport.View()
	if d.confirm {
		view = styles.WarningText.Render("Delete this recipe? y/n") + "\n" + view
	}
	return view
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.detail
	if d == nil {
		return m, nil
	}

	if d.confirm {
		switch {
		case key.Matches(msg, m.keys.ConfirmYes):
			d.confirm = false
			if d.recipe != nil {
				return m, deleteCmd(m.ctx, m.scope.gen, m.service, d.recipe.ID)
			}
		case key.Matches(msg, m.keys.ConfirmNo):
			d.confirm = false
		}
		return m, nil
	}

	owned := d.recipe != nil && d.recipe.OwnedBy(m.session.State().User)
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, m.navigate(route.Home)
	case key.Matches(msg, m.keys.Edit):
		if owned {
			return m, m.navigate(route.Route{Name: route.Edit, ID: d.recipe.ID})
		}
	case key.Matches(msg, m.keys.Delete):
		if owned {
			d.confirm = true
		}
	case key.Matches(msg, m.keys.Export):
		if d.recipe != nil {
			var blob *photo.Blob
			if b, ok := m.resolver.Blob(d.recipe.PhotoURL); ok {
				blob = &b
			}
			return m, exportCmd(m.exportDir, *d.recipe, blob)
		}
	default:
		var cmd tea.Cmd
		d.viewport, cmd = d.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}
