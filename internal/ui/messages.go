package ui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/galley/internal/api"
	"github.com/five82/galley/internal/export"
	"github.com/five82/galley/internal/photo"
	"github.com/five82/galley/internal/recipe"
	"github.com/five82/galley/internal/session"
)

// Messages

type sessionReadyMsg struct{}

type sessionEventMsg session.Event

type recipesMsg struct {
	gen     int
	recipes []recipe.Recipe
	err     error
}

type recipeMsg struct {
	gen    int
	recipe recipe.Recipe
	err    error
}

type editLoadedMsg struct {
	gen    int
	recipe recipe.Recipe
	err    error
}

type hydratedMsg struct {
	gen int
	url string
}

type savedMsg struct {
	gen    int
	create bool
	id     string
	err    error
}

type deletedMsg struct {
	gen int
	id  string
	err error
}

type authMsg struct {
	gen      int
	register bool
	err      error
}

type exportedMsg struct {
	path string
	err  error
}

// Commands

func hydrateCmd(s Session) tea.Cmd {
	return func() tea.Msg {
		s.Hydrate()
		return sessionReadyMsg{}
	}
}

func waitForSessionEvent(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return sessionEventMsg(ev)
	}
}

func loadRecipesCmd(ctx context.Context, gen int, svc Service, resolver *photo.Resolver) tea.Cmd {
	return func() tea.Msg {
		items, err := svc.ListRecipes(ctx)
		if err != nil {
			return recipesMsg{gen: gen, err: err}
		}
		recipes := recipe.NormalizeAll(items)
		refs := make([]string, len(recipes))
		for i, r := range recipes {
			refs[i] = r.PhotoRef
		}
		if urls := resolver.ResolveAll(ctx, refs); urls != nil {
			for i := range recipes {
				recipes[i] = recipes[i].WithPhotoURL(urls[i])
			}
		}
		return recipesMsg{gen: gen, recipes: recipes}
	}
}

func loadRecipeCmd(ctx context.Context, gen int, svc Service, resolver *photo.Resolver, id string) tea.Cmd {
	return func() tea.Msg {
		b, err := svc.GetRecipe(ctx, id)
		if err != nil {
			return recipeMsg{gen: gen, err: err}
		}
		r := recipe.Normalize(b)
		return recipeMsg{gen: gen, recipe: r.WithPhotoURL(resolver.Resolve(ctx, r.PhotoRef))}
	}
}

func loadEditCmd(ctx context.Context, gen int, svc Service, id string) tea.Cmd {
	return func() tea.Msg {
		b, err := svc.GetRecipe(ctx, id)
		if err != nil {
			return editLoadedMsg{gen: gen, err: err}
		}
		return editLoadedMsg{gen: gen, recipe: recipe.Normalize(b)}
	}
}

func hydrateDraftCmd(ctx context.Context, gen int, resolver *photo.Resolver, ref string) tea.Cmd {
	return func() tea.Msg {
		return hydratedMsg{gen: gen, url: resolver.Resolve(ctx, ref)}
	}
}

// Writes run on the application context: leaving the form does not abort a
// save already sent.
func saveCmd(ctx context.Context, gen int, svc Service, id string, sub recipe.Submission) tea.Cmd {
	return func() tea.Msg {
		if id == "" {
			b, err := svc.CreateRecipe(ctx, sub)
			if err != nil {
				return savedMsg{gen: gen, create: true, err: err}
			}
			return savedMsg{gen: gen, create: true, id: recipe.Normalize(b).ID}
		}
		if _, err := svc.UpdateRecipe(ctx, id, sub); err != nil {
			return savedMsg{gen: gen, id: id, err: err}
		}
		return savedMsg{gen: gen, id: id}
	}
}

func deleteCmd(ctx context.Context, gen int, svc Service, id string) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{gen: gen, id: id, err: svc.DeleteRecipe(ctx, id)}
	}
}

func authCmd(ctx context.Context, gen int, svc Service, s Session, register bool, name, email, password string) tea.Cmd {
	return func() tea.Msg {
		email = strings.TrimSpace(email)
		if register {
			reg := api.Registration{Name: strings.TrimSpace(name), Email: email, Password: password}
			if err := svc.Register(ctx, reg); err != nil {
				return authMsg{gen: gen, register: true, err: err}
			}
		}
		return authMsg{gen: gen, register: register, err: s.Login(ctx, email, password)}
	}
}

func exportCmd(dir string, r recipe.Recipe, blob *photo.Blob) tea.Cmd {
	return func() tea.Msg {
		path, err := export.Write(dir, r, blob)
		return exportedMsg{path: path, err: err}
	}
}
