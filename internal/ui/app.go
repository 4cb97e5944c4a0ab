package ui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/galley/internal/api"
	"github.com/five82/galley/internal/markdown"
	"github.com/five82/galley/internal/photo"
	"github.com/five82/galley/internal/prefs"
	"github.com/five82/galley/internal/recipe"
	"github.com/five82/galley/internal/route"
	"github.com/five82/galley/internal/session"
)

// Service is the part of the API client the views call.
type Service interface {
	ListRecipes(ctx context.Context) ([]recipe.Backend, error)
	GetRecipe(ctx context.Context, id string) (recipe.Backend, error)
	CreateRecipe(ctx context.Context, s recipe.Submission) (recipe.Backend, error)
	UpdateRecipe(ctx context.Context, id string, s recipe.Submission) (recipe.Backend, error)
	DeleteRecipe(ctx context.Context, id string) error
	Register(ctx context.Context, reg api.Registration) error
}

// Session is the signed-in identity as the views see it.
type Session interface {
	Hydrate()
	State() session.State
	Login(ctx context.Context, email, password string) error
	Logout()
	Events() <-chan session.Event
	Expiry() (time.Time, bool)
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Service   Service
	Session   Session
	Resolver  *photo.Resolver
	Renderer  *markdown.Renderer
	Logger    *slog.Logger
	Prefs     prefs.Prefs
	PrefsPath string
	ExportDir string
	StartPath string
}

// scope is the lifetime of one visited view. Leaving the view cancels its
// context and releases every photo URL it holds; results tagged with an older
// gen are stale.
type scope struct {
	gen    int
	ctx    context.Context
	cancel context.CancelFunc
	slots  *photo.Slots
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	service   Service
	session   Session
	resolver  *photo.Resolver
	renderer  *markdown.Renderer
	logger    *slog.Logger
	keys      keyMap
	prefs     prefs.Prefs
	prefsPath string
	exportDir string

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool
	spinner  spinner.Model
	toast    toast
	toastSeq int

	// Routing
	route   route.Route
	pending bool // guard is waiting for the session to hydrate
	scope   scope
	initCmd tea.Cmd

	// Views
	list   *listView
	detail *detailView
	form   *formView
	edit   editGate
	login  *loginView
}

// New creates the root model and enters the start route.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p := opts.Prefs
	if p.Theme == "" {
		p = prefs.Default()
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = markdown.NewRenderer("dark")
	}

	m := Model{
		ctx:       ctx,
		service:   opts.Service,
		session:   opts.Session,
		resolver:  opts.Resolver,
		renderer:  renderer,
		logger:    logger,
		keys:      DefaultKeyMap(),
		prefs:     p,
		prefsPath: opts.PrefsPath,
		exportDir: opts.ExportDir,
		theme:     GetTheme(p.Theme),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		list:      newListView(),
		width:     80,
		height:    24,
	}
	m.initCmd = m.navigate(route.Parse(opts.StartPath))
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.initCmd,
		hydrateCmd(m.session),
		waitForSessionEvent(m.session.Events()),
		m.spinner.Tick,
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case toastExpiredMsg:
		if msg.id == m.toast.id {
			m.toast = toast{}
		}
		return m, nil

	case sessionReadyMsg:
		if m.pending {
			return m, m.navigate(m.route)
		}
		return m, nil

	case sessionEventMsg:
		cmd := m.handleSessionEvent(session.Event(msg))
		return m, tea.Batch(cmd, waitForSessionEvent(m.session.Events()))

	case recipesMsg:
		return m, m.handleRecipes(msg)

	case recipeMsg:
		return m, m.handleRecipe(msg)

	case editLoadedMsg:
		return m, m.handleEditLoaded(msg)

	case hydratedMsg:
		m.handleHydrated(msg)
		return m, nil

	case savedMsg:
		return m, m.handleSaved(msg)

	case deletedMsg:
		return m, m.handleDeleted(msg)

	case authMsg:
		return m, m.handleAuth(msg)

	case exportedMsg:
		if msg.err != nil {
			m.logger.Warn("export failed", "error", msg.err)
			return m, m.notify(toastError, "Export failed")
		}
		return m, m.notify(toastSuccess, "Exported to "+msg.path)
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	body := clampLines(m.renderContent(bodyHeight), bodyHeight)
	if pad := bodyHeight - lipgloss.Height(body); pad > 0 {
		body += strings.Repeat("\n", pad)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderContent(height int) string {
	if m.pending {
		return m.theme.Styles().MutedText.Render(m.spinner.View() + " Loading...")
	}
	switch m.route.Name {
	case route.Login:
		return m.renderLogin()
	case route.Detail:
		return m.renderDetail()
	case route.Create, route.Edit:
		return m.renderForm(height)
	default:
		return m.renderList(height)
	}
}

// typing reports whether keystrokes belong to a text input, in which case
// single-letter global shortcuts are not interpreted.
func (m Model) typing() bool {
	if m.pending {
		return false
	}
	switch m.route.Name {
	case route.Login:
		return true
	case route.Create, route.Edit:
		return m.form != nil
	case route.List:
		return m.list.searching
	}
	return false
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case msg.String() == "ctrl+c":
		m.leave()
		return m, tea.Quit
	case !m.typing() && msg.String() == "?":
		m.showHelp = true
		return m, nil
	case !m.typing() && msg.String() == "T":
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil
	}

	if m.pending {
		return m, nil
	}
	switch m.route.Name {
	case route.Login:
		return m.handleLoginKey(msg)
	case route.Detail:
		return m.handleDetailKey(msg)
	case route.Create, route.Edit:
		return m.handleFormKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

// navigate leaves the current view and enters r, subject to the route guard.
func (m *Model) navigate(r route.Route) tea.Cmd {
	m.leave()

	switch route.Guard(r, m.session.State()) {
	case route.Pending:
		m.route = r
		m.pending = true
		return nil
	case route.RedirectLogin:
		r = route.Route{Name: route.Login}
	}
	m.pending = false
	m.route = r
	m.enter()
	m.logger.Debug("navigate", "path", r.Path(), "gen", m.scope.gen)

	switch r.Name {
	case route.Login:
		m.login = newLoginView()
		return m.login.focusCmd()
	case route.Create:
		m.form = newFormView("", nil, m.resolver.Objects(), m.width)
		return m.form.focusCmd()
	case route.Edit:
		m.edit = editGate{loading: true}
		return loadEditCmd(m.scope.ctx, m.scope.gen, m.service, r.ID)
	case route.Detail:
		m.detail = newDetailView(m.width, m.height)
		return loadRecipeCmd(m.scope.ctx, m.scope.gen, m.service, m.resolver, r.ID)
	default:
		m.list.reset()
		return loadRecipesCmd(m.scope.ctx, m.scope.gen, m.service, m.resolver)
	}
}

func (m *Model) enter() {
	ctx, cancel := context.WithCancel(m.ctx)
	m.scope = scope{
		gen:    m.scope.gen + 1,
		ctx:    ctx,
		cancel: cancel,
		slots:  photo.NewSlots(m.resolver),
	}
}

// leave tears down the current view.
func (m *Model) leave() {
	if m.scope.cancel != nil {
		m.scope.cancel()
	}
	if m.scope.slots != nil {
		m.scope.slots.ReleaseAll()
	}
	if m.form != nil {
		m.form.draft.Close()
		m.form = nil
	}
	m.detail = nil
	m.login = nil
	m.edit = editGate{}
	m.list.confirm = ""
}

// stale reports whether a result for gen arrived after its view was left.
func (m Model) stale(gen int) bool {
	return gen != m.scope.gen || m.pending
}

func (m *Model) handleSessionEvent(ev session.Event) tea.Cmd {
	switch ev.Kind {
	case session.EventExpired:
		cmds := []tea.Cmd{m.notify(toastError, ev.Message)}
		if m.route.Protected() && !m.pending {
			cmds = append(cmds, m.navigate(m.route))
		}
		return tea.Batch(cmds...)
	default:
		return nil
	}
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save prefs", "error", err)
	}
}

func (m *Model) resize() {
	if m.detail != nil {
		m.detail.resize(m.width, m.height-2)
		m.detail.setContent(m.detailContent())
	}
	if m.form != nil {
		m.form.resize(m.width)
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	final, err := tea.NewProgram(m, programOpts...).Run()
	if fm, ok := final.(Model); ok {
		fm.leave()
	}
	return err
}
