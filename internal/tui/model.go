package tui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/garrettladley/pulse/internal/events"
	"github.com/garrettladley/pulse/internal/settings"
	"github.com/garrettladley/pulse/internal/tui/components/footer"
	"github.com/garrettladley/pulse/internal/tui/page/dashboard"
	"github.com/garrettladley/pulse/internal/tui/page/onboarding"
	settingspage "github.com/garrettladley/pulse/internal/tui/page/settings"
	"github.com/garrettladley/pulse/internal/tui/page/splash"
	"github.com/garrettladley/pulse/internal/tui/theme"
	"github.com/garrettladley/pulse/internal/xslog"
)

var _ tea.Model = (*Model)(nil)

type page uint

const (
	splashPage page = iota
	onboardingPage
	mainPage
)

type tab uint

const (
	dashboardTab tab = iota
	settingsTab
)

type state struct {
	splashDone  bool
	authChecked bool
	hasToken    bool

	onboarding onboarding.State
	dashboard  dashboard.State
	settings   settingspage.State
}

type Model struct {
	ready          bool
	page           page
	tab            tab
	viewportWidth  int
	viewportHeight int
	theme          theme.Theme
	state          state
	deps           Deps

	settingsCh  <-chan settings.State
	eventsCh    <-chan events.Event
	unsubscribe []func()
}

func New(deps Deps) Model {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = xslog.Discard()
	}

	m := Model{
		page:  splashPage,
		theme: theme.New(),
		deps:  deps,
	}

	settingsCh, unsubSettings := deps.Settings.Subscribe()
	eventsCh, unsubEvents := deps.Events.Subscribe(events.DataSyncCompleted, events.DataWindowChanged)
	m.settingsCh = settingsCh
	m.eventsCh = eventsCh
	m.unsubscribe = []func(){unsubSettings, unsubEvents}
	m.state.settings.Apply(deps.Settings.State())
	return m
}

// Close releases the model's subscriptions.
func (m *Model) Close() {
	for _, fn := range m.unsubscribe {
		fn()
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tea.Tick(splash.Duration, func(time.Time) tea.Msg {
			return splash.TickMsg{}
		}),
		onboarding.CheckAuthCmd(m.deps.Ctx, m.deps.TokenChecker),
		listenSettingsCmd(m.settingsCh),
		listenEventsCmd(m.eventsCh),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewportWidth = msg.Width
		m.viewportHeight = msg.Height
		m.ready = true

	case tea.KeyMsg:
		return m, m.handleKey(msg.String())

	case splash.TickMsg:
		m.state.splashDone = true
		return m, m.leaveSplash()

	case onboarding.AuthStatusMsg:
		m.state.authChecked = true
		m.state.dashboard.AuthIndicator.Checked = true
		if msg.Err != nil {
			m.deps.Logger.WarnContext(m.deps.Ctx, "failed to check token", xslog.Error(msg.Err))
		} else {
			m.state.hasToken = msg.HasToken
			m.state.dashboard.AuthIndicator.Authenticated = msg.HasToken
		}
		return m, m.leaveSplash()

	case onboarding.AuthorizeResultMsg:
		m.state.onboarding.Started = false
		m.state.onboarding.Apply(m.deps.Settings.State())
		if msg.Err != nil {
			return m, nil
		}
		return m, tea.Batch(
			onboarding.CheckAuthCmd(m.deps.Ctx, m.deps.TokenChecker),
			m.startSync(),
		)

	case SettingsStateMsg:
		m.state.settings.Apply(msg.State)
		m.state.onboarding.Apply(msg.State)
		m.state.dashboard.AuthIndicator.Authorizing = msg.State.IsAuthorizing
		m.state.dashboard.Syncing = msg.State.IsSyncing || msg.State.IsResetting
		m.state.dashboard.Progress = msg.State.SyncProgress
		return m, listenSettingsCmd(m.settingsCh)

	case DataChangedMsg:
		return m, tea.Batch(m.evaluate(), listenEventsCmd(m.eventsCh))

	case dashboard.EvaluationMsg:
		m.state.dashboard.Loading = false
		m.state.dashboard.Err = msg.Err
		if msg.Err == nil {
			m.state.dashboard.Evaluation = msg.Evaluation
		}

	case dashboard.SyncDoneMsg:
		m.state.dashboard.Syncing = false
		if msg.Err != nil {
			m.deps.Logger.ErrorContext(m.deps.Ctx, "sync failed", xslog.Error(msg.Err))
			m.state.dashboard.Err = msg.Err
		}

	case ConfirmationMsg:
		switch {
		case msg.Err != nil:
			m.state.settings.Notice = msg.Err.Error()
		case msg.Confirmation == nil:
			m.state.settings.Notice = "Historical window unchanged"
		default:
			m.state.settings.Confirmation = msg.Confirmation
		}

	case OperationDoneMsg:
		m.state.settings.Notice = operationNotice(msg)
		if msg.Confirmation != nil && refused(msg.Err) {
			// still pending on the surface; offer it again
			m.state.settings.Confirmation = msg.Confirmation
		}
		if msg.Operation == settings.OpAuthorize && msg.Err == nil {
			return m, onboarding.CheckAuthCmd(m.deps.Ctx, m.deps.TokenChecker)
		}
		if msg.Operation == settings.OpClearCache && msg.Err == nil {
			return m, m.evaluate()
		}
	}

	return m, nil
}

func (m *Model) handleKey(key string) tea.Cmd {
	if key == "ctrl+c" {
		return tea.Quit
	}
	if key == "q" && m.state.settings.Confirmation == nil {
		return tea.Quit
	}

	switch m.page {
	case onboardingPage:
		if key == "enter" && m.state.onboarding.CanStart() {
			m.state.onboarding.Started = true
			return onboarding.AuthorizeCmd(m.deps.Ctx, m.deps.Settings)
		}
	case mainPage:
		return m.handleMainKey(key)
	}
	return nil
}

func (m *Model) handleMainKey(key string) tea.Cmd {
	if m.tab == settingsTab && m.state.settings.Confirmation != nil {
		return m.handleIntent(m.state.settings.HandleKey(key))
	}

	switch key {
	case "tab":
		m.tab = (m.tab + 1) % 2
		return nil
	case "1":
		m.tab = dashboardTab
		return nil
	case "2":
		m.tab = settingsTab
		return nil
	}

	if m.tab == settingsTab {
		return m.handleIntent(m.state.settings.HandleKey(key))
	}

	switch key {
	case "s":
		if !m.state.dashboard.Syncing {
			return m.startSync()
		}
	case "r":
		return m.evaluate()
	}
	return nil
}

func (m *Model) handleIntent(intent settingspage.Intent) tea.Cmd {
	var (
		ctx     = m.deps.Ctx
		surface = m.deps.Settings
	)

	switch intent.Action {
	case settingspage.ActionReauthorize:
		return operationCmd(settings.OpAuthorize, func() error { return surface.RequestReauthorization(ctx) })
	case settingspage.ActionChangeWindow:
		return updateWindowCmd(ctx, surface, intent.Years)
	case settingspage.ActionClassify:
		return operationCmd(settings.OpClassify, func() error { return surface.ClassifyAllWorkouts(ctx) })
	case settingspage.ActionClearCache:
		return requestConfirmationCmd(surface.RequestClearAnalysisCache)
	case settingspage.ActionReset:
		return requestConfirmationCmd(surface.RequestResetAllData)
	case settingspage.ActionConfirm:
		c := m.state.settings.Confirmation
		m.state.settings.Confirmation = nil
		return confirmCmd(ctx, surface, c)
	case settingspage.ActionDecline:
		c := m.state.settings.Confirmation
		m.state.settings.Confirmation = nil
		if err := surface.Decline(c); err != nil {
			m.state.settings.Notice = err.Error()
		}
	}
	return nil
}

// leaveSplash routes past the splash once the timer fired and the token
// check returned.
func (m *Model) leaveSplash() tea.Cmd {
	if m.page == splashPage && !(m.state.splashDone && m.state.authChecked) {
		return nil
	}
	if !m.state.hasToken {
		if m.page != onboardingPage {
			m.page = onboardingPage
			m.state.onboarding = onboarding.State{}
			m.state.onboarding.Apply(m.deps.Settings.State())
		}
		return nil
	}
	if m.page == mainPage {
		return nil
	}
	m.page = mainPage
	return m.evaluate()
}

func (m *Model) evaluate() tea.Cmd {
	m.state.dashboard.Loading = true
	return dashboard.EvaluateCmd(m.deps.Ctx, m.deps.Engine, m.deps.Now())
}

func (m *Model) startSync() tea.Cmd {
	m.state.dashboard.Syncing = true
	return dashboard.SyncCmd(m.deps.Ctx, m.deps.Syncer)
}

func (m *Model) View() tea.View {
	view := tea.NewView("")
	view.AltScreen = true

	// splash uses pure black BG, everything else uses default dark
	if m.page == splashPage {
		view.BackgroundColor = theme.ColorInk
	} else {
		view.BackgroundColor = m.theme.Background()
	}

	if !m.ready {
		return view
	}

	var content string
	switch m.page {
	case splashPage:
		content = splash.View(m.theme, m.viewportWidth, m.viewportHeight)
	case onboardingPage:
		content = onboarding.View(m.theme, m.state.onboarding, m.viewportWidth, m.viewportHeight)
	case mainPage:
		content = m.mainView()
	}

	view.SetContent(content)
	return view
}

func (m *Model) mainView() string {
	var (
		header     = m.tabsView()
		foot       = footer.New(dashboard.AuthIndicatorView(m.state.dashboard), m.viewportWidth).Render()
		bodyHeight = max(m.viewportHeight-lipgloss.Height(header)-lipgloss.Height(foot), 0)
	)

	var body string
	switch m.tab {
	case dashboardTab:
		body = dashboard.View(m.state.dashboard, m.viewportWidth, bodyHeight)
	case settingsTab:
		body = settingspage.View(m.theme, m.state.settings, m.viewportWidth, bodyHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, foot)
}

func (m *Model) tabsView() string {
	var (
		active   = m.theme.Title().Underline(true)
		inactive = m.theme.Muted()
		hint     = m.theme.Muted()
	)

	names := []string{"1 Dashboard", "2 Settings"}
	rendered := make([]string, len(names))
	for i, name := range names {
		if tab(i) == m.tab {
			rendered[i] = active.Render(name)
		} else {
			rendered[i] = inactive.Render(name)
		}
	}

	keys := "s sync · r refresh · tab switch · q quit"
	if m.tab == settingsTab {
		keys = "↑↓ select · ←→ window · enter apply · tab switch · q quit"
	}

	return lipgloss.NewStyle().Padding(1, 2, 0).Render(
		strings.Join(rendered, "   ") + "   " + hint.Render(keys),
	)
}
