package app

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nhle/planit/internal/i18n"
	"github.com/nhle/planit/internal/logging"
	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/recurrence"
	"github.com/nhle/planit/internal/service"
	"github.com/nhle/planit/internal/ui"
	"github.com/nhle/planit/internal/ui/command"
	"github.com/nhle/planit/internal/ui/detail"
	"github.com/nhle/planit/internal/ui/groupmgr"
	helpview "github.com/nhle/planit/internal/ui/help"
	"github.com/nhle/planit/internal/ui/taskform"
	"github.com/nhle/planit/internal/ui/tasklist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewTaskForm
	ViewGroups
	ViewHelp
	ViewCommand
)

// dayCheckInterval is how often the UI checks for a date change.
const dayCheckInterval = time.Minute

// dayTickMsg carries the current date for rollover detection.
type dayTickMsg struct {
	today recurrence.Date
}

// Options wires the root model to its services and settings.
type Options struct {
	Tasks  *service.TaskService
	Groups *service.GroupService
	Config *model.AppConfig

	// ConfigPath receives display setting changes. Empty disables saving.
	ConfigPath string
	Logger     *log.Logger
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the services.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	tasks        *service.TaskService
	groups       *service.GroupService
	cfg          *model.AppConfig
	cfgPath      string
	logger       *log.Logger
	cat          *i18n.Catalog
	keys         *KeyMap
	taskList     tasklist.Model
	detail       detail.Model
	taskForm     taskform.Model
	groupView    groupmgr.Model
	helpView     helpview.Model
	commandView  command.Model
	flash        string
	day          recurrence.Date
	ready        bool
}

// New creates a new root application model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = model.DefaultAppConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	keys := DefaultKeyMap()
	cat := i18n.New(cfg.Display.Language)

	return Model{
		currentView: ViewList,
		tasks:       opts.Tasks,
		groups:      opts.Groups,
		cfg:         cfg,
		cfgPath:     opts.ConfigPath,
		logger:      logger,
		cat:         cat,
		keys:        keys,
		taskList:    tasklist.New(opts.Tasks, opts.Groups, cat, keys, 80, 24),
		detail:      detail.New(opts.Tasks, opts.Groups, cat, keys, 80, 24),
		taskForm:    taskform.New(cat, 80, 24),
		groupView:   groupmgr.New(opts.Groups, cat, keys, 80, 24),
		helpView:    helpview.New(keys, cat, 80, 24),
		commandView: command.New(cat, 80, 24),
		day:         opts.Tasks.Today(),
	}
}

// Init returns the initial commands to load tasks and watch for the
// date to change.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.taskList.Init(), m.watchDay())
}

// watchDay schedules the next date check.
func (m Model) watchDay() tea.Cmd {
	tasks := m.tasks
	return tea.Tick(dayCheckInterval, func(time.Time) tea.Msg {
		return dayTickMsg{today: tasks.Today()}
	})
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.taskList.SetSize(contentWidth, contentHeight)
		m.detail.SetSize(contentWidth, contentHeight)
		m.taskForm.SetSize(contentWidth, contentHeight)
		m.groupView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case dayTickMsg:
		if msg.today == m.day {
			return m, m.watchDay()
		}
		m.logger.Info("date changed", "today", msg.today)
		m.day = msg.today
		return m, tea.Batch(m.refreshAll(), m.watchDay())

	case tasklist.TasksLoadedMsg:
		if msg.Err != nil {
			m.logger.Error("loading tasks", "err", msg.Err)
		}
		var cmd tea.Cmd
		m.taskList, cmd = m.taskList.Update(msg)
		return m, cmd

	case tasklist.SelectedTaskMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detail.SetLoading(true)
		return m, m.detail.Load(msg.TaskID)

	case detail.LoadedMsg:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case detail.ActionMsg:
		return m, m.applyOccurrenceAction(msg)

	case occurrenceResultMsg:
		m.setResult(msg.flash, msg.err)
		cmds := []tea.Cmd{m.taskList.LoadTasks()}
		if m.currentView == ViewDetail && m.detail.CurrentTaskID() == msg.taskID {
			cmds = append(cmds, m.detail.Load(msg.taskID))
		}
		return m, tea.Batch(cmds...)

	case formGroupsLoadedMsg:
		m.taskForm.SetGroups(msg.groups)
		var cmd tea.Cmd
		if msg.edit != nil {
			cmd = m.taskForm.StartEdit(*msg.edit)
		} else {
			cmd = m.taskForm.StartCreate()
		}
		return m, cmd

	case taskform.TaskSubmittedMsg:
		m.currentView = ViewList
		return m, m.saveTask(msg.Task)

	case taskform.FormCancelMsg:
		m.currentView = ViewList
		return m, nil

	case taskResultMsg:
		m.setResult(msg.flash, msg.err)
		return m, m.taskList.LoadTasks()

	case settingsSavedMsg:
		if msg.err != nil {
			m.logger.Warn("saving settings", "path", m.cfgPath, "err", msg.err)
			m.flash = m.cat.T(i18n.ErrorPrefix, msg.err)
		}
		return m, nil

	case groupmgr.CloseMsg:
		m.currentView = ViewList
		return m, m.taskList.LoadTasks()

	case groupmgr.ChangedMsg:
		return m, m.taskList.LoadTasks()

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(msg)
		return m, cmd

	case command.ErrorMsg:
		m.currentView = m.previousView
		m.flash = m.cat.T(i18n.UnknownCmd, msg.Err)
		return m, nil

	case tea.KeyMsg:
		if mdl, cmd, handled := m.handleGlobalKey(msg); handled {
			return mdl, cmd
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys owned by the root model. It reports
// false when the key belongs to the active view.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit, true
	}
	if m.currentView == ViewList && m.taskList.Searching() {
		return m, nil, false
	}

	switch m.currentView {
	case ViewList, ViewDetail, ViewHelp:
		switch {
		case key.Matches(msg, m.keys.Help):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil, true
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil, true

		case key.Matches(msg, m.keys.Command):
			m.previousView = m.currentView
			m.currentView = ViewCommand
			cmd := m.commandView.Focus()
			return m, cmd, true

		case m.currentView == ViewHelp && key.Matches(msg, m.keys.Back):
			m.currentView = m.previousView
			return m, nil, true
		}

	case ViewCommand:
		if key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil, true
		}
	}

	if m.currentView != ViewList {
		return m, nil, false
	}

	m.flash = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.New):
		m.previousView = m.currentView
		m.currentView = ViewTaskForm
		return m, m.loadFormGroups(nil), true

	case key.Matches(msg, m.keys.Edit):
		task, ok := m.taskList.SelectedTask()
		if !ok {
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewTaskForm
		return m, m.loadFormGroups(&task), true

	case key.Matches(msg, m.keys.Done):
		task, ok := m.taskList.SelectedTask()
		if !ok {
			return m, nil, true
		}
		return m, m.toggleDone(task), true

	case key.Matches(msg, m.keys.Delete):
		task, ok := m.taskList.SelectedTask()
		if !ok {
			return m, nil, true
		}
		return m, m.deleteTask(task), true

	case key.Matches(msg, m.keys.Archive):
		task, ok := m.taskList.SelectedTask()
		if !ok {
			return m, nil, true
		}
		return m, m.archiveTask(task), true

	case key.Matches(msg, m.keys.ClearCompleted):
		return m, m.clearCompleted(), true

	case key.Matches(msg, m.keys.Groups):
		m.previousView = m.currentView
		m.currentView = ViewGroups
		return m, m.groupView.Init(), true

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshAll(), true

	case key.Matches(msg, m.keys.ToggleLanguage):
		cmd := m.setLanguage(m.cfg.Display.Language.Toggle())
		return m, cmd, true

	case key.Matches(msg, m.keys.CycleDashboard):
		cmd := m.setDashboardMode(m.cfg.Display.DashboardMode.Next())
		return m, cmd, true
	}
	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewTaskForm:
		m.taskForm, cmd = m.taskForm.Update(msg)
	case ViewGroups:
		m.groupView, cmd = m.groupView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return m.cat.T(i18n.Loading)
	}

	summary := ui.DashboardSummary(m.taskList.Dashboard(), m.cfg.Display.DashboardMode, m.cat)
	header := m.layout.RenderHeader(m.cat.T(i18n.AppTitle), summary)
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.flash)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.taskList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewTaskForm:
		return m.taskForm.View()
	case ViewGroups:
		return m.groupView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return m.cat.T(i18n.HintHelp)
	case ViewCommand:
		return m.cat.T(i18n.HintCommand)
	case ViewDetail:
		return m.cat.T(i18n.HintDetail)
	case ViewTaskForm:
		return m.cat.T(i18n.HintForm)
	case ViewGroups:
		return m.cat.T(i18n.HintGroups)
	default:
		return m.cat.T(i18n.HintList)
	}
}

func (m *Model) setResult(flash string, err error) {
	if err != nil {
		m.logger.Error("task action failed", "err", err)
		m.flash = m.cat.T(i18n.ErrorPrefix, err)
		return
	}
	m.flash = flash
}

// executeCommand handles a parsed command from the command palette.
func (m *Model) executeCommand(cmd command.CommandMsg) tea.Cmd {
	switch cmd.Kind {
	case command.Refresh:
		return m.refreshAll()
	case command.Today:
		m.currentView = ViewList
		return m.taskList.ToggleToday()
	case command.ClearCompleted:
		return m.clearCompleted()
	case command.Groups:
		m.previousView = ViewList
		m.currentView = ViewGroups
		return m.groupView.Init()
	case command.Language:
		lang := cmd.Language
		if lang == "" {
			lang = m.cfg.Display.Language.Toggle()
		}
		return m.setLanguage(lang)
	case command.Dashboard:
		mode := cmd.DashboardMode
		if mode == "" {
			mode = m.cfg.Display.DashboardMode.Next()
		}
		return m.setDashboardMode(mode)
	case command.Quit:
		return tea.Quit
	default:
		return nil
	}
}

func (m *Model) setLanguage(lang model.Language) tea.Cmd {
	m.cfg.Display.Language = lang
	m.cat.SetLanguage(lang)
	m.taskList.RefreshLabels()
	m.flash = m.cat.T(i18n.LanguageChanged)
	return tea.Batch(m.saveSettings(), m.taskList.LoadTasks())
}

func (m *Model) setDashboardMode(mode model.DashboardMode) tea.Cmd {
	m.cfg.Display.DashboardMode = mode
	return m.saveSettings()
}
