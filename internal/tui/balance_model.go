package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/energyprophet/internal/balancer"
	"github.com/rshade/energyprophet/internal/engine"
	"github.com/rshade/energyprophet/internal/logging"
)

// BalanceState is the screen the balance TUI is showing.
type BalanceState int

const (
	// BalanceStateEditing is the interactive balancing screen.
	BalanceStateEditing BalanceState = iota
	// BalanceStateAnalyzing means an analysis request is in flight.
	BalanceStateAnalyzing
	// BalanceStateResult shows the finished analysis.
	BalanceStateResult
	// BalanceStateError shows an analysis error.
	BalanceStateError
	// BalanceStateQuitting indicates the program is exiting.
	BalanceStateQuitting
)

// NotBalancedTip is shown when analysis is requested before the mix settles.
const NotBalancedTip = "Finish your prediction to analyze"

// Default dimensions for the balance model.
const (
	balanceDefaultWidth  = 80
	balanceDefaultHeight = 24
	progressBarPadding   = 4
)

// AnalyzeFunc runs the diff engine and narrative for the session's changes.
type AnalyzeFunc func(ctx context.Context, countryID string, changes []engine.UserChange) (*engine.AnalysisResult, error)

// balanceSettleMsg fires when a debounce timer expires.
type balanceSettleMsg struct {
	ticket balancer.Ticket
}

// balanceAnalysisMsg carries a finished analysis.
type balanceAnalysisMsg struct {
	result *engine.AnalysisResult
	err    error
}

// BalanceModel is the Bubble Tea model for the incremental balancer.
type BalanceModel struct {
	ctx context.Context

	countryName string
	targetYear  int

	session  balancer.Session
	debounce balancer.Debounce
	focused  int
	tip      string

	state     BalanceState
	result    *engine.AnalysisResult
	err       error
	analyzeFn AnalyzeFunc

	keys balanceKeyMap
	help help.Model
	bar  progress.Model

	width  int
	height int
}

// NewBalanceModel returns a model over session. analyzeFn may be nil, in
// which case the analyze key only reports the balanced state.
func NewBalanceModel(
	ctx context.Context,
	countryName string,
	targetYear int,
	session balancer.Session,
	debounce balancer.Debounce,
	analyzeFn AnalyzeFunc,
) *BalanceModel {
	m := &BalanceModel{
		ctx:         ctx,
		countryName: countryName,
		targetYear:  targetYear,
		session:     session,
		debounce:    debounce,
		analyzeFn:   analyzeFn,
		state:       BalanceStateEditing,
		keys:        balanceKeys,
		help:        help.New(),
		bar:         progress.New(progress.WithDefaultGradient()),
		width:       balanceDefaultWidth,
		height:      balanceDefaultHeight,
	}
	m.bar.Width = balanceDefaultWidth - progressBarPadding
	return m
}

// Init schedules the first debounce check, which matters when the session
// starts on target.
func (m *BalanceModel) Init() tea.Cmd {
	return m.observe()
}

// Update handles messages and updates the model state.
func (m *BalanceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(msg.Width-progressBarPadding, 10)
		m.help.Width = msg.Width
		return m, nil

	case balanceSettleMsg:
		if m.debounce.Fire(msg.ticket) {
			m.tip = ""
			logging.FromContext(m.ctx).Debug().
				Ctx(m.ctx).
				Str("component", "tui").
				Str("operation", "balance").
				Float64("total_twh", m.session.Total()).
				Msg("mix balanced")
		}
		return m, nil

	case balanceAnalysisMsg:
		return m.handleAnalysisComplete(msg)

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *BalanceModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.state = BalanceStateQuitting
		return m, tea.Quit
	}

	switch m.state {
	case BalanceStateAnalyzing, BalanceStateQuitting:
		return m, nil
	case BalanceStateResult, BalanceStateError:
		// Any other key returns to editing.
		m.state = BalanceStateEditing
		m.err = nil
		return m, nil
	case BalanceStateEditing:
	}

	ids := m.session.IDs()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.focused > 0 {
			m.focused--
		}
	case key.Matches(msg, m.keys.Down):
		if m.focused < len(ids)-1 {
			m.focused++
		}
	case key.Matches(msg, m.keys.Increase):
		if m.focused < len(ids) {
			return m, m.apply(m.session.Increase(ids[m.focused]))
		}
	case key.Matches(msg, m.keys.Decrease):
		if m.focused < len(ids) {
			return m, m.apply(m.session.Decrease(ids[m.focused]))
		}
	case key.Matches(msg, m.keys.Reset):
		return m, m.apply(m.session.Reset())
	case key.Matches(msg, m.keys.Analyze):
		return m, m.analyze()
	}
	return m, nil
}

// apply installs the next session and restarts the debounce.
func (m *BalanceModel) apply(next balancer.Session) tea.Cmd {
	m.session = next
	return m.observe()
}

// observe records the instantaneous balance. Every call invalidates pending
// timers; a new one is scheduled only when the total is on target.
func (m *BalanceModel) observe() tea.Cmd {
	ticket, schedule := m.debounce.Observe(m.session.IsBalanced())
	if !schedule {
		return nil
	}
	return tea.Tick(m.debounce.Interval(), func(time.Time) tea.Msg {
		return balanceSettleMsg{ticket: ticket}
	})
}

func (m *BalanceModel) analyze() tea.Cmd {
	if !m.debounce.Settled() {
		m.tip = NotBalancedTip
		return nil
	}
	m.tip = ""
	if m.analyzeFn == nil {
		return nil
	}
	m.state = BalanceStateAnalyzing

	// Capture before the command runs off the update loop.
	ctx := m.ctx
	countryID := m.session.CountryID()
	changes := m.session.Changes()
	analyzeFn := m.analyzeFn

	return func() tea.Msg {
		result, err := analyzeFn(ctx, countryID, changes)
		return balanceAnalysisMsg{result: result, err: err}
	}
}

func (m *BalanceModel) handleAnalysisComplete(msg balanceAnalysisMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		m.state = BalanceStateError
		return m, nil
	}
	m.result = msg.result
	m.state = BalanceStateResult
	return m, nil
}

// View renders the current view.
func (m *BalanceModel) View() string {
	switch m.state {
	case BalanceStateQuitting:
		return ""
	case BalanceStateAnalyzing:
		return RenderAnalyzingIndicator()
	case BalanceStateError:
		return ErrorStyle.Render("Error: "+m.err.Error()) + "\n\n" + InfoStyle.Render("Press any key to go back.")
	case BalanceStateResult:
		return RenderAnalysisResult(m.result, m.width) + "\n\n" + InfoStyle.Render("Press any key to go back, q to quit.")
	case BalanceStateEditing:
	}
	return m.renderEditingView()
}

func (m *BalanceModel) renderEditingView() string {
	out := RenderBalanceHeader(m.countryName, m.session.CountryID(), m.targetYear, m.session.Target())
	out += "\n\n"
	out += m.bar.ViewAs(m.session.Progress() / percent)
	out += "\n"
	out += RenderBalanceStatus(m.session, m.debounce.State())
	out += "\n\n"
	out += RenderTechnologyTable(m.session, m.focused)
	out += "\n"
	if m.tip != "" {
		out += WarningStyle.Render(m.tip) + "\n"
	}
	out += "\n" + m.help.View(m.keys)
	return out
}

// Session returns the current balancing session.
func (m *BalanceModel) Session() balancer.Session { return m.session }

// Result returns the last analysis, if any.
func (m *BalanceModel) Result() *engine.AnalysisResult { return m.result }

// State returns the screen being shown.
func (m *BalanceModel) State() BalanceState { return m.state }
