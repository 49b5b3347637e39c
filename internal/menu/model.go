package menu

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/videohub/internal/hub"
	"github.com/muurk/videohub/internal/logging"
	"github.com/muurk/videohub/internal/preset"
	"github.com/muurk/videohub/internal/session"
	"github.com/muurk/videohub/internal/ui"
)

// OperationTimeout bounds one read or apply started from the menu
const OperationTimeout = 30 * time.Second

type mode int

const (
	modeMenu mode = iota
	modeInput
	modePick
	modeConfirm
	modeBusy
	modeResult
)

// Action is a menu entry
type Action int

const (
	ActionRead Action = iota
	ActionFullRead
	ActionSave
	ActionLoad
	ActionDelete
	ActionCompare
	ActionApply
	ActionTarget
	ActionQuit
)

type menuEntry struct {
	action      Action
	title       string
	description string
}

var entries = []menuEntry{
	{ActionRead, "Read hub", "Fetch labels and routing"},
	{ActionFullRead, "Read hub (full)", "Also show device information and output locks"},
	{ActionSave, "Save preset", "Write the last read to a preset file"},
	{ActionLoad, "Load preset", "Pick a preset to compare or apply"},
	{ActionDelete, "Delete preset", "Remove a preset file"},
	{ActionCompare, "Compare", "Loaded preset against the last read"},
	{ActionApply, "Apply preset", "Send the loaded preset's routing to the hub"},
	{ActionTarget, "Change hub", "Set the hub address"},
	{ActionQuit, "Quit", ""},
}

// input steps of multi-field prompts
const (
	stepTarget = iota
	stepSaveName
	stepSaveDescription
)

// Messages from background operations
type readDoneMsg struct {
	result *hub.FetchResult
	full   bool
	err    error
}

type applyDoneMsg struct {
	result *hub.ApplyResult
	err    error
}

type presetItem struct {
	entry preset.Entry
}

func (p presetItem) Title() string       { return p.entry.Name }
func (p presetItem) FilterValue() string { return p.entry.Name + " " + p.entry.Description }

func (p presetItem) Description() string {
	if p.entry.Err != nil {
		return "unreadable: " + p.entry.Err.Error()
	}
	desc := fmt.Sprintf("%d routes", p.entry.Routes)
	if p.entry.Description != "" {
		desc = p.entry.Description + " • " + desc
	}
	return desc
}

// Model is the interactive menu. It drives one session.
type Model struct {
	session *session.Session

	Width  int
	Height int

	mode   mode
	cursor int

	// prompt state
	input     textinput.Model
	inputStep int
	prompt    string
	saveName  string
	overwrite bool

	// preset picker
	presets    list.Model
	pickAction Action

	// confirmation
	question  string
	onConfirm func(Model) (Model, tea.Cmd)

	// background work
	spinner  spinner.Model
	busyText string

	// result screen
	viewport viewport.Model
	title    string

	help help.Model
	keys keyMaps

	// Quitting is set once the user leaves the menu
	Quitting bool
}

// New creates the menu for s
func New(s *session.Session) Model {
	width, height := ui.GetTerminalSize()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	in := textinput.New()
	in.CharLimit = 253
	in.Width = 50

	pl := list.New(nil, list.NewDefaultDelegate(), width-6, contentHeight(height))
	pl.Title = "Presets"
	pl.SetShowStatusBar(false)
	pl.SetShowHelp(false)
	pl.Styles.Title = TitleStyle

	return Model{
		session:  s,
		Width:    width,
		Height:   height,
		input:    in,
		presets:  pl,
		spinner:  sp,
		viewport: viewport.New(width-6, contentHeight(height)),
		help:     help.New(),
		keys:     newKeyMaps(),
	}
}

// Run starts the menu on the alternate screen and blocks until the user quits
func Run(s *session.Session) error {
	_, err := tea.NewProgram(New(s), tea.WithAltScreen()).Run()
	return err
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.presets.SetSize(msg.Width-6, contentHeight(msg.Height))
		m.viewport.Width = msg.Width - 6
		m.viewport.Height = contentHeight(msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}

	case readDoneMsg:
		return m.finishRead(msg), nil

	case applyDoneMsg:
		return m.finishApply(msg), nil

	case spinner.TickMsg:
		if m.mode != modeBusy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	switch m.mode {
	case modeMenu:
		return m.updateMenu(msg)
	case modeInput:
		return m.updateInput(msg)
	case modePick:
		return m.updatePick(msg)
	case modeConfirm:
		return m.updateConfirm(msg)
	case modeResult:
		return m.updateResult(msg)
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Menu.Up):
		m.cursor = (m.cursor - 1 + len(entries)) % len(entries)
	case key.Matches(keyMsg, m.keys.Menu.Down):
		m.cursor = (m.cursor + 1) % len(entries)
	case key.Matches(keyMsg, m.keys.Menu.Select):
		return m.Select(entries[m.cursor].action)
	case key.Matches(keyMsg, m.keys.Menu.Quit):
		m.Quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// Select runs a menu action as if it had been chosen with the cursor
func (m Model) Select(a Action) (Model, tea.Cmd) {
	logging.Debug("Menu action", zap.Int("action", int(a)))

	switch a {
	case ActionRead, ActionFullRead:
		if !m.session.HasTarget() {
			return m.showError("Read failed", hub.NewPreconditionError("no hub address set, choose Change hub first")), nil
		}
		return m.startBusy(fmt.Sprintf("Reading %s...", m.session.Target()), readCmd(m.session, a == ActionFullRead))

	case ActionSave:
		if m.session.Hub == nil {
			return m.showError("Save failed", hub.NewPreconditionError("no hub data available, read the hub first")), nil
		}
		m.overwrite = false
		return m.startInput(stepSaveName, "Preset name", preset.DefaultName, "")

	case ActionLoad, ActionDelete:
		return m.startPick(a)

	case ActionCompare:
		rows, err := m.session.Compare()
		if err != nil {
			return m.showError("Compare failed", err), nil
		}
		title := fmt.Sprintf("Compare %s with %s", m.session.PresetName, m.session.Target())
		return m.showResult(title, ui.RenderComparison(rows)), nil

	case ActionApply:
		p := m.session.Preset
		if p == nil {
			return m.showError("Apply failed", hub.NewPreconditionError("no preset loaded, load a preset first")), nil
		}
		if len(p.Routing) == 0 {
			return m.showResult("Apply", ui.ApplySummary(m.session.PresetName, &hub.ApplyResult{}).SetWidth(m.Width-6).Render()), nil
		}
		m.question = fmt.Sprintf("Apply %s (%d routes) to %s?", m.session.PresetName, len(p.Routing), m.session.Target())
		m.onConfirm = func(m Model) (Model, tea.Cmd) {
			return m.startBusy(fmt.Sprintf("Applying %s...", m.session.PresetName), applyCmd(m.session))
		}
		m.mode = modeConfirm
		return m, nil

	case ActionTarget:
		current := ""
		if m.session.HasTarget() {
			current = m.session.Target()
		}
		return m.startInput(stepTarget, "Hub address (host or host:port)", "192.168.1.248", current)

	case ActionQuit:
		m.Quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) startInput(step int, prompt, placeholder, value string) (Model, tea.Cmd) {
	m.mode = modeInput
	m.inputStep = step
	m.prompt = prompt
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Input.Cancel):
			m.input.Blur()
			m.mode = modeMenu
			return m, nil
		case key.Matches(keyMsg, m.keys.Input.Submit):
			m.input.Blur()
			return m.submitInput(m.input.Value())
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitInput(value string) (Model, tea.Cmd) {
	switch m.inputStep {
	case stepTarget:
		host, port, err := ParseTarget(value)
		if err == nil {
			err = m.session.SetTarget(host, port)
		}
		if err != nil {
			return m.showError("Invalid hub address", err), nil
		}
		return m.showResult("Hub changed", "Target set to "+m.session.Target()+"\n\nRead the hub to refresh its routing."), nil

	case stepSaveName:
		name, err := preset.CleanName(value)
		if err != nil {
			return m.showError("Save failed", err), nil
		}
		m.saveName = name
		if m.session.Store().Exists(name) {
			path, _ := m.session.Store().Path(name)
			m.question = fmt.Sprintf("Preset %s already exists. Overwrite it?", path)
			m.onConfirm = func(m Model) (Model, tea.Cmd) {
				m.overwrite = true
				return m.startInput(stepSaveDescription, "Description (optional)", "", m.session.Hub.Description)
			}
			m.mode = modeConfirm
			return m, nil
		}
		return m.startInput(stepSaveDescription, "Description (optional)", "", m.session.Hub.Description)

	case stepSaveDescription:
		path, err := m.session.Save(m.saveName, strings.TrimSpace(value), m.overwrite)
		if err != nil {
			return m.showError("Save failed", err), nil
		}
		return m.showResult("Preset saved", fmt.Sprintf("%s\n\n%s", path, m.session.Hub.Summary())), nil
	}

	m.mode = modeMenu
	return m, nil
}

func (m Model) startPick(a Action) (Model, tea.Cmd) {
	found, err := m.session.List()
	if err != nil {
		return m.showError("Cannot list presets", err), nil
	}
	if len(found) == 0 {
		return m.showResult("Presets", "No presets found in "+m.session.Store().Dir), nil
	}

	items := make([]list.Item, 0, len(found))
	for _, e := range found {
		items = append(items, presetItem{entry: e})
	}
	cmd := m.presets.SetItems(items)
	m.presets.ResetSelected()
	m.presets.Title = "Load preset"
	if a == ActionDelete {
		m.presets.Title = "Delete preset"
	}
	m.pickAction = a
	m.mode = modePick
	return m, cmd
}

func (m Model) updatePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.presets.FilterState() != list.Filtering {
		switch keyMsg.String() {
		case "esc", "q":
			m.mode = modeMenu
			return m, nil
		case "enter":
			item, ok := m.presets.SelectedItem().(presetItem)
			if !ok {
				return m, nil
			}
			return m.pick(item.entry)
		}
	}

	var cmd tea.Cmd
	m.presets, cmd = m.presets.Update(msg)
	return m, cmd
}

func (m Model) pick(e preset.Entry) (Model, tea.Cmd) {
	if m.pickAction == ActionDelete {
		m.question = fmt.Sprintf("Delete preset %s?", e.Name)
		m.onConfirm = func(m Model) (Model, tea.Cmd) {
			if err := m.session.Delete(e.Name); err != nil {
				return m.showError("Delete failed", err), nil
			}
			return m.showResult("Preset deleted", e.Path), nil
		}
		m.mode = modeConfirm
		return m, nil
	}

	state, err := m.session.Load(e.Name)
	if err != nil {
		return m.showError("Load failed", err), nil
	}
	return m.showResult("Loaded "+e.Name, state.FormatCompact()), nil
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Confirm.Yes):
		next := m.onConfirm
		m.onConfirm = nil
		if next == nil {
			m.mode = modeMenu
			return m, nil
		}
		return next(m)
	case key.Matches(keyMsg, m.keys.Confirm.No):
		m.onConfirm = nil
		m.mode = modeMenu
	}
	return m, nil
}

func (m Model) startBusy(text string, work tea.Cmd) (Model, tea.Cmd) {
	m.mode = modeBusy
	m.busyText = text
	return m, tea.Batch(m.spinner.Tick, work)
}

func readCmd(s *session.Session, full bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
		defer cancel()
		result, err := s.Read(ctx)
		return readDoneMsg{result: result, full: full, err: err}
	}
}

func applyCmd(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
		defer cancel()
		result, err := s.Apply(ctx, nil)
		return applyDoneMsg{result: result, err: err}
	}
}

func (m Model) finishRead(msg readDoneMsg) Model {
	if msg.err != nil {
		return m.showError("Read failed", msg.err)
	}
	return m.showResult("Hub "+m.session.Target(), FormatRead(msg.result, msg.full))
}

// FormatRead renders a fetch result the way the read screens show it
func FormatRead(r *hub.FetchResult, full bool) string {
	var b strings.Builder
	if full {
		b.WriteString(hub.FormatDeviceInfo(r.Preamble))
		b.WriteString("\n")
	}
	b.WriteString(r.State.FormatDetailed())
	if full && len(r.Locks) > 0 {
		b.WriteString("\n")
		b.WriteString(hub.FormatLocks(r.Locks, r.State))
	}
	if n := r.Stats.Skipped(); n > 0 {
		b.WriteString("\n")
		b.WriteString(ui.NoteStyle.Render(fmt.Sprintf("%d malformed records skipped", n)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) finishApply(msg applyDoneMsg) Model {
	if msg.err != nil {
		return m.showError("Apply failed", msg.err)
	}

	var b strings.Builder
	for _, o := range msg.result.Outcomes {
		b.WriteString(ui.RenderOutcome(o))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(ui.ApplySummary(m.session.PresetName, msg.result).SetWidth(m.Width - 6).Render())
	return m.showResult("Apply "+m.session.PresetName, b.String())
}

func (m Model) showResult(title, content string) Model {
	m.mode = modeResult
	m.title = title
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
	return m
}

func (m Model) showError(title string, err error) Model {
	logging.Warn(title, zap.Error(err))
	box := ui.NewFailureResult(title, err, ui.TroubleshootingTips(err)).SetWidth(m.Width - 6).Render()
	return m.showResult(title, box)
}

func (m Model) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.keys.Result.Back) {
		m.mode = modeMenu
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var content, footer string
	switch m.mode {
	case modeMenu:
		content, footer = m.renderMenu(), m.help.View(m.keys.Menu)
	case modeInput:
		content = TitleStyle.Render(m.prompt) + "\n\n" + m.input.View()
		footer = m.help.View(m.keys.Input)
	case modePick:
		content, footer = m.presets.View(), "enter select • / filter • esc back"
	case modeConfirm:
		content = ui.WarningTitleStyle.Render(ui.WarningMarker+"  "+m.question) + "\n"
		footer = m.help.View(m.keys.Confirm)
	case modeBusy:
		content = m.spinner.View() + " " + m.busyText
		footer = "please wait"
	case modeResult:
		content = TitleStyle.Render(m.title) + "\n" + m.viewport.View()
		footer = m.help.View(m.keys.Result)
	}

	return RenderContainer(content, footer, m.Width, m.Height)
}

func (m Model) renderMenu() string {
	var b strings.Builder
	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	for i, e := range entries {
		b.WriteString(RenderMenuItem(e.title, i == m.cursor))
		if i == m.cursor && e.description != "" {
			b.WriteString("  " + DescriptionStyle.Render(e.description))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderStatus() string {
	st := m.session.Status()

	line := func(k, v string) string {
		return StatusKeyStyle.Render(k) + " " + v
	}

	target := st.Target
	if target == "" {
		target = ErrorLineStyle.Render("not set")
	}
	hubLine := "not read"
	if st.HubRead {
		hubLine = st.HubSummary + ", read " + st.HubFetched.Format("15:04:05")
		if st.HubModel != "" {
			hubLine = st.HubModel + " • " + hubLine
		}
	}
	presetLine := "none loaded"
	if st.PresetName != "" {
		presetLine = st.PresetName + " • " + st.PresetSummary
	}

	lines := []string{
		line("Hub", target),
		line("Read", hubLine),
		line("Preset", presetLine),
	}
	if st.Differences >= 0 {
		diff := ui.MatchStyle.Render("matches hub")
		if st.Differences > 0 {
			diff = ui.DiffStyle.Render(fmt.Sprintf("%d outputs differ from hub", st.Differences))
		}
		lines = append(lines, line("Compare", diff))
	}
	return StatusBoxStyle.Render(strings.Join(lines, "\n"))
}

// ParseTarget splits "host" or "host:port" into its parts. A missing port
// is the default control port.
func ParseTarget(value string) (string, int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", 0, hub.NewValidationError("hub address cannot be empty")
	}

	host, portText, err := net.SplitHostPort(value)
	if err != nil {
		var addrErr *net.AddrError
		if errors.As(err, &addrErr) && addrErr.Err == "missing port in address" {
			return value, hub.DefaultPort, nil
		}
		return "", 0, hub.NewValidationError(fmt.Sprintf("invalid hub address %q", value))
	}

	port, err := strconv.Atoi(portText)
	if err != nil {
		return "", 0, hub.NewValidationError(fmt.Sprintf("invalid port %q", portText))
	}
	return host, port, nil
}
