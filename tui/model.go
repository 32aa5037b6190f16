// Package tui is the bubbletea status view the CLI's default "run"
// command renders while a session.Session plays: a transport header, a
// within-beat position progress bar, and a track list showing mute/solo/clip
// state. Grounded on the teacher's tui/model.go (bubbletea Model,
// lipgloss styling, a periodic listener driving re-render), generalized
// from the teacher's Launchpad step-grid editor to a read-only status
// snapshot of a running Session, since performance control here flows
// through MIDI controllers and macros rather than the terminal.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"seq/errs"
	"seq/sequencer"
	"seq/session"
	"seq/theme"
	"seq/timing"
	"seq/widgets"
)

// refreshPeriod is how often the view polls the session for a fresh
// snapshot, independent of the session's own internal loop cadences.
const refreshPeriod = 200 * time.Millisecond

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(refreshPeriod, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// trackItem adapts a sequencer.TrackSnapshot to list.DefaultItem.
type trackItem struct {
	index int
	snap  sequencer.TrackSnapshot
	theme *theme.Theme
}

// pad renders a single colored indicator for this track's state, reusing
// the teacher's Launchpad pad-rendering widget as a plain terminal glyph
// (mute=warning, solo=success, playing=active, idle=muted) instead of an
// actual grid-controller LED.
func (i trackItem) pad() string {
	switch {
	case i.snap.Muted:
		return widgets.RenderPad([3]uint8(i.theme.RGB(theme.RoleWarning)))
	case i.snap.Solo:
		return widgets.RenderPad([3]uint8(i.theme.RGB(theme.RoleSuccess)))
	case i.snap.ClipID != "" && i.snap.ClipState == sequencer.Playing:
		return widgets.RenderPad([3]uint8(i.theme.RGB(theme.RoleActive)))
	default:
		return widgets.RenderPad([3]uint8(i.theme.RGB(theme.RoleMuted)))
	}
}

func (i trackItem) Title() string {
	flags := "  "
	if i.snap.Muted {
		flags = "M "
	}
	if i.snap.Solo {
		flags = flags[:1] + "S"
	}
	return fmt.Sprintf("%s %2d %-16s ch%-2d %s", i.pad(), i.index, i.snap.Name, i.snap.Channel, flags)
}

func (i trackItem) Description() string {
	if i.snap.ClipID == "" {
		return "no clip playing"
	}
	return fmt.Sprintf("%s (%s)", i.snap.ClipID, i.snap.ClipState)
}

func (i trackItem) FilterValue() string { return i.snap.Name }

type Model struct {
	Session *session.Session
	Theme   *theme.Theme

	list     list.Model
	progress progress.Model

	quitting bool
	width    int
	height   int
}

func NewModel(sess *session.Session, th *theme.Theme) Model {
	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 0, 0)
	l.Title = "Tracks"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)

	return Model{
		Session:  sess,
		Theme:    th,
		list:     l,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width, msg.Height-8)
		m.progress.Width = msg.Width - 4
		if m.progress.Width < 10 {
			m.progress.Width = 10
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.Session.Stop()
			return m, tea.Quit

		case "p":
			m.togglePause()
			return m, nil

		case "m":
			m.toggleSelectedMute()
			return m, nil

		case "s":
			m.toggleSelectedSolo()
			return m, nil

		case "+", "=":
			m.Session.Clock.SetTempo(m.Session.Clock.CurrentTempo() + 1)
			return m, nil

		case "-", "_":
			m.Session.Clock.SetTempo(m.Session.Clock.CurrentTempo() - 1)
			return m, nil
		}

		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	case tickMsg:
		m.refreshTracks()
		return m, tickCmd()
	}

	return m, nil
}

func (m Model) togglePause() {
	switch m.Session.Clock.TransportState() {
	case timing.Running:
		m.Session.Clock.Pause()
	default:
		m.Session.Clock.Start()
	}
}

func (m Model) selectedIndex() int {
	item, ok := m.list.SelectedItem().(trackItem)
	if !ok {
		return -1
	}
	return item.index
}

func (m Model) toggleSelectedMute() {
	idx := m.selectedIndex()
	snaps := m.Session.Tracks.Snapshot()
	if idx < 0 || idx >= len(snaps) {
		return
	}
	m.Session.Tracks.SetMute(idx, !snaps[idx].Muted)
}

func (m Model) toggleSelectedSolo() {
	idx := m.selectedIndex()
	snaps := m.Session.Tracks.Snapshot()
	if idx < 0 || idx >= len(snaps) {
		return
	}
	m.Session.Tracks.SetSolo(idx, !snaps[idx].Solo)
}

func (m *Model) refreshTracks() {
	snaps := m.Session.Tracks.Snapshot()
	items := make([]list.Item, len(snaps))
	for i, s := range snaps {
		items[i] = trackItem{index: i, snap: s, theme: m.Theme}
	}
	m.list.SetItems(items)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	clock := m.Session.Clock
	playState := "STOP"
	if clock.TransportState() == timing.Running {
		playState = "PLAY"
	}

	bar, beat, beatFrac := m.barBeat()
	partName := m.Session.Parts.CurrentPartName()
	if partName == "" {
		partName = "-"
	}

	header := headerStyle.Render(fmt.Sprintf(
		"%s  %s  %6.1fbpm  bar %d beat %d  part:%s",
		m.Session.Config.Name, playState, clock.CurrentTempo(), bar, beat, partName,
	))

	progressView := m.progress.ViewAs(beatFrac)

	counts, lastErr := errs.Diag.Snapshot()
	diagLine := fmt.Sprintf("config:%d resource:%d runtime:%d logic:%d", counts[0], counts[1], counts[2], counts[3])
	if lastErr != "" {
		diagLine += "  last: " + lastErr
	}

	legend := strings.Join([]string{
		widgets.RenderLegendItem([3]uint8(m.Theme.RGB(theme.RoleActive)), "playing", "clip active"),
		widgets.RenderLegendItem([3]uint8(m.Theme.RGB(theme.RoleWarning)), "muted", ""),
		widgets.RenderLegendItem([3]uint8(m.Theme.RGB(theme.RoleSuccess)), "solo", ""),
	}, "  ")

	help := dimStyle.Render(widgets.RenderKeyHelp([]widgets.KeySection{{
		Keys: []widgets.KeyBinding{
			{Key: "p", Desc: "pause/run"},
			{Key: "m", Desc: "mute"},
			{Key: "s", Desc: "solo"},
			{Key: "+/-", Desc: "tempo"},
			{Key: "j/k", Desc: "select"},
			{Key: "q", Desc: "quit"},
		},
	}}))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(progressView)
	out.WriteString("\n\n")
	out.WriteString(m.list.View())
	out.WriteString("\n")
	out.WriteString(legend)
	out.WriteString("\n")
	out.WriteString(warnStyle.Render(diagLine))
	out.WriteString("\n")
	out.WriteString(help)
	return out.String()
}

// barBeat derives the current bar/beat/within-beat fraction from the
// clock's raw tick count and the song document's time signature, since
// timing.Clock only tracks ticks.
func (m Model) barBeat() (bar, beat int, frac float64) {
	beatsPerBar := m.Session.Config.TimeSignature[0]
	if beatsPerBar <= 0 {
		beatsPerBar = 4
	}
	tick := m.Session.Clock.NowTick()
	ticksPerBar := int64(beatsPerBar) * timing.PPQN
	tickInBar := tick % ticksPerBar
	bar = int(tick/ticksPerBar) + 1
	beat = int(tickInBar/timing.PPQN) + 1
	frac = float64(tickInBar%timing.PPQN) / float64(timing.PPQN)
	return bar, beat, frac
}
