package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Libretto-Pic/the-sage-game/internal/engine"
	"github.com/Libretto-Pic/the-sage-game/internal/ui"
)

type mode int

const (
	modeList mode = iota
	modeJournal
)

type boardModel struct {
	ctx  context.Context
	game *engine.Game

	width  int
	height int

	status   engine.Status
	missions []engine.Mission
	selected int

	mode    mode
	journal textinput.Model

	lastLog string
	busy    bool
	saveErr error
}

type refreshMsg struct {
	err error
}

type completedMsg struct {
	res engine.CompleteResult
	err error
}

type dayMsg struct {
	res engine.DayResult
	err error
}

type journalMsg struct {
	res engine.JournalResult
	err error
}

func newBoardModel(ctx context.Context, game *engine.Game) boardModel {
	ti := textinput.New()
	ti.Placeholder = "What did today teach you?"
	ti.CharLimit = 500
	ti.Width = 60
	m := boardModel{
		ctx:     ctx,
		game:    game,
		journal: ti,
		lastLog: "Loaded.",
	}
	m.load()
	return m
}

func (m *boardModel) load() {
	m.status = m.game.Status()
	m.missions = m.game.State().Missions
	m.saveErr = m.game.LastSaveError()
	if m.selected >= len(m.missions) {
		m.selected = len(m.missions) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m boardModel) Init() tea.Cmd {
	return nil
}

func (m boardModel) completeCmd(id string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.game.CompleteMission(m.ctx, id)
		return completedMsg{res: res, err: err}
	}
}

func (m boardModel) newDayCmd(force bool) tea.Cmd {
	return func() tea.Msg {
		res, err := m.game.StartNewDay(m.ctx, force)
		return dayMsg{res: res, err: err}
	}
}

func (m boardModel) journalCmd(text string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.game.SaveJournalEntry(m.ctx, text)
		return journalMsg{res: res, err: err}
	}
}

// refreshCmd reloads the saved game so changes from other sage commands show up.
func (m boardModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return refreshMsg{err: m.game.Reload(m.ctx)}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case refreshMsg:
		m.load()
		if msg.err != nil {
			m.lastLog = "Refresh failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case completedMsg:
		m.busy = false
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		m.load()
		m.lastLog = completeLog(msg.res)
		return m, nil
	case dayMsg:
		m.busy = false
		if msg.err != nil {
			if errors.Is(msg.err, engine.ErrIncompleteMissions) {
				m.lastLog = "Finish today's missions first, or press N to force."
			} else {
				m.lastLog = "New day failed: " + msg.err.Error()
			}
			return m, nil
		}
		m.selected = 0
		m.load()
		m.lastLog = fmt.Sprintf("Day %d begins with %d missions (%s).", msg.res.Day, len(msg.res.Missions), msg.res.Source)
		if msg.res.Penalty != nil {
			m.lastLog += " " + msg.res.Penalty.JournalEntry
		}
		return m, nil
	case journalMsg:
		m.busy = false
		if msg.err != nil {
			m.lastLog = "Journal failed: " + msg.err.Error()
			return m, nil
		}
		m.load()
		m.lastLog = fmt.Sprintf("Journal entry #%d recorded.", msg.res.Entries)
		if n := len(msg.res.NewAchievements); n > 0 {
			m.lastLog += fmt.Sprintf(" %s %d new achievement(s)!", ui.IconTrophy, n)
		}
		if msg.res.SaveErr != nil {
			m.lastLog += " Not saved: " + msg.res.SaveErr.Error()
		}
		return m, nil
	case tea.KeyMsg:
		if m.mode == modeJournal {
			return m.updateJournal(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m boardModel) updateJournal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.journal.Blur()
		m.journal.Reset()
		m.lastLog = "Journal entry discarded."
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.journal.Value())
		m.mode = modeList
		m.journal.Blur()
		m.journal.Reset()
		if text == "" {
			m.lastLog = "Empty entry ignored."
			return m, nil
		}
		m.busy = true
		m.lastLog = "Writing to the journal…"
		return m, m.journalCmd(text)
	}
	var cmd tea.Cmd
	m.journal, cmd = m.journal.Update(msg)
	return m, cmd
}

func (m boardModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r":
		return m, m.refreshCmd()
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "j":
		if m.selected < len(m.missions)-1 {
			m.selected++
		}
		return m, nil
	}
	if m.busy {
		m.lastLog = "Working…"
		return m, nil
	}
	switch msg.String() {
	case "c", " ", "enter":
		if m.selected < 0 || m.selected >= len(m.missions) {
			return m, nil
		}
		mission := m.missions[m.selected]
		if mission.Completed {
			m.lastLog = "Already done."
			return m, nil
		}
		m.busy = true
		m.lastLog = fmt.Sprintf("Completing %q…", mission.Title)
		return m, m.completeCmd(mission.ID)
	case "n", "N":
		m.busy = true
		m.lastLog = "Summoning a new day…"
		return m, m.newDayCmd(msg.String() == "N")
	case "w":
		m.mode = modeJournal
		m.lastLog = "enter: save, esc: cancel"
		return m, m.journal.Focus()
	}
	return m, nil
}

func completeLog(res engine.CompleteResult) string {
	parts := []string{fmt.Sprintf("+%d XP, +%d PP", res.XPGained, res.PowerPointsGained)}
	if res.LevelUp {
		parts = append(parts, fmt.Sprintf("%s %d → %d", ui.BadgeLevelUp, res.LevelBefore, res.LevelAfter))
	}
	if res.DailyBonus {
		parts = append(parts, "daily bonus")
	}
	if res.ControlledKazuki != "" {
		parts = append(parts, res.ControlledKazuki+" controlled")
	}
	if res.ActivatedStat != "" {
		parts = append(parts, fmt.Sprintf("%s +%d", res.ActivatedStat, res.ActivatedPoints))
	}
	for _, t := range res.NewTrials {
		parts = append(parts, "trial: "+t.Title)
	}
	if res.SaveErr != nil {
		parts = append(parts, "not saved: "+res.SaveErr.Error())
	}
	return strings.Join(parts, " | ")
}

func (m boardModel) View() string {
	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()

	leftW := 28
	if m.width > 0 {
		leftW = min(leftW, m.width/2)
		leftW = max(leftW, 18)
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(leftW).Render(sidebar),
		"  ",
		main,
	)
	footer := "\n" + ui.Muted.Render(m.lastLog)
	if m.mode == modeJournal {
		footer = "\n" + ui.H2.Render(ui.IconScroll+" Journal") + "\n" + m.journal.View() + footer
	}
	return header + "\n\n" + body + "\n" + footer + "\n"
}

func (m boardModel) renderHeader() string {
	s := m.status
	bar := ui.StatBar(s.XP, engine.XPPerLevel, 30)
	line := fmt.Sprintf("%s The Sage's Path | Day %d | Level %d %s | XP %d %s",
		ui.IconSage, s.Day, s.Level, s.Title, s.XP, bar)
	if s.Generating || m.busy {
		line += " " + ui.Warn.Render("…")
	}
	if m.saveErr != nil {
		line += " " + ui.Warn.Render(ui.IconWarn+" unsaved")
	}
	return ui.Title.Render(line)
}

func (m boardModel) renderSidebar() string {
	s := m.status
	lines := []string{
		ui.PanelTitle.Render("Stats"),
		"HP " + ui.StatBar(s.Stats.HP, engine.MaxStat, 12),
		"MP " + ui.StatBar(s.Stats.MP, engine.MaxStat, 12),
		"SP " + ui.StatBar(s.Stats.SP, engine.MaxStat, 12),
		"RP " + ui.StatBar(s.Stats.RP, engine.MaxStat, 12),
		"",
		fmt.Sprintf("%s %d soul coins", ui.IconCoin, s.SoulCoins),
		fmt.Sprintf("%s %d power points", ui.IconBolt, s.PowerPoints),
		fmt.Sprintf("x%.2f XP", s.XPMultiplier),
		"",
		ui.PanelTitle.Render("Keys"),
		"↑/↓ j/k  move",
		"c/space  complete",
		"n        new day",
		"N        force new day",
		"w        journal",
		"r        refresh",
		"q        quit",
	}
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	out := []string{ui.PanelTitle.Render(fmt.Sprintf("Missions (%d/%d)", m.status.Completed, m.status.Total))}
	if len(m.missions) == 0 {
		out = append(out, ui.Muted.Render("(no missions, press n to start the day)"))
		return strings.Join(out, "\n")
	}
	for i, mission := range m.missions {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		out = append(out, cursor+ui.MissionLine(mission))
	}
	return strings.Join(out, "\n")
}
