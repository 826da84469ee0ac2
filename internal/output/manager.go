package output

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tanq16/forgemods/internal/status"
)

// Source is anything that can hand out a consistent view of a run.
type Source interface {
	Snapshot() status.Snapshot
}

// Manager redraws the run state on a ticker. It only ever reads snapshots.
type Manager struct {
	source      Source
	title       string
	out         io.Writer
	live        bool
	numLines    int
	displayTick time.Duration
	doneCh      chan struct{}
	displayWg   sync.WaitGroup
	stopOnce    sync.Once
	lastStatus  map[string]status.Status // plain mode only
}

func NewManager(source Source, title string, live bool) *Manager {
	return &Manager{
		source:      source,
		title:       title,
		out:         os.Stdout,
		live:        live,
		displayTick: 100 * time.Millisecond,
		doneCh:      make(chan struct{}),
		lastStatus:  make(map[string]status.Status),
	}
}

func (m *Manager) SetWriter(w io.Writer) {
	m.out = w
}

// jobOrder is the display order of unfinished and failed jobs.
var jobOrder = map[status.Status]int{
	status.Searching:   0,
	status.Downloading: 1,
	status.Pending:     2,
	status.Failed:      3,
}

// visibleJobs drops finished-and-fine jobs and sorts the rest by status,
// keeping manifest order within a status.
func visibleJobs(jobs []status.JobView) []status.JobView {
	var visible []status.JobView
	for _, j := range jobs {
		if j.Status == status.Success || j.Status == status.Skipped {
			continue
		}
		visible = append(visible, j)
	}
	slices.SortStableFunc(visible, func(a, b status.JobView) int {
		return jobOrder[a.Status] - jobOrder[b.Status]
	})
	return visible
}

func styleLogLine(line string) string {
	switch {
	case strings.HasPrefix(line, "!!"):
		return errorStyle.Bold(true).Render(line)
	case strings.Contains(line, "Request failed"), strings.Contains(line, "Download error"), strings.Contains(line, "Internal error"):
		return errorStyle.Render(line)
	case strings.Contains(line, "Not found"), strings.HasPrefix(line, "->"):
		return warningStyle.Render(line)
	case strings.Contains(line, "Saved"):
		return successStyle.Render(line)
	default:
		return streamStyle.Render(line)
	}
}

// Render lays out a snapshot into at most height lines of at most width
// visible characters.
func (m *Manager) Render(snap status.Snapshot, width, height int) []string {
	indent := strings.Repeat(" ", 2)
	available := max(height-3, 8) // leave some buffer for prompt
	var lines []string

	lines = append(lines, indent+headerStyle.Render(truncate(m.title, width-2)))

	visible := visibleJobs(snap.Jobs)
	fixed := 3 // job table title, log title, footer
	rest := available - 1 - fixed
	rowBudget := max(3, rest-len(snap.Logs))
	shown := visible
	hidden := 0
	if len(shown) > rowBudget {
		hidden = len(shown) - (rowBudget - 1)
		shown = shown[:rowBudget-1]
	}

	lines = append(lines, indent+detailStyle.Render(fmt.Sprintf("Active & failed jobs: %d", len(visible))))
	for _, j := range shown {
		row := fmt.Sprintf("%s %s %s", truncate(j.Mod.Name, 32), debugStyle.Render(truncate(j.Mod.Version, 16)), statusStyle(j.Status).Render(j.Label))
		lines = append(lines, fmt.Sprintf("%s%s %s", strings.Repeat(" ", 4), statusIndicator(j.Status), row))
	}
	if hidden > 0 {
		lines = append(lines, strings.Repeat(" ", 4)+debugStyle.Render(fmt.Sprintf("... %d more", hidden)))
	}

	logBudget := max(0, available-len(lines)-2)
	logs := snap.Logs
	if len(logs) > logBudget {
		logs = logs[len(logs)-logBudget:]
	}
	lines = append(lines, indent+detailStyle.Render("Log"))
	for _, l := range logs {
		lines = append(lines, strings.Repeat(" ", 4)+styleLogLine(truncate(l, width-6)))
	}

	lines = append(lines, indent+m.footer(snap))
	for i, line := range lines {
		lines[i] = fitWidth(line, width)
	}
	return lines
}

// fitWidth cuts a styled line to width terminal cells so it never wraps.
func fitWidth(line string, width int) string {
	if width <= 0 || lipgloss.Width(line) <= width {
		return line
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}

func (m *Manager) footer(snap status.Snapshot) string {
	c := snap.Counters
	return fmt.Sprintf("%s %s %s %s %s %s",
		PrintProgressBar(int64(snap.Done), int64(snap.Total), 30),
		debugStyle.Render(fmt.Sprintf("%d/%d", snap.Done, snap.Total)),
		StyleSymbols["bullet"],
		success2Style.Render(fmt.Sprintf("%s %d", StyleSymbols["pass"], c.Success)),
		errorStyle.Render(fmt.Sprintf("%s %d", StyleSymbols["fail"], c.Failed)),
		streamStyle.Render(fmt.Sprintf("%s %d", StyleSymbols["skip"], c.Skipped)),
	)
}

func (m *Manager) updateDisplay() {
	snap := m.source.Snapshot()
	if !m.live {
		m.printTransitions(snap)
		return
	}
	width, height := getTerminalSize()
	lines := m.Render(snap, width, height)
	if m.numLines > 0 {
		fmt.Fprintf(m.out, "\033[%dA\033[J", m.numLines)
	}
	for _, line := range lines {
		fmt.Fprintln(m.out, line)
	}
	m.numLines = len(lines)
}

// printTransitions emits one line per job that finished since the last tick.
func (m *Manager) printTransitions(snap status.Snapshot) {
	for _, j := range snap.Jobs {
		if !j.Status.Terminal() || m.lastStatus[j.ID] == j.Status {
			continue
		}
		m.lastStatus[j.ID] = j.Status
		detail := j.Provider
		if j.Status == status.Failed {
			detail = j.Reason
		}
		line := fmt.Sprintf("[%d/%d] %s %s", snap.Done, snap.Total, j.Status.Label(), j.Mod.Name)
		if detail != "" {
			line += " (" + detail + ")"
		}
		fmt.Fprintln(m.out, line)
	}
}

func (m *Manager) StartDisplay() {
	m.displayWg.Add(1)
	go func() {
		defer m.displayWg.Done()
		ticker := time.NewTicker(m.displayTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.updateDisplay()
			case <-m.doneCh:
				m.updateDisplay()
				return
			}
		}
	}()
}

// StopDisplay draws the final frame and waits for the display goroutine.
func (m *Manager) StopDisplay() {
	m.stopOnce.Do(func() {
		close(m.doneCh)
		m.displayWg.Wait()
	})
}

// ShowSummary prints the jobs that did not make it and the final tally.
// Failed jobs stay listed so they can be retried by hand.
func (m *Manager) ShowSummary() {
	snap := m.source.Snapshot()
	fmt.Fprintln(m.out)
	if snap.Done == snap.Total {
		fmt.Fprintln(m.out, successStyle.Render("All jobs completed!"))
	} else {
		fmt.Fprintln(m.out, warningStyle.Render(fmt.Sprintf("Stopped after %d of %d jobs", snap.Done, snap.Total)))
	}
	var rows [][]string
	for _, j := range snap.Jobs {
		if j.Status == status.Success || j.Status == status.Skipped {
			continue
		}
		rows = append(rows, []string{j.Mod.Name, j.Mod.Version, j.Mod.Filename, j.Status.Label(), j.Reason})
	}
	if len(rows) > 0 {
		fmt.Fprintln(m.out, RenderTable([]string{"Mod", "Version", "File", "Status", "Reason"}, rows))
	}
	c := snap.Counters
	fmt.Fprintf(m.out, "Final tally %s %s | %s | %s\n",
		StyleSymbols["arrow"],
		success2Style.Render(fmt.Sprintf("Success: %d", c.Success)),
		errorStyle.Render(fmt.Sprintf("Failed: %d", c.Failed)),
		streamStyle.Render(fmt.Sprintf("Skipped: %d", c.Skipped)),
	)
}
