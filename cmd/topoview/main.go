package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-topoview/pkg/config"
	"github.com/dd0wney/cluso-topoview/pkg/engine"
	"github.com/dd0wney/cluso-topoview/pkg/logging"
	"github.com/dd0wney/cluso-topoview/pkg/metrics"
	"github.com/dd0wney/cluso-topoview/pkg/render"
	"github.com/dd0wney/cluso-topoview/pkg/topology"
	"github.com/dd0wney/cluso-topoview/pkg/topology/source"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			MarginLeft(1)

	viewportStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466"))

	sidebarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF88")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	healthyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ECC71"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F39C12"))
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C")).Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginLeft(1)
)

const sidebarWidth = 30

type keyMap struct {
	Clear key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Clear: key.NewBinding(
		key.WithKeys("esc", "c"),
		key.WithHelp("esc", "clear selection"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Clear, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Clear, k.Quit}}
}

type tickMsg time.Time

type snapshotMsg topology.Snapshot

type sourceClosedMsg struct{}

type model struct {
	cfg    config.Config
	log    logging.Logger
	met    *metrics.Registry
	term   *render.TermContext
	eng    *engine.Engine
	snaps  <-chan topology.Snapshot
	cancel context.CancelFunc
	help   help.Model
	picked *string // written by the engine's selection callback

	width, height int
	selectedID    string
	latest        topology.Snapshot
	mouseDown     bool
}

func newModel(cfg config.Config, log logging.Logger, met *metrics.Registry, snaps <-chan topology.Snapshot, cancel context.CancelFunc) (*model, error) {
	term := render.NewTermContext(0, 0)

	picked := new(string)
	eng, err := engine.New(term, cfg.Engine,
		engine.WithLogger(log),
		engine.WithMetrics(met),
		engine.WithAspectScale(0.5),
		engine.WithSelectionCallback(func(id string) { *picked = id }),
	)
	if err != nil {
		return nil, err
	}

	return &model{
		cfg:    cfg,
		log:    log,
		met:    met,
		term:   term,
		eng:    eng,
		snaps:  snaps,
		cancel: cancel,
		help:   help.New(),
		picked: picked,
	}, nil
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.waitForSnapshot())
}

func (m *model) tick() tea.Cmd {
	interval := time.Second / time.Duration(m.cfg.Engine.FrameRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-m.snaps
		if !ok {
			return sourceClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

// viewportSize returns the cell dimensions of the 3D viewport for the
// current terminal size (sidebar, borders and chrome subtracted).
func (m *model) viewportSize() (int, int) {
	w := m.width - sidebarWidth - 4
	h := m.height - 4
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w, h
}

// toViewport converts terminal mouse coordinates into viewport-local
// pixel coordinates (the viewport border is one cell).
func (m *model) toViewport(x, y int) (float64, float64) {
	return float64(x - 1), float64(y - 2)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w, h := m.viewportSize()
		m.eng.Resize(w, h)
		return m, nil

	case tickMsg:
		m.eng.Step(time.Time(msg))
		return m, m.tick()

	case snapshotMsg:
		snap := topology.Snapshot(msg)
		m.latest = snap
		// The selection is owned here, not by the producer; keep ours
		// unless the producer explicitly set one.
		if snap.SelectedID != "" {
			m.selectedID = snap.SelectedID
		}
		snap.SelectedID = m.selectedID
		if err := m.eng.Apply(snap); err != nil {
			m.log.Error("apply snapshot failed", logging.Error(err))
		}
		return m, m.waitForSnapshot()

	case sourceClosedMsg:
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.cancel()
			m.eng.Close()
			return m, tea.Quit
		case key.Matches(msg, keys.Clear):
			m.selectedID = ""
			m.eng.Select("")
			return m, nil
		}
	}
	return m, nil
}

func (m *model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	x, y := m.toViewport(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.mouseDown = true
			m.eng.PointerDown(x, y)
		case tea.MouseButtonWheelUp:
			m.eng.Wheel(-1)
		case tea.MouseButtonWheelDown:
			m.eng.Wheel(1)
		}
	case tea.MouseActionMotion:
		if m.mouseDown {
			m.eng.PointerMove(x, y)
		}
	case tea.MouseActionRelease:
		if msg.Button == tea.MouseButtonLeft || msg.Button == tea.MouseButtonNone {
			if m.mouseDown {
				m.mouseDown = false
				m.eng.PointerUp(x, y)
				m.eng.Click(x, y)
				if id := *m.picked; id != "" {
					*m.picked = ""
					m.selectedID = id
					m.eng.Select(id)
				}
			}
		}
	}
	return m, nil
}

func (m *model) View() string {
	if m.width == 0 {
		return "starting..."
	}

	title := titleStyle.Render("Cluso Topoview — live network topology")
	viewport := viewportStyle.Render(m.term.View())
	sidebar := sidebarStyle.Width(sidebarWidth).Render(m.sidebar())
	body := lipgloss.JoinHorizontal(lipgloss.Top, viewport, sidebar)
	helpLine := helpStyle.Render(m.help.View(keys) + "  ·  drag: orbit · wheel: zoom · click: select")

	return lipgloss.JoinVertical(lipgloss.Left, title, body, helpLine)
}

func (m *model) sidebar() string {
	var b []string

	healthy, warning, critical := 0, 0, 0
	for _, d := range m.latest.Devices {
		switch d.Status {
		case topology.StatusCritical:
			critical++
		case topology.StatusWarning:
			warning++
		default:
			healthy++
		}
	}
	b = append(b,
		lipgloss.NewStyle().Bold(true).Render("Fleet"),
		fmt.Sprintf("%s  %s  %s",
			healthyStyle.Render(fmt.Sprintf("● %d ok", healthy)),
			warningStyle.Render(fmt.Sprintf("● %d warn", warning)),
			criticalStyle.Render(fmt.Sprintf("● %d crit", critical)),
		),
		fmt.Sprintf("links: %d", m.eng.Links().EdgeCount()),
		"",
	)

	b = append(b, lipgloss.NewStyle().Bold(true).Render("Selected"))
	if m.selectedID == "" {
		b = append(b, labelStyle.Render("none — click a device"))
	} else if dev, ok := topology.DeviceIndex(m.latest.Devices)[m.selectedID]; ok {
		load := dev.Load()
		b = append(b,
			fmt.Sprintf("%s (%s)", dev.Name, dev.Type),
			statusLine(dev.Status),
			fmt.Sprintf("cpu      %5.1f%%", load.CPU),
			fmt.Sprintf("memory   %5.1f%%", load.Memory),
			fmt.Sprintf("workload %5.1f%%", load.Workload),
		)
		if load.Temperature != nil {
			b = append(b, fmt.Sprintf("temp     %5.1f°C", *load.Temperature))
		}
	} else {
		b = append(b, labelStyle.Render(m.selectedID+" (offline)"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, b...)
}

func statusLine(s topology.Status) string {
	switch s {
	case topology.StatusCritical:
		return criticalStyle.Render("status: critical")
	case topology.StatusWarning:
		return warningStyle.Render("status: warning")
	default:
		return healthyStyle.Render("status: healthy")
	}
}

func main() {
	configPath := flag.String("config", "topoview.yaml", "path to the YAML config file")
	sourceKind := flag.String("source", "", "override source kind (simulator, mangos, http)")
	address := flag.String("address", "", "override source address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *sourceKind != "" {
		cfg.Source.Kind = *sourceKind
	}
	if *address != "" {
		cfg.Source.Address = *address
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// The terminal owns stdout; log to stderr.
	log := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(cfg.Log.Level))
	met := metrics.NewRegistry()

	if cfg.Metrics.Listen != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", met.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Listen, mux); err != nil {
				log.Error("metrics endpoint failed", logging.Error(err))
			}
		}()
	}

	src, err := source.New(cfg.Source, log, met)
	if err != nil {
		fmt.Fprintf(os.Stderr, "source: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := src.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("snapshot source stopped", logging.Error(err))
		}
	}()

	m, err := newModel(cfg, log, met, src.Snapshots(), cancel)
	if err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "engine: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "topoview: %v\n", err)
	}

	cancel()
	src.Close()
	m.eng.Close()
}
