package pager

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/logdata/internal/config"
	"github.com/user/logdata/internal/render"
	"github.com/user/logdata/pkg/logdata"
)

// Options configures a new pager Model.
type Options struct {
	Filepath      string
	ForceEncoding string // "" = autodetect
	NoColor       bool
	PollTick      time.Duration
}

// Model is the bubbletea model driving the demo pager. It holds no
// indexing state of its own; every number it displays comes from the
// facade or the Store the facade's callbacks feed.
type Model struct {
	facade   *logdata.Facade
	store    *Store
	renderer render.Renderer
	cfg      *config.Config

	pollTick time.Duration
	width    int
	height   int
	ready    bool

	topLine logdata.LineNumber
	follow  bool

	filename string
}

// NewModelWithOptions attaches a Facade to opts.Filepath and returns a
// ready-to-run Model.
func NewModelWithOptions(opts Options) (Model, error) {
	cfg, err := config.Load()
	if err != nil {
		return Model{}, fmt.Errorf("load config: %w", err)
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = 250 * time.Millisecond
	}

	store := &Store{}

	facade := logdata.New(
		logdata.OnProgress(func(percent int) { store.setProgress(percent) }),
		logdata.OnFinished(func(status logdata.Status) { store.setFinished(status) }),
		logdata.OnFileChanged(func(state logdata.FileChangeState) { store.setFileChanged(state) }),
	)

	if err := facade.Attach(opts.Filepath); err != nil {
		return Model{}, err
	}

	if opts.ForceEncoding != "" {
		facade.SetDisplayEncoding(encodingByName(opts.ForceEncoding))
	}

	var renderer render.Renderer = render.NewPlainRenderer()
	if !opts.NoColor {
		renderer = render.NewLogLevelRenderer(cfg)
	}

	return Model{
		facade:   facade,
		store:    store,
		renderer: renderer,
		cfg:      cfg,
		pollTick: pollTick,
		follow:   true,
		filename: opts.Filepath,
	}, nil
}

func encodingByName(name string) logdata.Encoding {
	switch strings.ToUpper(name) {
	case "UTF-8", "UTF8":
		return logdata.UTF8
	case "UTF-16LE":
		return logdata.UTF16LE
	case "UTF-16BE":
		return logdata.UTF16BE
	case "UTF-32LE":
		return logdata.UTF32LE
	case "UTF-32BE":
		return logdata.UTF32BE
	default:
		return logdata.Latin1
	}
}

// Close releases the underlying facade.
func (m Model) Close() error {
	if m.facade == nil {
		return nil
	}
	return m.facade.Close()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, tickCmd(m.pollTick), fetchSnapshotCmd(m))
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
		return m, nil

	case tickMsg:
		return m, tea.Batch(fetchSnapshotCmd(m), tickCmd(m.pollTick))

	case snapshotMsg:
		snap := Snapshot(msg)
		if m.follow && snap.NbLines > 0 {
			visible := logdata.LinesCount(m.contentHeight())
			if snap.NbLines > visible {
				m.topLine = logdata.LineNumber(uint64(snap.NbLines) - uint64(visible))
			} else {
				m.topLine = 0
			}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch {
	case matches(key, m.cfg.Keybindings.Quit):
		return m, tea.Quit
	case matches(key, m.cfg.Keybindings.ScrollDown):
		m.follow = false
		m.topLine = m.topLine.Add(1)
	case matches(key, m.cfg.Keybindings.ScrollUp):
		m.follow = false
		if m.topLine > 0 {
			m.topLine--
		}
	case matches(key, m.cfg.Keybindings.PageDown):
		m.follow = false
		m.topLine = m.topLine.Add(logdata.LinesCount(m.contentHeight()))
	case matches(key, m.cfg.Keybindings.PageUp):
		m.follow = false
		step := uint64(m.contentHeight())
		if uint64(m.topLine) > step {
			m.topLine = logdata.LineNumber(uint64(m.topLine) - step)
		} else {
			m.topLine = 0
		}
	case matches(key, m.cfg.Keybindings.Top):
		m.follow = false
		m.topLine = 0
	case matches(key, m.cfg.Keybindings.Bottom):
		m.follow = false
		snap := m.store.Snapshot()
		visible := uint64(m.contentHeight())
		if uint64(snap.NbLines) > visible {
			m.topLine = logdata.LineNumber(uint64(snap.NbLines) - visible)
		}
	case matches(key, m.cfg.Keybindings.Follow):
		m.follow = !m.follow
	}
	return m, nil
}

func matches(key string, bindings []string) bool {
	for _, b := range bindings {
		if b == key {
			return true
		}
	}
	return false
}

func (m Model) contentHeight() int {
	h := m.height - 2 // header + status line
	if h < 1 {
		return 1
	}
	return h
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading...\n"
	}

	snap := m.store.Snapshot()

	var b strings.Builder
	b.WriteString(m.renderHeader(snap))
	b.WriteString("\n")

	height := m.contentHeight()
	lines := m.facade.GetExpandedLines(m.topLine, logdata.LinesCount(height))
	for i := 0; i < height; i++ {
		if i < len(lines) {
			b.WriteString(m.renderer.Render(lines[i]))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus(snap))
	return b.String()
}

func (m Model) renderHeader(snap Snapshot) string {
	state := "ready"
	if snap.Loading {
		state = fmt.Sprintf("indexing %d%%", snap.Percent)
	}
	return fmt.Sprintf("%s — %d lines, %d bytes [%s]", m.filename, snap.NbLines, snap.FileSize, state)
}

func (m Model) renderStatus(snap Snapshot) string {
	follow := "off"
	if m.follow {
		follow = "on"
	}
	change := ""
	if snap.FileChange != logdata.Unchanged {
		change = fmt.Sprintf(" change=%v", snap.FileChange)
	}
	return fmt.Sprintf("line %d  follow=%s%s", m.topLine, follow, change)
}

// Run starts the bubbletea program.
func Run(opts Options) error {
	model, err := NewModelWithOptions(opts)
	if err != nil {
		return err
	}
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

type tickMsg time.Time

type snapshotMsg Snapshot

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func fetchSnapshotCmd(m Model) tea.Cmd {
	return func() tea.Msg {
		m.store.refreshCounts(m.facade)
		return snapshotMsg(m.store.Snapshot())
	}
}
