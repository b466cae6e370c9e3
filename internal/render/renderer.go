// Package render applies display styling to lines returned by the
// log-data facade, for the demo pager only. It operates on the plain
// decoded strings Facade.GetExpandedLine returns.
package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/user/logdata/internal/config"
	"github.com/user/logdata/internal/logformat"
)

// Renderer applies styling to one already-decoded line of text.
type Renderer interface {
	Render(line string) string
}

// LogLevelRenderer colors a line based on its detected log level.
type LogLevelRenderer struct {
	detector *logformat.LevelDetector
	styles   map[logformat.LogLevel]lipgloss.Style
}

// NewLogLevelRenderer creates a renderer from config.
func NewLogLevelRenderer(cfg *config.Config) *LogLevelRenderer {
	detector := logformat.NewLevelDetector(&cfg.LogLevels)

	styles := map[logformat.LogLevel]lipgloss.Style{
		logformat.LevelUnknown: lipgloss.NewStyle(),
		logformat.LevelTrace:   lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Trace)),
		logformat.LevelDebug:   lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Debug)),
		logformat.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Info)),
		logformat.LevelWarn:    lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Warn)),
		logformat.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Error)),
		logformat.LevelFatal:   lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Fatal)),
	}

	return &LogLevelRenderer{detector: detector, styles: styles}
}

// Render applies log-level styling to line.
func (r *LogLevelRenderer) Render(line string) string {
	level := r.detector.Detect(line)
	return r.styles[level].Render(line)
}

// PlainRenderer renders without styling.
type PlainRenderer struct{}

// NewPlainRenderer creates a plain renderer.
func NewPlainRenderer() *PlainRenderer { return &PlainRenderer{} }

// Render returns line as-is.
func (r *PlainRenderer) Render(line string) string { return line }
