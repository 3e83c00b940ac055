// Package extension ties the player client, the evaluation console, and the
// surrounding convenience features (clipboard, playlist navigation,
// screenshots, history, hooks, screensaver inhibition) into one running
// plugin.
package extension

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/defaultxr/multiplicative/internal/config"
	"github.com/defaultxr/multiplicative/internal/console"
	"github.com/defaultxr/multiplicative/internal/history"
	"github.com/defaultxr/multiplicative/internal/hooks"
	"github.com/defaultxr/multiplicative/internal/mpv"
)

// commander is the slice of the player client the features use. *mpv.Client
// satisfies it; tests substitute fakes.
type commander interface {
	Command(args ...any) (json.RawMessage, error)
	GetProperty(name string) (json.RawMessage, error)
	GetPropertyString(name string) (string, error)
	GetPropertyFloat(name string) (float64, error)
	SetProperty(name string, value any) error
	OSDMessage(text string, seconds float64) error
}

// Plugin is the assembled extension.
type Plugin struct {
	client  *mpv.Client
	cfg     *config.Config
	logger  *zap.Logger
	console *console.Controller
	history *history.HistoryManager
	hooks   *hooks.Runner

	playlist  *Playlist
	shooter   *Screenshotter
	inhibitor *Inhibitor

	// touched only from the event dispatch goroutine
	current   *history.PlaybackEntry
	playing   bool
	inhibited bool
}

// New assembles a plugin over an established client. history may be nil when
// history logging is disabled.
func New(
	client *mpv.Client,
	cfg *config.Config,
	consoleCtl *console.Controller,
	historyManager *history.HistoryManager,
	logger *zap.Logger,
) *Plugin {
	return &Plugin{
		client:    client,
		cfg:       cfg,
		logger:    logger,
		console:   consoleCtl,
		history:   historyManager,
		hooks:     hooks.NewRunner(cfg.Hooks, logger),
		playlist:  NewPlaylist(client),
		shooter:   NewScreenshotter(client, cfg.Screenshot, logger),
		inhibitor: NewInhibitor(cfg.Screensaver.Command, time.Duration(cfg.Screensaver.IntervalSeconds)*time.Second, logger),
	}
}

// Run registers keybindings and event handlers, then blocks until the
// context is cancelled or the player goes away.
func (p *Plugin) Run(ctx context.Context) error {
	// handlers are plain map writes and must be in place before the first
	// command round-trip, or events delivered in that window are dropped
	if err := p.registerEvents(); err != nil {
		return err
	}
	if err := p.registerKeybindings(); err != nil {
		return err
	}
	p.logger.Info("extension running", zap.Int("keybindings", len(p.cfg.Keybindings)))

	select {
	case <-ctx.Done():
	case <-p.client.Done():
	}
	p.inhibitor.Close()
	return nil
}

// actions maps configurable action names to their implementations.
func (p *Plugin) actions() map[string]func() {
	return map[string]func(){
		"console-open":  p.openConsole,
		"copy-path":     p.copyPath,
		"copy-position": p.copyPosition,
		"playlist-next": p.playlistNext,
		"playlist-prev": p.playlistPrev,
		"screenshot":    p.takeScreenshot,
		"history-show":  p.showHistory,
	}
}

func (p *Plugin) registerKeybindings() error {
	actions := p.actions()
	for key, action := range p.cfg.Keybindings {
		fn, ok := actions[action]
		if !ok {
			return fmt.Errorf("unknown action %q bound to key %q", action, key)
		}
		if err := p.client.BindKey(key, mpv.ClientName+"-"+action, fn); err != nil {
			return fmt.Errorf("failed to bind key %q: %w", key, err)
		}
	}
	return nil
}

func (p *Plugin) registerEvents() error {
	p.client.HandleEvent("file-loaded", p.handleFileLoaded)
	p.client.HandleEvent("end-file", p.handleEndFile)

	// jump takes a query, so it is a script message rather than a key action:
	//   script-message multiplicative-playlist-jump <query...>
	p.client.RegisterMessage(mpv.ClientName+"-playlist-jump", func(args []string) {
		query := strings.Join(args, " ")
		if err := p.playlist.Jump(query); err != nil {
			p.logger.Warn("playlist-jump failed", zap.String("query", query), zap.Error(err))
			p.osd("No match: " + query)
		}
	})

	if p.cfg.Screensaver.Enabled {
		if err := p.client.ObserveProperty("pause", p.handlePauseChange); err != nil {
			return fmt.Errorf("failed to observe pause: %w", err)
		}
	}
	return nil
}

func (p *Plugin) openConsole() {
	if err := p.console.Open(); err != nil {
		p.logger.Error("failed to open console", zap.Error(err))
	}
}

func (p *Plugin) copyPath() {
	path, err := p.client.GetPropertyString("path")
	if err != nil {
		p.osd("No file loaded")
		return
	}
	if err := copyText(path, p.cfg.Clipboard.Command); err != nil {
		p.logger.Error("failed to copy path", zap.Error(err))
		p.osd("Copy failed")
		return
	}
	p.osd("Copied: " + path)
}

func (p *Plugin) copyPosition() {
	pos, err := p.client.GetPropertyFloat("time-pos")
	if err != nil {
		p.osd("No playback position available")
		return
	}
	text := formatPosition(pos)
	if err := copyText(text, p.cfg.Clipboard.Command); err != nil {
		p.logger.Error("failed to copy position", zap.Error(err))
		p.osd("Copy failed")
		return
	}
	p.osd("Copied: " + text)
}

func (p *Plugin) playlistNext() {
	if err := p.playlist.Next(); err != nil {
		p.logger.Warn("playlist-next failed", zap.Error(err))
	}
}

func (p *Plugin) playlistPrev() {
	if err := p.playlist.Prev(); err != nil {
		p.logger.Warn("playlist-prev failed", zap.Error(err))
	}
}

func (p *Plugin) takeScreenshot() {
	path, err := p.shooter.Take()
	if err != nil {
		p.logger.Error("screenshot failed", zap.Error(err))
		p.osd("Screenshot failed")
		return
	}
	p.osd("Screenshot: " + path)
}

func (p *Plugin) showHistory() {
	if p.history == nil {
		p.osd("History is disabled")
		return
	}
	entries, err := p.history.GetRecentEntries(p.cfg.History.Limit)
	if err != nil {
		p.logger.Error("failed to load history", zap.Error(err))
		return
	}
	if len(entries) == 0 {
		p.osd("No playback history")
		return
	}

	lines := lo.Map(entries, func(entry history.PlaybackEntry, _ int) string {
		title := entry.Title
		if title == "" {
			title = entry.Path
		}
		return fmt.Sprintf("%s (%s)", title, entry.Age())
	})
	p.osd(strings.Join(lines, "\n"))
}

func (p *Plugin) handleFileLoaded(ev mpv.Event) {
	path, err := p.client.GetPropertyString("path")
	if err != nil {
		p.logger.Warn("file-loaded without a path", zap.Error(err))
		return
	}
	title, _ := p.client.GetPropertyString("media-title")
	duration, _ := p.client.GetPropertyFloat("duration")

	p.logger.Info("file loaded", zap.String("path", path), zap.String("title", title))

	if p.history != nil {
		entry, histErr := p.history.StartPlayback(path, title, duration)
		if histErr != nil {
			p.logger.Error("failed to record playback start", zap.Error(histErr))
		} else {
			p.current = entry
		}
	}

	p.hooks.Run(context.Background(), ev.Name, map[string]string{
		"path":  path,
		"title": title,
	})

	p.playing = true
	if p.cfg.Screensaver.Enabled {
		paused, pauseErr := p.client.GetPropertyBool("pause")
		p.setInhibited(pauseErr != nil || !paused)
	}
}

func (p *Plugin) handleEndFile(ev mpv.Event) {
	if p.current != nil {
		// time-pos is usually gone by end-file; the position defaults to the
		// file's duration when the playback ran to the end.
		pos, posErr := p.client.GetPropertyFloat("time-pos")
		if posErr != nil && ev.Reason == "eof" {
			pos = p.current.Duration
		}
		if _, err := p.history.FinishPlayback(p.current, pos); err != nil {
			p.logger.Error("failed to record playback end", zap.Error(err))
		}
		p.current = nil
	}

	p.hooks.Run(context.Background(), ev.Name, map[string]string{
		"end-reason": ev.Reason,
	})

	p.playing = false
	p.setInhibited(false)
}

func (p *Plugin) handlePauseChange(data json.RawMessage) {
	var paused bool
	if err := json.Unmarshal(data, &paused); err != nil {
		return
	}
	p.setInhibited(p.playing && !paused)
}

func (p *Plugin) setInhibited(want bool) {
	if want == p.inhibited {
		return
	}
	p.inhibited = want
	if want {
		p.inhibitor.Inhibit()
	} else {
		p.inhibitor.Uninhibit()
	}
}

func (p *Plugin) osd(text string) {
	if err := p.client.OSDMessage(text, p.cfg.OSDDuration); err != nil {
		p.logger.Warn("failed to show osd message", zap.Error(err))
	}
}
