package extension

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/defaultxr/multiplicative/internal/config"
)

// screenshotMeta carries the playback state a filename template can use.
type screenshotMeta struct {
	Filename string
	Title    string
	Position float64
}

// expandTemplate expands a screenshot filename template. Placeholders:
//
//	%f  media file name without its extension
//	%t  media title (falls back to %f when empty)
//	%p  playback position as H.MM.SS
//	%d  date as 2006-01-02
//	%%  a literal percent sign
func expandTemplate(template string, meta screenshotMeta, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(meta.Filename), filepath.Ext(meta.Filename))
	title := meta.Title
	if title == "" {
		title = base
	}

	replacer := strings.NewReplacer(
		"%%", "%",
		"%f", base,
		"%t", title,
		"%p", strings.ReplaceAll(formatPosition(meta.Position), ":", "."),
		"%d", now.Format("2006-01-02"),
	)
	return replacer.Replace(template)
}

// Screenshotter takes named screenshots through the player.
type Screenshotter struct {
	client commander
	cfg    config.ScreenshotConfig
	logger *zap.Logger
}

// NewScreenshotter creates a screenshotter with the given naming config.
func NewScreenshotter(client commander, cfg config.ScreenshotConfig, logger *zap.Logger) *Screenshotter {
	return &Screenshotter{client: client, cfg: cfg, logger: logger}
}

// Take writes a screenshot of the current frame to a template-named file
// and returns its path.
func (s *Screenshotter) Take() (string, error) {
	meta := screenshotMeta{}
	if filename, err := s.client.GetPropertyString("filename"); err == nil {
		meta.Filename = filename
	}
	if title, err := s.client.GetPropertyString("media-title"); err == nil {
		meta.Title = title
	}
	if pos, err := s.client.GetPropertyFloat("time-pos"); err == nil {
		meta.Position = pos
	}

	name := expandTemplate(s.cfg.Template, meta, time.Now())
	path := name
	if s.cfg.Directory != "" {
		path = filepath.Join(s.cfg.Directory, name)
	}

	if _, err := s.client.Command("screenshot-to-file", path); err != nil {
		return "", err
	}

	if info, err := os.Stat(path); err == nil {
		s.logger.Info("screenshot written",
			zap.String("path", path),
			zap.String("size", humanize.Bytes(uint64(info.Size()))),
		)
	}
	return path, nil
}
