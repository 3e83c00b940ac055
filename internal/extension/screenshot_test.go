package extension

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/defaultxr/multiplicative/internal/config"
)

func TestExpandTemplate(t *testing.T) {
	now := time.Date(2026, 8, 24, 15, 4, 5, 0, time.UTC)
	meta := screenshotMeta{
		Filename: "/media/some.video.mkv",
		Title:    "A Title",
		Position: 3725, // 1:02:05
	}

	tests := []struct {
		template string
		expected string
	}{
		{"%f.png", "some.video.png"},
		{"%t.png", "A Title.png"},
		{"%f-%p.png", "some.video-1.02.05.png"},
		{"%f-%d.png", "some.video-2026-08-24.png"},
		{"%%f.png", "%f.png"},
		{"shot.png", "shot.png"},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, expandTemplate(test.template, meta, now), "template %q", test.template)
	}
}

func TestExpandTemplateTitleFallsBackToFilename(t *testing.T) {
	meta := screenshotMeta{Filename: "/media/clip.webm"}
	got := expandTemplate("%t.png", meta, time.Now())
	assert.Equal(t, "clip.png", got)
}

func TestScreenshotterTake(t *testing.T) {
	client := newFakeCommander()
	client.properties["filename"] = `"movie.mkv"`
	client.properties["media-title"] = `"Movie"`
	client.properties["time-pos"] = `61.5`

	shooter := NewScreenshotter(client, config.ScreenshotConfig{
		Directory: "/tmp/shots",
		Template:  "%f-%p.png",
	}, zap.NewNop())

	path, err := shooter.Take()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/shots/movie-0.01.01.png", path)

	require.Len(t, client.commands, 1)
	assert.Equal(t, []any{"screenshot-to-file", path}, client.commands[0])
}

func TestScreenshotterTakeWithoutMetadata(t *testing.T) {
	client := newFakeCommander()

	shooter := NewScreenshotter(client, config.ScreenshotConfig{
		Template: "shot-%d.png",
	}, zap.NewNop())

	path, err := shooter.Take()
	require.NoError(t, err)
	assert.Contains(t, path, "shot-")

	require.Len(t, client.commands, 1)
}
