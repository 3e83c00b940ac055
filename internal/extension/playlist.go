package extension

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
)

// PlaylistItem mirrors one entry of the player's playlist property.
type PlaylistItem struct {
	Filename string `json:"filename"`
	Title    string `json:"title"`
	Current  bool   `json:"current"`
}

// DisplayName is the human-readable name of the entry: the title when the
// file has one, otherwise the file's base name.
func (item PlaylistItem) DisplayName() string {
	if item.Title != "" {
		return item.Title
	}
	return filepath.Base(item.Filename)
}

// Playlist navigates the player's playlist.
type Playlist struct {
	client commander
}

// NewPlaylist creates playlist navigation over the client.
func NewPlaylist(client commander) *Playlist {
	return &Playlist{client: client}
}

// Items returns the current playlist.
func (p *Playlist) Items() ([]PlaylistItem, error) {
	data, err := p.client.GetProperty("playlist")
	if err != nil {
		return nil, err
	}
	var items []PlaylistItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode playlist: %w", err)
	}
	return items, nil
}

// Next advances to the next playlist entry.
func (p *Playlist) Next() error {
	_, err := p.client.Command("playlist-next", "weak")
	return err
}

// Prev goes back to the previous playlist entry.
func (p *Playlist) Prev() error {
	_, err := p.client.Command("playlist-prev", "weak")
	return err
}

// Jump switches to the playlist entry whose display name best matches the
// query, using fuzzy matching.
func (p *Playlist) Jump(query string) error {
	items, err := p.Items()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("playlist is empty")
	}

	names := lo.Map(items, func(item PlaylistItem, _ int) string {
		return item.DisplayName()
	})
	matches := fuzzy.Find(query, names)
	if len(matches) == 0 {
		return fmt.Errorf("no playlist entry matches %q", query)
	}

	return p.client.SetProperty("playlist-pos", matches[0].Index)
}
