package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/hazelfield/encore/internal/models"
)

var (
	_ list.Item = eventItem{}
	_ list.Item = songItem{}
)

// eventItem wraps [models.Event] to implement [list.Item].
type eventItem struct {
	event models.Event
}

func (i eventItem) FilterValue() string { return i.event.Artist }
func (i eventItem) Title() string       { return fmt.Sprintf("%s (%s)", i.event.Artist, i.event.Date) }
func (i eventItem) Description() string {
	desc := i.event.Venue
	if i.event.City != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.event.City)
	}
	if i.event.Name != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.event.Name)
	}
	return desc
}

// songItem wraps [models.SetlistSong] to implement [list.Item].
type songItem struct {
	song models.SetlistSong
}

func (i songItem) FilterValue() string { return i.song.Title }
func (i songItem) Title() string       { return i.song.Title }
func (i songItem) Description() string { return i.song.Performer }
