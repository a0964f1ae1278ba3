package models

import "time"

// VideoEntry is one normalized video from a channel or playlist feed.
// Every field is always populated; missing feed data is replaced by defaults.
type VideoEntry struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Published   time.Time `json:"published"`
	Updated     time.Time `json:"updated"`
	Thumbnail   string    `json:"thumbnail"`
	Description string    `json:"description"`
	Views       int64     `json:"views"`
	Duration    string    `json:"duration"` // integer seconds
}

type Playlist struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	ThumbnailURL string       `json:"thumbnailUrl"`
	Videos       []VideoEntry `json:"videos"`
	URL          string       `json:"url,omitempty"`
}
