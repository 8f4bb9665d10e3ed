package model

import "time"

// StoredFile describes an object written to the file store.
type StoredFile struct {
	Path        string    `json:"path"`
	URL         string    `json:"url"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}
