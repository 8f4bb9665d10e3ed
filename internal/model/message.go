package model

import "time"

type Message struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	ChatID      uint         `gorm:"index;not null" json:"chat"`
	SenderID    uint         `gorm:"index;not null" json:"sender"`
	Content     string       `json:"content"`
	Attachments []Attachment `gorm:"constraint:OnDelete:CASCADE" json:"attachments"`
	CreatedAt   time.Time    `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Attachment points at a stored file. Path is the storage key used for
// deletion, URL is what clients render.
type Attachment struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	MessageID uint   `gorm:"index;not null" json:"-"`
	Position  int    `json:"-"`
	Path      string `json:"localPath"`
	URL       string `json:"url"`
}

// AttachmentPaths collects the storage path of every attachment across messages.
func AttachmentPaths(messages []Message) []string {
	var paths []string
	for _, m := range messages {
		for _, a := range m.Attachments {
			if a.Path != "" {
				paths = append(paths, a.Path)
			}
		}
	}
	return paths
}
