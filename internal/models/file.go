package models

import "time"

type File struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	StorageKey    string    `json:"-"`
	FileName      string    `json:"file_name"`
	SizeBytes     *int64    `json:"size_bytes"`
	MimeType      *string   `json:"mime_type"`
	DownloadCount int64     `json:"download_count"`
	EmailsSent    int64     `json:"emails_sent"`
	UploadedBy    *int64    `json:"uploaded_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
