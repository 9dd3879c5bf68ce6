package domain

import "time"

// Document is an uploaded file owned by an account.
type Document struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	DocumentTypeID string    `json:"document_type_id"`
	URL            string    `json:"url"`
	Name           string    `json:"name"`
	Key            string    `json:"key"`
	Size           int64     `json:"size"`
	CreatedAt      time.Time `json:"created_at"`
}

// DocumentAction is what happened to a file, recorded in the document log.
type DocumentAction string

const (
	DocumentUploaded DocumentAction = "upload"
	DocumentReplaced DocumentAction = "replace"
	DocumentDeleted  DocumentAction = "delete"
)

func (a DocumentAction) Valid() bool {
	switch a {
	case DocumentUploaded, DocumentReplaced, DocumentDeleted:
		return true
	}
	return false
}

type DocumentLog struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	URL       string         `json:"url"`
	Name      string         `json:"name"`
	Key       string         `json:"key"`
	Size      int64          `json:"size"`
	Action    DocumentAction `json:"action"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// UploadTicket is a presigned PUT the client uses to push the file directly to storage.
type UploadTicket struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}
