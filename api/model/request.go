package model

import "mime/multipart"

// AskRequest is the question answering request body.
type AskRequest struct {
	Question string `json:"question" binding:"required"` // the user's question
	Language string `json:"language"`                    // preferred answer language, detected from script when empty
	UserID   string `json:"user_id"`                     // caller identity, defaults to the shared user
}

// DocumentUploadRequest is the multipart document upload form.
type DocumentUploadRequest struct {
	File   *multipart.FileHeader `form:"file" binding:"required"` // the uploaded file
	UserID string                `form:"user_id"`                 // owner, defaults to the shared user
	Tags   string                `form:"tags"`                    // optional comma separated tags
}

// DocumentListRequest is the document listing query.
type DocumentListRequest struct {
	UserID   string `form:"user_id"`   // owner filter
	Page     int    `form:"page"`      // page number, 1-based
	PageSize int    `form:"page_size"` // page size
}
