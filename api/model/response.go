package model

import "time"

// Response is the common response envelope.
type Response struct {
	Code    int         `json:"code"`               // 0 on success
	Message string      `json:"message"`            // human readable status
	Data    interface{} `json:"data,omitempty"`     // payload, may be empty
	TraceID string      `json:"trace_id,omitempty"` // request trace ID
}

// NewSuccessResponse wraps a payload in a success envelope.
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse builds an error envelope.
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// AskResponse is the resolved answer payload.
type AskResponse struct {
	Question string   `json:"question"`          // the asked question
	Answer   string   `json:"answer"`            // the resolved answer text
	Kind     string   `json:"kind"`              // which fallback stage answered
	Language string   `json:"language"`          // answer language
	Sources  []string `json:"sources,omitempty"` // source document filenames
}

// DocumentUploadResponse reports one accepted upload.
type DocumentUploadResponse struct {
	FileID   string `json:"file_id"`
	FileName string `json:"filename"`
	Status   string `json:"status"` // uploaded, processing, completed or failed
	Chunks   int    `json:"chunks"` // fragments registered, 0 until completed
}

// DocumentStatusResponse is the status of one document.
type DocumentStatusResponse struct {
	FileID     string `json:"file_id"`
	FileName   string `json:"filename"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	Chunks     int    `json:"chunks"`
	UploadedAt string `json:"uploaded_at"`
	UpdatedAt  string `json:"updated_at"`
}

// DocumentInfo is one document list entry.
type DocumentInfo struct {
	FileID     string    `json:"file_id"`
	FileName   string    `json:"filename"`
	FileType   string    `json:"file_type"`
	Status     string    `json:"status"`
	Chunks     int       `json:"chunks"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// DocumentListResponse is a page of documents.
type DocumentListResponse struct {
	Total     int64          `json:"total"`
	Page      int            `json:"page"`
	PageSize  int            `json:"page_size"`
	Documents []DocumentInfo `json:"documents"`
}

// DocumentDeleteResponse reports one deletion.
type DocumentDeleteResponse struct {
	Success bool   `json:"success"`
	FileID  string `json:"file_id"`
}

// ReloadResponse reports a corpus reload.
type ReloadResponse struct {
	Fragments int `json:"fragments"` // fragments restored from the database
}
