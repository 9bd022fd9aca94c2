package types

import (
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	RoleUser MessageRole = "user"
	RoleBot  MessageRole = "bot"
)

// Message is one entry of a session's conversation log.
type Message struct {
	Role    MessageRole `json:"type"`
	Content string      `json:"content"`
}

// Document holds the extracted text of the single resident PDF.
type Document struct {
	ID         uuid.UUID
	Title      string
	Content    string
	Source     string // источник документа (pdf)
	SourcePath string
	Pages      int
	CreatedAt  time.Time
}

type Config struct {
	UploadDir   string
	GroqAPIKey  string
	GroqBaseURL string
	Model       string
	MaxTokens   int
}
