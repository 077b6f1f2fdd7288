package persistence

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Submission is one completed intake application. Rows are append-only; the
// status column is advanced by downstream review tooling, never by the bot.
type Submission struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Major     string    `json:"major"`
	Country   string    `json:"country"`
	Documents []string  `json:"documents"`
	Status    string    `json:"status"`
}

// Submission status constants.
const (
	StatusPending  = "pending"
	StatusReviewed = "reviewed"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// ValidStatuses returns all valid submission statuses.
func ValidStatuses() []string {
	return []string{StatusPending, StatusReviewed, StatusAccepted, StatusRejected}
}

// NewSubmission creates a pending submission stamped with a fresh id and the
// current UTC time.
func NewSubmission(userID string) *Submission {
	return &Submission{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		Status:    StatusPending,
		Documents: make([]string, 0),
	}
}

// documentsColumn joins filenames for storage in a single TEXT column, the
// same comma-separated shape the original spreadsheet rows used.
func documentsColumn(docs []string) string {
	return strings.Join(docs, ", ")
}

func documentsFromColumn(col string) []string {
	if strings.TrimSpace(col) == "" {
		return []string{}
	}
	parts := strings.Split(col, ", ")
	docs := make([]string, 0, len(parts))
	docs = append(docs, parts...)
	return docs
}
