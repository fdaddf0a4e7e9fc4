package model

import (
	"time"

	"github.com/google/uuid"
)

type SubmissionStatus string

const (
	SubmissionNew       SubmissionStatus = "new"
	SubmissionContacted SubmissionStatus = "contacted"
	SubmissionBooked    SubmissionStatus = "booked"
	SubmissionArchived  SubmissionStatus = "archived"
)

// Valid reports whether s is a known status.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionNew, SubmissionContacted, SubmissionBooked, SubmissionArchived:
		return true
	}
	return false
}

// Submission is a contact form entry.
type Submission struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Email       string           `json:"email" db:"email"`
	Phone       *string          `json:"phone" db:"phone"`
	Company     *string          `json:"company" db:"company"`
	Website     *string          `json:"website" db:"website"`
	Service     string           `json:"service" db:"service"`
	Budget      *string          `json:"budget" db:"budget"`
	Message     string           `json:"message" db:"message"`
	IdealClient *string          `json:"idealClient" db:"ideal_client"`
	Source      *string          `json:"source" db:"source"`
	IP          *string          `json:"-" db:"ip"`
	DedupHash   string           `json:"-" db:"dedup_hash"`
	Status      SubmissionStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time        `json:"updatedAt" db:"updated_at"`
}

// SubmissionFilter narrows admin listings. A zero Status matches all.
type SubmissionFilter struct {
	Status SubmissionStatus
	Page   Page
}
