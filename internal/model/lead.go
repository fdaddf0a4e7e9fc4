package model

import (
	"time"

	"github.com/google/uuid"
)

// Lead is someone who asked for a lead magnet download.
type Lead struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	Name          *string   `json:"name" db:"name"`
	Magnet        string    `json:"magnet" db:"magnet"`
	Consent       bool      `json:"consent" db:"consent"`
	BrevoSynced   bool      `json:"brevoSynced" db:"brevo_synced"`
	DownloadCount int       `json:"downloadCount" db:"download_count"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}
