package sqlerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/errs"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name: "unique violation names the column",
			err: fmt.Errorf("insert lead: %w", &pgconn.PgError{
				Code:           "23505",
				Severity:       "ERROR",
				TableName:      "leads",
				ConstraintName: "leads_email_key",
			}),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "LEAD_ALREADY_EXISTS",
			wantMessage: "A Lead with this Email already exists",
		},
		{
			name: "not null violation",
			err: &pgconn.PgError{
				Code:       "23502",
				TableName:  "submissions",
				ColumnName: "email",
			},
			wantStatus:  http.StatusBadRequest,
			wantCode:    "SUBMISSION_REQUIRED",
			wantMessage: "The Email is required",
		},
		{
			name: "foreign key violation",
			err: &pgconn.PgError{
				Code:       "23503",
				TableName:  "subscriptions",
				ColumnName: "customer_id",
			},
			wantStatus:  http.StatusBadRequest,
			wantCode:    "SUBSCRIPTION_NOT_FOUND",
			wantMessage: "The referenced Customer does not exist",
		},
		{
			name:        "no rows with table hint",
			err:         NotFound("submissions"),
			wantStatus:  http.StatusNotFound,
			wantCode:    "NOT_FOUND",
			wantMessage: "Submission not found",
		},
		{
			name:        "unknown error is a 500",
			err:         errors.New("connection reset"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL_SERVER_ERROR",
			wantMessage: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var httpErr *errs.HTTPError
			require.True(t, errors.As(HandleError(tt.err), &httpErr))
			assert.Equal(t, tt.wantStatus, httpErr.Status)
			assert.Equal(t, tt.wantCode, httpErr.Code)
			assert.Equal(t, tt.wantMessage, httpErr.Message)
		})
	}
}

func TestHandleErrorPassesHTTPErrorsThrough(t *testing.T) {
	original := errs.NewTooManyRequestsError("slow down")
	assert.Same(t, original, HandleError(original))
}

func TestExtractColumnForUniqueViolation(t *testing.T) {
	assert.Equal(t, "email", extractColumnForUniqueViolation("unique_leads_email"))
	assert.Equal(t, "hash", extractColumnForUniqueViolation("submissions_dedup_hash_key"))
	assert.Equal(t, "", extractColumnForUniqueViolation("pk_leads"))
}

func TestEntityNames(t *testing.T) {
	assert.Equal(t, "STRIPE_EVENT_ALREADY_EXISTS", generateErrorCode("stripe_events", UniqueViolation))
	assert.Equal(t, "RECORD_ERROR", generateErrorCode("", Other))
	assert.Equal(t, "Stripe Event", getEntityName("stripe_events", ""))
	assert.Equal(t, "Widget", getEntityName("widgets", ""))
	assert.Equal(t, "Customer", getEntityName("subscriptions", "customer_id"))
}
