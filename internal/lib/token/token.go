// Package token issues and checks the JWTs the funnel relies on: signed
// lead magnet download links, and Supabase Auth sessions for the admin
// dashboard.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers every reason a token is refused: bad signature,
// expiry, wrong audience or malformed claims.
var ErrInvalidToken = errors.New("invalid token")

const (
	downloadIssuer   = "riva-funnel"
	downloadAudience = "lead-magnet-download"
)

// DownloadClaims identify which lead may download which magnet.
type DownloadClaims struct {
	LeadID string `json:"lid"`
	Magnet string `json:"mag"`
	jwt.RegisteredClaims
}

// DownloadSigner signs short-lived download links with HS256.
type DownloadSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewDownloadSigner(secret string, ttl time.Duration) *DownloadSigner {
	return &DownloadSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL is how long issued tokens stay valid.
func (s *DownloadSigner) TTL() time.Duration {
	return s.ttl
}

// Sign returns a token for leadID and magnet and its expiry time.
func (s *DownloadSigner) Sign(leadID uuid.UUID, magnet string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := DownloadClaims{
		LeadID: leadID.String(),
		Magnet: magnet,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    downloadIssuer,
			Audience:  jwt.ClaimStrings{downloadAudience},
			Subject:   leadID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign download token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks a download token and returns the lead id and magnet slug.
func (s *DownloadSigner) Verify(tokenString string) (uuid.UUID, string, error) {
	claims := &DownloadClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(downloadIssuer),
		jwt.WithAudience(downloadAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	leadID, err := uuid.Parse(claims.LeadID)
	if err != nil || claims.Magnet == "" {
		return uuid.Nil, "", fmt.Errorf("%w: malformed claims", ErrInvalidToken)
	}
	return leadID, claims.Magnet, nil
}

// SupabaseClaims is the subset of a Supabase Auth access token the admin
// guard reads.
type SupabaseClaims struct {
	Email       string         `json:"email"`
	Role        string         `json:"role"`
	AppMetadata map[string]any `json:"app_metadata"`
	jwt.RegisteredClaims
}

// AdminRole returns app_metadata.role, which only the service role can set.
func (c *SupabaseClaims) AdminRole() string {
	role, _ := c.AppMetadata["role"].(string)
	return role
}

// SupabaseVerifier checks Supabase-issued HS256 access tokens and decides
// whether the holder is an admin.
type SupabaseVerifier struct {
	secret      []byte
	adminEmails map[string]bool
	now         func() time.Time
}

func NewSupabaseVerifier(jwtSecret string, adminEmails []string) *SupabaseVerifier {
	emails := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		emails[strings.ToLower(strings.TrimSpace(e))] = true
	}

	return &SupabaseVerifier{
		secret:      []byte(jwtSecret),
		adminEmails: emails,
		now:         time.Now,
	}
}

// Verify parses a bearer token. Only "authenticated" sessions are accepted.
func (v *SupabaseVerifier) Verify(tokenString string) (*SupabaseClaims, error) {
	claims := &SupabaseClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" || claims.Role != "authenticated" {
		return nil, fmt.Errorf("%w: not a user session", ErrInvalidToken)
	}
	return claims, nil
}

// IsAdmin reports whether the session belongs to an admin, either by
// app_metadata.role or by an allowlisted email.
func (v *SupabaseVerifier) IsAdmin(claims *SupabaseClaims) bool {
	if claims.AdminRole() == "admin" {
		return true
	}
	return v.adminEmails[strings.ToLower(claims.Email)]
}
