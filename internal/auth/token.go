// Package auth issues and verifies the company tokens that scope selector requests.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	errMissingSecret  = errors.New("jwt secret is not configured")
	errMissingCompany = errors.New("token has no company_id")
)

// CompanyClaims identifies the company a request acts for.
type CompanyClaims struct {
	CompanyID string `json:"company_id"`
	jwt.RegisteredClaims
}

// IssueCompanyToken signs an HS256 token for companyID that expires after expiry.
func IssueCompanyToken(secret, companyID string, expiry time.Duration, now time.Time) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", errMissingSecret
	}
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return "", errMissingCompany
	}
	claims := CompanyClaims{
		CompanyID: companyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   companyID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign company token: %w", err)
	}
	return signed, nil
}

// ParseCompanyToken verifies token and returns its claims.
func ParseCompanyToken(secret, token string) (*CompanyClaims, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errMissingSecret
	}
	claims := &CompanyClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse company token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("parse company token: invalid token")
	}
	if strings.TrimSpace(claims.CompanyID) == "" {
		return nil, errMissingCompany
	}
	return claims, nil
}
