package identity

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMissingOrgID    = errors.New("orgID cannot be empty")
	ErrMissingUsername = errors.New("username cannot be empty")
)

// Identity is the subset of the Red Hat identity carried in x-rh-identity.
type Identity struct {
	AccountNumber string `json:"account_number,omitempty"`
	OrgID         string `json:"org_id"`
	Type          string `json:"type"`
	AuthType      string `json:"auth_type"`
	Internal      struct {
		OrgID string `json:"org_id"`
	} `json:"internal"`
	User struct {
		Username string `json:"username"`
		UserID   string `json:"user_id"`
	} `json:"user"`
}

// IdentityHeader represents the x-rh-identity header structure
type IdentityHeader struct {
	Identity Identity `json:"identity"`
}

// HeaderGenerator builds x-rh-identity values for callers of the export API
// that do not sit behind the platform gateway (the CLI client, local runs, tests).
type HeaderGenerator struct {
	accountNumber string
}

func NewHeaderGenerator(accountNumber string) *HeaderGenerator {
	return &HeaderGenerator{accountNumber: accountNumber}
}

// Generate returns the base64 encoded identity for orgID and username.
func (g *HeaderGenerator) Generate(orgID, username string) (string, error) {
	if orgID == "" {
		return "", ErrMissingOrgID
	}
	if username == "" {
		return "", ErrMissingUsername
	}

	var id Identity
	id.AccountNumber = g.accountNumber
	id.OrgID = orgID
	id.Type = "User"
	id.AuthType = "jwt-auth"
	id.Internal.OrgID = orgID
	id.User.Username = username
	id.User.UserID = username + "-id"

	identityJSON, err := json.Marshal(IdentityHeader{Identity: id})
	if err != nil {
		return "", fmt.Errorf("failed to marshal identity: %w", err)
	}

	return base64.StdEncoding.EncodeToString(identityJSON), nil
}

// Decode reverses Generate. It does not validate the identity beyond parsing.
func Decode(header string) (IdentityHeader, error) {
	var parsed IdentityHeader

	raw, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return parsed, fmt.Errorf("failed to decode identity header: %w", err)
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return parsed, fmt.Errorf("failed to unmarshal identity header: %w", err)
	}
	return parsed, nil
}
