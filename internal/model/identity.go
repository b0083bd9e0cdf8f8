package model

import "time"

// IdentityID is the stable account id returned by the external identity
// provider. It is the key of the allow-list.
type IdentityID string

// Identity is the result of an identity provider lookup
type Identity struct {
	ID       IdentityID
	Username string
	Email    string
	Raw      map[string]any // provider profile as returned
}

// Operator is a dashboard user that has logged in through the identity provider
type Operator struct {
	ID          IdentityID
	Username    string
	Email       string
	SteamID     string // linked game account, empty if none
	LastLoginAt time.Time
}

// Verdict is the outcome of resolving a session credential
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictAuthorized
	VerdictUnauthorized
)

func (v Verdict) String() string {
	switch v {
	case VerdictAuthorized:
		return "AUTHORIZED"
	case VerdictUnauthorized:
		return "UNAUTHORIZED"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the verdict as its name
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes a verdict name; unrecognised names are VerdictUnknown
func (v *Verdict) UnmarshalText(text []byte) error {
	switch string(text) {
	case "AUTHORIZED":
		*v = VerdictAuthorized
	case "UNAUTHORIZED":
		*v = VerdictUnauthorized
	default:
		*v = VerdictUnknown
	}
	return nil
}
