package utils

import (
	"errors" // sentinel for invalid tokens
	"time"   // expiration handling

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// ErrInvalidToken is returned when a participant token fails to parse
// or verify.  Callers treat it as "no identity supplied" rather than a
// hard failure, because every action also accepts identity fields in
// its payload.
var ErrInvalidToken = errors.New("invalid participant token")

// ParticipantClaims identifies one participant inside one session.
// The token is issued on create/join so later actions (vote in
// particular, whose wire shape carries no voter field) can be
// attributed without resending the name.  It authorizes nothing: the
// shared join code remains the only gate into a session.
type ParticipantClaims struct {
	SessionCode string // join code the participant belongs to
	UserName    string // display identity inside the session
}

// NewParticipantToken builds and signs an HS256 JWT carrying the
// session code and user name.  The TTL should comfortably exceed the
// session TTL so a token never dies before its session does.
func NewParticipantToken(secret string, claims ParticipantClaims, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"code": claims.SessionCode,
		"name": claims.UserName,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	})
	return t.SignedString([]byte(secret))
}

// ParseParticipantToken verifies the signature and returns the claims.
// Any parse or verification failure maps to ErrInvalidToken.
func ParseParticipantToken(secret, raw string) (ParticipantClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject any signing method other than HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return ParticipantClaims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return ParticipantClaims{}, ErrInvalidToken
	}
	code, _ := mc["code"].(string)
	name, _ := mc["name"].(string)
	if code == "" || name == "" {
		return ParticipantClaims{}, ErrInvalidToken
	}
	return ParticipantClaims{SessionCode: code, UserName: name}, nil
}
