package auth

import (
	"errors"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	signingAlgorithm = jwa.HS256
	rolesClaimName   = "roles"
)

// tokenSpec is what every access token must carry besides a valid signature.
type tokenSpec struct {
	issuer   string
	audience string
	skew     time.Duration
}

func (s *Service) sign(userID string, roles []string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTTL)
	tok, err := jwt.NewBuilder().
		Subject(userID).
		Issuer(s.tokens.issuer).
		Audience([]string{s.tokens.audience}).
		IssuedAt(now).
		NotBefore(now.Add(-s.tokens.skew)).
		Expiration(expiresAt).
		Claim(rolesClaimName, roles).
		Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(signingAlgorithm, s.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiresAt, nil
}

// verify accepts only HS256 tokens signed with the service secret whose
// issuer, audience and time claims hold at s.now().
func (s *Service) verify(raw string) (jwt.Token, error) {
	tok, err := jwt.ParseString(raw,
		jwt.WithKey(signingAlgorithm, s.secret),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(s.now)),
		jwt.WithAcceptableSkew(s.tokens.skew),
		jwt.WithIssuer(s.tokens.issuer),
		jwt.WithAudience(s.tokens.audience),
	)
	if err != nil {
		return nil, err
	}
	if tok.Subject() == "" {
		return nil, errors.New("auth: token missing subject")
	}
	return tok, nil
}

func rolesClaim(tok jwt.Token) []string {
	raw, ok := tok.Get(rolesClaimName)
	if !ok {
		return nil
	}
	var out []string
	switch v := raw.(type) {
	case []string:
		out = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
