// Package report turns warnings into signed detection reports a backend can
// verify before acting on them.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"pixelguard/internal/warning"
	"pixelguard/pkg/platform/sentinel"
)

// DefaultTTL bounds how long a report stays acceptable.
const DefaultTTL = 24 * time.Hour

// ErrInvalidReport is returned for reports that fail verification.
var ErrInvalidReport = errors.New("invalid detection report")

// Claims is the signed body of a detection report.
type Claims struct {
	Code     string            `json:"code"`
	Source   string            `json:"source"`
	Severity string            `json:"severity"`
	Message  string            `json:"message"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 detection reports.
type Signer struct {
	key     []byte
	issuer  string
	subject string
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*Signer)

// WithSubject identifies the install or session the report is about.
func WithSubject(subject string) Option {
	return func(s *Signer) {
		s.subject = subject
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Signer) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the issue time source.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		s.now = now
	}
}

func NewSigner(key []byte, issuer string, opts ...Option) (*Signer, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("report signing key: %w", sentinel.ErrConfigurationMissing)
	}
	s := &Signer{
		key:    key,
		issuer: issuer,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sign returns a compact JWS for w. The warning ID becomes the token ID so
// a backend can drop replays.
func (s *Signer) Sign(w warning.Warning) (string, error) {
	id := w.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	issued := w.Timestamp
	if issued.IsZero() {
		issued = s.now()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Code:     string(w.Code),
		Source:   string(w.Source),
		Severity: string(w.Severity),
		Message:  w.Message,
		Attrs:    w.Attrs,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.String(),
			Issuer:    s.issuer,
			Subject:   s.subject,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign report: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, issuer and expiry of a report.
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidReport, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidReport
	}
	return claims, nil
}
