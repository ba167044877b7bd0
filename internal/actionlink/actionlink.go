// Package actionlink signs the approve/reject links mailed to the operator.
// A link carries an HS256 token bound to one devis number and one action.
package actionlink

import (
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "devis/internal/errors"
)

const issuer = "devis"

type Claims struct {
	Action string `json:"act"`
	jwt.RegisteredClaims
}

type Signer struct {
	secret  []byte
	ttl     time.Duration
	baseURL string
	now     func() time.Time
}

func NewSigner(secret []byte, ttl time.Duration, baseURL string) *Signer {
	return &Signer{
		secret:  secret,
		ttl:     ttl,
		baseURL: baseURL,
		now:     time.Now,
	}
}

func (s *Signer) Token(devisNumber, action string) (string, error) {
	now := s.now()
	claims := Claims{
		Action: action,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   devisNumber,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing action token: %w", err)
	}
	return signed, nil
}

// URL returns the absolute link for devisNumber and action.
func (s *Signer) URL(devisNumber, action string) (string, error) {
	token, err := s.Token(devisNumber, action)
	if err != nil {
		return "", err
	}

	base, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing site url: %w", err)
	}
	link := base.JoinPath("devis", devisNumber, "action")
	q := url.Values{}
	q.Set("action", action)
	q.Set("token", token)
	link.RawQuery = q.Encode()

	return link.String(), nil
}

// Verify checks that token was issued for devisNumber and action and has not
// expired. Any mismatch is a ForbiddenError.
func (s *Signer) Verify(token, devisNumber, action string) error {
	if token == "" {
		return apperrors.NewForbiddenError("missing action token")
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(devisNumber),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return apperrors.NewForbiddenError(fmt.Sprintf("invalid action token: %v", err))
	}

	if claims.Action != action {
		return apperrors.NewForbiddenError("action token does not match action")
	}
	return nil
}
