package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const downloadAudience = "material-download"

// ErrInvalidDownloadToken is returned for tampered, foreign or expired tokens.
var ErrInvalidDownloadToken = errors.New("invalid download token")

// SignedObject is the payload carried by a download token.
type SignedObject struct {
	ResourceID string
	Key        string
	ExpiresAt  time.Time
}

type downloadClaims struct {
	Key string `json:"key"`
	jwt.RegisteredClaims
}

// SignedURLSigner issues short lived download tokens for stored files.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate returns a token binding resourceID to the storage key.
func (s *SignedURLSigner) Generate(resourceID, key string) (string, time.Time, error) {
	if resourceID == "" || key == "" {
		return "", time.Time{}, fmt.Errorf("resource id and key required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	issued := s.now()
	expiresAt := issued.Add(s.ttl)
	claims := downloadClaims{
		Key: key,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   resourceID,
			Audience:  jwt.ClaimStrings{downloadAudience},
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign download token: %w", err)
	}
	return token, expiresAt, nil
}

// Parse validates a token and returns the embedded object reference.
func (s *SignedURLSigner) Parse(token string) (*SignedObject, error) {
	claims := &downloadClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(downloadAudience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" || claims.Key == "" {
		return nil, ErrInvalidDownloadToken
	}
	obj := &SignedObject{ResourceID: claims.Subject, Key: claims.Key}
	if claims.ExpiresAt != nil {
		obj.ExpiresAt = claims.ExpiresAt.Time
	}
	return obj, nil
}
