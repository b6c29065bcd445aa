// Package auth handles the login tokens and passwords of Hack-or-Snooze accounts.
//
// LOGIN TOKENS:
// The Hack-or-Snooze API hands out a JWT on login/signup and expects it back
// on every authenticated call. The payload carries the username:
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header:  {"alg":"HS256","typ":"JWT"}
//	- Payload: {"username":"alice","iat":1700000000}
//
// Two sides use this package:
//   - the development API (internal/devapi) signs and verifies tokens with
//     TokenService, exactly like the hosted service does;
//   - the client (internal/controller) cannot verify a token (it does not know
//     the secret) but calls Inspect before a session restore to drop tokens
//     that are malformed, expired, or belong to another username.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginClaims is the JWT payload of a login token.
//
// Username is a private claim (not the registered "sub") because that is what
// the Hack-or-Snooze API puts in its tokens.
type LoginClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies login tokens with an HMAC secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret.
// ttl <= 0 issues tokens without an expiry, which matches the hosted API.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: token secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// Issue creates and signs a login token for username.
func (s *TokenService) Issue(username string) (string, error) {
	if username == "" {
		return "", errors.New("auth: cannot issue a token without a username")
	}

	now := time.Now()
	c := LoginClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a login token and returns its username.
//
// jwt.WithValidMethods pins HS256, which blocks the "alg: none" and
// algorithm-confusion tricks. Expiry is checked when the claim is present.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&LoginClaims{},
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errors.New("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*LoginClaims)
	if !ok || !token.Valid {
		return "", errors.New("auth: invalid token claims")
	}
	if c.Username == "" {
		return "", errors.New("auth: token has no username")
	}
	return c.Username, nil
}

// Inspect decodes a login token WITHOUT verifying its signature.
//
// WHY UNVERIFIED?
// The client never holds the signing secret, so it cannot verify anything.
// What it can do is avoid a pointless round trip: a stored token that is not
// a JWT, has expired, or names another user would be rejected by the API
// anyway. The API remains the authority and rejects forged tokens itself.
//
// Inspect fails for tokens that are not JWTs, carry no username, or have
// expired. Tokens without an "exp" claim never expire.
func Inspect(tokenStr string) (*LoginClaims, error) {
	var c LoginClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &c); err != nil {
		return nil, fmt.Errorf("auth: malformed token: %w", err)
	}
	if c.Username == "" {
		return nil, errors.New("auth: token has no username")
	}
	if c.ExpiresAt != nil && c.ExpiresAt.Before(time.Now()) {
		return nil, errors.New("auth: token expired")
	}
	return &c, nil
}
