package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nickyhof/CommitQuery/core"
	"github.com/spf13/cast"
)

// AuthConfig configures server authentication.
type AuthConfig struct {
	// Enabled requires AUTH before any statement. If false, every
	// connection journals under the server identity.
	Enabled bool

	// JWTSecret is the shared secret for HMAC JWT validation.
	JWTSecret string

	// Issuer is the expected "iss" claim in JWTs.
	Issuer string

	// Audience is the expected "aud" claim in JWTs (optional).
	Audience string

	// NameClaim is the JWT claim for user's name (default: "name").
	NameClaim string

	// EmailClaim is the JWT claim for user's email (default: "email").
	EmailClaim string
}

func (c *AuthConfig) claims() (name, email string) {
	name, email = c.NameClaim, c.EmailClaim
	if name == "" {
		name = "name"
	}
	if email == "" {
		email = "email"
	}
	return name, email
}

func (c *AuthConfig) parser() *jwt.Parser {
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if c.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.Issuer))
	}
	if c.Audience != "" {
		options = append(options, jwt.WithAudience(c.Audience))
	}
	return jwt.NewParser(options...)
}

// verifyJWT checks the token signature and claims and returns the identity
// it names together with its expiry, zero when the token has none.
func (c *AuthConfig) verifyJWT(token string) (core.Identity, time.Time, error) {
	if c.JWTSecret == "" {
		return core.Identity{}, time.Time{}, errors.New("no JWT secret configured")
	}

	claims := jwt.MapClaims{}
	_, err := c.parser().ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(c.JWTSecret), nil
	})
	if err != nil {
		return core.Identity{}, time.Time{}, fmt.Errorf("invalid token: %w", err)
	}

	nameClaim, emailClaim := c.claims()
	identity := core.Identity{
		Name:  cast.ToString(claims[nameClaim]),
		Email: cast.ToString(claims[emailClaim]),
	}
	if identity.Name == "" && identity.Email == "" {
		return core.Identity{}, time.Time{}, fmt.Errorf("token missing identity claims (%s or %s)", nameClaim, emailClaim)
	}

	var expires time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expires = exp.Time
	}
	return identity, expires, nil
}

// parseAuthCommand parses an AUTH command and returns the auth type and token.
// Supported formats:
//   - AUTH JWT <token>
func parseAuthCommand(line string) (authType, token string, err error) {
	parts := strings.Fields(line)
	if len(parts) == 0 || !strings.EqualFold(parts[0], "AUTH") {
		return "", "", errors.New("not an AUTH command")
	}
	if len(parts) < 3 {
		return "", "", errors.New("invalid AUTH command: expected AUTH <type> <credentials>")
	}

	authType = strings.ToUpper(parts[1])
	if authType != "JWT" {
		return "", "", fmt.Errorf("unsupported auth type: %s", authType)
	}
	return authType, parts[2], nil
}

func authError(message string) Response {
	return Response{Success: false, Type: "auth", Error: message}
}

// handleAuth authenticates the session from an AUTH line. On success the
// session journals under the token identity until it expires.
func (sess *session) handleAuth(line string) Response {
	if sess.server.authConfig == nil {
		return authError("authentication not configured")
	}

	_, token, err := parseAuthCommand(line)
	if err != nil {
		return authError(err.Error())
	}
	identity, expires, err := sess.server.authConfig.verifyJWT(token)
	if err != nil {
		return authError(err.Error())
	}

	sess.identify(identity)
	sess.authenticated = true
	sess.expires = expires
	log.Printf("Client %s authenticated as %s", sess.conn.RemoteAddr(), sess.identity)

	ar := AuthResponse{Authenticated: true, Identity: sess.identity.String()}
	if !expires.IsZero() {
		ar.ExpiresIn = int(time.Until(expires).Seconds())
	}
	data, _ := json.Marshal(ar)
	return Response{Success: true, Type: "auth", Result: data}
}

// authorize reports whether the session may run statements. When it may
// not, the returned response says why. An expired token drops the
// session back to unauthenticated.
func (sess *session) authorize(now time.Time) (Response, bool) {
	if !sess.server.authRequired() {
		return Response{}, true
	}
	if sess.authenticated && !sess.expires.IsZero() && now.After(sess.expires) {
		sess.authenticated = false
		return authError("token expired"), false
	}
	if !sess.authenticated {
		return authError("authentication required: AUTH JWT <token>"), false
	}
	return Response{}, true
}
