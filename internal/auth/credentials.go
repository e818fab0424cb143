// Package auth provides the credential capabilities: password hashing and
// verification, and JWT issuance and verification. It is stateless and has no
// storage dependencies.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"dayboard/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the bcrypt work factor for new password digests.
const BcryptCost = 10

// TokenTTL is the validity window of issued tokens.
const TokenTTL = 24 * time.Hour

const (
	tokenIssuer   = "dayboard-api"
	tokenAudience = "dayboard-client"
)

// Verification failures. All three surface to clients as unauthenticated,
// but callers log them distinctly.
var (
	ErrTokenMissing = errors.New("token missing")
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the verified identity carried by a token.
type Claims struct {
	UserID   uint
	Username string
}

// Credentials issues and verifies passwords and tokens.
type Credentials struct {
	secret []byte
}

// NewCredentials returns a Credentials service signing with secret.
func NewCredentials(secret string) *Credentials {
	return &Credentials{secret: []byte(secret)}
}

// HashPassword produces a salted bcrypt digest of password.
func (c *Credentials) HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether password matches digest.
func (c *Credentials) CheckPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// IssueToken creates a signed JWT for the given user, valid for TokenTTL.
func (c *Credentials) IssueToken(userID uint, username string) (string, error) {
	if len(c.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      now.Add(TokenTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// VerifyToken validates tokenString and returns its claims. The returned
// error is one of ErrTokenMissing, ErrTokenExpired, or ErrTokenInvalid.
func (c *Credentials) VerifyToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenMissing
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok {
		return nil, ErrTokenInvalid
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	username, _ := mapClaims["username"].(string)

	return &Claims{UserID: uint(userID), Username: username}, nil
}

// AsUnauthorized converts a verification failure to the API error taxonomy.
func AsUnauthorized(err error) *models.AppError {
	switch {
	case errors.Is(err, ErrTokenMissing):
		return models.NewUnauthorizedError("Access token required")
	case errors.Is(err, ErrTokenExpired):
		return models.NewUnauthorizedError("Token expired")
	default:
		return models.NewUnauthorizedError("Invalid token")
	}
}

// generateJTI creates a unique JWT ID to prevent replay attacks.
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
