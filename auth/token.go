package auth

import (
	"os"
	"time"

	"chathub/domain"

	"github.com/golang-jwt/jwt/v5"
)

// jwtKey is the secret used to sign tokens, loaded from JWT_SECRET.
// The fallback only exists so tests and local runs work without a .env file.
var jwtKey = func() []byte {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("chathub_dev_only_signing_key")
}()

// CustomClaims defines the structure of the data stored inside the JWT.
// Username travels in the token so the realtime core never needs a user
// lookup to bind an identity to a connection.
type CustomClaims struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for a specific user.
func GenerateToken(userID, username string, roles []string,
	tokenDuration time.Duration) (string, error) {
	now := time.Now()

	claims := &CustomClaims{
		UserID:   userID,
		Username: username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "chathub",
		},
	}

	// HS256 (HMAC with SHA256), signed with the server secret.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

// ValidateToken parses and validates the signature and expiration of a JWT string.
// A failure here is terminal for the connection attempt presenting the token.
func ValidateToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// Verify adapts token validation to the identity the core binds to a
// connection. It is the single verification step of a connection attempt.
func Verify(tokenString string) (domain.Identity, error) {
	claims, err := ValidateToken(tokenString)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{ID: claims.UserID, Username: claims.Username}, nil
}
