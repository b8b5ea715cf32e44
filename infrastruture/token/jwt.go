package token

import (
	"errors"
	"time"

	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/dgrijalva/jwt-go"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrSigningMethod  = errors.New("unexpected signing method")
	ErrIssuerMismatch = errors.New("token issued by another party")
	ErrEmptySecretKey = errors.New("jwt secret key is empty")
)

var _ i.Tokenizer = &JwtService{}

// JwtService signs and verifies HS256 tokens carrying session claims.
type JwtService struct {
	secretKey []byte
	issuer    string
	now       func() time.Time
}

// NewJwtService creates a JWT service that stamps and expects issuer on every token.
func NewJwtService(secretKey, issuer string) (*JwtService, error) {
	if secretKey == "" {
		return nil, ErrEmptySecretKey
	}
	return &JwtService{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		now:       time.Now,
	}, nil
}

// Generate creates a JWT for the given claims. Registered claims in the input are
// overwritten.
func (s *JwtService) Generate(claims map[string]interface{}, expTime time.Duration) (string, error) {
	now := s.now().UTC()
	jwtClaims := jwt.MapClaims{}
	for key, val := range claims {
		jwtClaims[key] = val
	}
	jwtClaims["exp"] = now.Add(expTime).Unix()
	jwtClaims["iat"] = now.Unix()
	jwtClaims["iss"] = s.issuer

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims)
	return token.SignedString(s.secretKey)
}

// Decode parses and validates a JWT, returning the claims if valid.
func (s *JwtService) Decode(tokenString string) (map[string]interface{}, error) {
	token, err := jwt.Parse(tokenString, s.getSigningKey)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return nil, ErrIssuerMismatch
	}

	return claims, nil
}

func (s *JwtService) getSigningKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrSigningMethod
	}
	return s.secretKey, nil
}
