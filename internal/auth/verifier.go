package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// idTokenClaims is the subset of the OIDC ID token the server consumes.
type idTokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// JWTVerifier validates RS256 ID tokens against the identity provider's
// public key and expected issuer.
type JWTVerifier struct {
	issuer    string
	publicKey *rsa.PublicKey
}

func NewJWTVerifier(issuer string, publicKey *rsa.PublicKey) *JWTVerifier {
	return &JWTVerifier{issuer: issuer, publicKey: publicKey}
}

func (v *JWTVerifier) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &idTokenClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
			}
			return v.publicKey, nil
		},
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*idTokenClaims)
	if !ok || claims.Subject == "" {
		return nil, errors.New("token carries no subject")
	}

	return &Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}, nil
}
