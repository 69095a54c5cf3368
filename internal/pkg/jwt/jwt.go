package jwt

import (
	"context"
	"log"
	"net/http"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/stitchfactory/sf-order/pkg/errors"
	"github.com/stitchfactory/sf-order/pkg/status"
)

type JSONWebToken interface {
	Sign(ctx context.Context, claims gojwt.Claims) (string, error)
	Parse(ctx context.Context, tokenString string, claims gojwt.Claims) error
}

type jsonWebToken struct {
	privateKey interface{}
	publicKey  interface{}
}

// NewJSONWebToken builds an RS256 signer/verifier from PEM-encoded keys.
func NewJSONWebToken(privateKeyPEM, publicKeyPEM string) JSONWebToken {
	privateKey, err := gojwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		log.Fatalf("jwt: %v", err)
	}

	publicKey, err := gojwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		log.Fatalf("jwt: %v", err)
	}

	return &jsonWebToken{
		privateKey: privateKey,
		publicKey:  publicKey,
	}
}

func (j *jsonWebToken) Sign(ctx context.Context, claims gojwt.Claims) (string, error) {
	token := gojwt.NewWithClaims(gojwt.SigningMethodRS256, claims)

	signed, err := token.SignedString(j.privateKey)
	if err != nil {
		return "", errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while signing the access token")
	}

	return signed, nil
}

func (j *jsonWebToken) Parse(ctx context.Context, tokenString string, claims gojwt.Claims) error {
	token, err := gojwt.ParseWithClaims(tokenString, claims, func(t *gojwt.Token) (interface{}, error) {
		return j.publicKey, nil
	})
	if err != nil || !token.Valid {
		return errors.New(http.StatusUnauthorized, status.UNAUTHORIZED, "invalid access token")
	}

	return nil
}
