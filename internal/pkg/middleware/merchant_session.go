package middleware

import (
	"net/http"
	"strings"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/stitchfactory/sf-order/internal/pkg/jwt"
	"github.com/stitchfactory/sf-order/internal/pkg/session"
	"github.com/stitchfactory/sf-order/pkg/errors"
	"github.com/stitchfactory/sf-order/pkg/response"
	"github.com/stitchfactory/sf-order/pkg/status"
)

type merchantClaims struct {
	SessionID string `json:"session_id"`
	gojwt.RegisteredClaims
}

// MerchantSession verifies the bearer token and resolves the staff account
// behind it. Customer-facing routes never pass through here.
type MerchantSession struct {
	jsonWebToken jwt.JSONWebToken
	store        session.Store
}

func NewMerchantSessionMiddleware(jsonWebToken jwt.JSONWebToken, store session.Store) *MerchantSession {
	return &MerchantSession{
		jsonWebToken: jsonWebToken,
		store:        store,
	}
}

func (m *MerchantSession) Verify(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		bearer := r.Header.Get("Authorization")
		tokenString := strings.TrimPrefix(bearer, "Bearer ")
		if tokenString == "" || tokenString == bearer {
			response.JSON(w, http.StatusUnauthorized, response.RESTEnvelope{
				Status:  status.UNAUTHORIZED,
				Message: "missing bearer token",
			})

			return
		}

		claims := &merchantClaims{}
		if err := m.jsonWebToken.Parse(ctx, tokenString, claims); err != nil {
			ae := errors.Destruct(err)
			response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
				Status:  ae.Status,
				Message: ae.Message,
			})

			return
		}

		account, err := m.store.Get(ctx, claims.SessionID)
		if err != nil {
			ae := errors.Destruct(err)
			response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
				Status:  ae.Status,
				Message: ae.Message,
			})

			return
		}

		next(w, r.WithContext(session.SetAccountToCtx(ctx, account)))
	}
}
