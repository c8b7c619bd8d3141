package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/u13-football/services"
	"github.com/golang-jwt/jwt/v4"
)

// Authenticator проверяет Bearer-токен и загружает пользователя вместе с его связями.
type Authenticator struct {
	secret []byte
	loader services.PrincipalLoader
	logger *slog.Logger
}

func NewAuthenticator(secret string, loader services.PrincipalLoader, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{secret: []byte(secret), loader: loader, logger: logger}
}

func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := a.parseToken(tokenString)
		if err != nil {
			a.logger.DebugContext(r.Context(), "rejected token", slog.Any("error", err))
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := WithClaims(r.Context(), claims)
		userID, err := GetUserIDFromContext(ctx)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}

		principal, err := a.loader.Load(ctx, userID)
		if err != nil {
			if errors.Is(err, services.ErrAuthenticationFailed) {
				writeError(w, http.StatusUnauthorized, "user not found or inactive")
				return
			}
			a.logger.ErrorContext(ctx, "failed to load principal", slog.Int("user_id", userID), slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
	})
}

func (a *Authenticator) parseToken(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	return claims, nil
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("authorization header required")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("authorization header must be in format 'Bearer {token}'")
	}
	return strings.TrimSpace(parts[1]), nil
}

// writeError пишет ошибку в том же формате, что и обработчики.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
