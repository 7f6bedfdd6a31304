package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gestaozabele/votacao/internal/auth"
	"github.com/gestaozabele/votacao/internal/repo"
)

type contextKey string

const (
	// ContextKeyEleitor guarda a identidade resolvida (sem segredos).
	ContextKeyEleitor contextKey = "eleitor"

	accessCookieName = "accessToken"
)

// EleitorResolver resolve o subject do token para o cadastro sem senha e
// sem refresh token.
type EleitorResolver interface {
	GetEleitorPublicoByID(ctx context.Context, id uuid.UUID) (repo.EleitorPublico, error)
}

// TokenFromRequest extrai o token de acesso: cookie primeiro, header
// Authorization como alternativa.
func TokenFromRequest(r *http.Request) (string, bool) {
	if c, err := r.Cookie(accessCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		token := strings.TrimSpace(parts[1])
		if token != "" {
			return token, true
		}
	}

	return "", false
}

// Auth valida o token de acesso, resolve o eleitor no banco e injeta a
// identidade no contexto. Qualquer falha encerra com 401.
func Auth(jwtManager *auth.JWTManager, eleitores EleitorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := TokenFromRequest(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			claims, err := jwtManager.ParseAccessToken(token)
			if err != nil {
				msg := "token inválido"
				if errors.Is(err, auth.ErrTokenExpired) {
					msg = "token expirado"
				}
				writeError(w, http.StatusUnauthorized, "AUTH", msg)
				return
			}

			subject, err := uuid.Parse(claims.Subject)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			eleitor, err := eleitores.GetEleitorPublicoByID(r.Context(), subject)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyEleitor, eleitor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetEleitor recupera a identidade autenticada do contexto.
func GetEleitor(ctx context.Context) (repo.EleitorPublico, bool) {
	val, ok := ctx.Value(ContextKeyEleitor).(repo.EleitorPublico)
	return val, ok
}

// RequireAdmin recarrega o cadastro e exige papel ADMIN. Qualquer falha de
// consulta nega o acesso (fail closed).
func RequireAdmin(eleitores EleitorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			eleitor, ok := GetEleitor(r.Context())
			if !ok {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso restrito a administradores")
				return
			}

			atual, err := eleitores.GetEleitorPublicoByID(r.Context(), eleitor.ID)
			if err != nil || !strings.EqualFold(atual.Papel, repo.PapelAdmin) {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso restrito a administradores")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
