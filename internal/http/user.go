package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	httpmiddleware "github.com/gestaozabele/votacao/internal/http/middleware"
	"github.com/gestaozabele/votacao/internal/repo"
	"github.com/gestaozabele/votacao/internal/service"
)

const (
	accessCookieName  = "accessToken"
	refreshCookieName = "refreshToken"
)

// Signup registra um novo eleitor (ou o único administrador).
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Nome          string  `json:"nome"`
		Idade         int     `json:"idade"`
		Email         *string `json:"email"`
		Celular       *string `json:"celular"`
		Endereco      string  `json:"endereco"`
		TituloEleitor string  `json:"tituloEleitor"`
		Senha         string  `json:"senha"`
		Papel         string  `json:"papel"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	eleitor, err := h.authService.Signup(r.Context(), service.SignupParams{
		Nome:          payload.Nome,
		Idade:         payload.Idade,
		Email:         payload.Email,
		Celular:       payload.Celular,
		Endereco:      payload.Endereco,
		TituloEleitor: payload.TituloEleitor,
		Senha:         payload.Senha,
		Papel:         payload.Papel,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, eleitor)
}

// Login autentica e emite tokens via cookies e corpo.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TituloEleitor string `json:"tituloEleitor"`
		Senha         string `json:"senha"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if strings.TrimSpace(payload.TituloEleitor) == "" || payload.Senha == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "título de eleitor e senha são obrigatórios", nil)
		return
	}

	result, err := h.authService.Login(r.Context(), payload.TituloEleitor, payload.Senha)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "eleitor não encontrado", nil)
			return
		}
		h.handleServiceError(w, err)
		return
	}

	h.setAuthCookies(w, result)
	WriteJSON(w, http.StatusOK, map[string]any{
		"eleitor":      result.Eleitor,
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	})
}

// Refresh rotaciona o par de tokens.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.authService.Refresh(r.Context(), h.refreshFromRequest(r))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.setAuthCookies(w, result)
	WriteJSON(w, http.StatusOK, map[string]any{
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	})
}

// Logout revoga o refresh corrente e limpa cookies.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), h.refreshFromRequest(r)); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.clearAuthCookies(w)
	WriteJSON(w, http.StatusOK, map[string]string{"message": "sessão encerrada"})
}

// Profile devolve a identidade autenticada, sem segredos.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	eleitor, ok := httpmiddleware.GetEleitor(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	WriteJSON(w, http.StatusOK, eleitor)
}

// UpdatePassword confere a senha atual e grava a nova.
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	eleitor, ok := httpmiddleware.GetEleitor(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	var payload struct {
		SenhaAtual string `json:"senhaAtual"`
		SenhaNova  string `json:"senhaNova"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if payload.SenhaAtual == "" || payload.SenhaNova == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "senhaAtual e senhaNova são obrigatórias", nil)
		return
	}

	if err := h.authService.UpdateSenha(r.Context(), eleitor.ID, payload.SenhaAtual, payload.SenhaNova); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			WriteError(w, http.StatusUnauthorized, "AUTH", "senha atual incorreta", nil)
			return
		}
		h.handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "senha atualizada com sucesso"})
}

func (h *Handler) refreshFromRequest(r *http.Request) string {
	if c, err := r.Cookie(refreshCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	var payload struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err == nil {
		return payload.RefreshToken
	}
	return ""
}

func (h *Handler) setAuthCookies(w http.ResponseWriter, result *service.LoginResult) {
	secure := !h.devCookies
	sameSite := http.SameSiteNoneMode
	if h.devCookies {
		sameSite = http.SameSiteLaxMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    result.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		MaxAge:   int(h.cfg.JWTAccessTTL / time.Second),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    result.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  result.RefreshExpiry,
	})
}

func (h *Handler) clearAuthCookies(w http.ResponseWriter) {
	secure := !h.devCookies
	sameSite := http.SameSiteNoneMode
	if h.devCookies {
		sameSite = http.SameSiteLaxMode
	}

	for _, name := range []string{accessCookieName, refreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   secure,
			SameSite: sameSite,
			MaxAge:   -1,
		})
	}
}
