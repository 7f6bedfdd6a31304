package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	httpmiddleware "github.com/gestaozabele/votacao/internal/http/middleware"
	"github.com/gestaozabele/votacao/internal/repo"
	"github.com/gestaozabele/votacao/internal/service"
)

type candidatePayload struct {
	Nome    string `json:"nome"`
	Partido string `json:"partido"`
	Idade   int    `json:"idade"`
}

// CreateCandidate grava um novo candidato (somente administrador).
func (h *Handler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	var payload candidatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	candidato, err := h.urnaService.CriarCandidato(r.Context(), repo.InsertCandidatoParams{
		Nome:    payload.Nome,
		Partido: payload.Partido,
		Idade:   payload.Idade,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, candidato)
}

// UpdateCandidate altera um candidato existente (somente administrador).
func (h *Handler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := candidateID(w, r)
	if !ok {
		return
	}

	var payload candidatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	candidato, err := h.urnaService.AtualizarCandidato(r.Context(), id, repo.UpdateCandidatoParams{
		Nome:    payload.Nome,
		Partido: payload.Partido,
		Idade:   payload.Idade,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, candidato)
}

// DeleteCandidate remove um candidato sem votos (somente administrador).
func (h *Handler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := candidateID(w, r)
	if !ok {
		return
	}

	candidato, err := h.urnaService.RemoverCandidato(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, candidato)
}

// Vote registra o voto do eleitor autenticado no candidato informado.
func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	eleitor, ok := httpmiddleware.GetEleitor(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	id, ok := candidateID(w, r)
	if !ok {
		return
	}

	if err := h.urnaService.Votar(r.Context(), eleitor.ID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "voto registrado com sucesso"})
}

// VoteCount devolve a apuração por partido, em ordem decrescente de votos.
func (h *Handler) VoteCount(w http.ResponseWriter, r *http.Request) {
	resultado, err := h.urnaService.Apuracao(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, resultado)
}

// ListCandidates devolve a projeção pública {nome, partido}.
func (h *Handler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	candidatos, err := h.urnaService.ListarCandidatos(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, candidatos)
}

func candidateID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "candidato não encontrado", nil)
		return uuid.Nil, false
	}
	return id, true
}

// handleServiceError mapeia erros de serviço para a taxonomia HTTP. Nenhum
// erro interno vaza detalhes para o cliente.
func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		WriteError(w, http.StatusBadRequest, "VALIDATION", vErr.Message, nil)
		return
	}

	switch {
	case errors.Is(err, repo.ErrTituloDuplicado):
		WriteError(w, http.StatusBadRequest, "CONFLICT", "título de eleitor já cadastrado", nil)
	case errors.Is(err, repo.ErrAdminJaExiste):
		WriteError(w, http.StatusBadRequest, "CONFLICT", "administrador já existe", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "AUTH", "credenciais inválidas", nil)
	case errors.Is(err, service.ErrRefreshAusente):
		WriteError(w, http.StatusUnauthorized, "AUTH", "refresh token ausente", nil)
	case errors.Is(err, service.ErrRefreshInvalido):
		WriteError(w, http.StatusUnauthorized, "AUTH", "refresh token inválido", nil)
	case errors.Is(err, service.ErrRefreshRevogado):
		WriteError(w, http.StatusUnauthorized, "AUTH", "refresh token revogado", nil)
	case errors.Is(err, service.ErrAdminNaoVota):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "administrador não pode votar", nil)
	case errors.Is(err, service.ErrCandidatoNaoEncontrado):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "candidato não encontrado", nil)
	case errors.Is(err, service.ErrEleitorNaoEncontrado):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "eleitor não encontrado", nil)
	case errors.Is(err, repo.ErrJaVotou):
		WriteError(w, http.StatusConflict, "CONFLICT", "eleitor já votou", nil)
	case errors.Is(err, repo.ErrCandidatoComVotos):
		WriteError(w, http.StatusConflict, "CONFLICT", "candidato possui votos registrados", nil)
	case errors.Is(err, repo.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "registro não encontrado", nil)
	default:
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}
