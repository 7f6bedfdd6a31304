package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/votacao/internal/repo"
	"github.com/gestaozabele/votacao/internal/util"
)

const (
	apuracaoCacheKey = "urna:apuracao"
	apuracaoCacheTTL = 10 * time.Second
)

type urnaRepository interface {
	InsertCandidato(ctx context.Context, arg repo.InsertCandidatoParams) (repo.Candidato, error)
	GetCandidatoByID(ctx context.Context, id uuid.UUID) (repo.Candidato, error)
	UpdateCandidato(ctx context.Context, id uuid.UUID, arg repo.UpdateCandidatoParams) (repo.Candidato, error)
	DeleteCandidato(ctx context.Context, id uuid.UUID) error
	ListCandidatos(ctx context.Context) ([]repo.Candidato, error)
	GetEleitorByID(ctx context.Context, id uuid.UUID) (repo.Eleitor, error)
}

type votoRecorder interface {
	RegistrarVoto(ctx context.Context, candidatoID, eleitorID uuid.UUID, votadoEm time.Time) error
}

// Apuracao é uma linha do resultado agregado por partido.
type Apuracao struct {
	Partido string `json:"partido"`
	Votos   int    `json:"votos"`
}

// CandidatoResumo é a projeção pública da listagem de candidatos.
type CandidatoResumo struct {
	Nome    string `json:"nome"`
	Partido string `json:"partido"`
}

// UrnaService concentra a gestão de candidatos e o livro de votos.
type UrnaService struct {
	repo  urnaRepository
	urna  votoRecorder
	cache redisCommander
}

// NewUrnaService cria novo serviço.
func NewUrnaService(r urnaRepository, urna votoRecorder, cache redisCommander) *UrnaService {
	return &UrnaService{repo: r, urna: urna, cache: cache}
}

// CriarCandidato valida e grava um candidato (operação de administrador; a
// guarda de papel fica no middleware).
func (s *UrnaService) CriarCandidato(ctx context.Context, arg repo.InsertCandidatoParams) (repo.Candidato, error) {
	if err := validateCandidato(arg.Nome, arg.Partido, arg.Idade); err != nil {
		return repo.Candidato{}, err
	}

	candidato, err := s.repo.InsertCandidato(ctx, repo.InsertCandidatoParams{
		Nome:    strings.TrimSpace(arg.Nome),
		Partido: strings.TrimSpace(arg.Partido),
		Idade:   arg.Idade,
	})
	if err != nil {
		return repo.Candidato{}, err
	}

	s.invalidateApuracao(ctx)
	return candidato, nil
}

// AtualizarCandidato altera os campos mutáveis do candidato.
func (s *UrnaService) AtualizarCandidato(ctx context.Context, id uuid.UUID, arg repo.UpdateCandidatoParams) (repo.Candidato, error) {
	if err := validateCandidato(arg.Nome, arg.Partido, arg.Idade); err != nil {
		return repo.Candidato{}, err
	}

	candidato, err := s.repo.UpdateCandidato(ctx, id, repo.UpdateCandidatoParams{
		Nome:    strings.TrimSpace(arg.Nome),
		Partido: strings.TrimSpace(arg.Partido),
		Idade:   arg.Idade,
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.Candidato{}, ErrCandidatoNaoEncontrado
		}
		return repo.Candidato{}, err
	}

	s.invalidateApuracao(ctx)
	return candidato, nil
}

// RemoverCandidato apaga o candidato. Candidato com votos no livro não pode
// ser removido.
func (s *UrnaService) RemoverCandidato(ctx context.Context, id uuid.UUID) (repo.Candidato, error) {
	candidato, err := s.repo.GetCandidatoByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.Candidato{}, ErrCandidatoNaoEncontrado
		}
		return repo.Candidato{}, err
	}
	if candidato.Contador > 0 {
		return repo.Candidato{}, repo.ErrCandidatoComVotos
	}

	if err := s.repo.DeleteCandidato(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.Candidato{}, ErrCandidatoNaoEncontrado
		}
		return repo.Candidato{}, err
	}

	s.invalidateApuracao(ctx)
	return candidato, nil
}

// Votar registra o voto do eleitor no candidato, exatamente uma vez.
func (s *UrnaService) Votar(ctx context.Context, eleitorID, candidatoID uuid.UUID) error {
	if _, err := s.repo.GetCandidatoByID(ctx, candidatoID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrCandidatoNaoEncontrado
		}
		return err
	}

	eleitor, err := s.repo.GetEleitorByID(ctx, eleitorID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrEleitorNaoEncontrado
		}
		return err
	}
	if eleitor.Papel == repo.PapelAdmin {
		return ErrAdminNaoVota
	}
	if eleitor.Votou {
		return repo.ErrJaVotou
	}

	// A checagem acima é cortesia; quem decide sob concorrência é o
	// check-and-set dentro da transação.
	if err := s.urna.RegistrarVoto(ctx, candidatoID, eleitorID, util.Now()); err != nil {
		if errors.Is(err, repo.ErrJaVotou) {
			return repo.ErrJaVotou
		}
		if errors.Is(err, repo.ErrNotFound) {
			return ErrCandidatoNaoEncontrado
		}
		log.Error().Err(err).Str("code", "CONSISTENCY").
			Str("eleitor_id", eleitorID.String()).
			Str("candidato_id", candidatoID.String()).
			Msg("voto não confirmado; verificar consistência do livro de votos")
		return err
	}

	s.invalidateApuracao(ctx)
	return nil
}

// Apuracao devolve os partidos ordenados por votos decrescentes; empates
// mantêm a ordem de criação dos candidatos (ordenação estável).
func (s *UrnaService) Apuracao(ctx context.Context) ([]Apuracao, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, apuracaoCacheKey).Bytes(); err == nil {
			var cached []Apuracao
			if json.Unmarshal(data, &cached) == nil {
				return cached, nil
			}
		}
	}

	candidatos, err := s.repo.ListCandidatos(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(candidatos, func(i, j int) bool {
		return candidatos[i].Contador > candidatos[j].Contador
	})

	resultado := make([]Apuracao, 0, len(candidatos))
	for _, c := range candidatos {
		resultado = append(resultado, Apuracao{Partido: c.Partido, Votos: c.Contador})
	}

	if s.cache != nil {
		if payload, err := json.Marshal(resultado); err == nil {
			_ = s.cache.Set(ctx, apuracaoCacheKey, payload, apuracaoCacheTTL).Err()
		}
	}

	return resultado, nil
}

// ListarCandidatos devolve a projeção pública {nome, partido}.
func (s *UrnaService) ListarCandidatos(ctx context.Context) ([]CandidatoResumo, error) {
	candidatos, err := s.repo.ListCandidatos(ctx)
	if err != nil {
		return nil, err
	}

	resumo := make([]CandidatoResumo, 0, len(candidatos))
	for _, c := range candidatos {
		resumo = append(resumo, CandidatoResumo{Nome: c.Nome, Partido: c.Partido})
	}
	return resumo, nil
}

func (s *UrnaService) invalidateApuracao(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, apuracaoCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("não foi possível invalidar cache da apuração")
	}
}

func validateCandidato(nome, partido string, idade int) error {
	if err := util.RequireString(nome, "nome"); err != nil {
		return validationErr(err.Error())
	}
	if err := util.RequireString(partido, "partido"); err != nil {
		return validationErr(err.Error())
	}
	if idade <= 0 {
		return validationErr("idade inválida")
	}
	return nil
}
