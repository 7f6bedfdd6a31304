package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/votacao/internal/auth"
	"github.com/gestaozabele/votacao/internal/repo"
	"github.com/gestaozabele/votacao/internal/util"
)

type authRepository interface {
	InsertEleitor(ctx context.Context, arg repo.InsertEleitorParams) (repo.Eleitor, error)
	GetEleitorByID(ctx context.Context, id uuid.UUID) (repo.Eleitor, error)
	GetEleitorByTitulo(ctx context.Context, titulo string) (repo.Eleitor, error)
	GetEleitorPublicoByID(ctx context.Context, id uuid.UUID) (repo.EleitorPublico, error)
	UpdateSenhaHash(ctx context.Context, id uuid.UUID, senhaHash string) error
	SetRefreshTokenHash(ctx context.Context, id uuid.UUID, hash *string) error
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService concentra cadastro, autenticação e rotação de sessões.
type AuthService struct {
	repo  authRepository
	redis redisCommander
	jwt   *auth.JWTManager
}

// NewAuthService cria novo serviço.
func NewAuthService(r authRepository, redisClient redisCommander, jwtMgr *auth.JWTManager) *AuthService {
	return &AuthService{repo: r, redis: redisClient, jwt: jwtMgr}
}

// JWT expõe o gerenciador de tokens (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// SignupParams agrupa os campos do cadastro público.
type SignupParams struct {
	Nome          string
	Idade         int
	Email         *string
	Celular       *string
	Endereco      string
	TituloEleitor string
	Senha         string
	Papel         string
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	AccessToken   string
	RefreshToken  string
	RefreshExpiry time.Time
	Eleitor       repo.EleitorPublico
}

// Signup valida e grava o cadastro. A senha entra já em forma de hash; o
// papel omitido vira ELEITOR e a regra de administrador único é decidida
// pelo banco na escrita.
func (s *AuthService) Signup(ctx context.Context, arg SignupParams) (repo.EleitorPublico, error) {
	if err := util.RequireString(arg.Nome, "nome"); err != nil {
		return repo.EleitorPublico{}, validationErr(err.Error())
	}
	if arg.Idade <= 0 {
		return repo.EleitorPublico{}, validationErr("idade inválida")
	}
	if err := util.RequireString(arg.Endereco, "endereço"); err != nil {
		return repo.EleitorPublico{}, validationErr(err.Error())
	}
	if err := util.ValidateTituloEleitor(arg.TituloEleitor); err != nil {
		return repo.EleitorPublico{}, validationErr(err.Error())
	}
	if err := util.ValidatePassword(arg.Senha); err != nil {
		return repo.EleitorPublico{}, validationErr(err.Error())
	}
	if arg.Email != nil && strings.TrimSpace(*arg.Email) != "" {
		if err := util.ValidateEmail(*arg.Email); err != nil {
			return repo.EleitorPublico{}, validationErr(err.Error())
		}
	}

	papel := strings.ToUpper(strings.TrimSpace(arg.Papel))
	if papel == "" {
		papel = repo.PapelEleitor
	}
	if papel != repo.PapelEleitor && papel != repo.PapelAdmin {
		return repo.EleitorPublico{}, validationErr("papel desconhecido")
	}

	senhaHash, err := auth.Hash(arg.Senha)
	if err != nil {
		return repo.EleitorPublico{}, err
	}

	eleitor, err := s.repo.InsertEleitor(ctx, repo.InsertEleitorParams{
		Nome:          strings.TrimSpace(arg.Nome),
		Idade:         arg.Idade,
		Email:         arg.Email,
		Celular:       arg.Celular,
		Endereco:      strings.TrimSpace(arg.Endereco),
		TituloEleitor: strings.TrimSpace(arg.TituloEleitor),
		SenhaHash:     senhaHash,
		Papel:         papel,
	})
	if err != nil {
		return repo.EleitorPublico{}, err
	}

	return eleitor.Publico(), nil
}

// Login autentica pelo título de eleitor e emite o par de tokens.
func (s *AuthService) Login(ctx context.Context, titulo, senha string) (*LoginResult, error) {
	eleitor, err := s.repo.GetEleitorByTitulo(ctx, strings.TrimSpace(titulo))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login: eleitor não encontrado")
		}
		return nil, err
	}

	ok, err := auth.Verify(senha, eleitor.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verificação de senha falhou")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Msg("login: senha inválida")
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, eleitor)
}

// Refresh troca refresh token válido por um novo par, invalidando o antigo.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*LoginResult, error) {
	if rawToken == "" {
		return nil, ErrRefreshAusente
	}

	claims, err := s.jwt.ParseRefreshToken(rawToken)
	if err != nil {
		return nil, ErrRefreshInvalido
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrRefreshInvalido
	}

	eleitor, err := s.repo.GetEleitorByID(ctx, subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRefreshRevogado
		}
		return nil, err
	}

	hash := auth.HashRefreshToken(rawToken)
	if eleitor.RefreshTokenHash == nil || *eleitor.RefreshTokenHash != hash {
		return nil, ErrRefreshRevogado
	}

	if s.redis != nil {
		status, err := s.redis.Get(ctx, auth.RefreshRedisKey(hash)).Result()
		if err == redis.Nil || (err == nil && status != "active") {
			return nil, ErrRefreshRevogado
		}
		if err != nil && err != redis.Nil {
			return nil, err
		}
	}

	result, err := s.issueTokens(ctx, eleitor)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if err := s.redis.Del(ctx, auth.RefreshRedisKey(hash)).Err(); err != nil && err != redis.Nil {
			return nil, err
		}
	}

	return result, nil
}

// Logout revoga o refresh corrente do eleitor.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}

	claims, err := s.jwt.ParseRefreshToken(rawToken)
	if err != nil {
		return nil
	}
	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil
	}

	if err := s.repo.SetRefreshTokenHash(ctx, subject, nil); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if s.redis != nil {
		hash := auth.HashRefreshToken(rawToken)
		if err := s.redis.Del(ctx, auth.RefreshRedisKey(hash)).Err(); err != nil && err != redis.Nil {
			return err
		}
	}
	return nil
}

// Perfil devolve o cadastro sem segredos.
func (s *AuthService) Perfil(ctx context.Context, id uuid.UUID) (repo.EleitorPublico, error) {
	return s.repo.GetEleitorPublicoByID(ctx, id)
}

// UpdateSenha confere a senha atual e grava o hash da nova. Nenhum outro
// campo do cadastro é alterado.
func (s *AuthService) UpdateSenha(ctx context.Context, id uuid.UUID, senhaAtual, senhaNova string) error {
	eleitor, err := s.repo.GetEleitorByID(ctx, id)
	if err != nil {
		return err
	}

	ok, err := auth.Verify(senhaAtual, eleitor.SenhaHash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}

	if err := util.ValidatePassword(senhaNova); err != nil {
		return validationErr(err.Error())
	}

	senhaHash, err := auth.Hash(senhaNova)
	if err != nil {
		return err
	}

	return s.repo.UpdateSenhaHash(ctx, id, senhaHash)
}

func (s *AuthService) issueTokens(ctx context.Context, eleitor repo.Eleitor) (*LoginResult, error) {
	accessToken, err := s.jwt.GenerateAccessToken(auth.Identity{
		ID:            eleitor.ID,
		Nome:          eleitor.Nome,
		Papel:         eleitor.Papel,
		TituloEleitor: eleitor.TituloEleitor,
	})
	if err != nil {
		return nil, err
	}

	refreshToken, expires, err := s.jwt.GenerateRefreshToken(eleitor.ID)
	if err != nil {
		return nil, err
	}

	// Substituir o hash armazenado invalida o refresh anterior.
	hash := auth.HashRefreshToken(refreshToken)
	if err := s.repo.SetRefreshTokenHash(ctx, eleitor.ID, &hash); err != nil {
		return nil, err
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, auth.RefreshRedisKey(hash), "active", time.Until(expires)).Err(); err != nil {
			return nil, err
		}
	}

	return &LoginResult{
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		RefreshExpiry: expires,
		Eleitor:       eleitor.Publico(),
	}, nil
}
