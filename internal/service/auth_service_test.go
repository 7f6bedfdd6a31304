package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gestaozabele/votacao/internal/auth"
	"github.com/gestaozabele/votacao/internal/repo"
)

type stubAuthRepo struct {
	eleitores   map[uuid.UUID]*repo.Eleitor
	adminExiste bool
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{eleitores: make(map[uuid.UUID]*repo.Eleitor)}
}

func (s *stubAuthRepo) InsertEleitor(ctx context.Context, arg repo.InsertEleitorParams) (repo.Eleitor, error) {
	for _, e := range s.eleitores {
		if e.TituloEleitor == arg.TituloEleitor {
			return repo.Eleitor{}, repo.ErrTituloDuplicado
		}
	}
	if arg.Papel == repo.PapelAdmin {
		if s.adminExiste {
			return repo.Eleitor{}, repo.ErrAdminJaExiste
		}
		s.adminExiste = true
	}

	e := repo.Eleitor{
		ID:            uuid.New(),
		Nome:          arg.Nome,
		Idade:         arg.Idade,
		Email:         arg.Email,
		Celular:       arg.Celular,
		Endereco:      arg.Endereco,
		TituloEleitor: arg.TituloEleitor,
		SenhaHash:     arg.SenhaHash,
		Papel:         arg.Papel,
		CriadoEm:      time.Now().UTC(),
	}
	s.eleitores[e.ID] = &e
	return e, nil
}

func (s *stubAuthRepo) GetEleitorByID(ctx context.Context, id uuid.UUID) (repo.Eleitor, error) {
	if e, ok := s.eleitores[id]; ok {
		return *e, nil
	}
	return repo.Eleitor{}, repo.ErrNotFound
}

func (s *stubAuthRepo) GetEleitorByTitulo(ctx context.Context, titulo string) (repo.Eleitor, error) {
	for _, e := range s.eleitores {
		if e.TituloEleitor == titulo {
			return *e, nil
		}
	}
	return repo.Eleitor{}, repo.ErrNotFound
}

func (s *stubAuthRepo) GetEleitorPublicoByID(ctx context.Context, id uuid.UUID) (repo.EleitorPublico, error) {
	if e, ok := s.eleitores[id]; ok {
		return e.Publico(), nil
	}
	return repo.EleitorPublico{}, repo.ErrNotFound
}

func (s *stubAuthRepo) UpdateSenhaHash(ctx context.Context, id uuid.UUID, senhaHash string) error {
	e, ok := s.eleitores[id]
	if !ok {
		return repo.ErrNotFound
	}
	e.SenhaHash = senhaHash
	return nil
}

func (s *stubAuthRepo) SetRefreshTokenHash(ctx context.Context, id uuid.UUID, hash *string) error {
	e, ok := s.eleitores[id]
	if !ok {
		return repo.ErrNotFound
	}
	e.RefreshTokenHash = hash
	return nil
}

type stubRedis struct {
	store map[string]string
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if s.store == nil {
		s.store = make(map[string]string)
	}
	switch v := value.(type) {
	case []byte:
		s.store[key] = string(v)
	default:
		s.store[key] = fmt.Sprint(v)
	}
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	val, ok := s.store[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := s.store[key]; ok {
			delete(s.store, key)
			removed++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(removed)
	return cmd
}

func newTestAuthService(repoStub *stubAuthRepo) (*AuthService, *stubRedis) {
	redisStub := &stubRedis{}
	jwtMgr := auth.NewJWTManager(strings.Repeat("a", 32), strings.Repeat("b", 32), time.Minute, time.Hour)
	return NewAuthService(repoStub, redisStub, jwtMgr), redisStub
}

func validSignup() SignupParams {
	return SignupParams{
		Nome:          "Maria da Silva",
		Idade:         34,
		Endereco:      "Rua das Flores, 10",
		TituloEleitor: "123456789012",
		Senha:         "SenhaForte123",
	}
}

func TestSignupDefaultsToEleitor(t *testing.T) {
	svc, _ := newTestAuthService(newStubAuthRepo())

	eleitor, err := svc.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	if eleitor.Papel != repo.PapelEleitor {
		t.Fatalf("expected papel %q, got %q", repo.PapelEleitor, eleitor.Papel)
	}
	if eleitor.Votou {
		t.Fatalf("new eleitor must not have voted")
	}
}

func TestSignupRejectsInvalidTitulo(t *testing.T) {
	svc, _ := newTestAuthService(newStubAuthRepo())

	cases := []string{"", "12345", "1234567890123", "12345678901a"}
	for _, titulo := range cases {
		params := validSignup()
		params.TituloEleitor = titulo

		_, err := svc.Signup(context.Background(), params)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("titulo %q: expected ValidationError, got %v", titulo, err)
		}
	}
}

func TestSignupSecondAdminRejected(t *testing.T) {
	svc, _ := newTestAuthService(newStubAuthRepo())

	first := validSignup()
	first.Papel = "ADMIN"
	if _, err := svc.Signup(context.Background(), first); err != nil {
		t.Fatalf("first admin signup failed: %v", err)
	}

	second := validSignup()
	second.TituloEleitor = "210987654321"
	second.Papel = "ADMIN"
	if _, err := svc.Signup(context.Background(), second); !errors.Is(err, repo.ErrAdminJaExiste) {
		t.Fatalf("expected ErrAdminJaExiste, got %v", err)
	}
}

func TestLoginWrongPasswordRejected(t *testing.T) {
	repoStub := newStubAuthRepo()
	svc, _ := newTestAuthService(repoStub)

	if _, err := svc.Signup(context.Background(), validSignup()); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	result, err := svc.Login(context.Background(), "123456789012", "senhaErrada")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got result=%v err=%v", result, err)
	}

	for _, e := range repoStub.eleitores {
		if e.RefreshTokenHash != nil {
			t.Fatalf("failed login must not store refresh hash")
		}
	}
}

func TestLoginUnknownTitulo(t *testing.T) {
	svc, _ := newTestAuthService(newStubAuthRepo())

	if _, err := svc.Login(context.Background(), "999999999999", "qualquer"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoginStoresRefreshHash(t *testing.T) {
	repoStub := newStubAuthRepo()
	svc, redisStub := newTestAuthService(repoStub)

	eleitor, err := svc.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	result, err := svc.Login(context.Background(), "123456789012", "SenhaForte123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", result)
	}

	hash := auth.HashRefreshToken(result.RefreshToken)
	stored := repoStub.eleitores[eleitor.ID].RefreshTokenHash
	if stored == nil || *stored != hash {
		t.Fatalf("stored refresh hash does not match issued token")
	}
	if redisStub.store[auth.RefreshRedisKey(hash)] != "active" {
		t.Fatalf("expected active refresh entry in redis")
	}
}

func TestRefreshRotationInvalidatesOldToken(t *testing.T) {
	svc, _ := newTestAuthService(newStubAuthRepo())

	if _, err := svc.Signup(context.Background(), validSignup()); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	login, err := svc.Login(context.Background(), "123456789012", "SenhaForte123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	rotated, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}
	if rotated.RefreshToken == login.RefreshToken {
		t.Fatalf("rotation must issue a new refresh token")
	}

	if _, err := svc.Refresh(context.Background(), login.RefreshToken); !errors.Is(err, ErrRefreshRevogado) {
		t.Fatalf("expected ErrRefreshRevogado for reused token, got %v", err)
	}

	if _, err := svc.Refresh(context.Background(), rotated.RefreshToken); err != nil {
		t.Fatalf("current refresh token must stay valid: %v", err)
	}
}

func TestRefreshMissingToken(t *testing.T) {
	svc, _ := newTestAuthService(newStubAuthRepo())

	if _, err := svc.Refresh(context.Background(), ""); !errors.Is(err, ErrRefreshAusente) {
		t.Fatalf("expected ErrRefreshAusente, got %v", err)
	}
}

func TestRefreshTamperedToken(t *testing.T) {
	svc, _ := newTestAuthService(newStubAuthRepo())

	if _, err := svc.Signup(context.Background(), validSignup()); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	login, err := svc.Login(context.Background(), "123456789012", "SenhaForte123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	tampered := login.RefreshToken + "x"
	if _, err := svc.Refresh(context.Background(), tampered); !errors.Is(err, ErrRefreshInvalido) {
		t.Fatalf("expected ErrRefreshInvalido, got %v", err)
	}
}

func TestLogoutRevokesRefresh(t *testing.T) {
	repoStub := newStubAuthRepo()
	svc, _ := newTestAuthService(repoStub)

	eleitor, err := svc.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	login, err := svc.Login(context.Background(), "123456789012", "SenhaForte123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), login.RefreshToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if repoStub.eleitores[eleitor.ID].RefreshTokenHash != nil {
		t.Fatalf("logout must clear stored refresh hash")
	}
	if _, err := svc.Refresh(context.Background(), login.RefreshToken); !errors.Is(err, ErrRefreshRevogado) {
		t.Fatalf("expected ErrRefreshRevogado after logout, got %v", err)
	}
}

func TestUpdateSenhaRequiresCurrentPassword(t *testing.T) {
	repoStub := newStubAuthRepo()
	svc, _ := newTestAuthService(repoStub)

	eleitor, err := svc.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	if err := svc.UpdateSenha(context.Background(), eleitor.ID, "senhaErrada", "NovaSenha123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := svc.UpdateSenha(context.Background(), eleitor.ID, "SenhaForte123", "NovaSenha123"); err != nil {
		t.Fatalf("update senha failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), "123456789012", "NovaSenha123"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}
