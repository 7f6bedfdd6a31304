package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gestaozabele/votacao/internal/repo"
)

type stubUrnaRepo struct {
	candidatos []*repo.Candidato
	eleitores  map[uuid.UUID]*repo.Eleitor
	listCalls  int
}

func newStubUrnaRepo() *stubUrnaRepo {
	return &stubUrnaRepo{eleitores: make(map[uuid.UUID]*repo.Eleitor)}
}

func (s *stubUrnaRepo) addCandidato(nome, partido string, contador int) *repo.Candidato {
	c := &repo.Candidato{
		ID:       uuid.New(),
		Seq:      int64(len(s.candidatos) + 1),
		Nome:     nome,
		Partido:  partido,
		Idade:    45,
		Contador: contador,
		CriadoEm: time.Now().UTC(),
	}
	s.candidatos = append(s.candidatos, c)
	return c
}

func (s *stubUrnaRepo) addEleitor(papel string, votou bool) *repo.Eleitor {
	e := &repo.Eleitor{
		ID:            uuid.New(),
		Nome:          "João de Souza",
		Idade:         28,
		Endereco:      "Av. Central, 200",
		TituloEleitor: "987654321098",
		Papel:         papel,
		Votou:         votou,
	}
	s.eleitores[e.ID] = e
	return e
}

func (s *stubUrnaRepo) InsertCandidato(ctx context.Context, arg repo.InsertCandidatoParams) (repo.Candidato, error) {
	c := s.addCandidato(arg.Nome, arg.Partido, 0)
	c.Idade = arg.Idade
	return *c, nil
}

func (s *stubUrnaRepo) GetCandidatoByID(ctx context.Context, id uuid.UUID) (repo.Candidato, error) {
	for _, c := range s.candidatos {
		if c.ID == id {
			return *c, nil
		}
	}
	return repo.Candidato{}, repo.ErrNotFound
}

func (s *stubUrnaRepo) UpdateCandidato(ctx context.Context, id uuid.UUID, arg repo.UpdateCandidatoParams) (repo.Candidato, error) {
	for _, c := range s.candidatos {
		if c.ID == id {
			c.Nome = arg.Nome
			c.Partido = arg.Partido
			c.Idade = arg.Idade
			return *c, nil
		}
	}
	return repo.Candidato{}, repo.ErrNotFound
}

func (s *stubUrnaRepo) DeleteCandidato(ctx context.Context, id uuid.UUID) error {
	for i, c := range s.candidatos {
		if c.ID == id {
			if c.Contador > 0 {
				return repo.ErrCandidatoComVotos
			}
			s.candidatos = append(s.candidatos[:i], s.candidatos[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (s *stubUrnaRepo) ListCandidatos(ctx context.Context) ([]repo.Candidato, error) {
	s.listCalls++
	out := make([]repo.Candidato, 0, len(s.candidatos))
	for _, c := range s.candidatos {
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubUrnaRepo) GetEleitorByID(ctx context.Context, id uuid.UUID) (repo.Eleitor, error) {
	if e, ok := s.eleitores[id]; ok {
		return *e, nil
	}
	return repo.Eleitor{}, repo.ErrNotFound
}

type stubVotoRecorder struct {
	repo *stubUrnaRepo
	err  error
}

func (s *stubVotoRecorder) RegistrarVoto(ctx context.Context, candidatoID, eleitorID uuid.UUID, votadoEm time.Time) error {
	if s.err != nil {
		return s.err
	}

	e, ok := s.repo.eleitores[eleitorID]
	if !ok {
		return repo.ErrNotFound
	}
	if e.Votou {
		return repo.ErrJaVotou
	}

	for _, c := range s.repo.candidatos {
		if c.ID == candidatoID {
			e.Votou = true
			c.Contador++
			return nil
		}
	}
	return repo.ErrNotFound
}

func newTestUrnaService(repoStub *stubUrnaRepo) (*UrnaService, *stubRedis) {
	redisStub := &stubRedis{}
	urna := &stubVotoRecorder{repo: repoStub}
	return NewUrnaService(repoStub, urna, redisStub), redisStub
}

func TestVotarRegistraUmaVez(t *testing.T) {
	repoStub := newStubUrnaRepo()
	candidato := repoStub.addCandidato("Ana Lima", "Partido Azul", 0)
	eleitor := repoStub.addEleitor(repo.PapelEleitor, false)
	svc, _ := newTestUrnaService(repoStub)

	if err := svc.Votar(context.Background(), eleitor.ID, candidato.ID); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	if candidato.Contador != 1 {
		t.Fatalf("expected contador 1, got %d", candidato.Contador)
	}

	if err := svc.Votar(context.Background(), eleitor.ID, candidato.ID); !errors.Is(err, repo.ErrJaVotou) {
		t.Fatalf("expected ErrJaVotou on second vote, got %v", err)
	}
	if candidato.Contador != 1 {
		t.Fatalf("double vote must not change contador, got %d", candidato.Contador)
	}
}

func TestVotarDecididoPeloRegistro(t *testing.T) {
	// Cadastro ainda sem a marca de voto, mas o registro transacional já
	// viu este eleitor: quem decide é o check-and-set, não a leitura.
	repoStub := newStubUrnaRepo()
	candidato := repoStub.addCandidato("Ana Lima", "Partido Azul", 0)
	eleitor := repoStub.addEleitor(repo.PapelEleitor, false)

	redisStub := &stubRedis{}
	svc := NewUrnaService(repoStub, &stubVotoRecorder{repo: repoStub, err: repo.ErrJaVotou}, redisStub)

	if err := svc.Votar(context.Background(), eleitor.ID, candidato.ID); !errors.Is(err, repo.ErrJaVotou) {
		t.Fatalf("expected ErrJaVotou from recorder, got %v", err)
	}
}

func TestVotarAdminRejeitado(t *testing.T) {
	repoStub := newStubUrnaRepo()
	candidato := repoStub.addCandidato("Ana Lima", "Partido Azul", 0)
	admin := repoStub.addEleitor(repo.PapelAdmin, false)
	svc, _ := newTestUrnaService(repoStub)

	if err := svc.Votar(context.Background(), admin.ID, candidato.ID); !errors.Is(err, ErrAdminNaoVota) {
		t.Fatalf("expected ErrAdminNaoVota, got %v", err)
	}
	if candidato.Contador != 0 {
		t.Fatalf("admin vote must not change contador")
	}
}

func TestVotarCandidatoInexistente(t *testing.T) {
	repoStub := newStubUrnaRepo()
	eleitor := repoStub.addEleitor(repo.PapelEleitor, false)
	svc, _ := newTestUrnaService(repoStub)

	if err := svc.Votar(context.Background(), eleitor.ID, uuid.New()); !errors.Is(err, ErrCandidatoNaoEncontrado) {
		t.Fatalf("expected ErrCandidatoNaoEncontrado, got %v", err)
	}
}

func TestVotarEleitorInexistente(t *testing.T) {
	repoStub := newStubUrnaRepo()
	candidato := repoStub.addCandidato("Ana Lima", "Partido Azul", 0)
	svc, _ := newTestUrnaService(repoStub)

	if err := svc.Votar(context.Background(), uuid.New(), candidato.ID); !errors.Is(err, ErrEleitorNaoEncontrado) {
		t.Fatalf("expected ErrEleitorNaoEncontrado, got %v", err)
	}
}

func TestApuracaoOrdenaDecrescenteComEmpateEstavel(t *testing.T) {
	repoStub := newStubUrnaRepo()
	repoStub.addCandidato("Ana Lima", "Partido Azul", 3)
	repoStub.addCandidato("Bruno Reis", "Partido Verde", 5)
	repoStub.addCandidato("Carla Dias", "Partido Roxo", 3)
	svc, _ := newTestUrnaService(repoStub)

	resultado, err := svc.Apuracao(context.Background())
	if err != nil {
		t.Fatalf("apuracao failed: %v", err)
	}

	esperado := []Apuracao{
		{Partido: "Partido Verde", Votos: 5},
		{Partido: "Partido Azul", Votos: 3},
		{Partido: "Partido Roxo", Votos: 3},
	}
	if len(resultado) != len(esperado) {
		t.Fatalf("expected %d rows, got %d", len(esperado), len(resultado))
	}
	for i := range esperado {
		if resultado[i] != esperado[i] {
			t.Fatalf("row %d: expected %+v, got %+v", i, esperado[i], resultado[i])
		}
	}
}

func TestApuracaoUsaCache(t *testing.T) {
	repoStub := newStubUrnaRepo()
	repoStub.addCandidato("Ana Lima", "Partido Azul", 3)
	svc, _ := newTestUrnaService(repoStub)

	if _, err := svc.Apuracao(context.Background()); err != nil {
		t.Fatalf("first apuracao failed: %v", err)
	}
	if _, err := svc.Apuracao(context.Background()); err != nil {
		t.Fatalf("second apuracao failed: %v", err)
	}

	if repoStub.listCalls != 1 {
		t.Fatalf("expected single repository read, got %d", repoStub.listCalls)
	}
}

func TestVotarInvalidaCacheDaApuracao(t *testing.T) {
	repoStub := newStubUrnaRepo()
	candidato := repoStub.addCandidato("Ana Lima", "Partido Azul", 0)
	eleitor := repoStub.addEleitor(repo.PapelEleitor, false)
	svc, _ := newTestUrnaService(repoStub)

	if _, err := svc.Apuracao(context.Background()); err != nil {
		t.Fatalf("apuracao failed: %v", err)
	}
	if err := svc.Votar(context.Background(), eleitor.ID, candidato.ID); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	resultado, err := svc.Apuracao(context.Background())
	if err != nil {
		t.Fatalf("apuracao after vote failed: %v", err)
	}
	if resultado[0].Votos != 1 {
		t.Fatalf("expected fresh tally after vote, got %+v", resultado)
	}
}

func TestRemoverCandidatoComVotos(t *testing.T) {
	repoStub := newStubUrnaRepo()
	candidato := repoStub.addCandidato("Ana Lima", "Partido Azul", 2)
	svc, _ := newTestUrnaService(repoStub)

	if _, err := svc.RemoverCandidato(context.Background(), candidato.ID); !errors.Is(err, repo.ErrCandidatoComVotos) {
		t.Fatalf("expected ErrCandidatoComVotos, got %v", err)
	}
}

func TestRemoverCandidatoSemVotos(t *testing.T) {
	repoStub := newStubUrnaRepo()
	candidato := repoStub.addCandidato("Ana Lima", "Partido Azul", 0)
	svc, _ := newTestUrnaService(repoStub)

	removido, err := svc.RemoverCandidato(context.Background(), candidato.ID)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if removido.ID != candidato.ID {
		t.Fatalf("expected removed candidato %s, got %s", candidato.ID, removido.ID)
	}
	if len(repoStub.candidatos) != 0 {
		t.Fatalf("candidato must be gone from repository")
	}
}

func TestCriarCandidatoValidacao(t *testing.T) {
	repoStub := newStubUrnaRepo()
	svc, _ := newTestUrnaService(repoStub)

	_, err := svc.CriarCandidato(context.Background(), repo.InsertCandidatoParams{Nome: "", Partido: "Partido Azul", Idade: 40})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	_, err = svc.CriarCandidato(context.Background(), repo.InsertCandidatoParams{Nome: "Ana Lima", Partido: "Partido Azul", Idade: 0})
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for idade, got %v", err)
	}
}

func TestAtualizarCandidatoInexistente(t *testing.T) {
	repoStub := newStubUrnaRepo()
	svc, _ := newTestUrnaService(repoStub)

	_, err := svc.AtualizarCandidato(context.Background(), uuid.New(), repo.UpdateCandidatoParams{Nome: "Ana Lima", Partido: "Partido Azul", Idade: 40})
	if !errors.Is(err, ErrCandidatoNaoEncontrado) {
		t.Fatalf("expected ErrCandidatoNaoEncontrado, got %v", err)
	}
}

func TestListarCandidatosProjecaoPublica(t *testing.T) {
	repoStub := newStubUrnaRepo()
	repoStub.addCandidato("Ana Lima", "Partido Azul", 7)
	svc, _ := newTestUrnaService(repoStub)

	lista, err := svc.ListarCandidatos(context.Background())
	if err != nil {
		t.Fatalf("listagem failed: %v", err)
	}
	if len(lista) != 1 {
		t.Fatalf("expected 1 candidato, got %d", len(lista))
	}
	if lista[0] != (CandidatoResumo{Nome: "Ana Lima", Partido: "Partido Azul"}) {
		t.Fatalf("unexpected projection: %+v", lista[0])
	}
}
