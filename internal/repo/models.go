package repo

import (
	"time"

	"github.com/google/uuid"
)

// Papéis aceitos no cadastro.
const (
	PapelEleitor = "ELEITOR"
	PapelAdmin   = "ADMIN"
)

// Eleitor representa o cadastro completo, incluindo credenciais.
type Eleitor struct {
	ID               uuid.UUID
	Nome             string
	Idade            int
	Email            *string
	Celular          *string
	Endereco         string
	TituloEleitor    string
	SenhaHash        string
	Papel            string
	Votou            bool
	RefreshTokenHash *string
	CriadoEm         time.Time
}

// EleitorPublico é a projeção sem senha nem refresh token, usada em respostas
// e no contexto de requisições autenticadas.
type EleitorPublico struct {
	ID            uuid.UUID `json:"id"`
	Nome          string    `json:"nome"`
	Idade         int       `json:"idade"`
	Email         *string   `json:"email,omitempty"`
	Celular       *string   `json:"celular,omitempty"`
	Endereco      string    `json:"endereco"`
	TituloEleitor string    `json:"tituloEleitor"`
	Papel         string    `json:"papel"`
	Votou         bool      `json:"votou"`
	CriadoEm      time.Time `json:"criadoEm"`
}

// Publico projeta o cadastro para a forma sem segredos.
func (e Eleitor) Publico() EleitorPublico {
	return EleitorPublico{
		ID:            e.ID,
		Nome:          e.Nome,
		Idade:         e.Idade,
		Email:         e.Email,
		Celular:       e.Celular,
		Endereco:      e.Endereco,
		TituloEleitor: e.TituloEleitor,
		Papel:         e.Papel,
		Votou:         e.Votou,
		CriadoEm:      e.CriadoEm,
	}
}

// Candidato modela a tabela de candidatos. Seq preserva a ordem de criação
// para desempate estável na apuração.
type Candidato struct {
	ID       uuid.UUID `json:"id"`
	Seq      int64     `json:"-"`
	Nome     string    `json:"nome"`
	Partido  string    `json:"partido"`
	Idade    int       `json:"idade"`
	Contador int       `json:"contador"`
	CriadoEm time.Time `json:"criadoEm"`
}

// Voto registra um voto individual no livro de votos.
type Voto struct {
	ID          uuid.UUID `json:"id"`
	CandidatoID uuid.UUID `json:"candidatoId"`
	EleitorID   uuid.UUID `json:"eleitorId"`
	VotadoEm    time.Time `json:"votadoEm"`
}

// InsertEleitorParams agrupa os campos do cadastro.
type InsertEleitorParams struct {
	Nome          string
	Idade         int
	Email         *string
	Celular       *string
	Endereco      string
	TituloEleitor string
	SenhaHash     string
	Papel         string
}

// InsertCandidatoParams agrupa os campos do candidato.
type InsertCandidatoParams struct {
	Nome    string
	Partido string
	Idade   int
}

// UpdateCandidatoParams agrupa os campos mutáveis do candidato.
type UpdateCandidatoParams struct {
	Nome    string
	Partido string
	Idade   int
}
