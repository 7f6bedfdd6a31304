package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const candidatoColumns = `id, seq, nome, partido, idade, contador, criado_em`

func scanCandidato(row pgx.Row) (Candidato, error) {
	var c Candidato
	err := row.Scan(&c.ID, &c.Seq, &c.Nome, &c.Partido, &c.Idade, &c.Contador, &c.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Candidato{}, ErrNotFound
		}
		return Candidato{}, err
	}
	return c, nil
}

// InsertCandidato grava um novo candidato.
func (q *Queries) InsertCandidato(ctx context.Context, arg InsertCandidatoParams) (Candidato, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO candidatos (nome, partido, idade)
		VALUES ($1, $2, $3)
		RETURNING `+candidatoColumns,
		arg.Nome, arg.Partido, arg.Idade,
	)
	return scanCandidato(row)
}

// GetCandidatoByID carrega o candidato.
func (q *Queries) GetCandidatoByID(ctx context.Context, id uuid.UUID) (Candidato, error) {
	row := q.db.QueryRow(ctx, `SELECT `+candidatoColumns+` FROM candidatos WHERE id = $1`, id)
	return scanCandidato(row)
}

// UpdateCandidato atualiza os campos mutáveis e devolve o registro novo.
func (q *Queries) UpdateCandidato(ctx context.Context, id uuid.UUID, arg UpdateCandidatoParams) (Candidato, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE candidatos
		SET nome = $2, partido = $3, idade = $4
		WHERE id = $1
		RETURNING `+candidatoColumns,
		id, arg.Nome, arg.Partido, arg.Idade,
	)
	return scanCandidato(row)
}

// DeleteCandidato remove o candidato. A FK do livro de votos bloqueia a
// remoção de candidato já votado.
func (q *Queries) DeleteCandidato(ctx context.Context, id uuid.UUID) error {
	cmd, err := q.db.Exec(ctx, `DELETE FROM candidatos WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCandidatoComVotos
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCandidatos devolve todos os candidatos em ordem de criação.
func (q *Queries) ListCandidatos(ctx context.Context) ([]Candidato, error) {
	rows, err := q.db.Query(ctx, `SELECT `+candidatoColumns+` FROM candidatos ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidatos []Candidato
	for rows.Next() {
		var c Candidato
		if err := rows.Scan(&c.ID, &c.Seq, &c.Nome, &c.Partido, &c.Idade, &c.Contador, &c.CriadoEm); err != nil {
			return nil, err
		}
		candidatos = append(candidatos, c)
	}
	return candidatos, rows.Err()
}

// InsertVoto acrescenta a entrada no livro de votos. A unicidade por eleitor
// é reforçada também aqui pela constraint votos_um_por_eleitor.
func (q *Queries) InsertVoto(ctx context.Context, candidatoID, eleitorID uuid.UUID, votadoEm time.Time) (Voto, error) {
	var v Voto
	err := q.db.QueryRow(ctx, `
		INSERT INTO votos (candidato_id, eleitor_id, votado_em)
		VALUES ($1, $2, $3)
		RETURNING id, candidato_id, eleitor_id, votado_em
	`, candidatoID, eleitorID, votadoEm).Scan(&v.ID, &v.CandidatoID, &v.EleitorID, &v.VotadoEm)
	if err != nil {
		if isUniqueViolation(err, "votos_um_por_eleitor") {
			return Voto{}, ErrJaVotou
		}
		return Voto{}, err
	}
	return v, nil
}

// IncrementarContador mantém o contador derivado igual ao tamanho da
// sequência de votos do candidato.
func (q *Queries) IncrementarContador(ctx context.Context, candidatoID uuid.UUID) error {
	cmd, err := q.db.Exec(ctx, `UPDATE candidatos SET contador = contador + 1 WHERE id = $1`, candidatoID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
