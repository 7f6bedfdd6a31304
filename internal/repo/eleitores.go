package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const eleitorColumns = `id, nome, idade, email, celular, endereco, titulo_eleitor, senha_hash, papel, votou, refresh_token_hash, criado_em`

func scanEleitor(row pgx.Row) (Eleitor, error) {
	var e Eleitor
	err := row.Scan(
		&e.ID,
		&e.Nome,
		&e.Idade,
		&e.Email,
		&e.Celular,
		&e.Endereco,
		&e.TituloEleitor,
		&e.SenhaHash,
		&e.Papel,
		&e.Votou,
		&e.RefreshTokenHash,
		&e.CriadoEm,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Eleitor{}, ErrNotFound
		}
		return Eleitor{}, err
	}
	return e, nil
}

// InsertEleitor grava o cadastro. A unicidade do título e a regra de
// administrador único são decididas pelo banco na escrita, nunca por
// leitura prévia.
func (q *Queries) InsertEleitor(ctx context.Context, arg InsertEleitorParams) (Eleitor, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO eleitores (nome, idade, email, celular, endereco, titulo_eleitor, senha_hash, papel)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+eleitorColumns,
		arg.Nome, arg.Idade, arg.Email, arg.Celular, arg.Endereco, arg.TituloEleitor, arg.SenhaHash, arg.Papel,
	)

	e, err := scanEleitor(row)
	if err != nil {
		if isUniqueViolation(err, "eleitores_titulo_unico") {
			return Eleitor{}, ErrTituloDuplicado
		}
		if isUniqueViolation(err, "eleitores_um_admin") {
			return Eleitor{}, ErrAdminJaExiste
		}
		return Eleitor{}, err
	}
	return e, nil
}

// GetEleitorByID carrega o cadastro completo.
func (q *Queries) GetEleitorByID(ctx context.Context, id uuid.UUID) (Eleitor, error) {
	row := q.db.QueryRow(ctx, `SELECT `+eleitorColumns+` FROM eleitores WHERE id = $1`, id)
	return scanEleitor(row)
}

// GetEleitorByTitulo carrega o cadastro pelo título de eleitor.
func (q *Queries) GetEleitorByTitulo(ctx context.Context, titulo string) (Eleitor, error) {
	row := q.db.QueryRow(ctx, `SELECT `+eleitorColumns+` FROM eleitores WHERE titulo_eleitor = $1`, titulo)
	return scanEleitor(row)
}

// GetEleitorPublicoByID carrega a projeção sem senha e sem refresh token.
func (q *Queries) GetEleitorPublicoByID(ctx context.Context, id uuid.UUID) (EleitorPublico, error) {
	var e EleitorPublico
	err := q.db.QueryRow(ctx, `
		SELECT id, nome, idade, email, celular, endereco, titulo_eleitor, papel, votou, criado_em
		FROM eleitores
		WHERE id = $1
	`, id).Scan(
		&e.ID,
		&e.Nome,
		&e.Idade,
		&e.Email,
		&e.Celular,
		&e.Endereco,
		&e.TituloEleitor,
		&e.Papel,
		&e.Votou,
		&e.CriadoEm,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return EleitorPublico{}, ErrNotFound
		}
		return EleitorPublico{}, err
	}
	return e, nil
}

// ListEleitoresPublicos lista os cadastros sem segredos, por ordem de criação.
func (q *Queries) ListEleitoresPublicos(ctx context.Context) ([]EleitorPublico, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, nome, idade, email, celular, endereco, titulo_eleitor, papel, votou, criado_em
		FROM eleitores
		ORDER BY criado_em
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var eleitores []EleitorPublico
	for rows.Next() {
		var e EleitorPublico
		if err := rows.Scan(
			&e.ID,
			&e.Nome,
			&e.Idade,
			&e.Email,
			&e.Celular,
			&e.Endereco,
			&e.TituloEleitor,
			&e.Papel,
			&e.Votou,
			&e.CriadoEm,
		); err != nil {
			return nil, err
		}
		eleitores = append(eleitores, e)
	}
	return eleitores, rows.Err()
}

// UpdateSenhaHash troca a senha armazenada. Nenhum outro campo é tocado.
func (q *Queries) UpdateSenhaHash(ctx context.Context, id uuid.UUID, senhaHash string) error {
	cmd, err := q.db.Exec(ctx, `UPDATE eleitores SET senha_hash = $2 WHERE id = $1`, id, senhaHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRefreshTokenHash grava (ou limpa, com nil) o hash do refresh corrente,
// invalidando o anterior por substituição.
func (q *Queries) SetRefreshTokenHash(ctx context.Context, id uuid.UUID, hash *string) error {
	cmd, err := q.db.Exec(ctx, `UPDATE eleitores SET refresh_token_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarcarVotou é o check-and-set autoritativo do voto único: só transita
// votou para TRUE se ainda estiver FALSE. Zero linhas afetadas significa
// voto duplicado.
func (q *Queries) MarcarVotou(ctx context.Context, id uuid.UUID) error {
	cmd, err := q.db.Exec(ctx, `UPDATE eleitores SET votou = TRUE WHERE id = $1 AND votou = FALSE`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrJaVotou
	}
	return nil
}
