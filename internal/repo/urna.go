package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaozabele/votacao/internal/db"
)

// Urna executa a gravação transacional do voto: a marcação do eleitor, a
// entrada no livro e o contador do candidato confirmam juntos ou nenhum.
type Urna struct {
	pool *pgxpool.Pool
}

// NewUrna cria o gravador transacional de votos.
func NewUrna(pool *pgxpool.Pool) *Urna {
	return &Urna{pool: pool}
}

// RegistrarVoto aplica as duas mutações do voto em uma transação. O
// check-and-set condicional de votou é a guarda autoritativa contra voto
// duplicado, mesmo sob requisições concorrentes do mesmo eleitor.
func (u *Urna) RegistrarVoto(ctx context.Context, candidatoID, eleitorID uuid.UUID, votadoEm time.Time) error {
	return db.WithTx(ctx, u.pool, func(ctx context.Context, tx pgx.Tx) error {
		q := New(tx)

		if err := q.MarcarVotou(ctx, eleitorID); err != nil {
			return err
		}
		if _, err := q.InsertVoto(ctx, candidatoID, eleitorID, votadoEm); err != nil {
			return err
		}
		return q.IncrementarContador(ctx, candidatoID)
	})
}
