package pgdb

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/stockwatch-tech/go-backend/pkg/e"
)

// RecipientRepo отдаёт зарегистрированных получателей уведомлений.
type RecipientRepo struct {
	pool *pgxpool.Pool
}

func NewRecipientRepo(pool *pgxpool.Pool) *RecipientRepo {
	return &RecipientRepo{pool: pool}
}

func (r *RecipientRepo) ListEmails(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT email FROM recipients ORDER BY id`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return emails, nil
}
