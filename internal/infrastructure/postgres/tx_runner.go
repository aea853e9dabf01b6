package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/crm-api/internal/application/auth"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// Ensure TxRunner implements auth.SignupTxRunner.
var _ auth.SignupTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunSignup inicia una transacción, ejecuta fn con repos de org, usuarios e invitaciones atados a la tx
// y hace Commit o Rollback.
func (r *TxRunner) RunSignup(ctx context.Context, fn func(
	orgRepo repository.OrgRepository,
	userRepo repository.UserRepository,
	inviteRepo repository.InviteRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewOrgRepository(tx), NewUserRepository(tx), NewInviteRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
