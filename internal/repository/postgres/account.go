package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

type accountRepository struct {
	BaseRepository
}

func NewAccountRepository(base BaseRepository) repository.AccountRepository {
	return &accountRepository{base}
}

func (r *accountRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, account *model.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, role_id, created_at, updated_at, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
	`

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt

	_, err := tx.ExecContext(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.RoleID,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("email already registered", err)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	query := `SELECT * FROM accounts WHERE id = $1 AND is_deleted = FALSE`

	var account model.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("account", err)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) GetByEmailWithRole(ctx context.Context, email string) (*model.Account, *model.Role, error) {
	query := `
		SELECT a.id, a.email, a.password_hash, a.role_id, a.created_at, a.updated_at, a.is_deleted,
		       r.id AS "role.id", r.name AS "role.name", r.description AS "role.description",
		       r.has_all_permissions AS "role.has_all_permissions",
		       r.created_at AS "role.created_at", r.updated_at AS "role.updated_at",
		       r.is_deleted AS "role.is_deleted"
		FROM accounts a
		JOIN roles r ON r.id = a.role_id
		WHERE a.email = $1 AND a.is_deleted = FALSE
	`

	var row struct {
		model.Account
		Role model.Role `db:"role"`
	}
	if err := r.db.GetContext(ctx, &row, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperrors.NotFound("account", err)
		}
		return nil, nil, fmt.Errorf("failed to get account with role: %w", err)
	}

	account := row.Account
	role := row.Role
	return &account, &role, nil
}

func (r *accountRepository) SoftDeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	// No is_deleted guard: flipping an already-deleted row is a no-op, which
	// is what makes repeated deletes safe without locking.
	query := `UPDATE accounts SET is_deleted = TRUE, updated_at = $1 WHERE id = $2`

	if _, err := tx.ExecContext(ctx, query, time.Now(), id); err != nil {
		return fmt.Errorf("failed to soft delete account: %w", err)
	}
	return nil
}
