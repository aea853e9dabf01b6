package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL (usable con pool o tx).
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, org_id, name, email, username, phone, password_hash, role, profile,
	manager_id, avatar, status, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.OrgID, &u.Name, &u.Email, &u.Username, &u.Phone, &u.PasswordHash, &u.Role,
		&u.Profile, &u.ManagerID, &u.Avatar, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create persiste un nuevo usuario. Email, username o teléfono repetidos -> ErrEmailAlreadyExists.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.OrgID, user.Name, user.Email, user.Username, user.Phone, user.PasswordHash,
		user.Role, user.Profile, user.ManagerID, user.Avatar, user.Status, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", mapError(err, domain.ErrNotFound))
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, domain.ErrUserNotFound
	}
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, domain.ErrUserNotFound)
	}
	return u, nil
}

// GetByIdentifier busca por email o username (sin distinguir mayúsculas) o por teléfono.
func (r *UserRepo) GetByIdentifier(ctx context.Context, identifier string) (*entity.User, error) {
	id := strings.TrimSpace(identifier)
	if id == "" {
		return nil, domain.ErrUserNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users
		WHERE email = lower($1) OR username = lower($1) OR phone = $1
		ORDER BY created_at LIMIT 1`
	u, err := scanUser(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, domain.ErrUserNotFound)
	}
	return u, nil
}

// Taken indica si alguno de los identificadores no vacíos ya existe.
func (r *UserRepo) Taken(ctx context.Context, email, username, phone string) (bool, error) {
	var taken bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users
			WHERE ($1 <> '' AND email = $1) OR ($2 <> '' AND username = $2) OR ($3 <> '' AND phone = $3))`,
		email, username, phone,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check user identity: %w", err)
	}
	return taken, nil
}

// Update actualiza un usuario.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET name = $2, email = $3, username = $4, phone = $5, password_hash = $6, role = $7,
			profile = $8, manager_id = $9, avatar = $10, status = $11, updated_at = $12
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.Username, user.Phone, user.PasswordHash, user.Role,
		user.Profile, user.ManagerID, user.Avatar, user.Status, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("update user: %w", mapError(err, domain.ErrNotFound))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ListByOrg lista los usuarios de la org, más recientes primero.
func (r *UserRepo) ListByOrg(ctx context.Context, orgID string) ([]*entity.User, error) {
	list := []*entity.User{}
	if !validID(orgID) {
		return list, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users WHERE org_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// CountActiveAdmins admins activos de la org.
func (r *UserRepo) CountActiveAdmins(ctx context.Context, orgID string) (int, error) {
	if !validID(orgID) {
		return 0, nil
	}
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE org_id = $1 AND role = $2 AND status = $3`,
		orgID, entity.RoleAdmin, entity.UserActive,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}
