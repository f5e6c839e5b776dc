package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dimitrije/worktrack-api/internal/database"
	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8

	userColumns = `id, username, email, first_name, last_name, password_hash, role, department, subteam, created_at, updated_at`
)

type UserService struct {
	db   *database.DB
	cost int
}

func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db, cost: bcrypt.DefaultCost}
}

// NewUser is the input for account creation.
type NewUser struct {
	Username   string
	Email      string
	FirstName  string
	LastName   string
	Password   string
	Role       access.Role
	Department string
	Subteam    string
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.Role, &u.Department, &u.Subteam, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(s.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.db.Pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
}

// GetByLogin accepts either a username or an email address.
func (s *UserService) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	login = strings.TrimSpace(login)
	return scanUser(s.db.Pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE username = $1 OR LOWER(email) = LOWER($1)
		LIMIT 1
	`, login))
}

// Authenticate checks a password against the stored bcrypt hash. Unknown
// users and wrong passwords produce the same error.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	user, err := s.GetByLogin(ctx, login)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.CheckPassword(user, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

func (s *UserService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// ValidateNewUser checks that actor may create the account described by in.
// Departments are required for TeamLeaders and Users; sub-teams for Users.
func ValidateNewUser(actor access.Role, in NewUser) error {
	if strings.TrimSpace(in.Username) == "" {
		return invalid("username", "username is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return invalid("email", "email is invalid")
	}
	if len(in.Password) < MinPasswordLength {
		return invalid("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if !in.Role.Valid() {
		return invalid("usertype", "usertype is invalid")
	}
	if !access.CanPerform(actor, access.ActionRegisterUser, access.Relation{}) {
		return access.ErrForbidden
	}
	if actor != access.RoleSuperAdmin && !actor.Above(in.Role) {
		return access.ErrForbidden
	}

	switch in.Role {
	case access.RoleTeamLeader, access.RoleUser:
		if !access.IsDepartment(in.Department) {
			return invalid("department", "department must be one of Search, Creative, Development")
		}
	default:
		if in.Department != "" || in.Subteam != "" {
			return invalid("department", "only team leaders and users belong to a department")
		}
	}
	if in.Role == access.RoleUser {
		dept, ok := access.DepartmentOf(in.Subteam)
		if !ok || dept != in.Department {
			return invalid("subteam", "subteam must belong to the selected department")
		}
	} else if in.Subteam != "" {
		return invalid("subteam", "only users belong to a subteam")
	}
	return nil
}

func (s *UserService) Create(ctx context.Context, in NewUser) (*models.User, error) {
	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := scanUser(s.db.Pool.QueryRow(ctx, `
		INSERT INTO users (username, email, first_name, last_name, password_hash, role, department, subteam)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+userColumns,
		strings.TrimSpace(in.Username), strings.TrimSpace(in.Email), in.FirstName, in.LastName,
		hash, in.Role, nullableString(in.Department), nullableString(in.Subteam),
	))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("username or email %w", ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// List returns users matching filter, ordered by username.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	roles := make([]string, len(filter.Roles))
	for i, r := range filter.Roles {
		roles[i] = string(r)
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE (cardinality($1::text[]) = 0 OR role = ANY($1))
		AND ($2 = '' OR department = $2)
		AND ($3 = '' OR subteam = $3)
		ORDER BY username
	`, roles, filter.Department, filter.Subteam)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// GetMany loads users by id; missing ids are skipped.
func (s *UserService) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	out := make(map[uuid.UUID]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.db.Pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName, email string) (*models.User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email", "email is invalid")
	}
	user, err := scanUser(s.db.Pool.QueryRow(ctx, `
		UPDATE users SET first_name = $1, last_name = $2, email = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+userColumns,
		firstName, lastName, strings.TrimSpace(email), id,
	))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("email %w", ErrDuplicate)
	}
	return user, err
}

func (s *UserService) SetPassword(ctx context.Context, id uuid.UUID, password string) error {
	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, hash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetRole is used by the operator CLI. Department fields are cleared for
// roles that do not carry them.
func (s *UserService) SetRole(ctx context.Context, login string, role access.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, invalid("usertype", "usertype is invalid")
	}
	return scanUser(s.db.Pool.QueryRow(ctx, `
		UPDATE users SET role = $1,
			department = CASE WHEN $1 IN ('TeamLeader', 'User') THEN department END,
			subteam = CASE WHEN $1 = 'User' THEN subteam END,
			updated_at = NOW()
		WHERE username = $2 OR LOWER(email) = LOWER($2)
		RETURNING `+userColumns,
		role, login,
	))
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
