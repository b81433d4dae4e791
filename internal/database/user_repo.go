package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain"
	"github.com/diegoclair/untis-cancellation-bot/internal/domain/contract"
	"github.com/diegoclair/untis-cancellation-bot/internal/domain/entity"
)

type userRepo struct {
	db dbConn
}

func newUserRepo(db dbConn) contract.UserRepo {
	return &userRepo{db: db}
}

const userColumns = `id, untis_username, credential_kind, untis_password, untis_qr_data,
	untis_school_name, untis_server, slack_user_id, created_at`

// Create inserts a new user. A taken untis username yields domain.ErrDuplicateUser.
func (r *userRepo) Create(ctx context.Context, user *entity.User) error {
	if user == nil || user.Credential == nil {
		return fmt.Errorf("%w: user without credential", domain.ErrInvalidCredential)
	}

	var password, qrData sql.NullString
	switch c := user.Credential.(type) {
	case *entity.PasswordCredential:
		password = sql.NullString{String: c.Password, Valid: true}
	case *entity.QRCredential:
		qrData = sql.NullString{String: c.Data, Valid: true}
	default:
		return fmt.Errorf("%w: unknown credential kind %q", domain.ErrInvalidCredential, user.Credential.Kind())
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username(),
		string(user.Credential.Kind()),
		password,
		qrData,
		user.SchoolName,
		user.Server,
		user.SlackUserID,
		toUnix(user.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateUser, user.Username())
		}
		return storeErr("create user", err)
	}

	return nil
}

// GetByUsername returns nil, nil when no user has the given untis username.
func (r *userRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE untis_username = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get user", err)
	}

	return user, nil
}

func (r *userRepo) GetAll(ctx context.Context) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, storeErr("scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list users", err)
	}

	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*entity.User, error) {
	var (
		user      entity.User
		username  string
		kind      string
		password  sql.NullString
		qrData    sql.NullString
		createdAt int64
	)

	if err := row.Scan(
		&user.ID,
		&username,
		&kind,
		&password,
		&qrData,
		&user.SchoolName,
		&user.Server,
		&user.SlackUserID,
		&createdAt,
	); err != nil {
		return nil, err
	}
	user.CreatedAt = fromUnix(createdAt)

	switch entity.CredentialKind(kind) {
	case entity.CredentialPassword:
		user.Credential = &entity.PasswordCredential{User: username, Password: password.String}
	case entity.CredentialQR:
		qr, err := entity.ParseQRCredential(qrData.String)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", user.ID, err)
		}
		user.Credential = qr
	default:
		return nil, fmt.Errorf("user %s: unknown credential kind %q", user.ID, kind)
	}

	return &user, nil
}
