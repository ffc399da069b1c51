package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pairlog/pairlog/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const userColumns = `id, email, nickname, password_hash, secret_code, partner_secret_code,
			  flow_dates, intimacy_dates, created_at, updated_at, deleted_at`

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	flow, intimacy, err := marshalDateSets(user.FlowDates, user.IntimacyDates)
	if err != nil {
		return model.User{}, err
	}

	query := `INSERT INTO users (id, email, nickname, password_hash, secret_code, partner_secret_code,
			  flow_dates, intimacy_dates, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.Nickname, user.PasswordHash, user.SecretCode, user.PartnerSecretCode,
		flow, intimacy, user.CreatedAt, user.UpdatedAt,
	)

	saved, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.User{}, model.ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return saved, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) GetBySecretCode(ctx context.Context, code string) (model.User, error) {
	return r.getBy(ctx, "secret_code", code)
}

func (r *UserRepository) GetByPartnerSecretCode(ctx context.Context, code string) (model.User, error) {
	return r.getBy(ctx, "partner_secret_code", code)
}

func (r *UserRepository) getBy(ctx context.Context, column string, value any) (model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1 AND deleted_at IS NULL`, userColumns, column)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, model.ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	return user, nil
}

// Update applies a merge-semantics partial write: only the patch's
// present fields reach the statement.
func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, patch model.UserPatch) (model.User, error) {
	builder := sq.Update("users").
		PlaceholderFormat(sq.Dollar).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		Where("deleted_at IS NULL").
		Suffix("RETURNING " + userColumns)

	if patch.Nickname.Valid {
		builder = builder.Set("nickname", patch.Nickname.Value)
	}
	if patch.PasswordHash.Valid {
		builder = builder.Set("password_hash", patch.PasswordHash.Value)
	}
	if patch.SecretCode.Valid {
		builder = builder.Set("secret_code", patch.SecretCode.Value)
	}
	if patch.PartnerSecretCode.Valid {
		builder = builder.Set("partner_secret_code", patch.PartnerSecretCode.Value)
	}
	if patch.FlowDates.Valid {
		raw, err := json.Marshal(patch.FlowDates.Value.Days())
		if err != nil {
			return model.User{}, fmt.Errorf("failed to marshal flow dates: %w", err)
		}
		builder = builder.Set("flow_dates", raw)
	}
	if patch.IntimacyDates.Valid {
		raw, err := json.Marshal(patch.IntimacyDates.Value.Days())
		if err != nil {
			return model.User{}, fmt.Errorf("failed to marshal intimacy dates: %w", err)
		}
		builder = builder.Set("intimacy_dates", raw)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return model.User{}, fmt.Errorf("failed to build update query: %w", err)
	}

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, model.ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return model.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var user model.User
	var flow, intimacy []byte

	err := row.Scan(
		&user.ID, &user.Email, &user.Nickname, &user.PasswordHash,
		&user.SecretCode, &user.PartnerSecretCode,
		&flow, &intimacy,
		&user.CreatedAt, &user.UpdatedAt, &user.DeletedAt,
	)
	if err != nil {
		return model.User{}, err
	}

	if user.FlowDates, err = unmarshalDateSet(flow); err != nil {
		return model.User{}, fmt.Errorf("failed to unmarshal flow dates: %w", err)
	}
	if user.IntimacyDates, err = unmarshalDateSet(intimacy); err != nil {
		return model.User{}, fmt.Errorf("failed to unmarshal intimacy dates: %w", err)
	}

	return user, nil
}

func marshalDateSets(flow, intimacy model.DateSet) ([]byte, []byte, error) {
	rawFlow, err := json.Marshal(flow.Days())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal flow dates: %w", err)
	}
	rawIntimacy, err := json.Marshal(intimacy.Days())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal intimacy dates: %w", err)
	}
	return rawFlow, rawIntimacy, nil
}

func unmarshalDateSet(raw []byte) (model.DateSet, error) {
	if len(raw) == 0 {
		return model.NewDateSet(), nil
	}
	var days []string
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, err
	}
	return model.NewDateSet(days...), nil
}
