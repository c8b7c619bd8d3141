package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/u13-football/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("user email conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	UpdateAvatarKey(ctx context.Context, id int, avatarKey *string) error

	// Связи пользователя, из которых строится область видимости
	ListOwnedClubIDs(ctx context.Context, userID int) ([]int, error)
	ListCoachedTeamIDs(ctx context.Context, userID int) ([]int, error)
	ListAssistantTeamIDs(ctx context.Context, userID int) ([]int, error)
	ListFollowedTeamIDs(ctx context.Context, userID int) ([]int, error)
	ListChildTeamIDs(ctx context.Context, email string) ([]int, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `
	id, email, password_hash, first_name, last_name, phone_number, role, avatar_key,
	notifications_match_updates, notifications_tournament_news, notifications_team_news,
	is_active, is_verified, created_at, updated_at`

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			email, password_hash, first_name, last_name, phone_number, role,
			notifications_match_updates, notifications_tournament_news, notifications_team_news,
			is_active, is_verified
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		user.Role,
		user.Notifications.MatchUpdates,
		user.Notifications.TournamentNews,
		user.Notifications.TeamNews,
		user.IsActive,
		user.IsVerified,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	return mapPQError(err, map[string]error{"users_email_key": ErrUserEmailConflict})
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return r.scanUser(ctx, query, email)
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			email = $1,
			first_name = $2,
			last_name = $3,
			phone_number = $4,
			notifications_match_updates = $5,
			notifications_tournament_news = $6,
			notifications_team_news = $7,
			is_active = $8,
			is_verified = $9,
			updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		user.Notifications.MatchUpdates,
		user.Notifications.TournamentNews,
		user.Notifications.TeamNews,
		user.IsActive,
		user.IsVerified,
		user.ID,
	).Scan(&user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	return mapPQError(err, map[string]error{"users_email_key": ErrUserEmailConflict})
}

func (r *postgresUserRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdateAvatarKey(ctx context.Context, id int, avatarKey *string) error {
	query := `UPDATE users SET avatar_key = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, avatarKey, id)
	if err != nil {
		return fmt.Errorf("failed to update user avatar key: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) ListOwnedClubIDs(ctx context.Context, userID int) ([]int, error) {
	return r.listIDs(ctx, `SELECT id FROM clubs WHERE owner_id = $1 ORDER BY id`, userID)
}

func (r *postgresUserRepository) ListCoachedTeamIDs(ctx context.Context, userID int) ([]int, error) {
	return r.listIDs(ctx, `SELECT id FROM teams WHERE coach_id = $1 ORDER BY id`, userID)
}

func (r *postgresUserRepository) ListAssistantTeamIDs(ctx context.Context, userID int) ([]int, error) {
	return r.listIDs(ctx, `SELECT team_id FROM team_assistant_coaches WHERE user_id = $1 ORDER BY team_id`, userID)
}

func (r *postgresUserRepository) ListFollowedTeamIDs(ctx context.Context, userID int) ([]int, error) {
	return r.listIDs(ctx, `SELECT team_id FROM team_followers WHERE user_id = $1 ORDER BY team_id`, userID)
}

// ListChildTeamIDs - команды игроков, у которых email родителя совпадает с email пользователя.
func (r *postgresUserRepository) ListChildTeamIDs(ctx context.Context, email string) ([]int, error) {
	if email == "" {
		return []int{}, nil
	}
	query := `
		SELECT DISTINCT team_id FROM players
		WHERE lower(parent_email) = lower($1) OR lower(parent2_email) = lower($1)
		ORDER BY team_id`
	return r.listIDs(ctx, query, email)
}

func (r *postgresUserRepository) listIDs(ctx context.Context, query string, arg interface{}) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	return collectIDs(rows)
}

// scanUser - вспомогательный метод для сканирования одного пользователя
func (r *postgresUserRepository) scanUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.PhoneNumber,
		&user.Role,
		&user.AvatarKey,
		&user.Notifications.MatchUpdates,
		&user.Notifications.TournamentNews,
		&user.Notifications.TeamNews,
		&user.IsActive,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
