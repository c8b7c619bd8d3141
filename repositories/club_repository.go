package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/u13-football/models"
)

var (
	ErrClubNotFound          = errors.New("club not found")
	ErrClubNameConflict      = errors.New("club name conflict")
	ErrClubShortNameConflict = errors.New("club short name conflict")
	ErrClubSlugConflict      = errors.New("club slug conflict")
)

var clubConstraintErrors = map[string]error{
	"clubs_name_key":       ErrClubNameConflict,
	"clubs_short_name_key": ErrClubShortNameConflict,
	"clubs_slug_key":       ErrClubSlugConflict,
}

type ListClubsFilter struct {
	Scope   Scope
	OwnerID *int
	Search  string
	Limit   int
	Offset  int
}

type ClubRepository interface {
	Create(ctx context.Context, club *models.Club) error
	GetByID(ctx context.Context, id int) (*models.Club, error)
	List(ctx context.Context, filter ListClubsFilter) ([]models.Club, error)
	Update(ctx context.Context, club *models.Club) error
	UpdateLogoKey(ctx context.Context, clubID int, logoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresClubRepository struct {
	db *sql.DB
}

func NewPostgresClubRepository(db *sql.DB) ClubRepository {
	return &postgresClubRepository{db: db}
}

const clubColumns = `
	c.id, c.name, c.short_name, c.slug, c.owner_id, c.logo_key, c.primary_color, c.secondary_color,
	c.address, c.phone, c.email, c.website, c.license_number, c.founded_year, c.is_active,
	(SELECT COUNT(*) FROM teams t WHERE t.club_id = c.id), c.created_at, c.updated_at`

var clubScopeColumns = scopeColumns{
	clubs: func(param string) string { return "c.id = ANY(" + param + ")" },
	teams: func(param string) string {
		return "EXISTS (SELECT 1 FROM teams ct WHERE ct.club_id = c.id AND ct.id = ANY(" + param + "))"
	},
}

func (r *postgresClubRepository) Create(ctx context.Context, club *models.Club) error {
	query := `
		INSERT INTO clubs (
			name, short_name, slug, owner_id, primary_color, secondary_color,
			address, phone, email, website, license_number, founded_year, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		club.Name, club.ShortName, club.Slug, club.OwnerID, club.PrimaryColor, club.SecondaryColor,
		club.Address, club.Phone, club.Email, club.Website, club.LicenseNumber, club.FoundedYear, club.IsActive,
	).Scan(&club.ID, &club.CreatedAt, &club.UpdatedAt)

	return mapPQError(err, clubConstraintErrors)
}

func (r *postgresClubRepository) GetByID(ctx context.Context, id int) (*models.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs c WHERE c.id = $1`
	club, err := scanClub(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	return club, nil
}

func (r *postgresClubRepository) List(ctx context.Context, filter ListClubsFilter) ([]models.Club, error) {
	p := &placeholders{}
	query := `SELECT ` + clubColumns + ` FROM clubs c WHERE ` + filter.Scope.clause(clubScopeColumns, p)

	if filter.OwnerID != nil {
		query += " AND c.owner_id = " + p.add(*filter.OwnerID)
	}
	if filter.Search != "" {
		param := p.add("%" + filter.Search + "%")
		query += fmt.Sprintf(" AND (c.name ILIKE %s OR c.short_name ILIKE %s)", param, param)
	}

	query += " ORDER BY c.name ASC"

	if filter.Limit > 0 {
		query += " LIMIT " + p.add(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + p.add(filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, p.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clubs := make([]models.Club, 0)
	for rows.Next() {
		club, scanErr := scanClub(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		clubs = append(clubs, *club)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return clubs, nil
}

func (r *postgresClubRepository) Update(ctx context.Context, club *models.Club) error {
	query := `
		UPDATE clubs SET
			name = $1,
			short_name = $2,
			slug = $3,
			primary_color = $4,
			secondary_color = $5,
			address = $6,
			phone = $7,
			email = $8,
			website = $9,
			license_number = $10,
			founded_year = $11,
			is_active = $12,
			updated_at = NOW()
		WHERE id = $13
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		club.Name, club.ShortName, club.Slug, club.PrimaryColor, club.SecondaryColor,
		club.Address, club.Phone, club.Email, club.Website, club.LicenseNumber, club.FoundedYear, club.IsActive,
		club.ID,
	).Scan(&club.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrClubNotFound
	}
	return mapPQError(err, clubConstraintErrors)
}

func (r *postgresClubRepository) UpdateLogoKey(ctx context.Context, clubID int, logoKey *string) error {
	query := `UPDATE clubs SET logo_key = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, clubID)
	if err != nil {
		return fmt.Errorf("failed to update club logo key: %w", err)
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func (r *postgresClubRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	if err != nil {
		return mapPQError(err, nil)
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClub(row rowScanner) (*models.Club, error) {
	var c models.Club
	err := row.Scan(
		&c.ID, &c.Name, &c.ShortName, &c.Slug, &c.OwnerID, &c.LogoKey, &c.PrimaryColor, &c.SecondaryColor,
		&c.Address, &c.Phone, &c.Email, &c.Website, &c.LicenseNumber, &c.FoundedYear, &c.IsActive,
		&c.TeamsCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
