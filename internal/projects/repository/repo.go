package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/projecthubv3/projecthub-backend/internal/projects/domain"
)

// pgUndefinedTable is returned before EnsureSchema has run.
const pgUndefinedTable = "42P01"

// ProjectRepository is the Postgres index of the catalog.
type ProjectRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db, now: time.Now}
}

const upsertProject = `
INSERT INTO projects (
	id, name, type, description, status, has_specification, has_market_enhanced,
	created_at, features_core, features_advanced, market_tam, market_sam, indexed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	type = EXCLUDED.type,
	description = EXCLUDED.description,
	status = EXCLUDED.status,
	has_specification = EXCLUDED.has_specification,
	has_market_enhanced = EXCLUDED.has_market_enhanced,
	created_at = EXCLUDED.created_at,
	features_core = EXCLUDED.features_core,
	features_advanced = EXCLUDED.features_advanced,
	market_tam = EXCLUDED.market_tam,
	market_sam = EXCLUDED.market_sam,
	indexed_at = EXCLUDED.indexed_at;
`

// ReplaceAll makes the index equal to projects: present rows are upserted and
// rows not touched by this pass are removed, all in one transaction.
func (r *ProjectRepository) ReplaceAll(ctx context.Context, projects []domain.Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertProject)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	indexedAt := r.now().UTC()
	for _, p := range projects {
		if _, err := stmt.ExecContext(ctx, projectArgs(p, indexedAt)...); err != nil {
			return fmt.Errorf("upsert %s: %w", p.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE indexed_at < $1;`, indexedAt); err != nil {
		return fmt.Errorf("prune index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

const selectColumns = `
SELECT id, name, type, description, status, has_specification, has_market_enhanced,
	created_at, features_core, features_advanced, market_tam, market_sam
FROM projects`

// ListAll returns every indexed project ordered by id. A missing table reads as
// an empty index.
func (r *ProjectRepository) ListAll(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY id;`)
	if err != nil {
		if isUndefinedTable(err) {
			return []domain.Project{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 64)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert writes a single project into the index.
func (r *ProjectRepository) Upsert(ctx context.Context, p domain.Project) error {
	if _, err := r.db.ExecContext(ctx, upsertProject, projectArgs(p, r.now().UTC())...); err != nil {
		if isUndefinedTable(err) {
			return nil
		}
		return fmt.Errorf("upsert %s: %w", p.ID, err)
	}
	return nil
}

// Delete removes a project from the index and reports whether a row existed.
func (r *ProjectRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1;`, id)
	if err != nil {
		if isUndefinedTable(err) {
			return false, nil
		}
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (domain.Project, error) {
	var (
		p         domain.Project
		createdAt sql.NullString
		core      sql.NullInt64
		advanced  sql.NullInt64
		tam       sql.NullString
		sam       sql.NullString
	)
	if err := row.Scan(
		&p.ID, &p.Name, &p.Type, &p.Description, &p.Status,
		&p.HasSpecification, &p.HasMarketEnhanced,
		&createdAt, &core, &advanced, &tam, &sam,
	); err != nil {
		return domain.Project{}, err
	}

	p.CreatedAt = createdAt.String
	if core.Valid || advanced.Valid {
		p.Features = &domain.Features{Core: int(core.Int64), Advanced: int(advanced.Int64)}
	}
	if tam.Valid || sam.Valid {
		p.Market = &domain.Market{TAM: tam.String, SAM: sam.String}
	}
	return p, nil
}

func projectArgs(p domain.Project, indexedAt time.Time) []any {
	core, advanced := featureColumns(p.Features)
	tam, sam := marketColumns(p.Market)
	return []any{
		p.ID, p.Name, p.Type, p.Description, p.Status,
		p.HasSpecification, p.HasMarketEnhanced,
		nullString(p.CreatedAt), core, advanced, tam, sam, indexedAt,
	}
}

func featureColumns(f *domain.Features) (sql.NullInt64, sql.NullInt64) {
	if f == nil {
		return sql.NullInt64{}, sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(f.Core), Valid: true}, sql.NullInt64{Int64: int64(f.Advanced), Valid: true}
}

func marketColumns(m *domain.Market) (sql.NullString, sql.NullString) {
	if m == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return nullString(m.TAM), nullString(m.SAM)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}
