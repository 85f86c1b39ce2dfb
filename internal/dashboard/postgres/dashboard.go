package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/frahmantamala/stagiaire-management/internal/dashboard"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

var _ dashboard.RepositoryAPI = (*Repository)(nil)

type statusCount struct {
	Status string `db:"status"`
	Count  int64  `db:"count"`
}

// table names are interpolated, so only these are accepted
var statusTables = map[string]bool{
	dashboard.TableStagiaires:  true,
	dashboard.TableMissions:    true,
	dashboard.TableEvaluations: true,
}

func (r *Repository) StatusCounts(ctx context.Context, table string) (map[string]int64, error) {
	if !statusTables[table] {
		return nil, fmt.Errorf("unsupported table %q", table)
	}

	var rows []statusCount
	query := fmt.Sprintf("SELECT status, COUNT(*) AS count FROM %s GROUP BY status", table)
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *Repository) AverageMissionProgress(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	if err := r.db.GetContext(ctx, &avg, "SELECT AVG(progress) FROM missions"); err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

// AverageEvaluationScore averages the stored per-evaluation averages.
func (r *Repository) AverageEvaluationScore(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	query := r.db.Rebind("SELECT AVG(average_score) FROM evaluations WHERE status IN (?, ?)")
	if err := r.db.GetContext(ctx, &avg, query, "draft", "reviewed"); err != nil {
		return 0, err
	}
	return avg.Float64, nil
}
