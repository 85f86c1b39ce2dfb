package postgres

import (
	"context"

	"github.com/frahmantamala/stagiaire-management/internal/activity"
	activityDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/activity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ activity.RepositoryAPI = (*Repository)(nil)

func (r *Repository) Record(ctx context.Context, a *activity.Activity) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(activity.ToDataModel(a)).Error
}

func (r *Repository) Recent(ctx context.Context, limit int) ([]*activity.Activity, error) {
	var rows []*activityDatamodel.Activity
	err := r.db.WithContext(ctx).
		Order("occurred_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]*activity.Activity, 0, len(rows))
	for _, row := range rows {
		result = append(result, activity.FromDataModel(row))
	}
	return result, nil
}
