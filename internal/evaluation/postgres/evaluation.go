package postgres

import (
	"context"
	"errors"

	evaluationDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/evaluation"
	userDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/user"
	"github.com/frahmantamala/stagiaire-management/internal/evaluation"
	"gorm.io/gorm"
)

type EvaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

var _ evaluation.RepositoryAPI = (*EvaluationRepository)(nil)

func (r *EvaluationRepository) List(ctx context.Context, filter evaluation.ListFilter) ([]*evaluationDatamodel.Evaluation, int64, error) {
	q := r.db.WithContext(ctx).Model(&evaluationDatamodel.Evaluation{})
	if filter.StagiaireID > 0 {
		q = q.Where("stagiaire_id = ?", filter.StagiaireID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC, id DESC"
	if filter.Order == evaluation.OrderAsc {
		order = "created_at ASC, id ASC"
	}
	q = q.Order(order)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var rows []*evaluationDatamodel.Evaluation
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *EvaluationRepository) GetByID(ctx context.Context, id int64) (*evaluationDatamodel.Evaluation, error) {
	var row evaluationDatamodel.Evaluation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *EvaluationRepository) UserExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *EvaluationRepository) Create(ctx context.Context, e *evaluationDatamodel.Evaluation) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EvaluationRepository) Update(ctx context.Context, e *evaluationDatamodel.Evaluation) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *EvaluationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&evaluationDatamodel.Evaluation{}, id)
	return res.RowsAffected > 0, res.Error
}
