package postgres

import (
	"context"
	"errors"
	"strings"

	evaluationDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/evaluation"
	missionDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/mission"
	stagiaireDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/stagiaire"
	"github.com/frahmantamala/stagiaire-management/internal/stagiaire"
	"gorm.io/gorm"
)

type StagiaireRepository struct {
	db *gorm.DB
}

func NewStagiaireRepository(db *gorm.DB) *StagiaireRepository {
	return &StagiaireRepository{db: db}
}

var _ stagiaire.RepositoryAPI = (*StagiaireRepository)(nil)

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (r *StagiaireRepository) List(ctx context.Context, filter stagiaire.ListFilter) ([]*stagiaireDatamodel.Stagiaire, int64, error) {
	q := r.db.WithContext(ctx).Model(&stagiaireDatamodel.Stagiaire{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + likeEscaper.Replace(search) + "%"
		q = q.Where(`LOWER(nom) LIKE ? ESCAPE '\' OR LOWER(prenom) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC, id DESC"
	if filter.Order == stagiaire.OrderAsc {
		order = "created_at ASC, id ASC"
	}
	q = q.Order(order)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var rows []*stagiaireDatamodel.Stagiaire
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *StagiaireRepository) GetByID(ctx context.Context, id int64) (*stagiaireDatamodel.Stagiaire, error) {
	var row stagiaireDatamodel.Stagiaire
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *StagiaireRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&stagiaireDatamodel.Stagiaire{}).
		Where("LOWER(email) = ? AND id <> ?", strings.ToLower(email), excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *StagiaireRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	var found []int64
	err := r.db.WithContext(ctx).Model(&stagiaireDatamodel.Stagiaire{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error
	return found, err
}

func (r *StagiaireRepository) Create(ctx context.Context, s *stagiaireDatamodel.Stagiaire) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *StagiaireRepository) Update(ctx context.Context, s *stagiaireDatamodel.Stagiaire) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *StagiaireRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("stagiaire_id = ?", id).Delete(&missionDatamodel.MissionStagiaire{}).Error; err != nil {
			return err
		}
		if err := tx.Where("stagiaire_id = ?", id).Delete(&evaluationDatamodel.Evaluation{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&stagiaireDatamodel.Stagiaire{}, id)
		if res.Error != nil {
			return res.Error
		}
		found = res.RowsAffected > 0
		return nil
	})
	return found, err
}
