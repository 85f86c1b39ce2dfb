package postgres

import (
	"context"
	"errors"

	missionDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/mission"
	"github.com/frahmantamala/stagiaire-management/internal/mission"
	"gorm.io/gorm"
)

type MissionRepository struct {
	db *gorm.DB
}

func NewMissionRepository(db *gorm.DB) *MissionRepository {
	return &MissionRepository{db: db}
}

var _ mission.RepositoryAPI = (*MissionRepository)(nil)

func (r *MissionRepository) List(ctx context.Context, filter mission.ListFilter) ([]*missionDatamodel.Mission, int64, error) {
	q := r.db.WithContext(ctx).Model(&missionDatamodel.Mission{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC, id DESC"
	if filter.Order == mission.OrderAsc {
		order = "created_at ASC, id ASC"
	}
	q = q.Order(order)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var rows []*missionDatamodel.Mission
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *MissionRepository) GetByID(ctx context.Context, id int64) (*missionDatamodel.Mission, error) {
	var row missionDatamodel.Mission
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *MissionRepository) StagiaireIDs(ctx context.Context, missionIDs []int64) (map[int64][]int64, error) {
	result := make(map[int64][]int64, len(missionIDs))
	if len(missionIDs) == 0 {
		return result, nil
	}

	var links []missionDatamodel.MissionStagiaire
	err := r.db.WithContext(ctx).
		Where("mission_id IN ?", missionIDs).
		Order("mission_id, created_at, stagiaire_id").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		result[l.MissionID] = append(result[l.MissionID], l.StagiaireID)
	}
	return result, nil
}

func (r *MissionRepository) Create(ctx context.Context, m *missionDatamodel.Mission, stagiaireIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return insertAssignments(tx, m.ID, stagiaireIDs)
	})
}

func (r *MissionRepository) Update(ctx context.Context, m *missionDatamodel.Mission, stagiaireIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(m).Error; err != nil {
			return err
		}
		if stagiaireIDs == nil {
			return nil
		}
		if err := tx.Where("mission_id = ?", m.ID).Delete(&missionDatamodel.MissionStagiaire{}).Error; err != nil {
			return err
		}
		return insertAssignments(tx, m.ID, stagiaireIDs)
	})
}

func (r *MissionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("mission_id = ?", id).Delete(&missionDatamodel.MissionStagiaire{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&missionDatamodel.Mission{}, id)
		if res.Error != nil {
			return res.Error
		}
		found = res.RowsAffected > 0
		return nil
	})
	return found, err
}

func insertAssignments(tx *gorm.DB, missionID int64, stagiaireIDs []int64) error {
	if len(stagiaireIDs) == 0 {
		return nil
	}
	links := make([]missionDatamodel.MissionStagiaire, 0, len(stagiaireIDs))
	for _, id := range stagiaireIDs {
		links = append(links, missionDatamodel.MissionStagiaire{MissionID: missionID, StagiaireID: id})
	}
	return tx.Create(&links).Error
}
