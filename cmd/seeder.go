package cmd

import (
	"log"

	"github.com/fatih/color"
	"github.com/frahmantamala/stagiaire-management/internal"
	activityDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/activity"
	evaluationDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/evaluation"
	missionDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/mission"
	stagiaireDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/stagiaire"
	userDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/user"
	"github.com/frahmantamala/stagiaire-management/internal/core/database"
	"github.com/frahmantamala/stagiaire-management/internal/evaluation"
	"github.com/frahmantamala/stagiaire-management/internal/mission"
	"github.com/frahmantamala/stagiaire-management/internal/user"
	"github.com/frahmantamala/stagiaire-management/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const seedPassword = "password"

var (
	okLine   = color.New(color.FgGreen).PrintfFunc()
	skipLine = color.New(color.FgYellow).PrintfFunc()
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configDir)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := database.Open(cfg.Database, logger.LoggerWrapper())
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer database.Close(db)

		if clearData {
			if err := clearSeedTables(db); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			skipLine("Cleared existing data\n")
		}

		hash, err := user.HashPassword(seedPassword, cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}

		users := []userDatamodel.User{
			{Username: "admin", Email: "admin@stagiaires.local", Nom: "Admin", Prenom: "Super", Role: internal.RoleAdmin},
			{Username: "encadrant", Email: "encadrant@stagiaires.local", Nom: "Martin", Prenom: "Claire", Department: "IT", Role: internal.RoleEncadrant},
		}
		var evaluatorID int64
		for i := range users {
			u := users[i]
			u.PasswordHash = hash
			u.Theme = user.ThemeLight
			u.Brightness = user.DefaultBrightness
			u.IsActive = true
			created, err := firstOrCreate(db, &u, "email = ?", u.Email)
			if err != nil {
				log.Fatalf("failed to seed user %s: %v", u.Email, err)
			}
			report(created, "user", u.Email)
			if u.Role == internal.RoleEncadrant {
				evaluatorID = u.ID
			}
		}

		stagiaires := []stagiaireDatamodel.Stagiaire{
			{Nom: "Diallo", Prenom: "Awa", Email: "awa.diallo@example.com", Etablissement: "ESP Dakar", Formation: "Génie logiciel", Intitule: "Développeuse backend", Status: "active", DateDebut: "2025-02-01", DateFin: "2025-07-31"},
			{Nom: "Bernard", Prenom: "Lucas", Email: "lucas.bernard@example.com", Etablissement: "IUT Lyon", Formation: "Réseaux", Intitule: "Administrateur système", Status: "upcoming", DateDebut: "2025-09-01", DateFin: "2026-02-28"},
			{Nom: "Nguyen", Prenom: "Linh", Email: "linh.nguyen@example.com", Etablissement: "INSA Rennes", Formation: "Data", Intitule: "Analyste données", Status: "completed", DateDebut: "2024-09-01", DateFin: "2025-01-31"},
		}
		stagiaireIDs := make([]int64, 0, len(stagiaires))
		for i := range stagiaires {
			st := stagiaires[i]
			created, err := firstOrCreate(db, &st, "email = ?", st.Email)
			if err != nil {
				log.Fatalf("failed to seed stagiaire %s: %v", st.Email, err)
			}
			report(created, "stagiaire", st.Email)
			stagiaireIDs = append(stagiaireIDs, st.ID)
		}

		missions := []struct {
			row      missionDatamodel.Mission
			assigned []int64
		}{
			{missionDatamodel.Mission{Title: "Refonte du portail RH", Department: "IT", Progress: 40}, stagiaireIDs[:1]},
			{missionDatamodel.Mission{Title: "Migration des serveurs", Department: "Infra", Progress: 0}, stagiaireIDs[1:2]},
			{missionDatamodel.Mission{Title: "Tableau de bord qualité", Department: "Data", Progress: 100}, stagiaireIDs[2:]},
		}
		for _, m := range missions {
			row := m.row
			row.Status = mission.StatusForProgress(row.Progress)
			created, err := firstOrCreate(db, &row, "title = ?", row.Title)
			if err != nil {
				log.Fatalf("failed to seed mission %s: %v", row.Title, err)
			}
			report(created, "mission", row.Title)
			if !created {
				continue
			}
			for _, sid := range m.assigned {
				link := missionDatamodel.MissionStagiaire{MissionID: row.ID, StagiaireID: sid}
				if err := db.Create(&link).Error; err != nil {
					log.Fatalf("failed to assign stagiaire %d to mission %d: %v", sid, row.ID, err)
				}
			}
		}

		scores := [][4]float64{{4, 3, 5, 2}, {4, 4, 5, 4}}
		for i, s := range scores {
			row := evaluationDatamodel.Evaluation{
				StagiaireID:     stagiaireIDs[i],
				EvaluatorID:     evaluatorID,
				TechnicalSkills: s[0],
				Communication:   s[1],
				Teamwork:        s[2],
				Initiative:      s[3],
				AverageScore:    evaluation.AverageScore(s[0], s[1], s[2], s[3]),
				Status:          evaluation.StatusDraft,
			}
			created, err := firstOrCreate(db, &row, "stagiaire_id = ? AND evaluator_id = ?", row.StagiaireID, row.EvaluatorID)
			if err != nil {
				log.Fatalf("failed to seed evaluation: %v", err)
			}
			report(created, "evaluation", row.StagiaireID)
		}

		okLine("Seed complete, every account uses the password %q\n", seedPassword)
	},
}

// firstOrCreate inserts row unless a row matching the query exists, in which case row is loaded from it.
func firstOrCreate(db *gorm.DB, row interface{}, query string, args ...interface{}) (bool, error) {
	res := db.Where(query, args...).FirstOrCreate(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func report(created bool, kind string, key interface{}) {
	if created {
		okLine("Seeded %s: %v\n", kind, key)
		return
	}
	skipLine("%s %v already exists, skipped\n", kind, key)
}

func clearSeedTables(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&activityDatamodel.Activity{},
			&missionDatamodel.MissionStagiaire{},
			&missionDatamodel.Mission{},
			&evaluationDatamodel.Evaluation{},
			&stagiaireDatamodel.Stagiaire{},
			&userDatamodel.User{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
