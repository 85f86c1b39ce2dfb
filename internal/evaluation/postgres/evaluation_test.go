package postgres_test

import (
	"context"
	"testing"

	"github.com/frahmantamala/stagiaire-management/internal/core/database"
	evaluationDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/evaluation"
	userDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/user"
	"github.com/frahmantamala/stagiaire-management/internal/evaluation"
	evaluationPostgres "github.com/frahmantamala/stagiaire-management/internal/evaluation/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestEvaluationPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Evaluation Postgres Suite")
}

var _ = Describe("Evaluation Repository", func() {
	var (
		db   *gorm.DB
		repo *evaluationPostgres.EvaluationRepository
		ctx  context.Context
	)

	add := func(stagiaireID int64, status string) *evaluationDatamodel.Evaluation {
		row := &evaluationDatamodel.Evaluation{StagiaireID: stagiaireID, EvaluatorID: 1, Status: status, AverageScore: 3}
		Expect(repo.Create(ctx, row)).To(Succeed())
		return row
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())
		repo = evaluationPostgres.NewEvaluationRepository(db)
	})

	It("should default new rows to draft", func() {
		row := add(1, "")
		got, err := repo.GetByID(ctx, row.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Status).To(Equal(evaluation.StatusDraft))
	})

	It("should filter by stagiaire and status", func() {
		add(1, evaluation.StatusDraft)
		add(1, evaluation.StatusReviewed)
		add(2, evaluation.StatusDraft)

		rows, total, err := repo.List(ctx, evaluation.ListFilter{StagiaireID: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(int64(2)))
		Expect(rows).To(HaveLen(2))

		rows, total, err = repo.List(ctx, evaluation.ListFilter{Status: evaluation.StatusDraft, Order: evaluation.OrderAsc})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(int64(2)))
		Expect(rows[0].StagiaireID).To(Equal(int64(1)))
	})

	It("should check evaluator existence", func() {
		Expect(db.Create(&userDatamodel.User{Username: "enc", Email: "enc@x.sn", PasswordHash: "h"}).Error).To(Succeed())
		exists, err := repo.UserExists(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeTrue())

		exists, err = repo.UserExists(ctx, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeFalse())
	})

	It("should report whether a row was deleted", func() {
		row := add(1, "")
		found, err := repo.Delete(ctx, row.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())

		found, err = repo.Delete(ctx, row.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})
})
