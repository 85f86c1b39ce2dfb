package database_test

import (
	"testing"

	"github.com/frahmantamala/stagiaire-management/internal"
	"github.com/frahmantamala/stagiaire-management/internal/core/database"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDatabase(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Database Suite")
}

var _ = Describe("Database", func() {
	It("should create every application table in memory", func() {
		db, err := database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())
		defer database.Close(db)

		for _, table := range []string{"users", "stagiaires", "evaluations", "missions", "mission_stagiaires", "activities"} {
			Expect(db.Migrator().HasTable(table)).To(BeTrue(), table)
		}
	})

	It("should keep in-memory databases isolated", func() {
		a, err := database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())
		b, err := database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())

		Expect(a.Exec("INSERT INTO missions (title, status, progress) VALUES ('x', 'not_started', 0)").Error).To(Succeed())
		var count int64
		Expect(b.Table("missions").Count(&count).Error).To(Succeed())
		Expect(count).To(BeZero())
	})

	It("should expose the pool through sqlx with the right bindvars", func() {
		db, err := database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())
		x, err := database.SQLX(db)
		Expect(err).NotTo(HaveOccurred())
		Expect(x.DriverName()).To(Equal("sqlite3"))
		Expect(x.Rebind("SELECT ? ")).To(Equal("SELECT ? "))
	})

	It("should reject unknown drivers", func() {
		_, err := database.Open(internal.DatabaseConfig{Driver: "oracle"}, nil)
		Expect(err).To(MatchError(ContainSubstring("unsupported")))
	})
})
