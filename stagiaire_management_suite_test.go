package main_test

import (
	"context"
	"strings"
	"testing"

	"github.com/frahmantamala/stagiaire-management/internal"
	"github.com/frahmantamala/stagiaire-management/internal/transport/swagger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"
)

func TestStagiaireManagement(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "StagiaireManagement Suite")
}

var _ = Describe("Project files", func() {
	It("should ship a valid OpenAPI document", func() {
		doc, err := swagger.LoadSpec(context.Background(), "api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Paths.Find("/stagiaires/{id}")).NotTo(BeNil())
		Expect(doc.Paths.Find("/evaluations/{id}/pdf")).NotTo(BeNil())
		Expect(doc.Paths.Find("/missions/{id}/progress")).NotTo(BeNil())
	})

	It("should ship a development config that validates", func() {
		v := viper.New()
		v.SetConfigFile("config.yml")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		Expect(v.ReadInConfig()).To(Succeed())

		var cfg internal.Config
		Expect(v.Unmarshal(&cfg)).To(Succeed())
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.Database.Driver).To(Equal(internal.DriverSQLite))
		Expect(cfg.Server.Origins()).To(ContainElement("http://localhost:5173"))
	})
})
