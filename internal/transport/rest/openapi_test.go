package rest_test

import (
	"context"
	"net/http"
	"strings"

	"github.com/frahmantamala/property-hub/internal/admin"
	"github.com/frahmantamala/property-hub/internal/auth"
	"github.com/frahmantamala/property-hub/internal/property"
	"github.com/frahmantamala/property-hub/internal/transport"
	"github.com/frahmantamala/property-hub/internal/transport/rest"
	"github.com/frahmantamala/property-hub/internal/user"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OpenAPI document", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		var err error
		doc, err = openapi3.NewLoader().LoadFromFile("../../../api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
	})

	It("should be a valid OpenAPI 3 document", func() {
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	It("should describe every API route the router serves", func() {
		base := transport.NewBaseHandler(quietLogger())
		router := chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.RouterDeps{
			APIPrefix:       "/api/v1",
			DB:              downDB{},
			AuthHandler:     auth.NewHandler(nil, quietLogger()),
			UserHandler:     user.NewHandler(base, nil),
			PropertyHandler: property.NewHandler(base, nil),
			AdminHandler:    admin.NewHandler(base, nil),
			Logger:          quietLogger(),
		})

		var seen int
		err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			if !strings.HasPrefix(route, "/api/v1/") {
				return nil
			}
			path := strings.TrimSuffix(strings.TrimPrefix(route, "/api/v1"), "/")
			item := doc.Paths.Value(path)
			Expect(item).NotTo(BeNil(), "undocumented path "+path)
			Expect(item.GetOperation(method)).NotTo(BeNil(), "undocumented operation "+method+" "+path)
			seen++
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(BeNumerically(">=", 13))
	})

	It("should document the workstream denial codes", func() {
		codes := doc.Components.Schemas["ErrorResponse"].Value.Properties["error"].Value.Properties["code"].Value.Enum
		Expect(codes).To(ContainElements("NO_WORKSTREAM_ACCESS", "WORKSTREAM_ACCESS_REQUIRED", "WRITE_ACCESS_REQUIRED"))
	})
})
