package access_test

import (
	"context"
	"errors"

	"github.com/frahmantamala/property-hub/internal/access"
	"github.com/frahmantamala/property-hub/internal/identity"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Resolver", func() {
	var (
		ctx      context.Context
		store    *MockStore
		resolver *access.Resolver
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = NewMockStore()
		resolver = access.NewResolver(store, quietLogger())

		store.users[7] = &identity.User{ID: 7, Email: "u@example.com", IsActive: true}
	})

	Describe("Resolve", func() {
		It("should fail with ErrUnknownSubject when the user is absent", func() {
			profile, err := resolver.Resolve(ctx, 404)
			Expect(err).To(MatchError(access.ErrUnknownSubject))
			Expect(profile).To(BeNil())
			Expect(store.Calls("roles")).To(Equal(0))
		})

		It("should reject non-positive subject ids without touching the store", func() {
			_, err := resolver.Resolve(ctx, 0)
			Expect(err).To(MatchError(access.ErrUnknownSubject))
			Expect(store.Calls("user")).To(Equal(0))
		})

		It("should return an empty profile for an inactive user", func() {
			store.users[7].IsActive = false
			store.roles[7] = []identity.Role{globalAdminRole}
			store.grants[7] = []identity.WorkstreamGrant{propertyHubWrite}

			profile, err := resolver.Resolve(ctx, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.UserID).To(Equal(int64(7)))
			Expect(profile.IsActive).To(BeFalse())
			Expect(profile.IsGlobalAdmin).To(BeFalse())
			Expect(profile.Grants).To(BeEmpty())
			Expect(profile.Authenticated()).To(BeTrue())
		})

		It("should flag global admins by role type and keep their grants", func() {
			store.roles[7] = []identity.Role{staffRole, globalAdminRole}
			store.grants[7] = []identity.WorkstreamGrant{propertyHubRead}

			profile, err := resolver.Resolve(ctx, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.IsGlobalAdmin).To(BeTrue())
			Expect(profile.Grants).To(HaveLen(1))
		})

		It("should not treat a role named like an admin as global admin", func() {
			store.roles[7] = []identity.Role{{ID: 9, Name: "Global Admin", RoleTypeName: "Standard"}}

			profile, err := resolver.Resolve(ctx, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.IsGlobalAdmin).To(BeFalse())
		})

		It("should drop grants on inactive workstreams", func() {
			inactive := extrasAdmin
			inactive.IsWorkstreamActive = false
			store.grants[7] = []identity.WorkstreamGrant{propertyHubRead, inactive}

			profile, err := resolver.Resolve(ctx, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Grants).To(ConsistOf(access.Grant{
				WorkstreamID:   1,
				WorkstreamCode: "property-hub",
				WorkstreamName: "Property Hub",
				Permission:     access.PermissionRead,
				PermissionName: "Read",
			}))
		})

		It("should keep the highest permission when duplicate grants exist", func() {
			// write sits between two reads so neither first nor last wins
			store.grants[7] = []identity.WorkstreamGrant{propertyHubRead, propertyHubWrite, propertyHubRead}

			profile, err := resolver.Resolve(ctx, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Grants).To(HaveLen(1))
			Expect(profile.Grants[0].Permission).To(Equal(access.PermissionWrite))
			Expect(profile.Grants[0].PermissionName).To(Equal("Write"))
		})

		It("should ignore grants with an unknown permission level", func() {
			odd := propertyHubRead
			odd.PermissionLevel = 15
			store.grants[7] = []identity.WorkstreamGrant{odd}

			profile, err := resolver.Resolve(ctx, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Grants).To(BeEmpty())
		})

		It("should be idempotent over an unchanged store", func() {
			store.roles[7] = []identity.Role{staffRole}
			store.grants[7] = []identity.WorkstreamGrant{extrasAdmin, propertyHubWrite}

			first, err := resolver.Resolve(ctx, 7)
			Expect(err).NotTo(HaveOccurred())
			second, err := resolver.Resolve(ctx, 7)
			Expect(err).NotTo(HaveOccurred())

			Expect(second).To(Equal(first))
			Expect(first.Grants[0].WorkstreamID).To(Equal(int64(1)))
			Expect(first.Grants[1].WorkstreamID).To(Equal(int64(2)))
		})

		It("should issue at most three reads", func() {
			_, err := resolver.Resolve(ctx, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(store.Calls("user") + store.Calls("roles") + store.Calls("grants")).To(Equal(3))
		})

		DescribeTable("should never return a partial profile when a read fails",
			func(op string) {
				store.failOn = op
				store.failError = errors.New("connection reset")

				profile, err := resolver.Resolve(ctx, 7)
				Expect(profile).To(BeNil())
				Expect(err).To(MatchError(access.ErrStoreUnavailable))
				Expect(errors.Is(err, access.ErrUnknownSubject)).To(BeFalse())
			},
			Entry("user lookup", "user"),
			Entry("roles lookup", "roles"),
			Entry("grants lookup", "grants"),
		)

		It("should fail with ErrStoreUnavailable when the context is done", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			profile, err := resolver.Resolve(cancelled, 7)
			Expect(profile).To(BeNil())
			Expect(err).To(MatchError(access.ErrStoreUnavailable))
			Expect(err).To(MatchError(context.Canceled))
		})
	})
})
