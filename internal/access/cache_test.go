package access_test

import (
	"context"
	"sync"
	"time"

	"github.com/frahmantamala/property-hub/internal/access"
	"github.com/frahmantamala/property-hub/internal/core/events"
	"github.com/frahmantamala/property-hub/internal/identity"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var _ = Describe("CachedResolver", func() {
	var (
		ctx      context.Context
		store    *MockStore
		clock    *fakeClock
		cache    *access.ProfileCache
		resolver *access.CachedResolver
		bus      *events.EventBus
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = NewMockStore()
		store.users[7] = &identity.User{ID: 7, IsActive: true}
		store.grants[7] = []identity.WorkstreamGrant{propertyHubWrite}

		clock = &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
		cache = access.NewProfileCache(time.Minute, clock.Now)
		resolver = access.NewCachedResolver(access.NewResolver(store, quietLogger()), cache)

		bus = events.NewEventBus(quietLogger())
		access.RegisterInvalidation(bus, cache, quietLogger())
	})

	It("should serve repeated resolutions from the cache", func() {
		first, err := resolver.Resolve(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		second, err := resolver.Resolve(ctx, 7)
		Expect(err).NotTo(HaveOccurred())

		Expect(second).To(Equal(first))
		Expect(store.Calls("user")).To(Equal(1))
	})

	It("should hand out copies that callers cannot use to corrupt the cache", func() {
		first, err := resolver.Resolve(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		first.Grants[0].Permission = access.PermissionAdmin
		first.IsGlobalAdmin = true

		second, err := resolver.Resolve(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.IsGlobalAdmin).To(BeFalse())
		Expect(second.Grants[0].Permission).To(Equal(access.PermissionWrite))
	})

	It("should expire entries after the TTL", func() {
		_, err := resolver.Resolve(ctx, 7)
		Expect(err).NotTo(HaveOccurred())

		clock.Advance(time.Minute)
		_, err = resolver.Resolve(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Calls("user")).To(Equal(2))
	})

	It("should never cache failures", func() {
		_, err := resolver.Resolve(ctx, 404)
		Expect(err).To(MatchError(access.ErrUnknownSubject))
		Expect(cache.Len()).To(Equal(0))
	})

	It("should evict a user on deactivation", func() {
		profile, err := resolver.Resolve(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(profile.Grants).To(HaveLen(1))

		store.SetActive(7, false)
		Expect(bus.PublishSync(ctx, events.NewUserAccessChangedEvent(events.EventTypeUserStatusChanged, 7, 1))).To(Succeed())

		profile, err = resolver.Resolve(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(profile.IsActive).To(BeFalse())
		Expect(profile.Grants).To(BeEmpty())
	})

	It("should flush everything when a workstream changes state", func() {
		store.users[8] = &identity.User{ID: 8, IsActive: true}
		_, _ = resolver.Resolve(ctx, 7)
		_, _ = resolver.Resolve(ctx, 8)
		Expect(cache.Len()).To(Equal(2))

		Expect(bus.PublishSync(ctx, events.NewWorkstreamStatusChangedEvent(1, false, 1))).To(Succeed())
		Expect(cache.Len()).To(Equal(0))
	})

	It("should not cache a profile resolved before a concurrent eviction", func() {
		// the eviction lands while the resolver is still reading the store
		store.onGetUser = func() {
			store.onGetUser = nil
			store.SetActive(7, false)
			Expect(bus.PublishSync(ctx, events.NewUserAccessChangedEvent(events.EventTypeUserStatusChanged, 7, 1))).To(Succeed())
		}

		stale, err := resolver.Resolve(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(stale.IsActive).To(BeTrue())

		profile, err := resolver.Resolve(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(profile.IsActive).To(BeFalse())
	})
})
