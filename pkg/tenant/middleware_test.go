package tenant_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nabi-crm/nabi/pkg/tenant"
)

type stubProvider struct {
	tenants map[string]*tenant.Tenant
	calls   int
}

func (p *stubProvider) GetByIdentifier(_ context.Context, identifier string) (*tenant.Tenant, error) {
	p.calls++
	t, ok := p.tenants[identifier]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return t, nil
}

func newStubProvider(tenants ...*tenant.Tenant) *stubProvider {
	p := &stubProvider{tenants: make(map[string]*tenant.Tenant)}
	for _, t := range tenants {
		p.tenants[t.Subdomain] = t
	}
	return p
}

func testTenant(subdomain string, active bool) *tenant.Tenant {
	return &tenant.Tenant{
		ID:        uuid.New(),
		Subdomain: subdomain,
		Name:      subdomain,
		PlanID:    "starter",
		Active:    active,
		CreatedAt: time.Now(),
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	resolver := tenant.NewHeaderResolver("X-Tenant-ID")

	t.Run("establishes scope and tenant record", func(t *testing.T) {
		t.Parallel()

		acme := testTenant("acme", true)
		provider := newStubProvider(acme)

		var gotScope string
		var gotUser string
		handler := tenant.Middleware(resolver, provider,
			tenant.WithCache(tenant.NewNoopCache()),
			tenant.WithUserResolver(func(r *http.Request) string { return "user-1" }),
		)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotScope, _ = tenant.CurrentTenantID(r.Context())
			gotUser, _ = tenant.CurrentUserID(r.Context())

			rec, ok := tenant.FromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, acme.ID, rec.ID)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Tenant-ID", "acme")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, acme.ID.String(), gotScope)
		assert.Equal(t, "user-1", gotUser)
	})

	t.Run("unknown tenant yields 404", func(t *testing.T) {
		t.Parallel()

		handler := tenant.Middleware(resolver, newStubProvider(),
			tenant.WithCache(tenant.NewNoopCache()),
		)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Tenant-ID", "nope")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("inactive tenant yields 403", func(t *testing.T) {
		t.Parallel()

		handler := tenant.Middleware(resolver, newStubProvider(testTenant("acme", false)),
			tenant.WithCache(tenant.NewNoopCache()),
		)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Tenant-ID", "acme")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no identifier continues without a scope", func(t *testing.T) {
		t.Parallel()

		handler := tenant.Middleware(resolver, newStubProvider(),
			tenant.WithCache(tenant.NewNoopCache()),
		)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := tenant.CurrentTenantID(r.Context())
			assert.False(t, ok)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("skip paths bypass resolution", func(t *testing.T) {
		t.Parallel()

		provider := newStubProvider()
		handler := tenant.Middleware(resolver, provider,
			tenant.WithCache(tenant.NewNoopCache()),
			tenant.WithSkipPaths("/healthz"),
		)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Tenant-ID", "nope")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Zero(t, provider.calls)
	})

	t.Run("caches resolved tenants", func(t *testing.T) {
		t.Parallel()

		provider := newStubProvider(testTenant("acme", true))
		cache := tenant.NewInMemoryCache()
		t.Cleanup(func() { _ = cache.Close() })

		handler := tenant.Middleware(resolver, provider,
			tenant.WithCache(cache),
		)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		for range 3 {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Tenant-ID", "acme")
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}

		assert.Equal(t, 1, provider.calls)
	})
}

func TestRequireTenant(t *testing.T) {
	t.Parallel()

	t.Run("rejects requests without a tenant", func(t *testing.T) {
		t.Parallel()

		handler := tenant.RequireTenant(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("passes through with a tenant", func(t *testing.T) {
		t.Parallel()

		called := false
		handler := tenant.RequireTenant(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(tenant.WithTenant(req.Context(), testTenant("acme", true)))
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.True(t, called)
	})
}
