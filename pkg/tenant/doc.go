// Package tenant provides the tenant identity scope that the rest of the
// backend hangs data isolation on, plus the HTTP boundary pieces that
// establish it: resolvers, middleware, and a tenant cache.
//
// A scope is the {tenant id, user id} pair that is authoritative for one
// logical call chain. It travels in the context, so it is visible to
// every function and goroutine the chain spawns with that context and to
// nothing else; concurrent requests never observe each other's identity.
//
// The boundary establishes a scope once per request or job:
//
//	err := tenant.Run(ctx, tenantID, userID, func(ctx context.Context) error {
//		// every data access in here is scoped to tenantID
//		return svc.CreateCompany(ctx, input)
//	})
//
// HTTP handlers normally get this for free from the middleware:
//
//	r.Use(tenant.Middleware(tenant.NewSubdomainResolver(".nabi.app"), provider))
//
// Inside an active scope, Set and Clear adjust the identity in place for
// flows that resolve tenancy mid-chain (an auth lookup that must run
// before the tenant is known). AsServiceRole escalates for legitimate
// cross-tenant administrative work.
package tenant
