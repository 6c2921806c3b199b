// Package limits enforces plan-based resource quotas for tenants.
//
// A Service is built from a plan catalog (YAML file or in-memory) and a
// registry of usage counters. Quota checks return a structured Usage
// result; exhausting a quota is a regular outcome, not an error:
//
//	svc, err := limits.NewService(ctx, limits.NewFileSource("plans.yml"), counters, nil)
//	usage, err := svc.CheckUsage(ctx, tenantID, limits.ResourceContacts)
//	if err != nil { ... }
//	if !usage.Allowed {
//		// usage.Current / usage.Limit explain the refusal
//	}
//
// Monthly resources (emails, notifications) count rows inside the
// billing month, whose boundaries are fixed at midnight UTC+9. Default
// counters ride the tenantdb store, so quota reads obey the same tenant
// isolation as everything else.
package limits
