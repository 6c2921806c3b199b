package limits

// Resource is a countable tenant resource type.
type Resource string

// Resources tracked across the CRM plans.
const (
	ResourceCompanies     Resource = "companies"
	ResourceContacts      Resource = "contacts"
	ResourceDeliveryRules Resource = "delivery_rules"

	// Period resources reset every billing month.
	ResourceEmailsPerMonth        Resource = "emails_per_month"
	ResourceNotificationsPerMonth Resource = "notifications_per_month"
)

// Unlimited marks a resource with no quota.
const Unlimited int64 = -1

// Feature is a plan-specific capability flag.
type Feature string

const (
	FeatureKakaoChannel Feature = "kakao_channel"
	FeatureBulkImport   Feature = "bulk_import"
	FeatureAPIAccess    Feature = "api_access"
)

// Usage is the outcome of a quota check. Being over quota is a regular
// result, not an error: Allowed is false and Current/Limit explain why.
type Usage struct {
	Allowed bool  `json:"allowed"`
	Current int64 `json:"current"`
	Limit   int64 `json:"limit"`
}
