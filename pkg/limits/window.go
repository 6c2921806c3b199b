package limits

import "time"

// billingZone is the fixed UTC+9 offset all billing months are computed
// in, regardless of server timezone. The offset is deliberately not a
// location lookup: month boundaries must be stable across environments.
var billingZone = time.FixedZone("KST", 9*60*60)

// MonthWindow returns the half-open billing-month interval [from, to)
// containing now, with boundaries at midnight UTC+9.
func MonthWindow(now time.Time) (from, to time.Time) {
	local := now.In(billingZone)
	from = time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, billingZone)
	to = from.AddDate(0, 1, 0)
	return from, to
}
