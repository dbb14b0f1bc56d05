package usage

import "time"

const (
	PlanFree = "Free"
	PlanPro  = "Pro"

	periodLength = 7 * 24 * time.Hour
)

var planLimits = map[string]struct {
	analyses     int
	enhancements int
}{
	PlanFree: {analyses: 10, enhancements: 5},
	PlanPro:  {analyses: 200, enhancements: 100},
}

// ValidPlan reports whether plan is one of the known plan names.
func ValidPlan(plan string) bool {
	_, ok := planLimits[plan]
	return ok
}

func newUsage(plan string, now time.Time) Usage {
	limits, ok := planLimits[plan]
	if !ok {
		plan = PlanFree
		limits = planLimits[PlanFree]
	}
	return Usage{
		Plan:         plan,
		Analyses:     Meter{Limit: limits.analyses},
		Enhancements: Meter{Limit: limits.enhancements},
		ResetsAt:     now.Add(periodLength),
	}
}
