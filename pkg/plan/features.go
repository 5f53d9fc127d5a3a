package plan

import "strings"

type PlanType string
type Feature string

const (
	FreePlan    PlanType = "FREE"
	StarterPlan PlanType = "STARTER"
	ProPlan     PlanType = "PRO"
)

const (
	EmailQueue        Feature = "email_queue"
	WeeklyReport      Feature = "weekly_report"
	CustomTemplates   Feature = "custom_templates"
	SubscriberTags    Feature = "subscriber_tags"
	AdvancedAnalytics Feature = "advanced_analytics"
)

type PlanLimits struct {
	MaxSubscribers  int
	AllowedFeatures map[Feature]bool
}

var PlanFeatures = map[PlanType]PlanLimits{
	FreePlan: {
		MaxSubscribers: 500,
		AllowedFeatures: map[Feature]bool{
			EmailQueue:        false,
			WeeklyReport:      false,
			CustomTemplates:   false,
			SubscriberTags:    false,
			AdvancedAnalytics: false,
		},
	},
	StarterPlan: {
		MaxSubscribers: 5000,
		AllowedFeatures: map[Feature]bool{
			EmailQueue:        true,
			WeeklyReport:      false,
			CustomTemplates:   true,
			SubscriberTags:    true,
			AdvancedAnalytics: false,
		},
	},
	ProPlan: {
		MaxSubscribers: 50000,
		AllowedFeatures: map[Feature]bool{
			EmailQueue:        true,
			WeeklyReport:      true,
			CustomTemplates:   true,
			SubscriberTags:    true,
			AdvancedAnalytics: true,
		},
	},
}

// Parse resolves the configured plan name once at startup; unknown
// values fall back to the free plan.
func Parse(name string) PlanType {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case string(StarterPlan):
		return StarterPlan
	case string(ProPlan):
		return ProPlan
	default:
		return FreePlan
	}
}

func CanUseFeature(plan PlanType, feature Feature) bool {
	limits, exists := PlanFeatures[plan]
	if !exists {
		return false
	}
	return limits.AllowedFeatures[feature]
}

func GetPlanLimits(plan PlanType) PlanLimits {
	return PlanFeatures[plan]
}
