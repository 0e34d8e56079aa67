package ratelimit

import (
	"fmt"
	"strings"
)

// KeyForDecision builds a limiter key for the resolved scope. An empty key disables limiting.
func KeyForDecision(companyID string, decision Decision) string {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" || decision.Limit <= 0 {
		return ""
	}
	switch decision.Scope {
	case ScopeCompanyRoute:
		if decision.Route == "" {
			return ""
		}
		return fmt.Sprintf("c:%s:r:%s", companyID, decision.Route)
	case ScopeCompany:
		return fmt.Sprintf("c:%s", companyID)
	default:
		return ""
	}
}
