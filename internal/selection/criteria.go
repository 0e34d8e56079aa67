package selection

import (
	"strings"

	"github.com/router-for-me/CLIProxyAPISelector/internal/catalog"
)

// Priority is the optimization objective for a selection.
type Priority string

const (
	PrioritySpeed    Priority = "speed"
	PriorityAccuracy Priority = "accuracy"
	PriorityCost     Priority = "cost"
	PriorityBalanced Priority = "balanced"
)

// ParsePriority normalizes raw; unknown values map to PriorityBalanced.
func ParsePriority(raw string) Priority {
	switch p := Priority(strings.ToLower(strings.TrimSpace(raw))); p {
	case PrioritySpeed, PriorityAccuracy, PriorityCost:
		return p
	default:
		return PriorityBalanced
	}
}

// Tier is the caller's subscription level.
type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// ParseTier normalizes raw. Empty input maps to TierFree; any other unknown value is
// treated as TierEnterprise, which applies no exclusions.
func ParseTier(raw string) Tier {
	switch t := Tier(strings.ToLower(strings.TrimSpace(raw))); t {
	case "":
		return TierFree
	case TierFree, TierPro:
		return t
	default:
		return TierEnterprise
	}
}

// Criteria is a single selection request.
type Criteria struct {
	TaskType       string
	Priority       Priority
	MaxBudgetPer1K *float64 // Nil or zero means no budget cap.
	Tier           Tier
}

// taskCategories maps task types to catalog categories. Unlisted tasks use chat.
var taskCategories = map[string]catalog.Category{
	"text_generation": catalog.CategoryChat,
	"chat":            catalog.CategoryChat,
	"analysis":        catalog.CategoryChat,
	"summarize":       catalog.CategoryChat,
	"translate":       catalog.CategoryChat,
	"vision":          catalog.CategoryVision,
	"embeddings":      catalog.CategoryEmbeddings,
}

// CategoryForTask returns the catalog category serving taskType.
func CategoryForTask(taskType string) catalog.Category {
	if c, ok := taskCategories[strings.ToLower(strings.TrimSpace(taskType))]; ok {
		return c
	}
	return catalog.CategoryChat
}
