package domain

type ToolCondition string

const (
	ToolConditionExcellent  ToolCondition = "EXCELLENT"
	ToolConditionGood       ToolCondition = "GOOD"
	ToolConditionAcceptable ToolCondition = "ACCEPTABLE"
	ToolConditionWorn       ToolCondition = "WORN"
)

type Tool struct {
	ID                 int32         `json:"id"`
	OwnerID            int32         `json:"owner_id"`
	Owner              *User         `json:"owner,omitempty"` // Populated when fetching tool details
	Name               string        `json:"name"`
	Description        string        `json:"description"`
	Category           string        `json:"category"`
	Condition          ToolCondition `json:"condition"`
	DailyRateCents     int32         `json:"daily_rate_cents"`
	AssessedValueCents int32         `json:"assessed_value_cents"`
	Available          bool          `json:"available"`
	Postcode           string        `json:"postcode"`
	CreatedOn          string        `json:"created_on"`
	UpdatedOn          string        `json:"updated_on"`
	DeletedOn          *string       `json:"deleted_on,omitempty"`
}
