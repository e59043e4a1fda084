package domain

type ToolRequestStatus string

const (
	ToolRequestStatusOpen      ToolRequestStatus = "OPEN"
	ToolRequestStatusFulfilled ToolRequestStatus = "FULFILLED"
	ToolRequestStatusClosed    ToolRequestStatus = "CLOSED"
)

// ToolRequest is a wanted-ad posted by a user looking for a tool nobody has
// listed yet. UpvoteCount mirrors the rows in the upvotes relation and is
// maintained by atomic increment/decrement, never read-modify-write.
type ToolRequest struct {
	ID          int32             `json:"id"`
	UserID      int32             `json:"user_id"`
	ToolName    string            `json:"tool_name"`
	Category    string            `json:"category"`
	Postcode    string            `json:"postcode"`
	Description string            `json:"description"`
	UpvoteCount int32             `json:"upvote_count"`
	Status      ToolRequestStatus `json:"status"`
	CreatedOn   string            `json:"created_on"`
	UpdatedOn   string            `json:"updated_on"`
}

type Upvote struct {
	RequestID int32  `json:"request_id"`
	UserID    int32  `json:"user_id"`
	CreatedOn string `json:"created_on"`
}
