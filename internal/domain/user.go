package domain

type Tier string

const (
	TierNone     Tier = "NONE"
	TierFree     Tier = "FREE"
	TierBasic    Tier = "BASIC"
	TierStandard Tier = "STANDARD"
	TierPro      Tier = "PRO"
)

// TierGrantedBy records how the current tier was obtained. The tier name
// alone is ambiguous: BASIC can come from a paid subscription or from
// listing tools.
type TierGrantedBy string

const (
	TierGrantedByPayment    TierGrantedBy = "PAYMENT"
	TierGrantedByToolWaiver TierGrantedBy = "TOOL_WAIVER"
)

type User struct {
	ID                 int32         `json:"id"`
	Email              string        `json:"email"`
	Username           string        `json:"username"`
	PhoneNumber        string        `json:"phone_number"`
	PasswordHash       string        `json:"-"`
	EmailVerified      bool          `json:"email_verified"`
	IsAdmin            bool          `json:"is_admin"`
	Tier               Tier          `json:"tier"`
	TierGrantedBy      TierGrantedBy `json:"tier_granted_by"`
	AvailableToolCount int32         `json:"available_tool_count"`
	PaymentCustomerID  string        `json:"-"`
	PayoutAccountID    string        `json:"-"`
	CreatedOn          string        `json:"created_on"`
	UpdatedOn          string        `json:"updated_on"`
}

// CanBorrow reports whether the user's tier permits requesting a rental.
func (u *User) CanBorrow() bool {
	switch u.Tier {
	case TierBasic, TierStandard, TierPro:
		return true
	}
	return false
}
