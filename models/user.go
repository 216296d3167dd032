package models

type UserStatus string

const (
	UserPending UserStatus = "PENDING"
	UserActive  UserStatus = "ACTIVE"
	UserDenied  UserStatus = "DENIED"
)

// User is a member or admin account. Status starts PENDING on signup and is
// moved to ACTIVE or DENIED by an admin; both are terminal transitions.
type User struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	FullName   string     `json:"fullName"`
	Email      string     `json:"email"`
	LRN        string     `json:"lrn,omitempty"` // learner reference number, empty for admins
	GradeLevel string     `json:"gradeLevel,omitempty"`
	Section    string     `json:"section,omitempty"`
	IsAdmin    bool       `json:"isAdmin"`
	Status     UserStatus `json:"status"`
}
