package domain

// Roles recognized in bearer tokens.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Caller is the authenticated identity of a request.
type Caller struct {
	UserID string
	Role   string
}

// CanAudit reports whether the caller may read other users' submissions.
func (c Caller) CanAudit() bool {
	return c.Role == RoleTeacher || c.Role == RoleAdmin
}
