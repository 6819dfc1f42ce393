package domain

// Role partitions workspace users by what they may be assigned to. Users are
// reference data: they are registered into the store, never created through
// the disclosure workflow itself.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleReportOwner Role = "report-owner"
	RoleContributor Role = "contributor"
	RoleAuditor     Role = "auditor"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleReportOwner, RoleContributor, RoleAuditor:
		return true
	}
	return false
}

// User is the reference identity data points and sections are assigned to.
type User struct {
	ID    string
	Name  string
	Email string
	Role  Role
}
