package model

// Role is the fixed set of user roles: one submitter role plus the four
// sign-off authorities. A user holds exactly one role.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleHead    Role = "HEAD"
	RoleOsa     Role = "OSA"
	RoleVpa     Role = "VPA"
	RoleVpaa    Role = "VPAA"
)

// approverFields maps each approval role to the per-approver status field
// it owns on a proposal. Roles absent from the table cannot decide.
var approverFields = map[Role]func(*ActivityProposal) *ApprovalStatus{
	RoleHead: func(p *ActivityProposal) *ApprovalStatus { return &p.HeadStatus },
	RoleOsa:  func(p *ActivityProposal) *ApprovalStatus { return &p.OsaStatus },
	RoleVpa:  func(p *ActivityProposal) *ApprovalStatus { return &p.VpaStatus },
	RoleVpaa: func(p *ActivityProposal) *ApprovalStatus { return &p.VpaaStatus },
}

// ParseRole validates a raw role string against the known set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleHead, RoleOsa, RoleVpa, RoleVpaa:
		return Role(s), true
	}
	return "", false
}

// IsApprover reports whether the role owns one of the four per-approver
// status fields.
func (r Role) IsApprover() bool {
	_, ok := approverFields[r]
	return ok
}

// StatusField returns the accessor for the per-approver status field owned
// by this role, or false for non-approver roles.
func (r Role) StatusField() (func(*ActivityProposal) *ApprovalStatus, bool) {
	f, ok := approverFields[r]
	return f, ok
}

// ApproverRoles lists the four sign-off authorities in stage order
// (head, OSA, VPA, VPAA).
func ApproverRoles() []Role {
	return []Role{RoleHead, RoleOsa, RoleVpa, RoleVpaa}
}
