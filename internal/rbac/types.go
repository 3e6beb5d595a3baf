package rbac

// Role is a hierarchical membership level.
type Role string

// Resource is a kind of thing a role acts on.
type Resource string

// Action is an operation on a resource.
type Action string

// RoleDefinition defines a role and its privilege level
type RoleDefinition struct {
	Name  Role
	Level int
}
