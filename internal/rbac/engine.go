package rbac

import (
	"fmt"
)

// Checker provides authorization checking based on a validated Config
type Checker struct {
	config       Config
	roleIndex    map[Role]int
	capabilities map[Role]map[Resource]map[Action]bool
}

// New creates a Checker from a validated Config
func New(cfg Config) (*Checker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rc := &Checker{config: cfg}
	rc.buildLookups()
	return rc, nil
}

// MustNew creates a Checker and panics on invalid config
func MustNew(cfg Config) *Checker {
	rc, err := New(cfg)
	if err != nil {
		panic(fmt.Sprintf(errMustNewPanicFmt, err))
	}
	return rc
}

func (rc *Checker) buildLookups() {
	cfg := rc.config

	rc.roleIndex = make(map[Role]int, len(cfg.Roles))
	for _, rd := range cfg.Roles {
		rc.roleIndex[rd.Name] = rd.Level
	}

	rc.capabilities = make(map[Role]map[Resource]map[Action]bool, len(cfg.Capabilities))
	for role, resources := range cfg.Capabilities {
		rc.capabilities[role] = make(map[Resource]map[Action]bool, len(resources))
		for res, actions := range resources {
			rc.capabilities[role][res] = make(map[Action]bool, len(actions))
			for _, act := range actions {
				rc.capabilities[role][res][act] = true
			}
		}
	}
}

// Authorize checks if the role can perform an action on a resource.
// An empty role means the caller has no membership at all.
func (rc *Checker) Authorize(role Role, resource Resource, action Action) error {
	if role == "" {
		return fmt.Errorf(errDeniedUserRoleEmptyFmt, ErrDenied)
	}
	if !rc.canRolePerformAction(role, resource, action) {
		return fmt.Errorf(errDeniedRoleCannotPerformActionFmt, ErrDenied, role, action, resource)
	}
	return nil
}

// IsAuthorized returns a boolean version of Authorize
func (rc *Checker) IsAuthorized(role Role, resource Resource, action Action) bool {
	return rc.Authorize(role, resource, action) == nil
}

// RequireRole checks that role is at least minRole
func (rc *Checker) RequireRole(role, minRole Role) error {
	if role == "" {
		return fmt.Errorf(errDeniedUserRoleEmptyFmt, ErrDenied)
	}
	if !rc.IsRoleElevated(role, minRole) {
		return fmt.Errorf(errDeniedMinRoleRequiredFmt, ErrDenied, minRole, role)
	}
	return nil
}

func (rc *Checker) canRolePerformAction(role Role, resource Resource, action Action) bool {
	resources, ok := rc.capabilities[role]
	if !ok {
		return false
	}
	actions, ok := resources[resource]
	if !ok {
		return false
	}
	return actions[action]
}

// IsRoleElevated checks if role1 has equal or higher privilege than role2
func (rc *Checker) IsRoleElevated(role1, role2 Role) bool {
	level1, exists1 := rc.roleIndex[role1]
	level2, exists2 := rc.roleIndex[role2]
	if !exists1 || !exists2 {
		return false
	}
	return level1 >= level2
}

// ValidateRole validates a role string against configured roles
func (rc *Checker) ValidateRole(role string) (Role, error) {
	r := Role(role)
	if _, ok := rc.roleIndex[r]; ok {
		return r, nil
	}
	return "", fmt.Errorf(errInvalidRoleFmt, ErrInvalidRole, role)
}
