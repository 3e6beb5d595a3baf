package rbac_test

import (
	"errors"
	"lincognito/internal/rbac"
	"lincognito/internal/rbac/presets"
	"strings"
	"testing"
)

func newChecker(t *testing.T) *rbac.Checker {
	t.Helper()
	rc, err := rbac.New(presets.Agency())
	if err != nil {
		t.Fatalf("failed to create checker: %v", err)
	}
	return rc
}

func TestIsRoleElevated(t *testing.T) {
	checker := newChecker(t)

	tests := []struct {
		name     string
		role1    rbac.Role
		role2    rbac.Role
		expected bool
	}{
		{"Owner >= Owner", presets.RoleOwner, presets.RoleOwner, true},
		{"Owner >= Editor", presets.RoleOwner, presets.RoleEditor, true},
		{"Editor >= Viewer", presets.RoleEditor, presets.RoleViewer, true},
		{"Editor < Owner", presets.RoleEditor, presets.RoleOwner, false},
		{"Viewer < Editor", presets.RoleViewer, presets.RoleEditor, false},
		{"Invalid role1", rbac.Role("invalid"), presets.RoleViewer, false},
		{"Invalid role2", presets.RoleOwner, rbac.Role("invalid"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checker.IsRoleElevated(tt.role1, tt.role2)
			if result != tt.expected {
				t.Errorf("IsRoleElevated(%s, %s) = %v, expected %v", tt.role1, tt.role2, result, tt.expected)
			}
		})
	}
}

func TestValidateRole(t *testing.T) {
	checker := newChecker(t)

	tests := []struct {
		name      string
		role      string
		expected  rbac.Role
		shouldErr bool
	}{
		{"Valid owner", "owner", presets.RoleOwner, false},
		{"Valid editor", "editor", presets.RoleEditor, false},
		{"Valid viewer", "viewer", presets.RoleViewer, false},
		{"Invalid role", "admin", "", true},
		{"Empty role", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := checker.ValidateRole(tt.role)
			if tt.shouldErr {
				if !errors.Is(err, rbac.ErrInvalidRole) {
					t.Errorf("ValidateRole(%s) error should wrap ErrInvalidRole, got: %v", tt.role, err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateRole(%s) unexpected error: %v", tt.role, err)
			}
			if result != tt.expected {
				t.Errorf("ValidateRole(%s) = %s, expected %s", tt.role, result, tt.expected)
			}
		})
	}
}

func TestAuthorizeMatrix(t *testing.T) {
	checker := newChecker(t)

	tests := []struct {
		name     string
		role     rbac.Role
		resource rbac.Resource
		action   rbac.Action
		allowed  bool
	}{
		{"Viewer reads clients", presets.RoleViewer, presets.ResourceClient, presets.ActionRead, true},
		{"Viewer reads posts", presets.RoleViewer, presets.ResourcePost, presets.ActionRead, true},
		{"Viewer cannot write posts", presets.RoleViewer, presets.ResourcePost, presets.ActionWrite, false},
		{"Viewer cannot write messages", presets.RoleViewer, presets.ResourceMessage, presets.ActionWrite, false},
		{"Editor writes posts", presets.RoleEditor, presets.ResourcePost, presets.ActionWrite, true},
		{"Editor writes clients", presets.RoleEditor, presets.ResourceClient, presets.ActionWrite, true},
		{"Editor cannot delete clients", presets.RoleEditor, presets.ResourceClient, presets.ActionDelete, false},
		{"Editor cannot manage members", presets.RoleEditor, presets.ResourceMember, presets.ActionManage, false},
		{"Owner deletes clients", presets.RoleOwner, presets.ResourceClient, presets.ActionDelete, true},
		{"Owner manages members", presets.RoleOwner, presets.ResourceMember, presets.ActionManage, true},
		{"No role has no access", rbac.Role(""), presets.ResourceClient, presets.ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checker.Authorize(tt.role, tt.resource, tt.action)
			if tt.allowed && err != nil {
				t.Errorf("Authorize unexpected error: %v", err)
			}
			if !tt.allowed {
				if err == nil {
					t.Errorf("Authorize expected error, got nil")
				} else if !errors.Is(err, rbac.ErrDenied) {
					t.Errorf("Expected ErrDenied, got: %v", err)
				}
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	checker := newChecker(t)

	if err := checker.RequireRole(presets.RoleOwner, presets.RoleEditor); err != nil {
		t.Errorf("owner should satisfy editor: %v", err)
	}
	if err := checker.RequireRole(presets.RoleViewer, presets.RoleEditor); !errors.Is(err, rbac.ErrDenied) {
		t.Errorf("viewer should not satisfy editor, got: %v", err)
	}
	if err := checker.RequireRole("", presets.RoleViewer); !errors.Is(err, rbac.ErrDenied) {
		t.Errorf("empty role should be denied, got: %v", err)
	}
}

func TestMustNewPanicsOnInvalidConfig(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for empty config")
		}
	}()
	rbac.MustNew(rbac.Config{})
}

func validBaseConfig() rbac.Config {
	return rbac.Config{
		Roles:     []rbac.RoleDefinition{{Name: "owner", Level: 2}, {Name: "viewer", Level: 1}},
		Resources: []rbac.Resource{"post"},
		Actions:   []rbac.Action{"read", "write"},
		Capabilities: map[rbac.Role]map[rbac.Resource][]rbac.Action{
			"owner":  {"post": {"read", "write"}},
			"viewer": {"post": {"read"}},
		},
	}
}

func TestValidatePreset(t *testing.T) {
	cfg := presets.Agency()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Agency preset should be valid: %v", err)
	}
}

func TestValidateRejectsBrokenConfigs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*rbac.Config)
		want   string
	}{
		{"empty roles", func(c *rbac.Config) { c.Roles = nil }, "roles"},
		{"empty resources", func(c *rbac.Config) { c.Resources = nil }, "resources"},
		{"duplicate role level", func(c *rbac.Config) { c.Roles[1].Level = 2 }, "duplicate role level"},
		{"duplicate resource", func(c *rbac.Config) { c.Resources = append(c.Resources, "post") }, "duplicate resource"},
		{"unknown capability role", func(c *rbac.Config) {
			c.Capabilities["ghost"] = map[rbac.Resource][]rbac.Action{"post": {"read"}}
		}, "unknown role"},
		{"unknown capability action", func(c *rbac.Config) {
			c.Capabilities["viewer"] = map[rbac.Resource][]rbac.Action{"post": {"publish"}}
		}, "unknown action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBaseConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got: %v", tt.want, err)
			}
		})
	}
}
