package presets

import "lincognito/internal/rbac"

const (
	RoleOwner  rbac.Role = "owner"
	RoleEditor rbac.Role = "editor"
	RoleViewer rbac.Role = "viewer"

	ResourceClient   rbac.Resource = "client"
	ResourcePost     rbac.Resource = "post"
	ResourceTemplate rbac.Resource = "template"
	ResourceMessage  rbac.Resource = "message"
	ResourceMember   rbac.Resource = "member"

	ActionRead   rbac.Action = "read"
	ActionWrite  rbac.Action = "write"
	ActionDelete rbac.Action = "delete"
	ActionManage rbac.Action = "manage"
)

// Agency returns the role matrix shared by agency members and direct client owners.
func Agency() rbac.Config {
	return rbac.Config{
		Roles: []rbac.RoleDefinition{
			{Name: RoleOwner, Level: 3},
			{Name: RoleEditor, Level: 2},
			{Name: RoleViewer, Level: 1},
		},
		Resources: []rbac.Resource{
			ResourceClient,
			ResourcePost,
			ResourceTemplate,
			ResourceMessage,
			ResourceMember,
		},
		Actions: []rbac.Action{
			ActionRead,
			ActionWrite,
			ActionDelete,
			ActionManage,
		},
		Capabilities: map[rbac.Role]map[rbac.Resource][]rbac.Action{
			RoleOwner: {
				ResourceClient:   {ActionRead, ActionWrite, ActionDelete},
				ResourcePost:     {ActionRead, ActionWrite, ActionDelete},
				ResourceTemplate: {ActionRead, ActionWrite, ActionDelete},
				ResourceMessage:  {ActionRead, ActionWrite, ActionDelete},
				ResourceMember:   {ActionRead, ActionWrite, ActionDelete, ActionManage},
			},
			RoleEditor: {
				ResourceClient:   {ActionRead, ActionWrite},
				ResourcePost:     {ActionRead, ActionWrite, ActionDelete},
				ResourceTemplate: {ActionRead, ActionWrite},
				ResourceMessage:  {ActionRead, ActionWrite},
				ResourceMember:   {ActionRead},
			},
			RoleViewer: {
				ResourceClient:   {ActionRead},
				ResourcePost:     {ActionRead},
				ResourceTemplate: {ActionRead},
				ResourceMessage:  {ActionRead},
				ResourceMember:   {ActionRead},
			},
		},
	}
}
