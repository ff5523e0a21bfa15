package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"catalog:view",
		"enrollment:create",
		"enrollment:view-own",
		"attempt:create",
		"attempt:save",
		"attempt:submit",
		"attempt:view-own",
	},
	"admin": {
		"*", // everything
	},
}
