package permission

// UpdatePermissionsDTO carries a partial flag patch. Nil flags are left
// untouched. SyncRole asks the service to re-derive the stored role string
// from the merged flags.
type UpdatePermissionsDTO struct {
	Dashboard         *bool `json:"dashboard,omitempty"`
	ViewOwnHistory    *bool `json:"view_own_history,omitempty"`
	ViewOthersHistory *bool `json:"view_others_history,omitempty"`
	AdminPanel        *bool `json:"admin_panel,omitempty"`
	EditPermissions   *bool `json:"edit_permissions,omitempty"`
	SyncRole          bool  `json:"sync_role,omitempty"`
}

// Patch converts the DTO to the gateway's merge shape. Only flag fields are
// ever patched; ids stay immutable.
func (d UpdatePermissionsDTO) Patch() map[string]interface{} {
	patch := map[string]interface{}{}
	if d.Dashboard != nil {
		patch["dashboard"] = *d.Dashboard
	}
	if d.ViewOwnHistory != nil {
		patch["view_own_history"] = *d.ViewOwnHistory
	}
	if d.ViewOthersHistory != nil {
		patch["view_others_history"] = *d.ViewOthersHistory
	}
	if d.AdminPanel != nil {
		patch["admin_panel"] = *d.AdminPanel
	}
	if d.EditPermissions != nil {
		patch["edit_permissions"] = *d.EditPermissions
	}
	return patch
}
