package models

// DefaultServer is the pseudo-server name for the global default binding
const DefaultServer = "default"

// UserBinding is a game-account binding of an IM user
type UserBinding struct {
	ID      int    `json:"id"`
	ImID    string `json:"im_id"`
	Server  string `json:"server"`
	UserID  string `json:"user_id"`
	Visible bool   `json:"visible"`
}

// AddBindingRequest is the body for creating a binding
type AddBindingRequest struct {
	Server  string `json:"server"`
	UserID  string `json:"user_id"`
	Visible *bool  `json:"visible"`
}

// SetDefaultBindingRequest is the body for setting a default binding
type SetDefaultBindingRequest struct {
	Server string `json:"server"`
	BindID int    `json:"bind_id"`
}

// VisibilityRequest is the body for toggling binding visibility
type VisibilityRequest struct {
	Visible bool `json:"visible"`
}

// BindingListData carries a user's bindings
type BindingListData struct {
	Bindings []UserBinding `json:"bindings"`
}

// BindingCreatedData carries the id of a freshly created binding
type BindingCreatedData struct {
	BindID int `json:"bind_id"`
}
