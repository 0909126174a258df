package models

// Preference is a single per-user option
type Preference struct {
	Option string `json:"option"`
	Value  string `json:"value"`
}

// PreferenceListData carries all options of a user
type PreferenceListData struct {
	Options []Preference `json:"options"`
}
