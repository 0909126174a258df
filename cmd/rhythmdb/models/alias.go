package models

import "time"

// Alias type discriminators. Aliases point at either a song or a character.
const (
	AliasTypeMusic     = "music"
	AliasTypeCharacter = "character"
)

// ValidAliasType reports whether t is one of the storable alias types
func ValidAliasType(t string) bool {
	return t == AliasTypeMusic || t == AliasTypeCharacter
}

// Alias is a published alias row
type Alias struct {
	ID          int64  `json:"id"`
	AliasType   string `json:"alias_type"`
	AliasTypeID int    `json:"alias_type_id"`
	Alias       string `json:"alias"`
}

// PendingAlias is an alias submission awaiting review
type PendingAlias struct {
	ID          int64     `json:"id"`
	AliasType   string    `json:"alias_type"`
	AliasTypeID int       `json:"alias_type_id"`
	Alias       string    `json:"alias"`
	SubmittedBy string    `json:"submitted_by"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// RejectedAlias is a reviewed-and-rejected submission. The ID is carried
// over from the pending row so status lookups keep working.
type RejectedAlias struct {
	ID          int64     `json:"id"`
	AliasType   string    `json:"alias_type"`
	AliasTypeID int       `json:"alias_type_id"`
	Alias       string    `json:"alias"`
	ReviewedBy  string    `json:"reviewed_by"`
	Reason      string    `json:"reason"`
	ReviewedAt  time.Time `json:"reviewed_at"`
}

// AliasRequest is the body for alias add/remove calls
type AliasRequest struct {
	Alias string `json:"alias"`
	ImID  string `json:"im_id"`
}

// ReviewRequest is the body for approve calls
type ReviewRequest struct {
	ImID string `json:"im_id"`
}

// RejectRequest is the body for reject calls
type RejectRequest struct {
	ImID   string `json:"im_id"`
	Reason string `json:"reason"`
}

// MatchIDsData carries the ids matched by an alias lookup
type MatchIDsData struct {
	MatchIDs []int `json:"match_ids"`
}

// AliasListData carries all aliases of a target
type AliasListData struct {
	Aliases []string `json:"aliases"`
}

// PendingAliasListData is the admin view of the review queue
type PendingAliasListData struct {
	Rows    int            `json:"rows"`
	Results []PendingAlias `json:"results"`
}
