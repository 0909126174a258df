package models

// ChunithmAlias is a song alias in the chunithm community (no moderation)
type ChunithmAlias struct {
	ID      int64  `json:"id"`
	MusicID int    `json:"music_id"`
	Alias   string `json:"alias"`
}

// ChunithmAliasRequest is the body for chunithm alias add calls
type ChunithmAliasRequest struct {
	Alias string `json:"alias"`
}

// MusicIDsData carries the music ids matched by an alias lookup
type MusicIDsData struct {
	MusicIDs []int `json:"music_ids"`
}

// ChunithmBind maps an IM user to an aime card on one server
type ChunithmBind struct {
	ImID   string `json:"im_id"`
	Server string `json:"server"`
	AimeID string `json:"aime_id"`
}

// MusicInfo is the basic metadata of a chunithm song. Field names follow
// the upstream game-data dump.
type MusicInfo struct {
	Title          string  `json:"title"`
	Artist         string  `json:"artist"`
	Category       string  `json:"category"`
	Version        *string `json:"version"`
	ReleaseDate    *string `json:"releaseDate"`
	IsDeleted      bool    `json:"isDeleted"`
	DeletedVersion *string `json:"deletedVersion"`
}

// MusicTitle pairs a music id with its title, for the full-catalog dump
type MusicTitle struct {
	MusicID int    `json:"music_id"`
	Title   string `json:"title"`
}

// MusicDifficulty holds the five chart constants of a song for one game
// version (BASIC through WORLD'S END order).
type MusicDifficulty struct {
	MusicID    int      `json:"-"`
	Version    string   `json:"-"`
	Diff0Const *float64 `json:"diff0_const"`
	Diff1Const *float64 `json:"diff1_const"`
	Diff2Const *float64 `json:"diff2_const"`
	Diff3Const *float64 `json:"diff3_const"`
	Diff4Const *float64 `json:"diff4_const"`
}

// Constants returns the five chart constants in difficulty order
func (d *MusicDifficulty) Constants() []*float64 {
	return []*float64{d.Diff0Const, d.Diff1Const, d.Diff2Const, d.Diff3Const, d.Diff4Const}
}

// ChartData holds the note-count breakdown of one chart
type ChartData struct {
	Difficulty int      `json:"difficulty"`
	Creator    *string  `json:"creator"`
	BPM        *float64 `json:"bpm"`
	TapCount   *int     `json:"tap_count"`
	HoldCount  *int     `json:"hold_count"`
	SlideCount *int     `json:"slide_count"`
	AirCount   *int     `json:"air_count"`
	FlickCount *int     `json:"flick_count"`
	TotalCount *int     `json:"total_count"`
}

// MusicBatchRequest is the body for the batch metadata query
type MusicBatchRequest struct {
	MusicIDs []int  `json:"music_ids"`
	Version  string `json:"version"`
}

// MusicBatchItem is one entry of the batch query result
type MusicBatchItem struct {
	Version    *string    `json:"version"`
	Difficulty []*float64 `json:"difficulty"`
	Info       MusicInfo  `json:"info"`
}
