package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/middleware"
	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/cmd/rhythmdb/service"
	"github.com/harukilab/rhythmdb/common/cache"
	"github.com/harukilab/rhythmdb/common/logger"
	"github.com/harukilab/rhythmdb/common/metrics"
)

const testToken = "test-token"

// aliasStore is an in-memory stand-in for the alias and moderation
// repositories
type aliasStore struct {
	nextID   int64
	aliases  []models.Alias
	groups   map[string][]models.Alias
	pending  map[int64]models.PendingAlias
	rejected map[int64]models.RejectedAlias
	admins   map[string]bool
}

func newAliasStore() *aliasStore {
	return &aliasStore{
		groups:   make(map[string][]models.Alias),
		pending:  make(map[int64]models.PendingAlias),
		rejected: make(map[int64]models.RejectedAlias),
		admins:   make(map[string]bool),
	}
}

func (f *aliasStore) LookupIDs(ctx context.Context, aliasType, alias string, groupID *string) ([]int, error) {
	rows := f.aliases
	if groupID != nil {
		rows = f.groups[*groupID]
	}
	ids := []int{}
	for _, a := range rows {
		if a.AliasType == aliasType && a.Alias == alias {
			ids = append(ids, a.AliasTypeID)
		}
	}
	return ids, nil
}

func (f *aliasStore) LookupAliases(ctx context.Context, aliasType string, aliasTypeID int, groupID *string) ([]string, error) {
	rows := f.aliases
	if groupID != nil {
		rows = f.groups[*groupID]
	}
	aliases := []string{}
	for _, a := range rows {
		if a.AliasType == aliasType && a.AliasTypeID == aliasTypeID {
			aliases = append(aliases, a.Alias)
		}
	}
	return aliases, nil
}

func (f *aliasStore) Publish(ctx context.Context, aliasType string, aliasTypeID int, alias string) (*models.Alias, error) {
	f.nextID++
	row := models.Alias{ID: f.nextID, AliasType: aliasType, AliasTypeID: aliasTypeID, Alias: alias}
	f.aliases = append(f.aliases, row)
	return &row, nil
}

func (f *aliasStore) PublishGroup(ctx context.Context, groupID, aliasType string, aliasTypeID int, alias string) (*models.Alias, error) {
	f.nextID++
	row := models.Alias{ID: f.nextID, AliasType: aliasType, AliasTypeID: aliasTypeID, Alias: alias}
	f.groups[groupID] = append(f.groups[groupID], row)
	return &row, nil
}

func (f *aliasStore) Retract(ctx context.Context, aliasType string, aliasTypeID int, alias string, internalID *int64) (int64, error) {
	var kept []models.Alias
	var removed int64
	for _, a := range f.aliases {
		match := a.AliasType == aliasType && a.AliasTypeID == aliasTypeID && a.Alias == alias
		if match && internalID != nil {
			match = a.ID == *internalID
		}
		if match {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	f.aliases = kept
	return removed, nil
}

func (f *aliasStore) RetractGroup(ctx context.Context, groupID, aliasType string, aliasTypeID int, alias string) (int64, error) {
	var kept []models.Alias
	var removed int64
	for _, a := range f.groups[groupID] {
		if a.AliasType == aliasType && a.AliasTypeID == aliasTypeID && a.Alias == alias {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	f.groups[groupID] = kept
	return removed, nil
}

func (f *aliasStore) IsAdmin(ctx context.Context, imID string) (bool, error) {
	return f.admins[imID], nil
}

func (f *aliasStore) InsertPending(ctx context.Context, aliasType string, aliasTypeID int, alias, submittedBy string) (*models.PendingAlias, error) {
	f.nextID++
	row := models.PendingAlias{
		ID:          f.nextID,
		AliasType:   aliasType,
		AliasTypeID: aliasTypeID,
		Alias:       alias,
		SubmittedBy: submittedBy,
		SubmittedAt: time.Now().UTC(),
	}
	f.pending[row.ID] = row
	return &row, nil
}

func (f *aliasStore) GetPending(ctx context.Context, pendingID int64) (*models.PendingAlias, error) {
	if row, ok := f.pending[pendingID]; ok {
		return &row, nil
	}
	return nil, nil
}

func (f *aliasStore) ListPending(ctx context.Context) ([]models.PendingAlias, error) {
	rows := []models.PendingAlias{}
	for id := int64(1); id <= f.nextID; id++ {
		if row, ok := f.pending[id]; ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (f *aliasStore) DeletePending(ctx context.Context, pendingID int64) error {
	delete(f.pending, pendingID)
	return nil
}

func (f *aliasStore) InsertRejected(ctx context.Context, rejected *models.RejectedAlias) error {
	f.rejected[rejected.ID] = *rejected
	return nil
}

func (f *aliasStore) GetRejectedReason(ctx context.Context, pendingID int64) (*string, error) {
	if row, ok := f.rejected[pendingID]; ok {
		return &row.Reason, nil
	}
	return nil, nil
}

// newAliasServer wires the alias surface the way routes.RegisterAliasRoutes
// does, over the in-memory store
func newAliasServer(store *aliasStore) *echo.Echo {
	log := logger.New("error", "text")
	c := cache.NewMemoryCache(time.Minute)
	m := metrics.New("test")

	aliasSvc := service.NewAliasService(store, store, c, m, log)
	moderationSvc := service.NewModerationService(store, store, c, m, log)

	h := NewAliasHandler(aliasSvc, moderationSvc, log)
	mod := NewModerationHandler(moderationSvc, log)
	auth := middleware.RequireToken(testToken)

	e := echo.New()
	alias := e.Group("/pjsk/alias")
	alias.GET("/:key", h.GetAliasTypeIDs)
	alias.GET("/:alias_type/:alias_type_id", h.GetAliases)
	alias.GET("/group/:key", h.GetGroupAliasTypeIDs)
	alias.GET("/group/:group_id/:alias_type/:alias_type_id", h.GetGroupAliases)
	alias.POST("/:alias_type/:alias_type_id/add", h.AddAlias, auth)
	alias.DELETE("/:alias_type/:alias_type_id/:internal_id", h.RemoveAlias, auth)
	alias.POST("/group/:group_id/:alias_type/:alias_type_id", h.AddGroupAlias, auth)
	alias.DELETE("/group/:group_id/:alias_type/:alias_type_id", h.RemoveGroupAlias, auth)
	alias.GET("/pending", mod.ListPending, auth)
	alias.POST("/pending/:pending_id/approve", mod.Approve, auth)
	alias.POST("/pending/:pending_id/reject", mod.Reject, auth)
	alias.GET("/status/:pending_id", mod.Status, auth)
	return e
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, e *echo.Echo, method, path, body string, authed bool) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if authed {
		req.Header.Set("Authorization", testToken)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestAliasFlow_SubmissionThroughApproval(t *testing.T) {
	store := newAliasStore()
	store.admins["alice"] = true
	e := newAliasServer(store)

	// a regular user submits and the alias is queued, not live
	rec, env := do(t, e, http.MethodPost, "/pjsk/alias/music/123/add",
		`{"alias":"mySong","im_id":"bob"}`, true)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "Alias submitted for review.", env.Message)

	rec, _ = do(t, e, http.MethodGet, "/pjsk/alias/music-id?alias=mySong", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// an admin sees it in the queue
	rec, env = do(t, e, http.MethodGet, "/pjsk/alias/pending?im_id=alice", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var queue models.PendingAliasListData
	require.NoError(t, json.Unmarshal(env.Data, &queue))
	require.Equal(t, 1, queue.Rows)
	pendingID := queue.Results[0].ID

	// the submission reports pending
	rec, env = do(t, e, http.MethodGet, fmt.Sprintf("/pjsk/alias/status/%d", pendingID), "", true)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "This alias is pending review.", env.Message)

	// approval publishes it
	rec, env = do(t, e, http.MethodPost, fmt.Sprintf("/pjsk/alias/pending/%d/approve", pendingID),
		`{"im_id":"alice"}`, true)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Alias approved and added.", env.Message)

	// the alias now resolves, and the review record is gone
	rec, env = do(t, e, http.MethodGet, "/pjsk/alias/music-id?alias=mySong", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var match models.MatchIDsData
	require.NoError(t, json.Unmarshal(env.Data, &match))
	assert.Equal(t, []int{123}, match.MatchIDs)

	rec, _ = do(t, e, http.MethodGet, fmt.Sprintf("/pjsk/alias/status/%d", pendingID), "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAliasFlow_RejectionReportsReason(t *testing.T) {
	store := newAliasStore()
	store.admins["alice"] = true
	e := newAliasServer(store)

	rec, _ := do(t, e, http.MethodPost, "/pjsk/alias/music/123/add",
		`{"alias":"badname","im_id":"bob"}`, true)
	require.Equal(t, http.StatusAccepted, rec.Code)

	_, env := do(t, e, http.MethodGet, "/pjsk/alias/pending?im_id=alice", "", true)
	var queue models.PendingAliasListData
	require.NoError(t, json.Unmarshal(env.Data, &queue))
	require.Equal(t, 1, queue.Rows)
	pendingID := queue.Results[0].ID

	rec, env = do(t, e, http.MethodPost, fmt.Sprintf("/pjsk/alias/pending/%d/reject", pendingID),
		`{"im_id":"alice","reason":"offensive"}`, true)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Alias rejected and logged.", env.Message)

	// the status lookup surfaces the reason as the message
	rec, env = do(t, e, http.MethodGet, fmt.Sprintf("/pjsk/alias/status/%d", pendingID), "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "offensive", env.Message)

	// nothing was published
	rec, _ = do(t, e, http.MethodGet, "/pjsk/alias/music-id?alias=badname", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddAlias_AdminPublishesImmediately(t *testing.T) {
	store := newAliasStore()
	store.admins["alice"] = true
	e := newAliasServer(store)

	rec, env := do(t, e, http.MethodPost, "/pjsk/alias/character/7/add",
		`{"alias":"miku","im_id":"alice"}`, true)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Alias added.", env.Message)

	rec, _ = do(t, e, http.MethodGet, "/pjsk/alias/character-id?alias=miku", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_MutationsRequireToken(t *testing.T) {
	e := newAliasServer(newAliasStore())

	// no token
	req := httptest.NewRequest(http.MethodPost, "/pjsk/alias/music/123/add",
		strings.NewReader(`{"alias":"x","im_id":"bob"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// wrong token
	req = httptest.NewRequest(http.MethodPost, "/pjsk/alias/music/123/add",
		strings.NewReader(`{"alias":"x","im_id":"bob"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "wrong")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ReadPathIsOpen(t *testing.T) {
	store := newAliasStore()
	_, err := store.Publish(context.Background(), "music", 42, "open")
	require.NoError(t, err)
	e := newAliasServer(store)

	rec, _ := do(t, e, http.MethodGet, "/pjsk/alias/music-id?alias=open", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetAliasTypeIDs_MissingAliasParam(t *testing.T) {
	e := newAliasServer(newAliasStore())

	rec, env := do(t, e, http.MethodGet, "/pjsk/alias/music-id", "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing alias parameter", env.Message)
}

func TestGetAliases_UnknownTargetIsEmptyList(t *testing.T) {
	e := newAliasServer(newAliasStore())

	rec, env := do(t, e, http.MethodGet, "/pjsk/alias/music/999", "", false)
	require.Equal(t, http.StatusOK, rec.Code)

	var data models.AliasListData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Empty(t, data.Aliases)
}

func TestGroupAlias_AddLookupRemove(t *testing.T) {
	store := newAliasStore()
	e := newAliasServer(store)

	rec, _ := do(t, e, http.MethodPost, "/pjsk/alias/group/g1/music/42",
		`{"alias":"groupName"}`, true)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// visible through the group lookup
	rec, env := do(t, e, http.MethodGet, "/pjsk/alias/group/music-id?alias=groupName&group_id=g1", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var match models.MatchIDsData
	require.NoError(t, json.Unmarshal(env.Data, &match))
	assert.Equal(t, []int{42}, match.MatchIDs)

	// invisible on the shared path
	rec, _ = do(t, e, http.MethodGet, "/pjsk/alias/music-id?alias=groupName", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, e, http.MethodDelete, "/pjsk/alias/group/g1/music/42",
		`{"alias":"groupName"}`, true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, e, http.MethodGet, "/pjsk/alias/group/music-id?alias=groupName&group_id=g1", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
