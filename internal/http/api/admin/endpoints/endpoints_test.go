package endpoints

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/db/dbfake"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/http/api"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/http/middleware"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/player"
)

const testSecret = "handler-test-secret"

// notifyLog records NotifyContentUpdated calls as "orgID/contentType".
type notifyLog struct {
	events []string
}

func (n *notifyLog) NotifyContentUpdated(orgID int, contentType string) {
	n.events = append(n.events, fmt.Sprintf("%d/%s", orgID, contentType))
}

type apiFixture struct {
	fake   *dbfake.Store
	router *gin.Engine
	notify *notifyLog
	org    model.Organization
	token  string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := dbfake.New()
	org, err := fake.CreateOrganization("Acme Retail", "pro")
	require.NoError(t, err)
	userID, err := fake.CreateUser(org.ID, "admin@acme.test", "not-a-real-hash", nil, "admin")
	require.NoError(t, err)
	token, err := middleware.GenerateJWT(userID, testSecret)
	require.NoError(t, err)

	notify := &notifyLog{}
	router := gin.New()
	api.MountGroup(router, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: testSecret,
		Store:     fake,
	},
		StoreModule(fake, player.NewService(fake), notify),
		PlaylistModule(fake, nil, notify),
		AnnouncementModule(fake, nil, notify),
		ScheduleModule(fake, notify),
		CartwallModule(fake, notify),
	)
	return &apiFixture{fake: fake, router: router, notify: notify, org: org, token: token}
}

func (fx *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+fx.token)
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	return w
}

func (fx *apiFixture) store(t *testing.T, name string) model.Store {
	t.Helper()
	st, err := fx.fake.CreateStore(fx.org.ID, name, nil, "UTC", "111111")
	require.NoError(t, err)
	return st
}

func (fx *apiFixture) playlist(t *testing.T, name string) model.Playlist {
	t.Helper()
	pl, err := fx.fake.CreatePlaylist(fx.org.ID, name, nil)
	require.NoError(t, err)
	return pl
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAdminAPI_RequiresBearerToken(t *testing.T) {
	fx := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stores", nil)
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/stores", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStores_CreateAndList(t *testing.T) {
	fx := newAPIFixture(t)

	w := fx.do(t, http.MethodPost, "/api/admin/stores", gin.H{"name": "Downtown"})
	require.Equal(t, http.StatusOK, w.Code)
	created := decode[map[string]any](t, w)
	assert.Equal(t, "Downtown", created["name"])
	assert.Equal(t, "UTC", created["timezone"])
	assert.Len(t, created["activation_code"], 6)
	assert.Equal(t, false, created["paired"])

	w = fx.do(t, http.MethodGet, "/api/admin/stores", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]map[string]any](t, w)
	assert.Len(t, list, 1)
}

func TestStores_CreateRejectsUnknownTimezone(t *testing.T) {
	fx := newAPIFixture(t)

	w := fx.do(t, http.MethodPost, "/api/admin/stores", gin.H{"name": "Downtown", "timezone": "Mars/Olympus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStores_CrossTenantReadsNotFound(t *testing.T) {
	fx := newAPIFixture(t)

	other, err := fx.fake.CreateOrganization("Rival Retail", "standard")
	require.NoError(t, err)
	foreign, err := fx.fake.CreateStore(other.ID, "Rival Store", nil, "UTC", "999999")
	require.NoError(t, err)

	w := fx.do(t, http.MethodGet, fmt.Sprintf("/api/admin/stores/%d", foreign.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = fx.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/stores/%d", foreign.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// still there
	_, err = fx.fake.GetStoreByID(foreign.ID)
	assert.NoError(t, err)
}

func TestStores_SetVolumeValidatesRange(t *testing.T) {
	fx := newAPIFixture(t)
	st := fx.store(t, "Downtown")

	w := fx.do(t, http.MethodPut, fmt.Sprintf("/api/admin/stores/%d/volume", st.ID), gin.H{"volume": 150})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = fx.do(t, http.MethodPut, fmt.Sprintf("/api/admin/stores/%d/volume", st.ID), gin.H{"volume": 80})
	require.Equal(t, http.StatusOK, w.Code)

	got, _ := fx.fake.GetStoreByID(st.ID)
	assert.Equal(t, 80, got.CurrentVolume)
}

func TestStores_SetActivePlaylistChecksOwnership(t *testing.T) {
	fx := newAPIFixture(t)
	st := fx.store(t, "Downtown")

	other, err := fx.fake.CreateOrganization("Rival Retail", "standard")
	require.NoError(t, err)
	foreignPl, err := fx.fake.CreatePlaylist(other.ID, "Theirs", nil)
	require.NoError(t, err)

	w := fx.do(t, http.MethodPut, fmt.Sprintf("/api/admin/stores/%d/playlist", st.ID), gin.H{"playlist_id": foreignPl.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	pl := fx.playlist(t, "Mine")
	w = fx.do(t, http.MethodPut, fmt.Sprintf("/api/admin/stores/%d/playlist", st.ID), gin.H{"playlist_id": pl.ID})
	require.Equal(t, http.StatusOK, w.Code)

	got, _ := fx.fake.GetStoreByID(st.ID)
	require.NotNil(t, got.ActivePlaylistID)
	assert.Equal(t, pl.ID, *got.ActivePlaylistID)
	assert.Contains(t, fx.notify.events, fmt.Sprintf("%d/store", fx.org.ID))

	// clearing works too
	w = fx.do(t, http.MethodPut, fmt.Sprintf("/api/admin/stores/%d/playlist", st.ID), gin.H{"playlist_id": nil})
	require.Equal(t, http.StatusOK, w.Code)
	got, _ = fx.fake.GetStoreByID(st.ID)
	assert.Nil(t, got.ActivePlaylistID)
}

func TestCartwall_PositionBounds(t *testing.T) {
	fx := newAPIFixture(t)
	st := fx.store(t, "Downtown")
	a, err := fx.fake.CreateAnnouncement(fx.org.ID, "Sale", nil, "https://cdn/a.mp3")
	require.NoError(t, err)

	w := fx.do(t, http.MethodPut, fmt.Sprintf("/api/admin/stores/%d/cartwall/9", st.ID), gin.H{"announcement_id": a.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = fx.do(t, http.MethodPut, fmt.Sprintf("/api/admin/stores/%d/cartwall/3", st.ID), gin.H{"announcement_id": a.ID})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCartwall_ReplaceAndRemove(t *testing.T) {
	fx := newAPIFixture(t)
	st := fx.store(t, "Downtown")
	a1, _ := fx.fake.CreateAnnouncement(fx.org.ID, "Sale", nil, "https://cdn/a1.mp3")
	a2, _ := fx.fake.CreateAnnouncement(fx.org.ID, "Closing", nil, "https://cdn/a2.mp3")

	w := fx.do(t, http.MethodPut, fmt.Sprintf("/api/admin/stores/%d/cartwall/0", st.ID), gin.H{"announcement_id": a1.ID})
	require.Equal(t, http.StatusOK, w.Code)

	// assigning the occupied slot replaces the occupant
	w = fx.do(t, http.MethodPut, fmt.Sprintf("/api/admin/stores/%d/cartwall/0", st.ID), gin.H{"announcement_id": a2.ID})
	require.Equal(t, http.StatusOK, w.Code)

	items, err := fx.fake.GetCartwall(st.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, a2.ID, items[0].AnnouncementID)

	w = fx.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/stores/%d/cartwall/0", st.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// removing an empty slot
	w = fx.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/stores/%d/cartwall/0", st.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartwall_RejectsForeignAnnouncement(t *testing.T) {
	fx := newAPIFixture(t)
	st := fx.store(t, "Downtown")

	other, err := fx.fake.CreateOrganization("Rival Retail", "standard")
	require.NoError(t, err)
	foreign, err := fx.fake.CreateAnnouncement(other.ID, "Theirs", nil, "https://cdn/x.mp3")
	require.NoError(t, err)

	w := fx.do(t, http.MethodPut, fmt.Sprintf("/api/admin/stores/%d/cartwall/0", st.ID), gin.H{"announcement_id": foreign.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
