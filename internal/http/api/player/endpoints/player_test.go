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
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/http/api/player/packets"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/player"
)

type playerFixture struct {
	fake   *dbfake.Store
	router *gin.Engine
	org    model.Organization
	store  model.Store
}

func newPlayerFixture(t *testing.T) *playerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := dbfake.New()
	org, err := fake.CreateOrganization("Acme Retail", "pro")
	require.NoError(t, err)
	st, err := fake.CreateStore(org.ID, "Downtown", nil, "UTC", "123456")
	require.NoError(t, err)

	router := gin.New()
	api.MountGroup(router, api.GroupConfig{Prefix: "/api/player"}, PlayerModule(player.NewService(fake)))
	return &playerFixture{fake: fake, router: router, org: org, store: st}
}

func (fx *playerFixture) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	return w
}

func (fx *playerFixture) get(t *testing.T, path, deviceID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if deviceID != "" {
		req.Header.Set("X-Device-ID", deviceID)
	}
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	return w
}

// activate runs the pairing exchange and returns the issued device id.
func (fx *playerFixture) activate(t *testing.T) string {
	t.Helper()
	w := fx.post(t, "/api/player/activate", gin.H{"code": "123456"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp packets.ActivateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.DeviceID)
	return resp.DeviceID
}

func TestActivate_ExchangesCodeOnce(t *testing.T) {
	fx := newPlayerFixture(t)

	deviceID := fx.activate(t)

	st, err := fx.fake.GetStoreByID(fx.store.ID)
	require.NoError(t, err)
	require.NotNil(t, st.DeviceID)
	assert.Equal(t, deviceID, *st.DeviceID)

	// the code rotated on success
	w := fx.post(t, "/api/player/activate", gin.H{"code": "123456"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActivate_MissingCode(t *testing.T) {
	fx := newPlayerFixture(t)

	w := fx.post(t, "/api/player/activate", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetState_RequiresDeviceHeader(t *testing.T) {
	fx := newPlayerFixture(t)
	deviceID := fx.activate(t)

	w := fx.get(t, fmt.Sprintf("/api/player/%d/state", fx.store.ID), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = fx.get(t, fmt.Sprintf("/api/player/%d/state", fx.store.ID), "wrong-device")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = fx.get(t, fmt.Sprintf("/api/player/%d/state", fx.store.ID), deviceID)
	require.Equal(t, http.StatusOK, w.Code)

	var state player.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, fx.store.ID, state.Store.ID)
	assert.Equal(t, fx.org.ID, state.Organization.ID)
}

func TestGetState_BadStoreParam(t *testing.T) {
	fx := newPlayerFixture(t)

	w := fx.get(t, "/api/player/downtown/state", "whatever")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHeartbeat_AuthorizesPair(t *testing.T) {
	fx := newPlayerFixture(t)
	deviceID := fx.activate(t)

	w := fx.post(t, "/api/player/heartbeat", gin.H{"storeId": fx.store.ID, "deviceId": "wrong-device"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = fx.post(t, "/api/player/heartbeat", gin.H{"storeId": fx.store.ID, "deviceId": deviceID, "volume": 65})
	require.Equal(t, http.StatusOK, w.Code)

	var resp player.Ack
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	st, _ := fx.fake.GetStoreByID(fx.store.ID)
	assert.Equal(t, 65, st.CurrentVolume)
}

func TestHeartbeat_MissingFields(t *testing.T) {
	fx := newPlayerFixture(t)

	w := fx.post(t, "/api/player/heartbeat", gin.H{"storeId": fx.store.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrackEvents_AppendToLog(t *testing.T) {
	fx := newPlayerFixture(t)
	deviceID := fx.activate(t)

	w := fx.post(t, fmt.Sprintf("/api/player/%d/track/start", fx.store.ID), gin.H{"deviceId": deviceID, "trackId": 7})
	require.Equal(t, http.StatusOK, w.Code)
	w = fx.post(t, fmt.Sprintf("/api/player/%d/track/end", fx.store.ID), gin.H{"deviceId": deviceID, "trackId": 7})
	require.Equal(t, http.StatusOK, w.Code)

	logs, err := fx.fake.ListPlaybackLogs(fx.store.ID, 10)
	require.NoError(t, err)
	// newest first, plus the device_online entry from activation
	require.Len(t, logs, 3)
	assert.Equal(t, model.EventTrackEnded, logs[0].EventType)
	assert.Equal(t, model.EventTrackStarted, logs[1].EventType)
	assert.Equal(t, model.EventDeviceOnline, logs[2].EventType)
}

func TestAnnouncementPlayed_BumpsCounter(t *testing.T) {
	fx := newPlayerFixture(t)
	deviceID := fx.activate(t)
	a, err := fx.fake.CreateAnnouncement(fx.org.ID, "Sale", nil, "https://cdn/a.mp3")
	require.NoError(t, err)

	w := fx.post(t, fmt.Sprintf("/api/player/%d/announcement/played", fx.store.ID), gin.H{"deviceId": deviceID, "announcementId": a.ID})
	require.Equal(t, http.StatusOK, w.Code)

	got, err := fx.fake.GetAnnouncementByID(fx.org.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.PlayCount)
}

func TestGoOffline_FlipsPresence(t *testing.T) {
	fx := newPlayerFixture(t)
	deviceID := fx.activate(t)

	w := fx.post(t, fmt.Sprintf("/api/player/%d/offline", fx.store.ID), gin.H{"deviceId": deviceID})
	require.Equal(t, http.StatusOK, w.Code)

	st, _ := fx.fake.GetStoreByID(fx.store.ID)
	assert.False(t, st.IsOnline)
}

func TestSync_MergesLastState(t *testing.T) {
	fx := newPlayerFixture(t)
	deviceID := fx.activate(t)

	w := fx.post(t, fmt.Sprintf("/api/player/%d/sync", fx.store.ID), gin.H{
		"deviceId": deviceID,
		"state":    gin.H{"screen": "idle"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	st, _ := fx.fake.GetStoreByID(fx.store.ID)
	last, ok := st.DeviceInfo["lastState"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "idle", last["screen"])
}

func TestOfflineContent_RequiresPairing(t *testing.T) {
	fx := newPlayerFixture(t)
	deviceID := fx.activate(t)

	w := fx.get(t, fmt.Sprintf("/api/player/%d/offline-content", fx.store.ID), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = fx.get(t, fmt.Sprintf("/api/player/%d/offline-content", fx.store.ID), deviceID)
	assert.Equal(t, http.StatusOK, w.Code)
}
