package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/db"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/http/middleware"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
)

// Commands a dashboard may address to a store's player. Commands are
// declarative state, so delivering one to several player sockets of the same
// store is harmless.
var playerCommands = map[string]bool{
	"command:play":         true,
	"command:stop":         true,
	"command:volume":       true,
	"command:next":         true,
	"command:playlist":     true,
	"command:announcement": true,
	"command:reload":       true,
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handshake is the first frame of every connection. A device id + store id
// classifies the socket as a player, a bearer token as a dashboard; any
// other combination is closed immediately.
type handshake struct {
	DeviceID string `json:"deviceId"`
	StoreID  int    `json:"storeId"`
	Token    string `json:"token"`
}

// Relay routes operator commands to store rooms and player telemetry to the
// owning organization's dashboards.
type Relay struct {
	hub      *Hub
	store    db.Store
	commands *CommandPublisher
	secret   string
}

func NewRelay(hub *Hub, store db.Store, commands *CommandPublisher, secret string) *Relay {
	return &Relay{hub: hub, store: store, commands: commands, secret: secret}
}

// HandleWS upgrades the connection and runs the handshake.
func (r *Relay) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	var hs handshake
	if err := conn.ReadJSON(&hs); err != nil {
		_ = conn.Close()
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	client := newClient(r.hub, conn)
	switch {
	case hs.DeviceID != "" && hs.StoreID != 0:
		st, err := r.store.GetStoreByID(hs.StoreID)
		if err != nil || st.DeviceID == nil || *st.DeviceID != hs.DeviceID {
			log.Warn().Int("store_id", hs.StoreID).Msg("rejected player handshake")
			_ = conn.Close()
			return
		}
		client.Type = ClientPlayer
		client.StoreID = st.ID
		client.OrgID = st.OrganizationID
		if err := r.store.SetStoreOnline(st.ID, true); err == nil {
			_ = r.store.AppendPlaybackLog(model.PlaybackLog{
				StoreID:   st.ID,
				EventType: model.EventDeviceOnline,
			})
		}
	case hs.Token != "":
		user, err := middleware.UserFromToken(hs.Token, r.secret, r.store)
		if err != nil {
			log.Warn().Msg("rejected dashboard handshake")
			_ = conn.Close()
			return
		}
		client.Type = ClientDashboard
		client.OrgID = user.OrganizationID
		client.UserID = user.ID
	default:
		_ = conn.Close()
		return
	}

	r.hub.Register(client)
	go client.writePump()
	go client.readPump(r)
}

// dispatch handles one inbound frame according to the sender's class.
func (r *Relay) dispatch(c *Client, msg Message) {
	switch c.Type {
	case ClientPlayer:
		r.dispatchPlayer(c, msg)
	case ClientDashboard:
		r.dispatchDashboard(c, msg)
	}
}

func (r *Relay) dispatchPlayer(c *Client, msg Message) {
	switch msg.Event {
	case "player:heartbeat":
		var hb struct {
			Volume         *int           `json:"volume"`
			CurrentTrackID *int           `json:"currentTrackId"`
			IsPlaying      *bool          `json:"isPlaying"`
			DeviceInfo     map[string]any `json:"deviceInfo"`
		}
		if msg.Data != nil {
			if err := json.Unmarshal(msg.Data, &hb); err != nil {
				return
			}
		}
		if err := r.store.UpdateStoreHeartbeat(c.StoreID, hb.Volume, model.JSONMap(hb.DeviceInfo)); err != nil {
			return
		}
		if hb.CurrentTrackID != nil && hb.IsPlaying != nil && *hb.IsPlaying {
			// progress ping, distinct from the track_started completion event
			_ = r.store.AppendPlaybackLog(model.PlaybackLog{
				StoreID:   c.StoreID,
				TrackID:   hb.CurrentTrackID,
				EventType: model.EventTrackPlaying,
			})
		}
		r.fanOut(c, EventStoreStatus, msg.Data)

	case "player:track-started":
		var body struct {
			TrackID *int `json:"trackId"`
		}
		if msg.Data != nil {
			_ = json.Unmarshal(msg.Data, &body)
		}
		_ = r.store.AppendPlaybackLog(model.PlaybackLog{
			StoreID:   c.StoreID,
			TrackID:   body.TrackID,
			EventType: model.EventTrackStarted,
		})
		r.fanOut(c, EventStoreTrackPlaying, msg.Data)

	case "player:announcement-played":
		var body struct {
			AnnouncementID *int `json:"announcementId"`
		}
		if msg.Data != nil {
			_ = json.Unmarshal(msg.Data, &body)
		}
		if body.AnnouncementID != nil {
			_ = r.store.RecordAnnouncementPlay(*body.AnnouncementID)
		}
		_ = r.store.AppendPlaybackLog(model.PlaybackLog{
			StoreID:        c.StoreID,
			AnnouncementID: body.AnnouncementID,
			EventType:      model.EventAnnouncementPlayed,
		})
		r.fanOut(c, EventStoreAnnouncement, msg.Data)
	}
}

func (r *Relay) dispatchDashboard(c *Client, msg Message) {
	if !playerCommands[msg.Event] {
		return
	}
	var body struct {
		StoreID int `json:"storeId"`
	}
	if msg.Data == nil || json.Unmarshal(msg.Data, &body) != nil || body.StoreID == 0 {
		return
	}

	// a dashboard may only command stores its own organization owns
	st, err := r.store.GetStoreByID(body.StoreID)
	if err != nil || st.OrganizationID != c.OrgID {
		log.Warn().
			Int("store_id", body.StoreID).
			Int("organization_id", c.OrgID).
			Str("command", msg.Event).
			Msg("dropped cross-tenant command")
		return
	}

	r.hub.SendToStore(body.StoreID, msg)
	r.commands.Publish(body.StoreID, msg)
}

// fanOut stamps the originating store id onto the payload and broadcasts to
// the organization's dashboard room only.
func (r *Relay) fanOut(c *Client, event string, data json.RawMessage) {
	payload := map[string]any{}
	if data != nil {
		_ = json.Unmarshal(data, &payload)
	}
	payload["storeId"] = c.StoreID
	msg, err := NewMessage(event, payload)
	if err != nil {
		return
	}
	r.hub.SendToOrg(c.OrgID, msg)
}

// clientGone tears down a dead socket. When the last player socket of a
// store closes, the durable flag flips offline and the organization's
// dashboards hear about it.
func (r *Relay) clientGone(c *Client) {
	r.hub.Unregister(c)
	if c.Type != ClientPlayer {
		return
	}
	if r.hub.StoreConnected(c.StoreID) {
		return
	}
	if err := r.store.SetStoreOnline(c.StoreID, false); err != nil {
		return
	}
	_ = r.store.AppendPlaybackLog(model.PlaybackLog{
		StoreID:   c.StoreID,
		EventType: model.EventDeviceOffline,
	})
	r.NotifyStoreOffline(c.StoreID, c.OrgID)
}

// StoreConnected reports whether the store still has a live player socket.
func (r *Relay) StoreConnected(storeID int) bool {
	return r.hub.StoreConnected(storeID)
}

// NotifyStoreOffline tells the organization's dashboards a store went dark.
func (r *Relay) NotifyStoreOffline(storeID, orgID int) {
	msg, err := NewMessage(EventStoreOffline, map[string]any{"storeId": storeID})
	if err != nil {
		return
	}
	r.hub.SendToOrg(orgID, msg)
}

// NotifyContentUpdated tells dashboards to invalidate local caches after an
// admin mutation of playlists, announcements, schedules or cartwall.
func (r *Relay) NotifyContentUpdated(orgID int, contentType string) {
	msg, err := NewMessage(EventContentUpdated, map[string]any{"type": contentType})
	if err != nil {
		return
	}
	r.hub.SendToOrg(orgID, msg)
}
