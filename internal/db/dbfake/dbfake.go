// Package dbfake is an in-memory db.Store used by unit tests. It mirrors
// the semantics the Postgres store guarantees: organization scoping,
// schedule conflict rejection, cartwall slot replacement, append-only logs.
package dbfake

import (
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/db"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/schedule"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/settings"
)

type Store struct {
	mu sync.Mutex

	nextID        int
	Organizations map[int]*model.Organization
	Users         map[int]*model.User
	Stores        map[int]*model.Store
	Playlists     map[int]*model.Playlist
	Announcements map[int]*model.Announcement
	Cartwall      map[int][]model.CartwallItem // by store id
	Rules         map[int][]model.ScheduleRule // by store id
	Logs          []model.PlaybackLog
}

var _ db.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		Organizations: map[int]*model.Organization{},
		Users:         map[int]*model.User{},
		Stores:        map[int]*model.Store{},
		Playlists:     map[int]*model.Playlist{},
		Announcements: map[int]*model.Announcement{},
		Cartwall:      map[int][]model.CartwallItem{},
		Rules:         map[int][]model.ScheduleRule{},
	}
}

func (f *Store) id() int {
	f.nextID++
	return f.nextID
}

// --- organizations / users ---

func (f *Store) CreateOrganization(name, plan string) (model.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	org := model.Organization{ID: f.id(), Name: name, Plan: plan, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	f.Organizations[org.ID] = &org
	return org, nil
}

func (f *Store) GetOrganizationByID(id int) (model.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, ok := f.Organizations[id]
	if !ok {
		return model.Organization{}, sql.ErrNoRows
	}
	return *org, nil
}

func (f *Store) UpdateOrganizationSettings(id int, s settings.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, ok := f.Organizations[id]
	if !ok {
		return sql.ErrNoRows
	}
	org.Settings = s
	return nil
}

func (f *Store) CreateUser(organizationID int, email, hashedPassword string, name *string, role string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := model.User{ID: f.id(), OrganizationID: organizationID, Email: email, HashedPassword: hashedPassword, Name: name, Role: role}
	f.Users[u.ID] = &u
	return u.ID, nil
}

func (f *Store) GetUserByEmail(email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.Users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *Store) GetUserByID(id int) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.Users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *u
	return &copy, nil
}

func (f *Store) UpdateUserProfile(id int, email string, name *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.Users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Email = email
	u.Name = name
	return nil
}

// --- stores ---

func (f *Store) CreateStore(organizationID int, name string, location *string, timezone string, activationCode string) (model.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := model.Store{
		ID:             f.id(),
		OrganizationID: organizationID,
		Name:           name,
		Location:       location,
		Timezone:       timezone,
		IsActive:       true,
		CurrentVolume:  50,
		ActivationCode: activationCode,
		DeviceInfo:     model.JSONMap{},
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	f.Stores[st.ID] = &st
	return st, nil
}

func (f *Store) GetStoreByID(id int) (model.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.Stores[id]
	if !ok {
		return model.Store{}, sql.ErrNoRows
	}
	return *st, nil
}

func (f *Store) GetStoreByActivationCode(code string) (model.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, st := range f.Stores {
		if st.IsActive && st.ActivationCode == code {
			return *st, nil
		}
	}
	return model.Store{}, sql.ErrNoRows
}

func (f *Store) ListStores(organizationID int) ([]model.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Store
	for _, st := range f.Stores {
		if st.OrganizationID == organizationID {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Store) UpdateStore(id int, name, location, timezone *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.Stores[id]
	if !ok {
		return sql.ErrNoRows
	}
	if name != nil {
		st.Name = *name
	}
	if location != nil {
		st.Location = location
	}
	if timezone != nil {
		st.Timezone = *timezone
	}
	return nil
}

func (f *Store) DeleteStore(id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Stores[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.Stores, id)
	return nil
}

func (f *Store) ActivateStoreDevice(id int, deviceID, rotatedCode, presentedCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.Stores[id]
	if !ok {
		return sql.ErrNoRows
	}
	if st.ActivationCode != presentedCode {
		return sql.ErrNoRows
	}
	now := time.Now()
	st.DeviceID = &deviceID
	st.ActivationCode = rotatedCode
	st.IsOnline = true
	st.LastSeen = &now
	return nil
}

func (f *Store) RegenerateActivationCode(id int, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.Stores[id]
	if !ok {
		return sql.ErrNoRows
	}
	st.ActivationCode = code
	return nil
}

func (f *Store) SetStoreOnline(id int, online bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.Stores[id]
	if !ok {
		return sql.ErrNoRows
	}
	now := time.Now()
	st.IsOnline = online
	st.LastSeen = &now
	return nil
}

func (f *Store) UpdateStoreHeartbeat(id int, volume *int, deviceInfo model.JSONMap) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.Stores[id]
	if !ok {
		return sql.ErrNoRows
	}
	now := time.Now()
	st.IsOnline = true
	st.LastSeen = &now
	if volume != nil {
		st.CurrentVolume = *volume
	}
	for k, v := range deviceInfo {
		if st.DeviceInfo == nil {
			st.DeviceInfo = model.JSONMap{}
		}
		st.DeviceInfo[k] = v
	}
	return nil
}

func (f *Store) SetStoreVolume(id int, volume int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.Stores[id]
	if !ok {
		return sql.ErrNoRows
	}
	st.CurrentVolume = volume
	return nil
}

func (f *Store) SetStoreActivePlaylist(id int, playlistID *int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.Stores[id]
	if !ok {
		return sql.ErrNoRows
	}
	st.ActivePlaylistID = playlistID
	return nil
}

func (f *Store) UpdateStoreSettings(id int, s settings.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.Stores[id]
	if !ok {
		return sql.ErrNoRows
	}
	st.Settings = s
	return nil
}

func (f *Store) MergeStoreLastState(id int, state model.JSONMap) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.Stores[id]
	if !ok {
		return sql.ErrNoRows
	}
	if st.DeviceInfo == nil {
		st.DeviceInfo = model.JSONMap{}
	}
	st.DeviceInfo["lastState"] = map[string]any(state)
	return nil
}

func (f *Store) ListStaleOnlineStores(olderThan time.Time) ([]model.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Store
	for _, st := range f.Stores {
		if st.IsOnline && st.LastSeen != nil && st.LastSeen.Before(olderThan) {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- playlists ---

func (f *Store) CreatePlaylist(organizationID int, name string, description *string) (model.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := model.Playlist{ID: f.id(), OrganizationID: organizationID, Name: name, Description: description}
	f.Playlists[p.ID] = &p
	return p, nil
}

func (f *Store) GetPlaylistByID(organizationID, id int) (model.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Playlists[id]
	if !ok || p.OrganizationID != organizationID {
		return model.Playlist{}, sql.ErrNoRows
	}
	out := *p
	out.Tracks = append([]model.Track(nil), p.Tracks...)
	sort.Slice(out.Tracks, func(i, j int) bool { return out.Tracks[i].Position < out.Tracks[j].Position })
	return out, nil
}

func (f *Store) ListPlaylists(organizationID int) ([]model.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Playlist
	for _, p := range f.Playlists {
		if p.OrganizationID == organizationID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Store) UpdatePlaylist(organizationID, id int, name, description *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Playlists[id]
	if !ok || p.OrganizationID != organizationID {
		return sql.ErrNoRows
	}
	if name != nil {
		p.Name = *name
	}
	if description != nil {
		p.Description = description
	}
	return nil
}

func (f *Store) DeletePlaylist(organizationID, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Playlists[id]
	if !ok || p.OrganizationID != organizationID {
		return sql.ErrNoRows
	}
	delete(f.Playlists, id)
	return nil
}

func (f *Store) AddTrack(playlistID int, title string, artist *string, url string, duration *int) (model.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Playlists[playlistID]
	if !ok {
		return model.Track{}, sql.ErrNoRows
	}
	t := model.Track{ID: f.id(), PlaylistID: playlistID, Title: title, Artist: artist, URL: url, Duration: duration, Position: len(p.Tracks)}
	p.Tracks = append(p.Tracks, t)
	return t, nil
}

func (f *Store) RemoveTrack(playlistID, trackID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Playlists[playlistID]
	if !ok {
		return sql.ErrNoRows
	}
	for i, t := range p.Tracks {
		if t.ID == trackID {
			p.Tracks = append(p.Tracks[:i], p.Tracks[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *Store) ReorderTracks(playlistID int, trackIDs []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Playlists[playlistID]
	if !ok {
		return sql.ErrNoRows
	}
	pos := map[int]int{}
	for i, id := range trackIDs {
		pos[id] = i
	}
	for i := range p.Tracks {
		if newPos, ok := pos[p.Tracks[i].ID]; ok {
			p.Tracks[i].Position = newPos
		}
	}
	return nil
}

// --- announcements / cartwall ---

func (f *Store) CreateAnnouncement(organizationID int, name string, text *string, audioURL string) (model.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := model.Announcement{ID: f.id(), OrganizationID: organizationID, Name: name, Text: text, AudioURL: audioURL, IsActive: true}
	f.Announcements[a.ID] = &a
	return a, nil
}

func (f *Store) GetAnnouncementByID(organizationID, id int) (model.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.Announcements[id]
	if !ok || a.OrganizationID != organizationID {
		return model.Announcement{}, sql.ErrNoRows
	}
	return *a, nil
}

func (f *Store) ListAnnouncements(organizationID int) ([]model.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Announcement
	for _, a := range f.Announcements {
		if a.OrganizationID == organizationID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Store) UpdateAnnouncement(organizationID, id int, name, text, audioURL *string, isActive *bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.Announcements[id]
	if !ok || a.OrganizationID != organizationID {
		return sql.ErrNoRows
	}
	if name != nil {
		a.Name = *name
	}
	if text != nil {
		a.Text = text
	}
	if audioURL != nil {
		a.AudioURL = *audioURL
	}
	if isActive != nil {
		a.IsActive = *isActive
	}
	return nil
}

func (f *Store) DeleteAnnouncement(organizationID, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.Announcements[id]
	if !ok || a.OrganizationID != organizationID {
		return sql.ErrNoRows
	}
	delete(f.Announcements, id)
	return nil
}

func (f *Store) RecordAnnouncementPlay(id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.Announcements[id]
	if !ok {
		return sql.ErrNoRows
	}
	now := time.Now()
	a.PlayCount++
	a.LastPlayedAt = &now
	return nil
}

func (f *Store) GetCartwall(storeID int) ([]model.CartwallItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.CartwallItem
	for _, item := range f.Cartwall[storeID] {
		if !item.IsActive {
			continue
		}
		a, ok := f.Announcements[item.AnnouncementID]
		if !ok || !a.IsActive {
			continue
		}
		copyA := *a
		item.Announcement = &copyA
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *Store) SetCartwallItem(storeID, position, announcementID int) (model.CartwallItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := f.Cartwall[storeID]
	for i := range items {
		if items[i].Position == position {
			items[i].AnnouncementID = announcementID
			items[i].IsActive = true
			return items[i], nil
		}
	}
	item := model.CartwallItem{ID: f.id(), StoreID: storeID, AnnouncementID: announcementID, Position: position, IsActive: true}
	f.Cartwall[storeID] = append(items, item)
	return item, nil
}

func (f *Store) RemoveCartwallItem(storeID, position int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := f.Cartwall[storeID]
	for i := range items {
		if items[i].Position == position {
			f.Cartwall[storeID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

// --- schedule rules ---

func (f *Store) ListScheduleRules(storeID int) ([]model.ScheduleRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]model.ScheduleRule(nil), f.Rules[storeID]...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (f *Store) CreateScheduleRule(storeID, playlistID int, dayOfWeek, startTime, endTime string, volume *int) (model.ScheduleRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createRuleLocked(storeID, playlistID, dayOfWeek, startTime, endTime, volume)
}

func (f *Store) createRuleLocked(storeID, playlistID int, dayOfWeek, startTime, endTime string, volume *int) (model.ScheduleRule, error) {
	day := strings.ToLower(dayOfWeek)
	if err := schedule.CheckConflict(f.Rules[storeID], day, startTime, endTime, 0); err != nil {
		return model.ScheduleRule{}, err
	}
	r := model.ScheduleRule{
		ID:         f.id(),
		StoreID:    storeID,
		PlaylistID: playlistID,
		DayOfWeek:  day,
		StartTime:  startTime,
		EndTime:    endTime,
		Volume:     volume,
		IsActive:   true,
	}
	f.Rules[storeID] = append(f.Rules[storeID], r)
	return r, nil
}

func (f *Store) UpdateScheduleRule(storeID, ruleID int, playlistID *int, dayOfWeek, startTime, endTime *string, volume *int, isActive *bool) (model.ScheduleRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rules := f.Rules[storeID]
	var current *model.ScheduleRule
	for i := range rules {
		if rules[i].ID == ruleID {
			current = &rules[i]
			break
		}
	}
	if current == nil {
		return model.ScheduleRule{}, sql.ErrNoRows
	}
	day, start, end, active := current.DayOfWeek, current.StartTime, current.EndTime, current.IsActive
	if dayOfWeek != nil {
		day = strings.ToLower(*dayOfWeek)
	}
	if startTime != nil {
		start = *startTime
	}
	if endTime != nil {
		end = *endTime
	}
	if isActive != nil {
		active = *isActive
	}
	if err := schedule.ValidateRule(day, start, end); err != nil {
		return model.ScheduleRule{}, err
	}
	if active {
		if err := schedule.CheckConflict(rules, day, start, end, ruleID); err != nil {
			return model.ScheduleRule{}, err
		}
	}
	current.DayOfWeek, current.StartTime, current.EndTime, current.IsActive = day, start, end, active
	if playlistID != nil {
		current.PlaylistID = *playlistID
	}
	if volume != nil {
		current.Volume = volume
	}
	return *current, nil
}

func (f *Store) DeleteScheduleRule(storeID, ruleID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rules := f.Rules[storeID]
	for i := range rules {
		if rules[i].ID == ruleID {
			f.Rules[storeID] = append(rules[:i], rules[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *Store) BulkCreateScheduleRules(storeID int, rules []model.ScheduleRule) ([]model.ScheduleRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	before := append([]model.ScheduleRule(nil), f.Rules[storeID]...)
	out := make([]model.ScheduleRule, 0, len(rules))
	for _, c := range rules {
		r, err := f.createRuleLocked(storeID, c.PlaylistID, c.DayOfWeek, c.StartTime, c.EndTime, c.Volume)
		if err != nil {
			f.Rules[storeID] = before // all-or-nothing
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *Store) CopySchedule(fromStoreID, toStoreID int) ([]model.ScheduleRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Rules[toStoreID] = nil
	var out []model.ScheduleRule
	for _, c := range f.Rules[fromStoreID] {
		r := c
		r.ID = f.id()
		r.StoreID = toStoreID
		f.Rules[toStoreID] = append(f.Rules[toStoreID], r)
		out = append(out, r)
	}
	return out, nil
}

// --- playback log ---

func (f *Store) AppendPlaybackLog(entry model.PlaybackLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = int64(f.id())
	entry.CreatedAt = time.Now()
	f.Logs = append(f.Logs, entry)
	return nil
}

func (f *Store) ListPlaybackLogs(storeID, limit int) ([]model.PlaybackLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	var out []model.PlaybackLog
	for i := len(f.Logs) - 1; i >= 0 && len(out) < limit; i-- {
		if f.Logs[i].StoreID == storeID {
			out = append(out, f.Logs[i])
		}
	}
	return out, nil
}
