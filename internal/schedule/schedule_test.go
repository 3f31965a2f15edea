package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
)

func rule(id int, day, start, end string, playlist int) model.ScheduleRule {
	return model.ScheduleRule{
		ID:         id,
		StoreID:    1,
		PlaylistID: playlist,
		DayOfWeek:  day,
		StartTime:  start,
		EndTime:    end,
		IsActive:   true,
	}
}

// mondayAt builds a Monday instant at the given wall clock in loc.
func mondayAt(clock string, loc *time.Location) time.Time {
	t, _ := time.ParseInLocation("2006-01-02 15:04", "2026-08-31 "+clock, loc)
	return t
}

func TestValidClock(t *testing.T) {
	for _, ok := range []string{"00:00", "09:30", "23:59"} {
		assert.True(t, ValidClock(ok), ok)
	}
	for _, bad := range []string{"9:30", "24:00", "12:60", "12-30", "12:3", ""} {
		assert.False(t, ValidClock(bad), bad)
	}
}

func TestValidateRule(t *testing.T) {
	assert.NoError(t, ValidateRule("monday", "09:00", "12:00"))
	assert.Error(t, ValidateRule("funday", "09:00", "12:00"))
	assert.Error(t, ValidateRule("monday", "12:00", "09:00"))
	assert.Error(t, ValidateRule("monday", "12:00", "12:00"))
	assert.Error(t, ValidateRule("monday", "9:00", "12:00"))
}

func TestCheckConflict_ThreeCases(t *testing.T) {
	existing := []model.ScheduleRule{rule(1, "tuesday", "12:00", "16:00", 10)}

	cases := []struct {
		name       string
		start, end string
		conflict   bool
	}{
		{"starts inside existing", "14:00", "18:00", true},
		{"ends inside existing", "10:00", "14:00", true},
		{"fully contains existing", "11:00", "17:00", true},
		{"fully inside existing", "13:00", "15:00", true},
		{"identical", "12:00", "16:00", true},
		{"contiguous before", "10:00", "12:00", false},
		{"contiguous after", "16:00", "18:00", false},
		{"disjoint", "06:00", "08:00", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckConflict(existing, "tuesday", tc.start, tc.end, 0)
			if tc.conflict {
				var ec *ErrConflict
				require.ErrorAs(t, err, &ec)
				assert.Equal(t, "tuesday", ec.DayOfWeek)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckConflict_IgnoresOtherDaysInactiveAndSelf(t *testing.T) {
	inactive := rule(2, "tuesday", "12:00", "16:00", 10)
	inactive.IsActive = false
	existing := []model.ScheduleRule{
		rule(1, "wednesday", "12:00", "16:00", 10),
		inactive,
		rule(3, "tuesday", "09:00", "11:00", 11),
	}

	// other day and inactive rule do not conflict
	assert.NoError(t, CheckConflict(existing, "tuesday", "12:00", "16:00", 0))
	// updating rule 3 in place is allowed
	assert.NoError(t, CheckConflict(existing, "tuesday", "09:00", "11:00", 3))
	// but a create over rule 3 is not
	assert.Error(t, CheckConflict(existing, "tuesday", "10:00", "12:00", 0))
}

func TestMatch_BoundaryInclusivity(t *testing.T) {
	rules := []model.ScheduleRule{rule(1, "monday", "09:00", "12:00", 10)}

	assert.NotNil(t, Match(rules, mondayAt("09:00", time.UTC), time.UTC))
	assert.NotNil(t, Match(rules, mondayAt("11:59", time.UTC), time.UTC))
	assert.Nil(t, Match(rules, mondayAt("12:00", time.UTC), time.UTC))
	assert.Nil(t, Match(rules, mondayAt("08:59", time.UTC), time.UTC))
}

func TestMatch_AdjacentWindows(t *testing.T) {
	rules := []model.ScheduleRule{
		rule(1, "monday", "09:00", "12:00", 10),
		rule(2, "monday", "12:00", "18:00", 20),
	}

	m := Match(rules, mondayAt("11:30", time.UTC), time.UTC)
	require.NotNil(t, m)
	assert.Equal(t, 10, m.PlaylistID)

	m = Match(rules, mondayAt("12:00", time.UTC), time.UTC)
	require.NotNil(t, m)
	assert.Equal(t, 20, m.PlaylistID)

	assert.Nil(t, Match(rules, mondayAt("20:00", time.UTC), time.UTC))
}

func TestMatch_IsDeterministic(t *testing.T) {
	rules := []model.ScheduleRule{
		rule(1, "monday", "09:00", "12:00", 10),
		rule(2, "monday", "12:00", "18:00", 20),
	}
	at := mondayAt("10:15", time.UTC)
	first := Match(rules, at, time.UTC)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Match(rules, at, time.UTC))
	}
}

func TestMatch_UsesStoreTimezone(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	rules := []model.ScheduleRule{rule(1, "monday", "09:00", "12:00", 10)}

	// 08:30 UTC is 10:30 in Berlin during DST: inside the window there,
	// outside it in UTC.
	at := mondayAt("08:30", time.UTC)
	assert.NotNil(t, Match(rules, at, berlin))
	assert.Nil(t, Match(rules, at, time.UTC))
}

func TestLocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, Location(""))
	assert.Equal(t, time.UTC, Location("Not/AZone"))
	loc := Location("Europe/Berlin")
	assert.Equal(t, "Europe/Berlin", loc.String())
}
