package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		raw     string
		want    Clock
		wantErr bool
	}{
		{raw: "08:00", want: 480},
		{raw: "14:30", want: 870},
		{raw: "09:00:00", want: 540},
		{raw: " 22:00 ", want: 1320},
		{raw: "24:00", want: 1440},
		{raw: "24:30", wantErr: true},
		{raw: "9", wantErr: true},
		{raw: "ab:00", wantErr: true},
		{raw: "10:75", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseClock(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClockJSON(t *testing.T) {
	payload, err := json.Marshal(NewClock(9, 5))
	require.NoError(t, err)
	assert.JSONEq(t, `"09:05"`, string(payload))

	var c Clock
	require.NoError(t, json.Unmarshal([]byte(`"10:30"`), &c))
	assert.Equal(t, NewClock(10, 30), c)

	assert.Error(t, json.Unmarshal([]byte(`630`), &c))
}

func TestClockScan(t *testing.T) {
	var c Clock
	require.NoError(t, c.Scan([]byte("13:45:00")))
	assert.Equal(t, "13:45", c.String())

	require.NoError(t, c.Scan(time.Date(0, 1, 1, 7, 15, 0, 0, time.UTC)))
	assert.Equal(t, NewClock(7, 15), c)

	assert.Error(t, c.Scan(3.5))
}

func TestScheduleEntryMarshalIncludesEndTime(t *testing.T) {
	entry := ScheduleEntry{ID: "e1", RoomID: "r1", Day: Tuesday, StartTime: NewClock(9, 0), DurationMinutes: 90}
	payload, err := json.Marshal(entry)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "09:00", decoded["start_time"])
	assert.Equal(t, "10:30", decoded["end_time"])
	assert.Equal(t, "TUESDAY", decoded["day"])
}

func TestParseWeekday(t *testing.T) {
	day, err := ParseWeekday("miércoles")
	require.NoError(t, err)
	assert.Equal(t, Wednesday, day)

	day, err = ParseWeekday("SATURDAY")
	require.NoError(t, err)
	assert.Equal(t, 5, day.Index())

	_, err = ParseWeekday("domingo")
	assert.Error(t, err)
	assert.False(t, Weekday("SUNDAY").Valid())
}
