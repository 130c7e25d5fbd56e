package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 6, 1, 19, 30, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-06-01 19:30:00.000Z", want},
		{"2024-06-01T19:30:00Z", want},
		{"2024-06-01T21:30:00+02:00", want},
		{"2024-06-01 19:30:00", want},
		{"2024-06-01T19:30", want},
		{"2024-06-01", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			d, err := ParseDate(tc.in)
			require.NoError(t, err)
			assert.True(t, d.Equal(tc.want), "got %s", d)
		})
	}

	d, err := ParseDate("   ")
	require.NoError(t, err)
	assert.False(t, d.IsSet())

	_, err = ParseDate("next tuesday")
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	type wrapper struct {
		D Date `json:"d"`
	}

	b, err := json.Marshal(wrapper{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":""}`, string(b))

	b, err = json.Marshal(wrapper{D: NewDate(time.Date(2024, 6, 1, 19, 30, 0, 0, time.UTC))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-06-01 19:30:00.000Z"}`, string(b))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"d":null}`), &w))
	assert.False(t, w.D.IsSet())
	require.NoError(t, json.Unmarshal([]byte(`{"d":""}`), &w))
	assert.False(t, w.D.IsSet())
	assert.Error(t, json.Unmarshal([]byte(`{"d":"soon"}`), &w))
}

func TestDateSQL(t *testing.T) {
	v, err := Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var d Date
	require.NoError(t, d.Scan(nil))
	assert.False(t, d.IsSet())

	require.NoError(t, d.Scan([]byte("2024-06-01 19:30:00")))
	assert.Equal(t, "2024-06-01 19:30:00.000Z", d.String())

	assert.Error(t, d.Scan(42))
}

func TestStringList(t *testing.T) {
	b, err := json.Marshal(StringList(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))

	v, err := StringList{"Drama", "Thriller"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["Drama","Thriller"]`, v)

	var l StringList
	require.NoError(t, l.Scan([]byte(`["US","DE"]`)))
	assert.Equal(t, StringList{"US", "DE"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Equal(t, StringList{}, l)

	assert.Error(t, l.Scan(`{"not":"a list"}`))
}

func TestNewEntryID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewEntryID()
		assert.Regexp(t, `^[a-z0-9]{15}$`, id)
		seen[id] = true
	}
	assert.Len(t, seen, 100)
}

func TestHasTicket(t *testing.T) {
	assert.False(t, (&MovieEntry{}).HasTicket())
	assert.True(t, (&MovieEntry{TicketNumber: "A1"}).HasTicket())
}
