package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms_console_backend/internal/model"
)

var classifierNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := classifierNow.Add(d)
	return &t
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		a      model.Assessment
		want   Tab
		wantOK bool
	}{
		{"active", model.Assessment{Status: model.StatusActive}, TabActive, true},
		{"active ignores due date", model.Assessment{Status: model.StatusActive, DueDate: at(-time.Hour)}, TabActive, true},
		{"published future", model.Assessment{Status: model.StatusPublished, DueDate: at(time.Hour)}, TabUpcoming, true},
		{"published past", model.Assessment{Status: model.StatusPublished, DueDate: at(-time.Hour)}, "", false},
		{"published due now", model.Assessment{Status: model.StatusPublished, DueDate: at(0)}, "", false},
		{"published without due date", model.Assessment{Status: model.StatusPublished}, "", false},
		{"inactive", model.Assessment{Status: model.StatusInactive}, TabCompleted, true},
		{"draft", model.Assessment{Status: model.StatusDraft, DueDate: at(time.Hour)}, TabDraft, true},
		{"unknown status", model.Assessment{Status: "archived"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(&tt.a, classifierNow)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBucketByTab_AtMostOneTab(t *testing.T) {
	list := []model.Assessment{
		{BaseModel: model.BaseModel{ID: 1}, Status: model.StatusActive},
		{BaseModel: model.BaseModel{ID: 2}, Status: model.StatusPublished, DueDate: at(24 * time.Hour)},
		{BaseModel: model.BaseModel{ID: 3}, Status: model.StatusPublished, DueDate: at(-24 * time.Hour)},
		{BaseModel: model.BaseModel{ID: 4}, Status: model.StatusInactive},
		{BaseModel: model.BaseModel{ID: 5}, Status: model.StatusDraft},
	}

	buckets := BucketByTab(list, classifierNow)
	require.Len(t, buckets, len(Tabs))

	seen := map[uint]int{}
	for _, items := range buckets {
		for _, a := range items {
			seen[a.ID]++
		}
	}
	assert.Equal(t, map[uint]int{1: 1, 2: 1, 4: 1, 5: 1}, seen)
	assert.Empty(t, FilterByTab(list[2:3], TabUpcoming, classifierNow))
	assert.Empty(t, FilterByTab(list[2:3], TabCompleted, classifierNow))
}

func TestFilterByTab_PreservesOrder(t *testing.T) {
	list := []model.Assessment{
		{BaseModel: model.BaseModel{ID: 3}, Status: model.StatusDraft},
		{BaseModel: model.BaseModel{ID: 1}, Status: model.StatusActive},
		{BaseModel: model.BaseModel{ID: 2}, Status: model.StatusDraft},
	}
	got := FilterByTab(list, TabDraft, classifierNow)
	require.Len(t, got, 2)
	assert.Equal(t, uint(3), got[0].ID)
	assert.Equal(t, uint(2), got[1].ID)
}

func TestParseTab(t *testing.T) {
	for i, tab := range Tabs {
		got, ok := ParseTab(string(tab))
		assert.True(t, ok)
		assert.Equal(t, tab, got)

		byIndex, ok := ParseTab(string(rune('0' + i)))
		assert.True(t, ok)
		assert.Equal(t, tab, byIndex)
	}

	_, ok := ParseTab("4")
	assert.False(t, ok)
	_, ok = ParseTab("archived")
	assert.False(t, ok)
	assert.Equal(t, "Upcoming", TabUpcoming.Label())
}
