package service

import (
	"lms_console_backend/internal/model"
	"strconv"
	"time"
)

// Tab is one of the four console views an assessment can be listed under.
type Tab string

const (
	TabActive    Tab = "active"
	TabUpcoming  Tab = "upcoming"
	TabCompleted Tab = "completed"
	TabDraft     Tab = "draft"
)

// Tabs 与控制台标签页顺序一致
var Tabs = []Tab{TabActive, TabUpcoming, TabCompleted, TabDraft}

var tabLabels = map[Tab]string{
	TabActive:    "Active",
	TabUpcoming:  "Upcoming",
	TabCompleted: "Completed",
	TabDraft:     "Draft",
}

func (t Tab) Label() string {
	return tabLabels[t]
}

// ParseTab accepts a tab name or its position (0-3).
func ParseTab(s string) (Tab, bool) {
	if idx, err := strconv.Atoi(s); err == nil {
		if idx >= 0 && idx < len(Tabs) {
			return Tabs[idx], true
		}
		return "", false
	}
	for _, t := range Tabs {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Classify returns the tab for a, or false when a belongs to none of them.
// Completed is keyed on the inactive status only; a published assessment
// whose due date has passed is in no tab at all.
func Classify(a *model.Assessment, now time.Time) (Tab, bool) {
	switch a.Status {
	case model.StatusActive:
		return TabActive, true
	case model.StatusPublished:
		if a.DueDate != nil && a.DueDate.After(now) {
			return TabUpcoming, true
		}
		return "", false
	case model.StatusInactive:
		return TabCompleted, true
	case model.StatusDraft:
		return TabDraft, true
	}
	return "", false
}

func FilterByTab(list []model.Assessment, tab Tab, now time.Time) []model.Assessment {
	out := make([]model.Assessment, 0, len(list))
	for i := range list {
		if t, ok := Classify(&list[i], now); ok && t == tab {
			out = append(out, list[i])
		}
	}
	return out
}

// BucketByTab 一次遍历完成分组，未归类的评估不出现在任何分组中
func BucketByTab(list []model.Assessment, now time.Time) map[Tab][]model.Assessment {
	buckets := make(map[Tab][]model.Assessment, len(Tabs))
	for _, t := range Tabs {
		buckets[t] = []model.Assessment{}
	}
	for i := range list {
		if t, ok := Classify(&list[i], now); ok {
			buckets[t] = append(buckets[t], list[i])
		}
	}
	return buckets
}
