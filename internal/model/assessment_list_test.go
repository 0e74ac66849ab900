package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listOf(ids ...uint) AssessmentList {
	l := make(AssessmentList, len(ids))
	for i, id := range ids {
		l[i] = Assessment{BaseModel: BaseModel{ID: id}, Title: "orig"}
	}
	return l
}

func ids(l AssessmentList) []uint {
	out := make([]uint, len(l))
	for i := range l {
		out[i] = l[i].ID
	}
	return out
}

func TestAssessmentList_Prepend(t *testing.T) {
	l := listOf(1, 2)
	got := l.Prepend(Assessment{BaseModel: BaseModel{ID: 9}}, Assessment{BaseModel: BaseModel{ID: 8}})

	assert.Equal(t, []uint{9, 8, 1, 2}, ids(got))
	assert.Equal(t, []uint{1, 2}, ids(l))
}

func TestAssessmentList_ReplaceByID(t *testing.T) {
	l := listOf(1, 2, 3)
	got := l.ReplaceByID(Assessment{BaseModel: BaseModel{ID: 2}, Title: "new"})

	assert.Equal(t, []uint{1, 2, 3}, ids(got))
	assert.Equal(t, "new", got[1].Title)
	assert.Equal(t, "orig", l[1].Title)

	unchanged := l.ReplaceByID(Assessment{BaseModel: BaseModel{ID: 42}, Title: "new"})
	assert.Equal(t, []uint{1, 2, 3}, ids(unchanged))
}

func TestAssessmentList_RemoveAndFind(t *testing.T) {
	l := listOf(1, 2, 3)
	got := l.RemoveByID(2)
	assert.Equal(t, []uint{1, 3}, ids(got))
	assert.Len(t, l, 3)

	a, ok := l.Find(3)
	require.True(t, ok)
	assert.Equal(t, uint(3), a.ID)
	_, ok = got.Find(2)
	assert.False(t, ok)
}
