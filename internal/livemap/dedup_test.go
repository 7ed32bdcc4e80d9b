package livemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftmap-backend/internal/models"
)

func TestSelectAuthoritative_Empty(t *testing.T) {
	sel := SelectAuthoritative(nil)
	assert.Nil(t, sel.Chosen)
	assert.False(t, sel.Collision)
}

func TestSelectAuthoritative_Single(t *testing.T) {
	only := sheet("T1", "B1", at(0), nil, nil)
	sel := SelectAuthoritative([]*models.Timesheet{&only})
	assert.Same(t, &only, sel.Chosen)
	assert.False(t, sel.Collision)
}

func TestSelectAuthoritative_LatestWinsInAnyOrder(t *testing.T) {
	a := sheet("T1", "B1", at(0), nil, nil)
	b := sheet("T2", "B1", at(5), nil, nil)
	c := sheet("T3", "B1", at(-30), nil, nil)

	orders := [][]*models.Timesheet{
		{&a, &b, &c},
		{&b, &c, &a},
		{&c, &a, &b},
	}
	for _, cands := range orders {
		sel := SelectAuthoritative(cands)
		require.NotNil(t, sel.Chosen)
		assert.Equal(t, "T2", sel.Chosen.ID)
		assert.True(t, sel.Collision)
	}
}

func TestSelectAuthoritative_TieBreaksOnID(t *testing.T) {
	a := sheet("T-a", "B1", at(0), nil, nil)
	b := sheet("T-b", "B1", at(0), nil, nil)

	assert.Equal(t, "T-b", SelectAuthoritative([]*models.Timesheet{&a, &b}).Chosen.ID)
	assert.Equal(t, "T-b", SelectAuthoritative([]*models.Timesheet{&b, &a}).Chosen.ID)
}

func TestSelectAuthoritative_DoesNotReorderInput(t *testing.T) {
	a := sheet("T1", "B1", at(0), nil, nil)
	b := sheet("T2", "B1", at(5), nil, nil)
	cands := []*models.Timesheet{&a, &b}

	SelectAuthoritative(cands)
	newCollision("B1", cands, &b)

	assert.Equal(t, "T1", cands[0].ID)
	assert.Equal(t, "T2", cands[1].ID)
}

func TestNewCollision_ListsNewestFirst(t *testing.T) {
	a := sheet("T1", "B1", at(0), nil, nil)
	b := sheet("T2", "B1", at(5), nil, nil)
	c := sheet("T3", "B1", at(2), nil, nil)

	col := newCollision("B1", []*models.Timesheet{&a, &b, &c}, &b)
	assert.Equal(t, Collision{BookingID: "B1", TimesheetIDs: []string{"T2", "T3", "T1"}, ChosenID: "T2"}, col)
}
