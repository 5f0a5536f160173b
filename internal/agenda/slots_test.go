package agenda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlotsDefaultGrid(t *testing.T) {
	slots := GenerateSlots(8, 20, 30)

	require.Len(t, slots, 25)
	assert.Equal(t, "08:00", slots[0])
	assert.Equal(t, "08:30", slots[1])
	assert.Equal(t, "20:00", slots[24])

	// Adjacent labels must be exactly one step apart.
	for i := 1; i < len(slots); i++ {
		assert.Equal(t, minutesOfDay(slots[i-1])+30, minutesOfDay(slots[i]),
			"gap between %s and %s", slots[i-1], slots[i])
	}
}

func TestGenerateSlotsCustomGrid(t *testing.T) {
	slots := GenerateSlots(9, 17, 15)
	require.NotEmpty(t, slots)
	assert.Equal(t, "09:00", slots[0])
	assert.Equal(t, "09:15", slots[1])
	assert.Equal(t, "17:00", slots[len(slots)-1])
	assert.Len(t, slots, 8*4+1)
}

func TestGenerateSlotsInvalidInput(t *testing.T) {
	assert.Nil(t, GenerateSlots(8, 20, 0))
	assert.Nil(t, GenerateSlots(20, 8, 30))
}

func TestNormalizeTime(t *testing.T) {
	assert.Equal(t, "14:30", NormalizeTime("14:30:00"))
	assert.Equal(t, "14:30", NormalizeTime("14:30"))
	assert.Equal(t, "9:00", NormalizeTime("9:00"))
	assert.Equal(t, "", NormalizeTime(""))
}

func TestSlotIndex(t *testing.T) {
	slots := GenerateSlots(8, 20, 30)

	assert.Equal(t, 0, SlotIndex(slots, "08:00"))
	assert.Equal(t, 3, SlotIndex(slots, "09:30"))
	assert.Equal(t, 3, SlotIndex(slots, "09:30:00"))
	assert.Equal(t, -1, SlotIndex(slots, "09:15"))
	assert.Equal(t, -1, SlotIndex(slots, "21:00"))
}

func TestSlotSpanRoundsUp(t *testing.T) {
	assert.Equal(t, 1, SlotSpan(30, 30))
	assert.Equal(t, 2, SlotSpan(45, 30))
	assert.Equal(t, 2, SlotSpan(60, 30))
	assert.Equal(t, 3, SlotSpan(61, 30))
	assert.Equal(t, 0, SlotSpan(0, 30))
	assert.Equal(t, 0, SlotSpan(30, 0))
}
