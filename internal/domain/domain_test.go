package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	day, err := ParseDate("2024-03-01T15:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", day.Format(DateLayout))

	_, err = ParseDate("01/03/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestNormalizeClock(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"9:00", "09:00", false},
		{" 14:30 ", "14:30", false},
		{"25:00", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeClock(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidSlotTime, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestSlot_SortKeyOrdersByDayThenStart(t *testing.T) {
	d1, _ := ParseDate("2024-03-01")
	d2, _ := ParseDate("2024-03-02")
	early := Slot{Date: d1, Start: "09:00"}
	late := Slot{Date: d1, Start: "14:00"}
	next := Slot{Date: d2, Start: "08:00"}

	assert.Less(t, early.SortKey(), late.SortKey())
	assert.Less(t, late.SortKey(), next.SortKey())
	assert.True(t, early.OnDay(d1))
	assert.False(t, early.OnDay(d2))
}

func TestValidPackageSize(t *testing.T) {
	for _, n := range []int{4, 8, 10} {
		assert.True(t, ValidPackageSize(n))
	}
	assert.False(t, ValidPackageSize(5))
	assert.False(t, ValidPackageSize(0))
}

func TestBooking_ExpectedSlotCount(t *testing.T) {
	assert.Equal(t, 1, (&Booking{Mode: BookingModeIndividual, Hours: 1}).ExpectedSlotCount())
	assert.Equal(t, 8, (&Booking{Mode: BookingModePackage, Hours: 8}).ExpectedSlotCount())
}

func TestModesValid(t *testing.T) {
	assert.True(t, BookingModePackage.Valid())
	assert.False(t, BookingMode("group").Valid())
	assert.True(t, DeliveryVirtual.Valid())
	assert.False(t, DeliveryMode("hybrid").Valid())
}
