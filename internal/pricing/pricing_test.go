package pricing

import (
	"testing"

	"github.com/Domenick1991/tutorbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_Individual(t *testing.T) {
	testCases := []struct {
		name     string
		mode     domain.DeliveryMode
		hours    int
		expected int64
	}{
		{name: "in person", mode: domain.DeliveryInPerson, hours: 1, expected: 65000},
		{name: "virtual", mode: domain.DeliveryVirtual, hours: 1, expected: 50000},
		{name: "hours are ignored", mode: domain.DeliveryInPerson, hours: 7, expected: 65000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := Compute(Request{Mode: domain.BookingModeIndividual, DeliveryMode: tc.mode, Hours: tc.hours})
			require.True(t, q.HasAmount())
			assert.Equal(t, tc.expected, *q.Amount)
			assert.Empty(t, q.Note)
		})
	}
}

func TestCompute_PackageLookup(t *testing.T) {
	testCases := []struct {
		mode     domain.DeliveryMode
		hours    int
		expected int64
	}{
		{domain.DeliveryInPerson, 4, 250000},
		{domain.DeliveryInPerson, 8, 505000},
		{domain.DeliveryInPerson, 10, 600000},
		{domain.DeliveryVirtual, 4, 190000},
		{domain.DeliveryVirtual, 8, 385000},
		{domain.DeliveryVirtual, 10, 460000},
	}

	for _, tc := range testCases {
		q := Compute(Request{Mode: domain.BookingModePackage, DeliveryMode: tc.mode, Hours: tc.hours})
		require.True(t, q.HasAmount(), "%s/%d", tc.mode, tc.hours)
		assert.Equal(t, tc.expected, *q.Amount)
	}
}

func TestCompute_PackageUnsupportedSize(t *testing.T) {
	q := Compute(Request{Mode: domain.BookingModePackage, DeliveryMode: domain.DeliveryVirtual, Hours: 7})

	assert.Nil(t, q.Amount)
	assert.NotEmpty(t, q.Note)
	assert.Equal(t, PendingNote, q.Note)
}

func TestCompute_PackageUnknownDeliveryMode(t *testing.T) {
	q := Compute(Request{Mode: domain.BookingModePackage, DeliveryMode: "", Hours: 4})

	assert.Nil(t, q.Amount)
	assert.Equal(t, PendingNote, q.Note)
}

func TestCompute_UnknownMode(t *testing.T) {
	q := Compute(Request{Mode: "group", DeliveryMode: domain.DeliveryVirtual, Hours: 1})

	assert.Nil(t, q.Amount)
	assert.Empty(t, q.Note)
}

func TestCompute_Deterministic(t *testing.T) {
	requests := []Request{
		{domain.BookingModeIndividual, domain.DeliveryInPerson, 1},
		{domain.BookingModePackage, domain.DeliveryVirtual, 8},
		{domain.BookingModePackage, domain.DeliveryInPerson, 3},
	}
	for _, req := range requests {
		assert.Equal(t, Compute(req), Compute(req))
	}
}

func TestNewCalculator_OverrideKeepsDefaults(t *testing.T) {
	calc := NewCalculator(Table{HourVirtual: 55000})

	q := calc.Compute(Request{Mode: domain.BookingModeIndividual, DeliveryMode: domain.DeliveryVirtual})
	require.True(t, q.HasAmount())
	assert.Equal(t, int64(55000), *q.Amount)

	q = calc.Compute(Request{Mode: domain.BookingModePackage, DeliveryMode: domain.DeliveryInPerson, Hours: 4})
	require.True(t, q.HasAmount())
	assert.Equal(t, int64(250000), *q.Amount)
}
