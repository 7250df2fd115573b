package repository

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/tutorbooking/internal/domain"
)

func TestNewRepositories(t *testing.T) {
	pool := &pgxpool.Pool{}

	assert.NotNil(t, NewBookingRepository(pool))
	assert.NotNil(t, NewSlotRepository(pool))
	assert.NotNil(t, NewTutorRepository(pool))
	assert.NotNil(t, NewResetRepository(pool))
	assert.NotNil(t, NewAccountRepository(pool))
}

func TestSlotListQuery(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	const base = "SELECT id, tutor_id, date, start_time, end_time, delivery_mode, booked, created_at FROM slots"
	const order = " ORDER BY date, start_time, id"

	testCases := []struct {
		name      string
		filter    SlotFilter
		wantWhere string
		wantArgs  []any
	}{
		{name: "no filter", filter: SlotFilter{}, wantWhere: "", wantArgs: nil},
		{
			name:      "tutor",
			filter:    SlotFilter{TutorID: "t1"},
			wantWhere: " WHERE tutor_id = $1",
			wantArgs:  []any{"t1"},
		},
		{
			name:      "all fields",
			filter:    SlotFilter{TutorID: "t1", Date: day, DeliveryMode: domain.DeliveryVirtual, OnlyOpen: true},
			wantWhere: " WHERE tutor_id = $1 AND date = $2 AND delivery_mode = $3 AND booked = $4",
			wantArgs:  []any{"t1", "2024-03-01", "virtual", false},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			query, args, err := slotListQuery(tc.filter)
			require.NoError(t, err)
			assert.Equal(t, base+tc.wantWhere+order, query)
			if tc.wantArgs == nil {
				assert.Empty(t, args)
				return
			}
			assert.Equal(t, tc.wantArgs, args)
		})
	}
}

func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(pgx.ErrNoRows), domain.ErrNotFound)
	assert.ErrorIs(t, notFound(assert.AnError), assert.AnError)
}
