package aum

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vilakshan/pli-leaderboard/model"
)

type fakeSource struct {
	rows map[string]model.Rupees
}

func (f *fakeSource) RowsForMonth(ctx context.Context, month model.Month) (map[string]model.Rupees, error) {
	return f.rows, nil
}

func TestAumFor_ExactThenFallback(t *testing.T) {
	src := &fakeSource{rows: map[string]model.Rupees{
		"A. Sharma": model.NewRupees(1000),
	}}
	l := NewLookup(src)
	month := model.NewMonth(2026, time.March)

	amt, found, err := l.AumFor(context.Background(), month, "A. Sharma")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, amt.Equal(model.NewRupees(1000)))

	amt, found, err = l.AumFor(context.Background(), month, "a.sharma")
	require.NoError(t, err)
	assert.True(t, found, "case/punctuation-insensitive variant match")
	assert.True(t, amt.Equal(model.NewRupees(1000)))

	_, found, err = l.AumFor(context.Background(), month, "Someone Else")
	require.NoError(t, err)
	assert.False(t, found)
}
