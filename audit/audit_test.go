package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/vilakshan/pli-leaderboard/config"
	"github.com/vilakshan/pli-leaderboard/model"
)

type fakeWriter struct {
	records []Record
	failAll bool
}

func (f *fakeWriter) Write(ctx context.Context, rec Record) error {
	if f.failAll {
		return errors.New("boom")
	}
	f.records = append(f.records, rec)
	return nil
}

func TestWriteLumpsum_CompactModeOmitsFullRow(t *testing.T) {
	w := &fakeWriter{}
	s := NewService(w, zerolog.Nop())
	row := model.LumpsumRow{OutputHeader: model.OutputHeader{EmployeeID: "E1", Month: model.NewMonth(2026, time.May)}}
	row.GrowthPct = 1.5

	s.WriteLumpsum(context.Background(), row, config.AuditCompact)

	assert.Len(t, w.records, 1)
	assert.Contains(t, string(w.records[0].Payload), "growth_pct")
	assert.NotContains(t, string(w.records[0].Payload), "meeting_count")
}

func TestWriteLumpsum_WriteFailureNeverPanics(t *testing.T) {
	w := &fakeWriter{failAll: true}
	s := NewService(w, zerolog.Nop())
	row := model.LumpsumRow{OutputHeader: model.OutputHeader{EmployeeID: "E1", Month: model.NewMonth(2026, time.May)}}

	assert.NotPanics(t, func() {
		s.WriteLumpsum(context.Background(), row, config.AuditCompact)
	})
}
