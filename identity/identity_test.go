package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vilakshan/pli-leaderboard/model"
)

func TestEligibleForMonth_ActiveAlwaysEligible(t *testing.T) {
	rm := model.RM{IsActive: true}
	ok, reason := EligibleForMonth(rm, model.NewMonth(2026, time.March))
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestEligibleForMonth_GraceWindow(t *testing.T) {
	since := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	rm := model.RM{IsActive: false, InactiveSince: &since}

	ok, _ := EligibleForMonth(rm, model.NewMonth(2026, time.June))
	assert.True(t, ok, "still within the 6-month grace window")

	ok, reason := EligibleForMonth(rm, model.NewMonth(2026, time.July))
	assert.False(t, ok, "gate applies once the 6th month after InactiveSince is reached")
	assert.Contains(t, reason, "inactive_gate")
}

func TestIsIgnored_CaseInsensitive(t *testing.T) {
	r := NewResolver(nil, []string{"  Jane Doe "})
	assert.True(t, r.IsIgnored("jane doe"))
	assert.True(t, r.IsIgnored("JANE DOE"))
	assert.False(t, r.IsIgnored("john doe"))
}
