package domain_test

import (
	"testing"

	"github.com/straye-as/crm-core/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Won", "won"},
		{"spaces become underscores", "Proposal Sent", "proposal_sent"},
		{"whitespace runs collapse", "  Follow \t up  ", "follow_up"},
		{"punctuation dropped", "Closed - Lost!", "closed__lost"},
		{"non-ascii dropped", "Tilbud på vent", "tilbud_p_vent"},
		{"underscore kept", "stage_1", "stage_1"},
		{"nothing usable", "!!!", "stage"},
		{"empty", "", "stage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Slugify(tt.in))
		})
	}
}

func TestTransitionActivityType(t *testing.T) {
	assert.Equal(t, domain.ActivityTypeStageChanged, domain.TransitionActivityType(false, false))
	assert.Equal(t, domain.ActivityTypeLeadClosed, domain.TransitionActivityType(false, true))
	assert.Equal(t, domain.ActivityTypeLeadClosed, domain.TransitionActivityType(true, true))
	assert.Equal(t, domain.ActivityTypeLeadReopened, domain.TransitionActivityType(true, false))
}

func TestTransitionBody(t *testing.T) {
	from := &domain.Stage{Name: "New"}
	to := &domain.Stage{Name: "Won"}

	assert.Equal(t, "Moved from stage 'New' to 'Won'", domain.TransitionBody(from, to))
	assert.Equal(t, "Moved to stage 'Won'", domain.TransitionBody(nil, to))
}

func TestActivityType(t *testing.T) {
	for _, at := range []domain.ActivityType{
		domain.ActivityTypeLeadCreated,
		domain.ActivityTypeStageChanged,
		domain.ActivityTypeLeadClosed,
		domain.ActivityTypeLeadReopened,
	} {
		assert.True(t, at.IsValid(), at)
		assert.NotEqual(t, string(at), at.Title())
	}
	assert.False(t, domain.ActivityType("deleted").IsValid())
	assert.Equal(t, "deleted", domain.ActivityType("deleted").Title())
}
