package statemachine

import (
	"testing"

	"varto-api/models"

	"github.com/stretchr/testify/assert"
)

func TestNextWalksTheFlow(t *testing.T) {
	s := models.StatusPending
	var seen []models.OrderStatus
	for {
		seen = append(seen, s)
		next, ok := Next(s)
		if !ok {
			break
		}
		s = next
	}
	assert.Equal(t, Flow(), seen)
	assert.Equal(t, models.StatusDelivered, s)
}

func TestNextTerminalAndUnknown(t *testing.T) {
	_, ok := Next(models.StatusDelivered)
	assert.False(t, ok)
	_, ok = Next(models.StatusCancelled)
	assert.False(t, ok)
	_, ok = Next("teleported")
	assert.False(t, ok)
}

func TestIsValid(t *testing.T) {
	for _, s := range Statuses() {
		assert.True(t, IsValid(s), s)
	}
	assert.False(t, IsValid("PLACED"))
	assert.False(t, IsValid(""))
}

func TestAudienceFor(t *testing.T) {
	assert.Equal(t, AudienceCouriers, AudienceFor(models.StatusPending, models.StatusConfirmed))
	assert.Equal(t, AudienceCustomer, AudienceFor(models.StatusAccepted, models.StatusDelivering))
	assert.Equal(t, AudienceCustomer, AudienceFor(models.StatusPending, models.StatusDelivered))
	assert.Equal(t, AudienceNone, AudienceFor(models.StatusConfirmed, models.StatusConfirmed))
	assert.Equal(t, AudienceNone, AudienceFor(models.StatusConfirmed, models.StatusPreparing))
	assert.Equal(t, AudienceNone, AudienceFor(models.StatusPending, models.StatusCancelled))
}

func TestFlowIsACopy(t *testing.T) {
	f := Flow()
	f[0] = models.StatusCancelled
	assert.Equal(t, models.StatusPending, Flow()[0])
}

func TestGetAllTransitions(t *testing.T) {
	ts := GetAllTransitions()
	// 7 forward steps + cancel from the 7 non-terminal flow statuses
	assert.Len(t, ts, 14)
	assert.Equal(t, Transition{From: models.StatusPending, To: models.StatusConfirmed, Actor: "vendor", Notify: AudienceCouriers}, ts[0])
}
