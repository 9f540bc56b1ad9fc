package statemachine

import (
	"varto-api/models"
)

// Audience names who hears about an order reaching a status
type Audience string

const (
	AudienceNone     Audience = ""
	AudienceCouriers Audience = "active_couriers"
	AudienceCustomer Audience = "customer"
)

// Transition documents one step of the order flow. Steps are advisory:
// staff may write any valid status at any time.
type Transition struct {
	From   models.OrderStatus `json:"from"`
	To     models.OrderStatus `json:"to"`
	Actor  string             `json:"actor"`
	Notify Audience           `json:"notify,omitempty"`
}

// flow is the forward path; cancelled sits outside it
var flow = []models.OrderStatus{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusPreparing,
	models.StatusReady,
	models.StatusAssigned,
	models.StatusAccepted,
	models.StatusDelivering,
	models.StatusDelivered,
}

var actors = map[models.OrderStatus]string{
	models.StatusConfirmed:  "vendor",
	models.StatusPreparing:  "vendor",
	models.StatusReady:      "vendor",
	models.StatusAssigned:   "admin",
	models.StatusAccepted:   "courier",
	models.StatusDelivering: "courier",
	models.StatusDelivered:  "courier",
}

var audiences = map[models.OrderStatus]Audience{
	models.StatusConfirmed:  AudienceCouriers,
	models.StatusDelivering: AudienceCustomer,
	models.StatusDelivered:  AudienceCustomer,
}

var position = func() map[models.OrderStatus]int {
	m := make(map[models.OrderStatus]int, len(flow))
	for i, s := range flow {
		m[s] = i
	}
	return m
}()

// Flow returns the forward statuses in order
func Flow() []models.OrderStatus {
	out := make([]models.OrderStatus, len(flow))
	copy(out, flow)
	return out
}

// Statuses returns every accepted status, cancelled last
func Statuses() []models.OrderStatus {
	return append(Flow(), models.StatusCancelled)
}

func IsValid(s models.OrderStatus) bool {
	_, ok := position[s]
	return ok || s == models.StatusCancelled
}

// Next returns the status after s, or false when s is terminal or unknown
func Next(s models.OrderStatus) (models.OrderStatus, bool) {
	i, ok := position[s]
	if !ok || i == len(flow)-1 {
		return "", false
	}
	return flow[i+1], true
}

func IsTerminal(s models.OrderStatus) bool {
	return s == models.StatusDelivered || s == models.StatusCancelled
}

// AudienceFor reports who to notify when an order moves from prev to next.
// Writing the same status again notifies nobody.
func AudienceFor(prev, next models.OrderStatus) Audience {
	if prev == next {
		return AudienceNone
	}
	return audiences[next]
}

// GetAllTransitions returns the forward flow for documentation, plus the
// cancel step available from every non-terminal status.
func GetAllTransitions() []Transition {
	var out []Transition
	for i := 0; i < len(flow)-1; i++ {
		to := flow[i+1]
		out = append(out, Transition{From: flow[i], To: to, Actor: actors[to], Notify: audiences[to]})
	}
	for _, s := range flow {
		if !IsTerminal(s) {
			out = append(out, Transition{From: s, To: models.StatusCancelled, Actor: "admin"})
		}
	}
	return out
}
