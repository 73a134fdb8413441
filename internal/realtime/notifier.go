package realtime

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/floodyboy/sync-party/internal/logger"
)

// Event names on the wire
const (
	EventPartyUpdate     = "partyUpdate"
	EventMediaItemUpdate = "mediaItemUpdate"
)

// Event is the wire form of a change notification. It never carries
// the changed data itself; clients re-fetch authoritative state.
type Event struct {
	Event   string `json:"event"`
	PartyID string `json:"partyId,omitempty"`
}

// Notifier emits change events through a hub. Events go to every
// connected client without transport-level party scoping; the
// authorization gate re-checks on each re-fetch.
type Notifier struct {
	hub *Hub
}

// NewNotifier creates a notifier over the given hub
func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

// NotifyPartyChanged announces that a party's metadata, membership or
// queue changed. Callers emit this only after the mutation is durably
// applied.
func (n *Notifier) NotifyPartyChanged(partyID uuid.UUID) {
	n.emit(Event{Event: EventPartyUpdate, PartyID: partyID.String()})
}

// NotifyMediaItemsChanged announces a change in item visibility. It is
// global: an item's visibility can span a personal library outside any
// open party.
func (n *Notifier) NotifyMediaItemsChanged() {
	n.emit(Event{Event: EventMediaItemUpdate})
}

func (n *Notifier) emit(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Error().Err(err).Str("event", event.Event).Msg("Failed to marshal realtime event")
		return
	}
	n.hub.Broadcast(data)
}
