// Package syncclient is the client-resident sync agent. It never
// merges server deltas: any relevant notify event or local mutation
// ack marks the local view stale, and the agent re-pulls the full
// authoritative party and item lists and replaces its state wholesale.
package syncclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/floodyboy/sync-party/internal/models"
	"github.com/floodyboy/sync-party/internal/realtime"
)

// State is the reconciliation state of the local view
type State string

// Agent states. Transitions: Synced -> Stale on invalidation,
// Stale -> Refreshing when a re-pull starts, Refreshing -> Synced on
// success or back to Stale on failure or an invalidation that raced
// the re-pull.
const (
	StateSynced     State = "synced"
	StateStale      State = "stale"
	StateRefreshing State = "refreshing"
)

const refreshRetryDelay = 2 * time.Second

// Snapshot is the local copy of authoritative server state
type Snapshot struct {
	Parties []*models.Party
	Items   []*models.MediaItem
}

// Agent keeps a local snapshot converged with the server
type Agent struct {
	baseURL string
	token   string
	client  *http.Client

	mu       sync.Mutex
	state    State
	snapshot Snapshot
	watched  map[string]bool

	// Buffered invalidation signal; coalescing here is safe because a
	// re-pull always fetches everything
	pending chan struct{}

	// Optional hook invoked after every successful snapshot replacement
	OnSynced func(Snapshot)
}

// New creates an agent talking to baseURL with the given session token
func New(baseURL, token string) *Agent {
	return &Agent{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
		state:   StateStale,
		watched: make(map[string]bool),
		pending: make(chan struct{}, 1),
	}
}

// WatchParty subscribes the agent to partyUpdate events for the party
func (a *Agent) WatchParty(id uuid.UUID) {
	a.mu.Lock()
	a.watched[id.String()] = true
	a.mu.Unlock()
}

// UnwatchParty unsubscribes the agent from a party
func (a *Agent) UnwatchParty(id uuid.UUID) {
	a.mu.Lock()
	delete(a.watched, id.String())
	a.mu.Unlock()
}

// State returns the current reconciliation state
func (a *Agent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Snapshot returns the current local view
func (a *Agent) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot
}

// Invalidate marks the local view stale and schedules a re-pull
func (a *Agent) Invalidate() {
	a.mu.Lock()
	a.state = StateStale
	a.mu.Unlock()

	select {
	case a.pending <- struct{}{}:
	default:
	}
}

// OnLocalMutationAck is called right after a local mutation succeeded
// on the server. The ack itself proves nothing about the rest of the
// party state, so it triggers the same full re-pull as a notify event.
func (a *Agent) OnLocalMutationAck() {
	a.Invalidate()
}

// HandleEvent reacts to one realtime event. mediaItemUpdate always
// invalidates; partyUpdate only for watched parties. Events are never
// coalesced upstream, each relevant one independently triggers a
// re-fetch.
func (a *Agent) HandleEvent(event realtime.Event) {
	switch event.Event {
	case realtime.EventMediaItemUpdate:
		a.Invalidate()
	case realtime.EventPartyUpdate:
		a.mu.Lock()
		watched := a.watched[event.PartyID]
		a.mu.Unlock()
		if watched {
			a.Invalidate()
		}
	}
}

// Run drives the reconciliation loop until ctx is done. The websocket
// listener feeding HandleEvent runs separately (see Listen); Run only
// consumes invalidation signals, so the reconciliation point stays
// independently testable.
func (a *Agent) Run(ctx context.Context) error {
	// Cold start counts as a reconnect: full resync first
	a.Invalidate()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.pending:
			if err := a.Refresh(ctx); err != nil {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(refreshRetryDelay):
				}
				a.Invalidate()
			}
		}
	}
}

// Refresh performs one full re-pull and replaces the snapshot
// wholesale. On failure the state returns to Stale so a later signal
// retries.
func (a *Agent) Refresh(ctx context.Context) error {
	a.mu.Lock()
	a.state = StateRefreshing
	a.mu.Unlock()

	parties, err := a.fetchParties(ctx)
	if err != nil {
		a.markStale()
		return err
	}

	items, err := a.fetchItems(ctx)
	if err != nil {
		a.markStale()
		return err
	}

	a.mu.Lock()
	a.snapshot = Snapshot{Parties: parties, Items: items}
	// An invalidation that raced the fetch keeps us stale; the pending
	// signal is still queued and will trigger another pull
	if len(a.pending) == 0 {
		a.state = StateSynced
	} else {
		a.state = StateStale
	}
	hook := a.OnSynced
	snapshot := a.snapshot
	a.mu.Unlock()

	if hook != nil {
		hook(snapshot)
	}
	return nil
}

func (a *Agent) markStale() {
	a.mu.Lock()
	a.state = StateStale
	a.mu.Unlock()
}

type partiesEnvelope struct {
	Success     bool            `json:"success"`
	Msg         string          `json:"msg"`
	UserParties []*models.Party `json:"userParties"`
}

type itemsEnvelope struct {
	Success   bool                `json:"success"`
	Msg       string              `json:"msg"`
	UserItems []*models.MediaItem `json:"userItems"`
}

func (a *Agent) fetchParties(ctx context.Context) ([]*models.Party, error) {
	var envelope partiesEnvelope
	if err := a.getJSON(ctx, "/api/userParties", &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success {
		return nil, fmt.Errorf("party fetch rejected: %s", envelope.Msg)
	}
	return envelope.UserParties, nil
}

func (a *Agent) fetchItems(ctx context.Context) ([]*models.MediaItem, error) {
	var envelope itemsEnvelope
	if err := a.getJSON(ctx, "/api/userItems", &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success {
		return nil, fmt.Errorf("item fetch rejected: %s", envelope.Msg)
	}
	return envelope.UserItems, nil
}

func (a *Agent) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
