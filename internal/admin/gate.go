package admin

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"studio-booking-backend/internal/model"
	"studio-booking-backend/internal/store"
)

// EventKind is the kind of admin-set mutation delivered to watchers.
type EventKind string

const (
	EventGranted EventKind = "granted"
	EventRevoked EventKind = "revoked"
)

// Event describes a grant or revoke observed on the admin-record set.
type Event struct {
	Kind   EventKind
	Email  string
	Record model.AdminRecord
}

// Gate decides whether an email has administrative privileges. The
// decision consults a static allow-list first and the persisted
// admin-record set second; store failures fail closed. Decisions read
// from the persisted set go through a TTL cache that grant and revoke
// invalidate.
type Gate struct {
	allowList map[string]struct{}
	store     store.Store
	decisions *cache.Cache
	cacheTTL  time.Duration

	mu       sync.Mutex
	nextID   int64
	watchers map[int64]chan Event
}

// NewGate creates a Gate with the given immutable allow-list.
func NewGate(s store.Store, allowList []string, cacheTTL time.Duration) *Gate {
	set := make(map[string]struct{}, len(allowList))
	for _, email := range allowList {
		set[email] = struct{}{}
	}
	return &Gate{
		allowList: set,
		store:     s,
		decisions: cache.New(cacheTTL, 2*cacheTTL),
		cacheTTL:  cacheTTL,
		watchers:  make(map[int64]chan Event),
	}
}

// IsAdmin reports whether the email has administrative privileges.
// It never returns an error: an empty email is not an admin, and a
// store failure during the lookup is logged and treated as "not
// admin".
func (g *Gate) IsAdmin(ctx context.Context, email string) bool {
	if email == "" {
		return false
	}
	if _, ok := g.allowList[email]; ok {
		return true
	}

	if cached, found := g.decisions.Get(email); found {
		return cached.(bool)
	}

	active, err := g.store.HasActiveAdmin(ctx, email)
	if err != nil {
		log.Printf("admin check for %s failed, denying access: %v", email, err)
		return false
	}

	g.decisions.Set(email, active, g.cacheTTL)
	return active
}

// Grant creates an active admin record for the email. Granting an
// email that already has an active record is a no-op; an inactive
// record is reactivated rather than duplicated.
func (g *Gate) Grant(ctx context.Context, email string) (model.AdminRecord, error) {
	if email == "" {
		return model.AdminRecord{}, fmt.Errorf("cannot grant admin to an empty email")
	}
	record, err := g.store.GrantAdmin(ctx, email)
	if err != nil {
		return model.AdminRecord{}, err
	}
	g.decisions.Delete(email)
	g.notify(Event{Kind: EventGranted, Email: email, Record: record})
	return record, nil
}

// Revoke deactivates the admin record(s) for the email. Revoking a
// non-admin email is a no-op, not an error.
func (g *Gate) Revoke(ctx context.Context, email string) error {
	affected, err := g.store.RevokeAdmin(ctx, email)
	if err != nil {
		return err
	}
	g.decisions.Delete(email)
	if affected > 0 {
		g.notify(Event{Kind: EventRevoked, Email: email})
	}
	return nil
}

// List returns all admin records, newest grant first.
func (g *Gate) List(ctx context.Context) ([]model.AdminRecord, error) {
	return g.store.ListAdmins(ctx)
}

// Watch registers an observer over admin-record mutations. The
// returned cancel func stops delivery synchronously: once it returns,
// no further events are sent and the channel is closed. Events are
// dropped, not blocked on, when the watcher falls behind.
func (g *Gate) Watch() (<-chan Event, func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nextID
	g.nextID++
	ch := make(chan Event, 16)
	g.watchers[id] = ch

	cancel := func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if w, ok := g.watchers[id]; ok {
			delete(g.watchers, id)
			close(w)
		}
	}
	return ch, cancel
}

func (g *Gate) notify(ev Event) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, ch := range g.watchers {
		select {
		case ch <- ev:
		default:
			log.Printf("admin watcher %d is not keeping up, dropping %s event", id, ev.Kind)
		}
	}
}
