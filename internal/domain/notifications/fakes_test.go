package notifications

import (
	"context"
	"iter"
	"sync"
	"time"

	"notify/internal/domain/accounts"
	"notify/internal/domain/relationships"
	"notify/internal/domain/statuses"
)

type pair [2]string

// fakeGraph holds relationship and thread state behind the same query
// contracts the Postgres stores implement.
type fakeGraph struct {
	mu                sync.Mutex
	blocks            map[pair]bool
	domainBlocks      map[pair]bool
	mutes             map[pair]bool
	follows           map[pair]bool
	conversationMutes map[pair]bool
	statuses          map[string]statuses.Status
	err               error
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		blocks:            map[pair]bool{},
		domainBlocks:      map[pair]bool{},
		mutes:             map[pair]bool{},
		follows:           map[pair]bool{},
		conversationMutes: map[pair]bool{},
		statuses:          map[string]statuses.Status{},
	}
}

func (g *fakeGraph) lookup(m map[pair]bool, a, b string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return false, g.err
	}
	return m[pair{a, b}], nil
}

func (g *fakeGraph) set(m map[pair]bool, a, b string, v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m[pair{a, b}] = v
}

func (g *fakeGraph) Blocks(ctx context.Context, a, b string) (bool, error) {
	return g.lookup(g.blocks, a, b)
}

func (g *fakeGraph) DomainBlocks(ctx context.Context, a, domain string) (bool, error) {
	return g.lookup(g.domainBlocks, a, domain)
}

func (g *fakeGraph) Mutes(ctx context.Context, a, b string) (bool, error) {
	return g.lookup(g.mutes, a, b)
}

func (g *fakeGraph) Follows(ctx context.Context, a, b string) (bool, error) {
	return g.lookup(g.follows, a, b)
}

func (g *fakeGraph) MutesConversation(ctx context.Context, a, conversationID string) (bool, error) {
	return g.lookup(g.conversationMutes, a, conversationID)
}

func (g *fakeGraph) addStatus(st statuses.Status) statuses.Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses[st.ID] = st
	return st
}

func (g *fakeGraph) Ancestors(ctx context.Context, statusID string, bound int) iter.Seq2[statuses.Ancestor, error] {
	return func(yield func(statuses.Ancestor, error) bool) {
		g.mu.Lock()
		parentID := g.statuses[statusID].InReplyToID
		g.mu.Unlock()
		for n := 0; n < bound && parentID != ""; n++ {
			g.mu.Lock()
			parent, ok := g.statuses[parentID]
			g.mu.Unlock()
			if !ok {
				return
			}
			if !yield(statuses.Ancestor{StatusID: parent.ID, AccountID: parent.AccountID}, nil) {
				return
			}
			parentID = parent.InReplyToID
		}
	}
}

type fakeStore struct {
	mu            sync.Mutex
	notifications []Notification
	prefs         map[pair]bool
	settings      map[string]InteractionSettings
	createErr     error
	prefErr       error
	createCalls   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{prefs: map[pair]bool{}, settings: map[string]InteractionSettings{}}
}

func (s *fakeStore) CreateNotification(ctx context.Context, recipientID string, activity Activity) (Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if s.createErr != nil {
		return Notification{}, s.createErr
	}
	n := Notification{
		ID:            activity.ID + "-" + recipientID,
		AccountID:     recipientID,
		FromAccountID: activity.Actor.ID,
		ActivityID:    activity.ID,
		Type:          activity.Kind,
		CreatedAt:     time.Now(),
	}
	s.notifications = append(s.notifications, n)
	return n, nil
}

func (s *fakeStore) ListNotifications(ctx context.Context, accountID string, limit, offset int) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Notification
	for _, n := range s.notifications {
		if n.AccountID == accountID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *fakeStore) CountNotifications(ctx context.Context, accountID string) (int, error) {
	items, _ := s.ListNotifications(ctx, accountID, 0, 0)
	return len(items), nil
}

func (s *fakeStore) MarkRead(ctx context.Context, accountID, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == notificationID && s.notifications[i].AccountID == accountID {
			now := time.Now()
			s.notifications[i].ReadAt = &now
			return nil
		}
	}
	return ErrNotFound
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notifications)
}

func (s *fakeStore) EmailPreference(ctx context.Context, accountID, category string) (bool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prefErr != nil {
		return false, false, s.prefErr
	}
	enabled, ok := s.prefs[pair{accountID, category}]
	return enabled, ok, nil
}

func (s *fakeStore) EmailPreferences(ctx context.Context, accountID string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]bool{}
	for k, v := range s.prefs {
		if k[0] == accountID {
			out[k[1]] = v
		}
	}
	return out, nil
}

func (s *fakeStore) SetEmailPreference(ctx context.Context, accountID, category string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[pair{accountID, category}] = enabled
	return nil
}

func (s *fakeStore) InteractionSettings(ctx context.Context, accountID string) (InteractionSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings[accountID], nil
}

func (s *fakeStore) UpdateInteractionSettings(ctx context.Context, accountID string, settings InteractionSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[accountID] = settings
	return nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (f *fakeSender) SendNotificationEmail(ctx context.Context, recipient accounts.Account, activity Activity, n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeRecorder struct {
	decisions map[string]int
	emails    map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{decisions: map[string]int{}, emails: map[string]int{}}
}

func (f *fakeRecorder) RecordDecision(allowed bool, reason string) {
	f.decisions[reason]++
}

func (f *fakeRecorder) RecordEmail(outcome string) {
	f.emails[outcome]++
}

type harness struct {
	graph  *fakeGraph
	store  *fakeStore
	sender *fakeSender
	engine *Engine
	svc    *Service
}

func newHarness() *harness {
	graph := newFakeGraph()
	store := newFakeStore()
	sender := &fakeSender{}
	gate := relationships.NewGate(graph)
	resolver := statuses.NewAncestryResolver(graph, gate, 0)
	engine := NewEngine(gate, resolver, store)
	svc := New(store, engine, NewEmailGate(store, nil), sender)
	return &harness{graph: graph, store: store, sender: sender, engine: engine, svc: svc}
}

func follow(id string, actor accounts.Account) Activity {
	return Activity{ID: id, Kind: KindFollow, Actor: actor}
}

func mention(id string, actor accounts.Account, status statuses.Status) Activity {
	return Activity{ID: id, Kind: KindMention, Actor: actor, Status: &status}
}
