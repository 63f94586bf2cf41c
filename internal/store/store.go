// Package store is the reactive in-memory aggregate of partners, reviews and
// fairness metrics. Every user edit is journaled, broadcast to subscribers
// and flushed to the persistence gateway on a debounced schedule.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/journal"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/sentiment"
	"github.com/MidhulKiruthik/Nova-sub000/internal/observer"
	"github.com/MidhulKiruthik/Nova-sub000/internal/syncer"
	"github.com/MidhulKiruthik/Nova-sub000/pkg/logger"
	"github.com/MidhulKiruthik/Nova-sub000/pkg/metrics"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Gateway is the persistence backend the store hydrates from, flushes to
// and erases.
type Gateway interface {
	Write(ctx context.Context, entries map[string][]byte) error
	Read(ctx context.Context, keys []string) (map[string][]byte, error)
	Delete(ctx context.Context, keys []string) error
}

// Data is a copy of every collection, handed to subscribers.
type Data struct {
	Partners        []model.Partner
	Reviews         []model.Review
	FairnessMetrics []model.FairnessMetric
}

// Stats summarizes the store for operators.
type Stats struct {
	Partners        int              `json:"partners"`
	Reviews         int              `json:"reviews"`
	FairnessMetrics int              `json:"fairnessMetrics"`
	JournalEntries  int              `json:"journalEntries"`
	DataSubscribers int              `json:"dataSubscribers"`
	SyncSubscribers int              `json:"syncSubscribers"`
	Sync            model.SyncStatus `json:"sync"`
}

// Store holds the collections. A single logical writer is expected; the
// lock exists because the flush timer runs on its own goroutine.
type Store struct {
	gateway  Gateway
	journal  *journal.Journal
	sched    *syncer.Scheduler
	analyzer *sentiment.Analyzer
	log      logger.Logger
	clock    clockwork.Clock

	syncDelay   time.Duration
	syncTimeout time.Duration
	retention   int
	online      bool

	mu       sync.RWMutex
	partners []model.Partner
	reviews  []model.Review
	fairness []model.FairnessMetric

	dataSubs   observer.Registry[Data]
	changeSubs observer.Registry[model.DataChangeEvent]
}

// New creates an empty store backed by gw. Call Load to hydrate it.
func New(gw Gateway, opts ...Option) *Store {
	s := &Store{
		gateway:     gw,
		analyzer:    sentiment.Default(),
		log:         logger.Nop(),
		clock:       clockwork.NewRealClock(),
		syncDelay:   syncer.DefaultDelay,
		syncTimeout: syncer.DefaultTimeout,
		retention:   journal.DefaultRetention,
		online:      true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.journal = journal.New(journal.WithClock(s.clock), journal.WithRetention(s.retention))
	s.sched = syncer.New(gw, s,
		syncer.WithClock(s.clock),
		syncer.WithDelay(s.syncDelay),
		syncer.WithTimeout(s.syncTimeout),
		syncer.WithLogger(s.log.Named("sync")),
		syncer.WithOnline(s.online),
	)
	return s
}

// SetPartners replaces every partner. Ids are not checked for uniqueness.
func (s *Store) SetPartners(list []model.Partner) {
	next := make([]model.Partner, len(list))
	for i, p := range list {
		next[i] = model.Normalize(p)
	}
	s.mu.Lock()
	s.partners = next
	s.mu.Unlock()

	s.commit(model.DataChangeEvent{
		Type: model.ChangeBulkImport,
		Data: map[string]any{"count": len(next)},
	})
}

// AddPartner appends p, assigning an id when it has none, and returns the
// stored record.
func (s *Store) AddPartner(p model.Partner) model.Partner {
	n := model.Normalize(p)
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.partners = append(s.partners, n)
	s.mu.Unlock()

	s.commit(model.DataChangeEvent{
		Type: model.ChangePartnerAdded,
		Data: map[string]any{"id": n.ID, "name": n.Name},
	})
	return n.Clone()
}

// UpdatePartner merges u into the partner with the given id. It returns an
// error only when u fails validation. An unknown id or an empty update is
// a silent no-op.
func (s *Store) UpdatePartner(id string, u model.PartnerUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if u.Empty() {
		return nil
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	previous := s.partners[i].Name
	s.partners[i] = u.Apply(s.partners[i])
	s.mu.Unlock()

	s.commit(model.DataChangeEvent{
		Type: model.ChangePartnerUpdated,
		Data: map[string]any{"id": id, "previousName": previous, "fields": u.Fields()},
	})
	return nil
}

// DeletePartner removes the partner with the given id and reports whether
// it existed. Reviews that reference it are kept.
func (s *Store) DeletePartner(id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	removed := s.partners[i]
	s.partners = append(s.partners[:i:i], s.partners[i+1:]...)
	s.mu.Unlock()

	s.commit(model.DataChangeEvent{
		Type: model.ChangePartnerDeleted,
		Data: map[string]any{"id": id, "name": removed.Name},
	})
	return true
}

// SetReviews replaces every review. Reviews are reference data: subscribers
// are notified but nothing is journaled or scheduled.
func (s *Store) SetReviews(list []model.Review) {
	next := make([]model.Review, len(list))
	for i, r := range list {
		next[i] = s.withSentiment(r)
	}
	s.mu.Lock()
	s.reviews = next
	s.mu.Unlock()
	s.notifyData()
}

// SetFairnessMetrics replaces every fairness metric. Like reviews, this is
// not journaled.
func (s *Store) SetFairnessMetrics(list []model.FairnessMetric) {
	next := append([]model.FairnessMetric(nil), list...)
	s.mu.Lock()
	s.fairness = next
	s.mu.Unlock()
	s.notifyData()
}

// withSentiment fills in a missing sentiment score and category.
func (s *Store) withSentiment(r model.Review) model.Review {
	r = r.Clone()
	if r.SentimentScore == nil && strings.TrimSpace(r.Comment) != "" {
		v := s.analyzer.Analyze(r.Comment)
		r.SentimentScore = &v
		r.Sentiment = sentiment.Categorize(v)
	}
	if r.Sentiment == "" {
		if r.SentimentScore != nil {
			r.Sentiment = sentiment.Categorize(*r.SentimentScore)
		} else {
			r.Sentiment = model.SentimentNeutral
		}
	}
	return r
}

func (s *Store) indexLocked(id string) int {
	for i := range s.partners {
		if s.partners[i].ID == id {
			return i
		}
	}
	return -1
}

// commit journals ev, notifies subscribers and schedules a flush, in that
// order.
func (s *Store) commit(ev model.DataChangeEvent) {
	rec := s.journal.Record(ev)
	metrics.RecordMutation(string(rec.Type))
	metrics.UpdateJournalEntries(s.journal.Len())

	s.changeSubs.Notify(rec)
	s.notifyData()
	s.sched.MarkChanged()
}

func (s *Store) notifyData() {
	d := s.Data()
	metrics.UpdateStoreSize(len(d.Partners), len(d.Reviews))
	s.dataSubs.Notify(d)
}

// Snapshot truncates the journal to its retention window and encodes every
// collection for the gateway. The scheduler calls it at flush time.
func (s *Store) Snapshot(_ context.Context) (map[string][]byte, error) {
	if dropped := s.journal.Truncate(); dropped > 0 {
		metrics.UpdateJournalEntries(s.journal.Len())
	}
	history := s.journal.History()

	s.mu.RLock()
	out, err := encode(collections{
		partners: s.partners,
		reviews:  s.reviews,
		fairness: s.fairness,
		history:  history,
	})
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return out, nil
}

// Load hydrates the store from the gateway. Collections that are missing or
// corrupt come back empty and are logged; a gateway failure leaves the
// store empty and is returned.
func (s *Store) Load(ctx context.Context) error {
	raw, err := s.gateway.Read(ctx, Keys)
	if err != nil {
		metrics.RecordErrorByComponent("store", "load")
		s.log.Warn(ctx, "persisted data unavailable, starting empty", logger.Error(err))
		return fmt.Errorf("load: %w", err)
	}

	var c collections
	for _, d := range []struct {
		key    string
		decode func() error
	}{
		{KeyPartners, func() error { return decodeInto(raw, KeyPartners, &c.partners) }},
		{KeyReviews, func() error { return decodeInto(raw, KeyReviews, &c.reviews) }},
		{KeyFairnessMetrics, func() error { return decodeInto(raw, KeyFairnessMetrics, &c.fairness) }},
		{KeyChangeHistory, func() error { return decodeInto(raw, KeyChangeHistory, &c.history) }},
	} {
		if err := d.decode(); err != nil {
			metrics.RecordErrorByComponent("store", "corrupt_data")
			s.log.Warn(ctx, "corrupt persisted data, using empty collection",
				logger.String("key", d.key), logger.Error(err))
		}
	}

	partners := make([]model.Partner, len(c.partners))
	for i, p := range c.partners {
		partners[i] = model.Normalize(p)
	}
	reviews := make([]model.Review, len(c.reviews))
	for i, r := range c.reviews {
		reviews[i] = s.withSentiment(r)
	}

	s.mu.Lock()
	s.partners = partners
	s.reviews = reviews
	s.fairness = c.fairness
	s.mu.Unlock()
	s.journal.Restore(c.history)
	metrics.UpdateJournalEntries(s.journal.Len())

	s.log.Info(ctx, "store hydrated",
		logger.Int("partners", len(partners)),
		logger.Int("reviews", len(reviews)),
		logger.Int("fairness_metrics", len(c.fairness)),
		logger.Int("history", s.journal.Len()))
	s.notifyData()
	return nil
}

// ClearAll empties every collection, resets the journal and the pending
// counter, and erases the persisted copies. It cannot be undone: a flush
// still writing older data when ClearAll runs is followed by a write of the
// cleared state.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	s.partners, s.reviews, s.fairness = nil, nil, nil
	s.mu.Unlock()
	s.journal.Reset()
	s.sched.Reset()
	metrics.UpdateJournalEntries(0)
	s.notifyData()

	if err := s.gateway.Delete(ctx, Keys); err != nil {
		s.log.Error(ctx, "failed to erase persisted data", logger.Error(err))
		return fmt.Errorf("clear all: %w", err)
	}
	s.log.Warn(ctx, "all data cleared")
	return nil
}

// Partners returns a copy of every partner in insertion order.
func (s *Store) Partners() []model.Partner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePartners(s.partners)
}

// Partner returns a copy of the partner with the given id.
func (s *Store) Partner(id string) (model.Partner, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.partners[i].Clone(), true
	}
	return model.Partner{}, false
}

// Reviews returns a copy of every review.
func (s *Store) Reviews() []model.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneReviews(s.reviews)
}

// ReviewsForPartner returns the reviews referencing partnerID.
func (s *Store) ReviewsForPartner(partnerID string) []model.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Review
	for _, r := range s.reviews {
		if r.PartnerID == partnerID {
			out = append(out, r.Clone())
		}
	}
	return out
}

// FairnessMetrics returns a copy of every fairness metric.
func (s *Store) FairnessMetrics() []model.FairnessMetric {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.FairnessMetric(nil), s.fairness...)
}

// Data returns a copy of every collection.
func (s *Store) Data() Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Data{
		Partners:        clonePartners(s.partners),
		Reviews:         cloneReviews(s.reviews),
		FairnessMetrics: append([]model.FairnessMetric(nil), s.fairness...),
	}
}

// History returns the journal, oldest first.
func (s *Store) History() []model.DataChangeEvent {
	return s.journal.History()
}

// SyncStatus returns the current sync status.
func (s *Store) SyncStatus() model.SyncStatus {
	return s.sched.Status()
}

// Stats returns collection sizes and the sync status.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	st := Stats{
		Partners:        len(s.partners),
		Reviews:         len(s.reviews),
		FairnessMetrics: len(s.fairness),
	}
	s.mu.RUnlock()
	st.JournalEntries = s.journal.Len()
	st.DataSubscribers = s.dataSubs.Len()
	st.SyncSubscribers = s.sched.Subscribers()
	st.Sync = s.sched.Status()
	return st
}

// Subscribe registers fn for every data change.
func (s *Store) Subscribe(fn func(Data)) observer.Unsubscribe {
	unsub := s.dataSubs.Subscribe(fn)
	metrics.UpdateSubscribers("data", s.dataSubs.Len())
	return func() {
		unsub()
		metrics.UpdateSubscribers("data", s.dataSubs.Len())
	}
}

// SubscribeSyncStatus registers fn for every sync status change. Statuses
// arrive in order; fn may call back into the store, for example to retry a
// failed sync.
func (s *Store) SubscribeSyncStatus(fn func(model.SyncStatus)) observer.Unsubscribe {
	unsub := s.sched.Subscribe(fn)
	metrics.UpdateSubscribers("sync", s.sched.Subscribers())
	return func() {
		unsub()
		metrics.UpdateSubscribers("sync", s.sched.Subscribers())
	}
}

// SubscribeChanges registers fn for every journaled event.
func (s *Store) SubscribeChanges(fn func(model.DataChangeEvent)) observer.Unsubscribe {
	unsub := s.changeSubs.Subscribe(fn)
	metrics.UpdateSubscribers("changes", s.changeSubs.Len())
	return func() {
		unsub()
		metrics.UpdateSubscribers("changes", s.changeSubs.Len())
	}
}

// ForceSync flushes immediately, bypassing the debounce delay.
func (s *Store) ForceSync(ctx context.Context) error {
	return s.sched.ForceSync(ctx)
}

// SetOnline forwards a connectivity transition to the scheduler.
func (s *Store) SetOnline(online bool) {
	s.sched.SetOnline(online)
}

// Online reports the last connectivity state.
func (s *Store) Online() bool {
	return s.sched.Online()
}

// Close stops the flush timer and makes a best-effort final flush.
func (s *Store) Close(ctx context.Context) error {
	return s.sched.Close(ctx)
}

func clonePartners(in []model.Partner) []model.Partner {
	out := make([]model.Partner, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

func cloneReviews(in []model.Review) []model.Review {
	out := make([]model.Review, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
