package inmemstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/littleoaks/backend/core"
)

// Store is an in-memory core.Store used by tests and local development. It
// supports the full contract, including live Watch queries.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]core.Document

	wmu      sync.Mutex
	watchers map[string][]*watcher

	nowFunc func() time.Time // mockable
}

var _ core.Store = (*Store)(nil)

func Open() *Store {
	return &Store{
		collections: make(map[string]map[string]core.Document),
		watchers:    make(map[string][]*watcher),
		nowFunc:     time.Now,
	}
}

func copyDoc(doc core.Document) core.Document {
	cp := make(core.Document, len(doc))
	for k, v := range doc {
		cp[k] = v
	}
	return cp
}

func (s *Store) table(collection string) map[string]core.Document {
	tbl, ok := s.collections[collection]
	if !ok {
		tbl = make(map[string]core.Document)
		s.collections[collection] = tbl
	}
	return tbl
}

func (s *Store) Get(ctx context.Context, collection, id string) (core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if doc, ok := s.collections[collection][id]; ok {
		return copyDoc(doc), nil
	}
	return nil, core.ErrDocNotFound
}

func (s *Store) Set(ctx context.Context, collection, id string, fields core.Document, merge bool) error {
	s.mu.Lock()
	tbl := s.table(collection)
	now := s.nowFunc().UTC()

	doc, exists := tbl[id]
	if !exists || !merge {
		doc = core.Document{}
		if exists {
			doc[core.DocCreatedAt] = tbl[id][core.DocCreatedAt]
		}
	} else {
		doc = copyDoc(doc)
	}
	for k, v := range fields {
		doc[k] = v
	}
	if _, ok := doc[core.DocCreatedAt]; !ok {
		doc[core.DocCreatedAt] = now
	}
	doc[core.DocUpdatedAt] = now
	tbl[id] = doc
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *Store) Add(ctx context.Context, collection string, fields core.Document) (string, error) {
	id := uuid.New().String()
	fields = copyDoc(fields)
	if _, ok := fields["id"]; !ok {
		fields["id"] = id
	}
	if err := s.Set(ctx, collection, id, fields, false); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields core.Document) error {
	s.mu.Lock()
	doc, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return core.ErrDocNotFound
	}
	doc = copyDoc(doc)
	for k, v := range fields {
		doc[k] = v
	}
	doc[core.DocUpdatedAt] = s.nowFunc().UTC()
	s.collections[collection][id] = doc
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, q core.DocQuery) ([]core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryLocked(collection, q), nil
}

func (s *Store) queryLocked(collection string, q core.DocQuery) []core.Document {
	docs := make([]core.Document, 0)
	for _, doc := range s.collections[collection] {
		if matches(doc, q) {
			docs = append(docs, copyDoc(doc))
		}
	}
	orderDocs(docs, q)
	return docs
}

func (s *Store) Watch(ctx context.Context, collection string, q core.DocQuery) (core.DocWatch, error) {
	w := &watcher{
		store:      s,
		collection: collection,
		q:          q,
		updates:    make(chan []core.Document),
		signal:     make(chan struct{}, 1),
		done:       make(chan struct{}),
	}

	s.wmu.Lock()
	s.watchers[collection] = append(s.watchers[collection], w)
	s.wmu.Unlock()

	w.signal <- struct{}{} // deliver the initial list
	go w.run()
	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				w.Stop()
			case <-w.done:
			}
		}()
	}
	return w, nil
}

func (s *Store) notify(collection string) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	for _, w := range s.watchers[collection] {
		select {
		case w.signal <- struct{}{}:
		default: // a refresh is already pending
		}
	}
}

func (s *Store) removeWatcher(w *watcher) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	ws := s.watchers[w.collection]
	for i, cand := range ws {
		if cand == w {
			s.watchers[w.collection] = append(ws[:i], ws[i+1:]...)
			break
		}
	}
}

type watcher struct {
	store      *Store
	collection string
	q          core.DocQuery
	updates    chan []core.Document
	signal     chan struct{}
	done       chan struct{}
	once       sync.Once
}

var _ core.DocWatch = (*watcher)(nil)

func (w *watcher) Updates() <-chan []core.Document { return w.updates }

func (w *watcher) Stop() {
	w.once.Do(func() {
		w.store.removeWatcher(w)
		close(w.done)
	})
}

func (w *watcher) run() {
	defer close(w.updates)
	for {
		select {
		case <-w.done:
			return
		case <-w.signal:
			w.store.mu.RLock()
			docs := w.store.queryLocked(w.collection, w.q)
			w.store.mu.RUnlock()
			select {
			case w.updates <- docs:
			case <-w.done:
				return
			}
		}
	}
}

func matches(doc core.Document, q core.DocQuery) bool {
	if q.Field == "" {
		return true
	}
	return fieldEquals(doc[q.Field], q.Equals)
}

func fieldEquals(a, b interface{}) bool {
	if a == b {
		return true
	}
	// numeric equality across int/float kinds
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	return aok && bok && af == bf
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func orderDocs(docs []core.Document, q core.DocQuery) {
	if q.OrderBy == "" {
		return
	}
	less := func(i, j int) bool {
		a, b := docs[i][q.OrderBy], docs[j][q.OrderBy]
		res := compare(a, b)
		if q.Descending {
			return res > 0
		}
		return res < 0
	}
	sort.SliceStable(docs, less)
}

func compare(a, b interface{}) int {
	if at, aok := a.(time.Time); aok {
		if bt, bok := b.(time.Time); bok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			}
			return 0
		}
	}
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	as, _ := a.(string)
	bs, _ := b.(string)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}
