package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/littleoaks/backend/core"
)

const notifyChannel = "docstore_changes"

// Store is a core.Store backed by a single Postgres JSONB table. Live Watch
// queries are driven by LISTEN/NOTIFY: a trigger raises a notification on
// every write and watchers requery.
type Store struct {
	db       *sqlx.DB
	connInfo string
	logger   core.Logger
}

var _ core.Store = (*Store)(nil)

func NewStore(db *sqlx.DB, connInfo string, logger core.Logger) *Store {
	return &Store{db: db, connInfo: connInfo, logger: logger}
}

type docRow struct {
	ID        string    `db:"id"`
	Fields    []byte    `db:"fields"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r docRow) document() (core.Document, error) {
	doc := make(core.Document)
	if err := json.Unmarshal(r.Fields, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding document fields")
	}
	doc[core.DocCreatedAt] = r.CreatedAt.UTC()
	doc[core.DocUpdatedAt] = r.UpdatedAt.UTC()
	return doc, nil
}

// classify maps driver errors onto the store taxonomy.
func classify(err error) error {
	if err == sql.ErrNoRows {
		return core.ErrDocNotFound
	}
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == "42501" { // insufficient_privilege
		return core.ErrPermissionDenied
	}
	return err
}

func marshalFields(fields core.Document) ([]byte, error) {
	cp := make(core.Document, len(fields))
	for k, v := range fields {
		if k == core.DocCreatedAt || k == core.DocUpdatedAt {
			continue // kept in dedicated columns
		}
		cp[k] = v
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return nil, errors.Wrap(err, "encoding document fields")
	}
	return data, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (core.Document, error) {
	var row docRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, fields, created_at, updated_at FROM documents WHERE collection = $1 AND id = $2`,
		collection, id)
	if err != nil {
		return nil, classify(err)
	}
	return row.document()
}

func (s *Store) Set(ctx context.Context, collection, id string, fields core.Document, merge bool) error {
	data, err := marshalFields(fields)
	if err != nil {
		return err
	}

	update := `fields = EXCLUDED.fields`
	if merge {
		update = `fields = documents.fields || EXCLUDED.fields`
	}
	q := fmt.Sprintf(`
		INSERT INTO documents (collection, id, fields) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET %s, updated_at = now()`, update)
	if _, err = s.db.ExecContext(ctx, q, collection, id, data); err != nil {
		return classify(err)
	}
	return nil
}

func (s *Store) Add(ctx context.Context, collection string, fields core.Document) (string, error) {
	id := uuid.New().String()
	cp := make(core.Document, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	if _, ok := cp["id"]; !ok {
		cp["id"] = id
	}
	if err := s.Set(ctx, collection, id, cp, false); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields core.Document) error {
	data, err := marshalFields(fields)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET fields = fields || $3, updated_at = now() WHERE collection = $1 AND id = $2`,
		collection, id, data)
	if err != nil {
		return classify(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrDocNotFound
	}
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, q core.DocQuery) ([]core.Document, error) {
	query := `SELECT id, fields, created_at, updated_at FROM documents WHERE collection = $1`
	args := []interface{}{collection}
	if q.Field != "" {
		query += ` AND fields->>$2 = $3`
		args = append(args, q.Field, fmt.Sprint(q.Equals))
	}
	if q.OrderBy != "" {
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		if q.OrderBy == core.DocCreatedAt {
			query += fmt.Sprintf(` ORDER BY created_at %s`, dir)
		} else if q.OrderBy == core.DocUpdatedAt {
			query += fmt.Sprintf(` ORDER BY updated_at %s`, dir)
		} else {
			query += fmt.Sprintf(` ORDER BY fields->>'%s' %s`, q.OrderBy, dir)
		}
	}

	var rows []docRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, classify(err)
	}
	docs := make([]core.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.document()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Store) Watch(ctx context.Context, collection string, q core.DocQuery) (core.DocWatch, error) {
	listener := pq.NewListener(s.connInfo, 50*time.Millisecond, 10*time.Second, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			s.logger.Warn("docstore listener event", err)
		}
	})
	if err := listener.Listen(notifyChannel); err != nil {
		_ = listener.Close()
		return nil, errors.Wrap(err, "listening for document changes")
	}

	w := &watcher{
		store:      s,
		collection: collection,
		q:          q,
		listener:   listener,
		updates:    make(chan []core.Document),
		done:       make(chan struct{}),
	}
	go w.run(ctx)
	return w, nil
}

type watcher struct {
	store      *Store
	collection string
	q          core.DocQuery
	listener   *pq.Listener
	updates    chan []core.Document
	done       chan struct{}
	once       sync.Once
}

var _ core.DocWatch = (*watcher)(nil)

func (w *watcher) Updates() <-chan []core.Document { return w.updates }

func (w *watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
		if err := w.listener.Close(); err != nil {
			w.store.logger.Debug("closing docstore listener", err)
		}
	})
}

func (w *watcher) run(ctx context.Context) {
	defer close(w.updates)

	if !w.deliver(ctx) { // initial list
		return
	}
	for {
		select {
		case <-w.done:
			return
		case <-ctx.Done():
			w.Stop()
			return
		case n := <-w.listener.Notify:
			// n is nil on connection loss; requery to resync
			if n != nil && n.Extra != w.collection {
				continue
			}
			if !w.deliver(ctx) {
				return
			}
		}
	}
}

func (w *watcher) deliver(ctx context.Context) bool {
	docs, err := w.store.Query(ctx, w.collection, w.q)
	if err != nil {
		w.store.logger.Warn("watch requery failed", err)
		return true // transient; keep watching
	}
	select {
	case w.updates <- docs:
		return true
	case <-w.done:
		return false
	case <-ctx.Done():
		w.Stop()
		return false
	}
}
