package kv

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/domain/views"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

// Key layout, segments joined by '/' (<ts> is 8 bytes of big-endian
// UnixNano):
//
//	e/<kind>/<subject>/<targetKind>/<targetID>        edge record
//	t/<kind>/<targetKind>/<targetID>/<subject>        reverse membership
//	s/<kind>/<subject>/<targetKind>/<ts>/<targetID>   subject timeline
//	r/<kind>/<targetKind>/<targetID>/<ts>/<subject>   target timeline
//	c/<kind>/<targetKind>/<targetID>                  big-endian uint64 edge count
//
// All keys for one edge are written in a single transaction. The timelines
// let list reads walk newest first and stop after one page.
const (
	prefixEdge            = "e/"
	prefixReverse         = "t/"
	prefixSubjectTimeline = "s/"
	prefixTargetTimeline  = "r/"
	prefixCount           = "c/"

	maxCommitAttempts = 5
	sweepChunk        = 500
)

type edgeRecord struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

type EdgeStore struct {
	db  *badger.DB
	log *logger.Logger
}

func NewEdgeStore(db *badger.DB, baseLog *logger.Logger) *EdgeStore {
	return &EdgeStore{db: db, log: baseLog.With("store", "BadgerEdgeStore")}
}

var _ store.EdgeStore = (*EdgeStore)(nil)

func edgeKey(k social.EdgeKey) []byte {
	return []byte(prefixEdge + string(k.Kind) + "/" + k.SubjectID.String() + "/" + string(k.Target.Kind) + "/" + k.Target.ID.String())
}

func subjectPrefix(kind social.EdgeKind, subject uuid.UUID, tk social.TargetKind) []byte {
	return []byte(prefixEdge + string(kind) + "/" + subject.String() + "/" + string(tk) + "/")
}

func reverseKey(k social.EdgeKey) []byte {
	return append(targetPrefix(k.Kind, k.Target), k.SubjectID.String()...)
}

func targetPrefix(kind social.EdgeKind, t social.TargetRef) []byte {
	return []byte(prefixReverse + string(kind) + "/" + string(t.Kind) + "/" + t.ID.String() + "/")
}

func countKey(kind social.EdgeKind, t social.TargetRef) []byte {
	return []byte(prefixCount + string(kind) + "/" + string(t.Kind) + "/" + t.ID.String())
}

func countPrefix(kind social.EdgeKind, tk social.TargetKind) []byte {
	return []byte(prefixCount + string(kind) + "/" + string(tk) + "/")
}

func subjectTimelinePrefix(kind social.EdgeKind, subject uuid.UUID, tk social.TargetKind) []byte {
	return []byte(prefixSubjectTimeline + string(kind) + "/" + subject.String() + "/" + string(tk) + "/")
}

func targetTimelinePrefix(kind social.EdgeKind, t social.TargetRef) []byte {
	return []byte(prefixTargetTimeline + string(kind) + "/" + string(t.Kind) + "/" + t.ID.String() + "/")
}

func timelineKey(prefix []byte, at time.Time, id uuid.UUID) []byte {
	key := make([]byte, 0, len(prefix)+8+1+36)
	key = append(key, prefix...)
	key = binary.BigEndian.AppendUint64(key, uint64(at.UnixNano()))
	key = append(key, '/')
	return append(key, id.String()...)
}

func subjectTimelineKey(k social.EdgeKey, at time.Time) []byte {
	return timelineKey(subjectTimelinePrefix(k.Kind, k.SubjectID, k.Target.Kind), at, k.Target.ID)
}

func targetTimelineKey(k social.EdgeKey, at time.Time) []byte {
	return timelineKey(targetTimelinePrefix(k.Kind, k.Target), at, k.SubjectID)
}

// parseTimelineKey splits the remainder after a timeline prefix.
func parseTimelineKey(rest []byte) (time.Time, uuid.UUID, error) {
	if len(rest) < 9 || rest[8] != '/' {
		return time.Time{}, uuid.Nil, fmt.Errorf("short timeline key")
	}
	at := time.Unix(0, int64(binary.BigEndian.Uint64(rest[:8]))).UTC()
	id, err := uuid.Parse(string(rest[9:]))
	return at, id, err
}

// update runs fn in a read-write transaction, retrying on optimistic
// conflicts. fn must be safe to re-run.
func (s *EdgeStore) update(dbc dbctx.Context, op string, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		if cerr := dbc.Context().Err(); cerr != nil {
			return cerr
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debug("badger commit conflict, retrying", "op", op, "attempt", attempt+1)
	}
	return fmt.Errorf("%s: %w: %w", op, store.ErrConflict, err)
}

func readCount(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var n uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("corrupt counter %q", key)
		}
		n = binary.BigEndian.Uint64(val)
		return nil
	})
	return n, err
}

func writeCount(txn *badger.Txn, key []byte, n uint64) error {
	if n == 0 {
		return txn.Delete(key)
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	return txn.Set(key, buf)
}

func (s *EdgeStore) TryInsert(dbc dbctx.Context, key social.EdgeKey) (*social.Edge, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	var rec edgeRecord
	err := s.update(dbc, "BadgerEdgeStore.TryInsert", func(txn *badger.Txn) error {
		ek := edgeKey(key)
		if _, err := txn.Get(ek); err == nil {
			return store.ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		rec = edgeRecord{ID: uuid.New(), CreatedAt: time.Now().UTC()}
		val, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := txn.Set(ek, val); err != nil {
			return err
		}
		if err := txn.Set(reverseKey(key), val); err != nil {
			return err
		}
		if err := txn.Set(subjectTimelineKey(key, rec.CreatedAt), rec.ID[:]); err != nil {
			return err
		}
		if err := txn.Set(targetTimelineKey(key, rec.CreatedAt), rec.ID[:]); err != nil {
			return err
		}
		ck := countKey(key.Kind, key.Target)
		n, err := readCount(txn, ck)
		if err != nil {
			return err
		}
		return writeCount(txn, ck, n+1)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, fmt.Errorf("BadgerEdgeStore.TryInsert: %w", store.ErrAlreadyExists)
		}
		return nil, err
	}
	return &social.Edge{ID: rec.ID, Kind: key.Kind, SubjectID: key.SubjectID, Target: key.Target, CreatedAt: rec.CreatedAt}, nil
}

func (s *EdgeStore) Remove(dbc dbctx.Context, key social.EdgeKey) error {
	err := s.update(dbc, "BadgerEdgeStore.Remove", func(txn *badger.Txn) error {
		removed, err := removeEdge(txn, key)
		if err != nil {
			return err
		}
		if !removed {
			return store.ErrNotFound
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("BadgerEdgeStore.Remove: %w", store.ErrNotFound)
	}
	return err
}

// removeEdge deletes every key of one edge. It reports false when the edge
// record is absent.
func removeEdge(txn *badger.Txn, key social.EdgeKey) (bool, error) {
	item, err := txn.Get(edgeKey(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	var rec edgeRecord
	if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
		return false, err
	}
	for _, k := range [][]byte{
		edgeKey(key),
		reverseKey(key),
		subjectTimelineKey(key, rec.CreatedAt),
		targetTimelineKey(key, rec.CreatedAt),
	} {
		if err := txn.Delete(k); err != nil {
			return false, err
		}
	}
	ck := countKey(key.Kind, key.Target)
	n, err := readCount(txn, ck)
	if err != nil {
		return false, err
	}
	if n > 0 {
		n--
	}
	return true, writeCount(txn, ck, n)
}

func (s *EdgeStore) Exists(dbc dbctx.Context, key social.EdgeKey) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(edgeKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

func (s *EdgeStore) CountByTarget(dbc dbctx.Context, kind social.EdgeKind, target social.TargetRef) (int64, error) {
	var n uint64
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		n, err = readCount(txn, countKey(kind, target))
		return err
	})
	return int64(n), err
}

func (s *EdgeStore) CountByTargets(dbc dbctx.Context, kind social.EdgeKind, targets []social.TargetRef) (map[social.TargetRef]int64, error) {
	out := make(map[social.TargetRef]int64, len(targets))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, t := range targets {
			if _, ok := out[t]; ok {
				continue
			}
			n, err := readCount(txn, countKey(kind, t))
			if err != nil {
				return err
			}
			out[t] = int64(n)
		}
		return nil
	})
	return out, err
}

func (s *EdgeStore) CountBySubject(dbc dbctx.Context, kind social.EdgeKind, subject uuid.UUID, targetKind social.TargetKind) (int64, error) {
	var n int64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := subjectPrefix(kind, subject, targetKind)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func (s *EdgeStore) ListTargets(dbc dbctx.Context, kind social.EdgeKind, subject uuid.UUID, targets []social.TargetRef) (map[social.TargetRef]bool, error) {
	out := make(map[social.TargetRef]bool)
	err := s.db.View(func(txn *badger.Txn) error {
		for _, t := range targets {
			_, err := txn.Get(edgeKey(social.EdgeKey{Kind: kind, SubjectID: subject, Target: t}))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			out[t] = true
		}
		return nil
	})
	return out, err
}

func (s *EdgeStore) ListBySubject(dbc dbctx.Context, kind social.EdgeKind, subject uuid.UUID, targetKind social.TargetKind, page views.PageRequest) ([]social.Edge, error) {
	return s.walkTimeline(subjectTimelinePrefix(kind, subject, targetKind), page, func(at time.Time, id uuid.UUID) social.Edge {
		return social.Edge{Kind: kind, SubjectID: subject, Target: social.Ref(targetKind, id), CreatedAt: at}
	})
}

func (s *EdgeStore) ListByTarget(dbc dbctx.Context, kind social.EdgeKind, target social.TargetRef, page views.PageRequest) ([]social.Edge, error) {
	return s.walkTimeline(targetTimelinePrefix(kind, target), page, func(at time.Time, id uuid.UUID) social.Edge {
		return social.Edge{Kind: kind, SubjectID: id, Target: target, CreatedAt: at}
	})
}

// walkTimeline iterates a timeline prefix newest first, skips the page
// offset without loading values and decodes at most page.Limit edges.
func (s *EdgeStore) walkTimeline(prefix []byte, page views.PageRequest, build func(at time.Time, id uuid.UUID) social.Edge) ([]social.Edge, error) {
	out := []social.Edge{}
	skip := page.Offset()
	if skip < 0 || page.Limit <= 0 {
		return out, nil
	}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append(append([]byte{}, prefix...), bytes.Repeat([]byte{0xFF}, 9)...)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if skip > 0 {
				skip--
				continue
			}
			item := it.Item()
			at, id, err := parseTimelineKey(bytes.TrimPrefix(item.Key(), prefix))
			if err != nil {
				return fmt.Errorf("decode key %q: %w", item.Key(), err)
			}
			e := build(at, id)
			if err := item.Value(func(val []byte) error {
				if len(val) != 16 {
					return fmt.Errorf("corrupt edge id under %q", item.Key())
				}
				copy(e.ID[:], val)
				return nil
			}); err != nil {
				return err
			}
			out = append(out, e)
			if len(out) >= page.Limit {
				return nil
			}
		}
		return nil
	})
	return out, err
}

// RemoveByTarget drains the reverse index in chunks. Each chunk is deleted
// before the next is read, so the walk always restarts at the prefix head.
func (s *EdgeStore) RemoveByTarget(dbc dbctx.Context, kind social.EdgeKind, target social.TargetRef) (int64, error) {
	prefix := targetPrefix(kind, target)
	var removed int64
	for {
		if err := dbc.Context().Err(); err != nil {
			return removed, err
		}
		var subjects []uuid.UUID
		err := s.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			opts.Prefix = prefix
			it := txn.NewIterator(opts)
			defer it.Close()
			for it.Seek(prefix); it.ValidForPrefix(prefix) && len(subjects) < sweepChunk; it.Next() {
				id, err := uuid.Parse(string(bytes.TrimPrefix(it.Item().Key(), prefix)))
				if err != nil {
					return fmt.Errorf("decode key %q: %w", it.Item().Key(), err)
				}
				subjects = append(subjects, id)
			}
			return nil
		})
		if err != nil {
			return removed, err
		}
		if len(subjects) == 0 {
			return removed, nil
		}
		var n int64
		err = s.update(dbc, "BadgerEdgeStore.RemoveByTarget", func(txn *badger.Txn) error {
			n = 0
			for _, subject := range subjects {
				ok, err := removeEdge(txn, social.EdgeKey{Kind: kind, SubjectID: subject, Target: target})
				if err != nil {
					return err
				}
				if ok {
					n++
				} else if err := txn.Delete(reverseKey(social.EdgeKey{Kind: kind, SubjectID: subject, Target: target})); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return removed, err
		}
		removed += n
	}
}

// ScanTargetIDs walks the counter keys, which exist exactly for targets with
// at least one edge, in target id order.
func (s *EdgeStore) ScanTargetIDs(dbc dbctx.Context, kind social.EdgeKind, targetKind social.TargetKind, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	prefix := countPrefix(kind, targetKind)
	var out []uuid.UUID
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(append(append([]byte{}, prefix...), after.String()...)); it.ValidForPrefix(prefix); it.Next() {
			id, err := uuid.Parse(string(bytes.TrimPrefix(it.Item().Key(), prefix)))
			if err != nil {
				return err
			}
			if id == after {
				continue
			}
			out = append(out, id)
			if limit > 0 && len(out) >= limit {
				return nil
			}
		}
		return nil
	})
	return out, err
}
