package entrylog

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/btree"
	"github.com/tidwall/match"
	"github.com/tidwall/rhh"
	"github.com/tidwall/tinybtree"

	"github.com/TheBotlyNoob/FIRSTrun/logger"
	"github.com/TheBotlyNoob/FIRSTrun/schema"
	"github.com/TheBotlyNoob/FIRSTrun/value"
)

// Change is one drained notification: a leaf path changed at a timestamp.
type Change struct {
	Path      Path
	Timestamp uint64
	Value     value.Value
}

type sample struct {
	ts  uint64
	val value.Value
}

func lessSample(a, b interface{}) bool {
	return a.(*sample).ts < b.(*sample).ts
}

// series is the timestamp-ordered history of one path. Inserting at an
// existing timestamp overwrites; otherwise it is append-only.
type series struct {
	tr *btree.BTree
}

func newSeries() *series {
	return &series{tr: btree.New(lessSample)}
}

type change struct {
	path Path
	ts   uint64
}

type pendingRaw struct {
	path Path
	ts   uint64
	tag  string
	data []byte
}

// Store owns the schema registry, the pending-decode queue and the per-path
// value tables for one decode pipeline. It is not safe for concurrent use;
// ingest one file per Store and merge downstream.
type Store struct {
	paths        tinybtree.BTree // Path -> *series
	changed      map[change]struct{}
	registry     *schema.Registry
	pending      *rhh.Map // schema name -> []pendingRaw
	pendingTotal int
}

func NewStore() *Store {
	return &Store{
		changed:  make(map[change]struct{}),
		registry: schema.NewRegistry(),
		pending:  rhh.New(0),
	}
}

// Registry exposes the store-owned schema registry.
func (s *Store) Registry() *schema.Registry {
	return s.registry
}

// AddRaw decodes one raw record payload and stores the result, flattening
// composites into leaf paths. A payload whose struct schema is not yet
// registered is queued, not failed: it replays when the schema arrives.
// Any other decode failure is returned and affects only this call.
func (s *Store) AddRaw(path Path, timestamp uint64, tag string, data []byte) error {
	v, err := value.Decode(tag, data, s.registry)
	if err != nil {
		var missing *schema.MissingError
		if errors.As(err, &missing) {
			s.enqueue(missing.Name, pendingRaw{path: path, ts: timestamp, tag: tag, data: data})
			return nil
		}
		return err
	}
	s.addValue(path, timestamp, v)
	return nil
}

func (s *Store) enqueue(name string, p pendingRaw) {
	logger.Debug("schema", name, "path", p.path.String(), "ts", p.ts,
		"deferring entry until schema arrives")
	var queue []pendingRaw
	if v, ok := s.pending.Get(name); ok {
		queue = v.([]pendingRaw)
	}
	s.pending.Set(name, append(queue, p))
	s.pendingTotal++
}

func (s *Store) addValue(path Path, timestamp uint64, v value.Value) {
	switch v := v.(type) {
	case value.SchemaDef:
		// schema entries are named "/.schema/struct:<Name>"; the registry
		// and the pending queue both key on the bare name
		name := strings.TrimPrefix(path.Last(), "struct:")
		if name == "" {
			name = "Unknown"
		}
		logger.Info("schema", name, "ts", timestamp, "new struct schema")
		s.RegisterSchema(name, v.Schema)

	// a struct is transparently a set of child entries
	case value.Struct:
		for i, fieldName := range v.Names {
			s.addValue(path.Join(fieldName), timestamp, v.Values[i])
		}

	case value.StructArray:
		s.writeLeaf(path.Join("length"), timestamp, value.Int64(len(v)))
		for i, elem := range v {
			s.addValue(path.Join(strconv.Itoa(i)), timestamp, elem)
		}

	default:
		s.writeLeaf(path, timestamp, v)
	}
}

func (s *Store) writeLeaf(path Path, timestamp uint64, v value.Value) {
	var ser *series
	if existing, ok := s.paths.Get(string(path)); ok {
		ser = existing.(*series)
	} else {
		ser = newSeries()
		s.paths.Set(string(path), ser)
	}
	ser.tr.Set(&sample{ts: timestamp, val: v})
	s.changed[change{path: path, ts: timestamp}] = struct{}{}
}

// RegisterSchema stores a schema definition, replacing any prior one under
// the same name, then replays every payload queued under exactly that name
// in arrival order. A replay may re-queue under a different missing name.
func (s *Store) RegisterSchema(name string, sc *schema.Schema) {
	s.registry.Register(name, sc)

	v, ok := s.pending.Delete(name)
	if !ok {
		return
	}
	queue := v.([]pendingRaw)
	s.pendingTotal -= len(queue)
	for _, p := range queue {
		logger.Debug("schema", name, "path", p.path.String(), "ts", p.ts,
			"replaying deferred entry")
		if err := s.AddRaw(p.path, p.ts, p.tag, p.data); err != nil {
			logger.WarnErr(err, "path", p.path.String(), "deferred replay failed")
		}
	}
}

// GetChanged drains the changed set: every (path, timestamp, value) written
// since the last drain, each delivered exactly once. Order is unspecified.
func (s *Store) GetChanged() []Change {
	if len(s.changed) == 0 {
		return nil
	}
	out := make([]Change, 0, len(s.changed))
	for c := range s.changed {
		if v, ok := s.at(c.path, c.ts); ok {
			out = append(out, Change{Path: c.path, Timestamp: c.ts, Value: v})
		}
	}
	s.changed = make(map[change]struct{})
	return out
}

func (s *Store) at(path Path, timestamp uint64) (value.Value, bool) {
	v, ok := s.paths.Get(string(path))
	if !ok {
		return nil, false
	}
	item := v.(*series).tr.Get(&sample{ts: timestamp})
	if item == nil {
		return nil, false
	}
	return item.(*sample).val, true
}

// GetLatestAtOrBefore returns the value with the greatest stored timestamp
// at or before the given one.
func (s *Store) GetLatestAtOrBefore(path Path, timestamp uint64) (value.Value, bool) {
	v, ok := s.paths.Get(string(path))
	if !ok {
		return nil, false
	}
	var out value.Value
	v.(*series).tr.Descend(&sample{ts: timestamp}, func(item interface{}) bool {
		out = item.(*sample).val
		return false
	})
	return out, out != nil
}

// GetLatest returns the newest timestamp and value for a path.
func (s *Store) GetLatest(path Path) (uint64, value.Value, bool) {
	v, ok := s.paths.Get(string(path))
	if !ok {
		return 0, nil, false
	}
	item := v.(*series).tr.Max()
	if item == nil {
		return 0, nil, false
	}
	sm := item.(*sample)
	return sm.ts, sm.val, true
}

// Series walks one path's history in timestamp order.
func (s *Store) Series(path Path, iter func(timestamp uint64, v value.Value) bool) {
	v, ok := s.paths.Get(string(path))
	if !ok {
		return
	}
	v.(*series).tr.Ascend(nil, func(item interface{}) bool {
		sm := item.(*sample)
		return iter(sm.ts, sm.val)
	})
}

// Paths lists every stored leaf path in order.
func (s *Store) Paths() []Path {
	out := make([]Path, 0, s.paths.Len())
	s.paths.Scan(func(key string, _ interface{}) bool {
		out = append(out, Path(key))
		return true
	})
	return out
}

// MatchPaths lists stored leaf paths matching a glob pattern.
func (s *Store) MatchPaths(pattern string) []Path {
	var out []Path
	s.paths.Scan(func(key string, _ interface{}) bool {
		if match.Match(key, pattern) {
			out = append(out, Path(key))
		}
		return true
	})
	return out
}

// PendingCount reports how many payloads are still queued behind missing
// schemas. A count that never drains usually means a schema entry was lost.
func (s *Store) PendingCount() int {
	return s.pendingTotal
}
