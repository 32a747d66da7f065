package entrylog

import (
	"github.com/tidwall/gjson"

	"github.com/TheBotlyNoob/FIRSTrun/logger"
	"github.com/TheBotlyNoob/FIRSTrun/wpilog"
)

// EntryContext is the id binding established by a Start record. Metadata is
// conventionally a JSON object ({"source":"NT"}).
type EntryContext struct {
	ID       uint32
	Name     string
	Type     string
	Metadata string
}

// Source returns the "source" field of the metadata JSON, if present.
func (c *EntryContext) Source() string {
	return gjson.Get(c.Metadata, "source").String()
}

// Router maintains the entry-id table from control records and feeds raw
// records into a Store. Raw records whose id has never started are dropped
// with a warning; records arriving after a Finish are dropped too, since
// the id is no longer bound.
type Router struct {
	store   *Store
	entries map[uint32]*EntryContext
}

func NewRouter(store *Store) *Router {
	return &Router{
		store:   store,
		entries: make(map[uint32]*EntryContext),
	}
}

// Context returns the live binding for an entry id.
func (r *Router) Context(id uint32) (*EntryContext, bool) {
	ctx, ok := r.entries[id]
	return ctx, ok
}

// Route consumes one framed record.
func (r *Router) Route(rec wpilog.Record) {
	switch p := rec.Payload.(type) {
	case wpilog.Start:
		ctx := &EntryContext{
			ID:       p.EntryID,
			Name:     p.Name,
			Type:     p.Type,
			Metadata: p.Metadata,
		}
		r.entries[p.EntryID] = ctx
		logger.Debug(
			"entry_id", p.EntryID, "name", p.Name, "type", p.Type, "source", ctx.Source(),
			"entry started")

	case wpilog.Finish:
		delete(r.entries, p.EntryID)

	case wpilog.SetMetadata:
		if ctx, ok := r.entries[p.EntryID]; ok {
			ctx.Metadata = p.Metadata
		}

	case wpilog.Raw:
		ctx, ok := r.entries[p.EntryID]
		if !ok {
			logger.Warn("entry_id", p.EntryID, "no start record for entry")
			return
		}
		path := FromName(ctx.Name)
		if err := r.store.AddRaw(path, rec.Timestamp, ctx.Type, p.Data); err != nil {
			logger.WarnErr(err, "entry", ctx.Name, "type", ctx.Type, "len", len(p.Data),
				"failed to store entry")
		}
	}
}
