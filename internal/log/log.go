package log

import (
	"context"
	"log/slog"
	"sync"
)

// DefaultLimit is the number of records kept by a RecordHandler.
const DefaultLimit = 20

type recordStore struct {
	mu    sync.Mutex
	limit int
	logs  []slog.Record
}

func (s *recordStore) add(r slog.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = append(s.logs, r.Clone())
	if len(s.logs) > s.limit {
		s.logs = s.logs[len(s.logs)-s.limit:]
	}
}

// RecordHandler is a slog.Handler that keeps the most recent records in
// memory before passing them on to the wrapped handler.
type RecordHandler struct {
	next  slog.Handler
	store *recordStore
	attrs []slog.Attr
}

// NewRecordHandler creates a new RecordHandler keeping up to limit records.
func NewRecordHandler(handler slog.Handler, limit int) *RecordHandler {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &RecordHandler{
		next:  handler,
		store: &recordStore{limit: limit},
	}
}

func (h *RecordHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle stores the record and forwards it.
func (h *RecordHandler) Handle(ctx context.Context, r slog.Record) error {
	stored := r
	if len(h.attrs) > 0 {
		stored = r.Clone()
		stored.AddAttrs(h.attrs...)
	}
	h.store.add(stored)
	return h.next.Handle(ctx, r)
}

func (h *RecordHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RecordHandler{
		next:  h.next.WithAttrs(attrs),
		store: h.store,
		attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...),
	}
}

func (h *RecordHandler) WithGroup(name string) slog.Handler {
	return &RecordHandler{
		next:  h.next.WithGroup(name),
		store: h.store,
		attrs: h.attrs,
	}
}

// Logs returns a copy of the stored records, oldest first.
func (h *RecordHandler) Logs() []slog.Record {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return append([]slog.Record(nil), h.store.logs...)
}

// Init wraps handler in a RecordHandler and installs it as the default logger.
// The records can be read back through the logger's handler.
func Init(handler slog.Handler) *slog.Logger {
	logger := slog.New(NewRecordHandler(handler, DefaultLimit))
	slog.SetDefault(logger)
	return logger
}
