package directory

import (
	"context"
	"fmt"
	"sync"
)

// Store is the record store the directory reads from and writes to.
// Implemented by sheet.Client; tests substitute a fake.
type Store interface {
	// LoadAll fetches the header row and every data row of the sheet.
	LoadAll(ctx context.Context) (Header, [][]string, error)

	// ReadRow fetches the single data row at rowIndex.
	ReadRow(ctx context.Context, rowIndex int) ([]string, error)

	// WriteRow overwrites the data row at rowIndex with values in header
	// order, or appends a new trailing row when rowIndex < 0.
	WriteRow(ctx context.Context, rowIndex int, values []string) error
}

// PhotoResolver turns an uploaded image into a durable external URL.
// An empty result means the upload failed or was skipped; the editor then
// keeps the existing photo value.
type PhotoResolver interface {
	Upload(ctx context.Context, image []byte) string
}

// Auditor records successful saves. May be nil (auditing disabled).
type Auditor interface {
	Record(ctx context.Context, e AuditEntry) error
}

// Options configures column semantics for a Service.
type Options struct {
	// PhoneColumn is the header name holding phone numbers ("" disables
	// phone normalization on save).
	PhoneColumn string

	// PhotoColumn is the header name holding photo URLs ("" disables
	// photo resolution on save).
	PhotoColumn string
}

// Service coordinates the record store, photo resolver and audit trail.
// The store handle is long-lived and shared; the directory itself is
// refetched on every Load.
type Service struct {
	store  Store
	photos PhotoResolver
	audit  Auditor
	opts   Options

	mu       sync.Mutex
	rowLocks map[int]*sync.Mutex
}

// NewService creates a Service. photos and audit may be nil.
func NewService(store Store, photos PhotoResolver, audit Auditor, opts Options) *Service {
	return &Service{
		store:    store,
		photos:   photos,
		audit:    audit,
		opts:     opts,
		rowLocks: make(map[int]*sync.Mutex),
	}
}

// Snapshot is one load of the directory: the header and every member,
// each carrying the row index that identifies it for updates.
type Snapshot struct {
	Header  Header    `json:"header"`
	Records Directory `json:"records"`
}

// Load refetches the entire directory from the store. Nothing is cached:
// concurrent external edits become visible on the next Load.
func (s *Service) Load(ctx context.Context) (*Snapshot, error) {
	header, rows, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load directory: %w", err)
	}

	records := make(Directory, len(rows))
	for i, row := range rows {
		records[i] = Record{Row: i, Member: MemberFromRow(header, row)}
	}
	return &Snapshot{Header: header, Records: records}, nil
}

// Member returns the single record at rowIndex from a fresh load.
func (s *Service) Member(ctx context.Context, rowIndex int) (Record, Header, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return Record{}, nil, err
	}
	if rowIndex < 0 || rowIndex >= len(snap.Records) {
		return Record{}, nil, fmt.Errorf("row %d: %w", rowIndex, ErrRowRange)
	}
	return snap.Records[rowIndex], snap.Header, nil
}

// lockRow returns the mutex serializing writers of one row index within
// this process. Appends (index -1) share a single lock so two simultaneous
// creates cannot interleave their append calls.
func (s *Service) lockRow(rowIndex int) *sync.Mutex {
	if rowIndex < 0 {
		rowIndex = -1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.rowLocks[rowIndex]
	if !ok {
		l = &sync.Mutex{}
		s.rowLocks[rowIndex] = l
	}
	return l
}
