package directory

import (
	"context"
	"fmt"

	"github.com/jspark-dev/rollbook/internal/logging"
)

// SaveRequest describes one merge-and-persist operation.
type SaveRequest struct {
	// RowIndex identifies the row to overwrite; negative appends a new row.
	RowIndex int

	// Original is the member as it looked when the editor loaded it.
	// For updates it doubles as the conflict-check snapshot: if the stored
	// row no longer matches it, the save is rejected with ErrRowConflict.
	// Nil skips the check (and falls back to empty values on merge).
	Original Member

	// Edits holds the changed fields. A key present with an empty value
	// clears that field; absent keys keep Original's value.
	Edits Member

	// Photo is an optional uploaded image to resolve into a hosted URL.
	Photo []byte

	// SessionID tags the audit entry with who saved.
	SessionID string
}

// Save merges a partial edit against an existing record (or builds a new
// one), serializes it in header order and writes it back as a single row.
//
// Steps run strictly in order: photo resolution, then phone normalization,
// then the row write; later steps read the outputs of earlier ones. The
// write is atomic per call; store errors propagate unchanged.
func (s *Service) Save(ctx context.Context, req SaveRequest) (Member, error) {
	header, rows, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}
	if req.RowIndex >= len(rows) {
		return nil, fmt.Errorf("row %d of %d: %w", req.RowIndex, len(rows), ErrRowRange)
	}

	merged := s.merge(ctx, req)

	lock := s.lockRow(req.RowIndex)
	lock.Lock()
	defer lock.Unlock()

	if req.RowIndex >= 0 && req.Original != nil {
		if err := s.checkConflict(ctx, req.RowIndex, req.Original, header); err != nil {
			return nil, err
		}
	}

	values := merged.ToRow(header)
	if err := s.store.WriteRow(ctx, req.RowIndex, values); err != nil {
		return nil, fmt.Errorf("save row %d: %w", req.RowIndex, err)
	}

	s.recordAudit(ctx, req, merged)
	return merged, nil
}

// merge builds the final member: resolved photo first, then normalized
// phone, then edits over original values.
func (s *Service) merge(ctx context.Context, req SaveRequest) Member {
	merged := req.Original.Clone()
	for col, v := range req.Edits {
		merged[col] = v
	}

	if col := s.opts.PhotoColumn; col != "" && len(req.Photo) > 0 && s.photos != nil {
		if url := s.photos.Upload(ctx, req.Photo); url != "" {
			merged[col] = url
		} else {
			// Upload failed: keep whatever photo the record already had.
			merged[col] = req.Original.Get(col)
			logging.FromContext(ctx).Warn("photo upload failed, keeping previous photo",
				"row", req.RowIndex,
			)
		}
	}

	if col := s.opts.PhoneColumn; col != "" {
		merged[col] = FormatPhone(merged.Get(col))
	}

	return merged
}

// checkConflict re-reads the target row and compares it with the snapshot
// the editor loaded. Caller holds the row lock.
func (s *Service) checkConflict(ctx context.Context, rowIndex int, original Member, header Header) error {
	current, err := s.store.ReadRow(ctx, rowIndex)
	if err != nil {
		return fmt.Errorf("conflict check row %d: %w", rowIndex, err)
	}

	snapshot := original.ToRow(header)
	if !rowsEqual(snapshot, current, len(header)) {
		return fmt.Errorf("row %d: %w", rowIndex, ErrRowConflict)
	}
	return nil
}

// rowsEqual compares two raw rows over width columns, treating missing
// trailing cells as empty strings.
func rowsEqual(a, b []string, width int) bool {
	for i := 0; i < width; i++ {
		var av, bv string
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			return false
		}
	}
	return true
}

func (s *Service) recordAudit(ctx context.Context, req SaveRequest, merged Member) {
	if s.audit == nil {
		return
	}

	action := ActionUpdate
	if req.RowIndex < 0 {
		action = ActionAppend
	}

	entry := NewAuditEntry(req.SessionID, req.RowIndex, action, changedColumns(req.Original, merged))
	if err := s.audit.Record(ctx, entry); err != nil {
		// The save itself succeeded; a broken audit trail must not fail it.
		logging.FromContext(ctx).Warn("audit record failed", "error", err)
	}
}

// changedColumns lists the columns whose value differs between the original
// and the saved member.
func changedColumns(original, merged Member) []string {
	var cols []string
	for col, v := range merged {
		if original.Get(col) != v {
			cols = append(cols, col)
		}
	}
	return cols
}
