package directory

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

type writeCall struct {
	RowIndex int
	Values   []string
}

// fakeStore is an in-memory Store that records every write.
type fakeStore struct {
	header   Header
	rows     [][]string
	loadErr  error
	writeErr error

	WriteCalls []writeCall
}

func (f *fakeStore) LoadAll(ctx context.Context) (Header, [][]string, error) {
	if f.loadErr != nil {
		return nil, nil, f.loadErr
	}
	return f.header, f.rows, nil
}

func (f *fakeStore) ReadRow(ctx context.Context, rowIndex int) ([]string, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if rowIndex < 0 || rowIndex >= len(f.rows) {
		return nil, nil
	}
	return f.rows[rowIndex], nil
}

func (f *fakeStore) WriteRow(ctx context.Context, rowIndex int, values []string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.WriteCalls = append(f.WriteCalls, writeCall{RowIndex: rowIndex, Values: values})
	if rowIndex < 0 {
		f.rows = append(f.rows, values)
	} else {
		f.rows[rowIndex] = values
	}
	return nil
}

type fakePhotos struct {
	url   string
	Calls int
}

func (f *fakePhotos) Upload(ctx context.Context, image []byte) string {
	f.Calls++
	return f.url
}

type fakeAudit struct {
	Entries []AuditEntry
}

func (f *fakeAudit) Record(ctx context.Context, e AuditEntry) error {
	f.Entries = append(f.Entries, e)
	return nil
}

func newTestStore() *fakeStore {
	return &fakeStore{
		header: Header{"이름", "직분", "전화번호", "주소"},
		rows: [][]string{
			{"김민수", "성도", "4165551234", "Toronto"},
			{"박철수", "장로", "010-1234-5678", "Kingston"},
		},
	}
}

func testOptions() Options {
	return Options{PhoneColumn: "전화번호", PhotoColumn: "사진"}
}

func TestLoad(t *testing.T) {
	store := newTestStore()
	svc := NewService(store, nil, nil, testOptions())

	snap, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Records) != 2 {
		t.Fatalf("Load() returned %d records, want 2", len(snap.Records))
	}
	if snap.Records[1].Row != 1 {
		t.Errorf("Records[1].Row = %d, want 1", snap.Records[1].Row)
	}
	if got := snap.Records[0].Member["이름"]; got != "김민수" {
		t.Errorf("Records[0] 이름 = %q, want 김민수", got)
	}
}

func TestLoad_ConnectionFailure(t *testing.T) {
	store := &fakeStore{loadErr: fmt.Errorf("dial: %w", ErrConnection)}
	svc := NewService(store, nil, nil, testOptions())

	if _, err := svc.Load(context.Background()); !errors.Is(err, ErrConnection) {
		t.Errorf("Load() error = %v, want ErrConnection", err)
	}
}

// The end-to-end scenario from the editor contract: editing only the phone
// number of row 0 writes the full row, in header order, with the phone
// normalized.
func TestSave_EditPhoneOnly(t *testing.T) {
	store := newTestStore()
	svc := NewService(store, nil, nil, testOptions())

	original := Member{"이름": "김민수", "직분": "성도", "전화번호": "4165551234", "주소": "Toronto"}
	_, err := svc.Save(context.Background(), SaveRequest{
		RowIndex: 0,
		Original: original,
		Edits:    Member{"전화번호": "6471234567"},
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if len(store.WriteCalls) != 1 {
		t.Fatalf("Save() made %d writes, want 1", len(store.WriteCalls))
	}
	got := store.WriteCalls[0]
	if got.RowIndex != 0 {
		t.Errorf("WriteRow index = %d, want 0", got.RowIndex)
	}
	want := []string{"김민수", "성도", "647-123-4567", "Toronto"}
	if !reflect.DeepEqual(got.Values, want) {
		t.Errorf("WriteRow values = %v, want %v", got.Values, want)
	}
}

func TestSave_AppendAlwaysAppends(t *testing.T) {
	store := newTestStore()
	svc := NewService(store, nil, nil, testOptions())

	_, err := svc.Save(context.Background(), SaveRequest{
		RowIndex: -1,
		Edits:    Member{"이름": "이영희", "직분": "집사"},
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if len(store.WriteCalls) != 1 || store.WriteCalls[0].RowIndex != -1 {
		t.Fatalf("WriteCalls = %v, want single append", store.WriteCalls)
	}
	if len(store.rows) != 3 {
		t.Errorf("store has %d rows, want 3 after append", len(store.rows))
	}
	want := []string{"이영희", "집사", "", ""}
	if !reflect.DeepEqual(store.rows[2], want) {
		t.Errorf("appended row = %v, want %v", store.rows[2], want)
	}
}

func TestSave_KeepsPhotoWithoutUpload(t *testing.T) {
	store := &fakeStore{
		header: Header{"이름", "사진"},
		rows:   [][]string{{"김민수", "https://img.example/kim.jpg"}},
	}
	photos := &fakePhotos{url: "https://img.example/new.jpg"}
	svc := NewService(store, photos, nil, testOptions())

	original := Member{"이름": "김민수", "사진": "https://img.example/kim.jpg"}
	merged, err := svc.Save(context.Background(), SaveRequest{
		RowIndex: 0,
		Original: original,
		Edits:    Member{"이름": "김민수"},
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if photos.Calls != 0 {
		t.Errorf("photo resolver called %d times with no upload, want 0", photos.Calls)
	}
	if merged["사진"] != "https://img.example/kim.jpg" {
		t.Errorf("photo = %q, want original preserved exactly", merged["사진"])
	}
}

func TestSave_UploadedPhotoOverrides(t *testing.T) {
	store := &fakeStore{
		header: Header{"이름", "사진"},
		rows:   [][]string{{"김민수", "https://img.example/old.jpg"}},
	}
	photos := &fakePhotos{url: "https://img.example/new.jpg"}
	svc := NewService(store, photos, nil, testOptions())

	merged, err := svc.Save(context.Background(), SaveRequest{
		RowIndex: 0,
		Original: Member{"이름": "김민수", "사진": "https://img.example/old.jpg"},
		Photo:    []byte{0xFF, 0xD8},
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if merged["사진"] != "https://img.example/new.jpg" {
		t.Errorf("photo = %q, want uploaded URL", merged["사진"])
	}
}

func TestSave_FailedUploadKeepsPrevious(t *testing.T) {
	store := &fakeStore{
		header: Header{"이름", "사진"},
		rows:   [][]string{{"김민수", "https://img.example/old.jpg"}},
	}
	photos := &fakePhotos{url: ""} // host unreachable
	svc := NewService(store, photos, nil, testOptions())

	merged, err := svc.Save(context.Background(), SaveRequest{
		RowIndex: 0,
		Original: Member{"이름": "김민수", "사진": "https://img.example/old.jpg"},
		Photo:    []byte{0xFF, 0xD8},
	})
	if err != nil {
		t.Fatalf("Save() error = %v, upload failure must not fail the save", err)
	}
	if merged["사진"] != "https://img.example/old.jpg" {
		t.Errorf("photo = %q, want previous photo kept", merged["사진"])
	}
}

func TestSave_RowConflict(t *testing.T) {
	store := newTestStore()
	svc := NewService(store, nil, nil, testOptions())

	// Another admin changed the address after this editor loaded row 0.
	stale := Member{"이름": "김민수", "직분": "성도", "전화번호": "4165551234", "주소": "Ottawa"}
	_, err := svc.Save(context.Background(), SaveRequest{
		RowIndex: 0,
		Original: stale,
		Edits:    Member{"전화번호": "6471234567"},
	})
	if !errors.Is(err, ErrRowConflict) {
		t.Fatalf("Save() error = %v, want ErrRowConflict", err)
	}
	if len(store.WriteCalls) != 0 {
		t.Errorf("conflicting save still wrote %d rows, want 0", len(store.WriteCalls))
	}
}

func TestSave_RowOutOfRange(t *testing.T) {
	store := newTestStore()
	svc := NewService(store, nil, nil, testOptions())

	_, err := svc.Save(context.Background(), SaveRequest{
		RowIndex: 99,
		Edits:    Member{"이름": "x"},
	})
	if !errors.Is(err, ErrRowRange) {
		t.Errorf("Save() error = %v, want ErrRowRange", err)
	}
}

func TestSave_WriteFailurePropagates(t *testing.T) {
	store := newTestStore()
	store.writeErr = fmt.Errorf("update: %w", ErrWrite)
	svc := NewService(store, nil, nil, testOptions())

	_, err := svc.Save(context.Background(), SaveRequest{
		RowIndex: -1,
		Edits:    Member{"이름": "x"},
	})
	if !errors.Is(err, ErrWrite) {
		t.Errorf("Save() error = %v, want ErrWrite", err)
	}
}

func TestSave_RecordsAudit(t *testing.T) {
	store := newTestStore()
	audit := &fakeAudit{}
	svc := NewService(store, nil, audit, testOptions())

	original := Member{"이름": "김민수", "직분": "성도", "전화번호": "4165551234", "주소": "Toronto"}
	_, err := svc.Save(context.Background(), SaveRequest{
		RowIndex:  0,
		Original:  original,
		Edits:     Member{"전화번호": "6471234567"},
		SessionID: "sess-1",
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if len(audit.Entries) != 1 {
		t.Fatalf("audit has %d entries, want 1", len(audit.Entries))
	}
	e := audit.Entries[0]
	if e.Action != ActionUpdate || e.RowIndex != 0 || e.SessionID != "sess-1" {
		t.Errorf("audit entry = %+v", e)
	}
	if e.Columns != "전화번호" {
		t.Errorf("audit columns = %q, want 전화번호", e.Columns)
	}
}

func TestSave_UnknownColumnsRoundTrip(t *testing.T) {
	store := &fakeStore{
		header: Header{"이름", "임의컬럼"},
		rows:   [][]string{{"김민수", "custom-value"}},
	}
	svc := NewService(store, nil, nil, testOptions())

	original := Member{"이름": "김민수", "임의컬럼": "custom-value"}
	_, err := svc.Save(context.Background(), SaveRequest{
		RowIndex: 0,
		Original: original,
		Edits:    Member{"이름": "김민수 II"},
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	want := []string{"김민수 II", "custom-value"}
	if !reflect.DeepEqual(store.rows[0], want) {
		t.Errorf("row = %v, want unknown column preserved: %v", store.rows[0], want)
	}
}

func TestMember_RangeCheck(t *testing.T) {
	svc := NewService(newTestStore(), nil, nil, testOptions())

	if _, _, err := svc.Member(context.Background(), 5); !errors.Is(err, ErrRowRange) {
		t.Errorf("Member(5) error = %v, want ErrRowRange", err)
	}
	rec, header, err := svc.Member(context.Background(), 1)
	if err != nil {
		t.Fatalf("Member(1) error = %v", err)
	}
	if rec.Row != 1 || rec.Member["이름"] != "박철수" {
		t.Errorf("Member(1) = %+v", rec)
	}
	if len(header) != 4 {
		t.Errorf("header = %v, want 4 columns", header)
	}
}
