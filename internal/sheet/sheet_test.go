package sheet

import (
	"errors"
	"reflect"
	"testing"

	"google.golang.org/api/googleapi"
)

func TestRowNumber(t *testing.T) {
	tests := []struct {
		rowIndex int
		want     int
	}{
		{0, 2},
		{1, 3},
		{41, 43},
	}
	for _, tt := range tests {
		if got := RowNumber(tt.rowIndex); got != tt.want {
			t.Errorf("RowNumber(%d) = %d, want %d", tt.rowIndex, got, tt.want)
		}
	}
}

func TestRangeRef(t *testing.T) {
	c := &Client{}
	if got := c.rangeRef("A1:ZZ"); got != "A1:ZZ" {
		t.Errorf("rangeRef without sheet name = %q, want bare range", got)
	}

	c.sheetName = "교적부"
	if got := c.rangeRef("A2:ZZ2"); got != "교적부!A2:ZZ2" {
		t.Errorf("rangeRef with sheet name = %q", got)
	}
}

func TestStringRow(t *testing.T) {
	got := stringRow([]interface{}{"김민수", 42, true})
	want := []string{"김민수", "42", "true"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("stringRow() = %v, want %v", got, want)
	}
}

func TestCellRow(t *testing.T) {
	got := cellRow([]string{"a", ""})
	want := []interface{}{"a", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("cellRow() = %v, want %v", got, want)
	}
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"quota 429", &googleapi.Error{Code: 429}, true},
		{"quota 403", &googleapi.Error{Code: 403}, true},
		{"not found", &googleapi.Error{Code: 404}, false},
		{"plain error", errors.New("dial tcp: timeout"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRateLimited(tt.err); got != tt.want {
				t.Errorf("isRateLimited(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestBackoffFor(t *testing.T) {
	if backoffFor(0) >= backoffFor(3) {
		t.Error("backoff should grow with attempts")
	}
	if backoffFor(20) != maxBackoff {
		t.Errorf("backoffFor(20) = %v, want capped at %v", backoffFor(20), maxBackoff)
	}
}
