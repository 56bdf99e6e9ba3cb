package directory

import "testing"

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"4165551234", "416-555-1234"},
		{"(416) 555-1234", "416-555-1234"},
		{"416.555.1234", "416-555-1234"},
		{"01012345678", "010-1234-5678"},
		{"010-1234-5678", "010-1234-5678"},
		{"abc", "abc"},
		{"12345", "12345"},
		{"123456789012", "123456789012"},
		{"ext. 402", "ext. 402"},
	}

	for _, tt := range tests {
		if got := FormatPhone(tt.in); got != tt.want {
			t.Errorf("FormatPhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPhone_Idempotent(t *testing.T) {
	inputs := []string{
		"", "4165551234", "416-555-1234", "01012345678", "abc", "555", "(647) 123 4567",
	}
	for _, in := range inputs {
		once := FormatPhone(in)
		twice := FormatPhone(once)
		if once != twice {
			t.Errorf("FormatPhone not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
