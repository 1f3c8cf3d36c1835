package csv_test

import (
	"strings"
	"testing"

	"github.com/shapestone/shape-csvstream/pkg/csv"
)

func TestSnifferDetectDelimiter(t *testing.T) {
	tests := []struct {
		name     string
		sample   string
		expected rune
	}{
		{
			name:     "comma delimited",
			sample:   "a,b,c\n1,2,3\n4,5,6",
			expected: ',',
		},
		{
			name:     "tab delimited",
			sample:   "a\tb\tc\n1\t2\t3\n4\t5\t6",
			expected: '\t',
		},
		{
			name:     "semicolon delimited",
			sample:   "a;b;c\n1;2;3\n4;5;6\n",
			expected: ';',
		},
		{
			name:     "pipe delimited",
			sample:   "a|b|c\n1|2|3\n4|5|6\n",
			expected: '|',
		},
		{
			name:     "empty sample defaults to comma",
			sample:   "",
			expected: ',',
		},
		{
			name:     "single line comma",
			sample:   "a,b,c",
			expected: ',',
		},
		{
			name:     "mixed but more commas",
			sample:   "a,b,c\n1,2,3\n4;5;6\n",
			expected: ',',
		},
		{
			name:     "quoted commas ignored",
			sample:   "\"a,b\";c;d\n1;2;3\n",
			expected: ';',
		},
		{
			name:     "quoted newline keeps records aligned",
			sample:   "a|b\n\"x\ny\"|z\n1|2\n",
			expected: '|',
		},
		{
			name:     "truncated last record ignored",
			sample:   "a;b\n1;2\n3;4\n5",
			expected: ';',
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sniffer := csv.NewSniffer([]byte(tt.sample))
			got := sniffer.DetectDelimiter()
			if got != tt.expected {
				t.Errorf("DetectDelimiter() = %q, want %q", got, tt.expected)
			}
			if opts := sniffer.ReaderOptions(); opts.Comma != tt.expected {
				t.Errorf("ReaderOptions().Comma = %q, want %q", opts.Comma, tt.expected)
			}
		})
	}
}

func TestSnifferHasHeader(t *testing.T) {
	tests := []struct {
		name     string
		sample   string
		expected bool
	}{
		{
			name:     "clear header with identifiers",
			sample:   "name,age,email\nJohn,30,john@example.com",
			expected: true,
		},
		{
			name:     "numeric header looks like data",
			sample:   "123,456,789\n111,222,333",
			expected: false,
		},
		{
			name:     "snake_case header",
			sample:   "first_name,last_name,email_address\nJohn,Doe,john@example.com",
			expected: true,
		},
		{
			name:     "camelCase header",
			sample:   "firstName,lastName,emailAddress\nJohn,Doe,john@example.com",
			expected: true,
		},
		{
			name:     "single line",
			sample:   "a,b,c",
			expected: false,
		},
		{
			name:     "Title Case header",
			sample:   "First Name,Last Name,Email\nJohn,Doe,john@example.com",
			expected: true,
		},
		{
			name:     "data with dates",
			sample:   "2024-01-15,John,30\n2024-01-16,Jane,25",
			expected: false,
		},
		{
			name:     "tab separated header",
			sample:   "id\tname\tdate\n1\tJohn\t2024-01-15\n",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := csv.NewSniffer([]byte(tt.sample)).HasHeader()
			if got != tt.expected {
				t.Errorf("HasHeader() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestHeaderConverters(t *testing.T) {
	tests := []struct {
		name      string
		converter csv.HeaderConverter
		input     string
		expected  string
	}{
		{"lowercase simple", csv.LowercaseHeader, "FirstName", "firstname"},
		{"uppercase simple", csv.UppercaseHeader, "firstName", "FIRSTNAME"},
		{"snake_case from camelCase", csv.SnakeCaseHeader, "firstName", "first_name"},
		{"snake_case from PascalCase", csv.SnakeCaseHeader, "FirstName", "first_name"},
		{"snake_case with spaces", csv.SnakeCaseHeader, "First Name", "first_name"},
		{"snake_case already snake", csv.SnakeCaseHeader, "first_name", "first_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.converter(tt.input)
			if got != tt.expected {
				t.Errorf("converter(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestScannerHeaderConverter(t *testing.T) {
	s := csv.NewScanner(strings.NewReader("First Name,lastName\nAda,Lovelace\n")).
		SetHasHeaders(true).
		SetHeaderConverter(csv.SnakeCaseHeader)

	if !s.Scan() {
		t.Fatalf("Scan() = false, err = %v", s.Err())
	}
	if got := s.Headers(); strings.Join(got, ",") != "first_name,last_name" {
		t.Errorf("Headers() = %q", got)
	}
	if v, ok := s.Record().GetByName("last_name"); !ok || v != "Lovelace" {
		t.Errorf("GetByName(last_name) = %q, %v", v, ok)
	}
}
