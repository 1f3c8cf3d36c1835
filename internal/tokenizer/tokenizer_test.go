package tokenizer

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// null is how tests render a null field.
const null = "<NULL>"

func rowValues(r Row) []string {
	out := make([]string, r.Len())
	for i := range out {
		if r.IsNull(i) {
			out[i] = null
			continue
		}
		out[i] = r.String(i)
	}
	return out
}

// parseAll feeds input through Feed and finishes with FeedLast.
func parseAll(t *testing.T, cfg Config, input string) ([][]string, error) {
	t.Helper()
	tok, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	buf := []byte(input)
	rows := [][]string{}
	p := 0
	for p < len(buf) {
		n, row, err := tok.Feed(buf[p:])
		if err != nil {
			return rows, err
		}
		if n == 0 {
			break
		}
		rows = append(rows, rowValues(row))
		p += n
	}
	if p < len(buf) {
		n, row, err := tok.FeedLast(buf[p:])
		if err != nil {
			return rows, err
		}
		if n > 0 {
			rows = append(rows, rowValues(row))
		}
		p += n
	}
	if p != len(buf) {
		return rows, tok.Fail(KindExtraTrailingInput, "extra data after last row")
	}
	return rows, nil
}

func TestTokenizer_Rows(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		input string
		want  [][]string
	}{
		{
			name:  "simple row",
			input: "a,b,c\n",
			want:  [][]string{{"a", "b", "c"}},
		},
		{
			name:  "quoted delimiter",
			input: "\"a,b\",c\n",
			want:  [][]string{{"a,b", "c"}},
		},
		{
			name:  "doubled quote",
			input: "\"a\"\"b\",c\n",
			want:  [][]string{{`a"b`, "c"}},
		},
		{
			name:  "missing final newline",
			input: "a,b",
			want:  [][]string{{"a", "b"}},
		},
		{
			name:  "CRLF rows",
			input: "a,b\r\nc,d\r\n",
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "empty fields",
			input: ",,\n",
			want:  [][]string{{"", "", ""}},
		},
		{
			name:  "empty line is a row with one empty field",
			input: "a\n\nb\n",
			want:  [][]string{{"a"}, {""}, {"b"}},
		},
		{
			name:  "embedded newlines and CR inside quotes",
			input: "\"line1\nline2\r\nline3\",x\n",
			want:  [][]string{{"line1\nline2\r\nline3", "x"}},
		},
		{
			name:  "empty quoted field",
			input: "\"\",a\n",
			want:  [][]string{{"", "a"}},
		},
		{
			name:  "only doubled quotes",
			input: "\"\"\"\"\"\"\n",
			want:  [][]string{{`""`}},
		},
		{
			name:  "long quoted field with escapes spanning windows",
			input: "\"" + strings.Repeat("0123456789", 5) + "\"\"" + strings.Repeat("abcdefghij", 4) + "\"\"end\"\n",
			want:  [][]string{{strings.Repeat("0123456789", 5) + `"` + strings.Repeat("abcdefghij", 4) + `"end`}},
		},
		{
			name:  "backslash escape",
			cfg:   Config{Escape: '\\'},
			input: "\"a\\\"b\",\"c\\\\d\"\n",
			want:  [][]string{{`a"b`, `c\d`}},
		},
		{
			name:  "backslash escaped delimiter and newline",
			cfg:   Config{Escape: '\\'},
			input: "\"x\\,y\\\nz\"\n",
			want:  [][]string{{"x,y\nz"}},
		},
		{
			name:  "tab delimiter and single quote",
			cfg:   Config{Quote: '\'', Delimiter: '\t'},
			input: "'a\tb'\tc\n",
			want:  [][]string{{"a\tb", "c"}},
		},
		{
			name:  "null marker",
			cfg:   Config{Null: "NULL"},
			input: "NULL,x,,NULLS\n",
			want:  [][]string{{null, "x", "", "NULLS"}},
		},
		{
			name:  "quoted null marker is literal",
			cfg:   Config{Null: "NULL"},
			input: "\"NULL\",NULL\n",
			want:  [][]string{{"NULL", null}},
		},
		{
			name:  "empty null marker never matches",
			input: ",\"\",\n",
			want:  [][]string{{"", "", ""}},
		},
		{
			name:  "backslash N null marker",
			cfg:   Config{Null: "\\N"},
			input: "\\N,,\n",
			want:  [][]string{{null, "", ""}},
		},
		{
			name:  "final row quoted without newline",
			input: "a\n\"b\"\"c\"",
			want:  [][]string{{"a"}, {`b"c`}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, scalar := range []bool{false, true} {
				cfg := tt.cfg
				cfg.Scalar = scalar
				got, err := parseAll(t, cfg, tt.input)
				if err != nil {
					t.Fatalf("scalar=%v: unexpected error = %v", scalar, err)
				}
				if !reflect.DeepEqual(got, tt.want) {
					t.Errorf("scalar=%v: rows = %q, want %q", scalar, got, tt.want)
				}
			}
		})
	}
}

func TestTokenizer_SimpleRowProperty(t *testing.T) {
	inputs := []string{"x", "a,b", "alpha,beta,gamma,delta", ",", "1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16,17"}
	for _, in := range inputs {
		got, err := parseAll(t, DefaultConfig(), in+"\n")
		if err != nil {
			t.Fatalf("%q: error = %v", in, err)
		}
		want := strings.Split(in, ",")
		if len(got) != 1 || !reflect.DeepEqual(got[0], want) {
			t.Errorf("%q: rows = %q, want [%q]", in, got, want)
		}
		if len(got[0]) != strings.Count(in, ",")+1 {
			t.Errorf("%q: %d fields, want delimiters+1", in, len(got[0]))
		}
	}
}

func TestTokenizer_Errors(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		input string
		kind  Kind
		want  Error
	}{
		{
			name:  "lone CR at end of input",
			input: "a,b\r",
			kind:  KindBadLineEnding,
			want:  Error{Line: 1, Char: 3, Row: 1, Field: 2},
		},
		{
			name:  "lone CR inside the stream",
			input: "a,b\nc\rd\n",
			kind:  KindBadLineEnding,
			want:  Error{Line: 2, Char: 5, Row: 2, Field: 1},
		},
		{
			name:  "garbage after closing quote",
			input: "\"ab\"c,d\n",
			kind:  KindBadQuote,
			want:  Error{Line: 1, Char: 4, Row: 1, Field: 1},
		},
		{
			name:  "garbage after closing quote in later field",
			input: "x\n\"multi\nline\",\"q\"z\n",
			kind:  KindBadQuote,
			want:  Error{Line: 3, Char: 18, Row: 2, Field: 2},
		},
		{
			name:  "quote inside unquoted field",
			input: "ab\"c\n",
			kind:  KindBadLineEnding,
			want:  Error{Line: 1, Char: 2, Row: 1, Field: 1},
		},
		{
			name:  "unterminated quote",
			input: "a\n\"open",
			kind:  KindExtraTrailingInput,
			want:  Error{Line: 2, Char: 2, Row: 2},
		},
		{
			name:  "too many fields",
			cfg:   Config{MaxFields: 2},
			input: "a,b\nc,d,e\n",
			kind:  KindOutOfMemory,
			want:  Error{Line: 2, Char: 8, Row: 2, Field: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseAll(t, tt.cfg, tt.input)
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if perr.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", perr.Kind, tt.kind)
			}
			if !errors.Is(err, tt.kind.sentinel()) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.kind.sentinel())
			}
			got := Error{Line: perr.Line, Char: perr.Char, Row: perr.Row, Field: perr.Field}
			if got != tt.want {
				t.Errorf("position = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTokenizer_ErrIsLatest(t *testing.T) {
	tok, _ := New(DefaultConfig())
	if tok.Err() != nil {
		t.Fatal("fresh tokenizer has an error")
	}
	_, _, err1 := tok.Feed([]byte("\"a\"b\n"))
	_, _, err2 := tok.Feed([]byte("a\rb\n"))
	if err1 == nil || err2 == nil {
		t.Fatalf("expected two errors, got %v, %v", err1, err2)
	}
	if tok.Err().Kind != KindBadLineEnding {
		t.Errorf("Err().Kind = %v, want %v", tok.Err().Kind, KindBadLineEnding)
	}
}

func TestTokenizer_IncompleteLeavesState(t *testing.T) {
	tok, _ := New(DefaultConfig())
	if n, _, err := tok.Feed([]byte("a,b\n")); n != 4 || err != nil {
		t.Fatalf("Feed() = %d, %v", n, err)
	}
	line, char, row := tok.Line(), tok.Char(), tok.Row()

	for _, partial := range []string{"c,d", "\"open,", "x\r", "\"q\"", "\"esc\"\"", ","} {
		input := []byte(partial)
		orig := string(input)
		n, _, err := tok.Feed(input)
		if n != 0 || err != nil {
			t.Errorf("Feed(%q) = %d, %v; want 0, nil", partial, n, err)
		}
		if string(input) != orig {
			t.Errorf("Feed(%q) modified an incomplete buffer", partial)
		}
		if tok.Line() != line || tok.Char() != char || tok.Row() != row {
			t.Errorf("Feed(%q) moved counters", partial)
		}
	}
}

func TestTokenizer_ParseRowDoesNotWrite(t *testing.T) {
	tok, _ := New(Config{Null: "N"})
	input := []byte("\"a\"\"b\",N,c\n")
	orig := string(input)
	n, err := tok.ParseRow(input)
	if err != nil || n != len(input) {
		t.Fatalf("ParseRow() = %d, %v", n, err)
	}
	if string(input) != orig {
		t.Fatalf("ParseRow() modified buf: %q", input)
	}
	tok.Finalize(input)
	if string(input) == orig {
		t.Fatal("Finalize() did not modify buf")
	}
}

func TestTokenizer_Counters(t *testing.T) {
	tok, _ := New(DefaultConfig())
	input := []byte("\"a\nb\",c\nd\r\n")
	n, _, err := tok.Feed(input)
	if err != nil || n != 8 {
		t.Fatalf("Feed() = %d, %v", n, err)
	}
	if tok.Line() != 2 || tok.Char() != 8 || tok.Row() != 1 {
		t.Errorf("counters = %d/%d/%d, want 2/8/1", tok.Line(), tok.Char(), tok.Row())
	}
	m, _, err := tok.Feed(input[n:])
	if err != nil || m != 3 {
		t.Fatalf("Feed() = %d, %v", m, err)
	}
	if tok.Line() != 3 || tok.Char() != 11 || tok.Row() != 2 {
		t.Errorf("counters = %d/%d/%d, want 3/11/2", tok.Line(), tok.Char(), tok.Row())
	}
}

func TestTokenizer_FeedLast(t *testing.T) {
	t.Run("reports original byte count", func(t *testing.T) {
		tok, _ := New(DefaultConfig())
		input := []byte("a,b")
		n, row, err := tok.FeedLast(input)
		if err != nil || n != 3 {
			t.Fatalf("FeedLast() = %d, %v; want 3", n, err)
		}
		if got := rowValues(row); !reflect.DeepEqual(got, []string{"a", "b"}) {
			t.Errorf("row = %q", got)
		}
		if string(input) != "a,b" {
			t.Errorf("FeedLast() modified caller buffer: %q", input)
		}
		if tok.Char() != 3 {
			t.Errorf("Char() = %d, want 3", tok.Char())
		}
	})

	t.Run("empty input", func(t *testing.T) {
		tok, _ := New(DefaultConfig())
		n, row, err := tok.FeedLast(nil)
		if n != 0 || err != nil || row.Len() != 0 {
			t.Errorf("FeedLast(nil) = %d, %v, %d fields", n, err, row.Len())
		}
	})

	t.Run("terminated final row is parsed in place", func(t *testing.T) {
		tok, _ := New(DefaultConfig())
		n, _, err := tok.FeedLast([]byte("x,y\n"))
		if err != nil || n != 4 {
			t.Errorf("FeedLast() = %d, %v; want 4", n, err)
		}
	})

	t.Run("spill buffer is replaced each call", func(t *testing.T) {
		tok, _ := New(DefaultConfig())
		_, first, _ := tok.FeedLast([]byte("first"))
		got := first.String(0)
		spill := tok.spill
		_, second, _ := tok.FeedLast([]byte("second"))
		if &spill[0] == &tok.spill[0] {
			t.Error("spill buffer was reused")
		}
		if got != "first" || second.String(0) != "second" {
			t.Errorf("rows = %q, %q", got, second.String(0))
		}
		if string(spill[:5]) != "first" {
			t.Errorf("earlier spill buffer changed: %q", spill)
		}
	})
}

func TestTokenizer_FieldCapacityGrows(t *testing.T) {
	tok, _ := New(DefaultConfig())
	if tok.Capacity() != fieldGrowth {
		t.Fatalf("initial Capacity() = %d", tok.Capacity())
	}
	wide := strings.Repeat("x,", 150) + "x\n"
	n, row, err := tok.Feed([]byte(wide))
	if err != nil || n != len(wide) {
		t.Fatalf("Feed() = %d, %v", n, err)
	}
	if row.Len() != 151 {
		t.Errorf("Len() = %d, want 151", row.Len())
	}
	if tok.Capacity() != 3*fieldGrowth {
		t.Errorf("Capacity() = %d, want %d", tok.Capacity(), 3*fieldGrowth)
	}
	if _, _, err := tok.Feed([]byte("a\n")); err != nil {
		t.Fatal(err)
	}
	if tok.Capacity() != 3*fieldGrowth {
		t.Errorf("Capacity() shrank to %d", tok.Capacity())
	}
}

func TestTokenizer_FinalizeOncePerField(t *testing.T) {
	tok, _ := New(DefaultConfig())
	input := []byte("\"a\"\"\"\"b\",c\nd\n")
	n, row, err := tok.Feed(input)
	if err != nil {
		t.Fatal(err)
	}
	if got := row.String(0); got != `a""b` {
		t.Errorf("field = %q, want %q", got, `a""b`)
	}
	if _, _, err := tok.Feed(input[n:]); err != nil {
		t.Fatal(err)
	}
	if tok.FieldsFinalized() != 3 {
		t.Errorf("FieldsFinalized() = %d, want 3", tok.FieldsFinalized())
	}
}

func TestTokenizer_Terminators(t *testing.T) {
	tok, _ := New(DefaultConfig())
	input := []byte("ab,\"c\"\"d\"\n")
	if _, _, err := tok.Feed(input); err != nil {
		t.Fatal(err)
	}
	// "ab" is terminated over the delimiter, c"d is squeezed then terminated
	if input[2] != 0 {
		t.Errorf("byte after first field = %q, want NUL", input[2])
	}
	if input[4+3] != 0 {
		t.Errorf("byte after squeezed field = %q, want NUL", input[7])
	}
}

func TestRow_Accessors(t *testing.T) {
	buf := []byte("abc\x00NULL\x00")
	row := NewRow(buf, []Field{
		{Start: 0, Len: 3, Esc: noEscape},
		{Start: 4, Len: 4, Esc: noEscape, Null: true},
	})
	if row.Len() != 2 {
		t.Fatalf("Len() = %d", row.Len())
	}
	if row.UnsafeString(0) != "abc" || row.String(0) != "abc" {
		t.Errorf("field 0 = %q", row.String(0))
	}
	if row.Bytes(1) != nil || !row.IsNull(1) || row.String(1) != "" {
		t.Error("null field not reported as null")
	}
	if b := row.Bytes(0); cap(b) != 3 {
		t.Errorf("Bytes() cap = %d, want 3", cap(b))
	}
	if got := row.Strings(); !reflect.DeepEqual(got, []string{"abc", ""}) {
		t.Errorf("Strings() = %q", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: Config{}},
		{name: "explicit defaults", cfg: DefaultConfig()},
		{name: "semicolon", cfg: Config{Delimiter: ';'}},
		{name: "delimiter equals quote", cfg: Config{Delimiter: '"'}, wantErr: true},
		{name: "delimiter equals escape", cfg: Config{Escape: ';', Delimiter: ';'}, wantErr: true},
		{name: "newline delimiter", cfg: Config{Delimiter: '\n'}, wantErr: true},
		{name: "CR quote", cfg: Config{Quote: '\r'}, wantErr: true},
		{name: "max null marker", cfg: Config{Null: strings.Repeat("n", MaxNullLen)}},
		{name: "null marker too long", cfg: Config{Null: strings.Repeat("n", MaxNullLen+1)}, wantErr: true},
		{name: "negative field limit", cfg: Config{MaxFields: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrBadParameter) {
				t.Errorf("Validate() error = %v, want ErrBadParameter", err)
			}
			if _, nerr := New(tt.cfg); (nerr != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", nerr, tt.wantErr)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindNone, "none"},
		{KindBadParameter, "bad_parameter"},
		{KindOutOfMemory, "out_of_memory"},
		{KindBadQuote, "bad_quote"},
		{KindBadLineEnding, "bad_line_ending"},
		{KindExtraTrailingInput, "extra_trailing_input"},
		{Kind(42), "Kind(42)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}
