package csv

import (
	"github.com/shapestone/shape-core/pkg/ast"

	"github.com/shapestone/shape-csvstream/internal/stream"
	"github.com/shapestone/shape-csvstream/internal/tokenizer"
)

// parseAST reads every record into an *ast.ArrayDataNode of record nodes.
func parseAST(fill stream.FillFunc, opts ReaderOptions) (ast.SchemaNode, error) {
	s := &Scanner{fill: fill, opts: opts, raw: true}
	records := make([]ast.SchemaNode, 0, 16)
	for s.Scan() {
		records = append(records, recordNode(s.row, s.rowLine, s.rowChar))
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return ast.NewArrayDataNode(records, ast.ZeroPosition()), nil
}

// recordNode converts one row. Field positions carry the absolute byte
// offset, the line the record starts on, and the 1-indexed byte column of
// the field within its record. Null fields become literals with a nil value.
func recordNode(row tokenizer.Row, line, char int64) *ast.ArrayDataNode {
	fields := make([]ast.SchemaNode, row.Len())
	for i := range fields {
		f := row.Field(i)
		pos := ast.NewPosition(int(char)+f.Start, int(line), f.Start+1)
		if f.Null {
			fields[i] = ast.NewLiteralNode(nil, pos)
			continue
		}
		fields[i] = ast.NewLiteralNode(row.String(i), pos)
	}
	return ast.NewArrayDataNode(fields, ast.NewPosition(int(char), int(line), 1))
}

// validate runs the tokenizer over the whole input without building values.
func validate(fill stream.FillFunc, opts ReaderOptions) error {
	s := &Scanner{fill: fill, opts: opts, raw: true}
	for s.Scan() {
	}
	return s.Err()
}
