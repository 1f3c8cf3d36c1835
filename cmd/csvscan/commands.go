package main

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/shapestone/shape-csvstream/internal/scan"
	"github.com/shapestone/shape-csvstream/internal/source"
	"github.com/shapestone/shape-csvstream/pkg/csv"
)

// scanCommand counts, and optionally prints, the rows of each file.
type scanCommand struct {
	app   *app
	files *[]string
	print bool
	limit int64
}

func addScanCommand(k *kingpin.Application, a *app) {
	cmd := &scanCommand{app: a}
	c := k.Command("scan", "Count rows and fields of each file.").Action(cmd.run)
	c.Flag("print", "Print every row, fields separated by tabs.").BoolVar(&cmd.print)
	c.Flag("limit", "Stop printing each file after this many rows (0 prints all).").Int64Var(&cmd.limit)
	cmd.files = c.Arg("file", "CSV files to scan.").Required().Strings()
}

func (cmd *scanCommand) run(*kingpin.ParseContext) error {
	a := cmd.app
	var rowFunc func(string) csv.RowFunc
	if cmd.print {
		rowFunc = cmd.printer
	}

	results := a.scanFiles(*cmd.files, rowFunc)
	failed := 0
	bold := color.New(color.Bold)
	for _, res := range results {
		if res.err != nil {
			failed++
			level.Error(a.logger).Log("msg", "scan failed", "file", res.path, "err", res.err)
			fmt.Fprintf(a.stdout, "%s: %v\n", res.path, res.err)
			continue
		}
		bold.Fprintf(a.stdout, "%s:", res.path)
		fmt.Fprintf(a.stdout, " %s rows, %s fields, %s%s in %v (%s/s)\n",
			humanize.Comma(res.rows),
			humanize.Comma(res.fields),
			humanize.Bytes(uint64(res.bytes)),
			onDisk(res),
			res.took.Round(time.Microsecond),
			humanize.Bytes(rate(res)),
		)
	}
	if err := a.dumpMetrics(); err != nil {
		return err
	}
	if failed > 0 {
		return errors.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

// printer returns a row callback that writes rows of path to stdout.
func (cmd *scanCommand) printer(path string) csv.RowFunc {
	return func(rownum int64, row csv.Row) error {
		if cmd.limit > 0 && rownum > cmd.limit {
			return csv.ErrStop
		}
		fields := make([]string, row.Len())
		for i := range fields {
			if row.IsNull(i) {
				fields[i] = `\N`
				continue
			}
			fields[i] = row.UnsafeString(i)
		}
		_, err := fmt.Fprintf(cmd.app.stdout, "%s:%d\t%s\n", path, rownum, strings.Join(fields, "\t"))
		return err
	}
}

func onDisk(res fileResult) string {
	if res.encoding == source.EncNone {
		return ""
	}
	return fmt.Sprintf(" (%s, %s on disk)", res.encoding, humanize.Bytes(uint64(res.size)))
}

func rate(res fileResult) uint64 {
	secs := res.took.Seconds()
	if secs <= 0 {
		return 0
	}
	return uint64(float64(res.bytes) / secs)
}

// validateCommand reports whether each file tokenizes cleanly.
type validateCommand struct {
	app   *app
	files *[]string
}

func addValidateCommand(k *kingpin.Application, a *app) {
	cmd := &validateCommand{app: a}
	c := k.Command("validate", "Check that each file tokenizes without errors.").Action(cmd.run)
	cmd.files = c.Arg("file", "CSV files to validate.").Required().Strings()
}

func (cmd *validateCommand) run(*kingpin.ParseContext) error {
	a := cmd.app
	results := a.scanFiles(*cmd.files, nil)
	failed := 0
	for _, res := range results {
		if res.err != nil {
			failed++
			fmt.Fprintf(a.stdout, "%s: %v\n", res.path, res.err)
			continue
		}
		fmt.Fprintf(a.stdout, "%s: ok\n", res.path)
	}
	if err := a.dumpMetrics(); err != nil {
		return err
	}
	if failed > 0 {
		return errors.Errorf("%d of %d files invalid", failed, len(results))
	}
	return nil
}

// infoCommand prints the scanner capabilities and effective configuration.
type infoCommand struct {
	app *app
}

func addInfoCommand(k *kingpin.Application, a *app) {
	cmd := &infoCommand{app: a}
	k.Command("info", "Show CPU features and the effective configuration.").Action(cmd.run)
}

func (cmd *infoCommand) run(*kingpin.ParseContext) error {
	a := cmd.app
	f := scan.DetectFeatures()
	bold := color.New(color.Bold)

	bold.Fprintln(a.stdout, "Scanner:")
	fmt.Fprintf(a.stdout, "\tarch: %s, cpus: %d\n", f.Arch, runtime.NumCPU())
	fmt.Fprintf(a.stdout, "\tsse4.2: %v, avx2: %v, neon: %v\n", f.SSE42, f.AVX2, f.NEON)
	fmt.Fprintf(a.stdout, "\tmatcher: %s\n", matcherName(scan.Wide()))

	bold.Fprintln(a.stdout, "Config:")
	out, err := yaml.Marshal(a.cfg)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		fmt.Fprintf(a.stdout, "\t%s\n", line)
	}
	if _, err := a.cfg.ReaderOptions(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

func matcherName(wide bool) string {
	if wide {
		return "swar (2x64-bit lanes)"
	}
	return "scalar"
}

// sniffSample is how much of each file the sniff command looks at.
const sniffSample = 64 << 10

// sniffCommand guesses the delimiter and header presence of each file.
type sniffCommand struct {
	app   *app
	files *[]string
}

func addSniffCommand(k *kingpin.Application, a *app) {
	cmd := &sniffCommand{app: a}
	c := k.Command("sniff", "Guess the delimiter of each file and whether it has a header.").Action(cmd.run)
	cmd.files = c.Arg("file", "CSV files to inspect.").Required().Strings()
}

func (cmd *sniffCommand) run(*kingpin.ParseContext) error {
	a := cmd.app
	for _, path := range *cmd.files {
		sample, err := readSample(a, path)
		if err != nil {
			return err
		}
		s := csv.NewSniffer(sample)
		fmt.Fprintf(a.stdout, "%s: delimiter %q, header %v\n", path, s.DetectDelimiter(), s.HasHeader())
	}
	return nil
}

// readSample returns up to sniffSample decompressed bytes from the start of
// path.
func readSample(a *app, path string) ([]byte, error) {
	f, err := source.Open(a.fs, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, sniffSample)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return buf[:n], nil
}
