// Command csvscan tokenizes CSV files and reports their rows, or the first
// error in each.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/afero"

	"github.com/shapestone/shape-csvstream/pkg/csv"
)

// app holds what every command shares: parsed configuration, the logger and
// the metrics registry.
type app struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer

	configFile  string
	logLevel    string
	metrics     bool
	concurrency int
	delimiter   string
	null        string
	mmap        bool

	cfg      Config
	logger   log.Logger
	registry *prometheus.Registry
}

func newApp(fs afero.Fs, stdout, stderr io.Writer) (*kingpin.Application, *app) {
	a := &app{fs: fs, stdout: stdout, stderr: stderr}
	k := kingpin.New("csvscan", "Tokenize CSV files and report rows or errors.")
	k.Writers(stdout, stderr)
	k.Flag("config.file", "YAML configuration file.").StringVar(&a.configFile)
	k.Flag("log.level", "Only log messages with the given severity or above.").Default("warn").EnumVar(&a.logLevel, "debug", "info", "warn", "error")
	k.Flag("metrics", "Print parser metrics in Prometheus text format when done.").BoolVar(&a.metrics)
	k.Flag("concurrency", "Number of files processed at once (overrides config).").IntVar(&a.concurrency)
	k.Flag("delimiter", "Field delimiter (overrides config).").StringVar(&a.delimiter)
	k.Flag("null", "Null marker (overrides config).").StringVar(&a.null)
	k.Flag("mmap", "Memory-map uncompressed local files.").BoolVar(&a.mmap)
	k.PreAction(a.setup)

	addScanCommand(k, a)
	addValidateCommand(k, a)
	addInfoCommand(k, a)
	addSniffCommand(k, a)
	return k, a
}

// setup loads the configuration and applies flag overrides.
func (a *app) setup(*kingpin.ParseContext) error {
	a.cfg = DefaultConfig()
	if a.configFile != "" {
		cfg, err := LoadConfig(a.fs, a.configFile)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.concurrency > 0 {
		a.cfg.Concurrency = a.concurrency
	}
	if a.delimiter != "" {
		a.cfg.Delimiter = a.delimiter
	}
	if a.null != "" {
		a.cfg.Null = a.null
	}
	if a.mmap {
		a.cfg.Mmap = true
	}
	if a.cfg.Concurrency < 1 {
		a.cfg.Concurrency = 1
	}

	a.logger = newLogger(a.stderr, a.logLevel)
	a.registry = prometheus.NewRegistry()
	return nil
}

// readerOptions returns parser options wired to the app's logger and
// metrics.
func (a *app) readerOptions(metrics *csv.Metrics) (csv.ReaderOptions, error) {
	opts, err := a.cfg.ReaderOptions()
	if err != nil {
		return opts, err
	}
	opts.Logger = a.logger
	opts.Metrics = metrics
	return opts, nil
}

// dumpMetrics writes the registry in text exposition format.
func (a *app) dumpMetrics() error {
	if !a.metrics {
		return nil
	}
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(a.stdout, mf); err != nil {
			return err
		}
	}
	return nil
}

func newLogger(w io.Writer, lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, levelOption(lvl))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	return logger
}

func levelOption(lvl string) level.Option {
	switch lvl {
	case "debug":
		return level.AllowDebug()
	case "info":
		return level.AllowInfo()
	case "error":
		return level.AllowError()
	default:
		return level.AllowWarn()
	}
}

func main() {
	k, _ := newApp(afero.NewOsFs(), os.Stdout, os.Stderr)
	if _, err := k.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "csvscan: %v\n", err)
		os.Exit(1)
	}
}
