package main

import (
	"bytes"
	"fmt"

	"github.com/c2h5oh/datasize"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/shapestone/shape-csvstream/pkg/csv"
)

// Config is the csvscan configuration file. Flags given on the command line
// override it.
type Config struct {
	Delimiter string `yaml:"delimiter"`
	Quote     string `yaml:"quote"`
	Escape    string `yaml:"escape"`
	Null      string `yaml:"null"`
	MaxFields int    `yaml:"max_fields"`

	Buffer BufferConfig `yaml:"buffer"`

	// Concurrency is the number of files scanned at once.
	Concurrency int `yaml:"concurrency"`
	// Mmap maps uncompressed local files instead of reading them.
	Mmap bool `yaml:"mmap"`
}

// BufferConfig sizes the stream buffer. Values accept units, e.g. "64KB".
type BufferConfig struct {
	Initial datasize.ByteSize `yaml:"initial"`
	GrowBy  datasize.ByteSize `yaml:"grow_by"`
	Max     datasize.ByteSize `yaml:"max"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Delimiter: ",",
		Quote:     `"`,
		Buffer: BufferConfig{
			Initial: datasize.MB,
			GrowBy:  10 * datasize.MB,
		},
		Concurrency: 4,
	}
}

// LoadConfig reads the YAML file at path on top of DefaultConfig. Unknown
// keys are rejected.
func LoadConfig(fs afero.Fs, path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// ReaderOptions converts the configuration to parser options.
func (c Config) ReaderOptions() (csv.ReaderOptions, error) {
	opts := csv.DefaultReaderOptions()
	var err error
	if opts.Comma, err = special("delimiter", c.Delimiter, opts.Comma); err != nil {
		return opts, err
	}
	if opts.Quote, err = special("quote", c.Quote, opts.Quote); err != nil {
		return opts, err
	}
	if opts.Escape, err = special("escape", c.Escape, opts.Quote); err != nil {
		return opts, err
	}
	opts.Null = c.Null
	opts.MaxFields = c.MaxFields
	opts.BufferSize = int(c.Buffer.Initial.Bytes())
	opts.GrowBy = int(c.Buffer.GrowBy.Bytes())
	opts.MaxBufferSize = int(c.Buffer.Max.Bytes())
	return opts, opts.Validate()
}

// special parses a one-byte setting. `\t` is accepted for tab.
func special(name, s string, def rune) (rune, error) {
	switch s {
	case "":
		return def, nil
	case `\t`:
		return '\t', nil
	}
	if len(s) != 1 {
		return 0, fmt.Errorf("%s must be a single byte, got %q", name, s)
	}
	return rune(s[0]), nil
}
