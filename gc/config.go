package gc

import (
	"io"

	"github.com/go-kit/log"
	"gopkg.in/yaml.v3"

	"github.com/cloudfly/conservgc/internal/sysmem"
)

// Config carries the tunables Start accepts, the same way
// friggdb.Config is handed to friggdb.New: a plain struct with yaml
// tags, resolved against documented zero-value defaults rather than
// requiring every field to be filled in.
type Config struct {
	InitialCapacity    uint64  `yaml:"initial_capacity"`
	MinCapacity        uint64  `yaml:"min_capacity"`
	DownsizeLoadFactor float64 `yaml:"downsize_load_factor"`
	UpsizeLoadFactor   float64 `yaml:"upsize_load_factor"`
	SweepFactor        float64 `yaml:"sweep_factor"`

	// Backend and Logger are runtime collaborators, not serializable
	// tuning knobs; a nil Backend resolves to sysmem.NewDefault() and
	// a nil Logger to log.NewNopLogger(), exactly as friggdb.New picks
	// a backend off cfg.Backend and accepts a separate logger argument.
	Backend sysmem.Allocator `yaml:"-"`
	Logger  log.Logger       `yaml:"-"`
}

// LoadConfig unmarshals a Config from YAML, the same shape a host
// program would use to load friggdb.Config from a file on disk.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, err
	}
	return cfg, nil
}
