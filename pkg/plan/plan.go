package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yurifrl/xtbpp/pkg/config"
	"github.com/yurifrl/xtbpp/pkg/converter"
)

type Plan struct {
	OutputDir   string     `yaml:"output_dir"`
	BrokerTag   string     `yaml:"broker_tag"`
	FullColumns bool       `yaml:"full_columns"`
	Workbooks   []Workbook `yaml:"workbooks"`
}

type Workbook struct {
	File  string   `yaml:"file"`
	Modes []string `yaml:"modes"`
	// Output overrides the generated file name.
	Output string `yaml:"output"`

	modes []converter.Mode
}

// ParsedModes returns the validated modes, default when none were listed.
func (w Workbook) ParsedModes() []converter.Mode {
	if len(w.modes) == 0 {
		return []converter.Mode{converter.ModeDefault}
	}
	return w.modes
}

func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if len(p.Workbooks) == 0 {
		return nil, fmt.Errorf("plan has no workbooks")
	}

	p.OutputDir = ExpandHome(p.OutputDir)
	for i := range p.Workbooks {
		w := &p.Workbooks[i]
		if w.File == "" {
			return nil, fmt.Errorf("workbook %d has no file", i+1)
		}
		w.File = ExpandHome(w.File)
		if len(w.Modes) == 0 {
			continue
		}
		modes, err := converter.ParseModes(w.Modes)
		if err != nil {
			return nil, fmt.Errorf("workbook %d: %w", i+1, err)
		}
		w.modes = modes
	}
	return &p, nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func (p *Plan) Print() {
	fmt.Printf("Output dir: %s\n", p.OutputDir)
	for i, w := range p.Workbooks {
		fmt.Printf("[%d] file=%s modes=%v\n", i+1, w.File, w.ParsedModes())
	}
}

// Configure returns a copy of cfg with the plan's settings applied.
func (p *Plan) Configure(cfg *config.Config) *config.Config {
	out := *cfg
	if p.OutputDir != "" {
		out.OutputDir = p.OutputDir
	}
	if p.BrokerTag != "" {
		out.BrokerTag = p.BrokerTag
	}
	if p.FullColumns {
		out.FullColumns = true
	}
	return &out
}
