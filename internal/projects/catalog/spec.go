package catalog

import (
	"gopkg.in/yaml.v3"
)

// specFile is the subset of an ai-generated specification the catalog reads.
type specFile struct {
	Meta struct {
		Version        string `yaml:"version"`
		CreatedAt      string `yaml:"created_at"`
		PipelineStatus string `yaml:"pipeline_status"`
	} `yaml:"meta"`
	Project struct {
		Type        string      `yaml:"type"`
		Name        string      `yaml:"name"`
		Description description `yaml:"description"`
	} `yaml:"project"`
	MarketAnalysis *struct {
		TAM string `yaml:"tam"`
		SAM string `yaml:"sam"`
		SOM string `yaml:"som"`
	} `yaml:"market_analysis"`
	Features *struct {
		Core     []yaml.Node `yaml:"core"`
		Advanced []yaml.Node `yaml:"advanced"`
	} `yaml:"features"`
}

// description accepts either a plain string or a mapping with
// elevator_pitch / detailed keys.
type description struct {
	Text string
}

func (d *description) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		d.Text = value.Value
		return nil
	case yaml.MappingNode:
		var m struct {
			ElevatorPitch string `yaml:"elevator_pitch"`
			Detailed      string `yaml:"detailed"`
		}
		if err := value.Decode(&m); err != nil {
			return err
		}
		d.Text = m.ElevatorPitch
		if d.Text == "" {
			d.Text = m.Detailed
		}
		return nil
	default:
		return nil
	}
}

func parseSpec(data []byte) (*specFile, error) {
	var s specFile
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
