package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DatasetDefaults are catalog fields shared by every published dataset.
type DatasetDefaults struct {
	OwnerOrg         string `yaml:"owner_org"`
	License          string `yaml:"license_id"`
	Methodology      string `yaml:"methodology"`
	MethodologyOther string `yaml:"methodology_other"`
	Caveats          string `yaml:"caveats"`
	Source           string `yaml:"dataset_source"`
	Subnational      bool   `yaml:"subnational"`
	Private          bool   `yaml:"private"`
}

// LoadDatasetDefaults reads dataset defaults from a YAML file.
func LoadDatasetDefaults(path string) (DatasetDefaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DatasetDefaults{}, fmt.Errorf("read dataset defaults: %w", err)
	}
	var d DatasetDefaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return DatasetDefaults{}, fmt.Errorf("parse dataset defaults %s: %w", path, err)
	}
	if d.OwnerOrg == "" {
		return DatasetDefaults{}, fmt.Errorf("dataset defaults %s: owner_org is required", path)
	}
	return d, nil
}

// SMTPConfig configures failure mail.
type SMTPConfig struct {
	Host       string   `yaml:"host"`
	Port       int      `yaml:"port"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	Sender     string   `yaml:"sender"`
	Recipients []string `yaml:"recipients"`
	Subject    string   `yaml:"subject"`
}

// LoadSMTPConfig reads the mail settings. A missing file yields (nil, nil):
// failure mail is optional.
func LoadSMTPConfig(path string) (*SMTPConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read smtp config: %w", err)
	}
	c := &SMTPConfig{Port: 25, Subject: "UNOSAT HDX ETL failure"}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse smtp config %s: %w", path, err)
	}
	if c.Host == "" {
		return nil, fmt.Errorf("smtp config %s: host is required", path)
	}
	if c.Sender == "" || len(c.Recipients) == 0 {
		return nil, fmt.Errorf("smtp config %s: sender and recipients are required", path)
	}
	return c, nil
}
