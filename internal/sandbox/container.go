package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/adobe/reactor-extension-alloy-sub003/internal/config"
)

// Container is the editable part of the runtime container, stored as
// .sandbox/container.json. Module scripts are attached at build time.
type Container struct {
	Extensions   map[string]ExtensionEntry   `json:"extensions"`
	DataElements map[string]DataElementEntry `json:"dataElements"`
	Rules        []Rule                      `json:"rules"`
	Property     Property                    `json:"property"`
	Company      map[string]any              `json:"company,omitempty"`
	BuildInfo    map[string]any              `json:"buildInfo,omitempty"`
}

// ExtensionEntry holds the configuration settings of one extension.
type ExtensionEntry struct {
	DisplayName string         `json:"displayName,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
}

// DataElementEntry is a configured data element.
type DataElementEntry struct {
	ModulePath      string         `json:"modulePath"`
	Settings        map[string]any `json:"settings,omitempty"`
	DefaultValue    any            `json:"defaultValue,omitempty"`
	StorageDuration string         `json:"storageDuration,omitempty"`
	ForceLowerCase  bool           `json:"forceLowerCase,omitempty"`
	CleanText       bool           `json:"cleanText,omitempty"`
}

// Rule is a configured rule.
type Rule struct {
	ID         string          `json:"id,omitempty"`
	Name       string          `json:"name"`
	Events     []RuleComponent `json:"events,omitempty"`
	Conditions []RuleComponent `json:"conditions,omitempty"`
	Actions    []RuleComponent `json:"actions,omitempty"`
}

// RuleComponent is an event, condition or action inside a rule.
type RuleComponent struct {
	ModulePath string         `json:"modulePath"`
	Settings   map[string]any `json:"settings,omitempty"`
	Negate     bool           `json:"negate,omitempty"`
	Timeout    int            `json:"timeout,omitempty"`
}

// Property holds property level settings.
type Property struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name,omitempty"`
	Settings map[string]any `json:"settings,omitempty"`
}

// ModulePaths returns every module path the container references.
func (c *Container) ModulePaths() []string {
	var out []string
	for _, de := range c.DataElements {
		out = append(out, de.ModulePath)
	}
	for _, r := range c.Rules {
		for _, group := range [][]RuleComponent{r.Events, r.Conditions, r.Actions} {
			for _, rc := range group {
				out = append(out, rc.ModulePath)
			}
		}
	}
	return out
}

// Validate checks the structural requirements of a container.
func (c *Container) Validate() error {
	var errs []error
	for name, de := range c.DataElements {
		if de.ModulePath == "" {
			errs = append(errs, fmt.Errorf("dataElements.%s: modulePath is required", name))
		}
	}
	for i, r := range c.Rules {
		if r.Name == "" {
			errs = append(errs, fmt.Errorf("rules[%d]: name is required", i))
		}
		for _, group := range [][]RuleComponent{r.Events, r.Conditions, r.Actions} {
			for _, rc := range group {
				if rc.ModulePath == "" {
					errs = append(errs, fmt.Errorf("rules[%d]: modulePath is required", i))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// LoadContainer reads the container file. A missing file yields an empty
// container.
func LoadContainer(path string) (*Container, error) {
	c := &Container{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("sandbox: read container: %w", err)
	default:
		if err := json.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("sandbox: parse container %s: %w", path, err)
		}
	}
	if c.Extensions == nil {
		c.Extensions = map[string]ExtensionEntry{}
	}
	if c.DataElements == nil {
		c.DataElements = map[string]DataElementEntry{}
	}
	return c, nil
}

// SaveContainer writes c to path through a temporary file so readers never
// see a partial container.
func SaveContainer(path string, c *Container) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("sandbox: marshal container: %w", err)
	}
	return writeFileAtomic(path, append(data, '\n'))
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("sandbox: create %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("sandbox: write %s: %w", path, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("sandbox: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("sandbox: write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("sandbox: write %s: %w", path, err)
	}
	return nil
}

// Init scaffolds the sandbox files of the extension in dir: an empty
// container that enables the extension and a default config. Existing
// files are left alone. It returns the paths it created.
func Init(dir string) ([]string, error) {
	d, err := LoadDescriptor(dir)
	if err != nil {
		return nil, err
	}
	var created []string

	containerPath := filepath.Join(dir, ".sandbox", "container.json")
	if _, err := os.Stat(containerPath); errors.Is(err, os.ErrNotExist) {
		c := &Container{
			Extensions:   map[string]ExtensionEntry{d.Name: {DisplayName: d.DisplayName, Settings: map[string]any{}}},
			DataElements: map[string]DataElementEntry{},
			Rules:        []Rule{},
			Property:     Property{Name: "Sandbox property", Settings: map[string]any{"domains": []any{"localhost"}}},
			Company:      map[string]any{"orgId": ""},
		}
		if err := SaveContainer(containerPath, c); err != nil {
			return nil, err
		}
		created = append(created, containerPath)
	}

	configPath := filepath.Join(dir, filepath.FromSlash(config.DefaultPath))
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		cfg := config.Default()
		if err := cfg.Save(configPath); err != nil {
			return nil, err
		}
		created = append(created, configPath)
	}
	return created, nil
}
