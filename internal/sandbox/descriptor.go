// Package sandbox is the local development sandbox: it reads extension
// descriptors, assembles a runnable container from the extension library
// modules and serves it together with the extension views.
package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
)

// DescriptorFile is the extension manifest file name.
const DescriptorFile = "extension.json"

// ComponentTypes lists the descriptor component collections in container order.
var ComponentTypes = []string{"events", "conditions", "actions", "dataElements"}

// Descriptor is the subset of extension.json the sandbox uses.
type Descriptor struct {
	Name          string         `json:"name"`
	DisplayName   string         `json:"displayName"`
	Version       string         `json:"version"`
	Platform      string         `json:"platform"`
	Main          string         `json:"main,omitempty"`
	ViewBasePath  string         `json:"viewBasePath"`
	Configuration *Configuration `json:"configuration,omitempty"`

	Events        []Component `json:"events,omitempty"`
	Conditions    []Component `json:"conditions,omitempty"`
	Actions       []Component `json:"actions,omitempty"`
	DataElements  []Component `json:"dataElements,omitempty"`
	SharedModules []Component `json:"sharedModules,omitempty"`

	// Dir is the directory the descriptor was read from.
	Dir string `json:"-"`
}

// Configuration is the extension configuration view.
type Configuration struct {
	ViewPath string         `json:"viewPath"`
	Schema   map[string]any `json:"schema,omitempty"`
}

// Component is one event, condition, action, data element or shared module.
type Component struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"displayName,omitempty"`
	LibPath     string         `json:"libPath"`
	ViewPath    string         `json:"viewPath,omitempty"`
	Schema      map[string]any `json:"schema,omitempty"`
}

// Components returns the components of the given collection name.
func (d *Descriptor) Components(typ string) []Component {
	switch typ {
	case "events":
		return d.Events
	case "conditions":
		return d.Conditions
	case "actions":
		return d.Actions
	case "dataElements":
		return d.DataElements
	case "sharedModules":
		return d.SharedModules
	}
	return nil
}

// ModuleKey returns the container key of a library file: "<ext>/<libPath>".
func (d *Descriptor) ModuleKey(libPath string) string {
	return d.Name + "/" + path.Clean(libPath)
}

// ErrInvalidDescriptor is wrapped by every descriptor validation failure.
var ErrInvalidDescriptor = errors.New("sandbox: invalid extension descriptor")

// LoadDescriptor reads and validates dir/extension.json.
func LoadDescriptor(dir string) (*Descriptor, error) {
	p := filepath.Join(dir, DescriptorFile)
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("sandbox: read %s: %w", p, err)
	}
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("sandbox: parse %s: %w", p, err)
	}
	d.Dir = dir
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return &d, nil
}

// LoadDescriptors reads the descriptors of every directory. Extension names
// must be unique.
func LoadDescriptors(dirs []string) ([]*Descriptor, error) {
	out := make([]*Descriptor, 0, len(dirs))
	seen := make(map[string]string, len(dirs))
	for _, dir := range dirs {
		d, err := LoadDescriptor(dir)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[d.Name]; ok {
			return nil, fmt.Errorf("%w: extension %q declared in %s and %s", ErrInvalidDescriptor, d.Name, prev, dir)
		}
		seen[d.Name] = dir
		out = append(out, d)
	}
	return out, nil
}

// Validate checks required fields and that every file path stays inside
// the extension directory.
func (d *Descriptor) Validate() error {
	var problems []string
	add := func(format string, args ...any) { problems = append(problems, fmt.Sprintf(format, args...)) }

	if d.Name == "" {
		add("name is required")
	}
	if d.DisplayName == "" {
		add("displayName is required")
	}
	if d.Version == "" {
		add("version is required")
	}
	if d.Platform != "web" && d.Platform != "" {
		add("unsupported platform %q", d.Platform)
	}
	if d.Main != "" && !relativeInside(d.Main) {
		add("main %q must be a relative path inside the extension", d.Main)
	}
	if d.ViewBasePath != "" && !relativeInside(d.ViewBasePath) {
		add("viewBasePath %q must be a relative path inside the extension", d.ViewBasePath)
	}
	for _, typ := range append(ComponentTypes, "sharedModules") {
		names := make(map[string]bool)
		for i, c := range d.Components(typ) {
			switch {
			case c.Name == "":
				add("%s[%d]: name is required", typ, i)
			case names[c.Name]:
				add("%s[%d]: duplicate name %q", typ, i, c.Name)
			}
			names[c.Name] = true
			if c.LibPath == "" || !relativeInside(c.LibPath) {
				add("%s[%d]: libPath %q must be a relative path inside the extension", typ, i, c.LibPath)
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDescriptor, strings.Join(problems, "; "))
	}
	return nil
}

// relativeInside reports whether p is a relative slash path that does not
// climb out of its base.
func relativeInside(p string) bool {
	if p == "" || path.IsAbs(p) || filepath.IsAbs(p) {
		return false
	}
	c := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	return c != ".." && !strings.HasPrefix(c, "../")
}
