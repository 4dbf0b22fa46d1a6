package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Sources names the files a container is assembled from.
type Sources struct {
	ExtensionDirs []string
	ContainerPath string
}

// ErrUnknownModule is returned when the container references a module path
// that no extension declares.
var ErrUnknownModule = errors.New("sandbox: unknown module")

// maxConcurrentReads bounds the module files read at once.
const maxConcurrentReads = 8

// module is one library file attached to an extension in the built container.
type module struct {
	DisplayName string `json:"displayName,omitempty"`
	Name        string `json:"name,omitempty"`
	Shared      bool   `json:"shared,omitempty"`
	Script      string `json:"script"`

	key  string
	file string
}

// builtExtension is an extension entry as the runtime sees it.
type builtExtension struct {
	DisplayName           string             `json:"displayName"`
	Settings              map[string]any     `json:"settings,omitempty"`
	HostedLibFilesBaseURL string             `json:"hostedLibFilesBaseUrl"`
	Modules               map[string]*module `json:"modules"`
}

type builtContainer struct {
	Extensions   map[string]builtExtension   `json:"extensions"`
	DataElements map[string]DataElementEntry `json:"dataElements"`
	Rules        []Rule                      `json:"rules"`
	Property     Property                    `json:"property"`
	Company      map[string]any              `json:"company,omitempty"`
	BuildInfo    map[string]any              `json:"buildInfo"`
}

// placeholder is the token the script of a module carries until the module
// source is substituted.
func placeholder(key string) string { return "{{module:" + key + "}}" }

// BuildContainer re-reads the descriptors and the container file and
// returns the container script: the JSON container with every module
// placeholder replaced by the wrapped module source.
func BuildContainer(ctx context.Context, src Sources) ([]byte, error) {
	descriptors, err := LoadDescriptors(src.ExtensionDirs)
	if err != nil {
		return nil, err
	}
	c, err := LoadContainer(src.ContainerPath)
	if err != nil {
		return nil, err
	}

	built := builtContainer{
		Extensions:   make(map[string]builtExtension, len(descriptors)),
		DataElements: c.DataElements,
		Rules:        c.Rules,
		Property:     c.Property,
		Company:      c.Company,
		BuildInfo:    map[string]any{},
	}
	for k, v := range c.BuildInfo {
		built.BuildInfo[k] = v
	}
	var modules []*module
	for _, d := range descriptors {
		entry := c.Extensions[d.Name]
		ext := builtExtension{
			DisplayName:           d.DisplayName,
			Settings:              entry.Settings,
			HostedLibFilesBaseURL: "/hosted/" + d.Name + "/",
			Modules:               map[string]*module{},
		}
		for _, m := range descriptorModules(d) {
			ext.Modules[m.key] = m
			modules = append(modules, m)
		}
		built.Extensions[d.Name] = ext
	}

	known := make(map[string]bool, len(modules))
	for _, m := range modules {
		known[m.key] = true
	}
	var unknown []string
	for _, p := range c.ModulePaths() {
		if !known[p] {
			unknown = append(unknown, p)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, strings.Join(unknown, ", "))
	}

	built.BuildInfo["buildId"] = uuid.NewString()
	built.BuildInfo["buildDate"] = time.Now().UTC().Format(time.RFC3339)
	built.BuildInfo["environment"] = "development"

	sources, err := readModules(ctx, modules)
	if err != nil {
		return nil, err
	}

	body, err := json.MarshalIndent(built, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sandbox: marshal container: %w", err)
	}
	// One pass, so module sources are never scanned for tokens.
	pairs := make([]string, 0, 2*len(modules))
	for i, m := range modules {
		token, err := json.Marshal(placeholder(m.key))
		if err != nil {
			return nil, fmt.Errorf("sandbox: marshal placeholder: %w", err)
		}
		pairs = append(pairs, string(token), "function(module, exports, require, turbine) {\n"+sources[i]+"\n}")
	}

	var out bytes.Buffer
	out.WriteString("window.container = ")
	if _, err := strings.NewReplacer(pairs...).WriteString(&out, string(body)); err != nil {
		return nil, err
	}
	out.WriteString(";\n")
	return out.Bytes(), nil
}

// descriptorModules returns the main module, the component modules and the
// shared modules of d. Components sharing a library file share one module.
func descriptorModules(d *Descriptor) []*module {
	var out []*module
	byKey := make(map[string]*module)
	add := func(libPath, name, displayName string, shared bool) {
		key := d.ModuleKey(libPath)
		if m, ok := byKey[key]; ok {
			m.Shared = m.Shared || shared
			return
		}
		m := &module{
			DisplayName: displayName,
			Name:        name,
			Shared:      shared,
			Script:      placeholder(key),
			key:         key,
			file:        filepath.Join(d.Dir, filepath.FromSlash(libPath)),
		}
		byKey[key] = m
		out = append(out, m)
	}
	if d.Main != "" {
		add(d.Main, "", "", false)
	}
	for _, typ := range ComponentTypes {
		for _, c := range d.Components(typ) {
			add(c.LibPath, c.Name, c.DisplayName, false)
		}
	}
	for _, c := range d.SharedModules {
		add(c.LibPath, c.Name, c.DisplayName, true)
	}
	return out
}

// readModules reads the module sources concurrently, in module order.
func readModules(ctx context.Context, modules []*module) ([]string, error) {
	sources := make([]string, len(modules))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, m := range modules {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(m.file)
			if err != nil {
				return fmt.Errorf("sandbox: read module %s: %w", m.key, err)
			}
			sources[i] = string(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}
