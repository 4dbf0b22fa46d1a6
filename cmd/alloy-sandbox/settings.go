package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	alloy "github.com/adobe/reactor-extension-alloy-sub003"
	js "github.com/adobe/reactor-extension-alloy-sub003/jsonschema"
	"github.com/adobe/reactor-extension-alloy-sub003/registry"
	"github.com/adobe/reactor-extension-alloy-sub003/view"
)

// settingsFile is the persisted form of a component's object data.
type settingsFile struct {
	Data       any            `json:"data,omitempty"`
	Transforms map[string]any `json:"transforms,omitempty"`
}

// readSettings reads path. A missing file is an empty settings object.
func readSettings(path string) (settingsFile, error) {
	var s settingsFile
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if dups, err := alloy.DuplicateKeys(data); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	} else if len(dups) > 0 {
		return s, fmt.Errorf("parse settings %s: %w", path, dups)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

func writeSettings(path string, e alloy.Extraction) error {
	s := settingsFile{Transforms: view.TransformsSettings(e.Transforms())}
	if e.Set() {
		s.Data = e.Value
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// schemaFlags select the schema from a file or from the schema registry.
type schemaFlags struct {
	path    string
	id      string
	version string
}

func (f *schemaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "schema", "", "Schema file (JSON or YAML)")
	cmd.Flags().StringVar(&f.id, "schema-id", "", "Schema $id to fetch from the registry sandbox in the config")
	cmd.Flags().StringVar(&f.version, "schema-version", "", "Registry schema version (default 1)")
	cmd.MarkFlagsOneRequired("schema", "schema-id")
	cmd.MarkFlagsMutuallyExclusive("schema", "schema-id")
}

func (f *schemaFlags) load(ctx context.Context, a *app) (*js.Schema, []string, error) {
	if f.path != "" {
		s, diag, err := js.Load(f.path)
		if err != nil {
			return nil, nil, err
		}
		return s, diag.Warnings(), nil
	}
	client := registry.New(a.cfg.RegistryClientConfig(), a.log)
	s, err := client.FetchSchema(ctx, a.cfg.Registry.Sandbox, f.id, f.version)
	return s, nil, err
}

// loadTree builds the form-state tree of the settings at settingsPath
// against the selected schema.
func loadTree(ctx context.Context, a *app, sf *schemaFlags, settingsPath string, updateMode bool) (alloy.Tree, error) {
	schema, warnings, err := sf.load(ctx, a)
	if err != nil {
		return alloy.Tree{}, err
	}
	for _, w := range warnings {
		a.log.Warn("schema", zap.String("warning", w))
	}
	s, err := readSettings(settingsPath)
	if err != nil {
		return alloy.Tree{}, err
	}
	return alloy.NewBuilder().Build(schema, alloy.BuildOptions{
		Value:      s.Data,
		UpdateMode: updateMode,
		Transforms: view.TransformsFrom(s.Transforms),
	}), nil
}
