package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	alloy "github.com/adobe/reactor-extension-alloy-sub003"
	"github.com/adobe/reactor-extension-alloy-sub003/view"
)

// errInvalid is returned when the settings do not satisfy the schema.
var errInvalid = errors.New("settings are invalid")

type validateReport struct {
	Valid      bool           `json:"valid"`
	Issues     []issueJSON    `json:"issues"`
	Data       any            `json:"data,omitempty"`
	Transforms map[string]any `json:"transforms,omitempty"`
}

type issueJSON struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newValidateCmd(a *app) *cobra.Command {
	var (
		schema               schemaFlags
		settingsPath, format string
		updateMode           bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate component settings against a schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = "json"
				if f, ok := cmd.OutOrStdout().(*os.File); ok && isatty.IsTerminal(f.Fd()) {
					format = "text"
				}
			}
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q", format)
			}
			tree, err := loadTree(cmd.Context(), a, &schema, settingsPath, updateMode)
			if err != nil {
				return err
			}

			issues := alloy.Validate(tree.Root).Issues()
			if err := writeReport(cmd.OutOrStdout(), format, issues, alloy.Extract(tree.Root)); err != nil {
				return err
			}
			if len(issues) > 0 {
				return errInvalid
			}
			return nil
		},
	}
	schema.register(cmd)
	cmd.Flags().StringVar(&settingsPath, "settings", "", "Settings file with data and transforms")
	cmd.Flags().StringVar(&format, "format", "", "Output format: text or json (default text on a terminal)")
	cmd.Flags().BoolVar(&updateMode, "update-mode", false, "Allow clear transforms")
	_ = cmd.MarkFlagRequired("settings")
	return cmd
}

func writeReport(w io.Writer, format string, issues alloy.Issues, e alloy.Extraction) error {
	if format == "text" {
		if len(issues) == 0 {
			_, err := fmt.Fprintln(w, "valid")
			return err
		}
		for _, is := range issues {
			path := is.Path
			if path == "" {
				path = "(root)"
			}
			if _, err := fmt.Fprintf(w, "%s: %s (%s)\n", path, is.Message, is.Code); err != nil {
				return err
			}
		}
		return nil
	}

	report := validateReport{Valid: len(issues) == 0, Issues: make([]issueJSON, 0, len(issues))}
	for _, is := range issues {
		report.Issues = append(report.Issues, issueJSON{Path: is.Path, Code: is.Code, Message: is.Message})
	}
	if report.Valid {
		report.Data = e.Value
		report.Transforms = view.TransformsSettings(e.Transforms())
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
