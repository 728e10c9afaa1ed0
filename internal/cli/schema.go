package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/modelcore/structbind/internal/schema"
)

// SchemaOptions holds flags for the schema command.
type SchemaOptions struct {
	*RootOptions
	Type string
}

// SchemaReport is the serializable form of one extracted schema.
type SchemaReport struct {
	Type       string           `json:"type" yaml:"type"`
	Kind       string           `json:"kind" yaml:"kind"`
	Properties []PropertyReport `json:"properties" yaml:"properties"`
	Dropped    []string         `json:"dropped,omitempty" yaml:"dropped,omitempty"`
}

// PropertyReport describes one property and its accessors.
type PropertyReport struct {
	Name       string           `json:"name" yaml:"name"`
	Type       string           `json:"type" yaml:"type"`
	Kind       string           `json:"kind" yaml:"kind"`
	Accessors  []AccessorReport `json:"accessors" yaml:"accessors"`
	DeclaredBy []string         `json:"declared_by" yaml:"declared_by"`
}

// AccessorReport describes one accessor role of a property.
type AccessorReport struct {
	Role      string `json:"role" yaml:"role"`
	Signature string `json:"signature" yaml:"signature"`
	Abstract  bool   `json:"abstract" yaml:"abstract"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema <model.cue>",
		Short: "Extract and print the schema of a declared type",
		Long: `Extract the property schema of one type declared in a CUE model file.

Prints each property with its accessor roles, abstractness, and the types
declaring it, in extraction order.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Type, "type", "t", "", "type to extract (required)")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func runSchema(opts *SchemaOptions, modelPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	reg, err := loadRegistry(modelPath)
	if err != nil {
		return err
	}
	formatter.VerboseLog("loaded model from %s", modelPath)

	s, err := reg.GetSchema(opts.Type)
	if err != nil {
		return WrapExitError(ExitCommandError, "extracting schema", err)
	}
	dropped, err := reg.DroppedMethods(opts.Type)
	if err != nil {
		return WrapExitError(ExitCommandError, "extracting schema", err)
	}

	report := buildSchemaReport(s, dropped)
	return formatter.Success(report, func(w io.Writer) error {
		return renderSchemaText(w, report)
	})
}

func buildSchemaReport(s *schema.Schema, dropped []*schema.Method) SchemaReport {
	report := SchemaReport{Type: s.Type, Kind: string(s.Kind)}
	for _, p := range s.Properties() {
		pr := PropertyReport{
			Name:       p.Name,
			Type:       p.Type(),
			Kind:       string(p.Kind),
			DeclaredBy: p.DeclaredBy,
		}
		for _, a := range p.Accessors() {
			pr.Accessors = append(pr.Accessors, AccessorReport{
				Role:      a.Role.String(),
				Signature: a.MostSpecific().Signature(),
				Abstract:  a.IsAbstract(),
			})
		}
		report.Properties = append(report.Properties, pr)
	}
	for _, m := range dropped {
		report.Dropped = append(report.Dropped, m.Signature())
	}
	return report
}

func renderSchemaText(w io.Writer, report SchemaReport) error {
	fmt.Fprintf(w, "schema for: %s (%s)\n", report.Type, report.Kind)
	fmt.Fprintf(w, "properties (%d):\n", len(report.Properties))
	for _, p := range report.Properties {
		fmt.Fprintf(w, "  %s %s [%s]\n", p.Name, p.Type, p.Kind)
		for _, a := range p.Accessors {
			marker := "implemented"
			if a.Abstract {
				marker = "abstract"
			}
			fmt.Fprintf(w, "    %s [%s] %s\n", a.Role, marker, a.Signature)
		}
	}
	if len(report.Dropped) > 0 {
		fmt.Fprintf(w, "dropped accessors (%d):\n", len(report.Dropped))
		for _, sig := range report.Dropped {
			fmt.Fprintf(w, "  %s\n", sig)
		}
	}
	return nil
}
