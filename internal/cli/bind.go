package cli

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/modelcore/structbind/internal/binder"
)

// BindOptions holds flags for the bind command.
type BindOptions struct {
	*RootOptions
	View      string
	AlsoViews []string
	Delegate  string
}

// BindReport is the serializable form of a resolved binding.
type BindReport struct {
	Views         []string          `json:"views" yaml:"views"`
	Delegate      string            `json:"delegate,omitempty" yaml:"delegate,omitempty"`
	Generated     []GeneratedReport `json:"generated" yaml:"generated"`
	ViewBound     []BoundReport     `json:"view_bound" yaml:"view_bound"`
	DelegateBound []ForwardReport   `json:"delegate_bound" yaml:"delegate_bound"`
}

// GeneratedReport describes one property realized with synthesized storage.
type GeneratedReport struct {
	Name      string   `json:"name" yaml:"name"`
	Type      string   `json:"type" yaml:"type"`
	Accessors []string `json:"accessors" yaml:"accessors"`
}

// BoundReport describes one accessor already implemented by a view.
type BoundReport struct {
	Property  string `json:"property" yaml:"property"`
	Signature string `json:"signature" yaml:"signature"`
}

// ForwardReport describes one accessor forwarded to the delegate.
type ForwardReport struct {
	Property string `json:"property" yaml:"property"`
	Source   string `json:"source" yaml:"source"`
	Target   string `json:"target" yaml:"target"`
}

// NewBindCommand creates the bind command.
func NewBindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BindOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bind <model.cue>",
		Short: "Resolve and print the binding for a view set",
		Long: `Resolve the property binding for a requested view type, optional additional
view types, and an optional delegate type.

Each property of the view set is realized exactly one way: synthesized
storage, forwarding to the delegate, or an already-implemented pass-through.
Inconsistent declarations fail resolution with the offending property.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBind(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.View, "view", "", "requested view type (required)")
	cmd.Flags().StringArrayVar(&opts.AlsoViews, "also-view", nil, "additional view type (repeatable)")
	cmd.Flags().StringVar(&opts.Delegate, "delegate", "", "delegate type")
	_ = cmd.MarkFlagRequired("view")

	return cmd
}

func runBind(opts *BindOptions, modelPath string, cmd *cobra.Command) error {
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

	resolver := binder.NewResolver(reg)
	binding, err := resolver.GetBinding(opts.View, opts.AlsoViews, opts.Delegate)
	if err != nil {
		if binder.IsSchemaValidationError(err) || binder.IsBindingConflictError(err) {
			return formatter.Failure(ExitFailure, err)
		}
		return WrapExitError(ExitCommandError, "resolving binding", err)
	}

	if opts.Verbose {
		spew.Fdump(formatter.ErrWriter, binding)
	}

	report := buildBindReport(binding)
	return formatter.Success(report, func(w io.Writer) error {
		return renderBindText(w, report)
	})
}

func buildBindReport(binding *binder.StructBinding) BindReport {
	report := BindReport{}
	for _, s := range binding.ViewSchemas {
		report.Views = append(report.Views, s.Type)
	}
	if binding.DelegateSchema != nil {
		report.Delegate = binding.DelegateSchema.Type
	}
	for _, p := range binding.GeneratedProperties() {
		gr := GeneratedReport{Name: p.Name, Type: p.Type()}
		for _, a := range p.Accessors() {
			gr.Accessors = append(gr.Accessors, a.MostSpecific().Signature())
		}
		report.Generated = append(report.Generated, gr)
	}
	for _, vb := range binding.ViewBindings {
		report.ViewBound = append(report.ViewBound, BoundReport{
			Property:  vb.Property,
			Signature: vb.Accessor.ImplementedBy().Signature(),
		})
	}
	for _, db := range binding.DelegateBindings {
		report.DelegateBound = append(report.DelegateBound, ForwardReport{
			Property: db.Property,
			Source:   db.Source.MostSpecific().Signature(),
			Target:   db.Target.ImplementedBy().Signature(),
		})
	}
	return report
}

func renderBindText(w io.Writer, report BindReport) error {
	fmt.Fprintf(w, "views: %s\n", joinOrNone(report.Views))
	delegate := report.Delegate
	if delegate == "" {
		delegate = "(none)"
	}
	fmt.Fprintf(w, "delegate: %s\n", delegate)

	fmt.Fprintf(w, "generated properties (%d):\n", len(report.Generated))
	for _, g := range report.Generated {
		fmt.Fprintf(w, "  %s %s\n", g.Name, g.Type)
		for _, sig := range g.Accessors {
			fmt.Fprintf(w, "    %s\n", sig)
		}
	}
	fmt.Fprintf(w, "view bindings (%d):\n", len(report.ViewBound))
	for _, vb := range report.ViewBound {
		fmt.Fprintf(w, "  %s: %s\n", vb.Property, vb.Signature)
	}
	fmt.Fprintf(w, "delegate bindings (%d):\n", len(report.DelegateBound))
	for _, db := range report.DelegateBound {
		fmt.Fprintf(w, "  %s: %s -> %s\n", db.Property, db.Source, db.Target)
	}
	return nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	out := items[0]
	for _, s := range items[1:] {
		out += ", " + s
	}
	return out
}
