// Package bundle provides the export and import commands, which move a
// whole bank in and out of a single YAML document.
package bundle

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/jpl-au/exambank/cmd"
	"github.com/jpl-au/exambank/extension"
	"github.com/jpl-au/exambank/internal/bundle"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/jpl-au/exambank/internal/service"
	"github.com/spf13/cobra"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the bundle extension.
type Extension struct {
	svc service.Service
}

var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
	_ extension.Storeless     = (*Extension)(nil)
)

// Name returns "bundle".
func (e *Extension) Name() string { return "bundle" }

// Init receives the open bank for export.
func (e *Extension) Init(ctx extension.Context) error {
	e.svc = ctx.Service()
	return nil
}

// Commands returns export and import.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newExportCmd(),
		newImportCmd(),
	}
}

// MCPTools returns nil.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}

// NoStoreCommands returns import, which checks a bundle with --dry-run
// without needing a bank and opens one itself otherwise.
func (e *Extension) NoStoreCommands() []string {
	return []string{"import"}
}

func (e *Extension) newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export the whole bank as YAML",
		Long: `Export every subject, question, exam, student, tag, exam instance and
answer as one YAML document, written to file or stdout.

The bundle can be imported into another bank with "exambank import".`,
		Args: cobra.MaximumNArgs(1),
		RunE: e.runExport,
	}
}

func (e *Extension) runExport(c *cobra.Command, args []string) error {
	file := ""
	if len(args) > 0 {
		file = args[0]
	}

	b, err := bundle.Export(c.Context(), e.svc)
	if err == nil {
		err = write(file, b)
	}

	l := log.Event("bundle:export", "export").
		Author(cmd.Author()).
		Detail("file", file)
	if b != nil {
		l = l.Detail("count", b.Len())
	}
	l.Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("export: %w", err))
	}
	if file != "" {
		fmt.Fprintf(cmd.Output(), "Exported %d entities to %s\n", b.Len(), file)
		return cmd.PrintJSON(map[string]any{"file": file, "count": b.Len()})
	}
	return nil
}

// write encodes b to file, or stdout when file is empty. The file is only
// replaced once encoding has succeeded.
func write(file string, b *bundle.Bundle) error {
	if file == "" {
		return bundle.Encode(cmd.Out(), b)
	}
	var buf bytes.Buffer
	if err := bundle.Encode(&buf, b); err != nil {
		return err
	}
	if _, err := os.Stat(file); err == nil && !cmd.Force() {
		return fmt.Errorf("%s already exists (use --force to overwrite)", file)
	}
	return os.WriteFile(file, buf.Bytes(), 0644)
}

func newImportCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a bundle into the bank",
		Long: `Import a bundle written by "exambank export" ("-" reads stdin).

Every entity gets a new id and the references between them are rewritten,
so a bundle can be merged into a bank that already holds data. Tags are
matched by text. The import is a single transaction: if any entity fails,
nothing is written.

Use --dry-run to check the bundle without a bank.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
	c.Flags().Bool(extension.FlagDryRun, false, "Check the bundle and report counts without importing")
	return c
}

func runImport(c *cobra.Command, args []string) error {
	file := args[0]
	dryRun, _ := c.Flags().GetBool(extension.FlagDryRun)

	b, err := read(file)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("import: %w", err))
	}

	var r bundle.Result
	if dryRun {
		r, err = bundle.Check(b)
	} else {
		r, err = importInto(c, b)
	}

	log.Event("bundle:import", "import").
		Author(cmd.Author()).
		Detail("file", file).
		Detail("dry_run", dryRun).
		Detail("count", b.Len()).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("import: %w", err))
	}

	verb := "Imported"
	if dryRun {
		verb = "Would import"
	}
	fmt.Fprintf(cmd.Output(), "%s %d tags, %d subjects, %d questions, %d exams, %d students, %d instances, %d answers\n",
		verb, r.Tags, r.Subjects, r.Questions, r.Exams, r.Students, r.Instances, r.Answers)
	return cmd.PrintJSON(r)
}

func importInto(c *cobra.Command, b *bundle.Bundle) (bundle.Result, error) {
	svc, _, err := cmd.OpenService()
	if err != nil {
		return bundle.Result{}, err
	}
	defer svc.Close()
	return bundle.Import(c.Context(), svc, b)
}

func read(file string) (*bundle.Bundle, error) {
	var r io.Reader
	if file == "-" {
		r = cmd.In()
	} else {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return bundle.Decode(r)
}
