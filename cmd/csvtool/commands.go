package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/civilcsv/internal/collaborator"
	"github.com/JonMunkholm/civilcsv/internal/core"
	"github.com/JonMunkholm/civilcsv/internal/logging"
)

const serverEnv = "PROCESSING_SERVER_URL"

// options are the flags shared by every command.
type options struct {
	encoding string
	server   string
	timeout  time.Duration
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "csvtool",
		Short: "Inspect, edit and submit survey CSV files",
		Long: `csvtool reads coordinate and pipe CSV files, applies edits, and sends
them to the processing server.

The processing server URL comes from --server or PROCESSING_SERVER_URL
(a .env file in the working directory is read if present).`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), opts.logLevel, "text"))
		},
	}

	root.PersistentFlags().StringVar(&opts.encoding, "encoding", core.EncodingUTF8, "Input encoding: utf-8, latin1, windows-1252")
	root.PersistentFlags().StringVar(&opts.server, "server", "", "Processing server URL (default: $"+serverEnv+")")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", collaborator.DefaultTimeout, "Processing server call timeout")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(
		newShowCmd(opts),
		newEditCmd(opts),
		newPreviewCmd(opts),
		newSubmitCmd(opts),
		newScriptsCmd(opts),
		newRunCmd(opts),
	)
	return root
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show FILE",
		Short: "Print a CSV file as an aligned table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readFile(args[0], opts.encoding)
			if err != nil {
				return err
			}
			sess := core.NewSession(tableWriter(cmd.OutOrStdout()))
			sess.LoadFile(text)
			return nil
		},
	}
}

func newEditCmd(opts *options) *cobra.Command {
	var (
		sets    []string
		columns []string
		output  string
		xlsx    bool
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "edit FILE",
		Short: "Apply cell edits and new columns, then save",
		Long: `edit loads FILE, adds the --add-column columns in order, applies the
--set edits, and writes the result. Rows and columns are numbered from 0;
the header row is not counted.`,
		Example: `  csvtool edit puntos.csv --add-column Cota --set 0:3=101.5 -o puntos_editado.csv`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readFile(args[0], opts.encoding)
			if err != nil {
				return err
			}

			var renderer core.Renderer
			if !quiet {
				renderer = tableWriter(cmd.ErrOrStderr())
			}
			sess := core.NewSession(renderer)
			sess.LoadFile(text)

			for _, name := range columns {
				if !sess.AddColumn(name) {
					return fmt.Errorf("--add-column: blank column name")
				}
			}
			for _, s := range sets {
				row, col, value, err := parseSet(s)
				if err != nil {
					return err
				}
				if err := sess.EditCell(row, col, value); err != nil {
					return fmt.Errorf("--set %s: %w", s, err)
				}
			}
			// Cell edits do not redraw the session, so show the result once.
			if renderer != nil && len(sets) > 0 {
				renderer.RenderTable(sess.Snapshot())
			}

			if xlsx {
				if output == "" {
					output = core.XLSXFileName
				}
				return writeXLSXFile(output, sess.Snapshot())
			}

			filename, content := sess.Save()
			if output == "" {
				output = filename
			}
			if output == "-" {
				_, err := io.WriteString(cmd.OutOrStdout(), content)
				return err
			}
			if err := os.WriteFile(output, []byte(content), 0644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			slog.Info("saved", "file", output)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Cell edit ROW:COL=VALUE (repeatable)")
	cmd.Flags().StringArrayVar(&columns, "add-column", nil, "Append a column with this name (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", `Output file, "-" for stdout (default: `+core.SaveFileName+")")
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "Write an .xlsx workbook instead of CSV")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the table after loading, after each new column, and after the edits")
	return cmd
}

func newPreviewCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "preview COORDINATES PIPES",
		Short: "Render a PNG plan view of the points and pipes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := readSubmission(args[0], args[1], opts.encoding)
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create output: %w", err)
			}
			summary, err := core.RenderPreview(f, sub)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d points (%d skipped), %d pipes (%d skipped)\n",
				output, summary.Points, summary.SkippedPoints, summary.Pipes, summary.SkippedPipes)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "preview.png", "Output PNG file")
	return cmd
}

func newSubmitCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "submit COORDINATES PIPES",
		Short: "Send the coordinates and pipes tables to the processing server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := readSubmission(args[0], args[1], opts.encoding)
			if err != nil {
				return err
			}
			client, err := opts.client()
			if err != nil {
				return err
			}

			ctx, cancel := opts.context(cmd)
			defer cancel()

			msg, err := client.SubmitTables(ctx, sub)
			if err != nil {
				return err
			}
			return printMessage(cmd.OutOrStdout(), msg)
		},
	}
}

func newScriptsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scripts",
		Short: "List the scripts the processing server can run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			ctx, cancel := opts.context(cmd)
			defer cancel()

			scripts, err := client.ListScripts(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tID")
			for _, s := range scripts {
				fmt.Fprintf(tw, "%s\t%s\n", s.Name, s.ID)
			}
			return tw.Flush()
		},
	}
}

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run SCRIPT_ID",
		Short: "Run a processing server script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			ctx, cancel := opts.context(cmd)
			defer cancel()

			msg, err := client.RunScript(ctx, args[0])
			if err != nil {
				return err
			}
			return printMessage(cmd.OutOrStdout(), msg)
		},
	}
}

// client builds a processing server client from --server or the environment.
func (o *options) client() (*collaborator.Client, error) {
	url := o.server
	if url == "" {
		url = os.Getenv(serverEnv)
	}
	if url == "" {
		return nil, fmt.Errorf("no processing server: use --server or set %s", serverEnv)
	}
	return collaborator.New(url, collaborator.WithHTTPClient(&http.Client{Timeout: o.timeout}))
}

func (o *options) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, o.timeout)
}

// errServerReported is returned when the processing server answered with
// an error message, so the process exits non-zero.
var errServerReported = errors.New("processing server reported an error")

func printMessage(w io.Writer, msg collaborator.Message) error {
	fmt.Fprintln(w, msg.Text)
	if msg.Error {
		return errServerReported
	}
	return nil
}

// tableWriter renders tables as tab-aligned columns, header first.
func tableWriter(w io.Writer) core.Renderer {
	return core.RendererFunc(func(t core.Table) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
		for _, row := range t.Rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		tw.Flush()
		fmt.Fprintf(w, "(%d rows, %d columns)\n", len(t.Rows), t.Width())
	})
}

// parseSet parses a ROW:COL=VALUE edit. VALUE may be empty or contain '='.
func parseSet(s string) (row, col int, value string, err error) {
	pos, value, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, "", fmt.Errorf("--set %q: expected ROW:COL=VALUE", s)
	}
	rowStr, colStr, ok := strings.Cut(pos, ":")
	if !ok {
		return 0, 0, "", fmt.Errorf("--set %q: expected ROW:COL=VALUE", s)
	}
	if row, err = strconv.Atoi(strings.TrimSpace(rowStr)); err != nil {
		return 0, 0, "", fmt.Errorf("--set %q: invalid row: %w", s, err)
	}
	if col, err = strconv.Atoi(strings.TrimSpace(colStr)); err != nil {
		return 0, 0, "", fmt.Errorf("--set %q: invalid column: %w", s, err)
	}
	return row, col, value, nil
}

func readFile(path, enc string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	text, err := core.ReadText(f, enc)
	if err != nil {
		return "", fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return text, nil
}

func readSubmission(coordsPath, pipesPath, enc string) (core.Submission, error) {
	coords, err := readFile(coordsPath, enc)
	if err != nil {
		return core.Submission{}, err
	}
	pipes, err := readFile(pipesPath, enc)
	if err != nil {
		return core.Submission{}, err
	}
	return core.Submit(coords, pipes), nil
}

func writeXLSXFile(path string, t core.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := core.WriteXLSX(f, t, core.DefaultSheetName); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("saved", "file", path)
	return nil
}
