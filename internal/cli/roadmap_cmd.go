package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/roadmapper/internal/cli/formatter"
	"github.com/alexanderramin/roadmapper/internal/extract"
	"github.com/alexanderramin/roadmapper/internal/intelligence"
	"github.com/alexanderramin/roadmapper/internal/llm"
	"github.com/alexanderramin/roadmapper/internal/roadmap"
)

// outputFlags are shared by the commands that produce a roadmap.
type outputFlags struct {
	out      string
	jsonOnly bool
}

func (o *outputFlags) register(cmd *cobra.Command, outHelp string) {
	cmd.Flags().StringVarP(&o.out, "out", "o", "", outHelp)
	cmd.Flags().BoolVar(&o.jsonOnly, "json", false, "Print the result as JSON instead of a tree")
}

func newGenerateCmd(app *App) *cobra.Command {
	var resumePath string
	var output outputFlags

	cmd := &cobra.Command{
		Use:   "generate [goal...]",
		Short: "Generate a roadmap for a learning goal",
		Example: `  roadmapper generate "I want to become a data engineer" --resume cv.pdf --out roadmap.json
  roadmapper generate   # asks for the goal on a terminal`,
		RunE: func(cmd *cobra.Command, args []string) error {
			goal := strings.TrimSpace(strings.Join(args, " "))
			if goal == "" && app.interactive() {
				if err := goalForm(&goal, &resumePath).Run(); err != nil {
					return err
				}
			}
			if goal == "" {
				return errors.New("a learning goal is required")
			}

			resumeText, err := readResume(resumePath)
			if err != nil {
				return err
			}
			svc, err := app.RoadmapService(cmd.Context())
			if err != nil {
				return err
			}

			res, err := runWithSpinner(app, cmd, "Generating roadmap...", func(ctx context.Context) (*intelligence.Result, error) {
				return svc.Generate(ctx, goal, resumeText)
			})
			if err != nil {
				return err
			}
			return output.write(cmd, res)
		},
	}
	cmd.Flags().StringVarP(&resumePath, "resume", "r", "", "Resume file (.pdf or .docx) to tailor the roadmap")
	output.register(cmd, "Write the roadmap graph JSON to this file")
	return cmd
}

func newRefineCmd(app *App) *cobra.Command {
	var output outputFlags

	cmd := &cobra.Command{
		Use:   "refine <roadmap.json> <message...>",
		Short: "Change a saved roadmap with a chat instruction",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := readGraphFile(args[0])
			if err != nil {
				return err
			}
			message := strings.Join(args[1:], " ")
			svc, err := app.RoadmapService(cmd.Context())
			if err != nil {
				return err
			}

			res, err := runWithSpinner(app, cmd, "Refining roadmap...", func(ctx context.Context) (*intelligence.Result, error) {
				return svc.Refine(ctx, message, current)
			})
			if err != nil {
				return err
			}
			output.defaultTo(args[0])
			return output.write(cmd, res)
		},
	}
	output.register(cmd, "Write the refined graph here instead of updating the input file")
	return cmd
}

func newContinueCmd(app *App) *cobra.Command {
	var output outputFlags

	cmd := &cobra.Command{
		Use:   "continue <roadmap.json>",
		Short: "Append the next phase to a saved roadmap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := readGraphFile(args[0])
			if err != nil {
				return err
			}
			svc, err := app.RoadmapService(cmd.Context())
			if err != nil {
				return err
			}

			res, err := runWithSpinner(app, cmd, "Generating next phase...", func(ctx context.Context) (*intelligence.Result, error) {
				return svc.Continue(ctx, current)
			})
			if err != nil {
				return err
			}
			if res.Unchanged {
				output.out = ""
			} else {
				output.defaultTo(args[0])
			}
			return output.write(cmd, res)
		},
	}
	output.register(cmd, "Write the extended graph here instead of updating the input file")
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "show <roadmap.json>",
		Short: "Render a saved roadmap as a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGraphFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRoadmap(*g))

			if !check {
				return nil
			}
			problems := roadmap.ValidateGraph(*g)
			for _, p := range problems {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleRed.Render("✖ ")+p.Error())
			}
			if len(problems) > 0 {
				return fmt.Errorf("%s has %d structural problem(s)", args[0], len(problems))
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleGreen.Render("✔ graph is consistent"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Also verify node ids and edge endpoints")
	return cmd
}

func (o *outputFlags) defaultTo(path string) {
	if o.out == "" {
		o.out = path
	}
}

func (o *outputFlags) write(cmd *cobra.Command, res *intelligence.Result) error {
	w := cmd.OutOrStdout()
	if o.out != "" {
		if err := writeGraphFile(o.out, res.Graph); err != nil {
			return err
		}
	}
	if o.jsonOnly {
		return writeResultJSON(w, res)
	}

	fmt.Fprint(w, formatter.FormatRoadmap(res.Graph))
	fmt.Fprintln(w)
	fmt.Fprintln(w, formatter.RoadmapSummary(res.Message, res.IsComplete))
	if o.out != "" {
		fmt.Fprintln(w, formatter.Dim("Saved to "+o.out))
	}
	return nil
}

// runWithSpinner tags the call with a fresh request id and animates a
// spinner on stderr while it runs on a terminal.
func runWithSpinner(app *App, cmd *cobra.Command, message string, fn func(ctx context.Context) (*intelligence.Result, error)) (*intelligence.Result, error) {
	ctx := llm.ContextWithRequestID(cmd.Context(), uuid.NewString())
	if app.interactive() {
		stop := formatter.StartSpinner(cmd.ErrOrStderr(), message)
		defer stop()
	}
	return fn(ctx)
}

func readResume(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening resume: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("opening resume: %w", err)
	}
	text, _, err := extract.File(path, f, info.Size())
	if err != nil {
		return "", fmt.Errorf("reading resume %s: %w", path, err)
	}
	return text, nil
}
