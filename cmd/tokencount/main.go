// Command tokencount counts how many tokens a family of LLM tokenizers
// would emit for the text in one or more files (or stdin), without ever
// producing the token IDs themselves. It is the CLI collaborator around the
// counting engine in internal/: argument parsing, file walking, parallel
// dispatch and the share-URL builder all live here, grounded directly on
// original_source/src/main.rs.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tokencount/tokencount"
)

var version = "dev"

type input struct {
	name string // "" for stdin
	text string
}

type options struct {
	model        string
	all          bool
	recursive    bool
	noGitignore  bool
	ignore       []string
	share        bool
	printVersion bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{model: "claude"}

	cmd := &cobra.Command{
		Use:   "tokencount [path...]",
		Short: "Count tokens in files or stdin using LLM tokenizers",
		Long: "Count tokens in files or stdin using LLM tokenizers.\n\n" +
			"When no paths are given, reads from stdin. Directories require -r;\n" +
			"binary files are skipped.\n\n" +
			"Share mode (-s) takes one or two files (or stdin) and prints a URL\n" +
			"that opens the web app with the text pre-filled. Use two files to\n" +
			"get a side-by-side diff. Override the base URL with TOKEN_COUNT_URL.\n\n" +
			"Models: " + strings.Join(tokencount.ModelNames(), ", "),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.printVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "tokencount %s\n", version)
				return nil
			}
			return run(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.model, "model", "m", "claude", "Tokenizer model")
	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "Show counts for all models")
	cmd.Flags().BoolVarP(&opts.recursive, "recursive", "r", false, "Recurse into directories")
	cmd.Flags().StringArrayVar(&opts.ignore, "ignore", nil, "Skip files/dirs matching pattern (repeatable)")
	cmd.Flags().BoolVar(&opts.noGitignore, "no-gitignore", false, "Don't skip .gitignore'd files when recursing")
	cmd.Flags().BoolVarP(&opts.share, "share", "s", false, "Print a shareable URL instead of counts")
	cmd.Flags().BoolVarP(&opts.printVersion, "version", "V", false, "Show version")

	return cmd
}

func run(cmd *cobra.Command, paths []string, opts *options) error {
	modelNames := []string{opts.model}
	if opts.all {
		modelNames = tokencount.ModelNames()
	}

	tokenizers := make([]tokencount.Tokenizer, len(modelNames))
	for i, m := range modelNames {
		tok, err := tokencount.Load(m)
		if err != nil {
			return fmt.Errorf("model %q: %w", m, err)
		}
		tokenizers[i] = tok
	}

	inputs, err := gatherInputs(paths, opts)
	if err != nil {
		return err
	}

	if opts.share {
		return runShare(cmd, inputs, opts.model, tokenizers[0])
	}
	if opts.all {
		return runAll(cmd, inputs, modelNames, tokenizers)
	}
	return runSingle(cmd, inputs, tokenizers[0])
}

func gatherInputs(paths []string, opts *options) ([]input, error) {
	if len(paths) == 0 {
		buf, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return []input{{text: string(buf)}}, nil
	}

	files, err := expandPaths(paths, opts.recursive, !opts.noGitignore, opts.ignore)
	if err != nil {
		return nil, err
	}
	inputs := make([]input, len(files))
	for i, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		inputs[i] = input{name: f, text: string(data)}
	}
	return inputs, nil
}

// countAll runs tok.CountTokens over every input concurrently once there's
// more than one, bounded to NumCPU in flight at a time.
func countAll(inputs []input, tok tokencount.Tokenizer) ([]int, error) {
	counts := make([]int, len(inputs))
	if len(inputs) <= 1 {
		for i, in := range inputs {
			n, err := tok.CountTokens(in.text)
			if err != nil {
				return nil, err
			}
			counts[i] = n
		}
		return counts, nil
	}

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			n, err := tok.CountTokens(in.text)
			if err != nil {
				return err
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

func runSingle(cmd *cobra.Command, inputs []input, tok tokencount.Tokenizer) error {
	counts, err := countAll(inputs, tok)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	total := 0
	for _, c := range counts {
		total += c
	}
	switch len(inputs) {
	case 0:
		return nil
	case 1:
		fmt.Fprint(out, formatLine(counts[0], inputs[0].name))
	default:
		for i, in := range inputs {
			fmt.Fprint(out, formatLine(counts[i], in.name))
		}
		fmt.Fprint(out, formatLine(total, "total"))
	}
	return nil
}

func runAll(cmd *cobra.Command, inputs []input, modelNames []string, tokenizers []tokencount.Tokenizer) error {
	out := cmd.OutOrStdout()
	for _, in := range inputs {
		label := in.name
		if label == "" {
			label = "stdin"
		}
		for i, m := range modelNames {
			n, err := tokenizers[i].CountTokens(in.text)
			if err != nil {
				return err
			}
			fmt.Fprint(out, formatLine(n, fmt.Sprintf("%s (%s)", label, m)))
		}
	}
	return nil
}

func runShare(cmd *cobra.Command, inputs []input, modelName string, tok tokencount.Tokenizer) error {
	if len(inputs) > 2 {
		return fmt.Errorf("--share accepts at most two files (text A and text B)")
	}
	var textA, textB, labelA, labelB string
	labelA, labelB = "A", "B"
	if len(inputs) > 0 {
		textA = inputs[0].text
		if inputs[0].name != "" {
			labelA = inputs[0].name
		}
	}
	if len(inputs) > 1 {
		textB = inputs[1].text
		if inputs[1].name != "" {
			labelB = inputs[1].name
		}
	}

	countA, err := tok.CountTokens(textA)
	if err != nil {
		return err
	}
	countB := 0
	if len(inputs) > 1 {
		countB, err = tok.CountTokens(textB)
		if err != nil {
			return err
		}
	}

	errOut := cmd.ErrOrStderr()
	fmt.Fprintf(errOut, "  %s\n", modelName)
	fmt.Fprint(errOut, formatLine(countA, labelA))
	if len(inputs) > 1 {
		delta := countB - countA
		sign := ""
		if delta > 0 {
			sign = "+"
		}
		fmt.Fprint(errOut, formatLine(countB, labelB))
		fmt.Fprintf(errOut, "%8s %s\n", fmt.Sprintf("%s%d", sign, delta), "delta")
	}
	fmt.Fprintln(errOut)

	url, err := buildShareURL(textA, textB, modelName, countA, countB)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), url)
	return nil
}

func formatLine(count int, label string) string {
	return fmt.Sprintf("%8d %s\n", count, label)
}
