package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/splittyping/pkg/cli"
	"github.com/haivivi/splittyping/pkg/segment"
)

var (
	splitMode   string
	splitMaxRun int
	splitSeps   []string
	splitFile   string
	splitOutput string
	splitPretty bool
)

var splitCmd = &cobra.Command{
	Use:   "split [text...]",
	Short: "Split replies into fragments",
	Long: `Split a reply into fragments and print them.

The reply is taken from the arguments (joined by spaces), from a batch
file given with --file, or from stdin. A batch file is YAML or JSON holding
a list of replies or a {texts: [...]} object; each reply is split on its own.

Separators accept Go escapes, so --sep '\n' splits on newlines.

Examples:
  splittyping split "你好。再见。"
  splittyping split --mode simple --sep '||' "第一句||第二句"
  splittyping split -f replies.yaml -o json
  cat reply.txt | splittyping split -o raw`,
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().StringVarP(&splitMode, "mode", "m", "", "segmentation mode: default or simple (overrides settings)")
	splitCmd.Flags().IntVar(&splitMaxRun, "max-run", 0, "length threshold for intermediate punctuation (overrides settings)")
	splitCmd.Flags().StringSliceVar(&splitSeps, "sep", nil, "separator for simple mode, repeatable (overrides settings)")
	splitCmd.Flags().StringVarP(&splitFile, "file", "f", "", "batch file of replies (YAML or JSON)")
	splitCmd.Flags().StringVarP(&splitOutput, "output", "o", "yaml", "output format: yaml, json or raw")
	splitCmd.Flags().BoolVar(&splitPretty, "pretty", false, "render fragments in a styled frame")
	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(splitOutput)
	if err != nil {
		return err
	}
	segCfg, err := segmentConfigFromFlags(cmd)
	if err != nil {
		return err
	}
	s := segment.New(segCfg)

	texts, batch, err := readTexts(cmd, args, splitFile)
	if err != nil {
		return err
	}

	results := make([][]string, len(texts))
	for i, text := range texts {
		results[i] = s.Segment(text)
	}

	if splitPretty {
		styles := cli.NewStyles(cli.DefaultTheme)
		for i, frags := range results {
			title := "split"
			if batch {
				title = fmt.Sprintf("reply %d", i+1)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderFragments(styles, title, frags, 60))
		}
		return nil
	}

	opts := cli.OutputOptions{Format: format, Writer: cmd.OutOrStdout()}
	if batch {
		return cli.Output(results, opts)
	}
	return cli.Output(results[0], opts)
}

// segmentConfigFromFlags applies command line overrides to the settings.
func segmentConfigFromFlags(cmd *cobra.Command) (segment.Config, error) {
	cfg := GetConfig().SegmentConfig()
	if cmd.Flags().Changed("mode") {
		mode, err := segment.ParseMode(splitMode)
		if err != nil {
			return cfg, err
		}
		cfg.Mode = mode
	}
	if cmd.Flags().Changed("max-run") {
		if splitMaxRun <= 0 {
			return cfg, fmt.Errorf("--max-run must be positive, got %d", splitMaxRun)
		}
		cfg.MaxRunLength = splitMaxRun
	}
	if cmd.Flags().Changed("sep") {
		seps := make([]string, 0, len(splitSeps))
		for _, s := range splitSeps {
			u, err := unescape(s)
			if err != nil {
				return cfg, fmt.Errorf("--sep %q: %w", s, err)
			}
			seps = append(seps, u)
		}
		cfg.Separators = seps
	}
	return cfg, nil
}

// readTexts returns the replies to process. batch reports whether they
// came from a batch file.
func readTexts(cmd *cobra.Command, args []string, file string) (texts []string, batch bool, err error) {
	switch {
	case file != "":
		texts, err := cli.LoadTexts(file)
		if err != nil {
			return nil, false, err
		}
		return texts, true, nil
	case len(args) > 0:
		return []string{strings.Join(args, " ")}, false, nil
	}
	text, err := cli.ReadText(cmd.InOrStdin())
	if err != nil {
		return nil, false, err
	}
	return []string{text}, false, nil
}

// unescape interprets Go string escapes such as \n and \t.
func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	// Quote only the quotes the user did not escape already.
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if r == '"' && !escaped {
			b.WriteByte('\\')
		}
		escaped = r == '\\' && !escaped
		b.WriteRune(r)
	}
	return strconv.Unquote(`"` + b.String() + `"`)
}
