package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/haivivi/splittyping/pkg/chatstate"
	"github.com/haivivi/splittyping/pkg/cli"
	"github.com/haivivi/splittyping/pkg/typing"
)

var previewNoWait bool

var previewCmd = &cobra.Command{
	Use:   "preview [text...]",
	Short: "Play back a reply with typing pacing",
	Long: `Split a reply and print its fragments with the configured typing delays
and pauses, the way a chat user would receive them.

With --no-wait the whole schedule is printed at once with its timings.

Examples:
  splittyping preview "真的吗？太好了！"
  echo "你好。再见。" | splittyping preview --no-wait`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().BoolVar(&previewNoWait, "no-wait", false, "print the schedule without waiting")
	previewCmd.Flags().StringVarP(&splitMode, "mode", "m", "", "segmentation mode: default or simple (overrides settings)")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	texts, _, err := readTexts(cmd, args, "")
	if err != nil {
		return err
	}
	text := texts[0]

	cfg := GetConfig().TypingConfig()
	if cfg.Segment, err = segmentConfigFromFlags(cmd); err != nil {
		return err
	}
	planner := typing.NewPlanner(cfg)
	styles := cli.NewStyles(cli.DefaultTheme)
	out := cmd.OutOrStdout()

	if previewNoWait {
		sched, err := planner.Plan(text)
		if errors.Is(err, typing.ErrNotSplit) {
			fmt.Fprintln(out, text)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, cli.RenderSchedule(styles, "preview", sched.Steps(), 60))
		for _, st := range sched.Steps() {
			fmt.Fprintf(out, "%s  %s\n", cli.RenderStep(styles, st), cli.RenderTiming(styles, st))
		}
		return nil
	}

	d := typing.NewDispatcher(planner, printer{w: out, styles: styles})
	chat := chatstate.ChatID{Type: chatstate.TypePerson, ID: "preview"}
	dl, err := d.Deliver(cmd.Context(), chat, text)
	if errors.Is(err, typing.ErrNotSplit) {
		fmt.Fprintln(out, text)
		return nil
	}
	if err != nil {
		return err
	}
	if IsVerbose() {
		fmt.Fprintln(out, styles.Help.Render(fmt.Sprintf("delivery %s: %d fragments in %s",
			dl.ID, dl.Sent, cli.FormatDuration(dl.Finished.Sub(dl.Started)))))
	}
	return nil
}

// printer is a typing.Sender writing fragments to a terminal.
type printer struct {
	w      io.Writer
	styles cli.Styles
}

func (p printer) Send(_ context.Context, _ chatstate.ChatID, step typing.Step) error {
	_, err := fmt.Fprintln(p.w, cli.RenderStep(p.styles, step))
	return err
}
