package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/scenariosim/internal/catalog"
	"github.com/codex-k8s/scenariosim/internal/engine"
	"github.com/codex-k8s/scenariosim/internal/playback"
)

// newPipelineCommand groups pipeline subcommands.
func newPipelineCommand() *cobra.Command {
	return newGroupCommand("pipeline", "Inspect and play pipelines",
		newPipelineShowCommand(),
		newPipelinePlayCommand(),
	)
}

func newPipelineShowCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show [pipeline]",
		Short: "Show the stages, jobs and steps of a pipeline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			cat, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			p, err := cat.Pipeline(scenarioArg(args, SettingsFromContext(cmd.Context()).DefaultPipeline))
			if err != nil {
				return err
			}
			if output != outputText {
				return writeStructured(cmd.OutOrStdout(), output, p)
			}
			renderPipelineTree(cmd.OutOrStdout(), p)
			return nil
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}

func newPipelinePlayCommand() *cobra.Command {
	var (
		speed       time.Duration
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "play [pipeline]",
		Short: "Play a pipeline stage by stage until it completes or stops on a failure",
		Long: "Play a pipeline stage by stage. With --interactive, commands are read from stdin, one per line: " +
			"start, pause, resume, reset, speed <duration>, quit.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := SettingsFromContext(cmd.Context())
			if cmd.Flags().Changed("speed") {
				if speed <= 0 {
					return fmt.Errorf("speed must be positive, got %s", speed)
				}
				s := *settings
				s.Speed = speed
				settings = &s
				cmd.SetContext(context.WithValue(cmd.Context(), settingsKey{}, settings))
			}

			eng, err := newEngineFromCmd(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return play(ctx, eng, playOptions{
				pipeline:    scenarioArg(args, settings.DefaultPipeline),
				autoStart:   settings.AutoStart,
				interactive: interactive,
				in:          cmd.InOrStdin(),
				out:         cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().DurationVar(&speed, "speed", 0, "Interval between stages (overrides settings)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Read playback commands from stdin")

	return cmd
}

type playOptions struct {
	pipeline    string
	autoStart   bool
	interactive bool
	in          io.Reader
	out         io.Writer
}

// errQuit ends playback at the user's request.
var errQuit = errors.New("quit")

// play mounts the pipeline and prints a frame after every change until
// playback reaches a terminal state or ctx is done.
func play(ctx context.Context, eng *engine.Engine, opts playOptions) error {
	defer eng.Unmount()
	if _, err := eng.Mount(opts.pipeline, engine.MountOptions{AutoStart: opts.autoStart}); err != nil {
		return err
	}

	var mu sync.Mutex
	done := make(chan struct{})
	var once sync.Once
	frame := func(v engine.PipelineView) {
		mu.Lock()
		renderFrame(opts.out, v)
		mu.Unlock()
		if v.State.Terminal() {
			once.Do(func() { close(done) })
		}
	}

	v := eng.PipelineView()
	renderPipelineHeader(opts.out, v)
	if len(v.Stages) == 0 {
		return nil
	}
	unsubscribe := eng.SubscribePipeline(frame)
	defer unsubscribe()
	frame(eng.PipelineView())

	// Without auto-start a non-interactive run still has to begin.
	if !opts.autoStart && !opts.interactive {
		if err := eng.Start(); err != nil {
			return err
		}
	}

	// Interactive runs keep accepting commands after a terminal state until
	// the user quits or stdin is closed.
	finished := done
	cmds := make(chan string)
	if opts.interactive {
		finished = nil
		readCtx, stopReading := context.WithCancel(ctx)
		defer stopReading()
		go readCommands(readCtx, opts.in, cmds)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-finished:
			return nil
		case line, ok := <-cmds:
			if !ok {
				cmds = nil
				finished = done
				continue
			}
			err := applyCommand(eng, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				mu.Lock()
				_, _ = fmt.Fprintf(opts.out, "! %v\n", err)
				mu.Unlock()
			}
		}
	}
}

// readCommands forwards non-empty lines from in until it is exhausted or ctx
// is done. A scan blocked on an open reader only returns once the reader is
// closed, so closable inputs are closed when ctx ends.
func readCommands(ctx context.Context, in io.Reader, out chan<- string) {
	defer close(out)
	if c, ok := in.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { _ = c.Close() })
		defer stop()
	}
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case out <- line:
		case <-ctx.Done():
			return
		}
	}
}

// applyCommand runs one interactive playback command.
func applyCommand(eng *engine.Engine, line string) error {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "start":
		return eng.Start()
	case "pause", "p":
		return eng.Pause()
	case "resume", "r":
		return eng.Resume()
	case "reset":
		eng.Reset()
		return nil
	case "speed":
		if len(fields) != 2 {
			return errors.New("usage: speed <duration>")
		}
		d, err := time.ParseDuration(fields[1])
		if err != nil {
			return err
		}
		return eng.SetSpeed(d)
	case "quit", "q":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

func renderPipelineHeader(w io.Writer, v engine.PipelineView) {
	if v.Pipeline == nil {
		return
	}
	_, _ = fmt.Fprintf(w, "%s (%s), %d stages, %s per stage\n", v.Pipeline.Name, v.Pipeline.ID, len(v.Stages), v.Speed)
	if len(v.Stages) == 0 {
		_, _ = fmt.Fprintln(w, "nothing to play")
	}
}

// renderFrame prints one line per playback change:
// the state followed by every stage marked done, active or pending.
func renderFrame(w io.Writer, v engine.PipelineView) {
	parts := make([]string, len(v.Stages))
	for i, st := range v.Stages {
		switch st.Phase {
		case playback.PhaseComplete:
			parts[i] = "✓ " + st.Name
		case playback.PhaseActive:
			parts[i] = "[" + badge(st.Badge) + " " + st.Name + "]"
		default:
			parts[i] = "· " + st.Name
		}
	}
	_, _ = fmt.Fprintf(w, "%-15s %s\n", v.State, strings.Join(parts, "  "))
}

func renderPipelineTree(w io.Writer, p *catalog.Pipeline) {
	_, _ = fmt.Fprintf(w, "%s (%s)\n", p.Name, p.ID)
	if p.Description != "" {
		_, _ = fmt.Fprintln(w, p.Description)
	}
	if p.Trigger != "" {
		_, _ = fmt.Fprintf(w, "trigger: %s\n", p.Trigger)
	}
	for _, st := range p.Stages {
		line := fmt.Sprintf("%s %s", badge(st.Status.Badge()), st.Name)
		if len(st.DependsOn) > 0 {
			line += " (after " + strings.Join(st.DependsOn, ", ") + ")"
		}
		section(w, line)
		for _, job := range st.Jobs {
			_, _ = fmt.Fprintf(w, "  %s %s\n", badge(job.Status.Badge()), job.Name)
			for _, step := range job.Steps {
				_, _ = fmt.Fprintf(w, "      %s %s %s\n", badge(step.Status.Badge()), step.Name, step.Duration)
			}
		}
	}
}
