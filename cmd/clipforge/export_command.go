package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xvanov/clipforge/internal/events"
	"github.com/xvanov/clipforge/internal/export"
	"github.com/xvanov/clipforge/internal/logging"
	"github.com/xvanov/clipforge/internal/project"
)

type exportFlags struct {
	projectPath  string
	outputPath   string
	resolution   string
	codec        string
	quality      string
	fps          int
	audioCodec   string
	audioBitrate int
	hwaccel      bool
}

func newExportCommand(cctx *commandContext) *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a project to a video file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), cctx, cmd, &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.projectPath, "project", "p", "", "Project file to render")
	cmd.Flags().StringVarP(&flags.outputPath, "output", "o", "", "Destination video file")
	cmd.Flags().StringVar(&flags.resolution, "resolution", "", "Output resolution (source, 2160p, 1440p, 1080p, 720p, 480p)")
	cmd.Flags().StringVar(&flags.codec, "codec", "", "Video codec (h264, hevc, vp9)")
	cmd.Flags().StringVar(&flags.quality, "quality", "", "Quality preset (high, medium, low)")
	cmd.Flags().IntVar(&flags.fps, "fps", 0, "Output frame rate (0 keeps the source rate)")
	cmd.Flags().StringVar(&flags.audioCodec, "audio-codec", "", "Audio codec (aac, mp3, opus)")
	cmd.Flags().IntVar(&flags.audioBitrate, "audio-bitrate", 0, "Audio bitrate in kbit/s")
	cmd.Flags().BoolVar(&flags.hwaccel, "hwaccel", true, "Use hardware H.264 encoding when available")
	cobra.CheckErr(cmd.MarkFlagRequired("project"))
	cobra.CheckErr(cmd.MarkFlagRequired("output"))

	return cmd
}

// runExport renders in-process: it builds a manager, submits one job, and
// blocks until the job reaches a terminal state.
func runExport(ctx context.Context, cctx *commandContext, cmd *cobra.Command, flags *exportFlags) error {
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return err
	}

	proj, err := project.Load(flags.projectPath)
	if err != nil {
		return err
	}
	settings := applyOverrides(proj.ExportSettings, flags, cmd)

	outputPath, err := filepath.Abs(flags.outputPath)
	if err != nil {
		return err
	}

	waiter := newWaiterEmitter(cmd)
	manager := export.NewManager(cfg, waiter, nil, logging.NewNop())

	id, err := manager.Create(ctx, export.Request{
		Tracks:     proj.Tracks,
		Library:    proj.Library(),
		OutputPath: outputPath,
		Settings:   settings,
	})
	if err != nil {
		return err
	}
	cmd.Printf("export started: %s\n", id)

	select {
	case err := <-waiter.done:
		manager.Wait()
		return err
	case <-ctx.Done():
		_ = manager.Cancel(context.Background(), id)
		manager.Wait()
		return ctx.Err()
	}
}

func applyOverrides(settings export.Settings, flags *exportFlags, cmd *cobra.Command) export.Settings {
	if flags.resolution != "" {
		settings.Resolution = export.Resolution(flags.resolution)
	}
	if flags.codec != "" {
		settings.Codec = export.VideoCodec(flags.codec)
	}
	if flags.quality != "" {
		settings.Quality = export.Quality(flags.quality)
	}
	if cmd.Flags().Changed("fps") {
		settings.FPS = flags.fps
	}
	if flags.audioCodec != "" {
		settings.AudioCodec = export.AudioCodec(flags.audioCodec)
	}
	if flags.audioBitrate > 0 {
		settings.AudioBitrate = flags.audioBitrate
	}
	if cmd.Flags().Changed("hwaccel") {
		settings.HardwareAcceleration = flags.hwaccel
	}
	return settings
}

// waiterEmitter prints sampled progress and resolves done on the first
// terminal event.
type waiterEmitter struct {
	cmd     *cobra.Command
	sampler *logging.ProgressSampler
	done    chan error
}

func newWaiterEmitter(cmd *cobra.Command) *waiterEmitter {
	return &waiterEmitter{
		cmd:     cmd,
		sampler: logging.NewProgressSampler(5),
		done:    make(chan error, 1),
	}
}

func (w *waiterEmitter) ExportProgress(_ context.Context, event events.ProgressEvent) {
	percent := event.Progress * 100
	if !w.sampler.ShouldLog(percent) {
		return
	}
	if event.ETASeconds > 0 {
		w.cmd.Printf("rendering %.0f%% (frame %d/%d, %.0f fps, ~%ds left)\n",
			percent, event.CurrentFrame, event.TotalFrames, event.FPS, event.ETASeconds)
		return
	}
	w.cmd.Printf("rendering %.0f%%\n", percent)
}

func (w *waiterEmitter) ExportComplete(_ context.Context, event events.CompleteEvent) {
	w.cmd.Printf("export complete: %s\n", event.OutputPath)
	w.resolve(nil)
}

func (w *waiterEmitter) ExportError(_ context.Context, event events.ErrorEvent) {
	w.resolve(errors.New(event.Error))
}

func (w *waiterEmitter) ExportCancelled(context.Context, events.CancelledEvent) {
	fmt.Fprintln(os.Stderr, "export cancelled")
	w.resolve(nil)
}

func (w *waiterEmitter) resolve(err error) {
	select {
	case w.done <- err:
	default:
	}
}
