package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"storyreel/internal/logging"
	"storyreel/internal/pipeline"
	"storyreel/internal/speech"
)

var renderCmd = &cobra.Command{
	Use:   "render [config] [speech-config] [content]",
	Short: "Render a content description into a narrated video",
	Long: `Render runs the full pipeline over a content description.

The general config is a flat key=value file providing the output path
and font/background/logo fallbacks. The speech config describes the
remote synthesis service (credentials, languages, voices, segment
byte limit). The content description lists the items to render.

Artifacts are cached below the output path: an interrupted run can be
restarted and resumes where it stopped without repeating network
calls or synthesis.

Examples:
  storyreel render storyreel.conf speech.json content.json
  storyreel render storyreel.conf speech.json content.json -o out.mp4
  storyreel render storyreel.conf speech.json content.json --video bg.mp4
  storyreel render storyreel.conf speech.json content.json --offline`,
	Args: cobra.ExactArgs(3),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().
		StringP("output", "o", "", "Final video path (default: <data-dir>/final.mp4)")
	renderCmd.Flags().
		String("video", "", "Pre-supplied video track used instead of the image slideshow")
	renderCmd.Flags().
		String("log", "", "Also write logs to this file")
	renderCmd.Flags().
		String("provider", "remote", "Speech provider (remote, openai, gemini)")
	renderCmd.Flags().
		StringP("api-key", "k", "", "API key for the openai/gemini providers (or OPENAI_API_KEY / GEMINI_API_KEY)")
	renderCmd.Flags().
		Bool("offline", false, "Disable all network access; only cached artifacts are used")
}

func runRender(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	videoPath, _ := cmd.Flags().GetString("video")
	logPath, _ := cmd.Flags().GetString("log")
	providerStr, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")
	offline, _ := cmd.Flags().GetBool("offline")

	if logPath != "" {
		logger = logging.NewFileLogger(verbose, logPath)
	}
	defer logger.Sync()

	var provider speech.Provider
	switch providerStr {
	case "remote":
		provider = speech.ProviderRemote
	case "openai":
		provider = speech.ProviderOpenAI
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
	case "gemini":
		provider = speech.ProviderGemini
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
	default:
		return fmt.Errorf("unsupported provider %q: use remote, openai, or gemini", providerStr)
	}

	// an interrupt aborts the current item; cached artifacts stay on
	// disk so the next run resumes from them
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := pipeline.Run(ctx, pipeline.Options{
		ConfigPath:  args[0],
		SpeechPath:  args[1],
		ContentPath: args[2],
		VideoPath:   videoPath,
		OutputPath:  outputPath,
		Provider:    provider,
		APIKey:      apiKey,
		Offline:     offline,
		Logger:      logger,
	})
	if report != nil {
		printSummary(report)
	}
	if err != nil {
		return err
	}

	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d items failed", failed, len(report.Items))
	}

	return nil
}

func printSummary(report *pipeline.RunReport) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Item", "Segments", "Cues", "Narration", "Status"})

	for i, item := range report.Items {
		status := "ok"
		if item.Err != nil {
			status = "failed: " + item.Err.Error()
		}
		name := item.Name
		if name == "" {
			name = "(unnamed)"
		}
		t.AppendRow(table.Row{
			i + 1,
			name,
			item.Segments,
			item.Cues,
			item.Narration.Round(10 * time.Millisecond),
			status,
		})
	}

	t.Render()

	if report.Output != "" {
		fmt.Printf("Program written to %s\n", report.Output)
	}
}
