package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"

	"github.com/ironsheep/tesstrain-gen/internal/config"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	app = kingpin.New("tesstrain-gen", "Generates Tesseract training images with box files and ground truth text.")

	configPath = app.Flag("config", "JSON configuration file with canvas, noise and font profiles.").
			Short('c').Default("tesstrain.json").String()

	generateCmd    = app.Command("generate", "Render a training dataset.").Default()
	genQuantity    = generateCmd.Flag("quantity", "Samples per font and label kind (at least 1).").Short('q').Required().Int()
	genOutput      = generateCmd.Flag("output", "Output directory.").Short('o').Default("dataset").String()
	genDelete      = generateCmd.Flag("delete-output", "Remove and recreate the output directory first.").Bool()
	genDebug       = generateCmd.Flag("debug", "Outline every character box on the image.").Bool()
	genCharset     = generateCmd.Flag("charset", "Characters for the string label kind.").String()
	genKinds       = generateCmd.Flag("kinds", "Comma-separated label kinds: ulid, date, number, string.").Default("ulid,date,number,string").String()
	genWorkers     = generateCmd.Flag("workers", "Concurrent workers (0 uses every CPU).").Short('w').Default("0").Int()
	genSeed        = generateCmd.Flag("seed", "Random seed (0 picks one from the clock).").Int64()
	genNaming      = generateCmd.Flag("naming", "File stems: sequential ids or label ids.").Default("sequential").Enum("sequential", "label")
	genStartID     = generateCmd.Flag("start-id", "First sequential id.").Default("0").Int()
	genNoProgress  = generateCmd.Flag("no-progress", "Disable the progress bar.").Bool()
	genImageFormat = generateCmd.Flag("format", "Image format extension, overriding the configuration (.tif or .png).").String()

	tuneCmd       = app.Command("tune", "Measure glyph ink and print suggested box corrections per font.")
	tuneCharset   = tuneCmd.Flag("charset", "Characters to measure.").String()
	tuneOutput    = tuneCmd.Flag("output", "Directory for one debug sample per font.").Short('o').Default("tune").String()
	tuneThreshold = tuneCmd.Flag("threshold", "Gray level below which a pixel counts as ink.").Default("128").Uint8()

	overlayCmd   = app.Command("overlay", "Draw the boxes of a written sample onto its image.")
	overlayDir   = overlayCmd.Flag("dir", "Dataset directory.").Short('d').Default("dataset").String()
	overlayStem  = overlayCmd.Flag("stem", "Sample stem, e.g. eng_000042.").Short('s').Required().String()
	overlayExt   = overlayCmd.Flag("ext", "Image extension of the sample.").Default(".tif").String()
	overlayOut   = overlayCmd.Flag("out", "Output image (default <dir>/<stem>.overlay.png).").String()
	overlayColor = overlayCmd.Flag("color", "Outline colour as #RRGGBB.").Default("#FF0000").String()
	overlayCycle = overlayCmd.Flag("cycle", "Give consecutive boxes different hues.").Bool()

	versionCmd = app.Command("version", "Print version information.")
)

func main() {
	app.HelpFlag.Short('h')
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Logs and progress go to stderr; stdout carries command output.
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	debug := os.Getenv("TESSTRAIN_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("tesstrain-gen %s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch command {
	case generateCmd.FullCommand():
		err = runGenerate(ctx, debug)
	case tuneCmd.FullCommand():
		err = runTune(debug)
	case overlayCmd.FullCommand():
		err = runOverlay()
	case versionCmd.FullCommand():
		fmt.Printf("tesstrain-gen %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
	}

	if err != nil {
		var cerr *config.ConfigError
		if errors.As(err, &cerr) {
			app.Fatalf("configuration error: %v", err)
		}
		log.Fatalf("%s failed: %v", command, err)
	}
}
