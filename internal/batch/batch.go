// Package batch drives dataset generation across a pool of workers.
//
// A run expands the configured font profiles and label kinds into a job list
// (profiles x kinds x quantity) and executes the jobs on a bounded pool. Each
// job draws a label, takes an identifier, renders the sample and writes its
// triple. Jobs share nothing but the identifier allocator, the progress bar
// and the summary counters.
//
// Per-sample failures do not stop the run. Font failures and write failures
// are logged separately, counted in the Summary and the job is skipped.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/tesstrain-gen/internal/config"
	"github.com/ironsheep/tesstrain-gen/internal/dataset"
	"github.com/ironsheep/tesstrain-gen/internal/labels"
	"github.com/ironsheep/tesstrain-gen/internal/synth"
)

// Naming schemes for output stems.
const (
	NamingSequential = "sequential"
	NamingLabel      = "label"
)

// Job is one sample to produce.
type Job struct {
	Index     int
	Profile   config.FontProfile
	Generator labels.Generator
}

// Jobs expands profiles x generators x quantity in that nesting order.
func Jobs(profiles []config.FontProfile, gens []labels.Generator, quantity int) []Job {
	if quantity < 1 {
		return nil
	}
	jobs := make([]Job, 0, len(profiles)*len(gens)*quantity)
	for _, p := range profiles {
		for _, g := range gens {
			for i := 0; i < quantity; i++ {
				jobs = append(jobs, Job{Index: len(jobs), Profile: p, Generator: g})
			}
		}
	}
	return jobs
}

// Summary counts the outcome of a run.
type Summary struct {
	Attempted   int
	Succeeded   int
	FontErrors  int
	WriteErrors int
	OtherErrors int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d/%d samples written (%d font errors, %d write errors, %d other errors)",
		s.Succeeded, s.Attempted, s.FontErrors, s.WriteErrors, s.OtherErrors)
}

// Driver runs a generation batch.
type Driver struct {
	Synth  *synth.Synthesizer
	Writer *dataset.Writer

	Profiles   []config.FontProfile
	Generators []labels.Generator
	Quantity   int

	// Recreate empties the output directory before any job starts.
	Recreate bool

	// Workers bounds the pool; zero means runtime.NumCPU().
	Workers int

	// Seed makes label text and noise reproducible. Job i uses Seed+i.
	Seed int64

	Naming  string
	Prefix  string
	IDWidth int
	StartID int

	// Progress draws a bar on stderr.
	Progress bool
	// Verbose logs one line per written sample.
	Verbose bool
}

type counters struct {
	attempted   atomic.Int64
	succeeded   atomic.Int64
	fontErrors  atomic.Int64
	writeErrors atomic.Int64
	otherErrors atomic.Int64
}

func (c *counters) summary() Summary {
	return Summary{
		Attempted:   int(c.attempted.Load()),
		Succeeded:   int(c.succeeded.Load()),
		FontErrors:  int(c.fontErrors.Load()),
		WriteErrors: int(c.writeErrors.Load()),
		OtherErrors: int(c.otherErrors.Load()),
	}
}

// Validate checks the driver settings that are fatal before any work starts.
func (d *Driver) Validate() error {
	if d.Quantity < 1 {
		return &config.ConfigError{Field: "quantity", Reason: fmt.Sprintf("must be at least 1, got %d", d.Quantity)}
	}
	if d.Synth == nil || d.Writer == nil {
		return errors.New("driver requires a synthesizer and a writer")
	}
	if len(d.Profiles) == 0 {
		return &config.ConfigError{Field: "fonts", Reason: "at least one font profile is required"}
	}
	if len(d.Generators) == 0 {
		return &config.ConfigError{Field: "kinds", Reason: "at least one label kind is required"}
	}
	switch d.naming() {
	case NamingSequential, NamingLabel:
	default:
		return &config.ConfigError{Field: "naming", Reason: fmt.Sprintf("unknown scheme %q", d.Naming)}
	}
	if d.Workers < 0 {
		return &config.ConfigError{Field: "workers", Reason: "must not be negative"}
	}
	return nil
}

func (d *Driver) naming() string {
	if d.Naming == "" {
		return NamingSequential
	}
	return d.Naming
}

func (d *Driver) workers() int {
	if d.Workers > 0 {
		return d.Workers
	}
	return runtime.NumCPU()
}

// Run executes the batch. It returns an error only for failures that stop the
// whole run: invalid settings, output directory preparation or cancellation
// of ctx. Jobs not yet started when ctx is cancelled are not run.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	if err := d.Validate(); err != nil {
		return Summary{}, err
	}

	if d.Recreate {
		log.Printf("Recreating output directory %s", d.Writer.Dir)
		if err := dataset.Recreate(d.Writer.Dir); err != nil {
			return Summary{}, fmt.Errorf("failed to prepare output: %w", err)
		}
	} else if err := dataset.Ensure(d.Writer.Dir); err != nil {
		return Summary{}, fmt.Errorf("failed to prepare output: %w", err)
	}

	jobs := Jobs(d.Profiles, d.Generators, d.Quantity)
	alloc := NewAllocator(d.StartID)
	bar := d.newProgressBar(len(jobs))

	var stats counters
	var g errgroup.Group
	g.SetLimit(d.workers())

	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		job := job
		g.Go(func() error {
			if ctx.Err() == nil {
				d.runJob(job, alloc, &stats)
			}
			bar.Add(1)
			return nil
		})
	}
	g.Wait()
	bar.Finish()

	summary := stats.summary()
	log.Printf("Batch finished: %s", summary)
	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("batch cancelled: %w", err)
	}
	return summary, nil
}

func (d *Driver) runJob(job Job, alloc *Allocator, stats *counters) {
	stats.attempted.Add(1)

	rng := rand.New(rand.NewSource(d.Seed + int64(job.Index)))
	label := job.Generator.Generate(rng)

	stem := label.ID
	if d.naming() == NamingSequential {
		stem = dataset.Stem(d.Prefix, alloc.Next(), d.IDWidth)
	}

	sample, err := d.Synth.Render(job.Profile, stem, label.Text, rng)
	if err == nil {
		err = d.Writer.Write(sample)
	}
	if err != nil {
		d.recordFailure(job, stem, err, stats)
		return
	}

	stats.succeeded.Add(1)
	if d.Verbose {
		log.Printf("%s | %s | %s", job.Profile.Path, stem, label.Text)
	}
}

func (d *Driver) recordFailure(job Job, stem string, err error, stats *counters) {
	var ferr *synth.FontRenderError
	var perr *dataset.PersistenceError
	switch {
	case errors.As(err, &ferr):
		stats.fontErrors.Add(1)
		if ferr.Char != 0 {
			log.Printf("Font error: %s cannot render %q in sample %s, skipped: %v", ferr.Font, ferr.Char, stem, ferr.Err)
		} else {
			log.Printf("Font error: %s in sample %s, skipped: %v", ferr.Font, stem, ferr.Err)
		}
	case errors.As(err, &perr):
		stats.writeErrors.Add(1)
		log.Printf("Write error: sample %s (%s), skipped: %v", stem, job.Profile.Path, perr)
	default:
		stats.otherErrors.Add(1)
		log.Printf("Error: sample %s (%s), skipped: %v", stem, job.Profile.Path, err)
	}
}

func (d *Driver) newProgressBar(total int) *progressbar.ProgressBar {
	if !d.Progress {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("generating"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("samples"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
	)
}
