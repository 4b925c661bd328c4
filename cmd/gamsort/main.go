package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/lanrat/gamsort"
	"github.com/lanrat/gamsort/diff"
	"github.com/lanrat/gamsort/stream"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "gamsort",
		Usage: "Sort alignment streams by graph position",
		Commands: []*cli.Command{{
			Name:      "sort",
			Usage:     "Sort a stream of alignments by their smallest position",
			ArgsUsage: "[input [output]]",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "batch-size",
					Value: gamsort.DefaultConfig().MaxBatchSize,
					Usage: "alignments held in memory and written to each temporary run",
				},
				&cli.IntFlag{
					Name:  "flush-size",
					Value: gamsort.DefaultConfig().OutputFlushSize,
					Usage: "alignments buffered before each output write",
				},
				&cli.IntFlag{
					Name:  "workers",
					Value: 1,
					Usage: "goroutines sorting and writing runs while input is read",
				},
				&cli.IntFlag{
					Name:  "max-open-runs",
					Value: 0,
					Usage: "fail instead of opening more than this many runs at once, 0 for no limit",
				},
				&cli.StringFlag{
					Name:  "tmp-dir",
					Usage: "directory for temporary runs",
				},
				&cli.BoolFlag{
					Name:  "compress",
					Usage: "zstd compress temporary runs",
				},
				&cli.BoolFlag{
					Name:  "in-memory",
					Usage: "sort the whole input in memory without temporary runs",
				},
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "log progress to stderr",
				},
				&cli.BoolFlag{
					Name:  "metrics",
					Usage: "print metrics to stderr when done",
				},
			},
			Action: runSort,
		}, {
			Name:      "check",
			Usage:     "Verify that a stream of alignments is sorted",
			ArgsUsage: "[input]",
			Action:    runCheck,
		}, {
			Name:      "diff",
			Usage:     "Compare two sorted streams of alignments by position",
			ArgsUsage: "a b",
			Action:    runDiff,
		}},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction(zap.IncreaseLevel(zap.WarnLevel))
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func createOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func runSort(c *cli.Context) error {
	logger, err := newLogger(c.Bool("verbose"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	observers := gamsort.MultiObserver{gamsort.NewLogObserver(logger)}
	var metricsObserver *gamsort.MetricsObserver
	if c.Bool("metrics") {
		metricsObserver = gamsort.NewMetricsObserver()
		observers = append(observers, metricsObserver)
	}

	config := &gamsort.Config{
		MaxBatchSize:    c.Int("batch-size"),
		OutputFlushSize: c.Int("flush-size"),
		NumWorkers:      c.Int("workers"),
		MaxOpenRuns:     c.Int("max-open-runs"),
		TempFilesDir:    c.String("tmp-dir"),
		Compress:        c.Bool("compress"),
		Observer:        observers,
		Logger:          logger,
	}
	sorter, err := gamsort.NewAlignmentSorter(config)
	if err != nil {
		return err
	}
	defer func() {
		if err := sorter.Close(); err != nil {
			logger.Warn("removing temporary runs", zap.Error(err))
		}
	}()

	in, err := openInput(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := createOutput(c.Args().Get(1))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	if c.Bool("in-memory") {
		err = sortInMemory(ctx, sorter, in, out)
	} else {
		err = sorter.SortStream(ctx, in, out)
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if metricsObserver != nil {
		metricsObserver.WritePrometheus(os.Stderr)
	}
	if err != nil {
		logger.Error("sort failed", zap.Error(err))
	}
	return err
}

func sortInMemory(ctx context.Context, sorter *gamsort.Sorter[gamsort.Alignment], r io.Reader, w io.Writer) error {
	in := stream.NewReader(r, gamsort.UnmarshalAlignment, 0)
	out := stream.NewWriter(w, gamsort.MarshalAlignment, 0)
	return sorter.SortInMemory(ctx, in.All(), out)
}

func runCheck(c *cli.Context) error {
	in, err := openInput(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer in.Close()

	count, err := checkSorted(in)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	fmt.Printf("sorted: %d alignments\n", count)
	return nil
}

// checkSorted returns the number of alignments in r, or an error naming the
// first alignment out of order.
func checkSorted(r io.Reader) (int64, error) {
	reader := stream.NewReader(r, gamsort.UnmarshalAlignment, 0)
	var prev gamsort.Alignment
	var count int64
	for aln, err := range reader.All() {
		if err != nil {
			return count, err
		}
		if count > 0 && gamsort.AlignmentLess(aln, prev) {
			return count, fmt.Errorf("alignment %d (%q) sorts before alignment %d (%q)", count, aln.Name, count-1, prev.Name)
		}
		prev = aln
		count++
	}
	return count, nil
}

func runDiff(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("diff needs exactly two inputs", 2)
	}
	a, err := os.Open(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer a.Close()
	b, err := os.Open(c.Args().Get(1))
	if err != nil {
		return err
	}
	defer b.Close()

	result, err := diffSorted(c.Context, a, b, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, result.String())
	if !result.Equal() {
		return cli.Exit("", 1)
	}
	return nil
}

// diffSorted writes one line to w for every alignment whose position is only
// in a or only in b. Alignments at equal positions are matched in any order.
func diffSorted(ctx context.Context, a, b io.Reader, w io.Writer) (diff.Result, error) {
	return diff.Diff(ctx,
		stream.NewReader(a, gamsort.UnmarshalAlignment, 0).All(),
		stream.NewReader(b, gamsort.UnmarshalAlignment, 0).All(),
		gamsort.CompareAlignments,
		func(d diff.Delta, aln gamsort.Alignment) error {
			key := aln.SortKey()
			_, err := fmt.Fprintf(w, "%s %s\t%d:%t:%d\n", d, aln.Name, key.NodeID, key.IsReverse, key.Offset)
			return err
		})
}
