// Command scitree fits a regression tree on a CSV or NumPy dataset, reports
// train and test errors and optionally exports, plots or stores the model.
//
//	scitree -data housing.csv -max-depth 8 -export-text -plot pred.png -save housing
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scitree/dataset"
	"github.com/YuminosukeSato/scitree/metrics"
	"github.com/YuminosukeSato/scitree/modelstore"
	"github.com/YuminosukeSato/scitree/pkg/errors"
	"github.com/YuminosukeSato/scitree/pkg/log"
	"github.com/YuminosukeSato/scitree/report"
	"github.com/YuminosukeSato/scitree/sklearn/tree"
)

// Exit codes.
const (
	exitOK = iota
	exitUsage
	exitLoad
	exitEmpty
	exitFit
	exitOutput
)

const previewRows = 5

type options struct {
	data      string
	npyTarget string

	maxDepth        int
	minSamplesSplit int
	minMSE          float64
	presort         bool
	jobs            int

	testSize float64
	seed     uint64

	exportText bool
	dot        string
	plot       string

	save          string
	storeDir      string
	minioEndpoint string
	bucket        string
	minioSecure   bool
	codec         string

	logLevel string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("scitree", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.data, "data", "", "training data: CSV file (last column is the target) or .npy feature matrix")
	fs.StringVar(&o.npyTarget, "npy-target", "", "target .npy file when -data is a .npy feature matrix")
	fs.IntVar(&o.maxDepth, "max-depth", tree.DefaultMaxDepth, "maximum tree depth")
	fs.IntVar(&o.minSamplesSplit, "min-samples-split", tree.DefaultMinSamplesSplit, "minimum samples on each side of a split")
	fs.Float64Var(&o.minMSE, "min-mse", tree.DefaultMinMSE, "node MSE below which no split is attempted")
	fs.BoolVar(&o.presort, "presort", false, "sort every feature once before building")
	fs.IntVar(&o.jobs, "jobs", 1, "parallel workers (0 or negative uses all CPUs)")
	fs.Float64Var(&o.testSize, "test-size", dataset.DefaultTestSize, "fraction of rows held out for testing")
	fs.Uint64Var(&o.seed, "seed", dataset.DefaultSeed, "shuffle seed")
	fs.BoolVar(&o.exportText, "export-text", false, "print the fitted tree as text")
	fs.StringVar(&o.dot, "dot", "", "render the tree with graphviz; format from extension (.dot, .svg, .png, .jpg)")
	fs.StringVar(&o.plot, "plot", "", "write a predicted-vs-true chart of the test rows (.png, .svg, .pdf)")
	fs.StringVar(&o.save, "save", "", "store the fitted model under this name, or write it to a file when the name ends in .gob")
	fs.StringVar(&o.storeDir, "store-dir", "models", "directory of the local model store")
	fs.StringVar(&o.minioEndpoint, "minio-endpoint", "", "store models in MinIO/S3 at this endpoint instead of -store-dir")
	fs.StringVar(&o.bucket, "bucket", "scitree", "bucket for -minio-endpoint")
	fs.BoolVar(&o.minioSecure, "minio-secure", false, "use TLS for -minio-endpoint")
	fs.StringVar(&o.codec, "codec", "zstd", "model compression: none, lz4 or zstd")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.data == "" {
		fs.Usage()
		return nil, errors.NewValidationError("data", "is required", o.data)
	}
	if fs.NArg() > 0 {
		return nil, errors.NewValidationError("args", "unexpected positional arguments", fs.Args())
	}
	return o, nil
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return exitUsage
	}
	if err := log.SetupLogger(o.logLevel, true); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	logger := log.GetLoggerWithName("cli")

	codec, err := modelstore.ParseCodec(o.codec)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	ds, err := load(o)
	if err != nil {
		logger.Error("Loading data failed", err, log.SourceKey, o.data)
		if errors.Is(err, errors.ErrEmptyData) {
			return exitEmpty
		}
		return exitLoad
	}

	train, test, err := dataset.TrainTestSplit(ds, o.testSize, o.seed)
	if err != nil {
		logger.Error("Splitting data failed", err)
		if errors.Is(err, errors.ErrEmptyData) {
			return exitEmpty
		}
		return exitUsage
	}

	reg := tree.NewDecisionTreeRegressor(
		tree.WithMaxDepth(o.maxDepth),
		tree.WithMinSamplesSplit(o.minSamplesSplit),
		tree.WithMinMSE(o.minMSE),
		tree.WithPresort(o.presort),
		tree.WithNJobs(o.jobs),
	)

	start := time.Now()
	if err := reg.Fit(train.X, train.Y); err != nil {
		logger.Error("Fit failed", err)
		return exitFit
	}
	t := reg.Tree()
	logger.Info("Tree fitted",
		log.SamplesKey, t.Root.Samples,
		log.FeaturesKey, t.NFeatures,
		log.DepthKey, t.Depth(),
		log.LeavesKey, t.NLeaves(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	if err := printReport(stdout, reg, train, test); err != nil {
		logger.Error("Evaluation failed", err)
		return exitFit
	}

	if err := writeOutputs(ctx, stdout, o, codec, reg, ds.FeatureNames, test); err != nil {
		logger.Error("Writing outputs failed", err)
		return exitOutput
	}
	return exitOK
}

func load(o *options) (*dataset.Dataset, error) {
	if o.npyTarget != "" || strings.EqualFold(filepath.Ext(o.data), ".npy") {
		if o.npyTarget == "" {
			return nil, errors.NewValidationError("npy-target", "is required for .npy data", o.npyTarget)
		}
		return dataset.LoadNpyFiles(o.data, o.npyTarget)
	}
	return dataset.LoadCSVFile(o.data)
}

func evaluate(reg *tree.DecisionTreeRegressor, ds *dataset.Dataset) (rmse, r2 float64, pred *mat.VecDense, err error) {
	p, err := reg.Predict(ds.X)
	if err != nil {
		return 0, 0, nil, err
	}
	pred, err = metrics.ColumnVector("evaluate", p)
	if err != nil {
		return 0, 0, nil, err
	}
	truth, err := metrics.ColumnVector("evaluate", ds.Y)
	if err != nil {
		return 0, 0, nil, err
	}
	if rmse, err = metrics.RMSE(truth, pred); err != nil {
		return 0, 0, nil, err
	}
	// R² is undefined on a constant target; report NaN rather than fail.
	if r2, err = metrics.R2Score(truth, pred); err != nil {
		r2 = math.NaN()
	}
	return rmse, r2, pred, nil
}

func printReport(w io.Writer, reg *tree.DecisionTreeRegressor, train, test *dataset.Dataset) error {
	t := reg.Tree()
	fmt.Fprintf(w, "tree: depth=%d leaves=%d nodes=%d\n", t.Depth(), t.NLeaves(), t.NNodes())

	rmse, r2, _, err := evaluate(reg, train)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "train: rmse=%.6g r2=%.6g\n", rmse, r2)

	if test == nil {
		fmt.Fprintln(w, "test: no rows held out")
		return nil
	}
	rmse, r2, pred, err := evaluate(reg, test)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "test: rmse=%.6g r2=%.6g\n", rmse, r2)

	n := min(previewRows, pred.Len())
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "%.6g -> %.6g\n", pred.AtVec(i), test.Y.At(i, 0))
	}
	return nil
}

func writeOutputs(ctx context.Context, stdout io.Writer, o *options, codec modelstore.Codec,
	reg *tree.DecisionTreeRegressor, featureNames []string, test *dataset.Dataset) error {
	t := reg.Tree()

	if o.exportText {
		text, err := tree.ExportText(t, featureNames)
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, text)
	}

	if o.dot != "" {
		if err := writeGraph(t, o.dot); err != nil {
			return err
		}
	}

	if o.plot != "" {
		if test == nil {
			return errors.NewValidationError("plot", "needs held-out rows, use -test-size > 0", o.plot)
		}
		p, err := reg.Predict(test.X)
		if err != nil {
			return err
		}
		chart, err := report.PredictionPlot(test.Target(), mat.Col(nil, 0, p))
		if err != nil {
			return err
		}
		if err := report.Save(chart, o.plot); err != nil {
			return err
		}
	}

	if strings.EqualFold(filepath.Ext(o.save), ".gob") {
		return modelstore.SaveFile(o.save, reg)
	}
	if o.save != "" {
		blobs, err := openBlobStore(ctx, o)
		if err != nil {
			return err
		}
		store := modelstore.NewStore(blobs, modelstore.WithCodec(codec))
		if err := store.Save(ctx, o.save, reg); err != nil {
			return err
		}
	}
	return nil
}

func writeGraph(t *tree.Tree, path string) error {
	format := graphviz.XDOT
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		format = graphviz.SVG
	case ".png":
		format = graphviz.PNG
	case ".jpg", ".jpeg":
		format = graphviz.JPG
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := tree.ExportGraphviz(t, f, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func openBlobStore(ctx context.Context, o *options) (modelstore.BlobStore, error) {
	if o.minioEndpoint == "" {
		return modelstore.NewLocalStore(o.storeDir)
	}
	return modelstore.DialMinio(ctx, modelstore.MinioConfig{
		Endpoint:  o.minioEndpoint,
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		Secure:    o.minioSecure,
		Bucket:    o.bucket,
	})
}
