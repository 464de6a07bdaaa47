// Command gdtrain fits a linear or logistic model to a CSV file by gradient
// descent and prints an optimization summary.
//
// Usage:
//
//	gdtrain -train train.csv [-val val.csv] [-config train.yaml] [-plot curve.png] [-weights model.json]
//
// The last CSV column is the target. A header row is detected and skipped.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/config"
	"github.com/YuminosukeSato/descent/core/model"
	"github.com/YuminosukeSato/descent/descent"
	"github.com/YuminosukeSato/descent/pkg/errors"
	"github.com/YuminosukeSato/descent/pkg/log"
	"github.com/YuminosukeSato/descent/preprocessing"
	"github.com/YuminosukeSato/descent/report"
	"github.com/YuminosukeSato/descent/task"
)

type flags struct {
	config  string
	train   string
	val     string
	task    string
	epochs  int
	plot    string
	weights string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gdtrain", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var f flags
	fs.StringVar(&f.config, "config", "", "YAML training configuration")
	fs.StringVar(&f.train, "train", "", "training CSV (required)")
	fs.StringVar(&f.val, "val", "", "validation CSV")
	fs.StringVar(&f.task, "task", "", "override the configured task (regression, classification)")
	fs.IntVar(&f.epochs, "epochs", 0, "override the configured number of epochs")
	fs.StringVar(&f.plot, "plot", "", "write the learning curve to this image file (.png, .svg, .pdf)")
	fs.StringVar(&f.weights, "weights", "", "write the fitted weights to this JSON file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if f.train == "" {
		fmt.Fprintln(stderr, "gdtrain: -train is required")
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintf(stderr, "gdtrain: %v\n", err)
		return 1
	}
	if err := log.Setup(cfg.LogLevel, cfg.LogFormat, stderr); err != nil {
		fmt.Fprintf(stderr, "gdtrain: %v\n", err)
		return 1
	}
	logger := log.GetLoggerWithName("gdtrain")

	res, err := train(cfg, f)
	if res != nil {
		if serr := report.Summary(stdout, report.FromResult(res)); serr != nil {
			logger.Error("failed to write summary", serr)
		}
	}
	if err != nil {
		logger.Error("training failed", err)
		return 1
	}

	if f.plot != "" {
		if err := report.LearningCurve(report.FromResult(res), f.plot); err != nil {
			logger.Error("failed to write learning curve", err)
			return 1
		}
		logger.Info("learning curve written", "path", f.plot)
	}
	if f.weights != "" {
		mw := model.NewModelWeights(res.Task, res.Theta)
		mw.Metadata["epochs"] = res.Epochs
		mw.Metadata["status"] = res.Status.String()
		if err := model.SaveWeights(mw, f.weights); err != nil {
			logger.Error("failed to write weights", err)
			return 1
		}
		logger.Info("weights written", "path", f.weights)
	}
	return 0
}

// loadConfig reads the configuration file, or the defaults, and applies the
// command-line overrides.
func loadConfig(f flags) (*config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		var err error
		if cfg, err = config.Load(f.config); err != nil {
			return nil, err
		}
	}
	if f.task == "" && f.epochs == 0 {
		return cfg, nil
	}
	if f.task != "" {
		cfg.Task = f.task
	}
	if f.epochs != 0 {
		cfg.Epochs = f.epochs
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid command-line override")
	}
	return cfg, nil
}

// train loads the data, scales it with statistics from the training rows
// and runs the trainer.
func train(cfg *config.Config, f flags) (*descent.Result, error) {
	trainSet, err := loadCSV(f.train)
	if err != nil {
		return nil, err
	}
	var valSet *dataset
	switch {
	case f.val != "":
		if valSet, err = loadCSV(f.val); err != nil {
			return nil, err
		}
	case cfg.ValidationFraction > 0:
		trainSet, valSet = trainSet.holdout(cfg.ValidationFraction, cfg.Seed)
	}

	scaler, err := preprocessing.New(cfg.Scaling)
	if err != nil {
		return nil, err
	}
	Xtr := trainSet.X
	var Xval *mat.Dense
	if valSet != nil {
		Xval = valSet.X
	}
	if scaler != nil {
		if Xtr, err = scaler.FitTransform(Xtr); err != nil {
			return nil, err
		}
		if Xval != nil {
			if Xval, err = scaler.Transform(Xval); err != nil {
				return nil, err
			}
		}
	}

	tk, err := cfg.BuildTask()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.TrainerOptions()
	if err != nil {
		return nil, err
	}
	if valSet != nil {
		opts = append(opts, descent.WithValidation(task.AddBias(Xval), valSet.Y))
	}
	tr, err := descent.New(opts...)
	if err != nil {
		return nil, err
	}
	return tr.Fit(tk, task.AddBias(Xtr), trainSet.Y)
}
