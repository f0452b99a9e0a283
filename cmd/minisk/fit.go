package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/YuminosukeSato/minisk/config"
	"github.com/YuminosukeSato/minisk/core/model"
	"github.com/YuminosukeSato/minisk/dataset"
	"github.com/YuminosukeSato/minisk/metrics"
	"github.com/YuminosukeSato/minisk/pkg/errors"
	"github.com/YuminosukeSato/minisk/pkg/log"
	"github.com/YuminosukeSato/minisk/plotting"
	"github.com/YuminosukeSato/minisk/store"
)

func runFit(_ context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("fit", flag.ContinueOnError)
	specPath := fs.String("spec", "", "pipeline spec (TOML)")
	dataPath := fs.String("data", "", "training data (CSV with header)")
	index := fs.String("index", "", "CSV column holding row labels")
	plotPath := fs.String("plot", "", "save a predicted-vs-actual plot of the held-out rows")
	saveName := fs.String("save", "", "store the fitted model under this name")
	outPath := fs.String("out", "", "write the fitted weights as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *specPath == "" || *dataPath == "" {
		return errors.New("fit: -spec and -data are required")
	}

	logger := log.GetLoggerWithName("minisk")

	spec, err := LoadSpec(*specPath)
	if err != nil {
		return err
	}
	var csvOpts []dataset.CSVOption
	if *index != "" {
		csvOpts = append(csvOpts, dataset.WithIndexColumn(*index))
	}
	data, err := dataset.LoadCSV(*dataPath, csvOpts...)
	if err != nil {
		return err
	}
	X, y, err := dataset.SplitXY(data, spec.Targets)
	if err != nil {
		return err
	}
	XTrain, XTest, yTrain, yTest, err := dataset.TrainTestSplit(X, y, spec.TestSize, spec.Seed)
	if err != nil {
		return err
	}

	p, err := spec.Build()
	if err != nil {
		return err
	}
	if err := p.SetConfig(model.Config{ReturnType: model.ReturnFrame}); err != nil {
		return err
	}
	if err := p.Fit(XTrain, yTrain); err != nil {
		return err
	}
	yPred, err := p.Predict(XTest)
	if err != nil {
		return err
	}

	r2, err := metrics.R2ScoreMatrix(yTest, yPred)
	if err != nil {
		return err
	}
	mse, err := metrics.MSEMatrix(yTest, yPred)
	if err != nil {
		return err
	}
	logger.Info("pipeline fitted",
		log.SamplesKey, XTrain.Len(),
		log.FeaturesKey, XTrain.Width(),
		log.R2ScoreKey, r2,
		log.MSEKey, mse,
	)
	fmt.Fprintln(stdout, p.String())
	fmt.Fprintf(stdout, "train=%d test=%d r2=%.4f mse=%.4f\n", XTrain.Len(), XTest.Len(), r2, mse)

	if *plotPath != "" {
		title := fmt.Sprintf("%s (R2=%.3f)", spec.Targets[0], r2)
		if err := plotting.PredictionScatter(yTest, yPred, 0, title, *plotPath); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "plot written to %s\n", *plotPath)
	}

	if *outPath != "" {
		w, err := p.ExportWeights()
		if err != nil {
			return err
		}
		if err := model.SaveWeights(*outPath, w); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "weights written to %s\n", *outPath)
	}

	if *saveName != "" {
		s, err := store.Open(cfg.StorePath)
		if err != nil {
			return err
		}
		defer s.Close()
		rec, err := s.Put(*saveName, p, map[string]float64{"r2": r2, "mse": mse})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "stored %s (run %s) in %s\n", rec.Name, rec.RunID, cfg.StorePath)
	}
	return nil
}
