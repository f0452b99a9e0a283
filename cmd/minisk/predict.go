package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/YuminosukeSato/minisk/config"
	"github.com/YuminosukeSato/minisk/core/model"
	"github.com/YuminosukeSato/minisk/dataset"
	"github.com/YuminosukeSato/minisk/frame"
	"github.com/YuminosukeSato/minisk/pkg/errors"
	"github.com/YuminosukeSato/minisk/store"
)

// featureNamer is implemented by fitted estimators through model.StateManager.
type featureNamer interface {
	FeatureNames() []string
}

func loadRegressor(cfg *config.Config, name, weightsPath string) (model.Regressor, error) {
	var (
		est model.Estimator
		err error
	)
	switch {
	case name != "" && weightsPath != "":
		return nil, errors.New("predict: use either -model or -weights")
	case name != "":
		s, openErr := store.Open(cfg.StorePath)
		if openErr != nil {
			return nil, openErr
		}
		defer s.Close()
		est, err = s.Load(name)
	case weightsPath != "":
		w, loadErr := model.LoadWeights(weightsPath)
		if loadErr != nil {
			return nil, loadErr
		}
		est, err = store.Restore(w)
	default:
		return nil, errors.New("predict: -model or -weights is required")
	}
	if err != nil {
		return nil, err
	}
	reg, ok := est.(model.Regressor)
	if !ok {
		return nil, errors.Newf("predict: %s is not a regressor", est.Name())
	}
	return reg, nil
}

func runPredict(_ context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	name := fs.String("model", "", "stored model name")
	weightsPath := fs.String("weights", "", "weights JSON written by fit -out")
	dataPath := fs.String("data", "", "input data (CSV with header)")
	index := fs.String("index", "", "CSV column holding row labels")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dataPath == "" {
		return errors.New("predict: -data is required")
	}

	reg, err := loadRegressor(cfg, *name, *weightsPath)
	if err != nil {
		return err
	}
	if c, ok := reg.(model.Configurable); ok {
		if err := c.SetConfig(model.Config{ReturnType: model.ReturnFrame}); err != nil {
			return err
		}
	}

	var csvOpts []dataset.CSVOption
	if *index != "" {
		csvOpts = append(csvOpts, dataset.WithIndexColumn(*index))
	}
	X, err := dataset.LoadCSV(*dataPath, csvOpts...)
	if err != nil {
		return err
	}
	// extra columns (such as the targets) are ignored
	if fn, ok := reg.(featureNamer); ok {
		if X, err = X.Select(fn.FeatureNames()); err != nil {
			return err
		}
	}

	pred, err := reg.Predict(X)
	if err != nil {
		return err
	}
	out, ok := pred.(*frame.Frame)
	if !ok {
		return errors.Newf("predict: unexpected output %T", pred)
	}
	indexName := *index
	if indexName == "" {
		indexName = "index"
	}
	return dataset.WriteCSV(stdout, out, dataset.WithIndexColumn(indexName))
}

func runModels(_ context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("models", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := store.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.List()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tRUN\tCREATED\tR2")
	for _, r := range records {
		r2 := "-"
		if v, ok := r.Metrics["r2"]; ok {
			r2 = fmt.Sprintf("%.4f", v)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Name, r.ModelType, r.RunID, r.CreatedAt.Format("2006-01-02T15:04:05Z"), r2)
	}
	return tw.Flush()
}
