// Package minisk is a small machine learning library built around an
// estimator convention: Fit / Predict / Transform, hyperparameters with
// GetParams / SetParams / Clone, class tags and a registry of estimators.
//
// Estimators accept any gonum mat.Matrix. Labeled input is passed as a
// *frame.Frame, whose column labels are recorded at fit time and checked at
// predict time; predictions keep the row labels of X and the column labels
// of y.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/minisk/frame"
//	    "github.com/YuminosukeSato/minisk/linear"
//	)
//
//	func main() {
//	    X, _ := frame.FromRows([][]float64{{1, 0}, {0, 1}, {1, 1}}, []string{"rooms", "age"})
//	    y, _ := frame.FromRows([][]float64{{3}, {-1}, {2}}, []string{"price"})
//
//	    reg, err := linear.NewLinReg()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := reg.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//	    pred, err := reg.Predict(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(pred)
//	}
//
// # Packages
//
//   - core/model: estimator interfaces, base types, tags, config, weights
//   - frame: labeled matrix
//   - linear: least squares regression (LinReg)
//   - preprocessing: min-max and standard scaling (Scaler)
//   - pipeline: RegressorPipeline composing transformers and one regressor
//   - registry: estimator lookup by name, type and tags
//   - check: estimator conformance suite
//   - metrics: regression metrics (MSE, RMSE, MAE, R²)
//   - dataset: CSV loading, train/test split, synthetic data
//   - store: bbolt store of fitted models
//   - plotting: regression diagnostics
//   - config: environment configuration
//   - pkg/errors, pkg/log: error types and structured logging
//
// The minisk command (cmd/minisk) exposes the registry, the conformance
// suite and TOML-specified pipelines on the command line.
package minisk
