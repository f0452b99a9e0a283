// Command minisk lists, checks, fits and applies the estimators of the
// minisk module.
//
// Usage:
//
//	minisk list [-type regressor|transformer] [-tag key=value ...]
//	minisk tags [-type regressor|transformer]
//	minisk check [-name LinReg] [-run test,...] [-exclude test,...]
//	minisk fit -spec pipeline.toml -data train.csv [-index id] [-plot fit.png] [-save name] [-out weights.json]
//	minisk predict (-model name | -weights weights.json) -data test.csv [-index id]
//	minisk models
//
// Settings are read from MINISK_LOG_LEVEL, MINISK_LOG_BACKEND,
// MINISK_RETURN_TYPE and MINISK_STORE_PATH.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/YuminosukeSato/minisk/config"
	_ "github.com/YuminosukeSato/minisk/linear"
	_ "github.com/YuminosukeSato/minisk/pipeline"
	"github.com/YuminosukeSato/minisk/pkg/errors"
	_ "github.com/YuminosukeSato/minisk/preprocessing"
)

const usage = `usage: minisk <command> [flags]

commands:
  list      list registered estimators
  tags      list valid estimator tags
  check     run the conformance suite
  fit       fit a pipeline spec on a CSV file
  predict   predict a CSV file with a stored or exported model
  models    list stored models
`

type command func(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error

var commands = map[string]command{
	"list":    runList,
	"tags":    runTags,
	"check":   runCheck,
	"fit":     runFit,
	"predict": runPredict,
	"models":  runModels,
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "minisk:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Apply(stderr); err != nil {
		return err
	}

	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("no command given")
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprint(stderr, usage)
		return errors.Newf("unknown command %q", args[0])
	}
	return cmd(ctx, cfg, args[1:], stdout)
}

// listFlag collects comma-separated or repeated flag values.
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}
