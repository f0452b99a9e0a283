package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"

	"github.com/YuminosukeSato/minisk/check"
	"github.com/YuminosukeSato/minisk/config"
	"github.com/YuminosukeSato/minisk/pkg/errors"
	"github.com/YuminosukeSato/minisk/registry"
)

func runCheck(ctx context.Context, _ *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	var names, run, exclude listFlag
	fs.Var(&names, "name", "estimators to check (default: all registered)")
	fs.Var(&run, "run", "checks to run")
	fs.Var(&exclude, "exclude", "checks to skip")
	if err := fs.Parse(args); err != nil {
		return err
	}

	entries, err := registry.AllEstimators()
	if err != nil {
		return err
	}
	if len(names) > 0 {
		var keep []registry.Entry
		for _, name := range names {
			found := false
			for _, e := range entries {
				if e.Name == name {
					keep = append(keep, e)
					found = true
				}
			}
			if !found {
				return errors.Wrapf(errors.ErrUnknownEstimator, "%q", name)
			}
		}
		entries = keep
	}

	var opts []check.Option
	if len(run) > 0 {
		opts = append(opts, check.WithTestsToRun(run...))
	}
	if len(exclude) > 0 {
		opts = append(opts, check.WithTestsToExclude(exclude...))
	}

	all, err := check.All(ctx, entries, opts...)
	if err != nil {
		return err
	}

	estimators := make([]string, 0, len(all))
	for name := range all {
		estimators = append(estimators, name)
	}
	sort.Strings(estimators)

	failed := 0
	for _, name := range estimators {
		results := all[name]
		for _, key := range results.Keys() {
			fmt.Fprintf(stdout, "%-60s %s\n", key, results[key])
		}
		failed += len(results.Failed())
	}
	if failed > 0 {
		return errors.Newf("%d checks failed", failed)
	}
	fmt.Fprintf(stdout, "all checks passed for %d estimators\n", len(estimators))
	return nil
}
