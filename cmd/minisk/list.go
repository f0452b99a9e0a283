package main

import (
	"context"
	"flag"
	"io"
	"strings"

	"github.com/YuminosukeSato/minisk/config"
	"github.com/YuminosukeSato/minisk/core/model"
	"github.com/YuminosukeSato/minisk/pkg/errors"
	"github.com/YuminosukeSato/minisk/registry"
)

func runList(_ context.Context, _ *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	var types, tags listFlag
	fs.Var(&types, "type", "estimator types to keep (regressor, transformer)")
	fs.Var(&tags, "tag", "tag filter key=value, repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := []registry.Option{registry.WithReturnTags(model.TagRegressorType, model.TagTransformerType)}
	if len(types) > 0 {
		opts = append(opts, registry.WithTypes(types...))
	}
	if len(tags) > 0 {
		filter := make(map[string][]string)
		for _, kv := range tags {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return errors.NewValidationError("tag", "must be key=value", kv)
			}
			filter[k] = append(filter[k], v)
		}
		opts = append(opts, registry.WithFilterTags(filter))
	}

	entries, err := registry.AllEstimators(opts...)
	if err != nil {
		return err
	}
	return registry.Table(stdout, entries)
}

func runTags(_ context.Context, _ *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("tags", flag.ContinueOnError)
	var types listFlag
	fs.Var(&types, "type", "estimator types (regressor, transformer)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	tags, err := registry.AllTags(types...)
	if err != nil {
		return err
	}
	return registry.TagTable(stdout, tags)
}
