package prompt

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/goliatone/go-tardigrade/pkg/manifest"
)

var sourceKinds = []string{"HTML template", "YAML descriptor"}

// Entry walks the user through one manifest entry. It returns ErrAborted when
// the user declines the summary.
func Entry(ctx context.Context, d Driver) (manifest.Entry, error) {
	kind, err := d.Select(ctx, SelectConfig{
		Message: "Source format",
		Options: sourceKinds,
	})
	if err != nil {
		return manifest.Entry{}, err
	}
	defaultSource := "template.html"
	if kind == 1 {
		defaultSource = "template.yaml"
	}

	source, err := d.Input(ctx, InputConfig{
		Message:   "Source file",
		Default:   defaultSource,
		Help:      "Path relative to the manifest",
		Validator: required("source"),
	})
	if err != nil {
		return manifest.Entry{}, err
	}
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))

	name, err := d.Input(ctx, InputConfig{
		Message:   "Template name",
		Default:   strcase.ToCamel(stem),
		Validator: required("name"),
	})
	if err != nil {
		return manifest.Entry{}, err
	}

	pkg, err := d.Input(ctx, InputConfig{
		Message:   "Go package",
		Default:   packageFor(source, stem),
		Validator: validPackage,
	})
	if err != nil {
		return manifest.Entry{}, err
	}

	output, err := d.Input(ctx, InputConfig{
		Message:   "Output file",
		Default:   filepath.ToSlash(filepath.Join(filepath.Dir(source), strcase.ToSnake(stem)+"_gen.go")),
		Validator: required("output"),
	})
	if err != nil {
		return manifest.Entry{}, err
	}

	entry := manifest.Entry{Name: name, Source: source, Package: pkg, Output: output}
	ok, err := d.Confirm(ctx, ConfirmConfig{
		Message: fmt.Sprintf("Add %s (%s -> %s)?", entry.Name, entry.Source, entry.Output),
		Default: true,
	})
	if err != nil {
		return manifest.Entry{}, err
	}
	if !ok {
		return manifest.Entry{}, ErrAborted
	}
	return entry, nil
}

func packageFor(source, stem string) string {
	if dir := filepath.Base(filepath.Dir(source)); dir != "." && dir != string(filepath.Separator) {
		stem = dir
	}
	return strings.ToLower(strcase.ToSnake(stem))
}

func required(field string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validPackage(v string) error {
	v = strings.TrimSpace(v)
	if !token.IsIdentifier(v) || token.IsKeyword(v) {
		return errors.New("not a valid Go package name")
	}
	return nil
}
