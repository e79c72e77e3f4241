package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/exr/logx"
	"github.com/ardnew/exr/registry"
)

// Check parses a .exr source and resolves its imports without evaluating
// it, reporting per-import and per-mapping status. It never fails solely
// because top-level expressions would error at evaluation time — that is
// expand's job; check only validates structure and resolution.
type Check struct {
	Source string `arg:""     default:"-" help:"Source .exr file, or '-' for stdin"`
	Report string `                       help:"Write a YAML status report to this path" type:"path"`
}

// reportEntry is one row of the --report output.
type reportEntry struct {
	Name   string `yaml:"name"`
	Status string `yaml:"status"`
	Detail string `yaml:"detail,omitempty"`
}

type checkReport struct {
	Source   string        `yaml:"source"`
	Imports  []reportEntry `yaml:"imports"`
	Mappings []reportEntry `yaml:"mappings"`
	Registry struct {
		Hits    int `yaml:"hits"`
		Misses  int `yaml:"misses"`
		Entries int `yaml:"entries"`
	} `yaml:"registry"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context, log logx.Logger) error {
	canonical, source, loader, err := resolveSource(c.Source)
	if err != nil {
		return err
	}

	reg := registry.New()

	report := checkReport{Source: canonical}

	owned, _, err := loadProgram(canonical, source, loader, reg)
	if err != nil {
		report.Imports = append(report.Imports, reportEntry{
			Name: canonical, Status: "error", Detail: err.Error(),
		})
	} else {
		for _, imp := range owned.Imports {
			report.Imports = append(report.Imports, reportEntry{
				Name: string(imp.Path.Raw), Status: "resolved",
			})
		}

		for _, m := range owned.Mappings {
			report.Mappings = append(report.Mappings, reportEntry{
				Name: string(m.Name), Status: "defined",
			})
		}
	}

	stats := reg.Stats()
	report.Registry.Hits = stats.Hits
	report.Registry.Misses = stats.Misses
	report.Registry.Entries = stats.Entries

	if c.Report != "" {
		if err := writeYAMLReport(c.Report, report); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stdout, "%s: %d import(s), %d mapping(s), registry %d/%d hit/miss\n",
		canonical, len(report.Imports), len(report.Mappings), stats.Hits, stats.Misses)

	if err != nil {
		fmt.Fprintln(os.Stderr, renderDiagnostic(diagnosticFor(canonical, source, err)))

		return err
	}

	return nil
}

func writeYAMLReport(path string, report checkReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
