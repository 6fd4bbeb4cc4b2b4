// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Command chartgen reads the output of
//
//	go test -bench BenchmarkRun -count 10
//
// from files or stdin and renders per-workload throughput and speedup bar
// charts comparing task system strategies into the charts directory.
package main

import (
	"fmt"
	"image/color"
	"log"
	"os"
	"slices"
	"strconv"

	"golang.org/x/perf/benchfmt"
	"golang.org/x/perf/benchmath"
	"golang.org/x/perf/benchproc"
	"golang.org/x/perf/benchunit"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const throughputUnit = "completed/s"

// strategyOrder fixes the left-to-right order of bars within a group.
var strategyOrder = []string{"Serial", "Spawn", "Spinning", "Sleeping"}

type StrategyKey struct{ benchproc.Key }
type WorkloadKey struct{ benchproc.Key }
type TasksKey struct{ benchproc.Key }

type chart struct {
	Title        string
	YAxisLabel   string
	XAxisLabel   string
	Groups       []string
	SeriesLabels []string
	Series       []plotter.Values
	FileBasename string
}

func plotBars(c *chart) error {
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XAxisLabel
	p.Y.Label.Text = c.YAxisLabel

	p.Title.TextStyle.Color = color.Gray{128}
	p.X.Color = color.Gray{128}
	p.Y.Color = color.Gray{128}
	p.X.Label.TextStyle.Color = color.Gray{128}
	p.Y.Label.TextStyle.Color = color.Gray{128}
	p.X.Tick.Color = color.Gray{128}
	p.Y.Tick.Color = color.Gray{128}
	p.X.Tick.Label.Color = color.Gray{128}
	p.Y.Tick.Label.Color = color.Gray{128}
	p.Legend.TextStyle.Color = color.Gray{128}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.Padding = 1 * vg.Millimeter
	p.BackgroundColor = color.Transparent

	palette, err := brewer.GetPalette(brewer.TypeQualitative, "Paired", max(3, len(c.SeriesLabels)))
	if err != nil {
		return err
	}
	colors := palette.Colors()

	barSpacing := vg.Points(3)
	barWidth := vg.Points(24)

	// Total width of the bar group, center to center.
	groupWidth := (barWidth + barSpacing) * vg.Length(len(c.Series)-1)

	for i, label := range c.SeriesLabels {
		bc, err := plotter.NewBarChart(c.Series[i], barWidth)
		if err != nil {
			return err
		}
		bc.Offset = (barWidth+barSpacing)*vg.Length(i) - groupWidth/2
		bc.Color = colors[i]
		bc.LineStyle.Width = 0
		p.Add(bc)
		p.Legend.Add(label, bc)
	}
	p.NominalX(c.Groups...)
	p.Y.Max *= 1.2

	if err := os.MkdirAll("charts", 0755); err != nil {
		return err
	}
	return p.Save(9*vg.Inch, 6*vg.Inch, "charts/"+c.FileBasename+".svg")
}

func main() {
	var pp benchproc.ProjectionParser
	strategyP, err := pp.Parse("/strategy", nil)
	if err != nil {
		log.Fatal(err)
	}
	workloadP, err := pp.Parse("/workload", nil)
	if err != nil {
		log.Fatal(err)
	}
	tasksP, err := pp.Parse("/tasks", nil)
	if err != nil {
		log.Fatal(err)
	}
	residueP := pp.Residue()

	samples := make(map[WorkloadKey]map[TasksKey]map[StrategyKey][]float64)
	strategyKeySet := make(map[StrategyKey]struct{})
	tasksKeySet := make(map[TasksKey]struct{})
	var workloadKeys []WorkloadKey
	var residues []benchproc.Key

	benchFiles := &benchfmt.Files{
		Paths:       os.Args[1:],
		AllowStdin:  true,
		AllowLabels: true,
	}
	for benchFiles.Scan() {
		var res *benchfmt.Result
		switch rec := benchFiles.Result(); rec := rec.(type) {
		case *benchfmt.Result:
			res = rec
		case *benchfmt.SyntaxError:
			// Report a non-fatal parse error.
			log.Print(rec)
			continue
		default:
			// Unknown record type. Ignore.
			continue
		}

		v, ok := res.Value(throughputUnit)
		if !ok {
			continue
		}

		workloadKey := WorkloadKey{workloadP.Project(res)}
		byTasks, ok := samples[workloadKey]
		if !ok {
			byTasks = make(map[TasksKey]map[StrategyKey][]float64)
			samples[workloadKey] = byTasks
			workloadKeys = append(workloadKeys, workloadKey)
		}
		tasksKey := TasksKey{tasksP.Project(res)}
		byStrategy, ok := byTasks[tasksKey]
		if !ok {
			byStrategy = make(map[StrategyKey][]float64)
			byTasks[tasksKey] = byStrategy
			tasksKeySet[tasksKey] = struct{}{}
		}
		strategyKey := StrategyKey{strategyP.Project(res)}
		byStrategy[strategyKey] = append(byStrategy[strategyKey], v)
		strategyKeySet[strategyKey] = struct{}{}

		residues = append(residues, residueP.Project(res))
	}
	if err := benchFiles.Err(); err != nil {
		log.Fatalf("Error reading benchmark files: %v", err)
	}
	if len(workloadKeys) == 0 {
		log.Fatalf("no %s results found", throughputUnit)
	}

	nonsingular := benchproc.NonSingularFields(residues)
	if len(nonsingular) > 0 {
		fmt.Printf("warning: results vary in %s\n", nonsingular)
	}

	strategyField := strategyP.Fields()[0]
	strategyKeys := make([]StrategyKey, 0, len(strategyKeySet))
	for k := range strategyKeySet {
		strategyKeys = append(strategyKeys, k)
	}
	rank := func(k StrategyKey) int {
		if i := slices.Index(strategyOrder, k.Get(strategyField)); i >= 0 {
			return i
		}
		return len(strategyOrder)
	}
	slices.SortFunc(strategyKeys, func(a, b StrategyKey) int {
		return rank(a) - rank(b)
	})
	var serialKey *StrategyKey
	for i := range strategyKeys {
		if strategyKeys[i].Get(strategyField) == "Serial" {
			serialKey = &strategyKeys[i]
		}
	}

	tasksField := tasksP.Fields()[0]
	tasksCounts := make(map[TasksKey]int)
	tasksKeys := make([]TasksKey, 0, len(tasksKeySet))
	for k := range tasksKeySet {
		n, err := strconv.Atoi(k.Get(tasksField))
		if err != nil {
			log.Fatalf("Error parsing task count %q: %v", k.Get(tasksField), err)
		}
		tasksCounts[k] = n
		tasksKeys = append(tasksKeys, k)
	}
	slices.SortFunc(tasksKeys, func(a, b TasksKey) int {
		return tasksCounts[a] - tasksCounts[b]
	})

	confidence := 0.95
	thresholds := benchmath.DefaultThresholds
	summarize := func(values []float64) benchmath.Summary {
		sample := benchmath.NewSample(values, &thresholds)
		return benchmath.AssumeNothing.Summary(sample, confidence)
	}

	workloadField := workloadP.Fields()[0]
	for _, workloadKey := range workloadKeys {
		workloadName := workloadKey.Get(workloadField)

		groups := make([]string, len(tasksKeys))
		for i, k := range tasksKeys {
			groups[i] = k.Get(tasksField)
		}
		labels := make([]string, len(strategyKeys))
		for i, k := range strategyKeys {
			labels[i] = k.Get(strategyField)
		}

		throughputChart := chart{
			Title:        fmt.Sprintf("Throughput (%s)", workloadName),
			XAxisLabel:   "Tasks per Launch",
			YAxisLabel:   "Tasks / Second",
			Groups:       groups,
			SeriesLabels: labels,
			Series:       make([]plotter.Values, len(strategyKeys)),
			FileBasename: workloadName + "_throughput",
		}
		speedupChart := throughputChart
		speedupChart.Title = fmt.Sprintf("Speedup vs. Serial (%s)", workloadName)
		speedupChart.YAxisLabel = "Throughput vs. Serial"
		speedupChart.Series = make([]plotter.Values, len(strategyKeys))
		speedupChart.FileBasename = workloadName + "_speedup"

		for i, strategyKey := range strategyKeys {
			throughputChart.Series[i] = make(plotter.Values, len(tasksKeys))
			speedupChart.Series[i] = make(plotter.Values, len(tasksKeys))
			for j, tasksKey := range tasksKeys {
				values := samples[workloadKey][tasksKey][strategyKey]
				if len(values) == 0 {
					continue
				}
				summary := summarize(values)
				throughputChart.Series[i][j] = summary.Center
				fmt.Printf("%s/tasks=%s/strategy=%s: %s\n", workloadName, tasksKey.Get(tasksField),
					strategyKey.Get(strategyField), benchunit.Scale(summary.Center, benchunit.Decimal))

				if serialKey == nil {
					continue
				}
				reference := samples[workloadKey][tasksKey][*serialKey]
				if len(reference) == 0 {
					continue
				}
				speedupChart.Series[i][j] = summary.Center / summarize(reference).Center
			}
		}

		if err := plotBars(&throughputChart); err != nil {
			log.Fatalf("Error creating chart: %v", err)
		}
		if serialKey != nil {
			if err := plotBars(&speedupChart); err != nil {
				log.Fatalf("Error creating chart: %v", err)
			}
		}
	}

	fmt.Println("Charts generated successfully in the 'charts' directory.")
}
