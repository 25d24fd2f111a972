package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/chrissnell/timbercruise/pkg/responseformat"
	"github.com/chrissnell/timbercruise/pkg/species"
	"github.com/chrissnell/timbercruise/pkg/taper"
)

func main() {
	var (
		speciesCode = flag.String("species", "", "Species code or name from the built-in catalog (e.g. DF, \"red alder\")")
		modelName   = flag.String("model", "", "Taper model when not using -species: czaplewski, kozak1969, kozak1988, wensel")
		coefList    = flag.String("coef", "", "Comma-separated coefficients for -model")
		dbh         = flag.Float64("dbh", 0, "Diameter at breast height, inches")
		height      = flag.Float64("height", 0, "Total tree height, feet")
		format      = flag.String("format", "table", "Output format: table, csv, json")
		list        = flag.Bool("list", false, "List catalog species and exit")
	)
	flag.Parse()

	if *list {
		listSpecies(os.Stdout)
		return
	}

	model, coef, label, err := resolveModel(*speciesCode, *modelName, *coefList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.PrintDefaults()
		os.Exit(1)
	}

	profile, err := evaluate(model, *dbh, *height, coef)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error evaluating profile: %v\n", err)
		os.Exit(1)
	}

	if err := render(os.Stdout, *format, label, model, profile); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}

// resolveModel picks the model and coefficients from either a catalog
// species or an explicit -model/-coef pair
func resolveModel(speciesCode, modelName, coefList string) (taper.Model, []float64, string, error) {
	switch {
	case speciesCode != "" && modelName != "":
		return 0, nil, "", fmt.Errorf("use either -species or -model, not both")
	case speciesCode != "":
		sp, err := species.Lookup(speciesCode)
		if err != nil {
			return 0, nil, "", err
		}
		return sp.Model, sp.Coefficients, sp.Code, nil
	case modelName != "":
		model, err := taper.ParseModel(modelName)
		if err != nil {
			return 0, nil, "", err
		}
		coef, err := parseCoefficients(coefList)
		if err != nil {
			return 0, nil, "", err
		}
		return model, coef, model.String(), nil
	default:
		return 0, nil, "", fmt.Errorf("one of -species or -model is required")
	}
}

// evaluate bounds-checks the tree before building its profile
func evaluate(model taper.Model, dbh, height float64, coef []float64) (taper.Profile, error) {
	if err := taper.CheckTree(dbh, height); err != nil {
		return nil, err
	}
	return taper.Evaluate(model, dbh, height, coef)
}

func parseCoefficients(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("-coef is required with -model")
	}
	fields := strings.Split(s, ",")
	coef := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("coefficient %d: %w", i+1, err)
		}
		coef[i] = v
	}
	return coef, nil
}

type jsonPoint struct {
	Height       int                  `json:"height"`
	DIBInt       int                  `json:"dib_int"`
	DIB          responseformat.Float `json:"dib"`
	DIBConverted responseformat.Float `json:"dib_converted"`
}

func render(w io.Writer, format, label string, model taper.Model, profile taper.Profile) error {
	switch format {
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(tw, "%s (%s)\t\t\t\t\n", label, model)
		fmt.Fprintf(tw, "height\tdib_int\tdib\tdib_ft\t\n")
		for _, pt := range profile {
			fmt.Fprintf(tw, "%d\t%d\t%.3f\t%.4f\t\n", pt.Height, pt.DIBInt, pt.DIB, pt.DIBConverted)
		}
		return tw.Flush()
	case "csv":
		records := make([][]string, 0, len(profile)+1)
		records = append(records, []string{"height", "dib_int", "dib", "dib_converted"})
		for _, pt := range profile {
			records = append(records, []string{
				strconv.Itoa(pt.Height),
				strconv.Itoa(pt.DIBInt),
				strconv.FormatFloat(pt.DIB, 'g', -1, 64),
				strconv.FormatFloat(pt.DIBConverted, 'g', -1, 64),
			})
		}
		return csv.NewWriter(w).WriteAll(records)
	case "json":
		points := make([]jsonPoint, len(profile))
		for i, pt := range profile {
			points[i] = jsonPoint{pt.Height, pt.DIBInt, responseformat.Float(pt.DIB), responseformat.Float(pt.DIBConverted)}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(points)
	default:
		return fmt.Errorf("unknown format %q (use table, csv or json)", format)
	}
}

func listSpecies(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tMODEL\tCOEFFICIENTS")
	for _, sp := range species.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%v\n", sp.Code, sp.Name, sp.Model, sp.Coefficients)
	}
	tw.Flush()
}
