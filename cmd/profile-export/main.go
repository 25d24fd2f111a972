package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/timbercruise/internal/log"
	"github.com/chrissnell/timbercruise/pkg/responseformat"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	Format   ExportFormat
	Output   string
	Species  string
	Since    time.Time
}

// exportRow is one profile point joined with its run
type exportRow struct {
	RunID        uuid.UUID            `json:"run_id"`
	SpeciesCode  string               `json:"species_code,omitempty"`
	Model        string               `json:"model"`
	DBH          float64              `json:"dbh"`
	TotalHeight  float64              `json:"total_height"`
	CreatedAt    time.Time            `json:"created_at"`
	Height       int                  `json:"height"`
	DIBInt       int                  `json:"dib_int"`
	DIB          responseformat.Float `json:"dib"`
	DIBConverted responseformat.Float `json:"dib_converted"`
}

func main() {
	var cfg Config

	flag.StringVar(&cfg.Host, "host", "localhost", "Database host")
	flag.IntVar(&cfg.Port, "port", 5432, "Database port")
	flag.StringVar(&cfg.Database, "database", "timbercruise", "Database name")
	flag.StringVar(&cfg.User, "user", "postgres", "Database user")
	flag.StringVar(&cfg.Password, "password", "", "Database password")
	flag.StringVar(&cfg.SSLMode, "sslmode", "disable", "SSL mode (disable, require, etc)")
	formatStr := flag.String("format", "csv", "Export format: csv or json")
	flag.StringVar(&cfg.Output, "output", "profiles", "Output file base name (extension added automatically)")
	flag.StringVar(&cfg.Species, "species", "", "Only export runs for this species code")
	sinceStr := flag.String("since", "", "Only export runs created at or after this time (RFC3339)")
	flag.Parse()

	if err := log.Init(false); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	switch ExportFormat(*formatStr) {
	case FormatCSV, FormatJSON:
		cfg.Format = ExportFormat(*formatStr)
	default:
		log.Errorf("Invalid format: %s. Must be csv or json", *formatStr)
		os.Exit(1)
	}

	if *sinceStr != "" {
		t, err := time.Parse(time.RFC3339, *sinceStr)
		if err != nil {
			log.Errorf("Invalid -since time: %v", err)
			os.Exit(1)
		}
		cfg.Since = t
	}

	connStr := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password, cfg.SSLMode)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Errorf("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Errorf("Failed to ping database: %v", err)
		os.Exit(1)
	}
	log.Infof("Connected to database %s@%s:%d", cfg.Database, cfg.Host, cfg.Port)

	filename := cfg.Output + "." + string(cfg.Format)
	if err := export(ctx, pool, cfg, filename); err != nil {
		log.Errorf("Export failed: %v", err)
		os.Exit(1)
	}
	log.Info("Export completed successfully")
}

// buildQuery returns the export query and its arguments for the given filters
func buildQuery(speciesCode string, since time.Time) (string, []any) {
	var where []string
	var args []any
	if speciesCode != "" {
		args = append(args, strings.ToUpper(speciesCode))
		where = append(where, fmt.Sprintf("r.species_code = $%d", len(args)))
	}
	if !since.IsZero() {
		args = append(args, since)
		where = append(where, fmt.Sprintf("r.created_at >= $%d", len(args)))
	}

	query := `SELECT r.id, r.species_code, r.model, r.dbh, r.total_height, r.created_at,
		p.height, p.dib_int, p.dib, p.dib_converted
		FROM taper_profile_runs r
		JOIN taper_profile_points p ON p.run_id = r.id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY r.created_at, r.id, p.height"
	return query, args
}

func export(ctx context.Context, pool *pgxpool.Pool, cfg Config, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	query, args := buildQuery(cfg.Species, cfg.Since)
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var count int
	next := func() (exportRow, bool, error) {
		if !rows.Next() {
			return exportRow{}, false, rows.Err()
		}
		var r exportRow
		var dib, dibConverted float64
		var code *string
		if err := rows.Scan(&r.RunID, &code, &r.Model, &r.DBH, &r.TotalHeight, &r.CreatedAt,
			&r.Height, &r.DIBInt, &dib, &dibConverted); err != nil {
			return exportRow{}, false, fmt.Errorf("failed to scan row: %w", err)
		}
		if code != nil {
			r.SpeciesCode = *code
		}
		r.DIB = responseformat.Float(dib)
		r.DIBConverted = responseformat.Float(dibConverted)
		count++
		if count%10000 == 0 {
			log.Infof("Processed %d points...", count)
		}
		return r, true, nil
	}

	switch cfg.Format {
	case FormatJSON:
		err = writeJSON(file, next)
	default:
		err = writeCSV(file, next)
	}
	if err != nil {
		return err
	}

	log.Infof("Exported %d profile points to %s", count, filename)
	return nil
}

type rowSource func() (exportRow, bool, error)

var csvHeader = []string{"run_id", "species_code", "model", "dbh", "total_height", "created_at", "height", "dib_int", "dib", "dib_converted"}

func writeCSV(w io.Writer, next rowSource) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for {
		r, ok, err := next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		record := []string{
			r.RunID.String(),
			r.SpeciesCode,
			r.Model,
			strconv.FormatFloat(r.DBH, 'g', -1, 64),
			strconv.FormatFloat(r.TotalHeight, 'g', -1, 64),
			r.CreatedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(r.Height),
			strconv.Itoa(r.DIBInt),
			strconv.FormatFloat(float64(r.DIB), 'g', -1, 64),
			strconv.FormatFloat(float64(r.DIBConverted), 'g', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeJSON(w io.Writer, next rowSource) error {
	var out []exportRow
	for {
		r, ok, err := next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		out = append(out, r)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if out == nil {
		out = []exportRow{}
	}
	return encoder.Encode(out)
}

