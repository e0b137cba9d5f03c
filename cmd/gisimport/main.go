package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/woozymasta/gisimport/internal/config"
	"github.com/woozymasta/gisimport/internal/geo"
	"github.com/woozymasta/gisimport/internal/logger"
	"github.com/woozymasta/gisimport/internal/processor"
	"github.com/woozymasta/gisimport/internal/render"
	"github.com/woozymasta/gisimport/internal/table"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string `short:"c" long:"config"       env:"CONFIG_FILE"  description:"Path to YAML configuration file"`
	EnvFile     string `long:"env-file"               description:"Environment file loaded before parsing options" default:".env"`
	Input       string `short:"i" long:"in"           env:"INPUT_FILE"   description:"Input CSV export (default: exported_subdistrict_db.csv)"`
	Output      string `short:"o" long:"out"          env:"OUTPUT_FILE"  description:"Output save file (default: Imported_Streets.json)"`
	Datum       string `short:"d" long:"datum"        env:"COORD_TYPE"   description:"Datum of the input coordinates: BD09, GCJ02 or WGS84 (default: BD09)"`
	Name        string `short:"n" long:"name"         env:"SAVE_NAME"    description:"Save name shown by the engine (default: Imported_Streets)"`
	Description string `long:"desc"                   env:"SAVE_DESC"    description:"Save description, %d is replaced with the feature count"`
	Format      string `short:"f" long:"format"       description:"Output format" choice:"json" choice:"yaml"`
	GeoJSON     string `short:"g" long:"geojson"      description:"Also write a GeoJSON FeatureCollection to this path"`
	Preview     string `short:"p" long:"preview"      description:"Also render a WebP preview to this path"`
	PreviewSize int    `long:"preview-size"           description:"Preview width and height in pixels (default: 1024)"`
	Precision   int    `long:"precision"              description:"Significant digits kept in output numbers, 0 keeps all"`
	Compact     bool   `long:"compact"                description:"Write the save file on a single line"`
	NoCompact   bool   `long:"no-compact"             description:"Write one element per line even if the config file sets compact"`
}

func main() {
	_ = godotenv.Load(envFileArg(os.Args[1:]))

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := opts.config(explicitOptions(parser))
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	if _, err := run(cfg, time.Now()); err != nil {
		log.Fatal().Err(err).Msg("Conversion failed")
	}
}

// config merges defaults, the optional YAML file and command line options.
// isSet reports whether an option was given explicitly; explicit numeric and
// boolean options win over the file even when they hold the zero value.
func (o Options) config(isSet func(long string) bool) (config.Config, error) {
	cfg := config.Default()

	if o.ConfigFile != "" {
		file, err := config.Load(o.ConfigFile)
		if err != nil {
			return cfg, fmt.Errorf("load configuration: %w", err)
		}
		cfg.Merge(*file)
	}

	cfg.Merge(config.Config{
		Input:       o.Input,
		Output:      o.Output,
		Datum:       o.Datum,
		Name:        o.Name,
		Description: o.Description,
		Format:      o.Format,
		GeoJSON:     o.GeoJSON,
		Preview:     o.Preview,
		PreviewSize: o.PreviewSize,
		Precision:   o.Precision,
		Compact:     o.Compact,
	})

	if isSet("precision") {
		cfg.Precision = o.Precision
	}
	if isSet("preview-size") {
		cfg.PreviewSize = o.PreviewSize
	}
	if isSet("compact") {
		cfg.Compact = o.Compact
	}
	if o.NoCompact {
		cfg.Compact = false
	}

	return cfg, cfg.Validate()
}

// run converts the configured table and writes the save file plus optional side outputs.
// Failing rows are skipped; a source read or save write failure is returned.
func run(cfg config.Config, now time.Time) (*processor.Report, error) {
	from, err := cfg.SourceDatum()
	if err != nil {
		return nil, err
	}

	log.Info().Str("input", cfg.Input).Msg("Reading source table")

	rows, err := table.ReadFile(cfg.Input)
	if err != nil {
		return nil, err
	}

	if from == geo.Target {
		log.Info().Str("datum", string(from)).Msg("Source already in target datum, coordinates passed through")
	} else if from == geo.WGS84 {
		log.Warn().Msg("WGS84 input is converted with the GCJ02 formula, expect offsets of several hundred meters")
	}

	report := processor.Convert(rows, from)
	features := report.Features()

	sf := processor.NewSaveFile(cfg.Name, cfg.Description, features, now)
	err = processor.WriteSaveFile(cfg.Output, sf, processor.WriteOptions{
		Format:    cfg.Format,
		Compact:   cfg.Compact,
		Precision: cfg.Precision,
	})
	if err != nil {
		return report, fmt.Errorf("write save file %s: %w", cfg.Output, err)
	}

	log.Info().
		Int("rows_attempted", report.Attempted()).
		Int("features", len(features)).
		Int("rows_skipped", len(report.Failures())).
		Str("output", cfg.Output).
		Str("save_id", sf.ID).
		Msg("Conversion finished successfully")

	if cfg.GeoJSON != "" {
		if err := processor.WriteGeoJSON(cfg.GeoJSON, features); err != nil {
			log.Error().Err(err).Str("path", cfg.GeoJSON).Msg("Failed to write GeoJSON export")
		}
	}

	if cfg.Preview != "" {
		if err := render.WritePreview(cfg.Preview, features, cfg.PreviewSize); err != nil {
			log.Error().Err(err).Str("path", cfg.Preview).Msg("Failed to render preview")
		}
	}

	if cfg.Format == "json" {
		log.Info().Msg("Copy the save file into the project Saved/GISData/ folder to load it in the engine")
	}

	return report, nil
}

// explicitOptions reports options given on the command line, defaults and env excluded.
func explicitOptions(parser *flags.Parser) func(long string) bool {
	return func(long string) bool {
		opt := parser.FindOptionByLongName(long)
		return opt != nil && opt.IsSet()
	}
}

// envFileArg finds the --env-file value before options are parsed, so env tags can see it.
func envFileArg(args []string) string {
	for i, arg := range args {
		if arg == "--env-file" && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(arg, "--env-file="); ok {
			return v
		}
	}

	return ".env"
}
