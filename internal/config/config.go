// =============================================================================
// HS Code Reconciler - Configuration Module
// =============================================================================
//
// This module loads the application configuration: where outputs go, how to
// log, which columns hold which fields, and where the description block sits.
//
// SOURCES (highest precedence first):
//   1. Environment variables prefixed with RECON_ (RECON_OUTPUT_DIR,
//      RECON_MAPPING_INVOICE_HS_CODE="F,G", ...)
//   2. .env.local and .env files in the working directory
//   3. The YAML config file (--config, or ./reconciler.yaml if present)
//   4. Built-in defaults (see Default)
//
// The column mapping is kept as raw column references ("F", "16") until
// Resolve is called, so that the same file can be shown back to the operator
// exactly as typed.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/hscode-reconciler/internal/colref"
	"github.com/ginjaninja78/hscode-reconciler/internal/description"
	"github.com/ginjaninja78/hscode-reconciler/internal/records"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "RECON"

// DefaultConfigName is the config file looked up when no path is given.
const DefaultConfigName = "reconciler"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// OutputDir is where generated workbooks and CSV files are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir" validate:"required"`

	// OutputNameFormat defines output file names.
	// Placeholders:
	//   {uuid}      - a random UUID
	//   {timestamp} - current time (YYYYMMDD_HHMMSS)
	//   {kind}      - "hs-code-analysis" or "invoice-descriptions"
	// Default: "{kind}_{timestamp}"
	OutputNameFormat string `yaml:"output_name_format" mapstructure:"output_name_format" validate:"required"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// LogFormat is one of auto, json, console.
	LogFormat string `yaml:"log_format" mapstructure:"log_format" validate:"omitempty,oneof=auto json console"`

	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	CSV         CSVSettings       `yaml:"csv" mapstructure:"csv"`
	Mapping     ColumnMapping     `yaml:"mapping" mapstructure:"mapping"`
	Description DescriptionConfig `yaml:"description" mapstructure:"description"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Port is the TCP port to listen on. Default: 8080
	Port int `yaml:"port" mapstructure:"port" validate:"min=1,max=65535"`

	// MaxUploadMB caps the multipart body size. Default: 32
	MaxUploadMB int `yaml:"max_upload_mb" mapstructure:"max_upload_mb" validate:"min=1"`
}

// CSVSettings contains settings for reading CSV exports.
type CSVSettings struct {
	// Delimiter is the field separator: a single character, or one of
	// "tab", "pipe", "semicolon". Default: ","
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter" validate:"required"`

	// Encoding of the file: utf-8, utf-16, windows-1252 or iso-8859-1.
	// Default: "utf-8"
	Encoding string `yaml:"encoding" mapstructure:"encoding" validate:"omitempty,oneof=utf-8 utf-16 windows-1252 iso-8859-1"`
}

// =============================================================================
// COLUMN MAPPING
// =============================================================================

// ColumnMapping lists the raw column references for every field.
// Each list may name several columns:
//   - hs_code: the first non-empty column wins
//   - all numeric fields: the columns are summed
type ColumnMapping struct {
	Invoice     InvoiceMapping     `yaml:"invoice" mapstructure:"invoice"`
	PackingList PackingListMapping `yaml:"packing_list" mapstructure:"packing_list"`
}

// InvoiceMapping holds the invoice table columns.
type InvoiceMapping struct {
	HSCode []string `yaml:"hs_code" mapstructure:"hs_code" validate:"required,min=1,dive,required"`
	Amount []string `yaml:"amount" mapstructure:"amount" validate:"required,min=1,dive,required"`
}

// PackingListMapping holds the packing list table columns.
type PackingListMapping struct {
	Cartons     []string `yaml:"cartons" mapstructure:"cartons" validate:"required,min=1,dive,required"`
	NetWeight   []string `yaml:"net_weight" mapstructure:"net_weight" validate:"required,min=1,dive,required"`
	GrossWeight []string `yaml:"gross_weight" mapstructure:"gross_weight" validate:"required,min=1,dive,required"`
}

// ResolvedMapping is a ColumnMapping converted to 0-based column indices.
type ResolvedMapping struct {
	Invoice     records.InvoiceColumns
	PackingList records.PackingListColumns
}

// Resolve converts every column reference to a 0-based index.
// Malformed references resolve to column A.
func (m ColumnMapping) Resolve() ResolvedMapping {
	return ResolvedMapping{
		Invoice: records.InvoiceColumns{
			Key:    colref.ResolveAll(m.Invoice.HSCode),
			Amount: colref.ResolveAll(m.Invoice.Amount),
		},
		PackingList: records.PackingListColumns{
			Cartons:     colref.ResolveAll(m.PackingList.Cartons),
			NetWeight:   colref.ResolveAll(m.PackingList.NetWeight),
			GrossWeight: colref.ResolveAll(m.PackingList.GrossWeight),
		},
	}
}

// InvalidReferences returns every reference that Resolve would silently send
// to column A, prefixed with its field name.
func (m ColumnMapping) InvalidReferences() []string {
	fields := []struct {
		name string
		refs []string
	}{
		{"invoice.hs_code", m.Invoice.HSCode},
		{"invoice.amount", m.Invoice.Amount},
		{"packing_list.cartons", m.PackingList.Cartons},
		{"packing_list.net_weight", m.PackingList.NetWeight},
		{"packing_list.gross_weight", m.PackingList.GrossWeight},
	}

	var invalid []string
	for _, f := range fields {
		for _, ref := range f.refs {
			if !colref.IsValid(ref) {
				invalid = append(invalid, fmt.Sprintf("%s=%q", f.name, ref))
			}
		}
	}
	return invalid
}

// DescriptionConfig locates the description block.
type DescriptionConfig struct {
	// StartRow is the 1-based workbook row where scanning begins. Default: 12
	StartRow int `yaml:"start_row" mapstructure:"start_row" validate:"min=1"`

	// Column is the column reference scanned. Default: "A"
	Column string `yaml:"column" mapstructure:"column" validate:"required"`

	// Sentinel ends the block (case-insensitive substring). Default: "net weight"
	Sentinel string `yaml:"sentinel" mapstructure:"sentinel"`
}

// Options converts the configuration to extractor options.
func (d DescriptionConfig) Options() description.Options {
	return description.Options{
		StartRow: d.StartRow - 1,
		Column:   colref.Resolve(d.Column),
		Sentinel: d.Sentinel,
	}
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
//
// The default mapping matches the common invoice / packing list layout:
// HS code in F, amounts in P and O, cartons in H, net weight in L and gross
// weight in M.
func Default() *Config {
	return &Config{
		OutputDir:        "./output",
		OutputNameFormat: "{kind}_{timestamp}",
		LogLevel:         "info",
		LogFormat:        "auto",
		Server: ServerConfig{
			Port:        8080,
			MaxUploadMB: 32,
		},
		CSV: CSVSettings{
			Delimiter: ",",
			Encoding:  "utf-8",
		},
		Mapping: ColumnMapping{
			Invoice: InvoiceMapping{
				HSCode: []string{"F"},
				Amount: []string{"P", "O"},
			},
			PackingList: PackingListMapping{
				Cartons:     []string{"H"},
				NetWeight:   []string{"L"},
				GrossWeight: []string{"M"},
			},
		},
		Description: DescriptionConfig{
			StartRow: description.DefaultStartRow + 1,
			Column:   colref.Name(description.DefaultColumn),
			Sentinel: description.DefaultSentinel,
		},
	}
}

// setDefaults registers every default with viper so that environment
// variables can override keys that the config file does not mention.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("output_name_format", d.OutputNameFormat)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.max_upload_mb", d.Server.MaxUploadMB)
	v.SetDefault("csv.delimiter", d.CSV.Delimiter)
	v.SetDefault("csv.encoding", d.CSV.Encoding)
	v.SetDefault("mapping.invoice.hs_code", d.Mapping.Invoice.HSCode)
	v.SetDefault("mapping.invoice.amount", d.Mapping.Invoice.Amount)
	v.SetDefault("mapping.packing_list.cartons", d.Mapping.PackingList.Cartons)
	v.SetDefault("mapping.packing_list.net_weight", d.Mapping.PackingList.NetWeight)
	v.SetDefault("mapping.packing_list.gross_weight", d.Mapping.PackingList.GrossWeight)
	v.SetDefault("description.start_row", d.Description.StartRow)
	v.SetDefault("description.column", d.Description.Column)
	v.SetDefault("description.sentinel", d.Description.Sentinel)
}

// =============================================================================
// LOADING
// =============================================================================

// Load builds the configuration from defaults, the config file, .env files
// and environment variables.
//
// PARAMETERS:
//   - configPath: path to a YAML config file. If empty, ./reconciler.yaml is
//     used when it exists and ignored otherwise.
//
// RETURNS:
//   - The validated configuration.
//   - An error if an explicit config file cannot be read, or validation fails.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFiles loads .env files; .env.local takes precedence over .env.
// godotenv never overrides variables that are already set, so the more
// specific file is loaded first.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration against its struct rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// WriteDefault writes the built-in configuration to path as YAML.
// An existing file is not overwritten.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
