package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tordrt/schemameta"
)

func newExtractCmd() *cobra.Command {
	extractCmd := &cobra.Command{
		Use:   "extract (--db-url | --mysql-url | --sqlite | --sqlserver-url) [flags]",
		Short: "Write a YAML schema description from a live database",
		Long: `extract reads tables, columns, keys, indexes and foreign keys from PostgreSQL,
MySQL, SQLite or SQL Server and writes them as a YAML schema document that
the root command converts to schemameta XML. Use --format xml to skip the
YAML step.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runExtract,
	}

	extractCmd.Flags().String("db-url", "", "PostgreSQL connection string")
	extractCmd.Flags().String("mysql-url", "", "MySQL connection string (DSN, mysql:// prefix optional)")
	extractCmd.Flags().String("sqlite", "", "SQLite database file path")
	extractCmd.Flags().String("sqlserver-url", "", "SQL Server connection string (sqlserver://...)")
	extractCmd.Flags().StringP("output", "o", schemameta.StdStream, "Output file (- for stdout)")
	extractCmd.Flags().StringP("tables", "t", "", "Specific tables (comma-separated, optional)")
	extractCmd.Flags().StringP("exclude", "x", "", "Tables to leave out (comma-separated, optional)")
	extractCmd.Flags().StringP("schema", "s", "", "Database schema name (default: public, the DSN database, or dbo)")
	extractCmd.Flags().StringP("format", "f", "yaml", "Output format: yaml or xml")

	return extractCmd
}

// databaseURL turns the single database flag that is set into the URL form
// schemameta.ExtractDocument dispatches on
func databaseURL(v *viper.Viper) (string, error) {
	var urls []string
	if s := v.GetString("db-url"); s != "" {
		urls = append(urls, s)
	}
	if s := v.GetString("mysql-url"); s != "" {
		if !strings.HasPrefix(s, "mysql://") {
			s = "mysql://" + s
		}
		urls = append(urls, s)
	}
	if s := v.GetString("sqlite"); s != "" {
		urls = append(urls, "sqlite://"+s)
	}
	if s := v.GetString("sqlserver-url"); s != "" {
		urls = append(urls, s)
	}

	switch len(urls) {
	case 0:
		return "", fmt.Errorf("one of --db-url, --mysql-url, --sqlite or --sqlserver-url must be specified")
	case 1:
		return urls[0], nil
	default:
		return "", fmt.Errorf("only one of --db-url, --mysql-url, --sqlite or --sqlserver-url can be specified")
	}
}

func runExtract(cmd *cobra.Command, _ []string) error {
	v, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(v, cmd.ErrOrStderr())

	url, err := databaseURL(v)
	if err != nil {
		return err
	}

	opts := &schemameta.ExtractOptions{
		Tables:        parseTableList(v.GetString("tables")),
		ExcludeTables: parseTableList(v.GetString("exclude")),
		SchemaName:    v.GetString("schema"),
	}

	ctx := log.WithContext(cmd.Context())
	doc, err := schemameta.ExtractDocument(ctx, url, opts)
	if err != nil {
		return err
	}

	// Format fully before touching the output so a bad --format leaves no
	// partial file behind.
	var buf bytes.Buffer
	if err := schemameta.FormatDocument(doc, v.GetString("format"), &buf); err != nil {
		return err
	}

	output := v.GetString("output")
	if output == "" || output == schemameta.StdStream {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), green(fmt.Sprintf("Extracted %d tables to %s", len(doc.TableList()), output)))
	return nil
}
