package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tordrt/schemameta"
	"github.com/tordrt/schemameta/internal/logger"
)

const envPrefix = "SCHEMAMETA"

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed, color.Bold).SprintFunc()
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "schemameta -i schema.yml [-o schemameta.xml]",
		Short: "Convert a YAML schema description into SchemaSpy schemameta XML",
		Long: `schemameta converts a YAML description of tables, columns, keys, indexes and
relationships into the schemameta XML that SchemaSpy merges into its
database metadata.

Every flag can also be set through a SCHEMAMETA_<FLAG> environment variable
(dashes become underscores) or a --config file. Flags win over the
environment, the environment wins over the config file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runConvert,
	}

	rootCmd.PersistentFlags().String("config", "", "Config file (YAML, TOML or JSON) providing flag defaults")
	rootCmd.PersistentFlags().Bool("verbose", false, "Turn on debug logging")
	rootCmd.PersistentFlags().Bool("silent", false, "Turn off all logging")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format: console or json")

	rootCmd.Flags().StringP("input", "i", "", "Input YAML file (required, - for stdin)")
	rootCmd.Flags().StringP("output", "o", "schemameta.xml", "Output XML file (- for stdout)")
	rootCmd.Flags().Bool("strict", false, "Reject keys the schemameta dialect does not define")
	rootCmd.Flags().Bool("check", false, "Fail if the output file is not up to date instead of writing it")

	rootCmd.AddCommand(newExtractCmd())

	return rootCmd
}

// loadConfig layers the command's flags over SCHEMAMETA_* environment
// variables over the optional config file
func loadConfig(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	return v, nil
}

func newLogger(v *viper.Viper, out io.Writer) *logger.Logger {
	cfg := &logger.Config{
		Level:  "info",
		Format: v.GetString("log-format"),
		Output: out,
	}
	if v.GetBool("verbose") {
		cfg.Level = "debug"
	} else if v.GetBool("silent") {
		cfg.Level = "disabled"
	}
	return logger.New(cfg)
}

func runConvert(cmd *cobra.Command, _ []string) error {
	v, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(v, cmd.ErrOrStderr())

	input := v.GetString("input")
	if input == "" {
		return fmt.Errorf("required flag --input missing")
	}
	output := v.GetString("output")

	opts := &schemameta.ConvertOptions{
		Strict: v.GetBool("strict"),
		Check:  v.GetBool("check"),
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
	}

	ctx := log.WithContext(cmd.Context())
	if err := schemameta.ConvertFile(ctx, input, output, opts); err != nil {
		return err
	}

	// Keep stdout clean when the XML itself goes there.
	status := cmd.OutOrStdout()
	if output == schemameta.StdStream {
		status = cmd.ErrOrStderr()
	}
	if opts.Check {
		fmt.Fprintln(status, green(fmt.Sprintf("%s is up to date", output)))
	} else {
		fmt.Fprintln(status, green(fmt.Sprintf("Successfully converted %s to %s", input, output)))
	}

	return nil
}

// parseTableList splits a comma-separated flag value
func parseTableList(tables string) []string {
	if tables == "" {
		return nil
	}
	tableList := strings.Split(tables, ",")
	for i, t := range tableList {
		tableList[i] = strings.TrimSpace(t)
	}
	return tableList
}

func printError(w io.Writer, err error) {
	msg := err.Error()
	var outOfDate *schemameta.OutOfDateError
	if !errors.As(err, &outOfDate) {
		msg = "Error: " + msg
	}
	fmt.Fprintln(w, red(msg))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
