package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/EmbarkStudios/toml-span/tomlparser"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	checkCmd = &cobra.Command{
		Use:   "check <file>...",
		Short: "Parses the given TOML files and reports the first syntax problem of each with its source position",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.StandardLogger()
			if len(args) == 0 {
				_ = cmd.Help()
				return errors.New("no input files")
			}
			failed := 0
			for _, path := range args {
				if verbose {
					logger.WithField("file", path).Info("checking")
				}
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				if _, err := tomlparser.Parse(string(data)); err != nil {
					failed++
					var perr *tomlparser.Error
					if errors.As(err, &perr) {
						printDiagnostic(path, string(data), perr)
					} else {
						fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
					}
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) failed validation", failed, len(args))
			}
			return nil
		},
	}
)

func printDiagnostic(path, source string, err *tomlparser.Error) {
	d := err.ToDiagnostic()
	line, col := err.LineCol(source)
	fmt.Fprintf(os.Stderr, "%s:%d:%d: error[%s]: %s\n", path, line, col, d.Code, d.Message)
	for _, label := range d.Labels {
		if label.Primary {
			continue
		}
		lline, lcol := tomlparser.LineCol(source, label.Span.Start)
		fmt.Fprintf(os.Stderr, "%s:%d:%d: note: %s\n", path, lline, lcol, label.Message)
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
