package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/EmbarkStudios/toml-span/tomlparser"
	"github.com/alecthomas/repr"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	dumpFormat string

	dumpCmd = &cobra.Command{
		Use:   "dump <file>",
		Short: "Parses a TOML file and prints the resulting value tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				_ = cmd.Help()
				return errors.New("expected exactly one input file")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			value, err := tomlparser.Parse(string(data))
			if err != nil {
				var perr *tomlparser.Error
				if errors.As(err, &perr) {
					printDiagnostic(args[0], string(data), perr)
				}
				return err
			}
			switch dumpFormat {
			case "yaml":
				out, err := yaml.Marshal(value)
				if err != nil {
					return err
				}
				fmt.Print(string(out))
			case "repr":
				plain, _ := value.MarshalYAML()
				fmt.Println(repr.String(plain, repr.Indent("  ")))
			default:
				return fmt.Errorf("unknown dump format %q", dumpFormat)
			}
			return nil
		},
	}
)

func init() {
	dumpCmd.Flags().StringVarP(&dumpFormat, "format", "f", "yaml", "output format, yaml or repr")
	rootCmd.AddCommand(dumpCmd)
}
