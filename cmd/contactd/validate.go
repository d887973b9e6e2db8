package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"portfolio-contact/contact"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a JSON submission (file or stdin) with the form rules",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var sub contact.Submission
	if err := json.NewDecoder(in).Decode(&sub); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	errs := contact.NewValidator().FieldErrors(sub)
	out := cmd.OutOrStdout()
	if len(errs) == 0 {
		fmt.Fprintln(out, "ok")
		return nil
	}

	printFieldErrors(out, errs)
	return fmt.Errorf("%d invalid field(s)", len(errs))
}

// printFieldErrors escreve "campo: mensagem" em ordem alfabética de campo.
func printFieldErrors(out io.Writer, errs map[string]string) {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(out, "%s: %s\n", f, errs[f])
	}
}
