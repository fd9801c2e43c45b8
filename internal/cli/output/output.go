// Package output renders puffctl results as text, JSON or tables.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/puffbuddy/backend/internal/cli/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Out receives all rendered output; tests replace it
var Out io.Writer = os.Stdout

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatText  OutputFormat = "text"
)

// Field is one labelled value of a record
type Field struct {
	Label string
	Value interface{}
}

// GetOutputFormat returns the configured output format
func GetOutputFormat() OutputFormat {
	switch config.GetString("output.format") {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// ValidateOutputFormat checks if format is valid
func ValidateOutputFormat(format string) bool {
	return format == "json" || format == "table" || format == "text"
}

// PrintJSON writes data as indented JSON
func PrintJSON(data interface{}) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(Out, string(b))
	return err
}

// PrintList renders a list. JSON mode prints data as-is; the other modes
// print rows under headers.
func PrintList(data interface{}, headers []string, rows [][]string) error {
	switch GetOutputFormat() {
	case FormatJSON:
		return PrintJSON(data)
	case FormatTable:
		return printTable(headers, rows)
	default:
		for _, row := range rows {
			fmt.Fprintln(Out, strings.Join(row, "  ·  "))
		}
		return nil
	}
}

// PrintRecord renders a single record. JSON mode prints data as-is.
func PrintRecord(data interface{}, fields []Field) error {
	switch GetOutputFormat() {
	case FormatJSON:
		return PrintJSON(data)
	case FormatTable:
		rows := make([][]string, 0, len(fields))
		for _, f := range fields {
			rows = append(rows, []string{f.Label, fmt.Sprint(f.Value)})
		}
		return printTable([]string{"Field", "Value"}, rows)
	default:
		bold := color.New(color.Bold)
		for _, f := range fields {
			bold.Fprintf(Out, "%s: ", f.Label)
			fmt.Fprintln(Out, f.Value)
		}
		return nil
	}
}

func printTable(headers []string, rows [][]string) error {
	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(headers, "\t")))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(Out, msg+"\n", args...)
}

// PrintError prints an error message
func PrintError(msg string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(Out, "Error: "+msg+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(Out, msg+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(Out, "Warning: "+msg+"\n", args...)
}

// Truncate shortens s to at most n runes
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
