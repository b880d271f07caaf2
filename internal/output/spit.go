// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/staranto/fcache/internal/config"
)

// Options controls how a dataset is rendered.
type Options struct {
	Format string // text, json or yaml
	Filter string
	Sort   string
	Titles bool
	Color  bool

	// Formatters render a column's values in text output only, e.g. byte
	// counts as "4.1 kB". Sorting and json/yaml see the raw values.
	Formatters map[string]func(interface{}) string
}

// NewOptions reads the output flags of cmd. Flags a command doesn't define
// read as their zero value.
func NewOptions(cmd *cli.Command) Options {
	return Options{
		Format: cmd.String("output"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
		Titles: cmd.Bool("titles"),
		Color:  cmd.Bool("color"),
	}
}

// SliceDiceSpit filters, sorts and renders rows. Columns names the keys shown
// by the text renderer, in order; json and yaml emit every key.
func SliceDiceSpit(w io.Writer, rows []map[string]interface{}, columns []string, o Options) error {
	if w == nil {
		w = os.Stdout
	}

	rows = FilterRows(rows, o.Filter)
	SortDataset(rows, o.Sort)

	if rows == nil {
		rows = []map[string]interface{}{}
	}
	if handled, err := encode(w, o.Format, rows); handled {
		return err
	}

	TableWriter(w, rows, columns, o)
	return nil
}

// SpitValue renders a single document, such as a stats summary, in the
// requested format. Text output is one "key value" row per column, zero values
// included.
func SpitValue(w io.Writer, v map[string]interface{}, columns []string, o Options) error {
	if handled, err := encode(w, o.Format, v); handled {
		return err
	}

	rows := make([]map[string]interface{}, 0, len(columns))
	for _, c := range columns {
		value := fmt.Sprint(v[c])
		if f, ok := o.Formatters[c]; ok {
			value = f(v[c])
		}
		rows = append(rows, map[string]interface{}{"key": c, "value": value})
	}
	TableWriter(w, rows, []string{"key", "value"}, Options{Color: o.Color})
	return nil
}

// encode writes v as indented JSON or YAML. It reports false for any other
// format.
func encode(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		out, err := yaml.Marshal(v)
		if err != nil {
			return true, fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(out)
		return true, err
	}
	return false, nil
}

// TableWriter renders the result set in a tabular form honoring color,
// titles and padding options.
func TableWriter(w io.Writer, resultSet []map[string]interface{}, columns []string, o Options) {
	if len(resultSet) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if o.Color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(evenColor))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(oddColor))
	}

	pad, _ := config.GetInt("padding", 2)
	log.Debugf("padding: %v", pad)

	rows := make([][]string, 0, len(resultSet))
	for _, result := range resultSet {
		row := make([]string, 0, len(columns))
		for _, c := range columns {
			if f, ok := o.Formatters[c]; ok && result[c] != nil {
				row = append(row, f(result[c]))
				continue
			}
			row = append(row, InterfaceToString(result[c], "-"))
		}
		rows = append(rows, row)
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(rows...)

	if o.Titles {
		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(columns...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}

// getColors returns configured color values for table rendering.
func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(fmt.Sprintf("%s.title", key), "#f6be00")
	even, _ = config.GetString(fmt.Sprintf("%s.even", key), "#ffffff")
	odd, _ = config.GetString(fmt.Sprintf("%s.odd", key), "#00c8f0")
	return
}

// InterfaceToString converts supported primitive or composite values to a
// string. A custom empty value may be provided.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil || reflect.ValueOf(value).IsZero() {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		// Sizes and counts are whole numbers.
		return fmt.Sprintf("%.0f", value)
	case bool:
		return strconv.FormatBool(value)
	case fmt.Stringer:
		return value.String()
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}
