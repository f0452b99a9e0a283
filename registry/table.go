package registry

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table writes entries as an aligned text table: name, type and any
// returned tags.
func Table(w io.Writer, entries []Entry) error {
	var tagNames []string
	for _, e := range entries {
		for _, k := range e.Tags.Keys() {
			if !contains(tagNames, k) {
				tagNames = append(tagNames, k)
			}
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := append([]string{"NAME", "TYPE"}, upper(tagNames)...)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, e := range entries {
		row := []string{e.Name, e.Type}
		for _, k := range tagNames {
			row = append(row, e.Tags[k])
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// TagTable writes tag descriptions as an aligned text table.
func TagTable(w io.Writer, tags []TagInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TAG\tTYPES\tVALUE\tDESCRIPTION")
	for _, t := range tags {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Name, strings.Join(t.Types, ","), t.ValueType, t.Description)
	}
	return tw.Flush()
}

func upper(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.ToUpper(n)
	}
	return out
}
