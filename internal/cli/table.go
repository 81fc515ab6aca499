package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// printTable 按列对齐输出；首行是表头，空表只打表头
func printTable(w io.Writer, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// printFields 按 "name: value" 逐行输出（describe 类命令用）
func printFields(w io.Writer, fields [][2]string) {
	for _, field := range fields {
		fmt.Fprintf(w, "%s: %s\n", field[0], field[1])
	}
}
