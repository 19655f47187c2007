package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/desk"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/views"
	domainoptions "github.com/kidusabdula/versaforge-erp-sub001/internal/domain/options"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/export"
)

func printPages(w io.Writer, d *desk.Desk) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PAGE\tTITLE\tFILTERS")
	for _, p := range d.Pages() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name(), p.Title(), strings.Join(p.FilterKeys(), ", "))
	}
	return tw.Flush()
}

func printOptions(w io.Writer, bundle domainoptions.Bundle, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(bundle)
	}
	keys := make([]string, 0, len(bundle))
	for k := range bundle {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, k := range keys {
		labels := make([]string, len(bundle[k]))
		for i, opt := range bundle[k] {
			labels[i] = opt.Label
		}
		fmt.Fprintf(tw, "%s\t%s\n", k, strings.Join(labels, ", "))
	}
	return tw.Flush()
}

type listingJSON struct {
	Title     string           `json:"title"`
	Rows      []map[string]any `json:"rows"`
	Summary   any              `json:"summary,omitempty"`
	Total     int              `json:"total"`
	Shown     int              `json:"shown"`
	Stale     bool             `json:"stale"`
	Notice    string           `json:"notice,omitempty"`
	FetchedAt time.Time        `json:"fetched_at"`
}

func printListing(w io.Writer, l desk.Listing, asJSON bool) error {
	if asJSON {
		out := listingJSON{
			Title:     l.Title,
			Rows:      make([]map[string]any, len(l.Table.Rows)),
			Summary:   l.Summary,
			Total:     l.Total,
			Shown:     l.Shown,
			Stale:     l.Stale,
			Notice:    l.Notice,
			FetchedAt: l.FetchedAt,
		}
		for i, row := range l.Table.Rows {
			rec := make(map[string]any, len(row))
			for j, cell := range row {
				rec[l.Table.Headers[j]] = cell
			}
			out.Rows[i] = rec
		}
		return json.NewEncoder(w).Encode(out)
	}

	fmt.Fprintf(w, "%s\n\n", l.Title)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(l.Table.Headers, "\t")))
	for _, row := range l.Table.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d of %d shown, fetched %s\n", l.Shown, l.Total, l.FetchedAt.Format("2006-01-02 15:04:05"))
	if l.Summary != nil {
		raw, err := json.Marshal(l.Summary)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "summary: %s\n", raw)
	}
	if l.Stale {
		fmt.Fprintf(w, "stale: %s\n", l.Notice)
	}
	return nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format("2006-01-02")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// exportPage writes the page rows as a workbook. A target that is an
// existing directory gets the table's default file name.
func exportPage(ctx context.Context, page desk.Page, req views.ListRequest, target string) (string, error) {
	table, err := page.Export(ctx, req)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		target = filepath.Join(target, table.Filename())
	}

	f, err := os.Create(target)
	if err != nil {
		return "", err
	}
	if err := export.WriteXLSX(f, table); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return target, nil
}
