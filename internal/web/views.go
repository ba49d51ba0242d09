package web

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/healthjoin/internal/core"
)

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}` +
	`table{border-collapse:collapse;font-size:.9rem}` +
	`th,td{border:1px solid #d1d5db;padding:.35rem .6rem;text-align:left}` +
	`th{background:#f3f4f6}td.num{text-align:right;font-variant-numeric:tabular-nums}` +
	`.meta{color:#6b7280;font-size:.85rem}.error{border-left:4px solid #dc2626;padding:.5rem 1rem}`

// combinedPage renders the combined table for one run.
func combinedPage(res *core.Result) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := "Life expectancy and healthcare expenditure, " + res.Year

		var err error
		write := func(s string) {
			if err == nil {
				_, err = io.WriteString(w, s)
			}
		}

		writePageHead(write, title)
		write(`<p class="meta">`)
		write(strconv.Itoa(len(res.Rows)) + " countries")
		write(` &middot; run ` + templ.EscapeString(res.RunID))
		write(` &middot; <a href="/api/combined.csv">download CSV</a></p>`)

		if res.Empty() {
			write(`<p>No country has both values for this year.</p>`)
		} else {
			write(`<table><thead><tr>`)
			for _, h := range core.OutputHeader() {
				write(`<th>` + templ.EscapeString(h) + `</th>`)
			}
			write(`</tr></thead><tbody>`)
			for _, row := range res.Rows {
				write(`<tr>`)
				write(`<td>` + templ.EscapeString(row.Entity) + `</td>`)
				write(`<td>` + templ.EscapeString(row.Code) + `</td>`)
				write(`<td>` + templ.EscapeString(row.Year) + `</td>`)
				write(`<td class="num">` + templ.EscapeString(row.LifeExpectancy) + `</td>`)
				write(`<td class="num">` + templ.EscapeString(row.HealthExpenditure) + `</td>`)
				write(`</tr>`)
			}
			write(`</tbody></table>`)
		}

		write(`</body></html>`)
		return err
	})
}

// errorPage renders a user-facing error.
func errorPage(msg core.UserMessage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var err error
		write := func(s string) {
			if err == nil {
				_, err = io.WriteString(w, s)
			}
		}

		writePageHead(write, "Error")
		write(`<div class="error"><p><strong>` + templ.EscapeString(msg.Message) + `</strong></p>`)
		if msg.Action != "" {
			write(`<p>` + templ.EscapeString(msg.Action) + `</p>`)
		}
		write(`<p class="meta">Code: ` + templ.EscapeString(msg.Code) + `</p></div>`)
		write(`</body></html>`)
		return err
	})
}

func writePageHead(write func(string), title string) {
	write(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
	write(`<title>` + templ.EscapeString(title) + `</title>`)
	write(`<style>` + pageStyle + `</style></head><body>`)
	write(`<h1>` + templ.EscapeString(title) + `</h1>`)
}
