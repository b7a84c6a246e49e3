package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/damon-houk/finance-tracker/internal/application/dashboard"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/api"
	"github.com/shopspring/decimal"
)

// money formats amounts with two decimals for display only
func money(v decimal.Decimal) string {
	return v.StringFixed(2)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// render prints the month view as plain text
func render(w io.Writer, view *dashboard.View) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Finance dashboard for %s, %s\n\n", view.UserID, view.Month.Format("January 2006"))
	fmt.Fprintf(tw, "Total income\t%s\n", money(view.TotalIncome))
	fmt.Fprintf(tw, "Total expenses\t%s\n", money(view.TotalExpenses))
	fmt.Fprintf(tw, "Net\t%s\n", money(view.Net))

	for _, p := range view.PeriodSummary {
		fmt.Fprintf(tw, "\n%s\tIncome %s\tExpenses %s\n", p.Label, money(p.Income), money(p.Expenses))
	}

	fmt.Fprintln(tw, "\nExpenses by category")
	if len(view.CategoryBreakdown) == 0 {
		fmt.Fprintln(tw, "No expenses recorded")
	}
	for _, c := range view.CategoryBreakdown {
		fmt.Fprintf(tw, "  %s\t%s\n", capitalize(string(c.Name)), money(c.Value))
	}

	if len(view.Transactions) > 0 {
		fmt.Fprintln(tw, "\nTransactions")
		for _, tx := range view.Transactions {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
				tx.Date.Format("2006-01-02"), tx.Type, tx.Description, money(tx.Amount))
		}
	}

	return tw.Flush()
}

// mismatch is one figure on which the local view and the server summary disagree
type mismatch struct {
	Field  string
	Local  string
	Server string
}

// compareSummary checks the client-side aggregation against the server's
func compareSummary(view *dashboard.View, summary *api.MonthSummary) []mismatch {
	var out []mismatch
	check := func(field string, local, server decimal.Decimal) {
		if !local.Equal(server) {
			out = append(out, mismatch{Field: field, Local: local.String(), Server: server.String()})
		}
	}

	check("total income", view.TotalIncome, summary.TotalIncome)
	check("total expenses", view.TotalExpenses, summary.TotalExpenses)
	check("net", view.Net, summary.Net)
	if view.Count != summary.TransactionCount {
		out = append(out, mismatch{
			Field:  "transaction count",
			Local:  fmt.Sprint(view.Count),
			Server: fmt.Sprint(summary.TransactionCount),
		})
	}

	server := make(map[string]decimal.Decimal, len(summary.CategoryBreakdown))
	for _, c := range summary.CategoryBreakdown {
		server[c.Name] = c.Value
	}
	for _, c := range view.CategoryBreakdown {
		check("category "+string(c.Name), c.Value, server[string(c.Name)])
		delete(server, string(c.Name))
	}
	for name, value := range server {
		check("category "+name, decimal.Zero, value)
	}

	return out
}

func renderMismatches(w io.Writer, mismatches []mismatch) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nServer summary differs\tlocal\tserver")
	for _, m := range mismatches {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", m.Field, m.Local, m.Server)
	}
	tw.Flush()
}
