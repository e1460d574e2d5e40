// Package render produces the printable invoice document and drives the
// PDF export. The core only renders HTML; turning that into a PDF is the
// job of an injected Rasterizer, so the rasterization dependency never
// leaks into the rest of the application.
package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/yutaka-m/invoicer/internal/calculator"
	"github.com/yutaka-m/invoicer/internal/config"
	"github.com/yutaka-m/invoicer/internal/models"
)

// Input is the deterministic snapshot an invoice is rendered from.
// It is assembled at trigger time; later cart or customer edits do not
// affect a render already in flight.
type Input struct {
	Company config.CompanyConfig
	Invoice models.Invoice
	Totals  models.Totals
}

// NewInput snapshots the invoice and derives its totals.
func NewInput(company config.CompanyConfig, invoice models.Invoice) Input {
	return Input{
		Company: company,
		Invoice: invoice,
		Totals:  calculator.Totals(invoice.Items, invoice.TaxRate),
	}
}

// Renderer turns an Input into a standalone HTML document.
type Renderer interface {
	RenderHTML(input Input) (string, error)
}

// HTMLRenderer is the default Renderer, backed by html/template.
type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("invoice").Funcs(template.FuncMap{
		"yen":       FormatYen,
		"lineTotal": LineTotal,
	}).Parse(invoiceTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse invoice template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

func (r *HTMLRenderer) RenderHTML(input Input) (string, error) {
	var b strings.Builder
	if err := r.tmpl.Execute(&b, input); err != nil {
		return "", fmt.Errorf("execute invoice template: %w", err)
	}
	return b.String(), nil
}

var yenPrinter = message.NewPrinter(language.Japanese)

// FormatYen renders an exact decimal amount for display. JPY has no
// minor unit, so this is the single point where amounts are rounded:
// to whole yen, with locale grouping ("¥1,200").
func FormatYen(amount decimal.Decimal) string {
	return yenPrinter.Sprintf("¥%d", amount.Round(0).IntPart())
}

// LineTotal is the display amount of one invoice line.
func LineTotal(item models.LineItem) decimal.Decimal {
	return item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

const invoiceTemplate = `<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>請求書 {{.Invoice.InvoiceNumber}}</title>
<style>
body { font-family: sans-serif; color: #1f2937; margin: 40px; }
h1 { letter-spacing: 0.5em; text-align: center; }
table { width: 100%; border-collapse: collapse; margin-top: 24px; }
th, td { border-bottom: 1px solid #d1d5db; padding: 8px; text-align: left; }
td.amount, th.amount { text-align: right; }
.company { text-align: right; font-size: 0.85em; }
.totals td { border: none; }
.totals tr.grand td { border-top: 2px solid #1f2937; font-weight: bold; }
.notes { margin-top: 32px; font-size: 0.85em; color: #6b7280; }
</style>
</head>
<body>
<h1>請求書</h1>
<div class="company">
{{if .Company.LogoURL}}<img src="{{.Company.LogoURL}}" alt="" height="48"><br>{{end}}
{{.Company.Name}}<br>
{{.Company.Address}}<br>
{{.Company.Email}} / {{.Company.Phone}}
</div>
<p>
請求書番号: {{.Invoice.InvoiceNumber}}<br>
発行日: {{.Invoice.IssueDate}} / お支払期限: {{.Invoice.DueDate}}
</p>
<p>
{{.Invoice.Customer.Name}} 様<br>
{{if .Invoice.Customer.OrderNumber}}注文番号: {{.Invoice.Customer.OrderNumber}}<br>{{end}}
{{if .Invoice.Customer.Email}}{{.Invoice.Customer.Email}}<br>{{end}}
{{if .Invoice.Customer.AttendeeName}}受講者: {{.Invoice.Customer.AttendeeName}}{{end}}
</p>
<table>
<tr><th>品目</th><th class="amount">数量</th><th class="amount">単価</th><th class="amount">金額</th></tr>
{{range .Invoice.Items}}
<tr>
<td>{{.Description}}</td>
<td class="amount">{{.Quantity}}</td>
<td class="amount">{{yen .UnitPrice}}</td>
<td class="amount">{{yen (lineTotal .)}}</td>
</tr>
{{end}}
</table>
<table class="totals">
<tr><td>小計</td><td class="amount">{{yen .Totals.Subtotal}}</td></tr>
<tr><td>消費税 ({{.Invoice.TaxRate}}%)</td><td class="amount">{{yen .Totals.Tax}}</td></tr>
<tr class="grand"><td>合計</td><td class="amount">{{yen .Totals.Total}}</td></tr>
</table>
{{if .Invoice.Notes}}<p class="notes">{{.Invoice.Notes}}</p>{{end}}
</body>
</html>
`
