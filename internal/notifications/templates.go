package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
)

const shopName = "SIT Dress Shop"

// OrderLine is one row of the confirmation email item table.
type OrderLine struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (l OrderLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type OrderConfirmation struct {
	To            string
	CustomerName  string
	OrderID       uuid.UUID
	PaymentMethod enums.PaymentMethod
	Lines         []OrderLine
	Total         decimal.Decimal
}

type StatusChange struct {
	To           string
	CustomerName string
	OrderID      uuid.UUID
	Status       enums.OrderStatus
	OrdersURL    string
}

type ReturnUpdate struct {
	To           string
	CustomerName string
	ReturnID     uuid.UUID
	ProductName  string
	Status       enums.ReturnStatus
	AdminComment string
}

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(template.FuncMap{
	"money": formatRupees,
}).Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto;">
<h2>Thank you for your order, {{.CustomerName}}!</h2>
<p>Your order <strong>#{{.OrderID}}</strong> has been placed and is now being processed.</p>
<table style="width: 100%; border-collapse: collapse;">
<thead><tr><th style="text-align: left; padding: 10px;">Item</th><th style="text-align: right; padding: 10px;">Price</th></tr></thead>
<tbody>
{{- range .Lines}}
<tr><td style="padding: 10px; border-bottom: 1px solid #ddd;">{{.Name}} (Qty: {{.Quantity}})</td><td style="padding: 10px; border-bottom: 1px solid #ddd; text-align: right;">{{money .Total}}</td></tr>
{{- end}}
</tbody>
<tfoot><tr><td style="padding: 10px;"><strong>Total</strong></td><td style="padding: 10px; text-align: right;"><strong>{{money .Total}}</strong></td></tr></tfoot>
</table>
<p>Payment method: {{.PaymentMethod}}</p>
<p><strong>The ` + shopName + ` Team</strong></p>
</div>`))

// OrderConfirmationMessage renders the post-checkout email with one row per line.
func OrderConfirmationMessage(data OrderConfirmation) (Message, error) {
	name := displayName(data.CustomerName)
	data.CustomerName = name

	var html bytes.Buffer
	if err := confirmationTmpl.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render order confirmation: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\nThank you for your order #%s.\n\n", name, data.OrderID)
	for _, line := range data.Lines {
		fmt.Fprintf(&text, "- %s x%d: %s\n", line.Name, line.Quantity, formatRupees(line.Total()))
	}
	fmt.Fprintf(&text, "\nTotal: %s\nPayment method: %s\n\nThe %s Team", formatRupees(data.Total), data.PaymentMethod, shopName)

	return Message{
		To:      data.To,
		Subject: fmt.Sprintf("Your %s Order Confirmation #%s", shopName, data.OrderID),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

func StatusChangeMessage(data StatusChange) Message {
	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\nGood news! Your order #%s has been updated to '%s'.\n\n",
		displayName(data.CustomerName), data.OrderID, data.Status)
	if url := strings.TrimRight(strings.TrimSpace(data.OrdersURL), "/"); url != "" {
		fmt.Fprintf(&text, "You can view your order details here: %s/my-orders\n\n", url)
	}
	fmt.Fprintf(&text, "Thanks for shopping with us!\nThe %s Team", shopName)
	return Message{
		To:      data.To,
		Subject: fmt.Sprintf("Your Order #%s has been %s!", data.OrderID, data.Status),
		Text:    text.String(),
	}
}

func ReturnUpdateMessage(data ReturnUpdate) Message {
	comment := strings.TrimSpace(data.AdminComment)
	if comment == "" {
		comment = "No comments."
	}
	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\nAn update on your return request #%s", displayName(data.CustomerName), data.ReturnID)
	if data.ProductName != "" {
		fmt.Fprintf(&text, " for %s", data.ProductName)
	}
	fmt.Fprintf(&text, ":\n\nYour request status has been updated to: %s.\n\nAdmin Comment: %s\n\nThanks,\nThe %s Team",
		strings.ToUpper(string(data.Status)), comment, shopName)
	return Message{
		To:      data.To,
		Subject: fmt.Sprintf("Update on your Return Request #%s", data.ReturnID),
		Text:    text.String(),
	}
}

func displayName(name string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return "there"
}

func formatRupees(amount decimal.Decimal) string {
	return "₹" + amount.StringFixed(2)
}
