package service

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"storefront-backend/internal/model"
)

var orderConfirmationTmpl = template.Must(template.New("order_confirmation").Parse(`
<html>
<body>
	<h2>Thanks for your order{{if .FirstName}}, {{.FirstName}}{{end}}!</h2>
	<p>Order #{{.OrderID}} placed on {{.Placed}}.</p>
	<table>
		{{range .Items}}<tr><td>{{.Name}}</td><td>x{{.Quantity}}</td><td>${{.Price}}</td></tr>
		{{end}}
	</table>
	<p>Shipping: ${{.ShippingCost}}</p>
	<p><strong>Total: ${{.Total}}</strong></p>
</body>
</html>`))

var orderNotificationTmpl = template.Must(template.New("order_notification").Parse(`
<html>
<body>
	<h2>New order #{{.OrderID}}</h2>
	<p>Customer: {{.FirstName}} {{.LastName}} ({{.CustomerEmail}})</p>
	<table>
		{{range .Items}}<tr><td>{{.Name}}</td><td>x{{.Quantity}}</td><td>${{.Price}}</td></tr>
		{{end}}
	</table>
	<p>Shipping: ${{.ShippingCost}}</p>
	<p><strong>Total: ${{.Total}}</strong></p>
	<p>Ship to: {{.ShippingAddress}}</p>
</body>
</html>`))

var shippingConfirmationTmpl = template.Must(template.New("shipping_confirmation").Parse(`
<html>
<body>
	<h2>Your order #{{.OrderID}} has shipped!</h2>
	<p>Carrier: {{.Provider}} ({{.Service}})</p>
	<p>Tracking number: {{.TrackingNumber}}</p>
	{{if .TrackingURL}}<p><a href="{{.TrackingURL}}">Track your package</a></p>{{end}}
</body>
</html>`))

type emailLine struct {
	Name     string
	Quantity int
	Price    string
}

func emailLines(order *model.Order) []emailLine {
	lines := make([]emailLine, 0, len(order.Items))
	for _, item := range order.Items {
		name := "Item"
		if item.Variant != nil && item.Variant.Product != nil {
			name = item.Variant.Product.Name
			if item.Variant.Size != "" {
				name = name + " - " + item.Variant.Size
			}
		}
		lines = append(lines, emailLine{
			Name:     name,
			Quantity: item.Quantity,
			Price:    item.Price.StringFixed(2),
		})
	}
	return lines
}

func renderOrderConfirmation(order *model.Order) (string, error) {
	var sb strings.Builder
	err := orderConfirmationTmpl.Execute(&sb, map[string]interface{}{
		"FirstName":    order.FirstName,
		"OrderID":      order.ID,
		"Placed":       time.Now().Format("Jan 2, 2006"),
		"Items":        emailLines(order),
		"ShippingCost": order.ShippingCost.StringFixed(2),
		"Total":        order.GrandTotal().StringFixed(2),
	})
	if err != nil {
		return "", fmt.Errorf("render order confirmation: %w", err)
	}
	return sb.String(), nil
}

func renderOrderNotification(order *model.Order) (string, error) {
	var sb strings.Builder
	err := orderNotificationTmpl.Execute(&sb, map[string]interface{}{
		"OrderID":         order.ID,
		"FirstName":       order.FirstName,
		"LastName":        order.LastName,
		"CustomerEmail":   order.Email,
		"Items":           emailLines(order),
		"ShippingCost":    order.ShippingCost.StringFixed(2),
		"Total":           order.GrandTotal().StringFixed(2),
		"ShippingAddress": order.ShippingAddress,
	})
	if err != nil {
		return "", fmt.Errorf("render order notification: %w", err)
	}
	return sb.String(), nil
}

func renderShippingConfirmation(order *model.Order, trackingURL string) (string, error) {
	var sb strings.Builder
	err := shippingConfirmationTmpl.Execute(&sb, map[string]interface{}{
		"OrderID":        order.ID,
		"Provider":       order.ShippingProvider,
		"Service":        order.ShippingService,
		"TrackingNumber": order.TrackingNumber,
		"TrackingURL":    trackingURL,
	})
	if err != nil {
		return "", fmt.Errorf("render shipping confirmation: %w", err)
	}
	return sb.String(), nil
}
