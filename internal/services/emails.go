package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"hetave/pkg/mailer"
)

var emailFuncs = template.FuncMap{
	"inr":      formatINR,
	"subtotal": func(price float64, qty int) float64 { return lineSubtotal(price, qty).InexactFloat64() },
	"isBulk":   func(qty int) bool { return qty >= BulkQuantity },
	"lines":    func(s string) []string { return strings.Split(s, "\n") },
	"footer":   func() template.HTML { return emailFooter },
}

const emailFooter = `<hr><p style="color: #666; font-size: 12px;">Best regards,<br>Hetave Enterprises Team</p>`

var emailTemplates = template.Must(template.New("emails").Funcs(emailFuncs).Parse(`
{{define "order_confirmation"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #ea580c;">Thank you for your order!</h2>
  <p>Your order has been received and is being processed.</p>
  <p><strong>Order Number: {{.OrderNumber}}</strong></p>
  <h3>Order Details:</h3>
  <ul>
  {{range .Items}}<li><strong>{{.Name}}</strong> - Qty: {{.Quantity}} - {{inr (subtotal .Price .Quantity)}}</li>
  {{end}}</ul>
  <p><strong>Total: {{inr .Total}}</strong></p>
  <p>We will contact you shortly regarding shipping details.</p>
  {{footer}}
</div>
{{end}}

{{define "bulk_admin"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #ea580c;">New Bulk Order Request</h2>
  <p>A customer has requested a bulk order. Please contact them directly.</p>
  <h3>Customer Information:</h3>
  <ul>
    <li><strong>Name:</strong> {{.Request.Name}}</li>
    <li><strong>Email:</strong> {{.Request.Email}}</li>
    <li><strong>Phone:</strong> {{.Request.Phone}}</li>
    <li><strong>Address:</strong> {{.Request.Address}}</li>
    <li><strong>City:</strong> {{.Request.City}}</li>
    <li><strong>State:</strong> {{.Request.State}}</li>
    <li><strong>Pincode:</strong> {{.Request.Pincode}}</li>
  </ul>
  <h3>Order Details:</h3>
  <ul>
  {{range .Items}}<li>
    <strong>{{.Name}}</strong><br>
    Quantity: {{.Quantity}} {{if isBulk .Quantity}}<span style="color: red; font-weight: bold;">(BULK ORDER)</span>{{end}}<br>
    Price per unit: {{inr .Price}}<br>
    Subtotal: {{inr (subtotal .Price .Quantity)}}
  </li>
  {{end}}</ul>
  <p><strong>Total Order Value: {{inr .Total}}</strong></p>
  <p>Please contact the customer at <a href="mailto:{{.Request.Email}}">{{.Request.Email}}</a> or {{.Request.Phone}} to discuss pricing and delivery.</p>
</div>
{{end}}

{{define "bulk_customer"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #ea580c;">Thank you for your bulk order request!</h2>
  <p>We have received your request for bulk quantities. Our sales team will contact you shortly to discuss:</p>
  <ul>
    <li>Best pricing for bulk orders</li>
    <li>Delivery timeline</li>
    <li>Payment terms</li>
  </ul>
  <h3>Your Order Summary:</h3>
  <ul>
  {{range .Items}}<li><strong>{{.Name}}</strong> - Qty: {{.Quantity}} - {{inr (subtotal .Price .Quantity)}}</li>
  {{end}}</ul>
  <p><strong>Estimated Total: {{inr .Total}}</strong></p>
  <p>We look forward to serving you!</p>
  {{footer}}
</div>
{{end}}

{{define "order_notice"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #ea580c;">New Order {{.OrderNumber}}</h2>
  <ul>
    <li><strong>Customer:</strong> {{.CustomerName}} ({{.Email}})</li>
    <li><strong>Items:</strong> {{.ItemCount}}</li>
    <li><strong>Total:</strong> {{inr .TotalAmount}}</li>
  </ul>
  <p>Open the admin dashboard to process this order.</p>
</div>
{{end}}

{{define "contact_company"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #ea580c;">New Contact Form Submission</h2>
  <p>You have received a new message from your website contact form.</p>
  <p><strong>Name:</strong> {{.Name}}</p>
  <p><strong>Email:</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
  {{if .Phone}}<p><strong>Phone:</strong> <a href="tel:{{.Phone}}">{{.Phone}}</a></p>{{end}}
  <p><strong>Message:</strong></p>
  <p>{{range $i, $l := lines .Message}}{{if $i}}<br>{{end}}{{$l}}{{end}}</p>
  <p style="color: #666; font-size: 12px;">Submitted on: {{.SubmittedAt}}</p>
</div>
{{end}}

{{define "contact_thanks"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #ea580c;">Thank You for Contacting Us!</h2>
  <p>Dear {{.Name}},</p>
  <p>Thank you for reaching out to <strong>Hetave Enterprises</strong>!</p>
  <p>We have received your message and our team will get back to you as soon as possible, typically within 24-48 hours.</p>
  <p>We appreciate your interest in our PPE products and services.</p>
  <p><strong>Phone:</strong> +91 80952 89835, +91 76248 18724<br>
  <strong>Email:</strong> <a href="mailto:sales@hetave.co.in">sales@hetave.co.in</a><br>
  <strong>Address:</strong> 292, Rama Vihar, Bhilwara, Rajasthan - 311001</p>
  {{footer}}
  <p style="font-size: 11px; color: #999;">This is an automated confirmation email. Please do not reply to this message.</p>
</div>
{{end}}
`))

func renderEmail(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", name, err)
	}
	return buf.String(), nil
}

// sendBestEffort renders and sends one email. Failures are logged, never returned.
func sendBestEffort(ctx context.Context, m mailer.Mailer, to, subject, tmpl string, data any) {
	if err := sendEmail(ctx, m, to, subject, tmpl, data); err != nil {
		log.Printf("Email error (%s to %s): %v", subject, to, err)
		return
	}
	log.Printf("Email sent to %s: %s", to, subject)
}

func sendEmail(ctx context.Context, m mailer.Mailer, to, subject, tmpl string, data any) error {
	if to == "" {
		return fmt.Errorf("no recipient")
	}
	html, err := renderEmail(tmpl, data)
	if err != nil {
		return err
	}
	return m.Send(ctx, mailer.Message{To: []string{to}, Subject: subject, HTML: html})
}

var istLocation = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("IST", 5*3600+1800)
	}
	return loc
}()
