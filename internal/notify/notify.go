// Package notify is the mail boundary of the tracker. The lifecycle engine
// hands it a message after each committed transition; delivery failures are
// the caller's to downgrade, never to roll back.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// Message describes one notification to a requester.
type Message struct {
	To      string
	Actor   string // label of who acted, e.g. "Department Head (IT)"
	Subject string
	Body    string

	// Request context, when present.
	Requester   string
	Email       string
	Description string

	// Delivery context, set only for delivered notifications.
	DeliveredTo string
	DeliveredAt time.Time
}

// Notifier delivers a notification message.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// The subject line selects the message template: "approved", "rejected", and
// "delivered" each have their own wording, everything else gets the generic
// one with the caller's body text.
const (
	approvedTemplate = `<html><body>
<h3>Hello {{.Requester}},</h3>
<p>We are pleased to inform you that your request has been approved.</p>
<p>Details of the approved request are as follows:</p>
{{template "details" .}}
<p><strong>Approved by:</strong> {{.Actor}}</p>
<p>We will process your request and notify you once the items are ready for pickup.</p>
</body></html>`

	rejectedTemplate = `<html><body>
<h3>Hello {{.Requester}},</h3>
<p>We regret to inform you that your request has been rejected.</p>
<p>Details of the rejected request are as follows:</p>
{{template "details" .}}
<p><strong>Rejected by:</strong> {{.Actor}}</p>
<p>If you have any questions or need further clarification, please feel free to reach out to the support team.</p>
</body></html>`

	deliveredTemplate = `<html><body>
<h3>Hello {{.Requester}},</h3>
<p>Your request has been delivered to <strong>{{.DeliveredTo}}</strong> on {{.DeliveredAt.Format "02 Jan 2006 15:04"}}.</p>
<p>Details of the delivered request are as follows:</p>
{{template "details" .}}
<p><strong>Processed by:</strong> {{.Actor}}</p>
</body></html>`

	genericTemplate = `<html><body>
<h3>Hello {{.Requester}},</h3>
<p>{{.Body}}</p>
<p>Details of your request:</p>
{{template "details" .}}
<p><strong>Processed by:</strong> {{.Actor}}</p>
</body></html>`

	detailsTemplate = `{{define "details"}}<table border="1" cellpadding="5">
<tr><th>Name</th><th>Email</th><th>Description</th></tr>
<tr><td>{{.Requester}}</td><td>{{.Email}}</td><td>{{.Description}}</td></tr>
</table>{{end}}`
)

var templates = map[string]*template.Template{
	"approved":  template.Must(template.New("approved").Parse(detailsTemplate + approvedTemplate)),
	"rejected":  template.Must(template.New("rejected").Parse(detailsTemplate + rejectedTemplate)),
	"delivered": template.Must(template.New("delivered").Parse(detailsTemplate + deliveredTemplate)),
	"generic":   template.Must(template.New("generic").Parse(detailsTemplate + genericTemplate)),
}

// classify picks a template name from the subject line.
func classify(subject string) string {
	s := strings.ToLower(subject)
	switch {
	case strings.Contains(s, "approved"):
		return "approved"
	case strings.Contains(s, "rejected"):
		return "rejected"
	case strings.Contains(s, "delivered"):
		return "delivered"
	default:
		return "generic"
	}
}

// Render produces the HTML body for a message.
func Render(msg Message) (string, error) {
	var buf bytes.Buffer
	if err := templates[classify(msg.Subject)].Execute(&buf, msg); err != nil {
		return "", fmt.Errorf("rendering notification: %w", err)
	}
	return buf.String(), nil
}
