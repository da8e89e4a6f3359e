package services

import (
	"encoding/json"
	"fmt"
	"html"

	"github.com/pegrio/portal-backend/usecase"
)

// renderNotification turns a workflow notification into a subject and HTML
// body. Copy mirrors the portal's customer emails; admin mails stay terse.
func renderNotification(n usecase.Notification) (subject, body string) {
	customer := stringField(n.Data, "customer_name")
	if customer == "" {
		customer = "there"
	}
	business := stringField(n.Data, "business_name")
	if business == "" {
		business = "your website"
	}

	switch n.Kind {
	case usecase.NotifyIntakeCustomer:
		subject = "Questionnaire Received - We're Building Your Website!"
		body = fmt.Sprintf(
			"<p>Hi %s,</p><p>Thank you for completing the questionnaire for <strong>%s</strong>. Our team is now hard at work bringing your vision to life.</p><p>You'll receive an email when it's ready for review. You can check on your project status anytime through your client portal.</p><p>Best regards,<br>The Pegrio Team</p>",
			html.EscapeString(customer), html.EscapeString(business))

	case usecase.NotifyIntakeAdmin:
		subject = fmt.Sprintf("Intake Complete: %s (Tier %v)", adminLabel(n), n.Data["tier"])
		answers, _ := json.MarshalIndent(n.Data["answers"], "", "  ")
		body = fmt.Sprintf(
			"<h2>Client Intake Submitted</h2><p><strong>Client:</strong> %s</p><p><strong>Business:</strong> %s</p><p><strong>Email:</strong> %s</p><hr><pre>%s</pre>",
			html.EscapeString(stringField(n.Data, "customer_name")),
			html.EscapeString(stringField(n.Data, "business_name")),
			html.EscapeString(stringField(n.Data, "customer_email")),
			html.EscapeString(string(answers)))

	case usecase.NotifyApprovedCustomer:
		subject = "Design Approved - Preparing Your Website for Delivery!"
		body = fmt.Sprintf(
			"<p>Hi %s,</p><p>Great news! You've approved the design for <strong>%s</strong>.</p><p>We're now preparing your website for delivery. You'll receive another email with delivery options shortly.</p><p>Best regards,<br>The Pegrio Team</p>",
			html.EscapeString(customer), html.EscapeString(business))

	case usecase.NotifyApprovedAdmin:
		subject = fmt.Sprintf("Design Approved: %s", adminLabel(n))
		body = fmt.Sprintf(
			"<h2>Client Approved Design</h2><p><strong>Client:</strong> %s</p><p><strong>Business:</strong> %s</p><p><strong>Tier:</strong> %v</p><hr><p>Time to prepare for delivery!</p>",
			html.EscapeString(stringField(n.Data, "customer_name")),
			html.EscapeString(stringField(n.Data, "business_name")),
			n.Data["tier"])

	case usecase.NotifyRevisionAdmin:
		kind := "Changes"
		heading := "Changes Requested"
		if stringField(n.Data, "action") == "fresh" {
			kind = "Fresh Start"
			heading = "Fresh Start Requested"
		}
		subject = fmt.Sprintf("Revision Requested: %s (%s)", adminLabel(n), kind)
		notes := stringField(n.Data, "notes")
		if notes == "" {
			notes = "No notes provided"
		}
		body = fmt.Sprintf(
			"<h2>%s</h2><p><strong>Client:</strong> %s</p><p><strong>Business:</strong> %s</p><p><strong>Revision #:</strong> %v</p><hr><blockquote>%s</blockquote>",
			heading,
			html.EscapeString(stringField(n.Data, "customer_name")),
			html.EscapeString(stringField(n.Data, "business_name")),
			n.Data["revision_number"],
			html.EscapeString(notes))
		if ref := stringField(n.Data, "reference_url"); ref != "" {
			escaped := html.EscapeString(ref)
			body += fmt.Sprintf(`<p><strong>Reference URL:</strong> <a href="%s">%s</a></p>`, escaped, escaped)
		}

	case usecase.NotifyRevisionCustomer:
		subject = "Revision Request Received - We're On It!"
		body = fmt.Sprintf(
			"<p>Hi %s,</p><p>We've received your revision request for <strong>%s</strong>.</p><p>Our team is reviewing your feedback and will get to work on the changes. You'll receive an email when the updated design is ready for review.</p><p>Best regards,<br>The Pegrio Team</p>",
			html.EscapeString(customer), html.EscapeString(business))

	default:
		subject = "Pegrio Notification"
		body = "<p>You have a new update on your Pegrio project.</p>"
	}
	return subject, body
}

func adminLabel(n usecase.Notification) string {
	if business := stringField(n.Data, "business_name"); business != "" {
		return business
	}
	return stringField(n.Data, "customer_name")
}

func stringField(data map[string]interface{}, key string) string {
	if data == nil {
		return ""
	}
	value, _ := data[key].(string)
	return value
}
