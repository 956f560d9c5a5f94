package services

import (
	"fmt"
	"html"
	"strings"

	"github.com/rocjay1/finance-importer/internal/models"
)

// EmailMessage is a rendered notification ready to send.
type EmailMessage struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

const emailShell = `
		<html>
		<body style="font-family: 'Segoe UI', sans-serif; color: #333; line-height: 1.6; background-color: #f4f4f4; margin: 0; padding: 20px;">
			<div style="max-width: 600px; margin: 0 auto; background: white; border-radius: 8px; overflow: hidden; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
				<div style="background-color: %s; padding: 20px; text-align: center; color: white;">
					<h2 style="margin: 0;">%s</h2>
				</div>
				<div style="padding: 20px;">
					%s
				</div>
			</div>
		</body>
		</html>
	`

// RenderErrorSection renders the list of reasons an import failed.
func RenderErrorSection(reasons []string) string {
	if len(reasons) == 0 {
		return ""
	}

	var items strings.Builder
	for _, r := range reasons {
		fmt.Fprintf(&items, "<li>%s</li>", html.EscapeString(r))
	}

	return fmt.Sprintf(`
		<div style="background-color: #fff4f4; border-left: 5px solid #d13438; padding: 15px; margin-bottom: 20px;">
			<ul style="margin-bottom: 0; padding-left: 20px;">
				%s
			</ul>
		</div>
	`, items.String())
}

// ImportFailureEmail renders the notification for an upload that could not be imported.
func ImportFailureEmail(fileName string, reasons []string) EmailMessage {
	content := fmt.Sprintf("<p>%s could not be imported:</p>%s",
		html.EscapeString(fileName), RenderErrorSection(reasons))
	return EmailMessage{
		Subject: "Finance Importer - Import Failed",
		HTML:    fmt.Sprintf(emailShell, "#d13438", "Import Failed", content),
	}
}

// ImportSummaryEmail renders the notification for a completed import.
func ImportSummaryEmail(fileName string, summary models.ImportSummary) EmailMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Finished importing <strong>%s</strong>.</p>", html.EscapeString(fileName))
	b.WriteString(`<table style="border-collapse: collapse;">`)
	summaryRow(&b, "Imported", summary.Success)
	summaryRow(&b, "Failed", summary.Failed)
	if summary.Skipped > 0 {
		summaryRow(&b, "Skipped", summary.Skipped)
	}
	b.WriteString("</table>")

	color := "#107c10"
	if summary.Failed > 0 {
		color = "#ca5010"
	}
	return EmailMessage{
		Subject: fmt.Sprintf("Finance Importer - %d transactions imported", summary.Success),
		HTML:    fmt.Sprintf(emailShell, color, "Import Complete", b.String()),
	}
}

func summaryRow(b *strings.Builder, label string, n int) {
	fmt.Fprintf(b, `<tr><td style="padding: 4px 12px;">%s</td><td style="padding: 4px 12px;">%d</td></tr>`, label, n)
}
