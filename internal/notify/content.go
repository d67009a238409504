package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"

	"github.com/mmynk/billreminder/internal/models"
)

// Content is the rendered reminder for one user, in rich and plain forms.
type Content struct {
	Subject string
	HTML    string
	Text    string
}

type contentLine struct {
	Title   string
	Amount  string
	DueDate string
}

type contentData struct {
	Count int
	Bills []contentLine
}

var htmlTemplate = htmltemplate.Must(htmltemplate.New("reminder").Parse(`<h2>You have {{.Count}} bill{{if ne .Count 1}}s{{end}} due soon</h2>
<ul>
{{- range .Bills}}
  <li><strong>{{.Title}}</strong>: {{.Amount}} (due {{.DueDate}})</li>
{{- end}}
</ul>
`))

var textTemplate = template.Must(template.New("reminder").Parse(`You have {{.Count}} bill{{if ne .Count 1}}s{{end}} due soon:
{{- range .Bills}}
- {{.Title}}: {{.Amount}} (due {{.DueDate}})
{{- end}}
`))

// Render builds the subject, HTML and text bodies listing bills.
// Amounts are the amount due after discount, formatted with two decimals.
func Render(bills []*models.Bill, currencySymbol string) (*Content, error) {
	data := contentData{Count: len(bills)}
	for _, b := range bills {
		data.Bills = append(data.Bills, contentLine{
			Title:   b.Title,
			Amount:  FormatAmount(b, currencySymbol),
			DueDate: b.DueDate.Format("02/01/2006"),
		})
	}

	var html, text bytes.Buffer
	if err := htmlTemplate.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("failed to render html: %w", err)
	}
	if err := textTemplate.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("failed to render text: %w", err)
	}

	subject := fmt.Sprintf("Reminder: %d bill due soon", len(bills))
	if len(bills) != 1 {
		subject = fmt.Sprintf("Reminder: %d bills due soon", len(bills))
	}

	return &Content{Subject: subject, HTML: html.String(), Text: text.String()}, nil
}

// FormatAmount renders a bill's amount due with the currency symbol.
func FormatAmount(b *models.Bill, currencySymbol string) string {
	amount := b.AmountDue().StringFixed(2)
	if currencySymbol == "" {
		return amount
	}
	return currencySymbol + " " + amount
}
