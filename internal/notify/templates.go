package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

// Template selects the welcome mail variant.
type Template string

const (
	WelcomeCustomer Template = "welcome_customer"
	WelcomeCompany  Template = "welcome_company"
)

const welcomeCustomerHTML = `<div style="background:#000;color:#f1f5f9;padding:48px;border-radius:8px">
<h1>Welcome {{.FirstName}} {{.LastName}}!</h1>
<p>Thank you for signing up with BusApp!<br>We look forward to serving you.</p>
<p>Kind regards,<br>BusApp</p>
<p><i>To get started click the link below to get a quote!</i></p>
<a href="{{.AppURL}}/get-quote">Get a quote</a>
</div>`

const welcomeCompanyHTML = `<div style="background:#000;color:#f1f5f9;padding:32px;border-radius:8px">
<h1>Welcome {{.FirstName}} {{.LastName}}!</h1>
<p>Thank you for signing up with BusApp!<br>We look forward to serving you.</p>
<p>Kind regards,<br>BusApp</p>
<p><i>To get started use the link below to get to the site and onto your dashboard.</i></p>
<a href="{{.AppURL}}/company/{{.CompanyID}}">BusApp</a>
</div>`

var templates = map[Template]*template.Template{
	WelcomeCustomer: template.Must(template.New(string(WelcomeCustomer)).Parse(welcomeCustomerHTML)),
	WelcomeCompany:  template.Must(template.New(string(WelcomeCompany)).Parse(welcomeCompanyHTML)),
}

type welcomeView struct {
	WelcomePayload
	AppURL string
}

// RenderWelcome builds the message for p.
func RenderWelcome(p WelcomePayload, from, appURL string) (Message, error) {
	tpl, ok := templates[p.Template]
	if !ok {
		return Message{}, fmt.Errorf("unknown template %q", p.Template)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, welcomeView{WelcomePayload: p, AppURL: appURL}); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", p.Template, err)
	}
	return Message{
		From:    from,
		To:      []string{p.Email},
		Subject: "Welcome to BusApp",
		HTML:    buf.String(),
	}, nil
}
