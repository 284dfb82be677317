package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// WelcomeEmailData holds data for the account-provisioned welcome email.
type WelcomeEmailData struct {
	SiteName     string
	ParentName   string
	SchoolName   string
	LoginEmail   string
	TempPassword string
	LoginURL     string
}

// BuildWelcomeEmail creates the email sent when an application is approved
// and the parent account has been provisioned. It carries the plaintext
// temporary credential and the note that it must be changed on first use.
func BuildWelcomeEmail(data WelcomeEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("Your %s account is ready", data.SiteName),
		TextBody: buildWelcomeText(data),
		HTMLBody: buildWelcomeHTML(data),
	}
}

func buildWelcomeText(data WelcomeEmailData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hi %s,\n\n", data.ParentName)
	if data.SchoolName != "" {
		fmt.Fprintf(&buf, "Your application to %s has been approved and your %s account is ready.\n\n", data.SchoolName, data.SiteName)
	} else {
		fmt.Fprintf(&buf, "Your application has been approved and your %s account is ready.\n\n", data.SiteName)
	}
	fmt.Fprintf(&buf, "Sign in with:\n  Email: %s\n  Temporary password: %s\n\n", data.LoginEmail, data.TempPassword)
	buf.WriteString("You will be asked to choose a new password the first time you sign in.\n\n")
	fmt.Fprintf(&buf, "Sign in here: %s\n", data.LoginURL)
	return buf.String()
}

func buildWelcomeHTML(data WelcomeEmailData) string {
	tmpl := template.Must(template.New("welcome").Parse(welcomeHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

// RejectionEmailData holds data for the application-rejected email.
type RejectionEmailData struct {
	SiteName   string
	ParentName string
	SchoolName string
	Notes      string
}

// BuildRejectionEmail creates the email sent when an application is rejected.
func BuildRejectionEmail(data RejectionEmailData) Email {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hi %s,\n\n", data.ParentName)
	if data.SchoolName != "" {
		fmt.Fprintf(&buf, "We are sorry to let you know that your application to %s was not accepted at this time.\n", data.SchoolName)
	} else {
		buf.WriteString("We are sorry to let you know that your application was not accepted at this time.\n")
	}
	if data.Notes != "" {
		fmt.Fprintf(&buf, "\nReviewer notes: %s\n", data.Notes)
	}
	buf.WriteString("\nYou are welcome to apply again in a future enrollment period.\n")

	return Email{
		Subject:  fmt.Sprintf("Your %s application", data.SiteName),
		TextBody: buf.String(),
	}
}

const welcomeHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Welcome</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #059669;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151;">Hi {{.ParentName}},</p>
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151;">
                {{if .SchoolName}}Your application to {{.SchoolName}} has been approved and your account is ready.{{else}}Your application has been approved and your account is ready.{{end}}
              </p>
              <div style="background-color: #f3f4f6; border-radius: 8px; padding: 24px; margin-bottom: 24px;">
                <p style="margin: 0 0 8px; font-size: 14px; color: #6b7280;">Email</p>
                <p style="margin: 0 0 16px; font-size: 16px; color: #1f2937; font-family: 'Courier New', monospace;">{{.LoginEmail}}</p>
                <p style="margin: 0 0 8px; font-size: 14px; color: #6b7280;">Temporary password</p>
                <p style="margin: 0; font-size: 18px; font-weight: 700; letter-spacing: 2px; color: #1f2937; font-family: 'Courier New', monospace;">{{.TempPassword}}</p>
              </div>
              <p style="margin: 0 0 24px; font-size: 14px; color: #6b7280;">
                You will be asked to choose a new password the first time you sign in.
              </p>
              <div style="text-align: center;">
                <a href="{{.LoginURL}}" style="display: inline-block; background-color: #059669; color: #ffffff; font-size: 16px; font-weight: 600; text-decoration: none; padding: 12px 32px; border-radius: 6px;">Sign in</a>
              </div>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
