// Package notify renders and dispatches inactivity reminder emails.
package notify

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
)

// Documented defaults applied when optional request fields are absent.
const (
	// DefaultSubject is used when no subject is supplied.
	DefaultSubject = "No GitHub Activity Today!"
	// DefaultMessage is used when no message body is supplied.
	DefaultMessage = "No public commits or pull requests were found for your account today. Keep your streak alive!"
	// fallbackSender is used when neither a sender nor an SMTP user is known.
	fallbackSender = "streakwatch@localhost"
)

// Request holds the fields to render and deliver one notification.
// Username is required; everything else falls back to defaults.
type Request struct {
	Username  string
	Message   string
	Subject   string
	Sender    string
	Recipient string
	Date      string // display date baked into the document; empty omits the date line
}

// Email is a rendered notification, derived deterministically from a Request.
type Email struct {
	Subject  string
	HTMLBody string
}

// templateData is the substitution set for the HTML document.
type templateData struct {
	Username string
	Message  string
	Date     string
}

// Render produces the HTML notification for the request. It is a pure
// function: identical requests yield byte-identical bodies. It fails
// only when the required username is missing.
func Render(req Request) (Email, error) {
	if req.Username == "" {
		return Email{}, &TemplateError{Field: "username"}
	}

	subject := req.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	message := req.Message
	if message == "" {
		message = DefaultMessage
	}

	var body strings.Builder
	data := templateData{
		Username: req.Username,
		Message:  message,
		Date:     req.Date,
	}
	if err := emailTemplate.Execute(&body, data); err != nil {
		return Email{}, fmt.Errorf("executing email template: %w", err)
	}

	return Email{Subject: subject, HTMLBody: body.String()}, nil
}

// ResolveSender applies the sender fallback chain: an explicit sender
// wins, then the SMTP username (suffixed with a placeholder domain when
// it is a bare local part), then a static fallback.
func ResolveSender(sender, smtpUser string) string {
	switch {
	case sender != "":
		return sender
	case smtpUser == "":
		return fallbackSender
	case strings.Contains(smtpUser, "@"):
		return smtpUser
	default:
		return smtpUser + "@placeholder"
	}
}

// WriteFile persists the rendered HTML to path for audit/backup,
// creating parent directories as needed.
func WriteFile(email Email, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(email.HTMLBody), 0o644); err != nil {
		return fmt.Errorf("writing rendered email: %w", err)
	}
	return nil
}

var emailTemplate = template.Must(template.New("reminder").Parse(emailTemplateHTML))

// emailTemplateHTML is the notification document. Substitution fields
// are escaped by html/template; everything else is static.
const emailTemplateHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Streakwatch: Activity Reminder</title>
    <style>
        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f9f9f9;
        }
        .container {
            background-color: #ffffff;
            border-radius: 8px;
            padding: 30px;
            box-shadow: 0 4px 6px rgba(0, 0, 0, 0.1);
        }
        .header {
            text-align: center;
            margin-bottom: 20px;
        }
        .logo {
            font-size: 2.5em;
            font-weight: bold;
            color: #e74c3c;
            margin-bottom: 10px;
        }
        h1 {
            color: #2c3e50;
            margin-top: 0;
        }
        .date {
            color: #7f8c8d;
            font-style: italic;
            margin-bottom: 25px;
            text-align: center;
        }
        .content {
            margin-bottom: 30px;
        }
        .message {
            font-size: 1.1em;
            background-color: #f8f9fa;
            padding: 15px;
            border-left: 4px solid #e74c3c;
            margin-bottom: 20px;
        }
        .cta {
            text-align: center;
            margin: 30px 0;
        }
        .button {
            display: inline-block;
            background-color: #e74c3c;
            color: white;
            padding: 12px 25px;
            text-decoration: none;
            border-radius: 4px;
            font-weight: bold;
            text-transform: uppercase;
            letter-spacing: 1px;
            font-size: 0.9em;
        }
        .footer {
            text-align: center;
            font-size: 0.8em;
            color: #95a5a6;
            margin-top: 30px;
            padding-top: 20px;
            border-top: 1px solid #ecf0f1;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <div class="logo">STREAKWATCH</div>
            <h1>GitHub Activity Reminder</h1>
        </div>
{{- if .Date}}
        <div class="date">
            {{.Date}}
        </div>
{{- end}}
        <div class="content">
            <p>Hello @{{.Username}},</p>
            <div class="message">
                {{.Message}}
            </div>
            <p>Maintaining a consistent GitHub contribution streak is important for:</p>
            <ul>
                <li>Building your developer portfolio</li>
                <li>Staying engaged with your projects</li>
                <li>Demonstrating your coding consistency</li>
                <li>Learning and growing your skills daily</li>
            </ul>
        </div>
        <div class="cta">
            <a href="https://github.com/{{.Username}}" class="button">View My GitHub Profile</a>
        </div>
        <div class="footer">
            <p>This is an automated message from Streakwatch.</p>
            <p>Stay committed.</p>
        </div>
    </div>
</body>
</html>
`
