package artifacts

import (
	"fmt"
	"html"
	"strings"
)

// EmailSubject is the subject line for credential handout emails.
const EmailSubject = "Your AWS Account Credentials"

// EmailParams carries the credentials announced in a handout email.
type EmailParams struct {
	SignInURL string
	Account   string
	Password  string
	Region    string
	Sender    string
}

// BuildCredentialEmail renders the plain-text body of a credential handout
// email.
func BuildCredentialEmail(p EmailParams) string {
	sender := p.Sender
	if sender == "" {
		sender = "Course Instructor"
	}
	return fmt.Sprintf(
		"Hello,\n\n"+
			"Your AWS IAM account has been created. Here are your login credentials:\n\n"+
			"Sign-in URL: %s\n"+
			"Username: %s\n"+
			"Temporary Password: %s\n\n"+
			"IMPORTANT: You will be required to change your password on first login.\n\n"+
			"Your account has permissions to use EC2 (virtual machines) in the %s region only.\n\n"+
			"Best regards,\n%s\n",
		p.SignInURL, p.Account, p.Password, p.Region, sender,
	)
}

// BuildCredentialEmailHTML renders the HTML alternative of the credential
// handout email. All parameter values are escaped.
func BuildCredentialEmailHTML(p EmailParams) string {
	sender := p.Sender
	if sender == "" {
		sender = "Course Instructor"
	}

	var b strings.Builder
	b.WriteString("<html><body>\n")
	b.WriteString("<p>Hello,</p>\n")
	b.WriteString("<p>Your AWS IAM account has been created. Here are your login credentials:</p>\n")
	b.WriteString("<table>\n")
	fmt.Fprintf(&b, "<tr><td>Sign-in URL</td><td><a href=%q>%s</a></td></tr>\n",
		p.SignInURL, html.EscapeString(p.SignInURL))
	fmt.Fprintf(&b, "<tr><td>Username</td><td><code>%s</code></td></tr>\n",
		html.EscapeString(p.Account))
	fmt.Fprintf(&b, "<tr><td>Temporary Password</td><td><code>%s</code></td></tr>\n",
		html.EscapeString(p.Password))
	b.WriteString("</table>\n")
	b.WriteString("<p><strong>IMPORTANT:</strong> You will be required to change your password on first login.</p>\n")
	fmt.Fprintf(&b, "<p>Your account has permissions to use EC2 (virtual machines) in the %s region only.</p>\n",
		html.EscapeString(p.Region))
	fmt.Fprintf(&b, "<p>Best regards,<br>%s</p>\n", html.EscapeString(sender))
	b.WriteString("</body></html>\n")
	return b.String()
}
