package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Message is a rendered email ready for delivery.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(msg Message) error
}

const (
	subjectInvitation    = "You've been invited to a new wishlist"
	subjectPasswordReset = "Password reset request"
)

// Mailer renders the application's notification emails and hands them to a
// Sender. Links point at the front-end, which posts tokens back to the API.
type Mailer struct {
	sender      Sender
	frontEndURL string
}

func NewMailer(sender Sender, frontEndURL string) *Mailer {
	return &Mailer{sender: sender, frontEndURL: strings.TrimRight(frontEndURL, "/")}
}

type templateData struct {
	Username     string
	Sender       string
	WishlistName string
	Link         string
}

// SendInvitation emails an activation link to someone without an account.
func (m *Mailer) SendInvitation(to, sender, wishlistName, token string) error {
	link := m.link("/activate", "activationToken", token)
	return m.send("invite_new_user.html", to, subjectInvitation, templateData{
		Username:     to,
		Sender:       sender,
		WishlistName: wishlistName,
		Link:         link,
	}, link)
}

// SendAddedToWishlist tells an existing user they were enrolled directly.
func (m *Mailer) SendAddedToWishlist(to, username, sender, wishlistName string) error {
	return m.send("invite_existing_user.html", to, subjectInvitation, templateData{
		Username:     username,
		Sender:       sender,
		WishlistName: wishlistName,
		Link:         m.frontEndURL,
	}, m.frontEndURL)
}

func (m *Mailer) SendPasswordReset(to, username, token string) error {
	link := m.link("/reset-password", "resetPasswordToken", token)
	return m.send("password_reset.html", to, subjectPasswordReset, templateData{
		Username: username,
		Link:     link,
	}, link)
}

func (m *Mailer) link(path, param, token string) string {
	return m.frontEndURL + path + "?" + param + "=" + url.QueryEscape(token)
}

func (m *Mailer) send(name, to, subject string, data templateData, link string) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	msg := Message{
		To:       to,
		Subject:  subject,
		HTMLBody: buf.String(),
		TextBody: fmt.Sprintf("%s\n\n%s", subject, link),
	}
	if err := m.sender.Send(msg); err != nil {
		return fmt.Errorf("send %q to %s: %w", subject, to, err)
	}
	return nil
}
