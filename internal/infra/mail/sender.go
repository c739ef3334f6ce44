package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	From   string
	AppURL string
	Dialer Dialer
}

func NewEmailSender(host string, port int, user, password, from, appURL string) *EmailSender {
	return &EmailSender{
		From:   from,
		AppURL: strings.TrimRight(appURL, "/"),
		Dialer: gomail.NewDialer(host, port, user, password),
	}
}

func (s *EmailSender) SendEnterpriseAlert(to string, lead *entity.Lead) error {
	data := EnterpriseAlertData{
		Name:    lead.DisplayName(),
		Email:   lead.Email,
		Company: lead.CompanyDomain,
		Score:   lead.Score,
	}
	if lead.JobTitle != nil {
		data.JobTitle = *lead.JobTitle
	}
	if s.AppURL != "" {
		data.LeadURL = s.AppURL + "/leads/" + url.PathEscape(lead.Email)
	}

	body, err := renderEnterpriseAlert(data)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("🚀 %s is now an Enterprise Target (score %d)", data.Name, lead.Score))
	m.SetBody("text/html", body)

	if err := s.Dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send enterprise alert to %s: %w", to, err)
	}
	return nil
}

func renderEnterpriseAlert(data EnterpriseAlertData) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, "enterprise_alert.html", data); err != nil {
		return "", fmt.Errorf("render enterprise alert: %w", err)
	}
	return body.String(), nil
}
