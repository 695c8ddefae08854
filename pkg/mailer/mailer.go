package mailer

import (
	"fmt"

	"github.com/wneessen/go-mail"
)

// Mailer is the outbound notification sink. Implementations report failure
// through the returned error; callers treat a failed send as non-fatal.
type Mailer interface {
	SendVerification(email, name, link string) error
	SendPasswordReset(email, name, link string) error
	SendLicensePurchase(email, name, textTitle, authorName, licenseType string, amountCents int64) error
}

type Config struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

type smtpMailer struct {
	client *mail.Client
	from   string
}

func NewSMTPMailer(cfg Config) (Mailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Pass),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize smtp client: %w", err)
	}

	return &smtpMailer{client: client, from: cfg.From}, nil
}

func (m *smtpMailer) send(to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (m *smtpMailer) SendVerification(email, name, link string) error {
	body := fmt.Sprintf(`
		<html><body style="font-family: Arial, sans-serif; color: #333;">
		<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
			<h2>Bem-vindo ao Recanto dos Poetas!</h2>
			<p>Olá %s,</p>
			<p>Obrigado por se cadastrar! Para completar seu registro, clique no link abaixo para verificar seu email:</p>
			<p style="margin: 30px 0;"><a href="%s">Verificar Email</a></p>
			<p style="color: #999; font-size: 12px;">Este link expira em 24 horas.</p>
		</div></body></html>`, name, link)

	return m.send(email, "Verifique seu email - Recanto dos Poetas", body)
}

func (m *smtpMailer) SendPasswordReset(email, name, link string) error {
	body := fmt.Sprintf(`
		<html><body style="font-family: Arial, sans-serif; color: #333;">
		<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
			<h2>Redefinir Sua Senha</h2>
			<p>Olá %s,</p>
			<p>Recebemos uma solicitação para redefinir sua senha. Clique no link abaixo:</p>
			<p style="margin: 30px 0;"><a href="%s">Redefinir Senha</a></p>
			<p style="color: #999; font-size: 12px;">Este link expira em 1 hora. Se você não solicitou esta alteração, ignore este email.</p>
		</div></body></html>`, name, link)

	return m.send(email, "Redefinir Senha - Recanto dos Poetas", body)
}

func (m *smtpMailer) SendLicensePurchase(email, name, textTitle, authorName, licenseType string, amountCents int64) error {
	body := fmt.Sprintf(`
		<html><body style="font-family: Arial, sans-serif; color: #333;">
		<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
			<h2>Compra de Licença Confirmada</h2>
			<p>Olá %s,</p>
			<p>Sua compra foi processada com sucesso!</p>
			<div style="background-color: #f8f9fa; padding: 20px; border-radius: 5px;">
				<p><strong>Texto:</strong> %s</p>
				<p><strong>Autor:</strong> %s</p>
				<p><strong>Tipo de Licença:</strong> %s</p>
				<p><strong>Valor:</strong> R$ %.2f</p>
			</div>
		</div></body></html>`, name, textTitle, authorName, licenseType, float64(amountCents)/100)

	return m.send(email, fmt.Sprintf("Licença Adquirida - %s", textTitle), body)
}
