package services

import (
	"context"
	"fmt"
	"log"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"pagai-backend/config"
	"pagai-backend/models"
	"pagai-backend/utils"
)

type NotificationService struct {
	auth *firebaseauth.Client
}

var notifService *NotificationService

func InitNotificationService(authClient *firebaseauth.Client) {
	notifService = &NotificationService{auth: authClient}
}

func GetNotificationService() *NotificationService {
	if notifService == nil {
		notifService = &NotificationService{}
	}
	return notifService
}

// NotifyDebtorSettled emails the owner when a payment clears a debtor.
// Fire-and-forget: called from a goroutine, every failure is only logged.
func (ns *NotificationService) NotifyDebtorSettled(ownerID string, debtor models.Debtor, balance models.Balance) {
	if config.AppConfig.SendGridAPIKey == "" {
		log.Printf("⚠️  SendGrid API key not set, skipping settled email for %s", debtor.Name)
		return
	}
	if ns.auth == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := ns.auth.GetUser(ctx, ownerID)
	if err != nil || user.Email == "" {
		log.Printf("⚠️  No email for owner %s, skipping settled notification: %v", ownerID, err)
		return
	}

	subject := fmt.Sprintf("🎉 %s quitou a dívida!", debtor.Name)
	ns.sendEmail(user.Email, user.DisplayName, subject, buildSettledEmailHTML(debtor, balance))
}

func (ns *NotificationService) sendEmail(toEmail, toName, subject, htmlBody string) {
	from := mail.NewEmail(config.AppConfig.AppName, config.AppConfig.SendGridFrom)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendGridAPIKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("❌ Email send error: %v", err)
		return
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.Printf("✅ Email sent to %s", toEmail)
	} else {
		log.Printf("⚠️  SendGrid returned status: %d", resp.StatusCode)
	}
}

func buildSettledEmailHTML(debtor models.Debtor, balance models.Balance) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #10b981; margin-top: 0;">✅ Dívida quitada</h2>
		<p><strong>%s</strong> terminou de pagar.</p>
		<div style="background: #f8f9fa; border-radius: 8px; padding: 16px; margin: 16px 0;">
			<p style="margin: 4px 0; color: #666;">Total devido: R$ %s</p>
			<p style="margin: 4px 0; color: #10b981; font-size: 18px;"><strong>Total recebido: R$ %s</strong></p>
		</div>
		<p>Você pode arquivar este devedor no app.</p>
		<p style="color: #999; font-size: 12px; margin-top: 24px;">— %s</p>
	</div>
</body>
</html>`, debtor.Name, utils.FormatAmount(debtor.Total), utils.FormatAmount(balance.Paid), config.AppConfig.AppName)
}
