package utils

import (
	"fmt"
	"log"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail sends an email using SendGrid
func SendEmail(toName, toEmail, subject, textContent, htmlContent string) error {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY is not set in environment variables")
	}

	from := mail.NewEmail("StyleNest", "no-reply@stylenest.in")
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, textContent, htmlContent)
	client := sendgrid.NewSendClient(apiKey)

	response, err := client.Send(message)
	if err != nil {
		log.Printf("Error sending email to %s: %v", toEmail, err)
		return err
	}

	if response.StatusCode >= 400 {
		log.Printf("SendGrid API Error: Status Code %d, Body: %s", response.StatusCode, response.Body)
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}

	log.Printf("Email sent successfully to %s. Status Code: %d", toEmail, response.StatusCode)
	return nil
}

// SendOrderConfirmation emails the customer their order number and total.
// Callers fire this in a goroutine; a failed email never fails the order.
func SendOrderConfirmation(toName, toEmail, orderNumber string, total float64) error {
	subject := fmt.Sprintf("Order %s confirmed", orderNumber)
	text := fmt.Sprintf("Thanks for your order %s! Your total is %.2f. We'll email you when it ships.", orderNumber, total)
	html := fmt.Sprintf("<h2>Thanks for your order!</h2><p>Order <strong>%s</strong> is confirmed. Total: <strong>%.2f</strong>.</p><p>We'll email you when it ships.</p>", orderNumber, total)
	return SendEmail(toName, toEmail, subject, text, html)
}
