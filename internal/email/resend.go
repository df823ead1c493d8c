// Package email sends transactional mail through Resend: initial
// credentials for accounts created by an admin, and payment receipts.
package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"
)

type Client struct {
	client    *resend.Client
	fromEmail string
}

func NewClient(apiKey, fromEmail string) *Client {
	c := &Client{fromEmail: fromEmail}
	if apiKey != "" {
		c.client = resend.NewClient(apiKey)
	}
	return c
}

// Configured returns true if an API key was provided.
func (c *Client) Configured() bool {
	return c.client != nil
}

// SendWelcome mails initial login credentials to an account created by a
// manager or admin. The recipient is forced to change the password on
// first login.
func (c *Client) SendWelcome(ctx context.Context, toEmail, name, tempPassword string) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured")
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("FitDesert <%s>", c.fromEmail),
		To:      []string{toEmail},
		Subject: "Your FitDesert account",
		Html:    welcomeHTML(name, toEmail, tempPassword),
	}
	if _, err := c.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send welcome email: %w", err)
	}
	return nil
}

// SendReceipt mails a payment confirmation.
func (c *Client) SendReceipt(ctx context.Context, toEmail, name string, amount float64, description string) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured")
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("FitDesert <%s>", c.fromEmail),
		To:      []string{toEmail},
		Subject: "Payment received",
		Html:    receiptHTML(name, amount, description),
	}
	if _, err := c.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send receipt email: %w", err)
	}
	return nil
}

func welcomeHTML(name, email, tempPassword string) string {
	return fmt.Sprintf(`<html><body style="font-family:Arial,sans-serif;color:#1f2937;">
<h2>Welcome to FitDesert, %s</h2>
<p>An account has been created for you. Sign in with:</p>
<p><b>Email:</b> %s<br><b>Temporary password:</b> %s</p>
<p>You will be asked to choose a new password on first login.</p>
</body></html>`, name, email, tempPassword)
}

func receiptHTML(name string, amount float64, description string) string {
	return fmt.Sprintf(`<html><body style="font-family:Arial,sans-serif;color:#1f2937;">
<h2>Payment received</h2>
<p>Hi %s, we received your payment of <b>₹%.2f</b> for %s.</p>
<p>Thanks for training with us.</p>
</body></html>`, name, amount, description)
}
