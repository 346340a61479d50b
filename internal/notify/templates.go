package notify

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/storefront/internal/model"
)

// OrderReceived is sent to the customer after checkout.
func OrderReceived(to string, orderID int64, publicBaseURL string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your purchase.\n\nYour order number is %d.\n", orderID)
	if publicBaseURL != "" {
		fmt.Fprintf(&b, "Receipt: %s/orders/%d\n", publicBaseURL, orderID)
	}
	return Message{To: to, Subject: fmt.Sprintf("Order #%d received", orderID), Text: b.String()}
}

// ContactReceived forwards a contact-form message to the shop inbox.
func ContactReceived(to string, c model.ContactMessage) Message {
	text := fmt.Sprintf("From: %s <%s>\n\n%s\n", c.Name, c.Email, c.Comment)
	return Message{To: to, Subject: "New contact message from " + c.Name, Text: text}
}
