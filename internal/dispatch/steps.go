package dispatch

import "fmt"

const (
	DefaultHost = "smtp.femhealth.io"
	senderAddr  = "no-reply@femhealth.io"
	clientHost  = "client.femhealth.io"
)

// Steps returns the handshake transcript in send order.
func Steps(host, recipient, subject, messageID string) []string {
	return []string{
		fmt.Sprintf("220 %s ESMTP Postfix", host),
		"EHLO " + clientHost,
		"250-PIPELINING",
		"250-SIZE 10485760",
		"250-AUTH LOGIN PLAIN",
		"STARTTLS",
		"220 2.0.0 Ready to start TLS",
		"AUTH LOGIN",
		"334 VXNlcm5hbWU6",
		"334 UGFzc3dvcmQ6",
		"235 2.7.0 Authentication successful",
		fmt.Sprintf("MAIL FROM: <%s>", senderAddr),
		"250 2.1.0 Ok",
		fmt.Sprintf("RCPT TO: <%s>", recipient),
		"250 2.1.5 Ok",
		"DATA",
		"354 End data with <CR><LF>.<CR><LF>",
		"Content-Type: text/html; charset=utf-8",
		"Subject: " + subject,
		".",
		"250 2.0.0 Ok: queued as " + messageID,
	}
}
