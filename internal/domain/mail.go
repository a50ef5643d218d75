package domain

// MailMessage — исходящее письмо с текстовым телом
type MailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
