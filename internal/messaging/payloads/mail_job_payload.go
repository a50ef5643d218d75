package payloads

// MailJobPayload — письмо, поставленное в очередь RabbitMQ для отправки воркером
type MailJobPayload struct {
	ID      string `json:"id"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
