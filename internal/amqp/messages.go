package amqp

import (
	"encoding/json"
	"time"
)

const (
	SourceReceipt = "receipt"
	SourceCSV     = "csv"
)

// LedgerAppendedMessage announces rows written to the ledger. It carries
// counts only; consumers read the spreadsheet for the rows themselves.
type LedgerAppendedMessage struct {
	Source        string    `json:"source"`
	Sheets        []string  `json:"sheets"`
	ReceiptRows   int       `json:"receipt_rows"`
	LogRows       int       `json:"log_rows"`
	PaymentMethod string    `json:"payment_method"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewLedgerAppendedMessage(source string, sheets []string, receiptRows, logRows int, paymentMethod string) *LedgerAppendedMessage {
	return &LedgerAppendedMessage{
		Source:        source,
		Sheets:        sheets,
		ReceiptRows:   receiptRows,
		LogRows:       logRows,
		PaymentMethod: paymentMethod,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerAppendedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerAppendedMessageFromJSON decodes a message published by
// PublishLedgerAppended.
func LedgerAppendedMessageFromJSON(data []byte) (*LedgerAppendedMessage, error) {
	var msg LedgerAppendedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
