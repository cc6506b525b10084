package services

//go:generate mockgen -source=ports.go -destination=mocks/mock_ports.go -package=mocks

import (
	"context"

	"kakeibo/internal/amqp"
	"kakeibo/internal/core"
)

type (
	// ReceiptExtractor reads receipts out of photographed images.
	ReceiptExtractor interface {
		ExtractReceipts(ctx context.Context, images []core.Image) ([]core.Receipt, error)
	}

	// MappingSuggester guesses a column mapping from the first lines of a
	// CSV export.
	MappingSuggester interface {
		SuggestMapping(ctx context.Context, sample string) (core.ColumnMapping, error)
	}

	// QuestionAnswerer answers a question using only the supplied ledger
	// text.
	QuestionAnswerer interface {
		Answer(ctx context.Context, question, ledger string) (string, error)
	}

	EventPublisher interface {
		PublishLedgerAppended(ctx context.Context, msg *amqp.LedgerAppendedMessage) error
	}
)
