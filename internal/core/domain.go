package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the canonical form of every date written to the ledger.
const DateLayout = "2006-01-02"

// MinYear and MaxYear bound the years a ledger date may carry.
const (
	MinYear = 1900
	MaxYear = 2999
)

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCashless PaymentMethod = "cashless"
	PaymentUnknown  PaymentMethod = "unknown"
)

type (
	PaymentMethod string

	Date struct {
		time.Time
	}

	ReceiptItem struct {
		Name  string `json:"item_name"`
		Price int64  `json:"price"`
	}

	// Receipt is one purchase as returned by the content extraction oracle
	// and confirmed by the user before it is saved.
	Receipt struct {
		PurchaseDate  string        `json:"purchase_date"`
		StoreName     string        `json:"store_name"`
		Items         []ReceiptItem `json:"items"`
		TotalAmount   int64         `json:"total_amount"`
		PaymentMethod PaymentMethod `json:"payment_method"`
	}

	// Transaction is the normalized unit of the ledger. Price is expressed in
	// the smallest currency unit.
	Transaction struct {
		Date          string        `json:"date"`
		Store         string        `json:"store"`
		Price         int64         `json:"price"`
		PaymentMethod PaymentMethod `json:"payment_method,omitempty"`
		Items         []ReceiptItem `json:"items,omitempty"`
	}

	// Image is a raw receipt picture handed to the extraction oracle.
	Image struct {
		Data     []byte
		MIMEType string
	}
)

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidPrice   = errors.New("invalid price")
	ErrEmptyStore     = errors.New("empty store name")
	ErrEmptyItemName  = errors.New("empty item name")
	ErrNoItems        = errors.New("receipt has no items")
	ErrPlaceholderRow = errors.New("placeholder store name")
)

// ParsePaymentMethod maps free-form oracle output onto the three known
// payment methods. Anything unrecognised is PaymentUnknown.
func ParsePaymentMethod(s string) PaymentMethod {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(PaymentCash):
		return PaymentCash
	case string(PaymentCashless):
		return PaymentCashless
	default:
		return PaymentUnknown
	}
}

func (p PaymentMethod) String() string {
	if p == "" {
		return string(PaymentUnknown)
	}
	return string(p)
}

// ParseDate parses a canonical YYYY-MM-DD date between MinYear and
// MaxYear.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil || t.Year() < MinYear || t.Year() > MaxYear {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MonthKey returns the YYYY-MM key used to pick a monthly worksheet.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (i ReceiptItem) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyItemName
	}
	if i.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

func (r Receipt) Validate() error {
	if _, err := ParseDate(r.PurchaseDate); err != nil {
		return err
	}
	if strings.TrimSpace(r.StoreName) == "" {
		return ErrEmptyStore
	}
	if len(r.Items) == 0 {
		return ErrNoItems
	}
	for _, it := range r.Items {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Total returns the amount printed on the receipt, or the sum of the items
// when the oracle could not read a total.
func (r Receipt) Total() int64 {
	if r.TotalAmount > 0 {
		return r.TotalAmount
	}
	var sum int64
	for _, it := range r.Items {
		sum += it.Price
	}
	return sum
}

func (t Transaction) Validate() error {
	if _, err := ParseDate(t.Date); err != nil {
		return err
	}
	store := strings.TrimSpace(t.Store)
	if store == "" {
		return ErrEmptyStore
	}
	if store == PlaceholderStore {
		return ErrPlaceholderRow
	}
	if t.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}
