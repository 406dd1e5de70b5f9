package checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/Anshid-ck/cloth-shop-sub001/internal/address"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/orders"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/payments"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/enums"
)

// Attempt is one pass of a shopper through the checkout flow. It is persisted
// so a reload resumes where the shopper left off; completed and abandoned
// attempts stay behind as an audit record.
type Attempt struct {
	ID            uuid.UUID            `gorm:"type:uuid;primaryKey"`
	UserID        string               `gorm:"not null"`
	Step          enums.CheckoutStep   `gorm:"type:text;not null"`
	AddressID     *string              `gorm:"type:text"`
	Address       *address.Address     `gorm:"type:jsonb;serializer:json"`
	PaymentMethod *enums.PaymentMethod `gorm:"type:text"`
	OrderID       *string              `gorm:"type:text"`
	Order         *orders.Order        `gorm:"column:order_snapshot;type:jsonb;serializer:json"`
	Payment       payments.CardPayment `gorm:"embedded;embeddedPrefix:payment_"`
	CompletedAt   *time.Time
	AbandonedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Attempt) TableName() string { return "checkout_attempts" }

// HasOrder reports whether the order for this attempt was already created.
func (a *Attempt) HasOrder() bool {
	return a.OrderID != nil && *a.OrderID != ""
}

// Open reports whether the attempt can still move.
func (a *Attempt) Open() bool {
	return a.CompletedAt == nil && a.AbandonedAt == nil
}

func newAttempt(userID string, now time.Time) *Attempt {
	return &Attempt{
		ID:        uuid.New(),
		UserID:    userID,
		Step:      enums.CheckoutStepAddressSelection,
		Payment:   payments.NewCardPayment(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
