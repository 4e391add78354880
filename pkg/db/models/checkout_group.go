package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckoutGroup links one checkout request to the creator orders it produced.
type CheckoutGroup struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	CouponCode *string   `gorm:"column:coupon_code"`
	Orders     []Order   `gorm:"foreignKey:CheckoutGroupID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (g *CheckoutGroup) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
