package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Profile is the single persisted entity. A creator claims exactly one
// profile per wallet; the wallet address is set at creation and never
// changes afterwards.
type Profile struct {
	Id            string     `gorm:"primaryKey;default:gen_random_uuid()" json:"id"`
	Username      string     `gorm:"uniqueIndex" json:"username"`
	WalletAddress string     `gorm:"uniqueIndex" json:"walletAddress"`
	PayoutAddress string     `json:"payoutAddress"`
	DisplayName   string     `json:"displayName"`
	Bio           string     `json:"bio"`
	AvatarUrl     string     `json:"avatarUrl"`
	TwitterUrl    string     `json:"twitterUrl"`
	TipAmounts    TipAmounts `gorm:"type:jsonb" json:"tipAmounts"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (Profile) TableName() string {
	return "profiles"
}

// TipAmounts is the ordered list of preset USD tip values, stored as a
// jsonb column. At most three are shown (Coffee, Lunch, Big Tip).
type TipAmounts []int64

func (a TipAmounts) Value() (driver.Value, error) {
	if a == nil {
		a = TipAmounts{}
	}
	return json.Marshal(a)
}

func (a *TipAmounts) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported tip_amounts column type")
	}
	return json.Unmarshal(raw, a)
}
