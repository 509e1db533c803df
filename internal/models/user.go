package models

import "time"

const DefaultBusinessName = "StarBlack"

// UserInfo: operator profile shown on receipts
type UserInfo struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	BusinessName string `json:"businessName"`
	Address      string `json:"address"`
}

// Account: the single operator login of a device
type Account struct {
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
