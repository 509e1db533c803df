package models

import "time"

type NotificationType string

const NotificationLowStock NotificationType = "low_stock"

type Notification struct {
	ID        int64            `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Date      string           `json:"date"`
	CreatedAt time.Time        `json:"createdAt"`
	Read      bool             `json:"read"`
}
