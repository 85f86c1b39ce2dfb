package activity

import "time"

type Activity struct {
	ID         int64     `gorm:"primaryKey"`
	EventID    string    `gorm:"column:event_id;uniqueIndex;not null"`
	Type       string    `gorm:"column:type;not null;index"`
	Entity     string    `gorm:"column:entity;not null"`
	EntityID   int64     `gorm:"column:entity_id"`
	UserID     int64     `gorm:"column:user_id"`
	Summary    string    `gorm:"column:summary"`
	OccurredAt time.Time `gorm:"column:occurred_at;not null;index"`
}

func (Activity) TableName() string {
	return "activities"
}
