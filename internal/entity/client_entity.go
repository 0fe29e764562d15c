package entity

import (
	"time"

	"github.com/google/uuid"
)

type Client struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyName string
	VatNumber   string `gorm:"uniqueIndex"`
	Email       string
	Sector      string
	Address     string
	CreatedAt   time.Time
}
