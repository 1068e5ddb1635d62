package domain

import "time"

// Catalog models. The lifecycle engine only reads them.

// Provider is a service provider profile linked to a user account.
type Provider struct {
	ID             int64     `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	UserID         int64     `json:"user_id,string" gorm:"index"`
	Name           string    `json:"name" gorm:"size:200"`
	Specialization string    `json:"specialization" gorm:"size:200"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Provider) TableName() string {
	return "provider"
}

type Category struct {
	ID        int64     `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	Name      string    `json:"name" gorm:"size:100"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName Specify table name
func (Category) TableName() string {
	return "category"
}

// Service is a catalog offering published by a provider.
type Service struct {
	ID          int64     `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	ProviderID  int64     `json:"provider_id,string" gorm:"index"`
	CategoryID  int64     `json:"category_id,string" gorm:"index"`
	Title       string    `json:"title" gorm:"size:200;index"`
	Description string    `json:"description" gorm:"type:text"`
	Price       float64   `json:"price"` // list price, raw magnitude
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Service) TableName() string {
	return "service"
}
