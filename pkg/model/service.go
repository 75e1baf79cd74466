package model

import "time"

// Service is a fixed-price catalog item offered by a professional.
// Price is in minor currency units.
type Service struct {
	ID              string    `json:"id" bson:"_id"`
	ProfessionalID  string    `json:"professional_id" bson:"professional_id" validate:"required"`
	Name            string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	DurationMinutes int       `json:"duration_minutes" bson:"duration_minutes" validate:"required,min=1,max=1440"`
	Price           int64     `json:"price" bson:"price" validate:"min=0"`
	IsActive        bool      `json:"is_active" bson:"is_active"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}

type ServiceUpdate struct {
	Name            string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	DurationMinutes *int   `json:"duration_minutes,omitempty" validate:"omitempty,min=1,max=1440"`
	Price           *int64 `json:"price,omitempty" validate:"omitempty,min=0"`
	IsActive        *bool  `json:"is_active,omitempty"`
}
