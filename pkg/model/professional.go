package model

import "time"

// MaxHourlyRate caps HourlyRate (minor units) at 1,000,000 ILS.
const MaxHourlyRate = 100_000_000

type Professional struct {
	ID         string    `json:"id" bson:"_id"`
	Name       string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Phone      string    `json:"phone" bson:"phone" validate:"required,e164"`
	HourlyRate int64     `json:"hourly_rate" bson:"hourly_rate" validate:"min=0,max=100000000"`
	TimeZone   string    `json:"time_zone" bson:"time_zone" validate:"omitempty,timezone"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

type ProfessionalUpdate struct {
	Name       string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	HourlyRate *int64 `json:"hourly_rate,omitempty" validate:"omitempty,min=0,max=100000000"`
	TimeZone   string `json:"time_zone,omitempty" validate:"omitempty,timezone"`
}
