package model

import "time"

// Review shares its id with the reservation it reviews, so a reservation
// can carry at most one.
type Review struct {
	ReservationID  string    `json:"reservation_id" bson:"_id"`
	ProfessionalID string    `json:"professional_id" bson:"professional_id"`
	ClientID       string    `json:"client_id" bson:"client_id"`
	Rating         int       `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	Comment        string    `json:"comment,omitempty" bson:"comment,omitempty" validate:"max=2000"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"max=2000"`
}
