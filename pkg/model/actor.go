package model

type ActorRole string

const (
	RoleClient       ActorRole = "client"
	RoleProfessional ActorRole = "professional"
)

// Actor identifies who issues a command. Authentication happens upstream;
// the engine only checks that the actor is a party to the reservation.
type Actor struct {
	ID   string    `json:"id" validate:"required"`
	Role ActorRole `json:"role" validate:"required,oneof=client professional"`
}

func (a Actor) IsProfessional() bool { return a.Role == RoleProfessional }

func (a Actor) IsClient() bool { return a.Role == RoleClient }
