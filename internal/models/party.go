package models

import (
	"github.com/google/uuid"

	"github.com/jobup-app/backend/internal/apperr"
)

// Party identifies one side of a negotiation together with its role.
type Party struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role Role      `json:"role"`
}

// DeriveClientWorker resolves the canonical client/worker pair from a
// sender/receiver pairing. Exactly one side must be the client and one
// the worker; any other combination is rejected so nothing downstream
// ever sees an ambiguous pairing.
func DeriveClientWorker(sender, receiver Party) (client, worker Party, err error) {
	switch {
	case sender.Role == RoleClient && receiver.Role == RoleWorker:
		return sender, receiver, nil
	case sender.Role == RoleWorker && receiver.Role == RoleClient:
		return receiver, sender, nil
	default:
		return Party{}, Party{}, apperr.Validation(
			"invalid role pairing: sender is %q, receiver is %q", sender.Role, receiver.Role)
	}
}
