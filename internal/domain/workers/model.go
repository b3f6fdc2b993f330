package workers

import "time"

type Role string

const (
	RoleOperator   Role = "operator"
	RoleDriver     Role = "driver"
	RoleSupervisor Role = "supervisor"
)

// Worker is a plant employee who can be credited with production or sign a dispatch.
type Worker struct {
	ID        int64     `json:"id"`
	DNI       string    `json:"dni"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (w *Worker) FullName() string {
	if w.LastName == "" {
		return w.FirstName
	}
	return w.FirstName + " " + w.LastName
}
