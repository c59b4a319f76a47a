package model

import "time"

type (
	UserID int64

	User struct {
		ID              UserID
		Name            string
		Email           string
		CycleLength     int
		LastPeriodStart time.Time
	}

	ChatMessage struct {
		ID        string
		Role      Role
		Text      string
		Timestamp time.Time
	}

	// Session is everything one logged-in user owns. It lives until logout.
	Session struct {
		User       User
		Logs       NotificationLogs
		Permission AlertPermission
		// NotifiedFor is the predicted date a due-soon reminder was already
		// dispatched for. Zero when nothing was sent.
		NotifiedFor time.Time
	}
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel
}

type AlertPermission string

const (
	PermissionDefault AlertPermission = "default"
	PermissionGranted AlertPermission = "granted"
	PermissionDenied  AlertPermission = "denied"
)

func (p AlertPermission) Valid() bool {
	switch p {
	case PermissionDefault, PermissionGranted, PermissionDenied:
		return true
	}
	return false
}

// FirstName returns the first word of the user's name.
func (u User) FirstName() string {
	for i, r := range u.Name {
		if r == ' ' {
			return u.Name[:i]
		}
	}
	return u.Name
}
