package model

type LogType string

const (
	LogTypeEmail  LogType = "email"
	LogTypeSystem LogType = "system"
)

func (t LogType) Valid() bool {
	return t == LogTypeEmail || t == LogTypeSystem
}

type DispatchStatus string

const (
	StatusTransmitting DispatchStatus = "Transmitting"
	StatusDelivered    DispatchStatus = "Delivered"
)

func (s DispatchStatus) Valid() bool {
	return s == StatusTransmitting || s == StatusDelivered
}

// Terminal reports whether no further status follows s.
func (s DispatchStatus) Terminal() bool {
	return s == StatusDelivered
}

type NotificationLog struct {
	ID        string
	Type      LogType
	Subject   string
	Message   string
	Timestamp string
	Status    DispatchStatus
}

// NotificationLogs is ordered most recent first.
type NotificationLogs []NotificationLog

// Prepend returns a new list with entry in front. The receiver is not modified.
func (l NotificationLogs) Prepend(entry NotificationLog) NotificationLogs {
	out := make(NotificationLogs, 0, len(l)+1)
	out = append(out, entry)
	return append(out, l...)
}

// Latest returns the most recent entry.
func (l NotificationLogs) Latest() (NotificationLog, bool) {
	if len(l) == 0 {
		return NotificationLog{}, false
	}
	return l[0], true
}
