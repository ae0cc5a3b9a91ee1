package models

import "time"

// AnonymousEmail is stored when a chat visitor did not identify themselves.
const AnonymousEmail = "anonymous"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ValidRole reports whether r is one of the three chat roles.
func ValidRole(r string) bool {
	return r == RoleSystem || r == RoleUser || r == RoleAssistant
}

type DeviceInfo struct {
	UserAgent  string `bson:"userAgent" json:"userAgent"`
	Platform   string `bson:"platform" json:"platform"`
	ScreenSize string `bson:"screenSize" json:"screenSize"`
}

// ChatSession timestamps are epoch milliseconds.
type ChatSession struct {
	ID               string     `bson:"_id" json:"id"`
	StartTime        int64      `bson:"startTime" json:"startTime"`
	EndTime          *int64     `bson:"endTime,omitempty" json:"endTime,omitempty"`
	UserEmail        string     `bson:"userEmail" json:"userEmail"`
	DeviceInfo       DeviceInfo `bson:"deviceInfo" json:"deviceInfo"`
	LastMessage      string     `bson:"lastMessage" json:"lastMessage"`
	LastActivityTime int64      `bson:"lastActivityTime" json:"lastActivityTime"`
}

type Feedback struct {
	Helpful   bool   `bson:"helpful" json:"helpful"`
	Timestamp int64  `bson:"timestamp" json:"timestamp"`
	MessageID string `bson:"messageId" json:"messageId"`
}

type Message struct {
	ID        string    `bson:"_id" json:"id"`
	Role      string    `bson:"role" json:"role"`
	Content   string    `bson:"content" json:"content"`
	Timestamp int64     `bson:"timestamp" json:"timestamp"`
	SessionID string    `bson:"sessionId" json:"sessionId"`
	Feedback  *Feedback `bson:"feedback,omitempty" json:"feedback,omitempty"`
}

// EpochMillis converts t to the millisecond timestamps used by chat records.
func EpochMillis(t time.Time) int64 { return t.UnixMilli() }
