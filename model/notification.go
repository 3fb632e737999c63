// model/notification.go
package model

import "time"

type NotificationType string

const (
	NotifyCameraError     NotificationType = "CAMERA_ERROR"
	NotifyUnknownLabel    NotificationType = "QR_SCAN_ERROR"
	NotifyArrangement     NotificationType = "BOOK_ARRANGEMENT"
	NotifyLostBook        NotificationType = "LOST_BOOK"
	NotifyOverdue         NotificationType = "OVERDUE"
	NotifyReturnDeadline  NotificationType = "RETURN_DEADLINE"
	NotifyBorrowed        NotificationType = "BOOK_BORROWED"
	NotifyQnaCreated      NotificationType = "QNA_CREATED"
)

type NotificationStatus string

const (
	NotificationUnread  NotificationStatus = "UNREAD"
	NotificationRead    NotificationStatus = "READ"
	NotificationDeleted NotificationStatus = "DELETED"
)

// Notification is an in-app alert row. RefID optionally correlates the
// alert to the row that caused it (history id, qna id, book item id).
type Notification struct {
	ID        int64              `db:"id" json:"id"`
	UserID    int64              `db:"user_id" json:"user_id"`
	Type      NotificationType   `db:"type" json:"type"`
	Content   string             `db:"content" json:"content"`
	RefID     *int64             `db:"ref_id" json:"ref_id,omitempty"`
	Status    NotificationStatus `db:"status" json:"status"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
}
