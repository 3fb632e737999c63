package notificationsvc

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/kunzatt/bookiki-sub000/model"
)

// Camera-error alerts repeat while the hardware is down; one every three
// hours is enough for the admins.
const cameraErrorDedup = 3 * time.Hour

type ErrCode string

const (
	ErrNotFound ErrCode = "NOTIFICATION_NOT_FOUND"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo interface {
	Insert(ctx context.Context, n *model.Notification) error
	InsertBatch(ctx context.Context, ns []model.Notification) error
	ListByUser(ctx context.Context, userID int64, page, size int) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, id int64) error
	SoftDelete(ctx context.Context, userID, id int64) error
	LatestCreatedAtByType(ctx context.Context, typ model.NotificationType) (*time.Time, error)
}

type UserRepo interface {
	IDsByRole(ctx context.Context, role model.Role) ([]int64, error)
}

// DeadlineSource feeds the scheduled return-deadline job.
type DeadlineSource interface {
	DueTomorrow(ctx context.Context) ([]model.HistoryRecord, error)
}

type Service interface {
	// Outbound dispatch used by the workflows. Best-effort: failures are
	// logged, never returned.
	NotifyAdmins(ctx context.Context, typ model.NotificationType, content string, refID *int64)
	NotifyRole(ctx context.Context, role model.Role, typ model.NotificationType, content string, refID *int64)
	NotifyUser(ctx context.Context, userID int64, typ model.NotificationType, content string, refID *int64)

	// ReturnDeadline is the daily job body: one alert per loan due tomorrow.
	ReturnDeadline(ctx context.Context) error

	// User surface.
	List(ctx context.Context, userID int64, page, size int) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, id int64) error
	Delete(ctx context.Context, userID, id int64) error
}

type service struct {
	r   Repo
	ur  UserRepo
	ds  DeadlineSource
	log *slog.Logger
}

func New(r Repo, ur UserRepo, ds DeadlineSource, log *slog.Logger) Service {
	return &service{r: r, ur: ur, ds: ds, log: log}
}

func (s *service) NotifyAdmins(ctx context.Context, typ model.NotificationType, content string, refID *int64) {
	s.NotifyRole(ctx, model.RoleAdmin, typ, content, refID)
}

func (s *service) NotifyRole(ctx context.Context, role model.Role, typ model.NotificationType, content string, refID *int64) {
	if typ == model.NotifyCameraError && s.recentlySent(ctx, typ) {
		return
	}
	ids, err := s.ur.IDsByRole(ctx, role)
	if err != nil {
		s.log.Error("notification fan-out failed", "type", typ, "role", role, "err", err)
		return
	}
	ns := make([]model.Notification, 0, len(ids))
	for _, id := range ids {
		ns = append(ns, model.Notification{UserID: id, Type: typ, Content: content, RefID: refID})
	}
	if err := s.r.InsertBatch(ctx, ns); err != nil {
		s.log.Error("notification insert failed", "type", typ, "role", role, "err", err)
	}
}

func (s *service) NotifyUser(ctx context.Context, userID int64, typ model.NotificationType, content string, refID *int64) {
	n := &model.Notification{UserID: userID, Type: typ, Content: content, RefID: refID}
	if err := s.r.Insert(ctx, n); err != nil {
		s.log.Error("notification insert failed", "type", typ, "user_id", userID, "err", err)
	}
}

func (s *service) recentlySent(ctx context.Context, typ model.NotificationType) bool {
	last, err := s.r.LatestCreatedAtByType(ctx, typ)
	if err != nil {
		s.log.Error("notification dedup check failed", "type", typ, "err", err)
		return false
	}
	return last != nil && time.Since(*last) <= cameraErrorDedup
}

func (s *service) ReturnDeadline(ctx context.Context) error {
	rows, err := s.ds.DueTomorrow(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		row := row
		s.NotifyUser(ctx, row.UserID, model.NotifyReturnDeadline, row.BookTitle, &row.BookItemID)
	}
	s.log.Info("return-deadline notifications dispatched", "count", len(rows))
	return nil
}

func (s *service) List(ctx context.Context, userID int64, page, size int) ([]model.Notification, error) {
	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	return s.r.ListByUser(ctx, userID, page, size)
}

func (s *service) MarkRead(ctx context.Context, userID, id int64) error {
	if err := s.r.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return codedError{code: ErrNotFound}
		}
		return err
	}
	return nil
}

func (s *service) Delete(ctx context.Context, userID, id int64) error {
	if err := s.r.SoftDelete(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return codedError{code: ErrNotFound}
		}
		return err
	}
	return nil
}
