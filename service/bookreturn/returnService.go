package bookreturnsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/kunzatt/bookiki-sub000/model"
	historyrepo "github.com/kunzatt/bookiki-sub000/repository/history"
)

type ErrCode string

const (
	ErrCameraError  ErrCode = "CAMERA_ERROR"
	ErrInvalidState ErrCode = "INVALID_BOOK_STATUS"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// dto

// ScanRequest is one pass of the shelf scanner. Shelves maps shelf id to
// the book item ids read from QR codes on that shelf; the reserved key 0
// carries the device status code as its first element. OcrResults are the
// raw text fragments the camera could not resolve to a QR code.
type ScanRequest struct {
	ScannerID  string            `json:"scanner_id" validate:"required"`
	Shelves    map[int64][]int64 `json:"shelves" validate:"required"`
	OcrResults []string          `json:"ocr_results"`
}

type ReturnedItem struct {
	BookItemID int64     `json:"book_item_id"`
	Title      string    `json:"title"`
	ReturnedAt time.Time `json:"returned_at"`
}

type ItemFailure struct {
	BookItemID int64  `json:"book_item_id"`
	Reason     string `json:"reason"`
}

type ScanResult struct {
	Returned      []ReturnedItem `json:"returned"`
	Failures      []ItemFailure  `json:"failures"`
	UnknownLabels []string       `json:"unknown_labels"`
}

type Repo interface {
	WithinTx(ctx context.Context, fn func(historyrepo.LoanTx) error) error
}

type BookRepo interface {
	ItemsByIDs(ctx context.Context, ids []int64) ([]model.ScannedItem, error)
	AvailableItemIDs(ctx context.Context) ([]int64, error)
	ShelfCategory(ctx context.Context, shelfID int64) (string, error)
}

// FragmentStore keeps the previous scan's OCR fragments per scanner so
// concurrent scanners never share diff state and restarts keep it.
type FragmentStore interface {
	Previous(ctx context.Context, scannerID string) ([]string, error)
	Save(ctx context.Context, scannerID string, fragments []string) error
}

type Notifier interface {
	NotifyAdmins(ctx context.Context, typ model.NotificationType, content string, refID *int64)
}

type Service interface {
	// ProcessScan matches scanned items back to open loans and closes them.
	ProcessScan(ctx context.Context, req ScanRequest) (*ScanResult, error)
}

// ----- Service implementation -----

type service struct {
	r     Repo
	br    BookRepo
	store FragmentStore
	n     Notifier
	log   *slog.Logger
}

func New(r Repo, br BookRepo, store FragmentStore, n Notifier, log *slog.Logger) Service {
	return &service{r: r, br: br, store: store, n: n, log: log}
}

func (s *service) ProcessScan(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	// Shelf key 0 is the device status row.
	if status, ok := req.Shelves[0]; ok && len(status) > 0 && status[0] != 0 {
		s.n.NotifyAdmins(ctx, model.NotifyCameraError, fmt.Sprintf("scanner %s reported status %d", req.ScannerID, status[0]), nil)
		return nil, makeErr(ErrCameraError)
	}

	res := &ScanResult{}
	var mismatched []string
	var scannedIDs []int64

	for shelfID, itemIDs := range req.Shelves {
		if shelfID == 0 || len(itemIDs) == 0 {
			continue
		}
		scannedIDs = append(scannedIDs, itemIDs...)

		shelfCategory, err := s.br.ShelfCategory(ctx, shelfID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				s.log.Warn("scan referenced unknown shelf", "shelf_id", shelfID)
				continue
			}
			return nil, err
		}

		items, err := s.br.ItemsByIDs(ctx, itemIDs)
		if err != nil {
			return nil, err
		}

		for _, item := range items {
			if item.Category != shelfCategory {
				mismatched = append(mismatched, item.Title)
			}
			if item.Status != model.ItemBorrowed || item.Deleted {
				continue
			}
			returned, err := s.returnOne(ctx, item)
			if err != nil {
				// Per-item failure: the batch keeps going, the item's own
				// transaction has rolled back.
				s.log.Error("return failed", "book_item_id", item.ID, "err", err)
				if Code(err) == ErrInvalidState {
					s.n.NotifyAdmins(ctx, model.NotifyLostBook,
						fmt.Sprintf("borrowed copy %d (%s) has no open loan record", item.ID, item.Title), &item.ID)
				}
				res.Failures = append(res.Failures, ItemFailure{BookItemID: item.ID, Reason: string(Code(err))})
				continue
			}
			res.Returned = append(res.Returned, *returned)
		}
	}

	if len(mismatched) > 0 {
		s.n.NotifyAdmins(ctx, model.NotifyArrangement, strings.Join(mismatched, ", "), nil)
	}

	s.reportSuspectedLost(ctx, scannedIDs)

	res.UnknownLabels = s.analyzeOcr(ctx, req.ScannerID, req.OcrResults, len(res.Returned) > 0)

	return res, nil
}

// returnOne closes a single loan in its own transaction: flip the copy
// back to AVAILABLE, find its open history, stamp returned_at. A BORROWED
// copy with no open history is data corruption; the transaction rolls
// back and the caller gets a coded invalid-state error.
func (s *service) returnOne(ctx context.Context, item model.ScannedItem) (*ReturnedItem, error) {
	var out ReturnedItem
	err := s.r.WithinTx(ctx, func(tx historyrepo.LoanTx) error {
		freed, err := tx.FreeItem(ctx, item.ID)
		if err != nil {
			return err
		}
		if !freed {
			return makeErr(ErrInvalidState)
		}
		h, err := tx.OpenByItem(ctx, item.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrInvalidState)
			}
			return err
		}
		now := time.Now()
		if err := tx.CloseHistory(ctx, h.ID, now); err != nil {
			return err
		}
		out = ReturnedItem{BookItemID: item.ID, Title: item.Title, ReturnedAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// reportSuspectedLost flags scanned ids that the catalog does not consider
// AVAILABLE after the returns were processed.
func (s *service) reportSuspectedLost(ctx context.Context, scannedIDs []int64) {
	if len(scannedIDs) == 0 {
		return
	}
	available, err := s.br.AvailableItemIDs(ctx)
	if err != nil {
		s.log.Error("lost-book check failed", "err", err)
		return
	}
	availableSet := lo.SliceToMap(available, func(id int64) (int64, struct{}) { return id, struct{}{} })
	lost := lo.Filter(lo.Uniq(scannedIDs), func(id int64, _ int) bool {
		_, ok := availableSet[id]
		return !ok
	})
	for _, id := range lost {
		id := id
		s.n.NotifyAdmins(ctx, model.NotifyLostBook, fmt.Sprintf("copy %d scanned but not available", id), &id)
	}
}

// analyzeOcr diffs the current fragments against the previous scan for
// this scanner. Fragments that match nothing from last time are labels the
// scanner has never resolved; if nothing was returned this pass they are
// surfaced to admins.
func (s *service) analyzeOcr(ctx context.Context, scannerID string, current []string, anyReturned bool) []string {
	previous, err := s.store.Previous(ctx, scannerID)
	if err != nil {
		s.log.Error("ocr state read failed", "scanner_id", scannerID, "err", err)
		previous = nil
	}

	unknown := newFragments(previous, current)

	if len(current) > 0 {
		if err := s.store.Save(ctx, scannerID, current); err != nil {
			s.log.Error("ocr state save failed", "scanner_id", scannerID, "err", err)
		}
	}

	if !anyReturned {
		for _, frag := range unknown {
			s.n.NotifyAdmins(ctx, model.NotifyUnknownLabel, frag, nil)
		}
	}
	return unknown
}
