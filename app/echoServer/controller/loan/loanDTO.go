package loan

type BorrowReq struct {
	BookItemID int64 `json:"book_item_id" validate:"required,gt=0"`
}
