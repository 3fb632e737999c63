package book

type CreateBookReq struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	ISBN        string `json:"isbn" validate:"required"`
	Publisher   string `json:"publisher"`
	Category    string `json:"category" validate:"required"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type AddCopiesReq struct {
	Count int `json:"count" validate:"required,gt=0"`
}

type UpdateCategoryReq struct {
	Category string `json:"category" validate:"required"`
}
