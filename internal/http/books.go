package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarium/internal/auth"
	"github.com/mrlokans/librarium/internal/entities"
)

// BooksController serves the public catalog and the admin CRUD surface.
type BooksController struct {
	store    CatalogStore
	enqueuer TaskEnqueuer
}

// NewBooksController creates a books controller. The enqueuer may be nil
// when background indexing is disabled.
func NewBooksController(store CatalogStore, enqueuer TaskEnqueuer) *BooksController {
	return &BooksController{store: store, enqueuer: enqueuer}
}

func (ctrl *BooksController) GetAllBooks(c *gin.Context) {
	books, err := ctrl.store.GetAllBooks()
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

func (ctrl *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := ctrl.store.GetBookByID(id)
	if err != nil {
		respondDomainError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

type bookRequest struct {
	Title           string `json:"title" binding:"required"`
	Author          string `json:"author" binding:"required"`
	ISBN            string `json:"isbn"`
	Description     string `json:"description"`
	ImageURL        string `json:"image_url"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
}

func (ctrl *BooksController) CreateBook(c *gin.Context) {
	if !auth.IsAdmin(c) {
		respondForbidden(c, "admin role required")
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and author are required")
		return
	}

	book := &entities.Book{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.AvailableCopies,
	}
	if book.TotalCopies == 0 {
		book.TotalCopies = 1
	}

	if err := ctrl.store.CreateBook(book); err != nil {
		respondDomainError(c, err, "create book")
		return
	}

	ctrl.enqueueIndex(book.ID)
	respondCreated(c, book)
}

func (ctrl *BooksController) UpdateBook(c *gin.Context) {
	if !auth.IsAdmin(c) {
		respondForbidden(c, "admin role required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and author are required")
		return
	}

	book := &entities.Book{
		ID:              id,
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.AvailableCopies,
	}

	if err := ctrl.store.UpdateBook(book); err != nil {
		respondDomainError(c, err, "update book")
		return
	}

	ctrl.enqueueIndex(id)
	c.JSON(http.StatusOK, book)
}

func (ctrl *BooksController) DeleteBook(c *gin.Context) {
	if !auth.IsAdmin(c) {
		respondForbidden(c, "admin role required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.store.DeleteBook(id); err != nil {
		respondDomainError(c, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}

func (ctrl *BooksController) enqueueIndex(bookID uint) {
	if ctrl.enqueuer != nil {
		ctrl.enqueuer.EnqueueIndexBook(bookID)
	}
}
