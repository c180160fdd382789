package controllers

import (
	"mime/multipart"
	"net/http"

	"bookshelf-restful/auth"
	"bookshelf-restful/models"
	"bookshelf-restful/pagination"
	"bookshelf-restful/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// PermissionBooks gates the book routes.
const PermissionBooks = "custom_book"

// maxUploadBytes bounds the in-memory part of multipart parsing.
const maxUploadBytes = 32 << 20

// allowedImageTypes are the upload content types accepted for book
// pictures.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// BookResponse is the wire shape of a book. Picture is a full
// retrieval URL built per request, never a stored filename.
type BookResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Description string  `json:"description"`
	Picture     *string `json:"picture"`
}

// BookController exposes the book routes.
type BookController struct {
	bookService   services.BookService
	authenticator *auth.Authenticator
	staticPrefix  string
	logger        *zap.Logger
}

// NewBookController creates a BookController. staticPrefix is the URL
// path under which stored images are served (e.g. "/uploads/").
func NewBookController(bookService services.BookService, authenticator *auth.Authenticator, staticPrefix string, logger *zap.Logger) *BookController {
	return &BookController{
		bookService:   bookService,
		authenticator: authenticator,
		staticPrefix:  staticPrefix,
		logger:        logger,
	}
}

// RegisterRoutes sets up the /books WebService. Every route requires
// authentication and the book permission.
func (ctl *BookController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/books").Produces(restful.MIME_JSON)
	ws.Filter(ctl.authenticator.Filter())
	ws.Filter(auth.RequirePermission(PermissionBooks))

	ws.Route(ws.POST("").Consumes("multipart/form-data").To(ctl.create).
		Doc("Create a book with an image upload").
		Param(ws.FormParameter("title", "Book title").DataType("string").Required(true)).
		Param(ws.FormParameter("author", "Book author").DataType("string").Required(true)).
		Param(ws.FormParameter("description", "Book description").DataType("string")).
		Param(ws.FormParameter("picture", "Image file (jpeg, png or webp)").DataType("file").Required(true)).
		Metadata(restfulspec.KeyOpenAPITags, []string{"books"}).
		Returns(http.StatusCreated, "Book created", ItemResponse{}).
		Returns(http.StatusBadRequest, "Missing or unsupported image", ErrorResponse{}).
		Returns(http.StatusUnprocessableEntity, "Validation failed", ValidationErrorResponse{}).
		Returns(http.StatusInternalServerError, "Storage failure", ErrorResponse{}))

	ws.Route(ws.GET("").To(ctl.list).
		Doc("List books with pagination").
		Param(ws.QueryParameter("search", "Filter by title or author substring").DataType("string")).
		Param(ws.QueryParameter("page", "Page number").DataType("integer").DefaultValue("1")).
		Param(ws.QueryParameter("per_page", "Items per page, at most 100").DataType("integer").DefaultValue("10")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"books"}).
		Writes(ListResponse{}).
		Returns(http.StatusOK, "Books listed", ListResponse{}))

	ws.Route(ws.GET("/{book-id}").To(ctl.show).
		Doc("Get book by id").
		Param(ws.PathParameter("book-id", "Identifier of the book").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"books"}).
		Writes(ItemResponse{}).
		Returns(http.StatusOK, "Book found", ItemResponse{}).
		Returns(http.StatusNotFound, "Book not found", ErrorResponse{}))

	ws.Route(ws.PUT("/{book-id}").Consumes("multipart/form-data").To(ctl.update).
		Doc("Update a book; supplying a picture replaces the stored image").
		Param(ws.PathParameter("book-id", "Identifier of the book").DataType("integer")).
		Param(ws.FormParameter("title", "Book title").DataType("string").Required(true)).
		Param(ws.FormParameter("author", "Book author").DataType("string").Required(true)).
		Param(ws.FormParameter("description", "Book description").DataType("string")).
		Param(ws.FormParameter("picture", "Replacement image file (jpeg, png or webp)").DataType("file")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"books"}).
		Returns(http.StatusOK, "Book updated", MessageResponse{}).
		Returns(http.StatusNotFound, "Book not found", ErrorResponse{}))

	ws.Route(ws.DELETE("/{book-id}").To(ctl.delete).
		Doc("Delete book by id").
		Param(ws.PathParameter("book-id", "Identifier of the book").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"books"}).
		Returns(http.StatusOK, "Book deleted", MessageResponse{}).
		Returns(http.StatusNotFound, "Book not found", ErrorResponse{}))
}

func (ctl *BookController) create(req *restful.Request, resp *restful.Response) {
	input, picture, ok := ctl.readBookForm(req, resp, true)
	if !ok {
		return
	}
	defer picture.Close()

	book, err := ctl.bookService.CreateBook(input, picture)
	if err != nil {
		writeError(resp, ctl.logger, err)
		return
	}
	writeJSON(resp, http.StatusCreated, ItemResponse{Data: ctl.mapBookResponse(req, book)})
}

func (ctl *BookController) list(req *restful.Request, resp *restful.Response) {
	params := pagination.FromRequest(req)
	books, meta, err := ctl.bookService.ListBooks(params)
	if err != nil {
		writeError(resp, ctl.logger, err)
		return
	}
	data := make([]BookResponse, len(books))
	for i := range books {
		data[i] = ctl.mapBookResponse(req, &books[i])
	}
	writeJSON(resp, http.StatusOK, ListResponse{Data: data, Meta: meta})
}

func (ctl *BookController) show(req *restful.Request, resp *restful.Response) {
	id, ok := pathID(req, resp, "book-id")
	if !ok {
		return
	}
	book, err := ctl.bookService.GetBook(id)
	if err != nil {
		writeError(resp, ctl.logger, err)
		return
	}
	writeJSON(resp, http.StatusOK, ItemResponse{Data: ctl.mapBookResponse(req, book)})
}

func (ctl *BookController) update(req *restful.Request, resp *restful.Response) {
	id, ok := pathID(req, resp, "book-id")
	if !ok {
		return
	}
	input, picture, ok := ctl.readBookForm(req, resp, false)
	if !ok {
		return
	}

	var err error
	if picture != nil {
		defer picture.Close()
		_, err = ctl.bookService.UpdateBook(id, input, picture)
	} else {
		_, err = ctl.bookService.UpdateBook(id, input, nil)
	}
	if err != nil {
		writeError(resp, ctl.logger, err)
		return
	}
	writeJSON(resp, http.StatusOK, MessageResponse{StatusCode: http.StatusOK, Message: "Book updated successfully"})
}

func (ctl *BookController) delete(req *restful.Request, resp *restful.Response) {
	id, ok := pathID(req, resp, "book-id")
	if !ok {
		return
	}
	if err := ctl.bookService.DeleteBook(id); err != nil {
		writeError(resp, ctl.logger, err)
		return
	}
	writeJSON(resp, http.StatusOK, MessageResponse{StatusCode: http.StatusOK, Message: "Book deleted successfully"})
}

// readBookForm parses the multipart form into scalar input and the
// optional picture file. When pictureRequired is set a missing or
// unsupported upload answers 400 and returns ok=false.
func (ctl *BookController) readBookForm(req *restful.Request, resp *restful.Response, pictureRequired bool) (*services.BookInput, multipart.File, bool) {
	if err := req.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(resp, http.StatusBadRequest, ErrorResponse{Message: "Invalid multipart form"})
		return nil, nil, false
	}

	input := &services.BookInput{
		Title:       req.Request.FormValue("title"),
		Author:      req.Request.FormValue("author"),
		Description: req.Request.FormValue("description"),
	}

	file, header, err := req.Request.FormFile("picture")
	if err != nil {
		if pictureRequired {
			writeJSON(resp, http.StatusBadRequest, ErrorResponse{Message: "Picture file is required"})
			return nil, nil, false
		}
		return input, nil, true
	}

	if !allowedImageTypes[header.Header.Get("Content-Type")] {
		file.Close()
		writeJSON(resp, http.StatusBadRequest, ErrorResponse{Message: "Only jpeg, png and webp images are allowed"})
		return nil, nil, false
	}
	return input, file, true
}

// mapBookResponse rewrites the stored filename into a retrieval URL
// rooted at the caller's request origin.
func (ctl *BookController) mapBookResponse(req *restful.Request, book *models.Book) BookResponse {
	out := BookResponse{
		ID:          book.ID,
		Title:       book.Title,
		Author:      book.Author,
		Description: book.Description,
	}
	if book.Picture != "" {
		url := requestOrigin(req) + ctl.staticPrefix + book.Picture
		out.Picture = &url
	}
	return out
}

func requestOrigin(req *restful.Request) string {
	scheme := "http"
	if req.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + req.Request.Host
}
