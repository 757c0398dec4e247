package handlers

import (
	"encoding/json"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"shop-backend/internal/blob"
	"shop-backend/internal/models"
	"shop-backend/internal/repository"
)

const maxProductImages = 10

type ProductHandler struct {
	repo  repository.ProductRepository
	blobs blob.Store
}

func NewProductHandler(repo repository.ProductRepository, blobs blob.Store) *ProductHandler {
	return &ProductHandler{repo: repo, blobs: blobs}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter models.ProductFilter

	if r.URL.Query().Get("sort") == "newest" {
		filter.SortNewest = true
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			writeMessage(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}
	if featuredStr := r.URL.Query().Get("is_featured"); featuredStr != "" {
		featured, err := strconv.ParseBool(featuredStr)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid is_featured")
			return
		}
		filter.Featured = &featured
	}

	products, err := h.repo.List(r.Context(), filter)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Error fetching products")
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "product")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// productForm is the multipart payload shared by create and update. The
// variants and imagesToDelete fields arrive as JSON-encoded form values and
// are parsed into explicit structures before anything is persisted.
type productForm struct {
	Name           string
	Description    string
	Price          decimal.Decimal
	IsFeatured     bool
	Variants       []models.Variant
	ImagesToDelete []int
	PrimaryImageID *int
	Files          []*multipart.FileHeader
}

func parseProductForm(w http.ResponseWriter, r *http.Request) (*productForm, bool) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid multipart form")
		return nil, false
	}

	var form productForm
	form.Name = r.FormValue("name")
	form.Description = r.FormValue("description")

	price, err := decimal.NewFromString(r.FormValue("price"))
	if err != nil || price.IsNegative() {
		writeMessage(w, http.StatusBadRequest, "invalid price")
		return nil, false
	}
	form.Price = price

	if featuredStr := r.FormValue("is_featured"); featuredStr != "" {
		featured, err := strconv.ParseBool(featuredStr)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid is_featured")
			return nil, false
		}
		form.IsFeatured = featured
	}

	if variantsJSON := r.FormValue("variants"); variantsJSON != "" {
		if err := json.Unmarshal([]byte(variantsJSON), &form.Variants); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid variants")
			return nil, false
		}
	}

	if deleteJSON := r.FormValue("imagesToDelete"); deleteJSON != "" {
		if err := json.Unmarshal([]byte(deleteJSON), &form.ImagesToDelete); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid imagesToDelete")
			return nil, false
		}
	}

	if primaryStr := r.FormValue("primaryImageId"); primaryStr != "" {
		primary, err := strconv.Atoi(primaryStr)
		if err != nil || primary <= 0 {
			writeMessage(w, http.StatusBadRequest, "invalid primaryImageId")
			return nil, false
		}
		form.PrimaryImageID = &primary
	}

	if r.MultipartForm != nil {
		form.Files = r.MultipartForm.File["images"]
	}
	if len(form.Files) > maxProductImages {
		writeMessage(w, http.StatusBadRequest, "too many images")
		return nil, false
	}

	return &form, true
}

// saveUploads writes every uploaded file to the blob store and returns the
// public URLs. On a partial failure the already-written blobs are removed.
func (h *ProductHandler) saveUploads(files []*multipart.FileHeader) ([]string, error) {
	var urls []string
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			h.removeBlobs(urls)
			return nil, err
		}
		url, err := h.blobs.Save(header.Filename, file)
		file.Close()
		if err != nil {
			h.removeBlobs(urls)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// removeBlobs deletes blobs best-effort: the database rows are the
// authoritative state, a leaked file is only logged.
func (h *ProductHandler) removeBlobs(urls []string) {
	for _, url := range urls {
		if err := h.blobs.Remove(url); err != nil {
			log.Printf("failed to remove blob %s: %v", url, err)
		}
	}
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := parseProductForm(w, r)
	if !ok {
		return
	}

	product := models.Product{
		Name:        form.Name,
		Description: form.Description,
		Price:       form.Price,
		IsFeatured:  form.IsFeatured,
	}
	if identity, ok := identityFrom(r.Context()); ok {
		product.CreatedBy = &identity.UserID
	}

	urls, err := h.saveUploads(form.Files)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Error storing images")
		return
	}

	if err := h.repo.Create(r.Context(), &product, form.Variants, urls); err != nil {
		h.removeBlobs(urls)
		writeRepoError(w, err, "product")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Product added",
		"product_id": product.ProductID,
	})
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	form, ok := parseProductForm(w, r)
	if !ok {
		return
	}

	urls, err := h.saveUploads(form.Files)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Error storing images")
		return
	}

	desired := models.ProductUpdate{
		Name:           form.Name,
		Description:    form.Description,
		Price:          form.Price,
		IsFeatured:     form.IsFeatured,
		Variants:       form.Variants,
		NewImageURLs:   urls,
		ImagesToDelete: form.ImagesToDelete,
		PrimaryImageID: form.PrimaryImageID,
	}

	removed, err := h.repo.Reconcile(r.Context(), id, desired)
	if err != nil {
		h.removeBlobs(urls)
		writeRepoError(w, err, "product")
		return
	}

	h.removeBlobs(removed)

	writeMessage(w, http.StatusOK, "Product updated")
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	urls, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "product")
		return
	}

	h.removeBlobs(urls)

	writeMessage(w, http.StatusOK, "Product deleted")
}

func (h *ProductHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	imageID, ok := pathID(w, r, "imageID")
	if !ok {
		return
	}

	url, err := h.repo.DeleteImage(r.Context(), productID, imageID)
	if err != nil {
		writeRepoError(w, err, "image")
		return
	}

	h.removeBlobs([]string{url})

	writeMessage(w, http.StatusOK, "Image deleted")
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, "invalid "+param)
		return 0, false
	}
	return id, true
}
