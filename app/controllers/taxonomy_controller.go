package controllers

import (
	"net/http"

	"quill/app/models"
	"quill/app/services"
)

// TaxonomyController serves categories, authors and tags.
type TaxonomyController struct {
	service *services.TaxonomyService
}

func NewTaxonomyController(service *services.TaxonomyService) *TaxonomyController {
	return &TaxonomyController{service: service}
}

func (tc *TaxonomyController) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := tc.service.ListCategories()
	if err != nil {
		sendFailure(w, "Failed to fetch categories", err)
		return
	}
	sendJSON(w, http.StatusOK, categories)
}

func (tc *TaxonomyController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var category models.Category
	if err := decode(r, &category); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := tc.service.CreateCategory(&category); err != nil {
		sendFailure(w, "Failed to create category", err)
		return
	}
	sendJSON(w, http.StatusCreated, category)
}

func (tc *TaxonomyController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		sendError(w, "Invalid category ID", http.StatusBadRequest)
		return
	}
	if err := tc.service.DeleteCategory(id); err != nil {
		sendFailure(w, "Failed to delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (tc *TaxonomyController) Authors(w http.ResponseWriter, r *http.Request) {
	authors, err := tc.service.ListAuthors()
	if err != nil {
		sendFailure(w, "Failed to fetch authors", err)
		return
	}
	sendJSON(w, http.StatusOK, authors)
}

func (tc *TaxonomyController) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	var author models.Author
	if err := decode(r, &author); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := tc.service.CreateAuthor(&author); err != nil {
		sendFailure(w, "Failed to create author", err)
		return
	}
	sendJSON(w, http.StatusCreated, author)
}

func (tc *TaxonomyController) DeleteAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		sendError(w, "Invalid author ID", http.StatusBadRequest)
		return
	}
	if err := tc.service.DeleteAuthor(id); err != nil {
		sendFailure(w, "Failed to delete author", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (tc *TaxonomyController) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := tc.service.ListTags()
	if err != nil {
		sendFailure(w, "Failed to fetch tags", err)
		return
	}
	sendJSON(w, http.StatusOK, tags)
}

func (tc *TaxonomyController) CreateTag(w http.ResponseWriter, r *http.Request) {
	var tag models.Tag
	if err := decode(r, &tag); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := tc.service.CreateTag(&tag); err != nil {
		sendFailure(w, "Failed to create tag", err)
		return
	}
	sendJSON(w, http.StatusCreated, tag)
}

// DeleteTag removes a tag; posts carrying it lose the tag but survive.
func (tc *TaxonomyController) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		sendError(w, "Invalid tag ID", http.StatusBadRequest)
		return
	}
	if err := tc.service.DeleteTag(id); err != nil {
		sendFailure(w, "Failed to delete tag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
