package sales

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/crudio/crudio/internal/platform/httpx"
	"github.com/crudio/crudio/internal/sales/form"
	"github.com/crudio/crudio/internal/sales/lineitem"
	"github.com/crudio/crudio/internal/sales/validation"
	"github.com/crudio/crudio/internal/shared"
	"github.com/crudio/crudio/internal/view"
)

// navCustomerKey holds the customer id carried from the list to the update form.
const navCustomerKey = "nav_customer_id"

const (
	flashSaved        = "Customer saved successfully"
	flashDeleteFailed = "Could not delete the customer. Please try again."
)

// Handler manages the customer list and form endpoints.
type Handler struct {
	logger     *slog.Logger
	templates  *view.Engine
	csrf       *shared.CSRFManager
	sessions   *shared.SessionManager
	workspaces *Registry
	gateway    form.Gateway
	engine     *validation.Engine
}

// NewHandler builds Handler instance.
func NewHandler(
	logger *slog.Logger,
	templates *view.Engine,
	csrf *shared.CSRFManager,
	sessions *shared.SessionManager,
	workspaces *Registry,
	gateway form.Gateway,
	engine *validation.Engine,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		engine = validation.New()
	}
	return &Handler{
		logger:     logger,
		templates:  templates,
		csrf:       csrf,
		sessions:   sessions,
		workspaces: workspaces,
		gateway:    gateway,
		engine:     engine,
	}
}

// MountRoutes registers customer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listCustomers)
	r.Post("/search", h.search)
	r.Post("/refresh", h.refresh)
	r.Post("/banner/dismiss", h.dismissBanner)
	r.Post("/customers/{id}/delete", h.requestDelete)
	r.Post("/customers/delete/confirm", h.confirmDelete)
	r.Post("/customers/delete/cancel", h.cancelDelete)
	r.Post("/customers/{id}/edit", h.editCustomer)

	r.Get("/new-customer", h.showCreateForm)
	r.Post("/new-customer", h.submitCreateForm)
	r.Get("/update-customer", h.showUpdateForm)
	r.Post("/update-customer", h.submitUpdateForm)
}

// NotFound renders the error page for unknown paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/error.html", "Page not found", nil, http.StatusNotFound)
}

// ============================================================================
// LIST HANDLERS
// ============================================================================

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	sess := shared.SessionFromContext(r.Context())
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	if flash != nil && flash.Kind == shared.FlashSuccess {
		ws.List.ShowBanner()
		flash = nil
	}

	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httpx.RespondError(w, httpx.ErrBadRequest)
			return
		}
		page = n
	}
	ws.List.Load(r.Context(), page)

	h.renderWithFlash(w, r, "pages/customers_list.html", "Customers", flash, map[string]any{
		"List": ws.List.View(),
	}, http.StatusOK)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	h.workspace(r).List.SetSearchText(r.Context(), strings.TrimSpace(r.PostFormValue("searchText")))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	h.workspace(r).List.Refresh(r.Context())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) dismissBanner(w http.ResponseWriter, r *http.Request) {
	h.workspace(r).List.DismissBanner()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) requestDelete(w http.ResponseWriter, r *http.Request) {
	id, err := customerIDParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.workspace(r).List.RequestDelete(id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.workspace(r).List.ConfirmDelete(r.Context()); err != nil {
		h.redirectWithFlash(w, r, "/", shared.FlashError, flashDeleteFailed)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) cancelDelete(w http.ResponseWriter, r *http.Request) {
	h.workspace(r).List.CancelDelete()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) editCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := customerIDParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.Set(navCustomerKey, strconv.FormatInt(id, 10))
	}
	http.Redirect(w, r, "/update-customer", http.StatusSeeOther)
}

// ============================================================================
// FORM HANDLERS
// ============================================================================

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	ctrl := form.NewCreate(h.formConfig())
	h.renderForm(w, r, ctrl, http.StatusOK)
}

func (h *Handler) submitCreateForm(w http.ResponseWriter, r *http.Request) {
	h.handleFormPost(w, r, form.NewCreate(h.formConfig()))
}

func (h *Handler) showUpdateForm(w http.ResponseWriter, r *http.Request) {
	id, ok := navigationCustomerID(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	ctrl := form.NewUpdate(h.formConfig(), id)
	// A failed hydrate is logged by the controller; the form keeps its defaults.
	_ = ctrl.Hydrate(r.Context())
	h.renderForm(w, r, ctrl, http.StatusOK)
}

func (h *Handler) submitUpdateForm(w http.ResponseWriter, r *http.Request) {
	id, ok := navigationCustomerID(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.handleFormPost(w, r, form.NewUpdate(h.formConfig(), id))
}

func (h *Handler) handleFormPost(w http.ResponseWriter, r *http.Request, ctrl *form.Controller) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := decodeForm(r, ctrl); err != nil {
		h.logger.Warn("decode customer form", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	action, arg, _ := strings.Cut(r.PostFormValue("action"), ":")
	switch action {
	case "add":
		_ = ctrl.AddSale()
	case "remove":
		if err := ctrl.RemoveSale(rowIndex(ctrl.Rows(), arg)); err != nil {
			h.logger.Debug("remove sale ignored", slog.Any("error", err))
		}
	case "cancel":
		h.finish(w, r, ctrl.Cancel())
		return
	case "submit", "":
		nav, err := ctrl.Submit(r.Context())
		switch {
		case err == nil:
			h.finish(w, r, nav)
			return
		case errors.Is(err, form.ErrInvalid):
			h.renderForm(w, r, ctrl, http.StatusBadRequest)
			return
		default:
			h.renderForm(w, r, ctrl, http.StatusBadGateway)
			return
		}
	default:
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	h.renderForm(w, r, ctrl, http.StatusOK)
}

func (h *Handler) finish(w http.ResponseWriter, r *http.Request, nav form.Navigation) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.Delete(navCustomerKey)
	}
	if nav.Success {
		h.redirectWithFlash(w, r, nav.Path, shared.FlashSuccess, flashSaved)
		return
	}
	http.Redirect(w, r, nav.Path, http.StatusSeeOther)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, ctrl *form.Controller, status int) {
	products := h.workspace(r).List.EnsureProducts(r.Context())
	title, heading, action := "New customer", "New customer", "/new-customer"
	if ctrl.Customer().Persisted() {
		title, heading, action = "Update customer", "Update customer", "/update-customer"
	}
	h.render(w, r, "pages/customer_form.html", title, map[string]any{
		"Form":    ctrl.View(products),
		"Heading": heading,
		"Action":  action,
	}, status)
}

// ============================================================================
// HELPER METHODS
// ============================================================================

func (h *Handler) formConfig() form.Config {
	return form.Config{Gateway: h.gateway, Engine: h.engine, Logger: h.logger}
}

func (h *Handler) workspace(r *http.Request) *Workspace {
	id := ""
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		id = sess.ID
	}
	return h.workspaces.Get(id)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, tmpl, title string, data map[string]any, status int) {
	var flash *shared.FlashMessage
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		flash = sess.PopFlash()
	}
	h.renderWithFlash(w, r, tmpl, title, flash, data, status)
}

func (h *Handler) renderWithFlash(w http.ResponseWriter, r *http.Request, tmpl, title string, flash *shared.FlashMessage, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)

	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}

	if err := h.templates.Render(w, status, tmpl, viewData); err != nil {
		h.logger.Error("template render failed", "error", err, "template", tmpl)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, url, flashType, message string) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: flashType, Message: message})
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func customerIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, httpx.ErrBadRequest
	}
	return id, nil
}

func navigationCustomerID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(sess.Get(navCustomerKey), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// decodeForm loads the posted record and the errors shown on the previous
// render into ctrl.
func decodeForm(r *http.Request, ctrl *form.Controller) error {
	for _, field := range []string{form.FieldFirstName, form.FieldLastName, form.FieldEmail, form.FieldAddress, form.FieldPhoneNumber} {
		if err := ctrl.HandleChange(field, r.PostFormValue(field)); err != nil {
			return err
		}
	}

	keys := r.PostForm["saleKey"]
	saleIDs := r.PostForm["saleId"]
	productIDs := r.PostForm["productId"]
	quantities := r.PostForm["quantity"]
	unitPrices := r.PostForm["unitPrice"]
	inputs := make([]lineitem.Input, 0, len(keys))
	for i := range keys {
		inputs = append(inputs, lineitem.Input{
			Key:       keys[i],
			SaleID:    at(saleIDs, i),
			ProductID: at(productIDs, i),
			Quantity:  at(quantities, i),
			UnitPrice: at(unitPrices, i),
		})
	}
	if err := ctrl.SetRows(lineitem.Decode(inputs)); err != nil {
		return err
	}

	if raw := r.PostFormValue("errors"); raw != "" {
		var errs validation.ErrorMap
		if err := json.Unmarshal([]byte(raw), &errs); err != nil {
			return err
		}
		ctrl.SetErrors(errs)
	}
	return nil
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

// rowIndex resolves a remove target given as a row key or a row index.
func rowIndex(rows lineitem.List, arg string) int {
	if i := rows.IndexOf(arg); i >= 0 {
		return i
	}
	i, err := strconv.Atoi(arg)
	if err != nil {
		return -1
	}
	return i
}
