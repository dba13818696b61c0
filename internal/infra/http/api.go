package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/tallerapp/taller-backend/internal/domain/materials"
	"github.com/tallerapp/taller-backend/internal/domain/products"
	"github.com/tallerapp/taller-backend/internal/domain/sales"
	"github.com/tallerapp/taller-backend/internal/domain/shopping"
	"github.com/tallerapp/taller-backend/internal/domain/tasks"
	"github.com/tallerapp/taller-backend/internal/domain/templates"
	"github.com/tallerapp/taller-backend/internal/domain/users"
)

// API groups the domain services behind the JSON routes. Nil fields leave
// their route group unregistered, which keeps cmd wiring flexible.
type API struct {
	Templates *templates.Service
	Materials *materials.Repo
	Products  *products.Repo
	Sales     *sales.Service
	Tasks     *tasks.Service
	Shopping  *shopping.Service
	Users     *users.Repo
}

func (a API) register(mux *http.ServeMux) {
	if a.Templates != nil {
		mux.HandleFunc("GET /api/templates", a.listTemplates)
		mux.HandleFunc("POST /api/templates", a.createTemplate)
		mux.HandleFunc("GET /api/templates/{id}", a.getTemplate)
		mux.HandleFunc("PUT /api/templates/{id}", a.updateTemplate)
		mux.HandleFunc("DELETE /api/templates/{id}", a.deleteTemplate)
		mux.HandleFunc("POST /api/templates/{id}/duplicate", a.duplicateTemplate)
		mux.HandleFunc("POST /admin/recalculate", a.recalculateTemplates)
	}
	if a.Materials != nil {
		mux.HandleFunc("GET /api/materials", a.listMaterials)
		mux.HandleFunc("POST /api/materials", a.createMaterial)
		mux.HandleFunc("GET /api/materials/{id}", a.getMaterial)
		mux.HandleFunc("PUT /api/materials/{id}", a.updateMaterial)
		mux.HandleFunc("DELETE /api/materials/{id}", a.deleteMaterial)
		mux.HandleFunc("GET /api/materials/prices/export", a.exportPrices)
		mux.HandleFunc("POST /api/materials/prices/import", a.importPrices)
	}
	if a.Products != nil {
		mux.HandleFunc("GET /api/products", a.listProducts)
		mux.HandleFunc("POST /api/products", a.createProduct)
		mux.HandleFunc("GET /api/products/{id}", a.getProduct)
		mux.HandleFunc("PUT /api/products/{id}", a.updateProduct)
		mux.HandleFunc("DELETE /api/products/{id}", a.deleteProduct)
	}
	if a.Sales != nil {
		mux.HandleFunc("GET /api/sales", a.listSales)
		mux.HandleFunc("POST /api/sales", a.createSale)
		mux.HandleFunc("GET /api/sales/{id}", a.getSale)
		mux.HandleFunc("PUT /api/sales/{id}", a.updateSale)
		mux.HandleFunc("DELETE /api/sales/{id}", a.deleteSale)
	}
	if a.Tasks != nil {
		mux.HandleFunc("GET /api/tasks", a.listTasks)
		mux.HandleFunc("POST /api/tasks", a.createTask)
		mux.HandleFunc("GET /api/tasks/{id}", a.getTask)
		mux.HandleFunc("PUT /api/tasks/{id}", a.updateTask)
		mux.HandleFunc("DELETE /api/tasks/{id}", a.deleteTask)
	}
	if a.Shopping != nil {
		mux.HandleFunc("GET /api/shopping-list", a.getShoppingList)
		mux.HandleFunc("PUT /api/shopping-list", a.updateShoppingList)
	}
	if a.Users != nil {
		mux.HandleFunc("GET /api/users", a.listUsers)
		mux.HandleFunc("POST /api/users", a.createUser)
		mux.HandleFunc("DELETE /api/users/{id}", a.deleteUser)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("id inválido"))
		return 0, false
	}
	return id, true
}

// Validation errors from the services map to 400; unknown errors to 500.
var validationErrors = []error{
	templates.ErrNameRequired,
	tasks.ErrTitleRequired,
	sales.ErrQuantityNotPositive,
	sales.ErrManualPriceNotPositive,
	sales.ErrDownPaymentExceedsTotal,
	sales.ErrProductNotFound,
	sales.ErrBadDeadline,
}

func writeServiceError(w http.ResponseWriter, err error) {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	writeError(w, http.StatusInternalServerError, err)
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "no encontrado"})
}

// --- templates ---

func (a API) listTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := a.Templates.List(r.Context(), templates.Filter{
		Category:    q.Get("category"),
		ProjectType: q.Get("projectType"),
		Search:      q.Get("search"),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a API) createTemplate(w http.ResponseWriter, r *http.Request) {
	var in templates.CreateInput
	if !readJSON(w, r, &in) {
		return
	}
	t, err := a.Templates.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (a API) getTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := a.Templates.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if t == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a API) updateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in templates.UpdateInput
	if !readJSON(w, r, &in) {
		return
	}
	t, err := a.Templates.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if t == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a API) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := a.Templates.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a API) duplicateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if r.ContentLength > 0 && !readJSON(w, r, &body) {
		return
	}
	t, err := a.Templates.Duplicate(r.Context(), id, body.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if t == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (a API) recalculateTemplates(w http.ResponseWriter, r *http.Request) {
	res, err := a.Templates.RecalculateAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":   res.Total,
		"updated": res.Updated,
		"errors":  res.Errors,
	})
}

// --- materials ---

func (a API) listMaterials(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query().Get("search"); q != "" {
		out, err := a.Materials.SearchByName(r.Context(), q)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
		return
	}
	out, err := a.Materials.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a API) createMaterial(w http.ResponseWriter, r *http.Request) {
	var m materials.Material
	if !readJSON(w, r, &m) {
		return
	}
	out, err := a.Materials.Create(r.Context(), m)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (a API) getMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	m, err := a.Materials.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if m == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a API) updateMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var m materials.Material
	if !readJSON(w, r, &m) {
		return
	}
	m.ID = id
	out, err := a.Materials.Update(r.Context(), m)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if out == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a API) deleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := a.Materials.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a API) exportPrices(w http.ResponseWriter, r *http.Request) {
	data, err := materials.ExportPrices(r.Context(), a.Materials)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="precios.xlsx"`)
	_, _ = w.Write(data)
}

func (a API) importPrices(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := materials.ImportPrices(r.Context(), a.Materials, data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- products ---

func (a API) listProducts(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("active") == "true"
	out, err := a.Products.List(r.Context(), onlyActive)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a API) createProduct(w http.ResponseWriter, r *http.Request) {
	var p products.Product
	if !readJSON(w, r, &p) {
		return
	}
	out, err := a.Products.Create(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (a API) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := a.Products.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if p == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a API) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p products.Product
	if !readJSON(w, r, &p) {
		return
	}
	p.ID = id
	out, err := a.Products.Update(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if out == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a API) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := a.Products.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- sales ---

func (a API) listSales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	out, total, err := a.Sales.List(r.Context(), page, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sales": out, "total": total})
}

func (a API) createSale(w http.ResponseWriter, r *http.Request) {
	var in sales.CreateInput
	if !readJSON(w, r, &in) {
		return
	}
	s, err := a.Sales.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (a API) getSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s, err := a.Sales.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if s == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a API) updateSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in sales.UpdateInput
	if !readJSON(w, r, &in) {
		return
	}
	s, err := a.Sales.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if s == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a API) deleteSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := a.Sales.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- tasks ---

func (a API) listTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	out, total, err := a.Tasks.List(r.Context(), tasks.Filter{
		Query:    q.Get("q"),
		Status:   tasks.Status(q.Get("status")),
		Priority: tasks.Priority(q.Get("priority")),
		Tag:      q.Get("tag"),
		Sort:     q.Get("sort"),
	}, page, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": out, "total": total})
}

func (a API) createTask(w http.ResponseWriter, r *http.Request) {
	var in tasks.CreateInput
	if !readJSON(w, r, &in) {
		return
	}
	t, err := a.Tasks.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (a API) getTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := a.Tasks.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if t == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a API) updateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in tasks.UpdateInput
	if !readJSON(w, r, &in) {
		return
	}
	t, err := a.Tasks.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if t == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a API) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := a.Tasks.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- shopping list ---

func (a API) getShoppingList(w http.ResponseWriter, r *http.Request) {
	l, err := a.Shopping.Get(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (a API) updateShoppingList(w http.ResponseWriter, r *http.Request) {
	var in shopping.UpdateInput
	if !readJSON(w, r, &in) {
		return
	}
	l, err := a.Shopping.Update(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// --- users ---

// userView hides the password hash from API responses.
type userView struct {
	ID    int64      `json:"id"`
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  users.Role `json:"role"`
}

func toUserView(u users.User) userView {
	return userView{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func (a API) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := a.Users.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]userView, 0, len(list))
	for _, u := range list {
		out = append(out, toUserView(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a API) createUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string     `json:"email"`
		Name     string     `json:"name"`
		Role     users.Role `json:"role"`
		Password string     `json:"password"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	if in.Email == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, errors.New("email y contraseña son obligatorios"))
		return
	}
	if in.Role == "" {
		in.Role = users.RoleUser
	}
	hash, err := users.HashPassword(in.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	u, err := a.Users.Create(r.Context(), users.User{
		Email:        in.Email,
		Name:         in.Name,
		Role:         in.Role,
		PasswordHash: hash,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserView(*u))
}

func (a API) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := a.Users.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
