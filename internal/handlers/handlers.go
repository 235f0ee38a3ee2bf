package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lendstock/internal/services"
)

// Handler bundles the three services behind the HTTP surface.
type Handler struct {
	catalog services.CatalogService
	users   services.UserService
	ledger  services.LedgerService
}

// RegisterRoutes mounts every route on the given engine.
func RegisterRoutes(r *gin.Engine, catalog services.CatalogService, users services.UserService, ledger services.LedgerService) {
	h := &Handler{catalog: catalog, users: users, ledger: ledger}

	r.Use(RequestID())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	// Catalog
	r.GET("/items", h.listItems)
	r.POST("/items", h.createItem)
	r.GET("/items/search", h.searchItems)
	r.GET("/items/:id", h.getItem)
	r.PATCH("/items/:id", h.updateItem)
	r.DELETE("/items/:id", h.deleteItem)

	// Users
	r.POST("/users", h.registerUser)
	r.GET("/users", h.listUsers)

	// Ledger
	r.POST("/borrow", h.borrowItem)
	r.POST("/returns", h.returnItem)
	r.GET("/transactions", h.listTransactions)
	r.GET("/transactions/users/:id", h.listUserTransactions)
	r.GET("/transactions/items/:id", h.listItemTransactions)
}

// message writes the uniform {"message": ...} envelope.
func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// serviceError translates service sentinels into HTTP responses.
func (h *Handler) serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		message(c, http.StatusNotFound, "Item not found")
	case errors.Is(err, services.ErrUserNotFound):
		message(c, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrDuplicateItem):
		message(c, http.StatusBadRequest, "Item already exists.")
	case errors.Is(err, services.ErrDuplicateUser):
		message(c, http.StatusBadRequest, "Username or email already exists.")
	case errors.Is(err, services.ErrItemNotAvailable):
		message(c, http.StatusBadRequest, "Item not available")
	case errors.Is(err, services.ErrNothingToReturn):
		message(c, http.StatusBadRequest, "No borrowed item to return.")
	default:
		message(c, http.StatusInternalServerError, err.Error())
	}
}

func parseID(c *gin.Context, what string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		message(c, http.StatusBadRequest, "invalid "+what+" id")
		return 0, false
	}
	return uint(id), true
}

// ─── Catalog ──────────────────────────────────────────────────────────────────

func (h *Handler) listItems(c *gin.Context) {
	items, err := h.catalog.ListItems()
	if err != nil {
		h.serviceError(c, err)
		return
	}
	if len(items) == 0 {
		message(c, http.StatusNotFound, "No items found.")
		return
	}
	c.JSON(http.StatusOK, items)
}

type createItemRequest struct {
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
}

func (h *Handler) createItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, "Invalid request. JSON data is required.")
		return
	}

	name := strings.TrimSpace(req.Name)
	category := strings.TrimSpace(req.Category)
	description := strings.TrimSpace(req.Description)

	for _, f := range []struct{ name, value string }{
		{"name", name},
		{"category", category},
		{"amount", strings.TrimSpace(req.Amount.String())},
		{"description", description},
	} {
		if f.value == "" {
			message(c, http.StatusBadRequest, "'"+f.name+"' is required.")
			return
		}
	}

	amount, err := strconv.Atoi(req.Amount.String())
	if err != nil {
		message(c, http.StatusBadRequest, "'amount' must be a number")
		return
	}
	if amount < 1 {
		message(c, http.StatusBadRequest, "'amount' must be a positive integer")
		return
	}

	item, err := h.catalog.CreateItem(name, category, description, amount)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Item added successfully.", "item": item})
}

func (h *Handler) getItem(c *gin.Context) {
	id, ok := parseID(c, "item")
	if !ok {
		return
	}
	item, err := h.catalog.GetItem(id)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type updateItemRequest struct {
	Name        *string      `json:"name"`
	Category    *string      `json:"category"`
	Status      *string      `json:"status"`
	Description *string      `json:"description"`
	Amount      *json.Number `json:"amount"`
}

func (h *Handler) updateItem(c *gin.Context) {
	id, ok := parseID(c, "item")
	if !ok {
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, "Invalid request. JSON data is required.")
		return
	}

	update := services.ItemUpdate{
		Name:        req.Name,
		Category:    req.Category,
		Status:      req.Status,
		Description: req.Description,
	}
	if req.Amount != nil {
		amount, err := strconv.Atoi(req.Amount.String())
		if err != nil || amount < 0 {
			message(c, http.StatusBadRequest, "'amount' must be a non-negative integer")
			return
		}
		update.Amount = &amount
	}

	if _, err := h.catalog.UpdateItem(id, update); err != nil {
		h.serviceError(c, err)
		return
	}
	message(c, http.StatusOK, "Item updated successfully!")
}

func (h *Handler) deleteItem(c *gin.Context) {
	id, ok := parseID(c, "item")
	if !ok {
		return
	}
	if err := h.catalog.DeleteItem(id); err != nil {
		h.serviceError(c, err)
		return
	}
	message(c, http.StatusOK, "Item deleted successfully!")
}

func (h *Handler) searchItems(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		message(c, http.StatusBadRequest, "Search term is required.")
		return
	}
	items, err := h.catalog.SearchItems(query)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	if len(items) == 0 {
		message(c, http.StatusNotFound, "No items found matching the search criteria.")
		return
	}
	c.JSON(http.StatusOK, items)
}

// ─── Users ────────────────────────────────────────────────────────────────────

type registerUserRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (h *Handler) registerUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, "Invalid request. JSON data is required.")
		return
	}

	username := strings.TrimSpace(req.Username)
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	email := strings.TrimSpace(req.Email)
	password := strings.TrimSpace(req.Password)

	for _, f := range []struct{ name, value string }{
		{"username", username},
		{"first_name", firstName},
		{"last_name", lastName},
		{"email", email},
		{"password", password},
	} {
		if f.value == "" {
			message(c, http.StatusBadRequest, "'"+f.name+"' is required.")
			return
		}
	}

	user, err := h.users.Register(username, firstName, lastName, email, password)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User added successfully.", "user": user})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.ListUsers()
	if err != nil {
		h.serviceError(c, err)
		return
	}
	if len(users) == 0 {
		message(c, http.StatusNotFound, "No users found.")
		return
	}
	c.JSON(http.StatusOK, users)
}

// ─── Ledger ───────────────────────────────────────────────────────────────────

type ledgerRequest struct {
	UserID *uint `json:"user_id"`
	ItemID *uint `json:"item_id"`
}

func (r ledgerRequest) valid() bool {
	return r.UserID != nil && *r.UserID != 0 && r.ItemID != nil && *r.ItemID != 0
}

func (h *Handler) borrowItem(c *gin.Context) {
	var req ledgerRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.valid() {
		message(c, http.StatusBadRequest, "Both 'user_id' and 'item_id' are required.")
		return
	}
	item, err := h.ledger.Borrow(*req.UserID, *req.ItemID)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item borrowed successfully!", "item": item})
}

func (h *Handler) returnItem(c *gin.Context) {
	var req ledgerRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.valid() {
		message(c, http.StatusBadRequest, "Both 'user_id' and 'item_id' are required.")
		return
	}
	item, err := h.ledger.Return(*req.UserID, *req.ItemID)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item returned successfully!", "item": item})
}

func (h *Handler) listTransactions(c *gin.Context) {
	transactions, err := h.ledger.ListTransactions()
	if err != nil {
		h.serviceError(c, err)
		return
	}
	if len(transactions) == 0 {
		message(c, http.StatusNotFound, "No transactions found.")
		return
	}
	c.JSON(http.StatusOK, transactions)
}

func (h *Handler) listUserTransactions(c *gin.Context) {
	id, ok := parseID(c, "user")
	if !ok {
		return
	}
	transactions, err := h.ledger.ListUserTransactions(id)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	if len(transactions) == 0 {
		message(c, http.StatusNotFound, "No transactions found for this user.")
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// userSummary and itemSummary are the denormalized fields attached to
// per-item transaction listings. Pointers stay nil when the parent record was
// deleted after the ledger entry was written.
type userSummary struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type itemSummary struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type itemTransactionResponse struct {
	ID        uint         `json:"id"`
	Action    string       `json:"action"`
	Quantity  int          `json:"quantity"`
	Timestamp time.Time    `json:"timestamp"`
	User      *userSummary `json:"user"`
	Item      *itemSummary `json:"item"`
}

func (h *Handler) listItemTransactions(c *gin.Context) {
	id, ok := parseID(c, "item")
	if !ok {
		return
	}
	transactions, err := h.ledger.ListItemTransactions(id)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	if len(transactions) == 0 {
		message(c, http.StatusNotFound, "No transactions found for this item.")
		return
	}

	result := make([]itemTransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		record := itemTransactionResponse{
			ID:        t.ID,
			Action:    t.Action,
			Quantity:  t.Quantity,
			Timestamp: t.Timestamp,
		}
		if t.User != nil {
			record.User = &userSummary{
				ID:        t.User.ID,
				Username:  t.User.Username,
				FirstName: t.User.FirstName,
				LastName:  t.User.LastName,
			}
		}
		if t.Item != nil {
			record.Item = &itemSummary{
				ID:       t.Item.ID,
				Name:     t.Item.Name,
				Category: t.Item.Category,
			}
		}
		result = append(result, record)
	}
	c.JSON(http.StatusOK, result)
}
