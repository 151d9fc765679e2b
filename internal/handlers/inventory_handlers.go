package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gym_backend/internal/ledger"
	"gym_backend/internal/middleware"
	"gym_backend/internal/models"
	"gym_backend/internal/services"
	"gym_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// InventoryHandler holds the inventory service.
type InventoryHandler struct {
	inventoryService services.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(is services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: is}
}

func actorOf(c *gin.Context) string {
	if session, ok := middleware.CurrentSession(c); ok {
		return session.Username
	}
	return ""
}

func (h *InventoryHandler) respondError(c *gin.Context, err error, fallback string) {
	if respondValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Inventory item not found.", ""))
	case errors.Is(err, services.ErrInvalidQuantity), errors.Is(err, services.ErrItemValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
	case errors.Is(err, services.ErrInsufficientStock):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeInsufficientStock, "Insufficient stock.", err.Error()))
	case errors.Is(err, services.ErrStockConflict):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
	default:
		utils.RespondInternal(c, fallback)
	}
}

// CreateItem adds an item and books its opening stock.
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req services.CreateItemRequest
	if !bindJSON(c, &req, "CreateItem") {
		return
	}

	item, err := h.inventoryService.CreateItem(c.Request.Context(), req, actorOf(c))
	if err != nil {
		utils.LogError(err, "CreateItem: Error from inventoryService.CreateItem")
		h.respondError(c, err, "Failed to create inventory item.")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetItems lists active items.
func (h *InventoryHandler) GetItems(c *gin.Context) {
	page, pageSize := utils.Pagination(c)
	filter := models.InventoryFilter{Page: page, PageSize: pageSize}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		filter.Category = &category
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.Search = &search
	}

	items, total, err := h.inventoryService.GetItems(c.Request.Context(), filter)
	if err != nil {
		utils.LogError(err, "GetItems: Error from inventoryService.GetItems")
		utils.RespondInternal(c, "Failed to fetch inventory items.")
		return
	}
	if items == nil {
		items = []models.InventoryItem{}
	}
	c.JSON(http.StatusOK, paged(items, total, page, pageSize))
}

func (h *InventoryHandler) GetItemByID(c *gin.Context) {
	itemID, ok := parseIDParam(c, "id", "item")
	if !ok {
		return
	}

	item, err := h.inventoryService.GetItemByID(c.Request.Context(), itemID)
	if err != nil {
		utils.LogError(err, "GetItemByID: Error from inventoryService.GetItemByID for ID "+utils.Int64ToStr(itemID))
		h.respondError(c, err, "Failed to fetch inventory item.")
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateItem edits item details. Quantity is not editable here.
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	itemID, ok := parseIDParam(c, "id", "item")
	if !ok {
		return
	}
	var req services.UpdateItemRequest
	if !bindJSON(c, &req, "UpdateItem") {
		return
	}

	item, err := h.inventoryService.UpdateItem(c.Request.Context(), itemID, req)
	if err != nil {
		utils.LogError(err, "UpdateItem: Error from inventoryService.UpdateItem for ID "+utils.Int64ToStr(itemID))
		h.respondError(c, err, "Failed to update inventory item.")
		return
	}
	c.JSON(http.StatusOK, item)
}

// ArchiveItem hides an item. Its ledger is kept.
func (h *InventoryHandler) ArchiveItem(c *gin.Context) {
	itemID, ok := parseIDParam(c, "id", "item")
	if !ok {
		return
	}

	if err := h.inventoryService.ArchiveItem(c.Request.Context(), itemID); err != nil {
		utils.LogError(err, "ArchiveItem: Error from inventoryService.ArchiveItem for ID "+utils.Int64ToStr(itemID))
		h.respondError(c, err, "Failed to archive inventory item.")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InventoryHandler) GetCategories(c *gin.Context) {
	categories, err := h.inventoryService.GetCategories(c.Request.Context())
	if err != nil {
		utils.LogError(err, "GetCategories: Error from inventoryService.GetCategories")
		utils.RespondInternal(c, "Failed to fetch categories.")
		return
	}
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

// StockIn records a stock-in movement.
func (h *InventoryHandler) StockIn(c *gin.Context) {
	h.recordStock(c, ledger.DirectionIn)
}

// StockOut records a stock-out movement.
func (h *InventoryHandler) StockOut(c *gin.Context) {
	h.recordStock(c, ledger.DirectionOut)
}

func (h *InventoryHandler) recordStock(c *gin.Context, direction ledger.Direction) {
	itemID, ok := parseIDParam(c, "id", "item")
	if !ok {
		return
	}
	var req services.StockChangeRequest
	if !bindJSON(c, &req, "RecordStock") {
		return
	}

	var (
		result *models.StockMovementResult
		err    error
	)
	if direction == ledger.DirectionIn {
		result, err = h.inventoryService.RecordStockIn(c.Request.Context(), itemID, req, actorOf(c))
	} else {
		result, err = h.inventoryService.RecordStockOut(c.Request.Context(), itemID, req, actorOf(c))
	}
	if err != nil {
		utils.LogError(err, "RecordStock: Error from inventoryService for item "+utils.Int64ToStr(itemID)+" ("+string(direction)+")")
		h.respondError(c, err, "Failed to record stock movement.")
		return
	}
	c.JSON(http.StatusCreated, result)
}

func movementFilter(c *gin.Context) (models.MovementFilter, bool) {
	var filter models.MovementFilter
	if itemIDStr := c.Query("item_id"); itemIDStr != "" {
		id, err := strconv.ParseInt(itemIDStr, 10, 64)
		if err != nil || id <= 0 {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid item_id format.", itemIDStr))
			return filter, false
		}
		filter.ItemID = &id
	}
	if dirStr := c.Query("direction"); dirStr != "" {
		dir := ledger.Direction(strings.ToLower(dirStr))
		if !dir.Valid() {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid direction, use in or out.", dirStr))
			return filter, false
		}
		filter.Direction = &dir
	}
	return filter, true
}

// GetMovements lists the stock history newest first.
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	filter, ok := movementFilter(c)
	if !ok {
		return
	}
	page, pageSize := utils.Pagination(c)
	filter.Page, filter.PageSize = page, pageSize

	movements, total, err := h.inventoryService.GetMovements(c.Request.Context(), filter)
	if err != nil {
		utils.LogError(err, "GetMovements: Error from inventoryService.GetMovements")
		utils.RespondInternal(c, "Failed to fetch stock movements.")
		return
	}
	if movements == nil {
		movements = []models.StockMovement{}
	}
	c.JSON(http.StatusOK, paged(movements, total, page, pageSize))
}

// ExportMovements sends the filtered stock history as a CSV attachment.
func (h *InventoryHandler) ExportMovements(c *gin.Context) {
	filter, ok := movementFilter(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.inventoryService.ExportMovements(c.Request.Context(), filter, &buf); err != nil {
		utils.LogError(err, "ExportMovements: Error from inventoryService.ExportMovements")
		utils.RespondInternal(c, "Failed to export stock movements.")
		return
	}

	filename := "stock-movements-" + time.Now().Format("20060102-150405") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// GetItemLedger returns an item's movements and whether they agree with its quantity.
func (h *InventoryHandler) GetItemLedger(c *gin.Context) {
	itemID, ok := parseIDParam(c, "id", "item")
	if !ok {
		return
	}

	itemLedger, err := h.inventoryService.GetItemLedger(c.Request.Context(), itemID)
	if err != nil {
		utils.LogError(err, "GetItemLedger: Error from inventoryService.GetItemLedger for ID "+utils.Int64ToStr(itemID))
		h.respondError(c, err, "Failed to fetch item ledger.")
		return
	}
	c.JSON(http.StatusOK, itemLedger)
}
