package handlers

import (
	"net/http"
	"strconv"

	"storesync/internal/logger"
	"storesync/internal/models"
	"storesync/internal/sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SyncHandler struct {
	db           *gorm.DB
	orchestrator *sync.Orchestrator
	logger       *logger.Logger
}

func NewSyncHandler(db *gorm.DB, orchestrator *sync.Orchestrator, logger *logger.Logger) *SyncHandler {
	return &SyncHandler{
		db:           db,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// SyncProduct pushes one product to all applicable shops, or to a single
// shop when shop_id is given.
func (h *SyncHandler) SyncProduct(c *gin.Context) {
	h.syncEntity(c, models.EntityTypeProduct)
}

func (h *SyncHandler) SyncCategory(c *gin.Context) {
	h.syncEntity(c, models.EntityTypeCategory)
}

func (h *SyncHandler) syncEntity(c *gin.Context, entityType models.EntityType) {
	id := c.Param("id")

	if shopID := c.Query("shop_id"); shopID != "" {
		result, err := h.orchestrator.SyncEntityToShop(c.Request.Context(), entityType, id, shopID)
		if err != nil {
			if sync.IsValidationError(err) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
		return
	}

	results, err := h.orchestrator.SyncEntity(c.Request.Context(), entityType, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := make([]gin.H, len(results))
	for i, r := range results {
		item := gin.H{"shop_id": r.ShopID, "shop_name": r.ShopName, "result": r.Result}
		if r.Err != nil {
			item["error"] = r.Err.Error()
		}
		response[i] = item
	}
	c.JSON(http.StatusOK, gin.H{"data": response})
}

// SyncCategoryTree pushes the entire category tree, roots first.
func (h *SyncHandler) SyncCategoryTree(c *gin.Context) {
	results, err := h.orchestrator.SyncCategoryTree(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "partial": results})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": results})
}

// DetectDrift checks whether the remote store still matches the last
// synced snapshot for a product/shop pair.
func (h *SyncHandler) DetectDrift(c *gin.Context) {
	id := c.Param("id")
	shopID := c.Query("shop_id")
	if shopID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shop_id is required"})
		return
	}

	drifted, err := h.orchestrator.DetectDrift(c.Request.Context(), id, shopID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"drifted": drifted}})
}

type disableRequest struct {
	EntityType models.EntityType `json:"entity_type" binding:"required"`
	EntityID   string            `json:"entity_id" binding:"required"`
	ShopID     string            `json:"shop_id" binding:"required"`
}

// Disable removes an (entity, shop) pair from automatic sync.
func (h *SyncHandler) Disable(c *gin.Context) {
	var req disableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.orchestrator.Disable(c.Request.Context(), req.EntityType, req.EntityID, req.ShopID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sync disabled"})
}

func (h *SyncHandler) ListStates(c *gin.Context) {
	var states []models.SyncState

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset := (page - 1) * limit

	query := h.db.Model(&models.SyncState{})
	if shopID := c.Query("shop_id"); shopID != "" {
		query = query.Where("shop_id = ?", shopID)
	}
	if entityID := c.Query("entity_id"); entityID != "" {
		query = query.Where("entity_id = ?", entityID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	if err := query.Order("updated_at DESC").Offset(offset).Limit(limit).Find(&states).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sync states"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": states,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *SyncHandler) ListLogs(c *gin.Context) {
	var entries []models.SyncLogEntry

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset := (page - 1) * limit

	query := h.db.Model(&models.SyncLogEntry{})
	if shopID := c.Query("shop_id"); shopID != "" {
		query = query.Where("shop_id = ?", shopID)
	}
	if entityID := c.Query("entity_id"); entityID != "" {
		query = query.Where("entity_id = ?", entityID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sync log"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": entries,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}
