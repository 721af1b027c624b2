package handlers

import (
	"net/http"
	"strconv"

	"storesync/internal/logger"
	"storesync/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ShopHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewShopHandler(db *gorm.DB, logger *logger.Logger) *ShopHandler {
	return &ShopHandler{
		db:     db,
		logger: logger,
	}
}

func (h *ShopHandler) List(c *gin.Context) {
	var shops []models.Shop

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset := (page - 1) * limit

	query := h.db.Model(&models.Shop{})
	if active := c.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}

	var total int64
	query.Count(&total)

	if err := query.Offset(offset).Limit(limit).Find(&shops).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shops"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": shops,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *ShopHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var shop models.Shop
	if err := h.db.First(&shop, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shop not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shop"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": shop})
}

func (h *ShopHandler) Create(c *gin.Context) {
	var shop models.Shop
	if err := c.ShouldBindJSON(&shop); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.Create(&shop).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create shop"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": shop})
}

func (h *ShopHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var shop models.Shop
	if err := h.db.First(&shop, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shop not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shop"})
		return
	}

	if err := c.ShouldBindJSON(&shop); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.Save(&shop).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update shop"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": shop})
}

func (h *ShopHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.db.Delete(&models.Shop{}, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete shop"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Shop deleted"})
}
