package api

import (
	"errors"
	"fittrackr/server/internal/service"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ShopHandler holds the shop service dependency.
type ShopHandler struct {
	shopService service.ShopService
}

// NewShopHandler creates a new ShopHandler.
func NewShopHandler(shopService service.ShopService) *ShopHandler {
	return &ShopHandler{shopService: shopService}
}

// --- Request/Response Structs ---

type ProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price" binding:"min=0"`
	StockQty    int     `json:"stockQty" binding:"min=0"`
}

type ImageUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type CartAddRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type CartResponse struct {
	Lines []service.CartLine `json:"lines"`
	Total float64            `json:"total"`
}

type CheckoutRequest struct {
	Address     string `json:"address" binding:"required"`
	CardNumber  string `json:"cardNumber" binding:"required"`
	ExpiryMonth int    `json:"expiryMonth" binding:"required,min=1,max=12"`
	ExpiryYear  int    `json:"expiryYear" binding:"required"`
	CVC         string `json:"cvc" binding:"required"`
	HolderName  string `json:"holderName,omitempty"`
}

// --- Handler Methods ---

// ListProducts returns the catalog.
func (h *ShopHandler) ListProducts(c *gin.Context) {
	products, err := h.shopService.ListProducts(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list products")
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct returns one product with its image URL.
func (h *ShopHandler) GetProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.shopService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		handleShopError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct adds a product to the catalog. Admin only.
func (h *ShopHandler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	product, err := h.shopService.CreateProduct(c.Request.Context(), service.ProductInput{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
		StockQty:    req.StockQty,
	})
	if err != nil {
		handleShopError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct edits a product. Admin only.
func (h *ShopHandler) UpdateProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	product, err := h.shopService.UpdateProduct(c.Request.Context(), productID, service.ProductInput{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
		StockQty:    req.StockQty,
	})
	if err != nil {
		handleShopError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// RequestImageUpload issues a presigned PUT URL for a product image. Admin only.
func (h *ShopHandler) RequestImageUpload(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	target, err := h.shopService.RequestImageUpload(c.Request.Context(), productID, req.ContentType)
	if err != nil {
		handleShopError(c, err)
		return
	}
	c.JSON(http.StatusOK, target)
}

// AddToCart puts one unit of a product into the user's cart.
func (h *ShopHandler) AddToCart(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req CartAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	productID, err := parseObjectID(req.ProductID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid productId format")
		return
	}

	item, err := h.shopService.AddToCart(c.Request.Context(), userID, productID)
	if err != nil {
		handleShopError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// GetCart returns the user's cart lines and running total.
func (h *ShopHandler) GetCart(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	lines, total, err := h.shopService.GetCart(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load cart")
		return
	}
	c.JSON(http.StatusOK, CartResponse{Lines: lines, Total: total})
}

// RemoveFromCart drops a product line from the user's cart.
func (h *ShopHandler) RemoveFromCart(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	if err := h.shopService.RemoveFromCart(c.Request.Context(), userID, productID); err != nil {
		handleShopError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Checkout places an order from the user's cart.
func (h *ShopHandler) Checkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	order, err := h.shopService.Checkout(c.Request.Context(), userID, service.CheckoutInput{
		Address: req.Address,
		Card: service.CardDetails{
			Number:      req.CardNumber,
			ExpiryMonth: req.ExpiryMonth,
			ExpiryYear:  req.ExpiryYear,
			CVC:         req.CVC,
			HolderName:  req.HolderName,
		},
	}, time.Now().UTC())
	if err != nil {
		handleShopError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrders returns the user's order history.
func (h *ShopHandler) GetOrders(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	orders, err := h.shopService.GetOrders(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder returns one order owned by the user.
func (h *ShopHandler) GetOrder(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.shopService.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		handleShopError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// handleShopError maps shop service errors onto HTTP statuses.
func handleShopError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound), errors.Is(err, service.ErrOrderNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCartEmpty), errors.Is(err, service.ErrProductValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCard):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrInsufficientStock):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
