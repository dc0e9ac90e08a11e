package service

import (
	"context"
	"errors"
	"fittrackr/server/internal/domain"
	"fittrackr/server/internal/repository"
	"fittrackr/server/internal/storage"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductValidation = errors.New("product validation failed")
	ErrCartEmpty         = errors.New("cart is empty")
	ErrInvalidCard       = errors.New("card details failed validation")
	ErrInsufficientStock = errors.New("not enough stock for product")
	ErrOrderNotFound     = errors.New("order not found")
)

// ProductInput carries the fields for creating or editing a product.
type ProductInput struct {
	Name        string
	Category    string
	Description string
	Price       float64
	StockQty    int
}

// ProductView is a product with its resolved image URL, if it has one.
type ProductView struct {
	domain.Product
	ImageURL string `json:"imageUrl,omitempty"`
}

// CartLine joins a cart item with its product for display.
type CartLine struct {
	Item     domain.CartItem `json:"item"`
	Product  ProductView     `json:"product"`
	LineCost float64         `json:"lineCost"`
}

// CardDetails is the (simulated) payment card input at checkout.
// Numbers are validated but never stored.
type CardDetails struct {
	Number      string
	ExpiryMonth int
	ExpiryYear  int
	CVC         string
	HolderName  string
}

// CheckoutInput carries everything needed to place an order.
type CheckoutInput struct {
	Address string
	Card    CardDetails
}

// UploadTarget is a presigned PUT URL plus the object key it writes to.
type UploadTarget struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// --- Service Interface ---
type ShopService interface {
	ListProducts(ctx context.Context) ([]ProductView, error)
	GetProduct(ctx context.Context, id primitive.ObjectID) (*ProductView, error)
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id primitive.ObjectID, input ProductInput) (*domain.Product, error)
	RequestImageUpload(ctx context.Context, productID primitive.ObjectID, contentType string) (*UploadTarget, error)

	AddToCart(ctx context.Context, userID, productID primitive.ObjectID) (*domain.CartItem, error)
	GetCart(ctx context.Context, userID primitive.ObjectID) ([]CartLine, float64, error)
	RemoveFromCart(ctx context.Context, userID, productID primitive.ObjectID) error

	Checkout(ctx context.Context, userID primitive.ObjectID, input CheckoutInput, now time.Time) (*domain.Order, error)
	GetOrders(ctx context.Context, userID primitive.ObjectID) ([]domain.Order, error)
	GetOrder(ctx context.Context, userID, orderID primitive.ObjectID) (*domain.Order, error)
}

// --- Service Implementation ---

// shopService implements the ShopService interface.
type shopService struct {
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	orderRepo   repository.OrderRepository
	fileStorage storage.FileStorage
}

// NewShopService creates a new instance of shopService.
func NewShopService(
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	fileStorage storage.FileStorage,
) ShopService {
	return &shopService{
		productRepo: productRepo,
		cartRepo:    cartRepo,
		orderRepo:   orderRepo,
		fileStorage: fileStorage,
	}
}

// ListProducts returns the catalog with presigned image URLs resolved.
func (s *shopService) ListProducts(ctx context.Context) ([]ProductView, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, s.toView(ctx, p))
	}
	return views, nil
}

// GetProduct returns a single product with its image URL resolved.
func (s *shopService) GetProduct(ctx context.Context, id primitive.ObjectID) (*ProductView, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	view := s.toView(ctx, *product)
	return &view, nil
}

// CreateProduct adds a product to the catalog.
func (s *shopService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if input.Name == "" || input.Price < 0 || input.StockQty < 0 {
		return nil, ErrProductValidation
	}
	product := &domain.Product{
		Name:        input.Name,
		Category:    input.Category,
		Description: input.Description,
		Price:       input.Price,
		StockQty:    input.StockQty,
	}
	productID, err := s.productRepo.Create(ctx, product)
	if err != nil {
		return nil, err
	}
	product.ID = productID
	return product, nil
}

// UpdateProduct edits a product's catalog fields. The image key is managed
// separately through RequestImageUpload.
func (s *shopService) UpdateProduct(ctx context.Context, id primitive.ObjectID, input ProductInput) (*domain.Product, error) {
	if input.Name == "" || input.Price < 0 || input.StockQty < 0 {
		return nil, ErrProductValidation
	}
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	product.Name = input.Name
	product.Category = input.Category
	product.Description = input.Description
	product.Price = input.Price
	product.StockQty = input.StockQty

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// RequestImageUpload generates a presigned PUT URL for a product image and
// records the new object key on the product. A previous image, if any, is
// deleted from storage.
func (s *shopService) RequestImageUpload(ctx context.Context, productID primitive.ObjectID, contentType string) (*UploadTarget, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrProductValidation
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	objectKey := fmt.Sprintf("products/%s/%s", productID.Hex(), uuid.New().String())
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}

	oldKey := product.ImageKey
	product.ImageKey = objectKey
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	if oldKey != "" {
		// Best effort: a dangling object is harmless.
		_ = s.fileStorage.DeleteObject(ctx, oldKey)
	}

	return &UploadTarget{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// AddToCart puts one unit of the product into the user's cart, bumping the
// quantity if the product is already there.
func (s *shopService) AddToCart(ctx context.Context, userID, productID primitive.ObjectID) (*domain.CartItem, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.StockQty <= 0 {
		return nil, ErrInsufficientStock
	}
	return s.cartRepo.AddItem(ctx, userID, productID)
}

// GetCart returns the user's cart lines with product details and the
// running total.
func (s *shopService) GetCart(ctx context.Context, userID primitive.ObjectID) ([]CartLine, float64, error) {
	items, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	lines := make([]CartLine, 0, len(items))
	var total float64
	for _, item := range items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// Product was removed from the catalog; drop the stale line.
				_ = s.cartRepo.RemoveItem(ctx, userID, item.ProductID)
				continue
			}
			return nil, 0, err
		}
		cost := product.Price * float64(item.Quantity)
		lines = append(lines, CartLine{
			Item:     item,
			Product:  s.toView(ctx, *product),
			LineCost: cost,
		})
		total += cost
	}
	return lines, total, nil
}

// RemoveFromCart drops a product line from the user's cart.
func (s *shopService) RemoveFromCart(ctx context.Context, userID, productID primitive.ObjectID) error {
	err := s.cartRepo.RemoveItem(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

// Checkout validates the card, snapshots the cart into an order, charges
// the simulated payment, decrements stock and clears the cart. A failure
// before the order row exists restores any stock already taken, so a failed
// checkout leaves inventory unchanged.
func (s *shopService) Checkout(ctx context.Context, userID primitive.ObjectID, input CheckoutInput, now time.Time) (*domain.Order, error) {
	if err := validateCard(input.Card, now); err != nil {
		return nil, err
	}

	items, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	order := &domain.Order{
		UserID:  userID,
		Address: input.Address,
		Status:  domain.OrderStatusPaid,
	}

	// order.Items doubles as the list of stock already taken: any failure from
	// here until the order is inserted must give that stock back.
	for _, item := range items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, s.restock(ctx, order.Items, ErrProductNotFound)
			}
			return nil, s.restock(ctx, order.Items, err)
		}
		if err := s.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			if errors.Is(err, repository.ErrUpdateFailed) {
				err = fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
			}
			return nil, s.restock(ctx, order.Items, err)
		}
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
		order.Total += product.Price * float64(item.Quantity)
	}

	order.Payment = domain.Payment{
		Reference: uuid.New().String(),
		Amount:    order.Total,
		Status:    domain.OrderStatusPaid,
		Method:    "card",
		CreatedAt: now,
	}

	orderID, err := s.orderRepo.Create(ctx, order)
	if err != nil {
		return nil, s.restock(ctx, order.Items, err)
	}
	order.ID = orderID

	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		return nil, err
	}
	return order, nil
}

// restock gives back stock decremented by a checkout that failed before the
// order row existed, then reports cause. Inventory may only shrink when a
// paid order records the sale.
func (s *shopService) restock(ctx context.Context, taken []domain.OrderItem, cause error) error {
	for _, item := range taken {
		if err := s.productRepo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("checkout failed (%v) and stock restore failed: %w", cause, err)
		}
	}
	return cause
}

// GetOrders returns the user's order history, newest first.
func (s *shopService) GetOrders(ctx context.Context, userID primitive.ObjectID) ([]domain.Order, error) {
	return s.orderRepo.GetByUserID(ctx, userID)
}

// GetOrder retrieves one order and verifies ownership.
func (s *shopService) GetOrder(ctx context.Context, userID, orderID primitive.ObjectID) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// toView resolves a product's image key to a presigned download URL.
// A presign failure degrades to a view without an image rather than
// failing the whole listing.
func (s *shopService) toView(ctx context.Context, product domain.Product) ProductView {
	view := ProductView{Product: product}
	if product.ImageKey != "" && s.fileStorage != nil {
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, product.ImageKey, storage.DefaultPresignedURLExpiry)
		if err == nil {
			view.ImageURL = url
		}
	}
	return view
}

// validateCard runs the simulated payment checks: Luhn checksum on the
// number, a 3-4 digit CVC and an expiry month in the future.
func validateCard(card CardDetails, now time.Time) error {
	digits := strings.ReplaceAll(strings.ReplaceAll(card.Number, " ", ""), "-", "")
	if len(digits) < 12 || len(digits) > 19 || !luhnValid(digits) {
		return ErrInvalidCard
	}
	if len(card.CVC) < 3 || len(card.CVC) > 4 {
		return ErrInvalidCard
	}
	for _, r := range card.CVC {
		if r < '0' || r > '9' {
			return ErrInvalidCard
		}
	}
	if card.ExpiryMonth < 1 || card.ExpiryMonth > 12 {
		return ErrInvalidCard
	}
	// A card is valid through the last day of its expiry month.
	expiry := time.Date(card.ExpiryYear, time.Month(card.ExpiryMonth)+1, 1, 0, 0, 0, 0, time.UTC)
	if !now.Before(expiry) {
		return ErrInvalidCard
	}
	return nil
}

// luhnValid reports whether the digit string passes the Luhn checksum.
func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		r := digits[i]
		if r < '0' || r > '9' {
			return false
		}
		d := int(r - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
