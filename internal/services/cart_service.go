package services

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/metrics"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// CartService manages carts and wishlists. Writes for one user are applied
// in the order they arrive.
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) error

	GetWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error)
	ToggleWishlist(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistToggleResponse, error)
	MoveWishlistToCart(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) ([]models.MoveResult, error)

	// Exclusive runs fn on the user's cart worker, ordered with the user's
	// other cart writes. Checkout uses it so the cart it orders and clears
	// cannot change underneath it.
	Exclusive(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context) error) error

	Close()
}

type cartCommand struct {
	ctx  context.Context
	run  func(ctx context.Context) error
	done chan error
}

type cartService struct {
	carts    repository.CartRepositoryInterface
	products repository.ProductsRepositoryInterface
	metrics  *metrics.Metrics
	logger   *logrus.Logger

	queues    []chan cartCommand
	quit      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once

	// mu guards closed; enqueues hold it for reading so none can land
	// after Close has started
	mu     sync.RWMutex
	closed bool
}

// NewCartService starts workers goroutines. A user is always served by the
// same worker, so that user's commands never interleave.
func NewCartService(carts repository.CartRepositoryInterface, products repository.ProductsRepositoryInterface, workers int, m *metrics.Metrics, logger *logrus.Logger) CartService {
	if workers < 1 {
		workers = 1
	}
	s := &cartService{
		carts:    carts,
		products: products,
		metrics:  m,
		logger:   logger,
		queues:   make([]chan cartCommand, workers),
		quit:     make(chan struct{}),
	}
	for i := range s.queues {
		s.queues[i] = make(chan cartCommand, 64)
		s.wg.Add(1)
		go s.worker(s.queues[i])
	}
	return s
}

func (s *cartService) worker(queue chan cartCommand) {
	defer s.wg.Done()
	for {
		select {
		case cmd := <-queue:
			s.execute(cmd)
		case <-s.quit:
			// nothing can be enqueued any more; finish what was accepted
			for {
				select {
				case cmd := <-queue:
					s.execute(cmd)
				default:
					return
				}
			}
		}
	}
}

func (s *cartService) execute(cmd cartCommand) {
	if err := cmd.ctx.Err(); err != nil {
		cmd.done <- err
		return
	}
	cmd.done <- cmd.run(cmd.ctx)
}

// Close stops accepting commands, runs the ones already queued and waits for
// the workers. Commands submitted afterwards fail with ErrCartClosed.
func (s *cartService) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.quit)
		s.wg.Wait()
	})
}

func (s *cartService) queueFor(userID uuid.UUID) chan cartCommand {
	h := fnv.New32a()
	_, _ = h.Write(userID[:])
	return s.queues[h.Sum32()%uint32(len(s.queues))]
}

func (s *cartService) enqueue(ctx context.Context, userID uuid.UUID, cmd cartCommand) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrCartClosed
	}
	select {
	case s.queueFor(userID) <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// submit runs fn on the user's worker and waits for it. An accepted command
// always gets an answer, even while the service is closing.
func (s *cartService) submit(ctx context.Context, op string, userID uuid.UUID, fn func(ctx context.Context) error) error {
	cmd := cartCommand{ctx: ctx, run: fn, done: make(chan error, 1)}
	if err := s.enqueue(ctx, userID, cmd); err != nil {
		s.metrics.ObserveCartCommand(op, err)
		return err
	}

	var err error
	select {
	case err = <-cmd.done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	s.metrics.ObserveCartCommand(op, err)
	return err
}

func (s *cartService) Exclusive(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context) error) error {
	return s.submit(ctx, "checkout", userID, fn)
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	items, err := s.carts.ListCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return models.NewCart(items), nil
}

// AddItem adds quantity units, merging with an existing line
func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	err := s.submit(ctx, "add", userID, func(ctx context.Context) error {
		return s.addLocked(ctx, userID, productID, quantity)
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *cartService) addLocked(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	product, err := s.saleableProduct(ctx, productID)
	if err != nil {
		return err
	}

	item, err := s.carts.GetCartItem(ctx, userID, productID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		item = &models.CartItem{UserID: userID, ProductID: productID}
	case err != nil:
		return err
	}

	if !product.InStock(item.Quantity + quantity) {
		return ErrOutOfStock
	}
	item.Quantity += quantity
	return s.carts.SaveCartItem(ctx, item)
}

// UpdateItem sets a line's quantity; zero or less removes the line
func (s *cartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}
	err := s.submit(ctx, "update", userID, func(ctx context.Context) error {
		item, err := s.carts.GetCartItem(ctx, userID, productID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCartItemNotFound
			}
			return err
		}
		product, err := s.saleableProduct(ctx, productID)
		if err != nil {
			return err
		}
		if !product.InStock(quantity) {
			return ErrOutOfStock
		}
		item.Quantity = quantity
		return s.carts.SaveCartItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error) {
	err := s.submit(ctx, "remove", userID, func(ctx context.Context) error {
		err := s.carts.DeleteCartItem(ctx, userID, productID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCartItemNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.submit(ctx, "clear", userID, func(ctx context.Context) error {
		return s.carts.ClearCart(ctx, userID)
	})
}

func (s *cartService) GetWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	return s.carts.ListWishlist(ctx, userID)
}

// ToggleWishlist adds the product when absent and removes it when present
func (s *cartService) ToggleWishlist(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistToggleResponse, error) {
	resp := &models.WishlistToggleResponse{ProductID: productID}
	err := s.submit(ctx, "wishlist_toggle", userID, func(ctx context.Context) error {
		present, err := s.carts.WishlistContains(ctx, userID, productID)
		if err != nil {
			return err
		}
		if present {
			resp.InList = false
			return s.carts.RemoveWishlistItem(ctx, userID, productID)
		}
		if _, err := s.products.GetByID(ctx, productID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		resp.InList = true
		return s.carts.AddWishlistItem(ctx, &models.WishlistItem{UserID: userID, ProductID: productID})
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// MoveWishlistToCart adds one unit of each product to the cart and removes
// the moved ones from the wishlist. An empty productIDs moves the whole
// wishlist. Each product succeeds or fails on its own.
func (s *cartService) MoveWishlistToCart(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) ([]models.MoveResult, error) {
	var results []models.MoveResult
	err := s.submit(ctx, "wishlist_move", userID, func(ctx context.Context) error {
		if len(productIDs) == 0 {
			items, err := s.carts.ListWishlist(ctx, userID)
			if err != nil {
				return err
			}
			for _, item := range items {
				productIDs = append(productIDs, item.ProductID)
			}
		}

		results = make([]models.MoveResult, 0, len(productIDs))
		for _, productID := range productIDs {
			result := models.MoveResult{ProductID: productID}
			if err := s.addLocked(ctx, userID, productID, 1); err != nil {
				result.Error = err.Error()
				results = append(results, result)
				continue
			}
			if err := s.carts.RemoveWishlistItem(ctx, userID, productID); err != nil {
				s.logger.WithError(err).WithField("product_id", productID).Warn("Moved item left in wishlist")
			}
			result.Success = true
			results = append(results, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *cartService) saleableProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.Status != models.ProductStatusActive {
		return nil, ErrProductInactive
	}
	return product, nil
}
