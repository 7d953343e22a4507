package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/Skotchmaster/farmconnect/internal/ministry"
	"github.com/Skotchmaster/farmconnect/internal/models"
	"github.com/Skotchmaster/farmconnect/internal/recipe"
	"github.com/Skotchmaster/farmconnect/internal/store"
	"github.com/Skotchmaster/farmconnect/internal/transport"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	// ErrNoChange means the store ignored the action because a
	// precondition was not met.
	ErrNoChange = errors.New("nothing changed")
	ErrNoUser   = fmt.Errorf("%w: no active user", ErrNoChange)
)

const (
	defaultUnit      = "kg"
	placeholderImage = "https://picsum.photos/400/400?random=%d"
)

type ImageResolver interface {
	Resolve(ctx context.Context, uri string) string
}

type passthroughImages struct{}

func (passthroughImages) Resolve(_ context.Context, uri string) string { return uri }

// FarmService is the use-case layer the HTTP handlers talk to. It turns
// requests into store actions and reports ignored actions as errors.
type FarmService struct {
	Store    *store.Store
	Images   ImageResolver
	Recipes  recipe.Generator
	Ministry ministry.Authority
}

func (s *FarmService) images() ImageResolver {
	if s.Images == nil {
		return passthroughImages{}
	}
	return s.Images
}

func (s *FarmService) currentUser() (models.User, error) {
	u := s.Store.Snapshot().User
	if u == nil {
		return models.User{}, ErrNoUser
	}
	return *u, nil
}

func (s *FarmService) Login(req transport.LoginRequest) models.User {
	return s.Store.Login(req.Role, req.Name)
}

func (s *FarmService) Logout() {
	s.Store.Logout()
}

func (s *FarmService) Me() (models.User, error) {
	return s.currentUser()
}

// UpdateMe edits the profile fields of the active user; id and role stay.
func (s *FarmService) UpdateMe(req transport.UpdateUserRequest) (models.User, error) {
	u, err := s.currentUser()
	if err != nil {
		return models.User{}, err
	}
	u.Name = req.Name
	u.Email = req.Email
	u.Location = req.Location
	s.Store.UpdateUser(u)
	return u, nil
}

func (s *FarmService) ListProducts(q transport.CatalogQuery) ([]models.Product, error) {
	if !store.ValidSort(q.Sort) {
		return nil, fmt.Errorf("%w: unknown sort %q", ErrValidation, q.Sort)
	}
	return store.QueryProducts(s.Store.Snapshot().Products, store.CatalogQuery{
		Search:   q.Search,
		Category: q.Category,
		Sort:     store.SortOption(q.Sort),
	}), nil
}

func (s *FarmService) GetProduct(id string) (models.Product, error) {
	p, ok := store.FindProduct(s.Store.Snapshot().Products, id)
	if !ok {
		return models.Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return p, nil
}

// CreateProduct lists a product for the active farmer. Device-local images
// are copied into the image store first.
func (s *FarmService) CreateProduct(ctx context.Context, req transport.ProductRequest) (models.Product, error) {
	u, err := s.currentUser()
	if err != nil {
		return models.Product{}, err
	}

	p := productFrom(req)
	if p.Image == "" {
		p.Image = fmt.Sprintf(placeholderImage, rand.IntN(1000))
	}
	p.Image = s.images().Resolve(ctx, p.Image)
	p.FarmerID = u.ID
	p.FarmerName = u.Name
	if p.Location == "" {
		p.Location = store.DefaultProductLocation
	}
	return s.Store.AddProduct(p), nil
}

// UpdateProduct replaces the editable fields of product id. Farmer and
// location are kept from the stored product unless given.
func (s *FarmService) UpdateProduct(ctx context.Context, id string, req transport.ProductRequest) (models.Product, error) {
	cur, err := s.GetProduct(id)
	if err != nil {
		return models.Product{}, err
	}

	p := productFrom(req)
	p.FarmerID = cur.FarmerID
	p.FarmerName = cur.FarmerName
	if p.Location == "" {
		p.Location = cur.Location
	}
	if p.Image == "" {
		p.Image = cur.Image
	}
	p.Image = s.images().Resolve(ctx, p.Image)

	if !s.Store.UpdateProduct(id, p) {
		return models.Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return s.GetProduct(id)
}

func (s *FarmService) DeleteProduct(id string) error {
	if !s.Store.DeleteProduct(id) {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *FarmService) FarmerProducts() ([]transport.FarmerProduct, error) {
	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	products := store.FarmerProducts(s.Store.Snapshot().Products, u.ID)
	out := make([]transport.FarmerProduct, 0, len(products))
	for _, p := range products {
		out = append(out, transport.FarmerProduct{Product: p, LowStock: store.IsLowStock(p)})
	}
	return out, nil
}

func (s *FarmService) Recipe(ctx context.Context, productID string) (transport.RecipeResponse, error) {
	p, err := s.GetProduct(productID)
	if err != nil {
		return transport.RecipeResponse{}, err
	}
	return transport.RecipeResponse{ProductID: p.ID, Recipe: s.Recipes.Generate(ctx, p.Name)}, nil
}

func (s *FarmService) Cart() transport.CartResponse {
	cart := s.Store.Snapshot().Cart
	return transport.CartResponse{
		Items: cart,
		Count: store.CartCount(cart),
		Total: store.CartTotal(cart),
	}
}

func (s *FarmService) AddToCart(productID string) (transport.CartResponse, error) {
	p, err := s.GetProduct(productID)
	if err != nil {
		return transport.CartResponse{}, err
	}
	s.Store.AddToCart(p)
	return s.Cart(), nil
}

func (s *FarmService) RemoveFromCart(productID string) (transport.CartResponse, error) {
	if !s.Store.RemoveFromCart(productID) {
		return transport.CartResponse{}, fmt.Errorf("cart item %s: %w", productID, ErrNotFound)
	}
	return s.Cart(), nil
}

// PlaceOrder reports queued=true when the order went to the offline queue.
func (s *FarmService) PlaceOrder() (order models.Order, queued bool, err error) {
	if _, err := s.currentUser(); err != nil {
		return models.Order{}, false, err
	}
	order, queued, ok := s.Store.Checkout()
	if !ok {
		return models.Order{}, false, fmt.Errorf("%w: cart is empty", ErrNoChange)
	}
	return order, queued, nil
}

func (s *FarmService) Orders() ([]models.Order, error) {
	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	return store.BuyerOrders(s.Store.Snapshot().Orders, u.ID), nil
}

func (s *FarmService) UpdateOrderStatus(id string, status models.OrderStatus) (models.Order, error) {
	if !s.Store.UpdateOrderStatus(id, status) {
		return models.Order{}, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	o, _ := store.FindOrder(s.Store.Snapshot().Orders, id)
	return o, nil
}

func (s *FarmService) Reorder(id string) (transport.CartResponse, error) {
	o, ok := store.FindOrder(s.Store.Snapshot().Orders, id)
	if !ok {
		return transport.CartResponse{}, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	s.Store.ReorderItems(o.Items)
	return s.Cart(), nil
}

func (s *FarmService) SyncOfflineOrders(ctx context.Context) (int, error) {
	return s.Store.SyncOfflineOrders(ctx)
}

func (s *FarmService) SendMessage(req transport.SendMessageRequest) (models.Message, error) {
	m, ok := s.Store.SendMessage(req.ReceiverID, req.Text)
	if !ok {
		return models.Message{}, ErrNoUser
	}
	return m, nil
}

func (s *FarmService) Thread(partnerID string) ([]models.Message, error) {
	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	return store.Thread(s.Store.Snapshot().Messages, u.ID, partnerID), nil
}

func (s *FarmService) Conversations() ([]transport.Conversation, error) {
	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	st := s.Store.Snapshot()
	partners := store.ConversationPartners(st.Messages, u.ID)
	out := make([]transport.Conversation, 0, len(partners))
	for _, id := range partners {
		c := transport.Conversation{PartnerID: id, PartnerName: store.PartnerName(st.Products, id)}
		if thread := store.Thread(st.Messages, u.ID, id); len(thread) > 0 {
			last := thread[len(thread)-1]
			c.LastMessage = &last
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *FarmService) VerifyFarmer(ctx context.Context, nationalID string) (*ministry.Farmer, error) {
	f, err := s.Ministry.VerifyFarmer(ctx, nationalID)
	if errors.Is(err, ministry.ErrInvalidNationalID) {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("farmer %s: %w", nationalID, ErrNotFound)
	}
	return f, nil
}

func productFrom(req transport.ProductRequest) models.Product {
	p := models.Product{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Unit:        req.Unit,
		Quantity:    req.Quantity,
		Description: req.Description,
		Image:       req.Image,
		Location:    req.Location,
	}
	if p.Category == "" {
		p.Category = models.CategoryVegetables
	}
	if p.Unit == "" {
		p.Unit = defaultUnit
	}
	return p
}

// RegisterWithMinistry submits a listed product to the registry and returns
// the issued origin certificate.
func (s *FarmService) RegisterWithMinistry(ctx context.Context, productID string) (ministry.Product, error) {
	p, err := s.GetProduct(productID)
	if err != nil {
		return ministry.Product{}, err
	}
	mp := ministry.Product{
		ID:       p.ID,
		Name:     p.Name,
		Category: string(p.Category),
		Price:    p.Price,
		Unit:     p.Unit,
	}
	if mp.OriginCertificate, err = s.Ministry.RegisterProduct(ctx, mp); err != nil {
		return ministry.Product{}, fmt.Errorf("register product %s: %w", p.ID, err)
	}
	if mp.SubsidyEligible, err = s.Ministry.CheckSubsidyEligibility(ctx, p.ID); err != nil {
		return ministry.Product{}, fmt.Errorf("check subsidy %s: %w", p.ID, err)
	}
	return mp, nil
}
