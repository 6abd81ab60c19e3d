package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memCategoryStore is an in-memory CategoryStore.
type memCategoryStore struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Category
	seq  []primitive.ObjectID
}

func newMemCategoryStore() *memCategoryStore {
	return &memCategoryStore{byID: map[primitive.ObjectID]models.Category{}}
}

func (m *memCategoryStore) Create(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Name == c.Name && sameParent(existing.Parent, c.Parent) {
			return repositories.ErrDuplicate
		}
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	m.byID[c.ID] = *c
	m.seq = append(m.seq, c.ID)
	return nil
}

func (m *memCategoryStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (m *memCategoryStore) FindByNameAndParent(_ context.Context, name string, parent *primitive.ObjectID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.seq {
		c, ok := m.byID[id]
		if ok && c.Name == name && sameParent(c.Parent, parent) {
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memCategoryStore) List(_ context.Context, filter models.CategoryFilter) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Category{}
	for _, id := range m.seq {
		c, ok := m.byID[id]
		if !ok {
			continue
		}
		if filter.Level > 0 && c.Level != filter.Level {
			continue
		}
		if filter.Parent != nil && !sameParent(c.Parent, filter.Parent) {
			continue
		}
		if filter.Roots && c.Parent != nil {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m *memCategoryStore) Update(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.byID[c.ID] = *c
	return nil
}

func (m *memCategoryStore) FindDescendantIDs(_ context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []primitive.ObjectID
	for _, cid := range m.seq {
		if c, ok := m.byID[cid]; ok && containsID(c.Ancestors, id) {
			ids = append(ids, cid)
		}
	}
	return ids, nil
}

func (m *memCategoryStore) DeleteMany(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := m.byID[id]; ok {
			delete(m.byID, id)
			n++
		}
	}
	return n, nil
}

func (m *memCategoryStore) UpdateOrder(_ context.Context, id primitive.ObjectID, order int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.Order = order
	m.byID[id] = c
	return nil
}

func (m *memCategoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// countingCache records how often the tree cache was invalidated.
type countingCache struct {
	tree        []*models.CategoryNode
	hit         bool
	invalidated int
}

func (c *countingCache) Get(context.Context) ([]*models.CategoryNode, bool) { return c.tree, c.hit }
func (c *countingCache) Set(_ context.Context, tree []*models.CategoryNode) {
	c.tree = tree
	c.hit = true
}
func (c *countingCache) Invalidate(context.Context) {
	c.tree = nil
	c.hit = false
	c.invalidated++
}

// memPromotionStore is an in-memory PromotionStore.
type memPromotionStore struct {
	mu     sync.Mutex
	promos map[primitive.ObjectID]*models.Promotion
}

func newMemPromotionStore(promos ...*models.Promotion) *memPromotionStore {
	m := &memPromotionStore{promos: map[primitive.ObjectID]*models.Promotion{}}
	for _, p := range promos {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		m.promos[p.ID] = p
	}
	return m
}

func (m *memPromotionStore) Create(_ context.Context, p *models.Promotion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.promos {
		if existing.Name == p.Name {
			return repositories.ErrDuplicate
		}
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	cp := *p
	m.promos[p.ID] = &cp
	return nil
}

func (m *memPromotionStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.promos[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPromotionStore) FindActiveByName(_ context.Context, code string, now time.Time) (*models.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.promos {
		if p.Name == code && p.IsActive && !now.Before(p.StartDate) && !now.After(p.EndDate) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memPromotionStore) List(_ context.Context, activeOnly bool, now time.Time) ([]models.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Promotion{}
	for _, p := range m.promos {
		if activeOnly && (!p.IsActive || now.Before(p.StartDate) || now.After(p.EndDate)) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *memPromotionStore) Update(_ context.Context, p *models.Promotion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.promos[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *p
	m.promos[p.ID] = &cp
	return nil
}

func (m *memPromotionStore) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.promos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.promos, id)
	return nil
}

func (m *memPromotionStore) IncrementUsage(_ context.Context, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.promos[id]
	if !ok {
		return false, nil
	}
	if p.UsageLimit != nil && p.UsedCount >= *p.UsageLimit {
		return false, nil
	}
	p.UsedCount++
	return true, nil
}

func (m *memPromotionStore) DecrementUsage(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.promos[id]; ok && p.UsedCount > 0 {
		p.UsedCount--
	}
	return nil
}

// memProductStore is an in-memory ProductStore.
type memProductStore struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*models.Product
}

func newMemProductStore(products ...*models.Product) *memProductStore {
	m := &memProductStore{products: map[primitive.ObjectID]*models.Product{}}
	for _, p := range products {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		m.products[p.ID] = p
	}
	return m
}

func (m *memProductStore) Create(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memProductStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProductStore) List(_ context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Product{}
	for _, p := range m.products {
		if filter.Vendor != nil && (p.Vendor == nil || *p.Vendor != *filter.Vendor) {
			continue
		}
		if filter.Category != nil && p.Category != *filter.Category {
			continue
		}
		if filter.Brand != nil && (p.Brand == nil || *p.Brand != *filter.Brand) {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (m *memProductStore) Update(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memProductStore) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memProductStore) IDsByVendor(_ context.Context, vendor primitive.ObjectID) ([]primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := []primitive.ObjectID{}
	for id, p := range m.products {
		if p.Vendor != nil && *p.Vendor == vendor {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *memProductStore) DecrementStock(_ context.Context, id primitive.ObjectID, q int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok || p.Quantity < q {
		return false, nil
	}
	p.Quantity -= q
	p.Sold += q
	return true, nil
}

func (m *memProductStore) RestoreStock(_ context.Context, id primitive.ObjectID, q int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[id]; ok {
		p.Quantity += q
		p.Sold -= q
	}
	return nil
}

func (m *memProductStore) UpdateRatings(_ context.Context, id primitive.ObjectID, average float64, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p.RatingsAverage, p.RatingsQuantity = average, count
	return nil
}

func (m *memProductStore) CountByBrand(_ context.Context, brand primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.products {
		if p.Brand != nil && *p.Brand == brand {
			n++
		}
	}
	return n, nil
}

func (m *memProductStore) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.products)), nil
}

func (m *memProductStore) CountLowStock(_ context.Context, threshold int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.products {
		if p.Quantity < threshold {
			n++
		}
	}
	return n, nil
}

// memOrderStore is an in-memory OrderStore.
type memOrderStore struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]*models.Order
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{orders: map[primitive.ObjectID]*models.Order{}}
}

func (m *memOrderStore) Create(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memOrderStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderStore) FindByReference(_ context.Context, reference string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.PaymentReference == reference {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memOrderStore) List(_ context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for _, o := range m.orders {
		if filter.User != nil && o.User != *filter.User {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (m *memOrderStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status, tracking string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.Status == models.OrderStatusCancelled {
		return nil, repositories.ErrNotFound
	}
	o.Status = status
	if status == models.OrderStatusDelivered {
		now := time.Now()
		o.IsDelivered = true
		o.DeliveredAt = &now
	}
	if tracking != "" {
		o.TrackingNumber = tracking
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderStore) MarkPaid(_ context.Context, id primitive.ObjectID, result models.PaymentResult) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.IsPaid || o.Status == models.OrderStatusCancelled {
		return false, nil
	}
	now := time.Now()
	o.IsPaid = true
	o.PaidAt = &now
	o.Status = models.OrderStatusProcessing
	o.PaymentResult = &result
	return true, nil
}

func (m *memOrderStore) HasDeliveredItem(_ context.Context, userID, productID primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.User != userID || o.Status != models.OrderStatusDelivered {
			continue
		}
		for _, item := range o.OrderItems {
			if item.Product == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *memOrderStore) SetPaymentReference(_ context.Context, id primitive.ObjectID, provider, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return repositories.ErrNotFound
	}
	o.PaymentProvider = provider
	o.PaymentReference = reference
	return nil
}

// recordingNotifier captures notifications instead of delivering them.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingNotifier) Notify(_ context.Context, userID primitive.ObjectID, kind, title, message string, data map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, kind+":"+message)
	return nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []models.OrderEvent
}

func (r *recordingPublisher) Publish(_ context.Context, e models.OrderEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingPublisher) Close() {}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// memUserStore is an in-memory user store.
type memUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserStore(users ...*models.User) *memUserStore {
	m := &memUserStore{users: map[primitive.ObjectID]*models.User{}}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		m.users[u.ID] = u
	}
	return m
}

func (m *memUserStore) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repositories.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memUserStore) UpdateRole(_ context.Context, id primitive.ObjectID, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Role = role
	return nil
}

func (m *memUserStore) UpdateFCMToken(_ context.Context, id primitive.ObjectID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.FCMToken = token
	return nil
}

func (m *memUserStore) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// memVendorStore keeps vendors and invitations in memory.
type memVendorStore struct {
	mu          sync.Mutex
	vendors     map[primitive.ObjectID]*models.Vendor
	invitations map[primitive.ObjectID]*models.VendorInvitation
}

func newMemVendorStore() *memVendorStore {
	return &memVendorStore{
		vendors:     map[primitive.ObjectID]*models.Vendor{},
		invitations: map[primitive.ObjectID]*models.VendorInvitation{},
	}
}

func (m *memVendorStore) Create(_ context.Context, v *models.Vendor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	cp := *v
	m.vendors[v.ID] = &cp
	return nil
}

func (m *memVendorStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vendors[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *memVendorStore) ListDetails(_ context.Context, status string) ([]models.VendorDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.VendorDetails{}
	for _, v := range m.vendors {
		if status == "" || v.Status == status {
			out = append(out, models.VendorDetails{Vendor: *v})
		}
	}
	return out, nil
}

func (m *memVendorStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) (*models.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vendors[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	v.Status = status
	cp := *v
	return &cp, nil
}

func (m *memVendorStore) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vendors[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.vendors, id)
	return nil
}

func (m *memVendorStore) CreateInvitation(_ context.Context, inv *models.VendorInvitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	cp := *inv
	m.invitations[inv.ID] = &cp
	return nil
}

func (m *memVendorStore) FindInvitationByID(_ context.Context, id primitive.ObjectID) (*models.VendorInvitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invitations[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *memVendorStore) findPending(match func(*models.VendorInvitation) bool, now time.Time) (*models.VendorInvitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.invitations {
		if inv.Status == models.InvitationPending && inv.ExpiresAt.After(now) && match(inv) {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memVendorStore) FindPendingInvitation(_ context.Context, email string, now time.Time) (*models.VendorInvitation, error) {
	return m.findPending(func(inv *models.VendorInvitation) bool { return inv.Email == email }, now)
}

func (m *memVendorStore) FindInvitationByToken(_ context.Context, token string, now time.Time) (*models.VendorInvitation, error) {
	return m.findPending(func(inv *models.VendorInvitation) bool { return inv.Token == token }, now)
}

func (m *memVendorStore) AcceptInvitation(_ context.Context, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invitations[id]
	if !ok || inv.Status != models.InvitationPending {
		return false, nil
	}
	inv.Status = models.InvitationAccepted
	return true, nil
}

func (m *memVendorStore) ExpireInvitations(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, inv := range m.invitations {
		if inv.Status == models.InvitationPending && !inv.ExpiresAt.After(now) {
			inv.Status = models.InvitationExpired
			n++
		}
	}
	return n, nil
}

// recordingMailer captures sent emails.
type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

type sentMail struct {
	to, subject, html string
}

func (r *recordingMailer) Send(to, subject, html string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, sentMail{to: to, subject: subject, html: html})
	return nil
}

type fakeImages struct {
	saved   []string
	removed []string
	err     error
}

func (f *fakeImages) SaveImage(_ []byte, filename, subDir string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	url := "/uploads/" + subDir + "/" + filename
	f.saved = append(f.saved, url)
	return url, nil
}

func (f *fakeImages) RemoveImage(url string) error {
	f.removed = append(f.removed, url)
	return nil
}

// memBrandStore is an in-memory BrandStore with a unique slug.
type memBrandStore struct {
	mu     sync.Mutex
	brands map[primitive.ObjectID]*models.Brand
}

func newMemBrandStore() *memBrandStore {
	return &memBrandStore{brands: map[primitive.ObjectID]*models.Brand{}}
}

func (m *memBrandStore) slugTaken(b *models.Brand) bool {
	for _, other := range m.brands {
		if other.ID != b.ID && other.Slug == b.Slug {
			return true
		}
	}
	return false
}

func (m *memBrandStore) Create(_ context.Context, b *models.Brand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if m.slugTaken(b) {
		return repositories.ErrDuplicate
	}
	cp := *b
	m.brands[b.ID] = &cp
	return nil
}

func (m *memBrandStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Brand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.brands[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBrandStore) List(context.Context) ([]models.Brand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Brand{}
	for _, b := range m.brands {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memBrandStore) Update(_ context.Context, b *models.Brand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.brands[b.ID]; !ok {
		return repositories.ErrNotFound
	}
	if m.slugTaken(b) {
		return repositories.ErrDuplicate
	}
	cp := *b
	m.brands[b.ID] = &cp
	return nil
}

func (m *memBrandStore) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.brands[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.brands, id)
	return nil
}
