package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Produits ---

type memProducts struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.Product
	last  store.ProductQuery
}

func newMemProducts() *memProducts {
	return &memProducts{items: map[primitive.ObjectID]models.Product{}}
}

func (m *memProducts) Create(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.items {
		if other.Name == p.Name {
			return apperr.Conflict("Un produit avec ce nom existe déjà")
		}
	}
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	m.items[p.ID] = *p
	return nil
}

func (m *memProducts) Get(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("Produit introuvable")
	}
	return &p, nil
}

func (m *memProducts) GetMany(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[primitive.ObjectID]models.Product{}
	for _, id := range ids {
		if p, ok := m.items[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *memProducts) List(_ context.Context, q store.ProductQuery) ([]models.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = q
	var all []models.Product
	for _, p := range m.items {
		if q.Category != nil && p.Category != *q.Category {
			continue
		}
		if q.IDs != nil && !containsID(q.IDs, p.ID) {
			continue
		}
		if q.Text != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Text)) {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := int64(len(all))
	start := min(int(q.Skip), len(all))
	end := min(start+int(q.Limit), len(all))
	return all[start:end], total, nil
}

func (m *memProducts) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("Produit introuvable")
	}
	for k, v := range set {
		switch k {
		case "name":
			p.Name = v.(string)
		case "price":
			p.Price = v.(float64)
		case "discount":
			p.Discount = v.(float64)
		case "stock":
			p.Stock = v.(int)
		case "category":
			p.Category = v.(primitive.ObjectID)
		case "description":
			p.Description = v.(string)
		}
	}
	m.items[id] = p
	return &p, nil
}

func (m *memProducts) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return apperr.NotFound("Produit introuvable")
	}
	delete(m.items, id)
	return nil
}

func (m *memProducts) CountByCategory(_ context.Context, cat primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.items {
		if p.Category == cat {
			n++
		}
	}
	return n, nil
}

func (m *memProducts) DeleteByCategory(_ context.Context, cat primitive.ObjectID) ([]primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []primitive.ObjectID
	for id, p := range m.items {
		if p.Category == cat {
			ids = append(ids, id)
			delete(m.items, id)
		}
	}
	return ids, nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// --- Catégories ---

type memCategories struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.Category
	lists int
}

func newMemCategories() *memCategories {
	return &memCategories{items: map[primitive.ObjectID]models.Category{}}
}

func (m *memCategories) Create(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = primitive.NewObjectID()
	m.items[c.ID] = *c
	return nil
}

func (m *memCategories) Get(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("Catégorie introuvable")
	}
	return &c, nil
}

func (m *memCategories) List(context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	out := []models.Category{}
	for _, c := range m.items {
		out = append(out, c)
	}
	return out, nil
}

func (m *memCategories) Update(_ context.Context, id primitive.ObjectID, in models.CategoryInput) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("Catégorie introuvable")
	}
	c.Name, c.CoverPhoto = in.Name, in.CoverPhoto
	m.items[id] = c
	return &c, nil
}

func (m *memCategories) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return apperr.NotFound("Catégorie introuvable")
	}
	delete(m.items, id)
	return nil
}

// --- Avis ---

type memReviews struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.Review
}

func newMemReviews() *memReviews {
	return &memReviews{items: map[primitive.ObjectID]models.Review{}}
}

func (m *memReviews) Create(_ context.Context, r *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = primitive.NewObjectID()
	m.items[r.ID] = *r
	return nil
}

func (m *memReviews) ListByProduct(_ context.Context, product primitive.ObjectID) ([]models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Review{}
	for _, r := range m.items {
		if r.Product == product {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReviews) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return apperr.NotFound("Avis introuvable")
	}
	delete(m.items, id)
	return nil
}

func (m *memReviews) DeleteByProducts(_ context.Context, products []primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.items {
		if containsID(products, r.Product) {
			delete(m.items, id)
		}
	}
	return nil
}

// --- Commandes ---

type memOrders struct {
	mu          sync.Mutex
	items       map[primitive.ObjectID]models.Order
	paidUpdates int
	failMark    map[primitive.ObjectID]bool
}

func newMemOrders() *memOrders {
	return &memOrders{items: map[primitive.ObjectID]models.Order{}, failMark: map[primitive.ObjectID]bool{}}
}

func (m *memOrders) Create(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = primitive.NewObjectID()
	o.CreatedAt = time.Now()
	m.items[o.ID] = cloneOrder(*o)
	return nil
}

func (m *memOrders) Get(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("Commande introuvable")
	}
	o = cloneOrder(o)
	return &o, nil
}

func (m *memOrders) List(context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for _, o := range m.items {
		out = append(out, cloneOrder(o))
	}
	return out, nil
}

func (m *memOrders) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return apperr.NotFound("Commande introuvable")
	}
	delete(m.items, id)
	return nil
}

func (m *memOrders) MarkPaid(_ context.Context, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.items[id]
	if !ok {
		return false, apperr.NotFound("Commande introuvable")
	}
	if o.Paid {
		return false, nil
	}
	o.Paid = true
	m.paidUpdates++
	m.items[id] = o
	return true, nil
}

func (m *memOrders) MarkReminderSent(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failMark[id] {
		return errors.New("écriture refusée")
	}
	o, ok := m.items[id]
	if !ok {
		return apperr.NotFound("Commande introuvable")
	}
	o.ReminderSent = true
	m.items[id] = o
	return nil
}

func (m *memOrders) ListPendingReminders(context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for _, o := range m.items {
		if !o.Paid && !o.ReminderSent {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (m *memOrders) put(o models.Order) models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	m.items[o.ID] = cloneOrder(o)
	return o
}

func (m *memOrders) get(id primitive.ObjectID) models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneOrder(m.items[id])
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderLine(nil), o.Items...)
	return o
}

// --- Feedback & newsletter ---

type memFeedback struct {
	items []models.Feedback
}

func (m *memFeedback) Create(_ context.Context, f *models.Feedback) error {
	f.ID = primitive.NewObjectID()
	m.items = append(m.items, *f)
	return nil
}

func (m *memFeedback) List(context.Context) ([]models.Feedback, error) {
	return append([]models.Feedback{}, m.items...), nil
}

func (m *memFeedback) Archive(_ context.Context, id primitive.ObjectID) (*models.Feedback, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Archived = true
			f := m.items[i]
			return &f, nil
		}
	}
	return nil, apperr.NotFound("Feedback introuvable")
}

type memMailOffers struct {
	emails map[string]bool
}

func (m *memMailOffers) Create(_ context.Context, o *models.MailOffer) error {
	if m.emails[o.Email] {
		return apperr.Conflict("Cet email est déjà inscrit")
	}
	m.emails[o.Email] = true
	o.ID = primitive.NewObjectID()
	return nil
}

func (m *memMailOffers) DeleteByEmail(_ context.Context, email string) error {
	if !m.emails[email] {
		return apperr.NotFound("Email non inscrit")
	}
	delete(m.emails, email)
	return nil
}

// --- Collaborateurs externes ---

type fakeGateway struct {
	mu       sync.Mutex
	requests []SessionRequest
	failFor  map[string]bool
}

func (g *fakeGateway) CreateSession(_ context.Context, req SessionRequest) (*CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failFor[req.OrderID] {
		return nil, errors.New("stripe indisponible")
	}
	g.requests = append(g.requests, req)
	n := len(g.requests)
	return &CheckoutSession{
		ID:  fmt.Sprintf("cs_test_%d", n),
		URL: fmt.Sprintf("https://checkout.stripe.test/pay/cs_test_%d", n),
	}, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (a *recordingAudit) Record(_ context.Context, e models.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeSearch struct {
	indexed map[string]string
	ids     []string
	err     error
}

func newFakeSearch() *fakeSearch { return &fakeSearch{indexed: map[string]string{}} }

func (f *fakeSearch) Index(_ context.Context, p models.Product) error {
	f.indexed[p.ID.Hex()] = p.Name
	return nil
}

func (f *fakeSearch) Delete(_ context.Context, id string) error {
	delete(f.indexed, id)
	return nil
}

func (f *fakeSearch) Search(context.Context, string, int) ([]string, error) {
	return f.ids, f.err
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
	failOn  string
}

func newMemStorage() *memStorage { return &memStorage{objects: map[string][]byte{}} }

func (s *memStorage) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.failOn != "" && strings.HasPrefix(key, s.failOn) {
		return "", errors.New("bucket indisponible")
	}
	s.objects[key] = data
	return "https://cdn.furniro.test/uploads/" + key, nil
}

func (s *memStorage) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

type fakeMailingList struct {
	subscribed   []string
	unsubscribed []string
	err          error
}

func (f *fakeMailingList) Subscribe(_ context.Context, email string) error {
	f.subscribed = append(f.subscribed, email)
	return f.err
}

func (f *fakeMailingList) Unsubscribe(_ context.Context, email string) error {
	f.unsubscribed = append(f.unsubscribed, email)
	return f.err
}
