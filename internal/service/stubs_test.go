package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"fmcg-admin-api/internal/model"
	"fmcg-admin-api/internal/repository"
	"fmcg-admin-api/internal/ws"

	"gorm.io/gorm"
)

// ---------------------------------------------------------------------------
// Stubs: in-memory repositories, no database needed
// ---------------------------------------------------------------------------

type stubTx struct{}

var _ repository.TxManager = stubTx{}

func (stubTx) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type ledgerRow struct {
	qty       int
	allocated int
	version   int64
}

type historyRecord struct {
	kind      model.LedgerKind
	subjectID uint
	entry     model.LedgerEntry
}

type stubLedger struct {
	mu         sync.Mutex
	rows       map[model.LedgerKind]map[uint]*ledgerRow
	thresholds map[model.LedgerKind]map[uint]int
	history    []historyRecord
	// conflicts makes the next N saves fail the version check.
	conflicts int
	saves     int
}

var _ repository.LedgerRepository = (*stubLedger)(nil)

func newStubLedger() *stubLedger {
	return &stubLedger{
		rows:       map[model.LedgerKind]map[uint]*ledgerRow{},
		thresholds: map[model.LedgerKind]map[uint]int{},
	}
}

func (s *stubLedger) put(kind model.LedgerKind, id uint, qty, allocated int) {
	if s.rows[kind] == nil {
		s.rows[kind] = map[uint]*ledgerRow{}
	}
	s.rows[kind][id] = &ledgerRow{qty: qty, allocated: allocated}
}

func (s *stubLedger) qty(kind model.LedgerKind, id uint) int {
	return s.rows[kind][id].qty
}

func (s *stubLedger) Lock(_ context.Context, _ *gorm.DB, kind model.LedgerKind, id uint) (*model.LedgerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[kind][id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.LedgerState{SubjectID: id, Quantity: row.qty, Allocated: row.allocated, Version: row.version}, nil
}

func (s *stubLedger) Save(_ context.Context, _ *gorm.DB, kind model.LedgerKind, st *model.LedgerState, newQty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.conflicts > 0 {
		s.conflicts--
		return repository.ErrVersionConflict
	}
	row := s.rows[kind][st.SubjectID]
	if row.version != st.Version {
		return repository.ErrVersionConflict
	}
	row.qty = newQty
	row.version++
	st.Quantity = newQty
	st.Version++
	return nil
}

func (s *stubLedger) AppendHistory(_ context.Context, _ *gorm.DB, kind model.LedgerKind, id uint, entry model.LedgerEntry) (*model.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = uint(len(s.history) + 1)
	entry.CreatedAt = time.Now()
	s.history = append(s.history, historyRecord{kind: kind, subjectID: id, entry: entry})
	return &entry, nil
}

func (s *stubLedger) SetThreshold(_ context.Context, kind model.LedgerKind, id uint, threshold int) error {
	if _, ok := s.rows[kind][id]; !ok {
		return gorm.ErrRecordNotFound
	}
	if s.thresholds[kind] == nil {
		s.thresholds[kind] = map[uint]int{}
	}
	s.thresholds[kind][id] = threshold
	return nil
}

type stubStock struct {
	stock      map[uint]*model.StockRecord
	free       map[uint]*model.FreeStockRecord
	createdFor []uint
}

var _ repository.StockRepository = (*stubStock)(nil)

func newStubStock() *stubStock {
	return &stubStock{stock: map[uint]*model.StockRecord{}, free: map[uint]*model.FreeStockRecord{}}
}

func (s *stubStock) ListStock(context.Context) ([]model.StockRecord, error) {
	out := []model.StockRecord{}
	for _, r := range s.stock {
		out = append(out, *r)
	}
	return out, nil
}

func (s *stubStock) FindStock(_ context.Context, id uint) (*model.StockRecord, error) {
	if r, ok := s.stock[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubStock) ListFreeStock(context.Context) ([]model.FreeStockRecord, error) {
	out := []model.FreeStockRecord{}
	for _, r := range s.free {
		out = append(out, *r)
	}
	return out, nil
}

func (s *stubStock) FindFreeStock(_ context.Context, id uint) (*model.FreeStockRecord, error) {
	if r, ok := s.free[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubStock) CreateForProduct(_ context.Context, _ *gorm.DB, id uint) error {
	s.createdFor = append(s.createdFor, id)
	s.stock[id] = &model.StockRecord{ProductID: id, LowStockThreshold: model.DefaultLowStockThreshold}
	s.free[id] = &model.FreeStockRecord{ProductID: id}
	return nil
}

type stubPools struct {
	pools   map[uint]*model.OfferPool
	history []model.OfferPoolHistory
	created []*model.OfferPool
}

var _ repository.OfferPoolRepository = (*stubPools)(nil)

func newStubPools() *stubPools {
	return &stubPools{pools: map[uint]*model.OfferPool{}}
}

func (s *stubPools) Create(_ context.Context, _ *gorm.DB, p *model.OfferPool) error {
	p.ID = uint(len(s.pools) + 1)
	s.pools[p.ID] = p
	s.created = append(s.created, p)
	return nil
}

func (s *stubPools) FindAll(context.Context) ([]model.OfferPool, error) {
	out := []model.OfferPool{}
	for _, p := range s.pools {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubPools) Lock(_ context.Context, _ *gorm.DB, id uint) (*model.OfferPool, error) {
	p, ok := s.pools[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubPools) Save(_ context.Context, _ *gorm.DB, p *model.OfferPool) error {
	stored := s.pools[p.ID]
	if stored.Version != p.Version {
		return repository.ErrVersionConflict
	}
	p.Version++
	cp := *p
	s.pools[p.ID] = &cp
	return nil
}

func (s *stubPools) AppendHistory(_ context.Context, _ *gorm.DB, e *model.OfferPoolHistory) error {
	e.ID = uint(len(s.history) + 1)
	s.history = append(s.history, *e)
	return nil
}

type stubHistory struct{}

var _ repository.HistoryRepository = stubHistory{}

func (stubHistory) ListStock(context.Context, *uint, repository.Page) ([]model.StockHistory, error) {
	return nil, nil
}
func (stubHistory) ListFreeStock(context.Context, *uint, repository.Page) ([]model.FreeStockHistory, error) {
	return nil, nil
}
func (stubHistory) ListExternalItem(context.Context, uint, repository.Page) ([]model.ExternalItemHistory, error) {
	return nil, nil
}
func (stubHistory) ListPool(context.Context, uint, repository.Page) ([]model.OfferPoolHistory, error) {
	return nil, nil
}

type stubOffers struct {
	offers map[uint]*model.Offer
	nextID uint
}

var _ repository.OfferRepository = (*stubOffers)(nil)

func newStubOffers(offers ...*model.Offer) *stubOffers {
	s := &stubOffers{offers: map[uint]*model.Offer{}}
	for _, o := range offers {
		if o.ID == 0 {
			o.ID = s.nextID + 1
		}
		if o.ID > s.nextID {
			s.nextID = o.ID
		}
		s.offers[o.ID] = o
	}
	return s
}

func (s *stubOffers) Create(_ context.Context, _ *gorm.DB, o *model.Offer) error {
	s.nextID++
	o.ID = s.nextID
	s.offers[o.ID] = o
	return nil
}

func (s *stubOffers) sorted() []model.Offer {
	out := []model.Offer{}
	for _, o := range s.offers {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *stubOffers) FindAll(context.Context) ([]model.Offer, error) {
	return s.sorted(), nil
}

func (s *stubOffers) FindByID(_ context.Context, id uint) (*model.Offer, error) {
	o, ok := s.offers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubOffers) UpdateActive(_ context.Context, _ *gorm.DB, id uint, active bool) error {
	o, ok := s.offers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.IsActive = active
	return nil
}

func (s *stubOffers) Delete(_ context.Context, _ *gorm.DB, id uint) error {
	if _, ok := s.offers[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.offers, id)
	return nil
}

func touches(o model.Offer, productID uint) bool {
	return (o.ProductID != nil && *o.ProductID == productID) ||
		(o.FreeItemProductID != nil && *o.FreeItemProductID == productID)
}

func (s *stubOffers) FindActiveTouching(_ context.Context, productID uint, excludeID *uint) ([]model.Offer, error) {
	out := []model.Offer{}
	for _, o := range s.sorted() {
		if o.IsActive && touches(o, productID) && (excludeID == nil || o.ID != *excludeID) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubOffers) FindInactiveFreeItem(_ context.Context, productID uint) ([]model.Offer, error) {
	out := []model.Offer{}
	for _, o := range s.sorted() {
		if !o.IsActive && o.OfferType == model.OfferFreeItem && touches(o, productID) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubOffers) ProductsLosingOffers(_ context.Context, _ *gorm.DB, removed []uint, companyID *uint) ([]uint, error) {
	gone := map[uint]bool{}
	for _, id := range removed {
		gone[id] = true
	}
	seen := map[uint]bool{}
	out := []uint{}
	for _, o := range s.sorted() {
		if o.ProductID == nil || gone[*o.ProductID] || seen[*o.ProductID] {
			continue
		}
		byFreeItem := o.FreeItemProductID != nil && gone[*o.FreeItemProductID]
		byCompany := companyID != nil && o.CompanyID != nil && *o.CompanyID == *companyID
		if byFreeItem || byCompany {
			seen[*o.ProductID] = true
			out = append(out, *o.ProductID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *stubOffers) CountByExternalItem(_ context.Context, itemID uint) (int64, error) {
	var n int64
	for _, o := range s.offers {
		if o.ExternalItemID != nil && *o.ExternalItemID == itemID {
			n++
		}
	}
	return n, nil
}

type stubProducts struct {
	products map[uint]*model.Product
	synced   []uint
	// offers, when set, gets the cascade a real product delete causes and
	// drives SyncHasOffer.
	offers *stubOffers
}

var _ repository.ProductRepository = (*stubProducts)(nil)

func newStubProducts(products ...*model.Product) *stubProducts {
	s := &stubProducts{products: map[uint]*model.Product{}}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *stubProducts) Create(_ context.Context, _ *gorm.DB, p *model.Product) error {
	p.ID = uint(len(s.products) + 1)
	s.products[p.ID] = p
	return nil
}

func (s *stubProducts) FindAll(context.Context) ([]model.Product, error) {
	out := []model.Product{}
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubProducts) FindByID(_ context.Context, id uint) (*model.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubProducts) Update(_ context.Context, p *model.Product) error {
	s.products[p.ID] = p
	return nil
}

func (s *stubProducts) Delete(_ context.Context, _ *gorm.DB, id uint) error {
	if _, ok := s.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.products, id)
	if s.offers != nil {
		for oid, o := range s.offers.offers {
			if touches(*o, id) {
				delete(s.offers.offers, oid)
			}
		}
	}
	return nil
}

func (s *stubProducts) IDsByCompany(_ context.Context, _ *gorm.DB, companyID uint) ([]uint, error) {
	ids := []uint{}
	for id, p := range s.products {
		if p.CompanyID == companyID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *stubProducts) SetHasOffer(_ context.Context, id uint, v bool) error {
	p, ok := s.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.HasOffer = v
	return nil
}

func (s *stubProducts) SyncHasOffer(_ context.Context, _ *gorm.DB, id uint) error {
	s.synced = append(s.synced, id)
	if p, ok := s.products[id]; ok && s.offers != nil {
		p.HasOffer = false
		for _, o := range s.offers.offers {
			if o.IsActive && o.ProductID != nil && *o.ProductID == id {
				p.HasOffer = true
			}
		}
	}
	return nil
}

type stubItems struct {
	items map[uint]*model.ExternalItem
}

var _ repository.ExternalItemRepository = (*stubItems)(nil)

func newStubItems(items ...*model.ExternalItem) *stubItems {
	s := &stubItems{items: map[uint]*model.ExternalItem{}}
	for _, it := range items {
		s.items[it.ID] = it
	}
	return s
}

func (s *stubItems) Create(_ context.Context, it *model.ExternalItem) error {
	it.ID = uint(len(s.items) + 1)
	s.items[it.ID] = it
	return nil
}

func (s *stubItems) FindAll(context.Context) ([]model.ExternalItem, error) {
	out := []model.ExternalItem{}
	for _, it := range s.items {
		out = append(out, *it)
	}
	return out, nil
}

func (s *stubItems) FindByID(_ context.Context, id uint) (*model.ExternalItem, error) {
	it, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return it, nil
}

func (s *stubItems) Delete(_ context.Context, id uint) error {
	if _, ok := s.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.items, id)
	return nil
}

type stubActivator struct {
	offers []model.Offer
	asked  []uint
}

func (s *stubActivator) FindActivatable(_ context.Context, productID uint) ([]model.Offer, error) {
	s.asked = append(s.asked, productID)
	return s.offers, nil
}

type recorder struct {
	events []ws.Event
}

func (r *recorder) Publish(e ws.Event) { r.events = append(r.events, e) }

func ptr[T any](v T) *T { return &v }
