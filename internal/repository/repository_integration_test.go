//go:build integration

// Repository tests against a real Postgres started with testcontainers.
// Run with: go test -tags integration ./internal/repository/... -v
package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"fmcg-admin-api/internal/model"
	"fmcg-admin-api/internal/repository"
	"fmcg-admin-api/internal/service"
	"fmcg-admin-api/pkg/database"
	"fmcg-admin-api/pkg/pin"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("fmcg_test"),
		tcPostgres.WithUsername("fmcg"),
		tcPostgres.WithPassword("fmcg"),
		tcPostgres.BasicWaitStrategies(),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("start postgres container")
	}

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatal().Err(err).Msg("postgres dsn")
	}
	testDB, err = database.ConnectDB(dsn, "error")
	if err != nil {
		log.Fatal().Err(err).Msg("connect")
	}
	if err := database.Migrate(testDB); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	code := m.Run()
	_ = pgC.Terminate(ctx)
	os.Exit(code)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func reset(t *testing.T) {
	t.Helper()
	require.NoError(t, testDB.Exec(`TRUNCATE companies, products, stock, free_stock, external_items,
		stock_history, free_stock_history, external_item_stock_history,
		offers, offer_pool, offer_pool_history, customers RESTART IDENTITY CASCADE`).Error)
}

func seedCompany(t *testing.T, name string) *model.Company {
	t.Helper()
	c := &model.Company{CompanyName: name}
	require.NoError(t, repository.NewCompanyRepo(testDB).Create(context.Background(), c))
	return c
}

func seedProduct(t *testing.T, companyID uint, name string, stock int) *model.Product {
	t.Helper()
	ctx := context.Background()
	p := &model.Product{
		CompanyID:     companyID,
		ProductName:   name,
		ProductImages: []string{"https://cdn.test/" + name + ".png"},
		MRP:           decimal.NewFromInt(100),
		BuyingPrice:   decimal.NewFromInt(80),
		SellingPrice:  decimal.NewFromInt(95),
	}
	require.NoError(t, repository.NewProductRepo(testDB).Create(ctx, nil, p))
	require.NoError(t, repository.NewStockRepo(testDB).CreateForProduct(ctx, nil, p.ID))
	require.NoError(t, testDB.Exec(`UPDATE stock SET quantity = ? WHERE product_id = ?`, stock, p.ID).Error)
	return p
}

func seedOffer(t *testing.T, o *model.Offer) *model.Offer {
	t.Helper()
	require.NoError(t, repository.NewOfferRepo(testDB).Create(context.Background(), nil, o))
	return o
}

func freeItem(product, free uint, company uint, active bool) *model.Offer {
	kind := model.FreeItemDifferentProduct
	return &model.Offer{
		OfferType:         model.OfferFreeItem,
		ProductID:         &product,
		CompanyID:         &company,
		FreeItemType:      &kind,
		FreeItemProductID: &free,
		FreeItemQuantity:  1,
		IsActive:          active,
	}
}

func discount(product, company uint, active bool) *model.Offer {
	kind := model.DiscountFixed
	return &model.Offer{
		OfferType:     model.OfferDiscount,
		ProductID:     &product,
		CompanyID:     &company,
		DiscountType:  &kind,
		DiscountValue: decimal.NewNullDecimal(decimal.NewFromInt(10)),
		IsActive:      active,
	}
}

func offerIDs(offers []model.Offer) []uint {
	ids := []uint{}
	for _, o := range offers {
		ids = append(ids, o.ID)
	}
	return ids
}

func hasOffer(t *testing.T, productID uint) bool {
	t.Helper()
	p, err := repository.NewProductRepo(testDB).FindByID(context.Background(), productID)
	require.NoError(t, err)
	return p.HasOffer
}

// ── Ledger ───────────────────────────────────────────────────────────────────

func TestLedgerLock_MissingRow(t *testing.T) {
	reset(t)
	ledger := repository.NewLedgerRepo(testDB)

	err := repository.NewTxManager(testDB).Transaction(context.Background(), func(tx *gorm.DB) error {
		_, err := ledger.Lock(context.Background(), tx, model.LedgerStock, 999)
		return err
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestLedgerSave_IsVersionConditional(t *testing.T) {
	reset(t)
	ctx := context.Background()
	p := seedProduct(t, seedCompany(t, "Acme").ID, "atta", 100)
	ledger := repository.NewLedgerRepo(testDB)

	st, err := ledger.Lock(ctx, nil, model.LedgerStock, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, st.Quantity)
	stale := *st

	require.NoError(t, ledger.Save(ctx, nil, model.LedgerStock, st, 150))
	assert.EqualValues(t, 1, st.Version)

	err = ledger.Save(ctx, nil, model.LedgerStock, &stale, 90)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)

	row, err := repository.NewStockRepo(testDB).FindStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 150, row.Quantity)
	assert.EqualValues(t, 1, row.Version)
}

func TestLedgerLock_ReadsAllocationAndExternalItems(t *testing.T) {
	reset(t)
	ctx := context.Background()
	p := seedProduct(t, seedCompany(t, "Acme").ID, "atta", 0)
	require.NoError(t, testDB.Exec(`UPDATE free_stock SET free_stock_quantity = 9, allocated_to_offers = 4 WHERE product_id = ?`, p.ID).Error)
	item := &model.ExternalItem{ItemName: "Tumbler", StockQuantity: 12, LowStockThreshold: 5, LastUpdated: time.Now()}
	require.NoError(t, testDB.Create(item).Error)
	ledger := repository.NewLedgerRepo(testDB)

	free, err := ledger.Lock(ctx, nil, model.LedgerFreeStock, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, free.Quantity)
	assert.Equal(t, 4, free.Allocated)

	ext, err := ledger.Lock(ctx, nil, model.LedgerExternalItem, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, ext.Quantity)
	assert.Zero(t, ext.Allocated)

	require.NoError(t, ledger.SetThreshold(ctx, model.LedgerExternalItem, item.ID, 3))
	assert.ErrorIs(t, ledger.SetThreshold(ctx, model.LedgerStock, 999, 3), gorm.ErrRecordNotFound)
}

func TestLedgerLock_SerialisesWriters(t *testing.T) {
	reset(t)
	ctx := context.Background()
	p := seedProduct(t, seedCompany(t, "Acme").ID, "atta", 100)
	ledger := repository.NewLedgerRepo(testDB)
	txm := repository.NewTxManager(testDB)

	locked := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- txm.Transaction(ctx, func(tx *gorm.DB) error {
			st, err := ledger.Lock(ctx, tx, model.LedgerStock, p.ID)
			if err != nil {
				close(locked)
				return err
			}
			close(locked)
			<-release
			return ledger.Save(ctx, tx, model.LedgerStock, st, st.Quantity+10)
		})
	}()
	<-locked

	secondSaw := make(chan int, 1)
	secondDone := make(chan error, 1)
	go func() {
		secondDone <- txm.Transaction(ctx, func(tx *gorm.DB) error {
			st, err := ledger.Lock(ctx, tx, model.LedgerStock, p.ID)
			if err != nil {
				return err
			}
			secondSaw <- st.Quantity
			return ledger.Save(ctx, tx, model.LedgerStock, st, st.Quantity+5)
		})
	}()

	select {
	case <-secondSaw:
		t.Fatal("second writer read the row while it was locked")
	case <-time.After(300 * time.Millisecond):
	}
	close(release)

	require.NoError(t, <-firstDone)
	assert.Equal(t, 110, <-secondSaw)
	require.NoError(t, <-secondDone)

	row, err := repository.NewStockRepo(testDB).FindStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 115, row.Quantity)
}

// ── History ──────────────────────────────────────────────────────────────────

func TestHistory_NewestFirstWithPaging(t *testing.T) {
	reset(t)
	ctx := context.Background()
	p := seedProduct(t, seedCompany(t, "Acme").ID, "atta", 0)
	ledger := repository.NewLedgerRepo(testDB)

	note := "recount"
	reason, err := model.Other(note)
	require.NoError(t, err)
	for i, next := range []int{10, 25, 20} {
		prev := []int{0, 10, 25}[i]
		_, err := ledger.AppendHistory(ctx, nil, model.LedgerStock, p.ID,
			model.NewLedgerEntry(model.ActionUpdate, prev, next, reason, true))
		require.NoError(t, err)
	}
	history := repository.NewHistoryRepo(testDB)

	rows, err := history.ListStock(ctx, &p.ID, repository.Page{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 20, rows[0].NewQuantity)
	assert.Equal(t, -5, rows[0].ChangeAmount)
	assert.Equal(t, 10, rows[2].NewQuantity)
	require.NotNil(t, rows[0].ReasonNote)
	assert.Equal(t, note, *rows[0].ReasonNote)

	second, err := history.ListStock(ctx, &p.ID, repository.Page{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, rows[2].ID, second[0].ID)

	all, err := history.ListStock(ctx, nil, repository.Page{Limit: 1})
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].Product)
	require.NotNil(t, all[0].Product.Company)
	assert.Equal(t, "Acme", all[0].Product.Company.CompanyName)
}

// ── Offers ───────────────────────────────────────────────────────────────────

func TestOfferQueries_GroupProductConditions(t *testing.T) {
	reset(t)
	ctx := context.Background()
	company := seedCompany(t, "Acme").ID
	a := seedProduct(t, company, "atta", 0).ID
	b := seedProduct(t, company, "salt", 0).ID
	c := seedProduct(t, company, "oil", 0).ID

	onA := seedOffer(t, discount(a, company, true))
	seedOffer(t, discount(a, company, false))
	cGivesB := seedOffer(t, freeItem(c, b, company, true))
	cGivesAOff := seedOffer(t, freeItem(c, a, company, false))
	offers := repository.NewOfferRepo(testDB)

	touchingA, err := offers.FindActiveTouching(ctx, a, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{onA.ID}, offerIDs(touchingA))

	touchingB, err := offers.FindActiveTouching(ctx, b, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{cGivesB.ID}, offerIDs(touchingB))

	excluded, err := offers.FindActiveTouching(ctx, a, &onA.ID)
	require.NoError(t, err)
	assert.Empty(t, excluded)

	inactive, err := offers.FindInactiveFreeItem(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []uint{cGivesAOff.ID}, offerIDs(inactive))
}

func TestProductsLosingOffers(t *testing.T) {
	reset(t)
	ctx := context.Background()
	acme := seedCompany(t, "Acme").ID
	globex := seedCompany(t, "Globex").ID
	a := seedProduct(t, acme, "atta", 0).ID
	b := seedProduct(t, acme, "salt", 0).ID
	c := seedProduct(t, globex, "oil", 0).ID

	seedOffer(t, freeItem(a, b, acme, true))
	seedOffer(t, freeItem(c, a, globex, true))
	seedOffer(t, freeItem(b, b, acme, true))
	offers := repository.NewOfferRepo(testDB)

	ids, err := offers.ProductsLosingOffers(ctx, nil, []uint{b}, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{a}, ids)

	ids, err = offers.ProductsLosingOffers(ctx, nil, []uint{a, b}, &acme)
	require.NoError(t, err)
	assert.Equal(t, []uint{c}, ids)

	ids, err = offers.ProductsLosingOffers(ctx, nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestProductDelete_ClearsHasOfferOnGiver(t *testing.T) {
	reset(t)
	ctx := context.Background()
	company := seedCompany(t, "Acme").ID
	a := seedProduct(t, company, "atta", 0).ID
	b := seedProduct(t, company, "salt", 0).ID
	seedOffer(t, freeItem(a, b, company, true))

	productRepo := repository.NewProductRepo(testDB)
	offerRepo := repository.NewOfferRepo(testDB)
	require.NoError(t, productRepo.SyncHasOffer(ctx, nil, a))
	require.True(t, hasOffer(t, a))

	svc := service.NewProductService(
		repository.NewTxManager(testDB), productRepo, repository.NewCompanyRepo(testDB),
		repository.NewStockRepo(testDB), offerRepo, nil, nil, nil,
	)
	_, err := svc.Delete(ctx, b)
	require.NoError(t, err)

	left, err := offerRepo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.False(t, hasOffer(t, a))

	_, err = productRepo.FindByID(ctx, b)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCompanyDelete_CascadeResyncsOtherCompanies(t *testing.T) {
	reset(t)
	ctx := context.Background()
	acme := seedCompany(t, "Acme").ID
	globex := seedCompany(t, "Globex").ID
	a := seedProduct(t, acme, "atta", 0).ID
	c := seedProduct(t, globex, "oil", 0).ID
	seedOffer(t, freeItem(c, a, globex, true))

	productRepo := repository.NewProductRepo(testDB)
	require.NoError(t, productRepo.SyncHasOffer(ctx, nil, c))
	require.True(t, hasOffer(t, c))

	svc := service.NewCompanyService(
		repository.NewTxManager(testDB), repository.NewCompanyRepo(testDB), productRepo,
		repository.NewOfferRepo(testDB), nil, nil, pin.NewGate("1234", ""),
	)
	_, err := svc.Delete(ctx, acme, "1234")
	require.NoError(t, err)

	assert.False(t, hasOffer(t, c))
	_, err = productRepo.FindByID(ctx, a)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	left, err := repository.NewOfferRepo(testDB).FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, left)
}

// ── Offer pool ───────────────────────────────────────────────────────────────

func TestOfferPoolSave_IsVersionConditional(t *testing.T) {
	reset(t)
	ctx := context.Background()
	company := seedCompany(t, "Acme").ID
	a := seedProduct(t, company, "atta", 0).ID
	offer := seedOffer(t, freeItem(a, a, company, true))

	pools := repository.NewOfferPoolRepo(testDB)
	pool := model.NewOfferPool(offer)
	require.NoError(t, pools.Create(ctx, nil, pool))

	locked, err := pools.Lock(ctx, nil, pool.ID)
	require.NoError(t, err)
	stale := *locked

	locked.AccumulatedQuantity, locked.TotalAccumulated = 50, 50
	require.NoError(t, pools.Save(ctx, nil, locked))
	assert.EqualValues(t, 1, locked.Version)

	stale.AccumulatedQuantity = 7
	assert.ErrorIs(t, pools.Save(ctx, nil, &stale), repository.ErrVersionConflict)

	require.NoError(t, pools.AppendHistory(ctx, nil, &model.OfferPoolHistory{
		OfferPoolID: pool.ID, ActionType: model.PoolAccumulated, Quantity: 50, Reason: "Unclaimed offer items",
	}))
	history, err := repository.NewHistoryRepo(testDB).ListPool(ctx, pool.ID, repository.Page{})
	require.NoError(t, err)
	require.Len(t, history, 1)

	_, err = pools.Lock(ctx, nil, 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
