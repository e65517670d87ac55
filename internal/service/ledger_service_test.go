package service

import (
	"context"
	"testing"

	"fmcg-admin-api/internal/apperror"
	"fmcg-admin-api/internal/model"
	"fmcg-admin-api/internal/repository"
	"fmcg-admin-api/pkg/pin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPIN = "4321"

func newLedgerSvc(l *stubLedger, act OfferActivator) (LedgerService, *recorder) {
	rec := &recorder{}
	return NewLedgerService(stubTx{}, l, newStubStock(), stubHistory{}, act, pin.NewGate(testPIN, ""), rec), rec
}

func TestAdd_IncrementsAndRecordsHistory(t *testing.T) {
	l := newStubLedger()
	l.put(model.LedgerStock, 7, 100, 0)
	svc, rec := newLedgerSvc(l, nil)

	res, err := svc.Add(context.Background(), model.LedgerStock, 7, AdjustRequest{Quantity: ptr(50), ReasonType: "new_shipment"})
	require.NoError(t, err)

	assert.Equal(t, 150, res.Quantity)
	assert.Equal(t, 100, res.PreviousQuantity)
	assert.Equal(t, 150, l.qty(model.LedgerStock, 7))

	require.Len(t, l.history, 1)
	h := l.history[0].entry
	assert.Equal(t, model.ActionAddition, h.ActionType)
	assert.Equal(t, 100, h.PreviousQuantity)
	assert.Equal(t, 150, h.NewQuantity)
	assert.Equal(t, 50, h.ChangeAmount)
	assert.Equal(t, model.ReasonNewShipment, h.ReasonType)
	assert.False(t, h.AdminPinUsed)
	assert.Len(t, rec.events, 1)
}

func TestAdd_RejectsNonPositiveQuantity(t *testing.T) {
	l := newStubLedger()
	l.put(model.LedgerStock, 7, 100, 0)
	svc, _ := newLedgerSvc(l, nil)

	for _, q := range []*int{nil, ptr(0), ptr(-3)} {
		_, err := svc.Add(context.Background(), model.LedgerStock, 7, AdjustRequest{Quantity: q, ReasonType: "returns"})
		assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))
	}
	assert.Equal(t, 100, l.qty(model.LedgerStock, 7))
	assert.Empty(t, l.history)
}

func TestSet_WrongPINLeavesLedgerUntouched(t *testing.T) {
	l := newStubLedger()
	l.put(model.LedgerStock, 7, 100, 0)
	svc, rec := newLedgerSvc(l, nil)

	for _, supplied := range []string{"0000", ""} {
		_, err := svc.Set(context.Background(), model.LedgerStock, 7, AdjustRequest{
			Quantity: ptr(5), ReasonType: "other", ReasonNote: "audit", PIN: supplied,
		})
		assert.True(t, apperror.Is(err, apperror.KindForbidden), "pin %q", supplied)
	}

	assert.Equal(t, 100, l.qty(model.LedgerStock, 7))
	assert.Empty(t, l.history)
	assert.Zero(t, l.saves)
	assert.Empty(t, rec.events)
}

func TestSet_OverwritesWithSignedChange(t *testing.T) {
	l := newStubLedger()
	l.put(model.LedgerExternalItem, 3, 40, 0)
	svc, _ := newLedgerSvc(l, nil)

	res, err := svc.Set(context.Background(), model.LedgerExternalItem, 3, AdjustRequest{
		Quantity: ptr(25), ReasonType: "other", ReasonNote: "recount", PIN: testPIN,
	})
	require.NoError(t, err)
	assert.Equal(t, 25, res.Quantity)

	h := l.history[0]
	assert.Equal(t, model.LedgerExternalItem, h.kind)
	assert.Equal(t, model.ActionUpdate, h.entry.ActionType)
	assert.Equal(t, -15, h.entry.ChangeAmount)
	assert.True(t, h.entry.AdminPinUsed)
	require.NotNil(t, h.entry.ReasonNote)
	assert.Equal(t, "recount", *h.entry.ReasonNote)
}

func TestSet_ZeroIsAllowedNegativeIsNot(t *testing.T) {
	l := newStubLedger()
	l.put(model.LedgerStock, 7, 10, 0)
	svc, _ := newLedgerSvc(l, nil)

	_, err := svc.Set(context.Background(), model.LedgerStock, 7, AdjustRequest{Quantity: ptr(-1), ReasonType: "returns", PIN: testPIN})
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))

	_, err = svc.Set(context.Background(), model.LedgerStock, 7, AdjustRequest{ReasonType: "returns", PIN: testPIN})
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))

	res, err := svc.Set(context.Background(), model.LedgerStock, 7, AdjustRequest{Quantity: ptr(0), ReasonType: "returns", PIN: testPIN})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Quantity)
}

func TestOtherReasonNeedsNote_OnEveryLedger(t *testing.T) {
	kinds := []model.LedgerKind{model.LedgerStock, model.LedgerFreeStock, model.LedgerExternalItem}
	for _, kind := range kinds {
		l := newStubLedger()
		l.put(kind, 1, 10, 0)
		svc, _ := newLedgerSvc(l, nil)

		_, err := svc.Add(context.Background(), kind, 1, AdjustRequest{Quantity: ptr(5), ReasonType: "other", ReasonNote: "   "})
		assert.EqualError(t, err, "Reason note is required for 'other' type", string(kind))

		_, err = svc.Set(context.Background(), kind, 1, AdjustRequest{Quantity: ptr(5), ReasonType: "other", PIN: testPIN})
		assert.True(t, apperror.Is(err, apperror.KindInvalidArgument), string(kind))

		assert.Equal(t, 10, l.qty(kind, 1))
		assert.Empty(t, l.history)
	}
}

func TestInvalidReasonType(t *testing.T) {
	l := newStubLedger()
	l.put(model.LedgerStock, 1, 10, 0)
	svc, _ := newLedgerSvc(l, nil)

	_, err := svc.Add(context.Background(), model.LedgerStock, 1, AdjustRequest{Quantity: ptr(5), ReasonType: "gift"})
	assert.EqualError(t, err, "Invalid reason type")
}

func TestSet_PINCheckedBeforeBodyValidation(t *testing.T) {
	l := newStubLedger()
	l.put(model.LedgerStock, 1, 10, 0)
	svc, _ := newLedgerSvc(l, nil)

	bodies := []AdjustRequest{
		{Quantity: ptr(5), ReasonType: "other", PIN: "wrong"},
		{Quantity: ptr(5), ReasonType: "bogus", PIN: "wrong"},
		{Quantity: ptr(-1), ReasonType: "returns", PIN: "wrong"},
		{ReasonType: "returns"},
	}
	for _, kind := range []model.LedgerKind{model.LedgerStock, model.LedgerFreeStock, model.LedgerExternalItem} {
		for _, req := range bodies {
			_, err := svc.Set(context.Background(), kind, 1, req)
			assert.True(t, apperror.Is(err, apperror.KindForbidden), "%s %+v", kind, req)
		}
	}
	assert.Equal(t, 10, l.qty(model.LedgerStock, 1))
	assert.Empty(t, l.history)
}

func TestSetFreeStock_BelowAllocatedRejected(t *testing.T) {
	l := newStubLedger()
	l.put(model.LedgerFreeStock, 4, 30, 12)
	svc, _ := newLedgerSvc(l, nil)

	_, err := svc.Set(context.Background(), model.LedgerFreeStock, 4, AdjustRequest{Quantity: ptr(10), ReasonType: "returns", PIN: testPIN})
	assert.True(t, apperror.Is(err, apperror.KindInvalidArgument))
	assert.Equal(t, 30, l.qty(model.LedgerFreeStock, 4))

	res, err := svc.Set(context.Background(), model.LedgerFreeStock, 4, AdjustRequest{Quantity: ptr(12), ReasonType: "returns", PIN: testPIN})
	require.NoError(t, err)
	assert.Equal(t, 12, res.Quantity)
}

func TestAddFreeStock_ReportsActivatableOffers(t *testing.T) {
	l := newStubLedger()
	l.put(model.LedgerFreeStock, 9, 0, 0)
	act := &stubActivator{offers: []model.Offer{{BaseModel: model.BaseModel{ID: 21}, OfferType: model.OfferFreeItem}}}
	svc, rec := newLedgerSvc(l, act)

	res, err := svc.Add(context.Background(), model.LedgerFreeStock, 9, AdjustRequest{Quantity: ptr(5), ReasonType: "new_shipment"})
	require.NoError(t, err)

	assert.Equal(t, []uint{9}, act.asked)
	require.Len(t, res.InactiveOffers, 1)
	assert.Equal(t, uint(21), res.InactiveOffers[0].ID)
	assert.Len(t, rec.events, 2)
}

func TestAddStock_DoesNotLookForOffers(t *testing.T) {
	l := newStubLedger()
	l.put(model.LedgerStock, 9, 0, 0)
	act := &stubActivator{}
	svc, _ := newLedgerSvc(l, act)

	_, err := svc.Add(context.Background(), model.LedgerStock, 9, AdjustRequest{Quantity: ptr(5), ReasonType: "new_shipment"})
	require.NoError(t, err)
	assert.Empty(t, act.asked)
}

func TestAdd_MissingRowIsNotFound(t *testing.T) {
	svc, _ := newLedgerSvc(newStubLedger(), nil)

	_, err := svc.Add(context.Background(), model.LedgerStock, 99, AdjustRequest{Quantity: ptr(1), ReasonType: "returns"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.EqualError(t, err, "Product stock not found")
}

func TestAdd_RetriesVersionConflict(t *testing.T) {
	l := newStubLedger()
	l.put(model.LedgerStock, 7, 100, 0)
	l.conflicts = 2
	svc, _ := newLedgerSvc(l, nil)

	res, err := svc.Add(context.Background(), model.LedgerStock, 7, AdjustRequest{Quantity: ptr(1), ReasonType: "returns"})
	require.NoError(t, err)
	assert.Equal(t, 101, res.Quantity)
	assert.Equal(t, 3, l.saves)
	assert.Len(t, l.history, 1)
}

func TestAdd_GivesUpAfterRepeatedConflicts(t *testing.T) {
	l := newStubLedger()
	l.put(model.LedgerStock, 7, 100, 0)
	l.conflicts = maxTxAttempts
	svc, _ := newLedgerSvc(l, nil)

	_, err := svc.Add(context.Background(), model.LedgerStock, 7, AdjustRequest{Quantity: ptr(1), ReasonType: "returns"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.ErrorIs(t, err, repository.ErrVersionConflict)
	assert.Equal(t, 100, l.qty(model.LedgerStock, 7))
}

func TestApplyLedgerChange_RequiresReason(t *testing.T) {
	l := newStubLedger()
	l.put(model.LedgerStock, 7, 100, 0)

	_, err := applyLedgerChange(context.Background(), nil, l, ledgerChange{
		kind:      model.LedgerStock,
		subjectID: 7,
		action:    model.ActionAddition,
		next:      func(st *model.LedgerState) (int, error) { return st.Quantity + 1, nil },
	})
	assert.Error(t, err)
	assert.Zero(t, l.saves)
	assert.Empty(t, l.history)
}

func TestHistoryDeltasSumToNetChange(t *testing.T) {
	l := newStubLedger()
	l.put(model.LedgerStock, 7, 40, 0)
	svc, _ := newLedgerSvc(l, nil)
	ctx := context.Background()

	_, _ = svc.Add(ctx, model.LedgerStock, 7, AdjustRequest{Quantity: ptr(15), ReasonType: "new_shipment"})
	_, _ = svc.Set(ctx, model.LedgerStock, 7, AdjustRequest{Quantity: ptr(20), ReasonType: "other", ReasonNote: "shrinkage", PIN: testPIN})
	_, _ = svc.Add(ctx, model.LedgerStock, 7, AdjustRequest{Quantity: ptr(7), ReasonType: "returns"})

	sum := 0
	for _, h := range l.history {
		assert.Equal(t, h.entry.PreviousQuantity+h.entry.ChangeAmount, h.entry.NewQuantity)
		sum += h.entry.ChangeAmount
	}
	assert.Equal(t, l.qty(model.LedgerStock, 7)-40, sum)
}

func TestSetThreshold(t *testing.T) {
	l := newStubLedger()
	l.put(model.LedgerStock, 7, 10, 0)
	svc, _ := newLedgerSvc(l, nil)
	ctx := context.Background()

	require.NoError(t, svc.SetThreshold(ctx, model.LedgerStock, 7, ptr(20)))
	assert.Equal(t, 20, l.thresholds[model.LedgerStock][7])

	assert.True(t, apperror.Is(svc.SetThreshold(ctx, model.LedgerStock, 7, ptr(-1)), apperror.KindInvalidArgument))
	assert.True(t, apperror.Is(svc.SetThreshold(ctx, model.LedgerFreeStock, 7, ptr(5)), apperror.KindInvalidArgument))
	assert.True(t, apperror.Is(svc.SetThreshold(ctx, model.LedgerStock, 8, ptr(5)), apperror.KindNotFound))
}
