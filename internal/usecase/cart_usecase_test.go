package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"app/internal/domain/model"
	"app/internal/permission"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
)

func newCartFixture() (*memStore, *CartUsecase) {
	s := newMemStore()
	uc := NewCartUsecase(&memTx{s: s}, &memCarts{s: s}, &memCartItems{s: s}, &memServices{s: s})
	return s, uc
}

// =====================
// GetCart
// =====================

func TestCartUsecase_GetCart_Unauthenticated(t *testing.T) {
	_, uc := newCartFixture()

	_, err := uc.GetCart(context.Background(), permission.Anonymous())
	assertUsecaseError(t, err, http.StatusUnauthorized, CodeUnauthorized)
}

func TestCartUsecase_GetCart_CreatesEmptyCart(t *testing.T) {
	_, uc := newCartFixture()

	out, err := uc.GetCart(context.Background(), clientActor(1))
	assert.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.True(t, out.Total.IsZero())
}

// =====================
// AddItem
// =====================

func TestCartUsecase_AddItem_InvalidQuantity(t *testing.T) {
	s, uc := newCartFixture()
	svc := s.addService(model.Service{Name: "掃除", Price: mustDecimal("10.00"), IsActive: true})

	_, err := uc.AddItem(context.Background(), clientActor(1), AddItemInput{ServiceID: svc.ID, Quantity: 0})
	assertUsecaseError(t, err, http.StatusBadRequest, CodeInvalidQuantity)

	_, err = uc.AddItem(context.Background(), clientActor(1), AddItemInput{ServiceID: svc.ID, Quantity: -3})
	assertUsecaseError(t, err, http.StatusBadRequest, CodeInvalidQuantity)
}

func TestCartUsecase_AddItem_InactiveServiceNotFound(t *testing.T) {
	s, uc := newCartFixture()
	svc := s.addService(model.Service{Name: "停止中", Price: mustDecimal("10.00"), IsActive: false})

	_, err := uc.AddItem(context.Background(), clientActor(1), AddItemInput{ServiceID: svc.ID, Quantity: 1})
	assertUsecaseError(t, err, http.StatusNotFound, CodeNotFound)
}

func TestCartUsecase_AddItem_SameServiceSumsQuantity(t *testing.T) {
	s, uc := newCartFixture()
	svc := s.addService(model.Service{Name: "掃除", Price: mustDecimal("10.00"), IsActive: true})
	actor := clientActor(1)

	_, err := uc.AddItem(context.Background(), actor, AddItemInput{ServiceID: svc.ID, Quantity: 2})
	assert.NoError(t, err)

	// 同じサービスをもう一度追加すると明細は増えず数量加算になる
	out, err := uc.AddItem(context.Background(), actor, AddItemInput{ServiceID: svc.ID, Quantity: 3})
	assert.NoError(t, err)
	if assert.Len(t, out.Items, 1) {
		assert.Equal(t, int64(5), out.Items[0].Quantity)
	}
	assert.True(t, out.Total.Equal(mustDecimal("50.00")), "total = %s", out.Total)
}

func TestCartUsecase_AddItem_TotalUsesCurrentPrice(t *testing.T) {
	s, uc := newCartFixture()
	svc := s.addService(model.Service{Name: "掃除", Price: mustDecimal("10.00"), IsActive: true})
	actor := clientActor(1)

	_, err := uc.AddItem(context.Background(), actor, AddItemInput{ServiceID: svc.ID, Quantity: 2})
	assert.NoError(t, err)

	// チェックアウト前の値上げはカート合計にすぐ反映される
	s.setServicePrice(svc.ID, "15.00")

	out, err := uc.GetCart(context.Background(), actor)
	assert.NoError(t, err)
	assert.True(t, out.Total.Equal(mustDecimal("30.00")), "total = %s", out.Total)
}

// =====================
// UpdateQuantity / RemoveItem
// =====================

func TestCartUsecase_UpdateQuantity_Overwrites(t *testing.T) {
	s, uc := newCartFixture()
	svc := s.addService(model.Service{Name: "掃除", Price: mustDecimal("10.00"), IsActive: true})
	actor := clientActor(1)

	_, err := uc.AddItem(context.Background(), actor, AddItemInput{ServiceID: svc.ID, Quantity: 2})
	assert.NoError(t, err)

	out, err := uc.UpdateQuantity(context.Background(), actor, svc.ID, UpdateQuantityInput{Quantity: 7})
	assert.NoError(t, err)
	if assert.Len(t, out.Items, 1) {
		assert.Equal(t, int64(7), out.Items[0].Quantity)
	}
}

func TestCartUsecase_UpdateQuantity_ZeroRemoves(t *testing.T) {
	s, uc := newCartFixture()
	svc := s.addService(model.Service{Name: "掃除", Price: mustDecimal("10.00"), IsActive: true})
	actor := clientActor(1)

	_, err := uc.AddItem(context.Background(), actor, AddItemInput{ServiceID: svc.ID, Quantity: 2})
	assert.NoError(t, err)

	out, err := uc.UpdateQuantity(context.Background(), actor, svc.ID, UpdateQuantityInput{Quantity: 0})
	assert.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.True(t, out.Total.IsZero())
}

func TestCartUsecase_UpdateQuantity_MissingItemNotFound(t *testing.T) {
	s, uc := newCartFixture()
	svc := s.addService(model.Service{Name: "掃除", Price: mustDecimal("10.00"), IsActive: true})
	actor := clientActor(1)

	// カートは作るが明細は入れない
	_, err := uc.GetCart(context.Background(), actor)
	assert.NoError(t, err)

	_, err = uc.UpdateQuantity(context.Background(), actor, svc.ID, UpdateQuantityInput{Quantity: 3})
	assertUsecaseError(t, err, http.StatusNotFound, CodeNotFound)
}

func TestCartUsecase_RemoveItem_MissingIsNoOp(t *testing.T) {
	s, uc := newCartFixture()
	svc := s.addService(model.Service{Name: "掃除", Price: mustDecimal("10.00"), IsActive: true})
	actor := clientActor(1)

	// カートすら無い状態でもエラーにならない
	out, err := uc.RemoveItem(context.Background(), actor, svc.ID)
	assert.NoError(t, err)
	assert.Empty(t, out.Items)

	// カートはあるが明細が無い場合もno-op
	_, err = uc.GetCart(context.Background(), actor)
	assert.NoError(t, err)
	out, err = uc.RemoveItem(context.Background(), actor, svc.ID)
	assert.NoError(t, err)
	assert.Empty(t, out.Items)
}

// =====================
// buildCartResponse のエラーハンドリング
// =====================

// 指定IDのFindByIDだけ失敗するラッパー
type flakyServiceRepo struct {
	repo.ServiceRepository
	failID int64
}

func (f *flakyServiceRepo) FindByID(ctx context.Context, id int64) (model.Service, error) {
	if id == f.failID {
		return model.Service{}, errors.New("connection reset")
	}
	return f.ServiceRepository.FindByID(ctx, id)
}

func TestCartUsecase_GetCart_ServiceLookupFailureSurfaces(t *testing.T) {
	s, uc := newCartFixture()
	s1 := s.addService(model.Service{Name: "掃除", Price: mustDecimal("10.00"), IsActive: true})
	s2 := s.addService(model.Service{Name: "修理", Price: mustDecimal("5.00"), IsActive: true})
	actor := clientActor(1)

	_, err := uc.AddItem(context.Background(), actor, AddItemInput{ServiceID: s1.ID, Quantity: 2})
	assert.NoError(t, err)
	_, err = uc.AddItem(context.Background(), actor, AddItemInput{ServiceID: s2.ID, Quantity: 1})
	assert.NoError(t, err)

	// 一時的なDB障害で明細が黙って欠落してはいけない
	flaky := NewCartUsecase(&memTx{s: s}, &memCarts{s: s}, &memCartItems{s: s},
		&flakyServiceRepo{ServiceRepository: &memServices{s: s}, failID: s1.ID})

	_, err = flaky.GetCart(context.Background(), actor)
	assertUsecaseError(t, err, http.StatusInternalServerError, CodeInternal)
}

func TestCartUsecase_GetCart_SkipsDeletedService(t *testing.T) {
	s, uc := newCartFixture()
	s1 := s.addService(model.Service{Name: "掃除", Price: mustDecimal("10.00"), IsActive: true})
	s2 := s.addService(model.Service{Name: "修理", Price: mustDecimal("5.00"), IsActive: true})
	actor := clientActor(1)

	_, err := uc.AddItem(context.Background(), actor, AddItemInput{ServiceID: s1.ID, Quantity: 2})
	assert.NoError(t, err)
	_, err = uc.AddItem(context.Background(), actor, AddItemInput{ServiceID: s2.ID, Quantity: 1})
	assert.NoError(t, err)

	// 論理削除されたサービスの明細は表示と合計から外れるだけでエラーにはならない
	delete(s.services, s1.ID)

	out, err := uc.GetCart(context.Background(), actor)
	assert.NoError(t, err)
	if assert.Len(t, out.Items, 1) {
		assert.Equal(t, s2.ID, out.Items[0].ServiceID)
	}
	assert.True(t, out.Total.Equal(mustDecimal("5.00")))
}

func TestCartUsecase_RemoveItem_RemovesOnlyTarget(t *testing.T) {
	s, uc := newCartFixture()
	s1 := s.addService(model.Service{Name: "掃除", Price: mustDecimal("10.00"), IsActive: true})
	s2 := s.addService(model.Service{Name: "修理", Price: mustDecimal("5.00"), IsActive: true})
	actor := clientActor(1)

	_, err := uc.AddItem(context.Background(), actor, AddItemInput{ServiceID: s1.ID, Quantity: 1})
	assert.NoError(t, err)
	_, err = uc.AddItem(context.Background(), actor, AddItemInput{ServiceID: s2.ID, Quantity: 1})
	assert.NoError(t, err)

	out, err := uc.RemoveItem(context.Background(), actor, s1.ID)
	assert.NoError(t, err)
	if assert.Len(t, out.Items, 1) {
		assert.Equal(t, s2.ID, out.Items[0].ServiceID)
	}
	assert.True(t, out.Total.Equal(mustDecimal("5.00")))
}
