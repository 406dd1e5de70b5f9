package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Anshid-ck/cloth-shop-sub001/internal/address"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/cart"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/orders"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/payments"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/pricing"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/enums"
	pkgerrors "github.com/Anshid-ck/cloth-shop-sub001/pkg/errors"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/logger"
)

const defaultLockTTL = 30 * time.Second

// Locker serializes mutating requests on one attempt. RefreshLock extends a
// lock the token still owns and reports false once it does not.
type Locker interface {
	AcquireLock(ctx context.Context, name, token string, ttl time.Duration) (bool, error)
	RefreshLock(ctx context.Context, name, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name, token string) error
}

// EventPublisher emits checkout domain events.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, aggregateID string, data any) (string, error)
}

// MetricsRecorder is the slice of checkout metrics used here.
type MetricsRecorder interface {
	IncTransition(from, to string)
}

// Service drives checkout attempts through the flow.
type Service interface {
	Begin(ctx context.Context, userID string) (*View, error)
	View(ctx context.Context, userID string, id uuid.UUID) (*View, error)
	CreateAddress(ctx context.Context, userID string, id uuid.UUID, draft address.Draft) (*View, error)
	SelectAddress(ctx context.Context, userID string, id uuid.UUID, addressID string) (*View, error)
	SetPaymentMethod(ctx context.Context, userID string, id uuid.UUID, method enums.PaymentMethod) (*View, error)
	GoBack(ctx context.Context, userID string, id uuid.UUID) (*View, error)
	Advance(ctx context.Context, userID string, id uuid.UUID) (*View, error)
	ConfirmCardPayment(ctx context.Context, userID string, id uuid.UUID, paymentMethodID string) (*View, error)
	PlaceCashOrder(ctx context.Context, userID string, id uuid.UUID) (*View, error)
	Confirmation(ctx context.Context, userID string, id uuid.UUID) (*Confirmation, error)
}

// Deps bundles the collaborators of the checkout service.
type Deps struct {
	Repository Repository
	Cart       cart.Service
	Addresses  address.Store
	Orders     orders.Creator
	Payments   payments.Orchestrator
	Calculator *pricing.Calculator
	Locker     Locker
	Events     EventPublisher
	Metrics    MetricsRecorder
	Logger     *logger.Logger
	LockTTL    time.Duration
}

type service struct {
	repo      Repository
	carts     cart.Service
	addresses address.Store
	orders    orders.Creator
	payments  payments.Orchestrator
	calc      *pricing.Calculator
	locker    Locker
	events    EventPublisher
	metrics   MetricsRecorder
	logg      *logger.Logger
	lockTTL   time.Duration
	now       func() time.Time
}

// NewService builds the checkout service.
func NewService(deps Deps) (Service, error) {
	if deps.Repository == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if deps.Cart == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if deps.Addresses == nil {
		return nil, fmt.Errorf("address store required")
	}
	if deps.Orders == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if deps.Payments == nil {
		return nil, fmt.Errorf("payment orchestrator required")
	}
	if deps.Calculator == nil {
		return nil, fmt.Errorf("pricing calculator required")
	}
	if deps.Locker == nil {
		return nil, fmt.Errorf("locker required")
	}
	logg := deps.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	ttl := deps.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &service{
		repo:      deps.Repository,
		carts:     deps.Cart,
		addresses: deps.Addresses,
		orders:    deps.Orders,
		payments:  deps.Payments,
		calc:      deps.Calculator,
		locker:    deps.Locker,
		events:    deps.Events,
		metrics:   deps.Metrics,
		logg:      logg,
		lockTTL:   ttl,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Begin resumes the user's open attempt or starts a new one. A new attempt
// needs a non-empty cart; an attempt that already holds an order is resumed
// even if the cart changed since.
func (s *service) Begin(ctx context.Context, userID string) (*View, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to check out").WithDetail("redirect", "login")
	}
	ctx = s.logg.WithUserID(ctx, userID)

	held, err := s.lock(ctx, "checkout:user:"+userID)
	if err != nil {
		return nil, err
	}
	defer s.unlock(ctx, held)

	open, err := s.repo.FindOpenByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if open != nil && open.HasOrder() {
		return s.buildView(ctx, open, nil, nil)
	}

	snapshot, err := s.carts.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty").WithDetail("redirect", "cart")
	}
	if open != nil {
		return s.buildView(ctx, open, &snapshot, nil)
	}

	selection, err := s.addresses.List(ctx)
	if err != nil {
		return nil, withStep(err, enums.CheckoutStepAddressSelection)
	}

	attempt := newAttempt(userID, s.now())
	if selection.SelectedID != nil {
		if addr, ok := selection.Find(*selection.SelectedID); ok {
			attempt.AddressID = &addr.ID
			attempt.Address = &addr
		}
	}

	if err := s.repo.Create(ctx, attempt); err != nil {
		if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			return nil, err
		}
		existing, findErr := s.repo.FindOpenByUser(ctx, userID)
		if findErr != nil || existing == nil {
			return nil, err
		}
		attempt = existing
	} else {
		s.logg.Info(s.logg.WithAttempt(ctx, attempt.ID.String(), attempt.Step.String()), "checkout.begin")
	}
	return s.buildView(ctx, attempt, &snapshot, &selection)
}

func (s *service) View(ctx context.Context, userID string, id uuid.UUID) (*View, error) {
	attempt, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, attempt, nil, nil)
}

func (s *service) CreateAddress(ctx context.Context, userID string, id uuid.UUID, draft address.Draft) (*View, error) {
	return s.mutate(ctx, userID, id, func(ctx context.Context, attempt *Attempt) error {
		next, err := NextStep(attempt.Step, EventCreateAddress)
		if err != nil {
			return err
		}
		if err := s.guardAddressEntry(ctx, attempt, next); err != nil {
			return err
		}
		created, err := s.addresses.Create(ctx, draft)
		if err != nil {
			return err
		}
		attempt.AddressID = &created.ID
		attempt.Address = &created
		s.moveTo(ctx, attempt, next)
		return nil
	})
}

func (s *service) SelectAddress(ctx context.Context, userID string, id uuid.UUID, addressID string) (*View, error) {
	return s.mutate(ctx, userID, id, func(ctx context.Context, attempt *Attempt) error {
		next, err := NextStep(attempt.Step, EventSelectAddress)
		if err != nil {
			return err
		}
		if err := s.guardAddressEntry(ctx, attempt, next); err != nil {
			return err
		}
		addressID = strings.TrimSpace(addressID)
		if addressID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "select a delivery address").WithDetail("field", "address_id")
		}
		selection, err := s.addresses.List(ctx)
		if err != nil {
			return err
		}
		addr, ok := selection.Find(addressID)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "selected address was not found").WithDetail("field", "address_id")
		}
		attempt.AddressID = &addr.ID
		attempt.Address = &addr
		s.moveTo(ctx, attempt, next)
		return nil
	})
}

func (s *service) SetPaymentMethod(ctx context.Context, userID string, id uuid.UUID, method enums.PaymentMethod) (*View, error) {
	return s.mutate(ctx, userID, id, func(ctx context.Context, attempt *Attempt) error {
		next, err := NextStep(attempt.Step, EventSetPaymentMethod)
		if err != nil {
			return err
		}
		if !method.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "select a payment method").WithDetail("field", "payment_method")
		}
		if attempt.HasOrder() {
			if attempt.PaymentMethod != nil && *attempt.PaymentMethod == method {
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment method cannot change after the order is placed")
		}
		attempt.PaymentMethod = &method
		s.moveTo(ctx, attempt, next)
		return nil
	})
}

func (s *service) GoBack(ctx context.Context, userID string, id uuid.UUID) (*View, error) {
	return s.mutate(ctx, userID, id, func(ctx context.Context, attempt *Attempt) error {
		next, err := NextStep(attempt.Step, EventGoBack)
		if err != nil {
			return err
		}
		if err := s.guardAddressEntry(ctx, attempt, next); err != nil {
			return err
		}
		s.moveTo(ctx, attempt, next)
		return nil
	})
}

// Advance moves the attempt forward. Leaving review creates the order once;
// an attempt that already holds an order reuses it whatever address is
// selected now. Entering payment with a card requests the payment intent.
func (s *service) Advance(ctx context.Context, userID string, id uuid.UUID) (*View, error) {
	return s.mutate(ctx, userID, id, func(ctx context.Context, attempt *Attempt) error {
		next, err := NextStep(attempt.Step, EventAdvance)
		if err != nil {
			return err
		}

		switch attempt.Step {
		case enums.CheckoutStepAddressSelection:
			if attempt.AddressID == nil || attempt.Address == nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "select a delivery address").WithDetail("field", "address_id")
			}
		case enums.CheckoutStepReview:
			if attempt.PaymentMethod == nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "select a payment method").WithDetail("field", "payment_method")
			}
			if err := s.ensureOrder(ctx, attempt); err != nil {
				return err
			}
		}

		s.moveTo(ctx, attempt, next)
		if attempt.Step == enums.CheckoutStepPayment && *attempt.PaymentMethod == enums.PaymentMethodCard {
			return s.ensureIntent(ctx, attempt)
		}
		return nil
	})
}

func (s *service) ConfirmCardPayment(ctx context.Context, userID string, id uuid.UUID, paymentMethodID string) (*View, error) {
	return s.mutate(ctx, userID, id, func(ctx context.Context, attempt *Attempt) error {
		next, err := NextStep(attempt.Step, EventConfirmCard)
		if err != nil {
			return err
		}
		if err := requireOrder(attempt, enums.PaymentMethodCard); err != nil {
			return err
		}

		payment, order, err := s.payments.Confirm(ctx, *attempt.Order, attempt.Payment, payments.ConfirmInput{
			PaymentMethodID: paymentMethodID,
			IdempotencyKey:  fmt.Sprintf("checkout-%s-confirm-%d", attempt.ID, attempt.Payment.Attempts+1),
		})
		attempt.Payment = payment
		if err != nil {
			return err
		}

		attempt.Order = &order
		s.complete(ctx, attempt, next)
		return nil
	})
}

func (s *service) PlaceCashOrder(ctx context.Context, userID string, id uuid.UUID) (*View, error) {
	return s.mutate(ctx, userID, id, func(ctx context.Context, attempt *Attempt) error {
		next, err := NextStep(attempt.Step, EventPlaceCashOrder)
		if err != nil {
			return err
		}
		if err := requireOrder(attempt, enums.PaymentMethodCOD); err != nil {
			return err
		}
		if err := s.payments.AcknowledgeCash(ctx, *attempt.Order); err != nil {
			return err
		}
		s.complete(ctx, attempt, next)
		return nil
	})
}

func (s *service) Confirmation(ctx context.Context, userID string, id uuid.UUID) (*Confirmation, error) {
	attempt, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if attempt.Step != enums.CheckoutStepComplete || attempt.Order == nil || attempt.CompletedAt == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not complete").
			WithDetail("step", attempt.Step.String())
	}
	return &Confirmation{
		AttemptID:     attempt.ID,
		OrderID:       attempt.Order.ID,
		OrderNumber:   attempt.Order.Number,
		PaymentMethod: attempt.Order.PaymentMethod,
		Status:        attempt.Order.Status,
		Total:         attempt.Order.Pricing.Display().GrandTotal,
		CompletedAt:   *attempt.CompletedAt,
	}, nil
}

// mutate runs fn on a locked, open attempt and persists whatever fn left
// behind, also when fn fails, so payment progress and abandonment survive.
// Nothing is persisted once the lock has passed to another request.
func (s *service) mutate(ctx context.Context, userID string, id uuid.UUID, fn func(context.Context, *Attempt) error) (*View, error) {
	ctx = s.logg.WithUserID(ctx, userID)
	held, err := s.lock(ctx, "checkout:"+id.String())
	if err != nil {
		return nil, err
	}
	defer s.unlock(ctx, held)

	attempt, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !attempt.Open() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is already finished").
			WithDetail("step", attempt.Step.String())
	}
	ctx = s.logg.WithAttempt(ctx, attempt.ID.String(), attempt.Step.String())

	fnErr := fn(ctx, attempt)
	if err := s.stillHeld(ctx, held); err != nil {
		fields := map[string]any{"lock": held.name}
		if attempt.OrderID != nil {
			fields["order_id"] = *attempt.OrderID
		}
		s.logg.Error(s.logg.WithFields(ctx, fields), "checkout lock lost before persisting", err)
		return nil, err
	}
	attempt.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, attempt); err != nil {
		s.logg.Error(ctx, "persist checkout attempt", err)
		return nil, err
	}
	if fnErr != nil {
		return nil, withStep(fnErr, attempt.Step)
	}
	if attempt.CompletedAt != nil {
		s.afterComplete(ctx, attempt)
	}
	return s.buildView(ctx, attempt, nil, nil)
}

// heldLock is a checkout lock kept alive by a refresh loop until unlock.
type heldLock struct {
	name  string
	token string
	lost  atomic.Bool
	stop  chan struct{}
	done  chan struct{}
}

func (s *service) lock(ctx context.Context, name string) (*heldLock, error) {
	token := uuid.NewString()
	ok, err := s.locker.AcquireLock(ctx, name, token, s.lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout lock")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "request already in progress")
	}
	held := &heldLock{name: name, token: token, stop: make(chan struct{}), done: make(chan struct{})}
	go s.keepAlive(context.WithoutCancel(ctx), held)
	return held, nil
}

// keepAlive refreshes the lock every third of its ttl until unlock.
func (s *service) keepAlive(ctx context.Context, held *heldLock) {
	defer close(held.done)
	ticker := time.NewTicker(s.lockTTL / 3)
	defer ticker.Stop()

	for {
		select {
		case <-held.stop:
			return
		case <-ticker.C:
			ok, err := s.locker.RefreshLock(ctx, held.name, held.token, s.lockTTL)
			if err != nil {
				s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"lock": held.name, "error": err.Error()}), "refresh checkout lock failed")
				continue
			}
			if !ok {
				held.lost.Store(true)
				s.logg.Warn(s.logg.WithField(ctx, "lock", held.name), "checkout lock expired while held")
				return
			}
		}
	}
}

// stillHeld confirms the lock is ours right before persisting, extending it
// for the save.
func (s *service) stillHeld(ctx context.Context, held *heldLock) error {
	if !held.lost.Load() {
		ok, err := s.locker.RefreshLock(context.WithoutCancel(ctx), held.name, held.token, s.lockTTL)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify checkout lock")
		}
		if ok {
			return nil
		}
		held.lost.Store(true)
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "checkout changed while this request ran; reload and retry")
}

func (s *service) unlock(ctx context.Context, held *heldLock) {
	close(held.stop)
	<-held.done
	if held.lost.Load() {
		return
	}
	if err := s.locker.ReleaseLock(context.WithoutCancel(ctx), held.name, held.token); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "lock", held.name), "release checkout lock failed")
	}
}

// guardAddressEntry keeps the non-empty cart rule for every way back into
// address selection. Attempts holding an order keep their snapshot.
func (s *service) guardAddressEntry(ctx context.Context, attempt *Attempt, next enums.CheckoutStep) error {
	if next != enums.CheckoutStepAddressSelection || attempt.Step == next || attempt.HasOrder() {
		return nil
	}
	snapshot, err := s.carts.Snapshot(ctx)
	if err != nil {
		return err
	}
	if snapshot.IsEmpty() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty").WithDetail("redirect", "cart")
	}
	return nil
}

func (s *service) moveTo(ctx context.Context, attempt *Attempt, next enums.CheckoutStep) {
	from := attempt.Step
	attempt.Step = next
	if from == next {
		return
	}
	if s.metrics != nil {
		s.metrics.IncTransition(from.String(), next.String())
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"from": from.String(),
		"to":   next.String(),
	}), "checkout.transition")
}

func (s *service) ensureOrder(ctx context.Context, attempt *Attempt) error {
	if attempt.HasOrder() {
		s.logg.Debug(s.logg.WithField(ctx, "order_id", *attempt.OrderID), "reusing existing order")
		return nil
	}
	if attempt.Address == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "select a delivery address").WithDetail("field", "address_id")
	}

	snapshot, err := s.carts.Snapshot(ctx)
	if err != nil {
		return err
	}
	order, err := s.orders.CreateOrder(ctx, orders.Input{
		Cart:    snapshot,
		Address: *attempt.Address,
		Method:  *attempt.PaymentMethod,
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeInventoryConflict) {
			now := s.now()
			attempt.AbandonedAt = &now
			s.logg.Warn(ctx, "checkout abandoned after inventory conflict")
		}
		return err
	}

	attempt.OrderID = &order.ID
	attempt.Order = &order
	return nil
}

func (s *service) ensureIntent(ctx context.Context, attempt *Attempt) error {
	if attempt.Payment.Ready() {
		return nil
	}
	payment, err := s.payments.RequestIntent(ctx, *attempt.Order, attempt.Payment)
	attempt.Payment = payment
	return err
}

func (s *service) complete(ctx context.Context, attempt *Attempt, next enums.CheckoutStep) {
	now := s.now()
	attempt.CompletedAt = &now
	s.moveTo(ctx, attempt, next)
}

// afterComplete clears the cart and announces the order once completion is
// persisted. Neither failure undoes a placed order.
func (s *service) afterComplete(ctx context.Context, attempt *Attempt) {
	if err := s.carts.Clear(ctx); err != nil {
		s.logg.Error(ctx, "clear cart after checkout", err)
	}
	if s.events == nil || attempt.Order == nil {
		return
	}
	event := CompletedEvent{
		AttemptID:     attempt.ID.String(),
		UserID:        attempt.UserID,
		OrderID:       attempt.Order.ID,
		OrderNumber:   attempt.Order.Number,
		PaymentMethod: attempt.Order.PaymentMethod,
		GrandTotal:    attempt.Order.Pricing.GrandTotal,
		CompletedAt:   *attempt.CompletedAt,
	}
	if _, err := s.events.Publish(ctx, EventTypeCompleted, attempt.ID.String(), event); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "publish checkout.completed failed")
	}
}

func (s *service) buildView(ctx context.Context, attempt *Attempt, snapshot *cart.Snapshot, selection *address.Selection) (*View, error) {
	view := &View{
		ID:                attempt.ID,
		Step:              attempt.Step,
		StepIndex:         attempt.Step.Index(),
		SelectedAddressID: attempt.AddressID,
		SelectedAddress:   attempt.Address,
		PaymentMethod:     attempt.PaymentMethod,
		CompletedAt:       attempt.CompletedAt,
	}

	if attempt.Order != nil {
		view.Order = &OrderSummary{
			ID:             attempt.Order.ID,
			Number:         attempt.Order.Number,
			Status:         attempt.Order.Status,
			OrderAddressID: attempt.Order.Address.ID,
		}
		view.Pricing = attempt.Order.Pricing
	} else if attempt.Open() {
		if snapshot == nil {
			current, err := s.carts.Snapshot(ctx)
			if err != nil {
				return nil, err
			}
			snapshot = &current
		}
		view.Cart = snapshot
		view.Pricing = s.calc.Compute(*snapshot)
	}
	view.DisplayPricing = view.Pricing.Display()

	if attempt.Open() && attempt.Step == enums.CheckoutStepAddressSelection {
		if selection == nil {
			current, err := s.addresses.List(ctx)
			if err != nil {
				return nil, withStep(err, attempt.Step)
			}
			selection = &current
		}
		view.Addresses = selection.Addresses
	}

	if attempt.PaymentMethod != nil && *attempt.PaymentMethod == enums.PaymentMethodCard && attempt.HasOrder() {
		view.Payment = &PaymentView{
			State:        attempt.Payment.State,
			IntentID:     attempt.Payment.IntentID,
			ClientSecret: attempt.Payment.ClientSecret,
			LastError:    attempt.Payment.LastError,
			Attempts:     attempt.Payment.Attempts,
		}
	}
	return view, nil
}

func requireOrder(attempt *Attempt, method enums.PaymentMethod) error {
	if !attempt.HasOrder() || attempt.Order == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no order exists for this checkout")
	}
	if attempt.PaymentMethod == nil || *attempt.PaymentMethod != method {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "payment method does not match this action").
			WithDetail("payment_method", method.String())
	}
	return nil
}

// withStep tags err with the step the attempt is on so the storefront knows
// where to keep the shopper.
func withStep(err error, step enums.CheckoutStep) error {
	typed := pkgerrors.As(err)
	if typed == nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checkout failed").WithDetail("step", step.String())
	}
	if _, ok := typed.Details()["step"]; !ok {
		typed.WithDetail("step", step.String())
	}
	return err
}
