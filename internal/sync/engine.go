package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	gosync "sync"
	"time"

	"github.com/google/uuid"

	"qmenus-system/internal/draft"
)

var (
	ErrAlreadyStarted = errors.New("sync: engine already subscribed")
	ErrEmptyDraft     = errors.New("sync: draft has no items to submit")
)

// Archiver persists orders that leave the active working set. Closed
// orders are history, not garbage.
type Archiver interface {
	Archive(ctx context.Context, order Order) error
}

// VisualDiff is the transient highlight state: which order and item ids
// the UI should mark as new or modified. Membership is derived, never
// authoritative, and safe to lose.
type VisualDiff struct {
	NewOrders      []string `json:"newOrders"`
	ModifiedOrders []string `json:"modifiedOrders"`
	NewItems       []string `json:"newItems"`
	ModifiedItems  []string `json:"modifiedItems"`
}

// SubmissionState tracks one optimistic submit through its ack.
type SubmissionState string

const (
	SubmissionPending   SubmissionState = "PENDING"
	SubmissionSucceeded SubmissionState = "SUCCEEDED"
	SubmissionFailed    SubmissionState = "FAILED"
)

// Submission is the externally visible view of one submit. Stale flags a
// pending submission whose ack has not arrived within the configured age;
// the backup is still held until an ack resolves it.
type Submission struct {
	ID          string          `json:"id"`
	Key         draft.Key       `json:"-"`
	State       SubmissionState `json:"state"`
	Error       string          `json:"error,omitempty"`
	SubmittedAt time.Time       `json:"submittedAt"`
	Stale       bool            `json:"stale,omitempty"`
}

type submission struct {
	id          string
	key         draft.Key
	backup      draft.Draft
	submittedAt time.Time
	state       SubmissionState
	errReason   string
}

// Config wires an Engine.
type Config struct {
	RestaurantID    string
	Stream          Stream
	Drafts          *draft.Store
	Archiver        Archiver
	HighlightWindow time.Duration
	StalePendingAge time.Duration
}

// Engine is the reconciliation core. All state behind one mutex; event
// handling is sequential, one subscriber goroutine per channel draining
// in arrival order, with no causal-order assumption.
type Engine struct {
	mu gosync.RWMutex

	restaurantID string
	stream       Stream
	drafts       *draft.Store
	archiver     Archiver
	window       time.Duration
	staleAge     time.Duration
	now          func() time.Time

	orders     map[string]Order
	selectedID string

	newOrders      map[string]time.Time
	modifiedOrders map[string]time.Time
	newItems       map[string]string // item id -> order id
	modifiedItems  map[string]string

	submissions map[string]*submission

	unsubscribe []func()
	started     bool
}

func NewEngine(cfg Config) *Engine {
	window := cfg.HighlightWindow
	if window <= 0 {
		window = 30 * time.Second
	}
	staleAge := cfg.StalePendingAge
	if staleAge <= 0 {
		staleAge = 2 * time.Minute
	}
	return &Engine{
		restaurantID:   cfg.RestaurantID,
		stream:         cfg.Stream,
		drafts:         cfg.Drafts,
		archiver:       cfg.Archiver,
		window:         window,
		staleAge:       staleAge,
		now:            time.Now,
		orders:         make(map[string]Order),
		newOrders:      make(map[string]time.Time),
		modifiedOrders: make(map[string]time.Time),
		newItems:       make(map[string]string),
		modifiedItems:  make(map[string]string),
		submissions:    make(map[string]*submission),
	}
}

// Start acquires the engine's subscription set, exactly once. The
// returned state is released deterministically by Close.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return ErrAlreadyStarted
	}

	channels := map[string]Handler{
		ChannelNewOrder:          e.handleNewOrderPayload,
		ChannelOrderUpdated:      e.handleOrderUpdatePayload,
		ChannelOrderStatusUpdate: e.handleOrderUpdatePayload,
		ChannelCreateSuccess:     e.handleCreateSuccessPayload,
		ChannelCreateFailed:      e.handleCreateFailedPayload,
	}

	var acquired []func()
	for channel, handler := range channels {
		unsub, err := e.stream.Subscribe(ctx, channel, handler)
		if err != nil {
			for _, release := range acquired {
				release()
			}
			return fmt.Errorf("start sync engine: %w", err)
		}
		acquired = append(acquired, unsub)
	}

	e.unsubscribe = acquired
	e.started = true
	return nil
}

// Close releases every subscription. Safe to call more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, release := range e.unsubscribe {
		release()
	}
	e.unsubscribe = nil
	e.started = false
}

func (e *Engine) handleNewOrderPayload(payload []byte) {
	var event OrderEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Printf("sync: malformed new_order event: %v", err)
		return
	}
	e.ApplyNewOrder(event.Order)
}

func (e *Engine) handleOrderUpdatePayload(payload []byte) {
	var event OrderEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Printf("sync: malformed order update event: %v", err)
		return
	}
	e.ApplyOrderUpdate(event.Order, event.UpdatedBy)
}

func (e *Engine) handleCreateSuccessPayload(payload []byte) {
	var ack SubmitAck
	if err := json.Unmarshal(payload, &ack); err != nil {
		log.Printf("sync: malformed create success ack: %v", err)
		return
	}
	e.ResolveSuccess(ack)
}

func (e *Engine) handleCreateFailedPayload(payload []byte) {
	var ack SubmitAck
	if err := json.Unmarshal(payload, &ack); err != nil {
		log.Printf("sync: malformed create failure ack: %v", err)
		return
	}
	e.ResolveFailure(ack)
}

// ApplyNewOrder upserts an order into the active set, idempotently: a
// duplicate event for a known id is a no-op. Inserted active orders and
// all their items are marked as new.
func (e *Engine) ApplyNewOrder(order Order) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.orders[order.ID]; exists {
		return
	}
	if !order.Status.Active() {
		return
	}

	e.orders[order.ID] = order
	e.newOrders[order.ID] = order.CreatedAt
	for _, item := range order.Items {
		e.newItems[item.ID] = order.ID
	}
}

// ApplyOrderUpdate merges an updated snapshot.
//
// A CANCELLED snapshot removes the order unconditionally, stale fields
// and all. Updates from the restaurant or kitchen, and any READY update,
// replace the stored snapshot without touching highlight state. Customer
// updates are diffed item by item against the previous snapshot before
// replacing it.
func (e *Engine) ApplyOrderUpdate(order Order, updatedBy string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if order.Status == StatusCancelled {
		e.removeLocked(order)
		return
	}

	if updatedBy != UpdatedByCustomer || order.Status == StatusReady {
		if order.Status.Terminal() {
			e.removeLocked(order)
			return
		}
		// Latest snapshot wins; no delta application.
		e.orders[order.ID] = order
		return
	}

	previous, existed := e.orders[order.ID]
	if !existed {
		// Out-of-order arrival: the update beat its new_order. Treat it
		// as the insert.
		e.orders[order.ID] = order
		e.newOrders[order.ID] = order.CreatedAt
		for _, item := range order.Items {
			e.newItems[item.ID] = order.ID
		}
		return
	}

	for _, item := range order.Items {
		before, ok := previous.item(item.ID)
		if !ok {
			e.newItems[item.ID] = order.ID
			continue
		}
		if before.Quantity != item.Quantity || before.Price != item.Price || before.Notes != item.Notes {
			e.modifiedItems[item.ID] = order.ID
		}
	}
	e.modifiedOrders[order.ID] = e.markTime(order)
	e.orders[order.ID] = order
}

func (e *Engine) markTime(order Order) time.Time {
	if order.UpdatedAt != nil {
		return *order.UpdatedAt
	}
	return order.CreatedAt
}

// removeLocked drops an order from the working set and every highlight
// set, and hands it to the archiver. Caller holds the lock.
func (e *Engine) removeLocked(order Order) {
	stored, existed := e.orders[order.ID]
	delete(e.orders, order.ID)
	delete(e.newOrders, order.ID)
	delete(e.modifiedOrders, order.ID)
	for itemID, orderID := range e.newItems {
		if orderID == order.ID {
			delete(e.newItems, itemID)
		}
	}
	for itemID, orderID := range e.modifiedItems {
		if orderID == order.ID {
			delete(e.modifiedItems, itemID)
		}
	}
	if e.selectedID == order.ID {
		e.selectedID = ""
	}

	if e.archiver == nil {
		return
	}
	archived := order
	if existed && len(order.Items) == 0 {
		archived = stored
		archived.Status = order.Status
	}
	if err := e.archiver.Archive(context.Background(), archived); err != nil {
		log.Printf("sync: failed to archive order %s: %v", order.ID, err)
	}
}

// LoadActive replaces the working set from a snapshot fetch (reconnect or
// page reload). Highlight membership is recomputed purely from the
// wall-clock window, so no timer state survives across reloads.
func (e *Engine) LoadActive(orders []Order) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.orders = make(map[string]Order, len(orders))
	e.newOrders = make(map[string]time.Time)
	e.modifiedOrders = make(map[string]time.Time)
	e.newItems = make(map[string]string)
	e.modifiedItems = make(map[string]string)

	for _, order := range orders {
		if !order.Status.Active() {
			continue
		}
		e.orders[order.ID] = order
		if now.Sub(order.CreatedAt) <= e.window {
			e.newOrders[order.ID] = order.CreatedAt
			for _, item := range order.Items {
				e.newItems[item.ID] = order.ID
			}
		} else if order.UpdatedAt != nil && now.Sub(*order.UpdatedAt) <= e.window {
			e.modifiedOrders[order.ID] = *order.UpdatedAt
		}
	}
}

// ActiveOrders returns the working set, newest first.
func (e *Engine) ActiveOrders() []Order {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Order, 0, len(e.orders))
	for _, order := range e.orders {
		out = append(out, order)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// GetOrder returns one active order by id.
func (e *Engine) GetOrder(id string) (Order, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	order, ok := e.orders[id]
	return order, ok
}

// Select marks an order as the one currently open in the UI.
func (e *Engine) Select(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.orders[id]; ok {
		e.selectedID = id
	}
}

// Selected returns the currently open order, always as the freshest
// stored snapshot.
func (e *Engine) Selected() (Order, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.selectedID == "" {
		return Order{}, false
	}
	order, ok := e.orders[e.selectedID]
	return order, ok
}

// Highlights returns current visual diff membership, pruned against the
// wall-clock window at read time rather than by timers.
func (e *Engine) Highlights() VisualDiff {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()

	for id, markedAt := range e.newOrders {
		if now.Sub(markedAt) > e.window {
			delete(e.newOrders, id)
			for itemID, orderID := range e.newItems {
				if orderID == id {
					delete(e.newItems, itemID)
				}
			}
		}
	}
	for id, markedAt := range e.modifiedOrders {
		if now.Sub(markedAt) > e.window {
			delete(e.modifiedOrders, id)
			for itemID, orderID := range e.modifiedItems {
				if orderID == id {
					delete(e.modifiedItems, itemID)
				}
			}
			// Items a customer update added to an already-known order are
			// keyed here under the modified mark, not the new-order one.
			for itemID, orderID := range e.newItems {
				if orderID == id {
					delete(e.newItems, itemID)
				}
			}
		}
	}

	diff := VisualDiff{
		NewOrders:      make([]string, 0, len(e.newOrders)),
		ModifiedOrders: make([]string, 0, len(e.modifiedOrders)),
		NewItems:       make([]string, 0, len(e.newItems)),
		ModifiedItems:  make([]string, 0, len(e.modifiedItems)),
	}
	for id := range e.newOrders {
		diff.NewOrders = append(diff.NewOrders, id)
	}
	for id := range e.modifiedOrders {
		diff.ModifiedOrders = append(diff.ModifiedOrders, id)
	}
	for id := range e.newItems {
		diff.NewItems = append(diff.NewItems, id)
	}
	for id := range e.modifiedItems {
		diff.ModifiedItems = append(diff.ModifiedItems, id)
	}
	sort.Strings(diff.NewOrders)
	sort.Strings(diff.ModifiedOrders)
	sort.Strings(diff.NewItems)
	sort.Strings(diff.ModifiedItems)
	return diff
}

// Submit runs the optimistic submit protocol for the draft under key:
// snapshot the draft as a recoverable backup, emit the creation request,
// and leave the draft in place until an ack resolves it.
func (e *Engine) Submit(ctx context.Context, key draft.Key, orderType OrderType, tableNumber *int) (Submission, error) {
	d := e.drafts.Load(ctx, key)
	if !d.HasItems() {
		return Submission{}, ErrEmptyDraft
	}

	items := make([]CreateOrderItem, 0, len(d.Items))
	for _, line := range d.Items {
		items = append(items, CreateOrderItem{
			MenuItemID:   line.MenuItemID,
			Name:         line.Name,
			Quantity:     line.Quantity,
			Price:        line.UnitPrice * float64(line.Quantity),
			Notes:        line.Notes,
			Extras:       line.Extras,
			IsCustomItem: line.IsCustom,
		})
	}

	sub := &submission{
		id:          uuid.NewString(),
		key:         key,
		backup:      d.Clone(),
		submittedAt: e.now(),
		state:       SubmissionPending,
	}

	request := CreateOrderRequest{
		ClientRequestID: sub.id,
		RestaurantID:    e.restaurantID,
		OrderType:       orderType,
		TableNumber:     tableNumber,
		Items:           items,
		CustomerName:    d.CustomerName,
		CustomerPhone:   d.CustomerPhone,
		CustomerAddress: d.CustomerAddress,
		Notes:           d.Notes,
	}

	e.mu.Lock()
	e.submissions[sub.id] = sub
	e.mu.Unlock()

	if err := e.stream.Publish(ctx, ChannelCreateRequest, request); err != nil {
		e.mu.Lock()
		delete(e.submissions, sub.id)
		e.mu.Unlock()
		return Submission{}, fmt.Errorf("emit create order: %w", err)
	}

	return e.submissionView(sub), nil
}

// ResolveSuccess finishes a submission: the draft and its backup are
// dropped, and the acknowledged order joins the active set.
func (e *Engine) ResolveSuccess(ack SubmitAck) {
	e.mu.Lock()
	sub, ok := e.submissions[ack.ClientRequestID]
	if !ok || sub.state != SubmissionPending {
		e.mu.Unlock()
		return
	}
	sub.state = SubmissionSucceeded
	sub.backup = draft.Draft{}
	key := sub.key
	e.mu.Unlock()

	e.drafts.Clear(context.Background(), key)

	if ack.Order != nil {
		e.ApplyNewOrder(*ack.Order)
	}
}

// ResolveFailure restores the draft from the pre-submit backup, both
// in-memory and durably, and records the error for the UI. The user's
// in-progress order is never silently lost.
func (e *Engine) ResolveFailure(ack SubmitAck) {
	e.mu.Lock()
	sub, ok := e.submissions[ack.ClientRequestID]
	if !ok || sub.state != SubmissionPending {
		e.mu.Unlock()
		return
	}
	sub.state = SubmissionFailed
	sub.errReason = ack.Reason
	key := sub.key
	backup := sub.backup
	e.mu.Unlock()

	e.drafts.Save(context.Background(), key, backup)
}

// Submission returns the state of one submission.
func (e *Engine) Submission(id string) (Submission, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	sub, ok := e.submissions[id]
	if !ok {
		return Submission{}, false
	}
	return e.submissionView(sub), true
}

// Submissions lists every tracked submission, pending ones flagged stale
// once their ack is overdue.
func (e *Engine) Submissions() []Submission {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Submission, 0, len(e.submissions))
	for _, sub := range e.submissions {
		out = append(out, e.submissionView(sub))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}

func (e *Engine) submissionView(sub *submission) Submission {
	view := Submission{
		ID:          sub.id,
		Key:         sub.key,
		State:       sub.state,
		Error:       sub.errReason,
		SubmittedAt: sub.submittedAt,
	}
	if sub.state == SubmissionPending && e.now().Sub(sub.submittedAt) >= e.staleAge {
		view.Stale = true
	}
	return view
}
