package bot

import (
	"context"
	"errors"
	"fmt"

	"ecom-auditor/internal/profit"
	"ecom-auditor/pkg/redis"
)

const (
	StepIdle       = ""
	StepAwaitValue = "await_value"
	StepAwaitName  = "await_name"
)

// Session is one chat's calculator state. It is treated as a value: every
// change produces a new Session that replaces the stored one.
type Session struct {
	Step         string              `json:"step"`
	Platform     profit.Platform     `json:"platform"`
	Comparison   bool                `json:"comparison"`
	Product      profit.ProductData  `json:"product"`
	Fees         profit.FeeStructure `json:"fees"`
	PendingField string              `json:"pending_field,omitempty"`
}

// NewSession starts on Shopee with the default product and fees.
func NewSession(fees profit.FeeStructure) Session {
	return Session{
		Platform: profit.PlatformShopee,
		Product:  profit.DefaultProduct(),
		Fees:     fees,
	}
}

// WithPlatform switches the active platform. Outside comparison mode the fee
// schedule is replaced by fees.
func (s Session) WithPlatform(p profit.Platform, fees profit.FeeStructure) Session {
	changed := s.Platform != p
	s.Platform = p
	if changed && !s.Comparison {
		s.Fees = fees
	}
	return s
}

func (s Session) WithComparison(on bool) Session {
	s.Comparison = on
	return s
}

// Awaiting asks for a value of key next.
func (s Session) Awaiting(key string) Session {
	s.Step = StepAwaitValue
	s.PendingField = key
	if key == fieldName {
		s.Step = StepAwaitName
	}
	return s
}

func (s Session) Idle() Session {
	s.Step = StepIdle
	s.PendingField = ""
	return s
}

// WithValue applies v to a product or fee field and validates the result.
func (s Session) WithValue(key string, v float64) (Session, error) {
	if profit.IsProductField(key) {
		product, err := s.Product.WithField(key, v)
		if err != nil {
			return s, err
		}
		if err := product.Validate(); err != nil {
			return s, err
		}
		s.Product = product
		return s, nil
	}

	if !feeFieldOf(s.Platform, key) {
		return s, fmt.Errorf("%w: %q", profit.ErrUnknownField, key)
	}
	fees, err := s.Fees.WithField(key, v)
	if err != nil {
		return s, err
	}
	if err := fees.Validate(); err != nil {
		return s, err
	}
	s.Fees = fees
	return s, nil
}

func (s Session) WithName(name string) Session {
	s.Product.Name = name
	return s
}

func feeFieldOf(p profit.Platform, key string) bool {
	for _, f := range profit.FeeFields(p) {
		if f.Key == key {
			return true
		}
	}
	return false
}

// StateStore is the persistence the bot keeps sessions in.
type StateStore interface {
	SaveState(ctx context.Context, chatID int64, state any) error
	GetState(ctx context.Context, chatID int64, state any) error
	ClearState(ctx context.Context, chatID int64) error
}

type StateStorage struct {
	store    StateStore
	defaults func(ctx context.Context) profit.FeeStructure
}

func NewStateStorage(store StateStore, defaults func(ctx context.Context) profit.FeeStructure) *StateStorage {
	return &StateStorage{store: store, defaults: defaults}
}

// Get loads the chat session, starting a new one when none is stored.
func (s *StateStorage) Get(ctx context.Context, chatID int64) (Session, error) {
	var session Session
	err := s.store.GetState(ctx, chatID, &session)
	switch {
	case errors.Is(err, redis.ErrNotFound):
		return NewSession(s.defaults(ctx)), nil
	case err != nil:
		return Session{}, fmt.Errorf("failed to get state: %w", err)
	}
	if !session.Platform.Valid() {
		session.Platform = profit.PlatformShopee
	}
	return session, nil
}

func (s *StateStorage) Save(ctx context.Context, chatID int64, session Session) error {
	if err := s.store.SaveState(ctx, chatID, session); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func (s *StateStorage) Clear(ctx context.Context, chatID int64) error {
	if err := s.store.ClearState(ctx, chatID); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}
