package cartclient

import "sync"

// Item is one mirrored cart line as the storefront state keeps it.
type Item struct {
	Product  string `json:"product"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Image    string `json:"image"`
	Stock    int    `json:"stock"`
	Quantity int    `json:"quantity"`
}

// ShippingInfo is the checkout address block, stored verbatim.
type ShippingInfo struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PhoneNo    string `json:"phoneNo"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// State is the full mirrored cart state.
type State struct {
	CartItems    []Item
	ShippingInfo ShippingInfo
}

type actionType int

const (
	itemAdded actionType = iota
	itemRemoved
	shippingInfoSaved
)

// Action carries one state transition. Only one of Item, ID or Shipping is
// meaningful, depending on Type.
type Action struct {
	Type     actionType
	Item     Item
	ID       string
	Shipping ShippingInfo
}

func ItemAdded(item Item) Action          { return Action{Type: itemAdded, Item: item} }
func ItemRemoved(id string) Action        { return Action{Type: itemRemoved, ID: id} }
func ShippingSaved(s ShippingInfo) Action { return Action{Type: shippingInfoSaved, Shipping: s} }

// Store applies actions to the mirrored state synchronously. Dispatch returns
// only after the reducer ran, so a read right after sees the new state.
type Store struct {
	mu    sync.Mutex
	state State
}

func NewStore() *Store {
	return &Store{}
}

// Dispatch runs the reducer for the given action.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = reduce(s.state, a)
}

// State returns a copy of the mirrored state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.CartItems = append([]Item(nil), s.state.CartItems...)
	return out
}

// reduce matches the storefront cart reducer: an added item replaces an
// existing line for the same product instead of appending twice.
func reduce(st State, a Action) State {
	switch a.Type {
	case itemAdded:
		replaced := false
		items := make([]Item, 0, len(st.CartItems)+1)
		for _, it := range st.CartItems {
			if it.Product == a.Item.Product {
				items = append(items, a.Item)
				replaced = true
				continue
			}
			items = append(items, it)
		}
		if !replaced {
			items = append(items, a.Item)
		}
		st.CartItems = items
	case itemRemoved:
		items := make([]Item, 0, len(st.CartItems))
		for _, it := range st.CartItems {
			if it.Product == a.ID {
				continue
			}
			items = append(items, it)
		}
		st.CartItems = items
	case shippingInfoSaved:
		st.ShippingInfo = a.Shipping
	}
	return st
}
