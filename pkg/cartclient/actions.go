package cartclient

import "context"

const (
	cartItemsKey    = "cartItems"
	shippingInfoKey = "shippingInfo"
)

// Actions replays the storefront cart actions against the backend while
// keeping the local mirror and its persisted copy in step with the original
// behavior, quirks included.
type Actions struct {
	API     *Client
	Store   *Store
	Storage *FileStorage
}

func NewActions(api *Client, store *Store, storage *FileStorage) *Actions {
	return &Actions{API: api, Store: store, Storage: storage}
}

// AddItemToCart fetches the product, pushes the line to the server cart and
// mirrors it locally. The line's price is populated from the product name,
// which is what the storefront always sent; the snapshot persisted here is
// the one from before the dispatch, also as the storefront had it.
func (a *Actions) AddItemToCart(ctx context.Context, productID string, quantity int, userID string) error {
	p, err := a.API.getProduct(ctx, productID)
	if err != nil {
		return err
	}
	image := ""
	if len(p.Images) > 0 {
		image = p.Images[0].URL
	}
	item := Item{
		Product:  p.ID,
		Name:     p.Name,
		Price:    p.Name,
		Image:    image,
		Stock:    p.Stock,
		Quantity: quantity,
	}
	if err := a.API.addToCart(ctx, userID, item); err != nil {
		return err
	}
	if err := a.Storage.Set(cartItemsKey, a.Store.State().CartItems); err != nil {
		return err
	}
	a.Store.Dispatch(ItemAdded(item))
	return nil
}

// RemoveItemFromCart drops the line from the local mirror, then persists the
// updated snapshot.
func (a *Actions) RemoveItemFromCart(id string) error {
	a.Store.Dispatch(ItemRemoved(id))
	return a.Storage.Set(cartItemsKey, a.Store.State().CartItems)
}

// SaveShippingInfo stores the address block in the mirror and on disk.
func (a *Actions) SaveShippingInfo(info ShippingInfo) error {
	a.Store.Dispatch(ShippingSaved(info))
	return a.Storage.Set(shippingInfoKey, info)
}

// Restore loads persisted cart and shipping state back into the store, the
// way the storefront hydrates its initial state from local storage.
func (a *Actions) Restore() error {
	var items []Item
	if ok, err := a.Storage.Get(cartItemsKey, &items); err != nil {
		return err
	} else if ok {
		for _, it := range items {
			a.Store.Dispatch(ItemAdded(it))
		}
	}
	var info ShippingInfo
	if ok, err := a.Storage.Get(shippingInfoKey, &info); err != nil {
		return err
	} else if ok {
		a.Store.Dispatch(ShippingSaved(info))
	}
	return nil
}
