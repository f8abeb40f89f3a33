package cart

import "github.com/quotient-labs/cartwright/internal/domain"

// cartDTO is the persisted JSON shape of a cart.
type cartDTO struct {
	Items []lineItemDTO `json:"items"`
}

type lineItemDTO struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Category  string  `json:"category"`
	ImageURL  string  `json:"image_url,omitempty"`
	VendorURL string  `json:"vendor_url,omitempty"`
	Quantity  int     `json:"quantity"`
}

func fromDomain(c *domain.Cart) cartDTO {
	items := make([]lineItemDTO, len(c.Items))
	for i, it := range c.Items {
		items[i] = lineItemDTO{
			ProductID: it.ID,
			Name:      it.Name,
			Price:     it.UnitPrice,
			Category:  it.Category,
			Quantity:  it.Quantity,
		}
	}
	return cartDTO{Items: items}
}

func (d cartDTO) toDomain() domain.Cart {
	items := make([]domain.LineItem, len(d.Items))
	for i, it := range d.Items {
		items[i] = domain.LineItem{
			ID:        it.ProductID,
			Name:      it.Name,
			UnitPrice: it.Price,
			Category:  it.Category,
			Quantity:  it.Quantity,
		}
	}
	return domain.Cart{Items: items}
}
