package models

// WishlistEntry bookmarks a property for a buyer. A buyer can hold at most
// one entry per property.
type WishlistEntry struct {
	BaseModel

	PropertyID string `gorm:"type:uuid;uniqueIndex:idx_wishlist_property_buyer;not null" json:"property_id"`
	BuyerEmail string `gorm:"uniqueIndex:idx_wishlist_property_buyer;index;not null" json:"buyer_email"`
}
